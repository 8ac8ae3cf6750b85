// Package api exposes HTTP handlers for the journal service.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"example.com/fitscribe/internal/auth"
	"example.com/fitscribe/internal/domain"
	"example.com/fitscribe/internal/journal"
	"example.com/fitscribe/internal/persistence"
	"example.com/fitscribe/internal/session"
)

// SessionStore is the slice of the session store the handlers need.
type SessionStore interface {
	Create(ctx context.Context, rec session.Record) error
	Revoke(ctx context.Context, id string) error
}

// Handler coordinates HTTP requests with the journal components.
type Handler struct {
	accounts *auth.Service
	sessions SessionStore
	registry *journal.Registry
	entries  *domain.Service
	logger   *zap.Logger
}

// NewHandler builds a Handler.
func NewHandler(accounts *auth.Service, sessions SessionStore, registry *journal.Registry, entries *domain.Service, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{accounts: accounts, sessions: sessions, registry: registry, entries: entries, logger: logger}
}

// RegisterRoutes wires endpoints to the mux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/v1/auth/signup", h.signup)
	mux.HandleFunc("/v1/auth/login", h.login)
	mux.HandleFunc("/v1/auth/logout", h.logout)
	mux.HandleFunc("/v1/journal", h.listEntries)
	mux.HandleFunc("/v1/journal/", h.journalByDate)
	mux.HandleFunc("/healthz", healthz)
}

// healthz reports a simple OK status for container health checks.
func healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (h *Handler) signup(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
		return
	}

	var req SignupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "unable to parse body")
		return
	}

	token, sessionID, identity, err := h.accounts.SignUp(r.Context(), req.Email, req.Password, req.DisplayName)
	if err != nil {
		h.writeFailure(w, err)
		return
	}

	h.openSession(w, r, token, sessionID, identity)
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
		return
	}

	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "unable to parse body")
		return
	}

	token, sessionID, identity, err := h.accounts.SignIn(r.Context(), req.Email, req.Password)
	if err != nil {
		h.writeFailure(w, err)
		return
	}

	h.openSession(w, r, token, sessionID, identity)
}

func (h *Handler) openSession(w http.ResponseWriter, r *http.Request, token, sessionID string, identity auth.Identity) {
	record := session.Record{
		ID:          sessionID,
		UserID:      identity.UserID,
		DisplayName: identity.DisplayName,
		State:       session.StateUnknown.Apply(session.EventAuthenticated),
	}
	if err := h.sessions.Create(r.Context(), record); err != nil {
		writeError(w, http.StatusServiceUnavailable, "session_unavailable", "unable to open session")
		return
	}

	writeJSON(w, http.StatusOK, TokenResponse{
		Token:       token,
		UserID:      identity.UserID,
		DisplayName: identity.DisplayName,
	})
}

func (h *Handler) logout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
		return
	}

	claims, ok := auth.FromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "missing bearer token")
		return
	}

	h.registry.Drop(claims.SessionID)
	if err := h.sessions.Revoke(r.Context(), claims.SessionID); err != nil {
		writeError(w, http.StatusServiceUnavailable, "session_unavailable", "unable to revoke session")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) journalByDate(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.FromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "missing bearer token")
		return
	}

	rest := strings.TrimPrefix(r.URL.Path, "/v1/journal/")
	parts := strings.SplitN(rest, "/", 2)
	date := parts[0]
	action := ""
	if len(parts) == 2 {
		action = parts[1]
	}
	if date == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "missing entry date")
		return
	}

	controller := h.registry.Acquire(claims.SessionID, claims.Identity())

	switch {
	case action == "" && r.Method == http.MethodGet:
		h.loadEntry(w, r, claims, controller, date)
	case action == "text" && r.Method == http.MethodPut:
		h.updateText(w, r, claims, controller, date)
	case action == "extract" && r.Method == http.MethodPost:
		h.extract(w, r, claims, controller, date)
	case action == "fitness" && r.Method == http.MethodPost:
		h.extractFitness(w, r, claims, controller, date)
	case action == "recommend" && r.Method == http.MethodPost:
		h.recommend(w, r, claims, controller, date)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
	}
}

func (h *Handler) loadEntry(w http.ResponseWriter, r *http.Request, claims *auth.Claims, controller *journal.Controller, date string) {
	if !claims.HasScope(auth.ScopeJournalRead) && !claims.HasScope(auth.ScopeJournalWrite) {
		writeError(w, http.StatusForbidden, "forbidden", "scope journal:read required")
		return
	}

	draft, exists, err := controller.SelectDate(r.Context(), date)
	if err != nil {
		h.writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toEntryView(date, draft, exists))
}

func (h *Handler) updateText(w http.ResponseWriter, r *http.Request, claims *auth.Claims, controller *journal.Controller, date string) {
	if !claims.HasScope(auth.ScopeJournalWrite) {
		writeError(w, http.StatusForbidden, "forbidden", "scope journal:write required")
		return
	}

	var req UpdateTextRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "unable to parse body")
		return
	}

	if err := controller.UpdateText(r.Context(), date, req.FreeText); err != nil {
		h.writeFailure(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) extract(w http.ResponseWriter, r *http.Request, claims *auth.Claims, controller *journal.Controller, date string) {
	if !claims.HasScope(auth.ScopeJournalWrite) {
		writeError(w, http.StatusForbidden, "forbidden", "scope journal:write required")
		return
	}

	point, err := controller.Extract(r.Context(), date)
	if err != nil {
		h.writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, DataPointResponse{Type: point.Category, Value: point.Value})
}

func (h *Handler) extractFitness(w http.ResponseWriter, r *http.Request, claims *auth.Claims, controller *journal.Controller, date string) {
	if !claims.HasScope(auth.ScopeJournalWrite) {
		writeError(w, http.StatusForbidden, "forbidden", "scope journal:write required")
		return
	}

	observation, err := controller.ExtractFitness(r.Context(), date)
	if err != nil {
		h.writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, observation)
}

func (h *Handler) recommend(w http.ResponseWriter, r *http.Request, claims *auth.Claims, controller *journal.Controller, date string) {
	if !claims.HasScope(auth.ScopeJournalWrite) {
		writeError(w, http.StatusForbidden, "forbidden", "scope journal:write required")
		return
	}

	advice, err := controller.Recommend(r.Context(), date)
	if err != nil {
		h.writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, RecommendationResponse{Recommendations: advice})
}

func (h *Handler) listEntries(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
		return
	}

	claims, ok := auth.FromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "missing bearer token")
		return
	}
	if !claims.HasScope(auth.ScopeJournalRead) && !claims.HasScope(auth.ScopeJournalWrite) {
		writeError(w, http.StatusForbidden, "forbidden", "scope journal:read required")
		return
	}

	limit := 20
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	cursor, err := persistence.DecodeCursor(r.URL.Query().Get("cursor"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "validation_failed", "invalid cursor")
		return
	}

	entries, next, err := h.entries.ListByUser(r.Context(), claims.Subject, cursor, limit)
	if err != nil {
		h.writeFailure(w, err)
		return
	}

	items := make([]EntryView, 0, len(entries))
	for _, entry := range entries {
		items = append(items, toEntryView(entry.Date, journal.Draft{
			FreeText:       entry.FreeText,
			Recommendation: entry.Recommendation,
			Extracted:      entry.Extracted,
		}, true))
	}

	writeJSON(w, http.StatusOK, ListEntriesResponse{
		Items:      items,
		NextCursor: persistence.EncodeCursor(next),
	})
}

// writeFailure converts a sentinel error into a status code and one JSON notice.
func (h *Handler) writeFailure(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, auth.ErrEmailTaken):
		writeError(w, http.StatusConflict, "auth_failure", err.Error())
	case errors.Is(err, auth.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, "auth_failure", err.Error())
	case errors.Is(err, domain.ErrAuthFailure):
		writeError(w, http.StatusBadRequest, "auth_failure", err.Error())
	case errors.Is(err, domain.ErrNotAuthenticated):
		writeError(w, http.StatusUnauthorized, "unauthorized", err.Error())
	case errors.Is(err, domain.ErrInvalidDate):
		writeError(w, http.StatusBadRequest, "validation_failed", err.Error())
	case errors.Is(err, journal.ErrEmptyText):
		writeError(w, http.StatusUnprocessableEntity, "empty_text", "free text is required before this action")
	case errors.Is(err, journal.ErrLoadInFlight):
		writeError(w, http.StatusConflict, "load_in_flight", "an entry load is still resolving")
	case errors.Is(err, journal.ErrSuperseded):
		writeError(w, http.StatusConflict, "superseded", "a newer selection replaced this operation")
	case errors.Is(err, domain.ErrExtractionFailed):
		writeError(w, http.StatusBadGateway, "extraction_failed", err.Error())
	case errors.Is(err, domain.ErrRecommendationFailed):
		writeError(w, http.StatusBadGateway, "recommendation_failed", err.Error())
	case errors.Is(err, domain.ErrStorageUnavailable):
		writeError(w, http.StatusServiceUnavailable, "storage_unavailable", err.Error())
	default:
		h.logger.Error("unclassified failure", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "server_error", err.Error())
	}
}

// SignupRequest is the payload for POST /v1/auth/signup.
type SignupRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	DisplayName string `json:"display_name"`
}

// LoginRequest is the payload for POST /v1/auth/login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// TokenResponse carries a fresh bearer token.
type TokenResponse struct {
	Token       string `json:"token"`
	UserID      string `json:"user_id"`
	DisplayName string `json:"display_name"`
}

// UpdateTextRequest is the payload for PUT /v1/journal/{date}/text.
type UpdateTextRequest struct {
	FreeText string `json:"free_text"`
}

// EntryView exposes one day's journal. Exists is false when no entry has been
// stored yet; an absent entry is a normal outcome, never an error.
type EntryView struct {
	Date           string             `json:"date"`
	FreeText       string             `json:"free_text"`
	Recommendation *string            `json:"recommendation,omitempty"`
	Extracted      *domain.Extraction `json:"extracted,omitempty"`
	Exists         bool               `json:"exists"`
}

// DataPointResponse is the wire shape of a generic extraction.
type DataPointResponse struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

// RecommendationResponse is the wire shape of a workout recommendation.
type RecommendationResponse struct {
	Recommendations string `json:"recommendations"`
}

// ListEntriesResponse packages history results.
type ListEntriesResponse struct {
	Items      []EntryView `json:"items"`
	NextCursor string      `json:"next_cursor,omitempty"`
}

func toEntryView(date string, draft journal.Draft, exists bool) EntryView {
	return EntryView{
		Date:           date,
		FreeText:       draft.FreeText,
		Recommendation: draft.Recommendation,
		Extracted:      draft.Extracted,
		Exists:         exists,
	}
}

func writeError(w http.ResponseWriter, status int, code, detail string) {
	payload := map[string]string{
		"type":   code,
		"detail": detail,
	}
	writeJSON(w, status, payload)
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
