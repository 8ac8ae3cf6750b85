package auth

import (
	"context"
	"net/http"
	"strings"
)

// SessionChecker reports whether a session is still live. Revoked or expired
// sessions must fail the check even when the bearer token itself verifies.
type SessionChecker interface {
	Live(ctx context.Context, sessionID string) (bool, error)
}

// Skipper allows callers to bypass authentication for specific requests.
type Skipper func(r *http.Request) bool

// Middleware provides HTTP middleware for bearer-token validation.
type Middleware struct {
	cfg      Config
	sessions SessionChecker
	skipper  Skipper
}

// NewMiddleware constructs a middleware with optional skipper.
func NewMiddleware(cfg Config, sessions SessionChecker, skipper Skipper) Middleware {
	return Middleware{cfg: cfg, sessions: sessions, skipper: skipper}
}

// Wrap wraps an http.Handler with authentication.
func (m Middleware) Wrap(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if m.skipper != nil && m.skipper(r) {
			next.ServeHTTP(w, r)
			return
		}

		claims, err := m.parseRequest(r)
		if err != nil {
			http.Error(w, err.Error(), http.StatusUnauthorized)
			return
		}

		if m.sessions != nil {
			live, err := m.sessions.Live(r.Context(), claims.SessionID)
			if err != nil {
				http.Error(w, "session lookup failed", http.StatusServiceUnavailable)
				return
			}
			if !live {
				http.Error(w, "session signed out", http.StatusUnauthorized)
				return
			}
		}

		ctx := WithClaims(r.Context(), claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (m Middleware) parseRequest(r *http.Request) (*Claims, error) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return nil, ErrMissingToken
	}
	if !strings.HasPrefix(strings.ToLower(header), "bearer ") {
		return nil, ErrInvalidToken
	}
	token := strings.TrimSpace(header[len("Bearer "):])
	return Parse(token, m.cfg)
}
