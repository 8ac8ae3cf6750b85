// Package journal reconciles the selected date, the authenticated identity,
// and the in-memory draft of one user's day with the entry store, and
// sequences the model gateway calls triggered by user actions.
package journal

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"example.com/fitscribe/internal/auth"
	"example.com/fitscribe/internal/domain"
)

var (
	// ErrSuperseded marks a resolution whose captured (identity, date) key no
	// longer matches the current selection; its in-memory effect is discarded.
	ErrSuperseded = errors.New("operation superseded by a newer selection")
	// ErrEmptyText is returned when extraction or recommendation is triggered
	// with no free text in the draft.
	ErrEmptyText = errors.New("free text is empty")
	// ErrLoadInFlight rejects actions issued while a load is still resolving.
	ErrLoadInFlight = errors.New("entry load in flight")
	// ErrNoDateSelected is returned when an action runs before any date was chosen.
	ErrNoDateSelected = errors.New("no date selected")
)

// EntryService is the slice of the domain service the controller needs.
type EntryService interface {
	Load(ctx context.Context, userID, date string) (*domain.JournalEntry, error)
	Save(ctx context.Context, userID, date string, patch domain.EntryPatch) error
}

// Extractor produces structured interpretations of free text.
type Extractor interface {
	ParseDataPoint(ctx context.Context, text string) (domain.ExtractedDataPoint, error)
	ParseFitness(ctx context.Context, workoutText string) (domain.FitnessObservation, error)
}

// Recommender produces workout advice from free-text history.
type Recommender interface {
	SuggestWorkout(ctx context.Context, workoutData string) (string, error)
}

// Draft is the in-memory working copy of the selected day's entry.
type Draft struct {
	FreeText       string
	Recommendation *string
	Extracted      *domain.Extraction
}

// Deps bundles the collaborators a controller needs.
type Deps struct {
	Entries      EntryService
	Extractor    Extractor
	Recommender  Recommender
	Logger       *zap.Logger
	TextDebounce time.Duration
}

// Controller holds one session's selection and draft. Every suspending call
// captures (identity, date, revision) at issue time; when it resolves, a
// changed revision means the selection moved on and the result is discarded
// rather than applied to the wrong day's draft.
type Controller struct {
	deps Deps

	mu       sync.Mutex
	identity *auth.Identity
	date     string
	draft    Draft
	rev      uint64
	loading  bool
	pending  *time.Timer
}

// NewController constructs a controller for an authenticated identity.
func NewController(identity auth.Identity, deps Deps) *Controller {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	return &Controller{deps: deps, identity: &identity}
}

// SignOut clears the identity and every draft field so no unsaved text leaks
// into another session on the same device.
func (c *Controller) SignOut() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.pending != nil {
		c.pending.Stop()
		c.pending = nil
	}
	c.identity = nil
	c.date = ""
	c.draft = Draft{}
	c.rev++
}

// Snapshot returns the current selection and draft.
func (c *Controller) Snapshot() (string, Draft) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.date, c.draft
}

// SelectDate loads the entry for the new (identity, date) key and replaces
// the whole draft with the result, or clears it when the entry is absent or
// the load fails. A resolution that arrives after a newer selection is
// discarded.
func (c *Controller) SelectDate(ctx context.Context, date string) (Draft, bool, error) {
	if err := domain.ValidateDate(date); err != nil {
		return Draft{}, false, err
	}

	c.mu.Lock()
	if c.identity == nil {
		c.mu.Unlock()
		return Draft{}, false, domain.ErrNotAuthenticated
	}
	ident := *c.identity
	c.date = date
	c.rev++
	rev := c.rev
	c.loading = true
	c.mu.Unlock()

	entry, err := c.deps.Entries.Load(ctx, ident.UserID, date)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.rev != rev {
		// A newer selection owns the draft now.
		return c.draft, false, ErrSuperseded
	}
	c.loading = false
	if err != nil {
		c.draft = Draft{}
		return Draft{}, false, err
	}
	if entry == nil {
		c.draft = Draft{}
		return c.draft, false, nil
	}
	c.draft = Draft{
		FreeText:       entry.FreeText,
		Recommendation: entry.Recommendation,
		Extracted:      entry.Extracted,
	}
	return c.draft, true, nil
}

// ensureSelected makes date the current selection, loading it first when the
// selection changed since the last call.
func (c *Controller) ensureSelected(ctx context.Context, date string) error {
	c.mu.Lock()
	current := c.date
	c.mu.Unlock()

	if current == date {
		return nil
	}
	_, _, err := c.SelectDate(ctx, date)
	return err
}

// begin captures the inputs for an extraction or recommendation action.
func (c *Controller) begin(ctx context.Context, date string) (auth.Identity, uint64, string, error) {
	if err := c.ensureSelected(ctx, date); err != nil {
		return auth.Identity{}, 0, "", err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.identity == nil {
		return auth.Identity{}, 0, "", domain.ErrNotAuthenticated
	}
	if c.date == "" {
		return auth.Identity{}, 0, "", ErrNoDateSelected
	}
	if c.loading {
		return auth.Identity{}, 0, "", ErrLoadInFlight
	}
	if c.draft.FreeText == "" {
		return auth.Identity{}, 0, "", ErrEmptyText
	}
	return *c.identity, c.rev, c.draft.FreeText, nil
}

// UpdateText updates the draft immediately and merge-saves just the free
// text. With a positive debounce the save is deferred and reset on every
// further edit; a save failure is reported but never blocks further typing.
func (c *Controller) UpdateText(ctx context.Context, date, text string) error {
	if err := c.ensureSelected(ctx, date); err != nil {
		return err
	}

	c.mu.Lock()
	if c.identity == nil {
		c.mu.Unlock()
		return domain.ErrNotAuthenticated
	}
	ident := *c.identity
	c.draft.FreeText = text

	if c.deps.TextDebounce > 0 {
		if c.pending != nil {
			c.pending.Stop()
		}
		c.pending = time.AfterFunc(c.deps.TextDebounce, func() {
			c.flushText(ident, date, text)
		})
		c.mu.Unlock()
		return nil
	}
	c.mu.Unlock()

	return c.deps.Entries.Save(ctx, ident.UserID, date, domain.EntryPatch{FreeText: &text})
}

// flushText lands a debounced save against the key captured at edit time.
// The write applies to that key even if the selection has since moved on.
func (c *Controller) flushText(ident auth.Identity, date, text string) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := c.deps.Entries.Save(ctx, ident.UserID, date, domain.EntryPatch{FreeText: &text}); err != nil {
		c.deps.Logger.Warn("deferred free-text save failed",
			zap.String("date", date), zap.Error(err))
	}
}

// Extract parses the draft free text into a generic data point, then
// merge-saves the text and the extraction against the captured key. On
// failure only the extracted draft field is cleared; free text is untouched.
func (c *Controller) Extract(ctx context.Context, date string) (domain.ExtractedDataPoint, error) {
	ident, rev, text, err := c.begin(ctx, date)
	if err != nil {
		return domain.ExtractedDataPoint{}, err
	}

	point, err := c.deps.Extractor.ParseDataPoint(ctx, text)

	c.mu.Lock()
	if c.rev != rev {
		c.mu.Unlock()
		return domain.ExtractedDataPoint{}, ErrSuperseded
	}
	if err != nil {
		c.draft.Extracted = nil
		c.mu.Unlock()
		return domain.ExtractedDataPoint{}, err
	}
	extraction := &domain.Extraction{Kind: domain.KindDataPoint, DataPoint: &point}
	c.draft.Extracted = extraction
	c.mu.Unlock()

	if saveErr := c.deps.Entries.Save(ctx, ident.UserID, date, domain.EntryPatch{FreeText: &text, Extracted: extraction}); saveErr != nil {
		return point, saveErr
	}
	return point, nil
}

// ExtractFitness runs the stricter workout-statement decomposition.
func (c *Controller) ExtractFitness(ctx context.Context, date string) (domain.FitnessObservation, error) {
	ident, rev, text, err := c.begin(ctx, date)
	if err != nil {
		return domain.FitnessObservation{}, err
	}

	observation, err := c.deps.Extractor.ParseFitness(ctx, text)

	c.mu.Lock()
	if c.rev != rev {
		c.mu.Unlock()
		return domain.FitnessObservation{}, ErrSuperseded
	}
	if err != nil {
		c.draft.Extracted = nil
		c.mu.Unlock()
		return domain.FitnessObservation{}, err
	}
	extraction := &domain.Extraction{Kind: domain.KindFitness, Fitness: &observation}
	c.draft.Extracted = extraction
	c.mu.Unlock()

	if saveErr := c.deps.Entries.Save(ctx, ident.UserID, date, domain.EntryPatch{FreeText: &text, Extracted: extraction}); saveErr != nil {
		return observation, saveErr
	}
	return observation, nil
}

// Recommend generates workout advice from the draft free text and
// merge-saves it alongside the text. On failure only the recommendation
// draft field is cleared.
func (c *Controller) Recommend(ctx context.Context, date string) (string, error) {
	ident, rev, text, err := c.begin(ctx, date)
	if err != nil {
		return "", err
	}

	advice, err := c.deps.Recommender.SuggestWorkout(ctx, text)

	c.mu.Lock()
	if c.rev != rev {
		c.mu.Unlock()
		return "", ErrSuperseded
	}
	if err != nil {
		c.draft.Recommendation = nil
		c.mu.Unlock()
		return "", err
	}
	c.draft.Recommendation = &advice
	c.mu.Unlock()

	if saveErr := c.deps.Entries.Save(ctx, ident.UserID, date, domain.EntryPatch{FreeText: &text, Recommendation: &advice}); saveErr != nil {
		return advice, saveErr
	}
	return advice, nil
}
