package domain

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrStorageUnavailable indicates the entry store failed at the transport or permission level.
	ErrStorageUnavailable = errors.New("entry store unavailable")
	// ErrExtractionFailed indicates the upstream model call failed or returned a non-conforming shape.
	ErrExtractionFailed = errors.New("extraction failed")
	// ErrRecommendationFailed indicates the upstream recommendation call failed.
	ErrRecommendationFailed = errors.New("recommendation failed")
	// ErrAuthFailure indicates a sign-in or sign-up rejected by the identity layer.
	ErrAuthFailure = errors.New("authentication failed")
	// ErrNotAuthenticated is returned when an operation requiring identity runs without one.
	ErrNotAuthenticated = errors.New("no authenticated identity")
	// ErrInvalidDate is returned for calendar dates not in yyyy-MM-dd form.
	ErrInvalidDate = errors.New("invalid calendar date")
)

// DateLayout is the calendar-date key format used throughout the journal.
const DateLayout = "2006-01-02"

// ValidateDate checks that date is a real calendar date in yyyy-MM-dd form.
func ValidateDate(date string) error {
	parsed, err := time.Parse(DateLayout, date)
	if err != nil || parsed.Format(DateLayout) != date {
		return fmt.Errorf("%w: %q", ErrInvalidDate, date)
	}
	return nil
}

// JournalEntry is one user's journal for one calendar day. At most one entry
// exists per (UserID, Date); the pair is the primary key in the store.
type JournalEntry struct {
	UserID         string
	Date           string
	FreeText       string
	Recommendation *string
	Extracted      *Extraction
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// ExtractionKind tags the closed set of extraction shapes.
type ExtractionKind string

const (
	KindDataPoint ExtractionKind = "data_point"
	KindFitness   ExtractionKind = "fitness"
)

// ExtractedDataPoint is the generic structured interpretation of free text.
type ExtractedDataPoint struct {
	Category string `json:"type"`
	Value    string `json:"value"`
}

// Validate ensures both declared fields are present.
func (d ExtractedDataPoint) Validate() error {
	if d.Category == "" {
		return fmt.Errorf("%w: missing type field", ErrExtractionFailed)
	}
	if d.Value == "" {
		return fmt.Errorf("%w: missing value field", ErrExtractionFailed)
	}
	return nil
}

// FitnessObservation decomposes a single workout statement. Unit must be
// present exactly when Weight is present.
type FitnessObservation struct {
	Exercise string   `json:"exercise"`
	Sets     int      `json:"sets"`
	Reps     int      `json:"reps"`
	Weight   *float64 `json:"weight,omitempty"`
	Unit     *string  `json:"unit,omitempty"`
}

// Validate enforces the observation invariants.
func (f FitnessObservation) Validate() error {
	if f.Exercise == "" {
		return fmt.Errorf("%w: missing exercise field", ErrExtractionFailed)
	}
	if f.Sets < 0 || f.Reps < 0 {
		return fmt.Errorf("%w: negative sets or reps", ErrExtractionFailed)
	}
	if (f.Weight == nil) != (f.Unit == nil) {
		return fmt.Errorf("%w: weight and unit must be present together", ErrExtractionFailed)
	}
	return nil
}

// Extraction is the tagged union of the two known extraction shapes. Exactly
// one variant is set, matching Kind.
type Extraction struct {
	Kind      ExtractionKind      `json:"kind"`
	DataPoint *ExtractedDataPoint `json:"data_point,omitempty"`
	Fitness   *FitnessObservation `json:"fitness,omitempty"`
}

// Validate checks the union is closed and the selected variant is well formed.
func (e Extraction) Validate() error {
	switch e.Kind {
	case KindDataPoint:
		if e.DataPoint == nil || e.Fitness != nil {
			return fmt.Errorf("%w: data_point extraction must carry exactly the data_point variant", ErrExtractionFailed)
		}
		return e.DataPoint.Validate()
	case KindFitness:
		if e.Fitness == nil || e.DataPoint != nil {
			return fmt.Errorf("%w: fitness extraction must carry exactly the fitness variant", ErrExtractionFailed)
		}
		return e.Fitness.Validate()
	default:
		return fmt.Errorf("%w: unknown extraction kind %q", ErrExtractionFailed, e.Kind)
	}
}

// EntryPatch is a partial-field update. Nil fields are left untouched by the
// store; a save never erases a field it does not carry.
type EntryPatch struct {
	FreeText       *string
	Recommendation *string
	Extracted      *Extraction
}

// IsEmpty reports whether the patch carries no fields at all.
func (p EntryPatch) IsEmpty() bool {
	return p.FreeText == nil && p.Recommendation == nil && p.Extracted == nil
}

// Fields lists the names of the fields the patch carries, for event payloads.
func (p EntryPatch) Fields() []string {
	fields := make([]string, 0, 3)
	if p.FreeText != nil {
		fields = append(fields, "free_text")
	}
	if p.Recommendation != nil {
		fields = append(fields, "recommendation")
	}
	if p.Extracted != nil {
		fields = append(fields, "extracted")
	}
	return fields
}

// Cursor models the pagination token for entry history listings.
type Cursor struct {
	Date string
}
