// Package domain defines the journal model and business rules.
package domain

import (
	"context"
	"fmt"
)

// EntryRepository captures persistence operations for journal entries.
// Load returns (nil, nil) when no entry exists; absence is a normal outcome,
// never an error.
type EntryRepository interface {
	Load(ctx context.Context, userID, date string) (*JournalEntry, error)
	Save(ctx context.Context, userID, date string, patch EntryPatch) error
	ListByUser(ctx context.Context, userID string, cursor *Cursor, limit int) ([]JournalEntry, *Cursor, error)
}

// Service orchestrates journal entry workflows over the repository.
type Service struct {
	repo EntryRepository
}

// NewService constructs a Service.
func NewService(repo EntryRepository) *Service {
	return &Service{repo: repo}
}

// Load fetches the entry for (userID, date). A missing entry yields (nil, nil).
func (s *Service) Load(ctx context.Context, userID, date string) (*JournalEntry, error) {
	if userID == "" {
		return nil, ErrNotAuthenticated
	}
	if err := ValidateDate(date); err != nil {
		return nil, err
	}
	return s.repo.Load(ctx, userID, date)
}

// Save merges the patch into the stored entry, creating it if absent.
func (s *Service) Save(ctx context.Context, userID, date string, patch EntryPatch) error {
	if userID == "" {
		return ErrNotAuthenticated
	}
	if err := ValidateDate(date); err != nil {
		return err
	}
	if patch.IsEmpty() {
		return nil
	}
	if patch.Extracted != nil {
		if err := patch.Extracted.Validate(); err != nil {
			return fmt.Errorf("refusing to persist malformed extraction: %w", err)
		}
	}
	return s.repo.Save(ctx, userID, date, patch)
}

// ListByUser fetches entry history with cursor pagination, newest first.
func (s *Service) ListByUser(ctx context.Context, userID string, cursor *Cursor, limit int) ([]JournalEntry, *Cursor, error) {
	if userID == "" {
		return nil, nil, ErrNotAuthenticated
	}
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	return s.repo.ListByUser(ctx, userID, cursor, limit)
}
