// Package memory stores journal entries and accounts in memory for local
// development and tests.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"example.com/fitscribe/internal/auth"
	"example.com/fitscribe/internal/domain"
)

type entryKey struct {
	userID string
	date   string
}

// EntryRepository implements domain.EntryRepository over a map.
type EntryRepository struct {
	mu      sync.RWMutex
	entries map[entryKey]domain.JournalEntry
}

// NewEntryRepository constructs an empty repository.
func NewEntryRepository() *EntryRepository {
	return &EntryRepository{entries: make(map[entryKey]domain.JournalEntry)}
}

// Load implements domain.EntryRepository. Absence yields (nil, nil).
func (r *EntryRepository) Load(ctx context.Context, userID, date string) (*domain.JournalEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entry, ok := r.entries[entryKey{userID, date}]
	if !ok {
		return nil, nil
	}
	return &entry, nil
}

// Save merges only the supplied patch fields, creating the entry if absent.
func (r *EntryRepository) Save(ctx context.Context, userID, date string, patch domain.EntryPatch) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := entryKey{userID, date}
	now := time.Now().UTC()
	entry, ok := r.entries[key]
	if !ok {
		entry = domain.JournalEntry{UserID: userID, Date: date, CreatedAt: now}
	}
	if patch.FreeText != nil {
		entry.FreeText = *patch.FreeText
	}
	if patch.Recommendation != nil {
		rec := *patch.Recommendation
		entry.Recommendation = &rec
	}
	if patch.Extracted != nil {
		ext := *patch.Extracted
		entry.Extracted = &ext
	}
	entry.UpdatedAt = now
	r.entries[key] = entry
	return nil
}

// ListByUser returns entries newest first with cursor pagination.
func (r *EntryRepository) ListByUser(ctx context.Context, userID string, cursor *domain.Cursor, limit int) ([]domain.JournalEntry, *domain.Cursor, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	results := make([]domain.JournalEntry, 0)
	for key, entry := range r.entries {
		if key.userID != userID {
			continue
		}
		if cursor != nil && key.date >= cursor.Date {
			continue
		}
		results = append(results, entry)
	}
	sort.Slice(results, func(i, j int) bool { return results[i].Date > results[j].Date })

	if len(results) > limit {
		results = results[:limit]
	}

	var next *domain.Cursor
	if len(results) == limit && limit > 0 {
		next = &domain.Cursor{Date: results[len(results)-1].Date}
	}
	return results, next, nil
}

// AccountRepository implements auth.AccountRepository over a map.
type AccountRepository struct {
	mu       sync.RWMutex
	accounts map[string]auth.Account
}

// NewAccountRepository constructs an empty repository.
func NewAccountRepository() *AccountRepository {
	return &AccountRepository{accounts: make(map[string]auth.Account)}
}

// Create stores the account, rejecting duplicate emails.
func (r *AccountRepository) Create(ctx context.Context, account auth.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	email := strings.ToLower(account.Email)
	if _, exists := r.accounts[email]; exists {
		return auth.ErrEmailTaken
	}
	r.accounts[email] = account
	return nil
}

// FindByEmail returns the account or (nil, nil) when absent.
func (r *AccountRepository) FindByEmail(ctx context.Context, email string) (*auth.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	account, ok := r.accounts[strings.ToLower(email)]
	if !ok {
		return nil, nil
	}
	return &account, nil
}
