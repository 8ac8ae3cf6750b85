package domain

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestServiceLoadRequiresIdentityAndValidDate(t *testing.T) {
	repo := &stubEntryRepo{}
	svc := NewService(repo)

	_, err := svc.Load(context.Background(), "", "2025-03-14")
	require.ErrorIs(t, err, ErrNotAuthenticated)

	_, err = svc.Load(context.Background(), "user-1", "03/14/2025")
	require.ErrorIs(t, err, ErrInvalidDate)

	require.Zero(t, repo.loadCalls)
}

func TestServiceLoadMissingEntryIsNotAnError(t *testing.T) {
	repo := &stubEntryRepo{}
	svc := NewService(repo)

	entry, err := svc.Load(context.Background(), "user-1", "2025-03-14")
	require.NoError(t, err)
	require.Nil(t, entry)
	require.Equal(t, 1, repo.loadCalls)
}

func TestServiceSaveSkipsEmptyPatch(t *testing.T) {
	repo := &stubEntryRepo{}
	svc := NewService(repo)

	require.NoError(t, svc.Save(context.Background(), "user-1", "2025-03-14", EntryPatch{}))
	require.Zero(t, repo.saveCalls)
}

func TestServiceSaveRejectsMalformedExtraction(t *testing.T) {
	repo := &stubEntryRepo{}
	svc := NewService(repo)

	weight := 60.0
	bad := &Extraction{Kind: KindFitness, Fitness: &FitnessObservation{Exercise: "deadlift", Sets: 1, Reps: 5, Weight: &weight}}

	err := svc.Save(context.Background(), "user-1", "2025-03-14", EntryPatch{Extracted: bad})
	require.ErrorIs(t, err, ErrExtractionFailed)
	require.Zero(t, repo.saveCalls, "malformed extraction must never reach the store")
}

func TestServiceSavePassesPatchThrough(t *testing.T) {
	repo := &stubEntryRepo{}
	svc := NewService(repo)

	text := "3 sets of 10 pushups"
	require.NoError(t, svc.Save(context.Background(), "user-1", "2025-03-14", EntryPatch{FreeText: &text}))
	require.Equal(t, 1, repo.saveCalls)
	require.Equal(t, "user-1", repo.lastUserID)
	require.Equal(t, "2025-03-14", repo.lastDate)
	require.Equal(t, &text, repo.lastPatch.FreeText)
}

func TestServiceListClampsLimit(t *testing.T) {
	repo := &stubEntryRepo{}
	svc := NewService(repo)

	_, _, err := svc.ListByUser(context.Background(), "user-1", nil, 0)
	require.NoError(t, err)
	require.Equal(t, 20, repo.lastLimit)

	_, _, err = svc.ListByUser(context.Background(), "user-1", nil, 500)
	require.NoError(t, err)
	require.Equal(t, 100, repo.lastLimit)
}

type stubEntryRepo struct {
	loadCalls  int
	saveCalls  int
	lastUserID string
	lastDate   string
	lastPatch  EntryPatch
	lastLimit  int
	entry      *JournalEntry
	err        error
}

func (r *stubEntryRepo) Load(_ context.Context, userID, date string) (*JournalEntry, error) {
	r.loadCalls++
	r.lastUserID = userID
	r.lastDate = date
	return r.entry, r.err
}

func (r *stubEntryRepo) Save(_ context.Context, userID, date string, patch EntryPatch) error {
	r.saveCalls++
	r.lastUserID = userID
	r.lastDate = date
	r.lastPatch = patch
	return r.err
}

func (r *stubEntryRepo) ListByUser(_ context.Context, userID string, _ *Cursor, limit int) ([]JournalEntry, *Cursor, error) {
	r.lastUserID = userID
	r.lastLimit = limit
	return nil, nil, r.err
}
