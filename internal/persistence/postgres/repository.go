// Package postgres provides Postgres-backed persistence for journal entries,
// accounts, and outbox events.
package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"example.com/fitscribe/internal/domain"
	"example.com/fitscribe/internal/events"
	"example.com/fitscribe/internal/observability"
)

// EntryRepository implements domain.EntryRepository over a pgx pool.
type EntryRepository struct {
	pool *pgxpool.Pool
}

// NewEntryRepository constructs an EntryRepository.
func NewEntryRepository(pool *pgxpool.Pool) *EntryRepository {
	return &EntryRepository{pool: pool}
}

func storageErr(err error) error {
	return fmt.Errorf("%w: %v", domain.ErrStorageUnavailable, err)
}

// Load fetches the entry for (userID, date). Absence yields (nil, nil).
func (r *EntryRepository) Load(ctx context.Context, userID, date string) (*domain.JournalEntry, error) {
	day, err := time.Parse(domain.DateLayout, date)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidDate, date)
	}

	const query = `SELECT free_text, recommendation, extracted, created_at, updated_at
        FROM journal_entries WHERE user_id=$1 AND entry_date=$2`

	entry := domain.JournalEntry{UserID: userID, Date: date}
	var extracted []byte
	row := r.pool.QueryRow(ctx, query, userID, day)
	if err := row.Scan(&entry.FreeText, &entry.Recommendation, &extracted, &entry.CreatedAt, &entry.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, storageErr(err)
	}
	if len(extracted) > 0 {
		var ext domain.Extraction
		if err := json.Unmarshal(extracted, &ext); err != nil {
			return nil, storageErr(err)
		}
		entry.Extracted = &ext
	}
	return &entry, nil
}

// Save merges the patch into the stored entry and records outbox events
// inside a single transaction. Unsupplied fields are left untouched; the
// merge either lands whole or not at all.
func (r *EntryRepository) Save(ctx context.Context, userID, date string, patch domain.EntryPatch) error {
	day, err := time.Parse(domain.DateLayout, date)
	if err != nil {
		return fmt.Errorf("%w: %q", domain.ErrInvalidDate, date)
	}

	var extracted []byte
	if patch.Extracted != nil {
		extracted, err = json.Marshal(patch.Extracted)
		if err != nil {
			return storageErr(err)
		}
	}

	now := time.Now().UTC()

	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return storageErr(err)
	}
	defer func() {
		if err != nil {
			tx.Rollback(ctx)
		}
	}()

	const upsert = `INSERT INTO journal_entries (user_id, entry_date, free_text, recommendation, extracted, created_at, updated_at)
        VALUES ($1, $2, COALESCE($3, ''), $4, $5, $6, $6)
        ON CONFLICT (user_id, entry_date) DO UPDATE SET
            free_text      = COALESCE($3, journal_entries.free_text),
            recommendation = COALESCE($4, journal_entries.recommendation),
            extracted      = COALESCE($5, journal_entries.extracted),
            updated_at     = $6`

	_, err = tx.Exec(ctx, upsert, userID, day, patch.FreeText, patch.Recommendation, extracted, now)
	if err != nil {
		return storageErr(err)
	}

	if err = r.insertOutbox(ctx, tx, userID, date, "journal.entry_saved", events.EntrySaved{
		UserID:     userID,
		Date:       date,
		Fields:     patch.Fields(),
		OccurredAt: now,
	}); err != nil {
		return storageErr(err)
	}

	if patch.Extracted != nil || patch.Recommendation != nil {
		kind := "recommendation"
		if patch.Extracted != nil {
			kind = string(patch.Extracted.Kind)
		}
		if err = r.insertOutbox(ctx, tx, userID, date, "journal.entry_enriched", events.EntryEnriched{
			UserID:     userID,
			Date:       date,
			Kind:       kind,
			OccurredAt: now,
		}); err != nil {
			return storageErr(err)
		}
	}

	if err = tx.Commit(ctx); err != nil {
		return storageErr(err)
	}
	observability.RecordEntryPersisted(now)
	return nil
}

func (r *EntryRepository) insertOutbox(ctx context.Context, tx pgx.Tx, userID, date, eventType string, payload interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	meta, ok := eventCatalog[eventType]
	if !ok {
		return fmt.Errorf("unknown event type: %s", eventType)
	}

	aggregateID := fmt.Sprintf("%s:%s", userID, date)
	dedupeKey := fmt.Sprintf("%s:%s:%d", aggregateID, eventType, time.Now().UTC().UnixNano())

	const stmt = `INSERT INTO outbox (user_id, aggregate_type, aggregate_id, event_type, topic, partition_key, payload, dedupe_key)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`

	_, err = tx.Exec(ctx, stmt, userID, "journal_entry", aggregateID, eventType, meta.Topic, userID, body, dedupeKey)
	return err
}

// ListByUser returns entries for a user ordered by date descending.
func (r *EntryRepository) ListByUser(ctx context.Context, userID string, cursor *domain.Cursor, limit int) ([]domain.JournalEntry, *domain.Cursor, error) {
	args := []interface{}{userID, limit}
	query := `SELECT entry_date, free_text, recommendation, extracted, created_at, updated_at
        FROM journal_entries WHERE user_id=$1`

	if cursor != nil {
		day, err := time.Parse(domain.DateLayout, cursor.Date)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %q", domain.ErrInvalidDate, cursor.Date)
		}
		query += ` AND entry_date < $3`
		args = append(args, day)
	}

	query += ` ORDER BY entry_date DESC LIMIT $2`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, nil, storageErr(err)
	}
	defer rows.Close()

	results := make([]domain.JournalEntry, 0, limit)
	for rows.Next() {
		entry := domain.JournalEntry{UserID: userID}
		var day time.Time
		var extracted []byte
		if err := rows.Scan(&day, &entry.FreeText, &entry.Recommendation, &extracted, &entry.CreatedAt, &entry.UpdatedAt); err != nil {
			return nil, nil, storageErr(err)
		}
		entry.Date = day.Format(domain.DateLayout)
		if len(extracted) > 0 {
			var ext domain.Extraction
			if err := json.Unmarshal(extracted, &ext); err != nil {
				return nil, nil, storageErr(err)
			}
			entry.Extracted = &ext
		}
		results = append(results, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, storageErr(err)
	}

	var next *domain.Cursor
	if len(results) == limit {
		next = &domain.Cursor{Date: results[len(results)-1].Date}
	}
	return results, next, nil
}

// EventMetadata describes how to route an outbox event.
type EventMetadata struct {
	Topic string
}

var eventCatalog = map[string]EventMetadata{
	"journal.entry_saved":    {Topic: "journal_entries"},
	"journal.entry_enriched": {Topic: "journal_insights"},
}
