package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	redis "github.com/go-redis/redis/v8"
)

// Record is one stored session.
type Record struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	DisplayName string    `json:"display_name"`
	State       State     `json:"state"`
	CreatedAt   time.Time `json:"created_at"`
}

// Store keeps session records in Redis so a revoked token stops working on
// every instance immediately.
type Store struct {
	conn *redis.Client
	ttl  time.Duration
}

// NewStore connects to Redis and verifies the connection.
func NewStore(ctx context.Context, url string, ttl time.Duration) (*Store, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parsing redis URL: %w", err)
	}
	client := redis.NewClient(opt)
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("pinging redis: %w", err)
	}
	return &Store{conn: client, ttl: ttl}, nil
}

func key(id string) string {
	return "session:" + id
}

// Create persists a freshly authenticated session.
func (s *Store) Create(ctx context.Context, rec Record) error {
	if rec.State == "" {
		rec.State = StateUnknown.Apply(EventAuthenticated)
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	payload, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshaling session %q: %w", rec.ID, err)
	}
	return s.conn.Set(ctx, key(rec.ID), string(payload), s.ttl).Err()
}

// Get retrieves a session record. A missing session yields (nil, nil).
func (s *Store) Get(ctx context.Context, id string) (*Record, error) {
	raw, err := s.conn.Get(ctx, key(id)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var rec Record
	if err := json.Unmarshal([]byte(raw), &rec); err != nil {
		return nil, fmt.Errorf("unmarshaling session %q: %w", id, err)
	}
	return &rec, nil
}

// Revoke transitions the session to unauthenticated. The record is kept until
// its TTL expires so late requests fail with a definitive state.
func (s *Store) Revoke(ctx context.Context, id string) error {
	rec, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if rec == nil {
		return nil
	}
	rec.State = rec.State.Apply(EventSignedOut)
	payload, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshaling session %q: %w", id, err)
	}
	return s.conn.Set(ctx, key(id), string(payload), redis.KeepTTL).Err()
}

// Live implements auth.SessionChecker. An absent session counts as expired.
func (s *Store) Live(ctx context.Context, id string) (bool, error) {
	rec, err := s.Get(ctx, id)
	if err != nil {
		return false, err
	}
	if rec == nil {
		return false, nil
	}
	return rec.State.Live(), nil
}
