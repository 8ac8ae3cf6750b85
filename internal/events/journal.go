// Package events defines the payloads published for downstream consumers.
package events

import "time"

// EntrySaved is emitted whenever a merge-save lands on a journal entry.
type EntrySaved struct {
	UserID     string    `json:"user_id"`
	Date       string    `json:"date"`
	Fields     []string  `json:"fields"`
	OccurredAt time.Time `json:"occurred_at"`
}

// EntryEnriched is emitted when a model-produced field (extraction or
// recommendation) is persisted onto an entry.
type EntryEnriched struct {
	UserID     string    `json:"user_id"`
	Date       string    `json:"date"`
	Kind       string    `json:"kind"`
	OccurredAt time.Time `json:"occurred_at"`
}
