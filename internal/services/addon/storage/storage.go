// Package storage defines the persistence boundary for append attempt
// auditing.
package storage

import (
	"context"
	"time"
)

// AttemptRecord is one persisted append attempt.
type AttemptRecord struct {
	EventID    string
	ProductID  string
	VariantIDs []string
	Outcome    string
	LastError  string
	CreatedAt  time.Time
}

// AttemptStore persists and lists append attempts.
type AttemptStore interface {
	RecordAttempt(ctx context.Context, record AttemptRecord) error
	ListRecentAttempts(ctx context.Context, limit int) ([]AttemptRecord, error)
}
