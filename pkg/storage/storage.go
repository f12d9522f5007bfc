package storage

import (
	"context"
	"time"
)

// AlertRecord is one persisted notification.
type AlertRecord struct {
	ID        string    `json:"id" db:"id"`
	Channel   int       `json:"channel" db:"channel"`
	Kind      string    `json:"kind" db:"kind"`
	OldLevel  string    `json:"old_level" db:"old_level"`
	NewLevel  string    `json:"new_level" db:"new_level"`
	Value     float64   `json:"value" db:"value"`
	Message   string    `json:"message" db:"message"`
	Timestamp time.Time `json:"timestamp" db:"timestamp"`
}

// AlertFilter controls which records ListAlerts returns.
type AlertFilter struct {
	Channel int // 0 selects all channels
	Limit   int // 0 applies the default limit
}

// Storage defines the persistence layer for the alert history.
type Storage interface {
	// RecordAlert persists a single alert record.
	RecordAlert(ctx context.Context, record *AlertRecord) error

	// ListAlerts retrieves alert records matching the given filter,
	// newest first.
	ListAlerts(ctx context.Context, filter AlertFilter) ([]AlertRecord, error)

	// Close releases resources.
	Close() error
}
