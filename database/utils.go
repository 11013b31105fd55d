package database

import (
	"context"
	"time"
)

// Common timeout durations for database operations
const (
	// ShortTimeout for single-document writes
	ShortTimeout = 5 * time.Second

	// MediumTimeout for multi-document queries
	MediumTimeout = 10 * time.Second

	// LongTimeout for bulk imports and full-ledger scans
	LongTimeout = 30 * time.Second
)

// WithShortTimeout creates a context with ShortTimeout
func WithShortTimeout() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), ShortTimeout)
}

// WithMediumTimeout creates a context with MediumTimeout
func WithMediumTimeout() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), MediumTimeout)
}

// WithLongTimeout creates a context with LongTimeout
func WithLongTimeout() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), LongTimeout)
}
