package session

import (
	"context"
	"errors"
	"time"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrLoadSession     = errors.New("failed to load session")
	ErrSaveSession     = errors.New("failed to save session")
)

// Store keeps session snapshots for a limited time.
type Store interface {
	// Get returns ErrSessionNotFound for unknown or expired ids.
	Get(ctx context.Context, id string) (Snapshot, error)
	Set(ctx context.Context, id string, snap Snapshot, ttl time.Duration) error
	Delete(ctx context.Context, id string) error
}
