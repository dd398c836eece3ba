// Package store keeps the raw bytes of each session's uploaded CSV file.
//
// A session owns at most one upload. Putting a new upload replaces the
// previous one, and uploads expire after the session TTL. Two backends are
// provided: an in-process map swept by a background job, and Redis.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound is returned when a session has no stored upload.
var ErrNotFound = errors.New("session has no upload")

// Upload is a stored CSV file.
type Upload struct {
	ID         uuid.UUID
	Name       string
	Data       []byte
	UploadedAt time.Time
}

// Store persists one upload per session.
type Store interface {
	// Put stores u for the session, replacing any previous upload.
	Put(ctx context.Context, sessionID string, u *Upload) error
	// Get returns the session's upload and extends its expiry.
	Get(ctx context.Context, sessionID string) (*Upload, error)
	// Delete removes the session's upload. Deleting a missing upload is not an error.
	Delete(ctx context.Context, sessionID string) error
	// Close releases backend resources.
	Close() error
}

// Sweeper is implemented by stores that need periodic expiry.
type Sweeper interface {
	// Sweep removes expired uploads and returns how many were removed.
	Sweep(now time.Time) int
}
