// Package history records uploaded datasets in PostgreSQL.
//
// Recording is optional. When no database is configured the service uses
// Nop, which accepts entries and reports history as disabled.
package history

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrDisabled is returned by Recent when no database is configured.
var ErrDisabled = errors.New("upload history is disabled")

// DefaultLimit is the number of entries Recent returns when limit <= 0.
const DefaultLimit = 20

// MaxLimit caps the number of entries Recent returns.
const MaxLimit = 200

// Entry is one recorded upload.
type Entry struct {
	ID         uuid.UUID `json:"id"`
	SessionID  string    `json:"-"`
	FileName   string    `json:"file_name"`
	Encoding   string    `json:"encoding"`
	SizeBytes  int64     `json:"size_bytes"`
	Rows       int       `json:"rows"`
	Columns    int       `json:"columns"`
	UploadedAt time.Time `json:"uploaded_at"`
}

// Recorder stores and lists upload history.
type Recorder interface {
	Record(ctx context.Context, e Entry) error
	Recent(ctx context.Context, limit int) ([]Entry, error)
	Close()
}

// Nop is the Recorder used when history is disabled.
type Nop struct{}

func (Nop) Record(context.Context, Entry) error { return nil }

func (Nop) Recent(context.Context, int) ([]Entry, error) { return nil, ErrDisabled }

func (Nop) Close() {}

func clampLimit(limit int) int {
	if limit <= 0 {
		return DefaultLimit
	}
	if limit > MaxLimit {
		return MaxLimit
	}
	return limit
}
