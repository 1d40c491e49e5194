package cache

import (
	"context"
	"time"

	"app-transcript/internal/app/model"
)

// Entry is the memoized outcome of one transcription attempt. Failed entries
// carry no text and mark that the attempt already happened.
type Entry struct {
	Kind        model.MediaKind `json:"kind"`
	Fingerprint string          `json:"fingerprint"`
	Filename    string          `json:"filename"`
	Text        string          `json:"text"`
	Failed      bool            `json:"failed"`
	CreatedAt   time.Time       `json:"created_at"`
}

// Key returns the cache key of the entry
func (e Entry) Key() string {
	return Key(e.Kind, e.Fingerprint)
}

// Key maps (kind, fingerprint) to a single string. The kind prefix keeps
// audio and video uploads of identical bytes apart.
func Key(kind model.MediaKind, fingerprint string) string {
	return string(kind) + "_" + fingerprint
}

// Cache memoizes transcription results for one session
type Cache interface {
	// ID identifies the owning session
	ID() string
	Get(ctx context.Context, kind model.MediaKind, fingerprint string) (Entry, bool, error)
	Put(ctx context.Context, entry Entry) error
	Entries(ctx context.Context) ([]Entry, error)
}

// Store hands out the cache belonging to a session id
type Store interface {
	Session(id string) Cache
	Close() error
}
