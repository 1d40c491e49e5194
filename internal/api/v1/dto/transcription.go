package dto

import (
	"time"

	"github.com/samber/lo"

	"app-transcript/internal/app/cache"
	"app-transcript/internal/app/transcript"
)

// TranscriptionURI is the path of a transcription request
type TranscriptionURI struct {
	Kind string `uri:"kind" binding:"required,oneof=audio video"`
}

// TranscriptionForm holds the text fields sent alongside the uploaded file
type TranscriptionForm struct {
	Prompt string `form:"prompt" binding:"max=1000"`
	Retry  bool   `form:"retry"`
}

// Options converts the form into flow options
func (f *TranscriptionForm) Options() transcript.Options {
	return transcript.Options{Prompt: f.Prompt, Retry: f.Retry}
}

// TranscriptionResponse represents a transcription in API responses
type TranscriptionResponse struct {
	Kind             string  `json:"kind"`
	Filename         string  `json:"filename"`
	Fingerprint      string  `json:"fingerprint"`
	SizeMB           float64 `json:"size_mb"`
	Cached           bool    `json:"cached"`
	PreviouslyFailed bool    `json:"previously_failed,omitempty"`
	Text             string  `json:"text"`
}

// NewTranscriptionResponse converts a flow result
func NewTranscriptionResponse(r *transcript.Result) *TranscriptionResponse {
	if r == nil {
		return nil
	}
	return &TranscriptionResponse{
		Kind:             string(r.Kind),
		Filename:         r.Filename,
		Fingerprint:      r.Fingerprint,
		SizeMB:           r.SizeMB(),
		Cached:           r.Cached,
		PreviouslyFailed: r.PreviouslyFailed,
		Text:             r.Text,
	}
}

// SessionEntryResponse is one cached transcription of the session
type SessionEntryResponse struct {
	Key         string    `json:"key"`
	Kind        string    `json:"kind"`
	Filename    string    `json:"filename"`
	Fingerprint string    `json:"fingerprint"`
	Failed      bool      `json:"failed"`
	Text        string    `json:"text"`
	CreatedAt   time.Time `json:"created_at"`
}

// SessionEntriesResponse lists the session cache
type SessionEntriesResponse struct {
	Session string                 `json:"session"`
	Total   int                    `json:"total"`
	Entries []SessionEntryResponse `json:"entries"`
}

// NewSessionEntriesResponse converts cache entries
func NewSessionEntriesResponse(session string, entries []cache.Entry) *SessionEntriesResponse {
	items := lo.Map(entries, func(e cache.Entry, _ int) SessionEntryResponse {
		return SessionEntryResponse{
			Key:         e.Key(),
			Kind:        string(e.Kind),
			Filename:    e.Filename,
			Fingerprint: e.Fingerprint,
			Failed:      e.Failed,
			Text:        e.Text,
			CreatedAt:   e.CreatedAt,
		}
	})
	return &SessionEntriesResponse{
		Session: session,
		Total:   len(items),
		Entries: items,
	}
}
