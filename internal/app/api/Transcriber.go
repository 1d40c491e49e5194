package api

import (
	"context"
	"io"
)

// Request is one transcription call. Language is always set; an empty
// Prompt means no guidance.
type Request struct {
	Audio    io.Reader
	Filename string
	Language string
	Prompt   string
}

// Transcriber converts audio to plain text. Failures come back as
// classified remote service errors.
type Transcriber interface {
	Transcribe(ctx context.Context, req Request) (string, error)
}
