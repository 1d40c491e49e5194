package testutil

import (
	"context"
	"io"
	"sync"

	"github.com/stretchr/testify/mock"

	"app-transcript/internal/app/api"
)

// TranscriptionCall is one recorded call to MockTranscriber
type TranscriptionCall struct {
	Filename string
	Language string
	Prompt   string
	Audio    []byte
}

// MockTranscriber is a testify mock of api.Transcriber. Expectations are set
// with On("Transcribe", ...); every call is also kept in Calls.
type MockTranscriber struct {
	mock.Mock
	mu    sync.Mutex
	calls []TranscriptionCall
}

// NewMockTranscriber creates a mock that fails the test on unexpected calls
func NewMockTranscriber() *MockTranscriber {
	return &MockTranscriber{}
}

// Transcribe implements api.Transcriber
func (m *MockTranscriber) Transcribe(ctx context.Context, req api.Request) (string, error) {
	var audio []byte
	if req.Audio != nil {
		audio, _ = io.ReadAll(req.Audio)
	}

	m.mu.Lock()
	m.calls = append(m.calls, TranscriptionCall{
		Filename: req.Filename,
		Language: req.Language,
		Prompt:   req.Prompt,
		Audio:    audio,
	})
	m.mu.Unlock()

	args := m.Called(ctx, req)
	return args.String(0), args.Error(1)
}

// Calls returns a copy of the recorded calls
func (m *MockTranscriber) Calls() []TranscriptionCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]TranscriptionCall, len(m.calls))
	copy(out, m.calls)
	return out
}

// CallCount returns how many times Transcribe ran
func (m *MockTranscriber) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

var _ api.Transcriber = (*MockTranscriber)(nil)
