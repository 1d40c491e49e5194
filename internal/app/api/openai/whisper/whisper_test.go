package whisper

import (
	"context"
	stderrors "errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/sashabaranov/go-openai"

	"app-transcript/internal/app/api"
	apperrors "app-transcript/internal/app/errors"
)

func newTestTranscriber(serverURL string) *RemoteTranscriber {
	config := openai.DefaultConfig("test-api-key")
	config.BaseURL = serverURL + "/v1"
	return NewRemoteTranscriber(openai.NewClientWithConfig(config), "")
}

// TestRemoteTranscriber_Transcribe tests the request shape and the error classification
func TestRemoteTranscriber_Transcribe(t *testing.T) {
	tests := []struct {
		name         string
		mockResponse string
		mockStatus   int
		expectedText string
		expectedCode string
	}{
		{
			name:         "successful transcription",
			mockResponse: "Isto é um teste de transcrição\n",
			mockStatus:   http.StatusOK,
			expectedText: "Isto é um teste de transcrição",
		},
		{
			name:         "empty transcription",
			mockResponse: "",
			mockStatus:   http.StatusOK,
			expectedText: "",
		},
		{
			name:         "API error - unauthorized",
			mockResponse: `{"error": {"message": "Invalid API key", "type": "invalid_request_error"}}`,
			mockStatus:   http.StatusUnauthorized,
			expectedCode: apperrors.CodeAuthentication,
		},
		{
			name:         "API error - rate limit",
			mockResponse: `{"error": {"message": "Rate limit exceeded", "type": "rate_limit_error"}}`,
			mockStatus:   http.StatusTooManyRequests,
			expectedCode: apperrors.CodeRateLimit,
		},
		{
			name:         "API error - quota",
			mockResponse: `{"error": {"message": "You exceeded your current quota", "type": "insufficient_quota", "code": "insufficient_quota"}}`,
			mockStatus:   http.StatusTooManyRequests,
			expectedCode: apperrors.CodeQuota,
		},
		{
			name:         "API error - file too large",
			mockResponse: `{"error": {"message": "Maximum content size limit exceeded", "type": "invalid_request_error"}}`,
			mockStatus:   http.StatusRequestEntityTooLarge,
			expectedCode: apperrors.CodeFileTooLarge,
		},
		{
			name:         "API error - bad request",
			mockResponse: `{"error": {"message": "Invalid file format", "type": "invalid_request_error"}}`,
			mockStatus:   http.StatusBadRequest,
			expectedCode: apperrors.CodeInvalidRequest,
		},
		{
			name:         "API error - server error",
			mockResponse: `{"error": {"message": "Internal server error", "type": "server_error"}}`,
			mockStatus:   http.StatusInternalServerError,
			expectedCode: apperrors.CodeServiceError,
		},
		{
			name:         "non JSON error body",
			mockResponse: "<html>bad gateway</html>",
			mockStatus:   http.StatusBadGateway,
			expectedCode: apperrors.CodeServiceError,
		},
		{
			name:         "network error",
			mockStatus:   0, // the handler drops the connection
			expectedCode: apperrors.CodeNetwork,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if tt.mockStatus == 0 {
					if hijacker, ok := w.(http.Hijacker); ok {
						conn, _, _ := hijacker.Hijack()
						conn.Close()
						return
					}
				}

				if r.Header.Get("Authorization") == "" {
					t.Error("Missing Authorization header")
				}
				if !strings.HasSuffix(r.URL.Path, "/audio/transcriptions") {
					t.Errorf("Unexpected path %s", r.URL.Path)
				}
				if err := r.ParseMultipartForm(32 << 20); err != nil {
					t.Errorf("Failed to parse multipart form: %v", err)
				}
				if got := r.FormValue("model"); got != "whisper-1" {
					t.Errorf("Expected model whisper-1, got %s", got)
				}
				if got := r.FormValue("language"); got != "pt" {
					t.Errorf("Expected language pt, got %s", got)
				}
				if got := r.FormValue("response_format"); got != "text" {
					t.Errorf("Expected response_format text, got %s", got)
				}
				if got := r.FormValue("prompt"); got != "technical terms" {
					t.Errorf("Expected prompt to be forwarded, got %q", got)
				}
				file, header, err := r.FormFile("file")
				if err != nil {
					t.Errorf("Failed to get file from form: %v", err)
				} else {
					defer file.Close()
					body, _ := io.ReadAll(file)
					if string(body) != "fake mp3 bytes" {
						t.Errorf("Unexpected upload body %q", body)
					}
					if header.Filename != "talk.mp3" {
						t.Errorf("Unexpected filename %s", header.Filename)
					}
				}

				w.WriteHeader(tt.mockStatus)
				w.Write([]byte(tt.mockResponse))
			}))
			defer server.Close()

			rt := newTestTranscriber(server.URL)
			result, err := rt.Transcribe(context.Background(), api.Request{
				Audio:    strings.NewReader("fake mp3 bytes"),
				Filename: "talk.mp3",
				Language: "pt",
				Prompt:   "technical terms",
			})

			if tt.expectedCode != "" {
				if err == nil {
					t.Fatalf("Expected error but got none")
				}
				if !stderrors.Is(err, apperrors.ErrRemoteService) {
					t.Errorf("Expected remote service failure, got %v", err)
				}
				if code := apperrors.CodeOf(err); code != tt.expectedCode {
					t.Errorf("Expected code %s, got %s (%v)", tt.expectedCode, code, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if result != tt.expectedText {
				t.Errorf("Expected text '%s', got '%s'", tt.expectedText, result)
			}
		})
	}
}

// TestRemoteTranscriber_NoPrompt checks that an empty prompt is not sent
func TestRemoteTranscriber_NoPrompt(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(32 << 20); err != nil {
			t.Errorf("Failed to parse multipart form: %v", err)
		}
		if _, ok := r.MultipartForm.Value["prompt"]; ok {
			t.Error("prompt field should be omitted when empty")
		}
		w.Write([]byte("ok"))
	}))
	defer server.Close()

	text, err := newTestTranscriber(server.URL).Transcribe(context.Background(), api.Request{
		Audio:    strings.NewReader("x"),
		Language: "pt",
	})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if text != "ok" {
		t.Errorf("Expected 'ok', got '%s'", text)
	}
}

// TestRemoteTranscriber_Timeout tests that a cancelled context is classified
func TestRemoteTranscriber_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(500 * time.Millisecond)
		w.Write([]byte("too late"))
	}))
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := newTestTranscriber(server.URL).Transcribe(ctx, api.Request{
		Audio:    strings.NewReader("x"),
		Language: "pt",
	})
	if err == nil {
		t.Fatal("Expected timeout error, got none")
	}
	if code := apperrors.CodeOf(err); code != apperrors.CodeNetwork {
		t.Errorf("Expected network_error, got %s", code)
	}
	if !strings.Contains(err.Error(), "timed out") {
		t.Errorf("Expected timeout message, got %q", err.Error())
	}
}

// TestRemoteTranscriber_Cancelled tests that a cancellation is not reported as a timeout
func TestRemoteTranscriber_Cancelled(t *testing.T) {
	started := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		close(started)
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		<-started
		cancel()
	}()

	_, err := newTestTranscriber(server.URL).Transcribe(ctx, api.Request{
		Audio:    strings.NewReader("x"),
		Language: "pt",
	})
	if err == nil {
		t.Fatal("Expected cancellation error, got none")
	}
	if code := apperrors.CodeOf(err); code != apperrors.CodeNetwork {
		t.Errorf("Expected network_error, got %s", code)
	}
	if !strings.Contains(err.Error(), "was cancelled") {
		t.Errorf("Expected cancellation message, got %q", err.Error())
	}
	if !stderrors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled in chain, got %v", err)
	}
}
