package gemini

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"google.golang.org/genai"

	"app-transcript/internal/app/api"
	apperrors "app-transcript/internal/app/errors"
)

const DefaultModel = "gemini-2.5-flash"

// Transcriber sends audio inline to a Gemini model and asks for a verbatim
// plain-text transcript.
type Transcriber struct {
	client *genai.Client
	model  string
}

// NewTranscriber creates a Gemini-backed transcriber. An empty baseURL keeps
// the public endpoint.
func NewTranscriber(ctx context.Context, apiKey, baseURL, model string) (*Transcriber, error) {
	cfg := &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	}
	if baseURL != "" {
		cfg.HTTPOptions = genai.HTTPOptions{BaseURL: baseURL}
	}

	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	if model == "" {
		model = DefaultModel
	}
	return &Transcriber{client: client, model: model}, nil
}

// Transcribe implements api.Transcriber
func (t *Transcriber) Transcribe(ctx context.Context, req api.Request) (string, error) {
	data, err := io.ReadAll(req.Audio)
	if err != nil {
		return "", apperrors.Wrap(err, apperrors.KindInternal, "failed to read audio")
	}

	contents := []*genai.Content{
		genai.NewContentFromParts([]*genai.Part{
			genai.NewPartFromText(instruction(req)),
			genai.NewPartFromBytes(data, "audio/mpeg"),
		}, genai.RoleUser),
	}

	resp, err := t.client.Models.GenerateContent(ctx, t.model, contents, &genai.GenerateContentConfig{
		Temperature: genai.Ptr[float32](0),
	})
	if err != nil {
		return "", classify(ctx, err)
	}
	if resp == nil || len(resp.Candidates) == 0 {
		return "", apperrors.Remote(errors.New("no candidates"), apperrors.CodeMalformedResponse, "Gemini returned no transcript")
	}

	return strings.TrimSpace(resp.Text()), nil
}

func instruction(req api.Request) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Transcribe this audio verbatim. The spoken language is %q. ", req.Language)
	b.WriteString("Reply with the plain transcript text only, without timestamps or commentary.")
	if req.Prompt != "" {
		fmt.Fprintf(&b, "\nVocabulary and context hints: %s", req.Prompt)
	}
	return b.String()
}

func classify(ctx context.Context, err error) error {
	status := 0
	var apiErr genai.APIError
	var apiErrPtr *genai.APIError
	switch {
	case errors.As(err, &apiErr):
		status = apiErr.Code
	case errors.As(err, &apiErrPtr):
		status = apiErrPtr.Code
	}

	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return apperrors.Remote(err, apperrors.CodeAuthentication, "Gemini API key is invalid or missing")
	case status == http.StatusTooManyRequests:
		return apperrors.Remote(err, apperrors.CodeQuota, "Gemini quota or rate limit exceeded")
	case status == http.StatusRequestEntityTooLarge:
		return apperrors.Remote(err, apperrors.CodeFileTooLarge, "audio file is too large for Gemini")
	case status >= 400 && status < 500:
		return apperrors.Remote(err, apperrors.CodeInvalidRequest, "Gemini rejected the request")
	case status >= 500:
		return apperrors.Remote(err, apperrors.CodeServiceError, "Gemini service error")
	case errors.Is(ctx.Err(), context.DeadlineExceeded):
		return apperrors.Remote(err, apperrors.CodeNetwork, "transcription request timed out")
	case ctx.Err() != nil:
		return apperrors.Remote(err, apperrors.CodeNetwork, "transcription request was cancelled")
	default:
		return apperrors.Remote(err, apperrors.CodeNetwork, "could not reach Gemini")
	}
}
