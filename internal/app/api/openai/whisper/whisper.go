package whisper

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/sashabaranov/go-openai"

	"app-transcript/internal/app/api"
	apperrors "app-transcript/internal/app/errors"
)

// RemoteTranscriber implements remote transcription using the OpenAI API.
type RemoteTranscriber struct {
	client *openai.Client
	model  string
}

// NewRemoteTranscriber creates a new RemoteTranscriber instance.
func NewRemoteTranscriber(client *openai.Client, model string) *RemoteTranscriber {
	if model == "" {
		model = openai.Whisper1
	}
	return &RemoteTranscriber{client: client, model: model}
}

// Transcribe sends the audio with a fixed language and asks for plain text.
func (rt *RemoteTranscriber) Transcribe(ctx context.Context, req api.Request) (string, error) {
	filename := req.Filename
	if filename == "" {
		filename = "audio.mp3"
	}

	resp, err := rt.client.CreateTranscription(ctx, openai.AudioRequest{
		Model:    rt.model,
		FilePath: filename,
		Reader:   req.Audio,
		Prompt:   req.Prompt,
		Language: req.Language,
		Format:   openai.AudioResponseFormatText,
	})
	if err != nil {
		return "", classify(ctx, err)
	}

	return strings.TrimSpace(resp.Text), nil
}

// classify maps go-openai failures onto remote service error codes
func classify(ctx context.Context, err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		if apiErr.HTTPStatusCode == http.StatusTooManyRequests && apiErr.Code == "insufficient_quota" {
			return apperrors.Remote(err, apperrors.CodeQuota, "OpenAI quota exhausted")
		}
		return byStatus(err, apiErr.HTTPStatusCode)
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return byStatus(err, reqErr.HTTPStatusCode)
	}

	var syntaxErr *json.SyntaxError
	if errors.As(err, &syntaxErr) {
		return apperrors.Remote(err, apperrors.CodeMalformedResponse, "OpenAI returned a malformed response")
	}

	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return apperrors.Remote(err, apperrors.CodeNetwork, "transcription request timed out")
	}
	if ctx.Err() != nil {
		return apperrors.Remote(err, apperrors.CodeNetwork, "transcription request was cancelled")
	}
	return apperrors.Remote(err, apperrors.CodeNetwork, "could not reach OpenAI")
}

func byStatus(err error, status int) error {
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return apperrors.Remote(err, apperrors.CodeAuthentication, "OpenAI API key is invalid or missing")
	case status == http.StatusTooManyRequests:
		return apperrors.Remote(err, apperrors.CodeRateLimit, "OpenAI API rate limit exceeded")
	case status == http.StatusRequestEntityTooLarge:
		return apperrors.Remote(err, apperrors.CodeFileTooLarge, "audio file is too large for OpenAI API")
	case status >= 400 && status < 500:
		return apperrors.Remote(err, apperrors.CodeInvalidRequest, "OpenAI rejected the request")
	case status >= 500:
		return apperrors.Remote(err, apperrors.CodeServiceError, "OpenAI service error")
	default:
		return apperrors.Remote(err, apperrors.CodeServiceError, fmt.Sprintf("OpenAI API error (status %d)", status))
	}
}
