package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"

	apperrors "app-transcript/internal/app/errors"
)

// ErrorKind represents different types of API errors
type ErrorKind string

const (
	KindValidation    ErrorKind = "validation"
	KindNotFound      ErrorKind = "not_found"
	KindInternal      ErrorKind = "internal"
	KindBadRequest    ErrorKind = "bad_request"
	KindTooLarge      ErrorKind = "too_large"
	KindNoAudioTrack  ErrorKind = "no_audio_track"
	KindMediaDecode   ErrorKind = "media_decode_failure"
	KindRemoteService ErrorKind = "remote_service_failure"
)

// APIError represents a structured API error response
type APIError struct {
	Kind      ErrorKind         `json:"kind"`
	Message   string            `json:"message"`
	Details   map[string]string `json:"details,omitempty"`
	RequestID string            `json:"request_id,omitempty"`
	Code      string            `json:"code,omitempty"`
}

// Error implements the error interface
func (e *APIError) Error() string {
	return e.Message
}

// HTTPStatus returns the appropriate HTTP status code for the error kind
func (e *APIError) HTTPStatus() int {
	switch e.Kind {
	case KindValidation, KindNoAudioTrack, KindMediaDecode:
		return http.StatusUnprocessableEntity
	case KindBadRequest:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindTooLarge:
		return http.StatusRequestEntityTooLarge
	case KindRemoteService:
		if e.Code == apperrors.CodeRateLimit || e.Code == apperrors.CodeQuota {
			return http.StatusTooManyRequests
		}
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// NewValidationError creates a validation error with field details
func NewValidationError(message string, fields map[string]string) *APIError {
	return &APIError{
		Kind:    KindValidation,
		Message: message,
		Details: fields,
	}
}

// NewNotFoundError creates a not found error
func NewNotFoundError(resource string) *APIError {
	return &APIError{
		Kind:    KindNotFound,
		Message: fmt.Sprintf("%s not found", resource),
	}
}

// NewInternalError creates an internal server error
func NewInternalError(message string) *APIError {
	return &APIError{
		Kind:    KindInternal,
		Message: message,
	}
}

// NewBadRequestError creates a bad request error
func NewBadRequestError(message string) *APIError {
	return &APIError{
		Kind:    KindBadRequest,
		Message: message,
	}
}

// NewTooLargeError creates an upload size error
func NewTooLargeError(limitMB int64) *APIError {
	return &APIError{
		Kind:    KindTooLarge,
		Message: fmt.Sprintf("Arquivo maior que o limite de %d MB", limitMB),
	}
}

// FromAppError converts a classified flow error into an API error carrying
// the message shown to the user
func FromAppError(err error) *APIError {
	if err == nil {
		return nil
	}

	var apiErr *APIError
	if stderrors.As(err, &apiErr) {
		return apiErr
	}

	switch apperrors.KindOf(err) {
	case apperrors.KindNoAudioTrack:
		return &APIError{Kind: KindNoAudioTrack, Message: "O vídeo não contém faixa de áudio."}
	case apperrors.KindMediaDecode:
		return &APIError{Kind: KindMediaDecode, Message: fmt.Sprintf("Erro ao processar vídeo: %v", err)}
	case apperrors.KindRemoteService:
		return &APIError{
			Kind:    KindRemoteService,
			Message: fmt.Sprintf("Erro ao transcrever áudio: %v", err),
			Code:    apperrors.CodeOf(err),
		}
	case apperrors.KindInvalidUpload:
		return NewValidationError(err.Error(), map[string]string{"file": "invalid file type"})
	default:
		return NewInternalError("Internal server error")
	}
}
