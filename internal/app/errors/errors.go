package errors

import (
	stderrors "errors"
	"fmt"
)

// Kind classifies a failure so the presentation layer can pick a message
type Kind string

const (
	KindNoAudioTrack  Kind = "no_audio_track"
	KindMediaDecode   Kind = "media_decode_failure"
	KindRemoteService Kind = "remote_service_failure"
	KindInvalidUpload Kind = "invalid_upload"
	KindInternal      Kind = "internal"
)

// Remote failure codes carried by KindRemoteService errors
const (
	CodeAuthentication    = "authentication_failed"
	CodeRateLimit         = "rate_limit_exceeded"
	CodeQuota             = "quota_exceeded"
	CodeFileTooLarge      = "file_too_large"
	CodeInvalidRequest    = "invalid_request"
	CodeServiceError      = "service_error"
	CodeNetwork           = "network_error"
	CodeMalformedResponse = "malformed_response"
)

// Sentinels usable with errors.Is; matching is by kind only
var (
	ErrNoAudioTrack  = New(KindNoAudioTrack, "video has no audio track")
	ErrMediaDecode   = New(KindMediaDecode, "media could not be decoded")
	ErrRemoteService = New(KindRemoteService, "transcription service failed")
	ErrInvalidUpload = New(KindInvalidUpload, "invalid upload")
)

// Error is a classified error with an optional cause
type Error struct {
	Kind    Kind
	Code    string
	Message string
	cause   error
}

// New creates a classified error
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Newf creates a classified error with a formatted message
func Newf(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a kind and message to err
func Wrap(err error, kind Kind, message string) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Message: message, cause: err}
}

// Remote wraps a transcription service failure with its code
func Remote(err error, code string, message string) error {
	return &Error{Kind: KindRemoteService, Code: code, Message: message, cause: err}
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.cause)
	}
	return e.Message
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.cause
}

// Is reports whether target is an *Error of the same kind
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

// KindOf returns the kind of the first *Error in err's chain, or KindInternal
func KindOf(err error) Kind {
	var e *Error
	if stderrors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// CodeOf returns the remote failure code of err, if any
func CodeOf(err error) string {
	var e *Error
	if stderrors.As(err, &e) {
		return e.Code
	}
	return ""
}
