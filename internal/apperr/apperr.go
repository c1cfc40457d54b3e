// Package apperr defines the closed set of error kinds the service
// distinguishes between (spec §7) and the mapping from kind to HTTP status,
// applied centrally by the Echo error handler in internal/server.
package apperr

import "fmt"

// Kind is a closed tagged union of the ways a request can fail.
type Kind string

const (
	InvalidRequest    Kind = "invalid_request"
	NotFound          Kind = "not_found"
	UpstreamTransient Kind = "upstream_transient"
	UpstreamFatal     Kind = "upstream_fatal"
	RateLimited       Kind = "rate_limited"
	Forbidden         Kind = "forbidden"
	Internal          Kind = "internal"
)

// AppError carries a Kind alongside a human-readable message and the
// wrapped cause, following the teacher's plain fmt.Errorf("...: %w", err)
// wrapping convention.
type AppError struct {
	Kind    Kind
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// New builds an AppError with no wrapped cause.
func New(kind Kind, message string) *AppError {
	return &AppError{Kind: kind, Message: message}
}

// Newf builds an AppError with a formatted message.
func Newf(kind Kind, format string, args ...any) *AppError {
	return &AppError{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap builds an AppError around an existing error.
func Wrap(kind Kind, message string, cause error) *AppError {
	return &AppError{Kind: kind, Message: message, Cause: cause}
}

// As extracts the Kind of err if it is (or wraps) an *AppError, defaulting
// to Internal for anything else.
func As(err error) Kind {
	if err == nil {
		return ""
	}
	var appErr *AppError
	if ok := asAppError(err, &appErr); ok {
		return appErr.Kind
	}
	return Internal
}

func asAppError(err error, target **AppError) bool {
	for err != nil {
		if ae, ok := err.(*AppError); ok {
			*target = ae
			return true
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}

// StatusCode maps a Kind to its HTTP status per spec §7 / §6.
func StatusCode(kind Kind) int {
	switch kind {
	case InvalidRequest, NotFound:
		return 400
	case Forbidden:
		return 403
	case RateLimited:
		return 429
	case UpstreamFatal:
		return 503
	default:
		return 500
	}
}
