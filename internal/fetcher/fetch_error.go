package fetcher

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
)

// ErrorType classifies fetch failures so callers can log them at the right level.
type ErrorType string

const (
	ErrTypeRateLimited ErrorType = "rate_limited"
	ErrTypeForbidden   ErrorType = "forbidden"
	ErrTypeNotFound    ErrorType = "not_found"
	ErrTypeGone        ErrorType = "gone"
	ErrTypeUpstream    ErrorType = "upstream_failure"
	ErrTypeTimeout     ErrorType = "timeout"
	ErrTypeNetwork     ErrorType = "network"
	ErrTypeRead        ErrorType = "read"
	ErrTypeTooLarge    ErrorType = "too_large"
	ErrTypeUnexpected  ErrorType = "unexpected"
)

// LogLevel says whether a FetchError deserves WARN or ERROR.
type LogLevel int

const (
	LevelWarn LogLevel = iota
	LevelError
)

// FetchError is a classified failure to retrieve a source page.
type FetchError struct {
	Type       ErrorType
	Level      LogLevel
	StatusCode int
	URL        string
	Cause      error
}

func (e *FetchError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("fetch %s: HTTP %d for %s", e.Type, e.StatusCode, e.URL)
	}
	return fmt.Sprintf("fetch %s: %v for %s", e.Type, e.Cause, e.URL)
}

func (e *FetchError) Unwrap() error { return e.Cause }

// ClassifyHTTPStatus builds a FetchError for a non-2xx response.
func ClassifyHTTPStatus(statusCode int, url string) *FetchError {
	e := &FetchError{Level: LevelWarn, StatusCode: statusCode, URL: url, Cause: fmt.Errorf("HTTP %d", statusCode)}

	switch {
	case statusCode == http.StatusTooManyRequests:
		e.Type = ErrTypeRateLimited
	case statusCode == http.StatusForbidden:
		e.Type = ErrTypeForbidden
	case statusCode == http.StatusNotFound:
		e.Type = ErrTypeNotFound
	case statusCode == http.StatusGone:
		e.Type = ErrTypeGone
	case statusCode >= http.StatusInternalServerError && statusCode <= 599:
		e.Type = ErrTypeUpstream
	default:
		e.Type = ErrTypeUnexpected
		e.Level = LevelError
	}
	return e
}

// ClassifyNetworkError builds a FetchError for transport failures, telling
// timeouts apart from other network errors.
func ClassifyNetworkError(cause error, url string) *FetchError {
	errType := ErrTypeNetwork

	var netErr net.Error
	if errors.Is(cause, context.DeadlineExceeded) || (errors.As(cause, &netErr) && netErr.Timeout()) {
		errType = ErrTypeTimeout
	}

	return &FetchError{Type: errType, Level: LevelWarn, URL: url, Cause: cause}
}

// ClassifyReadError builds a FetchError for a body that could not be read.
func ClassifyReadError(cause error, url string) *FetchError {
	return &FetchError{Type: ErrTypeRead, Level: LevelWarn, URL: url, Cause: cause}
}
