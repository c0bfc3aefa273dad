package fetcher_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jonesrussell/north-cloud/headlines/internal/fetcher"
)

func TestClassifyHTTPStatus(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		statusCode int
		wantType   fetcher.ErrorType
		wantLevel  fetcher.LogLevel
	}{
		{"429 rate limited", http.StatusTooManyRequests, fetcher.ErrTypeRateLimited, fetcher.LevelWarn},
		{"403 forbidden", http.StatusForbidden, fetcher.ErrTypeForbidden, fetcher.LevelWarn},
		{"404 not found", http.StatusNotFound, fetcher.ErrTypeNotFound, fetcher.LevelWarn},
		{"410 gone", http.StatusGone, fetcher.ErrTypeGone, fetcher.LevelWarn},
		{"502 bad gateway", http.StatusBadGateway, fetcher.ErrTypeUpstream, fetcher.LevelWarn},
		{"599 max server error", 599, fetcher.ErrTypeUpstream, fetcher.LevelWarn},
		{"304 not modified", http.StatusNotModified, fetcher.ErrTypeUnexpected, fetcher.LevelError},
		{"418 teapot", http.StatusTeapot, fetcher.ErrTypeUnexpected, fetcher.LevelError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := fetcher.ClassifyHTTPStatus(tt.statusCode, "https://example.com")
			assert.Equal(t, tt.wantType, err.Type)
			assert.Equal(t, tt.wantLevel, err.Level)
			assert.Equal(t, tt.statusCode, err.StatusCode)
			assert.Contains(t, err.Error(), "https://example.com")
		})
	}
}

func TestClassifyNetworkError_DetectsTimeout(t *testing.T) {
	t.Parallel()

	wrapped := fmt.Errorf("do: %w", context.DeadlineExceeded)
	assert.Equal(t, fetcher.ErrTypeTimeout, fetcher.ClassifyNetworkError(wrapped, "u").Type)
	assert.Equal(t, fetcher.ErrTypeNetwork, fetcher.ClassifyNetworkError(errors.New("refused"), "u").Type)
}

func TestFetchError_Unwrap(t *testing.T) {
	t.Parallel()

	cause := errors.New("connection reset")
	err := fetcher.ClassifyReadError(cause, "https://example.com")

	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "connection reset")
}
