package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWithCauseDoesNotMutateSentinel(t *testing.T) {
	cause := errors.New("exit status 1")
	derived := ErrExtraction.WithCause(cause).WithMessage("ERROR: HTTP Error 404")

	assert.Nil(t, ErrExtraction.Cause)
	assert.Equal(t, "Media extraction failed", ErrExtraction.Message)
	assert.Equal(t, "ERROR: HTTP Error 404", derived.Message)
	assert.ErrorIs(t, derived, cause)
}

func TestIsMatchesByCode(t *testing.T) {
	wrapped := fmt.Errorf("download: %w", ErrExtractionTimeout.WithCause(errors.New("deadline")))

	assert.ErrorIs(t, wrapped, ErrExtractionTimeout)
	assert.NotErrorIs(t, wrapped, ErrExtraction)
	assert.True(t, IsCustomError(wrapped))
}

func TestStatusAndCodeHelpers(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"validation", ErrValidation, 400, "VALIDATION_ERROR"},
		{"unsupported", ErrUnsupportedSource, 400, "UNSUPPORTED_SOURCE"},
		{"unauthorized", ErrUnauthorized, 401, "UNAUTHORIZED"},
		{"proxy", ErrProxyFetch, 400, "PROXY_FETCH_ERROR"},
		{"plain error", errors.New("boom"), 500, "UNKNOWN_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.status, GetStatusCode(tt.err))
			assert.Equal(t, tt.code, GetErrorCode(tt.err))
		})
	}
}

func TestReasons(t *testing.T) {
	err := ErrValidation.WithDetails("Invalid URL", "URL must use http or https")
	assert.Equal(t, "Invalid URL, URL must use http or https", Reasons(err))
	assert.Empty(t, ErrValidation.Details)

	assert.Equal(t, "Not Supported", Reasons(ErrUnsupportedSource))
	assert.Equal(t, "boom", Reasons(errors.New("boom")))
}
