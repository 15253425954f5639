package types

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestError_ChainingAndHelpers(t *testing.T) {
	t.Parallel()

	root := errors.New("root")
	err := NewError(ErrRateLimited, "too many requests").
		WithCause(root).
		WithHTTPStatus(429).
		WithRetryable(true).
		WithProvider("gemini").
		WithRetryAfter(3 * time.Second)

	assert.Equal(t, ErrRateLimited, GetErrorCode(err))
	assert.True(t, IsRetryable(err))
	assert.True(t, errors.Is(err, root))
	assert.Equal(t, 3*time.Second, err.RetryAfter)
	assert.Contains(t, err.Error(), "RATE_LIMITED")
	assert.Contains(t, err.Error(), "root")
}

func TestError_WrappedLookup(t *testing.T) {
	t.Parallel()

	inner := NewError(ErrInvalidImageData, "bad png")
	wrapped := fmt.Errorf("prepare image: %w", inner)

	e, ok := AsError(wrapped)
	require.True(t, ok)
	assert.Same(t, inner, e)
	assert.True(t, IsCode(wrapped, ErrInvalidImageData))
	assert.False(t, IsCode(wrapped, ErrClientError))
	assert.False(t, IsCode(nil, ErrInvalidImageData))
}

func TestError_PlainErrors(t *testing.T) {
	t.Parallel()

	plain := errors.New("plain")
	assert.False(t, IsRetryable(plain))
	assert.Equal(t, ErrorCode(""), GetErrorCode(plain))
	assert.Equal(t, "[EMPTY_RESPONSE] no text", NewError(ErrEmptyResponse, "no text").Error())
}
