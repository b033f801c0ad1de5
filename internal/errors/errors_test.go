package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_DerivesCategoryFromCode(t *testing.T) {
	tests := []struct {
		code     string
		category Category
	}{
		{ErrCodeConfigInvalid, CategoryConfig},
		{ErrCodePathNotFound, CategoryIO},
		{ErrCodeProviderUnavailable, CategoryProvider},
		{ErrCodeScanInProgress, CategoryValidation},
		{ErrCodeEmbeddingFailed, CategoryInternal},
		{"ERR_999_UNKNOWN", CategoryInternal},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			err := New(tt.code, "boom", nil)
			assert.Equal(t, tt.category, err.Category)
		})
	}
}

func TestNew_RetryableOnlyForProviderOutages(t *testing.T) {
	assert.True(t, New(ErrCodeProviderUnavailable, "down", nil).Retryable)
	assert.True(t, New(ErrCodeProviderTimeout, "slow", nil).Retryable)
	assert.False(t, New(ErrCodeProviderFailed, "bad response", nil).Retryable)
	assert.False(t, New(ErrCodeReadFailure, "io", nil).Retryable)
}

func TestIs_MatchesByCode(t *testing.T) {
	// Given: two errors with the same code but different messages
	a := PathNotFound("/missing/a")
	b := PathNotFound("/missing/b")

	// Then: errors.Is matches them by code
	assert.True(t, stderrors.Is(a, b))
	assert.False(t, stderrors.Is(a, ScanInProgress()))
}

func TestWrap_PreservesCause(t *testing.T) {
	cause := fmt.Errorf("disk on fire")
	err := Wrap(ErrCodeReadFailure, cause)

	require.NotNil(t, err)
	assert.Equal(t, cause, stderrors.Unwrap(err))
	assert.Equal(t, ErrCodeReadFailure, err.Code)
}

func TestWrap_NilReturnsNil(t *testing.T) {
	assert.Nil(t, Wrap(ErrCodeReadFailure, nil))
}

func TestHasCode_SeesThroughWrapping(t *testing.T) {
	inner := ScanInProgress()
	wrapped := fmt.Errorf("start failed: %w", inner)

	assert.True(t, HasCode(wrapped, ErrCodeScanInProgress))
	assert.False(t, HasCode(wrapped, ErrCodePathNotFound))
	assert.Equal(t, "", GetCode(fmt.Errorf("plain")))
}

func TestIsFatal(t *testing.T) {
	assert.True(t, IsFatal(PathNotFound("/gone")))
	assert.False(t, IsFatal(New(ErrCodeReadFailure, "io", nil)))
	assert.False(t, IsFatal(nil))
}

func TestWithDetail_Chains(t *testing.T) {
	err := New(ErrCodeReadFailure, "io", nil).
		WithDetail("path", "/tmp/x").
		WithDetail("attempt", "2")

	assert.Equal(t, "/tmp/x", err.Details["path"])
	assert.Equal(t, "2", err.Details["attempt"])
}
