package errors

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConstructors_RetryableFlags(t *testing.T) {
	tests := []struct {
		name      string
		err       *StandardError
		code      ErrorCode
		retryable bool
	}{
		{"invalid offer type", NewInvalidOfferTypeError("xyz"), ErrCodeInvalidOfferType, false},
		{"validation", NewValidationError("offer_type is required"), ErrCodeValidation, false},
		{"authorization", NewAuthorizationError("forbidden"), ErrCodeAuthorization, false},
		{"authentication", NewAuthenticationError("token expired"), ErrCodeAuthentication, false},
		{"not found", NewNotFoundError("offer", "offerId: 42"), ErrCodeNotFound, false},
		{"timeout", NewTimeoutError("scoring", context.DeadlineExceeded), ErrCodeTimeout, true},
		{"unavailable", NewServiceUnavailableError("scoring", 503, fmt.Errorf("status 503")), ErrCodeServiceUnavailable, true},
		{"in progress", NewAnalysisInProgressError("c1", "o1"), ErrCodeAnalysisInProgress, true},
		{"offer lookup", NewOfferLookupFailedError("o1", fmt.Errorf("conn reset")), ErrCodeOfferLookupFailed, true},
		{"parse", NewParseError("bad json"), ErrCodeParse, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.code, tt.err.Code)
			assert.Equal(t, tt.retryable, tt.err.Retryable)
			assert.Equal(t, tt.retryable, GetRetryCount(tt.code) > 0)
			assert.False(t, tt.err.Timestamp.IsZero())
		})
	}
}

func TestInvalidOfferTypeError_CarriesAlias(t *testing.T) {
	err := NewInvalidOfferTypeError("Stage")

	assert.Equal(t, "Stage", err.Alias())
	assert.Contains(t, err.Error(), "INVALID_OFFER_TYPE")
}

func TestHints(t *testing.T) {
	assert.Equal(t, HintTryAgainShortly, NewTimeoutError("scoring", nil).Hint())
	assert.Equal(t, HintTemporarilyUnavailable, NewServiceUnavailableError("scoring", 502, nil).Hint())
	assert.Empty(t, NewNotFoundError("offer", "").Hint())
}

func TestCodeOf_Wrapped(t *testing.T) {
	wrapped := fmt.Errorf("analyze: %w", NewNotFoundError("candidate", "candidateId: c1"))

	assert.Equal(t, ErrCodeNotFound, CodeOf(wrapped))
	assert.True(t, HasCode(wrapped, ErrCodeNotFound))
	assert.False(t, HasCode(wrapped, ErrCodeTimeout))
	assert.Equal(t, ErrorCode(""), CodeOf(fmt.Errorf("plain")))
	assert.False(t, HasCode(nil, ErrCodeNotFound))
}

func TestNormalize(t *testing.T) {
	stdErr := Normalize(fmt.Errorf("boom"))
	assert.Equal(t, ErrCodeInternal, stdErr.Code)
	assert.Equal(t, "boom", stdErr.Details)

	orig := NewValidationError("bad")
	assert.Same(t, orig, Normalize(fmt.Errorf("wrap: %w", orig)))
}

func TestConvertToBPMNError(t *testing.T) {
	t.Run("retryable timeout", func(t *testing.T) {
		bpmn := ConvertToBPMNError(NewTimeoutError("scoring", context.DeadlineExceeded))

		assert.Equal(t, "COMPATIBILITY_TIMEOUT", bpmn.Code)
		assert.True(t, bpmn.Retryable)
		assert.Equal(t, 2, bpmn.Retries)
		assert.Equal(t, HintTryAgainShortly, bpmn.ErrorVariables["errorHint"])
		assert.Equal(t, "TIMEOUT", bpmn.ErrorVariables["originalErrorCode"])
	})

	t.Run("business error never retried", func(t *testing.T) {
		bpmn := ConvertToBPMNError(NewInvalidOfferTypeError("xyz"))

		assert.Equal(t, "INVALID_OFFER_TYPE", bpmn.Code)
		assert.Equal(t, 0, bpmn.Retries)
		assert.NotContains(t, bpmn.ErrorVariables, "errorHint")
	})

	t.Run("unknown code falls back to itself", func(t *testing.T) {
		bpmn := ConvertToBPMNError(&StandardError{Code: "SOMETHING_ELSE", Message: "x"})
		assert.Equal(t, "SOMETHING_ELSE", bpmn.Code)
	})

	t.Run("retryable code with non-retryable flag", func(t *testing.T) {
		stdErr := NewServiceUnavailableError("scoring", 500, nil)
		stdErr.Retryable = false
		assert.Equal(t, 0, ConvertToBPMNError(stdErr).Retries)
	})
}

func TestBPMNError_ToErrorVariables(t *testing.T) {
	bpmn := &BPMNError{
		Code:           "COMPATIBILITY_NOT_FOUND",
		Message:        "offer not found",
		Details:        "offerId: 1",
		ErrorVariables: map[string]interface{}{"originalErrorCode": "NOT_FOUND"},
	}

	vars := bpmn.ToErrorVariables()
	require.Len(t, vars, 5)
	assert.Equal(t, "COMPATIBILITY_NOT_FOUND", vars["errorCode"])
	assert.Equal(t, "NOT_FOUND", vars["originalErrorCode"])
	assert.Equal(t, false, vars["retryable"])
}

func TestGetErrorCategory(t *testing.T) {
	tests := map[ErrorCode]string{
		ErrCodeAuthentication:     "AUTH",
		ErrCodeAuthorization:      "AUTH",
		ErrCodeTimeout:            "REMOTE",
		ErrCodeServiceUnavailable: "REMOTE",
		ErrCodeOfferLookupFailed:  "DATABASE",
		ErrCodeInvalidOfferType:   "VALIDATION",
		ErrCodeValidation:         "VALIDATION",
		ErrCodeParse:              "VALIDATION",
		ErrCodeNotFound:           "NOT_FOUND",
		ErrCodeAnalysisInProgress: "OTHER",
	}
	for code, want := range tests {
		assert.Equal(t, want, GetErrorCategory(code), string(code))
	}
}
