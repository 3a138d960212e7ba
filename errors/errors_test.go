package errors

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppError_Error(t *testing.T) {
	t.Run("without cause", func(t *testing.T) {
		err := NewValidationError(ErrCodeNoFiles, "no files selected", nil)
		assert.Equal(t, "NO_FILES_SELECTED: no files selected", err.Error())
	})

	t.Run("with cause", func(t *testing.T) {
		cause := fmt.Errorf("boom")
		err := NewExternalServiceError(ErrCodeAnalyzerAPIFailed, "backend failed", cause)
		assert.Contains(t, err.Error(), "backend failed")
		assert.Contains(t, err.Error(), "boom")
		assert.Equal(t, cause, err.Unwrap())
	})
}

func TestAppError_GetHTTPStatusCode(t *testing.T) {
	tests := []struct {
		name     string
		err      *AppError
		expected int
	}{
		{"validation", NewValidationError(ErrCodeInvalidInput, "bad", nil), http.StatusBadRequest},
		{"not found", NewNotFoundError(ErrCodeSessionNotFound, "missing", nil), http.StatusNotFound},
		{"timeout", NewTimeoutError(ErrCodeNetworkTimeout, "slow", nil), http.StatusRequestTimeout},
		{"external", NewExternalServiceError(ErrCodeAnalyzerAPIFailed, "down", nil), http.StatusBadGateway},
		{"network", NewNetworkError(ErrCodeNetworkConnection, "refused", nil), http.StatusBadGateway},
		{"internal", NewInternalError(ErrCodeProcessingError, "oops", nil), http.StatusInternalServerError},
		{"render", NewRenderError(ErrCodeDiagramRenderFailed, "bad diagram", nil), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.err.GetHTTPStatusCode())
		})
	}

	t.Run("explicit status wins", func(t *testing.T) {
		err := NewValidationError(ErrCodeInvalidInput, "bad", nil)
		err.StatusCode = http.StatusUnprocessableEntity
		assert.Equal(t, http.StatusUnprocessableEntity, err.GetHTTPStatusCode())
	})
}

func TestAppError_Retryability(t *testing.T) {
	assert.False(t, NewValidationError(ErrCodeInvalidInput, "bad", nil).IsRetryable())
	assert.False(t, NewNotFoundError(ErrCodeSessionNotFound, "missing", nil).IsRetryable())
	assert.False(t, NewRenderError(ErrCodeDiagramRenderFailed, "bad", nil).IsRetryable())
	assert.True(t, NewExternalServiceError(ErrCodeAnalyzerAPIFailed, "down", nil).IsRetryable())
	assert.True(t, NewNetworkError(ErrCodeNetworkConnection, "refused", nil).IsRetryable())
	assert.True(t, NewTimeoutError(ErrCodeNetworkTimeout, "slow", nil).IsRetryable())
}

func TestWrapError(t *testing.T) {
	t.Run("nil error", func(t *testing.T) {
		assert.Nil(t, WrapError(nil, ErrTypeInternal, ErrCodeProcessingError, "msg"))
	})

	t.Run("plain error gets default retryability", func(t *testing.T) {
		wrapped := WrapError(fmt.Errorf("refused"), ErrTypeNetwork, ErrCodeNetworkConnection, "network failed")
		require.NotNil(t, wrapped)
		assert.True(t, wrapped.Retryable)
	})

	t.Run("app error keeps its retryability", func(t *testing.T) {
		inner := NewValidationError(ErrCodeInvalidInput, "bad", nil)
		wrapped := WrapError(inner, ErrTypeExternal, ErrCodeAnalyzerAPIFailed, "wrapped")
		assert.False(t, wrapped.Retryable)
	})
}

func TestUserMessage(t *testing.T) {
	t.Run("detail preferred", func(t *testing.T) {
		err := NewExternalServiceError(ErrCodeAnalyzerAPIFailed, "backend error", nil)
		err.Details = "Repository is too large"
		assert.Equal(t, "Repository is too large", UserMessage(err, "fallback"))
	})

	t.Run("fallback when no detail", func(t *testing.T) {
		err := NewExternalServiceError(ErrCodeAnalyzerAPIFailed, "backend error", nil)
		assert.Equal(t, "fallback", UserMessage(err, "fallback"))
	})

	t.Run("fallback for plain errors", func(t *testing.T) {
		assert.Equal(t, "fallback", UserMessage(fmt.Errorf("boom"), "fallback"))
	})
}
