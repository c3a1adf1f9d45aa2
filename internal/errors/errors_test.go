package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppError(t *testing.T) {
	t.Run("Error formatting", func(t *testing.T) {
		err := NewValidationError("table is empty", nil)
		assert.Equal(t, "[VALIDATION] table is empty", err.Error())

		cause := stderrors.New("bad date")
		wrapped := NewParsingError("coerce Date column", cause)
		assert.Equal(t, "[PARSING] coerce Date column: bad date", wrapped.Error())
	})

	t.Run("Unwrap", func(t *testing.T) {
		cause := stderrors.New("root cause")
		err := NewValidationError("outer", cause)
		assert.True(t, stderrors.Is(err, cause))
	})

	t.Run("WithContext", func(t *testing.T) {
		err := NewInsufficientDataError("too few returns", nil).
			WithContext("ticker", "AAPL").
			WithContext("returns", 1)
		assert.Equal(t, "AAPL", err.Context["ticker"])
		assert.Equal(t, 1, err.Context["returns"])
	})
}

func TestTypeHelpers(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		errType ErrorType
		match   bool
	}{
		{"validation error", NewValidationError("bad", nil), ErrTypeValidation, true},
		{"mismatch error", NewMismatchError("tickers", nil), ErrTypeMismatch, true},
		{"overlap error", NewInsufficientOverlapError("no dates", nil), ErrTypeInsufficientOverlap, true},
		{"wrong type", NewConfigError("cfg", nil), ErrTypeValidation, false},
		{"plain error", stderrors.New("plain"), ErrTypeValidation, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.match, IsType(tt.err, tt.errType))
		})
	}

	t.Run("GetType through wrapping", func(t *testing.T) {
		inner := NewInsufficientDataError("only 1 return", nil)
		outer := fmt.Errorf("build series: %w", inner)
		require.Equal(t, ErrTypeInsufficientData, GetType(outer))
		assert.True(t, IsType(outer, ErrTypeInsufficientData))
	})

	t.Run("GetType on plain error", func(t *testing.T) {
		assert.Equal(t, ErrorType(""), GetType(stderrors.New("x")))
	})
}
