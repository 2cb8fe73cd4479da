package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *AppError
		expected string
	}{
		{
			name:     "without cause",
			err:      NewValidationError("student id must not be empty", nil),
			expected: "[VALIDATION] student id must not be empty",
		},
		{
			name:     "with cause",
			err:      NewStorageError("open marks.csv", errors.New("permission denied")),
			expected: "[STORAGE] open marks.csv: permission denied",
		},
		{
			name:     "config",
			err:      NewConfigError("invalid delimiter", nil),
			expected: "[CONFIG] invalid delimiter",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.err.Error())
		})
	}
}

func TestAppError_Unwrap(t *testing.T) {
	cause := errors.New("disk full")
	err := fmt.Errorf("export: %w", NewAppError(ErrTypeExport, "write out.csv", cause))

	assert.ErrorIs(t, err, cause)
	assert.True(t, IsAppError(err))
	assert.Equal(t, ErrTypeExport, GetErrorType(err))

	assert.False(t, IsAppError(cause))
	assert.Equal(t, ErrorType(""), GetErrorType(cause))
}

func TestNewNotFoundError(t *testing.T) {
	err := NewNotFoundError("S042")

	assert.ErrorIs(t, err, ErrStudentNotFound)
	assert.Equal(t, ErrTypeNotFound, err.Type)
	require.NotNil(t, err.Context)
	assert.Equal(t, "S042", err.Context["student_id"])
}

func TestAppError_WithContext(t *testing.T) {
	err := NewValidationError("bad row", nil).
		WithContext("source", "marks.csv").
		WithContext("line", 3)

	assert.Equal(t, map[string]interface{}{"source": "marks.csv", "line": 3}, err.Context)
}
