package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, ""},
		{"domain error", Invalid("op", "bad input"), EINVALID},
		{"wrapped domain error", fmt.Errorf("outer: %w", Unauthorized("op", "nope")), EUNAUTHORIZED},
		{"plain error", errors.New("boom"), EINTERNAL},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ErrorCode(tt.err))
		})
	}
}

func TestErrorMessage(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, ""},
		{"user-facing message", Invalid("op", "Name is required"), "Name is required"},
		{"internal hides detail", Internal(errors.New("sql: broken"), "op", "sql: broken"), "An internal error occurred. Please try again later."},
		{"plain error hides detail", errors.New("boom"), "An internal error occurred. Please try again later."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ErrorMessage(tt.err))
		})
	}
}

func TestNotFoundMessage(t *testing.T) {
	err := NotFound("users.get", "user", "7")
	assert.Equal(t, ENOTFOUND, ErrorCode(err))
	assert.Equal(t, `user with ID "7" not found`, ErrorMessage(err))
}

func TestValidationErrorFields(t *testing.T) {
	err := NewValidationError("geoform.submit", "name", "Name is required")
	err = AddFieldError(err, "latitude", "Latitude must be a number")

	assert.Len(t, err.Fields, 2)
	assert.Equal(t, "Name is required", err.Fields["name"])
	assert.Equal(t, "Latitude must be a number", err.Fields["latitude"])
}

func TestErrorUnwrap(t *testing.T) {
	underlying := errors.New("connection refused")
	err := Transport(underlying, "users.list")
	assert.True(t, errors.Is(err, underlying))
	assert.Equal(t, ETRANSPORT, ErrorCode(err))
}
