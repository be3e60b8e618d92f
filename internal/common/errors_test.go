package common

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidationError_IsErrorValidation(t *testing.T) {
	err := NewValidationError("Invalid role")

	assert.True(t, errors.Is(err, ErrorValidation))
	assert.Equal(t, "validation error: Invalid role", err.Error())

	wrapped := fmt.Errorf("signup: %w", err)
	assert.True(t, errors.Is(wrapped, ErrorValidation))

	var ve *ValidationError
	if assert.True(t, errors.As(wrapped, &ve)) {
		assert.Equal(t, "Invalid role", ve.Msg)
	}
}

func TestValidationError_DoesNotMatchOtherSentinels(t *testing.T) {
	err := NewValidationError("x")
	assert.False(t, errors.Is(err, ErrorNotFound))
	assert.False(t, errors.Is(err, ErrInvalidCredentials))
}
