package utils

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidationError(t *testing.T) {
	err := NewValidationError("threshold table is empty")
	assert.EqualError(t, err, "threshold table is empty")

	err = NewValidationErrorf("window %d must be positive", -5)
	assert.EqualError(t, err, "window -5 must be positive")
}

func TestNotFoundError(t *testing.T) {
	err := NewNotFoundError("series", "DCOILBRENTEU")
	assert.EqualError(t, err, `series "DCOILBRENTEU" not found`)
	assert.True(t, IsNotFound(err))
	assert.True(t, IsNotFound(fmt.Errorf("loading prices: %w", err)))
	assert.False(t, IsNotFound(NewValidationError("nope")))
	assert.False(t, IsNotFound(nil))
}
