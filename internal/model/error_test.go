package model

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorIs(t *testing.T) {
	cause := errors.New("connection reset")

	err := fmt.Errorf("upload file: %w", ErrIO.Wrap(cause))
	assert.True(t, errors.Is(err, ErrIO))
	assert.True(t, errors.Is(err, cause))
	assert.False(t, errors.Is(err, ErrValidation))
	assert.Equal(t, "upload file: connection reset", err.Error())

	timeout := ErrIO.Fmt("Upload timed out")
	assert.True(t, errors.Is(timeout, ErrIO))
	assert.Equal(t, "Upload timed out", timeout.Error())
	assert.Equal(t, "io", timeout.Code())
}
