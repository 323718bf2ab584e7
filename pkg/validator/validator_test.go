package validator

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/beanbocchi/lakeprobe/internal/model"
)

type inner struct {
	Level string `mapstructure:"level" validate:"required,oneof=debug info"`
}

type outer struct {
	Log   inner `mapstructure:"log"`
	Count int   `validate:"gte=1"`
}

func TestValidate(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		assert.NoError(t, Validate(outer{Log: inner{Level: "info"}, Count: 1}))
	})

	t.Run("keyed by config path", func(t *testing.T) {
		err := Validate(outer{Log: inner{Level: "trace"}})
		require.Error(t, err)
		assert.True(t, errors.Is(err, model.ErrValidation))
		assert.Contains(t, err.Error(), `"log.level"`)
		assert.Contains(t, err.Error(), `"Count"`)
		assert.Contains(t, err.Error(), "must be one of [debug info]")
	})
}
