package cli

import (
	"errors"
	"testing"

	"github.com/alecthomas/assert/v2"
)

func TestCommandError(t *testing.T) {
	t.Run("implements error interface", func(t *testing.T) {
		err := NewCommandError(1)
		assert.Error(t, err)
	})

	t.Run("returns exit code", func(t *testing.T) {
		err := NewCommandError(42)
		assert.Equal(t, err.ExitCode(), 42)
	})

	t.Run("supports errors.As", func(t *testing.T) {
		var err error = NewCommandError(1)
		var cmdErr *CommandError
		assert.True(t, errors.As(err, &cmdErr))
		assert.Equal(t, cmdErr.ExitCode(), 1)
	})
}
