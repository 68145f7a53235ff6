//go:build !windows

package hooks

import (
	"context"
	goerrors "errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gramgrep/internal/errors"
)

func TestOutput(t *testing.T) {
	out, err := NewRunner().Output(context.Background(), "printf 'a b'")
	require.NoError(t, err)
	assert.Equal(t, "a b", out)
}

func TestOutputFailure(t *testing.T) {
	_, err := NewRunner().Output(context.Background(), "echo oops >&2; exit 3")
	var ce *errors.ExternalCommandError
	require.True(t, goerrors.As(err, &ce))
	assert.Contains(t, ce.Error(), "oops")
}

func TestRunBindsPath(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "touched")
	require.NoError(t, NewRunner().Run(context.Background(), `touch "$1"`, target))
	_, err := os.Stat(target)
	assert.NoError(t, err)

	assert.NoError(t, NewRunner().Run(context.Background(), "", target))
}

func TestRunHonoursContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.Error(t, NewRunner().Run(ctx, "sleep 5", ""))
}
