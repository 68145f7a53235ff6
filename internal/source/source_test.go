package source

import (
	goerrors "errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gramgrep/internal/errors"
)

func TestOpen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.txt")
	require.NoError(t, os.WriteFile(path, []byte("line one\nline two\n"), 0o644))

	f, err := Open(path)
	require.NoError(t, err)
	assert.Equal(t, "line one\nline two\n", string(f.Data))
	require.NoError(t, f.Close())
	assert.NoError(t, f.Close())
}

func TestOpenEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.txt")
	require.NoError(t, os.WriteFile(path, nil, 0o644))

	f, err := Open(path)
	require.NoError(t, err)
	defer f.Close()
	assert.Empty(t, f.Data)
}

func TestOpenErrors(t *testing.T) {
	dir := t.TempDir()
	var ioErr *errors.IOError

	_, err := Open(filepath.Join(dir, "missing"))
	require.True(t, goerrors.As(err, &ioErr))
	assert.Equal(t, "open", ioErr.Op)

	_, err = Open(dir)
	require.True(t, goerrors.As(err, &ioErr))
}
