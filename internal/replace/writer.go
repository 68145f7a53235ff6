package replace

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/tliron/commonlog"
	"gramgrep/internal/errors"
	"gramgrep/internal/hooks"
)

var log = commonlog.GetLogger("gramgrep.replace")

// Applier writes edit maps back to their files. Checkout, when set, is
// run with $1 bound to the path of a file that is not writable.
type Applier struct {
	Runner   *hooks.Runner
	Checkout string
}

// WriteFile applies m to the file at path. An empty map writes nothing.
func (a *Applier) WriteFile(ctx context.Context, path string, m *Map) error {
	if m.Len() == 0 {
		return nil
	}

	info, err := os.Stat(path)
	if err != nil {
		return &errors.IOError{Op: "stat", Path: path, Err: err}
	}

	if !writable(path) {
		if a.Checkout == "" || a.Runner == nil {
			return &errors.IOError{Op: "write", Path: path, Err: os.ErrPermission}
		}
		if err := a.Runner.Run(ctx, a.Checkout, path); err != nil {
			return err
		}
		if !writable(path) {
			return &errors.IOError{Op: "write", Path: path, Err: fmt.Errorf("still read-only after checkout: %w", os.ErrPermission)}
		}
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return &errors.IOError{Op: "read", Path: path, Err: err}
	}
	updated, err := Apply(content, m)
	if err != nil {
		return &errors.IOError{Op: "apply edits to", Path: path, Err: err}
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return &errors.IOError{Op: "write", Path: path, Err: err}
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(updated); err != nil {
		tmp.Close()
		return &errors.IOError{Op: "write", Path: path, Err: err}
	}
	if err := tmp.Close(); err != nil {
		return &errors.IOError{Op: "write", Path: path, Err: err}
	}
	if err := os.Chmod(tmp.Name(), info.Mode().Perm()); err != nil {
		return &errors.IOError{Op: "chmod", Path: path, Err: err}
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return &errors.IOError{Op: "write", Path: path, Err: err}
	}
	log.Infof("wrote %d edits to %s", m.Len(), path)
	return nil
}
