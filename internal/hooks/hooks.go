// Package hooks runs the user's shell commands: startup, shutdown and
// checkout hooks and the exec() action builtin.
package hooks

import (
	"bytes"
	"context"
	"os/exec"
	"runtime"

	"github.com/tliron/commonlog"
	"gramgrep/internal/errors"
)

var log = commonlog.GetLogger("gramgrep.hooks")

// Runner executes command lines through the platform shell.
type Runner struct {
	Shell []string
	Dir   string
}

// NewRunner returns a Runner using sh -c, or cmd /C on Windows.
func NewRunner() *Runner {
	if runtime.GOOS == "windows" {
		return &Runner{Shell: []string{"cmd", "/C"}}
	}
	return &Runner{Shell: []string{"sh", "-c"}}
}

func (r *Runner) command(ctx context.Context, line string, args ...string) *exec.Cmd {
	argv := append(append([]string(nil), r.Shell...), line)
	if len(args) > 0 && len(r.Shell) > 0 && r.Shell[0] == "sh" {
		// sh -c LINE NAME ARGS... binds $1 to the first argument.
		argv = append(argv, "gram-grep")
		argv = append(argv, args...)
	}
	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Dir = r.Dir
	return cmd
}

// Output runs line and returns its standard output.
func (r *Runner) Output(ctx context.Context, line string) (string, error) {
	cmd := r.command(ctx, line)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	log.Debugf("exec: %s", line)
	if err := cmd.Run(); err != nil {
		return stdout.String(), &errors.ExternalCommandError{Command: line, Stderr: stderr.String(), Err: err}
	}
	return stdout.String(), nil
}

// Run runs a hook with $1 set to path. An empty line is a no-op.
func (r *Runner) Run(ctx context.Context, line, path string) error {
	if line == "" {
		return nil
	}
	var args []string
	if path != "" {
		args = []string{path}
	}
	cmd := r.command(ctx, line, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	log.Debugf("hook: %s %s", line, path)
	if err := cmd.Run(); err != nil {
		return &errors.ExternalCommandError{Command: line, Stderr: stderr.String(), Err: err}
	}
	return nil
}
