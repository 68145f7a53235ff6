package errors

import (
	"fmt"
	"strings"
)

// CompileError is a fatal configuration error. Path is the configuration
// file and Err, when set, the underlying cause (a regexp error, say).
type CompileError struct {
	Path string
	Diag CompilerError
	Err  error
}

func (e *CompileError) Error() string {
	return fmt.Sprintf("%s(%d:%d): %s", e.Path, e.Diag.Position.Line, e.Diag.Position.Column, e.Diag.Message)
}

func (e *CompileError) Unwrap() error { return e.Err }

// ActionError is raised while executing the commands of a production.
// The engine fills in Path and Line for the match being processed.
type ActionError struct {
	Path       string
	Line       int
	Production int
	Err        error
}

func (e *ActionError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s(%d): action for production %d: %v", e.Path, e.Line, e.Production, e.Err)
	}
	return fmt.Sprintf("action for production %d: %v", e.Production, e.Err)
}

func (e *ActionError) Unwrap() error { return e.Err }

// IOError wraps a failure to read or write a subject file.
type IOError struct {
	Op   string
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }

// ExternalCommandError reports a hook or exec() command that failed.
type ExternalCommandError struct {
	Command string
	Stderr  string
	Err     error
}

func (e *ExternalCommandError) Error() string {
	msg := fmt.Sprintf("command %q failed: %v", e.Command, e.Err)
	if s := strings.TrimSpace(e.Stderr); s != "" {
		msg += ": " + s
	}
	return msg
}

func (e *ExternalCommandError) Unwrap() error { return e.Err }
