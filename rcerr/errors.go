// Package rcerr provides typed error handling for the rc shell runtime.
//
// It defines the error taxonomy of the shell's execution core: syntax,
// resolution, usage, resource, interrupt, and fatal errors. All errors
// support the standard errors.Is() and errors.As() functions.
package rcerr

import (
	"errors"
	"fmt"
)

// Kind represents the category of a shell error.
type Kind int

const (
	// KindSyntax indicates a parse error surfaced by the (external) parser.
	KindSyntax Kind = iota
	// KindResolution indicates a command or path could not be resolved.
	KindResolution
	// KindUsage indicates a builtin was invoked with bad arguments or flags.
	KindUsage
	// KindResource indicates a fork/pipe/exec/wait failure.
	KindResource
	// KindInterrupt indicates a slow call was aborted by a signal.
	KindInterrupt
	// KindFatal indicates an unrecoverable internal error.
	KindFatal
)

// String returns a human-readable name for the error kind.
func (k Kind) String() string {
	switch k {
	case KindSyntax:
		return "syntax error"
	case KindResolution:
		return "resolution error"
	case KindUsage:
		return "usage error"
	case KindResource:
		return "resource error"
	case KindInterrupt:
		return "interrupted"
	case KindFatal:
		return "fatal error"
	default:
		return "unknown error"
	}
}

// ShellError is an error that occurred while running a shell command.
type ShellError struct {
	// Op is the operation that failed (e.g. "exec", "wait", "which").
	Op string
	// Cmd is the command name, if applicable.
	Cmd string
	// Err is the underlying error.
	Err error
	// Kind is the error classification.
	Kind Kind
	// Detail provides additional context, usually the final message text.
	Detail string
}

// Error returns the error message. Callers that print diagnostics to the
// user are responsible for the leading "rc: " prefix; ShellError
// itself never adds it so tests can match on the bare message.
func (e *ShellError) Error() string {
	if e == nil {
		return "<nil>"
	}

	var msg string
	if e.Cmd != "" {
		msg = fmt.Sprintf("%s: ", e.Cmd)
	}
	if e.Detail != "" {
		msg += e.Detail
	} else if e.Op != "" {
		msg += fmt.Sprintf("%s: %s", e.Op, e.Kind)
	} else {
		msg += e.Kind.String()
	}
	if e.Err != nil {
		msg += fmt.Sprintf(": %v", e.Err)
	}
	return msg
}

// Unwrap returns the underlying error.
func (e *ShellError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Is reports whether the error matches the target. It matches if the
// target is a *ShellError with the same Kind.
func (e *ShellError) Is(target error) bool {
	if e == nil {
		return target == nil
	}
	if t, ok := target.(*ShellError); ok {
		return e.Kind == t.Kind
	}
	return false
}

// New creates a new ShellError of the given kind.
func New(kind Kind, op, detail string) *ShellError {
	return &ShellError{Op: op, Kind: kind, Detail: detail}
}

// Wrap wraps an error with shell context.
func Wrap(err error, kind Kind, op string) *ShellError {
	return &ShellError{Op: op, Err: err, Kind: kind}
}

// WrapWithCmd wraps an error with the command name that failed.
func WrapWithCmd(err error, kind Kind, op, cmd string) *ShellError {
	return &ShellError{Op: op, Cmd: cmd, Err: err, Kind: kind}
}

// WrapWithDetail wraps an error with additional detail text.
func WrapWithDetail(err error, kind Kind, op, detail string) *ShellError {
	return &ShellError{Op: op, Err: err, Kind: kind, Detail: detail}
}

// IsKind reports whether err is a ShellError of the given kind.
func IsKind(err error, kind Kind) bool {
	var serr *ShellError
	if errors.As(err, &serr) {
		return serr.Kind == kind
	}
	return false
}

// GetKind returns the error kind if err is a ShellError.
func GetKind(err error) (Kind, bool) {
	var serr *ShellError
	if errors.As(err, &serr) {
		return serr.Kind, true
	}
	return 0, false
}

// Re-exported standard library functions for convenience.
var (
	Is     = errors.Is
	As     = errors.As
	Unwrap = errors.Unwrap
)
