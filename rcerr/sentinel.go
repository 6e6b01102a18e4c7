// Package rcerr provides predefined sentinel errors for common shell failures.
package rcerr

// Resolution errors.
var (
	// ErrNotFound indicates a command could not be resolved via PATH.
	ErrNotFound = &ShellError{Kind: KindResolution, Detail: "not found"}

	// ErrCouldNotCd indicates a directory change failed.
	ErrCouldNotCd = &ShellError{Kind: KindResolution, Detail: "couldn't cd"}

	// ErrEmptyName indicates an empty command name was given to which().
	ErrEmptyName = &ShellError{Kind: KindResolution, Detail: "empty command name"}
)

// Usage errors.
var (
	// ErrTooManyArgs indicates a builtin received more arguments than it accepts.
	ErrTooManyArgs = &ShellError{Kind: KindUsage, Detail: "too many arguments"}

	// ErrNotEnoughArgs indicates a builtin received fewer arguments than required.
	ErrNotEnoughArgs = &ShellError{Kind: KindUsage, Detail: "not enough arguments"}

	// ErrBadOption indicates an unrecognized command-line flag.
	ErrBadOption = &ShellError{Kind: KindUsage, Detail: "bad option"}

	// ErrOptionNeedsArg indicates a flag requiring an argument got none.
	ErrOptionNeedsArg = &ShellError{Kind: KindUsage, Detail: "option requires an argument"}

	// ErrBuiltinDoesNotStack indicates "builtin builtin" was attempted.
	ErrBuiltinDoesNotStack = &ShellError{Kind: KindUsage, Detail: "builtin does not stack"}
)

// Resource errors.
var (
	// ErrForkFailed indicates fork(2) failed.
	ErrForkFailed = &ShellError{Kind: KindResource, Detail: "fork failed"}

	// ErrPipeFailed indicates pipe(2) failed.
	ErrPipeFailed = &ShellError{Kind: KindResource, Detail: "pipe failed"}

	// ErrExecFailed indicates execve(2) failed after all fallbacks.
	ErrExecFailed = &ShellError{Kind: KindResource, Detail: "exec failed"}

	// ErrWaitFailed indicates wait(2)/wait4(2) failed for a reason other
	// than interruption.
	ErrWaitFailed = &ShellError{Kind: KindResource, Detail: "wait failed"}

	// ErrNoInterpreter indicates the #! fallback could not identify an
	// interpreter line.
	ErrNoInterpreter = &ShellError{Kind: KindResource, Detail: "no interpreter line"}

	// ErrInterpreterLineTooLong indicates the #! line exceeded the probe buffer.
	ErrInterpreterLineTooLong = &ShellError{Kind: KindResource, Detail: "interpreter line too long"}
)

// Interrupt and fatal errors.
var (
	// ErrInterrupted indicates a slow call was aborted by a signal.
	ErrInterrupted = &ShellError{Kind: KindInterrupt, Detail: "interrupted"}

	// ErrOutOfMemory indicates an allocation failure (reported, not recovered).
	ErrOutOfMemory = &ShellError{Kind: KindFatal, Detail: "out of memory"}

	// ErrInternal indicates an internal invariant was violated.
	ErrInternal = &ShellError{Kind: KindFatal, Detail: "internal error"}
)
