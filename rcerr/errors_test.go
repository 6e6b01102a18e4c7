package rcerr

import (
	"errors"
	"fmt"
	"testing"
)

func TestKind_String(t *testing.T) {
	tests := []struct {
		kind     Kind
		expected string
	}{
		{KindSyntax, "syntax error"},
		{KindResolution, "resolution error"},
		{KindUsage, "usage error"},
		{KindResource, "resource error"},
		{KindInterrupt, "interrupted"},
		{KindFatal, "fatal error"},
		{Kind(999), "unknown error"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			if got := tt.kind.String(); got != tt.expected {
				t.Errorf("Kind.String() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestShellError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *ShellError
		expected string
	}{
		{
			name:     "nil error",
			err:      nil,
			expected: "<nil>",
		},
		{
			name: "full error",
			err: &ShellError{
				Op:     "which",
				Cmd:    "frotz",
				Kind:   KindResolution,
				Detail: "cannot find `frotz'",
				Err:    fmt.Errorf("no such file"),
			},
			expected: "frotz: cannot find `frotz': no such file",
		},
		{
			name: "without cmd",
			err: &ShellError{
				Op:     "wait",
				Kind:   KindResource,
				Detail: "wait4 failed",
			},
			expected: "wait4 failed",
		},
		{
			name: "kind only",
			err: &ShellError{
				Kind: KindUsage,
			},
			expected: "usage error",
		},
		{
			name: "with underlying error",
			err: &ShellError{
				Op:   "exec",
				Kind: KindResource,
				Err:  fmt.Errorf("permission denied"),
			},
			expected: "exec: resource error: permission denied",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.expected {
				t.Errorf("ShellError.Error() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestShellError_Unwrap(t *testing.T) {
	underlying := fmt.Errorf("underlying error")
	err := &ShellError{
		Op:   "test",
		Kind: KindFatal,
		Err:  underlying,
	}

	if got := err.Unwrap(); got != underlying {
		t.Errorf("Unwrap() = %v, want %v", got, underlying)
	}

	var nilErr *ShellError
	if got := nilErr.Unwrap(); got != nil {
		t.Errorf("nil.Unwrap() = %v, want nil", got)
	}
}

func TestShellError_Is(t *testing.T) {
	err1 := &ShellError{Kind: KindResolution, Op: "test1"}
	err2 := &ShellError{Kind: KindResolution, Op: "test2"}
	err3 := &ShellError{Kind: KindUsage, Op: "test3"}

	if !err1.Is(err2) {
		t.Error("err1.Is(err2) should be true (same kind)")
	}
	if err1.Is(err3) {
		t.Error("err1.Is(err3) should be false (different kind)")
	}
	if err1.Is(fmt.Errorf("some error")) {
		t.Error("err1.Is(fmt.Errorf(...)) should be false")
	}

	var nilErr *ShellError
	if !nilErr.Is(nil) {
		t.Error("nil.Is(nil) should be true")
	}
}

func TestNew(t *testing.T) {
	err := New(KindUsage, "wait", "invalid pid")

	if err.Kind != KindUsage {
		t.Errorf("Kind = %v, want %v", err.Kind, KindUsage)
	}
	if err.Op != "wait" {
		t.Errorf("Op = %q, want %q", err.Op, "wait")
	}
	if err.Detail != "invalid pid" {
		t.Errorf("Detail = %q, want %q", err.Detail, "invalid pid")
	}
}

func TestWrap(t *testing.T) {
	underlying := fmt.Errorf("permission denied")
	err := Wrap(underlying, KindResource, "open file")

	if err.Err != underlying {
		t.Error("Wrapped error should preserve underlying error")
	}
	if err.Kind != KindResource {
		t.Errorf("Kind = %v, want %v", err.Kind, KindResource)
	}
	if err.Op != "open file" {
		t.Errorf("Op = %q, want %q", err.Op, "open file")
	}
}

func TestWrapWithCmd(t *testing.T) {
	underlying := fmt.Errorf("not found")
	err := WrapWithCmd(underlying, KindResolution, "which", "grep")

	if err.Cmd != "grep" {
		t.Errorf("Cmd = %q, want %q", err.Cmd, "grep")
	}
}

func TestWrapWithDetail(t *testing.T) {
	underlying := fmt.Errorf("syscall failed")
	err := WrapWithDetail(underlying, KindResource, "fork", "out of processes")

	if err.Detail != "out of processes" {
		t.Errorf("Detail = %q, want %q", err.Detail, "out of processes")
	}
}

func TestIsKind(t *testing.T) {
	err := &ShellError{Kind: KindResolution}
	wrapped := fmt.Errorf("wrapped: %w", err)

	if !IsKind(err, KindResolution) {
		t.Error("IsKind(err, KindResolution) should be true")
	}
	if !IsKind(wrapped, KindResolution) {
		t.Error("IsKind(wrapped, KindResolution) should be true")
	}
	if IsKind(err, KindUsage) {
		t.Error("IsKind(err, KindUsage) should be false")
	}
	if IsKind(fmt.Errorf("plain error"), KindResolution) {
		t.Error("IsKind(plain error, KindResolution) should be false")
	}
}

func TestGetKind(t *testing.T) {
	err := &ShellError{Kind: KindInterrupt}
	wrapped := fmt.Errorf("wrapped: %w", err)

	kind, ok := GetKind(err)
	if !ok || kind != KindInterrupt {
		t.Errorf("GetKind(err) = (%v, %v), want (%v, true)", kind, ok, KindInterrupt)
	}

	kind, ok = GetKind(wrapped)
	if !ok || kind != KindInterrupt {
		t.Errorf("GetKind(wrapped) = (%v, %v), want (%v, true)", kind, ok, KindInterrupt)
	}

	_, ok = GetKind(fmt.Errorf("plain error"))
	if ok {
		t.Error("GetKind(plain error) should return false")
	}
}

func TestSentinelErrors(t *testing.T) {
	tests := []struct {
		name string
		err  *ShellError
		kind Kind
	}{
		{"ErrNotFound", ErrNotFound, KindResolution},
		{"ErrCouldNotCd", ErrCouldNotCd, KindResolution},
		{"ErrTooManyArgs", ErrTooManyArgs, KindUsage},
		{"ErrNotEnoughArgs", ErrNotEnoughArgs, KindUsage},
		{"ErrBadOption", ErrBadOption, KindUsage},
		{"ErrForkFailed", ErrForkFailed, KindResource},
		{"ErrExecFailed", ErrExecFailed, KindResource},
		{"ErrInterrupted", ErrInterrupted, KindInterrupt},
		{"ErrInternal", ErrInternal, KindFatal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Kind != tt.kind {
				t.Errorf("%s.Kind = %v, want %v", tt.name, tt.err.Kind, tt.kind)
			}
			wrapped := Wrap(fmt.Errorf("underlying"), tt.kind, "test")
			if !errors.Is(wrapped, tt.err) {
				t.Errorf("errors.Is(wrapped, %s) should be true", tt.name)
			}
		})
	}
}

func TestErrorChain(t *testing.T) {
	underlying := fmt.Errorf("file not found")
	err1 := Wrap(underlying, KindResolution, "which")
	err2 := fmt.Errorf("command resolution failed: %w", err1)

	if !errors.Is(err2, ErrNotFound) {
		t.Error("errors.Is should find ErrNotFound in chain")
	}

	var serr *ShellError
	if !errors.As(err2, &serr) {
		t.Error("errors.As should find ShellError in chain")
	}
	if serr.Op != "which" {
		t.Errorf("serr.Op = %q, want %q", serr.Op, "which")
	}

	if errors.Unwrap(err1) != underlying {
		t.Error("Unwrap should return underlying error")
	}
}
