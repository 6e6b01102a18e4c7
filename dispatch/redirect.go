package dispatch

import (
	"fmt"
	"os"

	"rcsh/rcerr"
)

// RedirOp is the kind of redirection operator the parser staged.
type RedirOp int

const (
	// RedirWrite is ">": truncate-or-create Target, write-only.
	RedirWrite RedirOp = iota
	// RedirAppend is ">>": create if needed, append-only.
	RedirAppend
	// RedirRead is "<": open Target read-only.
	RedirRead
	// RedirDup is ">[Fd=DupFd]": make Fd an alias of DupFd, or close Fd
	// if DupFd is negative (">[Fd=]").
	RedirDup
)

// Redirect is one deferred redirection operator, staged by the parser
// and consumed here as an opaque producer (§1 "redirection-queue
// construction ... consumed as opaque producer").
type Redirect struct {
	Op     RedirOp
	Fd     int
	Target string
	DupFd  int
}

// RedirQueue is the ordered set of redirections staged for one command.
type RedirQueue []Redirect

// resolve opens every file the queue needs and returns the final
// fd -> *os.File mapping (not yet including the fds the command
// inherits unchanged). The caller is responsible for closing every
// returned file once the redirections have been consumed (applied
// in-place, or handed to a child's ProcAttr.Files).
func (q RedirQueue) resolve() (map[int]*os.File, []*os.File, error) {
	result := map[int]*os.File{}
	var owned []*os.File

	for _, r := range q {
		switch r.Op {
		case RedirWrite:
			f, err := os.OpenFile(r.Target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0666)
			if err != nil {
				return nil, owned, rcerr.WrapWithDetail(err, rcerr.KindResource, "open", r.Target)
			}
			result[r.Fd] = f
			owned = append(owned, f)
		case RedirAppend:
			f, err := os.OpenFile(r.Target, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
			if err != nil {
				return nil, owned, rcerr.WrapWithDetail(err, rcerr.KindResource, "open", r.Target)
			}
			result[r.Fd] = f
			owned = append(owned, f)
		case RedirRead:
			f, err := os.Open(r.Target)
			if err != nil {
				return nil, owned, rcerr.WrapWithDetail(err, rcerr.KindResource, "open", r.Target)
			}
			result[r.Fd] = f
			owned = append(owned, f)
		case RedirDup:
			if r.DupFd < 0 {
				delete(result, r.Fd)
				result[r.Fd] = nil // marks "closed" explicitly
				continue
			}
			if f, ok := result[r.DupFd]; ok {
				result[r.Fd] = f
				continue
			}
			result[r.Fd] = fdFile(r.DupFd)
		default:
			return nil, owned, fmt.Errorf("unknown redirection op %d", r.Op)
		}
	}
	return result, owned, nil
}

// fdFile wraps an already-open standard fd (0, 1, or 2) as an *os.File
// for reuse as a dup target, without taking ownership of it.
func fdFile(fd int) *os.File {
	switch fd {
	case 0:
		return os.Stdin
	case 1:
		return os.Stdout
	case 2:
		return os.Stderr
	default:
		return os.NewFile(uintptr(fd), fmt.Sprintf("fd%d", fd))
	}
}

// Apply performs every redirection directly against the current
// process's file descriptor table, via dup2. This is used for the
// in-place (no-fork) execution path: `exec >foo` with no following
// command, and a builtin run without a separate child process.
func (q RedirQueue) Apply() error {
	files, owned, err := q.resolve()
	defer func() {
		for _, f := range owned {
			f.Close()
		}
	}()
	if err != nil {
		return err
	}

	for fd, f := range files {
		if f == nil {
			unixClose(fd)
			continue
		}
		if err := dup2(int(f.Fd()), fd); err != nil {
			return rcerr.Wrap(err, rcerr.KindResource, "dup2")
		}
	}
	return nil
}

// Files builds the fd-indexed *os.File slice a freshly started child
// process needs (for os.ProcAttr.Files), filling in any fd the queue
// did not mention with the shell's own current fd of the same number.
// The returned closer must be invoked once the child has been started.
func (q RedirQueue) Files() (files []*os.File, closer func(), err error) {
	resolved, owned, err := q.resolve()
	if err != nil {
		for _, f := range owned {
			f.Close()
		}
		return nil, nil, err
	}

	maxFd := 2
	for fd := range resolved {
		if fd > maxFd {
			maxFd = fd
		}
	}

	files = make([]*os.File, maxFd+1)
	for fd := 0; fd <= maxFd; fd++ {
		if f, ok := resolved[fd]; ok {
			files[fd] = f // nil is valid here: means "closed in the child"
			continue
		}
		files[fd] = fdFile(fd)
	}

	closer = func() {
		for _, f := range owned {
			f.Close()
		}
	}
	return files, closer, nil
}
