// Package dispatch implements the execution dispatcher: the component
// that decides, for one parsed command, whether it is a builtin, a
// function call, or an external program; whether running it requires a
// fork; how its redirections are applied; and how its result feeds back
// into the status model.
package dispatch

import (
	"rcsh/fns"
	"rcsh/probe"
	"rcsh/sigsafe"
	"rcsh/status"
	"rcsh/vars"
)

// Builtin is the calling contract a builtin command body must satisfy:
// given the dispatcher's environment and its own argv, return the exit
// status to store. Builtin bodies themselves are out of scope for this
// module; only this signature is.
type Builtin func(ctx *Context, argv []string) int

// Builtins is the name -> implementation registry the dispatcher
// consults during prefix resolution.
type Builtins map[string]Builtin

// Context is the dispatcher's environment: one per shell process, not
// per command. It is threaded through every Run call.
type Context struct {
	Vars     *vars.Table
	Fns      *fns.Table
	Probe    *probe.Cache
	Identity probe.Identity
	Status   *status.Vector
	Sig      *sigsafe.Token
	Builtins Builtins

	Interactive bool
	NoExec      bool
	Privileged  bool // -p: do not import functions from the environment (variables are still imported)
	ExitOnError bool // -e
	Echo        bool // -v
	Trace       bool // -x

	// Doomed is set once `exec CMD` (with CMD present) has run: any
	// subsequent shell-level error terminates the process instead of
	// returning to the reader.
	Doomed bool

	// inCondition suppresses the -e exit-on-error check while the
	// dispatcher is running a command that is itself a condition (the
	// test part of `if`, `while`, etc.); the evaluator above this
	// module is expected to toggle it.
	inCondition bool

	// pendingFifos are the read ends of `<{command}` argument
	// substitutions staged for the current command; drained, never
	// waited on, during the child path (§4.E Step 5.2).
	pendingFifos []*fifo

	umask int

	// jobSeq numbers each external command this process forks, purely
	// for tagging this Context's own rlog.WithJob debug traces; it has
	// no relation to a shell job-control job number.
	jobSeq int

	// suppressNextNewline mirrors spec.md §4.E Step 6: a signalled
	// SIGINT during an otherwise-normal exit should not produce a
	// spurious blank line at the next prompt.
	suppressNextNewline bool

	env []string // cached exported environment for the next external exec
}

// NewContext creates a Context wired to freshly created tables and the
// given signal token.
func NewContext(sig *sigsafe.Token) (*Context, error) {
	id, err := probe.NewIdentity()
	if err != nil {
		return nil, err
	}
	return &Context{
		Vars:     vars.New(),
		Fns:      fns.New(),
		Probe:    probe.NewCache(),
		Identity: id,
		Status:   status.NewVector(),
		Sig:      sig,
		Builtins: Builtins{},
	}, nil
}

// SetInCondition toggles whether the dispatcher is currently evaluating
// a condition, gating the -e exit-on-error check per spec.md §4.D
// "we are not currently inside a condition".
func (c *Context) SetInCondition(v bool) {
	c.inCondition = v
}

// PathList returns the current value of the `path` variable as the
// ordered directory list probe.Cache.Which walks.
func (c *Context) PathList() vars.List {
	e, ok := c.Vars.Lookup("path")
	if !ok {
		return nil
	}
	return e.Def
}

// ResetPathCache must be called on every mutation of `path` (the
// cache-coherence invariant); it is a thin pass-through kept on
// Context so callers do not need to reach into c.Probe directly.
func (c *Context) ResetPathCache() {
	c.Probe.Reset()
}

// SetUmask sets the process umask and records it so a later `umask`
// builtin with no argument can report the current value.
func (c *Context) SetUmask(mask int) int {
	old := setProcessUmask(mask)
	c.umask = mask
	return old
}

// Umask returns the umask most recently set via SetUmask.
func (c *Context) Umask() int {
	return c.umask
}

// AddPendingFifo registers a `<{command}` producer's read end to be
// drained (not waited on) when the current command's child path runs.
func (c *Context) AddPendingFifo(path string) {
	c.pendingFifos = append(c.pendingFifos, openFifo(path))
}

// ConsumeSuppressNewline reports whether the prompt loop should skip
// its usual leading newline (set when the last foreground command
// exited by an ordinary, non-signalled path, per spec.md §4.E Step 6),
// and clears the flag.
func (c *Context) ConsumeSuppressNewline() bool {
	v := c.suppressNextNewline
	c.suppressNextNewline = false
	return v
}

func (c *Context) drainPendingFifos() {
	for _, f := range c.pendingFifos {
		f.drain()
		f.remove()
	}
	c.pendingFifos = nil
}
