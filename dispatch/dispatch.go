package dispatch

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"syscall"

	"golang.org/x/term"

	"rcsh/rcerr"
	"rcsh/rlog"
	"rcsh/status"
)

// Run executes a parsed command: prefix unwinding, builtin/function/
// external resolution, the fork decision, and the child or parent path,
// exactly as spec.md §4.E lays out in its seven steps. parent is true
// when the caller can continue after this command returns (false when
// this is itself running inside an already-forked child, e.g. the last
// stage of a pipeline run in-line).
func (c *Context) Run(words List, redirs RedirQueue, parent bool) int {
	av := words.Argv(false)

	if c.Trace && len(av) > 0 {
		fmt.Fprintln(os.Stderr, "+ "+strings.Join(av, " "))
	}

	// Step 1: prefix unwinding.
	sawExec := false
	builtinSeen := false
	skipFnTable := false
prefixLoop:
	for len(av) > 0 {
		switch {
		case av[0] == "exec":
			av = av[1:]
			sawExec = true
			parent = false
		case av[0] == "builtin" && !builtinSeen:
			av = av[1:]
			builtinSeen = true
			skipFnTable = true
		default:
			break prefixLoop
		}
	}

	// Step 2: null exec. Bare `exec` (or `exec` followed only by
	// redirections, with no command word) leaves the shell alive per
	// spec.md §4.E Step 2; only `exec CMD` (handled below, once a
	// command name is in hand) dooms it.
	if len(av) == 0 {
		if err := redirs.Apply(); err != nil {
			rlog.Error("rc: " + err.Error())
		}
		return c.Status.Get()
	}

	name := av[0]
	absolute := strings.HasPrefix(name, "/")

	var fn *invokable
	var builtin Builtin
	if !absolute {
		if !skipFnTable {
			if f, ok := c.Fns.Lookup(name); ok {
				fn = &invokable{tree: f.Def}
			}
		}
		if fn == nil {
			if b, ok := c.Builtins[name]; ok {
				builtin = b
			}
		}
	}

	if sawExec && name != "" {
		c.Doomed = true
	}

	isExternal := fn == nil && builtin == nil

	// Step 3: external resolution.
	var path string
	if isExternal {
		p, ok := c.Probe.Which(c.Identity, name, c.PathList(), true)
		if !ok {
			c.Status.SetStatus(status.Raw(1 << 8))
			if parent {
				return c.Status.Get()
			}
			os.Exit(1)
		}
		path = p
		c.env = c.Vars.MakeEnv(c.Fns.Exports())
	}

	// Step 4: fork decision.
	needsFork := (parent && (isExternal || len(redirs) > 0)) || len(c.pendingFifos) > 0

	var savedTerm *term.State
	if c.Interactive && needsFork && term.IsTerminal(int(os.Stdin.Fd())) {
		if st, err := term.GetState(int(os.Stdin.Fd())); err == nil {
			savedTerm = st
		}
	}

	if !needsFork {
		return c.runInPlace(fn, builtin, av, redirs)
	}

	if isExternal {
		return c.runExternalForked(path, av, redirs, savedTerm, parent)
	}
	return c.runBuiltinForked(fn, builtin, av, redirs)
}

// invokable wraps a function's opaque Tree so dispatch need not import
// fns' Tree interface by name in the hot call path.
type invokable struct {
	tree interface {
		Invoke(ctx any, argv []string) int
	}
}

// runInPlace handles Step 5 for the no-fork case: apply redirections to
// the shell's own fd table and run the builtin or function directly.
func (c *Context) runInPlace(fn *invokable, builtin Builtin, av []string, redirs RedirQueue) int {
	c.drainPendingFifos()

	if err := redirs.Apply(); err != nil {
		rlog.Error("rc: " + err.Error())
		c.Status.SetStatus(status.Raw(1 << 8))
		return c.Status.Get()
	}

	var code int
	switch {
	case fn != nil:
		code = fn.tree.Invoke(c, av)
	case builtin != nil:
		code = builtin(c, av)
	}
	c.Status.SetStatus(status.Raw(code << 8))
	return c.Status.Get()
}

// runBuiltinForked approximates Step 5 when a fork is required purely
// to isolate a builtin's redirections (no external program involved).
// Go offers no safe fork-without-exec, so this is the module's
// documented simplification: fd 0/1/2 are saved, the redirections are
// applied in-place, the builtin runs, and the original fds are
// restored afterward. Variable/function table mutations made by the
// builtin are therefore visible to the parent even in this path; true
// process-level isolation of shell state is outside what the
// non-goals ask this module to provide.
func (c *Context) runBuiltinForked(fn *invokable, builtin Builtin, av []string, redirs RedirQueue) int {
	c.drainPendingFifos()

	saved := saveStdFds()
	defer saved.restore()

	if err := redirs.Apply(); err != nil {
		rlog.Error("rc: " + err.Error())
		c.Status.SetStatus(status.Raw(1 << 8))
		return c.Status.Get()
	}

	var code int
	switch {
	case fn != nil:
		code = fn.tree.Invoke(c, av)
	case builtin != nil:
		code = builtin(c, av)
	}
	c.Status.SetStatus(status.Raw(code << 8))
	return c.Status.Get()
}

// runExternalForked implements Steps 5-6 for an external command: open
// the redirected files, start the child, wait for it via the
// signal-safe wrapper, restore tty state if it died by signal, store
// the status, and on a non-zero exit re-verify the command, purging its
// path-cache entry if it is no longer executable.
func (c *Context) runExternalForked(path string, av []string, redirs RedirQueue, savedTerm *term.State, parent bool) int {
	c.drainPendingFifos()

	c.jobSeq++
	log := rlog.WithCmd(rlog.WithOp(rlog.WithJob(rlog.Default(), c.jobSeq), "exec"), path)

	files, closer, err := redirs.Files()
	if err != nil {
		rlog.Error("rc: " + err.Error())
		c.Status.SetStatus(status.Raw(1 << 8))
		return c.Status.Get()
	}
	defer closer()

	proc, err := os.StartProcess(path, av, &os.ProcAttr{
		Env:   c.env,
		Files: files,
	})
	if err != nil && errors.Is(err, syscall.ENOEXEC) {
		// spec.md §4.E Step 7: the kernel didn't recognize path's
		// format at all; fall back to sniffing a "#!" interpreter
		// line ourselves before giving up.
		log.Debug("ENOEXEC, falling back to interpreter-line emulation")
		proc, err = startInterp(path, av, c.env, files)
	}
	if err != nil {
		rlog.Error(fmt.Sprintf("rc: %s: %v", av[0], err))
		c.Status.SetStatus(status.Raw(1 << 8))
		if !parent {
			os.Exit(1)
		}
		return c.Status.Get()
	}
	log = rlog.WithPID(log, proc.Pid)
	log.Debug("forked")

	ws, _, waitErr := c.Sig.Wait4(proc.Pid, 0)
	if rcerr.IsKind(waitErr, rcerr.KindInterrupt) {
		log.Debug("wait4 interrupted")
		c.Status.SetStatus(status.Raw(1 << 8))
		c.Sig.Sigchk()
		return c.Status.Get()
	}
	log.Debug("reaped", "exited", ws.Exited(), "signaled", ws.Signaled())

	if savedTerm != nil && ws.Signaled() {
		term.Restore(int(os.Stdin.Fd()), savedTerm)
	}

	c.Status.SetStatus(ws)
	if ws.Signaled() {
		c.suppressNextNewline = false
	} else {
		c.suppressNextNewline = true
	}

	if line := status.StatusLine(ws); line != "" && status.ShouldPrint(ws, false, c.Interactive) {
		fmt.Fprint(os.Stderr, line)
	}

	if err := c.Sig.Sigchk(); err != nil {
		return c.Status.Get()
	}

	if !status.SlotFromRaw(ws).IsZero() {
		c.Probe.VerifyCmd(c.Identity, av[0], path)
	}

	if c.ExitOnError && !c.inCondition && !status.SlotFromRaw(ws).IsZero() {
		os.Exit(c.Status.Get())
	}

	return c.Status.Get()
}
