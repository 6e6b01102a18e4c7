package dispatch

import (
	"os"
	"strings"

	"rcsh/rcerr"
)

// interpLineMax bounds the single read used to sniff a "#!" line,
// matching the historical 256-byte head-of-file buffer (Design Notes
// §9) rather than slurping the whole file.
const interpLineMax = 256

// buildInterpArgv assembles the interpreter's argv with head room for
// up to two prepended elements (the interpreter and its optional
// argument), with the script path taking argv[0]'s place; the
// allocate-once equivalent of
// Design Notes §9's "Argv with head room": one slice sized for the
// worst case up front rather than growing argv one unshift at a time.
func buildInterpArgv(interp, arg, path string, argv []string) []string {
	headroom := 2
	if arg == "" {
		headroom = 1
	}
	out := make([]string, 0, headroom+len(argv))
	if arg != "" {
		out = append(out, interp, arg, path)
	} else {
		out = append(out, interp, path)
	}
	out = append(out, argv[1:]...)
	return out
}

// startInterp emulates the kernel's native "#!" handling: it sniffs the
// first interpLineMax bytes of path for a "#!interpreter [arg]" line
// and, if found, starts the interpreter with path (and the sniffed arg,
// if any) prepended to argv. It is the dispatcher's fallback for
// spec.md §4.E Step 7, reached only after os.StartProcess's own
// execve(2) call has already rejected path with ENOEXEC: on a kernel
// that interprets "#!" natively that should never happen for an
// ordinary script, so by the time this runs path is either genuinely
// unrecognizable or running on a kernel that needs the emulation.
func startInterp(path string, argv []string, env []string, files []*os.File) (*os.Process, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, rcerr.WrapWithDetail(err, rcerr.KindResolution, "exec", path)
	}
	defer f.Close()

	buf := make([]byte, interpLineMax)
	n, _ := f.Read(buf)
	line := string(buf[:n])

	if !strings.HasPrefix(line, "#!") {
		return nil, rcerr.New(rcerr.KindResolution, "exec", "cannot execute "+path)
	}

	if idx := strings.IndexAny(line, "\n\r"); idx >= 0 {
		line = line[:idx]
	}
	fields := strings.Fields(strings.TrimPrefix(line, "#!"))
	if len(fields) == 0 {
		return nil, rcerr.New(rcerr.KindResolution, "exec", "malformed #! line in "+path)
	}

	interp := fields[0]
	var arg string
	if len(fields) > 1 {
		arg = strings.Join(fields[1:], " ")
	}
	av := buildInterpArgv(interp, arg, path, argv)

	proc, err := os.StartProcess(interp, av, &os.ProcAttr{Env: env, Files: files})
	if err != nil {
		return nil, rcerr.WrapWithDetail(err, rcerr.KindResource, "exec", interp)
	}
	return proc, nil
}
