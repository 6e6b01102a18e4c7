// Package status implements the shell's status model: the last
// pipeline's vector of wait statuses, its view as a truth value and as
// a list of tagged strings, and the printing rules that decide when a
// status line is written to fd 2.
package status

import (
	"fmt"
	"strconv"
	"strings"
	"syscall"

	"golang.org/x/sys/unix"
)

// Raw reuses the kernel's own wait(2) encoding directly: high byte is
// the exit code, low 7 bits the terminating signal, bit 0x80 the
// core-dump flag.
type Raw = unix.WaitStatus

// noResultEncoded is the wire value Encoded reports for a "no result"
// slot, matching the historical 0x100 sentinel. It is never compared against directly in Go code — Slot
// carries noResult as its own field instead, per the explicit
// instruction to treat "no result" as a distinct variant rather than a
// magic integer.
const noResultEncoded = 0x100

// Slot is one pipeline member's status. noResult is a variant of its
// own, not a reserved bit pattern of raw, so "raw == 0x100" can never
// be accidentally true for an ordinary exit code.
type Slot struct {
	raw      Raw
	noResult bool
}

// NoResultSlot is the slot stored for an unparseable `wait` argument.
var NoResultSlot = Slot{noResult: true}

// SlotFromRaw wraps a wait(2) status word.
func SlotFromRaw(raw Raw) Slot {
	return Slot{raw: raw}
}

// Encoded reports the slot's value in the historical wire encoding,
// needed only where spec-compatible import/export requires it.
func (s Slot) Encoded() int {
	if s.noResult {
		return noResultEncoded
	}
	return int(s.raw)
}

// IsZero reports whether this slot represents success: exited with
// code 0, no signal.
func (s Slot) IsZero() bool {
	if s.noResult {
		return false
	}
	return s.raw.Exited() && s.raw.ExitStatus() == 0
}

// SignalMap maps upper-case signal names (with or without the SIG
// prefix) to their numeric value, and is shared by $status's rendering
// and SetFromStrings's parsing, which upper-cases a name before lookup.
var SignalMap = map[string]syscall.Signal{
	"SIGHUP": syscall.SIGHUP, "HUP": syscall.SIGHUP,
	"SIGINT": syscall.SIGINT, "INT": syscall.SIGINT,
	"SIGQUIT": syscall.SIGQUIT, "QUIT": syscall.SIGQUIT,
	"SIGILL": syscall.SIGILL, "ILL": syscall.SIGILL,
	"SIGTRAP": syscall.SIGTRAP, "TRAP": syscall.SIGTRAP,
	"SIGABRT": syscall.SIGABRT, "ABRT": syscall.SIGABRT,
	"SIGBUS": syscall.SIGBUS, "BUS": syscall.SIGBUS,
	"SIGFPE": syscall.SIGFPE, "FPE": syscall.SIGFPE,
	"SIGKILL": syscall.SIGKILL, "KILL": syscall.SIGKILL,
	"SIGUSR1": syscall.SIGUSR1, "USR1": syscall.SIGUSR1,
	"SIGSEGV": syscall.SIGSEGV, "SEGV": syscall.SIGSEGV,
	"SIGUSR2": syscall.SIGUSR2, "USR2": syscall.SIGUSR2,
	"SIGPIPE": syscall.SIGPIPE, "PIPE": syscall.SIGPIPE,
	"SIGALRM": syscall.SIGALRM, "ALRM": syscall.SIGALRM,
	"SIGTERM": syscall.SIGTERM, "TERM": syscall.SIGTERM,
	"SIGCHLD": syscall.SIGCHLD, "CHLD": syscall.SIGCHLD,
	"SIGCONT": syscall.SIGCONT, "CONT": syscall.SIGCONT,
	"SIGSTOP": syscall.SIGSTOP, "STOP": syscall.SIGSTOP,
	"SIGTSTP": syscall.SIGTSTP, "TSTP": syscall.SIGTSTP,
	"SIGTTIN": syscall.SIGTTIN, "TTIN": syscall.SIGTTIN,
	"SIGTTOU": syscall.SIGTTOU, "TTOU": syscall.SIGTTOU,
	"SIGURG": syscall.SIGURG, "URG": syscall.SIGURG,
	"SIGXCPU": syscall.SIGXCPU, "XCPU": syscall.SIGXCPU,
	"SIGXFSZ": syscall.SIGXFSZ, "XFSZ": syscall.SIGXFSZ,
	"SIGVTALRM": syscall.SIGVTALRM, "VTALRM": syscall.SIGVTALRM,
	"SIGPROF": syscall.SIGPROF, "PROF": syscall.SIGPROF,
	"SIGWINCH": syscall.SIGWINCH, "WINCH": syscall.SIGWINCH,
	"SIGIO": syscall.SIGIO, "IO": syscall.SIGIO,
}

var signalToName = func() map[syscall.Signal]string {
	m := map[syscall.Signal]string{}
	for name, sig := range SignalMap {
		if strings.HasPrefix(name, "SIG") {
			m[sig] = strings.ToLower(name)
		}
	}
	return m
}()

const maxPipeline = 512

// Vector holds the current pipeline's status slots.
type Vector struct {
	slots      [maxPipeline]Slot
	n          int
	pipelength int // defaults to 1
}

// NewVector returns a Vector with pipelength defaulted to 1.
func NewVector() *Vector {
	return &Vector{pipelength: 1}
}

// SetStatus stores a single pid's raw status as a one-element vector,
// the common case of a simple (non-pipeline) command.
func (v *Vector) SetStatus(raw Raw) {
	v.slots[0] = SlotFromRaw(raw)
	v.n = 1
	v.pipelength = 1
}

// SetPipeStatus stores a full pipeline's statuses in member order.
func (v *Vector) SetPipeStatus(raws []Raw) {
	n := len(raws)
	if n > maxPipeline {
		n = maxPipeline
	}
	for i := 0; i < n; i++ {
		v.slots[i] = SlotFromRaw(raws[i])
	}
	v.n = n
	v.pipelength = n
}

// SetWaitStatus implements the `wait` builtin's storage rule: results
// are stored in reverse order of the argument list, so left-to-right
// wait arguments correspond to pipe member indices right-to-left.
func (v *Vector) SetWaitStatus(results []Slot) {
	n := len(results)
	if n > maxPipeline {
		n = maxPipeline
	}
	for i := 0; i < n; i++ {
		v.slots[n-1-i] = results[i]
	}
	v.n = n
	v.pipelength = n
}

// Get returns the integer view of the status: with pipelength > 1, 1 if
// any member is non-zero else 0; with pipelength == 1, the exit code,
// collapsing a signalled status to 1.
func (v *Vector) Get() int {
	if v.pipelength > 1 {
		for i := 0; i < v.n; i++ {
			if !v.slots[i].IsZero() {
				return 1
			}
		}
		return 0
	}
	if v.n == 0 {
		return 0
	}
	s := v.slots[0]
	if s.noResult {
		return 1
	}
	if s.raw.Exited() {
		return s.raw.ExitStatus()
	}
	return 1
}

// List returns the elementwise string view: a decimal exit code, a
// signal name, a signal name with "+core", or "-N[+core]" for an
// unknown signal number.
func (v *Vector) List() []string {
	out := make([]string, v.n)
	for i := 0; i < v.n; i++ {
		out[i] = renderSlot(v.slots[i])
	}
	return out
}

func renderSlot(s Slot) string {
	if s.noResult {
		return "1"
	}
	if s.raw.Exited() {
		return strconv.Itoa(s.raw.ExitStatus())
	}
	if s.raw.Signaled() {
		sig := s.raw.Signal()
		core := s.raw.CoreDump()
		if name, ok := signalToName[sig]; ok {
			if core {
				return name + "+core"
			}
			return name
		}
		if core {
			return fmt.Sprintf("-%d+core", int(sig))
		}
		return fmt.Sprintf("-%d", int(sig))
	}
	return "1"
}

// SetFromStrings accepts the reverse of List: decimal strings become
// exit codes, known signal names (optionally with "+core") become
// signalled slots, and anything else becomes exit code 1 for
// cross-shell compatibility.
func (v *Vector) SetFromStrings(strs []string) {
	n := len(strs)
	if n > maxPipeline {
		n = maxPipeline
	}
	for i := 0; i < n; i++ {
		v.slots[i] = parseSlot(strs[i])
	}
	v.n = n
	v.pipelength = n
}

func parseSlot(str string) Slot {
	if code, err := strconv.Atoi(str); err == nil {
		return SlotFromRaw(Raw(code << 8))
	}

	name := str
	core := false
	if strings.HasSuffix(strings.ToLower(name), "+core") {
		core = true
		name = name[:len(name)-len("+core")]
	}
	if sig, ok := SignalMap[strings.ToUpper(name)]; ok {
		raw := Raw(int(sig))
		if core {
			raw |= 0x80
		}
		return SlotFromRaw(raw)
	}
	return SlotFromRaw(Raw(1 << 8))
}

// StatusLine renders the human-readable line printed to fd 2 for a
// terminated child: "done (N)\n" for a normal exit, the signal message
// (with "--core dumped" suffix) for a signalled exit, or
// "unknown signal N[--core dumped]\n" for an unrecognized signal.
func StatusLine(raw Raw) string {
	if raw.Exited() {
		return fmt.Sprintf("done (%d)\n", raw.ExitStatus())
	}
	if raw.Signaled() {
		sig := raw.Signal()
		suffix := ""
		if raw.CoreDump() {
			suffix = " --core dumped"
		}
		if name, ok := signalToName[sig]; ok {
			return fmt.Sprintf("%s%s\n", name, suffix)
		}
		return fmt.Sprintf("unknown signal %d%s\n", int(sig), suffix)
	}
	return ""
}

// ShouldPrint implements the printing-rules gate: print when called by
// `wait` in interactive mode, or when the child was signalled and
// either dumped core or the signal was neither SIGINT nor SIGPIPE.
func ShouldPrint(raw Raw, isWaitBuiltin, interactive bool) bool {
	if isWaitBuiltin && interactive {
		return true
	}
	if raw.Signaled() {
		if raw.CoreDump() {
			return true
		}
		sig := raw.Signal()
		return sig != syscall.SIGINT && sig != syscall.SIGPIPE
	}
	return false
}
