package cmd

import (
	"fmt"
	"os"
	"strconv"

	"rcsh/dispatch"
	"rcsh/rlog"
	"rcsh/status"
)

// registerBuiltins wires the small set of builtins the dispatcher
// cannot do without: the ones that change the shell's own state (cd,
// umask, exit) or reach into the status/wait machinery directly, as
// opposed to a builtin that could equally be an external program.
// Everything else (the word-syntax builtins like eval, whatis, flag)
// belongs to the parser/evaluator layer above this module and is
// intentionally not implemented here.
func registerBuiltins(ctx *dispatch.Context) {
	ctx.Builtins["cd"] = builtinCd
	ctx.Builtins["exit"] = builtinExit
	ctx.Builtins["umask"] = builtinUmask
	ctx.Builtins["wait"] = builtinWait
	ctx.Builtins["true"] = func(*dispatch.Context, []string) int { return 0 }
	ctx.Builtins["false"] = func(*dispatch.Context, []string) int { return 1 }
}

func builtinCd(ctx *dispatch.Context, argv []string) int {
	dir := ""
	switch len(argv) {
	case 1:
		home, ok := ctx.Vars.Lookup("home")
		if !ok || len(home.Def) == 0 {
			rlog.Error("rc: cd: $home not set")
			return 1
		}
		dir = home.Def[0]
	case 2:
		dir = argv[1]
	default:
		rlog.Error("rc: cd: too many arguments")
		return 1
	}

	if err := os.Chdir(dir); err != nil {
		rlog.Error(fmt.Sprintf("rc: %s: %v", dir, err))
		return 1
	}
	return 0
}

func builtinExit(ctx *dispatch.Context, argv []string) int {
	code := ctx.Status.Get()
	if len(argv) > 1 {
		v := status.Vector{}
		v.SetFromStrings(argv[1:2])
		code = v.Get()
	}
	os.Exit(code)
	return code
}

func builtinUmask(ctx *dispatch.Context, argv []string) int {
	if len(argv) == 1 {
		fmt.Printf("%04o\n", ctx.Umask())
		return 0
	}
	var mask int
	if _, err := fmt.Sscanf(argv[1], "%o", &mask); err != nil {
		rlog.Error("rc: umask: bad mask: " + argv[1])
		return 1
	}
	ctx.SetUmask(mask)
	return 0
}

// builtinWait with no arguments reports the last foreground status
// unchanged, since this module's scope has no outstanding background
// jobs to reap (job control beyond a foreground wait is a stated
// non-goal). With pid arguments it reaps each one directly via
// ctx.Sig.Wait4 and stores the results through
// status.Vector.SetWaitStatus, which is spec.md §4.D's reverse-order
// storage rule: an unparseable pid becomes status.NoResultSlot rather
// than aborting the whole wait.
func builtinWait(ctx *dispatch.Context, argv []string) int {
	if len(argv) < 2 {
		return ctx.Status.Get()
	}

	results := make([]status.Slot, 0, len(argv)-1)
	for _, a := range argv[1:] {
		pid, err := strconv.Atoi(a)
		if err != nil {
			rlog.Error("rc: wait: bad pid: " + a)
			results = append(results, status.NoResultSlot)
			continue
		}
		ws, _, err := ctx.Sig.Wait4(pid, 0)
		if err != nil {
			rlog.Error(fmt.Sprintf("rc: wait: %d: %v", pid, err))
			results = append(results, status.NoResultSlot)
			continue
		}
		results = append(results, status.SlotFromRaw(ws))
	}

	ctx.Status.SetWaitStatus(results)
	return ctx.Status.Get()
}
