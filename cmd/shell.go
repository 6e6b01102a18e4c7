package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"
	"github.com/spf13/cobra"

	"rcsh/dispatch"
	"rcsh/fns"
	"rcsh/history"
	"rcsh/rlog"
	"rcsh/sigsafe"
)

var errNoParser = errors.New("no parser wired into this execution core")

// runShell is rootCmd's RunE: it builds a dispatch.Context from the
// parsed Flags, seeds it from the parent environment, and then drives
// one of three input modes: -c COMMAND, a script file/stdin read line
// by line, or the interactive liner-backed prompt loop.
//
// Only whitespace-separated words are recognized here: the full rc
// grammar (quoting, pipelines, control structures) belongs to the
// parser/evaluator layer this module treats as an opaque collaborator
// (dispatch.List, fns.Tree). What this wires is the execution core
// underneath that layer.
func runShell(cmd *cobra.Command, args []string) error {
	sig := sigsafe.NewToken(os.Interrupt)
	defer sig.Stop()

	ctx, err := dispatch.NewContext(sig)
	if err != nil {
		return fmt.Errorf("rc: %w", err)
	}
	ctx.Interactive = flags.Interactive
	ctx.NoExec = flags.NoExec
	ctx.Privileged = flags.Prompt
	ctx.ExitOnError = flags.ExitOnError
	ctx.Echo = flags.Verbose
	ctx.Trace = flags.Trace
	registerBuiltins(ctx)

	// spec.md §6: -p suppresses importing *functions* from the
	// environment only; variables are always imported regardless of -p.
	ctx.Vars.InitEnv(os.Environ())
	// No parser is wired into this build of the execution core (it is
	// the evaluator layer's concern), so every inherited "fn_NAME"
	// entry takes InitEnv's own unparsable-body path and is dropped.
	ctx.Fns.InitEnv(os.Environ(), flags.Prompt, func(string) (fns.Tree, error) {
		return nil, errNoParser
	})
	if place, ok := ctx.Vars.Lookup("path"); !ok || len(place.Def) == 0 {
		p := ctx.Vars.GetPlace("path", false)
		p.Def = []string{"/bin", "/usr/bin"}
	}
	ctx.ResetPathCache()

	switch {
	case flags.Command != "":
		return runLine(ctx, flags.Command)
	case len(args) > 0:
		return runFile(ctx, args[0])
	case flags.StdinScript || !isTTY(os.Stdin):
		return runReader(ctx, os.Stdin)
	default:
		return runInteractive(ctx)
	}
}

func isTTY(f *os.File) bool {
	fi, err := f.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}

func runLine(ctx *dispatch.Context, line string) error {
	words := strings.Fields(line)
	if len(words) == 0 {
		return nil
	}
	if ctx.Echo {
		// -v echo is a user-facing shell feature, not the runtime's own
		// operational logging: it must print to fd 2 as plain text
		// regardless of the configured log level or --log-format, so it
		// goes straight to os.Stderr rather than through rlog.
		fmt.Fprintln(os.Stderr, "+ "+line)
	}
	if ctx.NoExec {
		return nil
	}
	ctx.Run(dispatch.NewList(words...), nil, true)
	return nil
}

func runFile(ctx *dispatch.Context, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("rc: %w", err)
	}
	defer f.Close()
	return runReader(ctx, f)
}

func runReader(ctx *dispatch.Context, r io.Reader) error {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		if ctx.Doomed {
			break
		}
		if err := runLine(ctx, scanner.Text()); err != nil {
			return err
		}
		if ctx.ExitOnError && ctx.Status.Get() != 0 {
			break
		}
	}
	return scanner.Err()
}

func runInteractive(ctx *dispatch.Context) error {
	line := liner.NewLiner()
	defer line.Close()
	line.SetCtrlCAborts(true)

	histPath := ""
	if home, err := os.UserHomeDir(); err == nil {
		histPath = filepath.Join(home, ".rc_history")
	}
	hist := history.Open(histPath)
	hist.Load(line)
	defer hist.Save(line)

	prompt := "; "
	if p, ok := ctx.Vars.Lookup("prompt"); ok && len(p.Def) > 0 {
		prompt = p.Def[0]
	}

	for {
		if ctx.Doomed {
			return nil
		}
		text, err := line.Prompt(prompt)
		if err == liner.ErrPromptAborted || err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("rc: %w", err)
		}
		if strings.TrimSpace(text) != "" {
			line.AppendHistory(text)
			hist.Append(text)
		}
		if err := runLine(ctx, text); err != nil {
			rlog.Error(err.Error())
		}
		if !ctx.ConsumeSuppressNewline() {
			fmt.Println()
		}
	}
}
