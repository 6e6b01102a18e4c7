// Package cmd implements the command-line surface for the rc shell.
package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"rcsh/rlog"
)

// Version information set at build time.
var (
	Version   = "0.1.0"
	BuildTime = "unknown"
)

// Flags holds the parsed command-line options understood by rc. They
// mirror the historical rc(1) single-letter flag set.
type Flags struct {
	Command       string // -c COMMAND
	Interactive   bool   // -i
	Login         bool   // -l
	StdinScript   bool   // -s (read script from stdin, same as no args + not a tty)
	NoExec        bool   // -n
	Prompt        bool   // -p (do not import functions from the environment)
	ExitOnError   bool   // -e
	Verbose       bool   // -v
	Trace         bool   // -x
	Debug         bool   // -d (debug-level diagnostic logging)
	OptimizeGlobs bool   // -o (alias retained for rc(1) compatibility, no-op here)

	LogFile   string
	LogFormat string
}

var (
	flags Flags

	rootCmd = &cobra.Command{
		Use:   "rc [file ...]",
		Short: "a command interpreter",
		Long: `rc is a command interpreter loosely descended from the Plan 9 shell.

Without -c or a file argument, rc reads commands from standard input.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.ArbitraryArgs,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			setupLogging()
			return nil
		},
		RunE: runShell,
	}
)

func init() {
	rootCmd.Flags().StringVarP(&flags.Command, "command", "c", "", "run COMMAND instead of reading from a script")
	rootCmd.Flags().BoolVarP(&flags.Interactive, "interactive", "i", false, "mark the shell interactive; the prompt loop still runs only when standard input is a terminal")
	rootCmd.Flags().BoolVarP(&flags.Login, "login", "l", false, "run as a login shell")
	rootCmd.Flags().BoolVarP(&flags.StdinScript, "stdin", "s", false, "read commands from standard input even if interactive")
	rootCmd.Flags().BoolVarP(&flags.NoExec, "noexec", "n", false, "parse but do not execute")
	rootCmd.Flags().BoolVarP(&flags.Prompt, "prompt", "p", false, "do not import functions from the environment (variables are still imported)")
	rootCmd.Flags().BoolVarP(&flags.ExitOnError, "errexit", "e", false, "exit if a simple command fails")
	rootCmd.Flags().BoolVarP(&flags.Verbose, "verbose", "v", false, "print commands as they are read")
	rootCmd.Flags().BoolVarP(&flags.Trace, "xtrace", "x", false, "print commands as they are executed")
	rootCmd.Flags().BoolVarP(&flags.Debug, "debug", "d", false, "enable debug-level diagnostic logging")
	rootCmd.Flags().BoolVarP(&flags.OptimizeGlobs, "opt", "o", false, "compatibility flag, accepted and ignored")

	rootCmd.PersistentFlags().StringVar(&flags.LogFile, "log-file", "", "write diagnostics to a file instead of stderr")
	rootCmd.PersistentFlags().StringVar(&flags.LogFormat, "log-format", "text", "diagnostic log format (text or json)")

	rootCmd.SetFlagErrorFunc(flagErrorFunc)
	rootCmd.AddCommand(versionCmd)
}

// flagErrorFunc reshapes pflag's stock messages into rc(1)'s historical
// wording so scripts that grep stderr for these strings keep working.
func flagErrorFunc(cmd *cobra.Command, err error) error {
	msg := err.Error()
	switch {
	case strings.Contains(msg, "needs an argument"):
		name := flagNameFromError(msg)
		return fmt.Errorf("option requires an argument -- %s", name)
	case strings.Contains(msg, "unknown shorthand flag") || strings.Contains(msg, "unknown flag"):
		name := flagNameFromError(msg)
		return fmt.Errorf("bad option: -%s", name)
	default:
		return err
	}
}

// flagNameFromError extracts the offending flag letter from a pflag
// error message of the form "unknown shorthand flag: 'z' in -z".
func flagNameFromError(msg string) string {
	if i := strings.Index(msg, "'"); i >= 0 {
		rest := msg[i+1:]
		if j := strings.Index(rest, "'"); j >= 0 {
			return rest[:j]
		}
	}
	fields := strings.Fields(msg)
	if len(fields) > 0 {
		return strings.TrimPrefix(fields[len(fields)-1], "-")
	}
	return "?"
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// GetContext returns a context that cancels on SIGINT/SIGTERM, mirroring
// the token that sigsafe hands to slow syscalls elsewhere in the tree.
func GetContext() context.Context {
	ctx, _ := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	return ctx
}

func setupLogging() {
	logOutput := os.Stderr
	if flags.LogFile != "" {
		f, err := os.OpenFile(flags.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
		if err == nil {
			logOutput = f
		}
	}

	logLevel := slog.LevelInfo
	if flags.Debug {
		logLevel = slog.LevelDebug
	}

	logger := rlog.NewLogger(rlog.Config{
		Level:  logLevel,
		Format: flags.LogFormat,
		Output: logOutput,
	})
	rlog.SetDefault(logger)
}
