// Package tree defines the narrow boundary between this module and the
// lexer/parser/evaluator that sits above it. The parse tree itself is
// out of scope here; all the function table and dispatcher need is a
// way to re-serialize a parsed body for export and a way to invoke it.
package tree

// Node is a parsed command or block. String returns its unparsed
// textual form, used to build a function's "fn_NAME={...}" export
// string. Invoke runs the node against argv and returns the exit
// status the dispatcher should store; ctx is opaque here (typically a
// *dispatch.Context) to avoid an import cycle between this package's
// consumers and the dispatcher.
type Node interface {
	String() string
	Invoke(ctx any, argv []string) int
}

// Literal is a Node that is just its own source text, with no
// evaluation behavior, for a body that only needs round-tripping
// through export and reparse, not running. Only this package's tests
// use it; the shell's own environment import (cmd/shell.go) does not.
type Literal string

// String returns the literal's own text.
func (l Literal) String() string {
	return string(l)
}

// Invoke is a no-op that always reports success; Literal bodies are
// never meant to run, only to round-trip.
func (l Literal) Invoke(ctx any, argv []string) int {
	return 0
}
