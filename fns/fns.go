// Package fns implements the shell's function table. Unlike variables,
// functions do not stack: redefining one simply replaces its body.
package fns

import (
	"sort"
	"strings"

	"rcsh/htab"
)

// Tree is the opaque parsed body of a function. The parser and
// evaluator are out of scope for this module; fns only needs to
// serialize a body back to source text for export and invoke it when
// the dispatcher calls.
type Tree interface {
	// String returns the unparsed textual form of the body, used to
	// build the "fn_NAME={...}" export string.
	String() string
	// Invoke runs the function body against argv, returning the exit
	// status the dispatcher should store. ctx is opaque to fns; it is
	// whatever the evaluator above this module needs (typically a
	// *dispatch.Context), passed as `any` to avoid an import cycle
	// between fns and dispatch.
	Invoke(ctx any, argv []string) int
}

// Function is one function binding.
type Function struct {
	Def    Tree
	ExtDef string // cached "fn_NAME={...}" export string
}

// signalNames is the set of reserved function names that must never be
// exported: signal handlers and the exit hook. Keys are lower-case and
// a function name is lower-cased before lookup, so matching ignores case.
var signalNames = map[string]bool{
	"sigexit": true,
	"sighup":  true,
	"sigint":  true,
	"sigquit": true,
	"sigterm": true,
	"sigpipe": true,
	"sigalrm": true,
	"sigusr1": true,
	"sigusr2": true,
}

// Table is the function table for one shell process.
type Table struct {
	tab *htab.Table[*Function]
}

// New creates an empty function table.
func New() *Table {
	return &Table{tab: htab.New[*Function]()}
}

// GetPlace finds or creates the entry for name, discarding any previous
// body in the process (functions do not stack).
func (t *Table) GetPlace(name string) *Function {
	if f, ok := t.tab.Lookup(name); ok {
		f.Def = nil
		f.ExtDef = ""
		return f
	}
	f := &Function{}
	t.tab.Set(name, f)
	return f
}

// Lookup returns the function bound to name, if any.
func (t *Table) Lookup(name string) (*Function, bool) {
	return t.tab.Lookup(name)
}

// Delete removes a function binding, applying htab's collapse-vs-
// tombstone rule.
func (t *Table) Delete(name string) {
	t.tab.Delete(name)
}

// Define installs body under name and precomputes its export string.
func (t *Table) Define(name string, body Tree) {
	f := t.GetPlace(name)
	f.Def = body
	f.ExtDef = "fn_" + name + "={" + body.String() + "}"
}

// Exports returns the sorted "fn_NAME={...}" strings for every function
// whose name is not a reserved signal name or "sigexit" (§4.B exclusion
// (c)). These are merged into vars.Table.MakeEnv's output by the
// caller, since fns has no visibility into the variable table.
func (t *Table) Exports() []string {
	var out []string
	t.tab.Each(func(name string, f *Function) {
		if signalNames[strings.ToLower(name)] {
			return
		}
		if f.ExtDef != "" {
			out = append(out, f.ExtDef)
		}
	})
	sort.Strings(out)
	return out
}

// Parser is supplied by the evaluator above this module; fns has no
// lexer/parser of its own (§1 "out of scope: the lexer, parser").
type Parser func(body string) (Tree, error)

// InitEnv installs inherited "fn_NAME={...}" entries by reparsing their
// bodies, unless noImport (the -p flag) is set. Entries that fail to
// parse are dropped rather than propagated as bozo strings, since a
// malformed function body cannot be round-tripped.
func (t *Table) InitEnv(envp []string, noImport bool, parse Parser) {
	if noImport {
		return
	}
	for _, kv := range envp {
		name, value, ok := strings.Cut(kv, "=")
		if !ok || !strings.HasPrefix(name, "fn_") {
			continue
		}
		fnName := strings.TrimPrefix(name, "fn_")
		body := strings.TrimSuffix(strings.TrimPrefix(value, "{"), "}")
		tree, err := parse(body)
		if err != nil {
			continue
		}
		t.Define(fnName, tree)
	}
}
