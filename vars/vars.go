// Package vars implements the shell's variable table: an htab of
// *Entry with lexical stacking (a local assignment shadows, rather
// than overwrites, any enclosing value) and on-demand, cached
// materialization of the exported environment.
package vars

import (
	"slices"
	"sort"
	"strings"

	"rcsh/htab"
)

// List is a shell value: a sequence of words. It stands in for the
// parser's richer argument-list type at the boundary this package
// needs — assignment and export only ever care about the word strings.
type List []string

// String joins the list with spaces, the form used inside an exported
// "NAME=value" string.
func (l List) String() string {
	return strings.Join(l, " ")
}

// Entry is one variable binding. Next implements lexical stacking: a
// local (stack) assignment pushes a new Entry in front of the old one;
// leaving scope pops it. At most one Entry per name is ever reachable
// from the table itself — the rest are reached only via Next.
type Entry struct {
	ExtDef     *string // cached "NAME=value" export string, nil until built
	Def        List
	Next       *Entry
	Exportable bool // explicit override for prompt/version (see MakeEnv)
}

// Table is the variable table for one shell process.
type Table struct {
	tab      *htab.Table[*Entry]
	env      []string // cached MakeEnv() result
	envFns   []string // fnExports the cached env was built from
	envDirty bool
	bozo     []string // inherited entries that are neither var nor fn
}

// New creates an empty variable table.
func New() *Table {
	return &Table{
		tab:      htab.New[*Entry](),
		envDirty: true,
	}
}

// GetPlace finds or creates the entry for name. If stack is true, a new
// entry is pushed in front of any existing one (shadowing); otherwise
// the existing top entry is returned for in-place overwrite (its old
// ExtDef/Def should be considered freed by the caller). Every call
// marks the environment dirty, since even a read-then-overwrite caller
// is expected to mutate Def immediately after.
func (t *Table) GetPlace(name string, stack bool) *Entry {
	t.envDirty = true

	existing, _ := t.tab.Lookup(name)
	if stack {
		e := &Entry{Next: existing}
		t.tab.Set(name, e)
		return e
	}
	if existing != nil {
		return existing
	}
	e := &Entry{}
	t.tab.Set(name, e)
	return e
}

// Lookup returns the current (top-of-stack) entry for name, if any,
// without creating one.
func (t *Table) Lookup(name string) (*Entry, bool) {
	e, ok := t.tab.Lookup(name)
	return e, ok
}

// Delete removes a variable binding. If stack is true and the current
// top entry has a shadowed entry beneath it, only the top is popped;
// otherwise, if there is a shadow, the top's value is cleared but the
// chain is kept (a later scope exit will still find its shadow);
// otherwise the name is removed from the table entirely.
func (t *Table) Delete(name string, stack bool) {
	t.envDirty = true

	e, ok := t.tab.Lookup(name)
	if !ok {
		return
	}
	if e.Next != nil {
		if stack {
			t.tab.Set(name, e.Next)
		} else {
			e.Def = nil
			e.ExtDef = nil
		}
		return
	}
	t.tab.Delete(name)
}

// SetBozo records inherited environment strings that round-tripped
// through InitEnv as neither a variable nor a function; they are
// passed through unchanged on the next MakeEnv.
func (t *Table) SetBozo(strs []string) {
	t.bozo = strs
	t.envDirty = true
}

// defaultedUnexported are the variables excluded from export unless
// their entry carries an explicit Exportable override.
var defaultedUnexported = map[string]bool{
	"prompt":  true,
	"version": true,
}

// MakeEnv produces the sorted exported environment: "NAME=value" for
// every exportable variable, plus any bozo strings inherited at
// startup. Function export strings ("fn_NAME={...}") are passed in by
// the caller (the fns package), since vars has no visibility into
// function bodies. The result is cached until the next mutation of the
// table or a call with different fnExports.
//
// $noexport is read from the table itself, at export time, per its
// reserved-variable contract: its value lists variable names to
// exclude, so assigning it is all a caller needs to do for it to take
// effect on the next export. $noexport is never itself exported.
func (t *Table) MakeEnv(fnExports []string) []string {
	if !t.envDirty && t.env != nil && slices.Equal(t.envFns, fnExports) {
		return t.env
	}

	noexport := map[string]bool{"noexport": true}
	if e, ok := t.tab.Lookup("noexport"); ok {
		for _, n := range e.Def {
			noexport[n] = true
		}
	}

	var out []string
	t.tab.Each(func(name string, e *Entry) {
		if noexport[name] {
			return
		}
		if defaultedUnexported[name] && !e.Exportable {
			return
		}
		out = append(out, EncodeName(name)+"="+e.Def.String())
	})
	out = append(out, fnExports...)
	out = append(out, t.bozo...)

	sort.Strings(out)
	t.env = out
	t.envFns = slices.Clone(fnExports)
	t.envDirty = false
	return out
}

// InitEnv installs inherited "NAME=VALUE" entries as variables. Entries
// beginning with "fn_" are left for the caller (fns.InitEnv) to handle;
// anything that is not a well-formed "NAME=VALUE" pair is recorded (via
// SetBozo) as a bozo string to be retained and re-exported verbatim.
func (t *Table) InitEnv(envp []string) {
	var bozo []string
	for _, kv := range envp {
		if strings.HasPrefix(kv, "fn_") {
			continue
		}
		name, value, ok := strings.Cut(kv, "=")
		if !ok || name == "" {
			bozo = append(bozo, kv)
			continue
		}
		e := t.GetPlace(DecodeName(name), false)
		e.Def = List(strings.Fields(value))
	}
	t.SetBozo(bozo)
}

const hexDigits = "0123456789ABCDEF"

// isIdentSafe reports whether r is safe to carry unescaped in a POSIX
// environment variable name.
func isIdentSafe(r rune) bool {
	return r == '_' ||
		(r >= 'a' && r <= 'z') ||
		(r >= 'A' && r <= 'Z') ||
		(r >= '0' && r <= '9')
}

// EncodeName hex-escapes characters unsafe in a POSIX environment
// variable name as "__XX" (two uppercase hex digits), so an rc variable
// name containing e.g. '-' or '*' survives a round trip through the
// environment.
func EncodeName(name string) string {
	var b strings.Builder
	for i, r := range name {
		if isIdentSafe(r) && !(i == 0 && r >= '0' && r <= '9') {
			b.WriteRune(r)
			continue
		}
		b.WriteString("__")
		b.WriteByte(hexDigits[(byte(r)>>4)&0xF])
		b.WriteByte(hexDigits[byte(r)&0xF])
	}
	return b.String()
}

// DecodeName reverses EncodeName.
func DecodeName(name string) string {
	var b strings.Builder
	for i := 0; i < len(name); i++ {
		if name[i] == '_' && i+3 < len(name) && name[i+1] == '_' && isHex(name[i+2]) && isHex(name[i+3]) {
			hi := hexVal(name[i+2])
			lo := hexVal(name[i+3])
			b.WriteByte(hi<<4 | lo)
			i += 3
			continue
		}
		b.WriteByte(name[i])
	}
	return b.String()
}

func isHex(c byte) bool {
	return (c >= '0' && c <= '9') || (c >= 'A' && c <= 'F')
}

func hexVal(c byte) byte {
	if c >= '0' && c <= '9' {
		return c - '0'
	}
	return c - 'A' + 10
}
