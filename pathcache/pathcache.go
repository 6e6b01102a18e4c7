// Package pathcache memoizes command-name to directory lookups made by
// the executability probe. A directory string stored here is the same
// Go string header held by the live `path` variable's value list — Go's
// garbage collector makes the C original's "borrowed pointer" bookkeeping
// moot, since sharing a string's backing array is safe for as long as
// either side holds a reference. What does NOT become moot is the
// correctness invariant: a cache entry's directory must track the
// current value of `path`, so Reset must still be called on every
// mutation of `path`.
package pathcache

import "rcsh/htab"

// Table maps a command base name to the directory it was last resolved
// in.
type Table struct {
	tab *htab.Table[string]
}

// New creates an empty path cache.
func New() *Table {
	return &Table{tab: htab.New[string]()}
}

// Lookup returns the cached directory for name, if any.
func (t *Table) Lookup(name string) (string, bool) {
	return t.tab.Lookup(name)
}

// Set records that name was last found in dir.
func (t *Table) Set(name, dir string) {
	t.tab.Set(name, dir)
}

// Delete purges a single command's cache entry, used by verify_cmd when
// a previously resolved command stops being executable.
func (t *Table) Delete(name string) {
	t.tab.Delete(name)
}

// Reset empties the cache entirely. Required after any mutation of the
// `path` variable: a cached directory is only valid as long as it is
// still a member of the current path list.
func (t *Table) Reset() {
	t.tab = htab.New[string]()
}

// Len reports the number of cached entries, primarily for tests
// asserting cache-coherence behavior.
func (t *Table) Len() int {
	return t.tab.Len()
}
