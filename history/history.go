// Package history persists the interactive prompt's command history to
// a file, wired into github.com/peterh/liner's ReadHistory/WriteHistory.
// Failure to open the history file is non-fatal: the shell still runs,
// it just starts with no history and reports the problem once.
package history

import (
	"os"

	"github.com/peterh/liner"

	"rcsh/rlog"
)

// File is the on-disk history file backing one interactive session.
type File struct {
	path string
}

// Open returns a File for path. It does not touch the filesystem yet —
// opening happens lazily in Load/Save so that a missing history file on
// first run is not itself an error.
func Open(path string) *File {
	return &File{path: path}
}

// Load reads saved history into line, if the file exists. Open failure
// is swallowed beyond a single debug-level diagnostic, matching the
// shell's "silent paths" contract for history.
func (f *File) Load(line *liner.State) {
	if f.path == "" {
		return
	}
	fh, err := os.Open(f.path)
	if err != nil {
		if !os.IsNotExist(err) {
			rlog.Debug("could not open history file", "path", f.path, "err", err)
		}
		return
	}
	defer fh.Close()

	if _, err := line.ReadHistory(fh); err != nil {
		rlog.Debug("could not read history", "path", f.path, "err", err)
	}
}

// Save writes the in-memory history back to disk. Failure here is also
// non-fatal: losing history on exit should never take the shell down
// with it.
func (f *File) Save(line *liner.State) {
	if f.path == "" {
		return
	}
	fh, err := os.Create(f.path)
	if err != nil {
		rlog.Debug("could not save history", "path", f.path, "err", err)
		return
	}
	defer fh.Close()

	if _, err := line.WriteHistory(fh); err != nil {
		rlog.Debug("could not write history", "path", f.path, "err", err)
	}
}

// Append records a single entered line, used when the shell wants to
// flush history incrementally rather than only at exit.
func (f *File) Append(entry string) {
	if f.path == "" {
		return
	}
	fh, err := os.OpenFile(f.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
	if err != nil {
		rlog.Debug("could not append history", "path", f.path, "err", err)
		return
	}
	defer fh.Close()

	if _, err := fh.WriteString(entry + "\n"); err != nil {
		rlog.Debug("could not append history", "path", f.path, "err", err)
	}
}
