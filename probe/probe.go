// Package probe implements the executability test and PATH search used
// to resolve a command name to an absolute path.
//
// A plain os.Stat-plus-mode-bits check is not enough here: rc's access
// test must pick the owner/group/other permission mask based on the
// caller's own identity, the way access(2) would if it tested the
// effective (not real) ids, which is deliberately not what the kernel
// call does. So probe does the stat itself and applies the mask by
// hand, in the spirit of orospakr-spawnexec's LookPath/findExecutable
// but generalized to that identity-aware test.
package probe

import (
	"fmt"
	"os"
	"strings"

	"golang.org/x/sys/unix"

	"rcsh/pathcache"
	"rcsh/rlog"
	"rcsh/vars"
)

// Identity is the calling process's effective UID/GID and supplementary
// group list, cached once per shell process.
type Identity struct {
	UID    uint32
	GID    uint32
	Groups []uint32
}

// NewIdentity caches the effective UID, effective GID, and supplementary
// group list of the current process.
func NewIdentity() (Identity, error) {
	groups, err := unix.Getgroups()
	if err != nil {
		return Identity{}, err
	}
	g := make([]uint32, len(groups))
	for i, v := range groups {
		g[i] = uint32(v)
	}
	return Identity{
		UID:    uint32(os.Geteuid()),
		GID:    uint32(os.Getegid()),
		Groups: g,
	}, nil
}

func (id Identity) inGroup(gid uint32) bool {
	if gid == id.GID {
		return true
	}
	for _, g := range id.Groups {
		if g == gid {
			return true
		}
	}
	return false
}

// Access implements rc_access: stat path, pick the owner/group/other
// execute mask according to id, and return true iff the file is a
// regular file with the matching execute bit set. When verbose, a
// failure is logged as a diagnostic (the caller decides whether that
// diagnostic is user-visible).
func (id Identity) Access(path string, verbose bool) bool {
	var st unix.Stat_t
	if err := unix.Stat(path, &st); err != nil {
		if verbose {
			rlog.Debug("stat failed", "path", path, "err", err)
		}
		return false
	}

	if st.Mode&unix.S_IFMT != unix.S_IFREG {
		if verbose {
			rlog.Debug("not a regular file", "path", path)
		}
		return false
	}

	var mask uint32
	switch {
	case id.UID == 0:
		mask = 0111
	case uint32(st.Uid) == id.UID:
		mask = 0100
	case id.inGroup(uint32(st.Gid)):
		mask = 0010
	default:
		mask = 0001
	}

	if uint32(st.Mode)&mask == 0 {
		if verbose {
			rlog.Debug("access denied", "path", path)
		}
		return false
	}
	return true
}

// Join concatenates dir and name the way the shell's original
// static-buffer `join` did, except as a per-call allocation: a
// reimplementer does not need the "one live result at a time" ownership
// discipline once there is no shared buffer to reuse. A path element
// that is exactly "//" is preserved rather than collapsed, per POSIX's
// rule that a leading double slash is significant.
func Join(dir, name string) string {
	if dir == "" {
		return name
	}
	if dir == "/" || strings.HasSuffix(dir, "/") {
		return dir + name
	}
	return dir + "/" + name
}

// Cache wraps a pathcache.Table with the which()/verify_cmd() logic
// that decides when to consult, populate, and invalidate it.
type Cache struct {
	tab *pathcache.Table
}

// NewCache creates an empty probe cache.
func NewCache() *Cache {
	return &Cache{tab: pathcache.New()}
}

// Reset empties the cache. Callers must invoke this on every mutation
// of the `path` variable (cache-coherence invariant).
func (c *Cache) Reset() {
	c.tab.Reset()
}

// nonPrintableToQuestion replaces non-printable bytes in name with '?'
// for the "cannot find" diagnostic.
func nonPrintableToQuestion(name string) string {
	b := []byte(name)
	for i, c := range b {
		if c < 0x20 || c == 0x7f {
			b[i] = '?'
		}
	}
	return string(b)
}

// Which resolves name to an absolute path:
//
//   - empty name -> ("", false) with no diagnostic, so bare redirections
//     like "> foo" have no command to resolve;
//   - absolute name -> probed directly;
//   - a cached directory -> joined without re-probing;
//   - otherwise every directory in pathVar, in order, until one passes
//     Access; the winning directory is cached.
//
// If verbose and nothing matches, a "cannot find `name'" diagnostic is
// logged with non-printable bytes rendered as '?'.
func (c *Cache) Which(id Identity, name string, pathVar vars.List, verbose bool) (string, bool) {
	if name == "" {
		return "", false
	}
	if strings.HasPrefix(name, "/") {
		if id.Access(name, verbose) {
			return name, true
		}
		return "", false
	}
	if dir, ok := c.tab.Lookup(name); ok {
		return Join(dir, name), true
	}

	for _, dir := range pathVar {
		full := Join(dir, name)
		if id.Access(full, false) {
			c.tab.Set(name, dir)
			return full, true
		}
	}

	if verbose {
		// A user-facing shell diagnostic, not the runtime's own
		// operational log: printed directly to fd 2 with the rc:
		// prefix every other diagnostic carries (spec.md §7), not
		// routed through rlog.
		fmt.Fprintf(os.Stderr, "rc: cannot find `%s'\n", nonPrintableToQuestion(name))
	}
	return "", false
}

// VerifyCmd re-probes fullpath, purging name's cache entry if it is no
// longer executable. Called by the dispatcher after any non-zero
// external exit.
func (c *Cache) VerifyCmd(id Identity, name, fullpath string) {
	if !id.Access(fullpath, false) {
		c.tab.Delete(name)
	}
}
