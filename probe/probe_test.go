package probe

import (
	"os"
	"path/filepath"
	"testing"

	"rcsh/vars"
)

func mustIdentity(t *testing.T) Identity {
	t.Helper()
	id, err := NewIdentity()
	if err != nil {
		t.Fatalf("NewIdentity: %v", err)
	}
	return id
}

func TestAccessExecutableFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "prog")
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"), 0755); err != nil {
		t.Fatal(err)
	}

	id := mustIdentity(t)
	if !id.Access(path, false) {
		t.Fatal("expected executable file to pass Access")
	}
}

func TestAccessNonExecutableFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "data.txt")
	if err := os.WriteFile(path, []byte("hello"), 0644); err != nil {
		t.Fatal(err)
	}

	id := mustIdentity(t)
	if id.Access(path, false) {
		t.Fatal("expected non-executable file to fail Access")
	}
}

func TestAccessMissingFile(t *testing.T) {
	id := mustIdentity(t)
	if id.Access("/no/such/path/at/all", false) {
		t.Fatal("expected missing file to fail Access")
	}
}

func TestAccessDirectoryIsRejected(t *testing.T) {
	dir := t.TempDir()
	id := mustIdentity(t)
	if id.Access(dir, false) {
		t.Fatal("a directory is never executable under rc_access")
	}
}

func TestJoinPreservesLeadingDoubleSlash(t *testing.T) {
	if got := Join("//", "ls"); got != "//ls" {
		t.Fatalf("Join(//, ls) = %q, want //ls", got)
	}
	if got := Join("/bin", "ls"); got != "/bin/ls" {
		t.Fatalf("Join(/bin, ls) = %q, want /bin/ls", got)
	}
	if got := Join("/bin/", "ls"); got != "/bin/ls" {
		t.Fatalf("Join(/bin/, ls) = %q, want /bin/ls", got)
	}
}

func TestWhichEmptyNameIsAbsent(t *testing.T) {
	c := NewCache()
	id := mustIdentity(t)
	if _, ok := c.Which(id, "", nil, true); ok {
		t.Fatal("empty name should resolve to absent, not an error")
	}
}

func TestWhichAbsolutePath(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "prog")
	os.WriteFile(path, nil, 0755)

	c := NewCache()
	id := mustIdentity(t)
	got, ok := c.Which(id, path, nil, false)
	if !ok || got != path {
		t.Fatalf("Which(abs) = (%q, %v), want (%q, true)", got, ok, path)
	}
}

func TestWhichPathSearchAndCache(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tool")
	os.WriteFile(path, nil, 0755)

	c := NewCache()
	id := mustIdentity(t)
	pathVar := vars.List{dir}

	got, ok := c.Which(id, "tool", pathVar, false)
	if !ok || got != path {
		t.Fatalf("Which(tool) = (%q, %v), want (%q, true)", got, ok, path)
	}
	if c.tab.Len() != 1 {
		t.Fatalf("expected tool to be cached, Len() = %d", c.tab.Len())
	}

	// Second call should hit the cache without needing pathVar again.
	got2, ok2 := c.Which(id, "tool", nil, false)
	if !ok2 || got2 != path {
		t.Fatalf("cached Which(tool) = (%q, %v), want (%q, true)", got2, ok2, path)
	}
}

func TestWhichNotFound(t *testing.T) {
	c := NewCache()
	id := mustIdentity(t)
	if _, ok := c.Which(id, "definitely-not-a-real-command", vars.List{"/nonexistent"}, true); ok {
		t.Fatal("expected lookup failure for a nonexistent command")
	}
}

func TestVerifyCmdPurgesStaleEntry(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tool")
	os.WriteFile(path, nil, 0755)

	c := NewCache()
	id := mustIdentity(t)
	c.Which(id, "tool", vars.List{dir}, false)

	os.Remove(path)
	c.VerifyCmd(id, "tool", path)

	if _, ok := c.tab.Lookup("tool"); ok {
		t.Fatal("VerifyCmd should have purged the stale cache entry")
	}
}

func TestResetEmptiesCache(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tool")
	os.WriteFile(path, nil, 0755)

	c := NewCache()
	id := mustIdentity(t)
	c.Which(id, "tool", vars.List{dir}, false)
	c.Reset()

	if c.tab.Len() != 0 {
		t.Fatal("Reset should empty the cache")
	}
}
