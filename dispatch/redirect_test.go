package dispatch

import (
	"os"
	"path/filepath"
	"testing"
)

func TestFilesFillsUnmentionedFdsAndOpensTargets(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "out.txt")

	q := RedirQueue{{Op: RedirWrite, Fd: 1, Target: out}}
	files, closer, err := q.Files()
	if err != nil {
		t.Fatalf("Files: %v", err)
	}

	if len(files) != 3 {
		t.Fatalf("len(files) = %d, want 3", len(files))
	}
	if files[0] != os.Stdin {
		t.Fatalf("fd 0 should default to the shell's own stdin")
	}
	if files[1] == nil || files[1] == os.Stdout {
		t.Fatalf("fd 1 should be the opened redirect target, got %v", files[1])
	}

	if _, err := files[1].WriteString("hello"); err != nil {
		t.Fatalf("write: %v", err)
	}
	closer()

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if string(data) != "hello" {
		t.Fatalf("file contents = %q, want %q", data, "hello")
	}
}

func TestFilesRedirDupAliasesEarlierFd(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "out.txt")

	q := RedirQueue{
		{Op: RedirWrite, Fd: 1, Target: out},
		{Op: RedirDup, Fd: 2, DupFd: 1},
	}
	files, closer, err := q.Files()
	if err != nil {
		t.Fatalf("Files: %v", err)
	}
	defer closer()

	if files[1] != files[2] {
		t.Fatal("fd 2 should alias the same *os.File as fd 1")
	}
}

func TestFilesRedirDupNegativeMeansClosed(t *testing.T) {
	q := RedirQueue{{Op: RedirDup, Fd: 1, DupFd: -1}}
	files, closer, err := q.Files()
	if err != nil {
		t.Fatalf("Files: %v", err)
	}
	defer closer()

	if files[1] != nil {
		t.Fatalf("fd 1 should be nil (closed in child), got %v", files[1])
	}
}

func TestFilesOpenErrorPropagates(t *testing.T) {
	q := RedirQueue{{Op: RedirRead, Fd: 0, Target: "/does/not/exist/at/all"}}
	_, _, err := q.Files()
	if err == nil {
		t.Fatal("expected an error opening a nonexistent read target")
	}
}

func TestApplyNullRedirectionIsANoop(t *testing.T) {
	var q RedirQueue
	if err := q.Apply(); err != nil {
		t.Fatalf("Apply on empty queue: %v", err)
	}
}
