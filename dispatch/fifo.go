package dispatch

import (
	"os"
	"syscall"

	"rcsh/rcerr"
)

// fifo backs one `<{command}` argument substitution: the parser/
// evaluator starts the producer command writing into a named pipe and
// hands dispatch the path; dispatch's job is only to make sure the
// pipe is drained (so the producer's write doesn't hang) and removed,
// never to wait for the producer's exit status, which is reaped
// independently.
type fifo struct {
	path string
}

// newFifo creates the named pipe at path, removing any stale file left
// behind by a previous run first.
func newFifo(path string) (*fifo, error) {
	os.Remove(path)
	if err := syscall.Mkfifo(path, 0600); err != nil {
		return nil, rcerr.WrapWithDetail(err, rcerr.KindResource, "mkfifo", path)
	}
	return &fifo{path: path}, nil
}

// openFifo wraps an already-created named pipe, for the read side that
// did not create it.
func openFifo(path string) *fifo {
	return &fifo{path: path}
}

func (f *fifo) Path() string { return f.path }

// drain opens the read end (unblocking a producer waiting in its own
// open(2) or blocked on a full pipe) and discards whatever is there,
// without waiting for the producer process itself to exit.
func (f *fifo) drain() {
	file, err := os.OpenFile(f.path, os.O_RDONLY|syscall.O_NONBLOCK, 0)
	if err != nil {
		return
	}
	defer file.Close()

	buf := make([]byte, 4096)
	for {
		n, err := file.Read(buf)
		if n == 0 || err != nil {
			return
		}
	}
}

// remove deletes the named pipe from the filesystem.
func (f *fifo) remove() {
	os.Remove(f.path)
}
