package dispatch

import "golang.org/x/sys/unix"

// savedFds remembers dup'd copies of fd 0-2 so they can be restored
// after a builtin has run with redirections applied in place, the
// module's substitute for true fork-level fd isolation.
type savedFds struct {
	fds [3]int
}

func saveStdFds() savedFds {
	var s savedFds
	for i := 0; i < 3; i++ {
		dup, err := unix.Dup(i)
		if err != nil {
			dup = -1
		}
		s.fds[i] = dup
	}
	return s
}

func (s savedFds) restore() {
	for i := 0; i < 3; i++ {
		if s.fds[i] < 0 {
			continue
		}
		unix.Dup2(s.fds[i], i)
		unix.Close(s.fds[i])
	}
}
