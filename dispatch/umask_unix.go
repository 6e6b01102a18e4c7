package dispatch

import "golang.org/x/sys/unix"

// setProcessUmask wraps unix.Umask, generalizing the teacher's
// container/syscalls.go setUmask wrapper from a one-shot container
// setup call to a builtin-driven runtime operation.
func setProcessUmask(mask int) int {
	return unix.Umask(mask)
}
