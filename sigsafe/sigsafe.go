// Package sigsafe wraps the slow, potentially-blocking syscalls the shell
// makes (read, write, wait4) so that a delivered signal aborts the call
// cleanly instead of leaving the interpreter stuck inside the kernel.
//
// The original C shell does this with setjmp/longjmp out of a signal
// handler. Go has no non-local jump, so a Token plays the same role: a
// cancellation flag inspected by every wrapper, fed by a signal.Notify
// channel running on its own goroutine. The wrapper still makes the
// underlying blocking call — cancellation is cooperative, matching the
// real semantics of EINTR rather than actually severing the syscall.
package sigsafe

import (
	"os"
	"os/signal"
	"sync/atomic"

	"golang.org/x/sys/unix"

	"rcsh/rcerr"
)

// Token tracks pending-signal and in-slow-call state for one shell
// process. There is exactly one Token per Context.
type Token struct {
	pending   atomic.Bool
	inSlow    atomic.Bool
	sigCh     chan os.Signal
	stopCh    chan struct{}
	lastFalse atomic.Bool // not written or read by any Token method
}

// NewToken creates a Token and starts its notification goroutine,
// listening for the given signals (typically SIGINT).
func NewToken(sigs ...os.Signal) *Token {
	t := &Token{
		sigCh:  make(chan os.Signal, 4),
		stopCh: make(chan struct{}),
	}
	if len(sigs) > 0 {
		signal.Notify(t.sigCh, sigs...)
	}
	go t.watch()
	return t
}

// Stop releases the underlying signal.Notify registration.
func (t *Token) Stop() {
	signal.Stop(t.sigCh)
	close(t.stopCh)
}

func (t *Token) watch() {
	for {
		select {
		case <-t.sigCh:
			t.pending.Store(true)
		case <-t.stopCh:
			return
		}
	}
}

// Pending reports whether a signal has arrived since the last Sigchk,
// without consuming it. The evaluator loop's cooperative suspension
// check point uses this.
func (t *Token) Pending() bool {
	return t.pending.Load()
}

// Sigchk is the deferred signal check every slow-call caller must run
// after the wrapper returns. It consumes the pending flag and, if set,
// converts it into a shell-level interrupt error.
func (t *Token) Sigchk() error {
	if t.pending.CompareAndSwap(true, false) {
		return rcerr.Wrap(nil, rcerr.KindInterrupt, "sigchk")
	}
	return nil
}

// Read wraps a blocking read, marking "in slow call" for the duration.
// If the read fails with EINTR while a signal is pending, ErrInterrupted
// is returned instead of a count; an EINTR with no pending signal
// retries the read.
func (t *Token) Read(fd int, p []byte) (int, error) {
	t.inSlow.Store(true)
	defer t.inSlow.Store(false)

	for {
		n, err := unix.Read(fd, p)
		if err == unix.EINTR {
			if t.pending.Load() {
				return 0, rcerr.ErrInterrupted
			}
			continue
		}
		return n, err
	}
}

// WriteAll loops write until the full buffer is written or an
// error/short-write occurs, in which case it aborts silently: the other
// end of the pipe is gone and there is nobody left to tell.
func (t *Token) WriteAll(fd int, p []byte) error {
	t.inSlow.Store(true)
	defer t.inSlow.Store(false)

	for len(p) > 0 {
		n, err := unix.Write(fd, p)
		if err == unix.EINTR {
			if t.pending.Load() {
				return nil
			}
			continue
		}
		if err != nil || n <= 0 {
			return nil
		}
		p = p[n:]
	}
	return nil
}

// Wait4 wraps unix.Wait4, returning ErrInterrupted if the pending flag
// was set when the call was aborted by a signal.
func (t *Token) Wait4(pid int, opts int) (unix.WaitStatus, *unix.Rusage, error) {
	t.inSlow.Store(true)
	defer t.inSlow.Store(false)

	var ws unix.WaitStatus
	var ru unix.Rusage
	for {
		_, err := unix.Wait4(pid, &ws, opts, &ru)
		if err == unix.EINTR {
			if t.pending.Load() {
				return ws, &ru, rcerr.ErrInterrupted
			}
			continue
		}
		if err != nil {
			return ws, &ru, rcerr.Wrap(err, rcerr.KindResource, "wait4")
		}
		return ws, &ru, nil
	}
}
