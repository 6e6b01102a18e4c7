package dispatch

import (
	"testing"

	"rcsh/sigsafe"
)

func TestPathListReflectsVarsTable(t *testing.T) {
	sig := sigsafe.NewToken()
	defer sig.Stop()
	ctx, err := NewContext(sig)
	if err != nil {
		t.Fatalf("NewContext: %v", err)
	}

	if got := ctx.PathList(); got != nil {
		t.Fatalf("PathList with no `path` set = %v, want nil", got)
	}

	place := ctx.Vars.GetPlace("path", false)
	place.Def = []string{"/bin", "/usr/bin"}
	got := ctx.PathList()
	if len(got) != 2 || got[0] != "/bin" {
		t.Fatalf("PathList = %v, want [/bin /usr/bin]", got)
	}
}

func TestSetUmaskRecordsValue(t *testing.T) {
	sig := sigsafe.NewToken()
	defer sig.Stop()
	ctx, err := NewContext(sig)
	if err != nil {
		t.Fatalf("NewContext: %v", err)
	}

	ctx.SetUmask(0027)
	if ctx.Umask() != 0027 {
		t.Fatalf("Umask() = %#o, want %#o", ctx.Umask(), 0027)
	}
}

func TestConsumeSuppressNewlineClearsFlag(t *testing.T) {
	sig := sigsafe.NewToken()
	defer sig.Stop()
	ctx, err := NewContext(sig)
	if err != nil {
		t.Fatalf("NewContext: %v", err)
	}

	if ctx.ConsumeSuppressNewline() {
		t.Fatal("a fresh Context should not suppress the newline")
	}

	ctx.suppressNextNewline = true
	if !ctx.ConsumeSuppressNewline() {
		t.Fatal("expected the flag to be reported true once")
	}
	if ctx.ConsumeSuppressNewline() {
		t.Fatal("expected the flag to be consumed (cleared) after the first read")
	}
}

func TestAddPendingFifoQueuesForDrain(t *testing.T) {
	sig := sigsafe.NewToken()
	defer sig.Stop()
	ctx, err := NewContext(sig)
	if err != nil {
		t.Fatalf("NewContext: %v", err)
	}

	ctx.AddPendingFifo("/tmp/does-not-need-to-exist-for-this-check")
	if len(ctx.pendingFifos) != 1 {
		t.Fatalf("pendingFifos len = %d, want 1", len(ctx.pendingFifos))
	}
	ctx.drainPendingFifos()
	if len(ctx.pendingFifos) != 0 {
		t.Fatal("drainPendingFifos should clear the queue")
	}
}
