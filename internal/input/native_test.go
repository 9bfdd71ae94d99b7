//go:build windows || darwin || (linux && (amd64 || arm64))

package input

import (
	"bytes"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
)

type call struct {
	fn   uintptr
	args []uintptr
}

func withFakeSyscall(t *testing.T) *[]call {
	t.Helper()
	var calls []call
	prev := syscallN
	syscallN = func(fn uintptr, args ...uintptr) (uintptr, uintptr, uintptr) {
		calls = append(calls, call{fn: fn, args: append([]uintptr(nil), args...)})
		return 0, 0, 0
	}
	t.Cleanup(func() { syscallN = prev })
	return &calls
}

func TestNativeDropsUntilCaptured(t *testing.T) {
	calls := withFakeSyscall(t)

	var buf bytes.Buffer
	n := NewNative(Entries{KeyDown: 0x10, KeyUp: 0x20, RawMouseMove: 0x30}, log.New(&buf))

	n.KeyDown(65, 65, false)
	if len(*calls) != 0 {
		t.Fatalf("expected no host call before capture, got %d", len(*calls))
	}
	if !strings.Contains(buf.String(), "dropping input") {
		t.Errorf("expected a warning, log was %q", buf.String())
	}
}

func TestNativeCallsEntriesWithHandle(t *testing.T) {
	calls := withFakeSyscall(t)

	n := NewNative(Entries{KeyDown: 0x10, KeyUp: 0x20, RawMouseMove: 0x30}, log.New(&bytes.Buffer{}))
	n.Capture(0xabc)

	n.KeyDown(65, 65, false)
	n.KeyUp(65, 65, true)
	n.RawMouseMove(10, 20)

	if len(*calls) != 3 {
		t.Fatalf("expected 3 host calls, got %d", len(*calls))
	}

	down := (*calls)[0]
	if down.fn != 0x10 || len(down.args) != 4 || down.args[0] != 0xabc || down.args[1] != 65 || down.args[3] != 0 {
		t.Errorf("unexpected key-down call %+v", down)
	}
	up := (*calls)[1]
	if up.fn != 0x20 || up.args[3] != 1 {
		t.Errorf("unexpected key-up call %+v", up)
	}
	mouse := (*calls)[2]
	if mouse.fn != 0x30 || len(mouse.args) != 3 || mouse.args[1] != 10 || mouse.args[2] != 20 {
		t.Errorf("unexpected mouse call %+v", mouse)
	}
}
