//go:build windows || darwin || (linux && (amd64 || arm64))

package input

import (
	"sync/atomic"

	"github.com/charmbracelet/log"
	"github.com/ebitengine/purego"

	"github.com/vovakirdan/tickhook/internal/hook"
)

// Entries are the host's input entry points. Each takes the input-subsystem
// object as its first argument.
type Entries struct {
	KeyDown      hook.Address
	KeyUp        hook.Address
	RawMouseMove hook.Address
}

// Native dispatches by calling the host's entry points directly.
type Native struct {
	entries Entries
	handle  atomic.Uintptr
	logger  *log.Logger
}

var _ Dispatcher = (*Native)(nil)

var syscallN = purego.SyscallN

// NewNative returns a dispatcher for entries. It drops events until the
// input-subsystem handle has been captured.
func NewNative(entries Entries, logger *log.Logger) *Native {
	if logger == nil {
		logger = log.Default()
	}
	return &Native{entries: entries, logger: logger}
}

// Capture records the input-subsystem object pointer seen by the host.
func (n *Native) Capture(handle uintptr) {
	if n.handle.Swap(handle) != handle {
		n.logger.Debug("captured input handle", "handle", hook.Address(handle))
	}
}

// Handle returns the captured handle, or zero.
func (n *Native) Handle() uintptr {
	return n.handle.Load()
}

func (n *Native) KeyDown(keyCode int32, charCode uint32, isRepeat bool) {
	n.call("key-down", n.entries.KeyDown, uintptr(keyCode), uintptr(charCode), boolArg(isRepeat))
}

func (n *Native) KeyUp(keyCode int32, charCode uint32, isRepeat bool) {
	n.call("key-up", n.entries.KeyUp, uintptr(keyCode), uintptr(charCode), boolArg(isRepeat))
}

func (n *Native) RawMouseMove(x, y int32) {
	n.call("raw-mouse-move", n.entries.RawMouseMove, uintptr(x), uintptr(y))
}

func (n *Native) call(name string, fn hook.Address, args ...uintptr) {
	this := n.handle.Load()
	if this == 0 || fn == 0 {
		n.logger.Warn("dropping input, host entry not ready", "entry", name, "handle", hook.Address(this), "fn", fn)
		return
	}
	syscallN(uintptr(fn), append([]uintptr{this}, args...)...)
}

func boolArg(b bool) uintptr {
	if b {
		return 1
	}
	return 0
}
