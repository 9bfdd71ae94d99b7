//go:build !windows && !darwin && !(linux && (amd64 || arm64))

package input

import (
	"github.com/charmbracelet/log"

	"github.com/vovakirdan/tickhook/internal/hook"
)

// Entries are the host's input entry points.
type Entries struct {
	KeyDown      hook.Address
	KeyUp        hook.Address
	RawMouseMove hook.Address
}

// Native cannot call host code on this platform and drops every event.
type Native struct {
	logger *log.Logger
}

var _ Dispatcher = (*Native)(nil)

func NewNative(_ Entries, logger *log.Logger) *Native {
	if logger == nil {
		logger = log.Default()
	}
	return &Native{logger: logger}
}

func (n *Native) Capture(uintptr) {}

func (n *Native) Handle() uintptr { return 0 }

func (n *Native) KeyDown(int32, uint32, bool) { n.logger.Warn("native input unsupported") }

func (n *Native) KeyUp(int32, uint32, bool) { n.logger.Warn("native input unsupported") }

func (n *Native) RawMouseMove(int32, int32) { n.logger.Warn("native input unsupported") }
