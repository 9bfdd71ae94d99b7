package interceptor

import (
	"github.com/charmbracelet/log"

	"github.com/vovakirdan/tickhook/internal/channel"
	"github.com/vovakirdan/tickhook/internal/protocol"
)

// NewSession reports session starts to the controller. It holds no state.
type NewSession struct {
	responses *channel.Sender[protocol.Response]
	logger    *log.Logger
}

// NewNewSession returns a notifier sending on link's response direction.
func NewNewSession(link *channel.HostEnd, logger *log.Logger) *NewSession {
	if logger == nil {
		logger = log.Default()
	}
	return &NewSession{responses: link.Responses, logger: logger}
}

// Fire sends NewGame. A missing controller is logged and ignored.
func (n *NewSession) Fire() {
	n.logger.Info("new game detected")
	if err := n.responses.Send(protocol.NewGame); err != nil {
		n.logger.Warn("could not report new game", "err", err)
	}
}

// Detour adapts Fire to a hook point; the original body always runs.
func (n *NewSession) Detour(next func()) {
	n.Fire()
	next()
}
