package channel

import "github.com/vovakirdan/tickhook/internal/protocol"

// ControllerEnd is the controller's half of a Link: it sends events and
// receives responses.
type ControllerEnd struct {
	Events    *Sender[protocol.Event]
	Responses *Receiver[protocol.Response]
}

// HostEnd is the host's half of a Link: it receives events and sends
// responses.
type HostEnd struct {
	Events    *Receiver[protocol.Event]
	Responses *Sender[protocol.Response]
}

// NewLink creates the two halves of a bidirectional command link.
func NewLink() (*ControllerEnd, *HostEnd) {
	evTx, evRx := New[protocol.Event]()
	respTx, respRx := New[protocol.Response]()
	return &ControllerEnd{Events: evTx, Responses: respRx},
		&HostEnd{Events: evRx, Responses: respTx}
}

// Close drops both controller-side endpoints.
func (c *ControllerEnd) Close() {
	c.Events.Close()
	c.Responses.Close()
}

// Close drops both host-side endpoints.
func (h *HostEnd) Close() {
	h.Events.Close()
	h.Responses.Close()
}
