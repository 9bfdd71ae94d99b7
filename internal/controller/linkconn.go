package controller

import (
	"context"

	"github.com/vovakirdan/tickhook/internal/channel"
	"github.com/vovakirdan/tickhook/internal/protocol"
)

// LinkConn is a Conn over the controller half of an in-process link.
type LinkConn struct {
	link      *channel.ControllerEnd
	responses chan protocol.Response
}

var _ Conn = (*LinkConn)(nil)

// NewLinkConn starts forwarding link's responses until ctx is done or the
// host side goes away.
func NewLinkConn(ctx context.Context, link *channel.ControllerEnd) *LinkConn {
	c := &LinkConn{link: link, responses: make(chan protocol.Response)}
	go func() {
		defer close(c.responses)
		for {
			resp, err := link.Responses.ReceiveContext(ctx)
			if err != nil {
				return
			}
			select {
			case c.responses <- resp:
			case <-ctx.Done():
				return
			}
		}
	}()
	return c
}

func (c *LinkConn) Send(ev protocol.Event) error {
	return c.link.Events.Send(ev)
}

func (c *LinkConn) Responses() <-chan protocol.Response {
	return c.responses
}
