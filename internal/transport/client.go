package transport

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"sync"

	"github.com/vovakirdan/tickhook/internal/protocol"
)

// ErrClosed is returned by Send after the connection ended.
var ErrClosed = errors.New("transport: connection closed")

// Client is the controller side of a control socket connection.
type Client struct {
	conn net.Conn

	mu  sync.Mutex
	enc *protocol.Encoder

	responses chan protocol.Response
	done      chan struct{}
	err       error

	closing   chan struct{}
	closeOnce sync.Once
}

// Dial connects to an agent's control socket.
func Dial(ctx context.Context, network, address string) (*Client, error) {
	var d net.Dialer
	conn, err := d.DialContext(ctx, network, address)
	if err != nil {
		return nil, fmt.Errorf("transport: dial %s %s: %w", network, address, err)
	}
	return NewClient(conn), nil
}

// NewClient wraps an established connection.
func NewClient(conn net.Conn) *Client {
	c := &Client{
		conn:      conn,
		enc:       protocol.NewEncoder(conn),
		responses: make(chan protocol.Response, 64),
		done:      make(chan struct{}),
		closing:   make(chan struct{}),
	}
	go c.readLoop()
	return c
}

// Send writes one event.
func (c *Client) Send(ev protocol.Event) error {
	select {
	case <-c.done:
		return ErrClosed
	default:
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	return c.enc.WriteEvent(ev)
}

// Responses delivers host responses in order. It is closed when the
// connection ends.
func (c *Client) Responses() <-chan protocol.Response {
	return c.responses
}

// Done is closed when the connection ends.
func (c *Client) Done() <-chan struct{} {
	return c.done
}

// Err returns why the connection ended, nil for a clean close.
func (c *Client) Err() error {
	<-c.done
	return c.err
}

// RemoteAddr describes the peer.
func (c *Client) RemoteAddr() string {
	return remoteName(c.conn)
}

// Close ends the connection. Responses nobody read are dropped.
func (c *Client) Close() error {
	c.closeOnce.Do(func() { close(c.closing) })
	return c.conn.Close()
}

func (c *Client) readLoop() {
	defer close(c.done)
	defer close(c.responses)

	dec := protocol.NewDecoder(c.conn)
	for {
		resp, err := dec.ReadResponse()
		if errors.Is(err, protocol.ErrUnknownKind) {
			continue
		}
		if err != nil {
			if !errors.Is(err, io.EOF) && !errors.Is(err, net.ErrClosed) {
				c.err = err
			}
			return
		}
		select {
		case c.responses <- resp:
		case <-c.closing:
			return
		}
	}
}
