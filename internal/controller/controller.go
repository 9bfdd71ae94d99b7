// Package controller drives a host from the outside: it sends events over a
// connection, tracks whether the host is paused and journals the exchange.
package controller

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/tickhook/internal/protocol"
	"github.com/vovakirdan/tickhook/internal/storage"
)

var (
	// ErrNotPaused is returned by Step when the host is running.
	ErrNotPaused = errors.New("controller: host is not paused")

	// ErrDisconnected is returned when the connection ends while waiting.
	ErrDisconnected = errors.New("controller: disconnected")
)

// Conn is a connection to the agent. transport.Client implements it.
type Conn interface {
	Send(ev protocol.Event) error
	Responses() <-chan protocol.Response
}

// Journal persists the exchange. storage.Store implements it.
type Journal interface {
	Record(sessionID string, dir storage.Direction, text string) error
}

var _ Journal = (*storage.Store)(nil)

// Option configures a Controller.
type Option func(*Controller)

// WithJournal records every event and response under sessionID.
func WithJournal(j Journal, sessionID string) Option {
	return func(c *Controller) {
		c.journal = j
		c.sessionID = sessionID
	}
}

// WithLogger sets the logger.
func WithLogger(l *log.Logger) Option {
	return func(c *Controller) { c.logger = l }
}

// WithResponseHook is called for every response received, including those
// skipped while waiting for a specific one.
func WithResponseHook(fn func(protocol.Response)) Option {
	return func(c *Controller) { c.onResponse = fn }
}

// Controller is safe for use by one goroutine sending and one receiving.
type Controller struct {
	conn       Conn
	journal    Journal
	sessionID  string
	logger     *log.Logger
	onResponse func(protocol.Response)

	mu     sync.Mutex
	paused bool

	// Every Stop is acknowledged by exactly one Stopped, in order. Stopped
	// responses beyond those acknowledge the re-pause after a step.
	stopsPending int
	stepAcks     uint64
}

// New returns a controller over conn.
func New(conn Conn, opts ...Option) *Controller {
	c := &Controller{conn: conn}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = log.Default()
	}
	return c
}

// Paused reports whether the last acknowledged state is paused.
func (c *Controller) Paused() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.paused
}

// Send sends events in order.
func (c *Controller) Send(events ...protocol.Event) error {
	for _, ev := range events {
		if err := c.conn.Send(ev); err != nil {
			return fmt.Errorf("controller: send %s: %w", ev, err)
		}
		c.record(storage.DirEvent, ev.String())

		switch ev.(type) {
		case protocol.StopEvent:
			c.mu.Lock()
			c.stopsPending++
			c.mu.Unlock()
		case protocol.ContinueEvent:
			c.setPaused(false)
		}
	}
	return nil
}

// Exec parses and sends a text command.
func (c *Controller) Exec(line string) error {
	events, err := ParseCommand(line)
	if err != nil {
		return err
	}
	return c.Send(events...)
}

// Next waits for the next response.
func (c *Controller) Next(ctx context.Context) (protocol.Response, error) {
	select {
	case resp, ok := <-c.conn.Responses():
		if !ok {
			return nil, ErrDisconnected
		}
		c.record(storage.DirResponse, resp.String())
		if _, stopped := resp.(protocol.StoppedResponse); stopped {
			c.mu.Lock()
			c.paused = true
			if c.stopsPending > 0 {
				c.stopsPending--
			} else {
				c.stepAcks++
			}
			c.mu.Unlock()
		}
		if c.onResponse != nil {
			c.onResponse(resp)
		}
		return resp, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// WaitFor consumes responses until want arrives.
func (c *Controller) WaitFor(ctx context.Context, want protocol.Response) error {
	for {
		resp, err := c.Next(ctx)
		if err != nil {
			return fmt.Errorf("controller: waiting for %s: %w", want, err)
		}
		if resp == want {
			return nil
		}
		c.logger.Debug("skipping response while waiting", "got", resp, "want", want)
	}
}

// Pause stops the host and waits until every Stop sent so far has been
// acknowledged.
func (c *Controller) Pause(ctx context.Context) error {
	if err := c.Send(protocol.Stop); err != nil {
		return err
	}
	return c.waitUntil(ctx, func() bool { return c.stopsPending == 0 })
}

// Step runs exactly one frame and waits until the host is frozen again.
// Acknowledgements of earlier Stops still in flight are skipped.
func (c *Controller) Step(ctx context.Context) error {
	if !c.Paused() {
		return ErrNotPaused
	}
	c.mu.Lock()
	target := c.stepAcks + 1
	c.mu.Unlock()

	if err := c.Send(protocol.Step); err != nil {
		return err
	}
	return c.waitUntil(ctx, func() bool { return c.stepAcks >= target })
}

// waitUntil consumes responses until done, evaluated under c.mu, holds.
func (c *Controller) waitUntil(ctx context.Context, done func() bool) error {
	for {
		c.mu.Lock()
		ok := done()
		c.mu.Unlock()
		if ok {
			return nil
		}
		if _, err := c.Next(ctx); err != nil {
			return fmt.Errorf("controller: waiting for %s: %w", protocol.Stopped, err)
		}
	}
}

// Resume lets the host run freely.
func (c *Controller) Resume() error {
	return c.Send(protocol.Continue)
}

// Tap presses and releases a key within the same frame.
func (c *Controller) Tap(code int32) error {
	return c.Send(protocol.Press(code), protocol.Release(code))
}

func (c *Controller) setPaused(v bool) {
	c.mu.Lock()
	c.paused = v
	c.mu.Unlock()
}

func (c *Controller) record(dir storage.Direction, text string) {
	if c.journal == nil {
		return
	}
	if err := c.journal.Record(c.sessionID, dir, text); err != nil {
		c.logger.Warn("journal write failed", "err", err)
	}
}
