// Package interceptor runs on the host thread at hooked entry points: the
// tick interceptor drains controller events once per frame and can freeze
// the host; the new-session notifier reports session starts.
package interceptor

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/tickhook/internal/channel"
	"github.com/vovakirdan/tickhook/internal/hook"
	"github.com/vovakirdan/tickhook/internal/input"
	"github.com/vovakirdan/tickhook/internal/protocol"
	"github.com/vovakirdan/tickhook/internal/session"
)

// Tick is the per-frame state machine. Intercept must only be called from
// the host thread, never concurrently with itself.
type Tick struct {
	events    *channel.Receiver[protocol.Event]
	responses *channel.Sender[protocol.Response]
	state     *session.State
	input     input.Dispatcher
	delta     hook.DeltaCell
	logger    *log.Logger
}

// NewTick wires a tick interceptor to the host half of a link.
func NewTick(link *channel.HostEnd, state *session.State, dispatcher input.Dispatcher, delta hook.DeltaCell, logger *log.Logger) *Tick {
	if logger == nil {
		logger = log.Default()
	}
	return &Tick{
		events:    link.Events,
		responses: link.Responses,
		state:     state,
		input:     dispatcher,
		delta:     delta,
		logger:    logger,
	}
}

// Mode reports the current run mode. Host thread only.
func (t *Tick) Mode() session.Mode {
	return t.state.Mode
}

// Detour adapts Intercept to a hook point that calls through to the
// original tick afterwards.
func (t *Tick) Detour(next func()) {
	t.Intercept()
	next()
}

// Intercept runs one frame's worth of event handling. It returns when the
// host may run its frame. Channel failures are logged and the rest of this
// frame's handling is skipped so the host keeps running.
func (t *Tick) Intercept() {
	if err := t.run(); err != nil {
		t.logger.Error("tick interception failed", "err", err)
	}
}

func (t *Tick) run() error {
	// announce is set whenever the next paused wait must be acknowledged
	// with Stopped: on entry in Stopping (the frame after a step) and after
	// every explicit Stop.
	announce := t.state.Mode == session.Stopping

	for {
		var ev protocol.Event

		switch t.state.Mode {
		case session.Running:
			next, err := t.events.TryReceive()
			if errors.Is(err, channel.ErrEmpty) {
				t.applyDelta()
				return nil
			}
			if err != nil {
				return fmt.Errorf("receive event: %w", err)
			}
			ev = next

		case session.Stopping:
			if announce {
				if err := t.responses.Send(protocol.Stopped); err != nil {
					return fmt.Errorf("send stopped: %w", err)
				}
				announce = false
			}
			next, err := t.events.Receive()
			if err != nil {
				return fmt.Errorf("wait for event while stopped: %w", err)
			}
			ev = next

		default:
			return fmt.Errorf("invalid mode %d", t.state.Mode)
		}

		if t.apply(ev, &announce) {
			t.applyDelta()
			return nil
		}
	}
}

// apply performs ev's effect and reports whether the loop must break to let
// the host run a frame.
func (t *Tick) apply(ev protocol.Event, announce *bool) bool {
	t.logger.Debug("received event", "event", ev, "mode", t.state.Mode)

	switch e := ev.(type) {
	case protocol.StopEvent:
		t.state.Mode = session.Stopping
		*announce = true
	case protocol.StepEvent:
		return true
	case protocol.ContinueEvent:
		t.state.Mode = session.Running
		return true
	case protocol.PressEvent:
		t.input.KeyDown(e.Code, uint32(e.Code), false)
	case protocol.ReleaseEvent:
		t.input.KeyUp(e.Code, uint32(e.Code), false)
	case protocol.MouseEvent:
		t.input.RawMouseMove(e.X, e.Y)
	case protocol.SetDeltaEvent:
		t.state.SetDelta(e.Value)
	default:
		t.logger.Warn("ignoring unknown event", "type", fmt.Sprintf("%T", ev))
	}
	return false
}

func (t *Tick) applyDelta() {
	if d, ok := t.state.Delta(); ok {
		t.delta.Store(d)
	}
}
