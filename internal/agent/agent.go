// Package agent assembles the in-process remote-control layer: it owns the
// command link, the session state, the interceptors and their hook points,
// and optionally a control socket for out-of-process controllers.
package agent

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/tickhook/internal/channel"
	"github.com/vovakirdan/tickhook/internal/hook"
	"github.com/vovakirdan/tickhook/internal/input"
	"github.com/vovakirdan/tickhook/internal/interceptor"
	"github.com/vovakirdan/tickhook/internal/session"
	"github.com/vovakirdan/tickhook/internal/transport"
)

// Options configure an Agent.
type Options struct {
	// Network and Address of the control socket. An empty Address keeps the
	// agent in-process only; use Controller to drive it.
	Network string
	Address string

	Logger *log.Logger
}

// Agent is the context object shared by every hook point.
type Agent struct {
	logger *log.Logger

	controller *channel.ControllerEnd
	host       *channel.HostEnd

	state      *session.State
	tick       *interceptor.Tick
	newSession *interceptor.NewSession
	points     []hook.Point

	server    *transport.Server
	serveDone chan error

	closeOnce sync.Once
}

func newAgent(dispatcher input.Dispatcher, delta hook.DeltaCell, opts Options) *Agent {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}

	ctrl, host := channel.NewLink()
	state := session.New()
	a := &Agent{
		logger:     logger,
		controller: ctrl,
		host:       host,
		state:      state,
		tick:       interceptor.NewTick(host, state, dispatcher, delta, logger.WithPrefix("tick")),
		newSession: interceptor.NewNewSession(host, logger.WithPrefix("new-game")),
	}
	if opts.Address != "" {
		network := opts.Network
		if network == "" {
			network = "unix"
		}
		a.server = transport.NewServer(network, opts.Address, ctrl, logger.WithPrefix("socket"))
	}
	return a
}

// Controller returns the controller half of the link for in-process
// controllers. It must not be used while a control socket is serving.
func (a *Agent) Controller() *channel.ControllerEnd {
	return a.controller
}

// Tick returns the tick interceptor.
func (a *Agent) Tick() *interceptor.Tick {
	return a.tick
}

// NewSession returns the new-session notifier.
func (a *Agent) NewSession() *interceptor.NewSession {
	return a.newSession
}

// Points returns the hook points in installation order.
func (a *Agent) Points() []hook.Point {
	return a.points
}

// Start installs and enables every hook point and starts the control
// socket. On failure the points already enabled are disabled again.
func (a *Agent) Start(ctx context.Context) error {
	for i, p := range a.points {
		if err := p.Install(); err != nil {
			a.disable(a.points[:i])
			return fmt.Errorf("agent: install %s: %w", p.Name(), err)
		}
		if err := p.Enable(); err != nil {
			a.disable(a.points[:i])
			return fmt.Errorf("agent: enable %s: %w", p.Name(), err)
		}
		a.logger.Debug("hook enabled", "point", p.Name(), "target", p.Target())
	}

	if a.server != nil {
		if err := a.server.Listen(); err != nil {
			a.disable(a.points)
			return fmt.Errorf("agent: %w", err)
		}
		a.serveDone = make(chan error, 1)
		go func() {
			a.serveDone <- a.server.Serve(ctx)
		}()
	}

	a.logger.Info("agent started", "points", len(a.points))
	return nil
}

// Addr returns the control socket address, or "" when there is none.
func (a *Agent) Addr() string {
	if a.server == nil || a.serveDone == nil {
		return ""
	}
	return a.server.Addr().String()
}

// Close disables every hook point, stops the control socket and drops the
// controller half of the link, which releases a host frozen in a pause.
func (a *Agent) Close() error {
	var errs []error
	a.closeOnce.Do(func() {
		errs = append(errs, a.disable(a.points)...)
		for _, p := range a.points {
			if err := p.Close(); err != nil {
				errs = append(errs, fmt.Errorf("agent: close %s: %w", p.Name(), err))
			}
		}
		if a.server != nil && a.serveDone != nil {
			if err := a.server.Close(); err != nil {
				errs = append(errs, fmt.Errorf("agent: %w", err))
			}
			if err := <-a.serveDone; err != nil {
				errs = append(errs, fmt.Errorf("agent: %w", err))
			}
		}
		a.controller.Close()
		a.logger.Info("agent stopped")
	})
	return errors.Join(errs...)
}

func (a *Agent) disable(points []hook.Point) []error {
	var errs []error
	for i := len(points) - 1; i >= 0; i-- {
		if err := points[i].Disable(); err != nil {
			a.logger.Warn("could not disable hook", "point", points[i].Name(), "err", err)
			errs = append(errs, fmt.Errorf("agent: disable %s: %w", points[i].Name(), err))
		}
	}
	return errs
}
