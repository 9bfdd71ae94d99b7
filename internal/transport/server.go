// Package transport carries events and responses between a controller
// process and the in-process agent over a local socket, one msgpack frame
// per value.
package transport

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/tickhook/internal/channel"
	"github.com/vovakirdan/tickhook/internal/protocol"
)

// Server accepts controller connections and bridges them to the controller
// half of a link. Only one controller is attached at a time; the link
// outlives connections so a new controller can resume a frozen host.
type Server struct {
	network string
	address string
	link    *channel.ControllerEnd
	logger  *log.Logger

	ln   net.Listener
	quit chan struct{}

	mu       sync.Mutex
	attached net.Conn
	closed   bool

	wg sync.WaitGroup
}

// NewServer returns a server for link listening on network/address.
func NewServer(network, address string, link *channel.ControllerEnd, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}
	return &Server{network: network, address: address, link: link, logger: logger, quit: make(chan struct{})}
}

// Listen binds the socket. A stale unix socket file is removed first.
func (s *Server) Listen() error {
	if s.network == "unix" {
		if err := os.Remove(s.address); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("transport: remove stale socket: %w", err)
		}
	}
	ln, err := net.Listen(s.network, s.address)
	if err != nil {
		return fmt.Errorf("transport: listen %s %s: %w", s.network, s.address, err)
	}
	s.ln = ln
	return nil
}

// Addr returns the bound address. Listen must have succeeded.
func (s *Server) Addr() net.Addr {
	return s.ln.Addr()
}

// Serve accepts connections until ctx is done or Close is called.
func (s *Server) Serve(ctx context.Context) error {
	if s.ln == nil {
		if err := s.Listen(); err != nil {
			return err
		}
	}
	s.logger.Info("control socket listening", "network", s.network, "address", s.ln.Addr().String())

	go func() {
		select {
		case <-ctx.Done():
			s.Close()
		case <-s.quit:
		}
	}()

	for {
		conn, err := s.ln.Accept()
		if err != nil {
			if s.isClosed() {
				return nil
			}
			return fmt.Errorf("transport: accept: %w", err)
		}

		if !s.attach(conn) {
			s.logger.Warn("refusing controller, one is already attached", "remote", remoteName(conn))
			conn.Close()
			continue
		}

		go func() {
			defer s.wg.Done()
			s.handle(ctx, conn)
		}()
	}
}

// Close stops accepting, drops the attached controller and waits for its
// handler to finish.
func (s *Server) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	close(s.quit)
	attached := s.attached
	s.mu.Unlock()

	var err error
	if s.ln != nil {
		err = s.ln.Close()
	}
	if attached != nil {
		attached.Close()
	}
	s.wg.Wait()
	return err
}

func (s *Server) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// attach registers conn as the controller and its handler with wg. Both
// happen under mu so Close never waits on a handler it cannot see.
func (s *Server) attach(conn net.Conn) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.attached != nil || s.closed {
		return false
	}
	s.attached = conn
	s.wg.Add(1)
	return true
}

func (s *Server) detach() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.attached = nil
}

func (s *Server) handle(ctx context.Context, conn net.Conn) {
	remote := remoteName(conn)
	logger := s.logger.With("remote", remote)

	defer s.detach()
	defer conn.Close()

	if n := s.link.Responses.Discard(); n > 0 {
		logger.Debug("discarded responses queued while detached", "count", n)
	}
	logger.Info("controller attached")

	connCtx, cancel := context.WithCancel(ctx)
	pumpDone := make(chan struct{})
	go func() {
		defer close(pumpDone)
		s.pumpResponses(connCtx, conn, logger)
	}()

	s.readEvents(conn, logger)

	cancel()
	conn.Close()
	<-pumpDone
	logger.Info("controller detached")
}

// readEvents forwards decoded events to the host until the stream ends.
func (s *Server) readEvents(conn net.Conn, logger *log.Logger) {
	dec := protocol.NewDecoder(conn)
	for {
		ev, err := dec.ReadEvent()
		if errors.Is(err, protocol.ErrUnknownKind) {
			logger.Warn("skipping frame", "err", err)
			continue
		}
		if err != nil {
			if !errors.Is(err, io.EOF) && !errors.Is(err, net.ErrClosed) {
				logger.Warn("read failed", "err", err)
			}
			return
		}

		logger.Debug("forwarding event", "event", ev)
		if err := s.link.Events.Send(ev); err != nil {
			logger.Error("host stopped accepting events", "err", err)
			return
		}
	}
}

// pumpResponses writes host responses to conn until ctx is done.
func (s *Server) pumpResponses(ctx context.Context, conn net.Conn, logger *log.Logger) {
	enc := protocol.NewEncoder(conn)
	for {
		resp, err := s.link.Responses.ReceiveContext(ctx)
		if err != nil {
			if errors.Is(err, channel.ErrDisconnected) {
				logger.Warn("host response channel closed")
				conn.Close()
			}
			return
		}
		if err := enc.WriteResponse(resp); err != nil {
			logger.Warn("write failed", "response", resp, "err", err)
			conn.Close()
			return
		}
	}
}

func remoteName(conn net.Conn) string {
	if addr := conn.RemoteAddr(); addr != nil && addr.String() != "" {
		return addr.String()
	}
	return "local"
}
