package tui

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/charmbracelet/ssh"
	"github.com/charmbracelet/wish"
	"github.com/charmbracelet/wish/bubbletea"

	"github.com/vovakirdan/tickhook/internal/config"
	"github.com/vovakirdan/tickhook/internal/controller"
	"github.com/vovakirdan/tickhook/internal/storage"
	"github.com/vovakirdan/tickhook/internal/transport"
)

// SSHServerConfig holds configuration for the SSH server.
type SSHServerConfig struct {
	// Address is the host:port to listen on (e.g., ":23235").
	Address string

	// HostKeyPath is the path to the host key file.
	// If empty, a key will be auto-generated at ~/.tickhook/host_key.
	HostKeyPath string

	// AgentNetwork and AgentAddress locate the agent's control socket.
	AgentNetwork string
	AgentAddress string

	// JournalPath is the controller journal database; empty disables it.
	JournalPath string

	// IdleTimeout is how long to wait before closing idle connections.
	IdleTimeout time.Duration

	Logger *log.Logger
}

// DefaultSSHServerConfig returns a config with sensible defaults.
func DefaultSSHServerConfig() SSHServerConfig {
	return SSHServerConfig{
		Address:      ":23235",
		AgentNetwork: "unix",
		AgentAddress: "/tmp/tickhook.sock",
		JournalPath:  "~/.tickhook/journal.db",
		IdleTimeout:  30 * time.Minute,
	}
}

// SSHServer serves the controller console over SSH. Every session dials
// the agent; the agent accepts one controller at a time.
type SSHServer struct {
	config SSHServerConfig
	server *ssh.Server
	store  *storage.Store
	logger *log.Logger
}

// NewSSHServer creates a new SSH server with the given configuration.
func NewSSHServer(cfg SSHServerConfig) (*SSHServer, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = log.NewWithOptions(os.Stderr, log.Options{
			ReportTimestamp: true,
			Prefix:          "tickhook-ssh",
		})
	}

	var store *storage.Store
	if cfg.JournalPath != "" {
		var err error
		store, err = storage.Open(cfg.JournalPath)
		if err != nil {
			logger.Warn("could not open journal", "error", err)
			// Continue without journal
		}
	}

	srv := &SSHServer{
		config: cfg,
		store:  store,
		logger: logger,
	}

	hostKeyPath := cfg.HostKeyPath
	if hostKeyPath == "" {
		home, homeErr := os.UserHomeDir()
		if homeErr != nil {
			return nil, fmt.Errorf("cannot get home directory: %w", homeErr)
		}
		hostKeyPath = filepath.Join(home, ".tickhook", "host_key")
	} else if expanded, err := config.ExpandHome(hostKeyPath); err == nil {
		hostKeyPath = expanded
	}

	if mkdirErr := os.MkdirAll(filepath.Dir(hostKeyPath), 0o700); mkdirErr != nil {
		return nil, fmt.Errorf("cannot create host key directory: %w", mkdirErr)
	}

	opts := []ssh.Option{
		wish.WithAddress(cfg.Address),
		wish.WithHostKeyPath(hostKeyPath),
		wish.WithIdleTimeout(cfg.IdleTimeout),
		wish.WithMiddleware(
			bubbletea.Middleware(srv.teaHandler),
			srv.loggingMiddleware,
		),
	}

	server, err := wish.NewServer(opts...)
	if err != nil {
		if store != nil {
			store.Close()
		}
		return nil, fmt.Errorf("cannot create SSH server: %w", err)
	}

	srv.server = server
	return srv, nil
}

// teaHandler connects one SSH session to the agent and returns its console.
func (s *SSHServer) teaHandler(sshSession ssh.Session) (tea.Model, []tea.ProgramOption) {
	pty, _, ok := sshSession.Pty()
	if !ok {
		s.logger.Warn("no PTY requested", "user", sshSession.User())
		return nil, nil
	}

	ctx := sshSession.Context()
	client, err := transport.Dial(ctx, s.config.AgentNetwork, s.config.AgentAddress)
	if err != nil {
		s.logger.Warn("agent unreachable", "user", sshSession.User(), "error", err)
		wish.Fatalln(sshSession, "agent unreachable:", err)
		return nil, nil
	}

	opts := []controller.Option{controller.WithLogger(s.logger)}
	var journalID string
	if s.store != nil {
		journalID, err = s.store.BeginSession("ssh:"+sshSession.User(), sshSession.RemoteAddr().String())
		if err != nil {
			s.logger.Warn("could not start journal session", "error", err)
		} else {
			opts = append(opts, controller.WithJournal(s.store, journalID))
		}
	}

	go func() {
		<-ctx.Done()
		client.Close()
		if journalID != "" {
			if err := s.store.EndSession(journalID); err != nil {
				s.logger.Warn("could not end journal session", "error", err)
			}
		}
	}()

	model := NewConsoleModel(ctx, controller.New(client, opts...), s.config.AgentAddress)
	model.width = pty.Window.Width
	model.height = pty.Window.Height

	return model, []tea.ProgramOption{
		tea.WithAltScreen(),
	}
}

// loggingMiddleware logs SSH session events.
func (s *SSHServer) loggingMiddleware(next ssh.Handler) ssh.Handler {
	return func(sshSession ssh.Session) {
		s.logger.Info("session started",
			"user", sshSession.User(),
			"remote", sshSession.RemoteAddr().String(),
		)
		next(sshSession)
		s.logger.Info("session ended",
			"user", sshSession.User(),
			"remote", sshSession.RemoteAddr().String(),
		)
	}
}

// ListenAndServe starts the SSH server and blocks until shutdown.
func (s *SSHServer) ListenAndServe() error {
	s.logger.Info("starting SSH server", "address", s.config.Address, "agent", s.config.AgentAddress)

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	go func() {
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, ssh.ErrServerClosed) {
			s.logger.Error("server error", "error", err)
		}
	}()

	<-done
	s.logger.Info("shutting down...")
	return s.Shutdown()
}

// Shutdown gracefully stops the server.
func (s *SSHServer) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if s.store != nil {
		s.store.Close()
	}

	return s.server.Shutdown(ctx)
}

// Addr returns the server's listen address string.
func (s *SSHServer) Addr() string {
	return s.config.Address
}
