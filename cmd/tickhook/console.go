package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/tickhook/internal/controller"
	"github.com/vovakirdan/tickhook/internal/platform/tui"
	"github.com/vovakirdan/tickhook/internal/transport"
)

var consoleCmd = &cobra.Command{
	Use:   "console",
	Short: "Interactive controller console",
	Long: `Attach to the agent and drive the host interactively.

Keys:
  Ctrl+P   - Pause (host sends 'stopped' once frozen)
  Ctrl+N   - Step one frame while paused
  Ctrl+R   - Resume
  Ctrl+L   - Clear the log
  Esc      - Quit

Anything else is typed into the command line, e.g. 'tap r' or
'mouse 5 -3', and sent with Enter.

Examples:
  tickhook console
  tickhook console --config ./configs/tickhook.yaml`,
	Run: runConsole,
}

func runConsole(_ *cobra.Command, _ []string) {
	cfg := loadConfig()
	// The console owns the terminal; diagnostics are dropped.
	logger := newLogger(cfg, io.Discard)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client, err := transport.Dial(ctx, cfg.Agent.Network, cfg.Agent.Address)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer client.Close()

	opts, endJournal := openJournal(cfg, logger, "console", client.RemoteAddr())
	defer endJournal()

	ctrl := controller.New(client, append(opts, controller.WithLogger(logger))...)
	if err := tui.RunConsole(ctx, ctrl, cfg.Agent.Network+" "+cfg.Agent.Address); err != nil {
		fmt.Fprintf(os.Stderr, "Error running console: %v\n", err)
	}
}
