package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/tickhook/internal/agent"
	"github.com/vovakirdan/tickhook/internal/demohost"
)

var (
	flagHostListen  string
	flagHostNetwork string
	flagHostRate    int
	flagHostStatus  time.Duration
)

var hostCmd = &cobra.Command{
	Use:   "host",
	Short: "Run the demo host with the agent attached",
	Long: `Run a headless demo application with the agent hooked into its tick.

The demo moves a cursor around a field: W/A/S/D move it, raw mouse motion
nudges it and R starts a new game. Drive it from another terminal with
'tickhook send' or 'tickhook console'.

Examples:
  tickhook host
  tickhook host --listen 127.0.0.1:7070 --network tcp
  tickhook host --rate 30 --status 2s`,
	Run: runHost,
}

func init() {
	hostCmd.Flags().StringVar(&flagHostListen, "listen", "", "Control socket address (default: agent.address)")
	hostCmd.Flags().StringVar(&flagHostNetwork, "network", "", "Control socket network, unix or tcp (default: agent.network)")
	hostCmd.Flags().IntVar(&flagHostRate, "rate", 0, "Frames per second (default: demo.tick_rate)")
	hostCmd.Flags().DurationVar(&flagHostStatus, "status", time.Second, "Status log interval (0 disables)")
}

func runHost(_ *cobra.Command, _ []string) {
	cfg := loadConfig()
	if flagHostListen != "" {
		cfg.Agent.Address = flagHostListen
	}
	if flagHostNetwork != "" {
		cfg.Agent.Network = flagHostNetwork
	}
	if flagHostRate > 0 {
		cfg.Demo.TickRate = flagHostRate
	}

	logger := newLogger(cfg, os.Stderr)
	host := demohost.New(cfg.Demo, logger.WithPrefix("demo"))
	a := agent.NewGo(host, agent.Options{
		Network: cfg.Agent.Network,
		Address: cfg.Agent.Address,
		Logger:  logger,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := a.Start(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error starting agent: %v\n", err)
		os.Exit(1)
	}

	// Closing the agent releases a host frozen in a pause so Run can see
	// the cancelled context.
	go func() {
		<-ctx.Done()
		a.Close()
	}()

	if flagHostStatus > 0 {
		go func() {
			ticker := time.NewTicker(flagHostStatus)
			defer ticker.Stop()
			for {
				select {
				case <-ctx.Done():
					return
				case <-ticker.C:
					s := host.Snapshot()
					logger.Info("status", "frame", s.Frame, "game", s.Games, "x", s.X, "y", s.Y, "dt", s.Delta)
				}
			}
		}()
	}

	fmt.Printf("Demo host running, control socket %s %s\n", cfg.Agent.Network, a.Addr())
	fmt.Println("Press Ctrl+C to stop")

	if err := host.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		fmt.Fprintf(os.Stderr, "Host error: %v\n", err)
		os.Exit(1)
	}
	a.Close()
}
