package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vovakirdan/tickhook/internal/controller"
	"github.com/vovakirdan/tickhook/internal/protocol"
	"github.com/vovakirdan/tickhook/internal/transport"
)

var (
	flagSendWait    string
	flagSendTimeout time.Duration
)

var sendCmd = &cobra.Command{
	Use:   "send <command>",
	Short: "Send one command to the agent",
	Long: `Connect to the agent's control socket, send one command and exit.

Commands:
  stop | step | continue
  press <key> | release <key> | tap <key>
  mouse <x> <y>
  delta <seconds>      (0 clears the override)

A key is a single character or an integer code; letters map to their
upper-case code and a lone digit is its character ('1' is 49, use 0x1
for key code 1). Several commands can be separated with ';'.

Examples:
  tickhook send stop --wait stopped
  tickhook send step --wait stopped
  tickhook send 'press w; delta 0.016; step' --wait stopped
  tickhook send continue`,
	Args: cobra.MinimumNArgs(1),
	Run:  runSend,
}

func init() {
	sendCmd.Flags().StringVar(&flagSendWait, "wait", "", "Wait for a response before exiting: stopped or new-game")
	sendCmd.Flags().DurationVar(&flagSendTimeout, "timeout", 5*time.Second, "How long to wait for the agent")
}

func runSend(_ *cobra.Command, args []string) {
	cfg := loadConfig()
	logger := newLogger(cfg, os.Stderr)

	var want protocol.Response
	switch flagSendWait {
	case "":
	case "stopped":
		want = protocol.Stopped
	case "new-game":
		want = protocol.NewGame
	default:
		fmt.Fprintf(os.Stderr, "Error: --wait must be stopped or new-game, got %q\n", flagSendWait)
		os.Exit(1)
	}

	var events []protocol.Event
	for _, line := range strings.Split(strings.Join(args, " "), ";") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		evs, err := controller.ParseCommand(line)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		events = append(events, evs...)
	}

	ctx, cancel := context.WithTimeout(context.Background(), flagSendTimeout)
	defer cancel()

	client, err := transport.Dial(ctx, cfg.Agent.Network, cfg.Agent.Address)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer client.Close()

	opts, endJournal := openJournal(cfg, logger, "send", client.RemoteAddr())
	defer endJournal()

	out := newPrinter()
	opts = append(opts,
		controller.WithLogger(logger),
		controller.WithResponseHook(out.response),
	)
	ctrl := controller.New(client, opts...)

	if err := ctrl.Send(events...); err != nil {
		endJournal()
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	for _, ev := range events {
		out.event(ev)
	}

	if want != nil {
		if err := ctrl.WaitFor(ctx, want); err != nil {
			endJournal()
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	}
}

// printer writes sent events and received responses, styled on a terminal.
type printer struct {
	styled bool
	sent   lipgloss.Style
	got    lipgloss.Style
}

func newPrinter() *printer {
	return &printer{
		styled: term.IsTerminal(int(os.Stdout.Fd())),
		sent:   lipgloss.NewStyle().Foreground(lipgloss.Color("75")),
		got:    lipgloss.NewStyle().Foreground(lipgloss.Color("213")).Bold(true),
	}
}

func (p *printer) event(ev protocol.Event) {
	p.print(p.sent, "-> "+ev.String())
}

func (p *printer) response(r protocol.Response) {
	p.print(p.got, "<- "+r.String())
}

func (p *printer) print(style lipgloss.Style, text string) {
	if p.styled {
		text = style.Render(text)
	}
	fmt.Println(text)
}
