package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vovakirdan/tickhook/internal/platform/tui"
	"github.com/vovakirdan/tickhook/internal/storage"
)

var (
	flagJournalLimit int
	flagJournalPlain bool
)

var journalCmd = &cobra.Command{
	Use:   "journal [session]",
	Short: "Browse recorded controller sessions",
	Long: `List recent controller sessions, or the events and responses of one
session. A session can be named by a prefix of its id.

On a terminal, without arguments, an interactive browser is started; use
--plain to print instead.

Examples:
  tickhook journal
  tickhook journal --plain --limit 5
  tickhook journal 3f2a9c1e`,
	Args: cobra.MaximumNArgs(1),
	Run:  runJournal,
}

func init() {
	journalCmd.Flags().IntVar(&flagJournalLimit, "limit", 20, "Number of sessions to list")
	journalCmd.Flags().BoolVar(&flagJournalPlain, "plain", false, "Print instead of starting the browser")
}

func runJournal(_ *cobra.Command, args []string) {
	cfg := loadConfig()

	store, err := storage.Open(cfg.Journal.Path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening journal: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	if len(args) == 1 {
		printEntries(store, args[0])
		return
	}

	if !flagJournalPlain {
		if w, h, termErr := term.GetSize(int(os.Stdout.Fd())); termErr == nil {
			if err := tui.RunJournal(store, w, h); err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				os.Exit(1)
			}
			return
		}
	}

	printSessions(store)
}

func printSessions(store *storage.Store) {
	sessions, err := store.RecentSessions(flagJournalLimit)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading journal: %v\n", err)
		os.Exit(1)
	}

	if len(sessions) == 0 {
		fmt.Println("No controller sessions recorded yet.")
		return
	}

	fmt.Printf("  %-36s  %-10s  %-16s  %-7s  %s\n", "Session", "Controller", "Started", "Entries", "Remote")
	fmt.Printf("  %-36s  %-10s  %-16s  %-7s  %s\n", "-------", "----------", "-------", "-------", "------")
	for _, s := range sessions {
		fmt.Printf("  %-36s  %-10s  %-16s  %-7d  %s\n",
			s.ID, s.Controller, s.StartedAt.Format("2006-01-02 15:04"), s.Events, s.Remote)
	}
}

func printEntries(store *storage.Store, prefix string) {
	match, err := store.FindSessions(prefix)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading journal: %v\n", err)
		os.Exit(1)
	}
	switch len(match) {
	case 0:
		fmt.Fprintf(os.Stderr, "Error: no session matches %q\n", prefix)
		os.Exit(1)
	case 1:
	default:
		fmt.Fprintf(os.Stderr, "Error: %q matches %d sessions\n", prefix, len(match))
		os.Exit(1)
	}

	session := match[0]
	entries, err := store.Entries(session.ID, 0)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading journal: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Session %s (%s, %s)\n", session.ID, session.Controller, session.Remote)
	fmt.Println()
	for _, e := range entries {
		dir := "->"
		if e.Direction == storage.DirResponse {
			dir = "<-"
		}
		fmt.Printf("  %s  %s %s\n", e.CreatedAt.Format("15:04:05.000"), dir, e.Text)
	}
}
