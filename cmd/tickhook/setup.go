package main

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/tickhook/internal/config"
	"github.com/vovakirdan/tickhook/internal/controller"
	"github.com/vovakirdan/tickhook/internal/storage"
)

// loadConfig loads and validates the configuration, applying global flag
// overrides. It exits on error like the other command helpers.
func loadConfig() config.Config {
	cfg, err := config.Load(flagConfigPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if flagLogLevel != "" {
		cfg.Log.Level = flagLogLevel
	}
	if flagDBPath != "" {
		cfg.Journal.Path = flagDBPath
		cfg.Journal.Enabled = true
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	return cfg
}

func newLogger(cfg config.Config, w io.Writer) *log.Logger {
	return cfg.Log.NewLogger(w)
}

// openJournal opens the journal and starts a session for a controller. It
// returns no options when the journal is disabled or unavailable.
func openJournal(cfg config.Config, logger *log.Logger, name, remote string) (opts []controller.Option, done func()) {
	done = func() {}
	if !cfg.Journal.Enabled {
		return nil, done
	}

	store, err := storage.Open(cfg.Journal.Path)
	if err != nil {
		logger.Warn("could not open journal", "error", err)
		return nil, done
	}
	id, err := store.BeginSession(name, remote)
	if err != nil {
		logger.Warn("could not start journal session", "error", err)
		store.Close()
		return nil, done
	}

	done = func() {
		if err := store.EndSession(id); err != nil {
			logger.Warn("could not end journal session", "error", err)
		}
		store.Close()
	}
	return []controller.Option{controller.WithJournal(store, id)}, done
}
