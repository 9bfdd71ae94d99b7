package config

import (
	_ "embed"
)

//go:embed defaults/tickhook.yaml
var defaultYAML []byte

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Log: LogConfig{
			Level:      "info",
			Prefix:     "tickhook",
			Timestamps: true,
		},
		Agent: AgentConfig{
			Network: "unix",
			Address: "/tmp/tickhook.sock",
		},
		Journal: JournalConfig{
			Enabled: true,
			Path:    "~/.tickhook/journal.db",
		},
		Demo: DemoConfig{
			TickRate: 60,
			Width:    80,
			Height:   24,
		},
	}
}
