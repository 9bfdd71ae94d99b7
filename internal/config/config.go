// Package config provides YAML-based configuration for the agent, the
// controller tools and the demo host.
package config

import (
	"fmt"
	"io"
	"strconv"

	"github.com/charmbracelet/log"
	"gopkg.in/yaml.v3"
)

// Config is the whole tickhook configuration file.
type Config struct {
	Log     LogConfig     `yaml:"log"`
	Agent   AgentConfig   `yaml:"agent"`
	Offsets Offsets       `yaml:"offsets"`
	Journal JournalConfig `yaml:"journal"`
	Demo    DemoConfig    `yaml:"demo"`
}

// LogConfig controls diagnostic output.
type LogConfig struct {
	Level      string `yaml:"level"` // debug, info, warn, error
	Prefix     string `yaml:"prefix"`
	Timestamps bool   `yaml:"timestamps"`
}

// AgentConfig describes the control socket the in-process agent listens on.
type AgentConfig struct {
	Network string `yaml:"network"` // "unix" or "tcp"
	Address string `yaml:"address"`
}

// Offsets locate host functions and data relative to the executable's base.
type Offsets struct {
	Tick         Offset `yaml:"tick"`           // frame tick, after the host updated its delta time
	NewGame      Offset `yaml:"new_game"`       // reached when a new session starts
	AppCapture   Offset `yaml:"app_capture"`    // input subsystem tick, used to capture its handle
	KeyDown      Offset `yaml:"key_down"`       // input subsystem key-down entry
	KeyUp        Offset `yaml:"key_up"`         // input subsystem key-up entry
	RawMouseMove Offset `yaml:"raw_mouse_move"` // input subsystem raw mouse entry
	DeltaTime    Offset `yaml:"delta_time"`     // float64 holding the frame's delta time
}

// JournalConfig controls the controller-side sqlite journal.
type JournalConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// DemoConfig configures the built-in demo host.
type DemoConfig struct {
	TickRate int `yaml:"tick_rate"`
	Width    int `yaml:"width"`
	Height   int `yaml:"height"`
}

// Offset is an address offset. YAML accepts integers or strings in any base
// understood by strconv.ParseUint (0x.., 0o.., decimal).
type Offset uint64

// UnmarshalYAML implements yaml.Unmarshaler.
func (o *Offset) UnmarshalYAML(value *yaml.Node) error {
	v, err := strconv.ParseUint(value.Value, 0, 64)
	if err != nil {
		return fmt.Errorf("line %d: invalid offset %q: %w", value.Line, value.Value, err)
	}
	*o = Offset(v)
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (o Offset) MarshalYAML() (any, error) {
	return o.String(), nil
}

func (o Offset) String() string {
	return fmt.Sprintf("%#x", uint64(o))
}

// Named returns the offsets keyed by their YAML names.
func (o Offsets) Named() map[string]Offset {
	return map[string]Offset{
		"tick":           o.Tick,
		"new_game":       o.NewGame,
		"app_capture":    o.AppCapture,
		"key_down":       o.KeyDown,
		"key_up":         o.KeyUp,
		"raw_mouse_move": o.RawMouseMove,
		"delta_time":     o.DeltaTime,
	}
}

// Validate checks the settings every mode needs.
func (c Config) Validate() error {
	switch c.Agent.Network {
	case "unix", "tcp", "tcp4", "tcp6":
	default:
		return fmt.Errorf("config: unsupported agent network %q", c.Agent.Network)
	}
	if c.Agent.Address == "" {
		return fmt.Errorf("config: agent address is empty")
	}
	if c.Demo.TickRate <= 0 {
		return fmt.Errorf("config: demo tick_rate must be positive, got %d", c.Demo.TickRate)
	}
	if _, err := log.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

// ValidateNative additionally requires every offset to be set.
func (c Config) ValidateNative() error {
	if err := c.Validate(); err != nil {
		return err
	}
	for name, off := range c.Offsets.Named() {
		if off == 0 {
			return fmt.Errorf("config: offset %s is not set", name)
		}
	}
	return nil
}

// NewLogger builds a logger writing to w according to the log section.
func (l LogConfig) NewLogger(w io.Writer) *log.Logger {
	level, err := log.ParseLevel(l.Level)
	if err != nil {
		level = log.InfoLevel
	}
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: l.Timestamps,
		Prefix:          l.Prefix,
		Level:           level,
	})
}
