// Package tui provides the Bubble Tea controller console, the journal
// browser and an SSH server exposing the console.
package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// TickMsg refreshes time-dependent parts of a view.
type TickMsg time.Time

// tickCmd returns a command that sends a TickMsg after one period of rate.
func tickCmd(rate int) tea.Cmd {
	interval := time.Second / time.Duration(rate)
	return tea.Tick(interval, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}
