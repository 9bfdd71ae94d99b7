package agent

import (
	"github.com/vovakirdan/tickhook/internal/hook"
	"github.com/vovakirdan/tickhook/internal/input"
)

// GoHost is a host written in Go. Its tick and new-game functions are
// reached through Entries so that Slot points can redirect them.
type GoHost interface {
	input.Dispatcher
	TickEntry() *hook.Entry
	NewGameEntry() *hook.Entry
	DeltaCell() hook.DeltaCell
}

// NewGo returns an agent for a Go host.
func NewGo(host GoHost, opts Options) *Agent {
	a := newAgent(host, host.DeltaCell(), opts)
	a.points = []hook.Point{
		hook.NewSlot("tick", host.TickEntry(), a.tick.Detour),
		hook.NewSlot("new-game", host.NewGameEntry(), a.newSession.Detour),
	}
	return a
}
