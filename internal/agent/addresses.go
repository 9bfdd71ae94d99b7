package agent

import (
	"github.com/charmbracelet/log"

	"github.com/vovakirdan/tickhook/internal/config"
	"github.com/vovakirdan/tickhook/internal/hook"
	"github.com/vovakirdan/tickhook/internal/input"
)

// Addresses is the host's address table, computed once at startup.
type Addresses struct {
	Base         hook.Address
	Tick         hook.Address
	NewGame      hook.Address
	AppCapture   hook.Address
	KeyDown      hook.Address
	KeyUp        hook.Address
	RawMouseMove hook.Address
	DeltaTime    hook.Address
}

// Resolve adds every configured offset to base.
func Resolve(base hook.Address, off config.Offsets) Addresses {
	at := func(o config.Offset) hook.Address { return hook.Resolve(base, uint64(o)) }
	return Addresses{
		Base:         base,
		Tick:         at(off.Tick),
		NewGame:      at(off.NewGame),
		AppCapture:   at(off.AppCapture),
		KeyDown:      at(off.KeyDown),
		KeyUp:        at(off.KeyUp),
		RawMouseMove: at(off.RawMouseMove),
		DeltaTime:    at(off.DeltaTime),
	}
}

// Input returns the entries used by the native input dispatcher.
func (a Addresses) Input() input.Entries {
	return input.Entries{KeyDown: a.KeyDown, KeyUp: a.KeyUp, RawMouseMove: a.RawMouseMove}
}

// Log writes the table at debug level.
func (a Addresses) Log(logger *log.Logger) {
	logger.Debug("address table",
		"base", a.Base,
		"tick", a.Tick,
		"new_game", a.NewGame,
		"app_capture", a.AppCapture,
		"key_down", a.KeyDown,
		"key_up", a.KeyUp,
		"raw_mouse_move", a.RawMouseMove,
		"delta_time", a.DeltaTime,
	)
}
