package agent

import (
	"fmt"

	"github.com/vovakirdan/tickhook/internal/config"
	"github.com/vovakirdan/tickhook/internal/hook"
	"github.com/vovakirdan/tickhook/internal/input"
)

// NativeOptions configure an agent injected into a machine-code host.
type NativeOptions struct {
	Options

	Offsets   config.Offsets
	Patcher   hook.Patcher
	Protector hook.Protector // defaults to hook.PageProtector

	// Base overrides the module base; zero means hook.ModuleBase.
	Base hook.Address
}

// NewNative resolves the host's address table and builds the three native
// hook points: tick, new-game and the input subsystem's tick used to
// capture its handle. Every detour calls through to the original body.
func NewNative(opts NativeOptions) (*Agent, error) {
	base := opts.Base
	if base == 0 {
		b, err := hook.ModuleBase()
		if err != nil {
			return nil, fmt.Errorf("agent: module base: %w", err)
		}
		base = b
	}

	prot := opts.Protector
	if prot == nil {
		prot = hook.PageProtector{}
	}

	addrs := Resolve(base, opts.Offsets)
	dispatcher := input.NewNative(addrs.Input(), opts.Logger)
	a := newAgent(dispatcher, hook.NewAddrCell(addrs.DeltaTime), opts.Options)
	addrs.Log(a.logger)

	// The callbacks see their own point through these variables; they are
	// assigned before any point is enabled.
	var tickPoint, newGamePoint, capturePoint *hook.Native

	tickPoint = hook.NewNative("tick", addrs.Tick, func(a0, a1, a2, a3 uintptr) uintptr {
		a.tick.Intercept()
		return tickPoint.CallThrough(a0, a1, a2, a3)
	}, opts.Patcher, prot)

	newGamePoint = hook.NewNative("new-game", addrs.NewGame, func(a0, a1, a2, a3 uintptr) uintptr {
		a.newSession.Fire()
		return newGamePoint.CallThrough(a0, a1, a2, a3)
	}, opts.Patcher, prot)

	capturePoint = hook.NewNative("app-capture", addrs.AppCapture, func(this, a1, a2, a3 uintptr) uintptr {
		dispatcher.Capture(this)
		return capturePoint.CallThrough(this, a1, a2, a3)
	}, opts.Patcher, prot)

	a.points = []hook.Point{capturePoint, tickPoint, newGamePoint}
	return a, nil
}
