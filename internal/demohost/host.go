// Package demohost is a small headless host used to exercise the agent
// without a native target. It runs a fixed-rate frame loop on a locked OS
// thread and moves a cursor around a bounded field: W, A, S and D move it,
// raw mouse motion nudges it, and R starts a new game.
package demohost

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/tickhook/internal/config"
	"github.com/vovakirdan/tickhook/internal/hook"
	"github.com/vovakirdan/tickhook/internal/input"
)

// Key codes understood by the host.
const (
	KeyW int32 = 'W'
	KeyA int32 = 'A'
	KeyS int32 = 'S'
	KeyD int32 = 'D'
	KeyR int32 = 'R'
)

const (
	// Speed is the cursor speed in cells per second.
	Speed = 20.0

	// MaxDelta caps the wall-clock delta of one frame.
	MaxDelta = 0.25
)

// Snapshot is a copy of the world taken between frames.
type Snapshot struct {
	Frame uint64
	Games int
	X, Y  float64
	Delta float64
}

func (s Snapshot) String() string {
	return fmt.Sprintf("frame=%d game=%d pos=(%.2f,%.2f) dt=%.4f", s.Frame, s.Games, s.X, s.Y, s.Delta)
}

// Host is the demo application.
type Host struct {
	width, height float64
	interval      time.Duration
	logger        *log.Logger

	delta   hook.Float64Cell
	tick    *hook.Entry
	newGame *hook.Entry

	mu        sync.Mutex
	held      map[int32]bool
	x, y      float64
	frame     uint64
	games     int
	lastDelta float64
	reset     bool
}

var _ input.Dispatcher = (*Host)(nil)

// New creates a host sized and paced by cfg.
func New(cfg config.DemoConfig, logger *log.Logger) *Host {
	if logger == nil {
		logger = log.Default()
	}
	rate := cfg.TickRate
	if rate <= 0 {
		rate = 60
	}
	h := &Host{
		width:    float64(max(cfg.Width, 1)),
		height:   float64(max(cfg.Height, 1)),
		interval: time.Second / time.Duration(rate),
		logger:   logger,
		held:     make(map[int32]bool),
	}
	h.tick = hook.NewEntry(h.update)
	h.newGame = hook.NewEntry(h.startGame)
	h.x, h.y = h.width/2, h.height/2
	return h
}

func (h *Host) TickEntry() *hook.Entry { return h.tick }

func (h *Host) NewGameEntry() *hook.Entry { return h.newGame }

func (h *Host) DeltaCell() hook.DeltaCell { return &h.delta }

// Run starts a game and then runs frames at the configured rate until ctx
// is done. It must be the only caller of RunFrame.
func (h *Host) Run(ctx context.Context) error {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	h.newGame.Call()

	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()

	last := time.Now()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case now := <-ticker.C:
			h.RunFrame(now.Sub(last).Seconds())
			last = time.Now()
		}
	}
}

// RunFrame runs one frame that took wall seconds of real time.
func (h *Host) RunFrame(wall float64) {
	h.delta.Store(min(wall, MaxDelta))
	h.tick.Call()
}

// Snapshot returns the world as of the last completed frame.
func (h *Host) Snapshot() Snapshot {
	h.mu.Lock()
	defer h.mu.Unlock()
	return Snapshot{Frame: h.frame, Games: h.games, X: h.x, Y: h.y, Delta: h.lastDelta}
}

func (h *Host) KeyDown(keyCode int32, _ uint32, isRepeat bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.held[keyCode] = true
	if keyCode == KeyR && !isRepeat {
		h.reset = true
	}
	h.logger.Debug("key down", "key", keyCode)
}

func (h *Host) KeyUp(keyCode int32, _ uint32, _ bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	delete(h.held, keyCode)
	h.logger.Debug("key up", "key", keyCode)
}

func (h *Host) RawMouseMove(x, y int32) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.x = clamp(h.x+float64(x), 0, h.width-1)
	h.y = clamp(h.y+float64(y), 0, h.height-1)
}

// update is the body of the tick entry.
func (h *Host) update() {
	dt := h.delta.Load()

	h.mu.Lock()
	reset := h.reset
	h.reset = false
	h.mu.Unlock()

	if reset {
		h.newGame.Call()
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	var vx, vy float64
	if h.held[KeyA] {
		vx--
	}
	if h.held[KeyD] {
		vx++
	}
	if h.held[KeyW] {
		vy--
	}
	if h.held[KeyS] {
		vy++
	}
	h.x = clamp(h.x+vx*Speed*dt, 0, h.width-1)
	h.y = clamp(h.y+vy*Speed*dt, 0, h.height-1)
	h.frame++
	h.lastDelta = dt
}

// startGame is the body of the new-game entry.
func (h *Host) startGame() {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.games++
	h.x, h.y = h.width/2, h.height/2
	h.logger.Info("game started", "game", h.games)
}

func clamp(v, lo, hi float64) float64 {
	return max(lo, min(v, hi))
}
