package agent

import (
	"context"
	"errors"
	"io"
	"math"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/tickhook/internal/config"
	"github.com/vovakirdan/tickhook/internal/controller"
	"github.com/vovakirdan/tickhook/internal/demohost"
	"github.com/vovakirdan/tickhook/internal/hook"
	"github.com/vovakirdan/tickhook/internal/protocol"
	"github.com/vovakirdan/tickhook/internal/transport"
)

func quietLogger() *log.Logger {
	return log.New(io.Discard)
}

type rig struct {
	host  *demohost.Host
	agent *Agent
	ctrl  *controller.Controller
	ctx   context.Context
}

// startRig runs a demo host with an in-process agent and returns a
// controller over the agent's link. Responses other than the ones a test
// waits for are collected in got.
func startRig(t *testing.T, opts Options) *rig {
	t.Helper()

	opts.Logger = quietLogger()
	host := demohost.New(config.DemoConfig{TickRate: 500, Width: 80, Height: 24}, quietLogger())
	a := NewGo(host, opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	if err := a.Start(ctx); err != nil {
		cancel()
		t.Fatalf("Start() failed: %v", err)
	}

	runDone := make(chan error, 1)
	go func() { runDone <- host.Run(ctx) }()

	t.Cleanup(func() {
		cancel()
		a.Close()
		<-runDone
	})

	r := &rig{host: host, agent: a, ctx: ctx}
	if opts.Address == "" {
		r.ctrl = controller.New(controller.NewLinkConn(ctx, a.Controller()), controller.WithLogger(quietLogger()))
	}
	return r
}

func TestGoHostPointsEnabled(t *testing.T) {
	r := startRig(t, Options{})
	points := r.agent.Points()
	if len(points) != 2 {
		t.Fatalf("expected 2 points, got %d", len(points))
	}
	for _, p := range points {
		if !p.Active() {
			t.Errorf("point %s not active after Start", p.Name())
		}
	}
}

func TestStepMovesByOverriddenDelta(t *testing.T) {
	r := startRig(t, Options{})

	if err := r.ctrl.Pause(r.ctx); err != nil {
		t.Fatalf("Pause() failed: %v", err)
	}
	before := r.host.Snapshot()

	if err := r.ctrl.Send(protocol.SetDelta(0.1), protocol.Press(demohost.KeyD)); err != nil {
		t.Fatalf("Send() failed: %v", err)
	}
	if err := r.ctrl.Step(r.ctx); err != nil {
		t.Fatalf("Step() failed: %v", err)
	}

	after := r.host.Snapshot()
	if after.Frame != before.Frame+1 {
		t.Errorf("step ran %d frames, expected 1", after.Frame-before.Frame)
	}
	want := math.Min(before.X+demohost.Speed*0.1, 79)
	if math.Abs(after.X-want) > 1e-9 {
		t.Errorf("X = %v, expected %v", after.X, want)
	}
	if after.Delta != 0.1 {
		t.Errorf("frame delta = %v, expected the 0.1 override", after.Delta)
	}

	if err := r.ctrl.Send(protocol.Release(demohost.KeyD), protocol.SetDelta(0)); err != nil {
		t.Fatalf("Send() failed: %v", err)
	}
	if err := r.ctrl.Resume(); err != nil {
		t.Fatalf("Resume() failed: %v", err)
	}
}

func TestRestartKeyReportsNewGame(t *testing.T) {
	r := startRig(t, Options{})

	if err := r.ctrl.Tap(demohost.KeyR); err != nil {
		t.Fatalf("Tap() failed: %v", err)
	}
	if err := r.ctrl.WaitFor(r.ctx, protocol.NewGame); err != nil {
		t.Fatalf("WaitFor(NewGame) failed: %v", err)
	}
}

func TestCloseReleasesFrozenHost(t *testing.T) {
	r := startRig(t, Options{})

	if err := r.ctrl.Pause(r.ctx); err != nil {
		t.Fatalf("Pause() failed: %v", err)
	}
	frozen := r.host.Snapshot().Frame

	if err := r.agent.Close(); err != nil {
		t.Fatalf("Close() failed: %v", err)
	}
	for _, p := range r.agent.Points() {
		if p.Active() {
			t.Errorf("point %s still active after Close", p.Name())
		}
	}

	deadline := time.Now().Add(2 * time.Second)
	for r.host.Snapshot().Frame <= frozen && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	if r.host.Snapshot().Frame <= frozen {
		t.Error("host still frozen after Close")
	}
}

func TestControlSocket(t *testing.T) {
	r := startRig(t, Options{Network: "tcp", Address: "127.0.0.1:0"})

	addr := r.agent.Addr()
	if addr == "" {
		t.Fatal("Addr() is empty with a control socket configured")
	}

	client, err := transport.Dial(r.ctx, "tcp", addr)
	if err != nil {
		t.Fatalf("Dial() failed: %v", err)
	}
	defer client.Close()

	c := controller.New(client, controller.WithLogger(quietLogger()))
	if err := c.Pause(r.ctx); err != nil {
		t.Fatalf("Pause() over socket failed: %v", err)
	}
	if err := c.Step(r.ctx); err != nil {
		t.Fatalf("Step() over socket failed: %v", err)
	}
	if err := c.Resume(); err != nil {
		t.Fatalf("Resume() failed: %v", err)
	}
}

func TestResolve(t *testing.T) {
	addrs := Resolve(0x400000, config.Offsets{
		Tick:         0x10,
		NewGame:      0x20,
		AppCapture:   0x30,
		KeyDown:      0x40,
		KeyUp:        0x50,
		RawMouseMove: 0x60,
		DeltaTime:    0x70,
	})

	if addrs.Base != 0x400000 || addrs.Tick != 0x400010 || addrs.DeltaTime != 0x400070 {
		t.Errorf("unexpected table %+v", addrs)
	}
	in := addrs.Input()
	if in.KeyDown != 0x400040 || in.KeyUp != 0x400050 || in.RawMouseMove != 0x400060 {
		t.Errorf("unexpected input entries %+v", in)
	}
}

func TestNativeWithoutPatcher(t *testing.T) {
	a, err := NewNative(NativeOptions{
		Options: Options{Logger: quietLogger()},
		Base:    0x400000,
		Offsets: config.Offsets{Tick: 0x10, NewGame: 0x20, AppCapture: 0x30},
	})
	if err != nil {
		t.Fatalf("NewNative() failed: %v", err)
	}
	defer a.Close()

	names := []string{"app-capture", "tick", "new-game"}
	for i, p := range a.Points() {
		if p.Name() != names[i] {
			t.Errorf("point %d = %s, expected %s", i, p.Name(), names[i])
		}
	}

	err = a.Start(context.Background())
	if !errors.Is(err, hook.ErrNoPatcher) && !errors.Is(err, hook.ErrUnsupported) {
		t.Errorf("Start() without patcher = %v", err)
	}
}
