package interceptor

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/tickhook/internal/channel"
	"github.com/vovakirdan/tickhook/internal/hook"
	"github.com/vovakirdan/tickhook/internal/protocol"
	"github.com/vovakirdan/tickhook/internal/session"
)

// recorder is an input.Dispatcher that remembers every call.
type recorder struct {
	mu    sync.Mutex
	calls []string
}

func (r *recorder) KeyDown(key int32, char uint32, repeat bool) {
	r.add(fmt.Sprintf("key_down(%d,%d,%v)", key, char, repeat))
}

func (r *recorder) KeyUp(key int32, char uint32, repeat bool) {
	r.add(fmt.Sprintf("key_up(%d,%d,%v)", key, char, repeat))
}

func (r *recorder) RawMouseMove(x, y int32) {
	r.add(fmt.Sprintf("mouse(%d,%d)", x, y))
}

func (r *recorder) add(s string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, s)
}

func (r *recorder) snapshot() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.calls...)
}

// syncBuffer guards a bytes.Buffer shared with a logger on another goroutine.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

type fixture struct {
	ctrl  *channel.ControllerEnd
	host  *channel.HostEnd
	tick  *Tick
	input *recorder
	cell  *hook.Float64Cell
	logs  *syncBuffer
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctrl, host := channel.NewLink()
	f := &fixture{
		ctrl:  ctrl,
		host:  host,
		input: &recorder{},
		cell:  &hook.Float64Cell{},
		logs:  &syncBuffer{},
	}
	f.tick = NewTick(host, session.New(), f.input, f.cell, log.New(f.logs))
	return f
}

func (f *fixture) send(t *testing.T, events ...protocol.Event) {
	t.Helper()
	for _, ev := range events {
		if err := f.ctrl.Events.Send(ev); err != nil {
			t.Fatalf("Send(%v) failed: %v", ev, err)
		}
	}
}

// interceptAsync runs one Intercept on its own goroutine and returns a
// channel closed when it returns.
func (f *fixture) interceptAsync() <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		f.tick.Intercept()
	}()
	return done
}

func (f *fixture) expectResponse(t *testing.T, want protocol.Response) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	got, err := f.ctrl.Responses.ReceiveContext(ctx)
	if err != nil {
		t.Fatalf("waiting for %v: %v", want, err)
	}
	if got != want {
		t.Fatalf("response = %v, expected %v", got, want)
	}
}

func expectBlocked(t *testing.T, done <-chan struct{}) {
	t.Helper()
	select {
	case <-done:
		t.Fatal("Intercept returned while the host should be frozen")
	case <-time.After(30 * time.Millisecond):
	}
}

func expectReturned(t *testing.T, done <-chan struct{}) {
	t.Helper()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Intercept did not return")
	}
}

func equalCalls(got, want []string) bool {
	if len(got) != len(want) {
		return false
	}
	for i := range got {
		if got[i] != want[i] {
			return false
		}
	}
	return true
}

func TestRunningDrainsInSendOrder(t *testing.T) {
	f := newFixture(t)
	f.send(t,
		protocol.Press(87),
		protocol.Mouse(3, -4),
		protocol.Release(87),
		protocol.Press(65),
	)

	f.tick.Intercept()

	want := []string{"key_down(87,87,false)", "mouse(3,-4)", "key_up(87,87,false)", "key_down(65,65,false)"}
	if got := f.input.snapshot(); !equalCalls(got, want) {
		t.Errorf("dispatcher calls = %v, expected %v", got, want)
	}
	if n := f.host.Events.Len(); n != 0 {
		t.Errorf("expected event queue drained, %d left", n)
	}
	if f.tick.Mode() != session.Running {
		t.Errorf("Mode() = %v, expected running", f.tick.Mode())
	}
	if f.ctrl.Responses.Len() != 0 {
		t.Error("no responses expected while running")
	}
}

func TestPressReleaseScenario(t *testing.T) {
	f := newFixture(t)
	f.send(t, protocol.Press(65), protocol.Release(65))

	done := f.interceptAsync()
	expectReturned(t, done)

	want := []string{"key_down(65,65,false)", "key_up(65,65,false)"}
	if got := f.input.snapshot(); !equalCalls(got, want) {
		t.Errorf("dispatcher calls = %v, expected %v", got, want)
	}
}

func TestEmptyQueueReturnsImmediately(t *testing.T) {
	f := newFixture(t)
	f.cell.Store(0.016)

	f.tick.Intercept()

	if f.cell.Load() != 0.016 {
		t.Errorf("delta cell = %v, expected untouched 0.016", f.cell.Load())
	}
	if len(f.input.snapshot()) != 0 {
		t.Error("no dispatcher calls expected")
	}
}

func TestStopEventsContinueSingleStopped(t *testing.T) {
	f := newFixture(t)
	f.send(t, protocol.Stop)

	done := f.interceptAsync()
	f.expectResponse(t, protocol.Stopped)
	expectBlocked(t, done)

	f.send(t, protocol.Press(1), protocol.Mouse(5, 6), protocol.SetDelta(0.5), protocol.Release(1))
	expectBlocked(t, done)

	f.send(t, protocol.Continue)
	expectReturned(t, done)

	if n := f.ctrl.Responses.Len(); n != 0 {
		t.Errorf("expected exactly one stopped response, %d extra queued", n)
	}
	want := []string{"key_down(1,1,false)", "mouse(5,6)", "key_up(1,1,false)"}
	if got := f.input.snapshot(); !equalCalls(got, want) {
		t.Errorf("dispatcher calls = %v, expected %v", got, want)
	}
	if f.tick.Mode() != session.Running {
		t.Errorf("Mode() = %v after continue, expected running", f.tick.Mode())
	}
	if f.cell.Load() != 0.5 {
		t.Errorf("delta cell = %v, expected override 0.5 applied on return", f.cell.Load())
	}
}

func TestStoppedOnlyAfterEarlierEventsApplied(t *testing.T) {
	f := newFixture(t)
	f.send(t, protocol.Press(10), protocol.Mouse(1, 1), protocol.Stop)

	done := f.interceptAsync()
	f.expectResponse(t, protocol.Stopped)

	want := []string{"key_down(10,10,false)", "mouse(1,1)"}
	if got := f.input.snapshot(); !equalCalls(got, want) {
		t.Errorf("events before stop not applied first: %v", got)
	}

	f.send(t, protocol.Continue)
	expectReturned(t, done)
}

func TestStopThenMouseStaysBlocked(t *testing.T) {
	f := newFixture(t)
	f.send(t, protocol.Stop)

	done := f.interceptAsync()
	f.expectResponse(t, protocol.Stopped)

	f.send(t, protocol.Mouse(10, 20))

	deadline := time.Now().Add(time.Second)
	for len(f.input.snapshot()) == 0 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	if got := f.input.snapshot(); !equalCalls(got, []string{"mouse(10,20)"}) {
		t.Fatalf("dispatcher calls = %v, expected [mouse(10,20)]", got)
	}
	expectBlocked(t, done)

	f.send(t, protocol.Continue)
	expectReturned(t, done)
}

func TestStepRunsExactlyOneFrame(t *testing.T) {
	f := newFixture(t)
	f.send(t, protocol.Stop)

	frame1 := f.interceptAsync()
	f.expectResponse(t, protocol.Stopped)

	f.send(t, protocol.Step)
	expectReturned(t, frame1)

	if f.tick.Mode() != session.Stopping {
		t.Fatalf("Mode() = %v after step, expected stopping", f.tick.Mode())
	}

	// The host ran one frame; its next tick freezes again.
	frame2 := f.interceptAsync()
	f.expectResponse(t, protocol.Stopped)
	expectBlocked(t, frame2)

	f.send(t, protocol.Continue)
	expectReturned(t, frame2)

	frame3 := f.interceptAsync()
	expectReturned(t, frame3)
	if f.ctrl.Responses.Len() != 0 {
		t.Error("running frames must not emit stopped")
	}
}

func TestStepWhileRunningBreaksFrame(t *testing.T) {
	f := newFixture(t)
	f.send(t, protocol.Press(1), protocol.Step, protocol.Press(2))

	f.tick.Intercept()
	if got := f.input.snapshot(); !equalCalls(got, []string{"key_down(1,1,false)"}) {
		t.Fatalf("first frame calls = %v, expected only the event before step", got)
	}

	f.tick.Intercept()
	if got := f.input.snapshot(); len(got) != 2 || got[1] != "key_down(2,2,false)" {
		t.Errorf("second frame should apply the rest, calls = %v", got)
	}
	if f.tick.Mode() != session.Running {
		t.Errorf("Mode() = %v, expected running", f.tick.Mode())
	}
}

func TestContinueWhileRunningIsNoop(t *testing.T) {
	f := newFixture(t)
	f.send(t, protocol.Continue)

	f.tick.Intercept()

	if f.tick.Mode() != session.Running {
		t.Errorf("Mode() = %v, expected running", f.tick.Mode())
	}
	if f.ctrl.Responses.Len() != 0 {
		t.Error("continue while running must not emit stopped")
	}
}

func TestSetDeltaThenClear(t *testing.T) {
	f := newFixture(t)
	const natural = 0.016

	f.cell.Store(natural)
	f.send(t, protocol.SetDelta(5.0))
	f.tick.Intercept()
	if f.cell.Load() != 5.0 {
		t.Fatalf("delta cell = %v, expected override 5", f.cell.Load())
	}

	// The host recomputes its own delta every frame.
	f.cell.Store(natural)
	f.send(t, protocol.SetDelta(0))
	f.tick.Intercept()
	if f.cell.Load() != natural {
		t.Errorf("delta cell = %v, expected host value %v after clearing", f.cell.Load(), natural)
	}

	f.cell.Store(natural)
	f.tick.Intercept()
	if f.cell.Load() != natural {
		t.Errorf("cleared override leaked into a later frame: %v", f.cell.Load())
	}
}

func TestDeltaOverridePersistsAcrossFrames(t *testing.T) {
	f := newFixture(t)
	f.send(t, protocol.SetDelta(0.1))
	f.tick.Intercept()

	for i := 0; i < 3; i++ {
		f.cell.Store(0.016)
		f.tick.Intercept()
		if f.cell.Load() != 0.1 {
			t.Fatalf("frame %d: delta cell = %v, expected 0.1", i, f.cell.Load())
		}
	}
}

func TestProducerDisconnectFailsOpen(t *testing.T) {
	f := newFixture(t)
	f.ctrl.Events.Close()

	done := f.interceptAsync()
	expectReturned(t, done)

	if n := strings.Count(f.logs.String(), "tick interception failed"); n != 1 {
		t.Errorf("expected exactly one diagnostic, got %d in %q", n, f.logs.String())
	}
	if !strings.Contains(f.logs.String(), channel.ErrDisconnected.Error()) {
		t.Errorf("diagnostic should name the disconnect, got %q", f.logs.String())
	}
}

func TestProducerDisconnectWhileStopped(t *testing.T) {
	f := newFixture(t)
	f.send(t, protocol.Stop)

	done := f.interceptAsync()
	f.expectResponse(t, protocol.Stopped)

	f.ctrl.Events.Close()
	expectReturned(t, done)

	if n := strings.Count(f.logs.String(), "tick interception failed"); n != 1 {
		t.Errorf("expected exactly one diagnostic, got %d", n)
	}
}

func TestResponseReceiverGoneWhileStopping(t *testing.T) {
	f := newFixture(t)
	f.ctrl.Responses.Close()
	f.send(t, protocol.Stop)

	done := f.interceptAsync()
	expectReturned(t, done)

	if !strings.Contains(f.logs.String(), "send stopped") {
		t.Errorf("expected a send failure diagnostic, got %q", f.logs.String())
	}
}

func TestDetourCallsOriginalAfterIntercept(t *testing.T) {
	f := newFixture(t)
	f.send(t, protocol.SetDelta(2))

	var seen float64
	f.tick.Detour(func() { seen = f.cell.Load() })

	if seen != 2 {
		t.Errorf("original body saw delta %v, expected the override 2", seen)
	}
}
