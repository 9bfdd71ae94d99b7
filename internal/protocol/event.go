// Package protocol defines the values exchanged between a controller and the
// host: events flowing toward the host and responses flowing back.
package protocol

import "fmt"

// Event is a command sent from the controller to the host.
// The set of implementations is closed; see the Event* types below.
type Event interface {
	fmt.Stringer
	event()
}

// StopEvent requests the host to pause at its next tick.
type StopEvent struct{}

func (StopEvent) event() {}

func (StopEvent) String() string { return "stop" }

// StepEvent lets exactly one frame run while paused.
type StepEvent struct{}

func (StepEvent) event() {}

func (StepEvent) String() string { return "step" }

// ContinueEvent resumes normal, unpaused execution.
type ContinueEvent struct{}

func (ContinueEvent) event() {}

func (ContinueEvent) String() string { return "continue" }

// PressEvent synthesizes a key-down. Code is used as both key and character code.
type PressEvent struct {
	Code int32
}

func (PressEvent) event() {}

func (e PressEvent) String() string { return fmt.Sprintf("press %d", e.Code) }

// ReleaseEvent synthesizes a key-up.
type ReleaseEvent struct {
	Code int32
}

func (ReleaseEvent) event() {}

func (e ReleaseEvent) String() string { return fmt.Sprintf("release %d", e.Code) }

// MouseEvent synthesizes a raw mouse move.
type MouseEvent struct {
	X int32
	Y int32
}

func (MouseEvent) event() {}

func (e MouseEvent) String() string { return fmt.Sprintf("mouse %d %d", e.X, e.Y) }

// SetDeltaEvent overrides the host's per-frame delta time.
// A zero Value clears the override.
type SetDeltaEvent struct {
	Value float64
}

func (SetDeltaEvent) event() {}

func (e SetDeltaEvent) String() string { return fmt.Sprintf("delta %g", e.Value) }

// Convenience values for the field-less events.
var (
	Stop     Event = StopEvent{}
	Step     Event = StepEvent{}
	Continue Event = ContinueEvent{}
)

// Press returns a PressEvent for code.
func Press(code int32) Event { return PressEvent{Code: code} }

// Release returns a ReleaseEvent for code.
func Release(code int32) Event { return ReleaseEvent{Code: code} }

// Mouse returns a MouseEvent for (x, y).
func Mouse(x, y int32) Event { return MouseEvent{X: x, Y: y} }

// SetDelta returns a SetDeltaEvent for value.
func SetDelta(value float64) Event { return SetDeltaEvent{Value: value} }
