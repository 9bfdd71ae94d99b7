// Package session holds the host-side run state mutated by the tick
// interceptor.
package session

// Mode is the interceptor's run mode.
type Mode int

const (
	// Running drains pending events without blocking and lets frames run.
	Running Mode = iota
	// Stopping blocks the host thread until a resuming event arrives.
	Stopping
)

// String returns a human-readable name for the mode.
func (m Mode) String() string {
	switch m {
	case Running:
		return "running"
	case Stopping:
		return "stopping"
	default:
		return "unknown"
	}
}

// State is owned by the host thread. It is not safe for concurrent use and
// needs no lock: only the tick interceptor touches it.
type State struct {
	Mode  Mode
	delta float64
	hasDt bool
}

// New returns the initial state: Running with no delta override.
func New() *State {
	return &State{Mode: Running}
}

// SetDelta records a delta-time override. Zero clears it.
func (s *State) SetDelta(v float64) {
	if v == 0 {
		s.delta, s.hasDt = 0, false
		return
	}
	s.delta, s.hasDt = v, true
}

// Delta returns the override and whether one is set.
func (s *State) Delta() (float64, bool) {
	return s.delta, s.hasDt
}
