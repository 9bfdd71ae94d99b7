package hook

import (
	"fmt"
	"sync"
	"sync/atomic"
)

// Entry is a Go-level function entry that a host calls every time it would
// call the original function. Slot points redirect it.
type Entry struct {
	fn atomic.Pointer[func()]
}

// NewEntry returns an entry whose original body is fn.
func NewEntry(fn func()) *Entry {
	e := &Entry{}
	e.fn.Store(&fn)
	return e
}

// Call runs the current target of the entry.
func (e *Entry) Call() {
	if fn := e.fn.Load(); fn != nil && *fn != nil {
		(*fn)()
	}
}

func (e *Entry) swap(fn func()) func() {
	old := e.fn.Swap(&fn)
	if old == nil {
		return nil
	}
	return *old
}

// Slot is a Point that redirects an Entry. It needs no unsafe code and is
// what Go hosts and tests use.
type Slot struct {
	name   string
	entry  *Entry
	detour Detour

	mu        sync.Mutex
	original  func()
	installed bool
	active    bool
}

var _ Point = (*Slot)(nil)

// NewSlot returns a point that runs detour in place of entry's body.
func NewSlot(name string, entry *Entry, detour Detour) *Slot {
	return &Slot{name: name, entry: entry, detour: detour}
}

func (s *Slot) Name() string { return s.name }

func (s *Slot) Target() Address { return 0 }

// Install captures the entry's original body.
func (s *Slot) Install() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.installed {
		return nil
	}
	if s.entry == nil || s.detour == nil {
		return fmt.Errorf("hook: slot %s: missing entry or detour", s.name)
	}
	if fn := s.entry.fn.Load(); fn != nil {
		s.original = *fn
	}
	s.installed = true
	return nil
}

func (s *Slot) Enable() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.installed {
		return fmt.Errorf("hook: slot %s: %w", s.name, ErrNotInstalled)
	}
	if s.active {
		return nil
	}
	orig := s.original
	next := func() {
		if orig != nil {
			orig()
		}
	}
	s.entry.swap(func() { s.detour(next) })
	s.active = true
	return nil
}

func (s *Slot) Disable() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.active {
		return nil
	}
	s.entry.swap(s.original)
	s.active = false
	return nil
}

func (s *Slot) Active() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

func (s *Slot) Close() error {
	return s.Disable()
}
