//go:build windows || darwin || (linux && (amd64 || arm64))

package hook

import (
	"fmt"
	"sync"

	"github.com/ebitengine/purego"
)

// Native is a Point over a machine-code entry in the host image. The detour
// is a Go function turned into a C-callable pointer with purego; the byte
// patching itself is done by the Patcher between page-protection toggles.
type Native struct {
	name    string
	target  Address
	fn      any
	patcher Patcher
	prot    Protector

	mu         sync.Mutex
	callback   uintptr
	trampoline uintptr
	installed  bool
	active     bool
}

var _ Point = (*Native)(nil)

var newCallback = purego.NewCallback

// NewNative returns a point redirecting target to fn. fn must follow the
// rules of purego.NewCallback: uintptr-sized arguments and one uintptr result.
func NewNative(name string, target Address, fn any, patcher Patcher, prot Protector) *Native {
	return &Native{name: name, target: target, fn: fn, patcher: patcher, prot: prot}
}

func (n *Native) Name() string { return n.name }

func (n *Native) Target() Address { return n.target }

// Install creates the C-callable detour. Callbacks are never freed, so
// Install is done once per point for the life of the process.
func (n *Native) Install() error {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.installed {
		return nil
	}
	if n.patcher == nil {
		return fmt.Errorf("hook: %s: %w", n.name, ErrNoPatcher)
	}
	if n.target == 0 {
		return fmt.Errorf("hook: %s: zero target address", n.name)
	}
	n.callback = newCallback(n.fn)
	n.installed = true
	return nil
}

func (n *Native) Enable() error {
	n.mu.Lock()
	defer n.mu.Unlock()

	if !n.installed {
		return fmt.Errorf("hook: %s: %w", n.name, ErrNotInstalled)
	}
	if n.active {
		return nil
	}
	err := n.withWritable(func() error {
		tramp, err := n.patcher.Patch(n.target, n.callback)
		if err != nil {
			return err
		}
		n.trampoline = tramp
		return nil
	})
	if err != nil {
		return fmt.Errorf("hook: enable %s at %s: %w", n.name, n.target, err)
	}
	n.active = true
	return nil
}

func (n *Native) Disable() error {
	n.mu.Lock()
	defer n.mu.Unlock()

	if !n.active {
		return nil
	}
	if err := n.withWritable(func() error { return n.patcher.Unpatch(n.target) }); err != nil {
		return fmt.Errorf("hook: disable %s at %s: %w", n.name, n.target, err)
	}
	n.active = false
	return nil
}

func (n *Native) Active() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.active
}

func (n *Native) Close() error {
	return n.Disable()
}

// CallThrough runs the original body with args and returns its result. It
// is a no-op returning zero when the patcher provided no trampoline.
func (n *Native) CallThrough(args ...uintptr) uintptr {
	n.mu.Lock()
	tramp := n.trampoline
	n.mu.Unlock()

	if tramp == 0 {
		return 0
	}
	r1, _, _ := purego.SyscallN(tramp, args...)
	return r1
}

func (n *Native) withWritable(patch func() error) error {
	if err := n.prot.MakeWritable(n.target); err != nil {
		return err
	}
	patchErr := patch()
	if err := n.prot.MakeExecutable(n.target); err != nil && patchErr == nil {
		return err
	}
	return patchErr
}
