// Package hook describes redirected host functions ("hook points") and the
// memory plumbing the interceptor relies on: address resolution, page
// protection toggles and the host's delta-time cell.
//
// Generating trampolines and rewriting entry bytes is delegated to a Patcher
// supplied by the embedding program. Everything that touches raw addresses
// lives in this package and in input/native.go.
package hook

import (
	"errors"
	"fmt"
)

var (
	// ErrNotInstalled is returned when enabling a point that was never installed.
	ErrNotInstalled = errors.New("hook: point not installed")

	// ErrUnsupported is returned on platforms without native hooking support.
	ErrUnsupported = errors.New("hook: unsupported on this platform")

	// ErrNoPatcher is returned when a native point has no Patcher.
	ErrNoPatcher = errors.New("hook: no patcher configured")
)

// Address is an absolute address in the host process.
type Address uintptr

// String formats the address in hex.
func (a Address) String() string {
	return fmt.Sprintf("%#x", uintptr(a))
}

// Resolve returns base+offset.
func Resolve(base Address, offset uint64) Address {
	return base + Address(offset)
}

// Point is one redirected host function.
//
// Lifecycle: Install once, then Enable/Disable any number of times, then
// Close. While active, every host call through the original entry runs the
// interceptor first.
type Point interface {
	// Name identifies the point in logs.
	Name() string

	// Target is the redirected entry address; zero for Go-level slots.
	Target() Address

	// Install prepares the redirection without activating it.
	Install() error

	// Enable activates the redirection.
	Enable() error

	// Disable restores the original behaviour; the point stays installed.
	Disable() error

	// Active reports whether the redirection is currently enabled.
	Active() bool

	// Close disables the point and releases its resources.
	Close() error
}

// Detour runs in place of a redirected function. Calling next runs the
// original body; not calling it skips the original.
type Detour func(next func())
