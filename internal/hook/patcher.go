package hook

// Patcher rewrites a function entry so that calls reach detour. It is
// supplied by the embedding program; this package never generates machine
// code itself.
type Patcher interface {
	// Patch redirects target to detour and returns the address of a
	// trampoline running the original body, or zero when the redirection
	// does not call through (mid-function hooks).
	Patch(target Address, detour uintptr) (trampoline uintptr, err error)

	// Unpatch restores the original entry bytes.
	Unpatch(target Address) error
}
