//go:build !linux && !windows

package hook

// ModuleBase is not implemented on this platform.
func ModuleBase() (Address, error) {
	return 0, ErrUnsupported
}
