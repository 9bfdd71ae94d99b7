//go:build windows

package hook

import (
	"fmt"

	"golang.org/x/sys/windows"
)

// ModuleBase returns the load address of the main executable.
func ModuleBase() (Address, error) {
	var h windows.Handle
	if err := windows.GetModuleHandleEx(0, nil, &h); err != nil {
		return 0, fmt.Errorf("hook: GetModuleHandleEx: %w", err)
	}
	return Address(h), nil
}
