//go:build windows

package hook

import (
	"fmt"

	"golang.org/x/sys/windows"
)

const pageSize = 0x1000

// PageProtector changes page protection with VirtualProtect.
type PageProtector struct{}

var _ Protector = PageProtector{}

func (PageProtector) MakeWritable(addr Address) error {
	return virtualProtect(addr, windows.PAGE_EXECUTE_READWRITE)
}

func (PageProtector) MakeExecutable(addr Address) error {
	return virtualProtect(addr, windows.PAGE_EXECUTE_READ)
}

func virtualProtect(addr Address, prot uint32) error {
	page := pageOf(addr, pageSize)
	var old uint32
	if err := windows.VirtualProtect(uintptr(page), pageSize, prot, &old); err != nil {
		return fmt.Errorf("hook: VirtualProtect %s: %w", page, err)
	}
	return nil
}
