//go:build linux || darwin || freebsd

package hook

import (
	"fmt"
	"unsafe"

	"golang.org/x/sys/unix"
)

// PageProtector changes page protection with mprotect(2).
type PageProtector struct{}

var _ Protector = PageProtector{}

// MakeWritable maps the page read/write/execute so the host can keep running
// code on it while it is patched.
func (PageProtector) MakeWritable(addr Address) error {
	return mprotect(addr, unix.PROT_READ|unix.PROT_WRITE|unix.PROT_EXEC)
}

// MakeExecutable maps the page read/execute.
func (PageProtector) MakeExecutable(addr Address) error {
	return mprotect(addr, unix.PROT_READ|unix.PROT_EXEC)
}

func mprotect(addr Address, prot int) error {
	size := unix.Getpagesize()
	page := pageOf(addr, size)
	mem := unsafe.Slice((*byte)(unsafe.Pointer(uintptr(page))), size) //nolint:govet // host image page
	if err := unix.Mprotect(mem, prot); err != nil {
		return fmt.Errorf("hook: mprotect %s: %w", page, err)
	}
	return nil
}
