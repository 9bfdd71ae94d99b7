//go:build !linux && !darwin && !freebsd && !windows

package hook

// PageProtector is unavailable on this platform.
type PageProtector struct{}

var _ Protector = PageProtector{}

func (PageProtector) MakeWritable(Address) error { return ErrUnsupported }

func (PageProtector) MakeExecutable(Address) error { return ErrUnsupported }
