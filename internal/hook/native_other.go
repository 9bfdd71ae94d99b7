//go:build !windows && !darwin && !(linux && (amd64 || arm64))

package hook

// Native is unavailable on this platform; every lifecycle call fails with
// ErrUnsupported.
type Native struct {
	name   string
	target Address
}

var _ Point = (*Native)(nil)

func NewNative(name string, target Address, _ any, _ Patcher, _ Protector) *Native {
	return &Native{name: name, target: target}
}

func (n *Native) Name() string { return n.name }

func (n *Native) Target() Address { return n.target }

func (n *Native) Install() error { return ErrUnsupported }

func (n *Native) Enable() error { return ErrUnsupported }

func (n *Native) Disable() error { return nil }

func (n *Native) Active() bool { return false }

func (n *Native) Close() error { return nil }

func (n *Native) CallThrough(...uintptr) uintptr { return 0 }
