//go:build windows || darwin || (linux && (amd64 || arm64))

package hook

import (
	"errors"
	"testing"
)

type fakePatcher struct {
	patched   map[Address]uintptr
	unpatched []Address
	fail      error
}

func (p *fakePatcher) Patch(target Address, detour uintptr) (uintptr, error) {
	if p.fail != nil {
		return 0, p.fail
	}
	if p.patched == nil {
		p.patched = make(map[Address]uintptr)
	}
	p.patched[target] = detour
	return 0, nil
}

func (p *fakePatcher) Unpatch(target Address) error {
	p.unpatched = append(p.unpatched, target)
	delete(p.patched, target)
	return nil
}

type fakeProtector struct {
	ops []string
}

func (p *fakeProtector) MakeWritable(Address) error {
	p.ops = append(p.ops, "rw")
	return nil
}

func (p *fakeProtector) MakeExecutable(Address) error {
	p.ops = append(p.ops, "rx")
	return nil
}

func withFakeCallbacks(t *testing.T) {
	t.Helper()
	prev := newCallback
	newCallback = func(any) uintptr { return 0xdead }
	t.Cleanup(func() { newCallback = prev })
}

func TestNativeTogglesProtectionAroundPatch(t *testing.T) {
	withFakeCallbacks(t)

	patcher := &fakePatcher{}
	prot := &fakeProtector{}
	n := NewNative("tick", 0x401000, func() uintptr { return 0 }, patcher, prot)

	if err := n.Install(); err != nil {
		t.Fatalf("Install() failed: %v", err)
	}
	if err := n.Enable(); err != nil {
		t.Fatalf("Enable() failed: %v", err)
	}
	if patcher.patched[0x401000] != 0xdead {
		t.Errorf("patcher got detour %#x, expected 0xdead", patcher.patched[0x401000])
	}
	if !n.Active() {
		t.Error("Active() = false after Enable")
	}

	if err := n.Close(); err != nil {
		t.Fatalf("Close() failed: %v", err)
	}
	if len(patcher.unpatched) != 1 {
		t.Errorf("expected one Unpatch call, got %d", len(patcher.unpatched))
	}

	want := []string{"rw", "rx", "rw", "rx"}
	if len(prot.ops) != len(want) {
		t.Fatalf("protection ops = %v, expected %v", prot.ops, want)
	}
	for i := range want {
		if prot.ops[i] != want[i] {
			t.Errorf("protection op %d = %s, expected %s", i, prot.ops[i], want[i])
		}
	}
}

func TestNativePatchFailureRestoresProtection(t *testing.T) {
	withFakeCallbacks(t)

	boom := errors.New("boom")
	prot := &fakeProtector{}
	n := NewNative("tick", 0x401000, func() uintptr { return 0 }, &fakePatcher{fail: boom}, prot)
	n.Install()

	if err := n.Enable(); !errors.Is(err, boom) {
		t.Fatalf("expected patch error, got %v", err)
	}
	if n.Active() {
		t.Error("point should stay inactive after a failed patch")
	}
	if len(prot.ops) != 2 || prot.ops[1] != "rx" {
		t.Errorf("page should be made executable again, ops = %v", prot.ops)
	}
}

func TestNativeRequiresPatcher(t *testing.T) {
	n := NewNative("tick", 0x401000, func() uintptr { return 0 }, nil, &fakeProtector{})
	if err := n.Install(); !errors.Is(err, ErrNoPatcher) {
		t.Errorf("expected ErrNoPatcher, got %v", err)
	}
	if n.CallThrough() != 0 {
		t.Error("CallThrough without trampoline should return 0")
	}
}
