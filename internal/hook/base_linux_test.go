package hook

import (
	"bufio"
	"strings"
	"testing"
)

func TestBaseFromMaps(t *testing.T) {
	maps := `55d0c0a00000-55d0c0a02000 r--p 00000000 08:01 1234 /usr/bin/host
55d0c0a02000-55d0c0a08000 r-xp 00002000 08:01 1234 /usr/bin/host
7f1e2c000000-7f1e2c021000 rw-p 00000000 00:00 0
7f1e2d000000-7f1e2d1c0000 r-xp 00000000 08:01 99 /usr/lib/libc.so.6
`
	base, err := baseFromMaps(bufio.NewScanner(strings.NewReader(maps)), "/usr/bin/host")
	if err != nil {
		t.Fatalf("baseFromMaps failed: %v", err)
	}
	if base != 0x55d0c0a00000 {
		t.Errorf("base = %s, expected 0x55d0c0a00000", base)
	}

	if _, err := baseFromMaps(bufio.NewScanner(strings.NewReader(maps)), "/missing"); err == nil {
		t.Error("expected an error for a path with no mapping")
	}
}
