//go:build linux

package hook

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// ModuleBase returns the load address of the main executable, read from
// /proc/self/maps.
func ModuleBase() (Address, error) {
	exe, err := os.Executable()
	if err != nil {
		return 0, fmt.Errorf("hook: locate executable: %w", err)
	}
	if resolved, err := filepath.EvalSymlinks(exe); err == nil {
		exe = resolved
	}

	f, err := os.Open("/proc/self/maps")
	if err != nil {
		return 0, fmt.Errorf("hook: open maps: %w", err)
	}
	defer f.Close()

	return baseFromMaps(bufio.NewScanner(f), exe)
}

// baseFromMaps returns the lowest mapping start for path.
func baseFromMaps(sc *bufio.Scanner, path string) (Address, error) {
	for sc.Scan() {
		// start-end perms offset dev inode path
		fields := strings.Fields(sc.Text())
		if len(fields) < 6 || fields[5] != path {
			continue
		}
		start, _, ok := strings.Cut(fields[0], "-")
		if !ok {
			continue
		}
		v, err := strconv.ParseUint(start, 16, 64)
		if err != nil {
			return 0, fmt.Errorf("hook: parse maps line %q: %w", sc.Text(), err)
		}
		return Address(v), nil
	}
	if err := sc.Err(); err != nil {
		return 0, fmt.Errorf("hook: read maps: %w", err)
	}
	return 0, fmt.Errorf("hook: no mapping for %s", path)
}
