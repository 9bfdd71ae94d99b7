package controller

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/vovakirdan/tickhook/internal/protocol"
)

// ParseCommand turns one text command into the events it stands for.
//
//	stop | step | continue
//	press <key> | release <key> | tap <key>
//	mouse <x> <y>
//	delta <seconds>        (0 clears the override)
//
// A key is a single character or an integer code of two or more digits;
// letters map to their upper-case code and a lone digit is its character.
func ParseCommand(line string) ([]protocol.Event, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil, fmt.Errorf("empty command")
	}

	name, args := strings.ToLower(fields[0]), fields[1:]
	switch name {
	case "stop", "pause":
		return none(name, args, protocol.Stop)
	case "step", "s":
		return none(name, args, protocol.Step)
	case "continue", "cont", "c", "resume":
		return none(name, args, protocol.Continue)
	case "press", "release", "tap":
		if len(args) != 1 {
			return nil, fmt.Errorf("%s: expected one key, got %d arguments", name, len(args))
		}
		code, err := ParseKey(args[0])
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		switch name {
		case "press":
			return []protocol.Event{protocol.Press(code)}, nil
		case "release":
			return []protocol.Event{protocol.Release(code)}, nil
		default:
			return []protocol.Event{protocol.Press(code), protocol.Release(code)}, nil
		}
	case "mouse":
		if len(args) != 2 {
			return nil, fmt.Errorf("mouse: expected x and y, got %d arguments", len(args))
		}
		x, err := parseInt32(args[0])
		if err != nil {
			return nil, fmt.Errorf("mouse: x: %w", err)
		}
		y, err := parseInt32(args[1])
		if err != nil {
			return nil, fmt.Errorf("mouse: y: %w", err)
		}
		return []protocol.Event{protocol.Mouse(x, y)}, nil
	case "delta":
		if len(args) != 1 {
			return nil, fmt.Errorf("delta: expected one value, got %d arguments", len(args))
		}
		v, err := strconv.ParseFloat(args[0], 64)
		if err != nil {
			return nil, fmt.Errorf("delta: %w", err)
		}
		return []protocol.Event{protocol.SetDelta(v)}, nil
	default:
		return nil, fmt.Errorf("unknown command %q", fields[0])
	}
}

// ParseKey parses a single character or an integer key code. A lone digit
// is the character, so "1" is 49; write "0x1" for key code 1.
func ParseKey(s string) (int32, error) {
	if utf8.RuneCountInString(s) == 1 {
		r, _ := utf8.DecodeRuneInString(strings.ToUpper(s))
		return int32(r), nil
	}
	if code, err := parseInt32(s); err == nil {
		return code, nil
	}
	switch strings.ToLower(s) {
	case "space":
		return ' ', nil
	case "enter":
		return '\r', nil
	case "esc", "escape":
		return 27, nil
	}
	return 0, fmt.Errorf("invalid key %q", s)
}

func parseInt32(s string) (int32, error) {
	v, err := strconv.ParseInt(s, 0, 32)
	if err != nil {
		return 0, err
	}
	return int32(v), nil
}

func none(name string, args []string, ev protocol.Event) ([]protocol.Event, error) {
	if len(args) != 0 {
		return nil, fmt.Errorf("%s takes no arguments", name)
	}
	return []protocol.Event{ev}, nil
}
