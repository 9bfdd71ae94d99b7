package controller

import (
	"testing"

	"github.com/vovakirdan/tickhook/internal/protocol"
)

func TestParseCommand(t *testing.T) {
	tests := []struct {
		line string
		want []protocol.Event
	}{
		{"stop", []protocol.Event{protocol.Stop}},
		{"STEP", []protocol.Event{protocol.Step}},
		{"c", []protocol.Event{protocol.Continue}},
		{"press 65", []protocol.Event{protocol.Press(65)}},
		{"press a", []protocol.Event{protocol.Press(65)}},
		{"release 0x41", []protocol.Event{protocol.Release(65)}},
		{"tap 1", []protocol.Event{protocol.Press('1'), protocol.Release('1')}},
		{"press 0x1", []protocol.Event{protocol.Press(1)}},
		{"press 49", []protocol.Event{protocol.Press(49)}},
		{"tap space", []protocol.Event{protocol.Press(32), protocol.Release(32)}},
		{"mouse 10 -20", []protocol.Event{protocol.Mouse(10, -20)}},
		{"delta 0.016", []protocol.Event{protocol.SetDelta(0.016)}},
		{"  delta   0  ", []protocol.Event{protocol.SetDelta(0)}},
	}

	for _, tt := range tests {
		got, err := ParseCommand(tt.line)
		if err != nil {
			t.Errorf("ParseCommand(%q) failed: %v", tt.line, err)
			continue
		}
		if len(got) != len(tt.want) {
			t.Errorf("ParseCommand(%q) = %v, expected %v", tt.line, got, tt.want)
			continue
		}
		for i := range got {
			if got[i] != tt.want[i] {
				t.Errorf("ParseCommand(%q)[%d] = %v, expected %v", tt.line, i, got[i], tt.want[i])
			}
		}
	}
}

func TestParseCommandErrors(t *testing.T) {
	bad := []string{
		"",
		"jump",
		"stop now",
		"press",
		"press twelve",
		"mouse 1",
		"mouse x 1",
		"delta fast",
		"press 99999999999",
	}
	for _, line := range bad {
		if _, err := ParseCommand(line); err == nil {
			t.Errorf("ParseCommand(%q) should fail", line)
		}
	}
}
