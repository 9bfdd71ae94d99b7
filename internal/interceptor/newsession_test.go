package interceptor

import (
	"bytes"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/tickhook/internal/channel"
	"github.com/vovakirdan/tickhook/internal/protocol"
)

func TestNewSessionSendsNewGame(t *testing.T) {
	ctrl, host := channel.NewLink()
	n := NewNewSession(host, log.New(&bytes.Buffer{}))

	ran := false
	n.Detour(func() { ran = true })

	if !ran {
		t.Error("original new-game body did not run")
	}
	resp, err := ctrl.Responses.TryReceive()
	if err != nil || resp != protocol.NewGame {
		t.Errorf("response = %v, %v; expected new-game", resp, err)
	}
}

func TestNewSessionIgnoresMissingController(t *testing.T) {
	ctrl, host := channel.NewLink()
	ctrl.Close()

	var buf bytes.Buffer
	n := NewNewSession(host, log.New(&buf))
	n.Fire()

	if !strings.Contains(buf.String(), "could not report new game") {
		t.Errorf("expected a warning, log was %q", buf.String())
	}
}
