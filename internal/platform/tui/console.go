package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/tickhook/internal/controller"
	"github.com/vovakirdan/tickhook/internal/protocol"
)

const (
	maxLogLines = 500
	refreshRate = 4 // status refreshes per second
)

type lineKind int

const (
	lineInfo lineKind = iota
	lineEvent
	lineResponse
	lineNewGame
	lineError
)

type logLine struct {
	at   time.Time
	kind lineKind
	text string
}

// responseMsg carries one response read from the host.
type responseMsg struct {
	resp protocol.Response
}

// disconnectedMsg is sent once the response stream ends.
type disconnectedMsg struct {
	err error
}

// ConsoleModel is an interactive controller: shortcut keys pause, step and
// resume the host, and typed commands are parsed with
// controller.ParseCommand.
type ConsoleModel struct {
	ctx    context.Context
	ctrl   *controller.Controller
	target string

	input textinput.Model
	help  help.Model
	keys  ConsoleKeyMap
	theme Theme

	lines       []logLine
	pausedSince time.Time
	newGames    int
	offline     bool
	width       int
	height      int
	quitting    bool
	now         func() time.Time
}

// NewConsoleModel returns a console driving ctrl. target names the agent in
// the header. The model is the only reader of ctrl's responses.
func NewConsoleModel(ctx context.Context, ctrl *controller.Controller, target string) ConsoleModel {
	ti := textinput.New()
	ti.Placeholder = "press w, tap r, mouse 5 -3, delta 0.016 ..."
	ti.CharLimit = 64
	ti.Prompt = "> "
	ti.Focus()

	theme := DefaultTheme()
	ti.PromptStyle = theme.Prompt

	return ConsoleModel{
		ctx:    ctx,
		ctrl:   ctrl,
		target: target,
		input:  ti,
		help:   help.New(),
		keys:   DefaultConsoleKeyMap(),
		theme:  theme,
		width:  80,
		height: 24,
		now:    time.Now,
	}
}

// Init starts reading responses and the status refresh.
func (m ConsoleModel) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.waitResponse(), tickCmd(refreshRate))
}

// waitResponse reads the next response from the host.
func (m ConsoleModel) waitResponse() tea.Cmd {
	return func() tea.Msg {
		resp, err := m.ctrl.Next(m.ctx)
		if err != nil {
			return disconnectedMsg{err: err}
		}
		return responseMsg{resp: resp}
	}
}

// Update handles messages.
func (m ConsoleModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.input.Width = max(msg.Width-8, 10)
		m.help.Width = msg.Width
		return m, nil

	case responseMsg:
		m.handleResponse(msg.resp)
		return m, m.waitResponse()

	case disconnectedMsg:
		m.offline = true
		if !errors.Is(msg.err, context.Canceled) {
			m.appendLine(lineError, fmt.Sprintf("disconnected: %v", msg.err))
		}
		return m, nil

	case TickMsg:
		return m, tickCmd(refreshRate)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m ConsoleModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		return m, tea.Quit

	case key.Matches(msg, m.keys.Pause):
		m.send(protocol.Stop)
		return m, nil

	case key.Matches(msg, m.keys.Step):
		if !m.ctrl.Paused() {
			m.appendLine(lineError, "step: host is not paused")
			return m, nil
		}
		m.send(protocol.Step)
		return m, nil

	case key.Matches(msg, m.keys.Resume):
		m.send(protocol.Continue)
		return m, nil

	case key.Matches(msg, m.keys.Clear):
		m.lines = nil
		return m, nil

	case key.Matches(msg, m.keys.Submit):
		line := strings.TrimSpace(m.input.Value())
		m.input.Reset()
		return m.submit(line)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// submit runs one typed command line.
func (m ConsoleModel) submit(line string) (tea.Model, tea.Cmd) {
	switch strings.ToLower(line) {
	case "":
		return m, nil
	case "quit", "exit":
		m.quitting = true
		return m, tea.Quit
	case "help", "?":
		m.appendLine(lineInfo, "commands: stop, step, continue, press <key>, release <key>, tap <key>, mouse <x> <y>, delta <seconds>")
		return m, nil
	}

	events, err := controller.ParseCommand(line)
	if err != nil {
		m.appendLine(lineError, err.Error())
		return m, nil
	}
	m.send(events...)
	return m, nil
}

func (m *ConsoleModel) send(events ...protocol.Event) {
	if m.offline {
		m.appendLine(lineError, "not connected")
		return
	}
	if err := m.ctrl.Send(events...); err != nil {
		m.appendLine(lineError, err.Error())
		return
	}
	for _, ev := range events {
		if _, ok := ev.(protocol.ContinueEvent); ok {
			m.pausedSince = time.Time{}
		}
		m.appendLine(lineEvent, "-> "+ev.String())
	}
}

func (m *ConsoleModel) handleResponse(resp protocol.Response) {
	switch resp.(type) {
	case protocol.StoppedResponse:
		if m.pausedSince.IsZero() {
			m.pausedSince = m.now()
		}
		m.appendLine(lineResponse, "<- "+resp.String())
	case protocol.NewGameResponse:
		m.newGames++
		m.appendLine(lineNewGame, "<- "+resp.String())
	default:
		m.appendLine(lineResponse, "<- "+resp.String())
	}
}

func (m *ConsoleModel) appendLine(kind lineKind, text string) {
	m.lines = append(m.lines, logLine{at: m.now(), kind: kind, text: text})
	if len(m.lines) > maxLogLines {
		m.lines = m.lines[len(m.lines)-maxLogLines:]
	}
}

// View renders the console.
func (m ConsoleModel) View() string {
	if m.quitting {
		return ""
	}

	header := lipgloss.JoinHorizontal(lipgloss.Top,
		m.theme.Title.Render("tickhook"),
		m.theme.Separator.Render(" | "),
		m.theme.Label.Render(m.target),
	)

	helpView := m.help.View(m.keys)
	logHeight := max(m.height-lipgloss.Height(header)-lipgloss.Height(helpView)-6, 1)

	body := m.theme.Frame.Width(max(m.width-2, 20)).Render(m.renderLog(logHeight))

	return lipgloss.JoinVertical(lipgloss.Left,
		header,
		m.renderStatus(),
		body,
		m.input.View(),
		helpView,
	)
}

func (m ConsoleModel) renderStatus() string {
	var state string
	switch {
	case m.offline:
		state = m.theme.Offline.Render("OFFLINE")
	case m.ctrl.Paused():
		paused := m.now().Sub(m.pausedSince).Truncate(100 * time.Millisecond)
		state = m.theme.Paused.Render("PAUSED") + m.theme.Label.Render(" for ") + m.theme.Value.Render(paused.String())
	default:
		state = m.theme.Running.Render("RUNNING")
	}

	return state +
		m.theme.Separator.Render(" | ") +
		m.theme.Label.Render("new games: ") +
		m.theme.Value.Render(fmt.Sprintf("%d", m.newGames))
}

func (m ConsoleModel) renderLog(height int) string {
	start := max(len(m.lines)-height, 0)
	rows := make([]string, 0, height)
	for _, l := range m.lines[start:] {
		stamp := m.theme.Label.Render(l.at.Format("15:04:05.000") + " ")
		rows = append(rows, stamp+m.styleFor(l.kind).Render(l.text))
	}
	for len(rows) < height {
		rows = append(rows, "")
	}
	return strings.Join(rows, "\n")
}

func (m ConsoleModel) styleFor(kind lineKind) lipgloss.Style {
	switch kind {
	case lineEvent:
		return m.theme.Event
	case lineResponse:
		return m.theme.Response
	case lineNewGame:
		return m.theme.NewGame
	case lineError:
		return m.theme.Error
	default:
		return m.theme.Info
	}
}

// IsQuitting reports whether the user asked to leave.
func (m ConsoleModel) IsQuitting() bool {
	return m.quitting
}

// RunConsole runs the console full screen until the user quits.
func RunConsole(ctx context.Context, ctrl *controller.Controller, target string) error {
	p := tea.NewProgram(NewConsoleModel(ctx, ctrl, target), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}
