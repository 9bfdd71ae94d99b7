package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/tickhook/internal/storage"
)

const (
	maxSessions = 100
	maxEntries  = 5000
)

// JournalSource is the read side of the controller journal.
type JournalSource interface {
	RecentSessions(limit int) ([]storage.SessionEntry, error)
	Entries(sessionID string, limit int) ([]storage.JournalEntry, error)
}

var _ JournalSource = (*storage.Store)(nil)

// JournalModel browses recorded controller sessions and their entries.
type JournalModel struct {
	source   JournalSource
	sessions []storage.SessionEntry
	entries  []storage.JournalEntry
	open     *storage.SessionEntry // session whose entries are shown
	err      error

	table    table.Model
	help     help.Model
	keys     JournalKeyMap
	width    int
	height   int
	quitting bool
}

// NewJournalModel creates a browser over source and loads the session list.
func NewJournalModel(source JournalSource, width, height int) JournalModel {
	m := JournalModel{
		source: source,
		help:   help.New(),
		keys:   DefaultJournalKeyMap(),
		width:  width,
		height: height,
	}
	m.loadSessions()
	return m
}

func (m *JournalModel) loadSessions() {
	m.open = nil
	m.entries = nil
	m.sessions, m.err = m.source.RecentSessions(maxSessions)
	m.table = m.createTable()
	m.updateTableRows()
}

func (m *JournalModel) loadEntries(s storage.SessionEntry) {
	m.open = &s
	m.entries, m.err = m.source.Entries(s.ID, maxEntries)
	m.table = m.createTable()
	m.updateTableRows()
}

// createTable builds a table with the columns of the current view.
func (m *JournalModel) createTable() table.Model {
	var columns []table.Column
	if m.open == nil {
		columns = []table.Column{
			{Title: "Session", Width: 8},
			{Title: "Controller", Width: 12},
			{Title: "Remote", Width: 18},
			{Title: "Started", Width: 14},
			{Title: "Duration", Width: 10},
			{Title: "Entries", Width: 7},
		}
	} else {
		columns = []table.Column{
			{Title: "Time", Width: 12},
			{Title: "Dir", Width: 3},
			{Title: "Text", Width: max(m.width-30, 20)},
		}
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(max(m.height-8, 3)),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(true)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)
	t.SetStyles(s)

	return t
}

// updateTableRows fills the table from the loaded data.
func (m *JournalModel) updateTableRows() {
	var rows []table.Row
	if m.open == nil {
		rows = make([]table.Row, len(m.sessions))
		for i, s := range m.sessions {
			duration := "open"
			if !s.EndedAt.IsZero() {
				duration = s.EndedAt.Sub(s.StartedAt).Round(time.Second).String()
			}
			rows[i] = table.Row{
				shortID(s.ID),
				s.Controller,
				s.Remote,
				s.StartedAt.Format("Jan 02 15:04"),
				duration,
				fmt.Sprintf("%d", s.Events),
			}
		}
	} else {
		rows = make([]table.Row, len(m.entries))
		for i, e := range m.entries {
			dir := "->"
			if e.Direction == storage.DirResponse {
				dir = "<-"
			}
			rows[i] = table.Row{e.CreatedAt.Format("15:04:05.000"), dir, e.Text}
		}
	}
	m.table.SetRows(rows)
	m.table.GotoTop()
}

// Init initializes the journal model.
func (m JournalModel) Init() tea.Cmd {
	return nil
}

// Update handles messages for the journal browser.
func (m JournalModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			return m, tea.Quit

		case key.Matches(msg, m.keys.Back):
			if m.open == nil {
				m.quitting = true
				return m, tea.Quit
			}
			m.loadSessions()
			return m, nil

		case key.Matches(msg, m.keys.Reload):
			if m.open == nil {
				m.loadSessions()
			} else {
				m.loadEntries(*m.open)
			}
			return m, nil

		case key.Matches(msg, m.keys.Open):
			if m.open == nil && len(m.sessions) > 0 {
				m.loadEntries(m.sessions[m.table.Cursor()])
			}
			return m, nil
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.table = m.createTable()
		m.updateTableRows()
		m.help.Width = msg.Width
		return m, nil
	}

	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

// View renders the journal browser.
func (m JournalModel) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder

	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("229")).
		MarginBottom(1)

	title := "CONTROLLER JOURNAL"
	if m.open != nil {
		title = fmt.Sprintf("SESSION %s - %s", shortID(m.open.ID), m.open.Controller)
	}
	b.WriteString(titleStyle.Render(title))
	b.WriteString("\n\n")

	frame := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("240")).
		Padding(0, 1)
	b.WriteString(frame.Render(m.renderTableContent()))

	b.WriteString("\n")
	helpStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	b.WriteString(helpStyle.Render(m.help.View(m.keys)))

	return b.String()
}

func (m JournalModel) renderTableContent() string {
	emptyStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("241")).
		Italic(true).
		Padding(2, 4)

	switch {
	case m.err != nil:
		return emptyStyle.Render("Cannot read journal: " + m.err.Error())
	case m.open == nil && len(m.sessions) == 0:
		return emptyStyle.Render("No controller sessions recorded yet.")
	case m.open != nil && len(m.entries) == 0:
		return emptyStyle.Render("This session sent nothing.")
	}
	return m.table.View()
}

// IsQuitting returns true if the user left the browser.
func (m JournalModel) IsQuitting() bool {
	return m.quitting
}

// RunJournal runs the journal browser full screen.
func RunJournal(source JournalSource, width, height int) error {
	p := tea.NewProgram(NewJournalModel(source, width, height), tea.WithAltScreen())
	_, err := p.Run()
	return err
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
