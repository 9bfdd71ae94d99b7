package tui

import "github.com/charmbracelet/bubbles/key"

// ConsoleKeyMap defines the console's shortcut keys. Everything else goes to
// the command line.
type ConsoleKeyMap struct {
	Pause  key.Binding
	Step   key.Binding
	Resume key.Binding
	Submit key.Binding
	Clear  key.Binding
	Quit   key.Binding
}

// ShortHelp returns keybindings for the short help view.
func (k ConsoleKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Pause, k.Step, k.Resume, k.Submit, k.Quit}
}

// FullHelp returns keybindings for the full help view.
func (k ConsoleKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Pause, k.Step, k.Resume},
		{k.Submit, k.Clear, k.Quit},
	}
}

// DefaultConsoleKeyMap returns the default console bindings.
func DefaultConsoleKeyMap() ConsoleKeyMap {
	return ConsoleKeyMap{
		Pause: key.NewBinding(
			key.WithKeys("ctrl+p"),
			key.WithHelp("ctrl+p", "pause"),
		),
		Step: key.NewBinding(
			key.WithKeys("ctrl+n"),
			key.WithHelp("ctrl+n", "step"),
		),
		Resume: key.NewBinding(
			key.WithKeys("ctrl+r"),
			key.WithHelp("ctrl+r", "resume"),
		),
		Submit: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "send"),
		),
		Clear: key.NewBinding(
			key.WithKeys("ctrl+l"),
			key.WithHelp("ctrl+l", "clear log"),
		),
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c", "esc"),
			key.WithHelp("esc", "quit"),
		),
	}
}

// JournalKeyMap defines the journal browser's keys.
type JournalKeyMap struct {
	Up     key.Binding
	Down   key.Binding
	Open   key.Binding
	Back   key.Binding
	Reload key.Binding
	Quit   key.Binding
}

// ShortHelp returns keybindings for the short help view.
func (k JournalKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Open, k.Back, k.Quit}
}

// FullHelp returns keybindings for the full help view.
func (k JournalKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Open},
		{k.Back, k.Reload, k.Quit},
	}
}

// DefaultJournalKeyMap returns the default journal bindings.
func DefaultJournalKeyMap() JournalKeyMap {
	return JournalKeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("up/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("down/j", "down"),
		),
		Open: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "open session"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc", "b"),
			key.WithHelp("esc/b", "back"),
		),
		Reload: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "reload"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}
