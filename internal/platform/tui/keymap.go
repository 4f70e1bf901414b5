package tui

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/ghostflap/internal/core"
)

// playKeys are active while a session runs.
type playKeys struct {
	Jump       key.Binding
	Pause      key.Binding
	Screenshot key.Binding
	Quit       key.Binding
}

func defaultPlayKeys() playKeys {
	return playKeys{
		Jump: key.NewBinding(
			key.WithKeys(" ", "up", "w"),
			key.WithHelp("space", "jump"),
		),
		Pause: key.NewBinding(
			key.WithKeys("p", "esc"),
			key.WithHelp("p", "pause"),
		),
		Screenshot: key.NewBinding(
			key.WithKeys("ctrl+s"),
			key.WithHelp("ctrl+s", "screenshot"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// Action translates a key message to a game action.
// Returns ActionNone for keys the session does not care about.
func (k playKeys) Action(msg tea.KeyMsg) core.Action {
	switch {
	case key.Matches(msg, k.Quit):
		return core.ActionQuit
	case key.Matches(msg, k.Jump):
		return core.ActionJump
	case key.Matches(msg, k.Pause):
		return core.ActionPause
	}
	return core.ActionNone
}

// reportKeys are active on the end-of-session report.
type reportKeys struct {
	Play   key.Binding
	Save   key.Binding
	Ghost  key.Binding
	Resume key.Binding
	Import key.Binding
	Export key.Binding
	Quit   key.Binding
}

func defaultReportKeys() reportKeys {
	return reportKeys{
		Play: key.NewBinding(
			key.WithKeys(" ", "enter"),
			key.WithHelp("space", "play"),
		),
		Save: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "save"),
		),
		Ghost: key.NewBinding(
			key.WithKeys("g"),
			key.WithHelp("g", "ghost"),
		),
		Resume: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "resume"),
		),
		Import: key.NewBinding(
			key.WithKeys("i"),
			key.WithHelp("i", "import"),
		),
		Export: key.NewBinding(
			key.WithKeys("e"),
			key.WithHelp("e", "export"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// ShortHelp implements help.KeyMap.
func (k reportKeys) ShortHelp() []key.Binding {
	return []key.Binding{k.Play, k.Save, k.Ghost, k.Resume, k.Import, k.Export, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k reportKeys) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Play, k.Ghost, k.Resume},
		{k.Save, k.Import, k.Export},
		{k.Quit},
	}
}

// importKeys are active while the import box has focus.
type importKeys struct {
	Submit key.Binding
	Cancel key.Binding
}

func defaultImportKeys() importKeys {
	return importKeys{
		Submit: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "import"),
		),
		Cancel: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "cancel"),
		),
	}
}

// ShortHelp implements help.KeyMap.
func (k importKeys) ShortHelp() []key.Binding {
	return []key.Binding{k.Submit, k.Cancel}
}

// FullHelp implements help.KeyMap.
func (k importKeys) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}
