package dashboard

import "github.com/charmbracelet/bubbles/key"

// globalKeys holds the bindings handled by the dashboard itself while the
// active table is not in a form or confirmation.
type globalKeys struct {
	NextTab key.Binding
	PrevTab key.Binding
	GoTo    key.Binding
	Help    key.Binding
	Quit    key.Binding
}

// ShortHelp returns the global bindings for the help bar.
func (k globalKeys) ShortHelp() []key.Binding {
	return []key.Binding{k.NextTab, k.Help, k.Quit}
}

// FullHelp returns the global bindings grouped for expanded help.
func (k globalKeys) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.NextTab, k.PrevTab, k.GoTo},
		{k.Help, k.Quit},
	}
}

// GlobalKeyMap returns the dashboard-level key bindings.
func GlobalKeyMap() globalKeys {
	return globalKeys{
		NextTab: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "next tab"),
		),
		PrevTab: key.NewBinding(
			key.WithKeys("shift+tab"),
			key.WithHelp("shift+tab", "prev tab"),
		),
		GoTo: key.NewBinding(
			key.WithKeys("1", "2", "3", "4", "5", "6", "7", "8", "9"),
			key.WithHelp("1-9", "go to tab"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "more"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}
