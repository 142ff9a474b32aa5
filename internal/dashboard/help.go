package dashboard

import (
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
)

// helpKeys joins the active table's bindings with the global ones.
// While the table is busy only its own bindings apply.
type helpKeys struct {
	table  help.KeyMap
	global globalKeys
	busy   bool
}

// ShortHelp returns the combined bindings for the help bar.
func (h helpKeys) ShortHelp() []key.Binding {
	if h.busy {
		return h.table.ShortHelp()
	}
	return append(h.table.ShortHelp(), h.global.ShortHelp()...)
}

// FullHelp returns the combined bindings grouped for expanded help.
func (h helpKeys) FullHelp() [][]key.Binding {
	if h.busy {
		return h.table.FullHelp()
	}
	return append(h.table.FullHelp(), h.global.FullHelp()...)
}

// HelpBindings returns the help.KeyMap for the given table bindings,
// providing context-aware help bar content.
func HelpBindings(table help.KeyMap, busy bool) help.KeyMap {
	return helpKeys{table: table, global: GlobalKeyMap(), busy: busy}
}
