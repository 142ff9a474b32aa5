package table

import (
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
)

// KeyMap holds every binding the table reacts to.
type KeyMap struct {
	Up       key.Binding
	Down     key.Binding
	PrevPage key.Binding
	NextPage key.Binding
	Select   key.Binding
	Edit     key.Binding
	Delete   key.Binding
	Add      key.Binding
	Reset    key.Binding

	NextField key.Binding
	PrevField key.Binding
	Left      key.Binding
	Right     key.Binding
	Toggle    key.Binding
	Submit    key.Binding
	Cancel    key.Binding

	Confirm key.Binding
}

// DefaultKeyMap returns the table's key bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		PrevPage: key.NewBinding(
			key.WithKeys("["),
			key.WithHelp("[", "prev page"),
		),
		NextPage: key.NewBinding(
			key.WithKeys("]"),
			key.WithHelp("]", "next page"),
		),
		Select: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "select"),
		),
		Edit: key.NewBinding(
			key.WithKeys("e"),
			key.WithHelp("e", "edit"),
		),
		Delete: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "delete"),
		),
		Add: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "add new"),
		),
		Reset: key.NewBinding(
			key.WithKeys("R"),
			key.WithHelp("R", "reset"),
		),
		NextField: key.NewBinding(
			key.WithKeys("tab", "down"),
			key.WithHelp("tab", "next field"),
		),
		PrevField: key.NewBinding(
			key.WithKeys("shift+tab", "up"),
			key.WithHelp("shift+tab", "prev field"),
		),
		Left: key.NewBinding(
			key.WithKeys("left"),
			key.WithHelp("←/→", "choose tag"),
		),
		Right: key.NewBinding(
			key.WithKeys("right"),
		),
		Toggle: key.NewBinding(
			key.WithKeys(" "),
			key.WithHelp("space", "toggle"),
		),
		Submit: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "save"),
		),
		Cancel: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "cancel"),
		),
		Confirm: key.NewBinding(
			key.WithKeys("enter", "y"),
			key.WithHelp("enter/y", "confirm"),
		),
	}
}

// Viewing returns the help for browsing an editable table.
func (k KeyMap) Viewing() help.KeyMap { return viewKeys{k} }

// ReadOnly returns the help for browsing a read-only table.
func (k KeyMap) ReadOnly() help.KeyMap { return readOnlyKeys{k} }

// Editing returns the help while a form is open.
func (k KeyMap) Editing() help.KeyMap { return formKeys{k} }

// Confirming returns the help while a deletion awaits confirmation.
func (k KeyMap) Confirming() help.KeyMap { return confirmKeys{k} }

// viewKeys is the help for browsing an editable table.
type viewKeys struct {
	k KeyMap
}

// ShortHelp returns the browse bindings for the help bar.
func (v viewKeys) ShortHelp() []key.Binding {
	return []key.Binding{v.k.Up, v.k.Down, v.k.Edit, v.k.Delete, v.k.Add, v.k.Reset}
}

// FullHelp returns the browse bindings grouped for expanded help.
func (v viewKeys) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{v.k.Up, v.k.Down, v.k.PrevPage, v.k.NextPage},
		{v.k.Edit, v.k.Delete, v.k.Add, v.k.Reset},
	}
}

// readOnlyKeys is the help for a read-only table.
type readOnlyKeys struct {
	k KeyMap
}

// ShortHelp returns the read-only bindings for the help bar.
func (r readOnlyKeys) ShortHelp() []key.Binding {
	return []key.Binding{r.k.Up, r.k.Down, r.k.Select, r.k.PrevPage, r.k.NextPage}
}

// FullHelp returns the read-only bindings grouped for expanded help.
func (r readOnlyKeys) FullHelp() [][]key.Binding {
	return [][]key.Binding{{r.k.Up, r.k.Down, r.k.Select}, {r.k.PrevPage, r.k.NextPage}}
}

// formKeys is the help while a form is open.
type formKeys struct {
	k KeyMap
}

// ShortHelp returns the form bindings for the help bar.
func (f formKeys) ShortHelp() []key.Binding {
	return []key.Binding{f.k.NextField, f.k.Left, f.k.Toggle, f.k.Submit, f.k.Cancel}
}

// FullHelp returns the form bindings grouped for expanded help.
func (f formKeys) FullHelp() [][]key.Binding {
	return [][]key.Binding{{f.k.NextField, f.k.PrevField}, {f.k.Left, f.k.Toggle}, {f.k.Submit, f.k.Cancel}}
}

// confirmKeys is the help while a deletion awaits confirmation.
type confirmKeys struct {
	k KeyMap
}

// ShortHelp returns the confirmation bindings for the help bar.
func (c confirmKeys) ShortHelp() []key.Binding {
	return []key.Binding{c.k.Confirm, c.k.Cancel}
}

// FullHelp returns the confirmation bindings grouped for expanded help.
func (c confirmKeys) FullHelp() [][]key.Binding {
	return [][]key.Binding{{c.k.Confirm, c.k.Cancel}}
}
