package table

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
)

// item is a minimal Row used by the table tests.
type item struct {
	id   string
	name string
	tags []string
	done bool
}

func (i item) Key() string      { return i.id }
func (i item) Title() string    { return i.name }
func (i item) TagIDs() []string { return i.tags }

func itemColumns() []Column[item] {
	return []Column[item]{
		{
			Field: Field{ID: "id", Header: "ID"},
			Width: 4,
			Get:   func(i item) Value { return Value{Text: i.id} },
		},
		{
			Field:     Field{ID: "name", Header: "Name"},
			Width:     12,
			Get:       func(i item) Value { return Value{Text: i.name} },
			Editable:  true,
			Creatable: true,
		},
		{
			Field:     Field{ID: "tags", Header: "Tags", Kind: ColumnTags},
			Get:       func(i item) Value { return Value{Tags: i.tags} },
			Editable:  true,
			Creatable: true,
		},
		{
			Field:     Field{ID: "done", Header: "Done?", Kind: ColumnBool},
			Width:     5,
			Get:       func(i item) Value { return Value{Bool: i.done} },
			Editable:  true,
			Creatable: true,
		},
	}
}

func itemChoices() []Choice {
	return []Choice{{ID: "sweet", Label: "Sweet"}, {ID: "red", Label: "Red"}}
}

func seedItems() []item {
	return []item{
		{id: "1", name: "Apple", tags: []string{"sweet", "red"}},
		{id: "2", name: "Lemon", done: true},
		{id: "3", name: "Mango", tags: []string{"sweet"}},
	}
}

// newItemTable returns a loaded table with the seed items.
func newItemTable(opts ...Option) Model[item] {
	m := New("items", itemColumns(), opts...)
	m = m.SetChoices("tags", itemChoices())
	return m.SetRows(seedItems())
}

// requiredValidator mirrors the usual field rule: non-blank text, at least one tag.
func requiredValidator(f Field, v Value) string {
	if satisfied(f, v) {
		return ""
	}
	return f.Header + " is required"
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

var (
	enterKey     = tea.KeyMsg{Type: tea.KeyEnter}
	escKey       = tea.KeyMsg{Type: tea.KeyEscape}
	tabKey       = tea.KeyMsg{Type: tea.KeyTab}
	spaceKey     = tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	rightKey     = tea.KeyMsg{Type: tea.KeyRight}
	downKey      = tea.KeyMsg{Type: tea.KeyDown}
	upKey        = tea.KeyMsg{Type: tea.KeyUp}
	backspaceKey = tea.KeyMsg{Type: tea.KeyBackspace}
)

// press feeds keys to m in order and returns the final model and the
// command produced by the last key.
func press(m Model[item], keys ...tea.KeyMsg) (Model[item], tea.Cmd) {
	var cmd tea.Cmd
	for _, k := range keys {
		m, cmd = m.Update(k)
	}
	return m, cmd
}

// typeText types s into the focused field.
func typeText(m Model[item], s string) Model[item] {
	for _, r := range s {
		m, _ = m.Update(runes(string(r)))
	}
	return m
}

// erase sends n backspaces.
func erase(m Model[item], n int) Model[item] {
	for range n {
		m, _ = m.Update(backspaceKey)
	}
	return m
}

// intent runs cmd and returns its message, failing when cmd is nil.
func intent(t *testing.T, cmd tea.Cmd) tea.Msg {
	t.Helper()
	if cmd == nil {
		t.Fatal("expected a command, got nil")
	}
	return cmd()
}

// stripANSI removes ANSI escape sequences from a string.
func stripANSI(s string) string {
	var out []byte
	i := 0
	for i < len(s) {
		if s[i] == '\x1b' && i+1 < len(s) && s[i+1] == '[' {
			j := i + 2
			for j < len(s) && (s[j] < 'A' || s[j] > 'Z') && (s[j] < 'a' || s[j] > 'z') {
				j++
			}
			if j < len(s) {
				j++
			}
			i = j
		} else {
			out = append(out, s[i])
			i++
		}
	}
	return string(out)
}

// containsPlainText checks if s contains sub after stripping ANSI escapes.
func containsPlainText(s, sub string) bool {
	return strings.Contains(stripANSI(s), sub)
}
