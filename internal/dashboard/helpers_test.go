package dashboard

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/smileynet/pantry/internal/api"
	"github.com/smileynet/pantry/internal/catalog"
	"github.com/smileynet/pantry/internal/facade"
	"github.com/smileynet/pantry/internal/querycache"
	"github.com/smileynet/pantry/internal/record"
	"github.com/smileynet/pantry/internal/store"
)

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

// newTestAPI builds an API over small fruit and vegetable stores.
func newTestAPI(t *testing.T, opts ...facade.Option) *api.API {
	t.Helper()
	fruitTags, err := catalog.New(record.KindFruit, []record.Tag{
		{ID: "sweet", Name: "Sweet"}, {ID: "red", Name: "Red"}, {ID: "sour", Name: "Sour"},
	})
	if err != nil {
		t.Fatal(err)
	}
	vegTags, err := catalog.New(record.KindVegetable, []record.Tag{{ID: "green", Name: "Green"}})
	if err != nil {
		t.Fatal(err)
	}

	a := api.New(facade.New(opts...), querycache.New())
	a.Register(store.New(record.KindFruit, []record.Record{
		{ID: "1", Name: "Apple", Description: "Crunchy", Tags: []string{"sweet", "red"}},
		{ID: "2", Name: "Quince", Description: "Hard", Tags: []string{"sour"}, Archived: true},
	}), fruitTags)
	a.Register(store.New(record.KindVegetable, []record.Record{
		{ID: "1", Name: "Kale", Description: "Leafy", Tags: []string{"green"}},
	}), vegTags)
	return a
}

// update runs one Update and returns the concrete model.
func update(m Model, msg tea.Msg) (Model, tea.Cmd) {
	next, cmd := m.Update(msg)
	return next.(Model), cmd
}

// drain feeds every message waiting in the bridge to the model.
func drain(m Model) Model {
	for {
		select {
		case msg := <-m.bridge.ch:
			m, _ = update(m, msg)
		default:
			return m
		}
	}
}

// loaded returns a sized model whose subscriptions have delivered.
func loaded(t *testing.T, a *api.API) Model {
	t.Helper()
	m := NewModel(a)
	t.Cleanup(m.Close)
	m, _ = update(m, tea.WindowSizeMsg{Width: 140, Height: 40})
	m.subscribe()()
	return drain(m)
}

// mutate runs the command produced by an intent and applies its results.
func mutate(t *testing.T, m Model, intent tea.Msg) Model {
	t.Helper()
	m, cmd := update(m, intent)
	if cmd == nil {
		t.Fatalf("intent %T produced no command", intent)
	}
	done, ok := cmd().(MutationDoneMsg)
	if !ok {
		t.Fatalf("expected MutationDoneMsg")
	}
	m = drain(m)
	m, _ = update(m, done)
	return m
}

func keyRunes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}
