// Package dashboard implements the pantry TUI: an editor tab per record
// kind and a read-only catalog tab with a detail pane. Data arrives from
// query cache subscriptions through a Bridge; table intents become API
// mutations.
package dashboard

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/smileynet/pantry/internal/record"
)

// RecordsMsg delivers the result of a kind's list query.
type RecordsMsg struct {
	Kind    record.Kind
	Records []record.Record
	Err     error
}

// TagsMsg delivers the result of a kind's tag catalog query.
type TagsMsg struct {
	Kind record.Kind
	Tags []record.Tag
	Err  error
}

// MutationDoneMsg reports a finished write.
type MutationDoneMsg struct {
	Kind     record.Kind
	Endpoint string
	Summary  string // human description of the change, e.g. "Added Pear"
	Err      error
}

// bridged reports whether msg arrived through the Bridge, in which case
// the model must listen for the next one.
func bridged(msg tea.Msg) bool {
	switch msg.(type) {
	case RecordsMsg, TagsMsg:
		return true
	}
	return false
}
