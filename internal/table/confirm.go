package table

import (
	"fmt"
	"strings"
)

// confirmState holds the row awaiting delete confirmation.
type confirmState struct {
	rowID string
	title string
}

// Prompt returns the question asked before deleting.
func (cs confirmState) Prompt() string {
	return fmt.Sprintf("Are you sure you want to delete '%s'?", cs.title)
}

// View renders the confirmation box.
func (cs confirmState) View() string {
	var b strings.Builder
	b.WriteString(cs.Prompt())
	b.WriteString("\n\n  [Enter] Confirm   [Esc] Cancel")
	return b.String()
}
