package table

import (
	"fmt"
	"slices"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Checkbox renders a checkbox with an optional label.
func Checkbox(checked bool, label string) string {
	box := "[ ]"
	if checked {
		box = "[x]"
	}
	if label == "" {
		return box
	}
	return box + " " + label
}

// View renders the table for its current mode.
func (m Model[R]) View() string {
	switch {
	case m.mode == modeCreate:
		return m.viewCreate()
	case m.loading:
		return "Loading..."
	}

	var b strings.Builder
	if !m.settings.readOnly {
		b.WriteString(buttonStyle.Render("[a] Add New") + "  " + buttonStyle.Render("[R] Reset"))
		b.WriteString("\n\n")
	}
	b.WriteString(headerStyle.Render("  " + m.headerLine()))

	if len(m.rows) == 0 {
		b.WriteString("\n" + mutedText.Render("  "+m.settings.emptyText))
		return b.String()
	}

	page, pages := m.Page()
	start := page * m.settings.pageSize
	end := min(start+m.settings.pageSize, len(m.rows))
	for i := start; i < end; i++ {
		r := m.rows[i]
		b.WriteByte('\n')
		if i == m.cursor {
			b.WriteString(CursorMarker)
		} else {
			b.WriteString("  ")
		}
		b.WriteString(m.rowLine(r))
		if m.mode == modeEdit && r.Key() == m.form.rowID {
			b.WriteString("\n" + m.viewEditForm())
		}
	}
	if pages > 1 {
		fmt.Fprintf(&b, "\n\n%s", mutedText.Render(fmt.Sprintf("  Page %d/%d", page+1, pages)))
	}
	if m.mode == modeConfirm {
		b.WriteString("\n\n" + modalStyle.Render(m.confirm.View()))
	}
	return b.String()
}

func (m Model[R]) headerLine() string {
	cells := make([]string, len(m.columns))
	for i, c := range m.columns {
		cells[i] = fit(c.Header, m.colWidth(c))
	}
	return strings.Join(cells, " ")
}

func (m Model[R]) rowLine(r R) string {
	cells := make([]string, len(m.columns))
	for i, c := range m.columns {
		cells[i] = m.cell(c, r)
	}
	return strings.Join(cells, " ")
}

// cell renders one column of r. Tag cells list every choice with its
// checkbox so membership is visible without opening the editor.
func (m Model[R]) cell(c Column[R], r R) string {
	w := m.colWidth(c)
	switch c.Kind {
	case ColumnTags:
		return fit(tagChecklist(m.choices[c.ID], r.TagIDs(), -1), w)
	case ColumnBool:
		return fit(Checkbox(c.Get(r).Bool, ""), w)
	default:
		return fit(c.Get(r).Text, w)
	}
}

// colWidth returns the rendered width of c. A tag column without a fixed
// width is as wide as its full checklist.
func (m Model[R]) colWidth(c Column[R]) int {
	if c.Width > 0 || c.Kind != ColumnTags {
		return c.Width
	}
	return max(lipgloss.Width(tagChecklist(m.choices[c.ID], nil, -1)), lipgloss.Width(c.Header))
}

// tagChecklist renders "[x] Sweet  [ ] Sour". highlight is the index of
// the choice under the form cursor, or -1.
func tagChecklist(choices []Choice, selected []string, highlight int) string {
	parts := make([]string, len(choices))
	for i, ch := range choices {
		item := Checkbox(slices.Contains(selected, ch.ID), ch.Label)
		if i == highlight {
			item = highlightChoice.Render(item)
		}
		parts[i] = item
	}
	return strings.Join(parts, "  ")
}

func (m Model[R]) viewEditForm() string {
	var b strings.Builder
	for i, ff := range m.form.fields {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString("    " + m.formFieldLine(ff, i == m.form.focus))
		if msg := m.errors[CellID(m.form.rowID, ff.field.ID)]; msg != "" {
			b.WriteString("\n      " + errorText.Render(msg))
		}
	}
	return b.String()
}

func (m Model[R]) viewCreate() string {
	var b strings.Builder
	b.WriteString(headerStyle.Render("Add New"))
	b.WriteByte('\n')
	for i, ff := range m.form.fields {
		b.WriteString("\n" + m.formFieldLine(ff, i == m.form.focus))
		if m.form.dirty && !satisfied(ff.field, ff.value()) {
			b.WriteString("\n  " + errorText.Render(requiredMessage(ff.field)))
		}
	}
	b.WriteString("\n\n  [Enter] Submit   [Esc] Cancel")
	return modalStyle.Render(b.String())
}

func (m Model[R]) formFieldLine(ff formField, focused bool) string {
	label := ff.field.Header + ":"
	if focused {
		label = focusedLabel.Render(label)
	}
	var value string
	switch ff.field.Kind {
	case ColumnTags:
		highlight := -1
		if focused {
			highlight = ff.cursor
		}
		value = tagChecklist(ff.choices, ff.tags, highlight)
		if len(ff.choices) == 0 {
			value = mutedText.Render("no tags available")
		}
	case ColumnBool:
		value = Checkbox(ff.checked, "")
	default:
		value = ff.input.View()
	}
	return label + " " + value
}

// fit pads or truncates s to exactly width cells. A width of 0 leaves s
// untouched.
func fit(s string, width int) string {
	if width <= 0 {
		return s
	}
	w := lipgloss.Width(s)
	if w <= width {
		return s + strings.Repeat(" ", width-w)
	}
	runes := []rune(s)
	for len(runes) > 0 && lipgloss.Width(string(runes))+1 > width {
		runes = runes[:len(runes)-1]
	}
	return string(runes) + "…"
}
