package table

import (
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

// Update handles key messages; other messages are forwarded to an open
// form so its text input can blink.
func (m Model[R]) Update(msg tea.Msg) (Model[R], tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		if m.mode == modeEdit || m.mode == modeCreate {
			var cmd tea.Cmd
			m.form, cmd = m.form.updateInput(msg)
			return m, cmd
		}
		return m, nil
	}

	switch m.mode {
	case modeEdit:
		return m.handleEditKey(keyMsg)
	case modeCreate:
		return m.handleCreateKey(keyMsg)
	case modeConfirm:
		return m.handleConfirmKey(keyMsg)
	default:
		if m.loading {
			return m, nil
		}
		return m.handleViewKey(keyMsg)
	}
}

// HelpKeys returns the bindings relevant to the current mode.
func (m Model[R]) HelpKeys() help.KeyMap {
	switch {
	case m.mode == modeEdit || m.mode == modeCreate:
		return m.keys.Editing()
	case m.mode == modeConfirm:
		return m.keys.Confirming()
	case m.settings.readOnly:
		return m.keys.ReadOnly()
	default:
		return m.keys.Viewing()
	}
}

func (m Model[R]) handleViewKey(msg tea.KeyMsg) (Model[R], tea.Cmd) {
	k := m.keys
	switch {
	case key.Matches(msg, k.Up):
		if len(m.rows) > 0 {
			m.cursor--
			if m.cursor < 0 {
				m.cursor = len(m.rows) - 1
			}
		}
		return m, nil

	case key.Matches(msg, k.Down):
		if len(m.rows) > 0 {
			m.cursor++
			if m.cursor >= len(m.rows) {
				m.cursor = 0
			}
		}
		return m, nil

	case key.Matches(msg, k.PrevPage):
		page, _ := m.Page()
		if page > 0 {
			m.cursor = (page - 1) * m.settings.pageSize
		}
		return m, nil

	case key.Matches(msg, k.NextPage):
		page, pages := m.Page()
		if page+1 < pages {
			m.cursor = (page + 1) * m.settings.pageSize
		}
		return m, nil

	case key.Matches(msg, k.Select):
		r, ok := m.Selected()
		if !ok {
			return m, nil
		}
		id, rowID := m.id, r.Key()
		return m, func() tea.Msg { return RowSelectedMsg{Table: id, RowID: rowID} }
	}

	if m.settings.readOnly {
		return m, nil
	}

	switch {
	case key.Matches(msg, k.Edit):
		return m.startEdit()

	case key.Matches(msg, k.Delete):
		r, ok := m.Selected()
		if !ok {
			return m, nil
		}
		m.mode = modeConfirm
		m.confirm = confirmState{rowID: r.Key(), title: r.Title()}
		return m, nil

	case key.Matches(msg, k.Add):
		return m.startCreate()

	case key.Matches(msg, k.Reset):
		id := m.id
		return m, func() tea.Msg { return ResetMsg{Table: id} }
	}
	return m, nil
}

// startEdit opens the inline form on the selected row.
func (m Model[R]) startEdit() (Model[R], tea.Cmd) {
	r, ok := m.Selected()
	if !ok {
		return m, nil
	}
	var fields []formField
	for _, c := range m.columns {
		if c.Editable {
			fields = append(fields, newFormField(c.Field, c.Get(r).clone(), m.choices[c.ID]))
		}
	}
	if len(fields) == 0 {
		return m, nil
	}
	var cmd tea.Cmd
	m.form, cmd = newForm(r.Key(), fields)
	m.mode = modeEdit
	return m, cmd
}

// startCreate opens the create form with empty values.
func (m Model[R]) startCreate() (Model[R], tea.Cmd) {
	var fields []formField
	for _, c := range m.columns {
		if c.Creatable {
			fields = append(fields, newFormField(c.Field, Value{}, m.choices[c.ID]))
		}
	}
	if len(fields) == 0 {
		return m, nil
	}
	var cmd tea.Cmd
	m.form, cmd = newForm("", fields)
	m.mode = modeCreate
	return m, cmd
}

func (m Model[R]) handleEditKey(msg tea.KeyMsg) (Model[R], tea.Cmd) {
	k := m.keys
	switch {
	case key.Matches(msg, k.Cancel):
		return m.cancelEdit(), nil

	case key.Matches(msg, k.Submit):
		m = m.validateFocused()
		if m.rowHasErrors(m.form.rowID) {
			return m, nil
		}
		draft := m.form.draft()
		id := m.id
		m = m.clearRowErrors(draft.RowID)
		m.mode = modeView
		m.form = form{}
		return m, func() tea.Msg { return UpdateMsg{Table: id, Draft: draft} }

	case key.Matches(msg, k.NextField), key.Matches(msg, k.PrevField):
		m = m.validateFocused()
		delta := 1
		if key.Matches(msg, k.PrevField) {
			delta = -1
		}
		var cmd tea.Cmd
		m.form, cmd = m.form.focusField(m.form.focus + delta)
		return m, cmd
	}
	return m.handleFieldKey(msg)
}

func (m Model[R]) handleCreateKey(msg tea.KeyMsg) (Model[R], tea.Cmd) {
	k := m.keys
	switch {
	case key.Matches(msg, k.Cancel):
		m.mode = modeView
		m.form = form{}
		return m, nil

	case key.Matches(msg, k.Submit):
		m.form.dirty = true
		if len(m.form.missing()) > 0 {
			return m, nil
		}
		draft := m.form.draft()
		id := m.id
		m.mode = modeView
		m.form = form{}
		return m, func() tea.Msg { return CreateMsg{Table: id, Draft: draft} }

	case key.Matches(msg, k.NextField), key.Matches(msg, k.PrevField):
		delta := 1
		if key.Matches(msg, k.PrevField) {
			delta = -1
		}
		var cmd tea.Cmd
		m.form, cmd = m.form.focusField(m.form.focus + delta)
		return m, cmd
	}
	return m.handleFieldKey(msg)
}

// handleFieldKey applies a key to the focused field of an open form.
func (m Model[R]) handleFieldKey(msg tea.KeyMsg) (Model[R], tea.Cmd) {
	ff, ok := m.form.focused()
	if !ok {
		return m, nil
	}
	k := m.keys
	switch ff.field.Kind {
	case ColumnTags:
		switch {
		case key.Matches(msg, k.Left):
			ff = ff.moveChoice(-1)
		case key.Matches(msg, k.Right):
			ff = ff.moveChoice(1)
		case key.Matches(msg, k.Toggle):
			ff = ff.toggle()
		}
		m.form = m.form.setFocused(ff)
		return m, nil
	case ColumnBool:
		if key.Matches(msg, k.Toggle) {
			m.form = m.form.setFocused(ff.toggle())
		}
		return m, nil
	}
	var cmd tea.Cmd
	m.form, cmd = m.form.updateInput(msg)
	return m, cmd
}

func (m Model[R]) handleConfirmKey(msg tea.KeyMsg) (Model[R], tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Confirm):
		cs := m.confirm
		id := m.id
		m.mode = modeView
		m.confirm = confirmState{}
		return m, func() tea.Msg { return DeleteMsg{Table: id, RowID: cs.rowID, Title: cs.title} }
	case key.Matches(msg, m.keys.Cancel), msg.String() == "n":
		m.mode = modeView
		m.confirm = confirmState{}
	}
	return m, nil
}

// cancelEdit leaves edit mode and clears the errors of the edited row.
func (m Model[R]) cancelEdit() Model[R] {
	m = m.clearRowErrors(m.form.rowID)
	m.mode = modeView
	m.form = form{}
	return m
}

// validateFocused runs the caller's validator on the focused field of the
// edit form, the equivalent of the field losing focus.
func (m Model[R]) validateFocused() Model[R] {
	v := m.settings.validator
	ff, ok := m.form.focused()
	if v == nil || !ok {
		return m
	}
	cell := CellID(m.form.rowID, ff.field.ID)
	next := make(map[string]string, len(m.errors)+1)
	for k, msg := range m.errors {
		next[k] = msg
	}
	if msg := v(ff.field, ff.value()); msg != "" {
		next[cell] = msg
	} else {
		delete(next, cell)
	}
	m.errors = next
	return m
}
