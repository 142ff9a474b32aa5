package table

import (
	"fmt"
	"slices"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// formField is one editable field of the edit or create form.
type formField struct {
	field   Field
	input   textinput.Model // ColumnText
	choices []Choice        // ColumnTags
	tags    []string        // ColumnTags: selected IDs
	cursor  int             // ColumnTags: highlighted choice
	checked bool            // ColumnBool
}

func newFormField(f Field, v Value, choices []Choice) formField {
	ff := formField{field: f}
	switch f.Kind {
	case ColumnText:
		ti := textinput.New()
		ti.Prompt = ""
		ti.CharLimit = 200
		ti.Placeholder = f.Header
		ti.SetValue(v.Text)
		ff.input = ti
	case ColumnTags:
		ff.choices = slices.Clone(choices)
		ff.tags = slices.Clone(v.Tags)
	case ColumnBool:
		ff.checked = v.Bool
	}
	return ff
}

func (ff formField) value() Value {
	switch ff.field.Kind {
	case ColumnText:
		return Value{Text: ff.input.Value()}
	case ColumnTags:
		return Value{Tags: slices.Clone(ff.tags)}
	default:
		return Value{Bool: ff.checked}
	}
}

// toggle flips the highlighted tag or the checkbox.
func (ff formField) toggle() formField {
	switch ff.field.Kind {
	case ColumnTags:
		if len(ff.choices) == 0 {
			return ff
		}
		id := ff.choices[ff.cursor].ID
		if i := slices.Index(ff.tags, id); i >= 0 {
			ff.tags = slices.Delete(slices.Clone(ff.tags), i, i+1)
		} else {
			ff.tags = append(slices.Clone(ff.tags), id)
		}
	case ColumnBool:
		ff.checked = !ff.checked
	}
	return ff
}

func (ff formField) moveChoice(delta int) formField {
	if n := len(ff.choices); n > 0 {
		ff.cursor = (ff.cursor + delta + n) % n
	}
	return ff
}

// form is the shared state of the inline edit form and the create modal.
type form struct {
	rowID  string // empty when creating
	fields []formField
	focus  int
	dirty  bool // create only: submit attempted at least once
}

func newForm(rowID string, fields []formField) (form, tea.Cmd) {
	f := form{rowID: rowID, fields: fields}
	return f.focusField(0)
}

// focusField moves focus to field i, blurring the previous text input.
func (f form) focusField(i int) (form, tea.Cmd) {
	if len(f.fields) == 0 {
		return f, nil
	}
	f.fields = slices.Clone(f.fields)
	if cur := f.focus; cur < len(f.fields) && f.fields[cur].field.Kind == ColumnText {
		f.fields[cur].input.Blur()
	}
	f.focus = (i + len(f.fields)) % len(f.fields)
	if f.fields[f.focus].field.Kind == ColumnText {
		f.fields[f.focus].input.Focus()
		return f, textinput.Blink
	}
	return f, nil
}

func (f form) focused() (formField, bool) {
	if f.focus < 0 || f.focus >= len(f.fields) {
		return formField{}, false
	}
	return f.fields[f.focus], true
}

func (f form) setFocused(ff formField) form {
	f.fields = slices.Clone(f.fields)
	f.fields[f.focus] = ff
	return f
}

// draft collects the entered values.
func (f form) draft() Draft {
	d := Draft{RowID: f.rowID, Values: make(map[string]Value, len(f.fields))}
	for _, ff := range f.fields {
		d.Values[ff.field.ID] = ff.value()
	}
	return d
}

func (f form) withChoices(columnID string, choices []Choice) form {
	f.fields = slices.Clone(f.fields)
	for i, ff := range f.fields {
		if ff.field.ID == columnID && ff.field.Kind == ColumnTags {
			ff.choices = slices.Clone(choices)
			if ff.cursor >= len(choices) {
				ff.cursor = 0
			}
			f.fields[i] = ff
		}
	}
	return f
}

// updateInput forwards a key to the focused text input.
func (f form) updateInput(msg tea.Msg) (form, tea.Cmd) {
	ff, ok := f.focused()
	if !ok || ff.field.Kind != ColumnText {
		return f, nil
	}
	var cmd tea.Cmd
	ff.input, cmd = ff.input.Update(msg)
	return f.setFocused(ff), cmd
}

// missing returns the fields that fail the required rule of the create
// form: text must be non-blank and tag columns need at least one tag.
func (f form) missing() []Field {
	var out []Field
	for _, ff := range f.fields {
		if !satisfied(ff.field, ff.value()) {
			out = append(out, ff.field)
		}
	}
	return out
}

func satisfied(f Field, v Value) bool {
	switch f.Kind {
	case ColumnText:
		return strings.TrimSpace(v.Text) != ""
	case ColumnTags:
		return len(v.Tags) > 0
	default:
		return true
	}
}

// requiredMessage is shown under a create form field that is still empty.
func requiredMessage(f Field) string {
	return fmt.Sprintf("%s field is required.", f.Header)
}
