// Package table implements a generic record table for Bubble Tea: columns
// are described by descriptors, rows by a small capability interface, and
// every user action leaves the component as an intent message. The table
// never reads or writes data itself.
package table

import (
	"maps"
	"slices"
)

// Row is what the table needs to know about a row beyond its column values.
type Row interface {
	Key() string      // stable identity, used for cell IDs and intents
	Title() string    // shown in the delete confirmation
	TagIDs() []string // tag membership for tag columns
}

// ColumnKind selects how a column is rendered and edited.
type ColumnKind int

const (
	ColumnText ColumnKind = iota // free text, edited with a text input
	ColumnTags                   // a checkbox per catalog choice
	ColumnBool                   // a single checkbox
)

// Field identifies a column independently of the row type.
type Field struct {
	ID     string
	Header string
	Kind   ColumnKind
}

// Value holds a cell's content. Only the member matching the column kind
// is meaningful.
type Value struct {
	Text string
	Tags []string
	Bool bool
}

func (v Value) clone() Value {
	v.Tags = slices.Clone(v.Tags)
	return v
}

// Choice is one selectable option of a tag column.
type Choice struct {
	ID    string
	Label string
}

// Column describes how to show and edit one attribute of R.
type Column[R Row] struct {
	Field
	Width     int
	Get       func(R) Value
	Editable  bool // shown in the inline edit form
	Creatable bool // shown in the create form
}

// Draft carries the values a user entered. RowID is empty for new rows.
// Values holds one entry per form field, keyed by column ID.
type Draft struct {
	RowID  string
	Values map[string]Value
}

// Text returns the text value of the column with the given ID.
func (d Draft) Text(id string) string { return d.Values[id].Text }

// Tags returns the tag IDs of the column with the given ID.
func (d Draft) Tags(id string) []string { return slices.Clone(d.Values[id].Tags) }

// Bool returns the boolean value of the column with the given ID.
func (d Draft) Bool(id string) bool { return d.Values[id].Bool }

// Has reports whether the draft carries a value for the column.
func (d Draft) Has(id string) bool {
	_, ok := d.Values[id]
	return ok
}

// CellValidator checks a single field value and returns an error message,
// or "" when the value is acceptable.
type CellValidator func(f Field, v Value) string

// CellID names a cell in the validation error map.
func CellID(rowID, columnID string) string {
	return rowID + "_" + columnID
}

// Intent messages. Table identifies the emitting table so several tables
// can share one program.
type (
	// CreateMsg asks for a new row built from Draft.
	CreateMsg struct {
		Table string
		Draft Draft
	}
	// UpdateMsg asks for Draft.RowID to be replaced with the drafted values.
	UpdateMsg struct {
		Table string
		Draft Draft
	}
	// DeleteMsg asks for a confirmed deletion.
	DeleteMsg struct {
		Table string
		RowID string
		Title string
	}
	// ResetMsg asks for the collection to be restored to its seed.
	ResetMsg struct {
		Table string
	}
	// RowSelectedMsg reports the row the user picked.
	RowSelectedMsg struct {
		Table string
		RowID string
	}
)

// settings are the table options that do not depend on the row type.
type settings struct {
	pageSize  int
	readOnly  bool
	validator CellValidator
	emptyText string
}

// Option configures a table.
type Option func(*settings)

// DefaultPageSize is the number of rows per page unless WithPageSize is given.
const DefaultPageSize = 10

// WithPageSize sets the rows shown per page. Values below 1 are ignored.
func WithPageSize(n int) Option {
	return func(s *settings) {
		if n > 0 {
			s.pageSize = n
		}
	}
}

// WithReadOnly hides the edit, delete, add and reset actions.
// Enter still selects rows.
func WithReadOnly() Option {
	return func(s *settings) { s.readOnly = true }
}

// WithValidator installs the validator run when an edited field loses focus.
func WithValidator(v CellValidator) Option {
	return func(s *settings) { s.validator = v }
}

// WithEmptyText sets the text shown when there are no rows.
func WithEmptyText(text string) Option {
	return func(s *settings) { s.emptyText = text }
}

// mode is the table's interaction state.
type mode int

const (
	modeView mode = iota
	modeEdit
	modeCreate
	modeConfirm
)

// Model is a Bubble Tea component rendering rows of R.
type Model[R Row] struct {
	id       string
	columns  []Column[R]
	rows     []R
	choices  map[string][]Choice
	errors   map[string]string
	settings settings

	loading bool
	cursor  int
	mode    mode
	form    form
	confirm confirmState
	keys    KeyMap
}

// New creates a table in the loading state. id is echoed in every intent.
func New[R Row](id string, columns []Column[R], opts ...Option) Model[R] {
	s := settings{pageSize: DefaultPageSize, emptyText: "No records"}
	for _, opt := range opts {
		opt(&s)
	}
	return Model[R]{
		id:       id,
		columns:  slices.Clone(columns),
		choices:  make(map[string][]Choice),
		errors:   make(map[string]string),
		settings: s,
		loading:  true,
		keys:     DefaultKeyMap(),
	}
}

// ID returns the table identifier.
func (m Model[R]) ID() string { return m.id }

// ReadOnly reports whether editing actions are hidden.
func (m Model[R]) ReadOnly() bool { return m.settings.readOnly }

// Loading reports whether rows have not been set yet.
func (m Model[R]) Loading() bool { return m.loading }

// Busy reports whether the table is in a form or confirmation and wants
// every key for itself.
func (m Model[R]) Busy() bool { return m.mode != modeView }

// Rows returns the current rows.
func (m Model[R]) Rows() []R { return slices.Clone(m.rows) }

// SetRows replaces the rows. The cursor stays on the same row when it still
// exists. An edit or delete in progress on a row that disappeared is
// abandoned.
func (m Model[R]) SetRows(rows []R) Model[R] {
	var selected string
	if r, ok := m.Selected(); ok {
		selected = r.Key()
	}
	m.rows = slices.Clone(rows)
	m.loading = false

	m.cursor = 0
	if i := m.indexOf(selected); i >= 0 {
		m.cursor = i
	}

	switch m.mode {
	case modeEdit:
		if m.indexOf(m.form.rowID) < 0 {
			m = m.cancelEdit()
		}
	case modeConfirm:
		if m.indexOf(m.confirm.rowID) < 0 {
			m.mode = modeView
			m.confirm = confirmState{}
		}
	}
	return m
}

// SetChoices sets the options of a tag column.
func (m Model[R]) SetChoices(columnID string, choices []Choice) Model[R] {
	next := maps.Clone(m.choices)
	next[columnID] = slices.Clone(choices)
	m.choices = next
	if m.mode == modeEdit || m.mode == modeCreate {
		m.form = m.form.withChoices(columnID, choices)
	}
	return m
}

// Choices returns the options of a tag column.
func (m Model[R]) Choices(columnID string) []Choice {
	return slices.Clone(m.choices[columnID])
}

// SetValidationErrors replaces the cell error map (cell ID to message).
func (m Model[R]) SetValidationErrors(errs map[string]string) Model[R] {
	next := make(map[string]string, len(errs))
	for k, v := range errs {
		if v != "" {
			next[k] = v
		}
	}
	m.errors = next
	return m
}

// ValidationErrors returns a copy of the cell error map.
func (m Model[R]) ValidationErrors() map[string]string {
	return maps.Clone(m.errors)
}

// Selected returns the row under the cursor.
func (m Model[R]) Selected() (R, bool) {
	if m.cursor < 0 || m.cursor >= len(m.rows) {
		var zero R
		return zero, false
	}
	return m.rows[m.cursor], true
}

// EditingRow returns the ID of the row being edited, or "".
func (m Model[R]) EditingRow() string {
	if m.mode != modeEdit {
		return ""
	}
	return m.form.rowID
}

// Page returns the zero-based current page and the page count.
func (m Model[R]) Page() (page, pages int) {
	size := m.settings.pageSize
	pages = (len(m.rows) + size - 1) / size
	if pages == 0 {
		pages = 1
	}
	return m.cursor / size, pages
}

func (m Model[R]) indexOf(key string) int {
	if key == "" {
		return -1
	}
	return slices.IndexFunc(m.rows, func(r R) bool { return r.Key() == key })
}

func (m Model[R]) column(id string) (Column[R], bool) {
	i := slices.IndexFunc(m.columns, func(c Column[R]) bool { return c.ID == id })
	if i < 0 {
		return Column[R]{}, false
	}
	return m.columns[i], true
}

// rowHasErrors reports whether any cell of rowID carries a message.
func (m Model[R]) rowHasErrors(rowID string) bool {
	for _, c := range m.columns {
		if m.errors[CellID(rowID, c.ID)] != "" {
			return true
		}
	}
	return false
}

func (m Model[R]) clearRowErrors(rowID string) Model[R] {
	next := maps.Clone(m.errors)
	for _, c := range m.columns {
		delete(next, CellID(rowID, c.ID))
	}
	m.errors = next
	return m
}
