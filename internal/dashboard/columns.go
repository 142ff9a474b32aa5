package dashboard

import (
	"strings"

	"github.com/smileynet/pantry/internal/catalog"
	"github.com/smileynet/pantry/internal/record"
	"github.com/smileynet/pantry/internal/table"
)

// Column IDs shared by the editor tables.
const (
	colID          = "id"
	colName        = "name"
	colDescription = "description"
	colTags        = "tags"
	colArchived    = "isArchived"
)

// editorColumns describes a kind's editor table.
func editorColumns(kind record.Kind) []table.Column[record.Record] {
	return []table.Column[record.Record]{
		{
			Field: table.Field{ID: colID, Header: "ID"},
			Width: 8,
			Get:   func(r record.Record) table.Value { return table.Value{Text: r.ID} },
		},
		{
			Field:     table.Field{ID: colName, Header: kind.Title() + " Name"},
			Width:     16,
			Get:       func(r record.Record) table.Value { return table.Value{Text: r.Name} },
			Editable:  true,
			Creatable: true,
		},
		{
			Field:     table.Field{ID: colDescription, Header: "Description"},
			Width:     32,
			Get:       func(r record.Record) table.Value { return table.Value{Text: r.Description} },
			Editable:  true,
			Creatable: true,
		},
		{
			Field:     table.Field{ID: colTags, Header: "Tags", Kind: table.ColumnTags},
			Get:       func(r record.Record) table.Value { return table.Value{Tags: r.Tags} },
			Editable:  true,
			Creatable: true,
		},
		{
			Field:    table.Field{ID: colArchived, Header: "Is Archived?", Kind: table.ColumnBool},
			Width:    12,
			Get:      func(r record.Record) table.Value { return table.Value{Bool: r.Archived} },
			Editable: true,
		},
	}
}

// validateCell applies the required-field rule when an edited cell loses
// focus.
func validateCell(f table.Field, v table.Value) string {
	ok := true
	switch f.Kind {
	case table.ColumnText:
		ok = record.Required(v.Text)
	case table.ColumnTags:
		ok = record.RequiredTags(v.Tags)
	}
	if ok {
		return ""
	}
	return f.Header + " is required"
}

// choices converts tags into table choices.
func choices(tags []record.Tag) []table.Choice {
	out := make([]table.Choice, len(tags))
	for i, t := range tags {
		out[i] = table.Choice{ID: t.ID, Label: t.Name}
	}
	return out
}

// applyDraft copies the drafted values onto r. Fields missing from the
// draft keep their current value.
func applyDraft(r record.Record, d table.Draft) record.Record {
	r = r.Clone()
	if d.Has(colName) {
		r.Name = strings.TrimSpace(d.Text(colName))
	}
	if d.Has(colDescription) {
		r.Description = strings.TrimSpace(d.Text(colDescription))
	}
	if d.Has(colTags) {
		r.Tags = d.Tags(colTags)
	}
	if d.Has(colArchived) {
		r.Archived = d.Bool(colArchived)
	}
	return r
}

// catalogRow is a record in the catalog table. Records of different kinds
// may share an ID, so the row key includes the kind.
type catalogRow struct {
	record.Record
	tagNames []string
}

func (c catalogRow) Key() string { return catalogKey(c.Kind, c.ID) }

func catalogKey(kind record.Kind, id string) string {
	return string(kind) + "/" + id
}

// catalogColumns describes the read-only catalog table.
func catalogColumns() []table.Column[catalogRow] {
	return []table.Column[catalogRow]{
		{
			Field: table.Field{ID: colName, Header: "Name"},
			Width: 18,
			Get:   func(c catalogRow) table.Value { return table.Value{Text: c.Name} },
		},
		{
			Field: table.Field{ID: colTags, Header: "Tags"},
			Width: 36,
			Get: func(c catalogRow) table.Value {
				return table.Value{Text: strings.Join(c.tagNames, ", ")}
			},
		},
	}
}

// catalogRows lists the active records of every kind in kind order, with
// tag names resolved from each record's own catalog.
func catalogRows(kinds []record.Kind, records map[record.Kind][]record.Record, tags map[record.Kind][]record.Tag) []catalogRow {
	var out []catalogRow
	for _, kind := range kinds {
		for _, r := range record.Active(records[kind]) {
			out = append(out, catalogRow{
				Record:   r,
				tagNames: catalog.Names(tags[kind], r.Tags),
			})
		}
	}
	return out
}
