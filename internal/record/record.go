// Package record defines the fruit and vegetable records managed by pantry,
// their tags, and the field rules callers apply before writing them.
package record

import "slices"

// Kind distinguishes the two record types.
type Kind string

const (
	KindFruit     Kind = "fruit"
	KindVegetable Kind = "vegetable"
)

// Kinds returns every known kind in display order.
func Kinds() []Kind {
	return []Kind{KindFruit, KindVegetable}
}

// Valid reports whether k is a known kind.
func (k Kind) Valid() bool {
	return k == KindFruit || k == KindVegetable
}

// Title returns the singular display name ("Fruit", "Vegetable").
func (k Kind) Title() string {
	switch k {
	case KindFruit:
		return "Fruit"
	case KindVegetable:
		return "Vegetable"
	default:
		return string(k)
	}
}

// Plural returns the plural display name ("Fruits", "Vegetables").
func (k Kind) Plural() string {
	return k.Title() + "s"
}

// Tag is a predefined label a record can carry. Tags are never edited.
type Tag struct {
	ID   string `yaml:"id"`
	Name string `yaml:"name"`
}

// Record is a single fruit or vegetable.
// ID is assigned by the owning store and never changes afterwards.
type Record struct {
	ID          string   `yaml:"id"`
	Kind        Kind     `yaml:"-"`
	Name        string   `yaml:"name" validate:"notblank"`
	Description string   `yaml:"description" validate:"notblank"`
	Tags        []string `yaml:"tags" validate:"min=1,dive,notblank"`
	Archived    bool     `yaml:"is_archived"`
}

// Clone returns a copy of r that shares no memory with it.
func (r Record) Clone() Record {
	r.Tags = slices.Clone(r.Tags)
	return r
}

// HasTag reports whether the record carries the tag with the given ID.
func (r Record) HasTag(id string) bool {
	return slices.Contains(r.Tags, id)
}

// Key returns the record ID. Together with Title and TagIDs it lets
// records be rendered by the generic table.
func (r Record) Key() string { return r.ID }

// Title returns the record name.
func (r Record) Title() string { return r.Name }

// TagIDs returns the record's tag IDs.
func (r Record) TagIDs() []string { return r.Tags }

// CloneAll deep-copies a slice of records. A nil input yields an empty,
// non-nil slice so callers can tell "no records" from "not loaded".
func CloneAll(rs []Record) []Record {
	out := make([]Record, len(rs))
	for i, r := range rs {
		out[i] = r.Clone()
	}
	return out
}

// Active returns the records that are not archived, preserving order.
func Active(rs []Record) []Record {
	var out []Record
	for _, r := range rs {
		if !r.Archived {
			out = append(out, r.Clone())
		}
	}
	return out
}
