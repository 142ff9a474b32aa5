// Package catalog holds the read-only tag catalogs and the registry of
// record kinds the application knows how to serve.
package catalog

import (
	"errors"
	"fmt"
	"slices"

	"github.com/smileynet/pantry/internal/record"
)

// ErrDuplicateTag indicates two tags in one catalog share an ID.
var ErrDuplicateTag = errors.New("catalog: duplicate tag id")

// ErrEmptyTagID indicates a tag without an ID.
var ErrEmptyTagID = errors.New("catalog: empty tag id")

// Catalog is an immutable, ordered list of the tags one kind may carry.
type Catalog struct {
	kind record.Kind
	tags []record.Tag
	byID map[string]int
}

// New builds a catalog. Tag IDs must be non-empty and unique.
func New(kind record.Kind, tags []record.Tag) (*Catalog, error) {
	c := &Catalog{
		kind: kind,
		tags: slices.Clone(tags),
		byID: make(map[string]int, len(tags)),
	}
	for i, t := range c.tags {
		if t.ID == "" {
			return nil, fmt.Errorf("%w (%s catalog, position %d)", ErrEmptyTagID, kind, i)
		}
		if _, dup := c.byID[t.ID]; dup {
			return nil, fmt.Errorf("%w %q (%s catalog)", ErrDuplicateTag, t.ID, kind)
		}
		c.byID[t.ID] = i
	}
	return c, nil
}

// Kind returns the kind this catalog belongs to.
func (c *Catalog) Kind() record.Kind { return c.kind }

// Tags returns a copy of the tags in catalog order.
func (c *Catalog) Tags() []record.Tag {
	return slices.Clone(c.tags)
}

// Lookup returns the tag with the given ID.
func (c *Catalog) Lookup(id string) (record.Tag, bool) {
	i, ok := c.byID[id]
	if !ok {
		return record.Tag{}, false
	}
	return c.tags[i], true
}

// Names resolves tag IDs to display names, preserving order.
// Unknown IDs are returned as-is.
func (c *Catalog) Names(ids []string) []string {
	return Names(c.tags, ids)
}

// Names resolves ids against tags, preserving the order of ids.
// Unknown IDs are returned as-is.
func Names(tags []record.Tag, ids []string) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		name := id
		for _, t := range tags {
			if t.ID == id {
				name = t.Name
				break
			}
		}
		out = append(out, name)
	}
	return out
}
