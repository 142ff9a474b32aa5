package store

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smileynet/pantry/internal/record"
)

func appleSeed() []record.Record {
	return []record.Record{
		{ID: "1", Name: "Apple", Description: "Crunchy", Tags: []string{"sweet"}},
	}
}

func threeSeed() []record.Record {
	return []record.Record{
		{ID: "1", Name: "Apple", Description: "Crunchy", Tags: []string{"sweet"}},
		{ID: "2", Name: "Lemon", Description: "Sour", Tags: []string{"sour"}},
		{ID: "3", Name: "Banana", Description: "Soft", Tags: []string{"sweet"}, Archived: true},
	}
}

// sequenceIDs returns an IDFunc yielding ids in order, then "id-N".
func sequenceIDs(ids ...string) IDFunc {
	n := 0
	return func() string {
		defer func() { n++ }()
		if n < len(ids) {
			return ids[n]
		}
		return fmt.Sprintf("id-%d", n)
	}
}

func TestNew_StampsKindAndCopiesSeed(t *testing.T) {
	seed := appleSeed()
	s := New(record.KindFruit, seed)

	seed[0].Name = "Mutated"

	items := s.Items()
	require.Len(t, items, 1)
	assert.Equal(t, "Apple", items[0].Name)
	assert.Equal(t, record.KindFruit, items[0].Kind)
	assert.Equal(t, record.KindFruit, s.Kind())
}

func TestItems_ReturnsCopies(t *testing.T) {
	s := New(record.KindFruit, appleSeed())

	items := s.Items()
	items[0].Name = "Changed"
	items[0].Tags[0] = "sour"

	again := s.Items()
	assert.Equal(t, "Apple", again[0].Name)
	assert.Equal(t, []string{"sweet"}, again[0].Tags)
}

func TestAdd_GeneratesUniqueIDs(t *testing.T) {
	s := New(record.KindFruit, threeSeed())
	existing := map[string]bool{"1": true, "2": true, "3": true}

	for i := range 20 {
		got := s.Add(record.Record{Name: fmt.Sprintf("F%d", i), Description: "d"})
		require.NotEmpty(t, got.ID)
		assert.False(t, existing[got.ID], "id %q reused", got.ID)
		existing[got.ID] = true
	}
	assert.Equal(t, 23, s.Len())
}

func TestAdd_IgnoresCallerID(t *testing.T) {
	s := New(record.KindFruit, appleSeed())

	got := s.Add(record.Record{ID: "1", Name: "Pear", Description: "d"})

	assert.NotEqual(t, "1", got.ID)
	assert.Equal(t, 2, s.Len())
}

func TestAdd_SkipsCollidingCandidates(t *testing.T) {
	// Given: an id generator whose first candidates collide with the seed
	s := New(record.KindFruit, threeSeed(), WithIDFunc(sequenceIDs("1", "", "3", "fresh")))

	// When: a record is added
	got := s.Add(record.Record{Name: "Pear", Description: "d"})

	// Then: the first non-colliding candidate is used
	assert.Equal(t, "fresh", got.ID)
}

func TestAdd_AcceptsInvalidRecords(t *testing.T) {
	s := New(record.KindFruit, appleSeed())

	got := s.Add(record.Record{Name: "", Description: ""})

	assert.NotEmpty(t, got.ID)
	assert.Equal(t, 2, s.Len())
}

func TestUpdate_ReplacesInPlace(t *testing.T) {
	s := New(record.KindFruit, threeSeed())

	got, ok := s.Update(record.Record{ID: "2", Name: "Lime", Description: "Green", Tags: []string{"sour"}})

	require.True(t, ok)
	assert.Equal(t, "Lime", got.Name)
	items := s.Items()
	require.Len(t, items, 3)
	assert.Equal(t, "2", items[1].ID)
	assert.Equal(t, "Lime", items[1].Name)
}

func TestUpdate_UnknownIDIsNoop(t *testing.T) {
	s := New(record.KindFruit, threeSeed())
	before := s.Items()

	_, ok := s.Update(record.Record{ID: "missing", Name: "Ghost"})

	assert.False(t, ok)
	assert.Equal(t, before, s.Items())
}

func TestDelete_RemovesExactlyOne(t *testing.T) {
	s := New(record.KindFruit, threeSeed())

	removed, ok := s.Delete("2")
	require.True(t, ok)
	assert.Equal(t, "Lemon", removed.Name)
	assert.Equal(t, 2, s.Len())

	_, ok = s.Delete("2")
	assert.False(t, ok)
	assert.Equal(t, 2, s.Len())
}

func TestReset_RestoresSeed(t *testing.T) {
	s := New(record.KindFruit, threeSeed())
	want := s.Items()

	s.Add(record.Record{Name: "Pear", Description: "d"})
	s.Update(record.Record{ID: "1", Name: "Green Apple"})
	s.Delete("2")

	got := s.Reset()
	assert.Equal(t, want, got)
	assert.Equal(t, want, s.Items())

	// Idempotent.
	assert.Equal(t, want, s.Reset())
}

func TestReset_DoesNotAliasSeed(t *testing.T) {
	s := New(record.KindFruit, appleSeed())

	s.Reset()
	s.Update(record.Record{ID: "1", Name: "Changed", Tags: []string{"x"}})
	got := s.Reset()

	assert.Equal(t, "Apple", got[0].Name)
}

func TestEndToEnd_AddThenReset(t *testing.T) {
	s := New(record.KindFruit, []record.Record{{ID: "1", Name: "Apple", Tags: []string{"sweet"}}})

	added := s.Add(record.Record{Name: "Pear", Description: "d", Tags: []string{"sweet"}})
	assert.NotEqual(t, "1", added.ID)
	assert.Len(t, s.Items(), 2)

	s.Reset()
	items := s.Items()
	require.Len(t, items, 1)
	assert.Equal(t, record.Record{ID: "1", Kind: record.KindFruit, Name: "Apple", Tags: []string{"sweet"}}, items[0])
}

func TestGet(t *testing.T) {
	s := New(record.KindVegetable, threeSeed())

	got, ok := s.Get("3")
	require.True(t, ok)
	assert.Equal(t, "Banana", got.Name)
	assert.Equal(t, record.KindVegetable, got.Kind)

	_, ok = s.Get("nope")
	assert.False(t, ok)
}
