// Package store holds the in-memory record stores, one per record kind.
package store

import (
	"slices"
	"sync"

	"github.com/google/uuid"

	"github.com/smileynet/pantry/internal/record"
)

// IDFunc generates candidate record IDs.
type IDFunc func() string

// Store owns the records of one kind together with the seed snapshot they
// are reset to. Reads return copies; nothing handed out aliases store memory.
//
// Bubble Tea commands run on their own goroutines, so every method locks.
// Mutations never fail: validation is the caller's job.
type Store struct {
	mu    sync.Mutex
	kind  record.Kind
	seed  []record.Record
	items []record.Record
	newID IDFunc
}

// Option configures a Store.
type Option func(*Store)

// WithIDFunc replaces the UUID v7 generator. Candidates that collide with an
// existing ID are discarded and the function is called again.
func WithIDFunc(fn IDFunc) Option {
	return func(s *Store) {
		if fn != nil {
			s.newID = fn
		}
	}
}

// New creates a store for kind seeded with seed. The seed is copied, and
// every seeded record is stamped with kind.
func New(kind record.Kind, seed []record.Record, opts ...Option) *Store {
	s := &Store{
		kind:  kind,
		newID: generateUUID,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.seed = make([]record.Record, len(seed))
	for i, r := range seed {
		r = r.Clone()
		r.Kind = kind
		s.seed[i] = r
	}
	s.items = record.CloneAll(s.seed)
	return s
}

// generateUUID generates a new UUID v7 for record IDs.
func generateUUID() string {
	id, err := uuid.NewV7()
	if err != nil {
		// Fallback to UUID v4 if v7 generation fails
		return uuid.New().String()
	}
	return id.String()
}

// Kind returns the kind of record this store holds.
func (s *Store) Kind() record.Kind {
	return s.kind
}

// Items returns a copy of the current records in insertion order.
func (s *Store) Items() []record.Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	return record.CloneAll(s.items)
}

// Len returns the number of records.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

// Get returns a copy of the record with the given id.
func (s *Store) Get(id string) (record.Record, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOf(id)
	if i < 0 {
		return record.Record{}, false
	}
	return s.items[i].Clone(), true
}

// Add appends r under a freshly generated ID and returns the stored copy.
// Any ID already set on r is ignored.
func (s *Store) Add(r record.Record) record.Record {
	s.mu.Lock()
	defer s.mu.Unlock()

	r = r.Clone()
	r.ID = s.uniqueID()
	r.Kind = s.kind
	s.items = append(s.items, r)
	return r.Clone()
}

// Update replaces the record whose ID matches r.ID. When no record matches
// the store is left untouched and ok is false.
func (s *Store) Update(r record.Record) (updated record.Record, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(r.ID)
	if i < 0 {
		return record.Record{}, false
	}
	r = r.Clone()
	r.Kind = s.kind
	s.items[i] = r
	return r.Clone(), true
}

// Delete removes the record with the given id and returns it.
// Deleting an unknown id is a no-op reporting ok=false.
func (s *Store) Delete(id string) (removed record.Record, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return record.Record{}, false
	}
	removed = s.items[i]
	s.items = slices.Delete(s.items, i, i+1)
	return removed, true
}

// Reset discards every mutation and restores the seed snapshot.
// It returns a copy of the restored records.
func (s *Store) Reset() []record.Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = record.CloneAll(s.seed)
	return record.CloneAll(s.items)
}

func (s *Store) indexOf(id string) int {
	return slices.IndexFunc(s.items, func(r record.Record) bool {
		return r.ID == id
	})
}

// uniqueID draws IDs until one is not in use. Callers hold s.mu.
func (s *Store) uniqueID() string {
	for {
		id := s.newID()
		if id != "" && s.indexOf(id) < 0 {
			return id
		}
	}
}
