package catalog

import (
	"fmt"
	"sort"
	"strings"

	"github.com/smileynet/pantry/internal/record"
)

// Source is everything needed to serve one record kind: the seed records its
// store starts from and its tag catalog.
type Source struct {
	Kind record.Kind
	Seed []record.Record
	Tags *Catalog
}

// Factory loads a Source.
type Factory func() (Source, error)

// Registry maps kind names to source factories.
// It is not safe for concurrent use; registration should happen at startup.
type Registry struct {
	factories map[record.Kind]Factory
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[record.Kind]Factory)}
}

// Register adds a kind's factory. Overwrites if the kind already exists.
// Panics if kind is empty or f is nil (programmer error).
func (r *Registry) Register(kind record.Kind, f Factory) {
	if kind == "" {
		panic("catalog: Register called with empty kind")
	}
	if f == nil {
		panic("catalog: Register called with nil factory")
	}
	r.factories[kind] = f
}

// Load instantiates the source for a kind name. Names are case-insensitive
// and the plural form is accepted ("fruits").
// Returns an error if the name is not registered or the factory fails.
func (r *Registry) Load(name string) (Source, error) {
	kind := record.Kind(strings.ToLower(strings.TrimSpace(name)))
	f, ok := r.factories[kind]
	if !ok {
		kind = record.Kind(strings.TrimSuffix(string(kind), "s"))
		f, ok = r.factories[kind]
	}
	if !ok {
		return Source{}, &UnknownKindError{
			Name:      name,
			Available: r.AvailableKinds(),
		}
	}
	src, err := f()
	if err != nil {
		return Source{}, fmt.Errorf("loading %s: %w", kind, err)
	}
	src.Kind = kind
	return src, nil
}

// AvailableKinds returns registered kind names in sorted order.
func (r *Registry) AvailableKinds() []string {
	names := make([]string, 0, len(r.factories))
	for kind := range r.factories {
		names = append(names, string(kind))
	}
	sort.Strings(names)
	return names
}

// UnknownKindError indicates a kind name is not registered.
type UnknownKindError struct {
	Name      string
	Available []string
}

func (e *UnknownKindError) Error() string {
	return fmt.Sprintf("unknown kind %q (available: %s)", e.Name, strings.Join(e.Available, ", "))
}
