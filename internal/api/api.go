// Package api declares pantry's named endpoints. Each endpoint is a store
// call routed through the async facade; reads are cached by the query cache
// and writes invalidate the topic of the kind they touch.
package api

import (
	"context"
	"errors"
	"fmt"

	"github.com/smileynet/pantry/internal/catalog"
	"github.com/smileynet/pantry/internal/facade"
	"github.com/smileynet/pantry/internal/querycache"
	"github.com/smileynet/pantry/internal/record"
	"github.com/smileynet/pantry/internal/store"
)

// ErrNotFound is returned by update and delete when the target ID is not in
// the store. The store itself is left untouched.
var ErrNotFound = errors.New("record not found")

// Cache topics. A write to one kind re-runs every read of that kind.
const (
	TopicFruit     querycache.Topic = "Fruit"
	TopicVegetable querycache.Topic = "Vegetable"
)

// TopicFor returns the invalidation topic of kind.
func TopicFor(kind record.Kind) querycache.Topic {
	return querycache.Topic(kind.Title())
}

// Void is the argument of endpoints that take none.
type Void = struct{}

// Resource is the endpoint set of one kind.
type Resource struct {
	Kind  record.Kind
	Topic querycache.Topic

	List querycache.Query[Void, []record.Record]
	Tags querycache.Query[Void, []record.Tag]

	Add    querycache.Mutation[record.Record, record.Record]
	Update querycache.Mutation[record.Record, record.Record]
	Delete querycache.Mutation[string, record.Record]
	Reset  querycache.Mutation[Void, []record.Record]
}

// API groups the resources of every registered kind with the cache they
// share.
type API struct {
	Cache *querycache.Cache

	facade    *facade.Facade
	resources map[record.Kind]*Resource
	kinds     []record.Kind
}

// New creates an API with no resources.
func New(f *facade.Facade, c *querycache.Cache) *API {
	return &API{
		Cache:     c,
		facade:    f,
		resources: make(map[record.Kind]*Resource),
	}
}

// Register declares the endpoints for s and its tag catalog and returns
// them. Registering the same kind twice replaces the earlier resource.
func (a *API) Register(s *store.Store, tags *catalog.Catalog) *Resource {
	r := newResource(a.facade, s, tags)
	if _, ok := a.resources[r.Kind]; !ok {
		a.kinds = append(a.kinds, r.Kind)
	}
	a.resources[r.Kind] = r
	return r
}

// Resource returns the endpoints of kind.
func (a *API) Resource(kind record.Kind) (*Resource, bool) {
	r, ok := a.resources[kind]
	return r, ok
}

// Kinds returns the registered kinds in registration order.
func (a *API) Kinds() []record.Kind {
	return append([]record.Kind(nil), a.kinds...)
}

func newResource(f *facade.Facade, s *store.Store, tags *catalog.Catalog) *Resource {
	kind := s.Kind()
	topic := TopicFor(kind)
	invalidates := []querycache.Topic{topic}
	title := kind.Title()

	return &Resource{
		Kind:  kind,
		Topic: topic,
		List: querycache.Query[Void, []record.Record]{
			Endpoint: "get" + kind.Plural(),
			Provides: invalidates,
			Fn: func(ctx context.Context, _ Void) ([]record.Record, error) {
				return call(ctx, f, "get"+kind.Plural(), func() ([]record.Record, error) {
					return s.Items(), nil
				})
			},
		},
		// Tag catalogs never change, so the query provides no topic.
		Tags: querycache.Query[Void, []record.Tag]{
			Endpoint: "get" + title + "Tags",
			Fn: func(ctx context.Context, _ Void) ([]record.Tag, error) {
				return call(ctx, f, "get"+title+"Tags", func() ([]record.Tag, error) {
					if tags == nil {
						return []record.Tag{}, nil
					}
					return tags.Tags(), nil
				})
			},
		},
		Add: querycache.Mutation[record.Record, record.Record]{
			Endpoint:    "add" + title,
			Invalidates: invalidates,
			Fn: func(ctx context.Context, in record.Record) (record.Record, error) {
				return call(ctx, f, "add"+title, func() (record.Record, error) {
					return s.Add(in), nil
				})
			},
		},
		Update: querycache.Mutation[record.Record, record.Record]{
			Endpoint:    "update" + title,
			Invalidates: invalidates,
			Fn: func(ctx context.Context, in record.Record) (record.Record, error) {
				return call(ctx, f, "update"+title, func() (record.Record, error) {
					out, ok := s.Update(in)
					if !ok {
						return record.Record{}, fmt.Errorf("%w: %s %q", ErrNotFound, kind, in.ID)
					}
					return out, nil
				})
			},
		},
		Delete: querycache.Mutation[string, record.Record]{
			Endpoint:    "delete" + title,
			Invalidates: invalidates,
			Fn: func(ctx context.Context, id string) (record.Record, error) {
				return call(ctx, f, "delete"+title, func() (record.Record, error) {
					out, ok := s.Delete(id)
					if !ok {
						return record.Record{}, fmt.Errorf("%w: %s %q", ErrNotFound, kind, id)
					}
					return out, nil
				})
			},
		},
		Reset: querycache.Mutation[Void, []record.Record]{
			Endpoint:    "reset" + title,
			Invalidates: invalidates,
			Fn: func(ctx context.Context, _ Void) ([]record.Record, error) {
				return call(ctx, f, "reset"+title, func() ([]record.Record, error) {
					return s.Reset(), nil
				})
			},
		},
	}
}

// call runs fn through the facade and unwraps the envelope.
func call[T any](ctx context.Context, f *facade.Facade, op string, fn func() (T, error)) (T, error) {
	env, err := facade.Do(ctx, f, op, fn)
	return env.Data, err
}
