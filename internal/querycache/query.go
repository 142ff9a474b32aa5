package querycache

import (
	"context"
	"fmt"
)

// Query is a typed read endpoint. Its results are cached under
// (Endpoint, arg) and invalidated through the topics in Provides.
type Query[A, T any] struct {
	Endpoint string
	Provides []Topic
	Fn       func(ctx context.Context, arg A) (T, error)
}

// Key returns the cache key for arg.
func (q Query[A, T]) Key(arg A) Key {
	return Key{Endpoint: q.Endpoint, Arg: argString(arg)}
}

// Subscribe registers fn for the query's results with arg.
// See Cache.Subscribe for delivery semantics.
func (q Query[A, T]) Subscribe(ctx context.Context, c *Cache, arg A, fn func(T, error)) (unsubscribe func()) {
	return c.Subscribe(ctx, q.Key(arg), q.Provides, q.fetcher(arg), func(r Result) {
		v, _ := r.Value.(T)
		fn(v, r.Err)
	})
}

// Fetch performs a one-shot read through the cache.
func (q Query[A, T]) Fetch(ctx context.Context, c *Cache, arg A) (T, error) {
	v, err := c.Fetch(ctx, q.Key(arg), q.fetcher(arg))
	t, _ := v.(T)
	return t, err
}

func (q Query[A, T]) fetcher(arg A) Fetcher {
	return func(ctx context.Context) (any, error) {
		return q.Fn(ctx, arg)
	}
}

// Mutation is a typed write endpoint. A successful run invalidates every
// topic in Invalidates before Run returns.
type Mutation[A, T any] struct {
	Endpoint    string
	Invalidates []Topic
	Fn          func(ctx context.Context, arg A) (T, error)
}

// Run executes the mutation through c.
func (m Mutation[A, T]) Run(ctx context.Context, c *Cache, arg A) (T, error) {
	v, err := c.Mutate(ctx, m.Invalidates, func(ctx context.Context) (any, error) {
		return m.Fn(ctx, arg)
	})
	t, _ := v.(T)
	return t, err
}

// argString serializes a query argument for use in a Key.
// The empty struct, used by argument-less endpoints, serializes to "".
func argString(arg any) string {
	switch a := arg.(type) {
	case struct{}:
		return ""
	case string:
		return a
	case fmt.Stringer:
		return a.String()
	default:
		return fmt.Sprintf("%v", a)
	}
}
