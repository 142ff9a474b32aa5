// Package querycache caches read results by endpoint and argument and
// re-runs them when a write invalidates a topic they provide.
//
// Invalidation is topic-wide: a write to "Fruit" re-runs every read that
// provides "Fruit", whatever record it touched. Entries live as long as they
// have subscribers; the last unsubscribe evicts them. There is no TTL.
package querycache

import (
	"context"
	"slices"
	"sort"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// Topic labels a class of reads that are invalidated together.
type Topic string

// Key identifies a cache entry: the endpoint plus its serialized argument.
type Key struct {
	Endpoint string
	Arg      string
}

func (k Key) String() string {
	if k.Arg == "" {
		return k.Endpoint
	}
	return k.Endpoint + "(" + k.Arg + ")"
}

// Fetcher executes a read.
type Fetcher func(ctx context.Context) (any, error)

// Result is what subscribers receive. On error, Value holds the last good
// value, if any.
type Result struct {
	Key   Key
	Value any
	Err   error
}

// Listener receives results for a subscribed key. Listeners run on the
// goroutine that triggered the fetch and must not block for long.
type Listener func(Result)

type subscriber struct {
	id uint64
	fn Listener
}

type entry struct {
	key      Key
	provides []Topic
	fetch    Fetcher
	value    any
	err      error
	fresh    bool
	loading  bool
	issued   uint64 // sequence of the newest fetch started
	subs     []subscriber
}

func (e *entry) providesAny(topics []Topic) bool {
	for _, t := range topics {
		if slices.Contains(e.provides, t) {
			return true
		}
	}
	return false
}

// Cache is safe for concurrent use. Its lock is never held while a fetch or
// a listener runs.
type Cache struct {
	mu      sync.Mutex
	entries map[Key]*entry
	seq     uint64
	subID   uint64
	logger  *zap.Logger
	metrics *metrics
}

// Option configures a Cache.
type Option func(*Cache)

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *zap.Logger) Option {
	return func(c *Cache) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithRegisterer registers the cache's counters with reg.
func WithRegisterer(reg prometheus.Registerer) Option {
	return func(c *Cache) {
		c.metrics.register(reg)
	}
}

// New creates an empty cache.
func New(opts ...Option) *Cache {
	c := &Cache{
		entries: make(map[Key]*entry),
		logger:  zap.NewNop(),
		metrics: newMetrics(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Subscribe registers l for key. If a fresh value is cached, l receives it
// before Subscribe returns; otherwise the read runs on the calling goroutine
// and every subscriber of key is notified. When another fetch for key is
// already running, l simply waits for its result.
//
// The latest provides and fetch win if the key is already cached.
// The returned function removes l; removing the last subscriber evicts the
// entry. It is safe to call more than once.
func (c *Cache) Subscribe(ctx context.Context, key Key, provides []Topic, fetch Fetcher, l Listener) (unsubscribe func()) {
	c.mu.Lock()
	e, ok := c.entries[key]
	if !ok {
		e = &entry{key: key}
		c.entries[key] = e
	}
	e.provides = slices.Clone(provides)
	e.fetch = fetch
	c.subID++
	id := c.subID
	e.subs = append(e.subs, subscriber{id: id, fn: l})
	unsubscribe = c.unsubscriber(key, id)

	switch {
	case e.fresh:
		res := Result{Key: key, Value: e.value}
		c.mu.Unlock()
		c.metrics.hits.Inc()
		l(res)
		return unsubscribe
	case e.loading:
		c.mu.Unlock()
		return unsubscribe
	}

	seq := c.begin(e)
	c.mu.Unlock()
	c.metrics.misses.Inc()
	c.run(ctx, e, seq)
	return unsubscribe
}

// Fetch performs a one-shot read. A fresh cached value is returned as-is;
// otherwise fetch runs and its result is returned without being cached,
// since nobody is subscribed to keep it alive.
func (c *Cache) Fetch(ctx context.Context, key Key, fetch Fetcher) (any, error) {
	c.mu.Lock()
	if e, ok := c.entries[key]; ok && e.fresh {
		v := e.value
		c.mu.Unlock()
		c.metrics.hits.Inc()
		return v, nil
	}
	c.mu.Unlock()
	c.metrics.misses.Inc()
	c.metrics.fetches.Inc()
	return fetch(ctx)
}

// Invalidate marks every entry providing any of topics as stale and re-runs
// those that still have subscribers. Refetches run sequentially, in key
// order, on the calling goroutine. It returns how many entries were re-run.
func (c *Cache) Invalidate(ctx context.Context, topics ...Topic) int {
	if len(topics) == 0 {
		return 0
	}
	type pending struct {
		e   *entry
		seq uint64
	}

	c.mu.Lock()
	var refetch []pending
	for key, e := range c.entries {
		if !e.providesAny(topics) {
			continue
		}
		e.fresh = false
		if len(e.subs) == 0 {
			delete(c.entries, key)
			c.metrics.evictions.Inc()
			continue
		}
		refetch = append(refetch, pending{e: e, seq: c.begin(e)})
	}
	c.mu.Unlock()

	for _, t := range topics {
		c.metrics.invalidations.WithLabelValues(string(t)).Inc()
	}
	sort.Slice(refetch, func(i, j int) bool {
		return refetch[i].e.key.String() < refetch[j].e.key.String()
	})
	c.logger.Debug("invalidate",
		zap.Strings("topics", topicStrings(topics)),
		zap.Int("count", len(refetch)))

	for _, p := range refetch {
		c.run(ctx, p.e, p.seq)
	}
	return len(refetch)
}

// Mutate runs a write and, if it succeeds, invalidates topics before
// returning. A failed write invalidates nothing.
func (c *Cache) Mutate(ctx context.Context, invalidates []Topic, fn func(ctx context.Context) (any, error)) (any, error) {
	v, err := fn(ctx)
	if err != nil {
		return v, err
	}
	c.Invalidate(ctx, invalidates...)
	return v, nil
}

// Len returns the number of cached entries.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Subscribers returns how many listeners key currently has.
func (c *Cache) Subscribers(key Key) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.entries[key]; ok {
		return len(e.subs)
	}
	return 0
}

// begin records a new fetch for e and returns its sequence. Callers hold c.mu.
func (c *Cache) begin(e *entry) uint64 {
	c.seq++
	e.issued = c.seq
	e.loading = true
	return c.seq
}

// run executes e's fetch and publishes the result unless the entry was
// evicted or a newer fetch superseded this one in the meantime.
func (c *Cache) run(ctx context.Context, e *entry, seq uint64) {
	c.mu.Lock()
	fetch := e.fetch
	c.mu.Unlock()

	c.metrics.fetches.Inc()
	v, err := fetch(ctx)

	c.mu.Lock()
	if cur, ok := c.entries[e.key]; !ok || cur != e || e.issued != seq {
		c.mu.Unlock()
		c.logger.Debug("discarding superseded result", zap.Stringer("key", e.key))
		return
	}
	e.loading = false
	if err != nil {
		e.err = err
		e.fresh = false
	} else {
		e.value = v
		e.err = nil
		e.fresh = true
	}
	res := Result{Key: e.key, Value: e.value, Err: err}
	subs := slices.Clone(e.subs)
	c.mu.Unlock()

	if err != nil {
		c.logger.Warn("fetch failed", zap.Stringer("key", e.key), zap.Error(err))
	}
	for _, s := range subs {
		s.fn(res)
	}
}

func (c *Cache) unsubscriber(key Key, id uint64) func() {
	var once sync.Once
	return func() {
		once.Do(func() {
			c.mu.Lock()
			defer c.mu.Unlock()
			e, ok := c.entries[key]
			if !ok {
				return
			}
			e.subs = slices.DeleteFunc(e.subs, func(s subscriber) bool { return s.id == id })
			if len(e.subs) == 0 {
				delete(c.entries, key)
				c.metrics.evictions.Inc()
			}
		})
	}
}

func topicStrings(topics []Topic) []string {
	out := make([]string, len(topics))
	for i, t := range topics {
		out[i] = string(t)
	}
	return out
}
