// Package cache is the client's query cache: keyed results with per-key
// staleness, explicit invalidation and shared in-flight fetches.
package cache

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// Key names a cached query. Params distinguish instances of the same query,
// such as the chat id for per-chat data.
type Key struct {
	Name   string
	Params []string
}

func K(name string, params ...string) Key { return Key{Name: name, Params: params} }

func (k Key) String() string {
	if len(k.Params) == 0 {
		return k.Name
	}
	return k.Name + "/" + strings.Join(k.Params, "/")
}

// Policy controls when a loaded value is refetched. A zero StaleAfter means
// the value never goes stale once loaded.
type Policy struct {
	StaleAfter time.Duration
}

var (
	Forever    = Policy{}
	TenMinutes = Policy{StaleAfter: 10 * time.Minute}
)

type entry struct {
	value     any
	fetchedAt time.Time
}

type Cache struct {
	mu      sync.Mutex
	entries map[string]entry
	group   singleflight.Group
	now     func() time.Time
}

type Option func(*Cache)

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(c *Cache) { c.now = now }
}

func New(opts ...Option) *Cache {
	c := &Cache{entries: make(map[string]entry), now: time.Now}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Cache) lookup(key string, p Policy) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	if p.StaleAfter > 0 && c.now().Sub(e.fetchedAt) >= p.StaleAfter {
		return nil, false
	}
	return e.value, true
}

func (c *Cache) store(key string, v any) {
	c.mu.Lock()
	c.entries[key] = entry{value: v, fetchedAt: c.now()}
	c.mu.Unlock()
}

// Get returns the cached value for key when it is fresh under p, and
// otherwise runs fetch. Concurrent callers for the same key share one fetch.
// Failed fetches are not stored; their value is still returned with the error.
func Get[T any](ctx context.Context, c *Cache, key Key, p Policy, fetch func(context.Context) (T, error)) (T, error) {
	k := key.String()
	if v, ok := c.lookup(k, p); ok {
		if t, ok := v.(T); ok {
			return t, nil
		}
	}
	v, err, _ := c.group.Do(k, func() (any, error) {
		v, err := fetch(ctx)
		if err == nil {
			c.store(k, v)
		}
		return v, err
	})
	t, ok := v.(T)
	if !ok && v != nil {
		var zero T
		return zero, fmt.Errorf("cache %s: unexpected type %T", k, v)
	}
	return t, err
}

// Peek returns the stored value regardless of staleness.
func Peek[T any](c *Cache, key Key) (T, bool) {
	c.mu.Lock()
	e, ok := c.entries[key.String()]
	c.mu.Unlock()
	if !ok {
		var zero T
		return zero, false
	}
	t, ok := e.value.(T)
	return t, ok
}

// Set stores v as freshly fetched, for mutations that already hold the new value.
func (c *Cache) Set(key Key, v any) {
	c.store(key.String(), v)
}

// Invalidate drops the given keys so the next Get refetches. A fetch already
// in flight is not cancelled; its result still lands when it completes.
func (c *Cache) Invalidate(keys ...Key) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, key := range keys {
		k := key.String()
		delete(c.entries, k)
		c.group.Forget(k)
	}
}

// InvalidatePrefix drops every key with the given name, whatever its params.
func (c *Cache) InvalidatePrefix(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for k := range c.entries {
		if k == name || strings.HasPrefix(k, name+"/") {
			delete(c.entries, k)
			c.group.Forget(k)
		}
	}
	c.group.Forget(name)
}

// Len reports the number of stored entries.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
