// Package query is a small keyed cache for API reads. Entries go stale after
// a fixed time or when a mutation invalidates them; concurrent fetches of the
// same key share one request.
package query

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

const DefaultStaleTime = 30 * time.Second

// Key identifies a cached read: the entity first, then its scope, e.g.
// tasks/list/3. Invalidation works on key prefixes.
type Key []string

func NewKey(parts ...any) Key {
	k := make(Key, len(parts))
	for i, p := range parts {
		k[i] = fmt.Sprint(p)
	}
	return k
}

func (k Key) String() string {
	return strings.Join(k, "/")
}

func (k Key) HasPrefix(prefix Key) bool {
	if len(prefix) > len(k) {
		return false
	}
	for i := range prefix {
		if k[i] != prefix[i] {
			return false
		}
	}
	return true
}

type entry struct {
	key       Key
	data      any
	fetchedAt time.Time
	stale     bool
}

type Cache struct {
	mtx       sync.Mutex
	entries   map[string]*entry
	versions  map[string]uint64
	group     singleflight.Group
	staleTime time.Duration
	now       func() time.Time
}

// New returns a cache whose entries stay fresh for staleTime. Zero means
// every read refetches.
func New(staleTime time.Duration) *Cache {
	return &Cache{
		entries:   make(map[string]*entry),
		versions:  make(map[string]uint64),
		staleTime: staleTime,
		now:       time.Now,
	}
}

// Get returns the cached data for key and whether it is still fresh.
func (c *Cache) Get(key Key) (any, bool, bool) {
	c.mtx.Lock()
	defer c.mtx.Unlock()

	e, ok := c.entries[key.String()]
	if !ok {
		return nil, false, false
	}
	return e.data, true, c.fresh(e)
}

func (c *Cache) Set(key Key, data any) {
	c.mtx.Lock()
	defer c.mtx.Unlock()

	c.entries[key.String()] = &entry{key: key, data: data, fetchedAt: c.now()}
}

// Invalidate marks every entry under prefix stale and returns how many it hit.
// Data stays readable until the next fetch replaces it.
func (c *Cache) Invalidate(prefix Key) int {
	c.mtx.Lock()
	defer c.mtx.Unlock()

	c.bump(prefix)
	n := 0
	for _, e := range c.entries {
		if e.key.HasPrefix(prefix) {
			e.stale = true
			n++
		}
	}
	return n
}

// Remove drops every entry under prefix.
func (c *Cache) Remove(prefix Key) int {
	c.mtx.Lock()
	defer c.mtx.Unlock()

	c.bump(prefix)
	n := 0
	for s, e := range c.entries {
		if e.key.HasPrefix(prefix) {
			delete(c.entries, s)
			n++
		}
	}
	return n
}

func (c *Cache) Len() int {
	c.mtx.Lock()
	defer c.mtx.Unlock()
	return len(c.entries)
}

func (c *Cache) fresh(e *entry) bool {
	if e.stale {
		return false
	}
	return c.now().Sub(e.fetchedAt) < c.staleTime
}

// bump records an invalidation so that fetches already in flight for the
// affected keys do not store their result as fresh.
func (c *Cache) bump(prefix Key) {
	c.versions[prefix.String()]++
}

func (c *Cache) version(key Key) uint64 {
	var v uint64
	for i := 0; i <= len(key); i++ {
		v += c.versions[key[:i].String()]
	}
	return v
}

// Fetch returns the cached value for key while it is fresh, otherwise it calls
// fn and caches the result. Callers asking for the same key at the same time
// share a single call to fn. Errors are not cached.
func Fetch[T any](ctx context.Context, c *Cache, key Key, fn func(ctx context.Context) (T, error)) (T, error) {
	if data, ok, fresh := c.Get(key); ok && fresh {
		if v, ok := data.(T); ok {
			return v, nil
		}
	}

	res, err, _ := c.group.Do(key.String(), func() (any, error) {
		c.mtx.Lock()
		started := c.version(key)
		c.mtx.Unlock()

		v, err := fn(ctx)
		if err != nil {
			return nil, err
		}

		c.mtx.Lock()
		defer c.mtx.Unlock()
		c.entries[key.String()] = &entry{
			key:       key,
			data:      v,
			fetchedAt: c.now(),
			stale:     c.version(key) != started,
		}
		return v, nil
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return res.(T), nil
}
