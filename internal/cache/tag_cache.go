package cache

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"time"
)

// TagCache is a read-through cache whose entries are invalidated by tag.
// Subscribers are told when any of their tags is invalidated so they can refetch.
type TagCache struct {
	store  Store
	ttl    time.Duration
	logger *slog.Logger

	mu     sync.Mutex
	nextID uint64
	subs   map[uint64]*Subscription
}

func NewTagCache(store Store, ttl time.Duration, logger *slog.Logger) *TagCache {
	if logger == nil {
		logger = slog.Default()
	}
	return &TagCache{
		store:  store,
		ttl:    ttl,
		logger: logger,
		subs:   make(map[uint64]*Subscription),
	}
}

// Fetch returns the cached value for key, or calls load and caches its result
// under the tags returned by provides. Cache failures are logged and never
// fail the read. A nil cache always loads.
func Fetch[T any](ctx context.Context, c *TagCache, key string, provides func(T) []Tag, load func(ctx context.Context) (T, error)) (T, error) {
	if c == nil {
		return load(ctx)
	}

	if data, err := c.store.Get(ctx, key); err == nil {
		var cached T
		if err := json.Unmarshal(data, &cached); err == nil {
			return cached, nil
		}
		c.logger.Warn("Discarding undecodable cache entry", "key", key)
	} else if !errors.Is(err, ErrCacheMiss) {
		c.logger.Warn("Cache read failed", "key", key, "error", err)
	}

	value, err := load(ctx)
	if err != nil {
		return value, err
	}

	data, err := json.Marshal(value)
	if err != nil {
		c.logger.Warn("Cache encode failed", "key", key, "error", err)
		return value, nil
	}
	if err := c.store.Set(ctx, key, data, c.ttl, provides(value)...); err != nil {
		c.logger.Warn("Cache write failed", "key", key, "error", err)
	}
	return value, nil
}

// Invalidate drops every entry carrying any of tags and notifies subscribers
// whose tags intersect. Subscribers are called synchronously, in no particular order.
func (c *TagCache) Invalidate(ctx context.Context, tags ...Tag) {
	if c == nil || len(tags) == 0 {
		return
	}
	if err := c.store.InvalidateTags(ctx, tags...); err != nil {
		c.logger.Warn("Cache invalidation failed", "tags", tagStrings(tags), "error", err)
	}
	for _, sub := range c.matching(tags) {
		sub.notify(ctx)
	}
}

// InvalidateMutation invalidates the tags declared for a successful mutation.
func (c *TagCache) InvalidateMutation(ctx context.Context, m Mutation, target Target) {
	tags, ok := Invalidates(m, target)
	if !ok {
		if c != nil {
			c.logger.Warn("No cache effects declared", "mutation", m.String())
		}
		return
	}
	c.Invalidate(ctx, tags...)
}

// Reset clears every entry and notifies all subscribers.
func (c *TagCache) Reset(ctx context.Context) error {
	if err := c.store.DeletePattern(ctx, "*"); err != nil {
		return err
	}
	c.mu.Lock()
	subs := make([]*Subscription, 0, len(c.subs))
	for _, s := range c.subs {
		subs = append(subs, s)
	}
	c.mu.Unlock()

	for _, s := range subs {
		s.notify(ctx)
	}
	return nil
}

// Subscribe registers fn to run whenever one of tags is invalidated.
func (c *TagCache) Subscribe(tags []Tag, fn func(ctx context.Context)) *Subscription {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.nextID++
	s := &Subscription{cache: c, id: c.nextID, tags: append([]Tag(nil), tags...), fn: fn}
	c.subs[s.id] = s
	return s
}

func (c *TagCache) matching(tags []Tag) []*Subscription {
	c.mu.Lock()
	defer c.mu.Unlock()

	var out []*Subscription
	for _, s := range c.subs {
		if intersects(s.Tags(), tags) {
			out = append(out, s)
		}
	}
	return out
}

// Subscription is a live interest in a set of tags.
type Subscription struct {
	cache *TagCache
	id    uint64
	fn    func(ctx context.Context)

	mu   sync.Mutex
	tags []Tag
}

func (s *Subscription) Tags() []Tag {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Tag(nil), s.tags...)
}

// SetTags replaces the watched tags, e.g. after a refetch returned different items.
func (s *Subscription) SetTags(tags []Tag) {
	s.mu.Lock()
	s.tags = append([]Tag(nil), tags...)
	s.mu.Unlock()
}

func (s *Subscription) Close() {
	s.cache.mu.Lock()
	delete(s.cache.subs, s.id)
	s.cache.mu.Unlock()
}

func (s *Subscription) notify(ctx context.Context) {
	if s.fn != nil {
		s.fn(ctx)
	}
}

func tagStrings(tags []Tag) []string {
	out := make([]string, len(tags))
	for i, t := range tags {
		out[i] = t.String()
	}
	return out
}
