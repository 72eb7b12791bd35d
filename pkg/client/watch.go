package client

import (
	"context"
	"net/http"
	"net/url"

	"github.com/SAP-F-2025/course-service/internal/cache"
)

// Query is a cacheable read: Key identifies the cached response, Tags are the
// tags it depends on whatever it returns and Provides adds the tags of the
// items a result holds.
type Query[T any] struct {
	Key      string
	Tags     []cache.Tag
	Provides func(T) []cache.Tag
	Load     func(ctx context.Context) (T, error)
}

func (q Query[T]) tags(v T) []cache.Tag {
	out := append([]cache.Tag(nil), q.Tags...)
	if q.Provides != nil {
		out = append(out, q.Provides(v)...)
	}
	return out
}

// Get runs q through the client cache.
func Get[T any](ctx context.Context, c *Client, q Query[T]) (T, error) {
	return cache.Fetch(ctx, c.cache, q.Key, q.tags, q.Load)
}

// Watch delivers q's result now and again after every mutation that
// invalidates one of its tags. fn runs on the goroutine that performed the
// invalidating mutation. A failed fetch keeps the previous tags, so the
// watcher still wakes on the next matching mutation. Close the returned
// subscription to stop.
func Watch[T any](ctx context.Context, c *Client, q Query[T], fn func(T, error)) *cache.Subscription {
	var sub *cache.Subscription
	refetch := func(ctx context.Context) {
		v, err := Get(ctx, c, q)
		if err == nil {
			sub.SetTags(q.tags(v))
		}
		fn(v, err)
	}
	sub = c.cache.Subscribe(q.Tags, refetch)
	refetch(ctx)
	return sub
}

func (c *Client) invalidate(ctx context.Context, t cache.EntityType, op cache.Operation, scope, id uint) {
	c.cache.InvalidateMutation(ctx, cache.Mutation{Type: t, Op: op}, cache.Target{Scope: scope, ID: id})
}

func entity(t cache.EntityType, id uint) []cache.Tag {
	return []cache.Tag{cache.EntityTag(t, id)}
}

// load returns a Query.Load that GETs path and decodes the body as T.
func load[T any](c *Client, path string, query url.Values) func(ctx context.Context) (T, error) {
	return func(ctx context.Context) (T, error) {
		var out T
		err := c.do(ctx, http.MethodGet, path, query, nil, &out)
		return out, err
	}
}
