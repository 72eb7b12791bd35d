package cache

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	defaultPrefix = "course-service"
	scanCount     = 100
)

type redisStore struct {
	client *redis.Client
	logger *slog.Logger
	prefix string
}

// NewRedisStore returns a Store keeping values in Redis and one Redis set of
// value keys per tag.
func NewRedisStore(client *redis.Client, logger *slog.Logger) Store {
	return &redisStore{
		client: client,
		logger: logger,
		prefix: defaultPrefix,
	}
}

func (r *redisStore) valueKey(key string) string {
	return fmt.Sprintf("%s:cache:%s", r.prefix, key)
}

func (r *redisStore) tagKey(tag Tag) string {
	return fmt.Sprintf("%s:tag:%s", r.prefix, tag)
}

func (r *redisStore) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := r.client.Get(ctx, r.valueKey(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("redis get %s: %w", key, err)
	}
	return data, nil
}

func (r *redisStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration, tags ...Tag) error {
	vk := r.valueKey(key)
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, vk, value, ttl)
		for _, tag := range tags {
			tk := r.tagKey(tag)
			pipe.SAdd(ctx, tk, vk)
			if ttl > 0 {
				// tag sets outlive their members so stale members are still reachable
				pipe.Expire(ctx, tk, ttl+time.Minute)
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

func (r *redisStore) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	full := make([]string, len(keys))
	for i, k := range keys {
		full[i] = r.valueKey(k)
	}
	if err := r.client.Del(ctx, full...).Err(); err != nil {
		return fmt.Errorf("redis delete: %w", err)
	}
	return nil
}

func (r *redisStore) DeletePattern(ctx context.Context, pattern string) error {
	iter := r.client.Scan(ctx, 0, r.valueKey(pattern), scanCount).Iterator()
	var batch []string
	for iter.Next(ctx) {
		batch = append(batch, iter.Val())
		if len(batch) >= scanCount {
			if err := r.client.Del(ctx, batch...).Err(); err != nil {
				return fmt.Errorf("redis delete pattern %s: %w", pattern, err)
			}
			batch = batch[:0]
		}
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("redis scan %s: %w", pattern, err)
	}
	if len(batch) > 0 {
		if err := r.client.Del(ctx, batch...).Err(); err != nil {
			return fmt.Errorf("redis delete pattern %s: %w", pattern, err)
		}
	}
	return nil
}

func (r *redisStore) InvalidateTags(ctx context.Context, tags ...Tag) error {
	for _, tag := range tags {
		tk := r.tagKey(tag)
		members, err := r.client.SMembers(ctx, tk).Result()
		if err != nil {
			return fmt.Errorf("redis members %s: %w", tag, err)
		}
		keys := append(members, tk)
		if err := r.client.Del(ctx, keys...).Err(); err != nil {
			return fmt.Errorf("redis invalidate %s: %w", tag, err)
		}
		r.logger.Debug("Cache tag invalidated", "tag", tag.String(), "keys", len(members))
	}
	return nil
}
