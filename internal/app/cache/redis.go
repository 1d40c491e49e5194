package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/redis/go-redis/v9"

	"app-transcript/internal/app/model"
)

const redisKeyPrefix = "transcript"

// RedisStore keeps session caches in redis so several server replicas can
// share them. Every key expires with the session ttl.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore connects to addr and verifies the connection
func NewRedisStore(ctx context.Context, addr, password string, db int, ttl time.Duration) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", addr, err)
	}
	return &RedisStore{client: client, ttl: ttl}, nil
}

func (s *RedisStore) Session(id string) Cache {
	return &RedisCache{client: s.client, session: id, ttl: s.ttl}
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}

// RedisCache is the view of one session inside a RedisStore
type RedisCache struct {
	client  *redis.Client
	session string
	ttl     time.Duration
}

func (c *RedisCache) ID() string {
	return c.session
}

func redisKey(session, key string) string {
	return fmt.Sprintf("%s:%s:%s", redisKeyPrefix, session, key)
}

func (c *RedisCache) Get(ctx context.Context, kind model.MediaKind, fingerprint string) (Entry, bool, error) {
	raw, err := c.client.Get(ctx, redisKey(c.session, Key(kind, fingerprint))).Bytes()
	if errors.Is(err, redis.Nil) {
		return Entry{}, false, nil
	}
	if err != nil {
		return Entry{}, false, fmt.Errorf("redis get: %w", err)
	}

	var e Entry
	if err := json.Unmarshal(raw, &e); err != nil {
		return Entry{}, false, fmt.Errorf("decode cache entry: %w", err)
	}
	return e, true, nil
}

func (c *RedisCache) Put(ctx context.Context, entry Entry) error {
	raw, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("encode cache entry: %w", err)
	}
	if err := c.client.Set(ctx, redisKey(c.session, entry.Key()), raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

func (c *RedisCache) Entries(ctx context.Context) ([]Entry, error) {
	var out []Entry
	iter := c.client.Scan(ctx, 0, redisKey(c.session, "*"), 100).Iterator()
	for iter.Next(ctx) {
		raw, err := c.client.Get(ctx, iter.Val()).Bytes()
		if errors.Is(err, redis.Nil) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("redis get: %w", err)
		}
		var e Entry
		if err := json.Unmarshal(raw, &e); err != nil {
			return nil, fmt.Errorf("decode cache entry: %w", err)
		}
		out = append(out, e)
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("redis scan: %w", err)
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}
