package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/charmbracelet/log"
	"github.com/redis/go-redis/v9"

	"github.com/markm-portfolio/repoindex/pkg/observability"
)

// DefaultRedisKey is the hash that holds contents entries.
const DefaultRedisKey = "repoindex:contents"

// RedisStore keeps contents entries in a single Redis hash, one field per
// repository. Put writes through immediately.
type RedisStore struct {
	client *redis.Client
	key    string
	logger *log.Logger
}

// NewRedisStore connects to the Redis server at url (redis://host:port/db)
// and verifies the connection. key defaults to DefaultRedisKey.
func NewRedisStore(ctx context.Context, url, key string, logger *log.Logger) (*RedisStore, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("connect redis: %w", err)
	}
	return newRedisStore(client, key, logger), nil
}

func newRedisStore(client *redis.Client, key string, logger *log.Logger) *RedisStore {
	if key == "" {
		key = DefaultRedisKey
	}
	if logger == nil {
		logger = log.Default()
	}
	return &RedisStore{client: client, key: key, logger: logger}
}

// Key returns the Redis hash name.
func (s *RedisStore) Key() string { return s.key }

// Get reads the entry for repo. Redis errors are logged and reported as a miss.
func (s *RedisStore) Get(ctx context.Context, repo string) ([]string, bool) {
	raw, err := s.client.HGet(ctx, s.key, repo).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			s.logger.Warn("redis cache read failed", "repo", repo, "err", err)
		}
		observability.Cache().OnCacheMiss(ctx, repo)
		return nil, false
	}

	var names []string
	if err := json.Unmarshal(raw, &names); err != nil {
		s.logger.Warn("redis cache entry is corrupt", "repo", repo, "err", err)
		observability.Cache().OnCacheMiss(ctx, repo)
		return nil, false
	}
	observability.Cache().OnCacheHit(ctx, repo)
	return clone(names), true
}

// Put writes the entry for repo. Failures are logged.
func (s *RedisStore) Put(ctx context.Context, repo string, names []string) {
	data, err := json.Marshal(clone(names))
	if err != nil {
		s.logger.Warn("encode cache entry", "repo", repo, "err", err)
		return
	}
	if err := s.client.HSet(ctx, s.key, repo, data).Err(); err != nil {
		s.logger.Warn("redis cache write failed", "repo", repo, "err", err)
		return
	}
	observability.Cache().OnCacheSet(ctx, repo, len(names))
}

// Persist is a no-op; Put already wrote to Redis.
func (s *RedisStore) Persist(context.Context) error { return nil }

// Keys returns the cached repository names in sorted order.
func (s *RedisStore) Keys(ctx context.Context) ([]string, error) {
	keys, err := s.client.HKeys(ctx, s.key).Result()
	if err != nil {
		return nil, err
	}
	sort.Strings(keys)
	return keys, nil
}

// Clear deletes the hash.
func (s *RedisStore) Clear(ctx context.Context) error {
	return s.client.Del(ctx, s.key).Err()
}

// Close closes the Redis connection pool.
func (s *RedisStore) Close() error {
	return s.client.Close()
}

var (
	_ Store     = (*RedisStore)(nil)
	_ Inspector = (*RedisStore)(nil)
)
