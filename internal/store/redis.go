package store

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"
	"github.com/serroba/frwrd/internal/shortener"
)

// RedisStore is the fast redirect store: one namespaced string key per code.
type RedisStore struct {
	client *redis.Client
	prefix string // "{namespace}:url:"
}

// NewRedisStore creates a fast store under namespace.
func NewRedisStore(client *redis.Client, namespace string) *RedisStore {
	return &RedisStore{
		client: client,
		prefix: namespace + ":url:",
	}
}

func (r *RedisStore) Put(ctx context.Context, code shortener.Code, originalURL string) error {
	return r.client.Set(ctx, r.prefix+string(code), originalURL, 0).Err()
}

func (r *RedisStore) Lookup(ctx context.Context, code shortener.Code) (string, error) {
	url, err := r.client.Get(ctx, r.prefix+string(code)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", shortener.ErrNotFound
		}

		return "", err
	}

	return url, nil
}

// Compile-time check.
var _ shortener.FastStore = (*RedisStore)(nil)
