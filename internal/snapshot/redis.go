package snapshot

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/gcbaptista/go-skillmatch/internal/persistence"
	"github.com/gcbaptista/go-skillmatch/internal/vectorize"
)

const redisKeyPrefix = "skillmatch:model:"

// RedisStore keeps gob-encoded models in Redis with a TTL.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore connects to the Redis server at url (redis://host:port/db).
func NewRedisStore(url string, ttl time.Duration) (*RedisStore, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid redis URL: %w", err)
	}
	return NewRedisStoreWithClient(redis.NewClient(opts), ttl), nil
}

// NewRedisStoreWithClient wraps an existing client.
func NewRedisStoreWithClient(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

// Ping checks that the server is reachable.
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Load fetches the model for fingerprint.
func (s *RedisStore) Load(ctx context.Context, fingerprint string) (*vectorize.Model, error) {
	if err := validateFingerprint(fingerprint); err != nil {
		return nil, err
	}

	data, err := s.client.Get(ctx, redisKeyPrefix+fingerprint).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	m := &vectorize.Model{}
	if err := persistence.DecodeGob(data, m); err != nil {
		return nil, err
	}
	if m.Fingerprint() != fingerprint {
		return nil, fmt.Errorf("redis key %s holds model %s", redisKeyPrefix+fingerprint, m.Fingerprint())
	}
	return m, nil
}

// Save stores m with the configured TTL.
func (s *RedisStore) Save(ctx context.Context, m *vectorize.Model) error {
	if err := validateFingerprint(m.Fingerprint()); err != nil {
		return err
	}
	data, err := persistence.EncodeGob(m)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, redisKeyPrefix+m.Fingerprint(), data, s.ttl).Err()
}

// Close closes the underlying client.
func (s *RedisStore) Close() error {
	return s.client.Close()
}
