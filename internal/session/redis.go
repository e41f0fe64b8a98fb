package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/floorquote/backend/internal/models"
)

const keyPrefix = "floorquote:session:"

// RedisStore keeps one JSON-encoded analysis per session with a TTL.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisStore(addr, password string, ttl time.Duration) *RedisStore {
	return NewRedisStoreWithClient(redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
	}), ttl)
}

func NewRedisStoreWithClient(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

func (s *RedisStore) Get(ctx context.Context, sessionID string) (models.Analysis, error) {
	val, err := s.client.Get(ctx, keyPrefix+sessionID).Bytes()
	if errors.Is(err, redis.Nil) {
		return models.Analysis{}, ErrNotFound
	}
	if err != nil {
		return models.Analysis{}, err
	}
	var a models.Analysis
	if err := json.Unmarshal(val, &a); err != nil {
		return models.Analysis{}, fmt.Errorf("decode session %s: %w", sessionID, err)
	}
	return a, nil
}

func (s *RedisStore) Put(ctx context.Context, sessionID string, a models.Analysis) error {
	payload, err := json.Marshal(a)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, keyPrefix+sessionID, payload, s.ttl).Err()
}

func (s *RedisStore) Delete(ctx context.Context, sessionID string) error {
	if err := s.client.Del(ctx, keyPrefix+sessionID).Err(); err != nil && !errors.Is(err, redis.Nil) {
		return err
	}
	return nil
}

func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}
