package quiz

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const defaultCacheTTL = 24 * time.Hour

// ResponseStore keeps raw model responses by key.
type ResponseStore interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, raw string) error
}

// RedisResponseStore is a ResponseStore backed by Redis string keys with a TTL.
type RedisResponseStore struct {
	client *redis.Client
	ttl    time.Duration
}

var _ ResponseStore = (*RedisResponseStore)(nil)

// NewRedisResponseStore uses a 24h TTL when ttl is not positive.
func NewRedisResponseStore(client *redis.Client, ttl time.Duration) *RedisResponseStore {
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}
	return &RedisResponseStore{client: client, ttl: ttl}
}

func (s *RedisResponseStore) Get(ctx context.Context, key string) (string, bool, error) {
	raw, err := s.client.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", false, nil
		}
		return "", false, err
	}
	return raw, true, nil
}

func (s *RedisResponseStore) Set(ctx context.Context, key, raw string) error {
	return s.client.Set(ctx, key, raw, s.ttl).Err()
}

// CacheKey identifies a prompt by chunk text and requested question count.
func CacheKey(req GenerateRequest) string {
	sum := sha256.Sum256([]byte(req.Chunk))
	return fmt.Sprintf("lessonquiz:chunk:%s:%d", hex.EncodeToString(sum[:]), req.QuestionsCount)
}

// CachedGenerator serves repeated prompts from a ResponseStore. Only responses
// that pass ParseResponse are stored; store failures fall through to the model.
type CachedGenerator struct {
	next   Generator
	store  ResponseStore
	logger zerolog.Logger
}

var _ Generator = (*CachedGenerator)(nil)

func NewCachedGenerator(next Generator, store ResponseStore, logger zerolog.Logger) *CachedGenerator {
	return &CachedGenerator{
		next:   next,
		store:  store,
		logger: logger.With().Str("component", "quiz_response_cache").Logger(),
	}
}

func (c *CachedGenerator) Generate(ctx context.Context, req GenerateRequest) (string, error) {
	key := CacheKey(req)

	raw, ok, err := c.store.Get(ctx, key)
	switch {
	case err != nil:
		c.logger.Warn().Err(err).Str("key", key).Msg("response cache read failed")
	case ok:
		c.logger.Debug().Str("key", key).Msg("response cache hit")
		return raw, nil
	}

	raw, err = c.next.Generate(ctx, req)
	if err != nil {
		return "", err
	}

	if _, perr := ParseResponse(raw); perr == nil {
		if err := c.store.Set(ctx, key, raw); err != nil {
			c.logger.Warn().Err(err).Str("key", key).Msg("response cache write failed")
		}
	}
	return raw, nil
}
