package cache

//go:generate go run go.uber.org/mock/mockgen -source=./cache.go -destination=./mocks/cache_mock.go -package=mocks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"roomsense/infras/otel"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	otelScopeName         = "cache"
	otelCacheKeyAttribute = "cache.key"
	versionKeyPrefix      = "cache:version:"

	// Nil is returned by Get on a cache miss.
	Nil = redis.Nil
)

// RedisCache stores JSON documents under string keys. Strings are stored
// as-is. A ttl of zero or less keeps the key without expiry.
//
// Version and Bump maintain one counter per namespace. Readers fold the
// versions into their keys before loading from the database and writers
// bump after commit, so a value loaded before a write is stored under a key
// no later reader asks for.
type RedisCache interface {
	Save(ctx context.Context, key string, value any, ttlSeconds int) (err error)
	Get(ctx context.Context, key string, value any) (err error)
	Version(ctx context.Context, namespaces ...string) (string, error)
	Bump(ctx context.Context, namespaces ...string) error
}

type redisCache struct {
	client *redis.Client
	otel   otel.Otel
}

func NewRedisCache(client *redis.Client, ot otel.Otel) RedisCache {
	return &redisCache{
		client: client,
		otel:   ot,
	}
}

func (c *redisCache) trace(ctx context.Context, operation, key string) (context.Context, otel.Scope) {
	ctx, scope := c.otel.NewScope(ctx, otelScopeName, otelScopeName+"."+operation)
	scope.SetAttribute(otelCacheKeyAttribute, key)

	return ctx, scope
}

// Get decodes the value under key into value. A miss wraps Nil.
func (c *redisCache) Get(ctx context.Context, key string, value any) (err error) {
	ctx, scope := c.trace(ctx, "Get", key)
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	raw, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		return fmt.Errorf("failed to get cache value: %w", err)
	}

	if s, ok := value.(*string); ok {
		*s = string(raw)

		return nil
	}

	if err = json.Unmarshal(raw, value); err != nil {
		log.Error().Err(err).Str("key", key).Msg("failed to decode cache")

		return fmt.Errorf("failed to unmarshal cache value: %w", err)
	}

	return nil
}

func (c *redisCache) Save(ctx context.Context, key string, value any, ttlSeconds int) (err error) {
	ctx, scope := c.trace(ctx, "Save", key)
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	var payload []byte

	if s, ok := value.(string); ok {
		payload = []byte(s)
	} else if payload, err = json.Marshal(value); err != nil {
		log.Error().Err(err).Str("key", key).Msg("failed to encode cache")

		return fmt.Errorf("failed to marshal cache value: %w", err)
	}

	ttl := time.Duration(max(ttlSeconds, 0)) * time.Second

	if err = c.client.Set(ctx, key, payload, ttl).Err(); err != nil {
		log.Error().Err(err).Str("key", key).Msg("failed to set cache")

		return fmt.Errorf("failed to set cache value: %w", err)
	}

	log.Debug().Str("key", key).Dur("ttl", ttl).Msg("cached value")

	return nil
}

// Version returns the current counters of namespaces joined with ".". A
// namespace that was never bumped reads as 0.
func (c *redisCache) Version(ctx context.Context, namespaces ...string) (version string, err error) {
	ctx, scope := c.trace(ctx, "Version", strings.Join(namespaces, ","))
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	keys := make([]string, len(namespaces))
	for i, namespace := range namespaces {
		keys[i] = versionKeyPrefix + namespace
	}

	values, err := c.client.MGet(ctx, keys...).Result()
	if err != nil {
		return "", fmt.Errorf("failed to read cache versions: %w", err)
	}

	parts := make([]string, len(values))

	for i, value := range values {
		raw, _ := value.(string)
		if raw == "" {
			raw = "0"
		}

		if _, err = strconv.ParseInt(raw, 10, 64); err != nil {
			return "", fmt.Errorf("corrupt cache version %s: %w", keys[i], err)
		}

		parts[i] = raw
	}

	return strings.Join(parts, "."), nil
}

// Bump advances the counter of every namespace in one round trip.
func (c *redisCache) Bump(ctx context.Context, namespaces ...string) (err error) {
	ctx, scope := c.trace(ctx, "Bump", strings.Join(namespaces, ","))
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	if len(namespaces) == 0 {
		return errors.New("no cache namespace to bump")
	}

	_, err = c.client.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, namespace := range namespaces {
			pipe.Incr(ctx, versionKeyPrefix+namespace)
		}

		return nil
	})
	if err != nil {
		log.Error().Err(err).Strs("namespaces", namespaces).Msg("failed to bump cache version")

		return fmt.Errorf("failed to bump cache version: %w", err)
	}

	return nil
}
