package caching

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const keyPrefix = "freightdesk"

// DirectoryCache caches carrier/customer code→id resolutions.
type DirectoryCache interface {
	// GetDirectoryID returns ok=false on a cache miss.
	GetDirectoryID(ctx context.Context, kind, code string) (id uuid.UUID, ok bool, err error)
	SetDirectoryID(ctx context.Context, kind, code string, id uuid.UUID, ttl time.Duration) error
	ForgetDirectoryID(ctx context.Context, kind, code string) error
	InvalidateDirectory(ctx context.Context, kind string) error
	Ping(ctx context.Context) error
}

type redisCacheService struct {
	client *redis.Client
}

// NewRedisCacheService connects to Redis. A failed initial ping is logged
// but not fatal; callers treat cache errors as misses.
func NewRedisCacheService(addr, password string, db int, logger *zap.Logger) DirectoryCache {
	// Parse Redis URL to extract host:port if protocol is included
	parsedAddr := addr
	if strings.HasPrefix(addr, "redis://") || strings.HasPrefix(addr, "rediss://") {
		parsedAddr = strings.TrimPrefix(strings.TrimPrefix(addr, "redis://"), "rediss://")
	}

	client := redis.NewClient(&redis.Options{
		Addr:     parsedAddr,
		Password: password,
		DB:       db,
	})

	if pingErr := client.Ping(context.Background()).Err(); pingErr != nil {
		logger.Warn("redis ping failed on initialization", zap.String("addr", parsedAddr), zap.Error(pingErr))
	} else {
		logger.Debug("redis connection established", zap.String("addr", parsedAddr))
	}

	return &redisCacheService{client: client}
}

// NewCacheServiceFromClient wraps an existing client.
func NewCacheServiceFromClient(client *redis.Client) DirectoryCache {
	return &redisCacheService{client: client}
}

func directoryKey(kind, code string) string {
	return fmt.Sprintf("%s:directory:%s:%s", keyPrefix, kind, code)
}

func (r *redisCacheService) GetDirectoryID(ctx context.Context, kind, code string) (uuid.UUID, bool, error) {
	val, err := r.client.Get(ctx, directoryKey(kind, code)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return uuid.Nil, false, nil // cache miss
		}
		return uuid.Nil, false, err
	}

	id, err := uuid.Parse(val)
	if err != nil {
		return uuid.Nil, false, fmt.Errorf("corrupt directory cache entry %s: %w", directoryKey(kind, code), err)
	}
	return id, true, nil
}

func (r *redisCacheService) SetDirectoryID(ctx context.Context, kind, code string, id uuid.UUID, ttl time.Duration) error {
	return r.client.Set(ctx, directoryKey(kind, code), id.String(), ttl).Err()
}

func (r *redisCacheService) ForgetDirectoryID(ctx context.Context, kind, code string) error {
	return r.client.Del(ctx, directoryKey(kind, code)).Err()
}

func (r *redisCacheService) InvalidateDirectory(ctx context.Context, kind string) error {
	pattern := fmt.Sprintf("%s:directory:%s:*", keyPrefix, kind)

	var keys []string
	iter := r.client.Scan(ctx, 0, pattern, 100).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return err
	}

	if len(keys) > 0 {
		return r.client.Del(ctx, keys...).Err()
	}
	return nil
}

func (r *redisCacheService) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}
