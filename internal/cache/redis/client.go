// Package redis caches successful model results so repeated analysis and
// review requests do not burn tokens. The cache is best-effort: errors are
// logged and treated as misses.
package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/pvlab/backend/internal/llm"
	"github.com/pvlab/backend/internal/metrics"
	"github.com/pvlab/backend/pkg/logger"
)

type Client struct {
	client *redis.Client
	ttl    time.Duration
}

func NewClient(host string, port int, password string, db int, ttl time.Duration) (*Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", host, port),
		Password: password,
		DB:       db,
	})

	ctx := context.Background()
	if _, err := client.Ping(ctx).Result(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	if ttl <= 0 {
		ttl = time.Hour
	}

	logger.Info("Redis cache initialized",
		zap.String("addr", fmt.Sprintf("%s:%d", host, port)),
		zap.Duration("ttl", ttl),
	)

	return &Client{client: client, ttl: ttl}, nil
}

func (c *Client) Close() error {
	return c.client.Close()
}

// Get returns the cached result for a key. Any failure is a miss.
func (c *Client) Get(ctx context.Context, key string) (llm.Result, bool) {
	var result llm.Result

	data, err := c.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		metrics.RecordCacheMiss()
		return result, false
	}
	if err != nil {
		logger.Warn("Cache read failed", zap.String("key", key), zap.Error(err))
		metrics.RecordCacheMiss()
		return result, false
	}

	if err := json.Unmarshal(data, &result); err != nil {
		logger.Warn("Cached result not parseable", zap.String("key", key), zap.Error(err))
		metrics.RecordCacheMiss()
		return result, false
	}

	logger.Debug("Cache hit", zap.String("key", key))
	metrics.RecordCacheHit()
	return result, true
}

// Set stores a result under the configured TTL. Failures are logged only.
func (c *Client) Set(ctx context.Context, key string, result llm.Result) {
	data, err := json.Marshal(result)
	if err != nil {
		logger.Warn("Failed to marshal result for cache", zap.Error(err))
		return
	}

	if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
		logger.Warn("Cache write failed", zap.String("key", key), zap.Error(err))
	}
}
