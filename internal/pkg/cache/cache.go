// Package cache provides a Redis-backed response cache for read-heavy GET endpoints.
package cache

import (
	"bytes"
	"context"
	"crypto/sha1"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	headerCache = "X-Cache"
	maxBodySize = 1 << 20
)

// NewRedisClient connects to Redis and verifies the connection with a ping.
func NewRedisClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}
	return client, nil
}

// ResponseCache stores successful JSON responses under a key namespace.
// A nil client disables caching and every handler becomes a pass-through.
type ResponseCache struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
	logger *zap.Logger
}

func NewResponseCache(client *redis.Client, prefix string, ttl time.Duration, logger *zap.Logger) *ResponseCache {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &ResponseCache{client: client, prefix: prefix, ttl: ttl, logger: logger}
}

// Enabled reports whether a Redis client is configured.
func (rc *ResponseCache) Enabled() bool {
	return rc != nil && rc.client != nil
}

// Key returns the cache key for a request path and raw query under generation gen.
func (rc *ResponseCache) Key(gen int64, path, rawQuery string) string {
	sum := sha1.Sum([]byte(path + "?" + rawQuery))
	return fmt.Sprintf("%s:v%d:%x", rc.prefix, gen, sum[:])
}

func (rc *ResponseCache) genKey() string {
	return rc.prefix + ":gen"
}

// generation returns the current cache generation. A missing counter is generation 0.
func (rc *ResponseCache) generation(ctx context.Context) (int64, error) {
	gen, err := rc.client.Get(ctx, rc.genKey()).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return gen, err
}

// captureWriter copies the response body while forwarding it to the client.
type captureWriter struct {
	gin.ResponseWriter
	buf bytes.Buffer
}

func (w *captureWriter) Write(b []byte) (int, error) {
	if w.buf.Len()+len(b) <= maxBodySize {
		w.buf.Write(b)
	}
	return w.ResponseWriter.Write(b)
}

// Handler serves GET requests from Redis when possible and stores 200 responses otherwise.
// Redis failures never fail the request.
func (rc *ResponseCache) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !rc.Enabled() || c.Request.Method != http.MethodGet {
			c.Next()
			return
		}

		ctx := c.Request.Context()
		// The generation is read before the handler runs, so a response computed
		// before a purge is stored under a key no later request will read.
		gen, err := rc.generation(ctx)
		if err != nil {
			rc.logger.Warn("cache generation lookup failed", zap.Error(err))
			c.Next()
			return
		}
		key := rc.Key(gen, c.Request.URL.Path, c.Request.URL.RawQuery)

		body, err := rc.client.Get(ctx, key).Bytes()
		switch {
		case err == nil:
			c.Header(headerCache, "HIT")
			c.Data(http.StatusOK, "application/json; charset=utf-8", body)
			c.Abort()
			return
		case !errors.Is(err, redis.Nil):
			rc.logger.Warn("cache lookup failed", zap.String("key", key), zap.Error(err))
		}

		cw := &captureWriter{ResponseWriter: c.Writer}
		c.Writer = cw
		c.Header(headerCache, "MISS")
		c.Next()

		if cw.Status() != http.StatusOK || cw.buf.Len() == 0 || cw.buf.Len() >= maxBodySize {
			return
		}
		if err := rc.client.Set(context.WithoutCancel(ctx), key, cw.buf.Bytes(), rc.ttl).Err(); err != nil {
			rc.logger.Warn("cache store failed", zap.String("key", key), zap.Error(err))
		}
	}
}

// PurgeOnSuccess drops every cached entry after a successful write request.
func (rc *ResponseCache) PurgeOnSuccess() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if !rc.Enabled() || c.Writer.Status() >= http.StatusBadRequest {
			return
		}
		if err := rc.Purge(context.WithoutCancel(c.Request.Context())); err != nil {
			rc.logger.Warn("cache purge failed", zap.String("prefix", rc.prefix), zap.Error(err))
		}
	}
}

// Purge moves the cache to a new generation and deletes entries of older ones.
// Entries written late under an old generation are never served and expire with their TTL.
func (rc *ResponseCache) Purge(ctx context.Context) error {
	if !rc.Enabled() {
		return nil
	}

	gen, err := rc.client.Incr(ctx, rc.genKey()).Result()
	if err != nil {
		return fmt.Errorf("bump cache generation failed: %w", err)
	}
	current := fmt.Sprintf("%s:v%d:", rc.prefix, gen)

	iter := rc.client.Scan(ctx, 0, rc.prefix+":v*", 100).Iterator()
	var stale []string
	for iter.Next(ctx) {
		if k := iter.Val(); !strings.HasPrefix(k, current) {
			stale = append(stale, k)
		}
	}
	if err := iter.Err(); err != nil {
		return err
	}
	if len(stale) == 0 {
		return nil
	}
	return rc.client.Del(ctx, stale...).Err()
}
