package middleware

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"net/http"
	"time"

	"github.com/yourorg/kap-news/internal/metrics"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// CacheConfig holds configuration for the cache middleware
type CacheConfig struct {
	Enabled         bool
	DefaultDuration time.Duration
	PrefixKey       string
}

// RedisCache caches successful GET responses. Degraded responses are never
// stored so a recovered dependency is visible on the next request.
func RedisCache(redisClient redis.Cmdable, config CacheConfig, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !config.Enabled || redisClient == nil || c.Request.Method != http.MethodGet {
			c.Next()
			return
		}

		ctx := c.Request.Context()
		cacheKey := generateCacheKey(c, config.PrefixKey)

		cached, err := redisClient.HGetAll(ctx, cacheKey).Result()
		if err == nil && len(cached) > 0 {
			metrics.CacheResults.WithLabelValues("hit").Inc()
			logger.Debug("Cache hit",
				zap.String("path", c.Request.URL.Path),
				zap.String("cache_key", cacheKey))

			c.Header("X-Cache", "HIT")
			c.Data(http.StatusOK, cached["contentType"], []byte(cached["body"]))
			c.Abort()
			return
		}
		if err != nil {
			logger.Warn("Cache lookup failed", zap.Error(err), zap.String("cache_key", cacheKey))
		}
		metrics.CacheResults.WithLabelValues("miss").Inc()

		writer := &responseWriter{
			ResponseWriter: c.Writer,
			body:           &bytes.Buffer{},
		}
		c.Writer = writer

		c.Next()

		if writer.Status() != http.StatusOK || writer.Header().Get("X-Data-Degraded") != "" {
			return
		}

		pipe := redisClient.TxPipeline()
		pipe.HSet(ctx, cacheKey, map[string]interface{}{
			"contentType": writer.Header().Get("Content-Type"),
			"body":        writer.body.Bytes(),
		})
		pipe.Expire(ctx, cacheKey, config.DefaultDuration)
		if _, err := pipe.Exec(ctx); err != nil {
			logger.Error("Failed to set cache",
				zap.Error(err),
				zap.String("cache_key", cacheKey))
		}
	}
}

// responseWriter captures the response body for caching
type responseWriter struct {
	gin.ResponseWriter
	body *bytes.Buffer
}

// Write captures the response for caching
func (w *responseWriter) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

// generateCacheKey creates a unique cache key for a request
func generateCacheKey(c *gin.Context, prefix string) string {
	hash := sha256.New()
	_, _ = io.WriteString(hash, c.Request.URL.Path)
	if query := c.Request.URL.RawQuery; query != "" {
		_, _ = io.WriteString(hash, "?"+query)
	}
	return prefix + ":" + hex.EncodeToString(hash.Sum(nil))
}
