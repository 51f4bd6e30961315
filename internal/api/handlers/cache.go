package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// latestCachePrefix namespaces the cached latest-value payloads; the
// collector drops them together with the analytics payloads after a refresh.
const latestCachePrefix = "dieseldesk:latest:"

// Cache is the subset of the Redis wrapper the latest-value handlers use.
type Cache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
}

// serveCached renders key straight from the cache when present, otherwise
// builds the payload, stores it for ttl, and renders it. A nil cache
// disables caching; cache failures degrade to a plain build.
func serveCached(c *gin.Context, cache Cache, key string, ttl time.Duration, errMsg string, build func() (interface{}, error)) {
	ctx := c.Request.Context()
	fullKey := latestCachePrefix + key

	if cache != nil {
		if raw, err := cache.Get(ctx, fullKey); err == nil && raw != "" {
			c.Data(http.StatusOK, "application/json; charset=utf-8", []byte(raw))
			return
		}
	}

	payload, err := build()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": errMsg})
		return
	}

	if cache != nil {
		if data, err := json.Marshal(payload); err == nil {
			_ = cache.Set(ctx, fullKey, data, ttl)
		}
	}
	c.JSON(http.StatusOK, payload)
}
