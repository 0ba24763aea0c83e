// internal/pkg/prefcache/prefcache.go
package prefcache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Cache mirrors a handful of display preferences (language, timezone,
// date/time formats, notification toggles) into redis so the UI can reflect
// them immediately after a save. The mirror is best-effort and never
// authoritative: every failure is swallowed and readers fall back to
// whatever defaults they carry.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

func New(client *redis.Client, logger *zap.Logger) *Cache {
	return &Cache{
		client: client,
		ttl:    30 * 24 * time.Hour,
		logger: logger,
	}
}

func (c *Cache) key(accountID int64) string {
	return fmt.Sprintf("prefs:%d", accountID)
}

// Mirror writes preference fields for an account. Errors are logged at
// debug level and dropped.
func (c *Cache) Mirror(ctx context.Context, accountID int64, values map[string]string) {
	if c == nil || c.client == nil || len(values) == 0 {
		return
	}

	fields := make(map[string]interface{}, len(values))
	for k, v := range values {
		fields[k] = v
	}

	key := c.key(accountID)
	if err := c.client.HSet(ctx, key, fields).Err(); err != nil {
		c.logger.Debug("preference mirror write failed", zap.Error(err))
		return
	}
	if err := c.client.Expire(ctx, key, c.ttl).Err(); err != nil {
		c.logger.Debug("preference mirror expire failed", zap.Error(err))
	}
}

// Get reads the mirrored preferences for an account. A failed or empty
// read returns nil; callers use their defaults.
func (c *Cache) Get(ctx context.Context, accountID int64) map[string]string {
	if c == nil || c.client == nil {
		return nil
	}

	values, err := c.client.HGetAll(ctx, c.key(accountID)).Result()
	if err != nil {
		c.logger.Debug("preference mirror read failed", zap.Error(err))
		return nil
	}
	if len(values) == 0 {
		return nil
	}
	return values
}
