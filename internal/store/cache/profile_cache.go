// internal/store/cache/profile_cache.go
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"hostelverse-workers/internal/common/logger"
	"hostelverse-workers/internal/common/metrics"
	"hostelverse-workers/internal/waitlist"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "applicant:profile:"

// ProfileCache is a read-through cache in front of a waitlist.ProfileStore.
// Redis failures degrade to the underlying store. Missing profiles are not cached.
type ProfileCache struct {
	redis  redis.Cmdable
	next   waitlist.ProfileStore
	ttl    time.Duration
	logger logger.Logger
}

func NewProfileCache(client redis.Cmdable, next waitlist.ProfileStore, ttl time.Duration, log logger.Logger) *ProfileCache {
	return &ProfileCache{
		redis:  client,
		next:   next,
		ttl:    ttl,
		logger: log.WithFields(map[string]interface{}{"component": "profile-cache"}),
	}
}

func Key(userID string) string {
	return keyPrefix + userID
}

func (c *ProfileCache) GetProfile(ctx context.Context, userID string) (waitlist.ApplicantProfile, error) {
	val, err := c.redis.Get(ctx, Key(userID)).Result()
	switch {
	case err == nil:
		var profile waitlist.ApplicantProfile
		if jsonErr := json.Unmarshal([]byte(val), &profile); jsonErr == nil {
			metrics.ProfileCacheRequests.WithLabelValues("hit").Inc()
			return profile, nil
		}
		c.logger.Warn("discarding corrupt cache entry", map[string]interface{}{"userId": userID})
		metrics.ProfileCacheRequests.WithLabelValues("error").Inc()
	case errors.Is(err, redis.Nil):
		metrics.ProfileCacheRequests.WithLabelValues("miss").Inc()
	default:
		c.logger.Warn("profile cache read failed", map[string]interface{}{
			"userId": userID,
			"error":  err.Error(),
		})
		metrics.ProfileCacheRequests.WithLabelValues("error").Inc()
	}

	profile, err := c.next.GetProfile(ctx, userID)
	if err != nil {
		return waitlist.ApplicantProfile{}, err
	}

	data, err := json.Marshal(profile)
	if err == nil {
		err = c.redis.Set(ctx, Key(userID), data, c.ttl).Err()
	}
	if err != nil {
		c.logger.Warn("profile cache write failed", map[string]interface{}{
			"userId": userID,
			"error":  err.Error(),
		})
	}

	return profile, nil
}

// Invalidate drops the cached profile for userID.
func (c *ProfileCache) Invalidate(ctx context.Context, userID string) error {
	return c.redis.Del(ctx, Key(userID)).Err()
}
