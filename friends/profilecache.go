package friends

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"geostories.app/core/cache"
	"geostories.app/core/log"
	"geostories.app/core/models"
	"geostories.app/core/pubky"
	"github.com/dgraph-io/ristretto"
)

const DefaultProfileTTL = 10 * time.Minute

type ProfileCache interface {
	Get(ctx context.Context, k pubky.Key) (models.Profile, bool)
	Set(ctx context.Context, k pubky.Key, p models.Profile)
}

var _ = []ProfileCache{&memoryProfileCache{}, &redisProfileCache{}, noProfileCache{}}

type memoryProfileCache struct {
	c   *ristretto.Cache
	ttl time.Duration
}

// NewMemoryProfileCache keeps profiles in process.
func NewMemoryProfileCache(ttl time.Duration) (ProfileCache, error) {
	c, err := ristretto.NewCache(&ristretto.Config{
		NumCounters:            1e5,
		MaxCost:                1 << 24,
		BufferItems:            64,
		TtlTickerDurationInSec: 60,
	})
	if err != nil {
		return nil, err
	}
	return &memoryProfileCache{c, ttl}, nil
}

func (m *memoryProfileCache) Get(ctx context.Context, k pubky.Key) (models.Profile, bool) {
	v, ok := m.c.Get(string(k))
	if !ok {
		return models.Profile{}, false
	}
	p, ok := v.(models.Profile)
	return p, ok
}

func (m *memoryProfileCache) Set(ctx context.Context, k pubky.Key, p models.Profile) {
	cost := int64(len(p.Name) + len(p.Bio) + len(p.Image) + 64)
	m.c.SetWithTTL(string(k), p, cost, m.ttl)
	m.c.Wait()
}

const profileKey = "geostories:profile:%s"

type redisProfileCache struct {
	cache *cache.Cache
	ttl   time.Duration
}

// NewRedisProfileCache shares profiles between processes.
func NewRedisProfileCache(c *cache.Cache, ttl time.Duration) ProfileCache {
	return &redisProfileCache{c, ttl}
}

func (r *redisProfileCache) Get(ctx context.Context, k pubky.Key) (models.Profile, bool) {
	data, err := r.cache.Get(ctx, fmt.Sprintf(profileKey, k)).Bytes()
	if err != nil {
		return models.Profile{}, false
	}
	var p models.Profile
	if err := json.Unmarshal(data, &p); err != nil {
		log.FromContext(ctx).Warn("dropping corrupt cached profile", "pubky", k, "err", err)
		return models.Profile{}, false
	}
	return p, true
}

func (r *redisProfileCache) Set(ctx context.Context, k pubky.Key, p models.Profile) {
	data, err := json.Marshal(p)
	if err != nil {
		return
	}
	if err := r.cache.Set(ctx, fmt.Sprintf(profileKey, k), data, r.ttl).Err(); err != nil {
		log.FromContext(ctx).Warn("failed to cache profile", "pubky", k, "err", err)
	}
}

type noProfileCache struct{}

func (noProfileCache) Get(context.Context, pubky.Key) (models.Profile, bool) {
	return models.Profile{}, false
}

func (noProfileCache) Set(context.Context, pubky.Key, models.Profile) {}
