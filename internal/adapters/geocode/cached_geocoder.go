package geocode

import (
	"context"
	"spacetime-service/internal/adapters/cache"
	"spacetime-service/internal/domain"
	"spacetime-service/internal/ports"
	"time"
)

// DefaultTTL keeps snaps for 30 days; road geometry changes slowly.
const DefaultTTL = 30 * 24 * time.Hour

// CachedGeocoder memoizes successful reverse geocoding results in the result
// cache under the geocode key namespace. Failures are never cached.
type CachedGeocoder struct {
	next  ports.ReverseGeocoder
	cache *cache.ResultCache
	ttl   time.Duration
}

func NewCachedGeocoder(next ports.ReverseGeocoder, c *cache.ResultCache, ttl time.Duration) *CachedGeocoder {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &CachedGeocoder{next: next, cache: c, ttl: ttl}
}

func (c *CachedGeocoder) ReverseGeocode(ctx context.Context, loc domain.Location) (domain.ResolvedLocation, error) {
	key := domain.NewGeocodeCacheKey(loc)

	var hit domain.ResolvedLocation
	if c.cache.GetInto(ctx, key, &hit) {
		return hit, nil
	}

	res, err := c.next.ReverseGeocode(ctx, loc)
	if err != nil {
		return domain.ResolvedLocation{}, err
	}

	c.cache.Set(ctx, key, res, c.ttl)
	return res, nil
}
