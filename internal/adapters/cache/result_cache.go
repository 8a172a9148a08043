package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"spacetime-service/internal/domain"
	"spacetime-service/internal/platform/obs"
	"spacetime-service/internal/ports"
	"time"
)

// DefaultTTL is how long a cached route matrix is served before it is refetched.
const DefaultTTL = time.Hour

// entry is the stored envelope around a cached payload.
type entry struct {
	Payload   json.RawMessage `json:"payload"`
	CreatedAt time.Time       `json:"created_at"`
	TTLMillis int64           `json:"ttl_ms"`
}

func (e entry) expired(now time.Time) bool {
	return now.Sub(e.CreatedAt) > time.Duration(e.TTLMillis)*time.Millisecond
}

func decodeEntry(b []byte) (entry, error) {
	var e entry
	if err := json.Unmarshal(b, &e); err != nil {
		return entry{}, fmt.Errorf("decode cache entry: %w", err)
	}
	if len(e.Payload) == 0 || e.CreatedAt.IsZero() || e.TTLMillis < 0 {
		return entry{}, errors.New("decode cache entry: incomplete envelope")
	}
	return e, nil
}

// lookup is the outcome of a single cache read.
type lookup int

const (
	lookupHit lookup = iota
	lookupMiss
	lookupExpired
	lookupCorrupt
	lookupUnavailable
)

func (l lookup) String() string {
	switch l {
	case lookupHit:
		return "hit"
	case lookupExpired:
		return "expired"
	case lookupCorrupt:
		return "corrupt"
	case lookupUnavailable:
		return "unavailable"
	default:
		return "miss"
	}
}

// Stats summarizes the stored entries.
type Stats struct {
	Entries    int    `json:"total_entries"`
	TotalBytes int64  `json:"total_size_bytes"`
	Backend    string `json:"backend"`
}

func (s Stats) SizeMB() float64 { return float64(s.TotalBytes) / (1024 * 1024) }

// ResultCache is a TTL cache of prior query results keyed by domain.CacheKey.
//
// Expiry is checked lazily on read. Storage failures never reach callers:
// reads degrade to misses and writes are logged and dropped.
type ResultCache struct {
	store ports.ResultStore
	now   func() time.Time
}

type Option func(*ResultCache)

// WithClock overrides the time source used for timestamps and expiry.
func WithClock(now func() time.Time) Option {
	return func(c *ResultCache) { c.now = now }
}

func NewResultCache(store ports.ResultStore, opts ...Option) *ResultCache {
	c := &ResultCache{store: store, now: time.Now}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Get returns a copy of the cached payload, or false on a miss.
func (c *ResultCache) Get(ctx context.Context, key domain.CacheKey) (json.RawMessage, bool) {
	payload, res := c.lookup(ctx, key)
	obs.CacheLookups.WithLabelValues(res.String()).Inc()

	switch res {
	case lookupHit:
		log.Printf("req_id=%s cache=hit key=%.8s", obs.RequestID(ctx), key)
		return payload, true
	case lookupExpired, lookupCorrupt:
		log.Printf("req_id=%s cache=%s key=%.8s", obs.RequestID(ctx), res, key)
		if err := c.store.Delete(ctx, string(key)); err != nil {
			log.Printf("req_id=%s cache delete failed key=%.8s: %v", obs.RequestID(ctx), key, err)
		}
	}
	return nil, false
}

// GetInto decodes a cached payload into v. A payload that no longer decodes
// into v is corrupt: it is deleted and reported as a miss.
func (c *ResultCache) GetInto(ctx context.Context, key domain.CacheKey, v any) bool {
	payload, ok := c.Get(ctx, key)
	if !ok {
		return false
	}
	if err := json.Unmarshal(payload, v); err != nil {
		obs.CacheLookups.WithLabelValues(lookupCorrupt.String()).Inc()
		log.Printf("req_id=%s cache=corrupt key=%.8s payload decode failed: %v", obs.RequestID(ctx), key, err)
		if err := c.store.Delete(ctx, string(key)); err != nil {
			log.Printf("req_id=%s cache delete failed key=%.8s: %v", obs.RequestID(ctx), key, err)
		}
		return false
	}
	return true
}

func (c *ResultCache) lookup(ctx context.Context, key domain.CacheKey) (json.RawMessage, lookup) {
	raw, err := c.store.Get(ctx, string(key))
	if errors.Is(err, ports.ErrNotFound) {
		return nil, lookupMiss
	}
	if err != nil {
		log.Printf("req_id=%s cache read failed key=%.8s: %v", obs.RequestID(ctx), key, err)
		return nil, lookupUnavailable
	}

	e, err := decodeEntry(raw)
	if err != nil {
		return nil, lookupCorrupt
	}
	if e.expired(c.now()) {
		return nil, lookupExpired
	}
	return e.Payload, lookupHit
}

// Set stores payload under key, replacing any existing entry.
func (c *ResultCache) Set(ctx context.Context, key domain.CacheKey, payload any, ttl time.Duration) {
	if err := c.set(ctx, key, payload, ttl); err != nil {
		obs.CacheWrites.WithLabelValues("error").Inc()
		log.Printf("req_id=%s cache write failed key=%.8s: %v", obs.RequestID(ctx), key, err)
		return
	}
	obs.CacheWrites.WithLabelValues("ok").Inc()
}

func (c *ResultCache) set(ctx context.Context, key domain.CacheKey, payload any, ttl time.Duration) error {
	if ttl < 0 {
		return fmt.Errorf("negative ttl %s", ttl)
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode payload: %w", err)
	}

	raw, err := json.Marshal(entry{
		Payload:   body,
		CreatedAt: c.now(),
		TTLMillis: ttl.Milliseconds(),
	})
	if err != nil {
		return fmt.Errorf("encode entry: %w", err)
	}

	return c.store.Put(ctx, string(key), raw)
}

// Sweep removes every expired or unreadable entry and returns how many were removed.
func (c *ResultCache) Sweep(ctx context.Context) (_ int, err error) {
	defer obs.Time(ctx, "cache.Sweep")(&err)

	var keys []string
	err = c.store.Scan(ctx, func(key string, _ int64) error {
		keys = append(keys, key)
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("sweep cache: scan: %w", err)
	}

	now := c.now()
	removed := 0
	for _, key := range keys {
		if err := ctx.Err(); err != nil {
			return removed, err
		}

		raw, err := c.store.Get(ctx, key)
		if errors.Is(err, ports.ErrNotFound) {
			continue
		}
		if err != nil {
			// Unreadable entries are removed like corrupt ones.
			log.Printf("req_id=%s cache sweep read failed key=%q: %v", obs.RequestID(ctx), key, err)
		} else if e, decodeErr := decodeEntry(raw); decodeErr == nil && !e.expired(now) {
			continue
		}

		if err := c.store.Delete(ctx, key); err != nil {
			log.Printf("req_id=%s cache sweep delete failed key=%q: %v", obs.RequestID(ctx), key, err)
			continue
		}
		removed++
	}

	obs.CacheSwept.Add(float64(removed))
	log.Printf("req_id=%s cache sweep removed=%d scanned=%d", obs.RequestID(ctx), removed, len(keys))
	return removed, nil
}

// Stats reports the entry count and total stored bytes.
func (c *ResultCache) Stats(ctx context.Context) (Stats, error) {
	st := Stats{Backend: c.store.Describe()}
	err := c.store.Scan(ctx, func(_ string, size int64) error {
		st.Entries++
		st.TotalBytes += size
		return nil
	})
	if err != nil {
		return Stats{}, fmt.Errorf("cache stats: %w", err)
	}
	return st, nil
}
