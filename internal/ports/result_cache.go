package ports

import (
	"context"
	"spacetime-service/internal/domain"
	"time"
)

// ResultCache is the TTL cache the engine reads through and writes behind.
// Implementations never surface storage failures: a failed read is a miss
// and a failed write is dropped.
type ResultCache interface {
	GetInto(ctx context.Context, key domain.CacheKey, v any) bool
	Set(ctx context.Context, key domain.CacheKey, payload any, ttl time.Duration)
}
