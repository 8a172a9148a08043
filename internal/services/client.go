package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"slices"
	"spacetime-service/internal/domain"
	"spacetime-service/internal/platform/obs"
	"spacetime-service/internal/ports"
	"time"

	"golang.org/x/sync/singleflight"
)

const (
	DefaultResultTTL         = time.Hour
	DefaultMaxAttempts       = 3
	DefaultRateLimitCooldown = 30 * time.Second
	DefaultFetchTimeout      = 5 * time.Minute
)

// MatrixClient runs route matrix queries through the result cache, the cost
// guard and the rate-limit retry loop. It is safe for concurrent use;
// concurrent misses on the same key share one provider call.
type MatrixClient struct {
	provider ports.RouteMatrixProvider
	cache    ports.ResultCache
	guard    *CostGuard

	ttl         time.Duration
	maxAttempts int
	cooldown    time.Duration
	// fetchTimeout bounds a shared provider fetch, which no single caller can cancel.
	fetchTimeout time.Duration

	inflight singleflight.Group
}

type ClientOption func(*MatrixClient)

func WithResultTTL(ttl time.Duration) ClientOption {
	return func(c *MatrixClient) {
		if ttl >= 0 {
			c.ttl = ttl
		}
	}
}

// WithRetry sets the attempt budget and the wait after a rate-limited attempt.
func WithRetry(maxAttempts int, cooldown time.Duration) ClientOption {
	return func(c *MatrixClient) {
		if maxAttempts > 0 {
			c.maxAttempts = maxAttempts
		}
		if cooldown >= 0 {
			c.cooldown = cooldown
		}
	}
}

func WithFetchTimeout(d time.Duration) ClientOption {
	return func(c *MatrixClient) {
		if d > 0 {
			c.fetchTimeout = d
		}
	}
}

func NewMatrixClient(
	provider ports.RouteMatrixProvider,
	cache ports.ResultCache,
	guard *CostGuard,
	opts ...ClientOption,
) *MatrixClient {
	c := &MatrixClient{
		provider:    provider,
		cache:       cache,
		guard:       guard,
		ttl:         DefaultResultTTL,
		maxAttempts: DefaultMaxAttempts,
		cooldown:    DefaultRateLimitCooldown,

		fetchTimeout: DefaultFetchTimeout,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Query returns the elements for every origin × destination pair. A cache
// hit skips the cost guard and the provider; a miss is gated first.
func (c *MatrixClient) Query(
	ctx context.Context,
	origins []domain.Location,
	destinations []domain.Location,
	mode domain.TravelMode,
) (_ domain.SparseMatrix, err error) {
	defer obs.Time(ctx, "matrix.Query")(&err)
	return c.query(ctx, origins, destinations, mode, true)
}

// query is Query with the cost gate optional. Batched callers have already
// gated the whole logical request and pass gate=false.
func (c *MatrixClient) query(
	ctx context.Context,
	origins []domain.Location,
	destinations []domain.Location,
	mode domain.TravelMode,
	gate bool,
) (domain.SparseMatrix, error) {
	if err := validateQuery(origins, destinations, mode); err != nil {
		return nil, err
	}

	key := domain.NewMatrixCacheKey(origins, destinations, mode)

	var cached domain.SparseMatrix
	if c.cache != nil && c.cache.GetInto(ctx, key, &cached) {
		return cached, nil
	}

	if gate {
		if err := c.guard.Check(ctx, len(origins)*len(destinations)); err != nil {
			return nil, err
		}
	}

	// The shared fetch outlives any single caller: one caller cancelling
	// must not fail the others waiting on the same key.
	ch := c.inflight.DoChan(string(key), func() (any, error) {
		fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.fetchTimeout)
		defer cancel()

		res, err := c.fetch(fetchCtx, origins, destinations, mode)
		if err != nil {
			return nil, err
		}
		if c.cache != nil {
			c.cache.Set(fetchCtx, key, res, c.ttl)
		}
		return res, nil
	})

	var r singleflight.Result
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case r = <-ch:
	}
	if r.Err != nil {
		return nil, r.Err
	}
	if r.Shared {
		log.Printf("req_id=%s op=matrix.query shared=true key=%.8s", obs.RequestID(ctx), key)
	}

	// Callers rebase indices in place; never hand out the shared slice.
	return slices.Clone(r.Val.(domain.SparseMatrix)), nil
}

// fetch calls the provider, waiting out rate limits up to the attempt budget.
func (c *MatrixClient) fetch(
	ctx context.Context,
	origins []domain.Location,
	destinations []domain.Location,
	mode domain.TravelMode,
) (domain.SparseMatrix, error) {
	var lastErr error

	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		res, err := c.provider.ComputeRouteMatrix(ctx, origins, destinations, mode)
		if err == nil {
			obs.ProviderAttempts.WithLabelValues(mode.String(), "ok").Inc()
			obs.ProviderElements.WithLabelValues(mode.String()).Add(float64(len(res)))
			return res, nil
		}

		if !errors.Is(err, domain.ErrRateLimited) {
			obs.ProviderAttempts.WithLabelValues(mode.String(), "error").Inc()
			return nil, fmt.Errorf("matrix client: %w", err)
		}

		obs.ProviderAttempts.WithLabelValues(mode.String(), "rate_limited").Inc()
		lastErr = err

		if attempt == c.maxAttempts {
			break
		}

		log.Printf(
			"req_id=%s op=matrix.fetch rate_limited=true attempt=%d/%d cooldown=%s",
			obs.RequestID(ctx), attempt, c.maxAttempts, c.cooldown,
		)

		timer := time.NewTimer(c.cooldown)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}

	return nil, fmt.Errorf("matrix client: rate limit exceeded after %d attempts: %w", c.maxAttempts, lastErr)
}

func validateQuery(origins, destinations []domain.Location, mode domain.TravelMode) error {
	if len(origins) == 0 || len(destinations) == 0 {
		return fmt.Errorf("matrix query: %w: origins and destinations must be non-empty", domain.ErrInvalidInput)
	}
	if !mode.Valid() {
		return fmt.Errorf("matrix query: %w: travel mode %q", domain.ErrInvalidInput, mode)
	}
	return nil
}
