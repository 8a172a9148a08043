package services

import (
	"context"
	"errors"
	"spacetime-service/internal/adapters/routes"
	"spacetime-service/internal/domain"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestMatrixClientRetriesRateLimits(t *testing.T) {
	provider := &routes.MockProvider{RateLimitFirst: 2}
	c, _ := newTestClient(provider, AutoApprove{})

	got, err := c.Query(context.Background(), line(2), line(3), domain.TravelModeDrive)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 6 {
		t.Fatalf("elements = %d, want 6", len(got))
	}
	if n := len(provider.Calls()); n != 3 {
		t.Fatalf("provider calls = %d, want 3", n)
	}
}

func TestMatrixClientRateLimitExhaustion(t *testing.T) {
	provider := &routes.MockProvider{RateLimitFirst: 100}
	c, _ := newTestClient(provider, AutoApprove{})

	_, err := c.Query(context.Background(), line(2), line(3), domain.TravelModeDrive)
	if !errors.Is(err, domain.ErrRateLimited) {
		t.Fatalf("err = %v, want ErrRateLimited", err)
	}
	if n := len(provider.Calls()); n != 3 {
		t.Fatalf("provider calls = %d, want exactly 3", n)
	}
}

func TestMatrixClientUpstreamFailureIsNotRetried(t *testing.T) {
	provider := &routes.MockProvider{Fail: domain.ErrUpstream}
	c, _ := newTestClient(provider, AutoApprove{})

	_, err := c.Query(context.Background(), line(2), line(2), domain.TravelModeWalk)
	if !errors.Is(err, domain.ErrUpstream) {
		t.Fatalf("err = %v, want ErrUpstream", err)
	}
	if n := len(provider.Calls()); n != 1 {
		t.Fatalf("provider calls = %d, want 1", n)
	}
}

func TestMatrixClientCooldownRespectsContext(t *testing.T) {
	provider := &routes.MockProvider{RateLimitFirst: 100}
	c := NewMatrixClient(provider, nil, NewCostGuard(AutoApprove{}), WithRetry(3, time.Hour))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := c.Query(ctx, line(1), line(1), domain.TravelModeWalk)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("err = %v, want context.DeadlineExceeded", err)
	}
	if n := len(provider.Calls()); n != 1 {
		t.Fatalf("provider calls = %d, want 1", n)
	}
}

func TestMatrixClientCacheHitSkipsProviderAndCostGuard(t *testing.T) {
	provider := routes.NewMockProvider()
	policy := &countingPolicy{approve: true}
	c, _ := newTestClient(provider, policy)

	origins, destinations := line(10), line(20)

	first, err := c.Query(context.Background(), origins, destinations, domain.TravelModeDrive)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := c.Query(context.Background(), origins, destinations, domain.TravelModeDrive)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if n := len(provider.Calls()); n != 1 {
		t.Fatalf("provider calls = %d, want 1", n)
	}
	if policy.calls() != 1 {
		t.Fatalf("cost decisions = %d, want 1", policy.calls())
	}
	if len(first) != len(second) {
		t.Fatalf("cached elements = %d, want %d", len(second), len(first))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("element %d = %+v, want %+v", i, second[i], first[i])
		}
	}
}

func TestMatrixClientRejectedMissNeverCallsProvider(t *testing.T) {
	provider := routes.NewMockProvider()
	c, _ := newTestClient(provider, RejectAll{})

	_, err := c.Query(context.Background(), line(10), line(20), domain.TravelModeDrive)
	if !errors.Is(err, domain.ErrCostRejected) {
		t.Fatalf("err = %v, want ErrCostRejected", err)
	}
	if n := len(provider.Calls()); n != 0 {
		t.Fatalf("provider calls = %d, want 0", n)
	}
}

func TestMatrixClientReturnsIndependentCopies(t *testing.T) {
	provider := routes.NewMockProvider()
	c, _ := newTestClient(provider, AutoApprove{})

	first, err := c.Query(context.Background(), line(2), line(2), domain.TravelModeWalk)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	first[0].OriginIndex = 99

	second, err := c.Query(context.Background(), line(2), line(2), domain.TravelModeWalk)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if second[0].OriginIndex != 0 {
		t.Fatalf("origin index = %d, want 0", second[0].OriginIndex)
	}
}

func TestMatrixClientRejectsInvalidInput(t *testing.T) {
	c, _ := newTestClient(routes.NewMockProvider(), AutoApprove{})

	if _, err := c.Query(context.Background(), nil, line(1), domain.TravelModeWalk); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("empty origins: err = %v, want ErrInvalidInput", err)
	}
	if _, err := c.Query(context.Background(), line(1), line(1), domain.TravelMode("BICYCLE")); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("bad mode: err = %v, want ErrInvalidInput", err)
	}
}

// gatedProvider blocks every call until release is closed or ctx ends.
type gatedProvider struct {
	started chan struct{}
	release chan struct{}
	once    sync.Once
	calls   atomic.Int32
}

func (p *gatedProvider) ComputeRouteMatrix(
	ctx context.Context,
	origins []domain.Location,
	destinations []domain.Location,
	mode domain.TravelMode,
) (domain.SparseMatrix, error) {
	p.calls.Add(1)
	p.once.Do(func() { close(p.started) })

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-p.release:
	}
	return routes.NewMockProvider().ComputeRouteMatrix(ctx, origins, destinations, mode)
}

func TestMatrixClientSharedFetchSurvivesCallerCancel(t *testing.T) {
	provider := &gatedProvider{started: make(chan struct{}), release: make(chan struct{})}
	c, _ := newTestClient(provider, AutoApprove{})
	origins, destinations := line(2), line(2)

	ctxA, cancelA := context.WithCancel(context.Background())
	errA := make(chan error, 1)
	go func() {
		_, err := c.Query(ctxA, origins, destinations, domain.TravelModeDrive)
		errA <- err
	}()
	<-provider.started

	type result struct {
		m   domain.SparseMatrix
		err error
	}
	resB := make(chan result, 1)
	go func() {
		m, err := c.Query(context.Background(), origins, destinations, domain.TravelModeDrive)
		resB <- result{m, err}
	}()

	cancelA()
	if err := <-errA; !errors.Is(err, context.Canceled) {
		t.Fatalf("cancelled caller err = %v, want context.Canceled", err)
	}

	time.Sleep(20 * time.Millisecond)
	close(provider.release)

	got := <-resB
	if got.err != nil {
		t.Fatalf("other caller err = %v, want nil", got.err)
	}
	if len(got.m) != 4 {
		t.Fatalf("elements = %d, want 4", len(got.m))
	}
	if n := provider.calls.Load(); n != 1 {
		t.Fatalf("provider calls = %d, want 1", n)
	}
}
