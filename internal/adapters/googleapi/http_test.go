package googleapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"spacetime-service/internal/domain"
	"sync/atomic"
	"testing"
	"time"
)

func TestClassify(t *testing.T) {
	cases := []struct {
		name    string
		err     error
		wantErr error
	}{
		{name: "too many requests", err: &StatusError{Code: 429}, wantErr: domain.ErrRateLimited},
		{name: "server error", err: &StatusError{Code: 500}, wantErr: domain.ErrUpstream},
		{name: "forbidden", err: &StatusError{Code: 403}, wantErr: domain.ErrUpstream},
		{name: "network", err: errors.New("connection reset"), wantErr: domain.ErrUpstream},
		{name: "cancelled", err: fmt.Errorf("get: %w", context.Canceled), wantErr: context.Canceled},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if err := Classify("op", tc.err); !errors.Is(err, tc.wantErr) {
				t.Fatalf("err = %v, want %v", err, tc.wantErr)
			}
		})
	}
}

func TestDoWithRetry(t *testing.T) {
	cases := []struct {
		name      string
		status    int
		wantCalls int32
	}{
		{name: "retries unavailable", status: http.StatusServiceUnavailable, wantCalls: 3},
		{name: "does not retry rate limit", status: http.StatusTooManyRequests, wantCalls: 1},
		{name: "does not retry bad request", status: http.StatusBadRequest, wantCalls: 1},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var calls atomic.Int32
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				calls.Add(1)
				w.WriteHeader(tc.status)
			}))
			defer srv.Close()

			_, err := DoWithRetry(context.Background(), srv.Client(), Backoff{Attempts: 3, Initial: time.Millisecond},
				func() (*http.Request, error) { return http.NewRequest(http.MethodGet, srv.URL, nil) })

			var se *StatusError
			if !errors.As(err, &se) || se.Code != tc.status {
				t.Fatalf("err = %v, want status %d", err, tc.status)
			}
			if calls.Load() != tc.wantCalls {
				t.Fatalf("calls = %d, want %d", calls.Load(), tc.wantCalls)
			}
		})
	}
}
