// Package googleapi holds the HTTP plumbing shared by the Google Maps
// Platform adapters: status errors, transient-failure retries and the
// mapping of failures onto domain error kinds.
package googleapi

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"spacetime-service/internal/domain"
	"strings"
	"time"
)

// StatusError is a non-2xx response with the start of its body.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("status %d: %s", e.Code, e.Body)
}

// Do sends req and turns any status >= 400 into a *StatusError.
func Do(client *http.Client, req *http.Request) (*http.Response, error) {
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= 400 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		resp.Body.Close()
		return nil, &StatusError{
			Code: resp.StatusCode,
			Body: strings.TrimSpace(string(b)),
		}
	}
	return resp, nil
}

// Backoff bounds DoWithRetry.
type Backoff struct {
	Attempts int
	Initial  time.Duration
}

var DefaultBackoff = Backoff{Attempts: 4, Initial: 200 * time.Millisecond}

// transient reports whether err is worth another attempt. Rate limits are
// not: the caller owns the cooldown.
func transient(err error) bool {
	var se *StatusError
	if errors.As(err, &se) {
		switch se.Code {
		case http.StatusInternalServerError, http.StatusBadGateway,
			http.StatusServiceUnavailable, http.StatusGatewayTimeout:
			return true
		}
		return false
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}

// DoWithRetry retries network errors and 5xx responses with exponential
// backoff. makeReq is called once per attempt.
func DoWithRetry(
	ctx context.Context,
	client *http.Client,
	b Backoff,
	makeReq func() (*http.Request, error),
) (*http.Response, error) {
	if b.Attempts < 1 {
		b.Attempts = 1
	}
	wait := b.Initial

	var lastErr error
	for attempt := 1; attempt <= b.Attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		req, err := makeReq()
		if err != nil {
			return nil, fmt.Errorf("make request: %w", err)
		}

		resp, err := Do(client, req)
		if err == nil {
			return resp, nil
		}
		lastErr = err

		if !transient(err) || attempt == b.Attempts {
			break
		}

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
		wait *= 2
	}
	return nil, lastErr
}

// Classify wraps a request failure in the matching domain error kind:
// 429 is ErrRateLimited, cancellation passes through, anything else is
// ErrUpstream.
func Classify(op string, err error) error {
	var se *StatusError
	if errors.As(err, &se) && se.Code == http.StatusTooManyRequests {
		return fmt.Errorf("%s: %w: %v", op, domain.ErrRateLimited, err)
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%s: %w", op, err)
	}
	return fmt.Errorf("%s: %w: %v", op, domain.ErrUpstream, err)
}
