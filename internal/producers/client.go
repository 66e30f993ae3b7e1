// Package producers implements the external data source clients: course
// search, professor ratings, dining menus, gym occupancy and student-org
// lookup. Producers return zero or more pages of content; a failure or an
// empty result surfaces to callers as an empty result set, never a crash.
package producers

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"
)

const maxResponseBytes = 4 << 20

// client wraps an HTTP client with a circuit breaker so a misbehaving
// upstream sheds load quickly instead of tying up dispatch goroutines.
type client struct {
	http    *http.Client
	breaker *gobreaker.CircuitBreaker
	log     *logrus.Logger
}

func newClient(name string, timeout time.Duration, log *logrus.Logger) *client {
	settings := gobreaker.Settings{
		Name:        name,
		MaxRequests: 5,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
	}
	return &client{
		http:    &http.Client{Timeout: timeout},
		breaker: gobreaker.NewCircuitBreaker(settings),
		log:     log,
	}
}

// do executes the request through the breaker and returns the response body.
// Non-2xx statuses are errors so they count against the breaker.
func (c *client) do(req *http.Request) ([]byte, error) {
	body, err := c.breaker.Execute(func() (interface{}, error) {
		resp, err := c.http.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return nil, fmt.Errorf("unexpected status %d from %s", resp.StatusCode, req.URL.Host)
		}

		data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
		if err != nil {
			return nil, fmt.Errorf("failed to read response from %s: %w", req.URL.Host, err)
		}
		return data, nil
	})
	if err != nil {
		return nil, fmt.Errorf("breaker (%s): %w", c.breaker.Name(), err)
	}
	return body.([]byte), nil
}

func (c *client) get(ctx context.Context, url string, headers map[string]string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	return c.do(req)
}
