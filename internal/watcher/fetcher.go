package watcher

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/angeloszaimis/healthwatch/internal/instance"
)

// maxHealthBody bounds how much of a health response is read.
const maxHealthBody = 1 << 20

// Fetcher retrieves the health payload served at endpoint.
type Fetcher interface {
	Fetch(ctx context.Context, endpoint string) (instance.Health, error)
}

type HTTPFetcher struct {
	client *http.Client
}

// NewHTTPFetcher returns a fetcher whose requests give up after timeout.
func NewHTTPFetcher(timeout time.Duration) *HTTPFetcher {
	return &HTTPFetcher{
		client: &http.Client{
			Timeout: timeout,
		},
	}
}

// Fetch performs a GET and decodes the body as a health payload. Transport
// errors, non-2xx responses, undecodable bodies and unknown statuses are
// all returned as errors.
func (f *HTTPFetcher) Fetch(ctx context.Context, endpoint string) (instance.Health, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return instance.Health{}, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	res, err := f.client.Do(req)
	if err != nil {
		return instance.Health{}, err
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		return instance.Health{}, &StatusError{Code: res.StatusCode}
	}

	var health instance.Health
	if err := json.NewDecoder(io.LimitReader(res.Body, maxHealthBody)).Decode(&health); err != nil {
		return instance.Health{}, fmt.Errorf("decode health payload: %w", err)
	}
	if err := health.Validate(); err != nil {
		return instance.Health{}, fmt.Errorf("invalid health payload: %w", err)
	}

	return health, nil
}

// StatusError is returned for non-2xx health responses.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d %s", e.Code, http.StatusText(e.Code))
}
