package check

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"gopkg.in/yaml.v3"

	"github.com/Flowneee/sentinel/internal/health"
)

// httpCodes holds the configured success criteria: either an allow-list of
// successful status codes or a deny-list of failing ones, never both.
type httpCodes struct {
	Success []int `yaml:"success"`
	Error   []int `yaml:"error"`
}

type httpCheckerConfig struct {
	URL   string    `yaml:"url"`
	Codes httpCodes `yaml:"codes"`
}

// HTTPChecker probes an HTTP endpoint with a GET request and classifies the
// response status against the configured code lists.
type HTTPChecker struct {
	url    string
	codes  httpCodes
	client *http.Client
}

// NewHTTPChecker builds an HTTP checker from a resource's config section.
func NewHTTPChecker(cfg yaml.Node) (Checker, error) {
	var parsed httpCheckerConfig
	if err := cfg.Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode http checker config: %w", err)
	}

	if parsed.URL == "" {
		return nil, errors.New("http checker: url is required")
	}
	target, err := url.Parse(parsed.URL)
	if err != nil {
		return nil, fmt.Errorf("http checker: invalid url: %w", err)
	}
	if target.Scheme == "" || target.Host == "" {
		return nil, errors.New("http checker: url must include scheme and host")
	}

	if err := parsed.Codes.validate(); err != nil {
		return nil, err
	}

	return &HTTPChecker{
		url:    parsed.URL,
		codes:  parsed.Codes,
		client: &http.Client{},
	}, nil
}

func (c httpCodes) validate() error {
	switch {
	case len(c.Success) == 0 && len(c.Error) == 0:
		return errors.New("http checker: codes must list success or error status codes")
	case len(c.Success) > 0 && len(c.Error) > 0:
		return errors.New("http checker: codes cannot list both success and error status codes")
	}
	for _, code := range append(append([]int(nil), c.Success...), c.Error...) {
		if code < 100 || code > 599 {
			return fmt.Errorf("http checker: invalid status code %d", code)
		}
	}
	return nil
}

// healthy reports whether the observed status code meets the success criteria.
func (c httpCodes) healthy(status int) bool {
	if len(c.Success) > 0 {
		return contains(c.Success, status)
	}
	return !contains(c.Error, status)
}

func contains(codes []int, code int) bool {
	for _, candidate := range codes {
		if candidate == code {
			return true
		}
	}
	return false
}

// Check implements Checker. The probe is bounded by the context deadline the
// monitor supplies; a transport failure or timeout yields a CheckerError
// outcome, a completed response with a non-successful code yields Unhealthy.
func (c *HTTPChecker) Check(ctx context.Context) health.Outcome {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, http.NoBody)
	if err != nil {
		return health.CheckerError(fmt.Sprintf("create request: %v", err))
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return health.CheckerError(err.Error())
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 1<<12))

	if !c.codes.healthy(resp.StatusCode) {
		return health.Unhealthy(fmt.Sprintf("non-successful HTTP code %d", resp.StatusCode))
	}
	return health.Healthy()
}
