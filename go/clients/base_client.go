package clients

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog/log"
)

// DefaultUserAgent identifies the aggregator to the sites it polls
const DefaultUserAgent = "GloryNewsBot/1.0 (+https://glorynews.com.au/bot)"

// RateLimiter is what the base client needs from the rate limiter
type RateLimiter interface {
	Acquire(ctx context.Context, resource string) bool
	Release(resource string)
}

// RetryConfig controls exponential backoff between attempts
type RetryConfig struct {
	Attempts  int           `yaml:"attempts"`
	BaseDelay time.Duration `yaml:"base_delay"`
	MaxDelay  time.Duration `yaml:"max_delay"`
	Jitter    float64       `yaml:"jitter"` // randomization factor, 0 disables jitter
}

// DefaultRetryConfig returns 3 attempts doubling from 250ms, capped at 2s
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		Attempts:  3,
		BaseDelay: 250 * time.Millisecond,
		MaxDelay:  2 * time.Second,
		Jitter:    0.3,
	}
}

type BaseClient struct {
	baseURL string
	client  *http.Client
	headers map[string]string
	limiter RateLimiter
	retry   RetryConfig
}

func NewBaseClient(baseURL string) *BaseClient {
	c := &BaseClient{
		baseURL: baseURL,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
		headers: make(map[string]string),
		retry:   DefaultRetryConfig(),
	}
	c.SetHeader("User-Agent", DefaultUserAgent)
	return c
}

func (c *BaseClient) BaseURL() string {
	return c.baseURL
}

func (c *BaseClient) SetHeader(key, value string) {
	c.headers[key] = value
}

func (c *BaseClient) SetTimeout(timeout time.Duration) {
	c.client.Timeout = timeout
}

// SetLimiter makes every attempt wait for a token keyed by the target host
func (c *BaseClient) SetLimiter(limiter RateLimiter) {
	c.limiter = limiter
}

func (c *BaseClient) SetRetry(cfg RetryConfig) {
	if cfg.Attempts < 1 {
		cfg.Attempts = 1
	}
	c.retry = cfg
}

// SetHTTPClient replaces the underlying transport, mostly for tests
func (c *BaseClient) SetHTTPClient(client *http.Client) {
	c.client = client
}

// MakeRequest performs a request with retry and backoff. Transient failures
// (connection errors, 429, 5xx) are retried; other statuses fail immediately.
func (c *BaseClient) MakeRequest(ctx context.Context, method, endpoint string, body io.Reader) ([]byte, error) {
	target := c.baseURL + endpoint
	host := hostOf(target)

	attempt := 0
	var responseBody []byte
	operation := func() error {
		attempt++
		data, err := c.doOnce(ctx, method, target, host, body)
		if err != nil {
			return err
		}
		responseBody = data
		return nil
	}

	policy := c.newBackOff(ctx)
	err := backoff.RetryNotify(operation, policy, func(err error, wait time.Duration) {
		log.Debug().
			Err(err).
			Str("url", target).
			Int("attempt", attempt).
			Dur("backoff", wait).
			Msg("retrying request")
	})
	if err != nil {
		return nil, err
	}
	return responseBody, nil
}

func (c *BaseClient) newBackOff(ctx context.Context) backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = c.retry.BaseDelay
	b.MaxInterval = c.retry.MaxDelay
	b.Multiplier = 2
	b.RandomizationFactor = c.retry.Jitter
	b.MaxElapsedTime = 0

	retries := c.retry.Attempts - 1
	if retries < 0 {
		retries = 0
	}
	return backoff.WithContext(backoff.WithMaxRetries(b, uint64(retries)), ctx)
}

func (c *BaseClient) doOnce(ctx context.Context, method, target, host string, body io.Reader) ([]byte, error) {
	acquired := true
	if c.limiter != nil {
		acquired = c.limiter.Acquire(ctx, host)
		if !acquired && ctx.Err() == nil {
			log.Warn().Err(RateLimitExceeded.New("%s", host)).Msg("sending request without a token")
		}
	}

	if err := ctx.Err(); err != nil {
		if acquired && c.limiter != nil {
			c.limiter.Release(host)
		}
		return nil, backoff.Permanent(NetworkError.Wrap(err))
	}

	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		if acquired && c.limiter != nil {
			c.limiter.Release(host)
		}
		return nil, backoff.Permanent(fmt.Errorf("failed to create request: %w", err))
	}

	for key, value := range c.headers {
		req.Header.Set(key, value)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, backoff.Permanent(NetworkError.New("request to %s aborted: %v", host, err))
		}
		return nil, NetworkError.New("failed to make request: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		responseBody, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		statusErr := NetworkError.New("API returned status code: %d, response: %s", resp.StatusCode, string(responseBody))
		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			return nil, statusErr
		}
		return nil, backoff.Permanent(statusErr)
	}

	responseBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, NetworkError.New("failed to read response body: %v", err)
	}

	return responseBody, nil
}

func (c *BaseClient) Get(ctx context.Context, endpoint string) ([]byte, error) {
	return c.MakeRequest(ctx, http.MethodGet, endpoint, nil)
}

// GetJSON fetches endpoint and decodes the body into v
func (c *BaseClient) GetJSON(ctx context.Context, endpoint string, v any) error {
	body, err := c.Get(ctx, endpoint)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, v); err != nil {
		return ParseError.New("failed to unmarshal response: %v, raw response: %.200s", err, string(body))
	}
	return nil
}

func hostOf(target string) string {
	u, err := url.Parse(target)
	if err != nil || u.Host == "" {
		return target
	}
	return u.Hostname()
}
