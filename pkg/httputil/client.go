package httputil

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/matzehuels/kinfolk/pkg/buildinfo"
	"github.com/matzehuels/kinfolk/pkg/cache"
	kerrors "github.com/matzehuels/kinfolk/pkg/errors"
	"github.com/matzehuels/kinfolk/pkg/observability"
)

// Default client settings.
const (
	DefaultTimeout  = 30 * time.Second
	DefaultAttempts = 3
	DefaultDelay    = time.Second

	// maxBody caps how much of a response is read.
	maxBody = 32 << 20
)

// Client performs GET requests with retry and an optional response cache.
// It is safe for concurrent use.
type Client struct {
	http      *http.Client
	cache     cache.Cache
	keyer     cache.Keyer
	namespace string
	ttl       time.Duration
	attempts  int
	delay     time.Duration
	userAgent string
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option { return func(c *Client) { c.http = hc } }

// WithCache stores successful responses in cc for ttl, under keys from
// Keyer.HTTPKey(namespace, url).
func WithCache(cc cache.Cache, keyer cache.Keyer, namespace string, ttl time.Duration) Option {
	return func(c *Client) {
		c.cache, c.keyer, c.namespace, c.ttl = cc, keyer, namespace, ttl
	}
}

// WithRetry sets the attempt count and initial backoff delay.
func WithRetry(attempts int, delay time.Duration) Option {
	return func(c *Client) { c.attempts, c.delay = attempts, delay }
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(ua string) Option { return func(c *Client) { c.userAgent = ua } }

// NewClient returns a client with a 30 second timeout, 3 attempts and no cache.
func NewClient(opts ...Option) *Client {
	c := &Client{
		http:      &http.Client{Timeout: DefaultTimeout},
		cache:     cache.NewNullCache(),
		keyer:     cache.NewDefaultKeyer(),
		attempts:  DefaultAttempts,
		delay:     DefaultDelay,
		userAgent: buildinfo.UserAgent(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get fetches url and returns the body. Cached bodies are returned without
// a request. Network failures, 429 and 5xx responses are retried; other
// failures map to structured errors (NOT_FOUND, UNAUTHORIZED, ...).
func (c *Client) Get(ctx context.Context, url string, header http.Header) ([]byte, error) {
	key := c.keyer.HTTPKey(c.namespace, url)
	if data, hit, err := c.cache.Get(ctx, key); err == nil && hit {
		return data, nil
	}

	var body []byte
	err := Retry(ctx, c.attempts, c.delay, func() error {
		var err error
		body, err = c.fetch(ctx, url, header)
		return err
	})
	if err != nil {
		var re *RetryableError
		if errors.As(err, &re) {
			err = re.Err
		}
		return nil, err
	}

	_ = c.cache.Set(ctx, key, body, c.ttl)
	return body, nil
}

// GetJSON fetches url and decodes the body into v.
func (c *Client) GetJSON(ctx context.Context, url string, header http.Header, v any) error {
	body, err := c.Get(ctx, url, header)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, v); err != nil {
		return kerrors.Wrap(kerrors.ErrCodeInvalidFormat, err, "decode response from %s", url)
	}
	return nil
}

func (c *Client) fetch(ctx context.Context, url string, header http.Header) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, kerrors.Wrap(kerrors.ErrCodeInvalidInput, err, "build request for %s", url)
	}
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	req.Header.Set("User-Agent", c.userAgent)

	hooks := observability.HTTP()
	host, path := req.URL.Host, req.URL.Path
	hooks.OnRequest(ctx, req.Method, host, path)
	start := time.Now()

	resp, err := c.http.Do(req)
	if err != nil {
		hooks.OnError(ctx, req.Method, host, path, err)
		if ctx.Err() != nil {
			return nil, kerrors.Wrap(kerrors.ErrCodeTimeout, ctx.Err(), "request to %s", url)
		}
		return nil, &RetryableError{Err: kerrors.Wrap(kerrors.ErrCodeNetwork, err, "request to %s", url)}
	}
	defer resp.Body.Close()
	hooks.OnResponse(ctx, req.Method, host, path, resp.StatusCode, time.Since(start))

	if err := statusError(resp, url); err != nil {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4<<10))
		return nil, err
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return nil, &RetryableError{Err: kerrors.Wrap(kerrors.ErrCodeNetwork, err, "read body from %s", url)}
	}
	return body, nil
}

func statusError(resp *http.Response, url string) error {
	code := resp.StatusCode
	switch {
	case code >= 200 && code < 300:
		return nil
	case code == http.StatusNotFound:
		return kerrors.New(kerrors.ErrCodeNotFound, "%s: not found", url)
	case code == http.StatusUnauthorized || code == http.StatusForbidden:
		return kerrors.New(kerrors.ErrCodeUnauthorized, "%s: %s", url, resp.Status)
	case code == http.StatusTooManyRequests || code >= 500:
		return &RetryableError{Err: kerrors.New(kerrors.ErrCodeNetwork, "%s: %s", url, resp.Status)}
	default:
		return kerrors.New(kerrors.ErrCodeSourceUnavailable, "%s: %s", url, resp.Status)
	}
}

