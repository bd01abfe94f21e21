// Package api talks to the board service: JSON catalogs for boards,
// threads and posts, and raw file downloads.
package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"dvach/internal/util/logx"
)

// DefaultBaseURL is the service root used when none is configured.
const DefaultBaseURL = "https://2ch.hk"

var (
	// ErrFetch marks network and transport failures, non-200 answers included.
	ErrFetch = errors.New("fetch failed")
	// ErrDecode marks payloads that do not have the expected JSON shape.
	ErrDecode = errors.New("decode failed")
	// ErrInvariant marks payloads that decoded but lack a structure the
	// service is expected to always return.
	ErrInvariant = errors.New("invariant violated")
)

// HTTPError carries the status of a non-200 response.
type HTTPError struct {
	StatusCode int
	URL        string
	Message    string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP %d: %s (URL: %s)", e.StatusCode, e.Message, e.URL)
}

type Settings struct {
	BaseURL   string
	UserAgent string
	Timeout   time.Duration
	// RequestInterval is the minimum delay between two requests to the same
	// host. Zero disables pacing.
	RequestInterval time.Duration
}

// Client fetches from one service root. It is used from a single goroutine
// but keeps its limiter map guarded so it stays safe to share.
type Client struct {
	httpClient *http.Client
	baseURL    string
	userAgent  string
	interval   time.Duration

	mu       sync.Mutex
	limiters map[string]*rate.Limiter
}

func NewClient(s Settings) (*Client, error) {
	base := strings.TrimRight(strings.TrimSpace(s.BaseURL), "/")
	if base == "" {
		base = DefaultBaseURL
	}
	u, err := url.Parse(base)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL %q: %w", s.BaseURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid base URL %q: scheme must be http or https", s.BaseURL)
	}
	timeout := s.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    base,
		userAgent:  s.UserAgent,
		interval:   s.RequestInterval,
		limiters:   map[string]*rate.Limiter{},
	}, nil
}

func (c *Client) BaseURL() string { return c.baseURL }

// Close releases idle keep-alive connections.
func (c *Client) Close() {
	c.httpClient.CloseIdleConnections()
}

// get performs a paced GET and returns the response when the status is 200.
// The caller closes the body.
func (c *Client) get(ctx context.Context, reqURL string) (*http.Response, error) {
	u, err := url.Parse(reqURL)
	if err != nil {
		return nil, fmt.Errorf("%w: bad URL %s: %w", ErrFetch, reqURL, err)
	}
	if err := c.limiterFor(u.Hostname()).Wait(ctx); err != nil {
		return nil, fmt.Errorf("%w: waiting for rate limiter: %w", ErrFetch, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: building request for %s: %w", ErrFetch, reqURL, err)
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: GET %s: %w", ErrFetch, reqURL, err)
	}
	logx.Debugf("api: GET %s -> %d in %s", reqURL, resp.StatusCode, time.Since(start).Round(time.Millisecond))
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("%w: %w", ErrFetch, &HTTPError{
			StatusCode: resp.StatusCode,
			URL:        reqURL,
			Message:    http.StatusText(resp.StatusCode),
		})
	}
	return resp, nil
}

func (c *Client) limiterFor(host string) *rate.Limiter {
	c.mu.Lock()
	defer c.mu.Unlock()
	if l, ok := c.limiters[host]; ok {
		return l
	}
	limit := rate.Inf
	if c.interval > 0 {
		limit = rate.Every(c.interval)
	}
	l := rate.NewLimiter(limit, 1)
	c.limiters[host] = l
	return l
}

// resolve joins a service-relative path to the base URL.
func (c *Client) resolve(path string) string {
	return c.baseURL + "/" + strings.TrimLeft(path, "/")
}

// Download streams the file at path (relative to the base URL) into w.
func (c *Client) Download(ctx context.Context, w io.Writer, path string) error {
	u := c.resolve(path)
	resp, err := c.get(ctx, u)
	if err != nil {
		return fmt.Errorf("cannot download %s: %w", u, err)
	}
	defer resp.Body.Close()
	n, err := io.Copy(w, resp.Body)
	if err != nil {
		return fmt.Errorf("cannot copy %s to output: %w", u, err)
	}
	logx.Infof("api: downloaded %s (%d bytes)", u, n)
	return nil
}
