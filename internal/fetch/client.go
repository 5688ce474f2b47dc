// Package fetch is the HTTP client shared by network-backed deck sources.
package fetch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

var (
	// ErrStatus is wrapped by every error caused by a non-2xx response.
	ErrStatus = errors.New("unexpected HTTP status")
	// ErrTooLarge is wrapped when a response body exceeds Options.MaxBody.
	ErrTooLarge = errors.New("response body too large")
)

// defaultMaxBody caps how much of a response is read.
const defaultMaxBody = 16 << 20

// Options configures a Client. Zero values pick the defaults.
type Options struct {
	Timeout           time.Duration
	RequestsPerSecond float64
	Burst             int
	UserAgent         string
	MaxBody           int64
	Transport         http.RoundTripper
}

// Client issues rate-limited GET/HEAD requests. It is safe for concurrent use.
type Client struct {
	http      *http.Client
	limiter   *rate.Limiter
	userAgent string
	maxBody   int64
}

// New builds a Client.
func New(opts Options) *Client {
	if opts.Timeout <= 0 {
		opts.Timeout = 15 * time.Second
	}
	if opts.RequestsPerSecond <= 0 {
		opts.RequestsPerSecond = 4
	}
	if opts.Burst <= 0 {
		opts.Burst = 2
	}
	if opts.UserAgent == "" {
		opts.UserAgent = "mtgdeck/1.0"
	}
	if opts.MaxBody <= 0 {
		opts.MaxBody = defaultMaxBody
	}
	return &Client{
		http:      &http.Client{Timeout: opts.Timeout, Transport: opts.Transport},
		limiter:   rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), opts.Burst),
		userAgent: opts.UserAgent,
		maxBody:   opts.MaxBody,
	}
}

// Head issues a HEAD request and discards the response.
func (c *Client) Head(ctx context.Context, url string) error {
	resp, err := c.do(ctx, http.MethodHead, url, nil)
	if err != nil {
		return err
	}
	resp.Body.Close()
	return nil
}

// Text GETs url and returns the body.
func (c *Client) Text(ctx context.Context, url string, header http.Header) (string, error) {
	resp, err := c.do(ctx, http.MethodGet, url, header)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	data, err := c.readBody(resp.Body, url)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// JSON GETs url and decodes the body into v.
func (c *Client) JSON(ctx context.Context, url string, v any) error {
	header := http.Header{"Accept": []string{"application/json"}}
	resp, err := c.do(ctx, http.MethodGet, url, header)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := c.readBody(resp.Body, url)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decode %s: %w", url, err)
	}
	return nil
}

// readBody reads at most maxBody bytes. A longer body is an error, never a
// truncated result.
func (c *Client) readBody(body io.Reader, url string) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(body, c.maxBody+1))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", url, err)
	}
	if int64(len(data)) > c.maxBody {
		return nil, fmt.Errorf("read %s: %w (limit %d bytes)", url, ErrTooLarge, c.maxBody)
	}
	return data, nil
}

func (c *Client) do(ctx context.Context, method, url string, header http.Header) (*http.Response, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, method, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, url, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		resp.Body.Close()
		return nil, fmt.Errorf("%s %s: %w: %d", method, url, ErrStatus, resp.StatusCode)
	}
	return resp, nil
}
