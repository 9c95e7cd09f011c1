// Package fetch downloads candidate source pages with domain-aware limits
// and turns them into bounded plain text.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"golang.org/x/net/html/charset"
)

// DefaultUserAgents is the identity pool a request picks from at random.
var DefaultUserAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36",
	"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:125.0) Gecko/20100101 Firefox/125.0",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.4 Safari/605.1.15",
	"Mozilla/5.0 (X11; Ubuntu; Linux x86_64; rv:125.0) Gecko/20100101 Firefox/125.0",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36 Edg/124.0.0.0",
}

// StatusError reports a non-2xx HTTP response.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string { return fmt.Sprintf("unexpected status: %d", e.Code) }

// ErrUnsupportedContentType is returned for bodies that are not HTML or plain text.
var ErrUnsupportedContentType = errors.New("unsupported content type")

// Response is a decoded page body.
type Response struct {
	URL         string
	Body        []byte
	ContentType string
}

// Client wraps http.Client with a randomized user agent, a redirect cap,
// a response size cap and limited retry on transient errors.
type Client struct {
	HTTPClient *http.Client
	// UserAgents is the pool picked from per request. Empty means DefaultUserAgents.
	UserAgents []string
	// MaxAttempts includes the initial attempt. Minimum 1.
	MaxAttempts int
	// RedirectMaxHops caps redirect following. Zero means default (2).
	RedirectMaxHops int
	// MaxConcurrent limits concurrent in-flight requests per client instance.
	// Zero means unlimited.
	MaxConcurrent int
	// Sleep waits between attempts; tests replace it.
	Sleep func(time.Duration)

	limiter     chan struct{}
	limiterOnce sync.Once

	rngMu sync.Mutex
	rng   *rand.Rand
}

func (c *Client) getHTTPClient() *http.Client {
	if c.HTTPClient != nil {
		// Clone to attach our redirect policy without mutating caller's client
		base := *c.HTTPClient
		base.CheckRedirect = c.checkRedirectFunc()
		return &base
	}
	return &http.Client{CheckRedirect: c.checkRedirectFunc()}
}

// Get issues a GET bounded by timeout and maxBytes, retrying transient errors.
func (c *Client) Get(ctx context.Context, rawURL string, timeout time.Duration, maxBytes int64) (Response, error) {
	attempts := c.MaxAttempts
	if attempts <= 0 {
		attempts = 1
	}
	var lastErr error
	for i := 0; i < attempts; i++ {
		resp, err := c.tryOnce(ctx, rawURL, timeout, maxBytes)
		if err == nil {
			return resp, nil
		}
		if !isTransient(err) || i == attempts-1 || ctx.Err() != nil {
			return Response{}, err
		}
		lastErr = err
		c.sleep(time.Duration(i+1) * 200 * time.Millisecond)
	}
	if lastErr == nil {
		lastErr = errors.New("unknown error")
	}
	return Response{}, lastErr
}

func (c *Client) tryOnce(ctx context.Context, rawURL string, timeout time.Duration, maxBytes int64) (Response, error) {
	// Concurrency gate per client instance
	if err := c.acquire(ctx); err != nil {
		return Response{}, err
	}
	defer c.release()

	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return Response{}, fmt.Errorf("new request: %w", err)
	}
	// Reject non-HTTP(S) schemes early
	if !isHTTPScheme(req.URL) {
		return Response{}, fmt.Errorf("unsupported URL scheme: %q", req.URL.String())
	}
	req.Header.Set("User-Agent", c.userAgent())
	req.Header.Set("Accept", "text/html,application/xhtml+xml,text/plain;q=0.9,*/*;q=0.5")
	req.Header.Set("Accept-Language", "en-US,en;q=0.8")

	resp, err := c.getHTTPClient().Do(req)
	if err != nil {
		return Response{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return Response{}, &StatusError{Code: resp.StatusCode}
	}
	contentType := resp.Header.Get("Content-Type")
	if !isAllowedContentType(contentType) {
		return Response{}, fmt.Errorf("%w: %s", ErrUnsupportedContentType, contentType)
	}
	var body io.Reader = resp.Body
	if maxBytes > 0 {
		body = io.LimitReader(resp.Body, maxBytes)
	}
	decoded, err := charset.NewReader(body, contentType)
	if err != nil {
		return Response{}, fmt.Errorf("charset: %w", err)
	}
	b, err := io.ReadAll(decoded)
	if err != nil {
		return Response{}, fmt.Errorf("read body: %w", err)
	}
	return Response{URL: resp.Request.URL.String(), Body: b, ContentType: contentType}, nil
}

func (c *Client) userAgent() string {
	agents := c.UserAgents
	if len(agents) == 0 {
		agents = DefaultUserAgents
	}
	c.rngMu.Lock()
	defer c.rngMu.Unlock()
	if c.rng == nil {
		c.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return agents[c.rng.Intn(len(agents))]
}

func (c *Client) sleep(d time.Duration) {
	if c.Sleep != nil {
		c.Sleep(d)
		return
	}
	time.Sleep(d)
}

func isTransient(err error) bool {
	// Treat HTTP 5xx and per-request deadline as transient.
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var se *StatusError
	if errors.As(err, &se) {
		return se.Code >= 500 && se.Code <= 599
	}
	return false
}

func (c *Client) checkRedirectFunc() func(req *http.Request, via []*http.Request) error {
	max := c.RedirectMaxHops
	if max <= 0 {
		max = 2
	}
	return func(req *http.Request, via []*http.Request) error {
		if len(via) > max {
			return errors.New("too many redirects")
		}
		// Only allow http/https during redirects
		if !isHTTPScheme(req.URL) {
			return errors.New("redirect to unsupported scheme")
		}
		return nil
	}
}

func isHTTPScheme(u *url.URL) bool {
	if u == nil {
		return false
	}
	scheme := strings.ToLower(u.Scheme)
	return scheme == "http" || scheme == "https"
}

func isAllowedContentType(ct string) bool {
	ct = strings.ToLower(strings.TrimSpace(ct))
	if ct == "" {
		return true
	}
	return strings.HasPrefix(ct, "text/html") || strings.HasPrefix(ct, "application/xhtml+xml") || strings.HasPrefix(ct, "text/plain")
}

func isPlainText(ct string) bool {
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(ct)), "text/plain")
}

func (c *Client) acquire(ctx context.Context) error {
	if c.MaxConcurrent <= 0 {
		return nil
	}
	c.limiterOnce.Do(func() {
		c.limiter = make(chan struct{}, c.MaxConcurrent)
	})
	select {
	case c.limiter <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *Client) release() {
	if c.MaxConcurrent <= 0 || c.limiter == nil {
		return
	}
	select {
	case <-c.limiter:
	default:
	}
}
