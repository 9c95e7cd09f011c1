package fetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/hyperifyio/originality/internal/cache"
	"github.com/hyperifyio/originality/internal/robots"
)

const articleHTML = `<html><head><title>Mills</title></head><body>
<nav>Home | About</nav>
<article><p>%s</p></article>
<footer>copyright</footer>
</body></html>`

func pageServer(t *testing.T, body string, calls *int32) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(calls, 1)
		switch r.URL.Path {
		case "/robots.txt":
			_, _ = w.Write([]byte("User-agent: *\nDisallow: /members\n"))
		case "/missing":
			http.NotFound(w, r)
		case "/short":
			w.Header().Set("Content-Type", "text/html")
			_, _ = w.Write([]byte("<html><body><p>tiny</p></body></html>"))
		default:
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			_, _ = w.Write([]byte(strings.Replace(articleHTML, "%s", body, 1)))
		}
	}))
}

func TestContentFetcher_ExtractsTruncatesAndCaches(t *testing.T) {
	long := strings.Repeat("The spinning jenny transformed cotton production in Lancashire. ", 60)
	var calls int32
	srv := pageServer(t, long, &calls)
	defer srv.Close()

	pc := cache.NewPageCache(10, time.Minute, nil)
	f := &ContentFetcher{Client: &Client{HTTPClient: srv.Client(), MaxAttempts: 1}, Cache: pc}

	p, err := f.Fetch(context.Background(), srv.URL+"/a")
	if err != nil || p == nil {
		t.Fatalf("fetch: %v %+v", err, p)
	}
	if len([]rune(p.Text)) != MaxTextChars {
		t.Fatalf("expected truncation to %d, got %d", MaxTextChars, len([]rune(p.Text)))
	}
	if strings.Contains(p.Text, "Home | About") || strings.Contains(p.Text, "\n") {
		t.Fatalf("page text not cleaned: %q", p.Text[:80])
	}

	p2, err := f.Fetch(context.Background(), srv.URL+"/a")
	if err != nil || p2 == nil || !p2.Cached {
		t.Fatalf("expected cached page, got %+v %v", p2, err)
	}
	if calls != 1 {
		t.Fatalf("expected one network call, got %d", calls)
	}
}

func TestContentFetcher_DegradesToNil(t *testing.T) {
	var calls int32
	srv := pageServer(t, "unused", &calls)
	defer srv.Close()

	f := &ContentFetcher{Client: &Client{HTTPClient: srv.Client(), MaxAttempts: 1}}
	for _, path := range []string{"/missing", "/short"} {
		p, err := f.Fetch(context.Background(), srv.URL+path)
		if err != nil || p != nil {
			t.Fatalf("%s: expected nil page and nil error, got %+v %v", path, p, err)
		}
	}
}

func TestContentFetcher_SkipsLowValueDomainsWithoutNetwork(t *testing.T) {
	var hits int32
	rt := roundTripFunc(func(r *http.Request) (*http.Response, error) {
		atomic.AddInt32(&hits, 1)
		return nil, context.Canceled
	})
	f := &ContentFetcher{Client: &Client{HTTPClient: &http.Client{Transport: rt}, MaxAttempts: 1}}
	p, err := f.Fetch(context.Background(), "https://www.facebook.com/some/post")
	if err != nil || p != nil {
		t.Fatalf("expected skip, got %+v %v", p, err)
	}
	if hits != 0 {
		t.Fatalf("skip list should avoid network, got %d calls", hits)
	}
}

func TestContentFetcher_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	f := &ContentFetcher{}
	if _, err := f.Fetch(ctx, "https://example.org/a"); err == nil {
		t.Fatalf("expected context error")
	}
}

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }

func TestContentFetcher_RespectsRobots(t *testing.T) {
	body := strings.Repeat("Canal networks carried coal to the new factories of the north. ", 5)
	var calls int32
	srv := pageServer(t, body, &calls)
	defer srv.Close()

	gate := robots.NewManager(srv.Client(), "originality-test", time.Minute)
	gate.AllowPrivateHosts = true
	f := &ContentFetcher{Client: &Client{HTTPClient: srv.Client(), MaxAttempts: 1}, Robots: gate}

	if p, err := f.Fetch(context.Background(), srv.URL+"/members/essay"); err != nil || p != nil {
		t.Fatalf("disallowed page should be skipped, got %+v %v", p, err)
	}
	if p, err := f.Fetch(context.Background(), srv.URL+"/public/essay"); err != nil || p == nil {
		t.Fatalf("allowed page should be fetched, got %+v %v", p, err)
	}
	// One robots.txt lookup plus the allowed page.
	if n := atomic.LoadInt32(&calls); n != 2 {
		t.Fatalf("expected 2 requests, got %d", n)
	}
}
