package fetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func noSleep(time.Duration) {}

func TestGet_Success(t *testing.T) {
	var ua string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ua = r.Header.Get("User-Agent")
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte("<html><body>ok</body></html>"))
	}))
	defer srv.Close()

	c := &Client{MaxAttempts: 2}
	resp, err := c.Get(context.Background(), srv.URL, 2*time.Second, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.ContentType == "" || len(resp.Body) == 0 {
		t.Fatalf("expected content type and body")
	}
	found := false
	for _, a := range DefaultUserAgents {
		if a == ua {
			found = true
		}
	}
	if !found {
		t.Fatalf("user agent %q not from pool", ua)
	}
}

func TestGet_RetryOn5xx(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(502)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte("<html>ok</html>"))
	}))
	defer srv.Close()

	c := &Client{MaxAttempts: 2, Sleep: noSleep}
	if _, err := c.Get(context.Background(), srv.URL, 2*time.Second, 0); err != nil {
		t.Fatalf("expected success after retry, got %v", err)
	}
}

func TestGet_NoRetryOn404(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		http.NotFound(w, r)
	}))
	defer srv.Close()

	c := &Client{MaxAttempts: 3, Sleep: noSleep}
	_, err := c.Get(context.Background(), srv.URL, time.Second, 0)
	se, ok := err.(*StatusError)
	if !ok || se.Code != 404 {
		t.Fatalf("expected 404 StatusError, got %v", err)
	}
	if calls != 1 {
		t.Fatalf("expected 1 call, got %d", calls)
	}
}

func TestGet_RejectsNonHTTP(t *testing.T) {
	c := &Client{MaxAttempts: 1}
	if _, err := c.Get(context.Background(), "file:///etc/hosts", time.Second, 0); err == nil {
		t.Fatalf("expected error for non-http scheme")
	}
}

func TestGet_ContentTypeGating(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/pdf")
		_, _ = w.Write([]byte("%PDF-1.7"))
	}))
	defer srv.Close()

	c := &Client{MaxAttempts: 1}
	if _, err := c.Get(context.Background(), srv.URL, time.Second, 0); err == nil {
		t.Fatalf("expected error for unsupported content type")
	}
}

func TestGet_RedirectLimit(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/":
			http.Redirect(w, r, "/a", http.StatusFound)
		case "/a":
			http.Redirect(w, r, "/b", http.StatusFound)
		case "/b":
			http.Redirect(w, r, "/c", http.StatusFound)
		default:
			w.Header().Set("Content-Type", "text/html")
			_, _ = w.Write([]byte("ok"))
		}
	}))
	defer srv.Close()

	c := &Client{MaxAttempts: 1}
	if _, err := c.Get(context.Background(), srv.URL, time.Second, 0); err == nil {
		t.Fatalf("expected redirect limit error")
	}
	resp, err := c.Get(context.Background(), srv.URL+"/b", time.Second, 0)
	if err != nil {
		t.Fatalf("single redirect should be followed: %v", err)
	}
	if !strings.HasSuffix(resp.URL, "/c") {
		t.Fatalf("final url %q", resp.URL)
	}
}

func TestGet_SizeCapAndCharset(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=iso-8859-1")
		_, _ = w.Write([]byte("caf\xe9 " + strings.Repeat("x", 100)))
	}))
	defer srv.Close()

	c := &Client{MaxAttempts: 1}
	resp, err := c.Get(context.Background(), srv.URL, time.Second, 10)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !strings.HasPrefix(string(resp.Body), "café") {
		t.Fatalf("expected latin-1 decoding, got %q", resp.Body)
	}
	if len(resp.Body) > 11 {
		t.Fatalf("size cap not applied: %d bytes", len(resp.Body))
	}
}

func TestGet_MaxConcurrent(t *testing.T) {
	var inFlight int32
	var maxObserved int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		curr := atomic.AddInt32(&inFlight, 1)
		for {
			prev := atomic.LoadInt32(&maxObserved)
			if curr <= prev || atomic.CompareAndSwapInt32(&maxObserved, prev, curr) {
				break
			}
		}
		time.Sleep(100 * time.Millisecond)
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte("ok"))
		atomic.AddInt32(&inFlight, -1)
	}))
	defer srv.Close()

	c := &Client{MaxAttempts: 1, MaxConcurrent: 2}

	var wg sync.WaitGroup
	start := make(chan struct{})
	num := 6
	wg.Add(num)
	for i := 0; i < num; i++ {
		go func() {
			defer wg.Done()
			<-start
			_, _ = c.Get(context.Background(), srv.URL, 2*time.Second, 0)
		}()
	}
	close(start)
	wg.Wait()

	if maxObserved > 2 {
		t.Fatalf("expected max concurrency <= 2, got %d", maxObserved)
	}
}
