package app

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/hyperifyio/originality/internal/score"
	"github.com/hyperifyio/originality/internal/search"
	"github.com/hyperifyio/originality/internal/text"
)

const essay = `The Industrial Revolution began in Britain during the late eighteenth century, when water frames and spinning mules moved cotton production out of cottages and into large mills. Richard Arkwright built his first water-powered mill at Cromford in 1771, and within two decades hundreds of similar factories lined the rivers of Lancashire and Derbyshire. Steam engines designed by James Watt later freed manufacturers from the need to build beside fast-flowing water. Towns such as Manchester grew at an extraordinary pace as families migrated from the countryside in search of wages. Working conditions were harsh, with long shifts, child labour and frequent accidents, which eventually prompted the Factory Acts of the nineteenth century.`

const unrelated = `Coral reefs support roughly a quarter of all marine species despite covering a tiny fraction of the ocean floor. Rising sea temperatures cause bleaching events in which corals expel the algae living in their tissues, and repeated bleaching can kill entire reef systems within a few years.`

type fixture struct {
	pages   *httptest.Server
	fetches *int32
	cfg     Config
}

func newFixture(t *testing.T, withHits bool) fixture {
	t.Helper()
	var fetches int32
	pages := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&fetches, 1)
		body := unrelated
		if r.URL.Path == "/copy" {
			body = essay
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte("<html><head><title>t</title></head><body><nav>menu</nav><article><p>" + body + "</p></article></body></html>"))
	}))
	t.Cleanup(pages.Close)

	entries := []map[string]any{}
	if withHits {
		entries = append(entries,
			map[string]any{"title": "Mills of Lancashire", "url": pages.URL + "/copy", "snippet": "water frames", "phrases": []string{"*"}},
			map[string]any{"title": "Reefs", "url": pages.URL + "/reefs", "snippet": "coral", "phrases": []string{"*"}},
		)
	}
	b, _ := json.Marshal(entries)
	path := filepath.Join(t.TempDir(), "results.json")
	if err := os.WriteFile(path, b, 0o600); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	cfg := DefaultConfig()
	cfg.FileSearchPath = path
	cfg.Providers = []string{"file"}
	cfg.RequestTimeout = 10 * time.Second
	return fixture{pages: pages, fetches: &fetches, cfg: cfg}
}

func newChecker(t *testing.T, cfg Config, opts ...Option) *Checker {
	t.Helper()
	c, err := New(cfg, opts...)
	if err != nil {
		t.Fatalf("new checker: %v", err)
	}
	return c
}

func TestCheckPlagiarism_VerbatimCopyShortCircuits(t *testing.T) {
	fx := newFixture(t, true)
	c := newChecker(t, fx.cfg)

	rep, err := c.CheckPlagiarism(context.Background(), essay, text.KindText)
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if rep.PlagiarismPercentage < 90 || rep.Confidence != score.ConfidenceVeryHigh {
		t.Fatalf("expected short-circuit verdict, got %v %s (%+v)", rep.PlagiarismPercentage, rep.Confidence, rep.CoverageBreakdown)
	}
	if rep.UniquePercentage != 100-rep.PlagiarismPercentage {
		t.Fatalf("unique percentage mismatch: %+v", rep)
	}
	if len(rep.Matches) != 1 || !strings.HasSuffix(rep.Matches[0].URL, "/copy") {
		t.Fatalf("expected only the copied page to match: %+v", rep.Matches)
	}
	if rep.CoverageBreakdown.CoveragePercent < 90 {
		t.Fatalf("expected near-full coverage, got %v", rep.CoverageBreakdown.CoveragePercent)
	}
	if !rep.EarlyTerminated {
		t.Fatalf("verbatim source should raise the early stop flag")
	}
	if rep.RequestID == "" || rep.PhrasesSearched == 0 || len(rep.KeyPhrases) != rep.PhrasesSearched {
		t.Fatalf("metadata missing: %+v", rep)
	}
	// Each URL is fetched at most once per request.
	if n := atomic.LoadInt32(fx.fetches); n > 2 {
		t.Fatalf("expected at most 2 page fetches, got %d", n)
	}
}

func TestCheckPlagiarism_NoHitsScoresZero(t *testing.T) {
	fx := newFixture(t, false)
	c := newChecker(t, fx.cfg)

	filler := strings.Repeat("the cat sat on the mat and then ", 7)
	rep, err := c.CheckPlagiarism(context.Background(), filler, text.KindText)
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if rep.PlagiarismPercentage != 0 || rep.Confidence != score.ConfidenceNone || len(rep.Matches) != 0 {
		t.Fatalf("expected empty verdict, got %+v", rep)
	}
}

func TestCheckPlagiarism_CachedReport(t *testing.T) {
	fx := newFixture(t, true)
	c := newChecker(t, fx.cfg)

	first, err := c.CheckPlagiarism(context.Background(), essay, text.KindText)
	if err != nil {
		t.Fatalf("first check: %v", err)
	}
	fetched := atomic.LoadInt32(fx.fetches)
	second, err := c.CheckPlagiarism(context.Background(), essay, text.KindText)
	if err != nil {
		t.Fatalf("second check: %v", err)
	}
	if !second.Cached || second.PlagiarismPercentage != first.PlagiarismPercentage {
		t.Fatalf("expected cached report: %+v", second)
	}
	if second.RequestID == first.RequestID {
		t.Fatalf("cached report should carry a fresh request id")
	}
	if atomic.LoadInt32(fx.fetches) != fetched {
		t.Fatalf("cached check should not fetch pages")
	}

	// Mutating a returned report must not alter later cached answers.
	wantURL := second.Matches[0].URL
	second.Matches[0].URL = "mutated"
	second.KeyPhrases[0] = "mutated"
	again, err := c.CheckPlagiarism(context.Background(), essay, text.KindText)
	if err != nil {
		t.Fatalf("repeat check: %v", err)
	}
	if again.Matches[0].URL != wantURL || again.KeyPhrases[0] == "mutated" {
		t.Fatalf("cached report was modified through a returned copy: %+v", again.Matches)
	}

	c.ClearCache()
	for _, st := range c.Status().Caches {
		if st.Entries != 0 {
			t.Fatalf("cache %s not cleared: %+v", st.Name, st)
		}
	}
	third, err := c.CheckPlagiarism(context.Background(), essay, text.KindText)
	if err != nil || third.Cached {
		t.Fatalf("expected fresh check after clear: %+v %v", third, err)
	}
}

func TestCheckPlagiarism_InputErrors(t *testing.T) {
	fx := newFixture(t, false)
	c := newChecker(t, fx.cfg)
	for _, in := range []string{"", "   ", "too short to check"} {
		_, err := c.CheckPlagiarism(context.Background(), in, text.KindText)
		var ie *InputError
		if !errors.As(err, &ie) {
			t.Fatalf("%q: expected InputError, got %v", in, err)
		}
		if IsRetryable(err) {
			t.Fatalf("input errors are not retryable")
		}
	}
	_, err := c.CheckPlagiarism(context.Background(), "x", text.KindText)
	if !errors.Is(err, text.ErrDocumentTooShort) {
		t.Fatalf("expected wrapped ErrDocumentTooShort, got %v", err)
	}
}

type blockingProvider struct{}

func (blockingProvider) Name() string { return "slow" }

func (blockingProvider) Search(ctx context.Context, _ search.Query) ([]search.Result, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func TestCheckPlagiarism_TimeoutIsRetryable(t *testing.T) {
	cfg := DefaultConfig()
	cfg.RequestTimeout = 50 * time.Millisecond
	c := newChecker(t, cfg, WithBackends(search.Backend{Provider: blockingProvider{}, Weight: 1}))

	start := time.Now()
	_, err := c.CheckPlagiarism(context.Background(), essay, text.KindText)
	if !IsRetryable(err) {
		t.Fatalf("expected retryable RequestError, got %v", err)
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline in chain, got %v", err)
	}
	if time.Since(start) > 5*time.Second {
		t.Fatalf("timeout not enforced")
	}
}

func TestStatus(t *testing.T) {
	fx := newFixture(t, false)
	fx.cfg.BraveKeys = []string{"brave-secret-1234"}
	fx.cfg.Providers = []string{"file", "brave"}
	fx.cfg.EmbeddingsBaseURL = "http://127.0.0.1:1/v1"
	c := newChecker(t, fx.cfg)

	st := c.Status()
	if len(st.Providers) != 2 || !st.Semantic || st.Build.Version == "" {
		t.Fatalf("unexpected status: %+v", st)
	}
	if len(st.Keys) != 1 || strings.Contains(st.Keys[0].Preview, "brave-secret") {
		t.Fatalf("keys should be masked: %+v", st.Keys)
	}
	if len(st.Caches) != 3 {
		t.Fatalf("expected 3 caches, got %d", len(st.Caches))
	}
}
