package search

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func serve(t *testing.T, status int, contentType, body string, check func(r *http.Request)) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if check != nil {
			check(r)
		}
		if contentType != "" {
			w.Header().Set("Content-Type", contentType)
		}
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestGoogle_SendsKeyAndParses(t *testing.T) {
	srv := serve(t, 200, "application/json", `{"items":[{"title":"T","link":"https://en.wikipedia.org/wiki/X","snippet":"s"}]}`, func(r *http.Request) {
		if r.URL.Query().Get("key") != "k1" || r.URL.Query().Get("cx") != "cx1" {
			t.Errorf("missing credentials: %s", r.URL.RawQuery)
		}
	})
	g := &Google{BaseURL: srv.URL, EngineID: "cx1", HTTPClient: srv.Client()}
	got, err := g.Search(context.Background(), Query{Phrase: "x", Key: "k1"})
	if err != nil || len(got) != 1 || got[0].Domain != "en.wikipedia.org" {
		t.Fatalf("got %+v %v", got, err)
	}
	if _, err := g.Search(context.Background(), Query{Phrase: "x"}); !IsAuth(err) {
		t.Fatalf("missing key should be auth failure, got %v", err)
	}
}

func TestTransportErrorsHideCredentials(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	base := srv.URL
	srv.Close()

	const secret = "SUPERSECRETKEY123"
	providers := []Provider{
		&Google{BaseURL: base, EngineID: "cx", HTTPClient: &http.Client{Timeout: 2 * time.Second}},
		&SearxNG{BaseURL: base, HTTPClient: &http.Client{Timeout: 2 * time.Second}},
	}
	for _, p := range providers {
		_, err := p.Search(context.Background(), Query{Phrase: "steam engines", Key: secret})
		if err == nil {
			t.Fatalf("%s: expected a transport error", p.Name())
		}
		if strings.Contains(err.Error(), secret) {
			t.Fatalf("%s: secret leaked: %v", p.Name(), err)
		}
		if !IsTransient(err) {
			t.Fatalf("%s: refused connection should be transient, got %v", p.Name(), err)
		}
	}
}

func TestBrave_TokenHeader(t *testing.T) {
	srv := serve(t, 200, "application/json", `{"web":{"results":[{"title":"A","url":"https://a.org/x","description":"d"}]}}`, func(r *http.Request) {
		if r.Header.Get("X-Subscription-Token") != "tok" {
			t.Errorf("token header missing")
		}
	})
	b := &Brave{BaseURL: srv.URL, HTTPClient: srv.Client()}
	got, err := b.Search(context.Background(), Query{Phrase: "x", Key: "tok"})
	if err != nil || len(got) != 1 || got[0].Snippet != "d" {
		t.Fatalf("got %+v %v", got, err)
	}
}

func TestWikipedia_OpenSearchArrays(t *testing.T) {
	srv := serve(t, 200, "application/json", `["steam",["Steam engine","Steam"],["",""],["https://en.wikipedia.org/wiki/Steam_engine","https://en.wikipedia.org/wiki/Steam"]]`, nil)
	w := &Wikipedia{BaseURL: srv.URL, HTTPClient: srv.Client()}
	got, err := w.Search(context.Background(), Query{Phrase: "steam", Limit: 1})
	if err != nil || len(got) != 1 || got[0].Title != "Steam engine" {
		t.Fatalf("got %+v %v", got, err)
	}
}

func TestArXiv_AtomFeed(t *testing.T) {
	feed := `<?xml version="1.0"?><feed xmlns="http://www.w3.org/2005/Atom">
<entry><id>http://arxiv.org/abs/1234.5678v1</id><title>Deep
  Learning</title><summary>An abstract.</summary>
<link href="http://arxiv.org/abs/1234.5678v1" rel="alternate" type="text/html"/></entry></feed>`
	srv := serve(t, 200, "application/atom+xml", feed, nil)
	a := &ArXiv{BaseURL: srv.URL, HTTPClient: srv.Client()}
	got, err := a.Search(context.Background(), Query{Phrase: "deep learning"})
	if err != nil || len(got) != 1 || got[0].Title != "Deep Learning" || got[0].Domain != "arxiv.org" {
		t.Fatalf("got %+v %v", got, err)
	}
}

func TestCrossRef_StripsJATS(t *testing.T) {
	srv := serve(t, 200, "application/json", `{"message":{"items":[{"title":["Paper"],"URL":"https://doi.org/10.1/x","abstract":"<jats:p>Text</jats:p>"},{"title":[],"URL":"https://doi.org/10.1/y"}]}}`, nil)
	c := &CrossRef{BaseURL: srv.URL, HTTPClient: srv.Client()}
	got, err := c.Search(context.Background(), Query{Phrase: "x"})
	if err != nil || len(got) != 1 || got[0].Snippet != "Text" {
		t.Fatalf("got %+v %v", got, err)
	}
}

func TestPubMed_SearchThenSummary(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch {
		case strings.HasSuffix(r.URL.Path, "/esearch.fcgi"):
			_, _ = w.Write([]byte(`{"esearchresult":{"idlist":["111"]}}`))
		case strings.HasSuffix(r.URL.Path, "/esummary.fcgi"):
			_, _ = w.Write([]byte(`{"result":{"uids":["111"],"111":{"title":"Cell biology","fulljournalname":"Nature"}}}`))
		default:
			w.WriteHeader(404)
		}
	}))
	defer srv.Close()
	p := &PubMed{BaseURL: srv.URL, HTTPClient: srv.Client()}
	got, err := p.Search(context.Background(), Query{Phrase: "cell"})
	if err != nil || len(got) != 1 || got[0].URL != "https://pubmed.ncbi.nlm.nih.gov/111/" {
		t.Fatalf("got %+v %v", got, err)
	}
}

func TestOpenAlexEuropePMCDOAJArchive(t *testing.T) {
	ctx := context.Background()
	oa := serve(t, 200, "application/json", `{"results":[{"id":"https://openalex.org/W1","display_name":"Work","doi":"https://doi.org/10.1/z","primary_location":{"landing_page_url":""}}]}`, nil)
	if got, err := (&OpenAlex{BaseURL: oa.URL, HTTPClient: oa.Client()}).Search(ctx, Query{Phrase: "x"}); err != nil || len(got) != 1 || got[0].URL != "https://doi.org/10.1/z" {
		t.Fatalf("openalex %+v %v", got, err)
	}
	ep := serve(t, 200, "application/json", `{"resultList":{"result":[{"id":"123","source":"MED","title":"Trial"}]}}`, nil)
	if got, err := (&EuropePMC{BaseURL: ep.URL, HTTPClient: ep.Client()}).Search(ctx, Query{Phrase: "x"}); err != nil || len(got) != 1 || got[0].URL != "https://europepmc.org/article/MED/123" {
		t.Fatalf("europepmc %+v %v", got, err)
	}
	dj := serve(t, 200, "application/json", `{"results":[{"bibjson":{"title":"OA","link":[{"url":"https://journal.org/a","type":"fulltext"}]}}]}`, nil)
	if got, err := (&DOAJ{BaseURL: dj.URL, HTTPClient: dj.Client()}).Search(ctx, Query{Phrase: "x"}); err != nil || len(got) != 1 || got[0].Domain != "journal.org" {
		t.Fatalf("doaj %+v %v", got, err)
	}
	ar := serve(t, 200, "application/json", `{"response":{"docs":[{"identifier":"book1","title":"Old Book","description":["a","b"]}]}}`, nil)
	if got, err := (&Archive{BaseURL: ar.URL, HTTPClient: ar.Client()}).Search(ctx, Query{Phrase: "x"}); err != nil || len(got) != 1 || got[0].Snippet != "a b" {
		t.Fatalf("archive %+v %v", got, err)
	}
}

func TestFileProvider_MatchesPhraseList(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "hits.json")
	data := `[{"title":"A","url":"https://a.org","snippet":"about steam engines"},{"title":"B","url":"https://b.org","snippet":"x","phrases":["Factory Act"]},{"title":"C","url":"https://c.org","snippet":"y","phrases":["*"]}]`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}
	f := &FileProvider{Path: path}
	got, err := f.Search(context.Background(), Query{Phrase: "factory act"})
	if err != nil || len(got) != 2 || got[0].URL != "https://b.org" || got[1].URL != "https://c.org" {
		t.Fatalf("got %+v %v", got, err)
	}
	if _, err := (&FileProvider{}).Search(context.Background(), Query{Phrase: "x"}); err == nil {
		t.Fatalf("expected error for empty path")
	}
}

func TestStatusClassification(t *testing.T) {
	ctx := context.Background()
	cases := []struct {
		status int
		header string
		kind   Kind
		hint   time.Duration
	}{
		{429, "7", KindTransient, 7 * time.Second},
		{503, "", KindTransient, 0},
		{401, "", KindAuth, 0},
		{403, "", KindAuth, 0},
		{400, "", KindAuth, 0},
		{418, "", KindFatal, 0},
	}
	for _, c := range cases {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if c.header != "" {
				w.Header().Set("Retry-After", c.header)
			}
			w.WriteHeader(c.status)
		}))
		_, err := (&Brave{BaseURL: srv.URL, HTTPClient: srv.Client()}).Search(ctx, Query{Phrase: "x", Key: "k"})
		srv.Close()
		var pe *Error
		if !errors.As(err, &pe) || pe.Kind != c.kind || pe.Status != c.status || RetryAfter(err) != c.hint {
			t.Fatalf("status %d: got %v", c.status, err)
		}
	}
}

func TestNotFoundIsEmptyNotError(t *testing.T) {
	srv := serve(t, 404, "", "", nil)
	got, err := (&CrossRef{BaseURL: srv.URL, HTTPClient: srv.Client()}).Search(context.Background(), Query{Phrase: "x"})
	if err != nil || len(got) != 0 {
		t.Fatalf("got %+v %v", got, err)
	}
}

func TestParseRetryAfter_HTTPDate(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	if d := parseRetryAfter(now.Add(90*time.Second).Format(http.TimeFormat), now); d != 90*time.Second {
		t.Fatalf("got %v", d)
	}
	if d := parseRetryAfter("garbage", now); d != 0 {
		t.Fatalf("got %v", d)
	}
}

func TestDomainPolicy(t *testing.T) {
	p := DomainPolicy{Denylist: []string{"facebook.com"}}
	if p.Allows("m.facebook.com") || p.Allows("www.facebook.com") || !p.Allows("example.org") {
		t.Fatalf("deny list misapplied")
	}
	p = DomainPolicy{Allowlist: []string{"edu"}, Denylist: []string{"bad.edu"}}
	if !p.Allows("mit.edu") || p.Allows("bad.edu") || p.Allows("example.com") {
		t.Fatalf("allow list misapplied")
	}
}
