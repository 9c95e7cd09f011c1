package fetch

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/hyperifyio/originality/internal/cache"
	"github.com/hyperifyio/originality/internal/domain"
	"github.com/hyperifyio/originality/internal/extract"
	"github.com/hyperifyio/originality/internal/metrics"
	"github.com/hyperifyio/originality/internal/text"
)

// Limits applied to extracted page text.
const (
	MaxTextChars = 2000
	MinTextChars = 100
)

var defaultClient = &Client{MaxAttempts: 1}

// Page is the cleaned text of one source URL.
type Page struct {
	URL    string
	Text   string
	Length int
	Cached bool
}

// Gate decides whether a URL may be fetched at all.
type Gate interface {
	Allowed(ctx context.Context, rawURL string) bool
}

// ContentFetcher turns candidate URLs into bounded plain text. Ordinary
// HTTP failures produce a nil page rather than an error.
type ContentFetcher struct {
	Client    *Client
	Cache     *cache.PageCache
	Extractor extract.Extractor
	Metrics   *metrics.Metrics
	// Robots, when set, refuses pages the host disallows.
	Robots Gate
	// MaxChars and MinChars override MaxTextChars and MinTextChars when positive.
	MaxChars int
	MinChars int
	Now      func() time.Time
}

// Fetch returns the page text for rawURL, or nil when the source should be
// skipped. The only errors are context cancellation.
func (f *ContentFetcher) Fetch(ctx context.Context, rawURL string) (*Page, error) {
	if domain.ShouldSkip(rawURL) {
		f.Metrics.Fetch("skipped")
		log.Debug().Str("url", rawURL).Msg("skip low-value domain")
		return nil, nil
	}
	if f.Cache != nil {
		if cp, ok := f.Cache.Lookup(rawURL); ok {
			f.Metrics.Fetch("cached")
			return &Page{URL: rawURL, Text: cp.Text, Length: len(cp.Text), Cached: true}, nil
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if f.Robots != nil && !f.Robots.Allowed(ctx, rawURL) {
		f.Metrics.Fetch("robots")
		log.Debug().Str("url", rawURL).Msg("disallowed by robots.txt")
		return nil, nil
	}

	resp, err := f.client().Get(ctx, rawURL, domain.FetchTimeout(rawURL), domain.MaxBytes(rawURL))
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		var se *StatusError
		if errors.As(err, &se) {
			f.Metrics.Fetch("http_error")
		} else {
			f.Metrics.Fetch("error")
		}
		log.Debug().Err(err).Str("url", rawURL).Msg("fetch failed")
		return nil, nil
	}

	var ex extract.Extractor = extract.PlainText{}
	if !isPlainText(resp.ContentType) {
		ex = f.Extractor
		if ex == nil {
			ex = extract.HeuristicExtractor{}
		}
	}
	body := extract.Flatten(ex.Extract(resp.Body).Text)
	body = text.Prefix(body, f.maxChars())
	if len([]rune(body)) <= f.minChars() {
		f.Metrics.Fetch("too_short")
		log.Debug().Str("url", rawURL).Int("chars", len(body)).Msg("page text too short")
		return nil, nil
	}
	if f.Cache != nil {
		f.Cache.Put(rawURL, body, f.now())
	}
	f.Metrics.Fetch("ok")
	return &Page{URL: rawURL, Text: body, Length: len(body)}, nil
}

func (f *ContentFetcher) client() *Client {
	if f.Client != nil {
		return f.Client
	}
	return defaultClient
}

func (f *ContentFetcher) maxChars() int {
	if f.MaxChars > 0 {
		return f.MaxChars
	}
	return MaxTextChars
}

func (f *ContentFetcher) minChars() int {
	if f.MinChars > 0 {
		return f.MinChars
	}
	return MinTextChars
}

func (f *ContentFetcher) now() time.Time {
	if f.Now != nil {
		return f.Now()
	}
	return time.Now()
}
