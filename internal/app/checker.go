// Package app wires the plagiarism engine together. Checker owns the
// provider roster and caches and runs one check end to end.
package app

import (
	"context"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/hyperifyio/originality/internal/cache"
	"github.com/hyperifyio/originality/internal/fetch"
	"github.com/hyperifyio/originality/internal/keypool"
	"github.com/hyperifyio/originality/internal/metrics"
	"github.com/hyperifyio/originality/internal/phrase"
	"github.com/hyperifyio/originality/internal/report"
	"github.com/hyperifyio/originality/internal/robots"
	"github.com/hyperifyio/originality/internal/search"
	"github.com/hyperifyio/originality/internal/semantic"
)

// Checker runs plagiarism checks. It is safe for concurrent use; the key
// pool, caches and provider state are shared across checks.
type Checker struct {
	cfg       Config
	pool      *keypool.Pool
	orch      *search.Orchestrator
	fetcher   *fetch.ContentFetcher
	extractor phrase.Extractor
	semantic  *semantic.Scorer
	metrics   *metrics.Metrics

	reports *cache.Store[report.Report]
	phrases *cache.Store[[]search.Result]
	pages   *cache.PageCache

	now func() time.Time
}

// Option customizes a Checker.
type Option func(*options)

type options struct {
	backends   []search.Backend
	httpClient *http.Client
	metrics    *metrics.Metrics
	sleep      func(context.Context, time.Duration) error
	now        func() time.Time
}

// WithBackends replaces the configured provider roster.
func WithBackends(b ...search.Backend) Option {
	return func(o *options) { o.backends = b }
}

// WithHTTPClient sets the client used for providers, pages and embeddings.
func WithHTTPClient(hc *http.Client) Option {
	return func(o *options) { o.httpClient = hc }
}

// WithMetrics records to m instead of a private registry.
func WithMetrics(m *metrics.Metrics) Option {
	return func(o *options) { o.metrics = m }
}

// WithSleep replaces the retry backoff wait.
func WithSleep(fn func(context.Context, time.Duration) error) Option {
	return func(o *options) { o.sleep = fn }
}

// WithClock sets the time source.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// New validates cfg and builds a Checker.
func New(cfg Config, opts ...Option) (*Checker, error) {
	if err := ValidateConfig(cfg); err != nil {
		return nil, err
	}
	var o options
	for _, fn := range opts {
		fn(&o)
	}
	if o.httpClient == nil {
		o.httpClient = newHighThroughputHTTPClient(!cfg.InsecureTLS)
	}
	if o.metrics == nil {
		o.metrics = metrics.New()
	}
	if o.now == nil {
		o.now = time.Now
	}
	m := o.metrics

	c := &Checker{
		cfg:       cfg,
		extractor: phrase.Extractor{Multiplier: cfg.PhraseMultiplier},
		metrics:   m,
		now:       o.now,
	}
	c.pool = keypool.New(cfg.KeyCooldown, keypool.WithClock(o.now), keypool.WithRetireHook(m.KeyRetired))
	c.reports = cache.NewStore[report.Report]("report", cfg.CacheSize, cfg.CacheTTL, m.CacheLookup)
	c.phrases = cache.NewStore[[]search.Result]("phrase", cfg.PhraseCacheSize, cfg.PhraseCacheTTL, m.CacheLookup)
	c.pages = cache.NewPageCache(cfg.PageCacheSize, cfg.PageCacheTTL, m.CacheLookup)

	backends := o.backends
	if backends == nil {
		backends = buildBackends(cfg, o.httpClient, c.pool)
	}
	c.orch = search.NewOrchestrator(c.pool, backends, search.Options{
		Concurrency: cfg.SearchConcurrency,
		RetryBudget: cfg.RetryBudget,
		BaseDelay:   cfg.BaseDelay,
		MaxDelay:    cfg.MaxDelay,
		Policy:      search.DomainPolicy{Allowlist: cfg.DomainAllowlist, Denylist: cfg.DomainDenylist},
		Cache:       c.phrases,
		Metrics:     m,
		Sleep:       o.sleep,
	})
	c.fetcher = &fetch.ContentFetcher{
		Client:  &fetch.Client{HTTPClient: o.httpClient, MaxAttempts: 1, MaxConcurrent: cfg.FetchConcurrency},
		Cache:   c.pages,
		Metrics: m,
		Now:     o.now,
	}
	if cfg.RespectRobots {
		c.fetcher.Robots = robots.NewManager(o.httpClient, cfg.UserAgent, cfg.PageCacheTTL)
	}
	if cfg.EmbeddingsBaseURL != "" || cfg.EmbeddingsAPIKey != "" {
		c.semantic = semantic.NewOpenAI(cfg.EmbeddingsBaseURL, cfg.EmbeddingsAPIKey, cfg.EmbeddingsModel, o.httpClient)
	}
	log.Debug().Int("providers", len(backends)).Bool("semantic", c.semantic != nil).Msg("checker ready")
	return c, nil
}

// Metrics returns the collectors the checker records to.
func (c *Checker) Metrics() *metrics.Metrics { return c.metrics }

// ClearCache drops cached reports, phrase results and pages.
func (c *Checker) ClearCache() {
	c.reports.Purge()
	c.phrases.Purge()
	c.pages.Purge()
	log.Info().Msg("caches cleared")
}

// Status is a health snapshot of the checker.
type Status struct {
	Keys      []keypool.KeyStatus     `json:"keys"`
	Providers []search.ProviderStatus `json:"providers"`
	Caches    []cache.Stats           `json:"caches"`
	Semantic  bool                    `json:"semantic"`
	Build     BuildInfo               `json:"build"`
}

// Status reports key-pool health, provider breaker states and cache hit rates.
func (c *Checker) Status() Status {
	return Status{
		Keys:      c.pool.Snapshot(),
		Providers: c.orch.Providers(),
		Caches:    []cache.Stats{c.reports.Stats(), c.phrases.Stats(), c.pages.Stats()},
		Semantic:  c.semantic != nil,
		Build:     buildInfo(),
	}
}
