package search

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog/log"
	"github.com/sony/gobreaker"
	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"

	"github.com/hyperifyio/originality/internal/cache"
	"github.com/hyperifyio/originality/internal/keypool"
	"github.com/hyperifyio/originality/internal/metrics"
)

// Tier groups providers. Tiers are tried in ascending order; within a
// tier providers are ordered by weighted random choice.
type Tier int

const (
	TierPrimary Tier = iota
	TierEncyclopedic
	TierAcademic
	TierOffline
)

func (t Tier) String() string {
	switch t {
	case TierPrimary:
		return "primary"
	case TierEncyclopedic:
		return "encyclopedic"
	case TierAcademic:
		return "academic"
	case TierOffline:
		return "offline"
	}
	return "unknown"
}

// Backend registers a provider with the orchestrator.
type Backend struct {
	Provider    Provider
	Tier        Tier
	Weight      float64
	MinInterval time.Duration // minimum spacing between requests
	Keyed       bool          // requires a key from the pool
}

// Options tune the orchestrator. Zero values select the defaults noted.
type Options struct {
	MaxResults      int           // hits requested per query; 10
	Concurrency     int           // simultaneous provider calls; 6
	RetryBudget     int           // transient retries per phrase; 5
	BaseDelay       time.Duration // first backoff delay; 1s
	MaxDelay        time.Duration // backoff ceiling; 30s
	BreakerFailures uint32        // consecutive failures that open a breaker; 5
	BreakerTimeout  time.Duration // how long an open breaker rejects calls; 60s
	Policy          DomainPolicy
	Cache           *cache.Store[[]Result]
	Metrics         *metrics.Metrics
	// Sleep waits between retries; tests replace it.
	Sleep func(ctx context.Context, d time.Duration) error
}

// ProviderStatus describes one registered provider.
type ProviderStatus struct {
	Name       string `json:"name"`
	Tier       string `json:"tier"`
	Keyed      bool   `json:"keyed"`
	ActiveKeys int    `json:"activeKeys"`
	Breaker    string `json:"breaker"`
}

type backend struct {
	Backend
	name    string
	breaker *gobreaker.CircuitBreaker
	limiter *rate.Limiter
}

// Orchestrator runs the per-phrase search protocol: key acquisition,
// exact-phrase query, retry with backoff on transient failures, key
// retirement and failover on auth failures, and tiered fallback.
type Orchestrator struct {
	pool     *keypool.Pool
	backends []*backend
	sem      *semaphore.Weighted
	opt      Options
}

// NewOrchestrator wires backends to the key pool.
func NewOrchestrator(pool *keypool.Pool, backends []Backend, opt Options) *Orchestrator {
	if opt.MaxResults <= 0 {
		opt.MaxResults = 10
	}
	if opt.Concurrency <= 0 {
		opt.Concurrency = 6
	}
	if opt.RetryBudget < 0 {
		opt.RetryBudget = 0
	} else if opt.RetryBudget == 0 {
		opt.RetryBudget = 5
	}
	if opt.BaseDelay <= 0 {
		opt.BaseDelay = time.Second
	}
	if opt.MaxDelay <= 0 {
		opt.MaxDelay = 30 * time.Second
	}
	if opt.BreakerFailures == 0 {
		opt.BreakerFailures = 5
	}
	if opt.BreakerTimeout <= 0 {
		opt.BreakerTimeout = time.Minute
	}
	if opt.Sleep == nil {
		opt.Sleep = sleepCtx
	}
	if pool == nil {
		pool = keypool.New(0)
	}
	o := &Orchestrator{pool: pool, sem: semaphore.NewWeighted(int64(opt.Concurrency)), opt: opt}
	for _, b := range backends {
		if b.Provider == nil {
			continue
		}
		o.backends = append(o.backends, o.newBackend(b))
	}
	return o
}

func (o *Orchestrator) newBackend(b Backend) *backend {
	name := b.Provider.Name()
	limit := rate.Inf
	if b.MinInterval > 0 {
		limit = rate.Every(b.MinInterval)
	}
	m := o.opt.Metrics
	failures := o.opt.BreakerFailures
	return &backend{
		Backend: b,
		name:    name,
		limiter: rate.NewLimiter(limit, 1),
		breaker: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        name,
			MaxRequests: 1,
			Timeout:     o.opt.BreakerTimeout,
			ReadyToTrip: func(c gobreaker.Counts) bool {
				return c.ConsecutiveFailures >= failures
			},
			// Only transient and fatal failures count against the provider.
			IsSuccessful: func(err error) bool {
				return err == nil || IsAuth(err) || errors.Is(err, context.Canceled)
			},
			OnStateChange: func(name string, from, to gobreaker.State) {
				log.Warn().Str("provider", name).Str("from", from.String()).Str("to", to.String()).Msg("provider breaker state changed")
				m.BreakerState(name, int(to))
			},
		}),
	}
}

// Search returns hits for phrase from the first provider that yields any.
// An empty result with nil error means every provider came back empty or
// unavailable. A non-nil error means the retry budget ran out or ctx ended.
func (o *Orchestrator) Search(ctx context.Context, phrase string) ([]Result, error) {
	if len(o.backends) == 0 {
		return nil, ErrNoProviders
	}
	key := cache.KeyFrom("phrase", phrase)
	if o.opt.Cache != nil {
		if hits, ok := o.opt.Cache.Get(key); ok {
			return hits, nil
		}
	}
	bo := o.newBackOff()
	retries := 0
	for _, b := range o.attemptOrder() {
		hits, err := o.try(ctx, b, phrase, bo, &retries)
		if err != nil {
			return nil, err
		}
		if len(hits) > 0 {
			if o.opt.Cache != nil {
				o.opt.Cache.Set(key, hits)
			}
			return hits, nil
		}
	}
	log.Debug().Str("phrase", phrase).Msg("no provider returned hits")
	return nil, nil
}

// try runs the attempt loop against one provider. A nil error with no hits
// moves on to the next provider.
func (o *Orchestrator) try(ctx context.Context, b *backend, phrase string, bo *backoff.ExponentialBackOff, retries *int) ([]Result, error) {
	for {
		var k keypool.Key
		if b.Keyed {
			var err error
			k, err = o.pool.Acquire(b.name)
			if err != nil {
				log.Debug().Str("provider", b.name).Msg("no active key; skipping provider")
				o.opt.Metrics.SearchAttempt(b.name, "no_key")
				return nil, nil
			}
		}
		if err := b.limiter.Wait(ctx); err != nil {
			return nil, err
		}
		if err := o.sem.Acquire(ctx, 1); err != nil {
			return nil, err
		}
		v, err := b.breaker.Execute(func() (interface{}, error) {
			return b.Provider.Search(ctx, Query{Phrase: phrase, Limit: o.opt.MaxResults, Key: k.Secret})
		})
		o.sem.Release(1)

		switch {
		case err == nil:
			hits := o.filter(v.([]Result))
			outcome := "ok"
			if len(hits) == 0 {
				outcome = "empty"
			}
			o.opt.Metrics.SearchAttempt(b.name, outcome)
			return hits, nil
		case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
			o.opt.Metrics.SearchAttempt(b.name, "breaker_open")
			return nil, nil
		case ctx.Err() != nil:
			return nil, ctx.Err()
		case IsAuth(err):
			o.opt.Metrics.SearchAttempt(b.name, "auth")
			log.Warn().Err(err).Str("provider", b.name).Msg("auth failure; failing over")
			if !b.Keyed {
				return nil, nil
			}
			o.pool.Retire(b.name, k.Secret)
		case IsTransient(err):
			o.opt.Metrics.SearchAttempt(b.name, "transient")
			if *retries >= o.opt.RetryBudget {
				return nil, fmt.Errorf("%w: %w", ErrRetryBudgetExhausted, err)
			}
			*retries++
			d := o.delay(bo, err)
			log.Debug().Err(err).Str("provider", b.name).Dur("delay", d).Int("retry", *retries).Msg("transient failure; backing off")
			if err := o.opt.Sleep(ctx, d); err != nil {
				return nil, err
			}
		default:
			o.opt.Metrics.SearchAttempt(b.name, "error")
			log.Warn().Err(err).Str("provider", b.name).Msg("provider failed; failing over")
			return nil, nil
		}
	}
}

func (o *Orchestrator) newBackOff() *backoff.ExponentialBackOff {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = o.opt.BaseDelay
	bo.MaxInterval = o.opt.MaxDelay
	bo.Multiplier = 2
	bo.RandomizationFactor = 0.2
	bo.MaxElapsedTime = 0
	bo.Reset()
	return bo
}

// delay is the next backoff step, raised to the provider's retry hint and
// capped at MaxDelay.
func (o *Orchestrator) delay(bo *backoff.ExponentialBackOff, err error) time.Duration {
	d := bo.NextBackOff()
	if hint := RetryAfter(err); hint > d {
		d = hint
	}
	if d > o.opt.MaxDelay || d < 0 {
		d = o.opt.MaxDelay
	}
	return d
}

func (o *Orchestrator) attemptOrder() []*backend {
	byName := make(map[string]*backend, len(o.backends))
	tiers := make(map[Tier][]keypool.Weighted)
	maxTier := TierPrimary
	for _, b := range o.backends {
		byName[b.name] = b
		tiers[b.Tier] = append(tiers[b.Tier], keypool.Weighted{Name: b.name, Weight: b.Weight})
		if b.Tier > maxTier {
			maxTier = b.Tier
		}
	}
	out := make([]*backend, 0, len(o.backends))
	for t := TierPrimary; t <= maxTier; t++ {
		for _, name := range o.pool.Order(tiers[t]) {
			out = append(out, byName[name])
		}
	}
	return out
}

func (o *Orchestrator) filter(in []Result) []Result {
	seen := make(map[string]struct{}, len(in))
	out := make([]Result, 0, len(in))
	for _, r := range in {
		if !o.opt.Policy.Allows(r.Domain) {
			continue
		}
		if _, ok := seen[r.URL]; ok {
			continue
		}
		seen[r.URL] = struct{}{}
		out = append(out, r)
		if len(out) >= o.opt.MaxResults {
			break
		}
	}
	return out
}

// Providers reports every registered provider in registration order.
func (o *Orchestrator) Providers() []ProviderStatus {
	out := make([]ProviderStatus, 0, len(o.backends))
	for _, b := range o.backends {
		st := ProviderStatus{Name: b.name, Tier: b.Tier.String(), Keyed: b.Keyed, Breaker: b.breaker.State().String()}
		if b.Keyed {
			st.ActiveKeys = o.pool.Active(b.name)
		}
		out = append(out, st)
	}
	return out
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
