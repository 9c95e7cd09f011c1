// Package keypool tracks search credentials per provider, hands out the
// least-used active key and retires failing keys for a cooldown window.
package keypool

import (
	"errors"
	"math/rand"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// DefaultCooldown is how long a retired key stays out of rotation.
const DefaultCooldown = 24 * time.Hour

// ErrNoActiveKey is returned when every key of a provider is retired.
var ErrNoActiveKey = errors.New("no active key")

// Status of a key.
type Status string

const (
	StatusActive    Status = "active"
	StatusExhausted Status = "exhausted"
)

// Key is a copy of one credential's state at the time it was issued.
type Key struct {
	Secret        string
	Provider      string
	Usage         int64
	Status        Status
	CooldownUntil time.Time
}

// KeyStatus is the masked form of a Key reported by Snapshot.
type KeyStatus struct {
	Provider      string    `json:"provider"`
	Preview       string    `json:"keyPreview"`
	Usage         int64     `json:"usage"`
	Status        Status    `json:"status"`
	CooldownUntil time.Time `json:"cooldownUntil,omitempty"`
}

// Pool is safe for concurrent use.
type Pool struct {
	mu       sync.Mutex
	keys     map[string][]*Key
	cooldown time.Duration
	now      func() time.Time
	rng      *rand.Rand
	onRetire func(provider string)
}

// Option configures a Pool.
type Option func(*Pool)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option { return func(p *Pool) { p.now = now } }

// WithRand replaces the random source used by Order.
func WithRand(r *rand.Rand) Option { return func(p *Pool) { p.rng = r } }

// WithRetireHook is called, outside the lock, whenever a key is retired.
func WithRetireHook(fn func(provider string)) Option { return func(p *Pool) { p.onRetire = fn } }

// New returns an empty pool. A non-positive cooldown uses DefaultCooldown.
func New(cooldown time.Duration, opts ...Option) *Pool {
	if cooldown <= 0 {
		cooldown = DefaultCooldown
	}
	p := &Pool{
		keys:     make(map[string][]*Key),
		cooldown: cooldown,
		now:      time.Now,
		rng:      rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	for _, o := range opts {
		o(p)
	}
	return p
}

// Add registers secrets for provider. Empty and duplicate secrets are ignored.
func (p *Pool) Add(provider string, secrets ...string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, s := range secrets {
		if s == "" || p.find(provider, s) != nil {
			continue
		}
		p.keys[provider] = append(p.keys[provider], &Key{Secret: s, Provider: provider, Status: StatusActive})
	}
}

// Keyed reports whether provider has any registered keys.
func (p *Pool) Keyed(provider string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.keys[provider]) > 0
}

// Acquire issues the least-used active key of provider and increments its
// usage. Keys whose cooldown has elapsed are reactivated first. Ties go to
// the key registered first.
func (p *Pool) Acquire(provider string) (Key, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	now := p.now()
	var best *Key
	for _, k := range p.keys[provider] {
		if !reactivate(k, now) {
			continue
		}
		if best == nil || k.Usage < best.Usage {
			best = k
		}
	}
	if best == nil {
		return Key{}, ErrNoActiveKey
	}
	best.Usage++
	return *best, nil
}

// Retire marks the key exhausted until the cooldown elapses.
func (p *Pool) Retire(provider, secret string) {
	p.mu.Lock()
	k := p.find(provider, secret)
	retired := k != nil && k.Status == StatusActive
	if retired {
		k.Status = StatusExhausted
		k.CooldownUntil = p.now().Add(p.cooldown)
	}
	p.mu.Unlock()
	if !retired {
		return
	}
	log.Warn().Str("provider", provider).Str("key", mask(secret)).Dur("cooldown", p.cooldown).Msg("key retired")
	if p.onRetire != nil {
		p.onRetire(provider)
	}
}

// Active returns the number of selectable keys of provider.
func (p *Pool) Active(provider string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	now := p.now()
	n := 0
	for _, k := range p.keys[provider] {
		if reactivate(k, now) {
			n++
		}
	}
	return n
}

// reactivate returns an exhausted key whose cooldown has elapsed to
// service and reports whether k is active. Callers hold p.mu.
func reactivate(k *Key, now time.Time) bool {
	if k.Status == StatusExhausted && !now.Before(k.CooldownUntil) {
		k.Status = StatusActive
		k.CooldownUntil = time.Time{}
		log.Info().Str("provider", k.Provider).Str("key", mask(k.Secret)).Msg("key reactivated after cooldown")
	}
	return k.Status == StatusActive
}

// Snapshot returns every key with its secret masked, ordered by provider.
func (p *Pool) Snapshot() []KeyStatus {
	p.mu.Lock()
	defer p.mu.Unlock()
	providers := make([]string, 0, len(p.keys))
	for name := range p.keys {
		providers = append(providers, name)
	}
	sort.Strings(providers)
	now := p.now()
	var out []KeyStatus
	for _, name := range providers {
		for _, k := range p.keys[name] {
			reactivate(k, now)
			out = append(out, KeyStatus{
				Provider:      name,
				Preview:       mask(k.Secret),
				Usage:         k.Usage,
				Status:        k.Status,
				CooldownUntil: k.CooldownUntil,
			})
		}
	}
	return out
}

// Order returns the named providers in weighted-random order without
// replacement. Providers with a non-positive weight keep their relative
// order after all weighted ones.
func (p *Pool) Order(weights []Weighted) []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	pending := make([]Weighted, 0, len(weights))
	var tail []string
	for _, w := range weights {
		if w.Weight > 0 {
			pending = append(pending, w)
		} else {
			tail = append(tail, w.Name)
		}
	}
	out := make([]string, 0, len(weights))
	for len(pending) > 0 {
		total := 0.0
		for _, w := range pending {
			total += w.Weight
		}
		r := p.rng.Float64() * total
		idx := len(pending) - 1
		for i, w := range pending {
			if r < w.Weight {
				idx = i
				break
			}
			r -= w.Weight
		}
		out = append(out, pending[idx].Name)
		pending = append(pending[:idx], pending[idx+1:]...)
	}
	return append(out, tail...)
}

// Weighted pairs a provider name with its selection weight.
type Weighted struct {
	Name   string
	Weight float64
}

func (p *Pool) find(provider, secret string) *Key {
	for _, k := range p.keys[provider] {
		if k.Secret == secret {
			return k
		}
	}
	return nil
}

func mask(secret string) string {
	if len(secret) <= 4 {
		return "****"
	}
	return "****" + secret[len(secret)-4:]
}
