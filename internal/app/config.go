package app

import "time"

// Config holds runtime configuration for the checker.
type Config struct {
	// Search providers
	GoogleKeys     []string
	GoogleEngineID string
	BraveKeys      []string
	SearxURL       string
	SearxKey       string
	FileSearchPath string
	// Providers limits the roster to the named providers; empty keeps all.
	Providers       []string
	Mailto          string
	UserAgent       string
	DomainAllowlist []string
	DomainDenylist  []string

	// Semantic second pass
	EmbeddingsBaseURL string
	EmbeddingsModel   string
	EmbeddingsAPIKey  string

	// Pipeline
	PhraseMultiplier    float64
	SearchConcurrency   int
	FetchConcurrency    int
	MaxSourcesPerPhrase int
	PerDomainCap        int
	BatchSize           int
	RequestTimeout      time.Duration
	KeyCooldown         time.Duration
	RetryBudget         int
	BaseDelay           time.Duration
	MaxDelay            time.Duration

	// Caches
	CacheTTL        time.Duration
	CacheSize       int
	PageCacheTTL    time.Duration
	PageCacheSize   int
	PhraseCacheTTL  time.Duration
	PhraseCacheSize int

	// Transport
	InsecureTLS bool
	// RespectRobots refuses source pages disallowed by robots.txt.
	RespectRobots bool

	Verbose bool
}

// DefaultConfig returns the baseline configuration.
func DefaultConfig() Config {
	return Config{
		PhraseMultiplier:    1.5,
		SearchConcurrency:   6,
		FetchConcurrency:    10,
		MaxSourcesPerPhrase: 6,
		PerDomainCap:        2,
		BatchSize:           2,
		RequestTimeout:      120 * time.Second,
		KeyCooldown:         24 * time.Hour,
		RetryBudget:         5,
		BaseDelay:           time.Second,
		MaxDelay:            30 * time.Second,
		CacheTTL:            2 * time.Hour,
		CacheSize:           1000,
		PageCacheTTL:        30 * time.Minute,
		PageCacheSize:       500,
		PhraseCacheTTL:      24 * time.Hour,
		PhraseCacheSize:     1000,
		UserAgent:           "originality/1.0 (+https://github.com/hyperifyio/originality)",
	}
}
