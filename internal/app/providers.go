package app

import (
	"net/http"
	"strings"
	"time"

	"github.com/hyperifyio/originality/internal/keypool"
	"github.com/hyperifyio/originality/internal/search"
)

// Provider weights and minimum request intervals.
var (
	primaryWeights = map[string]float64{"google": 35, "brave": 25, "searxng": 20, "arxiv": 15, "crossref": 10, "pubmed": 10, "archive": 5}
	academicWeight = map[string]float64{"openalex": 50, "doaj": 25, "europepmc": 15}
	minIntervals   = map[string]time.Duration{"google": 200 * time.Millisecond, "brave": time.Second, "openalex": 100 * time.Millisecond, "europepmc": 200 * time.Millisecond, "doaj": 500 * time.Millisecond}
)

const defaultMinInterval = 300 * time.Millisecond

// buildBackends assembles the provider roster from cfg and registers keys
// with pool. When cfg.Providers is non-empty only the named providers are
// kept.
func buildBackends(cfg Config, hc *http.Client, pool *keypool.Pool) []search.Backend {
	ua := cfg.UserAgent
	var out []search.Backend
	add := func(p search.Provider, tier search.Tier, weight float64, keyed bool) {
		name := p.Name()
		if !enabled(cfg.Providers, name) {
			return
		}
		interval, ok := minIntervals[name]
		if !ok {
			interval = defaultMinInterval
		}
		if name == "file" {
			interval = 0
		}
		out = append(out, search.Backend{Provider: p, Tier: tier, Weight: weight, MinInterval: interval, Keyed: keyed})
	}

	if len(cfg.GoogleKeys) > 0 && enabled(cfg.Providers, "google") {
		pool.Add("google", cfg.GoogleKeys...)
		add(&search.Google{EngineID: cfg.GoogleEngineID, HTTPClient: hc, UserAgent: ua}, search.TierPrimary, primaryWeights["google"], true)
	}
	if len(cfg.BraveKeys) > 0 && enabled(cfg.Providers, "brave") {
		pool.Add("brave", cfg.BraveKeys...)
		add(&search.Brave{HTTPClient: hc, UserAgent: ua}, search.TierPrimary, primaryWeights["brave"], true)
	}
	if cfg.SearxURL != "" {
		add(&search.SearxNG{BaseURL: cfg.SearxURL, APIKey: cfg.SearxKey, HTTPClient: hc, UserAgent: ua}, search.TierPrimary, primaryWeights["searxng"], false)
	}
	add(&search.ArXiv{HTTPClient: hc, UserAgent: ua}, search.TierPrimary, primaryWeights["arxiv"], false)
	add(&search.CrossRef{Mailto: cfg.Mailto, HTTPClient: hc, UserAgent: ua}, search.TierPrimary, primaryWeights["crossref"], false)
	add(&search.PubMed{HTTPClient: hc, UserAgent: ua}, search.TierPrimary, primaryWeights["pubmed"], false)
	add(&search.Archive{HTTPClient: hc, UserAgent: ua}, search.TierPrimary, primaryWeights["archive"], false)

	add(&search.Wikipedia{HTTPClient: hc, UserAgent: ua}, search.TierEncyclopedic, 1, false)

	add(&search.OpenAlex{Mailto: cfg.Mailto, HTTPClient: hc, UserAgent: ua}, search.TierAcademic, academicWeight["openalex"], false)
	add(&search.DOAJ{HTTPClient: hc, UserAgent: ua}, search.TierAcademic, academicWeight["doaj"], false)
	add(&search.EuropePMC{HTTPClient: hc, UserAgent: ua}, search.TierAcademic, academicWeight["europepmc"], false)

	if cfg.FileSearchPath != "" {
		add(&search.FileProvider{Path: cfg.FileSearchPath}, search.TierOffline, 1, false)
	}
	return out
}

func enabled(list []string, name string) bool {
	if len(list) == 0 {
		return true
	}
	for _, n := range list {
		if strings.EqualFold(strings.TrimSpace(n), name) {
			return true
		}
	}
	return false
}
