// Package search queries external content-discovery backends for exact
// phrases and returns their hits in one uniform shape.
package search

import (
	"context"
	"net/url"
	"strings"
)

// Result represents a single search hit from any provider.
type Result struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Snippet string `json:"snippet"`
	Domain  string `json:"domain"`
	Source  string `json:"source"` // provider name for observability
}

// Query is one exact-phrase lookup. Key is empty for providers that do
// not need a credential.
type Query struct {
	Phrase string
	Limit  int
	Key    string
}

// Provider is a minimal interface for search providers. Implementations
// return an empty slice and nil error when nothing matched, and an *Error
// classifying any failure.
type Provider interface {
	Search(ctx context.Context, q Query) ([]Result, error)
	Name() string
}

// DomainPolicy allows the orchestrator to filter results by host.
// Denylist takes precedence over Allowlist. Entries match the host itself
// and any subdomain.
type DomainPolicy struct {
	Allowlist []string
	Denylist  []string
}

// Allows reports whether host passes the policy.
func (p DomainPolicy) Allows(host string) bool {
	host = strings.ToLower(strings.TrimPrefix(host, "www."))
	for _, d := range p.Denylist {
		if hostMatches(host, d) {
			return false
		}
	}
	if len(p.Allowlist) == 0 {
		return true
	}
	for _, a := range p.Allowlist {
		if hostMatches(host, a) {
			return true
		}
	}
	return false
}

func hostMatches(host, pattern string) bool {
	pattern = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(pattern), "www."))
	if pattern == "" {
		return false
	}
	return host == pattern || strings.HasSuffix(host, "."+pattern)
}

// Quote wraps a phrase for exact matching.
func Quote(phrase string) string {
	return `"` + strings.Trim(strings.TrimSpace(phrase), `"`) + `"`
}

// HostOf returns the lowercase host of rawURL without a leading "www.".
func HostOf(rawURL string) string {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return ""
	}
	return strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
}

// newResult trims fields and fills Domain and Source.
func newResult(provider, title, link, snippet string) (Result, bool) {
	link = strings.TrimSpace(link)
	title = strings.TrimSpace(title)
	if link == "" || title == "" {
		return Result{}, false
	}
	host := HostOf(link)
	if host == "" {
		return Result{}, false
	}
	return Result{
		Title:   title,
		URL:     link,
		Snippet: strings.TrimSpace(snippet),
		Domain:  host,
		Source:  provider,
	}, true
}

func limitOr(limit, def int) int {
	if limit <= 0 {
		return def
	}
	return limit
}
