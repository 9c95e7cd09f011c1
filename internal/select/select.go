// Package selecter picks which search hits of one phrase are worth fetching.
package selecter

import (
	"sort"
	"strings"

	"github.com/hyperifyio/originality/internal/aggregate"
	"github.com/hyperifyio/originality/internal/domain"
	"github.com/hyperifyio/originality/internal/search"
)

// Defaults for Options.
const (
	DefaultMaxTotal  = 6
	DefaultPerDomain = 2
)

// Options configures selection constraints.
type Options struct {
	MaxTotal  int
	PerDomain int
	// MinSnippetChars drops results whose snippet has fewer than this many
	// non-whitespace characters. Zero disables low-signal filtering.
	MinSnippetChars int
	// Seen reports whether a canonical URL was already claimed elsewhere in
	// the request. It is called only for hits that pass every other filter,
	// so it may claim the URL as a side effect. Nil disables the check.
	Seen func(canonical string) bool
}

// Select orders hits by fetch priority, drops skip-listed domains and
// duplicate URLs, and applies per-domain and total caps.
func Select(results []search.Result, opt Options) []search.Result {
	if opt.MaxTotal <= 0 {
		opt.MaxTotal = DefaultMaxTotal
	}
	if opt.PerDomain <= 0 {
		opt.PerDomain = DefaultPerDomain
	}
	domainCounts := map[string]int{}
	seenURL := map[string]struct{}{}

	// Stable so providers' own ranking breaks ties.
	sorted := make([]search.Result, len(results))
	copy(sorted, results)
	sort.SliceStable(sorted, func(i, j int) bool {
		return domain.FetchPriority(sorted[i].URL) > domain.FetchPriority(sorted[j].URL)
	})

	out := make([]search.Result, 0, opt.MaxTotal)
	for _, r := range sorted {
		if opt.MinSnippetChars > 0 && len(strings.TrimSpace(r.Snippet)) < opt.MinSnippetChars {
			continue
		}
		host := domain.Host(r.URL)
		if host == "" || domain.ShouldSkip(r.URL) {
			continue
		}
		canon := aggregate.Canonical(r.URL)
		if _, ok := seenURL[canon]; ok {
			continue
		}
		if domainCounts[host] >= opt.PerDomain {
			continue
		}
		if opt.Seen != nil && opt.Seen(canon) {
			continue
		}
		seenURL[canon] = struct{}{}
		domainCounts[host]++
		out = append(out, r)
		if len(out) >= opt.MaxTotal {
			break
		}
	}
	return out
}

// Batches splits hits into consecutive groups of size n.
func Batches(hits []search.Result, n int) [][]search.Result {
	if n <= 0 {
		n = 1
	}
	var out [][]search.Result
	for start := 0; start < len(hits); start += n {
		end := start + n
		if end > len(hits) {
			end = len(hits)
		}
		out = append(out, hits[start:end])
	}
	return out
}
