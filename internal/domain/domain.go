// Package domain holds the host-based heuristics used across the checker:
// authority weights, fetch budgets, skip lists and source typing.
package domain

import (
	"net/url"
	"strings"
	"time"
)

// Authority weights.
const (
	AuthorityHigh    = 0.9
	AuthorityMedHigh = 0.7
	AuthorityMedium  = 0.6
	AuthorityDefault = 0.4
)

// Fetch budgets per domain tier.
const (
	TimeoutHigh     = 8 * time.Second
	TimeoutMedium   = 6 * time.Second
	TimeoutLow      = 3 * time.Second
	MaxBytesHigh    = 3_000_000
	MaxBytesDefault = 1_500_000
)

// Source types reported per match.
const (
	TypeWikipedia     = "wikipedia"
	TypeAcademic      = "academic"
	TypeInstitutional = "institutional"
	TypeWeb           = "web"
)

var (
	highAuthority    = rules{tlds: []string{"edu", "gov"}, domains: []string{"wikipedia.org", "arxiv.org", "nature.com", "science.org"}}
	medHighAuthority = rules{tlds: []string{"org"}, domains: []string{"researchgate.net", "academia.edu", "jstor.org", "britannica.com"}}
	mediumAuthority  = rules{labels: []string{"ac"}, domains: []string{"reuters.com", "bbc.com", "bbc.co.uk", "springer.com"}}

	highValue   = rules{tlds: []string{"edu", "gov"}, domains: []string{"wikipedia.org", "britannica.com", "arxiv.org", "nature.com"}}
	slowHigh    = rules{tlds: []string{"edu", "gov"}, domains: []string{"wikipedia.org"}, keywords: []string{"pubmed"}}
	slowMedium  = rules{tlds: []string{"org"}, domains: []string{"nature.com", "sciencedirect.com"}}
	skipDomains = rules{domains: []string{"facebook.com", "instagram.com", "twitter.com", "x.com", "linkedin.com", "pinterest.com"}, keywords: []string{"tripadvisor."}}

	fetchHigh    = rules{domains: []string{"wikipedia.org", "britannica.com", "archive.org", "jstor.org", "scholar.google.com", "researchgate.net", "academia.edu", "arxiv.org", "nature.com", "science.org"}}
	fetchMedium  = rules{tlds: []string{"edu", "org", "gov"}, domains: []string{"medium.com", "reddit.com", "quora.com", "stackexchange.com"}, labels: []string{"ac"}}
	fetchDemoted = rules{domains: []string{"instagram.com", "twitter.com", "x.com", "facebook.com", "youtube.com", "tiktok.com", "pinterest.com"}}

	priorityAuthority = rules{
		tlds:     []string{"edu", "gov", "org"},
		labels:   []string{"ac"},
		keywords: []string{"wikipedia", "arxiv", "researchgate", "academia", "scholar.google", "jstor", "springer", "elsevier", "wiley", "nature", "science", "britannica", "archive.org"},
	}
	academicTypes = rules{keywords: []string{"arxiv", "scholar", "researchgate", "pubmed", "europepmc", "doi.org", "openalex", "doaj", "jstor"}}
)

// rules match a host by top-level domain, by registered domain (and its
// subdomains), by an inner label such as "ac" in "ox.ac.uk", or by a
// plain substring.
type rules struct {
	tlds     []string
	domains  []string
	labels   []string
	keywords []string
}

func (r rules) match(host string) bool {
	if host == "" {
		return false
	}
	labels := strings.Split(host, ".")
	tld := labels[len(labels)-1]
	for _, t := range r.tlds {
		if tld == t {
			return true
		}
	}
	for _, d := range r.domains {
		if host == d || strings.HasSuffix(host, "."+d) {
			return true
		}
	}
	for _, l := range r.labels {
		for _, hl := range labels[:len(labels)-1] {
			if hl == l {
				return true
			}
		}
	}
	for _, k := range r.keywords {
		if strings.Contains(host, k) {
			return true
		}
	}
	return false
}

// Host returns the lowercase hostname of rawURL without "www.".
func Host(rawURL string) string {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return ""
	}
	return strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
}

// Authority returns the trust weight of the URL's domain.
func Authority(rawURL string) float64 {
	h := Host(rawURL)
	switch {
	case highAuthority.match(h):
		return AuthorityHigh
	case medHighAuthority.match(h):
		return AuthorityMedHigh
	case mediumAuthority.match(h):
		return AuthorityMedium
	}
	return AuthorityDefault
}

// IsHighValue reports whether the domain earns the larger response cap.
func IsHighValue(rawURL string) bool { return highValue.match(Host(rawURL)) }

// MaxBytes returns the response size cap for the URL.
func MaxBytes(rawURL string) int64 {
	if IsHighValue(rawURL) {
		return MaxBytesHigh
	}
	return MaxBytesDefault
}

// FetchTimeout returns the per-request timeout for the URL.
func FetchTimeout(rawURL string) time.Duration {
	h := Host(rawURL)
	switch {
	case slowHigh.match(h):
		return TimeoutHigh
	case slowMedium.match(h):
		return TimeoutMedium
	}
	return TimeoutLow
}

// ShouldSkip reports whether the URL belongs to a social or otherwise
// unfetchable domain.
func ShouldSkip(rawURL string) bool { return skipDomains.match(Host(rawURL)) }

// SkipList returns the registered skip domains, for building search
// deny lists.
func SkipList() []string {
	return append([]string(nil), skipDomains.domains...)
}

// FetchPriority ranks how likely a fetch is to yield usable text.
func FetchPriority(rawURL string) int {
	h := Host(rawURL)
	p := 1
	switch {
	case fetchHigh.match(h):
		p += 3
	case fetchMedium.match(h):
		p += 2
	}
	if fetchDemoted.match(h) {
		p -= 2
	}
	return p
}

// SourceType classifies the URL for reporting.
func SourceType(rawURL string) string {
	h := Host(rawURL)
	switch {
	case strings.Contains(h, "wikipedia"):
		return TypeWikipedia
	case academicTypes.match(h):
		return TypeAcademic
	case rules{tlds: []string{"edu", "gov", "org"}}.match(h):
		return TypeInstitutional
	}
	return TypeWeb
}

// Priority estimates how likely the page is the original source of the
// copied text. It combines domain authority, page length relative to the
// input, URL path depth and similarity band, capped at 1.
func Priority(rawURL string, pageLen, inputLen int, similarity float64) float64 {
	score := 0.0
	if priorityAuthority.match(Host(rawURL)) {
		score += 0.35
	}
	if inputLen > 0 {
		switch ratio := float64(pageLen) / float64(inputLen); {
		case ratio > 3:
			score += 0.25
		case ratio > 2:
			score += 0.2
		case ratio > 1.5:
			score += 0.15
		case ratio > 1:
			score += 0.1
		}
	}
	switch depth := pathDepth(rawURL); {
	case depth <= 1:
		score += 0.15
	case depth <= 3:
		score += 0.1
	case depth <= 5:
		score += 0.05
	}
	switch {
	case similarity > 0.8:
		score += 0.25
	case similarity > 0.6:
		score += 0.2
	case similarity > 0.4:
		score += 0.15
	case similarity > 0.2:
		score += 0.1
	}
	if score > 1 {
		score = 1
	}
	return score
}

// LikelyOriginalThreshold is the priority above which a match is flagged
// as the likely original.
const LikelyOriginalThreshold = 0.75

func pathDepth(rawURL string) int {
	u, err := url.Parse(rawURL)
	if err != nil {
		return 0
	}
	return strings.Count(u.EscapedPath(), "/")
}
