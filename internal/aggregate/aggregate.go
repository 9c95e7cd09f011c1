// Package aggregate merges the matches found by concurrent phrase
// pipelines into one URL-unique set.
package aggregate

import (
	"net/url"
	"sort"
	"strings"

	"github.com/hyperifyio/originality/internal/score"
)

var trackingParams = []string{"utm_source", "utm_medium", "utm_campaign", "utm_term", "utm_content", "utm_id", "gclid", "fbclid", "mc_cid", "mc_eid"}

// Canonical returns a normalized form of rawURL used as the dedup key:
// no fragment, lower-case host without www. or default port, no tracking
// parameters and no trailing slash. Unparseable input is returned trimmed.
func Canonical(rawURL string) string {
	raw := strings.TrimSpace(rawURL)
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return raw
	}
	normalizeURL(u)
	return u.String()
}

// MergeMatches flattens per-phrase match groups, canonicalizes URLs and keeps
// the strongest match per URL. The result is sorted by descending
// similarity, then URL, so the output does not depend on goroutine order.
func MergeMatches(groups [][]score.Match) []score.Match {
	var all []score.Match
	for _, g := range groups {
		for _, m := range g {
			if m.URL == "" {
				continue
			}
			m.URL = Canonical(m.URL)
			all = append(all, m)
		}
	}
	sort.SliceStable(all, func(i, j int) bool {
		if all[i].Similarity != all[j].Similarity {
			return all[i].Similarity > all[j].Similarity
		}
		if all[i].URL != all[j].URL {
			return all[i].URL < all[j].URL
		}
		return all[i].Phrase < all[j].Phrase
	})
	return score.Dedupe(all)
}

func normalizeURL(u *url.URL) {
	u.Fragment = ""
	u.Scheme = strings.ToLower(u.Scheme)
	host := strings.ToLower(u.Hostname())
	port := u.Port()
	if (u.Scheme == "http" && port == "80") || (u.Scheme == "https" && port == "443") {
		port = ""
	}
	host = strings.TrimPrefix(host, "www.")
	if port != "" {
		host += ":" + port
	}
	u.Host = host
	q := u.Query()
	// Remove common tracking params
	for _, p := range trackingParams {
		q.Del(p)
	}
	u.RawQuery = q.Encode()
	if len(u.Path) > 1 {
		u.Path = strings.TrimSuffix(u.Path, "/")
		u.RawPath = ""
	}
}
