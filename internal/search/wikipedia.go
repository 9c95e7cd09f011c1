package search

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
)

// Wikipedia uses the MediaWiki opensearch endpoint. It needs no key and
// serves as the encyclopedic fallback.
type Wikipedia struct {
	BaseURL    string // defaults to https://en.wikipedia.org/w/api.php
	HTTPClient *http.Client
	UserAgent  string
}

func (w *Wikipedia) Name() string { return "wikipedia" }

func (w *Wikipedia) Search(ctx context.Context, q Query) ([]Result, error) {
	base := w.BaseURL
	if base == "" {
		base = "https://en.wikipedia.org/w/api.php"
	}
	limit := limitOr(q.Limit, 5)
	v := url.Values{}
	v.Set("action", "opensearch")
	v.Set("search", q.Phrase)
	v.Set("limit", strconv.Itoa(limit))
	v.Set("namespace", "0")
	v.Set("format", "json")
	// [query, [titles], [descriptions], [urls]]
	var raw []json.RawMessage
	found, err := getJSON(ctx, w.HTTPClient, w.Name(), base+"?"+v.Encode(), w.UserAgent, nil, &raw)
	if err != nil || !found || len(raw) < 4 {
		return nil, err
	}
	var titles, descs, links []string
	if json.Unmarshal(raw[1], &titles) != nil || json.Unmarshal(raw[3], &links) != nil {
		return nil, nil
	}
	_ = json.Unmarshal(raw[2], &descs)
	out := make([]Result, 0, len(titles))
	for i := range titles {
		if i >= len(links) {
			break
		}
		snippet := ""
		if i < len(descs) {
			snippet = descs[i]
		}
		if r, ok := newResult(w.Name(), titles[i], links[i], snippet); ok {
			out = append(out, r)
		}
		if len(out) >= limit {
			break
		}
	}
	return out, nil
}
