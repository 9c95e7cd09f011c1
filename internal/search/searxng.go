package search

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

// SearxNG implements Provider against a SearxNG instance's /search endpoint.
type SearxNG struct {
	BaseURL    string
	APIKey     string // optional
	HTTPClient *http.Client
	UserAgent  string // optional custom UA
}

func (s *SearxNG) Name() string { return "searxng" }

func (s *SearxNG) Search(ctx context.Context, q Query) ([]Result, error) {
	if s.BaseURL == "" {
		return nil, &Error{Provider: s.Name(), Kind: KindFatal, Err: errors.New("missing searxng base url")}
	}
	limit := limitOr(q.Limit, 10)
	u, err := url.Parse(s.BaseURL)
	if err != nil {
		return nil, &Error{Provider: s.Name(), Kind: KindFatal, Err: err}
	}
	// Ensure path
	if !strings.HasSuffix(u.Path, "/search") {
		u.Path = strings.TrimRight(u.Path, "/") + "/search"
	}
	v := u.Query()
	v.Set("q", Quote(q.Phrase))
	v.Set("format", "json")
	v.Set("language", "auto")
	v.Set("safesearch", "1")
	v.Set("categories", "general")
	v.Set("count", fmt.Sprintf("%d", limit))
	key := q.Key
	if key == "" {
		key = s.APIKey
	}
	if key != "" {
		v.Set("apikey", key)
	}
	u.RawQuery = v.Encode()

	var sr searxResponse
	found, err := getJSON(ctx, s.HTTPClient, s.Name(), u.String(), s.UserAgent, nil, &sr)
	if err != nil || !found {
		return nil, err
	}
	out := make([]Result, 0, len(sr.Results))
	for _, r := range sr.Results {
		if res, ok := newResult(s.Name(), r.Title, r.URL, r.Content); ok {
			out = append(out, res)
		}
		if len(out) >= limit {
			break
		}
	}
	return out, nil
}

type searxResponse struct {
	Results []struct {
		Title   string `json:"title"`
		URL     string `json:"url"`
		Content string `json:"content"`
	} `json:"results"`
}
