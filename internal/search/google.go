package search

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strconv"
)

// Google queries the Custom Search JSON API. The key comes from the
// Query; EngineID is the programmable search engine id (cx).
type Google struct {
	BaseURL    string // defaults to the public endpoint
	EngineID   string
	HTTPClient *http.Client
	UserAgent  string
}

func (g *Google) Name() string { return "google" }

func (g *Google) Search(ctx context.Context, q Query) ([]Result, error) {
	if g.EngineID == "" {
		return nil, &Error{Provider: g.Name(), Kind: KindFatal, Err: errors.New("missing search engine id")}
	}
	if q.Key == "" {
		return nil, &Error{Provider: g.Name(), Kind: KindAuth, Err: errors.New("missing api key")}
	}
	base := g.BaseURL
	if base == "" {
		base = "https://www.googleapis.com/customsearch/v1"
	}
	limit := min(limitOr(q.Limit, 10), 10)
	v := url.Values{}
	v.Set("key", q.Key)
	v.Set("cx", g.EngineID)
	v.Set("q", Quote(q.Phrase))
	v.Set("num", strconv.Itoa(limit))
	var resp struct {
		Items []struct {
			Title   string `json:"title"`
			Link    string `json:"link"`
			Snippet string `json:"snippet"`
		} `json:"items"`
	}
	found, err := getJSON(ctx, g.HTTPClient, g.Name(), base+"?"+v.Encode(), g.UserAgent, nil, &resp)
	if err != nil || !found {
		return nil, err
	}
	out := make([]Result, 0, len(resp.Items))
	for _, it := range resp.Items {
		if r, ok := newResult(g.Name(), it.Title, it.Link, it.Snippet); ok {
			out = append(out, r)
		}
		if len(out) >= limit {
			break
		}
	}
	return out, nil
}
