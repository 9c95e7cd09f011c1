package search

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strconv"
)

// Brave queries the Brave Search web API with a subscription token.
type Brave struct {
	BaseURL    string
	HTTPClient *http.Client
	UserAgent  string
}

func (b *Brave) Name() string { return "brave" }

func (b *Brave) Search(ctx context.Context, q Query) ([]Result, error) {
	if q.Key == "" {
		return nil, &Error{Provider: b.Name(), Kind: KindAuth, Err: errors.New("missing subscription token")}
	}
	base := b.BaseURL
	if base == "" {
		base = "https://api.search.brave.com/res/v1/web/search"
	}
	limit := min(limitOr(q.Limit, 10), 20)
	v := url.Values{}
	v.Set("q", Quote(q.Phrase))
	v.Set("count", strconv.Itoa(limit))
	h := http.Header{}
	h.Set("Accept", "application/json")
	h.Set("X-Subscription-Token", q.Key)
	var resp struct {
		Web struct {
			Results []struct {
				Title       string `json:"title"`
				URL         string `json:"url"`
				Description string `json:"description"`
			} `json:"results"`
		} `json:"web"`
	}
	found, err := getJSON(ctx, b.HTTPClient, b.Name(), base+"?"+v.Encode(), b.UserAgent, h, &resp)
	if err != nil || !found {
		return nil, err
	}
	out := make([]Result, 0, len(resp.Web.Results))
	for _, it := range resp.Web.Results {
		if r, ok := newResult(b.Name(), it.Title, it.URL, it.Description); ok {
			out = append(out, r)
		}
		if len(out) >= limit {
			break
		}
	}
	return out, nil
}
