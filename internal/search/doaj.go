package search

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

// DOAJ queries the Directory of Open Access Journals article search.
type DOAJ struct {
	BaseURL    string // defaults to https://doaj.org/api/search/articles
	HTTPClient *http.Client
	UserAgent  string
}

func (d *DOAJ) Name() string { return "doaj" }

func (d *DOAJ) Search(ctx context.Context, q Query) ([]Result, error) {
	base := strings.TrimRight(d.BaseURL, "/")
	if base == "" {
		base = "https://doaj.org/api/search/articles"
	}
	limit := limitOr(q.Limit, 5)
	v := url.Values{}
	v.Set("pageSize", strconv.Itoa(limit))
	u := base + "/" + url.PathEscape(Quote(q.Phrase)) + "?" + v.Encode()
	var resp struct {
		Results []struct {
			Bibjson struct {
				Title    string `json:"title"`
				Abstract string `json:"abstract"`
				Link     []struct {
					URL  string `json:"url"`
					Type string `json:"type"`
				} `json:"link"`
			} `json:"bibjson"`
		} `json:"results"`
	}
	found, err := getJSON(ctx, d.HTTPClient, d.Name(), u, d.UserAgent, nil, &resp)
	if err != nil || !found {
		return nil, err
	}
	out := make([]Result, 0, len(resp.Results))
	for _, it := range resp.Results {
		link := ""
		for _, l := range it.Bibjson.Link {
			if l.URL != "" {
				link = l.URL
				if l.Type == "fulltext" {
					break
				}
			}
		}
		if r, ok := newResult(d.Name(), it.Bibjson.Title, link, it.Bibjson.Abstract); ok {
			out = append(out, r)
		}
		if len(out) >= limit {
			break
		}
	}
	return out, nil
}
