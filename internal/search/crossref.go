package search

import (
	"context"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
)

// CrossRef queries the CrossRef works index. Mailto joins the polite pool.
type CrossRef struct {
	BaseURL    string // defaults to https://api.crossref.org/works
	Mailto     string
	HTTPClient *http.Client
	UserAgent  string
}

func (c *CrossRef) Name() string { return "crossref" }

var jatsTag = regexp.MustCompile(`<[^>]+>`)

func (c *CrossRef) Search(ctx context.Context, q Query) ([]Result, error) {
	base := c.BaseURL
	if base == "" {
		base = "https://api.crossref.org/works"
	}
	limit := limitOr(q.Limit, 5)
	v := url.Values{}
	v.Set("query.bibliographic", q.Phrase)
	v.Set("rows", strconv.Itoa(limit))
	v.Set("select", "title,URL,abstract")
	if c.Mailto != "" {
		v.Set("mailto", c.Mailto)
	}
	var resp struct {
		Message struct {
			Items []struct {
				Title    []string `json:"title"`
				URL      string   `json:"URL"`
				Abstract string   `json:"abstract"`
			} `json:"items"`
		} `json:"message"`
	}
	found, err := getJSON(ctx, c.HTTPClient, c.Name(), base+"?"+v.Encode(), c.UserAgent, nil, &resp)
	if err != nil || !found {
		return nil, err
	}
	out := make([]Result, 0, len(resp.Message.Items))
	for _, it := range resp.Message.Items {
		if len(it.Title) == 0 {
			continue
		}
		if r, ok := newResult(c.Name(), it.Title[0], it.URL, jatsTag.ReplaceAllString(it.Abstract, "")); ok {
			out = append(out, r)
		}
		if len(out) >= limit {
			break
		}
	}
	return out, nil
}
