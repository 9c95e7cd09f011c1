package search

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
)

// OpenAlex queries the OpenAlex works index.
type OpenAlex struct {
	BaseURL    string // defaults to https://api.openalex.org/works
	Mailto     string
	HTTPClient *http.Client
	UserAgent  string
}

func (o *OpenAlex) Name() string { return "openalex" }

func (o *OpenAlex) Search(ctx context.Context, q Query) ([]Result, error) {
	base := o.BaseURL
	if base == "" {
		base = "https://api.openalex.org/works"
	}
	limit := limitOr(q.Limit, 5)
	v := url.Values{}
	v.Set("search", Quote(q.Phrase))
	v.Set("per-page", strconv.Itoa(limit))
	if o.Mailto != "" {
		v.Set("mailto", o.Mailto)
	}
	var resp struct {
		Results []struct {
			ID              string `json:"id"`
			DOI             string `json:"doi"`
			DisplayName     string `json:"display_name"`
			PrimaryLocation struct {
				LandingPageURL string `json:"landing_page_url"`
				Source         struct {
					DisplayName string `json:"display_name"`
				} `json:"source"`
			} `json:"primary_location"`
		} `json:"results"`
	}
	found, err := getJSON(ctx, o.HTTPClient, o.Name(), base+"?"+v.Encode(), o.UserAgent, nil, &resp)
	if err != nil || !found {
		return nil, err
	}
	out := make([]Result, 0, len(resp.Results))
	for _, it := range resp.Results {
		link := it.PrimaryLocation.LandingPageURL
		if link == "" {
			link = it.DOI
		}
		if link == "" {
			link = it.ID
		}
		if r, ok := newResult(o.Name(), it.DisplayName, link, it.PrimaryLocation.Source.DisplayName); ok {
			out = append(out, r)
		}
		if len(out) >= limit {
			break
		}
	}
	return out, nil
}
