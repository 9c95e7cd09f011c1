package search

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
)

// EuropePMC queries the Europe PMC REST search.
type EuropePMC struct {
	BaseURL    string // defaults to https://www.ebi.ac.uk/europepmc/webservices/rest/search
	HTTPClient *http.Client
	UserAgent  string
}

func (e *EuropePMC) Name() string { return "europepmc" }

func (e *EuropePMC) Search(ctx context.Context, q Query) ([]Result, error) {
	base := e.BaseURL
	if base == "" {
		base = "https://www.ebi.ac.uk/europepmc/webservices/rest/search"
	}
	limit := limitOr(q.Limit, 5)
	v := url.Values{}
	v.Set("query", Quote(q.Phrase))
	v.Set("format", "json")
	v.Set("pageSize", strconv.Itoa(limit))
	v.Set("resultType", "lite")
	var resp struct {
		ResultList struct {
			Result []struct {
				ID           string `json:"id"`
				Source       string `json:"source"`
				Title        string `json:"title"`
				JournalTitle string `json:"journalTitle"`
			} `json:"result"`
		} `json:"resultList"`
	}
	found, err := getJSON(ctx, e.HTTPClient, e.Name(), base+"?"+v.Encode(), e.UserAgent, nil, &resp)
	if err != nil || !found {
		return nil, err
	}
	out := make([]Result, 0, len(resp.ResultList.Result))
	for _, it := range resp.ResultList.Result {
		if it.ID == "" || it.Source == "" {
			continue
		}
		link := "https://europepmc.org/article/" + it.Source + "/" + it.ID
		if r, ok := newResult(e.Name(), it.Title, link, it.JournalTitle); ok {
			out = append(out, r)
		}
		if len(out) >= limit {
			break
		}
	}
	return out, nil
}
