package search

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

// PubMed runs esearch then esummary against NCBI E-utilities. An NCBI API
// key is optional and raises the rate limit.
type PubMed struct {
	BaseURL    string // defaults to https://eutils.ncbi.nlm.nih.gov/entrez/eutils
	APIKey     string
	HTTPClient *http.Client
	UserAgent  string
}

func (p *PubMed) Name() string { return "pubmed" }

func (p *PubMed) Search(ctx context.Context, q Query) ([]Result, error) {
	base := strings.TrimRight(p.BaseURL, "/")
	if base == "" {
		base = "https://eutils.ncbi.nlm.nih.gov/entrez/eutils"
	}
	limit := limitOr(q.Limit, 5)
	key := q.Key
	if key == "" {
		key = p.APIKey
	}
	v := url.Values{}
	v.Set("db", "pubmed")
	v.Set("term", Quote(q.Phrase))
	v.Set("retmax", strconv.Itoa(limit))
	v.Set("retmode", "json")
	if key != "" {
		v.Set("api_key", key)
	}
	var ids struct {
		ESearchResult struct {
			IDList []string `json:"idlist"`
		} `json:"esearchresult"`
	}
	found, err := getJSON(ctx, p.HTTPClient, p.Name(), base+"/esearch.fcgi?"+v.Encode(), p.UserAgent, nil, &ids)
	if err != nil || !found || len(ids.ESearchResult.IDList) == 0 {
		return nil, err
	}
	v = url.Values{}
	v.Set("db", "pubmed")
	v.Set("id", strings.Join(ids.ESearchResult.IDList, ","))
	v.Set("retmode", "json")
	if key != "" {
		v.Set("api_key", key)
	}
	var sum struct {
		Result map[string]any `json:"result"`
	}
	found, err = getJSON(ctx, p.HTTPClient, p.Name(), base+"/esummary.fcgi?"+v.Encode(), p.UserAgent, nil, &sum)
	if err != nil || !found {
		return nil, err
	}
	out := make([]Result, 0, len(ids.ESearchResult.IDList))
	for _, id := range ids.ESearchResult.IDList {
		doc, _ := sum.Result[id].(map[string]any)
		title, _ := doc["title"].(string)
		source, _ := doc["fulljournalname"].(string)
		if r, ok := newResult(p.Name(), title, "https://pubmed.ncbi.nlm.nih.gov/"+id+"/", source); ok {
			out = append(out, r)
		}
		if len(out) >= limit {
			break
		}
	}
	return out, nil
}
