package search

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

// ArXiv queries the arXiv Atom API.
type ArXiv struct {
	BaseURL    string // defaults to http://export.arxiv.org/api/query
	HTTPClient *http.Client
	UserAgent  string
}

func (a *ArXiv) Name() string { return "arxiv" }

type atomFeed struct {
	Entries []struct {
		ID      string `xml:"id"`
		Title   string `xml:"title"`
		Summary string `xml:"summary"`
		Links   []struct {
			Href string `xml:"href,attr"`
			Rel  string `xml:"rel,attr"`
			Type string `xml:"type,attr"`
		} `xml:"link"`
	} `xml:"entry"`
}

func (a *ArXiv) Search(ctx context.Context, q Query) ([]Result, error) {
	base := a.BaseURL
	if base == "" {
		base = "http://export.arxiv.org/api/query"
	}
	limit := limitOr(q.Limit, 5)
	v := url.Values{}
	v.Set("search_query", "all:"+Quote(q.Phrase))
	v.Set("start", "0")
	v.Set("max_results", strconv.Itoa(limit))
	var feed atomFeed
	found, err := getXML(ctx, a.HTTPClient, a.Name(), base+"?"+v.Encode(), a.UserAgent, &feed)
	if err != nil || !found {
		return nil, err
	}
	out := make([]Result, 0, len(feed.Entries))
	for _, e := range feed.Entries {
		link := e.ID
		for _, l := range e.Links {
			if l.Rel == "alternate" && l.Href != "" {
				link = l.Href
				break
			}
		}
		title := strings.Join(strings.Fields(e.Title), " ")
		if r, ok := newResult(a.Name(), title, link, strings.Join(strings.Fields(e.Summary), " ")); ok {
			out = append(out, r)
		}
		if len(out) >= limit {
			break
		}
	}
	return out, nil
}
