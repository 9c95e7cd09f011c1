package search

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

// Archive queries the Internet Archive advanced search over text items.
type Archive struct {
	BaseURL    string // defaults to https://archive.org/advancedsearch.php
	HTTPClient *http.Client
	UserAgent  string
}

func (a *Archive) Name() string { return "archive" }

func (a *Archive) Search(ctx context.Context, q Query) ([]Result, error) {
	base := a.BaseURL
	if base == "" {
		base = "https://archive.org/advancedsearch.php"
	}
	limit := limitOr(q.Limit, 5)
	v := url.Values{}
	v.Set("q", Quote(q.Phrase)+" AND mediatype:texts")
	v.Add("fl[]", "identifier")
	v.Add("fl[]", "title")
	v.Add("fl[]", "description")
	v.Set("rows", strconv.Itoa(limit))
	v.Set("output", "json")
	var resp struct {
		Response struct {
			Docs []struct {
				Identifier  string          `json:"identifier"`
				Title       json.RawMessage `json:"title"`
				Description json.RawMessage `json:"description"`
			} `json:"docs"`
		} `json:"response"`
	}
	found, err := getJSON(ctx, a.HTTPClient, a.Name(), base+"?"+v.Encode(), a.UserAgent, nil, &resp)
	if err != nil || !found {
		return nil, err
	}
	out := make([]Result, 0, len(resp.Response.Docs))
	for _, d := range resp.Response.Docs {
		if d.Identifier == "" {
			continue
		}
		link := "https://archive.org/details/" + d.Identifier
		if r, ok := newResult(a.Name(), stringOrList(d.Title), link, stringOrList(d.Description)); ok {
			out = append(out, r)
		}
		if len(out) >= limit {
			break
		}
	}
	return out, nil
}

// stringOrList decodes a metadata field that may be a string or a list.
func stringOrList(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if json.Unmarshal(raw, &s) == nil {
		return s
	}
	var list []string
	if json.Unmarshal(raw, &list) == nil {
		return strings.Join(list, " ")
	}
	return ""
}
