package search

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"strings"
)

// FileProvider loads search results from a local JSON file for offline/testing use.
// The JSON file format is an array of objects: {"title": "...", "url": "...", "snippet": "..."}.
// An entry matches when the phrase appears in its title or snippet, or
// when its "phrases" list names the phrase.
type FileProvider struct {
	Path string
}

func (f *FileProvider) Name() string { return "file" }

type fileEntry struct {
	Title   string   `json:"title"`
	URL     string   `json:"url"`
	Snippet string   `json:"snippet"`
	Phrases []string `json:"phrases,omitempty"`
}

func (f *FileProvider) Search(_ context.Context, q Query) ([]Result, error) {
	if strings.TrimSpace(f.Path) == "" {
		return nil, &Error{Provider: f.Name(), Kind: KindFatal, Err: errors.New("file provider path is empty")}
	}
	b, err := os.ReadFile(f.Path)
	if err != nil {
		return nil, &Error{Provider: f.Name(), Kind: KindFatal, Err: err}
	}
	var raw []fileEntry
	if err := json.Unmarshal(b, &raw); err != nil {
		return nil, &Error{Provider: f.Name(), Kind: KindFatal, Err: err}
	}
	p := strings.ToLower(strings.TrimSpace(q.Phrase))
	out := make([]Result, 0, len(raw))
	for _, e := range raw {
		if !e.matches(p) {
			continue
		}
		if r, ok := newResult(f.Name(), e.Title, e.URL, e.Snippet); ok {
			out = append(out, r)
		}
		if q.Limit > 0 && len(out) >= q.Limit {
			break
		}
	}
	return out, nil
}

func (e fileEntry) matches(p string) bool {
	if p == "" {
		return true
	}
	if strings.Contains(strings.ToLower(e.Title), p) || strings.Contains(strings.ToLower(e.Snippet), p) {
		return true
	}
	for _, ph := range e.Phrases {
		if ph == "*" || strings.EqualFold(strings.TrimSpace(ph), p) {
			return true
		}
	}
	return false
}
