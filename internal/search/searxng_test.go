package search

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestSearxNG_Search_ParsesResults(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("q")
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"results": []map[string]any{
				{"title": "Doc", "url": "https://www.Example.com/a", "content": "snippet"},
				{"title": "Bad", "url": "", "content": "no url"},
			},
		})
	}))
	defer srv.Close()

	s := &SearxNG{BaseURL: srv.URL, HTTPClient: srv.Client()}
	got, err := s.Search(context.Background(), Query{Phrase: "steam engines", Limit: 5})
	if err != nil {
		t.Fatalf("search error: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 valid result, got %d", len(got))
	}
	if got[0].URL != "https://www.Example.com/a" || got[0].Domain != "example.com" || got[0].Source != "searxng" {
		t.Fatalf("unexpected result: %+v", got[0])
	}
	if gotQuery != `"steam engines"` {
		t.Fatalf("phrase not quoted: %q", gotQuery)
	}
}
