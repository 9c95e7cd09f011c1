package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/hyperifyio/originality/internal/search"
)

// providers returns every provider that can be queried without extra wiring.
func providers(searxURL, searchFile string, hc *http.Client) map[string]search.Provider {
	ua := "debugsearch/1.0"
	list := []search.Provider{
		&search.SearxNG{BaseURL: searxURL, HTTPClient: hc, UserAgent: ua},
		&search.Google{EngineID: os.Getenv("GOOGLE_SEARCH_ENGINE_ID"), HTTPClient: hc, UserAgent: ua},
		&search.Brave{HTTPClient: hc, UserAgent: ua},
		&search.Wikipedia{HTTPClient: hc, UserAgent: ua},
		&search.ArXiv{HTTPClient: hc, UserAgent: ua},
		&search.CrossRef{HTTPClient: hc, UserAgent: ua},
		&search.PubMed{HTTPClient: hc, UserAgent: ua},
		&search.Archive{HTTPClient: hc, UserAgent: ua},
		&search.OpenAlex{HTTPClient: hc, UserAgent: ua},
		&search.DOAJ{HTTPClient: hc, UserAgent: ua},
		&search.EuropePMC{HTTPClient: hc, UserAgent: ua},
		&search.FileProvider{Path: searchFile},
	}
	out := make(map[string]search.Provider, len(list))
	for _, p := range list {
		out[p.Name()] = p
	}
	return out
}

func main() {
	var (
		name       string
		key        string
		limit      int
		searxURL   string
		searchFile string
	)
	flag.StringVar(&name, "provider", "searxng", "Provider to query")
	flag.StringVar(&key, "key", "", "API key for keyed providers (google, brave)")
	flag.IntVar(&limit, "n", 5, "Maximum results")
	flag.StringVar(&searxURL, "searx.url", envOr("SEARX_URL", "http://localhost:8888"), "SearxNG base URL")
	flag.StringVar(&searchFile, "search.file", os.Getenv("SEARCH_FILE"), "JSON file for the file provider")
	flag.Parse()

	phrase := strings.Join(flag.Args(), " ")
	if phrase == "" {
		phrase = "the quick brown fox jumps over the lazy dog"
	}

	all := providers(searxURL, searchFile, &http.Client{Timeout: 20 * time.Second})
	prov, ok := all[name]
	if !ok {
		names := make([]string, 0, len(all))
		for n := range all {
			names = append(names, n)
		}
		sort.Strings(names)
		fmt.Fprintf(os.Stderr, "unknown provider %q (have %s)\n", name, strings.Join(names, ", "))
		os.Exit(2)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 25*time.Second)
	defer cancel()
	res, err := prov.Search(ctx, search.Query{Phrase: phrase, Limit: limit, Key: key})
	if err != nil {
		fmt.Println("err:", err)
	}
	for i, r := range res {
		fmt.Printf("%d. %s (%s)\n   %s\n", i+1, r.Title, r.Domain, r.URL)
	}
}

func envOr(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
