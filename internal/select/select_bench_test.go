package selecter

import (
	"fmt"
	"math/rand"
	"strings"
	"testing"

	"github.com/hyperifyio/originality/internal/search"
)

var benchHosts = []string{
	"en.wikipedia.org", "www.ox.ac.uk", "arxiv.org", "medium.com",
	"www.youtube.com", "example-blog.net", "www.britannica.com", "news.example.org",
}

func benchHits(rng *rand.Rand, n int) []search.Result {
	out := make([]search.Result, n)
	for i := range out {
		host := benchHosts[rng.Intn(len(benchHosts))]
		out[i] = search.Result{
			Title:   fmt.Sprintf("Source %d", i),
			URL:     fmt.Sprintf("https://%s/article/%d?utm_source=feed", host, rng.Intn(n)),
			Snippet: strings.Repeat("cotton mills ", 2+rng.Intn(20)),
			Source:  "bench",
		}
	}
	return out
}

func BenchmarkSelect(b *testing.B) {
	cases := []struct {
		name string
		n    int
		opt  Options
	}{
		{"hits=20/default", 20, Options{}},
		{"hits=200/default", 200, Options{}},
		{"hits=200/perDomain=1", 200, Options{PerDomain: 1, MaxTotal: 12}},
		{"hits=200/minSnippet=80", 200, Options{MinSnippetChars: 80}},
	}
	for _, c := range cases {
		hits := benchHits(rand.New(rand.NewSource(7)), c.n)
		b.Run(c.name, func(b *testing.B) {
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				_ = Select(hits, c.opt)
			}
		})
	}
}
