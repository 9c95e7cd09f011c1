package shingle

import (
	"strings"
	"sync"
	"testing"
)

func tokens(n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = "w" + strings.Repeat("x", i%7) + string(rune('a'+i%26))
	}
	return out
}

func TestBuild_GeometryCoversTail(t *testing.T) {
	toks := tokens(30)
	ws := Build(toks, Size, Stride)
	// starts 0,5,10,15 then a tail window at 18
	if len(ws) != 5 {
		t.Fatalf("want 5 windows, got %d", len(ws))
	}
	if ws[4].Start != 18 || ws[4].End != 30 {
		t.Fatalf("tail window = %+v", ws[4])
	}
	for _, w := range ws {
		if w.End-w.Start != Size {
			t.Fatalf("window %+v has wrong size", w)
		}
	}
}

func TestBuild_ShortDocumentSingleWindow(t *testing.T) {
	ws := Build(strings.Fields("Only ten words are here in this short sample, friend."), Size, Stride)
	if len(ws) != 1 || ws[0].Start != 0 || ws[0].End != 10 {
		t.Fatalf("got %+v", ws)
	}
	if !strings.HasSuffix(ws[0].Text, "sample friend") {
		t.Fatalf("tokens not folded: %q", ws[0].Text)
	}
}

func TestCoverage_ShortDocumentInsideLongerPage(t *testing.T) {
	doc := strings.Fields("Only ten words are here in this short sample, friend.")
	size := WindowSize(len(doc))
	if size != 10 {
		t.Fatalf("WindowSize(10) = %d", size)
	}
	cov := NewCoverageMap(len(doc))
	page := strings.Fields("A preface of several words: only ten words are here in this short sample, friend. And then it continues.")
	if n := cov.MarkMatches(Build(doc, size, Stride), Set(page, size)); n != 10 || cov.Percent() != 100 {
		t.Fatalf("covered %d tokens (%.0f%%)", n, cov.Percent())
	}
	if WindowSize(500) != Size || WindowSize(0) != 1 {
		t.Fatalf("WindowSize bounds wrong")
	}
}

func TestCoverage_MarkMatchesIsMonotonic(t *testing.T) {
	doc := strings.Fields("alpha beta gamma delta epsilon zeta eta theta iota kappa lambda mu nu xi omicron pi rho sigma tau upsilon")
	ws := Build(doc, Size, Stride)
	cov := NewCoverageMap(len(doc))
	if cov.Len() != len(doc) {
		t.Fatalf("len mismatch")
	}
	page := Set(strings.Fields("Intro text. Alpha, beta gamma delta epsilon zeta eta theta iota kappa lambda MU and more"), Size)
	n := cov.MarkMatches(ws, page)
	if n != Size || cov.Covered() != Size {
		t.Fatalf("first source covered %d (total %d)", n, cov.Covered())
	}
	before := cov.Percent()
	// A source that matches nothing must not lower coverage.
	cov.MarkMatches(ws, Set(strings.Fields("completely different words that never appear anywhere in it"), Size))
	if cov.Percent() < before {
		t.Fatalf("coverage decreased")
	}
	// Re-marking covered tokens is a no-op.
	if n := cov.Mark(0, Size); n != 0 {
		t.Fatalf("re-mark counted %d", n)
	}
	if !cov.IsCovered(0) || cov.IsCovered(len(doc)-1) {
		t.Fatalf("unexpected flags")
	}
}

func TestCoverage_ConcurrentMarking(t *testing.T) {
	cov := NewCoverageMap(1000)
	var wg sync.WaitGroup
	for g := 0; g < 16; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 1000; i += 10 {
				cov.Mark(i, i+10)
			}
		}(g)
	}
	wg.Wait()
	if cov.Covered() != 1000 || cov.Percent() != 100 {
		t.Fatalf("covered %d", cov.Covered())
	}
}
