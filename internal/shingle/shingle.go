// Package shingle builds overlapping token windows over the input document
// and tracks which input tokens are covered by text found in sources.
package shingle

import (
	"strings"
	"sync/atomic"

	"github.com/hyperifyio/originality/internal/text"
)

// Window geometry.
const (
	Size   = 12
	Stride = 5
)

// Window is one run of consecutive tokens, [Start, End).
type Window struct {
	Start int
	End   int
	Text  string
}

// Build returns windows of size tokens every stride tokens. The tail of
// the document is covered by a final window aligned to the last token. A
// document shorter than size yields one window spanning all of it.
func Build(tokens []string, size, stride int) []Window {
	if size <= 0 || stride <= 0 || len(tokens) == 0 {
		return nil
	}
	folded := foldAll(tokens)
	if len(tokens) <= size {
		return []Window{{Start: 0, End: len(tokens), Text: strings.Join(folded, " ")}}
	}
	var out []Window
	last := -1
	for start := 0; start+size <= len(tokens); start += stride {
		out = append(out, Window{Start: start, End: start + size, Text: strings.Join(folded[start:start+size], " ")})
		last = start
	}
	if tail := len(tokens) - size; tail > last {
		out = append(out, Window{Start: tail, End: len(tokens), Text: strings.Join(folded[tail:], " ")})
	}
	return out
}

// WindowSize is the window length Build uses for a document of n tokens.
// Page sets must be built with the same length for windows to match.
func WindowSize(n int) int {
	return max(1, min(Size, n))
}

// Set returns every size-token window of tokens, stride 1, so that any
// alignment of a copied passage in the page is found.
func Set(tokens []string, size int) map[string]struct{} {
	folded := foldAll(tokens)
	set := make(map[string]struct{})
	if len(folded) == 0 || size <= 0 {
		return set
	}
	if len(folded) < size {
		set[strings.Join(folded, " ")] = struct{}{}
		return set
	}
	for i := 0; i+size <= len(folded); i++ {
		set[strings.Join(folded[i:i+size], " ")] = struct{}{}
	}
	return set
}

func foldAll(tokens []string) []string {
	out := make([]string, 0, len(tokens))
	for _, t := range tokens {
		if f := text.Fold(t); f != "" {
			out = append(out, f)
		} else {
			out = append(out, t)
		}
	}
	return out
}

// CoverageMap is a fixed array of per-token flags shared by concurrent
// pipelines. Flags only ever go from false to true.
type CoverageMap struct {
	flags   []atomic.Bool
	covered atomic.Int64
}

// NewCoverageMap returns a map sized to n tokens.
func NewCoverageMap(n int) *CoverageMap {
	return &CoverageMap{flags: make([]atomic.Bool, n)}
}

// Len returns the number of tracked tokens.
func (c *CoverageMap) Len() int { return len(c.flags) }

// Mark covers tokens [start, end) and returns how many were newly covered.
func (c *CoverageMap) Mark(start, end int) int {
	start = max(start, 0)
	end = min(end, len(c.flags))
	n := 0
	for i := start; i < end; i++ {
		if c.flags[i].CompareAndSwap(false, true) {
			n++
		}
	}
	c.covered.Add(int64(n))
	return n
}

// MarkMatches covers every window whose text appears in pageSet and
// returns how many tokens were newly covered.
func (c *CoverageMap) MarkMatches(windows []Window, pageSet map[string]struct{}) int {
	n := 0
	for _, w := range windows {
		if _, ok := pageSet[w.Text]; ok {
			n += c.Mark(w.Start, w.End)
		}
	}
	return n
}

// Covered returns the number of covered tokens.
func (c *CoverageMap) Covered() int { return int(c.covered.Load()) }

// IsCovered reports whether token i is covered.
func (c *CoverageMap) IsCovered(i int) bool {
	return i >= 0 && i < len(c.flags) && c.flags[i].Load()
}

// Percent returns covered/total in [0,100].
func (c *CoverageMap) Percent() float64 {
	if len(c.flags) == 0 {
		return 0
	}
	return 100 * float64(c.Covered()) / float64(len(c.flags))
}
