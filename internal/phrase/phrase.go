// Package phrase selects the bounded, ranked set of phrases that are sent
// to search providers for one document.
package phrase

import (
	"math"
	"sort"
	"strings"
	"unicode"

	"github.com/hyperifyio/originality/internal/similarity"
	"github.com/hyperifyio/originality/internal/text"
)

// Phrase is one search unit derived from the document.
type Phrase struct {
	Text    string `json:"text"`
	Quality int    `json:"quality"`
}

// DefaultMultiplier scales the tiered base count.
const DefaultMultiplier = 1.5

// DedupThreshold is the fuzzy ratio above which a later phrase is dropped
// as a near-duplicate of an earlier one.
const DedupThreshold = 0.8

// Share of the target taken from each candidate pool.
const (
	standardShare = 0.6
	sentenceShare = 0.4
)

// Extractor produces phrases for a document. The zero value uses
// DefaultMultiplier.
type Extractor struct {
	Multiplier float64
}

// TargetCount returns how many phrases a document of wordCount words gets.
func TargetCount(wordCount int, multiplier float64) int {
	if multiplier <= 0 {
		multiplier = DefaultMultiplier
	}
	var base int
	switch {
	case wordCount <= 500:
		base = 8
	case wordCount <= 1000:
		base = 12
	case wordCount <= 2000:
		base = 16
	case wordCount <= 3000:
		base = 20
	default:
		base = 24
	}
	return int(math.Round(float64(base) * multiplier))
}

// Extract returns at most TargetCount phrases ranked by search value.
func (e Extractor) Extract(doc *text.Document) []Phrase {
	if doc == nil {
		return nil
	}
	target := TargetCount(doc.WordCount, e.Multiplier)
	if target <= 0 {
		return nil
	}
	counter := newOccurrenceCounter(doc.Raw)
	sents := text.Sentences(doc.Raw)

	standard := topN(scoreAll(standardCandidates(sents), counter), int(math.Ceil(float64(target)*standardShare)))
	sentence := topN(sentenceCandidates(sents, counter), int(math.Ceil(float64(target)*sentenceShare)))

	seen := make(map[string]struct{})
	var merged []Phrase
	for _, p := range append(standard, sentence...) {
		if _, ok := seen[p.Text]; ok {
			continue
		}
		seen[p.Text] = struct{}{}
		merged = append(merged, p)
	}
	sort.SliceStable(merged, func(i, j int) bool {
		return searchValue(merged[i].Text) > searchValue(merged[j].Text)
	})
	out := Dedup(merged, DedupThreshold)
	if len(out) > target {
		out = out[:target]
	}
	return out
}

// Dedup keeps the first of any phrases whose fuzzy ratio exceeds threshold.
func Dedup(in []Phrase, threshold float64) []Phrase {
	out := make([]Phrase, 0, len(in))
	for _, p := range in {
		dup := false
		lp := strings.ToLower(p.Text)
		for _, kept := range out {
			if similarity.Fuzzy(lp, strings.ToLower(kept.Text)) > threshold {
				dup = true
				break
			}
		}
		if !dup {
			out = append(out, p)
		}
	}
	return out
}

type scored struct {
	Phrase
	order int
}

func scoreAll(cands []string, counter *occurrenceCounter) []scored {
	out := make([]scored, 0, len(cands))
	for i, c := range cands {
		out = append(out, scored{Phrase: Phrase{Text: c, Quality: quality(c, counter)}, order: i})
	}
	return out
}

func topN(in []scored, n int) []Phrase {
	sort.SliceStable(in, func(i, j int) bool {
		if in[i].Quality != in[j].Quality {
			return in[i].Quality > in[j].Quality
		}
		return in[i].order < in[j].order
	})
	out := make([]Phrase, 0, n)
	for _, s := range in {
		if len(out) >= n {
			break
		}
		out = append(out, s.Phrase)
	}
	return out
}

func trimPunct(s string) string {
	return strings.TrimFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
}
