// Package similarity scores how closely a candidate page reproduces the
// input document using several independent metrics and a guarded blend.
package similarity

import (
	"strings"

	"github.com/hyperifyio/originality/internal/text"
)

// Profile is the preprocessed form of one text. Building the document
// profile once lets it be compared against many pages cheaply.
type Profile struct {
	raw    string
	chars  string // lowercase, whitespace-collapsed, bounded
	terms  []string
	tf     map[string]int
	set    map[string]struct{}
	ngrams [3]map[string]struct{} // n = 3, 4, 5
	words  map[string]struct{}    // lowercase words longer than three letters
	frags  []string
}

// NewProfile preprocesses s.
func NewProfile(s string) *Profile {
	p := &Profile{raw: s}
	p.chars = text.Prefix(strings.ToLower(strings.Join(strings.Fields(s), " ")), MaxCharCompare)
	p.terms = text.ContentTerms(s)
	p.tf = make(map[string]int, len(p.terms))
	p.set = make(map[string]struct{}, len(p.terms))
	for _, t := range p.terms {
		p.tf[t]++
		p.set[t] = struct{}{}
	}
	for i := range p.ngrams {
		p.ngrams[i] = NGrams(p.terms, i+3)
	}
	p.words = make(map[string]struct{})
	for _, w := range strings.Fields(strings.ToLower(s)) {
		if len([]rune(w)) > 3 {
			p.words[w] = struct{}{}
		}
	}
	p.frags = fragments(s, FragmentWords, FragmentMax)
	return p
}

// Text returns the original text the profile was built from.
func (p *Profile) Text() string { return p.raw }

// Scores holds every metric in [0,1] and their guarded combination.
type Scores struct {
	Cosine      float64 `json:"cosine"`
	NGram3      float64 `json:"ngram3"`
	NGram4      float64 `json:"ngram4"`
	NGram5      float64 `json:"ngram5"`
	Fuzzy       float64 `json:"fuzzy"`
	Dice        float64 `json:"dice"`
	Jaccard     float64 `json:"jaccard"`
	Levenshtein float64 `json:"levenshtein"`
	Combined    float64 `json:"combined"`
	Guarded     bool    `json:"guarded"`
}

// Compare computes all metrics between two profiles.
func Compare(a, b *Profile) Scores {
	s := Scores{
		Cosine:      Cosine(a.tf, b.tf),
		NGram3:      Jaccard(a.ngrams[0], b.ngrams[0]),
		NGram4:      Jaccard(a.ngrams[1], b.ngrams[1]),
		NGram5:      Jaccard(a.ngrams[2], b.ngrams[2]),
		Fuzzy:       Fuzzy(a.chars, b.chars),
		Dice:        Dice(a.chars, b.chars),
		Jaccard:     Jaccard(a.set, b.set),
		Levenshtein: Levenshtein(a.chars, b.chars),
	}
	s.Combined, s.Guarded = Combine(s, DefaultWeights)
	return s
}

// CompareText is Compare over raw strings.
func CompareText(a, b string) Scores {
	return Compare(NewProfile(a), NewProfile(b))
}

// Combine blends the metric values in s with w and applies the
// boilerplate guard. It reports whether the guard capped the result.
func Combine(s Scores, w Weights) (float64, bool) {
	raw := s.Cosine*w.Cosine +
		s.NGram3*w.NGram3 +
		s.NGram4*w.NGram4 +
		s.NGram5*w.NGram5 +
		s.Fuzzy*w.Fuzzy +
		s.Dice*w.Dice +
		s.Jaccard*w.Jaccard +
		s.Levenshtein*w.Levenshtein
	if total := w.sum(); total > 0 && total != 1 {
		raw /= total
	}
	raw = clamp01(raw)
	charHigh := s.Fuzzy > GuardCharLevel || s.Levenshtein > GuardCharLevel
	if charHigh && s.Cosine < GuardCosine && raw > GuardCeiling {
		return GuardCeiling, true
	}
	return raw, false
}

// Aggressive is the permissive score used only to decide early
// termination: combined, the Compare(a, b).Combined the caller already
// holds, raised by raw word overlap and by short fragment overlap. A cheap
// prefix check returns 0 for texts that share nothing.
func Aggressive(a, b *Profile, combined float64) float64 {
	if Fuzzy(text.Prefix(a.chars, QuickCheckChars), text.Prefix(b.chars, QuickCheckChars)) < QuickCheckMin {
		return 0
	}
	best := combined
	if ov := wordOverlap(a.words, b.words) * WordOverlapWeight; ov > best {
		best = ov
	}
	if fr := fragmentRatio(a.frags, b.frags) * FragmentWeight; fr > best {
		best = fr
	}
	return clamp01(best)
}

func wordOverlap(a, b map[string]struct{}) float64 {
	denom := min(len(a), len(b))
	if denom == 0 {
		return 0
	}
	common := 0
	for w := range a {
		if _, ok := b[w]; ok {
			common++
		}
	}
	return float64(common) / float64(denom)
}

func fragmentRatio(a, b []string) float64 {
	if len(a) == 0 {
		return 0
	}
	hits := 0
	for _, fa := range a {
		for _, fb := range b {
			if fa == fb || Fuzzy(fa, fb) > FragmentFuzzyMatch {
				hits++
				break
			}
		}
	}
	return float64(hits) / float64(len(a))
}

func fragments(s string, size, limit int) []string {
	var words []string
	for _, w := range strings.Fields(strings.ToLower(s)) {
		if len([]rune(w)) > 2 {
			words = append(words, w)
		}
	}
	var out []string
	for i := 0; i+size <= len(words) && len(out) < limit; i++ {
		out = append(out, strings.Join(words[i:i+size], " "))
	}
	return out
}

func clamp01(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}
