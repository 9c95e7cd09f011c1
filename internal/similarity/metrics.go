package similarity

import (
	"math"
	"strings"

	"github.com/agnivade/levenshtein"
	"github.com/pmezard/go-difflib/difflib"
)

// Cosine returns the cosine of two term-frequency vectors.
func Cosine(a, b map[string]int) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	var dot, ma, mb float64
	for t, ca := range a {
		ma += float64(ca * ca)
		if cb, ok := b[t]; ok {
			dot += float64(ca * cb)
		}
	}
	for _, cb := range b {
		mb += float64(cb * cb)
	}
	if ma == 0 || mb == 0 {
		return 0
	}
	return dot / (math.Sqrt(ma) * math.Sqrt(mb))
}

// Jaccard returns |a∩b| / |a∪b|.
func Jaccard(a, b map[string]struct{}) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 0
	}
	small, large := a, b
	if len(small) > len(large) {
		small, large = large, small
	}
	inter := 0
	for k := range small {
		if _, ok := large[k]; ok {
			inter++
		}
	}
	union := len(a) + len(b) - inter
	return float64(inter) / float64(union)
}

// NGrams returns the distinct space-joined n-grams of terms.
func NGrams(terms []string, n int) map[string]struct{} {
	out := make(map[string]struct{})
	for i := 0; i+n <= len(terms); i++ {
		out[strings.Join(terms[i:i+n], " ")] = struct{}{}
	}
	return out
}

// Dice returns the Sørensen-Dice coefficient over character bigrams,
// ignoring case and whitespace.
func Dice(a, b string) float64 {
	ba, bb := bigrams(a), bigrams(b)
	na, nb := 0, 0
	for _, c := range ba {
		na += c
	}
	for _, c := range bb {
		nb += c
	}
	if na == 0 || nb == 0 {
		return 0
	}
	inter := 0
	for g, ca := range ba {
		if cb, ok := bb[g]; ok {
			inter += min(ca, cb)
		}
	}
	return 2 * float64(inter) / float64(na+nb)
}

func bigrams(s string) map[string]int {
	r := []rune(strings.Join(strings.Fields(strings.ToLower(s)), ""))
	out := make(map[string]int, len(r))
	for i := 0; i+1 < len(r); i++ {
		out[string(r[i:i+2])]++
	}
	return out
}

// Levenshtein returns 1 - distance/maxLen over runes. Two empty strings
// are identical.
func Levenshtein(a, b string) float64 {
	la, lb := len([]rune(a)), len([]rune(b))
	maxLen := max(la, lb)
	if maxLen == 0 {
		return 1
	}
	return 1 - float64(levenshtein.ComputeDistance(a, b))/float64(maxLen)
}

// Fuzzy returns the sequence-matcher ratio 2*M/T over runes, the same
// measure as Python's difflib.SequenceMatcher.ratio without auto-junk.
func Fuzzy(a, b string) float64 {
	ra, rb := runeStrings(a), runeStrings(b)
	if len(ra) == 0 && len(rb) == 0 {
		return 1
	}
	m := difflib.NewMatcherWithJunk(ra, rb, false, nil)
	return m.Ratio()
}

func runeStrings(s string) []string {
	out := make([]string, 0, len(s))
	for _, r := range s {
		out = append(out, string(r))
	}
	return out
}
