package text

import (
	"strings"
	"unicode"

	porterstemmer "github.com/blevesearch/go-porterstemmer"
)

// Words lowercases s and returns its runs of letters and digits.
func Words(s string) []string {
	return strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
}

// Fold reduces a whitespace token to the form used for shingle comparison:
// lowercase with leading and trailing punctuation removed.
func Fold(tok string) string {
	tok = strings.TrimFunc(tok, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
	return strings.ToLower(tok)
}

// Stem returns the Porter stem of a lowercase word.
func Stem(w string) string {
	if len(w) < 3 {
		return w
	}
	return porterstemmer.StemString(w)
}

// ContentTerms lowercases s, drops stop words, discourse markers and
// words shorter than three letters, and stems what is left.
func ContentTerms(s string) []string {
	words := Words(s)
	out := make([]string, 0, len(words))
	for _, w := range words {
		if len([]rune(w)) <= 2 || IsStopWord(w) || isDiscourseMarker(w) {
			continue
		}
		out = append(out, Stem(w))
	}
	return out
}

// WordSet returns the distinct lowercase words of s.
func WordSet(s string) map[string]struct{} {
	words := Words(s)
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}

// Capitalized reports whether w starts with an uppercase letter.
func Capitalized(w string) bool {
	for _, r := range w {
		return unicode.IsUpper(r)
	}
	return false
}
