package phrase

import (
	"regexp"

	"github.com/hyperifyio/originality/internal/text"
	"golang.org/x/text/language"
	"golang.org/x/text/search"
)

var (
	academicTerms = regexp.MustCompile(`(?i)\b(research|study|analysis|theory|method|system|process|algorithm|approach|development|technology|science|university|journal|publication)\b`)
	longWord      = regexp.MustCompile(`(?i)\b[a-z]{7,}\b`)
	valueTerms    = regexp.MustCompile(`(?i)\b(research|study|analysis|method|theory|data|results|conclusion)\b`)
	veryLongWord  = regexp.MustCompile(`(?i)\b[a-z]{8,}\b`)
	leadingWord   = regexp.MustCompile(`^[A-Z][a-z]+`)
)

// occurrenceCounter counts case-insensitive, non-overlapping occurrences
// of phrases in the document, memoizing results.
type occurrenceCounter struct {
	doc     string
	matcher *search.Matcher
	memo    map[string]int
}

func newOccurrenceCounter(doc string) *occurrenceCounter {
	return &occurrenceCounter{
		doc:     doc,
		matcher: search.New(language.English, search.IgnoreCase),
		memo:    make(map[string]int),
	}
}

func (c *occurrenceCounter) count(p string) int {
	if p == "" {
		return 0
	}
	if n, ok := c.memo[p]; ok {
		return n
	}
	n := 0
	rest := c.doc
	for {
		start, end := c.matcher.IndexString(rest, p)
		if start < 0 || end <= start {
			break
		}
		n++
		rest = rest[end:]
	}
	c.memo[p] = n
	return n
}

// quality scores a candidate: a length sweet spot, moderate repetition in
// the document, a leading capital, academic vocabulary and long words all
// add points.
func quality(p string, counter *occurrenceCounter) int {
	score := 0
	switch l := len(p); {
	case l >= 15 && l <= 30:
		score += 10
	case l >= 10 && l <= 40:
		score += 5
	}
	if counter != nil {
		switch n := counter.count(p); {
		case n >= 2 && n <= 4:
			score += 8
		case n == 1:
			score += 3
		}
	}
	if text.Capitalized(p) {
		score += 6
	}
	if academicTerms.MatchString(p) {
		score += 5
	}
	if longWord.MatchString(p) {
		score += 3
	}
	return score
}

// searchValue ranks merged candidates by how likely they are to surface a
// distinctive source.
func searchValue(p string) int {
	score := 0
	if valueTerms.MatchString(p) {
		score += 10
	}
	if veryLongWord.MatchString(p) {
		score += 5
	}
	if leadingWord.MatchString(p) {
		score += 5
	}
	return score
}
