// Package citation recognizes pages that quote or cite a phrase rather
// than reproduce it without attribution.
package citation

import (
	"regexp"
	"strings"
)

// Window is how many bytes around a citation marker are searched for the
// phrase.
const Window = 100

var markers = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\b(according to|as stated by|cited in|referenced in|source:|see also|as mentioned in|as noted by)`),
	regexp.MustCompile(`\([^)]*\d{4}[^)]*\)`),         // (Smith et al., 2020)
	regexp.MustCompile(`\[[^\]]*\d+[^\]]*\]`),          // [1], [Smith 2020], [1-5]
	regexp.MustCompile(`(?i)\bdoi:\s*[\w./-]+`),        // doi:10.1000/xyz
	regexp.MustCompile(`(?i)\bpp\.\s*\d+(?:-\d+)?`),    // pp. 123-145
	regexp.MustCompile(`(?i)\b(ibid|idem)\b`),          // repeated references
	regexp.MustCompile(`[“"][^”"]{3,}[”"]`),            // quoted text
	regexp.MustCompile(`(?i)\b(quote[ds]?|quotation)\b`),
	regexp.MustCompile(`(?i)\b(references?|bibliography|works? cited)\b`),
}

// Detect reports whether phrase occurs within Window bytes of a citation
// marker in page. Matching is case-insensitive.
func Detect(phrase, page string) bool {
	phrase = strings.ToLower(strings.TrimSpace(phrase))
	if phrase == "" || page == "" {
		return false
	}
	lower := strings.ToLower(page)
	if !strings.Contains(lower, phrase) {
		return false
	}
	for _, re := range markers {
		for _, loc := range re.FindAllStringIndex(lower, 50) {
			start := max(0, loc[0]-Window)
			end := min(len(lower), loc[1]+Window)
			if strings.Contains(lower[start:end], phrase) {
				return true
			}
		}
	}
	return false
}
