package phrase

import (
	"strings"
	"unicode"

	"github.com/hyperifyio/originality/internal/text"
)

// Candidate shape limits.
const (
	minWords       = 2
	maxWords       = 5
	minChars       = 9
	maxChars       = 59
	earlySentences = 5 // sentences mined for fixed fragments
	fragmentWords  = 4
	fragmentsPer   = 3
	minSentChars   = 21

	sentenceLevelSentences = 6
	sentenceLevelStarts    = 4
	sentenceLevelMinChars  = 13
	sentenceLevelMaxChars  = 79
	sentenceLevelMinLen    = 16
)

var adjectiveSuffixes = []string{"al", "ive", "ous", "ic", "ful", "able", "ible", "ary", "less", "ent", "ant"}

// standardCandidates mines proper-noun runs, content-word clusters,
// adjective-led clusters and fixed fragments of the first sentences.
func standardCandidates(sents []string) []string {
	var out []string
	for _, s := range sents {
		words := strings.Fields(s)
		out = append(out, properNounRuns(words)...)
		out = append(out, contentClusters(words)...)
		out = append(out, adjectiveClusters(words)...)
	}
	n := 0
	for _, s := range sents {
		if len(s) < minSentChars {
			continue
		}
		if n == earlySentences {
			break
		}
		n++
		words := strings.Fields(s)
		for i := 0; i < min(len(words)-fragmentWords+1, fragmentsPer); i++ {
			frag := trimPunct(strings.Join(words[i:i+fragmentWords], " "))
			if len(frag) > 15 && len(frag) < 60 {
				out = append(out, frag)
			}
		}
	}
	return filterShape(out)
}

// properNounRuns returns runs of two or more capitalized words not broken
// by punctuation.
func properNounRuns(words []string) []string {
	var out, run []string
	flush := func() {
		if len(run) >= minWords {
			out = append(out, strings.Join(run, " "))
		}
		run = run[:0]
	}
	for _, w := range words {
		clean := trimPunct(w)
		if clean == "" || !text.Capitalized(clean) || text.IsStopWord(strings.ToLower(clean)) {
			flush()
			continue
		}
		run = append(run, clean)
		if endsClause(w) {
			flush()
		}
	}
	flush()
	return out
}

// contentClusters returns runs of two to four consecutive content words.
// Longer runs contribute their leading four words.
func contentClusters(words []string) []string {
	var out, run []string
	flush := func() {
		if len(run) >= minWords {
			out = append(out, strings.Join(run[:min(len(run), 4)], " "))
		}
		run = run[:0]
	}
	for _, w := range words {
		clean := trimPunct(w)
		if !isContentWord(clean) {
			flush()
			continue
		}
		run = append(run, clean)
		if endsClause(w) {
			flush()
		}
	}
	flush()
	return out
}

// adjectiveClusters returns an adjective-like word followed by one or two
// content words.
func adjectiveClusters(words []string) []string {
	var out []string
	for i := 0; i < len(words)-1; i++ {
		adj := trimPunct(words[i])
		if !looksAdjective(adj) || endsClause(words[i]) {
			continue
		}
		parts := []string{adj}
		for j := i + 1; j < len(words) && j <= i+2; j++ {
			clean := trimPunct(words[j])
			if !isContentWord(clean) {
				break
			}
			parts = append(parts, clean)
			if endsClause(words[j]) {
				break
			}
		}
		if len(parts) >= minWords {
			out = append(out, strings.Join(parts, " "))
		}
	}
	return out
}

// sentenceCandidates returns overlapping 3-5 word runs from the leading
// sentences, scored with a bonus for length.
func sentenceCandidates(sents []string, counter *occurrenceCounter) []scored {
	var out []scored
	used := 0
	for _, s := range sents {
		if len(s) < sentenceLevelMinLen {
			continue
		}
		if used == sentenceLevelSentences {
			break
		}
		used++
		words := strings.Fields(s)
		for i := 0; i < min(len(words)-2, sentenceLevelStarts); i++ {
			for l := 3; l <= min(5, len(words)-i); l++ {
				p := trimPunct(strings.Join(words[i:i+l], " "))
				if len(p) < sentenceLevelMinChars || len(p) > sentenceLevelMaxChars {
					continue
				}
				out = append(out, scored{
					Phrase: Phrase{Text: p, Quality: quality(p, counter) + 2*l},
					order:  len(out),
				})
			}
		}
	}
	return out
}

func filterShape(in []string) []string {
	out := in[:0]
	for _, p := range in {
		n := len(strings.Fields(p))
		if n < minWords || n > maxWords || len(p) < minChars || len(p) > maxChars {
			continue
		}
		if allDigits(p) {
			continue
		}
		out = append(out, p)
	}
	return out
}

func isContentWord(w string) bool {
	if len([]rune(w)) < 3 || text.IsStopWord(strings.ToLower(w)) {
		return false
	}
	for _, r := range w {
		if !unicode.IsLetter(r) && r != '-' && r != '\'' {
			return false
		}
	}
	return true
}

func looksAdjective(w string) bool {
	lw := strings.ToLower(w)
	if len(lw) < 5 || !isContentWord(lw) {
		return false
	}
	for _, suf := range adjectiveSuffixes {
		if strings.HasSuffix(lw, suf) {
			return true
		}
	}
	return false
}

func endsClause(w string) bool {
	return strings.HasSuffix(w, ",") || strings.HasSuffix(w, ";") || strings.HasSuffix(w, ":") ||
		strings.HasSuffix(w, ".") || strings.HasSuffix(w, ")") || strings.HasSuffix(w, "?") || strings.HasSuffix(w, "!")
}

func allDigits(s string) bool {
	for _, r := range s {
		if !unicode.IsDigit(r) && !unicode.IsSpace(r) {
			return false
		}
	}
	return true
}
