package text

import (
	"regexp"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"
	"gopkg.in/neurosnap/sentences.v1"
	"gopkg.in/neurosnap/sentences.v1/english"
)

var (
	tokenizerOnce sync.Once
	tokenizer     *sentences.DefaultSentenceTokenizer
	sentenceEnd   = regexp.MustCompile(`[.!?]+\s+`)
)

// Sentences splits s into trimmed, non-empty sentences using the Punkt
// English model. A regexp split is used if the model cannot be loaded.
func Sentences(s string) []string {
	tokenizerOnce.Do(func() {
		t, err := english.NewSentenceTokenizer(nil)
		if err != nil {
			log.Warn().Err(err).Msg("sentence model unavailable; using punctuation split")
			return
		}
		tokenizer = t
	})
	var parts []string
	if tokenizer != nil {
		for _, sent := range tokenizer.Tokenize(s) {
			parts = append(parts, sent.Text)
		}
	} else {
		parts = sentenceEnd.Split(s, -1)
	}
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.Join(strings.Fields(p), " ")
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
