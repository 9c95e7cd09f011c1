// Package score turns the per-source matches of one check into a bounded,
// confidence-labelled plagiarism score.
package score

// Match is one external source that resembles the input document.
type Match struct {
	URL    string `json:"url"`
	Title  string `json:"title,omitempty"`
	Source string `json:"source"`
	// Similarity is the combined similarity in percent, 0..100.
	Similarity float64 `json:"similarity"`
	// Authority is the domain authority weight in [0,1].
	Authority        float64 `json:"authority"`
	PriorityScore    float64 `json:"priorityScore"`
	IsLikelyOriginal bool    `json:"isLikelyOriginal"`
	MatchType        string  `json:"matchType"`
	Phrase           string  `json:"phrase"`
	Enhanced         bool    `json:"enhanced,omitempty"`
	Semantic         float64 `json:"semanticSimilarity,omitempty"`
}

// Dedupe keeps one match per URL, the one with the highest similarity.
// Ties keep the earlier match. Output order follows first appearance.
func Dedupe(in []Match) []Match {
	idx := make(map[string]int, len(in))
	out := make([]Match, 0, len(in))
	for _, m := range in {
		if m.URL == "" {
			continue
		}
		if i, ok := idx[m.URL]; ok {
			if m.Similarity > out[i].Similarity {
				out[i] = m
			}
			continue
		}
		idx[m.URL] = len(out)
		out = append(out, m)
	}
	return out
}
