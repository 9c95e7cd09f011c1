package report

import (
	"fmt"
	"sort"
	"strings"
)

// Markdown renders r as a Markdown document.
func Markdown(r Report) string {
	var b strings.Builder
	b.WriteString("# Originality report\n\n")
	fmt.Fprintf(&b, "- Plagiarism: %.0f%%\n", r.PlagiarismPercentage)
	fmt.Fprintf(&b, "- Unique: %.0f%%\n", r.UniquePercentage)
	fmt.Fprintf(&b, "- Risk: %s\n", r.Summary.RiskLevel)
	fmt.Fprintf(&b, "- Confidence: %s\n", r.Confidence)
	fmt.Fprintf(&b, "- Profile: %s (%s)\n", r.Profile, r.Method)
	fmt.Fprintf(&b, "- Words: %d\n", r.WordCount)
	if r.RequestID != "" {
		fmt.Fprintf(&b, "- Request: %s\n", r.RequestID)
	}
	if !r.CheckedAt.IsZero() {
		fmt.Fprintf(&b, "- Checked: %s\n", r.CheckedAt.UTC().Format("2006-01-02 15:04:05 UTC"))
	}
	b.WriteString("\n")
	b.WriteString(r.Summary.Recommendation)
	b.WriteString("\n\n")

	b.WriteString("## Matches\n\n")
	if len(r.Summary.TopMatches) == 0 {
		b.WriteString("No matching sources.\n\n")
	}
	for i, m := range r.Summary.TopMatches {
		title := m.Title
		if title == "" {
			title = m.URL
		}
		line := fmt.Sprintf("%d. [%s](%s) %.0f%% %s", i+1, escape(title), m.URL, m.Similarity, m.MatchType)
		if m.IsLikelyOriginal {
			line += " likely original"
		}
		if m.Enhanced {
			line += fmt.Sprintf(" semantic %.0f%%", m.Semantic)
		}
		b.WriteString(line + "\n")
	}
	if len(r.Summary.TopMatches) > 0 {
		b.WriteString("\n")
	}

	if len(r.Summary.SourcesByType) > 0 {
		b.WriteString("## Sources by type\n\n")
		types := make([]string, 0, len(r.Summary.SourcesByType))
		for t := range r.Summary.SourcesByType {
			types = append(types, t)
		}
		sort.Strings(types)
		for _, t := range types {
			fmt.Fprintf(&b, "- %s: %d\n", t, r.Summary.SourcesByType[t])
		}
		b.WriteString("\n")
	}

	cb := r.CoverageBreakdown
	b.WriteString("## Signals\n\n")
	fmt.Fprintf(&b, "- Coverage: %.1f%% (%d of %d tokens)\n", cb.CoveragePercent, cb.CoveredTokens, cb.TotalTokens)
	fmt.Fprintf(&b, "- Max similarity: %.1f%%\n", cb.MaxSimilarity)
	fmt.Fprintf(&b, "- Authority weighted: %.1f%%\n", cb.AuthorityWeightedMax)
	fmt.Fprintf(&b, "- Top sources: %.1f%%\n", cb.TopSourcesAverage)
	fmt.Fprintf(&b, "- Strong/medium matches: %d/%d\n\n", cb.StrongMatches, cb.MediumMatches)

	if len(r.KeyPhrases) > 0 {
		b.WriteString("## Key phrases\n\n")
		for _, p := range r.KeyPhrases {
			fmt.Fprintf(&b, "- %s\n", p)
		}
		b.WriteString("\n")
	}

	b.WriteString("## Timing\n\n")
	fmt.Fprintf(&b, "- Extract: %d ms\n- Search and fetch: %d ms\n- Score: %d ms\n- Total: %d ms\n", r.Timing.ExtractMS, r.Timing.SearchMS, r.Timing.ScoreMS, r.Timing.TotalMS)
	return b.String()
}

func escape(s string) string {
	return strings.NewReplacer("[", "(", "]", ")").Replace(s)
}
