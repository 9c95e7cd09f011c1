// Package report holds the outward shape of a plagiarism check and renders
// it as Markdown or PDF.
package report

import (
	"maps"
	"slices"
	"sort"
	"time"

	"github.com/hyperifyio/originality/internal/score"
)

// TopMatchLimit bounds Summary.TopMatches.
const TopMatchLimit = 15

// Risk levels by plagiarism percentage.
const (
	RiskCritical = "Critical"
	RiskHigh     = "High"
	RiskMedium   = "Medium"
	RiskLow      = "Low"
	RiskMinimal  = "Minimal"
)

// Report is the result of one plagiarism check.
type Report struct {
	RequestID            string           `json:"requestId"`
	CheckedAt            time.Time        `json:"checkedAt"`
	DocumentKind         string           `json:"documentKind"`
	WordCount            int              `json:"wordCount"`
	PlagiarismPercentage float64          `json:"plagiarismPercentage"`
	UniquePercentage     float64          `json:"uniquePercentage"`
	Confidence           score.Confidence `json:"confidence"`
	Method               string           `json:"method"`
	Profile              score.Profile    `json:"profile"`
	Matches              []score.Match    `json:"matches"`
	CoverageBreakdown    score.Breakdown  `json:"coverageBreakdown"`
	KeyPhrases           []string         `json:"keyPhrases"`
	PhrasesSearched      int              `json:"phrasesSearched"`
	SourcesChecked       int              `json:"sourcesChecked"`
	EarlyTerminated      bool             `json:"earlyTerminated"`
	Summary              Summary          `json:"summary"`
	Timing               Timing           `json:"timing"`
	Cached               bool             `json:"cached"`
}

// Clone returns a copy of r that shares no slices or maps with it.
func (r Report) Clone() Report {
	out := r
	out.Matches = slices.Clone(r.Matches)
	out.KeyPhrases = slices.Clone(r.KeyPhrases)
	out.Summary.TopMatches = slices.Clone(r.Summary.TopMatches)
	out.Summary.SourcesByType = maps.Clone(r.Summary.SourcesByType)
	return out
}

// Summary is the human-facing digest of a report.
type Summary struct {
	RiskLevel       string         `json:"riskLevel"`
	Recommendation  string         `json:"recommendation"`
	SourcesByType   map[string]int `json:"sourcesByType"`
	OriginalSources int            `json:"originalSources"`
	TopMatches      []score.Match  `json:"topMatches"`
}

// Timing records per-stage durations in milliseconds.
type Timing struct {
	ExtractMS int64 `json:"extractMs"`
	SearchMS  int64 `json:"searchMs"`
	ScoreMS   int64 `json:"scoreMs"`
	TotalMS   int64 `json:"totalMs"`
}

// New builds a Report from an aggregation result.
func New(res score.Result) Report {
	return Report{
		PlagiarismPercentage: res.FinalScore,
		UniquePercentage:     100 - res.FinalScore,
		Confidence:           res.Confidence,
		Method:               res.Method,
		Profile:              res.Profile,
		Matches:              res.Matches,
		CoverageBreakdown:    res.Breakdown,
		Summary:              Summarize(res),
	}
}

// Risk maps a plagiarism percentage to a risk level.
func Risk(pct float64) string {
	switch {
	case pct > 60:
		return RiskCritical
	case pct > 40:
		return RiskHigh
	case pct > 25:
		return RiskMedium
	case pct > 15:
		return RiskLow
	}
	return RiskMinimal
}

// Recommendation returns advice for a risk level.
func Recommendation(level string) string {
	switch level {
	case RiskCritical:
		return "Substantial text matches external sources. Rewrite the affected passages and cite every source."
	case RiskHigh:
		return "Several passages closely follow external sources. Review the listed matches and add citations or paraphrase."
	case RiskMedium:
		return "Some passages resemble external sources. Check that quoted material is attributed."
	case RiskLow:
		return "Minor overlap found, most likely common phrasing. A quick review of the top matches is enough."
	}
	return "No significant overlap with external sources was found."
}

// Summarize derives the summary block from a result.
func Summarize(res score.Result) Summary {
	level := Risk(res.FinalScore)
	s := Summary{
		RiskLevel:      level,
		Recommendation: Recommendation(level),
		SourcesByType:  map[string]int{},
	}
	for _, m := range res.Matches {
		t := m.MatchType
		if t == "" {
			t = "web"
		}
		s.SourcesByType[t]++
		if m.IsLikelyOriginal {
			s.OriginalSources++
		}
	}
	top := append([]score.Match(nil), res.Matches...)
	sort.SliceStable(top, func(i, j int) bool { return top[i].Similarity > top[j].Similarity })
	if len(top) > TopMatchLimit {
		top = top[:TopMatchLimit]
	}
	s.TopMatches = top
	return s
}
