package score

import (
	"math"
	"sort"

	"github.com/hyperifyio/originality/internal/domain"
)

// Confidence labels how strongly the evidence supports the score.
type Confidence string

const (
	ConfidenceNone     Confidence = "NONE"
	ConfidenceLow      Confidence = "LOW"
	ConfidenceMedium   Confidence = "MEDIUM"
	ConfidenceHigh     Confidence = "HIGH"
	ConfidenceVeryHigh Confidence = "VERY_HIGH"
)

// Profile is the evidence pattern a match set is classified as.
type Profile string

const (
	ProfileNone          Profile = "NONE"
	ProfileDirectCopy    Profile = "DIRECT_COPY"
	ProfileMultiple      Profile = "MULTIPLE_SOURCE_COPYING"
	ProfileAuthoritative Profile = "AUTHORITATIVE_SOURCE_COPYING"
	ProfileMixed         Profile = "MIXED_OR_ORIGINAL"
)

// Method names the path that produced the final score.
const (
	MethodNoMatches    = "no_matches"
	MethodShortCircuit = "coverage_short_circuit"
	MethodProfile      = "profile_blend"
)

// Config holds the scoring constants. Percent values are on a 0..100 scale.
type Config struct {
	// MinReport and MaxReport bound the score of a non-empty match set.
	MinReport float64
	MaxReport float64
	// Short-circuit fires when coverage or the best similarity reaches
	// these values; the score is then at least ShortCircuitFloor.
	ShortCircuitCoverage   float64
	ShortCircuitSimilarity float64
	ShortCircuitFloor      float64
	// DirectCopy is the similarity of the single very strong match.
	DirectCopy float64
	// Strong and Medium bound the match bands: strong > Strong,
	// medium in (Medium, Strong].
	Strong float64
	Medium float64
	// HighAuthority is the authority above which a domain counts as
	// authoritative; AuthoritativeMin is the best similarity required.
	HighAuthority    float64
	AuthoritativeMin float64
	// AuthorityCap bounds the authority-weighted signals.
	AuthorityCap float64
	// TopN matches enter the decayed average with weight Decay^rank.
	TopN  int
	Decay float64
}

// DefaultConfig is the tuned starting configuration.
var DefaultConfig = Config{
	MinReport:              5,
	MaxReport:              99,
	ShortCircuitCoverage:   70,
	ShortCircuitSimilarity: 85,
	ShortCircuitFloor:      90,
	DirectCopy:             75,
	Strong:                 70,
	Medium:                 40,
	HighAuthority:          0.7,
	AuthoritativeMin:       50,
	AuthorityCap:           98,
	TopN:                   8,
	Decay:                  0.7,
}

// Breakdown exposes every signal behind a Result.
type Breakdown struct {
	CoveragePercent      float64 `json:"coveragePercent"`
	CoveredTokens        int     `json:"coveredTokens"`
	TotalTokens          int     `json:"totalTokens"`
	MaxSimilarity        float64 `json:"maxSimilarity"`
	AuthorityWeightedMax float64 `json:"authorityWeightedMax"`
	TopSourcesAverage    float64 `json:"topSourcesAverage"`
	ConfidenceAdjusted   float64 `json:"confidenceAdjusted"`
	MatchCount           int     `json:"matchCount"`
	StrongMatches        int     `json:"strongMatches"`
	MediumMatches        int     `json:"mediumMatches"`
	HighAuthorityMatches int     `json:"highAuthorityMatches"`
	ShortCircuit         bool    `json:"shortCircuit"`
}

// Result is the aggregated score of one check.
type Result struct {
	FinalScore float64    `json:"finalScore"`
	Confidence Confidence `json:"confidence"`
	Method     string     `json:"method"`
	Profile    Profile    `json:"profile"`
	Breakdown  Breakdown  `json:"breakdown"`
	// Matches are URL-unique, strongest first.
	Matches []Match `json:"matches"`
}

// Aggregate scores matches with DefaultConfig.
func Aggregate(matches []Match, covered, total int) Result {
	return DefaultConfig.Aggregate(matches, covered, total)
}

// Aggregate combines matches and token coverage into one Result. It is a
// pure function of its arguments; matches is not modified.
func (c Config) Aggregate(matches []Match, covered, total int) Result {
	ms := Dedupe(matches)
	sort.SliceStable(ms, func(i, j int) bool {
		if ms[i].Similarity != ms[j].Similarity {
			return ms[i].Similarity > ms[j].Similarity
		}
		return ms[i].URL < ms[j].URL
	})
	b := Breakdown{CoveredTokens: covered, TotalTokens: total, MatchCount: len(ms)}
	if total > 0 {
		b.CoveragePercent = clamp(float64(covered)/float64(total)*100, 0, 100)
	}
	if len(ms) == 0 {
		return Result{Confidence: ConfidenceNone, Method: MethodNoMatches, Profile: ProfileNone, Breakdown: b, Matches: ms}
	}

	var highAuth, veryStrong int
	for _, m := range ms {
		sim := clamp(m.Similarity, 0, 100)
		b.MaxSimilarity = math.Max(b.MaxSimilarity, sim)
		b.AuthorityWeightedMax = math.Max(b.AuthorityWeightedMax, c.authorityWeighted(sim, authorityOf(m)))
		switch {
		case sim > c.Strong:
			b.StrongMatches++
		case sim > c.Medium:
			b.MediumMatches++
		}
		if sim >= c.DirectCopy {
			veryStrong++
		}
		if authorityOf(m) > c.HighAuthority {
			highAuth++
		}
	}
	b.HighAuthorityMatches = highAuth
	b.TopSourcesAverage = c.topSources(ms)
	b.ConfidenceAdjusted = c.confidenceAdjusted(ms, b)

	res := Result{Breakdown: b, Matches: ms}
	if b.CoveragePercent >= c.ShortCircuitCoverage || b.MaxSimilarity >= c.ShortCircuitSimilarity {
		res.Breakdown.ShortCircuit = true
		res.Method = MethodShortCircuit
		res.Profile = ProfileDirectCopy
		res.Confidence = ConfidenceVeryHigh
		raw := maxOf(b.CoveragePercent, b.MaxSimilarity, b.AuthorityWeightedMax, b.TopSourcesAverage, c.ShortCircuitFloor)
		res.FinalScore = c.finish(raw)
		return res
	}

	res.Method = MethodProfile
	var raw float64
	switch {
	case veryStrong == 1 && b.StrongMatches == 1:
		res.Profile = ProfileDirectCopy
		raw = maxOf(b.MaxSimilarity, b.AuthorityWeightedMax, b.TopSourcesAverage, b.CoveragePercent*0.95)
	case b.StrongMatches >= 2 || (b.StrongMatches == 1 && b.MediumMatches >= 2):
		res.Profile = ProfileMultiple
		raw = maxOf(b.TopSourcesAverage, (b.MaxSimilarity+b.CoveragePercent)/2, b.ConfidenceAdjusted)
	case highAuth >= 2 && b.MaxSimilarity > c.AuthoritativeMin:
		res.Profile = ProfileAuthoritative
		raw = maxOf(b.AuthorityWeightedMax, (b.TopSourcesAverage+b.CoveragePercent)/2, b.MaxSimilarity*0.95)
	default:
		res.Profile = ProfileMixed
		raw = maxOf(b.CoveragePercent, b.MaxSimilarity*0.9, b.AuthorityWeightedMax*0.9)
	}
	res.FinalScore = c.finish(raw)
	res.Confidence = profileConfidence(res.Profile, res.FinalScore)
	return res
}

// authorityWeighted scales similarity up for domains above baseline authority.
func (c Config) authorityWeighted(sim, auth float64) float64 {
	return math.Min(sim*(1+(auth-0.4)*0.5), c.AuthorityCap)
}

// topSources ranks matches by similarity times authority and returns the
// decay-weighted mean similarity of the first TopN.
func (c Config) topSources(ms []Match) float64 {
	ranked := make([]Match, len(ms))
	copy(ranked, ms)
	sort.SliceStable(ranked, func(i, j int) bool {
		ri := ranked[i].Similarity * authorityOf(ranked[i])
		rj := ranked[j].Similarity * authorityOf(ranked[j])
		if ri != rj {
			return ri > rj
		}
		return ranked[i].URL < ranked[j].URL
	})
	if len(ranked) > c.TopN {
		ranked = ranked[:c.TopN]
	}
	var sum, weights float64
	w := 1.0
	for _, m := range ranked {
		sum += clamp(m.Similarity, 0, 100) * w
		weights += w
		w *= c.Decay
	}
	if weights == 0 {
		return 0
	}
	return math.Min(sum/weights, c.AuthorityCap)
}

// confidenceAdjusted rewards redundant strong evidence over coverage alone.
func (c Config) confidenceAdjusted(ms []Match, b Breakdown) float64 {
	var highSum, highMax float64
	for _, m := range ms {
		if m.Similarity > c.Strong {
			highSum += m.Similarity
			highMax = math.Max(highMax, m.Similarity)
		}
	}
	switch {
	case b.StrongMatches >= 2:
		return math.Max(highSum/float64(b.StrongMatches), b.CoveragePercent*1.2)
	case b.StrongMatches == 1 && b.MediumMatches >= 2:
		return math.Max(highMax, b.CoveragePercent*1.1)
	}
	return b.CoveragePercent
}

func (c Config) finish(raw float64) float64 {
	return math.Round(clamp(raw, c.MinReport, c.MaxReport))
}

func profileConfidence(p Profile, s float64) Confidence {
	switch p {
	case ProfileDirectCopy:
		return band(s, 85, 65, ConfidenceVeryHigh, ConfidenceHigh, ConfidenceMedium)
	case ProfileMultiple:
		return band(s, 75, 45, ConfidenceHigh, ConfidenceMedium, ConfidenceLow)
	case ProfileAuthoritative:
		return band(s, 70, 45, ConfidenceHigh, ConfidenceMedium, ConfidenceLow)
	}
	if s >= 60 {
		return ConfidenceMedium
	}
	return ConfidenceLow
}

func band(s, hi, mid float64, top, middle, bottom Confidence) Confidence {
	switch {
	case s >= hi:
		return top
	case s >= mid:
		return middle
	}
	return bottom
}

func authorityOf(m Match) float64 {
	if m.Authority > 0 {
		return m.Authority
	}
	return domain.Authority(m.URL)
}

func clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) {
		return lo
	}
	return math.Max(lo, math.Min(hi, v))
}

func maxOf(vs ...float64) float64 {
	m := math.Inf(-1)
	for _, v := range vs {
		m = math.Max(m, v)
	}
	return m
}
