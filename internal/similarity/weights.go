package similarity

// Weights is the convex blend applied to the individual metric values.
// The fields must sum to 1.
type Weights struct {
	Cosine      float64
	NGram3      float64
	NGram4      float64
	NGram5      float64
	Fuzzy       float64
	Dice        float64
	Jaccard     float64
	Levenshtein float64
}

// DefaultWeights favours term-vector and word n-gram agreement; the
// character-level metrics only nudge the blend.
var DefaultWeights = Weights{
	Cosine:      0.30, // stemmed term-frequency cosine
	NGram3:      0.20, // word trigram Jaccard
	NGram4:      0.15,
	NGram5:      0.10,
	Fuzzy:       0.10, // sequence-matcher ratio
	Dice:        0.07, // character-bigram Dice
	Jaccard:     0.05, // content-term set Jaccard
	Levenshtein: 0.03, // normalized edit distance
}

// Guard limits. When the character-level metrics agree strongly but the
// term vectors do not, the overlap is boilerplate and the blend is capped.
const (
	GuardCharLevel = 0.6
	GuardCosine    = 0.4
	GuardCeiling   = 0.35
)

// Aggressive score parameters.
const (
	QuickCheckChars    = 200
	QuickCheckMin      = 0.1
	WordOverlapWeight  = 0.6
	FragmentWeight     = 0.7
	FragmentWords      = 4
	FragmentMax        = 20
	FragmentFuzzyMatch = 0.75
)

// MaxCharCompare bounds the runes fed to the quadratic character metrics.
const MaxCharCompare = 3000

func (w Weights) sum() float64 {
	return w.Cosine + w.NGram3 + w.NGram4 + w.NGram5 + w.Fuzzy + w.Dice + w.Jaccard + w.Levenshtein
}
