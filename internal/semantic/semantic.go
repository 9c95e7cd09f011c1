// Package semantic adds an optional embeddings-based similarity pass on top
// of the lexical scores. Any OpenAI-compatible embeddings endpoint works.
package semantic

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
	openai "github.com/sashabaranov/go-openai"

	"github.com/hyperifyio/originality/internal/cache"
	"github.com/hyperifyio/originality/internal/score"
	"github.com/hyperifyio/originality/internal/text"
)

// Defaults for Scorer.
const (
	DefaultModel         = "text-embedding-3-small"
	DefaultMinSimilarity = 30.0
	DefaultMaxChars      = 2000
	DefaultCacheTTL      = 24 * time.Hour
	DefaultCacheSize     = 2000
)

// Embedder is the subset of the OpenAI client used here.
type Embedder interface {
	CreateEmbeddings(ctx context.Context, conv openai.EmbeddingRequestConverter) (openai.EmbeddingResponse, error)
}

// Scorer computes embedding cosine similarity between texts.
type Scorer struct {
	Client Embedder
	Model  string
	// MinSimilarity is the lexical similarity (percent) a match needs
	// before it is re-scored.
	MinSimilarity float64
	MaxChars      int
	Cache         *cache.Store[[]float32]
}

// NewOpenAI returns a Scorer backed by an OpenAI-compatible endpoint.
func NewOpenAI(baseURL, apiKey, model string, hc *http.Client) *Scorer {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	if hc != nil {
		cfg.HTTPClient = hc
	}
	if model == "" {
		model = DefaultModel
	}
	return &Scorer{
		Client:        openai.NewClientWithConfig(cfg),
		Model:         model,
		MinSimilarity: DefaultMinSimilarity,
		MaxChars:      DefaultMaxChars,
		Cache:         cache.NewStore[[]float32]("embedding", DefaultCacheSize, DefaultCacheTTL, nil),
	}
}

// Similarity returns the cosine similarity of the embeddings of a and b,
// clipped to [0,1].
func (s *Scorer) Similarity(ctx context.Context, a, b string) (float64, error) {
	vecs, err := s.embed(ctx, []string{a, b})
	if err != nil {
		return 0, err
	}
	return Cosine(vecs[0], vecs[1]), nil
}

// Enhance re-scores matches whose lexical similarity reaches MinSimilarity
// and whose page text is known. Similarity becomes the larger of the two
// scores. Embedding failures leave the matches unchanged.
func (s *Scorer) Enhance(ctx context.Context, input string, matches []score.Match, pages map[string]string) []score.Match {
	out := make([]score.Match, len(matches))
	copy(out, matches)
	if s == nil || s.Client == nil {
		return out
	}
	for i, m := range out {
		page, ok := pages[m.URL]
		if !ok || m.Similarity < s.minSimilarity() {
			continue
		}
		sim, err := s.Similarity(ctx, input, page)
		if err != nil {
			log.Warn().Err(err).Str("url", m.URL).Msg("semantic similarity failed")
			if ctx.Err() != nil {
				break
			}
			continue
		}
		pct := math.Round(sim * 100)
		out[i].Semantic = pct
		out[i].Enhanced = true
		if pct > m.Similarity {
			out[i].Similarity = pct
		}
	}
	return out
}

func (s *Scorer) embed(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	var missing []string
	var slots []int
	for i, t := range texts {
		t = text.Prefix(t, s.maxChars())
		if s.Cache != nil {
			if v, ok := s.Cache.Get(cache.KeyFrom(s.Model, t)); ok {
				out[i] = v
				continue
			}
		}
		missing = append(missing, t)
		slots = append(slots, i)
	}
	if len(missing) == 0 {
		return out, nil
	}
	resp, err := s.Client.CreateEmbeddings(ctx, openai.EmbeddingRequestStrings{
		Input: missing,
		Model: openai.EmbeddingModel(s.Model),
	})
	if err != nil {
		return nil, fmt.Errorf("embeddings: %w", err)
	}
	if len(resp.Data) != len(missing) {
		return nil, fmt.Errorf("embeddings: got %d vectors for %d inputs", len(resp.Data), len(missing))
	}
	for _, d := range resp.Data {
		if d.Index < 0 || d.Index >= len(missing) {
			return nil, errors.New("embeddings: index out of range")
		}
		out[slots[d.Index]] = d.Embedding
		if s.Cache != nil {
			s.Cache.Set(cache.KeyFrom(s.Model, missing[d.Index]), d.Embedding)
		}
	}
	return out, nil
}

func (s *Scorer) minSimilarity() float64 {
	if s.MinSimilarity > 0 {
		return s.MinSimilarity
	}
	return DefaultMinSimilarity
}

func (s *Scorer) maxChars() int {
	if s.MaxChars > 0 {
		return s.MaxChars
	}
	return DefaultMaxChars
}

// Cosine returns the cosine similarity of two vectors clipped to [0,1].
// Mismatched or zero vectors give 0.
func Cosine(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		na += x * x
		nb += y * y
	}
	if na == 0 || nb == 0 {
		return 0
	}
	c := dot / (math.Sqrt(na) * math.Sqrt(nb))
	return math.Max(0, math.Min(1, c))
}
