package app

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/hyperifyio/originality/internal/aggregate"
	"github.com/hyperifyio/originality/internal/cache"
	"github.com/hyperifyio/originality/internal/citation"
	"github.com/hyperifyio/originality/internal/domain"
	"github.com/hyperifyio/originality/internal/phrase"
	"github.com/hyperifyio/originality/internal/report"
	"github.com/hyperifyio/originality/internal/score"
	"github.com/hyperifyio/originality/internal/search"
	selecter "github.com/hyperifyio/originality/internal/select"
	"github.com/hyperifyio/originality/internal/shingle"
	"github.com/hyperifyio/originality/internal/similarity"
	"github.com/hyperifyio/originality/internal/text"
)

// Thresholds on the combined page similarity (0..1).
const (
	// CoverageThreshold is the similarity above which a page marks coverage.
	CoverageThreshold = 0.05
	// MatchThreshold is the similarity above which a page becomes a Match.
	MatchThreshold = 0.25
	// EarlyStopAggressive stops scheduling new batches once any page
	// reaches this aggressive score.
	EarlyStopAggressive = 0.95
)

// run is the state of one check shared by its phrase pipelines.
type run struct {
	c        *Checker
	log      zerolog.Logger
	doc      *text.Document
	input    *similarity.Profile
	windows  []shingle.Window
	coverage *shingle.CoverageMap

	stop    atomic.Bool
	claimed sync.Map
	fetched atomic.Int64

	mu     sync.Mutex
	groups [][]score.Match
	pages  map[string]string
}

// CheckPlagiarism scores raw against external sources. Input problems
// return an *InputError; hitting the request timeout returns a retryable
// *RequestError. Provider and fetch failures only reduce the evidence.
func (c *Checker) CheckPlagiarism(ctx context.Context, raw string, kind text.Kind) (report.Report, error) {
	start := c.now()
	requestID := uuid.NewString()
	logger := log.With().Str("request_id", requestID).Logger()

	doc, err := text.NewDocument(raw, kind)
	if err != nil {
		c.metrics.CheckDuration("invalid", time.Since(start))
		return report.Report{}, &InputError{Err: err}
	}

	key := cache.KeyFrom("report", string(doc.Kind), doc.Raw)
	if hit, ok := c.reports.Get(key); ok {
		cached := hit.Clone()
		cached.RequestID = requestID
		cached.Cached = true
		cached.CheckedAt = start
		cached.Timing = report.Timing{TotalMS: ms(time.Since(start))}
		logger.Info().Float64("score", cached.PlagiarismPercentage).Msg("served cached report")
		c.metrics.CheckDuration("cached", time.Since(start))
		return cached, nil
	}

	if c.cfg.RequestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.cfg.RequestTimeout)
		defer cancel()
	}

	phrases := c.extractor.Extract(doc)
	extractDone := time.Since(start)
	logger.Info().Int("words", doc.WordCount).Int("phrases", len(phrases)).Msg("phrases extracted")

	r := &run{
		c:        c,
		log:      logger,
		doc:      doc,
		input:    similarity.NewProfile(doc.Raw),
		windows:  shingle.Build(doc.Tokens, shingle.WindowSize(len(doc.Tokens)), shingle.Stride),
		coverage: shingle.NewCoverageMap(len(doc.Tokens)),
		pages:    map[string]string{},
	}

	searchStart := time.Now()
	var g errgroup.Group
	for _, p := range phrases {
		p := p
		g.Go(func() error {
			r.searchPhrase(ctx, p)
			return nil
		})
	}
	_ = g.Wait()
	searchDone := time.Since(searchStart)

	if err := ctx.Err(); err != nil {
		outcome := "canceled"
		retryable := false
		if errors.Is(err, context.DeadlineExceeded) {
			outcome, retryable = "timeout", true
		}
		logger.Warn().Err(err).Dur("elapsed", time.Since(start)).Msg("check aborted")
		c.metrics.CheckDuration(outcome, time.Since(start))
		return report.Report{}, &RequestError{Retryable: retryable, Err: fmt.Errorf("check %s: %w", requestID, err)}
	}

	scoreStart := time.Now()
	matches := aggregate.MergeMatches(r.groups)
	if c.semantic != nil && len(matches) > 0 {
		matches = c.semantic.Enhance(ctx, doc.Raw, matches, r.pages)
	}
	res := score.Aggregate(matches, r.coverage.Covered(), r.coverage.Len())

	rep := report.New(res)
	rep.RequestID = requestID
	rep.CheckedAt = start
	rep.DocumentKind = string(doc.Kind)
	rep.WordCount = doc.WordCount
	rep.KeyPhrases = phraseTexts(phrases)
	rep.PhrasesSearched = len(phrases)
	rep.SourcesChecked = int(r.fetched.Load())
	rep.EarlyTerminated = r.stop.Load()
	rep.Timing = report.Timing{
		ExtractMS: ms(extractDone),
		SearchMS:  ms(searchDone),
		ScoreMS:   ms(time.Since(scoreStart)),
		TotalMS:   ms(time.Since(start)),
	}
	c.reports.Set(key, rep.Clone())

	logger.Info().
		Float64("score", rep.PlagiarismPercentage).
		Str("confidence", string(rep.Confidence)).
		Str("profile", string(rep.Profile)).
		Int("matches", len(rep.Matches)).
		Float64("coverage", res.Breakdown.CoveragePercent).
		Bool("early_stop", rep.EarlyTerminated).
		Msg("check complete")
	c.metrics.CheckDuration("ok", time.Since(start))
	return rep, nil
}

// searchPhrase runs one pipeline: search, select, then fetch and score hits in
// batches until the request-wide stop flag is raised.
func (r *run) searchPhrase(ctx context.Context, p phrase.Phrase) {
	if r.stop.Load() || ctx.Err() != nil {
		return
	}
	logger := r.log.With().Str("phrase", p.Text).Logger()
	hits, err := r.c.orch.Search(ctx, p.Text)
	if err != nil {
		if ctx.Err() == nil {
			logger.Warn().Err(err).Msg("search failed; phrase contributes no matches")
		}
		return
	}
	selected := selecter.Select(hits, selecter.Options{
		MaxTotal:  r.c.cfg.MaxSourcesPerPhrase,
		PerDomain: r.c.cfg.PerDomainCap,
		Seen: func(canon string) bool {
			_, loaded := r.claimed.LoadOrStore(canon, struct{}{})
			return loaded
		},
	})
	logger.Debug().Int("hits", len(hits)).Int("selected", len(selected)).Msg("search done")

	var found []score.Match
	var mu sync.Mutex
	for _, batch := range selecter.Batches(selected, r.c.cfg.BatchSize) {
		if r.stop.Load() || ctx.Err() != nil {
			break
		}
		var wg sync.WaitGroup
		for _, hit := range batch {
			hit := hit
			wg.Add(1)
			go func() {
				defer wg.Done()
				if m, ok := r.source(ctx, p, hit); ok {
					mu.Lock()
					found = append(found, m)
					mu.Unlock()
				}
			}()
		}
		wg.Wait()
	}
	if len(found) > 0 {
		r.mu.Lock()
		r.groups = append(r.groups, found)
		r.mu.Unlock()
	}
}

// source fetches and scores one hit. Coverage is marked for any page above
// CoverageThreshold; a Match is returned above MatchThreshold.
func (r *run) source(ctx context.Context, p phrase.Phrase, hit search.Result) (score.Match, bool) {
	page, err := r.c.fetcher.Fetch(ctx, hit.URL)
	if err != nil || page == nil {
		return score.Match{}, false
	}
	r.fetched.Add(1)
	if citation.Detect(p.Text, page.Text) {
		r.log.Debug().Str("url", hit.URL).Msg("page cites the phrase; skipped")
		return score.Match{}, false
	}
	pageProfile := similarity.NewProfile(page.Text)
	combined := similarity.Compare(r.input, pageProfile).Combined
	if similarity.Aggressive(r.input, pageProfile, combined) >= EarlyStopAggressive && !r.stop.Swap(true) {
		r.log.Info().Str("url", hit.URL).Msg("near-verbatim source found; no new batches")
	}
	if combined > CoverageThreshold {
		r.coverage.MarkMatches(r.windows, shingle.Set(strings.Fields(page.Text), shingle.WindowSize(len(r.doc.Tokens))))
	}
	if combined <= MatchThreshold {
		return score.Match{}, false
	}

	canon := aggregate.Canonical(hit.URL)
	r.mu.Lock()
	r.pages[canon] = page.Text
	r.mu.Unlock()

	priority := domain.Priority(hit.URL, len(page.Text), len(r.doc.Raw), combined)
	return score.Match{
		URL:              hit.URL,
		Title:            hit.Title,
		Source:           hit.Source,
		Similarity:       math.Round(combined * 100),
		Authority:        domain.Authority(hit.URL),
		PriorityScore:    math.Round(priority*100) / 100,
		IsLikelyOriginal: priority > domain.LikelyOriginalThreshold,
		MatchType:        domain.SourceType(hit.URL),
		Phrase:           p.Text,
	}, true
}

func phraseTexts(in []phrase.Phrase) []string {
	out := make([]string, len(in))
	for i, p := range in {
		out[i] = p.Text
	}
	return out
}

func ms(d time.Duration) int64 { return d.Milliseconds() }
