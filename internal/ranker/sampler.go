package ranker

import (
	"context"
	"log/slog"
	"math/rand"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/onnwee/benchrank/internal/features"
	"github.com/onnwee/benchrank/internal/tracing"
)

// Quality score weights. These are a reproducible contract with previously
// exported datasets; changing them invalidates cross-run hash comparisons.
const (
	weightClarity      = 0.25
	weightImpact       = 0.30
	weightRelevance    = 0.20
	weightCompleteness = 0.25
)

// Stratification and sampling constants.
const (
	strataFraction = 0.30 // share of items in each quality pool
	minPoolSize    = 10   // pool never smaller than this (capped at corpus size)
	attemptFactor  = 3    // attempt cap is attemptFactor * targetCount
)

// reasonMetrics are compared between the two items of a sampled pair to
// derive reason tags, in tag emission order.
var reasonMetrics = []string{
	features.FeatureClarity,
	features.FeatureImpact,
	features.FeatureRelevance,
}

// QualityScore computes the fixed weighted quality heuristic for an item's
// metric mapping. Missing metrics count as zero; the result is clamped to at
// most 1.0.
func QualityScore(metrics map[string]float64) float64 {
	score := metrics[features.FeatureClarity]*weightClarity +
		metrics[features.FeatureImpact]*weightImpact +
		metrics[features.FeatureRelevance]*weightRelevance +
		metrics[features.FeatureCompleteness]*weightCompleteness
	if score > 1.0 {
		return 1.0
	}
	return score
}

// Sampler synthesizes labeled preference pairs from a platform's rank items
// using quality-score stratification and a diversity-controlled draw.
type Sampler struct {
	repo    Repository
	logger  *slog.Logger
	metrics *Metrics
	rnd     *rand.Rand
	timeNow func() time.Time
}

// NewSampler creates a Sampler seeded from the current time. A nil logger
// falls back to slog.Default(); a nil metrics is valid and records nothing.
func NewSampler(repo Repository, logger *slog.Logger, metrics *Metrics) *Sampler {
	return NewSamplerWithRand(repo, logger, metrics, rand.New(rand.NewSource(time.Now().UnixNano())))
}

// NewSamplerWithRand creates a Sampler with an explicit random source, so
// tests can make draws deterministic.
func NewSamplerWithRand(repo Repository, logger *slog.Logger, metrics *Metrics, rnd *rand.Rand) *Sampler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Sampler{
		repo:    repo,
		logger:  logger,
		metrics: metrics,
		rnd:     rnd,
		timeNow: time.Now,
	}
}

// SamplePairs attempts to create targetCount labeled pairs for the platform.
// diversityFactor is the probability that a draw crosses quality strata (top
// vs. bottom pool) instead of staying within the top pool. Returns the number
// of pairs actually created, which may be below targetCount when the eligible
// combination space is exhausted before the attempt cap; that is success, not
// an error. Fails with a ValidationError when fewer than 2 items exist.
func (s *Sampler) SamplePairs(ctx context.Context, platform string, targetCount int, diversityFactor float64) (created int, err error) {
	ctx, endSpan := tracing.StartSpan(ctx, "sample_rank_pairs")
	defer func() { endSpan(err) }()

	items, err := s.repo.ListItemsByPlatform(ctx, platform)
	if err != nil {
		return 0, err
	}
	if len(items) < 2 {
		return 0, NewValidationError("need at least 2 rank items for %s, have %d; run item building first", platform, len(items))
	}

	// Stable sort keeps equal-quality items in storage order, which keeps
	// pool membership reproducible for unchanged data.
	sorted := append([]*RankItem(nil), items...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return QualityScore(sorted[i].Metrics) > QualityScore(sorted[j].Metrics)
	})

	poolSize := int(strataFraction * float64(len(sorted)))
	if poolSize < minPoolSize {
		poolSize = minPoolSize
	}
	if poolSize > len(sorted) {
		poolSize = len(sorted)
	}
	topPool := sorted[:poolSize]
	bottomPool := sorted[len(sorted)-poolSize:]

	seen := make(map[string]struct{})
	maxAttempts := attemptFactor * targetCount

	for attempts := 0; attempts < maxAttempts && created < targetCount; attempts++ {
		a, b, ok := s.draw(topPool, bottomPool, diversityFactor)
		if !ok {
			continue
		}

		key := unorderedKey(a.ID, b.ID)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}

		pair := &RankPair{
			ID:         uuid.NewString(),
			Platform:   platform,
			AItemID:    a.ID,
			BItemID:    b.ID,
			Label:      LabelAPreferred,
			Source:     SourceBenchmark,
			ReasonTags: reasonTags(a, b),
			CreatedAt:  s.timeNow(),
		}
		if err := s.repo.CreatePair(ctx, pair); err != nil {
			s.logger.Warn("pair insert failed", "a_item_id", a.ID, "b_item_id", b.ID, "error", err)
			continue
		}
		created++
	}

	s.metrics.AddPairsSampled(created)
	s.logger.Info("pair sampling complete",
		"platform", platform,
		"target", targetCount,
		"pairs_created", created)
	return created, nil
}

// draw picks the two items of a candidate pair, already ordered so the first
// item is the preferred one. With probability diversityFactor the pair
// crosses strata (top vs. bottom); otherwise both items come from the top
// pool, ordered by descending quality.
func (s *Sampler) draw(topPool, bottomPool []*RankItem, diversityFactor float64) (a, b *RankItem, ok bool) {
	if s.rnd.Float64() < diversityFactor {
		a = topPool[s.rnd.Intn(len(topPool))]
		b = bottomPool[s.rnd.Intn(len(bottomPool))]
		// Pools overlap on small corpora; a cross-strata draw can then hit
		// the same item twice.
		if a.ID == b.ID {
			return nil, nil, false
		}
		return a, b, true
	}

	if len(topPool) < 2 {
		return nil, nil, false
	}
	i := s.rnd.Intn(len(topPool))
	j := s.rnd.Intn(len(topPool))
	for j == i {
		j = s.rnd.Intn(len(topPool))
	}
	a, b = topPool[i], topPool[j]
	if QualityScore(b.Metrics) > QualityScore(a.Metrics) {
		a, b = b, a
	}
	return a, b, true
}

// reasonTags explains a pair's label by naming each compared metric the
// preferred item strictly wins on.
func reasonTags(preferred, other *RankItem) []string {
	var tags []string
	for _, m := range reasonMetrics {
		if preferred.Metrics[m] > other.Metrics[m] {
			tags = append(tags, m+"_better")
		}
	}
	return tags
}

// unorderedKey identifies a pair by its unordered item id combination.
func unorderedKey(a, b string) string {
	if a < b {
		return a + "|" + b
	}
	return b + "|" + a
}
