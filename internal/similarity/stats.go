package similarity

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/onnwee/benchrank/internal/benchmark"
	"github.com/onnwee/benchrank/internal/ranker"
)

// statsCacheTTL bounds how stale cached benchmark stats may get.
const statsCacheTTL = 5 * time.Minute

// Stats aggregates corpus and pipeline counts for one platform.
type Stats struct {
	Platform          string         `json:"platform"`
	Profiles          int            `json:"profiles"`
	EliteProfiles     int            `json:"elite_profiles"`
	SectionsByType    map[string]int `json:"sections_by_type"`
	RankItems         int            `json:"rank_items"`
	RankPairs         int            `json:"rank_pairs"`
	LabelDistribution map[string]int `json:"label_distribution"`
}

// StatsReader computes benchmark statistics. Each call is a full platform
// scan; an optional Redis cache amortizes repeated calls. A nil cache client
// disables caching entirely.
type StatsReader struct {
	store  benchmark.Store
	repo   ranker.Repository
	cache  *redis.Client
	logger *slog.Logger
}

// NewStatsReader creates a StatsReader. cache may be nil; a nil logger falls
// back to slog.Default().
func NewStatsReader(store benchmark.Store, repo ranker.Repository, cache *redis.Client, logger *slog.Logger) *StatsReader {
	if logger == nil {
		logger = slog.Default()
	}
	return &StatsReader{store: store, repo: repo, cache: cache, logger: logger}
}

func statsCacheKey(platform string) string {
	return "benchrank:stats:" + platform
}

// BenchmarkStats returns aggregate counts for the platform, serving from the
// cache when one is configured and fresh. Cache failures degrade to a direct
// scan, never to an error.
func (r *StatsReader) BenchmarkStats(ctx context.Context, platform string) (*Stats, error) {
	if r.cache != nil {
		cached, err := r.cache.Get(ctx, statsCacheKey(platform)).Bytes()
		if err == nil {
			stats := &Stats{}
			if err := json.Unmarshal(cached, stats); err == nil {
				return stats, nil
			}
			// Unparsable cache entry: fall through to a fresh scan.
		} else if err != redis.Nil {
			r.logger.Warn("stats cache read failed", "platform", platform, "error", err)
		}
	}

	stats, err := r.scan(ctx, platform)
	if err != nil {
		return nil, err
	}

	if r.cache != nil {
		if payload, err := json.Marshal(stats); err == nil {
			if err := r.cache.Set(ctx, statsCacheKey(platform), payload, statsCacheTTL).Err(); err != nil {
				r.logger.Warn("stats cache write failed", "platform", platform, "error", err)
			}
		}
	}
	return stats, nil
}

// scan recomputes stats with full platform scans.
func (r *StatsReader) scan(ctx context.Context, platform string) (*Stats, error) {
	stats := &Stats{
		Platform:          platform,
		SectionsByType:    make(map[string]int),
		LabelDistribution: make(map[string]int),
	}

	profiles, err := r.store.ListProfiles(ctx, platform)
	if err != nil {
		return nil, fmt.Errorf("list profiles: %w", err)
	}
	stats.Profiles = len(profiles)
	for _, p := range profiles {
		if p.Elite {
			stats.EliteProfiles++
		}
		sections, err := r.store.ListSections(ctx, p.ID)
		if err != nil {
			r.logger.Warn("skipping unreadable profile in stats", "profile_id", p.ID, "error", err)
			continue
		}
		for _, sec := range sections {
			stats.SectionsByType[sec.SectionType]++
		}
	}

	items, err := r.repo.ListItemsByPlatform(ctx, platform)
	if err != nil {
		return nil, fmt.Errorf("list rank items: %w", err)
	}
	stats.RankItems = len(items)

	pairCount, err := r.repo.CountPairsByPlatform(ctx, platform)
	if err != nil {
		return nil, fmt.Errorf("count rank pairs: %w", err)
	}
	stats.RankPairs = pairCount

	dist, err := r.repo.LabelDistribution(ctx, platform)
	if err != nil {
		return nil, fmt.Errorf("label distribution: %w", err)
	}
	for label, count := range dist {
		stats.LabelDistribution[fmt.Sprintf("%d", label)] = count
	}

	return stats, nil
}
