package similarity

import (
	"context"
	"testing"
	"time"

	"github.com/onnwee/benchrank/internal/benchmark"
	"github.com/onnwee/benchrank/internal/ranker"
)

func TestBenchmarkStats(t *testing.T) {
	ctx := context.Background()
	store := searchCorpus() // 4 profiles, 3 elite, 4 about sections

	repo := ranker.NewInMemoryRepository()
	for _, id := range []string{"i1", "i2", "i3"} {
		if err := repo.CreateItem(ctx, &ranker.RankItem{
			ID:          id,
			Platform:    benchmark.PlatformGitHub,
			SectionType: benchmark.SectionAbout,
			ContentHash: id,
			Metrics:     map[string]float64{},
			CreatedAt:   time.Now(),
		}); err != nil {
			t.Fatalf("CreateItem() error: %v", err)
		}
	}
	if err := repo.CreatePair(ctx, &ranker.RankPair{
		ID:       "pair-1",
		Platform: benchmark.PlatformGitHub,
		AItemID:  "i1",
		BItemID:  "i2",
		Label:    ranker.LabelAPreferred,
		Source:   ranker.SourceBenchmark,
	}); err != nil {
		t.Fatalf("CreatePair() error: %v", err)
	}

	reader := NewStatsReader(store, repo, nil, testLogger())
	stats, err := reader.BenchmarkStats(ctx, benchmark.PlatformGitHub)
	if err != nil {
		t.Fatalf("BenchmarkStats() error: %v", err)
	}

	if stats.Platform != benchmark.PlatformGitHub {
		t.Errorf("Platform = %q", stats.Platform)
	}
	if stats.Profiles != 4 {
		t.Errorf("Profiles = %d, want 4", stats.Profiles)
	}
	if stats.EliteProfiles != 3 {
		t.Errorf("EliteProfiles = %d, want 3", stats.EliteProfiles)
	}
	if stats.SectionsByType[benchmark.SectionAbout] != 4 {
		t.Errorf("SectionsByType[about] = %d, want 4", stats.SectionsByType[benchmark.SectionAbout])
	}
	if stats.RankItems != 3 {
		t.Errorf("RankItems = %d, want 3", stats.RankItems)
	}
	if stats.RankPairs != 1 {
		t.Errorf("RankPairs = %d, want 1", stats.RankPairs)
	}
	if stats.LabelDistribution["1"] != 1 {
		t.Errorf("LabelDistribution = %v, want {\"1\": 1}", stats.LabelDistribution)
	}
}

func TestBenchmarkStatsEmptyPlatform(t *testing.T) {
	reader := NewStatsReader(benchmark.NewInMemoryStore(), ranker.NewInMemoryRepository(), nil, testLogger())

	stats, err := reader.BenchmarkStats(context.Background(), benchmark.PlatformLinkedIn)
	if err != nil {
		t.Fatalf("BenchmarkStats() error: %v", err)
	}
	if stats.Profiles != 0 || stats.RankItems != 0 || stats.RankPairs != 0 {
		t.Errorf("empty platform stats = %+v, want all zero", stats)
	}
}
