package ranker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/onnwee/benchrank/internal/benchmark"
	"github.com/onnwee/benchrank/internal/features"
	"github.com/onnwee/benchrank/internal/tracing"
)

// Builder materializes rank items from benchmark sections without creating
// duplicates. Re-running it over unchanged source data creates nothing: items
// are deduplicated per platform by content hash.
type Builder struct {
	store     benchmark.Store
	repo      Repository
	extractor features.Extractor
	logger    *slog.Logger
	metrics   *Metrics
	timeNow   func() time.Time // for testability
}

// NewBuilder creates a Builder. A nil logger falls back to slog.Default();
// a nil metrics is valid and records nothing.
func NewBuilder(store benchmark.Store, repo Repository, extractor features.Extractor, logger *slog.Logger, metrics *Metrics) *Builder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Builder{
		store:     store,
		repo:      repo,
		extractor: extractor,
		logger:    logger,
		metrics:   metrics,
		timeNow:   time.Now,
	}
}

// BuildItems iterates all profiles for the platform and materializes one rank
// item per section not already present. Returns the count of newly created
// items. A profile or section that cannot be read or persisted is logged and
// skipped; the batch always completes.
func (b *Builder) BuildItems(ctx context.Context, platform string) (created int, err error) {
	ctx, endSpan := tracing.StartSpan(ctx, "build_rank_items")
	defer func() { endSpan(err) }()

	if !benchmark.ValidPlatform(platform) {
		return 0, NewValidationError("unknown platform %q", platform)
	}

	profiles, err := b.store.ListProfiles(ctx, platform)
	if err != nil {
		return 0, fmt.Errorf("list profiles for %s: %w", platform, err)
	}

	for _, profile := range profiles {
		sections, err := b.store.ListSections(ctx, profile.ID)
		if err != nil {
			b.logger.Warn("skipping unreadable profile",
				"profile_id", profile.ID,
				"external_id", profile.ExternalID,
				"error", err)
			b.metrics.IncItemsSkipped()
			continue
		}

		for _, section := range sections {
			if b.buildItem(ctx, platform, profile, section) {
				created++
			}
		}
	}

	b.metrics.AddItemsBuilt(created)
	b.logger.Info("item build complete",
		"platform", platform,
		"profiles", len(profiles),
		"items_created", created)
	return created, nil
}

// buildItem materializes a single section, returning true when a new item was
// created. Duplicates and unreadable records return false.
func (b *Builder) buildItem(ctx context.Context, platform string, profile *benchmark.Profile, section *benchmark.Section) bool {
	hash := ContentHash(section.Content)

	_, err := b.repo.FindItemByContentHash(ctx, platform, hash)
	if err == nil {
		// Already materialized in a previous run.
		return false
	}
	if !errors.Is(err, ErrItemNotFound) {
		b.logger.Warn("skipping section: dedup lookup failed",
			"section_id", section.ID, "error", err)
		b.metrics.IncItemsSkipped()
		return false
	}

	// The extractor is total; any failure here would be a configuration
	// error surfaced at startup, not per-item.
	metrics := b.extractor.Extract(section.Content, section.SectionType)

	embeddingID := section.EmbeddingID
	if embeddingID != nil {
		if _, err := b.store.GetEmbedding(ctx, *embeddingID); err != nil {
			b.logger.Warn("section embedding unresolvable, creating item without one",
				"section_id", section.ID,
				"embedding_id", *embeddingID,
				"error", err)
			embeddingID = nil
		}
	}

	item := &RankItem{
		ID:          uuid.NewString(),
		Platform:    platform,
		SectionType: section.SectionType,
		SourceRef:   profile.ExternalID + "/" + section.SectionType,
		ContentHash: hash,
		EmbeddingID: embeddingID,
		Metrics:     metrics,
		CreatedAt:   b.timeNow(),
	}

	if err := b.repo.CreateItem(ctx, item); err != nil {
		b.logger.Warn("skipping section: item insert failed",
			"section_id", section.ID, "error", err)
		b.metrics.IncItemsSkipped()
		return false
	}
	return true
}
