// Package similarity provides nearest-neighbor retrieval and lightweight
// textual pattern mining over the benchmark corpus. Results are used to
// justify sampled pairs and as retrieval features downstream.
package similarity

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/onnwee/benchrank/internal/benchmark"
	"github.com/onnwee/benchrank/internal/embed"
	"github.com/onnwee/benchrank/internal/tracing"
)

// DefaultLimit is used when a search does not specify a result limit.
const DefaultLimit = 10

// SearchOptions filter the candidate set for FindSimilar. Platform is
// required; the remaining filters are optional (zero value = no filter).
type SearchOptions struct {
	Platform     string
	SectionType  string
	Persona      string
	MinRelevance float64
	Limit        int
}

// Match is one similarity search result.
type Match struct {
	Profile         *benchmark.Profile `json:"profile"`
	Section         *benchmark.Section `json:"section"`
	Similarity      float64            `json:"similarity"`
	MatchedKeywords []string           `json:"matched_keywords"`
}

// Index performs similarity search over benchmark sections.
type Index struct {
	store    benchmark.Store
	embedder embed.Embedder
	logger   *slog.Logger
}

// NewIndex creates an Index. A nil logger falls back to slog.Default().
func NewIndex(store benchmark.Store, embedder embed.Embedder, logger *slog.Logger) *Index {
	if logger == nil {
		logger = slog.Default()
	}
	return &Index{store: store, embedder: embedder, logger: logger}
}

// FindSimilar embeds queryText and returns the top matches among elite
// profiles' sections, sorted descending by cosine similarity. Ties keep
// candidate enumeration order, which keeps results reproducible for
// unchanged data. Sections without an embedding are skipped; a section whose
// embedding cannot be read is logged and skipped, never aborting the search.
func (idx *Index) FindSimilar(ctx context.Context, queryText string, opts SearchOptions) (matches []*Match, err error) {
	ctx, endSpan := tracing.StartSpan(ctx, "find_similar")
	defer func() { endSpan(err) }()

	if !benchmark.ValidPlatform(opts.Platform) {
		return nil, fmt.Errorf("%w: %q", benchmark.ErrInvalidPlatform, opts.Platform)
	}
	limit := opts.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}

	queryVec, err := idx.embedder.Embed(ctx, queryText)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	profiles, err := idx.store.ListProfiles(ctx, opts.Platform)
	if err != nil {
		return nil, fmt.Errorf("list profiles: %w", err)
	}

	for _, profile := range profiles {
		if !profile.Elite {
			continue
		}
		if opts.Persona != "" && profile.Persona != opts.Persona {
			continue
		}
		if profile.RelevanceScore < opts.MinRelevance {
			continue
		}

		sections, err := idx.listCandidateSections(ctx, profile.ID, opts.SectionType)
		if err != nil {
			idx.logger.Warn("skipping unreadable profile in search",
				"profile_id", profile.ID, "error", err)
			continue
		}

		for _, section := range sections {
			if section.EmbeddingID == nil {
				continue
			}
			vec, err := idx.store.GetEmbedding(ctx, *section.EmbeddingID)
			if err != nil {
				idx.logger.Warn("skipping section with unreadable embedding",
					"section_id", section.ID, "error", err)
				continue
			}
			matches = append(matches, &Match{
				Profile:         profile,
				Section:         section,
				Similarity:      embed.CosineSimilarity(queryVec, vec),
				MatchedKeywords: matchedKeywords(queryText, section.Content),
			})
		}
	}

	// Stable: equal similarities keep enumeration order.
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Similarity > matches[j].Similarity
	})
	if len(matches) > limit {
		matches = matches[:limit]
	}
	return matches, nil
}

func (idx *Index) listCandidateSections(ctx context.Context, profileID, sectionType string) ([]*benchmark.Section, error) {
	if sectionType == "" {
		return idx.store.ListSections(ctx, profileID)
	}
	return idx.store.ListSectionsByType(ctx, profileID, sectionType)
}
