// Package ranker turns the benchmark corpus into a labeled
// pairwise-preference dataset: it materializes deduplicated, feature-annotated
// rank items, samples labeled preference pairs between them, exports the
// result as a JSONL training file with a manifest, and validates exported
// datasets.
package ranker

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"
)

// Pair labels. The label is relative to the (a, b) ordering of the pair.
const (
	LabelBPreferred = -1
	LabelEqual      = 0
	LabelAPreferred = 1
)

// Pair sources. This pipeline only produces SourceBenchmark pairs; the other
// values are written by collaborators outside this package and must survive
// export unchanged.
const (
	SourceBenchmark   = "benchmark"
	SourceUserChoice  = "user_choice"
	SourceBeforeAfter = "before_after"
	SourceHeuristic   = "heuristic"
)

// RankItem is the atomic unit compared by the ranker: one piece of benchmark
// content annotated with a fixed-schema metric mapping and an optional
// embedding reference. Items are immutable once created and deduplicated per
// platform by content hash.
type RankItem struct {
	ID          string             `json:"id"`
	Platform    string             `json:"platform"`
	SectionType string             `json:"section_type"`
	SourceRef   string             `json:"source_ref"` // human-readable origin, e.g. "torvalds/readme"
	ContentHash string             `json:"content_hash"`
	EmbeddingID *string            `json:"embedding_id,omitempty"`
	Metrics     map[string]float64 `json:"metrics"`
	CreatedAt   time.Time          `json:"created_at"`
}

// RankPair is an ordered labeled comparison between two rank items.
type RankPair struct {
	ID         string    `json:"id"`
	Platform   string    `json:"platform"`
	AItemID    string    `json:"a_item_id"`
	BItemID    string    `json:"b_item_id"`
	Label      int       `json:"label"` // -1, 0, or 1
	Source     string    `json:"source"`
	ReasonTags []string  `json:"reason_tags"`
	CreatedAt  time.Time `json:"created_at"`
}

// DatasetRow is one line of the exported JSONL training file. Metric and
// embedding vectors are fixed width: metrics follow the canonical feature
// order, embeddings are zero-filled when an item has none.
type DatasetRow struct {
	AMetrics   []float64 `json:"a_metrics"`
	BMetrics   []float64 `json:"b_metrics"`
	AEmbedding []float32 `json:"a_embedding"`
	BEmbedding []float32 `json:"b_embedding"`
	Label      int       `json:"label"`
	ReasonTags []string  `json:"reason_tags"`
	Source     string    `json:"source"`
}

// DatasetMetadata is the manifest accompanying an exported dataset. It is the
// contract the training process and the validator both rely on; key names
// follow the trainer's metadata format.
type DatasetMetadata struct {
	Version           string         `json:"version"`
	FeatureNames      []string       `json:"featureNames"`
	EmbeddingModel    string         `json:"embeddingModel"`
	EmbeddingDim      int            `json:"embeddingDim"`
	MetricsDim        int            `json:"metricsDim"`
	Platform          string         `json:"platform"`
	ItemCount         int            `json:"itemCount"`
	PairCount         int            `json:"pairCount"`
	RowCount          int            `json:"rowCount"`
	SkippedPairs      int            `json:"skippedPairs"`
	DatasetHash       string         `json:"datasetHash"`
	LabelDistribution map[string]int `json:"labelDistribution"`
	CreatedAt         time.Time      `json:"createdAt"`
}

// ContentHash returns the deterministic digest of raw section text used for
// item deduplication.
func ContentHash(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}

// DatasetHash digests the ordered (aItemID, bItemID, label) triples of a pair
// list. It is a pure function of the pairing decision: independent of file
// formatting and of which rows later fail item resolution.
func DatasetHash(pairs []*RankPair) string {
	h := sha256.New()
	for _, p := range pairs {
		fmt.Fprintf(h, "%s|%s|%d\n", p.AItemID, p.BItemID, p.Label)
	}
	return hex.EncodeToString(h.Sum(nil))
}
