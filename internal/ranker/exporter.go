package ranker

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/onnwee/benchrank/internal/benchmark"
	"github.com/onnwee/benchrank/internal/tracing"
)

// DatasetSchemaVersion is written to every manifest.
const DatasetSchemaVersion = "1.0"

// ExportResult summarizes a completed dataset export.
type ExportResult struct {
	DatasetPath  string `json:"dataset_path"`
	MetadataPath string `json:"metadata_path"`
	RowCount     int    `json:"row_count"`
	ItemCount    int    `json:"item_count"`
	PairCount    int    `json:"pair_count"`
	SkippedPairs int    `json:"skipped_pairs"`
	DatasetHash  string `json:"dataset_hash"`
}

// Exporter serializes a platform's items and pairs into a line-oriented
// training file plus manifest. Output is reproducible: row order follows pair
// storage order and the dataset hash depends only on pair content.
type Exporter struct {
	repo           Repository
	store          benchmark.Store
	featureNames   []string // canonical order, defines metric vector layout
	embeddingModel string
	embeddingDim   int
	logger         *slog.Logger
	metrics        *Metrics
	timeNow        func() time.Time
}

// NewExporter creates an Exporter. featureNames is the canonical ordered
// feature list; embeddingModel and embeddingDim describe the deployment's
// fixed embedding configuration. A nil logger falls back to slog.Default();
// a nil metrics is valid and records nothing.
func NewExporter(repo Repository, store benchmark.Store, featureNames []string, embeddingModel string, embeddingDim int, logger *slog.Logger, metrics *Metrics) *Exporter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Exporter{
		repo:           repo,
		store:          store,
		featureNames:   featureNames,
		embeddingModel: embeddingModel,
		embeddingDim:   embeddingDim,
		logger:         logger,
		metrics:        metrics,
		timeNow:        time.Now,
	}
}

// Export writes dataset_<platform>.jsonl and dataset_<platform>.manifest.json
// into outputDir. Fails with a ValidationError when the platform has no pairs.
// A pair whose items cannot be resolved is counted as skipped and omitted;
// it never aborts the export.
func (e *Exporter) Export(ctx context.Context, platform, outputDir string) (result *ExportResult, err error) {
	ctx, endSpan := tracing.StartSpan(ctx, "export_dataset")
	defer func() { endSpan(err) }()
	start := e.timeNow()

	pairs, err := e.repo.ListPairsByPlatform(ctx, platform)
	if err != nil {
		return nil, err
	}
	if len(pairs) == 0 {
		return nil, NewValidationError("no rank pairs exist for %s; run pair sampling first", platform)
	}

	items, err := e.repo.ListItemsByPlatform(ctx, platform)
	if err != nil {
		return nil, err
	}
	itemsByID := make(map[string]*RankItem, len(items))
	for _, item := range items {
		itemsByID[item.ID] = item
	}

	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}
	datasetPath := filepath.Join(outputDir, fmt.Sprintf("dataset_%s.jsonl", platform))
	metadataPath := filepath.Join(outputDir, fmt.Sprintf("dataset_%s.manifest.json", platform))

	f, err := os.Create(datasetPath)
	if err != nil {
		return nil, fmt.Errorf("create dataset file: %w", err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	enc := json.NewEncoder(w)

	rowCount := 0
	skipped := 0
	for _, pair := range pairs {
		a, okA := itemsByID[pair.AItemID]
		b, okB := itemsByID[pair.BItemID]
		if !okA || !okB {
			e.logger.Warn("skipping pair: referenced item missing",
				"pair_id", pair.ID,
				"a_item_id", pair.AItemID,
				"b_item_id", pair.BItemID)
			skipped++
			continue
		}

		row := DatasetRow{
			AMetrics:   e.projectMetrics(a.Metrics),
			BMetrics:   e.projectMetrics(b.Metrics),
			AEmbedding: e.resolveEmbedding(ctx, a),
			BEmbedding: e.resolveEmbedding(ctx, b),
			Label:      pair.Label,
			ReasonTags: pair.ReasonTags,
			Source:     pair.Source,
		}
		if row.ReasonTags == nil {
			row.ReasonTags = []string{}
		}
		if err := enc.Encode(row); err != nil {
			return nil, fmt.Errorf("write dataset row: %w", err)
		}
		rowCount++
	}

	if err := w.Flush(); err != nil {
		return nil, fmt.Errorf("flush dataset file: %w", err)
	}
	if err := f.Sync(); err != nil {
		return nil, fmt.Errorf("sync dataset file: %w", err)
	}

	dist, err := e.repo.LabelDistribution(ctx, platform)
	if err != nil {
		return nil, err
	}
	labelDist := make(map[string]int, len(dist))
	for label, count := range dist {
		labelDist[strconv.Itoa(label)] = count
	}

	// Hash over ALL pairs considered, not just exported rows: the hash
	// fingerprints the pairing decision, not the file.
	datasetHash := DatasetHash(pairs)

	manifest := DatasetMetadata{
		Version:           DatasetSchemaVersion,
		FeatureNames:      e.featureNames,
		EmbeddingModel:    e.embeddingModel,
		EmbeddingDim:      e.embeddingDim,
		MetricsDim:        len(e.featureNames),
		Platform:          platform,
		ItemCount:         len(items),
		PairCount:         len(pairs),
		RowCount:          rowCount,
		SkippedPairs:      skipped,
		DatasetHash:       datasetHash,
		LabelDistribution: labelDist,
		CreatedAt:         e.timeNow().UTC(),
	}
	manifestJSON, err := json.MarshalIndent(manifest, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal manifest: %w", err)
	}
	if err := os.WriteFile(metadataPath, manifestJSON, 0o644); err != nil {
		return nil, fmt.Errorf("write manifest: %w", err)
	}

	e.metrics.AddRowsExported(rowCount)
	e.metrics.AddRowsSkipped(skipped)
	e.metrics.ObserveExportDuration(e.timeNow().Sub(start).Seconds())
	e.logger.Info("dataset export complete",
		"platform", platform,
		"rows", rowCount,
		"skipped_pairs", skipped,
		"dataset_hash", datasetHash)

	return &ExportResult{
		DatasetPath:  datasetPath,
		MetadataPath: metadataPath,
		RowCount:     rowCount,
		ItemCount:    len(items),
		PairCount:    len(pairs),
		SkippedPairs: skipped,
		DatasetHash:  datasetHash,
	}, nil
}

// projectMetrics re-projects an item's metric mapping onto the canonical
// ordered feature list. Missing features default to 0 so vectors stay fixed
// width even for items built under an older extractor.
func (e *Exporter) projectMetrics(metrics map[string]float64) []float64 {
	vec := make([]float64, len(e.featureNames))
	for i, name := range e.featureNames {
		vec[i] = metrics[name]
	}
	return vec
}

// resolveEmbedding returns the item's embedding as a dense vector of the
// model's fixed dimension, zero-filled when the item has no embedding or the
// stored vector is unusable.
func (e *Exporter) resolveEmbedding(ctx context.Context, item *RankItem) []float32 {
	if item.EmbeddingID == nil {
		return make([]float32, e.embeddingDim)
	}
	vec, err := e.store.GetEmbedding(ctx, *item.EmbeddingID)
	if err != nil {
		e.logger.Warn("embedding unresolvable, exporting zero vector",
			"item_id", item.ID,
			"embedding_id", *item.EmbeddingID,
			"error", err)
		return make([]float32, e.embeddingDim)
	}
	if len(vec) != e.embeddingDim {
		e.logger.Warn("embedding dimension mismatch, exporting zero vector",
			"item_id", item.ID,
			"want", e.embeddingDim,
			"got", len(vec))
		return make([]float32, e.embeddingDim)
	}
	return vec
}
