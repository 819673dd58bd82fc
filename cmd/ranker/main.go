// Package main is the entry point for the benchrank pipeline CLI.
package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"

	"github.com/onnwee/benchrank/internal/artifact"
	"github.com/onnwee/benchrank/internal/benchmark"
	"github.com/onnwee/benchrank/internal/config"
	"github.com/onnwee/benchrank/internal/embed"
	"github.com/onnwee/benchrank/internal/features"
	"github.com/onnwee/benchrank/internal/ranker"
	"github.com/onnwee/benchrank/internal/similarity"
	"github.com/onnwee/benchrank/internal/tracing"
)

const usageText = `Benchrank Pipeline

Usage: ranker <command> [options]

Commands:
  build-items   Extract rank items from benchmark sections
  sample-pairs  Sample pairwise preference pairs from rank items
  export        Export a training dataset (JSONL + manifest)
  validate      Validate an exported dataset against its manifest
  similar       Find benchmark sections similar to a query text
  stats         Show benchmark corpus statistics

Run 'ranker <command> -help' for command options.
`

func main() {
	if len(os.Args) < 2 {
		fmt.Print(usageText)
		os.Exit(2)
	}

	// Initialize logger
	env := os.Getenv("BENCHRANK_ENV")
	if env == "" {
		env = "development"
	}
	logger := newLogger(env)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var err error
	switch os.Args[1] {
	case "build-items":
		err = runBuildItems(ctx, logger, os.Args[2:])
	case "sample-pairs":
		err = runSamplePairs(ctx, logger, os.Args[2:])
	case "export":
		err = runExport(ctx, logger, os.Args[2:])
	case "validate":
		err = runValidate(logger, os.Args[2:])
	case "similar":
		err = runSimilar(ctx, logger, os.Args[2:])
	case "stats":
		err = runStats(ctx, logger, os.Args[2:])
	case "help", "-help", "--help":
		fmt.Print(usageText)
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n\n", os.Args[1])
		fmt.Print(usageText)
		os.Exit(2)
	}
	if err != nil {
		logger.Error("command failed", "command", os.Args[1], "error", err)
		os.Exit(1)
	}
}

// newLogger creates an slog.Logger based on the environment. In production
// it returns a JSON handler, otherwise a text handler for development.
func newLogger(env string) *slog.Logger {
	var handler slog.Handler
	if env == "production" {
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
	} else {
		handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		})
	}
	return slog.New(handler)
}

// pipeline bundles the shared dependencies of the database-backed commands.
type pipeline struct {
	cfg     *config.Config
	db      *sql.DB
	store   benchmark.Store
	repo    ranker.Repository
	metrics *ranker.Metrics
	tracer  *tracing.Provider
}

func (p *pipeline) close(ctx context.Context, logger *slog.Logger) {
	if p.tracer != nil {
		if err := p.tracer.Shutdown(ctx); err != nil {
			logger.Warn("tracer shutdown failed", "error", err)
		}
	}
	if p.db != nil {
		if err := p.db.Close(); err != nil {
			logger.Warn("database close failed", "error", err)
		}
	}
}

func newPipeline(ctx context.Context, logger *slog.Logger, configPath string) (*pipeline, error) {
	cfg, errs := config.Load(configPath)
	if len(errs) > 0 {
		for _, err := range errs {
			logger.Error("configuration error", "error", err)
		}
		return nil, fmt.Errorf("invalid configuration (%d errors)", len(errs))
	}

	tracer, err := tracing.NewProvider(tracing.Config{
		ServiceName:  "benchrank",
		Enabled:      cfg.TracingEnabled,
		Environment:  cfg.Env,
		ExporterType: cfg.TracingExporter,
		OTLPEndpoint: cfg.TracingEndpoint,
		SamplingRate: cfg.TracingSamplingRate,
		InsecureMode: cfg.Env != "production",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize tracing: %w", err)
	}

	db, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	metrics := ranker.NewMetrics()
	if err := metrics.Register(prometheus.DefaultRegisterer); err != nil {
		logger.Warn("metrics registration failed", "error", err)
	}

	return &pipeline{
		cfg:     cfg,
		db:      db,
		store:   benchmark.NewPostgresStore(db, logger),
		repo:    ranker.NewPostgresRepository(db, logger),
		metrics: metrics,
		tracer:  tracer,
	}, nil
}

func runBuildItems(ctx context.Context, logger *slog.Logger, args []string) error {
	fs := flag.NewFlagSet("build-items", flag.ExitOnError)
	platform := fs.String("platform", "", "platform to build items for (github, linkedin)")
	configPath := fs.String("config", "", "path to optional YAML config file")
	if err := fs.Parse(args); err != nil {
		return err
	}

	p, err := newPipeline(ctx, logger, *configPath)
	if err != nil {
		return err
	}
	defer p.close(ctx, logger)

	builder := ranker.NewBuilder(p.store, p.repo, features.NewHeuristicExtractor(), logger, p.metrics)
	created, err := builder.BuildItems(ctx, *platform)
	if err != nil {
		return err
	}

	logger.Info("build-items complete", "platform", *platform, "created", created)
	return nil
}

func runSamplePairs(ctx context.Context, logger *slog.Logger, args []string) error {
	fs := flag.NewFlagSet("sample-pairs", flag.ExitOnError)
	platform := fs.String("platform", "", "platform to sample pairs for (github, linkedin)")
	target := fs.Int("target", 100, "target number of pairs to create")
	diversity := fs.Float64("diversity", 0.3, "probability of drawing a cross-pool pair (0.0 to 1.0)")
	configPath := fs.String("config", "", "path to optional YAML config file")
	if err := fs.Parse(args); err != nil {
		return err
	}

	p, err := newPipeline(ctx, logger, *configPath)
	if err != nil {
		return err
	}
	defer p.close(ctx, logger)

	sampler := ranker.NewSampler(p.repo, logger, p.metrics)
	created, err := sampler.SamplePairs(ctx, *platform, *target, *diversity)
	if err != nil {
		return err
	}

	logger.Info("sample-pairs complete", "platform", *platform, "created", created, "target", *target)
	return nil
}

func runExport(ctx context.Context, logger *slog.Logger, args []string) error {
	fs := flag.NewFlagSet("export", flag.ExitOnError)
	platform := fs.String("platform", "", "platform to export (github, linkedin)")
	outputDir := fs.String("output", "", "output directory (default from config)")
	upload := fs.Bool("upload", false, "upload dataset to the artifact store after export")
	configPath := fs.String("config", "", "path to optional YAML config file")
	if err := fs.Parse(args); err != nil {
		return err
	}

	p, err := newPipeline(ctx, logger, *configPath)
	if err != nil {
		return err
	}
	defer p.close(ctx, logger)

	dir := *outputDir
	if dir == "" {
		dir = p.cfg.OutputDir
	}

	exporter := ranker.NewExporter(
		p.repo, p.store, features.Schema(),
		p.cfg.EmbeddingModel, p.cfg.EmbeddingDim,
		logger, p.metrics,
	)
	result, err := exporter.Export(ctx, *platform, dir)
	if err != nil {
		return err
	}

	logger.Info("export complete",
		"platform", *platform,
		"dataset", result.DatasetPath,
		"manifest", result.MetadataPath,
		"rows", result.RowCount,
		"skipped_pairs", result.SkippedPairs,
		"dataset_hash", result.DatasetHash,
	)

	if *upload {
		if !p.cfg.ArtifactConfigured() {
			return fmt.Errorf("artifact upload requested but not configured")
		}
		store, err := artifact.NewStore(artifact.StoreConfig{
			BucketName:      p.cfg.ArtifactBucket,
			AccessKeyID:     p.cfg.ArtifactAccessKey,
			SecretAccessKey: p.cfg.ArtifactSecretKey,
			Endpoint:        p.cfg.ArtifactEndpoint,
		}, logger)
		if err != nil {
			return fmt.Errorf("failed to initialize artifact store: %w", err)
		}
		keys, err := store.UploadDataset(ctx, *platform, result.DatasetPath, result.MetadataPath)
		if err != nil {
			return fmt.Errorf("failed to upload dataset: %w", err)
		}
		logger.Info("dataset uploaded", "keys", keys)
	}

	return nil
}

func runValidate(logger *slog.Logger, args []string) error {
	fs := flag.NewFlagSet("validate", flag.ExitOnError)
	dataset := fs.String("dataset", "", "path to the dataset JSONL file")
	manifest := fs.String("manifest", "", "path to the manifest JSON file")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *dataset == "" || *manifest == "" {
		return fmt.Errorf("both -dataset and -manifest are required")
	}

	report := ranker.ValidateDataset(*dataset, *manifest)
	if err := printJSON(report); err != nil {
		return err
	}
	if !report.Valid {
		logger.Warn("dataset validation failed", "issues", len(report.Issues))
		os.Exit(1)
	}
	return nil
}

func runSimilar(ctx context.Context, logger *slog.Logger, args []string) error {
	fs := flag.NewFlagSet("similar", flag.ExitOnError)
	query := fs.String("query", "", "query text to search for")
	platform := fs.String("platform", "", "platform to search (github, linkedin)")
	sectionType := fs.String("section", "", "restrict to a section type (headline, about, readme, summary, experience)")
	persona := fs.String("persona", "", "persona filter (founder, engineer, leader)")
	minRelevance := fs.Float64("min-relevance", 0, "minimum curated relevance score")
	limit := fs.Int("limit", 10, "maximum number of matches")
	configPath := fs.String("config", "", "path to optional YAML config file")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *query == "" {
		return fmt.Errorf("-query is required")
	}

	p, err := newPipeline(ctx, logger, *configPath)
	if err != nil {
		return err
	}
	defer p.close(ctx, logger)

	embedder := embed.NewHTTPEmbedder(
		p.cfg.EmbeddingEndpoint, p.cfg.EmbeddingAPIKey,
		p.cfg.EmbeddingModel, p.cfg.EmbeddingDim,
	)
	index := similarity.NewIndex(p.store, embedder, logger)
	matches, err := index.FindSimilar(ctx, *query, similarity.SearchOptions{
		Platform:     *platform,
		SectionType:  *sectionType,
		Persona:      *persona,
		MinRelevance: *minRelevance,
		Limit:        *limit,
	})
	if err != nil {
		return err
	}

	return printJSON(matches)
}

func runStats(ctx context.Context, logger *slog.Logger, args []string) error {
	fs := flag.NewFlagSet("stats", flag.ExitOnError)
	platform := fs.String("platform", "", "platform to report on (github, linkedin)")
	configPath := fs.String("config", "", "path to optional YAML config file")
	if err := fs.Parse(args); err != nil {
		return err
	}

	p, err := newPipeline(ctx, logger, *configPath)
	if err != nil {
		return err
	}
	defer p.close(ctx, logger)

	var cache *redis.Client
	if p.cfg.RedisAddr != "" {
		cache = redis.NewClient(&redis.Options{Addr: p.cfg.RedisAddr})
		defer cache.Close()
	}

	reader := similarity.NewStatsReader(p.store, p.repo, cache, logger)
	stats, err := reader.BenchmarkStats(ctx, *platform)
	if err != nil {
		return err
	}

	return printJSON(stats)
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
