// Package config provides configuration loading and validation for the
// benchrank pipeline. It uses koanf to merge environment variables with
// optional file overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Config holds all configuration values for the pipeline.
type Config struct {
	// Environment
	Env string `koanf:"env"`

	// Database
	DatabaseURL string `koanf:"database_url"`

	// Embedding service (OpenAI-compatible /v1/embeddings endpoint)
	EmbeddingEndpoint string `koanf:"embedding_endpoint"`
	EmbeddingAPIKey   string `koanf:"embedding_api_key"`
	EmbeddingModel    string `koanf:"embedding_model"`
	EmbeddingDim      int    `koanf:"embedding_dim"`

	// Redis stats cache (optional; empty address disables caching)
	RedisAddr string `koanf:"redis_addr"`

	// Dataset export
	OutputDir string `koanf:"output_dir"`

	// Artifact upload (optional; all four must be set to enable)
	ArtifactBucket    string `koanf:"artifact_bucket"`
	ArtifactAccessKey string `koanf:"artifact_access_key"`
	ArtifactSecretKey string `koanf:"artifact_secret_key"`
	ArtifactEndpoint  string `koanf:"artifact_endpoint"`

	// Tracing
	TracingEnabled      bool    `koanf:"tracing_enabled"`
	TracingExporter     string  `koanf:"tracing_exporter"`
	TracingEndpoint     string  `koanf:"tracing_endpoint"`
	TracingSamplingRate float64 `koanf:"tracing_sampling_rate"`
}

// Configuration validation errors.
var (
	ErrMissingDatabaseURL    = errors.New("DATABASE_URL is required")
	ErrMissingEmbeddingModel = errors.New("EMBEDDING_MODEL is required")
	ErrInvalidEmbeddingDim   = errors.New("EMBEDDING_DIM must be a positive integer")
	ErrPartialArtifactConfig = errors.New("artifact upload requires bucket, access key, secret key, and endpoint together")
)

// Default values for non-secret configuration.
const (
	DefaultEnv                 = "development"
	DefaultEmbeddingModel      = "text-embedding-3-small"
	DefaultEmbeddingDim        = 1536
	DefaultOutputDir           = "./export"
	DefaultTracingSamplingRate = 0.1
)

// Load reads configuration from environment variables and an optional config
// file. Environment variables take precedence over file values. Returns the
// loaded config and a slice of validation errors (empty if valid). If a
// config file path is provided and the file cannot be loaded, an error is
// returned.
func Load(configFilePath string) (*Config, []error) {
	k := koanf.New(".")
	var loadErrs []error

	// Load from YAML file first if provided (lower precedence)
	if configFilePath != "" {
		if err := k.Load(file.Provider(configFilePath), yaml.Parser()); err != nil {
			return nil, []error{fmt.Errorf("failed to load config file %s: %w", configFilePath, err)}
		}
	}

	embeddingDim, dimErr := getEnvIntOrDefault("EMBEDDING_DIM", k.Int("embedding_dim"), DefaultEmbeddingDim)
	if dimErr != nil {
		loadErrs = append(loadErrs, dimErr)
	}

	samplingRate, rateErr := getEnvFloatOrDefault("TRACING_SAMPLING_RATE", k.Float64("tracing_sampling_rate"), DefaultTracingSamplingRate)
	if rateErr != nil {
		loadErrs = append(loadErrs, rateErr)
	}

	tracingEnabled := k.Bool("tracing_enabled")
	if val := os.Getenv("TRACING_ENABLED"); val != "" {
		// Env var takes precedence over file config
		switch val {
		case "true", "1", "yes", "on":
			tracingEnabled = true
		case "false", "0", "no", "off":
			tracingEnabled = false
		}
	}

	cfg := &Config{
		Env:                 getEnvOrDefault("BENCHRANK_ENV", k.String("env"), DefaultEnv),
		DatabaseURL:         getEnvOrKoanf("DATABASE_URL", k, "database_url"),
		EmbeddingEndpoint:   getEnvOrKoanf("EMBEDDING_ENDPOINT", k, "embedding_endpoint"),
		EmbeddingAPIKey:     getEnvOrKoanf("EMBEDDING_API_KEY", k, "embedding_api_key"),
		EmbeddingModel:      getEnvOrDefault("EMBEDDING_MODEL", k.String("embedding_model"), DefaultEmbeddingModel),
		EmbeddingDim:        embeddingDim,
		RedisAddr:           getEnvOrKoanf("REDIS_ADDR", k, "redis_addr"),
		OutputDir:           getEnvOrDefault("OUTPUT_DIR", k.String("output_dir"), DefaultOutputDir),
		ArtifactBucket:      getEnvOrKoanf("ARTIFACT_BUCKET", k, "artifact_bucket"),
		ArtifactAccessKey:   getEnvOrKoanf("ARTIFACT_ACCESS_KEY", k, "artifact_access_key"),
		ArtifactSecretKey:   getEnvOrKoanf("ARTIFACT_SECRET_KEY", k, "artifact_secret_key"),
		ArtifactEndpoint:    getEnvOrKoanf("ARTIFACT_ENDPOINT", k, "artifact_endpoint"),
		TracingEnabled:      tracingEnabled,
		TracingExporter:     getEnvOrDefault("TRACING_EXPORTER", k.String("tracing_exporter"), "otlp-http"),
		TracingEndpoint:     getEnvOrKoanf("TRACING_ENDPOINT", k, "tracing_endpoint"),
		TracingSamplingRate: samplingRate,
	}

	errs := cfg.Validate()
	errs = append(loadErrs, errs...)

	return cfg, errs
}

// Validate checks required fields and cross-field constraints.
func (c *Config) Validate() []error {
	var errs []error

	if c.DatabaseURL == "" {
		errs = append(errs, ErrMissingDatabaseURL)
	}
	if c.EmbeddingModel == "" {
		errs = append(errs, ErrMissingEmbeddingModel)
	}
	if c.EmbeddingDim <= 0 {
		errs = append(errs, ErrInvalidEmbeddingDim)
	}
	if c.ArtifactConfigured() != c.artifactAnySet() {
		errs = append(errs, ErrPartialArtifactConfig)
	}

	return errs
}

// ArtifactConfigured reports whether all artifact upload settings are present.
func (c *Config) ArtifactConfigured() bool {
	return c.ArtifactBucket != "" && c.ArtifactAccessKey != "" &&
		c.ArtifactSecretKey != "" && c.ArtifactEndpoint != ""
}

func (c *Config) artifactAnySet() bool {
	return c.ArtifactBucket != "" || c.ArtifactAccessKey != "" ||
		c.ArtifactSecretKey != "" || c.ArtifactEndpoint != ""
}

// getEnvOrKoanf returns the environment variable value if set, otherwise the koanf value.
func getEnvOrKoanf(envKey string, k *koanf.Koanf, koanfKey string) string {
	if val := os.Getenv(envKey); val != "" {
		return val
	}
	return k.String(koanfKey)
}

// getEnvOrDefault returns the environment variable value if set, otherwise the koanf value, or default.
func getEnvOrDefault(envKey string, koanfVal string, defaultVal string) string {
	if val := os.Getenv(envKey); val != "" {
		return val
	}
	if koanfVal != "" {
		return koanfVal
	}
	return defaultVal
}

// getEnvIntOrDefault parses an integer environment variable, falling back to
// the koanf value, then the default.
func getEnvIntOrDefault(envKey string, koanfVal int, defaultVal int) (int, error) {
	if val := os.Getenv(envKey); val != "" {
		parsed, err := strconv.Atoi(val)
		if err != nil {
			return defaultVal, fmt.Errorf("invalid %s value %q: %w", envKey, val, err)
		}
		return parsed, nil
	}
	if koanfVal != 0 {
		return koanfVal, nil
	}
	return defaultVal, nil
}

// getEnvFloatOrDefault parses a float environment variable, falling back to
// the koanf value, then the default.
func getEnvFloatOrDefault(envKey string, koanfVal float64, defaultVal float64) (float64, error) {
	if val := os.Getenv(envKey); val != "" {
		parsed, err := strconv.ParseFloat(val, 64)
		if err != nil {
			return defaultVal, fmt.Errorf("invalid %s value %q: %w", envKey, val, err)
		}
		return parsed, nil
	}
	if koanfVal != 0 {
		return koanfVal, nil
	}
	return defaultVal, nil
}
