package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

// clearConfigEnv unsets every environment variable Load reads, so tests are
// insulated from the invoking shell.
func clearConfigEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"BENCHRANK_ENV", "DATABASE_URL",
		"EMBEDDING_ENDPOINT", "EMBEDDING_API_KEY", "EMBEDDING_MODEL", "EMBEDDING_DIM",
		"REDIS_ADDR", "OUTPUT_DIR",
		"ARTIFACT_BUCKET", "ARTIFACT_ACCESS_KEY", "ARTIFACT_SECRET_KEY", "ARTIFACT_ENDPOINT",
		"TRACING_ENABLED", "TRACING_EXPORTER", "TRACING_ENDPOINT", "TRACING_SAMPLING_RATE",
	} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}

func hasErr(errs []error, target error) bool {
	for _, err := range errs {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

func TestLoadFromEnv(t *testing.T) {
	clearConfigEnv(t)
	t.Setenv("DATABASE_URL", "postgres://localhost:5432/benchrank?sslmode=disable")
	t.Setenv("EMBEDDING_ENDPOINT", "https://api.example.com/v1/embeddings")
	t.Setenv("EMBEDDING_DIM", "512")
	t.Setenv("REDIS_ADDR", "localhost:6379")

	cfg, errs := Load("")
	if len(errs) > 0 {
		t.Fatalf("Load() errors: %v", errs)
	}
	if cfg.DatabaseURL != "postgres://localhost:5432/benchrank?sslmode=disable" {
		t.Errorf("DatabaseURL = %q", cfg.DatabaseURL)
	}
	if cfg.EmbeddingDim != 512 {
		t.Errorf("EmbeddingDim = %d, want 512", cfg.EmbeddingDim)
	}
	if cfg.RedisAddr != "localhost:6379" {
		t.Errorf("RedisAddr = %q", cfg.RedisAddr)
	}
}

func TestLoadDefaults(t *testing.T) {
	clearConfigEnv(t)
	t.Setenv("DATABASE_URL", "postgres://localhost/db")

	cfg, errs := Load("")
	if len(errs) > 0 {
		t.Fatalf("Load() errors: %v", errs)
	}
	if cfg.Env != DefaultEnv {
		t.Errorf("Env = %q, want %q", cfg.Env, DefaultEnv)
	}
	if cfg.EmbeddingModel != DefaultEmbeddingModel {
		t.Errorf("EmbeddingModel = %q, want %q", cfg.EmbeddingModel, DefaultEmbeddingModel)
	}
	if cfg.EmbeddingDim != DefaultEmbeddingDim {
		t.Errorf("EmbeddingDim = %d, want %d", cfg.EmbeddingDim, DefaultEmbeddingDim)
	}
	if cfg.OutputDir != DefaultOutputDir {
		t.Errorf("OutputDir = %q, want %q", cfg.OutputDir, DefaultOutputDir)
	}
	if cfg.TracingSamplingRate != DefaultTracingSamplingRate {
		t.Errorf("TracingSamplingRate = %v, want %v", cfg.TracingSamplingRate, DefaultTracingSamplingRate)
	}
	if cfg.TracingEnabled {
		t.Error("TracingEnabled = true by default")
	}
}

func TestLoadMissingDatabaseURL(t *testing.T) {
	clearConfigEnv(t)

	_, errs := Load("")
	if !hasErr(errs, ErrMissingDatabaseURL) {
		t.Errorf("errors = %v, want ErrMissingDatabaseURL", errs)
	}
}

func TestLoadInvalidEmbeddingDim(t *testing.T) {
	clearConfigEnv(t)
	t.Setenv("DATABASE_URL", "postgres://localhost/db")
	t.Setenv("EMBEDDING_DIM", "not-a-number")

	_, errs := Load("")
	if len(errs) == 0 {
		t.Fatal("Load() accepted a non-numeric EMBEDDING_DIM")
	}
}

func TestLoadPartialArtifactConfig(t *testing.T) {
	clearConfigEnv(t)
	t.Setenv("DATABASE_URL", "postgres://localhost/db")
	t.Setenv("ARTIFACT_BUCKET", "datasets")

	_, errs := Load("")
	if !hasErr(errs, ErrPartialArtifactConfig) {
		t.Errorf("errors = %v, want ErrPartialArtifactConfig", errs)
	}
}

func TestLoadCompleteArtifactConfig(t *testing.T) {
	clearConfigEnv(t)
	t.Setenv("DATABASE_URL", "postgres://localhost/db")
	t.Setenv("ARTIFACT_BUCKET", "datasets")
	t.Setenv("ARTIFACT_ACCESS_KEY", "key")
	t.Setenv("ARTIFACT_SECRET_KEY", "secret")
	t.Setenv("ARTIFACT_ENDPOINT", "https://account.r2.cloudflarestorage.com")

	cfg, errs := Load("")
	if len(errs) > 0 {
		t.Fatalf("Load() errors: %v", errs)
	}
	if !cfg.ArtifactConfigured() {
		t.Error("ArtifactConfigured() = false with all four values set")
	}
}

func TestLoadFromFile(t *testing.T) {
	clearConfigEnv(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `database_url: postgres://filehost/db
embedding_model: file-model
embedding_dim: 256
output_dir: /tmp/exports
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config file: %v", err)
	}

	cfg, errs := Load(path)
	if len(errs) > 0 {
		t.Fatalf("Load() errors: %v", errs)
	}
	if cfg.DatabaseURL != "postgres://filehost/db" {
		t.Errorf("DatabaseURL = %q", cfg.DatabaseURL)
	}
	if cfg.EmbeddingModel != "file-model" {
		t.Errorf("EmbeddingModel = %q", cfg.EmbeddingModel)
	}
	if cfg.EmbeddingDim != 256 {
		t.Errorf("EmbeddingDim = %d, want 256", cfg.EmbeddingDim)
	}
	if cfg.OutputDir != "/tmp/exports" {
		t.Errorf("OutputDir = %q", cfg.OutputDir)
	}
}

func TestEnvOverridesFile(t *testing.T) {
	clearConfigEnv(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("database_url: postgres://filehost/db\n"), 0o644); err != nil {
		t.Fatalf("write config file: %v", err)
	}
	t.Setenv("DATABASE_URL", "postgres://envhost/db")

	cfg, errs := Load(path)
	if len(errs) > 0 {
		t.Fatalf("Load() errors: %v", errs)
	}
	if cfg.DatabaseURL != "postgres://envhost/db" {
		t.Errorf("DatabaseURL = %q, want the env value", cfg.DatabaseURL)
	}
}

func TestLoadMissingFile(t *testing.T) {
	clearConfigEnv(t)
	_, errs := Load("/nonexistent/config.yaml")
	if len(errs) == 0 {
		t.Fatal("Load() succeeded with a nonexistent config file")
	}
}
