package benchmark

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/onnwee/benchrank/internal/tracing"
)

// Store defines read access to the benchmark corpus. Implementations must be
// safe for concurrent readers; the corpus is never written through this
// interface.
type Store interface {
	// ListProfiles returns all profiles for a platform, in insertion order.
	ListProfiles(ctx context.Context, platform string) ([]*Profile, error)

	// ListSections returns all sections belonging to a profile, in insertion order.
	ListSections(ctx context.Context, profileID string) ([]*Section, error)

	// ListSectionsByType returns a profile's sections of one section type,
	// in insertion order.
	ListSectionsByType(ctx context.Context, profileID, sectionType string) ([]*Section, error)

	// GetEmbedding resolves an embedding id to its decoded vector.
	// Returns ErrEmbeddingNotFound if no such embedding exists.
	GetEmbedding(ctx context.Context, embeddingID string) ([]float32, error)
}

// PostgresStore implements Store against PostgreSQL.
type PostgresStore struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewPostgresStore creates a PostgresStore. A nil logger falls back to
// slog.Default().
func NewPostgresStore(db *sql.DB, logger *slog.Logger) *PostgresStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresStore{db: db, logger: logger}
}

// ListProfiles returns all profiles for a platform ordered by creation time.
func (s *PostgresStore) ListProfiles(ctx context.Context, platform string) (profiles []*Profile, err error) {
	ctx, endSpan := tracing.StartDBSpan(ctx, "benchmark_profiles", tracing.DBOperationQuery)
	defer func() { endSpan(err) }()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, platform, external_id, persona, elite, relevance_score, created_at
		FROM benchmark_profiles
		WHERE platform = $1
		ORDER BY created_at, id
	`, platform)
	if err != nil {
		return nil, fmt.Errorf("list profiles: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		p := &Profile{}
		if err := rows.Scan(&p.ID, &p.Platform, &p.ExternalID, &p.Persona, &p.Elite, &p.RelevanceScore, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan profile: %w", err)
		}
		profiles = append(profiles, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate profiles: %w", err)
	}
	return profiles, nil
}

// ListSections returns all sections for a profile ordered by creation time.
func (s *PostgresStore) ListSections(ctx context.Context, profileID string) ([]*Section, error) {
	return s.querySections(ctx, `
		SELECT id, profile_id, section_type, content, embedding_id, created_at
		FROM benchmark_sections
		WHERE profile_id = $1
		ORDER BY created_at, id
	`, profileID)
}

// ListSectionsByType returns a profile's sections of the given type.
func (s *PostgresStore) ListSectionsByType(ctx context.Context, profileID, sectionType string) ([]*Section, error) {
	return s.querySections(ctx, `
		SELECT id, profile_id, section_type, content, embedding_id, created_at
		FROM benchmark_sections
		WHERE profile_id = $1 AND section_type = $2
		ORDER BY created_at, id
	`, profileID, sectionType)
}

func (s *PostgresStore) querySections(ctx context.Context, query string, args ...any) (sections []*Section, err error) {
	ctx, endSpan := tracing.StartDBSpan(ctx, "benchmark_sections", tracing.DBOperationQuery)
	defer func() { endSpan(err) }()

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list sections: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		sec := &Section{}
		var embeddingID sql.NullString
		if err := rows.Scan(&sec.ID, &sec.ProfileID, &sec.SectionType, &sec.Content, &embeddingID, &sec.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan section: %w", err)
		}
		if embeddingID.Valid {
			sec.EmbeddingID = &embeddingID.String
		}
		sections = append(sections, sec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sections: %w", err)
	}
	return sections, nil
}

// GetEmbedding resolves an embedding id to its decoded vector.
func (s *PostgresStore) GetEmbedding(ctx context.Context, embeddingID string) (vec []float32, err error) {
	ctx, endSpan := tracing.StartDBSpan(ctx, "benchmark_embeddings", tracing.DBOperationQuery)
	defer func() { endSpan(err) }()

	var blob []byte
	err = s.db.QueryRowContext(ctx, `
		SELECT vector FROM benchmark_embeddings WHERE id = $1
	`, embeddingID).Scan(&blob)
	if err == sql.ErrNoRows {
		return nil, ErrEmbeddingNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get embedding %s: %w", embeddingID, err)
	}

	vec, err = DecodeVector(blob)
	if err != nil {
		s.logger.Warn("undecodable embedding blob", "embedding_id", embeddingID, "error", err)
		return nil, fmt.Errorf("decode embedding %s: %w", embeddingID, err)
	}
	return vec, nil
}
