package ranker

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/lib/pq"

	"github.com/onnwee/benchrank/internal/tracing"
)

// Repository defines persistence for rank items and pairs. Both entities are
// append-only: there are no update or delete operations.
type Repository interface {
	// CreateItem persists a new rank item.
	CreateItem(ctx context.Context, item *RankItem) error

	// FindItemByContentHash looks up an item by (platform, content hash).
	// Returns ErrItemNotFound when no item matches.
	FindItemByContentHash(ctx context.Context, platform, contentHash string) (*RankItem, error)

	// GetItem retrieves an item by id. Returns ErrItemNotFound when absent.
	GetItem(ctx context.Context, id string) (*RankItem, error)

	// ListItemsByPlatform returns all items for a platform in creation order.
	ListItemsByPlatform(ctx context.Context, platform string) ([]*RankItem, error)

	// CreatePair persists a new rank pair.
	CreatePair(ctx context.Context, pair *RankPair) error

	// ListPairsByPlatform returns all pairs for a platform in creation order.
	// The order is stable across calls for unchanged data; dataset export
	// depends on this.
	ListPairsByPlatform(ctx context.Context, platform string) ([]*RankPair, error)

	// CountPairsByPlatform returns the number of pairs for a platform.
	CountPairsByPlatform(ctx context.Context, platform string) (int, error)

	// LabelDistribution returns a histogram of pair labels for a platform.
	LabelDistribution(ctx context.Context, platform string) (map[int]int, error)
}

// PostgresRepository implements Repository using PostgreSQL.
type PostgresRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewPostgresRepository creates a PostgresRepository. A nil logger falls back
// to slog.Default().
func NewPostgresRepository(db *sql.DB, logger *slog.Logger) *PostgresRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresRepository{db: db, logger: logger}
}

// CreateItem persists a new rank item. The metrics mapping is stored as JSONB.
func (r *PostgresRepository) CreateItem(ctx context.Context, item *RankItem) (err error) {
	ctx, endSpan := tracing.StartDBSpan(ctx, "rank_items", tracing.DBOperationInsert)
	defer func() { endSpan(err) }()

	metricsJSON, err := json.Marshal(item.Metrics)
	if err != nil {
		return fmt.Errorf("marshal metrics: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO rank_items (id, platform, section_type, source_ref, content_hash, embedding_id, metrics, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, item.ID, item.Platform, item.SectionType, item.SourceRef, item.ContentHash, item.EmbeddingID, metricsJSON, item.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert rank item: %w", err)
	}
	return nil
}

// FindItemByContentHash looks up an item by (platform, content hash).
func (r *PostgresRepository) FindItemByContentHash(ctx context.Context, platform, contentHash string) (*RankItem, error) {
	return r.queryItem(ctx, `
		SELECT id, platform, section_type, source_ref, content_hash, embedding_id, metrics, created_at
		FROM rank_items
		WHERE platform = $1 AND content_hash = $2
	`, platform, contentHash)
}

// GetItem retrieves an item by id.
func (r *PostgresRepository) GetItem(ctx context.Context, id string) (*RankItem, error) {
	return r.queryItem(ctx, `
		SELECT id, platform, section_type, source_ref, content_hash, embedding_id, metrics, created_at
		FROM rank_items
		WHERE id = $1
	`, id)
}

func (r *PostgresRepository) queryItem(ctx context.Context, query string, args ...any) (item *RankItem, err error) {
	ctx, endSpan := tracing.StartDBSpan(ctx, "rank_items", tracing.DBOperationQuery)
	defer func() { endSpan(err) }()

	row := r.db.QueryRowContext(ctx, query, args...)
	item, err = scanItem(row.Scan)
	if err == sql.ErrNoRows {
		return nil, ErrItemNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query rank item: %w", err)
	}
	return item, nil
}

// ListItemsByPlatform returns all items for a platform in creation order.
func (r *PostgresRepository) ListItemsByPlatform(ctx context.Context, platform string) (items []*RankItem, err error) {
	ctx, endSpan := tracing.StartDBSpan(ctx, "rank_items", tracing.DBOperationQuery)
	defer func() { endSpan(err) }()

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, platform, section_type, source_ref, content_hash, embedding_id, metrics, created_at
		FROM rank_items
		WHERE platform = $1
		ORDER BY created_at, id
	`, platform)
	if err != nil {
		return nil, fmt.Errorf("list rank items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		item, err := scanItem(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scan rank item: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rank items: %w", err)
	}
	return items, nil
}

func scanItem(scan func(...any) error) (*RankItem, error) {
	item := &RankItem{}
	var embeddingID sql.NullString
	var metricsJSON []byte
	if err := scan(&item.ID, &item.Platform, &item.SectionType, &item.SourceRef, &item.ContentHash, &embeddingID, &metricsJSON, &item.CreatedAt); err != nil {
		return nil, err
	}
	if embeddingID.Valid {
		item.EmbeddingID = &embeddingID.String
	}
	if err := json.Unmarshal(metricsJSON, &item.Metrics); err != nil {
		return nil, fmt.Errorf("unmarshal metrics: %w", err)
	}
	return item, nil
}

// CreatePair persists a new rank pair.
func (r *PostgresRepository) CreatePair(ctx context.Context, pair *RankPair) (err error) {
	ctx, endSpan := tracing.StartDBSpan(ctx, "rank_pairs", tracing.DBOperationInsert)
	defer func() { endSpan(err) }()

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO rank_pairs (id, platform, a_item_id, b_item_id, label, source, reason_tags, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, pair.ID, pair.Platform, pair.AItemID, pair.BItemID, pair.Label, pair.Source, pq.Array(pair.ReasonTags), pair.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert rank pair: %w", err)
	}
	return nil
}

// ListPairsByPlatform returns all pairs for a platform in creation order.
func (r *PostgresRepository) ListPairsByPlatform(ctx context.Context, platform string) (pairs []*RankPair, err error) {
	ctx, endSpan := tracing.StartDBSpan(ctx, "rank_pairs", tracing.DBOperationQuery)
	defer func() { endSpan(err) }()

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, platform, a_item_id, b_item_id, label, source, reason_tags, created_at
		FROM rank_pairs
		WHERE platform = $1
		ORDER BY created_at, id
	`, platform)
	if err != nil {
		return nil, fmt.Errorf("list rank pairs: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		pair := &RankPair{}
		if err := rows.Scan(&pair.ID, &pair.Platform, &pair.AItemID, &pair.BItemID, &pair.Label, &pair.Source, pq.Array(&pair.ReasonTags), &pair.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan rank pair: %w", err)
		}
		pairs = append(pairs, pair)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rank pairs: %w", err)
	}
	return pairs, nil
}

// CountPairsByPlatform returns the number of pairs for a platform.
func (r *PostgresRepository) CountPairsByPlatform(ctx context.Context, platform string) (count int, err error) {
	ctx, endSpan := tracing.StartDBSpan(ctx, "rank_pairs", tracing.DBOperationQuery)
	defer func() { endSpan(err) }()

	err = r.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM rank_pairs WHERE platform = $1
	`, platform).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count rank pairs: %w", err)
	}
	return count, nil
}

// LabelDistribution returns a histogram of pair labels for a platform.
func (r *PostgresRepository) LabelDistribution(ctx context.Context, platform string) (dist map[int]int, err error) {
	ctx, endSpan := tracing.StartDBSpan(ctx, "rank_pairs", tracing.DBOperationQuery)
	defer func() { endSpan(err) }()

	rows, err := r.db.QueryContext(ctx, `
		SELECT label, COUNT(*) FROM rank_pairs WHERE platform = $1 GROUP BY label
	`, platform)
	if err != nil {
		return nil, fmt.Errorf("label distribution: %w", err)
	}
	defer rows.Close()

	dist = make(map[int]int)
	for rows.Next() {
		var label, count int
		if err := rows.Scan(&label, &count); err != nil {
			return nil, fmt.Errorf("scan label distribution: %w", err)
		}
		dist[label] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate label distribution: %w", err)
	}
	return dist, nil
}
