package ranker

import (
	"context"
	"sync"
)

// InMemoryRepository is an in-memory implementation of Repository used by
// tests and local development. Thread-safe via RWMutex. Items and pairs are
// kept in insertion order so list operations are stable across calls.
type InMemoryRepository struct {
	mu    sync.RWMutex
	items []*RankItem
	pairs []*RankPair

	byID   map[string]*RankItem
	byHash map[string]*RankItem // keyed by platform + "\x00" + content hash
}

// NewInMemoryRepository creates an empty InMemoryRepository.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		byID:   make(map[string]*RankItem),
		byHash: make(map[string]*RankItem),
	}
}

func hashKey(platform, contentHash string) string {
	return platform + "\x00" + contentHash
}

// CreateItem persists a new rank item.
func (r *InMemoryRepository) CreateItem(ctx context.Context, item *RankItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items = append(r.items, item)
	r.byID[item.ID] = item
	r.byHash[hashKey(item.Platform, item.ContentHash)] = item
	return nil
}

// FindItemByContentHash looks up an item by (platform, content hash).
func (r *InMemoryRepository) FindItemByContentHash(ctx context.Context, platform, contentHash string) (*RankItem, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	item, ok := r.byHash[hashKey(platform, contentHash)]
	if !ok {
		return nil, ErrItemNotFound
	}
	return item, nil
}

// GetItem retrieves an item by id.
func (r *InMemoryRepository) GetItem(ctx context.Context, id string) (*RankItem, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	item, ok := r.byID[id]
	if !ok {
		return nil, ErrItemNotFound
	}
	return item, nil
}

// ListItemsByPlatform returns all items for a platform in insertion order.
func (r *InMemoryRepository) ListItemsByPlatform(ctx context.Context, platform string) ([]*RankItem, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*RankItem
	for _, item := range r.items {
		if item.Platform == platform {
			out = append(out, item)
		}
	}
	return out, nil
}

// CreatePair persists a new rank pair.
func (r *InMemoryRepository) CreatePair(ctx context.Context, pair *RankPair) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pairs = append(r.pairs, pair)
	return nil
}

// ListPairsByPlatform returns all pairs for a platform in insertion order.
func (r *InMemoryRepository) ListPairsByPlatform(ctx context.Context, platform string) ([]*RankPair, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*RankPair
	for _, pair := range r.pairs {
		if pair.Platform == platform {
			out = append(out, pair)
		}
	}
	return out, nil
}

// CountPairsByPlatform returns the number of pairs for a platform.
func (r *InMemoryRepository) CountPairsByPlatform(ctx context.Context, platform string) (int, error) {
	pairs, _ := r.ListPairsByPlatform(ctx, platform)
	return len(pairs), nil
}

// LabelDistribution returns a histogram of pair labels for a platform.
func (r *InMemoryRepository) LabelDistribution(ctx context.Context, platform string) (map[int]int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	dist := make(map[int]int)
	for _, pair := range r.pairs {
		if pair.Platform == platform {
			dist[pair.Label]++
		}
	}
	return dist, nil
}
