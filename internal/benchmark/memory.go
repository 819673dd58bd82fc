package benchmark

import (
	"context"
	"sync"
)

// InMemoryStore is an in-memory implementation of Store used by tests and
// local development. Thread-safe via RWMutex.
type InMemoryStore struct {
	mu         sync.RWMutex
	profiles   []*Profile
	sections   map[string][]*Section // keyed by profile ID, insertion order preserved
	embeddings map[string][]float32  // keyed by embedding ID, already decoded
}

// NewInMemoryStore creates an empty InMemoryStore.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		sections:   make(map[string][]*Section),
		embeddings: make(map[string][]float32),
	}
}

// AddProfile registers a profile in the corpus.
func (s *InMemoryStore) AddProfile(p *Profile) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profiles = append(s.profiles, p)
}

// AddSection registers a section under its profile.
func (s *InMemoryStore) AddSection(sec *Section) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sections[sec.ProfileID] = append(s.sections[sec.ProfileID], sec)
}

// AddEmbedding registers a decoded embedding vector under an id.
func (s *InMemoryStore) AddEmbedding(id string, vec []float32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.embeddings[id] = vec
}

// ListProfiles returns profiles for a platform in insertion order.
func (s *InMemoryStore) ListProfiles(ctx context.Context, platform string) ([]*Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*Profile
	for _, p := range s.profiles {
		if p.Platform == platform {
			out = append(out, p)
		}
	}
	return out, nil
}

// ListSections returns a profile's sections in insertion order.
func (s *InMemoryStore) ListSections(ctx context.Context, profileID string) ([]*Section, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]*Section(nil), s.sections[profileID]...), nil
}

// ListSectionsByType returns a profile's sections of one type in insertion order.
func (s *InMemoryStore) ListSectionsByType(ctx context.Context, profileID, sectionType string) ([]*Section, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*Section
	for _, sec := range s.sections[profileID] {
		if sec.SectionType == sectionType {
			out = append(out, sec)
		}
	}
	return out, nil
}

// GetEmbedding resolves an embedding id to its vector.
func (s *InMemoryStore) GetEmbedding(ctx context.Context, embeddingID string) ([]float32, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	vec, ok := s.embeddings[embeddingID]
	if !ok {
		return nil, ErrEmbeddingNotFound
	}
	return vec, nil
}
