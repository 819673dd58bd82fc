// Package benchmark provides models and repositories for the benchmark
// corpus: profiles scraped from elite professional accounts, their content
// sections, and the embedding vectors attached to them. The corpus is
// written by the ingestion pipeline and read-only to everything in this
// repository.
package benchmark

import (
	"errors"
	"time"
)

// Supported source platforms.
const (
	PlatformGitHub   = "github"
	PlatformLinkedIn = "linkedin"
)

// Section types present in the corpus.
const (
	SectionHeadline   = "headline"
	SectionAbout      = "about"
	SectionReadme     = "readme"
	SectionSummary    = "summary"
	SectionExperience = "experience"
)

// Common errors for benchmark lookups.
var (
	ErrProfileNotFound   = errors.New("benchmark profile not found")
	ErrEmbeddingNotFound = errors.New("benchmark embedding not found")
	ErrInvalidPlatform   = errors.New("invalid platform")
)

// ValidPlatform reports whether p is a supported platform identifier.
func ValidPlatform(p string) bool {
	return p == PlatformGitHub || p == PlatformLinkedIn
}

// Profile represents one scraped professional profile.
type Profile struct {
	ID             string    `json:"id"`
	Platform       string    `json:"platform"`
	ExternalID     string    `json:"external_id"` // username or handle on the platform
	Persona        string    `json:"persona"`     // professional archetype, e.g. "founder", "engineer"
	Elite          bool      `json:"elite"`
	RelevanceScore float64   `json:"relevance_score"`
	CreatedAt      time.Time `json:"created_at"`
}

// Section is a single piece of profile content (headline, about, readme, ...).
// EmbeddingID is nil when the ingestion run did not embed the section.
type Section struct {
	ID          string    `json:"id"`
	ProfileID   string    `json:"profile_id"`
	SectionType string    `json:"section_type"`
	Content     string    `json:"content"`
	EmbeddingID *string   `json:"embedding_id,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// Embedding holds an opaque encoded vector for a profile and/or section.
// Vector is the CBOR-encoded []float32 blob as stored; callers decode it
// with DecodeVector.
type Embedding struct {
	ID        string    `json:"id"`
	ProfileID *string   `json:"profile_id,omitempty"`
	SectionID *string   `json:"section_id,omitempty"`
	Model     string    `json:"model"`
	Vector    []byte    `json:"-"`
	CreatedAt time.Time `json:"created_at"`
}
