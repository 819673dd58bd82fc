// Package features provides the fixed-schema metric extraction used to
// annotate rank items. The schema is a versioned contract shared with the
// exported training dataset: every extractor implementation must return a
// mapping with exactly the names in Schema(), each in [0, 1].
package features

import (
	"math"
	"regexp"
	"strings"
)

// Canonical feature names, in export order.
const (
	FeatureClarity        = "clarity"
	FeatureImpact         = "impact"
	FeatureRelevance      = "relevance"
	FeatureReadability    = "readability"
	FeatureKeywordDensity = "keyword_density"
	FeatureCompleteness   = "completeness"
)

// Schema returns the canonical ordered feature-name list. The order defines
// the layout of metric vectors in the exported dataset; do not reorder.
func Schema() []string {
	return []string{
		FeatureClarity,
		FeatureImpact,
		FeatureRelevance,
		FeatureReadability,
		FeatureKeywordDensity,
		FeatureCompleteness,
	}
}

// Extractor maps raw section text to the fixed metric mapping.
// Implementations are total: they always return a complete mapping and never
// fail per-item. A misconfigured extractor is a startup error, not a
// per-section one.
type Extractor interface {
	// Extract computes the metric mapping for text of the given section type.
	Extract(text, sectionType string) map[string]float64

	// Schema returns the ordered feature names this extractor produces.
	Schema() []string
}

var (
	wordPattern     = regexp.MustCompile(`[A-Za-z0-9']+`)
	sentencePattern = regexp.MustCompile(`[^.!?]+[.!?]?`)
	numberPattern   = regexp.MustCompile(`\d+(?:\.\d+)?[%xXkKmM+]?|\$\d+`)
)

// impactVerbs are the action verbs counted toward the impact metric.
var impactVerbs = map[string]struct{}{
	"led": {}, "built": {}, "launched": {}, "scaled": {}, "drove": {},
	"shipped": {}, "founded": {}, "created": {}, "designed": {}, "grew": {},
	"reduced": {}, "improved": {}, "delivered": {}, "optimized": {},
	"increased": {}, "architected": {}, "migrated": {}, "automated": {},
}

// sectionKeywords drive the relevance metric: terms a strong section of each
// type tends to contain.
var sectionKeywords = map[string][]string{
	"headline":   {"engineer", "developer", "founder", "lead", "senior", "staff", "principal", "architect"},
	"about":      {"experience", "passionate", "team", "product", "years", "building", "working"},
	"readme":     {"install", "usage", "build", "api", "example", "features", "documentation", "license"},
	"summary":    {"experience", "skills", "expertise", "proven", "results", "delivered"},
	"experience": {"responsible", "managed", "developed", "implemented", "team", "project"},
}

// targetLengths are the character counts at which the completeness metric
// saturates, per section type.
var targetLengths = map[string]int{
	"headline":   120,
	"about":      600,
	"readme":     1200,
	"summary":    400,
	"experience": 500,
}

const defaultTargetLength = 400

// HeuristicExtractor is the deterministic, dependency-free Extractor used in
// production. All metrics are pure functions of the input text.
type HeuristicExtractor struct{}

// NewHeuristicExtractor creates a HeuristicExtractor.
func NewHeuristicExtractor() *HeuristicExtractor {
	return &HeuristicExtractor{}
}

// Schema returns the canonical feature-name list.
func (e *HeuristicExtractor) Schema() []string {
	return Schema()
}

// Extract computes all six metrics for the given text. Empty or
// whitespace-only text yields an all-zero mapping.
func (e *HeuristicExtractor) Extract(text, sectionType string) map[string]float64 {
	metrics := map[string]float64{
		FeatureClarity:        0,
		FeatureImpact:         0,
		FeatureRelevance:      0,
		FeatureReadability:    0,
		FeatureKeywordDensity: 0,
		FeatureCompleteness:   0,
	}

	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return metrics
	}

	words := wordPattern.FindAllString(strings.ToLower(trimmed), -1)
	sentences := sentencePattern.FindAllString(trimmed, -1)
	if len(words) == 0 {
		return metrics
	}

	metrics[FeatureClarity] = clarity(words, sentences)
	metrics[FeatureImpact] = impact(trimmed, words)
	metrics[FeatureRelevance] = relevance(words, sectionType)
	metrics[FeatureReadability] = readability(words)
	metrics[FeatureKeywordDensity] = keywordDensity(words)
	metrics[FeatureCompleteness] = completeness(trimmed, sectionType)

	return metrics
}

// clarity scores average sentence length: 12 words or fewer per sentence is
// maximally clear, 40 or more scores zero.
func clarity(words []string, sentences []string) float64 {
	if len(sentences) == 0 {
		return 0
	}
	avg := float64(len(words)) / float64(len(sentences))
	if avg <= 12 {
		return 1.0
	}
	if avg >= 40 {
		return 0.0
	}
	return clamp01(1.0 - (avg-12)/28.0)
}

// impact combines action-verb usage with the presence of concrete numbers.
func impact(text string, words []string) float64 {
	verbs := 0
	for _, w := range words {
		if _, ok := impactVerbs[w]; ok {
			verbs++
		}
	}
	// Three distinct verb occurrences saturate the verb component.
	verbScore := math.Min(float64(verbs)/3.0, 1.0)

	numScore := 0.0
	if numberPattern.MatchString(text) {
		numScore = 1.0
	}

	return clamp01(0.7*verbScore + 0.3*numScore)
}

// relevance measures overlap with the section type's expected vocabulary.
func relevance(words []string, sectionType string) float64 {
	keywords, ok := sectionKeywords[sectionType]
	if !ok {
		return 0.5 // unknown section type: neutral
	}
	present := make(map[string]struct{}, len(words))
	for _, w := range words {
		present[w] = struct{}{}
	}
	hits := 0
	for _, k := range keywords {
		if _, ok := present[k]; ok {
			hits++
		}
	}
	// Half the vocabulary present counts as fully relevant.
	return clamp01(2.0 * float64(hits) / float64(len(keywords)))
}

// readability scores average word length: 4-6 characters is ideal.
func readability(words []string) float64 {
	total := 0
	for _, w := range words {
		total += len(w)
	}
	avg := float64(total) / float64(len(words))
	// Distance from the ideal band [4, 6], two characters of slack each side.
	switch {
	case avg >= 4 && avg <= 6:
		return 1.0
	case avg < 4:
		return clamp01(1.0 - (4-avg)/2.0)
	default:
		return clamp01(1.0 - (avg-6)/4.0)
	}
}

// keywordDensity is the ratio of distinct content words to total words.
func keywordDensity(words []string) float64 {
	distinct := make(map[string]struct{}, len(words))
	for _, w := range words {
		if len(w) > 2 {
			distinct[w] = struct{}{}
		}
	}
	return clamp01(float64(len(distinct)) / float64(len(words)))
}

// completeness saturates at the section type's target length.
func completeness(text, sectionType string) float64 {
	target, ok := targetLengths[sectionType]
	if !ok {
		target = defaultTargetLength
	}
	return clamp01(float64(len(text)) / float64(target))
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
