package similarity

import (
	"math"
	"reflect"
	"strings"
	"testing"
)

func TestAnalyzeSectionPatterns(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    []string
	}{
		{
			name:    "years of experience",
			content: strings.Repeat("placeholder text to make the opening long enough that it is not concise at all ", 1) + "with 10+ years of work behind it",
			want:    []string{"years_experience"},
		},
		{
			name:    "impact verbs and metrics",
			content: "We launched the product and grew revenue 3x within twelve months of sustained effort across several markets",
			want:    []string{"impact_verbs", "specific_metrics"},
		},
		{
			name:    "tech stack",
			content: "Our services run on kubernetes with postgres and redis underneath everything else we have deployed over time",
			want:    []string{"tech_stack"},
		},
		{
			name:    "leadership and call to action",
			content: "I managed a wonderful team across three offices for several years running them remotely. Reach out anytime.",
			want:    []string{"leadership", "call_to_action"},
		},
		{
			name:    "concise opening",
			content: "Short and sweet. " + strings.Repeat("Then a much longer second sentence follows with many additional words in it for padding purposes entirely. ", 1),
			want:    []string{"concise_opening"},
		},
		{
			name:    "empty content matches nothing",
			content: "",
			want:    nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := AnalyzeSectionPatterns(tt.content)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("AnalyzeSectionPatterns() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAnalyzeSectionPatternsBatteryOrder(t *testing.T) {
	// Content matching several patterns returns labels in battery order.
	content := "Led a team for 5 years. We shipped a 2x faster golang service and grew usage. Let's connect."
	got := AnalyzeSectionPatterns(content)
	want := []string{"years_experience", "impact_verbs", "specific_metrics", "tech_stack", "leadership", "call_to_action", "concise_opening"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("AnalyzeSectionPatterns() = %v, want %v", got, want)
	}
}

func TestEvaluatePersonaAlignment(t *testing.T) {
	tests := []struct {
		name            string
		content         string
		persona         string
		wantScore       float64
		wantSuggestions int
	}{
		{
			name:            "founder using engineering jargon",
			content:         "Built scalable APIs and databases",
			persona:         "founder",
			wantScore:       0.6, // -0.2 missing keywords, -0.1 "api", -0.1 "database"
			wantSuggestions: 3,
		},
		{
			name:            "well aligned founder copy",
			content:         "Our vision: sustainable growth through a product customers love, built with a market-obsessed team.",
			persona:         "founder",
			wantScore:       1.0,
			wantSuggestions: 0,
		},
		{
			name:            "engineer with buzzwords",
			content:         "Rockstar ninja building systems at scale with solid architecture and performance-focused infrastructure",
			persona:         "engineer",
			wantScore:       0.8, // keywords fine, -0.1 "rockstar", -0.1 "ninja"
			wantSuggestions: 2,
		},
		{
			name:            "unknown persona scores full",
			content:         "anything",
			persona:         "astronaut",
			wantScore:       1.0,
			wantSuggestions: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := EvaluatePersonaAlignment(tt.content, tt.persona)
			if math.Abs(got.Score-tt.wantScore) > 1e-9 {
				t.Errorf("Score = %v, want %v", got.Score, tt.wantScore)
			}
			if len(got.Suggestions) != tt.wantSuggestions {
				t.Errorf("got %d suggestions %v, want %d", len(got.Suggestions), got.Suggestions, tt.wantSuggestions)
			}
		})
	}
}

func TestEvaluatePersonaAlignmentFloorsAtZero(t *testing.T) {
	// No founder keywords and every disallowed term present.
	content := "api database refactor backend debugging " + strings.Repeat("filler ", 5)
	got := EvaluatePersonaAlignment(content, "founder")
	if got.Score < 0 {
		t.Errorf("Score = %v, must not go below 0", got.Score)
	}
	if math.Abs(got.Score-0.3) > 1e-9 {
		t.Errorf("Score = %v, want 0.3", got.Score)
	}
}
