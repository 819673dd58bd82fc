package similarity

import (
	"reflect"
	"testing"
)

func TestExtractKeywords(t *testing.T) {
	tests := []struct {
		name  string
		texts []string
		limit int
		want  []string
	}{
		{
			name:  "frequency ordering",
			texts: []string{"kernel kernel kernel systems systems compiler"},
			limit: 0,
			want:  []string{"kernel", "systems", "compiler"},
		},
		{
			name:  "ties break by first seen",
			texts: []string{"alpha bravo charlie"},
			limit: 0,
			want:  []string{"alpha", "bravo", "charlie"},
		},
		{
			name:  "stop words and short tokens dropped",
			texts: []string{"the api is up and it is an api"},
			limit: 0,
			want:  []string{"api"},
		},
		{
			name:  "limit truncates",
			texts: []string{"one one two two three"},
			limit: 2,
			want:  []string{"one", "two"},
		},
		{
			name:  "multiple texts joined",
			texts: []string{"kernel hacking", "kernel tuning"},
			limit: 1,
			want:  []string{"kernel"},
		},
		{
			name:  "empty input",
			texts: nil,
			limit: 0,
			want:  nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExtractKeywords(tt.texts, tt.limit)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ExtractKeywords() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestExtractKeywordsDeterministic(t *testing.T) {
	texts := []string{"go systems performance go latency systems throughput"}
	first := ExtractKeywords(texts, 0)
	for i := 0; i < 10; i++ {
		if got := ExtractKeywords(texts, 0); !reflect.DeepEqual(got, first) {
			t.Fatalf("run %d returned %v, first run returned %v", i, got, first)
		}
	}
}

func TestMatchedKeywords(t *testing.T) {
	tests := []struct {
		name    string
		query   string
		content string
		want    []string
	}{
		{
			name:    "overlap in content keyword order",
			query:   "scaling postgres clusters",
			content: "postgres postgres scaling tips",
			want:    []string{"postgres", "scaling"},
		},
		{
			name:    "no overlap",
			query:   "frontend styling",
			content: "kernel development",
			want:    nil,
		},
		{
			name:    "stop words never match",
			query:   "the and with",
			content: "the and with something",
			want:    nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := matchedKeywords(tt.query, tt.content)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("matchedKeywords() = %v, want %v", got, tt.want)
			}
		})
	}
}
