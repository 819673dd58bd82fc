package similarity

import (
	"regexp"
	"strings"
)

// conciseOpeningMaxWords is the longest first sentence still tagged
// concise_opening.
const conciseOpeningMaxWords = 12

// sectionPatterns is the fixed ordered battery of independent predicates.
// Each predicate is evaluated on its own; a section may match any number of
// patterns. The order only affects the order of returned labels.
var sectionPatterns = []struct {
	name  string
	match func(string) bool
}{
	{"years_experience", regexp.MustCompile(`(?i)\b\d+\+?\s*years?\b`).MatchString},
	{"impact_verbs", regexp.MustCompile(`(?i)\b(led|built|launched|scaled|drove|shipped|founded|grew)\b`).MatchString},
	{"specific_metrics", regexp.MustCompile(`(?i)(\d+(\.\d+)?%|\$\d+|\b\d+x\b|\b\d+[km]\+?\b)`).MatchString},
	{"tech_stack", regexp.MustCompile(`(?i)\b(go|golang|python|rust|typescript|kubernetes|react|postgres|redis|aws|gcp)\b`).MatchString},
	{"leadership", regexp.MustCompile(`(?i)\b(team|mentored|managed|hired|direct reports)\b`).MatchString},
	{"call_to_action", regexp.MustCompile(`(?i)(reach out|contact me|let'?s connect|get in touch)`).MatchString},
	{"concise_opening", hasConciseOpening},
}

// AnalyzeSectionPatterns tags content with the qualitative pattern labels it
// exhibits, in battery order. Deterministic for the same input.
func AnalyzeSectionPatterns(content string) []string {
	var labels []string
	for _, p := range sectionPatterns {
		if p.match(content) {
			labels = append(labels, p.name)
		}
	}
	return labels
}

var sentenceEnd = regexp.MustCompile(`[.!?]`)

// hasConciseOpening reports whether the first sentence is short.
func hasConciseOpening(content string) bool {
	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		return false
	}
	first := trimmed
	if loc := sentenceEnd.FindStringIndex(trimmed); loc != nil {
		first = trimmed[:loc[0]]
	}
	return len(strings.Fields(first)) <= conciseOpeningMaxWords
}

// personaVocab defines, per persona tag, the terminology a section should use
// (keywords) and should avoid (disallowed). These lists are part of the
// alignment scoring contract.
var personaVocab = map[string]struct {
	keywords   []string
	disallowed []string
}{
	"founder": {
		keywords:   []string{"vision", "growth", "product", "customers", "market", "team"},
		disallowed: []string{"api", "database", "refactor", "backend", "debugging"},
	},
	"engineer": {
		keywords:   []string{"built", "systems", "performance", "architecture", "scale", "infrastructure"},
		disallowed: []string{"synergy", "disrupt", "rockstar", "ninja", "guru"},
	},
	"leader": {
		keywords:   []string{"team", "mentored", "strategy", "delivered", "stakeholders", "culture"},
		disallowed: []string{"rockstar", "ninja", "10x"},
	},
}

// AlignmentResult is the outcome of a persona alignment evaluation.
type AlignmentResult struct {
	Score       float64  `json:"score"`
	Suggestions []string `json:"suggestions"`
}

// EvaluatePersonaAlignment scores how well content matches a persona's
// expected terminology. Starting from 1.0 it subtracts 0.2 when fewer than
// half the persona's keywords are present and 0.1 per distinct disallowed
// term found, flooring at 0.0. The thresholds are a reproducible contract,
// not a tunable model. An unknown persona scores 1.0 with no suggestions.
func EvaluatePersonaAlignment(content, persona string) AlignmentResult {
	vocab, ok := personaVocab[persona]
	if !ok {
		return AlignmentResult{Score: 1.0}
	}

	lower := strings.ToLower(content)
	score := 1.0
	var suggestions []string

	present := 0
	var missing []string
	for _, kw := range vocab.keywords {
		if strings.Contains(lower, kw) {
			present++
		} else {
			missing = append(missing, kw)
		}
	}
	if present*2 < len(vocab.keywords) {
		score -= 0.2
		suggestions = append(suggestions,
			"add more "+persona+"-focused language, e.g.: "+strings.Join(missing, ", "))
	}

	for _, term := range vocab.disallowed {
		if strings.Contains(lower, term) {
			score -= 0.1
			suggestions = append(suggestions,
				"avoid \""+term+"\" when writing for the "+persona+" persona")
		}
	}

	if score < 0 {
		score = 0
	}
	return AlignmentResult{Score: score, Suggestions: suggestions}
}
