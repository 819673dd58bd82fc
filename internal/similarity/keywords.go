package similarity

import (
	"regexp"
	"sort"
	"strings"
)

// minKeywordLength drops short tokens; anything of this length or less is
// never a keyword.
const minKeywordLength = 2

var nonWordPattern = regexp.MustCompile(`\W+`)

// stopwords excluded from keyword extraction.
var stopwords = map[string]struct{}{
	"a": {}, "an": {}, "the": {}, "and": {}, "or": {}, "but": {}, "if": {},
	"then": {}, "else": {}, "for": {}, "to": {}, "of": {}, "in": {}, "on": {},
	"at": {}, "by": {}, "with": {}, "as": {}, "is": {}, "are": {}, "was": {},
	"were": {}, "be": {}, "been": {}, "being": {}, "it": {}, "this": {},
	"that": {}, "these": {}, "those": {}, "from": {}, "up": {}, "down": {},
	"over": {}, "under": {}, "than": {}, "so": {}, "such": {}, "into": {},
	"about": {}, "between": {}, "through": {}, "during": {}, "before": {},
	"after": {}, "out": {}, "off": {}, "own": {}, "same": {}, "too": {},
	"very": {}, "can": {}, "will": {}, "just": {}, "not": {}, "all": {},
	"have": {}, "has": {}, "had": {}, "you": {}, "your": {}, "our": {},
	"their": {}, "his": {}, "her": {}, "its": {}, "they": {}, "them": {},
	"who": {}, "what": {}, "where": {}, "when": {}, "how": {}, "why": {},
	"more": {}, "most": {}, "other": {}, "some": {}, "any": {}, "each": {},
}

// ExtractKeywords tokenizes the joined texts on non-word boundaries,
// lowercases, drops stop words and tokens of length <= 2, and returns tokens
// ordered by descending frequency. Ties break by first-seen order, making the
// output deterministic for the same input. limit <= 0 returns all keywords.
func ExtractKeywords(texts []string, limit int) []string {
	counts := make(map[string]int)
	var firstSeen []string

	for _, tok := range tokenize(strings.Join(texts, " ")) {
		if _, ok := counts[tok]; !ok {
			firstSeen = append(firstSeen, tok)
		}
		counts[tok]++
	}

	order := make(map[string]int, len(firstSeen))
	for i, tok := range firstSeen {
		order[tok] = i
	}
	sort.SliceStable(firstSeen, func(i, j int) bool {
		ci, cj := counts[firstSeen[i]], counts[firstSeen[j]]
		if ci != cj {
			return ci > cj
		}
		return order[firstSeen[i]] < order[firstSeen[j]]
	})

	if limit > 0 && len(firstSeen) > limit {
		firstSeen = firstSeen[:limit]
	}
	return firstSeen
}

// matchedKeywords returns the content's keywords that also occur in the
// query, in the content's keyword order.
func matchedKeywords(query, content string) []string {
	queryTokens := make(map[string]struct{})
	for _, tok := range tokenize(query) {
		queryTokens[tok] = struct{}{}
	}

	var matched []string
	for _, kw := range ExtractKeywords([]string{content}, 0) {
		if _, ok := queryTokens[kw]; ok {
			matched = append(matched, kw)
		}
	}
	return matched
}

// tokenize splits text on non-word boundaries, lowercases, and drops stop
// words and short tokens.
func tokenize(text string) []string {
	var tokens []string
	for _, raw := range nonWordPattern.Split(strings.ToLower(text), -1) {
		if len(raw) <= minKeywordLength {
			continue
		}
		if _, ok := stopwords[raw]; ok {
			continue
		}
		tokens = append(tokens, raw)
	}
	return tokens
}
