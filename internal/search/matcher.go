package search

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/sahilm/fuzzy"

	"github.com/nikbrunner/burst/internal/model"
)

// Strategy names a matching algorithm.
type Strategy string

const (
	// StrategyScore is the composite relevance score (default).
	StrategyScore Strategy = "score"
	// StrategyDistance is a plain edit-distance cutoff.
	StrategyDistance Strategy = "distance"
	// StrategySubsequence is fzf-style subsequence matching.
	StrategySubsequence Strategy = "subsequence"
)

// Default thresholds.
const (
	DefaultScoreThreshold = 25
	DefaultTitleDistance  = 4
	DefaultURLDistance    = 20
)

// ParseStrategy validates a strategy name. Empty means StrategyScore.
func ParseStrategy(s string) (Strategy, error) {
	switch Strategy(strings.ToLower(strings.TrimSpace(s))) {
	case "", StrategyScore:
		return StrategyScore, nil
	case StrategyDistance:
		return StrategyDistance, nil
	case StrategySubsequence:
		return StrategySubsequence, nil
	}
	return "", fmt.Errorf("unknown search strategy %q", s)
}

// Matcher decides whether a candidate string matches a query.
// Score is a relevance value where higher is better; it is only meaningful
// when ok is true and only comparable between results of the same matcher.
type Matcher interface {
	Match(query, candidate string) (score float64, ok bool)
}

// Options configures NewMatcher.
type Options struct {
	ScoreThreshold int // StrategyScore, 1-100
	TitleDistance  int // StrategyDistance when searching titles
	URLDistance    int // StrategyDistance when searching URLs
}

// DefaultOptions returns the thresholds used by the bookmark manager.
func DefaultOptions() Options {
	return Options{
		ScoreThreshold: DefaultScoreThreshold,
		TitleDistance:  DefaultTitleDistance,
		URLDistance:    DefaultURLDistance,
	}
}

// NewMatcher builds the matcher for a strategy and the searched key.
func NewMatcher(strategy Strategy, key model.Key, opts Options) (Matcher, error) {
	switch strategy {
	case StrategyScore, "":
		return ScoreMatcher{Threshold: opts.ScoreThreshold}, nil
	case StrategyDistance:
		threshold := opts.TitleDistance
		if key == model.KeyURL {
			threshold = opts.URLDistance
		}
		return DistanceMatcher{Threshold: threshold}, nil
	case StrategySubsequence:
		return SubsequenceMatcher{}, nil
	}
	return nil, fmt.Errorf("unknown search strategy %q", strategy)
}

// ScoreMatcher matches when the composite Score reaches Threshold.
type ScoreMatcher struct {
	Threshold int
}

// Match implements Matcher.
func (m ScoreMatcher) Match(query, candidate string) (float64, bool) {
	score := Score(query, candidate)
	return float64(score), Matches(query, candidate, m.Threshold)
}

// Matches reports whether Score(query, candidate) reaches threshold.
// threshold is clamped to [1,100]. An exact match after normalization
// always matches.
func Matches(query, candidate string, threshold int) bool {
	if candidate == "" {
		return false
	}
	threshold = min(max(threshold, 1), 100)
	normQuery, normTarget := NormalizeText(query), NormalizeText(candidate)
	if normQuery == "" {
		return false
	}
	if normQuery == normTarget {
		return true
	}
	return Score(query, candidate) >= threshold
}

// Score computes a 0-100 relevance of candidate for query:
//
//	exact (normalized)  100
//	prefix              +70
//	substring           +50 (only when not a prefix)
//	shared tokens       +10 each
//	token similarity    +40 * mean best Levenshtein similarity per query token
func Score(query, candidate string) int {
	normQuery, normTarget := NormalizeText(query), NormalizeText(candidate)
	if normQuery == "" || normTarget == "" {
		return 0
	}
	if normQuery == normTarget {
		return 100
	}

	score := 0
	switch {
	case strings.HasPrefix(normTarget, normQuery):
		score += 70
	case strings.Contains(normTarget, normQuery):
		score += 50
	}

	queryTokens, targetTokens := Tokenize(normQuery), Tokenize(normTarget)
	targetSet := make(map[string]struct{}, len(targetTokens))
	for _, tok := range targetTokens {
		targetSet[tok] = struct{}{}
	}
	for _, tok := range queryTokens {
		if _, ok := targetSet[tok]; ok {
			score += 10
		}
	}

	score += int(tokenSimilarity(queryTokens, targetTokens) * 40)
	return min(max(score, 0), 100)
}

// tokenSimilarity averages, over query tokens, the best similarity against
// any target token.
func tokenSimilarity(queryTokens, targetTokens []string) float64 {
	if len(queryTokens) == 0 {
		return 0
	}
	total := 0.0
	for _, q := range queryTokens {
		best := 0.0
		for _, t := range targetTokens {
			if sim := Similarity(q, t); sim > best {
				best = sim
			}
		}
		total += best
	}
	return total / float64(len(queryTokens))
}

// NormalizeText lowercases, drops punctuation other than '/', '.', '-' and
// '_', and trims surrounding space.
func NormalizeText(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range strings.ToLower(s) {
		if isWordRune(r) || unicode.IsSpace(r) || r == '/' || r == '.' || r == '-' {
			b.WriteRune(r)
		}
	}
	return strings.TrimSpace(b.String())
}

// Tokenize splits on anything that is not a letter, digit or underscore.
func Tokenize(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool { return !isWordRune(r) })
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_'
}

// DistanceMatcher matches when the edit distance is within Threshold.
type DistanceMatcher struct {
	Threshold int
}

// Match implements Matcher. The score is the similarity scaled to 0-100.
func (m DistanceMatcher) Match(query, candidate string) (float64, bool) {
	ok := DistanceMatches(query, candidate, m.Threshold)
	if !ok {
		return 0, false
	}
	q := strings.ToLower(strings.TrimSpace(query))
	return Similarity(strings.ToLower(candidate), q) * 100, true
}

// DistanceMatches lowercases both strings. A blank query never matches; a
// query longer than two runes
// that is a substring of the candidate matches outright, otherwise the full
// Levenshtein distance must be at most threshold.
func DistanceMatches(query, candidate string, threshold int) bool {
	q := strings.ToLower(strings.TrimSpace(query))
	c := strings.ToLower(candidate)
	if q == "" || c == "" {
		return false
	}
	if utf8.RuneCountInString(q) > 2 && strings.Contains(c, q) {
		return true
	}
	return Levenshtein(c, q) <= threshold
}

// SubsequenceMatcher matches when the query's characters appear in order
// in the candidate.
type SubsequenceMatcher struct{}

// Match implements Matcher.
func (SubsequenceMatcher) Match(query, candidate string) (float64, bool) {
	if query == "" || candidate == "" {
		return 0, false
	}
	matches := fuzzy.Find(query, []string{candidate})
	if len(matches) == 0 {
		return 0, false
	}
	return float64(matches[0].Score), true
}
