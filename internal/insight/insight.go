// Package insight derives language metrics from decoded text: token
// frequencies, sentence counts and a lexicon sentiment score. All functions
// are deterministic; the same input text always produces identical metrics.
package insight

import (
	"math"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/finspect/finspect/internal/report"
	"github.com/finspect/finspect/internal/types"
)

// Options control the derived metrics. Zero values select the defaults.
type Options struct {
	TopWords      int
	MinStemLength int
}

func (o Options) withDefaults() Options {
	if o.TopWords <= 0 {
		o.TopWords = types.DefaultTopWords
	}
	if o.MinStemLength <= 0 {
		o.MinStemLength = types.DefaultMinStemLength
	}
	return o
}

// Analyze computes the full set of text metrics over decoded content.
func Analyze(text string, opts Options) *report.TextMetrics {
	opts = opts.withDefaults()
	tokens := Tokenize(text)

	return &report.TextMetrics{
		CharCount:     utf8.RuneCountInString(text),
		WordCount:     len(tokens),
		LineCount:     countLines(text),
		SentenceCount: countSentences(text, len(tokens) > 0),
		UniqueWords:   uniqueCount(tokens),
		AvgWordLength: avgWordLength(tokens),
		TopWords:      TopWords(tokens, opts.TopWords),
		Sentiment:     NewScorer(NewStemmer(opts.MinStemLength)).Score(tokens),
	}
}

// Tokenize splits text into maximal runs of Unicode letters and digits,
// lowercased. Everything else separates tokens.
func Tokenize(text string) []string {
	tokens := []string{}
	start := -1
	for i, r := range text {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if start < 0 {
				start = i
			}
			continue
		}
		if start >= 0 {
			tokens = append(tokens, strings.ToLower(text[start:i]))
			start = -1
		}
	}
	if start >= 0 {
		tokens = append(tokens, strings.ToLower(text[start:]))
	}
	return tokens
}

// TopWords returns the n most frequent tokens, count descending. Equal
// counts rank by first occurrence in the token stream.
func TopWords(tokens []string, n int) []report.WordCount {
	counts := make(map[string]int, len(tokens))
	firstSeen := make(map[string]int, len(tokens))
	order := make([]string, 0, len(tokens))

	for i, tok := range tokens {
		if _, seen := counts[tok]; !seen {
			firstSeen[tok] = i
			order = append(order, tok)
		}
		counts[tok]++
	}

	sort.Slice(order, func(a, b int) bool {
		wa, wb := order[a], order[b]
		if counts[wa] != counts[wb] {
			return counts[wa] > counts[wb]
		}
		return firstSeen[wa] < firstSeen[wb]
	})

	if n > len(order) {
		n = len(order)
	}
	top := make([]report.WordCount, 0, n)
	for _, w := range order[:n] {
		top = append(top, report.WordCount{Word: w, Count: counts[w]})
	}
	return top
}

func uniqueCount(tokens []string) int {
	seen := make(map[string]struct{}, len(tokens))
	for _, tok := range tokens {
		seen[tok] = struct{}{}
	}
	return len(seen)
}

// avgWordLength is the mean rune length of the tokens, rounded to two
// decimal places.
func avgWordLength(tokens []string) float64 {
	if len(tokens) == 0 {
		return 0
	}
	total := 0
	for _, tok := range tokens {
		total += utf8.RuneCountInString(tok)
	}
	return math.Round(float64(total)/float64(len(tokens))*100) / 100
}

// countLines counts newline-terminated lines plus a trailing unterminated
// one. Empty text has zero lines.
func countLines(text string) int {
	if len(text) == 0 {
		return 0
	}
	n := strings.Count(text, "\n")
	if !strings.HasSuffix(text, "\n") {
		n++
	}
	return n
}

// countSentences counts maximal runs of sentence punctuation. Text with
// tokens but no terminator still counts as one sentence.
func countSentences(text string, hasTokens bool) int {
	runs := 0
	inRun := false
	for _, r := range text {
		switch r {
		case '.', '!', '?':
			if !inRun {
				runs++
				inRun = true
			}
		default:
			inRun = false
		}
	}
	if runs == 0 && hasTokens {
		return 1
	}
	return runs
}
