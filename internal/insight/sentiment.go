package insight

import (
	"github.com/surgebase/porter2"

	"github.com/finspect/finspect/internal/types"
)

// Sentiment lexicons. Matching happens on stems, so inflected forms
// ("loved", "amazing") hit the same entries.
var (
	positiveWords = []string{
		"good", "great", "excellent", "amazing",
		"wonderful", "fantastic", "love", "like",
	}
	negativeWords = []string{
		"bad", "terrible", "awful", "hate",
		"dislike", "horrible", "worst", "poor",
	}
)

// Stemmer normalizes words before lexicon lookup. Words shorter than
// minLength pass through unchanged.
type Stemmer struct {
	minLength int
}

// NewStemmer creates a stemmer with the given minimum word length.
// Non-positive lengths select the default.
func NewStemmer(minLength int) *Stemmer {
	if minLength <= 0 {
		minLength = types.DefaultMinStemLength
	}
	return &Stemmer{minLength: minLength}
}

// Stem returns the Porter2 stem of a word, or the word itself when it is
// below the minimum length.
func (s *Stemmer) Stem(word string) string {
	if len(word) < s.minLength {
		return word
	}
	return porter2.Stem(word)
}

// Scorer scores token streams against the sentiment lexicons. The lexicons
// are stemmed once with the same stemmer applied to incoming tokens, so
// both sides of every lookup are normalized identically.
type Scorer struct {
	stemmer  *Stemmer
	positive map[string]bool
	negative map[string]bool
}

// NewScorer builds a scorer around the given stemmer.
func NewScorer(stemmer *Stemmer) *Scorer {
	return &Scorer{
		stemmer:  stemmer,
		positive: stemSet(positiveWords, stemmer),
		negative: stemSet(negativeWords, stemmer),
	}
}

func stemSet(words []string, stemmer *Stemmer) map[string]bool {
	set := make(map[string]bool, len(words))
	for _, w := range words {
		set[stemmer.Stem(w)] = true
	}
	return set
}

// Score returns (positive hits - negative hits) / total tokens, clamped to
// [-1, 1]. No tokens or no lexicon hits score 0.
func (s *Scorer) Score(tokens []string) float64 {
	if len(tokens) == 0 {
		return 0
	}

	pos, neg := 0, 0
	for _, tok := range tokens {
		stem := s.stemmer.Stem(tok)
		if s.positive[stem] {
			pos++
		}
		if s.negative[stem] {
			neg++
		}
	}
	if pos == 0 && neg == 0 {
		return 0
	}

	score := float64(pos-neg) / float64(len(tokens))
	if score > 1 {
		score = 1
	}
	if score < -1 {
		score = -1
	}
	return score
}
