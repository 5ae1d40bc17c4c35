package insight

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finspect/finspect/internal/report"
)

func TestTokenize(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{
			name: "punctuation splits",
			text: "Hello, world! It's 2024.",
			want: []string{"hello", "world", "it", "s", "2024"},
		},
		{
			name: "unicode letters",
			text: "Café déjà-vu 42",
			want: []string{"café", "déjà", "vu", "42"},
		},
		{
			name: "empty",
			text: "",
			want: []string{},
		},
		{
			name: "whitespace only",
			text: "  \t\n ",
			want: []string{},
		},
		{
			name: "digits attach to letters",
			text: "file2024name v2",
			want: []string{"file2024name", "v2"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Tokenize(tt.text))
		})
	}
}

func TestTopWordsOrdering(t *testing.T) {
	tokens := Tokenize("the cat sat on the mat the cat ran")

	got := TopWords(tokens, 10)
	want := []report.WordCount{
		{Word: "the", Count: 3},
		{Word: "cat", Count: 2},
		{Word: "sat", Count: 1},
		{Word: "on", Count: 1},
		{Word: "mat", Count: 1},
		{Word: "ran", Count: 1},
	}
	assert.Equal(t, want, got)
}

func TestTopWordsTruncates(t *testing.T) {
	tokens := []string{"a", "b", "c", "b", "c", "c"}
	got := TopWords(tokens, 2)
	assert.Equal(t, []report.WordCount{{Word: "c", Count: 3}, {Word: "b", Count: 2}}, got)
}

func TestAnalyzeProse(t *testing.T) {
	m := Analyze("The cat sat on the mat. The cat ran!\nGood cat.\n", Options{})

	assert.Equal(t, 47, m.CharCount)
	assert.Equal(t, 11, m.WordCount)
	assert.Equal(t, 2, m.LineCount)
	assert.Equal(t, 3, m.SentenceCount)
	assert.Equal(t, 7, m.UniqueWords)
	require.NotEmpty(t, m.TopWords)
	assert.Equal(t, report.WordCount{Word: "the", Count: 3}, m.TopWords[0])
	assert.Equal(t, report.WordCount{Word: "cat", Count: 3}, m.TopWords[1])
	assert.InDelta(t, float64(1)/11, m.Sentiment, 1e-9)
}

func TestAnalyzeEmpty(t *testing.T) {
	m := Analyze("", Options{})

	assert.Zero(t, m.CharCount)
	assert.Zero(t, m.WordCount)
	assert.Zero(t, m.LineCount)
	assert.Zero(t, m.SentenceCount)
	assert.Zero(t, m.UniqueWords)
	assert.Zero(t, m.AvgWordLength)
	assert.Zero(t, m.Sentiment)
	assert.Empty(t, m.TopWords)
}

func TestAvgWordLengthRounding(t *testing.T) {
	m := Analyze("the cat sat on the mat the cat ran", Options{})
	// 26 runes over 9 tokens
	assert.InDelta(t, 2.89, m.AvgWordLength, 1e-9)
}

func TestSentenceCount(t *testing.T) {
	tests := []struct {
		name string
		text string
		want int
	}{
		{"terminator runs collapse", "Wait... what?! Yes.", 3},
		{"no terminator but words", "just a fragment", 1},
		{"empty", "", 0},
		{"terminators only", "...", 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hasTokens := len(Tokenize(tt.text)) > 0
			assert.Equal(t, tt.want, countSentences(tt.text, hasTokens))
		})
	}
}

func TestLineCount(t *testing.T) {
	assert.Equal(t, 0, countLines(""))
	assert.Equal(t, 1, countLines("one line no newline"))
	assert.Equal(t, 1, countLines("one line\n"))
	assert.Equal(t, 2, countLines("a\nb"))
	assert.Equal(t, 2, countLines("a\nb\n"))
}
