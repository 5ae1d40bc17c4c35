package classify

import (
	"bytes"
	"sort"

	"github.com/finspect/finspect/internal/types"
)

// delimiterCandidates in fixed precedence order. Score ties go to the
// earlier candidate.
var delimiterCandidates = []byte{',', ';', '\t', '|'}

// SniffResult describes the best delimiter candidate over the sampled lines.
type SniffResult struct {
	// Delimiter is the winning candidate. Only meaningful when OK.
	Delimiter byte
	// Columns is the modal column count under the winning delimiter.
	Columns int
	// Score is how many sampled lines match the modal column count.
	Score int
	// Lines is how many non-blank lines were sampled.
	Lines int
	// OK reports whether any candidate produced a modal count of at
	// least two columns.
	OK bool
}

// SniffDelimiter scores each candidate delimiter over up to CSVSniffLines
// non-blank lines. Per candidate the score is the number of lines matching
// the modal column count; modal counts below two columns disqualify the
// candidate. truncated marks content cut off mid-file, in which case a
// final partial line is dropped rather than scored.
func SniffDelimiter(data []byte, truncated bool) SniffResult {
	lines := sampleLines(data, types.CSVSniffLines, truncated)
	res := SniffResult{Lines: len(lines)}
	if len(lines) == 0 {
		return res
	}

	for _, d := range delimiterCandidates {
		colCounts := make([]int, len(lines))
		for i, ln := range lines {
			colCounts[i] = bytes.Count(ln, []byte{d}) + 1
		}
		columns, score := modalCount(colCounts)
		if columns < 2 {
			continue
		}
		if score > res.Score {
			res.Delimiter = d
			res.Columns = columns
			res.Score = score
			res.OK = true
		}
	}
	return res
}

// sampleLines returns up to max non-blank lines. When the data is truncated
// and does not end at a line boundary, the trailing fragment is discarded.
func sampleLines(data []byte, max int, truncated bool) [][]byte {
	raw := bytes.Split(data, []byte{'\n'})
	if truncated && len(raw) > 1 && len(raw[len(raw)-1]) > 0 {
		raw = raw[:len(raw)-1]
	}

	lines := make([][]byte, 0, max)
	for _, ln := range raw {
		ln = bytes.TrimSuffix(ln, []byte{'\r'})
		if len(bytes.TrimSpace(ln)) == 0 {
			continue
		}
		lines = append(lines, ln)
		if len(lines) == max {
			break
		}
	}
	return lines
}

// modalCount returns the most frequent value and its frequency. Ties go to
// the smaller value so the result does not depend on map iteration order.
func modalCount(values []int) (value, freq int) {
	counts := make(map[int]int, len(values))
	for _, v := range values {
		counts[v]++
	}

	keys := make([]int, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Ints(keys)

	for _, k := range keys {
		if counts[k] > freq {
			value = k
			freq = counts[k]
		}
	}
	return value, freq
}
