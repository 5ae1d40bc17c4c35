// Package analyze holds the per-category format analyzers. Each analyzer is
// a pure function of the file content: it returns its metrics variant plus
// an error when analysis was degraded, and never panics on malformed input.
package analyze

import (
	"bytes"
	"encoding/csv"
	"errors"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/finspect/finspect/internal/classify"
	finerrors "github.com/finspect/finspect/internal/errors"
	"github.com/finspect/finspect/internal/report"
	"github.com/finspect/finspect/internal/types"
)

// Column type names reported per data column.
const (
	columnNumeric = "numeric"
	columnText    = "text"
	columnMixed   = "mixed"
	columnEmpty   = "empty"
)

// CSV sniffs the delimiter, parses the records and computes tabular
// metrics. truncated marks content cut at the read cap; sampleRows bounds
// how many leading data rows the report echoes back.
func CSV(path string, content []byte, truncated bool, sampleRows int) (*report.CSVMetrics, error) {
	if sampleRows < 0 {
		sampleRows = types.DefaultCSVSampleRows
	}

	m := &report.CSVMetrics{
		Delimiter:   delimiterFor(path, content, truncated),
		ColumnTypes: []string{},
	}

	r := csv.NewReader(bytes.NewReader(content))
	r.Comma = rune(m.Delimiter[0])
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	var records [][]string
	var parseErr error
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			parseErr = err
			break
		}
		records = append(records, rec)
	}

	if len(records) == 0 {
		if parseErr != nil {
			return m, finerrors.NewParseError(finerrors.StageCSV, path, parseErr)
		}
		return m, nil
	}

	m.ColumnCount = modalWidth(records)
	for _, rec := range records {
		if len(rec) != m.ColumnCount {
			m.Ragged = true
			break
		}
	}

	m.HasHeader = inferHeader(records)
	dataRows := records
	if m.HasHeader {
		dataRows = records[1:]
	}
	m.RowCount = len(dataRows)
	m.ColumnTypes = columnTypes(dataRows, m.ColumnCount)

	n := sampleRows
	if n > len(dataRows) {
		n = len(dataRows)
	}
	for _, rec := range dataRows[:n] {
		m.SampleRows = append(m.SampleRows, append([]string{}, rec...))
	}

	switch {
	case parseErr != nil:
		return m, finerrors.NewParseError(finerrors.StageCSV, path, parseErr)
	case m.Ragged:
		return m, finerrors.NewParseError(finerrors.StageCSV, path,
			errors.New("rows disagree on column count"))
	}
	return m, nil
}

// delimiterFor picks the sniffed delimiter, falling back to the extension
// default when no candidate qualifies.
func delimiterFor(path string, content []byte, truncated bool) string {
	if r := classify.SniffDelimiter(content, truncated); r.OK {
		return string(r.Delimiter)
	}
	if strings.ToLower(filepath.Ext(path)) == ".tsv" {
		return "\t"
	}
	return ","
}

// modalWidth returns the most common record length, smaller widths winning
// ties.
func modalWidth(records [][]string) int {
	widths := make([]int, len(records))
	for i, rec := range records {
		widths[i] = len(rec)
	}
	counts := make(map[int]int, len(widths))
	maxWidth := 0
	for _, w := range widths {
		counts[w]++
		if w > maxWidth {
			maxWidth = w
		}
	}
	best, bestFreq := 0, 0
	for w := 0; w <= maxWidth; w++ {
		if counts[w] > bestFreq {
			best, bestFreq = w, counts[w]
		}
	}
	return best
}

// inferHeader reports whether the first record looks like a header row:
// every first-row value non-numeric, with at least one column numeric in a
// later record.
func inferHeader(records [][]string) bool {
	if len(records) < 2 {
		return false
	}
	for _, v := range records[0] {
		if isNumeric(v) {
			return false
		}
	}
	for _, rec := range records[1:] {
		for j := range rec {
			if j < len(records[0]) && isNumeric(rec[j]) {
				return true
			}
		}
	}
	return false
}

// columnTypes inspects the data rows column by column.
func columnTypes(rows [][]string, columns int) []string {
	out := make([]string, 0, columns)
	for j := 0; j < columns; j++ {
		numeric, textual, empty := 0, 0, 0
		for _, rec := range rows {
			if j >= len(rec) {
				continue
			}
			v := strings.TrimSpace(rec[j])
			switch {
			case v == "":
				empty++
			case isNumeric(v):
				numeric++
			default:
				textual++
			}
		}
		switch {
		case numeric == 0 && textual == 0:
			out = append(out, columnEmpty)
		case numeric > 0 && textual > 0:
			out = append(out, columnMixed)
		case numeric > 0:
			out = append(out, columnNumeric)
		default:
			out = append(out, columnText)
		}
	}
	return out
}

func isNumeric(v string) bool {
	v = strings.TrimSpace(v)
	if v == "" {
		return false
	}
	_, err := strconv.ParseFloat(v, 64)
	return err == nil
}
