// Package report defines the JSON report document finspect emits for every
// analyzed file. Key names and nesting are stable: downstream consumers parse
// these documents without coordination.
package report

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/finspect/finspect/internal/types"
)

// SchemaVersion identifies the report document layout. Bump on any breaking
// key change.
const SchemaVersion = "1"

// FileRecord captures identity and filesystem metadata for one input file.
type FileRecord struct {
	Path        string    `json:"path"`
	SizeBytes   int64     `json:"sizeBytes"`
	CreatedAt   time.Time `json:"createdAt"`
	ModifiedAt  time.Time `json:"modifiedAt"`
	ContentHash string    `json:"contentHash"`
}

// StageError records the first pipeline stage that failed for a file.
type StageError struct {
	Stage   string `json:"stage"`
	Message string `json:"message"`
}

// Analysis is the closed set of per-category metric variants. Exactly one
// implementation is populated per report, matching Report.Category.
type Analysis interface {
	Category() types.Category
}

// Report is the per-file output document.
type Report struct {
	File     FileRecord     `json:"file"`
	Category types.Category `json:"category"`
	Analysis Analysis       `json:"analysis"`
	Error    *StageError    `json:"error,omitempty"`
}

// Consistent reports whether the populated analysis variant matches the
// assigned category. A nil analysis (file never analyzed) is consistent.
func (r *Report) Consistent() bool {
	if r.Analysis == nil {
		return true
	}
	return r.Analysis.Category() == r.Category
}

// UnmarshalJSON decodes a report, selecting the analysis variant by category.
func (r *Report) UnmarshalJSON(data []byte) error {
	var raw struct {
		File     FileRecord      `json:"file"`
		Category types.Category  `json:"category"`
		Analysis json.RawMessage `json:"analysis"`
		Error    *StageError     `json:"error"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	r.File = raw.File
	r.Category = raw.Category
	r.Error = raw.Error
	r.Analysis = nil

	if len(raw.Analysis) == 0 || string(raw.Analysis) == "null" {
		return nil
	}

	variant, err := variantFor(raw.Category)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(raw.Analysis, variant); err != nil {
		return err
	}
	r.Analysis = variant
	return nil
}

// variantFor returns an empty metrics value for the category.
func variantFor(c types.Category) (Analysis, error) {
	switch c {
	case types.CategoryText:
		return &TextMetrics{}, nil
	case types.CategoryJSON:
		return &JSONMetrics{}, nil
	case types.CategoryCSV:
		return &CSVMetrics{}, nil
	case types.CategoryImage:
		return &ImageMetrics{}, nil
	case types.CategoryPDF:
		return &PDFMetrics{}, nil
	case types.CategoryOther:
		return &OtherMetrics{}, nil
	}
	return nil, fmt.Errorf("unknown report category %q", c)
}

// WordCount is one entry in a text report's frequency table.
type WordCount struct {
	Word  string `json:"word"`
	Count int    `json:"count"`
}

// TextMetrics describes decoded text content.
type TextMetrics struct {
	CharCount     int         `json:"charCount"`
	WordCount     int         `json:"wordCount"`
	LineCount     int         `json:"lineCount"`
	SentenceCount int         `json:"sentenceCount"`
	UniqueWords   int         `json:"uniqueWords"`
	AvgWordLength float64     `json:"avgWordLength"`
	Encoding      string      `json:"encoding,omitempty"`
	TopWords      []WordCount `json:"topWords"`
	Sentiment     float64     `json:"sentiment"`
}

func (*TextMetrics) Category() types.Category { return types.CategoryText }

// JSONMetrics describes JSON document structure. On parse failure only
// ParseSuccess and ParseError are meaningful.
type JSONMetrics struct {
	ParseSuccess bool     `json:"parseSuccess"`
	TopLevelType string   `json:"topLevelType,omitempty"`
	KeyCount     int      `json:"keyCount"`
	ElementCount int      `json:"elementCount"`
	NestingDepth int      `json:"nestingDepth"`
	Keys         []string `json:"keys,omitempty"`
	ParseError   string   `json:"parseError,omitempty"`
}

func (*JSONMetrics) Category() types.Category { return types.CategoryJSON }

// CSVMetrics describes tabular shape. ColumnTypes holds one of
// numeric|text|mixed|empty per column.
type CSVMetrics struct {
	RowCount    int        `json:"rowCount"`
	ColumnCount int        `json:"columnCount"`
	Delimiter   string     `json:"delimiter"`
	HasHeader   bool       `json:"hasHeader"`
	ColumnTypes []string   `json:"columnTypes"`
	SampleRows  [][]string `json:"sampleRows,omitempty"`
	Ragged      bool       `json:"ragged,omitempty"`
}

func (*CSVMetrics) Category() types.Category { return types.CategoryCSV }

// ImageMetrics describes image container properties. All fields are zero
// when the content does not decode as a valid image.
type ImageMetrics struct {
	Width     int    `json:"width"`
	Height    int    `json:"height"`
	ColorMode string `json:"colorMode,omitempty"`
	Format    string `json:"format,omitempty"`
	Valid     bool   `json:"valid"`
}

func (*ImageMetrics) Category() types.Category { return types.CategoryImage }

// PDFMetrics describes a PDF document. Text carries metrics over the
// extracted plain text when extraction produced any; TextPreview is a
// bounded excerpt of that text.
type PDFMetrics struct {
	PageCount   int          `json:"pageCount"`
	Valid       bool         `json:"valid"`
	Text        *TextMetrics `json:"text,omitempty"`
	TextPreview string       `json:"textPreview,omitempty"`
}

func (*PDFMetrics) Category() types.Category { return types.CategoryPDF }

// OtherMetrics describes content that matched no specific category.
type OtherMetrics struct {
	PrintableRatio float64 `json:"printableRatio"`
	Signature      string  `json:"signature,omitempty"`
}

func (*OtherMetrics) Category() types.Category { return types.CategoryOther }
