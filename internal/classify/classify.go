// Package classify assigns each input file to exactly one content category.
// Detection is content-first: magic signatures beat structural probes, probes
// beat the printable heuristic, extensions are the fallback of last resort.
// Classification never fails; unmatched content lands in CategoryOther.
package classify

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"github.com/finspect/finspect/internal/types"
)

// Result is a classification outcome. MIME carries the detected media type
// for logging and listings; it is not part of the report document.
type Result struct {
	Category types.Category
	MIME     string
}

// extensionCategory maps known extensions to their fallback category.
var extensionCategory = map[string]types.Category{
	".json": types.CategoryJSON,
	".csv":  types.CategoryCSV,
	".tsv":  types.CategoryCSV,
	".txt":  types.CategoryText,
	".md":   types.CategoryText,
	".log":  types.CategoryText,
	".png":  types.CategoryImage,
	".jpg":  types.CategoryImage,
	".jpeg": types.CategoryImage,
	".gif":  types.CategoryImage,
	".pdf":  types.CategoryPDF,
}

// Detect classifies a file from its path and a leading content sample.
// sampleIsFull reports whether the sample covers the entire file; structural
// probes are stricter on truncated samples.
func Detect(path string, sample []byte, sampleIsFull bool) Result {
	ext := strings.ToLower(filepath.Ext(path))

	if len(sample) == 0 {
		if c, ok := extensionCategory[ext]; ok {
			return Result{Category: c}
		}
		return Result{Category: types.CategoryOther}
	}

	m := mimetype.Detect(sample)
	res := Result{MIME: m.String()}

	switch {
	case m.Is("image/svg+xml"):
		// SVG is text-based XML, keep it out of the image pipeline
	case strings.HasPrefix(m.String(), "image/"):
		res.Category = types.CategoryImage
		return res
	case m.Is("application/pdf"):
		res.Category = types.CategoryPDF
		return res
	}

	if ext == ".json" || isJSONSample(sample, sampleIsFull) {
		res.Category = types.CategoryJSON
		return res
	}
	if ext == ".csv" || ext == ".tsv" {
		res.Category = types.CategoryCSV
		return res
	}
	if _, known := extensionCategory[ext]; !known && isCSVSample(sample, !sampleIsFull) {
		res.Category = types.CategoryCSV
		return res
	}

	if hasTextBOM(sample) || !LooksBinary(sample) {
		res.Category = types.CategoryText
		return res
	}

	if c, ok := extensionCategory[ext]; ok {
		res.Category = c
		return res
	}
	res.Category = types.CategoryOther
	return res
}

// isJSONSample reports whether the sample is a JSON document. A truncated
// sample cannot be validated, so it only counts when the extension agrees,
// which Detect already checked.
func isJSONSample(sample []byte, sampleIsFull bool) bool {
	trimmed := bytes.TrimPrefix(sample, utf8BOM)
	trimmed = bytes.TrimLeft(trimmed, " \t\r\n")
	if len(trimmed) == 0 || (trimmed[0] != '{' && trimmed[0] != '[') {
		return false
	}
	return sampleIsFull && json.Valid(trimmed)
}

// isCSVSample reports whether every sampled line splits into the same
// multi-column shape under one candidate delimiter.
func isCSVSample(sample []byte, truncated bool) bool {
	r := SniffDelimiter(sample, truncated)
	return r.OK && r.Lines >= 2 && r.Score == r.Lines
}

var (
	utf8BOM    = []byte{0xEF, 0xBB, 0xBF}
	utf16LEBOM = []byte{0xFF, 0xFE}
	utf16BEBOM = []byte{0xFE, 0xFF}
)

// hasTextBOM reports whether the sample opens with a Unicode byte order
// mark. UTF-16 content is half NUL bytes, which the printable heuristic
// would misread as binary.
func hasTextBOM(sample []byte) bool {
	return bytes.HasPrefix(sample, utf8BOM) ||
		bytes.HasPrefix(sample, utf16LEBOM) ||
		bytes.HasPrefix(sample, utf16BEBOM)
}

// LooksBinary applies the NUL and control-byte thresholds to a content
// sample. High bytes are not counted so UTF-8 text passes.
func LooksBinary(sample []byte) bool {
	if len(sample) == 0 {
		return false
	}

	nullBytes := 0
	nonPrintable := 0
	for _, b := range sample {
		if b == 0 {
			nullBytes++
		}
		if b < 0x20 && b != 0x09 && b != 0x0A && b != 0x0D {
			nonPrintable++
		}
	}

	// More than 1% NUL bytes, very likely binary
	if nullBytes > len(sample)/100 {
		return true
	}
	// More than 30% non-printable characters, likely binary
	return nonPrintable > len(sample)*30/100
}

// PrintableRatio returns the share of sample bytes that are printable or
// common whitespace, in [0, 1]. Empty samples score 0.
func PrintableRatio(sample []byte) float64 {
	if len(sample) == 0 {
		return 0
	}
	printable := 0
	for _, b := range sample {
		if b >= 0x20 || b == 0x09 || b == 0x0A || b == 0x0D {
			printable++
		}
	}
	return float64(printable) / float64(len(sample))
}
