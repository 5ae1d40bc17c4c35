package report

import (
	"strings"

	"github.com/google/jsonschema-go/jsonschema"

	"github.com/finspect/finspect/internal/types"
)

// SchemaBundle is the document printed by the schema command. Report and
// Summary describe the two emitted file layouts; Variants holds the
// analysis object layout for each category.
type SchemaBundle struct {
	SchemaVersion string                        `json:"schemaVersion"`
	Report        *jsonschema.Schema            `json:"report"`
	Variants      map[string]*jsonschema.Schema `json:"variants"`
	Summary       *jsonschema.Schema            `json:"summary"`
}

// Schemas returns the full machine-readable description of finspect's
// output documents.
func Schemas() *SchemaBundle {
	return &SchemaBundle{
		SchemaVersion: SchemaVersion,
		Report:        reportSchema(),
		Variants: map[string]*jsonschema.Schema{
			types.CategoryText.String():  textMetricsSchema(),
			types.CategoryJSON.String():  jsonMetricsSchema(),
			types.CategoryCSV.String():   csvMetricsSchema(),
			types.CategoryImage.String(): imageMetricsSchema(),
			types.CategoryPDF.String():   pdfMetricsSchema(),
			types.CategoryOther.String(): otherMetricsSchema(),
		},
		Summary: summarySchema(),
	}
}

func categoryList() string {
	names := make([]string, 0, len(types.Categories()))
	for _, c := range types.Categories() {
		names = append(names, c.String())
	}
	return strings.Join(names, "|")
}

func reportSchema() *jsonschema.Schema {
	return &jsonschema.Schema{
		Type:        "object",
		Description: "Per-file analysis report",
		Required:    []string{"file", "category", "analysis"},
		Properties: map[string]*jsonschema.Schema{
			"file": {
				Type:        "object",
				Description: "Identity and filesystem metadata of the input file",
				Required:    []string{"path", "sizeBytes", "createdAt", "modifiedAt", "contentHash"},
				Properties: map[string]*jsonschema.Schema{
					"path":        {Type: "string", Description: "Absolute path of the input file"},
					"sizeBytes":   {Type: "integer", Description: "File size in bytes"},
					"createdAt":   {Type: "string", Description: "Creation time, RFC 3339 UTC; modification time where creation time is unavailable"},
					"modifiedAt":  {Type: "string", Description: "Last modification time, RFC 3339 UTC"},
					"contentHash": {Type: "string", Description: "Lowercase hex SHA-256 of the file content"},
				},
			},
			"category": {
				Type:        "string",
				Description: "Detected content category, one of " + categoryList(),
			},
			"analysis": {
				Type:        "object",
				Description: "Category-specific metrics, see variants; null when analysis never ran",
			},
			"error": {
				Type:        "object",
				Description: "First pipeline failure for this file; absent on success",
				Required:    []string{"stage", "message"},
				Properties: map[string]*jsonschema.Schema{
					"stage":   {Type: "string", Description: "Pipeline stage that failed"},
					"message": {Type: "string", Description: "Human-readable failure description"},
				},
			},
		},
	}
}

func textMetricsSchema() *jsonschema.Schema {
	return &jsonschema.Schema{
		Type:        "object",
		Description: "Metrics over decoded text content",
		Required:    []string{"charCount", "wordCount", "lineCount", "sentenceCount", "uniqueWords", "avgWordLength", "topWords", "sentiment"},
		Properties: map[string]*jsonschema.Schema{
			"charCount":     {Type: "integer", Description: "Unicode code points in the decoded text"},
			"wordCount":     {Type: "integer", Description: "Token count"},
			"lineCount":     {Type: "integer", Description: "Line count"},
			"sentenceCount": {Type: "integer", Description: "Sentence count"},
			"uniqueWords":   {Type: "integer", Description: "Distinct lowercased tokens"},
			"avgWordLength": {Type: "number", Description: "Mean token length, rounded to two decimals"},
			"encoding":      {Type: "string", Description: "Source encoding the text was decoded from"},
			"topWords": {
				Type:        "array",
				Description: "Most frequent tokens, count descending",
				Items: &jsonschema.Schema{
					Type:     "object",
					Required: []string{"word", "count"},
					Properties: map[string]*jsonschema.Schema{
						"word":  {Type: "string"},
						"count": {Type: "integer"},
					},
				},
			},
			"sentiment": {Type: "number", Description: "Lexicon sentiment score in [-1, 1]"},
		},
	}
}

func jsonMetricsSchema() *jsonschema.Schema {
	return &jsonschema.Schema{
		Type:        "object",
		Description: "Metrics over a JSON document",
		Required:    []string{"parseSuccess", "keyCount", "elementCount", "nestingDepth"},
		Properties: map[string]*jsonschema.Schema{
			"parseSuccess": {Type: "boolean", Description: "Whether the document parsed as valid JSON"},
			"topLevelType": {Type: "string", Description: "Type of the root value: object, array, string, number, boolean or null"},
			"keyCount":     {Type: "integer", Description: "Object keys across the whole document"},
			"elementCount": {Type: "integer", Description: "Array elements across the whole document"},
			"nestingDepth": {Type: "integer", Description: "Maximum container nesting depth"},
			"keys": {
				Type:        "array",
				Description: "First object keys in document order",
				Items:       &jsonschema.Schema{Type: "string"},
			},
			"parseError": {Type: "string", Description: "Parser message when parseSuccess is false"},
		},
	}
}

func csvMetricsSchema() *jsonschema.Schema {
	return &jsonschema.Schema{
		Type:        "object",
		Description: "Metrics over tabular content",
		Required:    []string{"rowCount", "columnCount", "delimiter", "hasHeader", "columnTypes"},
		Properties: map[string]*jsonschema.Schema{
			"rowCount":    {Type: "integer", Description: "Data rows, excluding a detected header"},
			"columnCount": {Type: "integer", Description: "Columns in the widest common shape"},
			"delimiter":   {Type: "string", Description: "Detected field delimiter"},
			"hasHeader":   {Type: "boolean", Description: "Whether the first row looks like a header"},
			"columnTypes": {
				Type:        "array",
				Description: "Per-column value kind: numeric, text, mixed or empty",
				Items:       &jsonschema.Schema{Type: "string"},
			},
			"sampleRows": {
				Type:        "array",
				Description: "Leading data rows for preview",
				Items: &jsonschema.Schema{
					Type:  "array",
					Items: &jsonschema.Schema{Type: "string"},
				},
			},
			"ragged": {Type: "boolean", Description: "Whether rows disagree on column count"},
		},
	}
}

func imageMetricsSchema() *jsonschema.Schema {
	return &jsonschema.Schema{
		Type:        "object",
		Description: "Metrics over an image container",
		Required:    []string{"width", "height", "valid"},
		Properties: map[string]*jsonschema.Schema{
			"width":     {Type: "integer", Description: "Pixel width, 0 when invalid"},
			"height":    {Type: "integer", Description: "Pixel height, 0 when invalid"},
			"colorMode": {Type: "string", Description: "Pixel model, for example rgba or gray"},
			"format":    {Type: "string", Description: "Container format: png, jpeg or gif"},
			"valid":     {Type: "boolean", Description: "Whether the full image decoded successfully"},
		},
	}
}

func pdfMetricsSchema() *jsonschema.Schema {
	return &jsonschema.Schema{
		Type:        "object",
		Description: "Metrics over a PDF document",
		Required:    []string{"pageCount", "valid"},
		Properties: map[string]*jsonschema.Schema{
			"pageCount":   {Type: "integer", Description: "Page count, 0 when invalid"},
			"valid":       {Type: "boolean", Description: "Whether the document opened successfully"},
			"text":        {Type: "object", Description: "Text metrics over extracted page text, see the text variant; absent when no text was extracted"},
			"textPreview": {Type: "string", Description: "Bounded excerpt of the extracted text"},
		},
	}
}

func otherMetricsSchema() *jsonschema.Schema {
	return &jsonschema.Schema{
		Type:        "object",
		Description: "Metrics over uncategorized content",
		Required:    []string{"printableRatio"},
		Properties: map[string]*jsonschema.Schema{
			"printableRatio": {Type: "number", Description: "Share of sampled bytes that are printable, in [0, 1]"},
			"signature":      {Type: "string", Description: "64-bit content signature, hex"},
		},
	}
}

func summarySchema() *jsonschema.Schema {
	return &jsonschema.Schema{
		Type:        "object",
		Description: "Whole-run summary written as summary.json",
		Required:    []string{"runId", "schemaVersion", "startedAt", "durationSeconds", "workers", "scanned", "analyzed", "errored", "skipped", "categories", "reports"},
		Properties: map[string]*jsonschema.Schema{
			"runId":           {Type: "string", Description: "Unique identifier of this run"},
			"schemaVersion":   {Type: "string", Description: "Report layout version"},
			"startedAt":       {Type: "string", Description: "Run start time, RFC 3339 UTC"},
			"durationSeconds": {Type: "number", Description: "Wall-clock run duration"},
			"workers":         {Type: "integer", Description: "Worker goroutines used"},
			"scanned":         {Type: "integer", Description: "Files accepted by the scanner"},
			"analyzed":        {Type: "integer", Description: "Files that produced a clean report"},
			"errored":         {Type: "integer", Description: "Files whose report carries an error"},
			"skipped":         {Type: "integer", Description: "Files excluded before analysis"},
			"categories": {
				Type:        "object",
				Description: "Report count per category, one of " + categoryList(),
			},
			"reports": {
				Type:        "array",
				Description: "Per-file index in output order",
				Items: &jsonschema.Schema{
					Type:     "object",
					Required: []string{"input", "output", "category"},
					Properties: map[string]*jsonschema.Schema{
						"input":      {Type: "string", Description: "Input file path"},
						"output":     {Type: "string", Description: "Report file name within the output directory"},
						"category":   {Type: "string", Description: "Detected category"},
						"errorStage": {Type: "string", Description: "Failed stage when the report carries an error"},
					},
				},
			},
		},
	}
}
