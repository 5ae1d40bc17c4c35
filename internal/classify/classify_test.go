package classify

import (
	"bytes"
	"testing"

	"github.com/finspect/finspect/internal/types"
)

var pngHeader = []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}

func TestDetect(t *testing.T) {
	tests := []struct {
		name       string
		path       string
		sample     []byte
		sampleFull bool
		want       types.Category
	}{
		{
			name:       "PNG magic wins over json extension",
			path:       "/data/in/renamed.json",
			sample:     append(append([]byte{}, pngHeader...), 0x00, 0x00, 0x00, 0x0D),
			sampleFull: true,
			want:       types.CategoryImage,
		},
		{
			name:       "JPEG magic",
			path:       "/data/in/photo.bin",
			sample:     []byte{0xFF, 0xD8, 0xFF, 0xE0, 0x00, 0x10, 0x4A, 0x46, 0x49, 0x46},
			sampleFull: false,
			want:       types.CategoryImage,
		},
		{
			name:       "GIF magic",
			path:       "/data/in/anim",
			sample:     []byte("GIF89a\x01\x00\x01\x00"),
			sampleFull: true,
			want:       types.CategoryImage,
		},
		{
			name:       "PDF magic",
			path:       "/data/in/report.dat",
			sample:     []byte("%PDF-1.7\n%\xe2\xe3\xcf\xd3\n"),
			sampleFull: false,
			want:       types.CategoryPDF,
		},
		{
			name:       "SVG is XML text, not image",
			path:       "/data/in/logo.svg",
			sample:     []byte("<?xml version=\"1.0\"?>\n<svg xmlns=\"http://www.w3.org/2000/svg\"></svg>\n"),
			sampleFull: true,
			want:       types.CategoryText,
		},
		{
			name:       "complete JSON object without json extension",
			path:       "/data/in/payload.txt",
			sample:     []byte("{\"id\": 7, \"tags\": [\"a\", \"b\"]}"),
			sampleFull: true,
			want:       types.CategoryJSON,
		},
		{
			name:       "truncated JSON with agreeing extension",
			path:       "/data/in/big.json",
			sample:     []byte("{\"records\": [{\"id\": 1}, {\"id\": 2},"),
			sampleFull: false,
			want:       types.CategoryJSON,
		},
		{
			name:       "truncated JSON-looking content without extension stays text",
			path:       "/data/in/big.txt",
			sample:     []byte("{\"records\": [{\"id\": 1}, {\"id\": 2},"),
			sampleFull: false,
			want:       types.CategoryText,
		},
		{
			name:       "malformed JSON keeps json category by extension",
			path:       "/data/in/broken.json",
			sample:     []byte("{\"id\": 7,,}"),
			sampleFull: true,
			want:       types.CategoryJSON,
		},
		{
			name:       "csv extension",
			path:       "/data/in/orders.csv",
			sample:     []byte("id,amount\n1,10\n"),
			sampleFull: true,
			want:       types.CategoryCSV,
		},
		{
			name:       "tsv extension",
			path:       "/data/in/orders.tsv",
			sample:     []byte("id\tamount\n1\t10\n"),
			sampleFull: true,
			want:       types.CategoryCSV,
		},
		{
			name:       "consistent delimited content with unknown extension",
			path:       "/data/in/export.dat",
			sample:     []byte("id;amount;region\n1;10;eu\n2;14;us\n"),
			sampleFull: true,
			want:       types.CategoryCSV,
		},
		{
			name:       "delimited-looking markdown stays text",
			path:       "/data/in/notes.md",
			sample:     []byte("a|b\nc|d\ne|f\n"),
			sampleFull: true,
			want:       types.CategoryText,
		},
		{
			name:       "plain prose",
			path:       "/data/in/readme",
			sample:     []byte("The quick brown fox jumps over the lazy dog.\nTwice.\n"),
			sampleFull: true,
			want:       types.CategoryText,
		},
		{
			name:       "UTF-16LE BOM is text despite NUL bytes",
			path:       "/data/in/notes-utf16",
			sample:     []byte{0xFF, 0xFE, 'h', 0x00, 'i', 0x00, '\n', 0x00},
			sampleFull: true,
			want:       types.CategoryText,
		},
		{
			name:       "NUL-heavy content without extension",
			path:       "/data/in/blob",
			sample:     bytes.Repeat([]byte{0x00, 'x'}, 64),
			sampleFull: true,
			want:       types.CategoryOther,
		},
		{
			name:       "binary content falls back to image extension",
			path:       "/data/in/busted.png",
			sample:     bytes.Repeat([]byte{0x00, 0x01, 0x02}, 40),
			sampleFull: true,
			want:       types.CategoryImage,
		},
		{
			name:       "empty file with text extension",
			path:       "/data/in/empty.txt",
			sample:     nil,
			sampleFull: true,
			want:       types.CategoryText,
		},
		{
			name:       "empty file with json extension",
			path:       "/data/in/empty.json",
			sample:     nil,
			sampleFull: true,
			want:       types.CategoryJSON,
		},
		{
			name:       "empty file without extension",
			path:       "/data/in/empty",
			sample:     nil,
			sampleFull: true,
			want:       types.CategoryOther,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Detect(tt.path, tt.sample, tt.sampleFull)
			if got.Category != tt.want {
				t.Errorf("Detect(%q) = %v (mime %q), want %v", tt.path, got.Category, got.MIME, tt.want)
			}
		})
	}
}

func TestDetectReportsMIME(t *testing.T) {
	got := Detect("/data/in/photo", append(append([]byte{}, pngHeader...), 0x00, 0x00, 0x00, 0x0D), false)
	if got.MIME != "image/png" {
		t.Errorf("MIME = %q, want image/png", got.MIME)
	}

	empty := Detect("/data/in/empty.txt", nil, true)
	if empty.MIME != "" {
		t.Errorf("MIME for empty file = %q, want empty", empty.MIME)
	}
}

func TestLooksBinary(t *testing.T) {
	tests := []struct {
		name    string
		content []byte
		binary  bool
	}{
		{
			name:    "plain text",
			content: []byte("The quick brown fox jumps over the lazy dog.\n"),
			binary:  false,
		},
		{
			name:    "UTF-8 text",
			content: []byte("Hello, 世界! Unicode works fine."),
			binary:  false,
		},
		{
			name:    "empty",
			content: []byte{},
			binary:  false,
		},
		{
			name: "null bytes",
			content: []byte{
				'h', 'e', 'l', 'l', 'o', 0x00, 0x00, 0x00, 0x00, 0x00,
				0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
			},
			binary: true,
		},
		{
			name:    "control characters",
			content: bytes.Repeat([]byte{0x01, 0x02, 'a'}, 30),
			binary:  true,
		},
		{
			name:    "text with occasional escape codes",
			content: []byte("line one\x1b[0m line two\nline three\n"),
			binary:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := LooksBinary(tt.content); got != tt.binary {
				t.Errorf("LooksBinary() = %v, want %v", got, tt.binary)
			}
		})
	}
}

func TestPrintableRatio(t *testing.T) {
	if got := PrintableRatio(nil); got != 0 {
		t.Errorf("PrintableRatio(nil) = %v, want 0", got)
	}
	if got := PrintableRatio([]byte("abcd")); got != 1.0 {
		t.Errorf("PrintableRatio(text) = %v, want 1.0", got)
	}
	half := PrintableRatio([]byte{'a', 0x00, 'b', 0x01})
	if half != 0.5 {
		t.Errorf("PrintableRatio(mixed) = %v, want 0.5", half)
	}
}
