package analyze

import (
	"bytes"
	"errors"
	"unicode/utf16"
	"unicode/utf8"

	"github.com/finspect/finspect/internal/classify"
	finerrors "github.com/finspect/finspect/internal/errors"
	"github.com/finspect/finspect/internal/insight"
	"github.com/finspect/finspect/internal/report"
)

var (
	utf8BOM    = []byte{0xEF, 0xBB, 0xBF}
	utf16LEBOM = []byte{0xFF, 0xFE}
	utf16BEBOM = []byte{0xFE, 0xFF}
)

// Text decodes content under a fixed encoding priority and computes text
// metrics over the result. A nil metrics value with an error means no rung
// of the ladder accepted the content; the caller degrades such files to the
// other category.
func Text(path string, content []byte, opts insight.Options) (*report.TextMetrics, error) {
	text, encoding, ok := decodeText(content)
	if !ok {
		return nil, finerrors.NewDecodeError(finerrors.StageText, path,
			errors.New("content does not decode under any supported encoding"))
	}

	m := insight.Analyze(text, opts)
	m.Encoding = encoding
	return m, nil
}

// decodeText tries UTF-8 (optional BOM), then BOM-marked UTF-16, then
// Latin-1. Latin-1 maps every byte, so it only applies to content that
// passes the binary heuristic; the classifier saw just a sample, and a file
// with a clean prefix can still turn out binary here.
func decodeText(content []byte) (text, encoding string, ok bool) {
	if bytes.HasPrefix(content, utf8BOM) {
		body := content[len(utf8BOM):]
		if utf8.Valid(body) {
			return string(body), "utf-8", true
		}
	}

	if bytes.HasPrefix(content, utf16LEBOM) && len(content)%2 == 0 {
		return decodeUTF16(content[2:], true), "utf-16le", true
	}
	if bytes.HasPrefix(content, utf16BEBOM) && len(content)%2 == 0 {
		return decodeUTF16(content[2:], false), "utf-16be", true
	}

	if utf8.Valid(content) {
		return string(content), "utf-8", true
	}

	if !classify.LooksBinary(content) {
		return decodeLatin1(content), "latin-1", true
	}
	return "", "", false
}

func decodeUTF16(b []byte, littleEndian bool) string {
	units := make([]uint16, 0, len(b)/2)
	for i := 0; i+1 < len(b); i += 2 {
		if littleEndian {
			units = append(units, uint16(b[i])|uint16(b[i+1])<<8)
		} else {
			units = append(units, uint16(b[i])<<8|uint16(b[i+1]))
		}
	}
	return string(utf16.Decode(units))
}

func decodeLatin1(b []byte) string {
	runes := make([]rune, len(b))
	for i, c := range b {
		runes[i] = rune(c)
	}
	return string(runes)
}
