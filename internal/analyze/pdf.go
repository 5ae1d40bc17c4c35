package analyze

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"

	finerrors "github.com/finspect/finspect/internal/errors"
	"github.com/finspect/finspect/internal/insight"
	"github.com/finspect/finspect/internal/report"
)

// PDF opens the document, counts pages and derives text metrics from the
// extracted plain text. The pdf library panics on some malformed inputs, so
// the whole analysis runs behind a recover that folds panics into parse
// errors.
func PDF(path string, content []byte, previewBytes int, opts insight.Options) (m *report.PDFMetrics, err error) {
	m = &report.PDFMetrics{}
	defer func() {
		if r := recover(); r != nil {
			m = &report.PDFMetrics{}
			err = finerrors.NewParseError(finerrors.StagePDF, path, fmt.Errorf("pdf reader panic: %v", r))
		}
	}()

	rd, openErr := pdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if openErr != nil {
		return m, finerrors.NewParseError(finerrors.StagePDF, path, openErr)
	}
	m.PageCount = rd.NumPage()
	m.Valid = true

	plain, extractErr := rd.GetPlainText()
	if extractErr != nil {
		m.Valid = false
		return m, finerrors.NewParseError(finerrors.StagePDF, path, extractErr)
	}

	var buf bytes.Buffer
	if _, copyErr := io.Copy(&buf, plain); copyErr != nil {
		m.Valid = false
		return m, finerrors.NewParseError(finerrors.StagePDF, path, copyErr)
	}

	text := buf.String()
	if strings.TrimSpace(text) != "" {
		m.Text = insight.Analyze(text, opts)
		m.TextPreview = preview(text, previewBytes)
	}
	return m, nil
}

// preview returns up to limit bytes of text, cut at a rune boundary, with
// runs of whitespace collapsed.
func preview(text string, limit int) string {
	collapsed := strings.Join(strings.Fields(text), " ")
	if limit <= 0 || len(collapsed) <= limit {
		return collapsed
	}
	cut := collapsed[:limit]
	for len(cut) > 0 {
		r, size := utf8.DecodeLastRuneInString(cut)
		if r != utf8.RuneError || size > 1 {
			break
		}
		cut = cut[:len(cut)-1]
	}
	return cut
}
