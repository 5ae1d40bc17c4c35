package batch

import (
	"encoding/json"
	"os"
	"path/filepath"

	finerrors "github.com/finspect/finspect/internal/errors"
	"github.com/finspect/finspect/internal/report"
)

// Writer persists reports and the run summary under one output directory.
type Writer struct {
	dir    string
	pretty bool
}

func NewWriter(dir string, pretty bool) *Writer {
	return &Writer{dir: dir, pretty: pretty}
}

// EnsureDir creates the output directory if missing and verifies it is
// writable before any worker starts.
func (w *Writer) EnsureDir() error {
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return finerrors.NewConfigError("output.dir", w.dir, err)
	}

	probe := filepath.Join(w.dir, ".finspect-probe")
	if err := os.WriteFile(probe, nil, 0o644); err != nil {
		return finerrors.NewConfigError("output.dir", w.dir, err)
	}
	os.Remove(probe)
	return nil
}

// Write persists one report under its assigned filename.
func (w *Writer) Write(rep *report.Report, name string) error {
	path := filepath.Join(w.dir, name)
	data, err := w.marshal(rep)
	if err != nil {
		return finerrors.NewWriteError(path, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return finerrors.NewWriteError(path, err)
	}
	return nil
}

// WriteSummary persists the run summary as summary.json.
func (w *Writer) WriteSummary(s *report.RunSummary) error {
	path := filepath.Join(w.dir, reservedSummaryName)
	data, err := w.marshal(s)
	if err != nil {
		return finerrors.NewWriteError(path, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return finerrors.NewWriteError(path, err)
	}
	return nil
}

func (w *Writer) marshal(v interface{}) ([]byte, error) {
	if w.pretty {
		return json.MarshalIndent(v, "", "  ")
	}
	return json.Marshal(v)
}
