package batch

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finspect/finspect/internal/report"
	"github.com/finspect/finspect/internal/types"
)

func sampleReport() *report.Report {
	return &report.Report{
		File: report.FileRecord{
			Path:        "/in/a.txt",
			SizeBytes:   5,
			ContentHash: strings.Repeat("ab", 32),
		},
		Category: types.CategoryText,
		Analysis: &report.TextMetrics{CharCount: 5, TopWords: []report.WordCount{}},
	}
}

func TestWriterPrettyOutput(t *testing.T) {
	dir := t.TempDir()
	w := NewWriter(dir, true)
	require.NoError(t, w.EnsureDir())
	require.NoError(t, w.Write(sampleReport(), "a.json"))

	data, err := os.ReadFile(filepath.Join(dir, "a.json"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "{\n  \""))
}

func TestWriterCompactOutput(t *testing.T) {
	dir := t.TempDir()
	w := NewWriter(dir, false)
	require.NoError(t, w.EnsureDir())
	require.NoError(t, w.Write(sampleReport(), "a.json"))

	data, err := os.ReadFile(filepath.Join(dir, "a.json"))
	require.NoError(t, err)
	assert.NotContains(t, string(data), "\n  ")
}

func TestWriterEnsureDirCreatesNested(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "deep", "reports")
	w := NewWriter(dir, true)
	require.NoError(t, w.EnsureDir())

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestWriterEnsureDirFailsOnFile(t *testing.T) {
	dir := t.TempDir()
	blocker := mustWrite(t, dir, "blocker", []byte("x"))

	w := NewWriter(filepath.Join(blocker, "reports"), true)
	assert.Error(t, w.EnsureDir())
}

func TestWriterSummary(t *testing.T) {
	dir := t.TempDir()
	w := NewWriter(dir, true)
	require.NoError(t, w.EnsureDir())

	s := report.NewRunSummary("run-1", 2, time.Now())
	s.Add(report.ReportEntry{Input: "/in/a.txt", Output: "a.json", Category: "text"})
	require.NoError(t, w.WriteSummary(s))

	data, err := os.ReadFile(filepath.Join(dir, "summary.json"))
	require.NoError(t, err)
	assert.Contains(t, string(data), `"runId": "run-1"`)
	assert.Contains(t, string(data), `"scanned": 1`)
}