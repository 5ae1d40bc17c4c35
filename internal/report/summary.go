package report

import (
	"time"

	"github.com/finspect/finspect/internal/types"
)

// ReportEntry is one line of the run summary's per-file index.
type ReportEntry struct {
	Input      string `json:"input"`
	Output     string `json:"output"`
	Category   string `json:"category"`
	ErrorStage string `json:"errorStage,omitempty"`
}

// RunSummary aggregates a whole batch run. It is written as summary.json
// next to the per-file reports.
type RunSummary struct {
	RunID           string         `json:"runId"`
	SchemaVersion   string         `json:"schemaVersion"`
	StartedAt       time.Time      `json:"startedAt"`
	DurationSeconds float64        `json:"durationSeconds"`
	Workers         int            `json:"workers"`
	Scanned         int            `json:"scanned"`
	Analyzed        int            `json:"analyzed"`
	Errored         int            `json:"errored"`
	Skipped         int            `json:"skipped"`
	Categories      map[string]int `json:"categories"`
	Reports         []ReportEntry  `json:"reports"`
}

// NewRunSummary returns a summary with counters zeroed and the category
// histogram pre-keyed so every category appears in the output, including
// zero-count ones.
func NewRunSummary(runID string, workers int, startedAt time.Time) *RunSummary {
	s := &RunSummary{
		RunID:         runID,
		SchemaVersion: SchemaVersion,
		StartedAt:     startedAt.UTC(),
		Workers:       workers,
		Categories:    make(map[string]int),
		Reports:       []ReportEntry{},
	}
	for _, c := range types.Categories() {
		s.Categories[c.String()] = 0
	}
	return s
}

// Add records one finished report in the summary counters and index.
func (s *RunSummary) Add(entry ReportEntry) {
	s.Reports = append(s.Reports, entry)
	s.Scanned++
	if entry.ErrorStage != "" {
		s.Errored++
	} else {
		s.Analyzed++
	}
	if entry.Category != "" {
		s.Categories[entry.Category]++
	}
}

// Finish stamps the run duration.
func (s *RunSummary) Finish(elapsed time.Duration) {
	s.DurationSeconds = elapsed.Seconds()
}
