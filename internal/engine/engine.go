// Package engine runs the per-file analysis pipeline: read, classify, hash,
// analyze, assemble. Analyze always returns a report; failures land in the
// report's error field and never propagate past this boundary.
package engine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/finspect/finspect/internal/analyze"
	"github.com/finspect/finspect/internal/classify"
	"github.com/finspect/finspect/internal/config"
	"github.com/finspect/finspect/internal/debug"
	finerrors "github.com/finspect/finspect/internal/errors"
	"github.com/finspect/finspect/internal/hashing"
	"github.com/finspect/finspect/internal/insight"
	"github.com/finspect/finspect/internal/report"
	"github.com/finspect/finspect/internal/types"
)

// Engine analyzes single files under one loaded configuration. All state
// is read-only after New, so one Engine serves every worker.
type Engine struct {
	cfg *config.Config
}

// New creates an engine for a validated configuration.
func New(cfg *config.Config) *Engine {
	return &Engine{cfg: cfg}
}

// Analyze runs the full pipeline for one file. The first failing stage
// wins the report's error slot; later stages still fill their fields where
// their input is available.
func (e *Engine) Analyze(ctx context.Context, path string) (rep *report.Report) {
	stage := finerrors.StageRead
	rep = &report.Report{Category: types.CategoryOther}

	defer func() {
		if r := recover(); r != nil {
			debug.LogAnalyze("panic for %s at %s: %v\n", path, stage, r)
			e.fold(rep, finerrors.NewInternalError(stage, path, r))
		}
	}()

	budget := time.Duration(e.cfg.Performance.FileTimeoutSec) * time.Second
	if budget > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, budget)
		defer cancel()
	}

	rec, err := hashing.Stat(path)
	rep.File = rec
	if err != nil {
		e.fold(rep, err)
		return rep
	}
	if err := interrupted(ctx, stage, path, budget); err != nil {
		e.fold(rep, err)
		return rep
	}

	if rec.SizeBytes > e.cfg.Input.MaxFileSize {
		e.analyzeOversized(ctx, rep, path, budget)
		return rep
	}

	content, readErr := os.ReadFile(path)
	if readErr != nil {
		e.fold(rep, finerrors.NewReadError(path, readErr))
		return rep
	}

	sample := content
	sampleIsFull := true
	if len(content) > e.cfg.Input.SampleSize {
		sample = content[:e.cfg.Input.SampleSize]
		sampleIsFull = false
	}

	stage = finerrors.StageClassify
	res := classify.Detect(path, sample, sampleIsFull)
	rep.Category = res.Category
	debug.LogAnalyze("%s -> %s (%s)\n", path, res.Category, res.MIME)
	if err := interrupted(ctx, stage, path, budget); err != nil {
		e.fold(rep, err)
		return rep
	}

	stage = finerrors.StageHash
	digest := hashing.HashBytes(content)
	rep.File.ContentHash = digest.SHA256
	if err := interrupted(ctx, stage, path, budget); err != nil {
		e.fold(rep, err)
		return rep
	}

	stage = analysisStage(res.Category)
	e.runAnalyzer(rep, path, content, sample, digest, res.Category)
	return rep
}

// runAnalyzer dispatches to the category's analyzer and assembles the
// metrics variant into the report.
func (e *Engine) runAnalyzer(rep *report.Report, path string, content, sample []byte, digest hashing.Digest, category types.Category) {
	opts := insight.Options{
		TopWords:      e.cfg.Analysis.TopWords,
		MinStemLength: e.cfg.Analysis.MinStemLength,
	}

	// An empty file has nothing to parse: zero-value metrics, no error.
	if len(content) == 0 {
		switch category {
		case types.CategoryJSON:
			rep.Analysis = &report.JSONMetrics{}
			return
		case types.CategoryImage:
			rep.Analysis = &report.ImageMetrics{}
			return
		case types.CategoryPDF:
			rep.Analysis = &report.PDFMetrics{}
			return
		}
		// text, csv and other accept empty content below
	}

	switch category {
	case types.CategoryText:
		m, err := analyze.Text(path, content, opts)
		if err != nil {
			// not decodable text after all; the sample was misleading
			rep.Category = types.CategoryOther
			rep.Analysis = analyze.Other(sample, digest.Signature)
			e.fold(rep, err)
			return
		}
		rep.Analysis = m
	case types.CategoryJSON:
		m, err := analyze.JSON(path, content)
		rep.Analysis = m
		e.fold(rep, err)
	case types.CategoryCSV:
		m, err := analyze.CSV(path, content, false, e.cfg.Analysis.CSVSampleRows)
		rep.Analysis = m
		e.fold(rep, err)
	case types.CategoryImage:
		m, err := analyze.Image(path, content)
		rep.Analysis = m
		e.fold(rep, err)
	case types.CategoryPDF:
		m, err := analyze.PDF(path, content, e.cfg.Analysis.PreviewBytes, opts)
		rep.Analysis = m
		e.fold(rep, err)
	default:
		rep.Analysis = analyze.Other(sample, digest.Signature)
	}
}

// analyzeOversized handles files past the in-memory cap: classify from a
// bounded sample, hash with a streaming read, record a read error in place
// of analysis.
func (e *Engine) analyzeOversized(ctx context.Context, rep *report.Report, path string, budget time.Duration) {
	sample, err := readSample(path, e.cfg.Input.SampleSize)
	if err != nil {
		e.fold(rep, finerrors.NewReadError(path, err))
		return
	}
	rep.Category = classify.Detect(path, sample, false).Category

	if err := interrupted(ctx, finerrors.StageRead, path, budget); err != nil {
		e.fold(rep, err)
		return
	}

	digest, hashErr := hashing.HashFile(path)
	if hashErr != nil {
		debug.LogAnalyze("streaming hash failed for %s: %v\n", path, hashErr)
	} else {
		rep.File.ContentHash = digest.SHA256
	}

	e.fold(rep, finerrors.NewReadError(path,
		fmt.Errorf("file size %d exceeds %d byte analysis cap", rep.File.SizeBytes, e.cfg.Input.MaxFileSize)))
}

// fold records the first error into the report. Later errors are dropped;
// the earliest failing stage owns the error slot.
func (e *Engine) fold(rep *report.Report, err error) {
	if err == nil || rep.Error != nil {
		return
	}
	rep.Error = toStageError(err)
}

func toStageError(err error) *report.StageError {
	var ae *finerrors.AnalysisError
	if errors.As(err, &ae) {
		return &report.StageError{Stage: ae.Stage, Message: ae.Message()}
	}
	return &report.StageError{Stage: "internal", Message: err.Error()}
}

// interrupted translates context state into a stage error: deadline hits
// report the per-file budget, cancellation reports shutdown.
func interrupted(ctx context.Context, stage, path string, budget time.Duration) error {
	if ctx.Err() == nil {
		return nil
	}
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return finerrors.NewTimeoutError(stage, path, budget)
	}
	return finerrors.NewCanceledError(stage, path)
}

func analysisStage(c types.Category) string {
	switch c {
	case types.CategoryText:
		return finerrors.StageText
	case types.CategoryJSON:
		return finerrors.StageJSON
	case types.CategoryCSV:
		return finerrors.StageCSV
	case types.CategoryImage:
		return finerrors.StageImage
	case types.CategoryPDF:
		return finerrors.StagePDF
	}
	return finerrors.StageClassify
}

func readSample(path string, size int) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	buf := make([]byte, size)
	n, err := io.ReadFull(f, buf)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return nil, err
	}
	return buf[:n], nil
}
