package batch

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/finspect/finspect/internal/config"
	"github.com/finspect/finspect/internal/debug"
	"github.com/finspect/finspect/internal/engine"
	finerrors "github.com/finspect/finspect/internal/errors"
	"github.com/finspect/finspect/internal/report"
)

const progressInterval = 2 * time.Second

// Runner drives a full batch: scan, analyze in parallel, persist reports,
// then the summary.
type Runner struct {
	cfg         *config.Config
	eng         *engine.Engine
	writer      *Writer
	prog        *Progress
	progressOut io.Writer // non-nil enables periodic progress lines
}

func NewRunner(cfg *config.Config) *Runner {
	return &Runner{
		cfg:    cfg,
		eng:    engine.New(cfg),
		writer: NewWriter(cfg.Output.Dir, cfg.Output.Pretty),
		prog:   &Progress{},
	}
}

// EnableProgress turns on periodic progress lines, normally to stderr.
func (r *Runner) EnableProgress(w io.Writer) {
	r.progressOut = w
}

type result struct {
	idx int
	rep *report.Report
}

// Run executes one batch. Per-file failures land in their reports and the
// summary; Run itself fails only on setup problems or cancellation. The
// summary is returned even when err is non-nil, carrying whatever finished.
func (r *Runner) Run(ctx context.Context) (*report.RunSummary, error) {
	started := time.Now()

	if err := r.writer.EnsureDir(); err != nil {
		return nil, err
	}

	tasks, stats, err := NewScanner(r.cfg).Scan(ctx)
	if err != nil {
		return nil, err
	}

	workers := r.cfg.Performance.Workers
	if workers < 1 {
		workers = 1
	}

	summary := report.NewRunSummary(uuid.NewString(), workers, started)
	summary.Skipped = stats.Skipped

	r.prog.SetTotal(len(tasks))
	debug.LogBatch("run %s: %d tasks, %d skipped, %d workers\n",
		summary.RunID, len(tasks), stats.Skipped, workers)

	stopReporter := r.startReporter()
	defer stopReporter()

	entries := make([]report.ReportEntry, len(tasks))

	taskChan := make(chan int, workers*2)
	resultChan := make(chan result, workers*2)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		defer close(taskChan)
		for i := range tasks {
			select {
			case taskChan <- i:
			case <-gctx.Done():
				return gctx.Err()
			}
		}
		return nil
	})

	var workerWG sync.WaitGroup
	workerWG.Add(workers)
	for i := 0; i < workers; i++ {
		g.Go(func() error {
			defer workerWG.Done()
			for idx := range taskChan {
				rep := r.eng.Analyze(gctx, tasks[idx].Path)
				r.prog.Record(rep.Error != nil)
				select {
				case resultChan <- result{idx: idx, rep: rep}:
				case <-gctx.Done():
					return gctx.Err()
				}
			}
			return nil
		})
	}
	go func() {
		workerWG.Wait()
		close(resultChan)
	}()

	g.Go(func() error {
		for res := range resultChan {
			task := tasks[res.idx]
			entry := report.ReportEntry{
				Input:    task.Path,
				Output:   task.OutputName,
				Category: res.rep.Category.String(),
			}
			if res.rep.Error != nil {
				entry.ErrorStage = res.rep.Error.Stage
			}
			if err := r.writer.Write(res.rep, task.OutputName); err != nil {
				debug.LogBatch("write failed for %s: %v\n", task.OutputName, err)
				if entry.ErrorStage == "" {
					entry.ErrorStage = finerrors.StageWrite
				}
			}
			entries[res.idx] = entry
		}
		return nil
	})

	runErr := g.Wait()

	// Summary entries follow scan order regardless of completion order.
	for _, entry := range entries {
		if entry.Output == "" {
			continue // canceled before this task finished
		}
		summary.Add(entry)
	}
	summary.Finish(time.Since(started))

	if r.cfg.Output.Summary {
		if err := r.writer.WriteSummary(summary); err != nil {
			debug.LogBatch("summary write failed: %v\n", err)
			if runErr == nil {
				runErr = err
			}
		}
	}

	debug.LogBatch("run %s finished: %d analyzed, %d errored in %.2fs\n",
		summary.RunID, summary.Analyzed, summary.Errored, summary.DurationSeconds)
	return summary, runErr
}

// RunPaths re-analyzes an explicit set of files, reusing their assigned
// report names. Watch mode uses it for debounced change batches, which
// are small enough to run sequentially.
func (r *Runner) RunPaths(ctx context.Context, tasks []Task) {
	for _, task := range tasks {
		if ctx.Err() != nil {
			return
		}
		rep := r.eng.Analyze(ctx, task.Path)
		if err := r.writer.Write(rep, task.OutputName); err != nil {
			debug.LogWatch("write failed for %s: %v\n", task.OutputName, err)
		}
	}
}

func (r *Runner) startReporter() func() {
	if r.progressOut == nil {
		return func() {}
	}

	ctx, cancel := context.WithCancel(context.Background())
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		r.prog.Report(ctx, r.progressOut, progressInterval)
	}()
	return func() {
		cancel()
		wg.Wait()
	}
}
