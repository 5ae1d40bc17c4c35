package batch

import (
	"context"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/finspect/finspect/internal/config"
	"github.com/finspect/finspect/internal/debug"
	"github.com/finspect/finspect/pkg/pathutil"
)

// Watcher keeps reports current as the input tree changes: one initial
// full batch, then fsnotify events debounced into small re-analysis runs.
type Watcher struct {
	cfg      *config.Config
	runner   *Runner
	scanner  *Scanner
	fsw      *fsnotify.Watcher
	debounce time.Duration

	mu      sync.Mutex
	ctx     context.Context
	pending map[string]struct{}
	timer   *time.Timer
	table   map[string]string // input path -> report filename
	names   *Namer

	wg sync.WaitGroup
}

func NewWatcher(cfg *config.Config, runner *Runner) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	return &Watcher{
		cfg:      cfg,
		runner:   runner,
		scanner:  NewScanner(cfg),
		fsw:      fsw,
		debounce: time.Duration(cfg.Performance.WatchDebounceMs) * time.Millisecond,
		pending:  make(map[string]struct{}),
		table:    make(map[string]string),
		names:    NewNamer(),
	}, nil
}

// Watch runs the initial batch, then processes filesystem events until ctx
// ends. Report names assigned by the initial batch stay stable across
// re-analysis.
func (w *Watcher) Watch(ctx context.Context) error {
	summary, err := w.runner.Run(ctx)
	if err != nil {
		w.fsw.Close()
		return err
	}

	w.mu.Lock()
	w.ctx = ctx
	for _, entry := range summary.Reports {
		w.table[entry.Input] = entry.Output
		w.names.Reserve(entry.Output)
	}
	w.mu.Unlock()

	if err := w.addWatches(w.cfg.Input.Dir); err != nil {
		w.fsw.Close()
		return err
	}

	log.Printf("Watching %s (%d files analyzed, %d errored); Ctrl-C stops",
		w.cfg.Input.Dir, summary.Analyzed, summary.Errored)

	w.wg.Add(1)
	go w.processEvents(ctx)

	<-ctx.Done()
	w.fsw.Close()
	w.wg.Wait()
	w.stopTimer()
	return nil
}

// addWatches registers every directory in the tree, with the same cycle
// guard and pruning rules the scanner uses.
func (w *Watcher) addWatches(root string) error {
	visited := make(map[string]bool)

	return filepath.Walk(root, func(path string, info os.FileInfo, walkErr error) error {
		if walkErr != nil {
			if path == root {
				return walkErr
			}
			return nil
		}
		if !info.IsDir() {
			return nil
		}

		realPath, err := filepath.EvalSymlinks(path)
		if err != nil {
			return nil
		}
		if visited[realPath] {
			return filepath.SkipDir
		}
		visited[realPath] = true

		if path != root {
			rel := pathutil.ToSlashRelative(path, root)
			if w.scanner.skipDir(path, rel, info.Name()) {
				return filepath.SkipDir
			}
		}

		if err := w.fsw.Add(path); err != nil {
			log.Printf("Warning: cannot watch %s: %v", path, err)
		}
		return nil
	})
}

func (w *Watcher) processEvents(ctx context.Context) {
	defer w.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			w.handleEvent(event)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			log.Printf("Watch error: %v", err)
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	path := filepath.Clean(event.Name)
	debug.LogWatch("event %v %s\n", event.Op, path)

	if event.Op&(fsnotify.Remove|fsnotify.Rename) != 0 {
		w.mu.Lock()
		name, known := w.table[path]
		w.mu.Unlock()
		if known {
			log.Printf("Removed: %s (report %s left in place)", path, name)
		}
		return
	}

	info, err := os.Stat(path)
	if err != nil {
		return
	}

	if info.IsDir() {
		// New directories join the watch set so files inside get events.
		if event.Op&fsnotify.Create != 0 && !w.prunedDir(path, info.Name()) {
			if err := w.fsw.Add(path); err != nil {
				log.Printf("Warning: cannot watch new directory %s: %v", path, err)
			}
		}
		return
	}

	if event.Op&(fsnotify.Create|fsnotify.Write) == 0 {
		return
	}
	if !w.eligible(path, info) {
		return
	}
	w.enqueue(path)
}

func (w *Watcher) prunedDir(path, name string) bool {
	rel := pathutil.ToSlashRelative(path, w.cfg.Input.Dir)
	return w.scanner.skipDir(path, rel, name)
}

// eligible mirrors the scanner's file policy for a single event path,
// including the hidden check on every path segment.
func (w *Watcher) eligible(path string, info os.FileInfo) bool {
	// ToSlashRelative leaves paths outside the input tree absolute.
	rel := pathutil.ToSlashRelative(path, w.cfg.Input.Dir)
	if filepath.IsAbs(rel) {
		return false
	}

	if !w.cfg.Input.IncludeHidden {
		for _, segment := range strings.Split(rel, "/") {
			if strings.HasPrefix(segment, ".") {
				return false
			}
		}
	}

	if !w.scanner.eligible(rel, info.Name()) {
		return false
	}
	return w.scanner.analyzable(path, info)
}

// enqueue records a changed path and arms the debounce timer. Editors fire
// bursts of events per save; only the quiet period after the burst runs.
func (w *Watcher) enqueue(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.pending[path] = struct{}{}
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, w.flush)
}

// flush re-analyzes every pending path. Paths run in sorted order so
// repeated bursts produce identical logs and writes.
func (w *Watcher) flush() {
	w.mu.Lock()
	ctx := w.ctx
	if ctx == nil || ctx.Err() != nil {
		w.mu.Unlock()
		return
	}

	paths := make([]string, 0, len(w.pending))
	for p := range w.pending {
		paths = append(paths, p)
	}
	w.pending = make(map[string]struct{})
	sort.Strings(paths)

	tasks := make([]Task, 0, len(paths))
	for _, p := range paths {
		name, ok := w.table[p]
		if !ok {
			rel := pathutil.ToSlashRelative(p, w.cfg.Input.Dir)
			name = w.names.Assign(rel)
			w.table[p] = name
		}
		tasks = append(tasks, Task{Path: p, OutputName: name})
	}
	w.mu.Unlock()

	if len(tasks) == 0 {
		return
	}
	log.Printf("Re-analyzing %d changed file(s)", len(tasks))
	w.runner.RunPaths(ctx, tasks)
}

func (w *Watcher) stopTimer() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timer != nil {
		w.timer.Stop()
	}
}
