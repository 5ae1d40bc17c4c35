// Package batch drives whole-directory analysis runs: discovery, the
// worker pool, report persistence, and watch mode.
package batch

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/finspect/finspect/internal/classify"
	"github.com/finspect/finspect/internal/config"
	"github.com/finspect/finspect/internal/debug"
	"github.com/finspect/finspect/internal/types"
	"github.com/finspect/finspect/pkg/pathutil"
)

// Task is one file the batch will analyze. The report filename is assigned
// during the walk so output naming never depends on worker completion order.
type Task struct {
	Path       string // absolute input path
	Rel        string // slash-relative path under the input dir
	OutputName string // report filename inside the output dir
}

// ScanStats counts what the walk saw besides the returned tasks.
type ScanStats struct {
	Skipped int // filtered by excludes, includes, or the hidden-file policy
}

// Scanner discovers analyzable files under the configured input directory.
type Scanner struct {
	cfg    *config.Config
	outDir string
}

func NewScanner(cfg *config.Config) *Scanner {
	outDir := cfg.Output.Dir
	if abs, err := filepath.Abs(outDir); err == nil {
		outDir = abs
	}
	return &Scanner{cfg: cfg, outDir: filepath.Clean(outDir)}
}

// Scan walks the input directory in lexical order and returns the task
// list. Unreadable entries are skipped; only a dead root or cancellation
// fails the scan.
func (s *Scanner) Scan(ctx context.Context) ([]Task, ScanStats, error) {
	root := s.cfg.Input.Dir
	namer := NewNamer()
	visited := make(map[string]bool)

	var tasks []Task
	var stats ScanStats

	err := filepath.Walk(root, func(path string, info os.FileInfo, walkErr error) error {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		if walkErr != nil {
			if path == root {
				return walkErr
			}
			debug.LogScan("skipping %s: %v\n", path, walkErr)
			return nil
		}

		if info.IsDir() {
			// Resolve the real path to break symlink cycles.
			realPath, err := filepath.EvalSymlinks(path)
			if err != nil {
				debug.LogScan("skipping unresolvable dir %s: %v\n", path, err)
				return nil
			}
			if visited[realPath] {
				debug.LogScan("cycle detected at %s -> %s\n", path, realPath)
				return filepath.SkipDir
			}
			visited[realPath] = true
		}

		if path == root {
			return nil
		}

		rel := pathutil.ToSlashRelative(path, root)

		if info.IsDir() {
			if s.skipDir(path, rel, info.Name()) {
				return filepath.SkipDir
			}
			return nil
		}

		if !s.eligible(rel, info.Name()) {
			stats.Skipped++
			return nil
		}
		if !s.analyzable(path, info) {
			stats.Skipped++
			return nil
		}

		tasks = append(tasks, Task{
			Path:       path,
			Rel:        rel,
			OutputName: namer.Assign(rel),
		})
		return nil
	})
	if err != nil {
		return nil, ScanStats{}, err
	}

	debug.LogScan("found %d files (%d skipped) under %s\n", len(tasks), stats.Skipped, root)
	return tasks, stats, nil
}

// skipDir prunes whole subtrees: the output directory when nested inside
// the input root, hidden directories, and excluded directories.
func (s *Scanner) skipDir(path, rel, name string) bool {
	if filepath.Clean(path) == s.outDir {
		return true
	}
	if !s.cfg.Input.IncludeHidden && strings.HasPrefix(name, ".") {
		return true
	}
	return matchAny(s.cfg.Exclude, rel) || matchAny(s.cfg.Exclude, rel+"/")
}

// eligible applies the pattern and hidden-file policy to a file path.
func (s *Scanner) eligible(rel, name string) bool {
	if !s.cfg.Input.IncludeHidden && strings.HasPrefix(name, ".") {
		return false
	}
	if matchAny(s.cfg.Exclude, rel) {
		return false
	}
	if len(s.cfg.Include) == 0 {
		return true
	}
	return matchAny(s.cfg.Include, rel)
}

// analyzable reports whether the entry is a regular file, following
// symlinks only when configured to.
func (s *Scanner) analyzable(path string, info os.FileInfo) bool {
	if info.Mode().IsRegular() {
		return true
	}
	if info.Mode()&os.ModeSymlink == 0 {
		return false
	}
	if !s.cfg.Input.FollowSymlinks {
		return false
	}
	target, err := os.Stat(path)
	return err == nil && target.Mode().IsRegular()
}

// Peek classifies a file from its sample alone, without hashing or
// analysis. The list command uses it to preview a batch.
func (s *Scanner) Peek(path string) classify.Result {
	f, err := os.Open(path)
	if err != nil {
		return classify.Result{Category: types.CategoryOther}
	}
	defer f.Close()

	buf := make([]byte, s.cfg.Input.SampleSize)
	n, err := io.ReadFull(f, buf)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return classify.Result{Category: types.CategoryOther}
	}

	full := true
	if fi, err := f.Stat(); err == nil {
		full = fi.Size() <= int64(n)
	}
	return classify.Detect(path, buf[:n], full)
}

// matchAny reports whether rel matches any of the glob patterns. Bad
// patterns are skipped rather than failing the walk.
func matchAny(patterns []string, rel string) bool {
	for _, pattern := range patterns {
		if ok, err := doublestar.Match(pattern, rel); err == nil && ok {
			return true
		}
	}
	return false
}
