package config

import (
	"os"
	"path/filepath"

	"github.com/finspect/finspect/internal/types"
)

// Config is the effective configuration for a finspect run. Values are
// resolved in order: built-in defaults, global ~/.finspect.kdl, project
// config file, CLI flag overrides.
type Config struct {
	Version     int
	Input       Input
	Output      Output
	Analysis    Analysis
	Performance Performance
	Include     []string
	Exclude     []string
}

type Input struct {
	Dir            string
	FollowSymlinks bool
	IncludeHidden  bool  // analyze dot-files when true
	MaxFileSize    int64 // in-memory read cap; larger files are hashed but not analyzed
	SampleSize     int   // classifier sample bytes
}

type Output struct {
	Dir     string
	Pretty  bool // indent report JSON
	Summary bool // write summary.json for the run
}

type Analysis struct {
	TopWords      int // word/count pairs per text report
	PreviewBytes  int // extracted-content preview cap
	CSVSampleRows int // records echoed into CSV reports
	MinStemLength int // minimum token length for sentiment stemming
}

type Performance struct {
	Workers         int // 0 = auto-detect (NumCPU-1, min 1)
	FileTimeoutSec  int // per-file wall-clock budget
	WatchDebounceMs int // debounce for watch-mode filesystem events
}

// Load loads configuration from an explicit file path, or discovers config
// in the current directory when path is empty.
func Load(path string) (*Config, error) {
	return LoadWithRoot(path, "")
}

// LoadWithRoot loads configuration. When path names an existing file it is
// loaded directly (format chosen by extension); otherwise config files are
// discovered in rootDir, layered over a global ~/.finspect.kdl base.
func LoadWithRoot(path string, rootDir string) (*Config, error) {
	searchDir := "."
	if rootDir != "" {
		searchDir = rootDir
	}

	// Explicit config file wins over discovery
	if path != "" {
		if _, err := os.Stat(path); err == nil {
			return loadFile(path)
		}
	}

	// Step 1: global base config from ~/.finspect.kdl (if exists)
	var baseConfig *Config
	homeDir, homeErr := os.UserHomeDir()
	if homeErr == nil {
		if globalCfg, err := LoadKDL(homeDir); err == nil && globalCfg != nil {
			baseConfig = globalCfg
		}
	}

	// Step 2: project config from the search directory (KDL preferred, TOML fallback)
	var projectConfig *Config
	if kdlCfg, err := LoadKDL(searchDir); err != nil {
		return nil, err
	} else if kdlCfg != nil {
		projectConfig = kdlCfg
	} else if tomlCfg, err := LoadTOML(searchDir); err != nil {
		return nil, err
	} else if tomlCfg != nil {
		projectConfig = tomlCfg
	}

	// Step 3: merge (project overrides base, base exclusions preserved)
	if baseConfig != nil && projectConfig != nil {
		return mergeConfigs(baseConfig, projectConfig), nil
	} else if projectConfig != nil {
		return projectConfig, nil
	} else if baseConfig != nil {
		// Use global config but anchor the run at the search directory. An
		// output dir the global file left at its default re-anchors as well,
		// so reports land next to the data rather than under the home dir.
		baseConfig.Input.Dir = resolveInputDir("", searchDir)
		if homeErr == nil && baseConfig.Output.Dir == filepath.Join(homeDir, "reports") {
			baseConfig.Output.Dir = filepath.Join(baseConfig.Input.Dir, "reports")
		}
		return baseConfig, nil
	}

	return defaultConfig(searchDir), nil
}

// loadFile loads a single config file chosen by its extension.
func loadFile(path string) (*Config, error) {
	switch filepath.Ext(path) {
	case ".toml":
		return LoadTOMLFile(path)
	default:
		return LoadKDLFile(path)
	}
}

// defaultConfig returns the built-in configuration with the input directory
// anchored at dir.
func defaultConfig(dir string) *Config {
	if dir == "" {
		dir = "."
	}
	if abs, err := filepath.Abs(dir); err == nil {
		dir = abs
	}

	return &Config{
		Version: 1,
		Input: Input{
			Dir:            dir,
			FollowSymlinks: false,
			IncludeHidden:  false,
			MaxFileSize:    types.DefaultMaxFileSize,
			SampleSize:     types.DefaultSampleSize,
		},
		Output: Output{
			Dir:     filepath.Join(dir, "reports"),
			Pretty:  true,
			Summary: true,
		},
		Analysis: Analysis{
			TopWords:      types.DefaultTopWords,
			PreviewBytes:  types.DefaultPreviewBytes,
			CSVSampleRows: types.DefaultCSVSampleRows,
			MinStemLength: 3,
		},
		Performance: Performance{
			Workers:         0, // 0 = auto-detect
			FileTimeoutSec:  types.DefaultFileTimeoutSec,
			WatchDebounceMs: types.DefaultWatchDebounceMs,
		},
		Include: []string{},
		Exclude: DefaultExclusions(),
	}
}

// DefaultExclusions lists the glob patterns skipped by default. Input
// directories are data drops, so the list stays short: source control
// metadata, editor droppings, OS noise.
func DefaultExclusions() []string {
	return []string{
		"**/.git/**",
		"**/node_modules/**",
		"**/__pycache__/**",
		"**/*.swp",
		"**/*.swo",
		"**/*~",
		"**/*.tmp",
		"**/*.part",
		"**/Thumbs.db",
		"**/desktop.ini",
		"**/.DS_Store",
	}
}

// resolveInputDir anchors a possibly-relative configured dir at base.
func resolveInputDir(dir, base string) string {
	if dir == "" {
		if abs, err := filepath.Abs(base); err == nil {
			return abs
		}
		return base
	}
	if filepath.IsAbs(dir) {
		return dir
	}
	return filepath.Clean(filepath.Join(base, dir))
}

// mergeConfigs merges a base config with a project config.
// Project config takes precedence, but base exclusions are preserved.
func mergeConfigs(base, project *Config) *Config {
	merged := *project

	if len(base.Exclude) > 0 {
		excludeMap := make(map[string]bool)
		for _, pattern := range base.Exclude {
			excludeMap[pattern] = true
		}
		for _, pattern := range project.Exclude {
			excludeMap[pattern] = true
		}

		merged.Exclude = make([]string, 0, len(excludeMap))
		for pattern := range excludeMap {
			merged.Exclude = append(merged.Exclude, pattern)
		}
	}

	// Inclusions: project overrides base completely if specified
	if len(project.Include) == 0 && len(base.Include) > 0 {
		merged.Include = base.Include
	}

	return &merged
}
