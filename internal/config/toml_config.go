package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

// tomlConfig mirrors the TOML file layout. Zero values mean "not set" so the
// file only overrides what it names.
type tomlConfig struct {
	Version int `toml:"version"`

	Input struct {
		Dir            string `toml:"dir"`
		FollowSymlinks *bool  `toml:"follow_symlinks"`
		IncludeHidden  *bool  `toml:"include_hidden"`
		MaxFileSize    string `toml:"max_file_size"`
		SampleSize     int    `toml:"sample_size"`
	} `toml:"input"`

	Output struct {
		Dir     string `toml:"dir"`
		Pretty  *bool  `toml:"pretty"`
		Summary *bool  `toml:"summary"`
	} `toml:"output"`

	Analysis struct {
		TopWords      int `toml:"top_words"`
		PreviewBytes  int `toml:"preview_bytes"`
		CSVSampleRows int `toml:"csv_sample_rows"`
		MinStemLength int `toml:"min_stem_length"`
	} `toml:"analysis"`

	Performance struct {
		Workers         int `toml:"workers"`
		FileTimeoutSec  int `toml:"file_timeout_sec"`
		WatchDebounceMs int `toml:"watch_debounce_ms"`
	} `toml:"performance"`

	Include []string `toml:"include"`
	Exclude []string `toml:"exclude"`
}

// LoadTOML attempts to load configuration from a finspect.toml file in dir
func LoadTOML(dir string) (*Config, error) {
	tomlPath := filepath.Join(dir, "finspect.toml")

	if _, err := os.Stat(tomlPath); os.IsNotExist(err) {
		return nil, nil // No TOML config found
	}

	return LoadTOMLFile(tomlPath)
}

// LoadTOMLFile loads configuration from an explicit TOML file path
func LoadTOMLFile(tomlPath string) (*Config, error) {
	data, err := os.ReadFile(tomlPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %v", tomlPath, err)
	}

	var tc tomlConfig
	if err := toml.Unmarshal(data, &tc); err != nil {
		return nil, fmt.Errorf("failed to parse TOML config: %w", err)
	}

	configDir := filepath.Dir(tomlPath)
	cfg := defaultConfig(configDir)

	if tc.Version != 0 {
		cfg.Version = tc.Version
	}
	if tc.Input.Dir != "" {
		cfg.Input.Dir = tc.Input.Dir
	}
	if tc.Input.FollowSymlinks != nil {
		cfg.Input.FollowSymlinks = *tc.Input.FollowSymlinks
	}
	if tc.Input.IncludeHidden != nil {
		cfg.Input.IncludeHidden = *tc.Input.IncludeHidden
	}
	if tc.Input.MaxFileSize != "" {
		if sz, err := parseSize(tc.Input.MaxFileSize); err == nil {
			cfg.Input.MaxFileSize = sz
		}
	}
	if tc.Input.SampleSize != 0 {
		cfg.Input.SampleSize = tc.Input.SampleSize
	}
	if tc.Output.Dir != "" {
		cfg.Output.Dir = tc.Output.Dir
	}
	if tc.Output.Pretty != nil {
		cfg.Output.Pretty = *tc.Output.Pretty
	}
	if tc.Output.Summary != nil {
		cfg.Output.Summary = *tc.Output.Summary
	}
	if tc.Analysis.TopWords != 0 {
		cfg.Analysis.TopWords = tc.Analysis.TopWords
	}
	if tc.Analysis.PreviewBytes != 0 {
		cfg.Analysis.PreviewBytes = tc.Analysis.PreviewBytes
	}
	if tc.Analysis.CSVSampleRows != 0 {
		cfg.Analysis.CSVSampleRows = tc.Analysis.CSVSampleRows
	}
	if tc.Analysis.MinStemLength != 0 {
		cfg.Analysis.MinStemLength = tc.Analysis.MinStemLength
	}
	if tc.Performance.Workers != 0 {
		cfg.Performance.Workers = tc.Performance.Workers
	}
	if tc.Performance.FileTimeoutSec != 0 {
		cfg.Performance.FileTimeoutSec = tc.Performance.FileTimeoutSec
	}
	if tc.Performance.WatchDebounceMs != 0 {
		cfg.Performance.WatchDebounceMs = tc.Performance.WatchDebounceMs
	}
	if len(tc.Include) > 0 {
		cfg.Include = tc.Include
	}
	if len(tc.Exclude) > 0 {
		cfg.Exclude = tc.Exclude
	}

	cfg.Input.Dir = resolveInputDir(cfg.Input.Dir, configDir)
	if cfg.Output.Dir != "" && !filepath.IsAbs(cfg.Output.Dir) {
		cfg.Output.Dir = filepath.Clean(filepath.Join(configDir, cfg.Output.Dir))
	}

	return cfg, nil
}
