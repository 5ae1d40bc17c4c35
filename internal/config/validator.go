package config

import (
	"errors"
	"fmt"
	"runtime"

	finerrors "github.com/finspect/finspect/internal/errors"
	"github.com/finspect/finspect/internal/types"
)

// Validator validates configuration and sets smart defaults
type Validator struct{}

// NewValidator creates a new configuration validator
func NewValidator() *Validator {
	return &Validator{}
}

// ValidateAndSetDefaults validates configuration and applies smart defaults.
// Returns an error if validation fails.
func (v *Validator) ValidateAndSetDefaults(cfg *Config) error {
	if err := v.validateInputConfig(&cfg.Input); err != nil {
		return finerrors.NewConfigError("input", "", err)
	}

	if err := v.validateOutputConfig(&cfg.Output); err != nil {
		return finerrors.NewConfigError("output", "", err)
	}

	if err := v.validateAnalysisConfig(&cfg.Analysis); err != nil {
		return finerrors.NewConfigError("analysis", "", err)
	}

	if err := v.validatePerformanceConfig(&cfg.Performance); err != nil {
		return finerrors.NewConfigError("performance", "", err)
	}

	v.setSmartDefaults(cfg)
	return nil
}

// validateInputConfig validates input configuration
func (v *Validator) validateInputConfig(input *Input) error {
	if input.Dir == "" {
		return errors.New("input dir cannot be empty")
	}

	if input.MaxFileSize <= 0 {
		return fmt.Errorf("MaxFileSize must be positive, got %d", input.MaxFileSize)
	}

	if input.MaxFileSize > 512*1024*1024 {
		return fmt.Errorf("MaxFileSize should not exceed 512MB, got %d", input.MaxFileSize)
	}

	if input.SampleSize < 0 {
		return fmt.Errorf("SampleSize cannot be negative, got %d", input.SampleSize)
	}

	return nil
}

// validateOutputConfig validates output configuration
func (v *Validator) validateOutputConfig(output *Output) error {
	if output.Dir == "" {
		return errors.New("output dir cannot be empty")
	}

	return nil
}

// validateAnalysisConfig validates analysis configuration
func (v *Validator) validateAnalysisConfig(analysis *Analysis) error {
	if analysis.TopWords < 0 {
		return fmt.Errorf("TopWords cannot be negative, got %d", analysis.TopWords)
	}

	if analysis.PreviewBytes < 0 {
		return fmt.Errorf("PreviewBytes cannot be negative, got %d", analysis.PreviewBytes)
	}

	if analysis.CSVSampleRows < 0 {
		return fmt.Errorf("CSVSampleRows cannot be negative, got %d", analysis.CSVSampleRows)
	}

	return nil
}

// validatePerformanceConfig validates performance configuration
func (v *Validator) validatePerformanceConfig(perf *Performance) error {
	// Workers: 0 means auto-detect (will be set by smart defaults)
	if perf.Workers < 0 {
		return fmt.Errorf("Workers cannot be negative, got %d", perf.Workers)
	}

	if perf.FileTimeoutSec < 0 {
		return fmt.Errorf("FileTimeoutSec cannot be negative, got %d", perf.FileTimeoutSec)
	}

	if perf.WatchDebounceMs < 0 {
		return fmt.Errorf("WatchDebounceMs cannot be negative, got %d", perf.WatchDebounceMs)
	}

	return nil
}

// setSmartDefaults applies smart defaults based on system capabilities
func (v *Validator) setSmartDefaults(cfg *Config) {
	// Workers defaults to cores-1 to leave headroom for the writer and OS,
	// minimum of 1.
	if cfg.Performance.Workers == 0 {
		numCPU := runtime.NumCPU()
		cfg.Performance.Workers = max(1, numCPU-1)
	}

	if cfg.Input.SampleSize == 0 {
		cfg.Input.SampleSize = types.DefaultSampleSize
	}

	if cfg.Performance.FileTimeoutSec == 0 {
		cfg.Performance.FileTimeoutSec = types.DefaultFileTimeoutSec
	}

	if cfg.Performance.WatchDebounceMs == 0 {
		cfg.Performance.WatchDebounceMs = types.DefaultWatchDebounceMs
	}

	if cfg.Analysis.TopWords == 0 {
		cfg.Analysis.TopWords = types.DefaultTopWords
	}
}

// ValidateConfig is a convenience function for quick validation
func ValidateConfig(cfg *Config) error {
	validator := NewValidator()
	return validator.ValidateAndSetDefaults(cfg)
}
