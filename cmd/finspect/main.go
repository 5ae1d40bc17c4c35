package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"runtime/pprof"
	"strings"
	"syscall"

	"github.com/urfave/cli/v2"

	"github.com/finspect/finspect/internal/batch"
	"github.com/finspect/finspect/internal/config"
	"github.com/finspect/finspect/internal/debug"
	"github.com/finspect/finspect/internal/report"
	"github.com/finspect/finspect/internal/version"
)

var cleanupFuncs []func()

// loadConfigWithOverrides loads configuration and applies CLI flag overrides.
// The positional directory argument wins over --input, which wins over the
// config file.
func loadConfigWithOverrides(c *cli.Context) (*config.Config, error) {
	inputDir := c.String("input")
	if c.NArg() > 0 {
		inputDir = c.Args().First()
	}

	cfg, err := config.LoadWithRoot(c.String("config"), inputDir)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if inputDir != "" {
		absInput, err := filepath.Abs(inputDir)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve input path %q: %w", inputDir, err)
		}
		cfg.Input.Dir = absInput
	}
	if outFlag := c.String("output"); outFlag != "" {
		absOutput, err := filepath.Abs(outFlag)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve output path %q: %w", outFlag, err)
		}
		cfg.Output.Dir = absOutput
	}
	if includeFlags := c.StringSlice("include"); len(includeFlags) > 0 {
		cfg.Include = includeFlags
	}
	if excludeFlags := c.StringSlice("exclude"); len(excludeFlags) > 0 {
		cfg.Exclude = append(cfg.Exclude, excludeFlags...)
	}
	if c.IsSet("workers") {
		cfg.Performance.Workers = c.Int("workers")
	}
	if c.IsSet("pretty") {
		cfg.Output.Pretty = c.Bool("pretty")
	}

	if err := config.ValidateConfig(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// interruptContext returns a context canceled on SIGINT or SIGTERM.
func interruptContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func main() {
	defer func() {
		for _, cleanup := range cleanupFuncs {
			cleanup()
		}
	}()

	cli.VersionPrinter = func(c *cli.Context) {
		fmt.Println(version.FullInfo())
	}

	app := &cli.App{
		Name:                   "finspect",
		Usage:                  "Batch file analysis with one JSON report per file",
		Version:                version.Version,
		UseShortOptionHandling: true,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Config file path (.finspect.kdl or finspect.toml)",
			},
			&cli.StringFlag{
				Name:    "input",
				Aliases: []string{"i"},
				Usage:   "Directory to analyze",
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Directory for report files",
			},
			&cli.StringSliceFlag{
				Name:  "include",
				Usage: "Analyze only files matching glob patterns (e.g., --include '**/*.csv')",
			},
			&cli.StringSliceFlag{
				Name:  "exclude",
				Usage: "Skip files matching glob patterns (e.g., --exclude '**/raw/**')",
			},
			&cli.IntFlag{
				Name:    "workers",
				Aliases: []string{"w"},
				Usage:   "Number of analysis workers (0 = one per core, minus one)",
			},
			&cli.BoolFlag{
				Name:  "pretty",
				Usage: "Indent report JSON",
			},
			&cli.BoolFlag{
				Name:  "progress",
				Usage: "Print periodic progress counts to stderr",
			},
			&cli.BoolFlag{
				Name:  "verbose",
				Usage: "Enable debug logging to stderr",
			},
			&cli.StringFlag{
				Name:   "profile-cpu",
				Usage:  "Write CPU profile to file (e.g., --profile-cpu cpu.prof)",
				Hidden: true,
			},
			&cli.StringFlag{
				Name:   "profile-memory",
				Usage:  "Write memory profile to file (e.g., --profile-memory mem.prof)",
				Hidden: true,
			},
		},
		Commands: []*cli.Command{
			{
				Name:      "run",
				Aliases:   []string{"r"},
				Usage:     "Analyze a directory and write one JSON report per file",
				ArgsUsage: "[dir]",
				Action:    runCommand,
			},
			{
				Name:      "watch",
				Usage:     "Analyze a directory, then re-analyze files as they change",
				ArgsUsage: "[dir]",
				Action:    watchCommand,
			},
			{
				Name:      "list",
				Aliases:   []string{"ls"},
				Usage:     "List files that would be analyzed, with category guesses",
				ArgsUsage: "[dir]",
				Action:    listCommand,
			},
			{
				Name:   "schema",
				Usage:  "Print the JSON schema of report and summary documents",
				Action: schemaCommand,
			},
			{
				Name:  "config",
				Usage: "Configuration management commands",
				Subcommands: []*cli.Command{
					{
						Name:    "init",
						Aliases: []string{"i"},
						Usage:   "Write a starter .finspect.kdl",
						Flags: []cli.Flag{
							&cli.StringFlag{
								Name:    "output",
								Aliases: []string{"o"},
								Usage:   "Output file path",
								Value:   ".finspect.kdl",
							},
							&cli.BoolFlag{
								Name:  "force",
								Usage: "Overwrite an existing configuration file",
							},
							&cli.BoolFlag{
								Name:  "minimal",
								Usage: "Generate minimal config with only commonly changed settings",
							},
						},
						Action: configInitCommand,
					},
					{
						Name:    "show",
						Aliases: []string{"s"},
						Usage:   "Show the effective configuration",
						Flags: []cli.Flag{
							&cli.StringFlag{
								Name:    "format",
								Aliases: []string{"f"},
								Usage:   "Output format: table, kdl, json",
								Value:   "table",
							},
						},
						Action: configShowCommand,
					},
					{
						Name:    "validate",
						Aliases: []string{"v"},
						Usage:   "Validate the configuration file",
						Action:  configValidateCommand,
					},
				},
			},
		},
		Before: func(c *cli.Context) error {
			if c.Bool("verbose") {
				debug.SetEnabled(true)
				debug.SetDebugOutput(os.Stderr)
			}

			if cpuProfilePath := c.String("profile-cpu"); cpuProfilePath != "" {
				f, err := os.Create(cpuProfilePath)
				if err != nil {
					return fmt.Errorf("failed to create CPU profile: %w", err)
				}
				if err := pprof.StartCPUProfile(f); err != nil {
					f.Close()
					return fmt.Errorf("failed to start CPU profile: %w", err)
				}
				cleanupFuncs = append(cleanupFuncs, func() {
					pprof.StopCPUProfile()
					f.Close()
				})
			}

			if memProfilePath := c.String("profile-memory"); memProfilePath != "" {
				cleanupFuncs = append(cleanupFuncs, func() {
					runtime.GC()

					f, err := os.Create(memProfilePath)
					if err != nil {
						fmt.Fprintf(os.Stderr, "Failed to create memory profile: %v\n", err)
						return
					}
					defer f.Close()

					if err := pprof.WriteHeapProfile(f); err != nil {
						fmt.Fprintf(os.Stderr, "Failed to write memory profile: %v\n", err)
					}
				})
			}

			return nil
		},
		// Bare "finspect [dir]" behaves as "finspect run [dir]".
		Action: runCommand,
	}

	// Flag misuse exits 2 everywhere; command errors exit 1 below.
	app.OnUsageError = onUsageError
	for _, cmd := range app.Commands {
		cmd.OnUsageError = onUsageError
		for _, sub := range cmd.Subcommands {
			sub.OnUsageError = onUsageError
		}
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Fatal error: %v\n", err)
		os.Exit(1)
	}
}

func onUsageError(_ *cli.Context, err error, _ bool) error {
	return cli.Exit(fmt.Sprintf("Incorrect usage: %v", err), 2)
}

// runCommand performs one batch run. Per-file analysis failures are recorded
// in the reports and do not fail the command; only setup errors and
// cancellation do.
func runCommand(c *cli.Context) error {
	cfg, err := loadConfigWithOverrides(c)
	if err != nil {
		return err
	}

	ctx, stop := interruptContext()
	defer stop()

	runner := batch.NewRunner(cfg)
	if c.Bool("progress") {
		runner.EnableProgress(os.Stderr)
	}

	summary, err := runner.Run(ctx)
	if err != nil {
		return err
	}

	fmt.Printf("Analyzed %d of %d files in %.2fs (%d errored, %d skipped)\n",
		summary.Analyzed, summary.Scanned, summary.DurationSeconds,
		summary.Errored, summary.Skipped)
	fmt.Printf("Reports written to %s\n", cfg.Output.Dir)
	return nil
}

func watchCommand(c *cli.Context) error {
	cfg, err := loadConfigWithOverrides(c)
	if err != nil {
		return err
	}

	ctx, stop := interruptContext()
	defer stop()

	runner := batch.NewRunner(cfg)
	if c.Bool("progress") {
		runner.EnableProgress(os.Stderr)
	}

	watcher, err := batch.NewWatcher(cfg, runner)
	if err != nil {
		return err
	}
	return watcher.Watch(ctx)
}

// listCommand prints the files a run would analyze without writing reports.
// Categories are guessed from the classification sample only.
func listCommand(c *cli.Context) error {
	cfg, err := loadConfigWithOverrides(c)
	if err != nil {
		return err
	}

	ctx, stop := interruptContext()
	defer stop()

	scanner := batch.NewScanner(cfg)
	tasks, stats, err := scanner.Scan(ctx)
	if err != nil {
		return err
	}

	for _, task := range tasks {
		res := scanner.Peek(task.Path)
		fmt.Printf("%-6s %s\n", res.Category, task.Rel)
	}
	fmt.Fprintf(os.Stderr, "\nTotal: %d files would be analyzed (%d skipped)\n",
		len(tasks), stats.Skipped)
	return nil
}

func schemaCommand(c *cli.Context) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(report.Schemas())
}

func configInitCommand(c *cli.Context) error {
	output := c.String("output")
	if output == "" {
		output = ".finspect.kdl"
	}

	if !c.Bool("force") {
		if _, err := os.Stat(output); err == nil {
			return fmt.Errorf("configuration file %s already exists (use --force to overwrite)", output)
		}
	}

	content := generateKDLConfig(c.Bool("minimal"))
	if err := os.WriteFile(output, []byte(content), 0644); err != nil {
		return fmt.Errorf("failed to write config file: %v", err)
	}

	fmt.Printf("Configuration file created: %s\n", output)
	fmt.Printf("Edit the file to customize settings for your project.\n")
	return nil
}

func configShowCommand(c *cli.Context) error {
	cfg, err := loadConfigWithOverrides(c)
	if err != nil {
		return err
	}

	switch c.String("format") {
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(cfg)
	case "kdl":
		fmt.Print(configToKDL(cfg))
		return nil
	default:
		return displayConfigTable(cfg)
	}
}

func configValidateCommand(c *cli.Context) error {
	configPath := c.String("config")

	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Printf("Configuration validation failed: %v\n", err)
		return err
	}
	if err := config.ValidateConfig(cfg); err != nil {
		fmt.Printf("Configuration validation failed: %v\n", err)
		return err
	}

	warnings := []string{}
	if cfg.Input.MaxFileSize < 4*1024 {
		warnings = append(warnings, "max_file_size is very low (<4KB), most files will be hashed without analysis")
	}
	if cfg.Input.SampleSize < 512 {
		warnings = append(warnings, "sample_size is very low (<512 bytes), classification accuracy degrades")
	}
	if cfg.Performance.FileTimeoutSec < 5 {
		warnings = append(warnings, "file_timeout_sec is very low (<5s), large files may time out")
	}
	if cfg.Performance.Workers > 4*runtime.NumCPU() {
		warnings = append(warnings, fmt.Sprintf("workers (%d) far exceeds available cores (%d)",
			cfg.Performance.Workers, runtime.NumCPU()))
	}

	fmt.Printf("Configuration is valid\n")
	source := configPath
	if source == "" {
		source = "(discovered)"
	}
	fmt.Printf("Config source: %s\n", source)
	fmt.Printf("Settings: %d workers, %dMB analysis cap, reports in %s\n",
		cfg.Performance.Workers, cfg.Input.MaxFileSize/(1024*1024), cfg.Output.Dir)

	if len(warnings) > 0 {
		fmt.Printf("\nWarnings:\n")
		for _, warning := range warnings {
			fmt.Printf("  - %s\n", warning)
		}
	}

	return nil
}

func generateKDLConfig(minimal bool) string {
	if minimal {
		return `// finspect configuration
// Minimal configuration with commonly changed settings

input {
    max_file_size "10MB"           // Larger files are hashed but not analyzed
    include_hidden false           // Analyze dot-files
}

output {
    dir "reports"                  // Report directory (relative to this file)
    pretty true                    // Indent report JSON
}

performance {
    workers 0                      // 0 = one per core, minus one
}

// Built-in exclusions skip VCS metadata, editor swap files, and OS noise.
// Adding an exclude block replaces them, so list everything you want skipped:
// exclude {
//     "**/.git/**"
//     "**/my-data/**"
// }
`
	}

	return fmt.Sprintf(`// finspect configuration
// Full configuration template with all available options

input {
    dir "."                        // Directory to analyze (relative to this file)
    follow_symlinks false          // Analyze symlink targets
    include_hidden false           // Analyze dot-files
    max_file_size "10MB"           // Larger files are hashed but not analyzed
    sample_size 8192               // Bytes read for classification
}

output {
    dir "reports"                  // Report directory
    pretty true                    // Indent report JSON
    summary true                   // Write summary.json for the run
}

analysis {
    top_words 10                   // Word/count pairs per text report
    preview_bytes 500              // Extracted-content preview cap
    csv_sample_rows 3              // Records echoed into CSV reports
    min_stem_length 3              // Minimum token length for sentiment stemming
}

performance {
    workers 0                      // 0 = one per core, minus one
    file_timeout_sec 30            // Per-file analysis budget
    watch_debounce_ms 500          // Event debounce in watch mode
}

// Analyze only files matching these patterns (empty = all files)
include {
    // "**/*.csv"
}

// Skip files matching these patterns. This block replaces the built-in
// defaults, which are listed here so they stay in effect.
%s
`, formatKDLPatterns("exclude", config.DefaultExclusions()))
}

// configToKDL renders the effective configuration in the same KDL grammar
// the loader parses, so the output can be saved and reloaded.
func configToKDL(cfg *config.Config) string {
	return fmt.Sprintf(`// Current finspect configuration

version %d

input {
    dir %q
    follow_symlinks %t
    include_hidden %t
    max_file_size %d
    sample_size %d
}

output {
    dir %q
    pretty %t
    summary %t
}

analysis {
    top_words %d
    preview_bytes %d
    csv_sample_rows %d
    min_stem_length %d
}

performance {
    workers %d
    file_timeout_sec %d
    watch_debounce_ms %d
}

%s

%s
`,
		cfg.Version,
		cfg.Input.Dir,
		cfg.Input.FollowSymlinks,
		cfg.Input.IncludeHidden,
		cfg.Input.MaxFileSize,
		cfg.Input.SampleSize,
		cfg.Output.Dir,
		cfg.Output.Pretty,
		cfg.Output.Summary,
		cfg.Analysis.TopWords,
		cfg.Analysis.PreviewBytes,
		cfg.Analysis.CSVSampleRows,
		cfg.Analysis.MinStemLength,
		cfg.Performance.Workers,
		cfg.Performance.FileTimeoutSec,
		cfg.Performance.WatchDebounceMs,
		formatKDLPatterns("include", cfg.Include),
		formatKDLPatterns("exclude", cfg.Exclude),
	)
}

func formatKDLPatterns(section string, patterns []string) string {
	if len(patterns) == 0 {
		return section + " {\n    // none\n}"
	}

	var b strings.Builder
	b.WriteString(section + " {\n")
	for _, pattern := range patterns {
		fmt.Fprintf(&b, "    %q\n", pattern)
	}
	b.WriteString("}")
	return b.String()
}

func displayConfigTable(cfg *config.Config) error {
	fmt.Printf("finspect configuration\n")
	fmt.Printf("======================\n\n")

	fmt.Printf("Input Settings:\n")
	fmt.Printf("  Directory:         %s\n", cfg.Input.Dir)
	fmt.Printf("  Follow symlinks:   %t\n", cfg.Input.FollowSymlinks)
	fmt.Printf("  Include hidden:    %t\n", cfg.Input.IncludeHidden)
	fmt.Printf("  Max file size:     %.1f MB\n", float64(cfg.Input.MaxFileSize)/(1024*1024))
	fmt.Printf("  Sample size:       %d bytes\n", cfg.Input.SampleSize)
	fmt.Printf("\n")

	fmt.Printf("Output Settings:\n")
	fmt.Printf("  Directory:         %s\n", cfg.Output.Dir)
	fmt.Printf("  Pretty JSON:       %t\n", cfg.Output.Pretty)
	fmt.Printf("  Write summary:     %t\n", cfg.Output.Summary)
	fmt.Printf("\n")

	fmt.Printf("Analysis Settings:\n")
	fmt.Printf("  Top words:         %d\n", cfg.Analysis.TopWords)
	fmt.Printf("  Preview bytes:     %d\n", cfg.Analysis.PreviewBytes)
	fmt.Printf("  CSV sample rows:   %d\n", cfg.Analysis.CSVSampleRows)
	fmt.Printf("  Min stem length:   %d\n", cfg.Analysis.MinStemLength)
	fmt.Printf("\n")

	fmt.Printf("Performance Settings:\n")
	fmt.Printf("  Workers:           %d\n", cfg.Performance.Workers)
	fmt.Printf("  File timeout:      %d s\n", cfg.Performance.FileTimeoutSec)
	fmt.Printf("  Watch debounce:    %d ms\n", cfg.Performance.WatchDebounceMs)
	fmt.Printf("\n")

	fmt.Printf("Include Patterns (%d):\n", len(cfg.Include))
	if len(cfg.Include) == 0 {
		fmt.Printf("  (all files)\n")
	}
	for _, pattern := range cfg.Include {
		fmt.Printf("  %s\n", pattern)
	}
	fmt.Printf("\n")

	fmt.Printf("Exclude Patterns (%d):\n", len(cfg.Exclude))
	for _, pattern := range cfg.Exclude {
		fmt.Printf("  %s\n", pattern)
	}

	return nil
}
