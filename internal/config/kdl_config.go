package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	kdl "github.com/sblinch/kdl-go"
	"github.com/sblinch/kdl-go/document"
)

// LoadKDL attempts to load configuration from a .finspect.kdl file in dir
func LoadKDL(dir string) (*Config, error) {
	kdlPath := filepath.Join(dir, ".finspect.kdl")

	if _, err := os.Stat(kdlPath); os.IsNotExist(err) {
		return nil, nil // No KDL config found, use defaults
	}

	return LoadKDLFile(kdlPath)
}

// LoadKDLFile loads configuration from an explicit KDL file path
func LoadKDLFile(kdlPath string) (*Config, error) {
	content, err := os.ReadFile(kdlPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %v", kdlPath, err)
	}

	// Defaults and relative directories both anchor at the config file
	// location, matching the TOML loader.
	configDir := filepath.Dir(kdlPath)
	cfg, err := parseKDL(string(content), configDir)
	if err != nil {
		return nil, err
	}

	cfg.Input.Dir = resolveInputDir(cfg.Input.Dir, configDir)
	if cfg.Output.Dir != "" && !filepath.IsAbs(cfg.Output.Dir) {
		cfg.Output.Dir = filepath.Clean(filepath.Join(configDir, cfg.Output.Dir))
	}

	return cfg, nil
}

// Simple KDL parser for finspect configuration
func parseKDL(content string, defaultRoot string) (*Config, error) {
	cfg := defaultConfig(defaultRoot)

	doc, err := kdl.Parse(strings.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("failed to parse KDL config: %w", err)
	}

	for _, n := range doc.Nodes {
		switch nodeName(n) {
		case "version":
			if v, ok := firstIntArg(n); ok {
				cfg.Version = v
			}
		case "input":
			for _, cn := range n.Children {
				switch nodeName(cn) {
				case "dir":
					if s, ok := firstStringArg(cn); ok {
						cfg.Input.Dir = s
					}
				case "follow_symlinks":
					if b, ok := firstBoolArg(cn); ok {
						cfg.Input.FollowSymlinks = b
					}
				case "include_hidden":
					if b, ok := firstBoolArg(cn); ok {
						cfg.Input.IncludeHidden = b
					}
				case "max_file_size":
					if v, ok := firstIntArg(cn); ok {
						cfg.Input.MaxFileSize = int64(v)
					}
					if s, ok := firstStringArg(cn); ok {
						if sz, err := parseSize(s); err == nil {
							cfg.Input.MaxFileSize = sz
						}
					}
				case "sample_size":
					if v, ok := firstIntArg(cn); ok {
						cfg.Input.SampleSize = v
					}
				}
			}
		case "output":
			for _, cn := range n.Children {
				switch nodeName(cn) {
				case "dir":
					if s, ok := firstStringArg(cn); ok {
						cfg.Output.Dir = s
					}
				case "pretty":
					if b, ok := firstBoolArg(cn); ok {
						cfg.Output.Pretty = b
					}
				case "summary":
					if b, ok := firstBoolArg(cn); ok {
						cfg.Output.Summary = b
					}
				}
			}
		case "analysis":
			for _, cn := range n.Children {
				switch nodeName(cn) {
				case "top_words":
					if v, ok := firstIntArg(cn); ok {
						cfg.Analysis.TopWords = v
					}
				case "preview_bytes":
					if v, ok := firstIntArg(cn); ok {
						cfg.Analysis.PreviewBytes = v
					}
				case "csv_sample_rows":
					if v, ok := firstIntArg(cn); ok {
						cfg.Analysis.CSVSampleRows = v
					}
				case "min_stem_length":
					if v, ok := firstIntArg(cn); ok {
						cfg.Analysis.MinStemLength = v
					}
				}
			}
		case "performance":
			for _, cn := range n.Children {
				switch nodeName(cn) {
				case "workers":
					if v, ok := firstIntArg(cn); ok {
						cfg.Performance.Workers = v
					}
				case "file_timeout_sec":
					if v, ok := firstIntArg(cn); ok {
						cfg.Performance.FileTimeoutSec = v
					}
				case "watch_debounce_ms":
					if v, ok := firstIntArg(cn); ok {
						cfg.Performance.WatchDebounceMs = v
					}
				}
			}
		case "include":
			cfg.Include = append(cfg.Include, collectStringArgs(n)...)
		case "exclude":
			// Replace default exclusions if exclude block is present
			cfg.Exclude = collectStringArgs(n)
		}
	}

	return cfg, nil
}

// Helper functions leveraging the kdl-go document model
func nodeName(n *document.Node) string {
	if n == nil || n.Name == nil {
		return ""
	}
	return n.Name.NodeNameString()
}

func firstIntArg(n *document.Node) (int, bool) {
	if len(n.Arguments) == 0 {
		return 0, false
	}
	switch v := n.Arguments[0].Value.(type) {
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	default:
		return 0, false
	}
}

func firstStringArg(n *document.Node) (string, bool) {
	if len(n.Arguments) == 0 {
		return "", false
	}
	if s, ok := n.Arguments[0].Value.(string); ok {
		return s, true
	}
	return "", false
}

func firstBoolArg(n *document.Node) (bool, bool) {
	if len(n.Arguments) == 0 {
		return false, false
	}
	if b, ok := n.Arguments[0].Value.(bool); ok {
		return b, true
	}
	return false, false
}

func collectStringArgs(n *document.Node) []string {
	if n == nil {
		return nil
	}
	// First try to collect from arguments (for inline format)
	out := make([]string, 0, len(n.Arguments))
	for _, a := range n.Arguments {
		if s, ok := a.Value.(string); ok {
			out = append(out, s)
		}
	}

	// If no arguments, collect from children (for block format like exclude { "pattern" })
	// In KDL block format, strings are child nodes where the node name is the string value
	if len(out) == 0 && len(n.Children) > 0 {
		out = make([]string, 0, len(n.Children))
		for _, child := range n.Children {
			if s, ok := firstStringArg(child); ok {
				out = append(out, s)
			} else if child.Name != nil {
				if s, ok := child.Name.Value.(string); ok {
					out = append(out, s)
				}
			}
		}
	}

	return out
}

// parseSize handles size strings like "10MB", "500KB", "1GB"
func parseSize(s string) (int64, error) {
	s = strings.ToUpper(strings.TrimSpace(s))

	var multiplier int64 = 1
	var numStr string

	switch {
	case strings.HasSuffix(s, "GB"):
		multiplier = 1024 * 1024 * 1024
		numStr = strings.TrimSuffix(s, "GB")
	case strings.HasSuffix(s, "MB"):
		multiplier = 1024 * 1024
		numStr = strings.TrimSuffix(s, "MB")
	case strings.HasSuffix(s, "KB"):
		multiplier = 1024
		numStr = strings.TrimSuffix(s, "KB")
	case strings.HasSuffix(s, "B"):
		multiplier = 1
		numStr = strings.TrimSuffix(s, "B")
	default:
		numStr = s
	}

	num, err := strconv.ParseInt(numStr, 10, 64)
	if err != nil {
		return 0, err
	}

	if num < 0 {
		log.Printf("WARNING: negative size %q in config, ignoring", s)
		return 0, fmt.Errorf("negative size %q", s)
	}

	return num * multiplier, nil
}
