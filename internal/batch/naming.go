package batch

import (
	"fmt"
	"path"
	"strings"
)

// reservedSummaryName is never assigned to a per-file report.
const reservedSummaryName = "summary.json"

// Namer assigns report filenames for a batch. Names derive from the
// slash-relative input path; collisions get -2, -3... suffixes in
// assignment order, so identical input sets always name identically.
type Namer struct {
	used map[string]bool
}

func NewNamer() *Namer {
	return &Namer{used: map[string]bool{reservedSummaryName: true}}
}

// Reserve marks a filename as taken without assigning it.
func (n *Namer) Reserve(name string) {
	n.used[name] = true
}

// Assign returns the report filename for one input path and marks it taken.
func (n *Namer) Assign(rel string) string {
	candidate := reportName(rel)
	if !n.used[candidate] {
		n.used[candidate] = true
		return candidate
	}

	stem := strings.TrimSuffix(candidate, ".json")
	for i := 2; ; i++ {
		next := fmt.Sprintf("%s-%d.json", stem, i)
		if !n.used[next] {
			n.used[next] = true
			return next
		}
	}
}

// reportName maps a slash-relative input path to its report filename.
// Subdirectory separators flatten to "__", the extension becomes .json,
// and inputs that already end in .json get a _processed marker so the
// report cannot be confused with its source.
func reportName(rel string) string {
	dir, base := path.Split(rel)

	ext := path.Ext(base)
	if ext == base {
		// dot-files keep their full name as the stem
		ext = ""
	}
	stem := strings.TrimSuffix(base, ext)

	prefix := strings.ReplaceAll(strings.TrimSuffix(dir, "/"), "/", "__")
	if prefix != "" {
		stem = prefix + "__" + stem
	}

	if strings.EqualFold(ext, ".json") {
		return stem + "_processed.json"
	}
	return stem + ".json"
}
