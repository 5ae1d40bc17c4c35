package types

// Common system-wide constants
const (
	// DefaultMaxFileSize caps how much of a file is held in memory for
	// analysis. Files above the cap are hashed with a streaming read and
	// reported with a read error instead of being analyzed.
	DefaultMaxFileSize = 10 * 1024 * 1024 // 10MB per file

	// DefaultSampleSize is how many leading bytes the classifier examines.
	DefaultSampleSize = 8 * 1024 // 8KiB

	// DefaultTopWords is how many word/count pairs a text report carries.
	DefaultTopWords = 10

	// DefaultPreviewBytes bounds extracted-content previews (PDF text).
	DefaultPreviewBytes = 500

	// DefaultCSVSampleRows is how many records a CSV report echoes back.
	DefaultCSVSampleRows = 3

	// CSVSniffLines bounds how many lines the delimiter sniffer samples.
	CSVSniffLines = 20

	// DefaultMinStemLength is the shortest word the sentiment stemmer will
	// normalize; shorter words pass through unchanged.
	DefaultMinStemLength = 3

	// DefaultFileTimeoutSec is the per-file wall-clock budget.
	DefaultFileTimeoutSec = 30

	// DefaultWatchDebounceMs coalesces rapid filesystem events per path.
	DefaultWatchDebounceMs = 500
)

// Category is the closed set of file classes the classifier can assign.
type Category string

const (
	CategoryText  Category = "text"
	CategoryJSON  Category = "json"
	CategoryCSV   Category = "csv"
	CategoryImage Category = "image"
	CategoryPDF   Category = "pdf"
	CategoryOther Category = "other"
)

// Categories lists every category in report-stable order.
func Categories() []Category {
	return []Category{
		CategoryText,
		CategoryJSON,
		CategoryCSV,
		CategoryImage,
		CategoryPDF,
		CategoryOther,
	}
}

// String returns the wire name of the category.
func (c Category) String() string {
	return string(c)
}

// Valid reports whether c is one of the closed set.
func (c Category) Valid() bool {
	switch c {
	case CategoryText, CategoryJSON, CategoryCSV, CategoryImage, CategoryPDF, CategoryOther:
		return true
	}
	return false
}
