package analyze

import (
	"github.com/finspect/finspect/internal/classify"
	"github.com/finspect/finspect/internal/report"
)

// Other computes the fallback metrics for content that matched no specific
// category. It cannot fail.
func Other(sample []byte, signature string) *report.OtherMetrics {
	return &report.OtherMetrics{
		PrintableRatio: classify.PrintableRatio(sample),
		Signature:      signature,
	}
}
