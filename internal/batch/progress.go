package batch

import (
	"context"
	"fmt"
	"io"
	"sync/atomic"
	"time"
)

// Progress tracks batch counters. Updates are lock-free; workers call
// Record on the hot path.
type Progress struct {
	total   atomic.Int64
	done    atomic.Int64
	errored atomic.Int64
}

func (p *Progress) SetTotal(n int) {
	p.total.Store(int64(n))
}

func (p *Progress) Record(errored bool) {
	p.done.Add(1)
	if errored {
		p.errored.Add(1)
	}
}

func (p *Progress) Snapshot() (done, total, errored int64) {
	return p.done.Load(), p.total.Load(), p.errored.Load()
}

// Report prints progress lines to w until ctx ends. Run it on its own
// goroutine; it never prints after ctx is done.
func (p *Progress) Report(ctx context.Context, w io.Writer, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			done, total, errored := p.Snapshot()
			fmt.Fprintf(w, "analyzed %d/%d files (%d errors)\n", done, total, errored)
		}
	}
}
