// Package report periodically prints the session counters.
package report

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/rickgao/gateway-presence/internal/stats"
)

// DefaultInterval is how often the summary is redrawn.
const DefaultInterval = time.Second

// Reporter redraws an online/total summary on a writer. It only reads the
// counters.
type Reporter struct {
	out      io.Writer
	counters *stats.Counters
	interval time.Duration
}

// New creates a reporter. A non-positive interval uses DefaultInterval.
func New(out io.Writer, counters *stats.Counters, interval time.Duration) *Reporter {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Reporter{
		out:      out,
		counters: counters,
		interval: interval,
	}
}

// Run draws the summary every interval until ctx is done, then draws it one
// last time followed by a newline.
func (r *Reporter) Run(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	r.draw()
	for {
		select {
		case <-ctx.Done():
			r.draw()
			fmt.Fprintln(r.out)
			return
		case <-ticker.C:
			r.draw()
		}
	}
}

func (r *Reporter) draw() {
	fmt.Fprintf(r.out, "\r%s", Format(r.counters.Snapshot()))
}

// Format renders a snapshot as a single status line.
func Format(s stats.Snapshot) string {
	return fmt.Sprintf("Online: %-5d Total: %-5d", s.Online, s.Total)
}
