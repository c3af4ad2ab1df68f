package ui

import (
	"fmt"
	"io"
	"time"

	"rawdd/internal/stats"
)

// plainPresenter emits periodic progress lines to stderr. Used when stderr is
// not a TTY or progress redraw is disabled.
type plainPresenter struct {
	w     io.Writer
	errW  io.Writer
	stats *stats.Collector
}

func (p *plainPresenter) Run(events <-chan Event) error {
	ticker := time.NewTicker(5 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			p.handleEvent(ev)
		case <-ticker.C:
			p.stats.Tick()
			p.printProgress()
		}
	}
}

func (p *plainPresenter) handleEvent(ev Event) {
	switch ev.Type {
	case VerifyStarted:
		fmt.Fprintln(p.w, "verifying...")
	case VerifyOK:
		fmt.Fprintln(p.w, "verify ok")
	case VerifyFailed:
		fmt.Fprintln(p.w, "verify MISMATCH")
	}
}

func (p *plainPresenter) printProgress() {
	snap := p.stats.Snapshot()
	if snap.BytesTotal > 0 {
		pct := float64(snap.BytesCopied) / float64(snap.BytesTotal) * 100
		remaining := snap.BytesTotal - snap.BytesCopied
		fmt.Fprintf(p.errW, "progress: %.0f%% %s remain %s eta %s\n",
			pct,
			FormatBytes(remaining),
			FormatRate(p.stats.RollingSpeed(10)),
			FormatETA(p.stats.ETA()),
		)
	} else {
		fmt.Fprintf(p.errW, "progress: %s copied %s\n",
			FormatBytes(snap.BytesCopied),
			FormatRate(p.stats.RollingSpeed(10)),
		)
	}
}

func (p *plainPresenter) Summary() string {
	return CompletionSummary(p.stats.Snapshot())
}

// CompletionSummary renders the final one-line result for a finished copy.
func CompletionSummary(snap stats.Snapshot) string {
	secs := snap.Elapsed.Seconds()
	var avg float64
	if secs > 0 {
		avg = float64(snap.BytesCopied) / secs
	}
	return fmt.Sprintf("%s copied (%s blocks) in %s (%s)",
		FormatBytes(snap.BytesCopied),
		FormatCount(snap.Blocks),
		FormatDuration(snap.Elapsed),
		FormatRate(avg),
	)
}
