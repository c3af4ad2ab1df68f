package ui

import (
	"fmt"
	"io"
	"strings"
	"time"
	"unicode/utf8"

	"rawdd/internal/stats"
)

const progressBarWidth = 20

// inlinePresenter redraws a single progress line in place on a TTY,
// the way dd-style tools report "bytes remain".
type inlinePresenter struct {
	w     io.Writer
	stats *stats.Collector
	width int // terminal columns; 0 disables the clamp

	drawn    bool
	lastLen  int
	verified bool
}

func (p *inlinePresenter) Run(events <-chan Event) error {
	secTicker := time.NewTicker(time.Second)
	defer secTicker.Stop()

	redrawTicker := time.NewTicker(100 * time.Millisecond)
	defer redrawTicker.Stop()

	for {
		select {
		case ev, ok := <-events:
			if !ok {
				p.clearLine()
				return nil
			}
			p.handleEvent(ev)

		case <-secTicker.C:
			p.stats.Tick()

		case <-redrawTicker.C:
			p.draw()
		}
	}
}

func (p *inlinePresenter) handleEvent(ev Event) {
	switch ev.Type {
	case BlockCopied:
		p.draw()
	case VerifyStarted:
		p.clearLine()
		fmt.Fprint(p.w, "verifying...")
		p.drawn = true
		p.lastLen = len("verifying...")
	case VerifyOK:
		p.verified = true
	}
}

func (p *inlinePresenter) draw() {
	snap := p.stats.Snapshot()
	speed := p.stats.RollingSpeed(5)

	var line string
	if snap.BytesTotal > 0 {
		remaining := snap.BytesTotal - snap.BytesCopied
		pct := float64(snap.BytesCopied) / float64(snap.BytesTotal)
		line = fmt.Sprintf("%s remain  %s  %s  eta %s",
			FormatBytes(remaining),
			ProgressBar(pct, progressBarWidth),
			FormatRate(speed),
			FormatETA(p.stats.ETA()),
		)
	} else {
		line = fmt.Sprintf("%s copied  %s",
			FormatBytes(snap.BytesCopied),
			FormatRate(speed),
		)
	}

	// Clamp to the terminal so the redraw never wraps; a wrapped line cannot
	// be overwritten with \r.
	width := utf8.RuneCountInString(line)
	if max := p.width - 1; max > 0 && width > max {
		line = string([]rune(line)[:max])
		width = max
	}

	// Pad with spaces so a shorter redraw fully covers the previous line.
	if pad := p.lastLen - width; pad > 0 {
		line += strings.Repeat(" ", pad)
		width = p.lastLen
	}
	fmt.Fprint(p.w, "\r"+line)
	p.drawn = true
	p.lastLen = width
}

func (p *inlinePresenter) clearLine() {
	if !p.drawn {
		return
	}
	fmt.Fprint(p.w, "\r"+strings.Repeat(" ", p.lastLen)+"\r")
	p.drawn = false
	p.lastLen = 0
}

func (p *inlinePresenter) Summary() string {
	s := CompletionSummary(p.stats.Snapshot())
	if p.verified {
		s += " verify ok"
	}
	return s
}
