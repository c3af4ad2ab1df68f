package ui

import (
	"io"

	"rawdd/internal/stats"
)

// Presenter consumes events and displays progress.
type Presenter interface {
	// Run consumes events until the channel closes. Blocks until done.
	Run(events <-chan Event) error
	// Summary returns the final summary line.
	Summary() string
}

// Config configures a Presenter.
type Config struct {
	Writer     io.Writer
	ErrWriter  io.Writer
	Stats      *stats.Collector
	IsTTY      bool
	Quiet      bool
	NoProgress bool
}

// NewPresenter creates the appropriate presenter based on configuration.
//
//nolint:ireturn // factory returns one of several presenters
func NewPresenter(cfg Config) Presenter {
	if cfg.Quiet {
		return &quietPresenter{stats: cfg.Stats}
	}
	if !cfg.IsTTY || cfg.NoProgress {
		return &plainPresenter{
			w:     cfg.Writer,
			errW:  cfg.ErrWriter,
			stats: cfg.Stats,
		}
	}
	width := defaultTermWidth
	if f, ok := cfg.ErrWriter.(interface{ Fd() uintptr }); ok {
		width = TermWidth(f.Fd())
	}
	return &inlinePresenter{
		w:     cfg.ErrWriter, // progress renders to stderr (the TTY)
		stats: cfg.Stats,
		width: width,
	}
}
