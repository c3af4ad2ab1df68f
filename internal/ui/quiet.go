package ui

import "rawdd/internal/stats"

// quietPresenter consumes events but produces no output.
type quietPresenter struct {
	stats *stats.Collector
}

func (p *quietPresenter) Run(events <-chan Event) error {
	for range events {
		// Counters are written by the engine directly; presenters
		// only read from the collector, never write.
	}
	return nil
}

func (p *quietPresenter) Summary() string {
	return ""
}
