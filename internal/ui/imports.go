package ui

import "rawdd/internal/event"

// Event is re-exported so presenters read naturally.
type Event = event.Event

// Re-export event types for convenience.
const (
	CopyStarted   = event.CopyStarted
	BlockCopied   = event.BlockCopied
	CopyCompleted = event.CopyCompleted
	CopyFailed    = event.CopyFailed
	VerifyStarted = event.VerifyStarted
	VerifyOK      = event.VerifyOK
	VerifyFailed  = event.VerifyFailed
)
