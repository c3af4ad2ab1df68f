package event

import "time"

// Type identifies the kind of event.
type Type int

const (
	CopyStarted Type = iota + 1
	BlockCopied
	CopyCompleted
	CopyFailed
	VerifyStarted
	VerifyOK
	VerifyFailed
)

var typeNames = [...]string{
	CopyStarted:   "CopyStarted",
	BlockCopied:   "BlockCopied",
	CopyCompleted: "CopyCompleted",
	CopyFailed:    "CopyFailed",
	VerifyStarted: "VerifyStarted",
	VerifyOK:      "VerifyOK",
	VerifyFailed:  "VerifyFailed",
}

func (t Type) String() string {
	if t > 0 && int(t) < len(typeNames) {
		return typeNames[t]
	}
	return "Unknown"
}

// Event represents a single progress observation from the engine.
type Event struct {
	Type      Type
	Timestamp time.Time
	Size      int64 // bytes moved this block, or total bytes on completion
	Remaining int64 // bytes left in the budget; -1 when unbounded
	Error     error
}
