// Package ui provides the Bubble Tea TUI for watch mode.
package ui

import "time"

// Message types for TUI updates

// CycleMsg is sent after each decision cycle. All values are
// pre-rendered by the caller; the UI does not calculate anything.
type CycleMsg struct {
	AaveBps          int64
	CompoundBps      int64
	DifferenceBp     int64
	AavePosition     string
	CompoundPosition string
	WalletBalance    string
	ShouldMove       bool
	From             string
	To               string
	Amount           string
	Timestamp        time.Time
}

// SubmissionMsg is sent when a plan was handed to the execution layer.
type SubmissionMsg struct {
	From    string
	To      string
	Amount  string
	Success bool
	Error   string
}

// BlockMsg is sent when a new block is received.
type BlockMsg struct {
	Number    uint64
	Timestamp time.Time
}

// ErrorMsg is sent when a cycle fails.
type ErrorMsg struct {
	Error error
}

// TickMsg is sent periodically for UI updates.
type TickMsg struct{}
