package tui

import (
	"time"

	"github.com/marcin-skalski/lol-autopilot/internal/stats"
)

type Snapshot struct {
	Timestamp  time.Time
	Running    bool
	Connection string
	Phase      string // gameflow phase, empty when unknown
	Stats      stats.Snapshot
	Accept     AcceptState
	Ban        ListState
	Pick       ListState
	Pending    []PendingState
	Spells     []SpellState
}

type AcceptState struct {
	Enabled bool
	Delay   time.Duration
}

// ListState holds the resolved priority list in display names.
type ListState struct {
	Enabled   bool
	Champions []string
}

type PendingState struct {
	ActionID int
	Kind     string
	Champion string
	Attempts int
}

type SpellState struct {
	Lane      string
	Slot      int
	Spell     string
	Remaining time.Duration
	Tracking  bool
}
