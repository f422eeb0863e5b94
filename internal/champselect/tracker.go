package champselect

import (
	"sort"

	"github.com/marcin-skalski/lol-autopilot/internal/champions"
)

// Entry is an action we started and have not yet seen completed.
type Entry struct {
	ActionID   int
	Kind       Kind
	ChampionID champions.ID
	Attempts   int
}

// Tracker holds in-flight actions keyed by action id. It is owned by a single
// polling goroutine and is not safe for concurrent use.
type Tracker struct {
	entries map[int]*Entry
}

func NewTracker() *Tracker {
	return &Tracker{entries: make(map[int]*Entry)}
}

// Begin records an attempt at actionID and returns the attempt count.
func (t *Tracker) Begin(actionID int, kind Kind, championID champions.ID) int {
	e, ok := t.entries[actionID]
	if !ok {
		t.entries[actionID] = &Entry{ActionID: actionID, Kind: kind, ChampionID: championID, Attempts: 1}
		return 1
	}
	e.Attempts++
	e.ChampionID = championID
	return e.Attempts
}

// Complete removes and returns the entry for actionID.
func (t *Tracker) Complete(actionID int) (Entry, bool) {
	e, ok := t.entries[actionID]
	if !ok {
		return Entry{}, false
	}
	delete(t.entries, actionID)
	return *e, true
}

func (t *Tracker) Clear() {
	clear(t.entries)
}

func (t *Tracker) Len() int { return len(t.entries) }

// Entries returns copies ordered by action id.
func (t *Tracker) Entries() []Entry {
	out := make([]Entry, 0, len(t.entries))
	for _, e := range t.entries {
		out = append(out, *e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ActionID < out[j].ActionID })
	return out
}
