package spells

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"
)

type Spell string

const (
	Flash    Spell = "flash"
	Ignite   Spell = "ignite"
	Heal     Spell = "heal"
	Barrier  Spell = "barrier"
	Exhaust  Spell = "exhaust"
	Ghost    Spell = "ghost"
	Cleanse  Spell = "cleanse"
	Teleport Spell = "teleport"
	Smite    Spell = "smite"
)

var Cooldowns = map[Spell]time.Duration{
	Flash:    300 * time.Second,
	Ignite:   180 * time.Second,
	Heal:     240 * time.Second,
	Barrier:  180 * time.Second,
	Exhaust:  210 * time.Second,
	Ghost:    210 * time.Second,
	Cleanse:  210 * time.Second,
	Teleport: 360 * time.Second,
	Smite:    90 * time.Second,
}

type Lane int

const (
	Top Lane = iota + 1
	Jungle
	Mid
	ADC
	Support
)

var laneNames = [...]string{"", "Top", "Jungle", "Mid", "ADC", "Support"}

func (l Lane) String() string {
	if l < Top || l > Support {
		return fmt.Sprintf("Lane %d", int(l))
	}
	return laneNames[l]
}

type Slot int

const (
	Slot1 Slot = iota + 1
	Slot2
)

var (
	ErrUnknownSpell = errors.New("unknown summoner spell")
	ErrInvalidSlot  = errors.New("invalid lane or slot")
)

var defaultLoadout = [5][2]Spell{
	{Flash, Teleport},
	{Flash, Smite},
	{Flash, Ignite},
	{Flash, Heal},
	{Flash, Ignite},
}

// ParseSpell accepts spell names case-insensitively.
func ParseSpell(name string) (Spell, error) {
	s := Spell(strings.ToLower(strings.TrimSpace(name)))
	if _, ok := Cooldowns[s]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownSpell, name)
	}
	return s, nil
}

type slotState struct {
	spell    Spell
	readyAt  time.Time
	notified bool
}

// Use describes a spell marked as used.
type Use struct {
	Lane     Lane
	Slot     Slot
	Spell    Spell
	Cooldown time.Duration
	ReadyAt  time.Time
}

type Status struct {
	Lane      Lane
	Slot      Slot
	Spell     Spell
	Remaining time.Duration
	// Tracking is false for spells that were never marked as used.
	Tracking bool
}

func (s Status) Ready() bool { return s.Remaining <= 0 }

// Tracker follows enemy summoner spell cooldowns. Marks come from hotkeys on
// one goroutine while Run ticks on another; callbacks run outside the lock.
type Tracker struct {
	onReady func(Use)
	now     func() time.Time

	mu    sync.Mutex
	slots [5][2]slotState
}

func NewTracker(onReady func(Use)) *Tracker {
	t := &Tracker{onReady: onReady, now: time.Now}
	t.Reset()
	return t
}

// Reset restores default spells and clears all timers.
func (t *Tracker) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	for lane := range t.slots {
		for slot := range t.slots[lane] {
			t.slots[lane][slot] = slotState{spell: defaultLoadout[lane][slot]}
		}
	}
}

func (t *Tracker) slot(lane Lane, slot Slot) (*slotState, error) {
	if lane < Top || lane > Support || slot < Slot1 || slot > Slot2 {
		return nil, fmt.Errorf("%w: lane %d slot %d", ErrInvalidSlot, lane, slot)
	}
	return &t.slots[lane-1][slot-1], nil
}

// SetSpell assigns a spell to a slot and clears its timer.
func (t *Tracker) SetSpell(lane Lane, slot Slot, name string) error {
	spell, err := ParseSpell(name)
	if err != nil {
		return err
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	s, err := t.slot(lane, slot)
	if err != nil {
		return err
	}
	*s = slotState{spell: spell}
	return nil
}

// MarkUsed starts the cooldown of a slot.
func (t *Tracker) MarkUsed(lane Lane, slot Slot) (Use, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	s, err := t.slot(lane, slot)
	if err != nil {
		return Use{}, err
	}
	cd := Cooldowns[s.spell]
	s.readyAt = t.now().Add(cd)
	s.notified = false
	return Use{Lane: lane, Slot: slot, Spell: s.spell, Cooldown: cd, ReadyAt: s.readyAt}, nil
}

// Status lists every slot, lane by lane.
func (t *Tracker) Status() []Status {
	now := t.now()
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]Status, 0, 10)
	for lane := range t.slots {
		for slot, s := range t.slots[lane] {
			st := Status{Lane: Lane(lane + 1), Slot: Slot(slot + 1), Spell: s.spell}
			if !s.readyAt.IsZero() {
				st.Tracking = true
				st.Remaining = max(0, s.readyAt.Sub(now))
			}
			out = append(out, st)
		}
	}
	return out
}

// Check fires the ready callback once for every cooldown that has elapsed.
func (t *Tracker) Check() {
	now := t.now()
	var ready []Use
	t.mu.Lock()
	for lane := range t.slots {
		for slot := range t.slots[lane] {
			s := &t.slots[lane][slot]
			if s.readyAt.IsZero() || s.notified || now.Before(s.readyAt) {
				continue
			}
			s.notified = true
			ready = append(ready, Use{Lane: Lane(lane + 1), Slot: Slot(slot + 1), Spell: s.spell, Cooldown: Cooldowns[s.spell], ReadyAt: s.readyAt})
		}
	}
	t.mu.Unlock()

	if t.onReady == nil {
		return
	}
	for _, u := range ready {
		t.onReady(u)
	}
}

// Run checks cooldowns every second until ctx is done.
func (t *Tracker) Run(ctx context.Context) error {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			t.Check()
		}
	}
}

// FormatRemaining renders a cooldown as M:SS, or READY once elapsed.
func FormatRemaining(d time.Duration) string {
	if d <= 0 {
		return "READY"
	}
	secs := int((d + time.Second - 1) / time.Second)
	return fmt.Sprintf("%d:%02d", secs/60, secs%60)
}
