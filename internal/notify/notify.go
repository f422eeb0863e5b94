package notify

import (
	"log/slog"
	"sync"
	"time"
)

type Cue string

const (
	CueMatchFound   Cue = "match_found"
	CueSuccess      Cue = "success"
	CueNotification Cue = "notification"
)

// Sounds receives fire-and-forget sound cues. Playback belongs to the
// presentation layer; Sounds records the latest cue so it can be shown or
// played there.
type Sounds struct {
	logger *slog.Logger

	mu   sync.Mutex
	last Cue
	at   time.Time
}

func NewSounds(logger *slog.Logger) *Sounds {
	return &Sounds{logger: logger.With("component", "sound")}
}

func (s *Sounds) PlayMatchFound()   { s.play(CueMatchFound) }
func (s *Sounds) PlaySuccess()      { s.play(CueSuccess) }
func (s *Sounds) PlayNotification() { s.play(CueNotification) }

func (s *Sounds) play(c Cue) {
	s.mu.Lock()
	s.last = c
	s.at = time.Now()
	s.mu.Unlock()
	s.logger.Debug("sound cue", "cue", c)
}

// Last returns the most recent cue and when it fired.
func (s *Sounds) Last() (Cue, time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last, s.at
}
