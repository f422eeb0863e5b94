package champselect

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/marcin-skalski/lol-autopilot/internal/champions"
	"github.com/marcin-skalski/lol-autopilot/internal/lcu"
	"github.com/marcin-skalski/lol-autopilot/internal/stats"
)

// Requester is the subset of the client transport the controller needs.
type Requester interface {
	Request(ctx context.Context, method, path string, body any) (*lcu.Response, error)
}

type Sounds interface {
	PlaySuccess()
}

// Settings is the automation configuration read at the start of each poll.
type Settings struct {
	BanEnabled  bool
	Bans        []champions.ID
	PickEnabled bool
	Picks       []champions.ID
	Sound       bool
	// HoverSettle is the pause between hover and confirm.
	HoverSettle time.Duration
}

// Controller drives bans and picks for the local player. A write is never
// trusted: an action only counts as done once a later session read reports
// it completed, and until then every poll repeats the hover and confirm.
type Controller struct {
	api    Requester
	stats  *stats.Counters
	sounds Sounds
	logger *slog.Logger

	tracker   *Tracker
	completed map[int]bool
}

func NewController(api Requester, counters *stats.Counters, sounds Sounds, logger *slog.Logger) *Controller {
	return &Controller{
		api:       api,
		stats:     counters,
		sounds:    sounds,
		logger:    logger.With("component", "champselect"),
		tracker:   NewTracker(),
		completed: make(map[int]bool),
	}
}

// Reset forgets in-flight and completed actions.
func (c *Controller) Reset() {
	c.tracker.Clear()
	clear(c.completed)
}

// Pending returns copies of the in-flight actions.
func (c *Controller) Pending() []Entry {
	return c.tracker.Entries()
}

// Poll reads the session and performs at most one ban or pick attempt.
func (c *Controller) Poll(ctx context.Context, s Settings) error {
	resp, err := c.api.Request(ctx, http.MethodGet, lcu.PathChampSelect, nil)
	if err != nil || resp.Status != http.StatusOK {
		c.Reset()
		return nil
	}
	var session Session
	if err := resp.Decode(&session); err != nil {
		c.Reset()
		return fmt.Errorf("champ select session: %w", err)
	}

	resp, err = c.api.Request(ctx, http.MethodGet, lcu.PathCurrentSummoner, nil)
	if err != nil || resp.Status != http.StatusOK {
		c.Reset()
		return nil
	}
	summonerID := resp.Get("summonerId")
	if !summonerID.Exists() {
		c.Reset()
		return nil
	}

	cell, ok := session.LocalCell(summonerID.Int())
	if !ok {
		return nil
	}

	banned := session.Banned()
	unavailablePicks := banned.Union(session.Picked())

	for _, group := range session.Actions {
		for _, a := range group {
			if a.Completed {
				if e, ok := c.tracker.Complete(a.ID); ok {
					c.finalize(e, s.Sound)
				}
				continue
			}
			if a.ActorCellID != cell || !a.IsInProgress || c.completed[a.ID] {
				continue
			}

			switch {
			case a.Type == KindBan && s.BanEnabled:
				if champ, ok := Resolve(s.Bans, banned); ok {
					c.attempt(ctx, a.ID, champ, KindBan, s.HoverSettle)
					return nil
				}
			case a.Type == KindPick && s.PickEnabled:
				if champ, ok := Resolve(s.Picks, unavailablePicks); ok {
					c.attempt(ctx, a.ID, champ, KindPick, s.HoverSettle)
					return nil
				}
			}
		}
	}
	return nil
}

func (c *Controller) finalize(e Entry, sound bool) {
	c.completed[e.ActionID] = true
	switch e.Kind {
	case KindBan:
		c.stats.ChampionBanned()
	case KindPick:
		c.stats.ChampionPicked()
	}
	if sound && c.sounds != nil {
		c.sounds.PlaySuccess()
	}
	c.logger.Info(fmt.Sprintf("✅ %s verified", strings.ToUpper(string(e.Kind))),
		"action_id", e.ActionID, "champion_id", e.ChampionID, "attempts", e.Attempts)
}

// attempt hovers the champion, waits for the hover to settle and confirms.
// Write results are only logged; the next poll decides whether it worked.
func (c *Controller) attempt(ctx context.Context, actionID int, champ champions.ID, kind Kind, settle time.Duration) {
	attempts := c.tracker.Begin(actionID, kind, champ)
	log := c.logger.With("action_id", actionID, "kind", kind, "champion_id", champ)
	switch {
	case attempts == 1:
		log.Info(fmt.Sprintf("%s %s champion", kind.symbol(), kind.verb()))
	case attempts%3 == 0:
		log.Info(fmt.Sprintf("🔄 retrying %s", kind), "attempt", attempts)
	}

	path := lcu.ActionPath(actionID)
	if _, err := c.api.Request(ctx, http.MethodPatch, path, map[string]any{"championId": champ}); err != nil {
		log.Debug("hover failed", "err", err)
	}

	if err := sleep(ctx, settle); err != nil {
		return
	}

	if _, err := c.api.Request(ctx, http.MethodPatch, path, map[string]any{"championId": champ, "completed": true}); err != nil {
		log.Debug("confirm failed", "err", err)
	}
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
