package readycheck

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/marcin-skalski/lol-autopilot/internal/lcu"
	"github.com/marcin-skalski/lol-autopilot/internal/stats"
)

type Requester interface {
	Request(ctx context.Context, method, path string, body any) (*lcu.Response, error)
}

type Sounds interface {
	PlayMatchFound()
	PlaySuccess()
}

type Settings struct {
	Delay time.Duration
	Sound bool
}

// Controller accepts a pending ready-check. It keeps no state between polls:
// a failed accept leaves the check pending and the next poll tries again.
type Controller struct {
	api    Requester
	stats  *stats.Counters
	sounds Sounds
	logger *slog.Logger
}

func NewController(api Requester, counters *stats.Counters, sounds Sounds, logger *slog.Logger) *Controller {
	return &Controller{
		api:    api,
		stats:  counters,
		sounds: sounds,
		logger: logger.With("component", "readycheck"),
	}
}

func (c *Controller) Poll(ctx context.Context, s Settings) error {
	resp, err := c.api.Request(ctx, http.MethodGet, lcu.PathReadyCheck, nil)
	if err != nil || resp.Status != http.StatusOK {
		return nil
	}
	state := resp.Get("state")
	if !state.Exists() {
		return nil
	}
	if state.String() != "InProgress" || resp.Get("playerResponse").String() != "None" {
		return nil
	}

	if s.Sound && c.sounds != nil {
		c.sounds.PlayMatchFound()
	}
	if s.Delay > 0 {
		c.logger.Info("🎮 match found, waiting before accept", "delay", s.Delay)
		t := time.NewTimer(s.Delay)
		select {
		case <-ctx.Done():
			t.Stop()
			return nil
		case <-t.C:
		}
	}

	c.logger.Info("✅ accepting match")
	resp, err = c.api.Request(ctx, http.MethodPost, lcu.PathReadyCheckAccept, nil)
	if err != nil {
		c.logger.Warn("accept failed", "err", err)
		return nil
	}
	if resp.Status != http.StatusOK && resp.Status != http.StatusNoContent {
		c.logger.Warn("accept rejected", "status", resp.Status)
		return nil
	}

	c.stats.MatchAccepted()
	if s.Sound && c.sounds != nil {
		c.sounds.PlaySuccess()
	}
	return nil
}
