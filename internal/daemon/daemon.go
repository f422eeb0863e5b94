package daemon

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/marcin-skalski/lol-autopilot/internal/champions"
	"github.com/marcin-skalski/lol-autopilot/internal/champselect"
	"github.com/marcin-skalski/lol-autopilot/internal/config"
	"github.com/marcin-skalski/lol-autopilot/internal/lcu"
	"github.com/marcin-skalski/lol-autopilot/internal/readycheck"
	"github.com/marcin-skalski/lol-autopilot/internal/spells"
	"github.com/marcin-skalski/lol-autopilot/internal/stats"
	"github.com/marcin-skalski/lol-autopilot/internal/tui"
)

// Connector is the client transport. Reconnection is always available; the
// daemon owns its lifetime.
type Connector interface {
	Connected() bool
	State() lcu.State
	Request(ctx context.Context, method, path string, body any) (*lcu.Response, error)
	StartAutoReconnect(ctx context.Context)
	StopAutoReconnect()
}

type Sounds interface {
	PlayMatchFound()
	PlaySuccess()
}

// settings is the automation configuration resolved from a Config.
type settings struct {
	interval    time.Duration
	accept      bool
	acceptDelay time.Duration
	champSelect champselect.Settings
}

type Daemon struct {
	client Connector
	base   *champions.Table
	spells *spells.Tracker
	stats  *stats.Counters
	logger *slog.Logger

	champSelect *champselect.Controller
	readyCheck  *readycheck.Controller

	running        atomic.Bool
	// generation changes on every Start and Stop transition.
	generation     atomic.Uint64
	// seenGeneration is only touched by the Run goroutine.
	seenGeneration uint64

	mu       sync.Mutex
	settings settings
	table    *champions.Table
	lanes    map[int]config.LaneSpells
	pending  []champselect.Entry
	phase    string
}

func New(cfg *config.Config, client Connector, table *champions.Table, sounds Sounds, tracker *spells.Tracker, logger *slog.Logger) *Daemon {
	counters := &stats.Counters{}
	d := &Daemon{
		client:      client,
		base:        table,
		table:       table,
		spells:      tracker,
		stats:       counters,
		logger:      logger.With("component", "daemon"),
		champSelect: champselect.NewController(client, counters, sounds, logger),
		readyCheck:  readycheck.NewController(client, counters, sounds, logger),
	}
	d.ApplyConfig(cfg)
	return d
}

// ApplyConfig swaps the automation settings. Champion names are resolved here
// so the controllers only ever see ids.
func (d *Daemon) ApplyConfig(cfg *config.Config) {
	table := d.base.With(cfg.Champions)
	bans := d.resolve(table, "ban", cfg.Automation.Ban)
	picks := d.resolve(table, "pick", cfg.Automation.Pick)

	s := settings{
		interval:    cfg.PollInterval,
		accept:      cfg.AcceptEnabled(),
		acceptDelay: cfg.Automation.Accept.Delay,
		champSelect: champselect.Settings{
			BanEnabled:  cfg.Automation.Ban.Enabled,
			Bans:        bans,
			PickEnabled: cfg.Automation.Pick.Enabled,
			Picks:       picks,
			Sound:       cfg.SoundEnabled(),
			HoverSettle: cfg.Automation.HoverSettle,
		},
	}

	d.mu.Lock()
	d.table = table
	d.settings = s
	lanesChanged := !maps.Equal(d.lanes, cfg.Spells.Lanes)
	d.lanes = maps.Clone(cfg.Spells.Lanes)
	d.mu.Unlock()

	if lanesChanged && d.spells != nil {
		d.applyLanes(cfg.Spells.Lanes)
	}

	d.logger.Info("automation settings applied",
		"accept", s.accept,
		"accept_delay", s.acceptDelay,
		"ban", s.champSelect.BanEnabled,
		"pick", s.champSelect.PickEnabled,
		"sound", s.champSelect.Sound)
}

func (d *Daemon) resolve(table *champions.Table, kind string, cfg config.ChampionsConfig) []champions.ID {
	ids, unknown := table.Resolve(cfg.Champions)
	for _, name := range unknown {
		d.logger.Warn("unknown champion", "kind", kind, "name", name)
	}
	if !cfg.Enabled {
		return ids
	}
	if len(ids) == 0 {
		d.logger.Warn("no valid champion for "+kind, "configured", len(cfg.Champions))
	} else {
		d.logger.Info("resolved "+kind+" champions", "count", len(ids))
	}
	return ids
}

func (d *Daemon) applyLanes(lanes map[int]config.LaneSpells) {
	for lane, ls := range lanes {
		for slot, name := range map[spells.Slot]string{spells.Slot1: ls.Spell1, spells.Slot2: ls.Spell2} {
			if name == "" {
				continue
			}
			if err := d.spells.SetSpell(spells.Lane(lane), slot, name); err != nil {
				d.logger.Warn("invalid spell override", "lane", lane, "slot", int(slot), "err", err)
			}
		}
	}
}

func (d *Daemon) current() settings {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.settings
}

// Start enables automation. The loop picks it up on its next tick.
func (d *Daemon) Start() {
	if !d.running.Swap(true) {
		d.generation.Add(1)
		d.logger.Info("automation started")
	}
}

// Stop disables automation. An attempt in flight finishes first; the loop
// clears champ-select state on its next tick, even if Start came in between.
func (d *Daemon) Stop() {
	if d.running.Swap(false) {
		d.generation.Add(1)
		d.logger.Info("automation stopped")
	}
}

func (d *Daemon) Running() bool { return d.running.Load() }

func (d *Daemon) ResetStats() {
	d.stats.Reset()
	d.logger.Info("statistics reset")
}

func (d *Daemon) Stats() stats.Snapshot { return d.stats.Snapshot() }

func (d *Daemon) MarkSpell(lane spells.Lane, slot spells.Slot) error {
	use, err := d.spells.MarkUsed(lane, slot)
	if err != nil {
		return err
	}
	d.logger.Info("⏱️ spell used", "lane", use.Lane.String(), "spell", string(use.Spell), "ready_in", use.Cooldown)
	return nil
}

func (d *Daemon) ResetSpells() {
	d.spells.Reset()
	d.mu.Lock()
	lanes := maps.Clone(d.lanes)
	d.mu.Unlock()
	d.applyLanes(lanes)
	d.logger.Info("spell timers reset")
}

func (d *Daemon) Run(ctx context.Context) error {
	s := d.current()
	d.logger.Info("daemon started", "poll_interval", s.interval)

	d.client.StartAutoReconnect(ctx)
	defer d.client.StopAutoReconnect()

	interval := s.interval
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		d.tick(ctx)

		if s := d.current(); s.interval != interval {
			interval = s.interval
			ticker.Reset(interval)
		}

		select {
		case <-ctx.Done():
			d.logger.Info("daemon stopped")
			return nil
		case <-ticker.C:
		}
	}
}

// tick runs one poll cycle. No error or panic from a controller ends the loop.
func (d *Daemon) tick(ctx context.Context) {
	if gen := d.generation.Load(); gen != d.seenGeneration {
		d.seenGeneration = gen
		d.champSelect.Reset()
		if !d.running.Load() {
			d.publish(ctx, false)
		}
	}
	if !d.running.Load() {
		return
	}

	if !d.client.Connected() {
		d.publish(ctx, false)
		return
	}

	s := d.current()
	if s.accept {
		d.safeCall("readycheck", func() error {
			return d.readyCheck.Poll(ctx, readycheck.Settings{Delay: s.acceptDelay, Sound: s.champSelect.Sound})
		})
	}
	if s.champSelect.BanEnabled || s.champSelect.PickEnabled {
		d.safeCall("champselect", func() error {
			return d.champSelect.Poll(ctx, s.champSelect)
		})
	}
	d.publish(ctx, true)
}

func (d *Daemon) safeCall(name string, fn func() error) {
	defer func() {
		if r := recover(); r != nil {
			d.stats.Error()
			d.logger.Error("poll panicked", "controller", name, "panic", fmt.Sprint(r))
		}
	}()
	if err := fn(); err != nil {
		d.stats.Error()
		d.logger.Error("poll failed", "controller", name, "err", err)
	}
}

// publish copies worker-owned state for Snapshot readers.
func (d *Daemon) publish(ctx context.Context, connected bool) {
	pending := d.champSelect.Pending()
	phase := ""
	if connected {
		phase = d.gameflowPhase(ctx)
	}
	d.mu.Lock()
	d.pending = pending
	d.phase = phase
	d.mu.Unlock()
}

func (d *Daemon) gameflowPhase(ctx context.Context) string {
	resp, err := d.client.Request(ctx, http.MethodGet, lcu.PathGameflowPhase, nil)
	if err != nil || !resp.OK() {
		return ""
	}
	return resp.Get("@this").String()
}

func (d *Daemon) Snapshot() tui.Snapshot {
	d.mu.Lock()
	s := d.settings
	table := d.table
	pending := append([]champselect.Entry(nil), d.pending...)
	phase := d.phase
	d.mu.Unlock()

	snap := tui.Snapshot{
		Timestamp:  time.Now(),
		Running:    d.running.Load(),
		Connection: string(d.client.State()),
		Phase:      phase,
		Stats:      d.stats.Snapshot(),
		Accept:     tui.AcceptState{Enabled: s.accept, Delay: s.acceptDelay},
		Ban:        tui.ListState{Enabled: s.champSelect.BanEnabled, Champions: names(table, s.champSelect.Bans)},
		Pick:       tui.ListState{Enabled: s.champSelect.PickEnabled, Champions: names(table, s.champSelect.Picks)},
	}
	for _, e := range pending {
		snap.Pending = append(snap.Pending, tui.PendingState{
			ActionID: e.ActionID,
			Kind:     string(e.Kind),
			Champion: table.Name(e.ChampionID),
			Attempts: e.Attempts,
		})
	}
	if d.spells != nil {
		for _, st := range d.spells.Status() {
			snap.Spells = append(snap.Spells, tui.SpellState{
				Lane:      st.Lane.String(),
				Slot:      int(st.Slot),
				Spell:     string(st.Spell),
				Remaining: st.Remaining,
				Tracking:  st.Tracking,
			})
		}
	}
	return snap
}

func names(table *champions.Table, ids []champions.ID) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		out = append(out, table.Name(id))
	}
	return out
}
