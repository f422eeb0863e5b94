package daemon

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/marcin-skalski/lol-autopilot/internal/champions"
	"github.com/marcin-skalski/lol-autopilot/internal/config"
	"github.com/marcin-skalski/lol-autopilot/internal/lcu"
	"github.com/marcin-skalski/lol-autopilot/internal/notify"
	"github.com/marcin-skalski/lol-autopilot/internal/spells"
	"github.com/marcin-skalski/lol-autopilot/internal/tui"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const banSession = `{
	"actions": [[{"id": 7, "type": "ban", "actorCellId": 2, "isInProgress": true, "completed": false}]],
	"myTeam": [{"cellId": 2, "summonerId": 1001}],
	"theirTeam": []
}`

type fakeClient struct {
	mu        sync.Mutex
	connected bool
	responses map[string]*lcu.Response
	panicOn   string
	requests  []string
	reconnect bool
}

func newFakeClient() *fakeClient {
	return &fakeClient{
		connected: true,
		responses: map[string]*lcu.Response{
			lcu.PathCurrentSummoner: {Status: http.StatusOK, Body: []byte(`{"summonerId": 1001}`)},
		},
	}
}

func (f *fakeClient) Connected() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.connected
}

func (f *fakeClient) State() lcu.State {
	if f.Connected() {
		return lcu.StateConnected
	}
	return lcu.StateDisconnected
}

func (f *fakeClient) Request(_ context.Context, method, path string, _ any) (*lcu.Response, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, method+" "+path)
	if path == f.panicOn {
		panic("boom")
	}
	if method != http.MethodGet {
		return &lcu.Response{Status: http.StatusNoContent}, nil
	}
	if r, ok := f.responses[path]; ok {
		return r, nil
	}
	return &lcu.Response{Status: http.StatusNotFound}, nil
}

func (f *fakeClient) StartAutoReconnect(context.Context) {
	f.mu.Lock()
	f.reconnect = true
	f.mu.Unlock()
}

func (f *fakeClient) StopAutoReconnect() {
	f.mu.Lock()
	f.reconnect = false
	f.mu.Unlock()
}

func (f *fakeClient) set(path, body string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.responses[path] = &lcu.Response{Status: http.StatusOK, Body: []byte(body)}
}

func (f *fakeClient) sent(method, path string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, r := range f.requests {
		if r == method+" "+path {
			n++
		}
	}
	return n
}

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testConfig(t *testing.T, yaml string) *config.Config {
	t.Helper()
	cfg, err := config.Parse([]byte("workdir: " + t.TempDir() + "\n" + yaml))
	require.NoError(t, err)
	cfg.Automation.HoverSettle = 0
	return cfg
}

func newTestDaemon(t *testing.T, client *fakeClient, yaml string) *Daemon {
	t.Helper()
	table := champions.NewTable(map[string]int{"Yasuo": 157, "Zed": 238, "Lee Sin": 64})
	return New(testConfig(t, yaml), client, table, notify.NewSounds(discard()), spells.NewTracker(nil), discard())
}

func TestTickIdleWhenStopped(t *testing.T) {
	client := newFakeClient()
	d := newTestDaemon(t, client, "")

	d.tick(context.Background())

	assert.Empty(t, client.requests)
	assert.False(t, d.Running())
}

func TestTickSkipsWhileDisconnected(t *testing.T) {
	client := newFakeClient()
	client.connected = false
	d := newTestDaemon(t, client, "")
	d.Start()

	d.tick(context.Background())

	assert.Empty(t, client.requests)
	assert.Equal(t, string(lcu.StateDisconnected), d.Snapshot().Connection)
}

func TestTickAcceptsReadyCheck(t *testing.T) {
	client := newFakeClient()
	client.set(lcu.PathReadyCheck, `{"state": "InProgress", "playerResponse": "None"}`)
	d := newTestDaemon(t, client, "")
	d.Start()

	d.tick(context.Background())

	assert.Equal(t, 1, client.sent(http.MethodPost, lcu.PathReadyCheckAccept))
	assert.Equal(t, 1, d.Stats().MatchesAccepted)
	assert.Zero(t, client.sent(http.MethodGet, lcu.PathChampSelect), "champ select not polled without ban or pick")
}

func TestTickSkipsAcceptWhenDisabled(t *testing.T) {
	client := newFakeClient()
	client.set(lcu.PathReadyCheck, `{"state": "InProgress", "playerResponse": "None"}`)
	d := newTestDaemon(t, client, "automation: {accept: {enabled: false}}")
	d.Start()

	d.tick(context.Background())

	assert.Zero(t, client.sent(http.MethodGet, lcu.PathReadyCheck))
}

func TestTickRecoversPanics(t *testing.T) {
	client := newFakeClient()
	client.panicOn = lcu.PathReadyCheck
	client.set(lcu.PathChampSelect, banSession)
	d := newTestDaemon(t, client, "automation: {ban: {enabled: true, champions: [Zed]}}")
	d.Start()

	require.NotPanics(t, func() { d.tick(context.Background()) })

	assert.Equal(t, 1, d.Stats().Errors)
	assert.Equal(t, 2, client.sent(http.MethodPatch, lcu.ActionPath(7)), "champ select still runs after a panic")
}

func TestTickCountsControllerErrors(t *testing.T) {
	client := newFakeClient()
	client.set(lcu.PathChampSelect, `{"actions": "nope"}`)
	d := newTestDaemon(t, client, "automation: {pick: {enabled: true, champions: [Yasuo]}}")
	d.Start()

	d.tick(context.Background())
	d.tick(context.Background())

	assert.Equal(t, 2, d.Stats().Errors)
}

func TestStopClearsPendingActions(t *testing.T) {
	client := newFakeClient()
	client.set(lcu.PathChampSelect, banSession)
	d := newTestDaemon(t, client, "automation: {ban: {enabled: true, champions: [Zed, Yasuo]}}")
	d.Start()

	d.tick(context.Background())
	pending := d.Snapshot().Pending
	require.Len(t, pending, 1)
	assert.Equal(t, tui.PendingState{ActionID: 7, Kind: "ban", Champion: "Zed", Attempts: 1}, pending[0])

	d.Stop()
	d.tick(context.Background())
	assert.Empty(t, d.Snapshot().Pending)

	// Restarting treats the action as new.
	d.Start()
	d.tick(context.Background())
	require.Len(t, d.Snapshot().Pending, 1)
	assert.Equal(t, 1, d.Snapshot().Pending[0].Attempts)
}

func TestStopStartBetweenTicksClearsTracker(t *testing.T) {
	client := newFakeClient()
	client.set(lcu.PathChampSelect, banSession)
	d := newTestDaemon(t, client, "automation: {ban: {enabled: true, champions: [Zed]}}")
	d.Start()

	d.tick(context.Background())
	require.Len(t, d.Snapshot().Pending, 1)

	d.Stop()
	d.Start()
	d.tick(context.Background())

	pending := d.Snapshot().Pending
	require.Len(t, pending, 1)
	assert.Equal(t, 1, pending[0].Attempts)
}

func TestTickMissingFieldsAreNotErrors(t *testing.T) {
	client := newFakeClient()
	client.set(lcu.PathReadyCheck, `{"playerResponse": "None"}`)
	client.set(lcu.PathCurrentSummoner, `{}`)
	client.set(lcu.PathChampSelect, banSession)
	d := newTestDaemon(t, client, "automation: {ban: {enabled: true, champions: [Zed]}}")
	d.Start()

	d.tick(context.Background())

	assert.Zero(t, d.Stats().Errors)
	assert.Zero(t, client.sent(http.MethodPost, lcu.PathReadyCheckAccept))
	assert.Zero(t, client.sent(http.MethodPatch, lcu.ActionPath(7)))
}

func TestApplyConfigUpdatesHoverSettle(t *testing.T) {
	d := newTestDaemon(t, newFakeClient(), "")
	assert.Zero(t, d.current().champSelect.HoverSettle)

	cfg, err := config.Parse([]byte("workdir: " + t.TempDir() + "\nautomation: {hover_settle: 150ms}\n"))
	require.NoError(t, err)
	d.ApplyConfig(cfg)

	assert.Equal(t, 150*time.Millisecond, d.current().champSelect.HoverSettle)
}

func TestApplyConfigResolvesNames(t *testing.T) {
	client := newFakeClient()
	d := newTestDaemon(t, client, `
champions: {Custom: 9001}
automation: {ban: {enabled: true, champions: [yasuo, Nobody, "64"]}, pick: {enabled: true, champions: [Custom]}}
`)

	snap := d.Snapshot()
	assert.True(t, snap.Ban.Enabled)
	assert.Equal(t, []string{"Yasuo", "Lee Sin"}, snap.Ban.Champions)
	assert.Equal(t, []string{"Custom"}, snap.Pick.Champions)

	d.ApplyConfig(testConfig(t, "automation: {accept: {enabled: false, delay: 2s}}"))
	snap = d.Snapshot()
	assert.False(t, snap.Ban.Enabled)
	assert.Empty(t, snap.Ban.Champions)
	assert.False(t, snap.Accept.Enabled)
	assert.Equal(t, 2*time.Second, snap.Accept.Delay)
}

func TestSnapshotIncludesPhaseAndSpells(t *testing.T) {
	client := newFakeClient()
	client.set(lcu.PathGameflowPhase, `"ChampSelect"`)
	d := newTestDaemon(t, client, "spells: {lanes: {1: {spell2: ignite}}}")
	d.Start()

	d.tick(context.Background())
	require.NoError(t, d.MarkSpell(spells.Top, spells.Slot1))

	snap := d.Snapshot()
	assert.True(t, snap.Running)
	assert.Equal(t, "ChampSelect", snap.Phase)
	require.Len(t, snap.Spells, 10)
	assert.Equal(t, "flash", snap.Spells[0].Spell)
	assert.True(t, snap.Spells[0].Tracking)
	assert.Equal(t, "ignite", snap.Spells[1].Spell)

	d.ResetSpells()
	snap = d.Snapshot()
	assert.False(t, snap.Spells[0].Tracking)
	assert.Equal(t, "ignite", snap.Spells[1].Spell, "overrides survive a reset")
}

func TestResetStats(t *testing.T) {
	client := newFakeClient()
	client.set(lcu.PathReadyCheck, `{"state": "InProgress", "playerResponse": "None"}`)
	d := newTestDaemon(t, client, "")
	d.Start()
	d.tick(context.Background())
	require.Equal(t, 1, d.Stats().MatchesAccepted)

	d.ResetStats()
	assert.Zero(t, d.Stats().MatchesAccepted)
}

func TestRunManagesReconnect(t *testing.T) {
	client := newFakeClient()
	d := newTestDaemon(t, client, "poll_interval: 10ms")

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- d.Run(ctx) }()

	require.Eventually(t, func() bool {
		client.mu.Lock()
		defer client.mu.Unlock()
		return client.reconnect
	}, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("daemon did not stop")
	}
	assert.False(t, client.reconnect)
}
