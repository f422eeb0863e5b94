package lcu

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewTLSServer(handler)
	t.Cleanup(srv.Close)

	u, err := url.Parse(srv.URL)
	require.NoError(t, err)

	c := NewClient(Options{
		RequestTimeout:      time.Second,
		VerifyTimeout:       time.Second,
		ReconnectInterval:   10 * time.Millisecond,
		HealthCheckInterval: 10 * time.Millisecond,
		Static:              Credentials{Port: u.Port(), Token: "secret"},
	}, discardLogger())
	return c, srv
}

func summonerHandler(t *testing.T) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc(PathCurrentSummoner, func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		if !ok || user != "riot" || pass != "secret" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_, _ = w.Write([]byte(`{"summonerId": 42}`))
	})
	mux.HandleFunc("/lol-champ-select/v1/session/actions/7", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPatch, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		var body map[string]any
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, float64(157), body["championId"])
		w.WriteHeader(http.StatusNoContent)
	})
	return mux
}

func TestConnectAndRequest(t *testing.T) {
	c, _ := newTestClient(t, summonerHandler(t))

	var mu sync.Mutex
	var states []State
	c.OnStateChange(func(s State) {
		mu.Lock()
		states = append(states, s)
		mu.Unlock()
	})

	require.NoError(t, c.Connect(context.Background()))
	assert.True(t, c.Connected())

	resp, err := c.Request(context.Background(), http.MethodGet, PathCurrentSummoner, nil)
	require.NoError(t, err)
	assert.True(t, resp.OK())
	assert.Equal(t, int64(42), resp.Get("summonerId").Int())

	resp, err = c.Request(context.Background(), http.MethodPatch, ActionPath(7), map[string]int{"championId": 157})
	require.NoError(t, err)
	assert.Equal(t, http.StatusNoContent, resp.Status)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []State{StateConnecting, StateConnected}, states)
}

func TestRequestWhileDisconnected(t *testing.T) {
	c, _ := newTestClient(t, summonerHandler(t))

	_, err := c.Request(context.Background(), http.MethodGet, PathReadyCheck, nil)
	assert.ErrorIs(t, err, ErrNotConnected)
}

func TestConnectRejectsBadCredentials(t *testing.T) {
	c, _ := newTestClient(t, summonerHandler(t))
	c.opts.Static.Token = "wrong"

	err := c.Connect(context.Background())
	require.Error(t, err)
	assert.Equal(t, StateDisconnected, c.State())
}

func TestConnectWithoutClientProcess(t *testing.T) {
	c := NewClient(Options{}, discardLogger())
	c.discover = func(context.Context) (Credentials, error) { return Credentials{}, ErrNoClient }

	err := c.Connect(context.Background())
	assert.ErrorIs(t, err, ErrNoClient)
	assert.Equal(t, StateDisconnected, c.State())
}

func TestTransportFailureMarksDisconnected(t *testing.T) {
	c, srv := newTestClient(t, summonerHandler(t))
	require.NoError(t, c.Connect(context.Background()))

	srv.Close()

	_, err := c.Request(context.Background(), http.MethodGet, PathReadyCheck, nil)
	require.Error(t, err)
	assert.False(t, c.Connected())
}

func TestAutoReconnect(t *testing.T) {
	c, _ := newTestClient(t, summonerHandler(t))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	c.StartAutoReconnect(ctx)
	c.StartAutoReconnect(ctx)

	require.Eventually(t, c.Connected, 2*time.Second, 5*time.Millisecond)

	c.StopAutoReconnect()
	c.StopAutoReconnect()
}

func TestParseCommandLines(t *testing.T) {
	cases := []struct {
		name    string
		out     string
		want    Credentials
		wantErr error
	}{
		{
			name: "unix args",
			out:  "/usr/bin/zsh\n/Applications/LeagueClientUx --app-port=54321 --remoting-auth-token=abc_DEF-123 --foo\n",
			want: Credentials{Port: "54321", Token: "abc_DEF-123"},
		},
		{
			name: "windows quoted args",
			out:  `"C:/Riot Games/League of Legends/LeagueClientUx.exe" "--remoting-auth-token=tok" "--app-port=6000"` + "\r\n",
			want: Credentials{Port: "6000", Token: "tok"},
		},
		{
			name:    "missing token",
			out:     "LeagueClientUx --app-port=1\n",
			wantErr: ErrNoClient,
		},
		{
			name:    "no process",
			out:     "",
			wantErr: ErrNoClient,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := parseCommandLines([]byte(tc.out), "LeagueClientUx")
			if tc.wantErr != nil {
				assert.ErrorIs(t, err, tc.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}
