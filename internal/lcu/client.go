package lcu

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/tidwall/gjson"
)

// API paths used by the bot.
const (
	PathReadyCheck       = "/lol-matchmaking/v1/ready-check"
	PathReadyCheckAccept = "/lol-matchmaking/v1/ready-check/accept"
	PathChampSelect      = "/lol-champ-select/v1/session"
	PathCurrentSummoner  = "/lol-summoner/v1/current-summoner"
	PathGameflowPhase    = "/lol-gameflow/v1/gameflow-phase"
)

// ActionPath returns the champ-select action resource for id.
func ActionPath(id int) string {
	return fmt.Sprintf("%s/actions/%d", PathChampSelect, id)
}

// ErrNotConnected is returned by Request while no client connection is established.
var ErrNotConnected = errors.New("not connected to league client")

type State string

const (
	StateDisconnected State = "disconnected"
	StateConnecting   State = "connecting"
	StateConnected    State = "connected"
	StateError        State = "error"
)

type Response struct {
	Status int
	Body   []byte
}

func (r *Response) OK() bool { return r.Status >= 200 && r.Status < 300 }

func (r *Response) Decode(v any) error {
	if err := json.Unmarshal(r.Body, v); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// Get reads a single field from the body using gjson path syntax.
func (r *Response) Get(path string) gjson.Result {
	return gjson.GetBytes(r.Body, path)
}

type Options struct {
	ProcessName         string
	RequestTimeout      time.Duration
	VerifyTimeout       time.Duration
	ReconnectInterval   time.Duration
	HealthCheckInterval time.Duration
	// Static credentials skip process discovery when valid.
	Static Credentials
	// Host defaults to 127.0.0.1.
	Host string
}

type Client struct {
	opts     Options
	logger   *slog.Logger
	http     *http.Client
	discover func(ctx context.Context) (Credentials, error)

	mu        sync.RWMutex
	baseURL   string
	token     string
	state     State
	callbacks []func(State)
	lastCheck time.Time

	reconnectMu   sync.Mutex
	stopReconnect context.CancelFunc
	reconnectDone chan struct{}
}

func NewClient(opts Options, logger *slog.Logger) *Client {
	if opts.Host == "" {
		opts.Host = "127.0.0.1"
	}
	c := &Client{
		opts:   opts,
		logger: logger.With("component", "lcu"),
		http: &http.Client{
			// The client serves a self-signed certificate on loopback.
			Transport: &http.Transport{
				TLSClientConfig: &tls.Config{InsecureSkipVerify: true}, //nolint:gosec
			},
		},
		state: StateDisconnected,
	}
	c.discover = func(ctx context.Context) (Credentials, error) {
		if c.opts.Static.Valid() {
			return c.opts.Static, nil
		}
		return discoverCredentials(ctx, c.opts.ProcessName)
	}
	return c
}

func (c *Client) State() State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

func (c *Client) Connected() bool { return c.State() == StateConnected }

// OnStateChange registers fn to be called on every connection state transition.
func (c *Client) OnStateChange(fn func(State)) {
	c.mu.Lock()
	c.callbacks = append(c.callbacks, fn)
	c.mu.Unlock()
}

func (c *Client) setState(s State) {
	c.mu.Lock()
	if c.state == s {
		c.mu.Unlock()
		return
	}
	c.state = s
	callbacks := append([]func(State){}, c.callbacks...)
	c.mu.Unlock()

	c.logger.Debug("connection state changed", "state", s)
	for _, fn := range callbacks {
		fn(s)
	}
}

// Connect locates the client, stores its credentials and verifies them with
// a summoner read.
func (c *Client) Connect(ctx context.Context) error {
	c.setState(StateConnecting)

	creds, err := c.discover(ctx)
	if err != nil {
		if errors.Is(err, ErrNoClient) {
			c.setState(StateDisconnected)
		} else {
			c.setState(StateError)
		}
		return fmt.Errorf("discover client: %w", err)
	}

	c.mu.Lock()
	c.baseURL = "https://" + c.opts.Host + ":" + creds.Port
	c.token = creds.Token
	c.mu.Unlock()

	if err := c.verify(ctx); err != nil {
		c.setState(StateDisconnected)
		return fmt.Errorf("verify connection: %w", err)
	}

	c.mu.Lock()
	c.lastCheck = time.Now()
	c.mu.Unlock()
	c.setState(StateConnected)
	c.logger.Info("connected to league client", "port", creds.Port)
	return nil
}

// Disconnect drops the stored credentials.
func (c *Client) Disconnect() {
	c.mu.Lock()
	c.baseURL = ""
	c.token = ""
	c.mu.Unlock()
	c.setState(StateDisconnected)
}

// HealthCheck re-verifies an established connection.
func (c *Client) HealthCheck(ctx context.Context) bool {
	if !c.Connected() {
		return false
	}
	if err := c.verify(ctx); err != nil {
		c.logger.Warn("health check failed", "err", err)
		c.setState(StateDisconnected)
		return false
	}
	return true
}

func (c *Client) verify(ctx context.Context) error {
	resp, err := c.do(ctx, c.opts.VerifyTimeout, http.MethodGet, PathCurrentSummoner, nil)
	if err != nil {
		return err
	}
	if resp.Status != http.StatusOK {
		return fmt.Errorf("unexpected status %d", resp.Status)
	}
	return nil
}

// Request performs an authenticated call. A nil body sends no payload.
// Transport failures mark the connection as lost.
func (c *Client) Request(ctx context.Context, method, path string, body any) (*Response, error) {
	if !c.Connected() {
		return nil, ErrNotConnected
	}
	resp, err := c.do(ctx, c.opts.RequestTimeout, method, path, body)
	if err != nil {
		if ctx.Err() == nil {
			c.logger.Warn("connection lost", "path", path, "err", err)
			c.setState(StateDisconnected)
		}
		return nil, err
	}
	return resp, nil
}

func (c *Client) do(ctx context.Context, timeout time.Duration, method, path string, body any) (*Response, error) {
	c.mu.RLock()
	baseURL, token := c.baseURL, c.token
	c.mu.RUnlock()
	if baseURL == "" {
		return nil, ErrNotConnected
	}

	var payload io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode %s %s: %w", method, path, err)
		}
		payload = bytes.NewReader(data)
	}

	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, method, baseURL+path, payload)
	if err != nil {
		return nil, fmt.Errorf("build %s %s: %w", method, path, err)
	}
	req.SetBasicAuth("riot", token)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	c.logger.Debug("request", "method", method, "path", path)
	res, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer res.Body.Close()

	data, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, fmt.Errorf("read %s %s: %w", method, path, err)
	}
	return &Response{Status: res.StatusCode, Body: data}, nil
}

// StartAutoReconnect keeps the connection alive in the background until ctx
// ends or StopAutoReconnect is called. Calling it twice is a no-op.
func (c *Client) StartAutoReconnect(ctx context.Context) {
	c.reconnectMu.Lock()
	defer c.reconnectMu.Unlock()
	if c.stopReconnect != nil {
		return
	}

	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	c.stopReconnect = cancel
	c.reconnectDone = done

	go func() {
		defer close(done)
		c.reconnectLoop(ctx)
	}()
}

func (c *Client) StopAutoReconnect() {
	c.reconnectMu.Lock()
	cancel, done := c.stopReconnect, c.reconnectDone
	c.stopReconnect, c.reconnectDone = nil, nil
	c.reconnectMu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}

func (c *Client) reconnectLoop(ctx context.Context) {
	interval := c.opts.ReconnectInterval
	if interval <= 0 {
		interval = 2 * time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if !c.Connected() {
			if err := c.Connect(ctx); err != nil {
				c.logger.Debug("reconnect failed", "err", err)
			}
		} else {
			c.mu.RLock()
			due := time.Since(c.lastCheck) >= c.opts.HealthCheckInterval
			c.mu.RUnlock()
			if due {
				c.mu.Lock()
				c.lastCheck = time.Now()
				c.mu.Unlock()
				c.HealthCheck(ctx)
			}
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
