package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	EnvLCUPort  = "LOL_AUTOPILOT_LCU_PORT"
	EnvLCUToken = "LOL_AUTOPILOT_LCU_TOKEN"
	EnvLogLevel = "LOL_AUTOPILOT_LOG_LEVEL"
)

const maxAcceptDelay = 10 * time.Second

type Config struct {
	PollInterval time.Duration    `yaml:"-"`
	RawInterval  string           `yaml:"poll_interval"`
	Workdir      string           `yaml:"workdir"`
	LogFile      string           `yaml:"log_file"`
	LCU          LCUConfig        `yaml:"lcu"`
	Automation   AutomationConfig `yaml:"automation"`
	Champions    map[string]int   `yaml:"champions"`
	Spells       SpellsConfig     `yaml:"spells"`
	Log          LogConfig        `yaml:"log"`
	TUI          TUIConfig        `yaml:"tui"`
}

type LCUConfig struct {
	ProcessName         string        `yaml:"process_name"`
	Port                string        `yaml:"port"`
	Token               string        `yaml:"token"`
	RequestTimeout      time.Duration `yaml:"-"`
	RawRequestTimeout   string        `yaml:"request_timeout"`
	VerifyTimeout       time.Duration `yaml:"-"`
	RawVerifyTimeout    string        `yaml:"verify_timeout"`
	ReconnectInterval   time.Duration `yaml:"-"`
	RawReconnect        string        `yaml:"reconnect_interval"`
	HealthCheckInterval time.Duration `yaml:"-"`
	RawHealthCheck      string        `yaml:"health_check_interval"`
}

type AutomationConfig struct {
	Accept         AcceptConfig    `yaml:"accept"`
	Ban            ChampionsConfig `yaml:"ban"`
	Pick           ChampionsConfig `yaml:"pick"`
	Sound          *bool           `yaml:"sound,omitempty"`
	HoverSettle    time.Duration   `yaml:"-"`
	RawHoverSettle string          `yaml:"hover_settle"`
}

type AcceptConfig struct {
	Enabled  *bool         `yaml:"enabled,omitempty"`
	Delay    time.Duration `yaml:"-"`
	RawDelay string        `yaml:"delay"`
}

// ChampionsConfig is an ordered priority list of display names or numeric ids.
type ChampionsConfig struct {
	Enabled   bool     `yaml:"enabled"`
	Champions []string `yaml:"champions"`
}

type SpellsConfig struct {
	Lanes map[int]LaneSpells `yaml:"lanes"`
}

type LaneSpells struct {
	Spell1 string `yaml:"spell1"`
	Spell2 string `yaml:"spell2"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

type TUIConfig struct {
	RefreshInterval time.Duration `yaml:"-"`
	RawInterval     string        `yaml:"refresh_interval"`
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return Parse(data)
}

func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	cfg.applyEnv()

	if err := cfg.setDefaults(); err != nil {
		return nil, err
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &cfg, nil
}

// AcceptEnabled reports whether ready-checks are accepted automatically.
func (c *Config) AcceptEnabled() bool { return *c.Automation.Accept.Enabled }

func (c *Config) SoundEnabled() bool { return *c.Automation.Sound }

func (c *Config) applyEnv() {
	if v := os.Getenv(EnvLCUPort); v != "" {
		c.LCU.Port = v
	}
	if v := os.Getenv(EnvLCUToken); v != "" {
		c.LCU.Token = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.Log.Level = v
	}
}

func (c *Config) setDefaults() error {
	var err error
	if c.PollInterval, err = parseDuration("poll_interval", &c.RawInterval, "1s"); err != nil {
		return err
	}

	if c.Workdir == "" {
		dir, err := os.UserConfigDir()
		if err != nil {
			dir = os.TempDir()
		}
		c.Workdir = filepath.Join(dir, "lol-autopilot")
	}
	if c.LogFile == "" {
		c.LogFile = filepath.Join(c.Workdir, "logs", "lol-autopilot.log")
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}

	if c.LCU.ProcessName == "" {
		c.LCU.ProcessName = "LeagueClientUx"
	}
	if c.LCU.RequestTimeout, err = parseDuration("lcu.request_timeout", &c.LCU.RawRequestTimeout, "5s"); err != nil {
		return err
	}
	if c.LCU.VerifyTimeout, err = parseDuration("lcu.verify_timeout", &c.LCU.RawVerifyTimeout, "3s"); err != nil {
		return err
	}
	if c.LCU.ReconnectInterval, err = parseDuration("lcu.reconnect_interval", &c.LCU.RawReconnect, "2s"); err != nil {
		return err
	}
	if c.LCU.HealthCheckInterval, err = parseDuration("lcu.health_check_interval", &c.LCU.RawHealthCheck, "5s"); err != nil {
		return err
	}

	if c.Automation.Accept.Enabled == nil {
		defaultTrue := true
		c.Automation.Accept.Enabled = &defaultTrue
	}
	if c.Automation.Accept.Delay, err = parseDuration("automation.accept.delay", &c.Automation.Accept.RawDelay, "0s"); err != nil {
		return err
	}
	if c.Automation.Sound == nil {
		defaultTrue := true
		c.Automation.Sound = &defaultTrue
	}
	if c.Automation.HoverSettle, err = parseDuration("automation.hover_settle", &c.Automation.RawHoverSettle, "300ms"); err != nil {
		return err
	}

	if c.TUI.RefreshInterval, err = parseDuration("tui.refresh_interval", &c.TUI.RawInterval, "1s"); err != nil {
		return err
	}

	return nil
}

func parseDuration(key string, raw *string, def string) (time.Duration, error) {
	if *raw == "" {
		*raw = def
	}
	d, err := time.ParseDuration(*raw)
	if err != nil {
		// Bare numbers are seconds.
		secs, numErr := strconv.ParseFloat(*raw, 64)
		if numErr != nil {
			return 0, fmt.Errorf("parse %s %q: %w", key, *raw, err)
		}
		d = time.Duration(secs * float64(time.Second))
	}
	return d, nil
}

func (c *Config) validate() error {
	if c.PollInterval <= 0 {
		return fmt.Errorf("poll_interval must be positive, got %s", c.RawInterval)
	}
	if c.TUI.RefreshInterval <= 0 {
		return fmt.Errorf("tui.refresh_interval must be positive, got %s", c.TUI.RawInterval)
	}
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log.level %q (debug|info|warn|error)", c.Log.Level)
	}
	if c.LCU.RequestTimeout < time.Second || c.LCU.RequestTimeout > 10*time.Second {
		return fmt.Errorf("lcu.request_timeout must be between 1s and 10s, got %s", c.LCU.RawRequestTimeout)
	}
	if c.LCU.VerifyTimeout <= 0 {
		return fmt.Errorf("lcu.verify_timeout must be positive, got %s", c.LCU.RawVerifyTimeout)
	}
	if c.LCU.ReconnectInterval <= 0 {
		return fmt.Errorf("lcu.reconnect_interval must be positive, got %s", c.LCU.RawReconnect)
	}
	if c.LCU.HealthCheckInterval <= 0 {
		return fmt.Errorf("lcu.health_check_interval must be positive, got %s", c.LCU.RawHealthCheck)
	}
	if (c.LCU.Port == "") != (c.LCU.Token == "") {
		return fmt.Errorf("lcu.port and lcu.token must be set together")
	}
	if c.LCU.Port != "" {
		if _, err := strconv.Atoi(c.LCU.Port); err != nil {
			return fmt.Errorf("invalid lcu.port %q", c.LCU.Port)
		}
	}
	if d := c.Automation.Accept.Delay; d < 0 || d > maxAcceptDelay {
		return fmt.Errorf("automation.accept.delay must be between 0s and %s, got %s", maxAcceptDelay, c.Automation.Accept.RawDelay)
	}
	if c.Automation.HoverSettle < 0 {
		return fmt.Errorf("automation.hover_settle must not be negative, got %s", c.Automation.RawHoverSettle)
	}
	for name, id := range c.Champions {
		if id <= 0 {
			return fmt.Errorf("champions[%q]: id must be positive, got %d", name, id)
		}
	}
	for lane := range c.Spells.Lanes {
		if lane < 1 || lane > 5 {
			return fmt.Errorf("spells.lanes[%d]: lane must be 1-5", lane)
		}
	}
	return nil
}
