package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"
	"github.com/mattn/go-isatty"
	"golang.org/x/sync/errgroup"

	"github.com/marcin-skalski/lol-autopilot/internal/champions"
	"github.com/marcin-skalski/lol-autopilot/internal/config"
	"github.com/marcin-skalski/lol-autopilot/internal/daemon"
	"github.com/marcin-skalski/lol-autopilot/internal/lcu"
	"github.com/marcin-skalski/lol-autopilot/internal/logging"
	"github.com/marcin-skalski/lol-autopilot/internal/notify"
	"github.com/marcin-skalski/lol-autopilot/internal/spells"
	"github.com/marcin-skalski/lol-autopilot/internal/tui"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	envFile := flag.String("env", ".env", "optional dotenv file with LOL_AUTOPILOT_* overrides")
	noTUI := flag.Bool("no-tui", false, "disable TUI mode")
	paused := flag.Bool("paused", false, "start with automation stopped")
	flag.Parse()

	if err := godotenv.Load(*envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "load %s: %v\n", *envFile, err)
		os.Exit(1)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	// Auto-detect TUI capability
	enableTUI := !*noTUI && os.Getenv("LOL_AUTOPILOT_TUI") != "0" &&
		isatty.IsTerminal(os.Stdin.Fd()) && isatty.IsTerminal(os.Stdout.Fd())

	var feed *logging.Feed
	if enableTUI {
		feed = logging.NewFeed(200)
	}
	logger, closer, err := logging.SetupLogger(cfg.LogFile, cfg.Log.Level, feed)
	if err != nil {
		fmt.Fprintf(os.Stderr, "setup logger: %v\n", err)
		os.Exit(1)
	}
	defer closer.Close()

	if err := run(cfg, *configPath, enableTUI, !*paused, feed, logger); err != nil {
		logger.Error("lol-autopilot failed", "err", err)
		closer.Close()
		os.Exit(1)
	}
}

func run(cfg *config.Config, configPath string, enableTUI, autostart bool, feed *logging.Feed, logger *slog.Logger) error {
	table, err := champions.Builtin()
	if err != nil {
		return fmt.Errorf("load champion table: %w", err)
	}

	client := lcu.NewClient(lcu.Options{
		ProcessName:         cfg.LCU.ProcessName,
		RequestTimeout:      cfg.LCU.RequestTimeout,
		VerifyTimeout:       cfg.LCU.VerifyTimeout,
		ReconnectInterval:   cfg.LCU.ReconnectInterval,
		HealthCheckInterval: cfg.LCU.HealthCheckInterval,
		Static:              lcu.Credentials{Port: cfg.LCU.Port, Token: cfg.LCU.Token},
	}, logger)
	// Reconnect attempts cycle through connecting every few seconds.
	client.OnStateChange(func(s lcu.State) {
		level := slog.LevelDebug
		if s == lcu.StateConnected || s == lcu.StateError {
			level = slog.LevelInfo
		}
		logger.Log(context.Background(), level, "client connection changed", "state", string(s))
	})

	sounds := notify.NewSounds(logger)
	tracker := spells.NewTracker(func(u spells.Use) {
		logger.Info("✅ spell ready", "lane", u.Lane.String(), "slot", int(u.Slot), "spell", string(u.Spell))
		sounds.PlayNotification()
	})

	d := daemon.New(cfg, client, table, sounds, tracker, logger)
	if autostart {
		d.Start()
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return d.Run(ctx) })
	g.Go(func() error { return tracker.Run(ctx) })
	g.Go(func() error {
		err := config.Watch(ctx, configPath, logger, d.ApplyConfig)
		if err != nil {
			// Hot reload is optional; keep the bot running without it.
			logger.Warn("config watcher stopped", "err", err)
		}
		return nil
	})

	if !enableTUI {
		logger.Info("lol-autopilot starting (headless)", "config", configPath)
		return g.Wait()
	}

	// TUI mode: workers in background, TUI in foreground
	logger.Info("lol-autopilot starting in background", "config", configPath)
	p := tea.NewProgram(tui.NewModel(d, feed, cfg.TUI.RefreshInterval), tea.WithAltScreen())

	go func() {
		<-ctx.Done()
		p.Quit()
	}()

	_, tuiErr := p.Run()
	stop()
	if err := g.Wait(); err != nil {
		return err
	}
	if tuiErr != nil {
		return fmt.Errorf("TUI error: %w", tuiErr)
	}
	return nil
}
