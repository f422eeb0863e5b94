package logging

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("debug"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("warn"))
	assert.Equal(t, slog.LevelError, ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, ParseLevel("info"))
	assert.Equal(t, slog.LevelInfo, ParseLevel("bogus"))
}

func TestFeedKeepsMostRecentLines(t *testing.T) {
	feed := NewFeed(3)
	logger := slog.New(feed).With("component", "bot", "seat", 2)

	for _, msg := range []string{"one", "two", "three", "four"} {
		logger.Info(msg, "n", len(msg))
	}
	logger.Debug("hidden")

	lines := feed.Lines()
	require.Len(t, lines, 3)
	assert.Equal(t, "two seat=2 n=3", lines[0].Text)
	assert.Equal(t, "three seat=2 n=5", lines[1].Text)
	assert.Equal(t, "four seat=2 n=4", lines[2].Text)
}

func TestFeedGroups(t *testing.T) {
	feed := NewFeed(5)
	slog.New(feed).WithGroup("lcu").Info("state", "value", "connected")

	lines := feed.Lines()
	require.Len(t, lines, 1)
	assert.Equal(t, "state lcu.value=connected", lines[0].Text)
}

func TestSetupLoggerWritesFileAndFeed(t *testing.T) {
	logFile := filepath.Join(t.TempDir(), "logs", "bot.log")
	feed := NewFeed(10)

	logger, closer, err := SetupLogger(logFile, "debug", feed)
	require.NoError(t, err)

	logger.Debug("hello", "k", "v")
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(logFile)
	require.NoError(t, err)
	assert.Contains(t, string(data), "hello")
	assert.Contains(t, string(data), "k=v")

	lines := feed.Lines()
	require.Len(t, lines, 1)
	assert.Equal(t, "hello k=v", lines[0].Text)
}
