package tui

import (
	"log/slog"

	"github.com/charmbracelet/lipgloss"
)

var (
	colorRunning = lipgloss.Color("46")  // green
	colorStopped = lipgloss.Color("240") // gray
	colorWarn    = lipgloss.Color("214") // orange
	colorError   = lipgloss.Color("196") // red
	colorBan     = lipgloss.Color("196")
	colorPick    = lipgloss.Color("33") // blue
	colorReady   = lipgloss.Color("46")
	colorCooling = lipgloss.Color("220") // yellow

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("39")).
			PaddingLeft(1).
			PaddingRight(1)

	sectionStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("212")).
			MarginTop(1).
			MarginBottom(0)

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245"))

	valueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252"))

	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39")).
			Italic(true)

	footerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			MarginTop(1)

	emptyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			Italic(true)
)

func connectionIcon(state string) string {
	switch state {
	case "connected":
		return "🟢"
	case "connecting":
		return "🟡"
	case "error":
		return "🔴"
	default:
		return "⚫"
	}
}

func connectionColor(state string) lipgloss.Color {
	switch state {
	case "connected":
		return colorRunning
	case "connecting":
		return colorCooling
	case "error":
		return colorError
	default:
		return colorStopped
	}
}

func kindColor(kind string) lipgloss.Color {
	if kind == "ban" {
		return colorBan
	}
	return colorPick
}

func levelColor(level slog.Level) lipgloss.Color {
	switch {
	case level >= slog.LevelError:
		return colorError
	case level >= slog.LevelWarn:
		return colorWarn
	default:
		return lipgloss.Color("252")
	}
}
