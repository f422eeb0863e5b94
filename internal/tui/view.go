package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/marcin-skalski/lol-autopilot/internal/logging"
	"github.com/marcin-skalski/lol-autopilot/internal/spells"
)

const maxLogLines = 12

func renderView(snap Snapshot, lines []logging.Line, status string, width int) string {
	var b strings.Builder

	// Header
	running := lipgloss.NewStyle().Foreground(colorStopped).Render("stopped")
	if snap.Running {
		running = lipgloss.NewStyle().Foreground(colorRunning).Render("running")
	}
	conn := lipgloss.NewStyle().Foreground(connectionColor(snap.Connection)).
		Render(connectionIcon(snap.Connection) + " " + snap.Connection)
	header := fmt.Sprintf("lol-autopilot │ %s │ %s", running, conn)
	if snap.Phase != "" {
		header += " │ " + snap.Phase
	}
	b.WriteString(headerStyle.Render(header))
	b.WriteString("\n")

	b.WriteString(sectionStyle.Render("📊 Statistics"))
	b.WriteString("\n")
	b.WriteString(renderStats(snap))

	b.WriteString(sectionStyle.Render("⚙️ Automation"))
	b.WriteString("\n")
	b.WriteString(renderAutomation(snap))

	b.WriteString(sectionStyle.Render(fmt.Sprintf("⏳ Pending Actions (%d)", len(snap.Pending))))
	b.WriteString("\n")
	b.WriteString(renderPending(snap.Pending))

	b.WriteString(sectionStyle.Render("⏱️ Enemy Spells"))
	b.WriteString("\n")
	b.WriteString(renderSpells(snap.Spells))

	b.WriteString(sectionStyle.Render("📜 Log"))
	b.WriteString("\n")
	b.WriteString(renderLogs(lines, width))

	if status != "" {
		b.WriteString("\n")
		b.WriteString(statusStyle.Render(status))
	}

	// Footer
	b.WriteString("\n")
	footer := fmt.Sprintf("Last updated: %s │ q:quit s:start/stop x:reset stats 1-5/6-0:spell used c:clear spells",
		snap.Timestamp.Format("15:04:05"))
	b.WriteString(footerStyle.Render(footer))

	return b.String()
}

func renderStats(snap Snapshot) string {
	s := snap.Stats
	return fmt.Sprintf("  %s %d   %s %d   %s %d   %s %d\n",
		labelStyle.Render("accepted"), s.MatchesAccepted,
		labelStyle.Render("banned"), s.ChampionsBanned,
		labelStyle.Render("picked"), s.ChampionsPicked,
		labelStyle.Render("errors"), s.Errors)
}

func renderAutomation(snap Snapshot) string {
	var b strings.Builder
	accept := onOff(snap.Accept.Enabled)
	if snap.Accept.Enabled && snap.Accept.Delay > 0 {
		accept += fmt.Sprintf(" (after %s)", snap.Accept.Delay)
	}
	fmt.Fprintf(&b, "  %s %s\n", labelStyle.Render("accept"), valueStyle.Render(accept))
	fmt.Fprintf(&b, "  %s %s\n", labelStyle.Render("ban   "), valueStyle.Render(renderList(snap.Ban)))
	fmt.Fprintf(&b, "  %s %s\n", labelStyle.Render("pick  "), valueStyle.Render(renderList(snap.Pick)))
	return b.String()
}

func renderList(l ListState) string {
	if !l.Enabled {
		return onOff(false)
	}
	if len(l.Champions) == 0 {
		return "on (no valid champion)"
	}
	return "on: " + strings.Join(l.Champions, " > ")
}

func onOff(v bool) string {
	if v {
		return "on"
	}
	return "off"
}

func renderPending(pending []PendingState) string {
	if len(pending) == 0 {
		return emptyStyle.Render("  (nothing in flight)") + "\n"
	}

	var b strings.Builder
	for _, p := range pending {
		line := fmt.Sprintf("• %s %s (action %d, attempt %d)", p.Kind, p.Champion, p.ActionID, p.Attempts)
		b.WriteString(lipgloss.NewStyle().Foreground(kindColor(p.Kind)).Render(line))
		b.WriteString("\n")
	}
	return b.String()
}

func renderSpells(states []SpellState) string {
	if len(states) == 0 {
		return emptyStyle.Render("  (spell tracking disabled)") + "\n"
	}

	var b strings.Builder
	for i := 0; i+1 < len(states); i += 2 {
		first, second := states[i], states[i+1]
		fmt.Fprintf(&b, "  %s %s  %s\n",
			labelStyle.Render(runewidth.FillRight(first.Lane, 8)),
			renderSpell(first), renderSpell(second))
	}
	return b.String()
}

func renderSpell(s SpellState) string {
	text := runewidth.FillRight(fmt.Sprintf("%s %s", s.Spell, spellTime(s)), 16)
	color := colorStopped
	switch {
	case s.Tracking && s.Remaining > 0:
		color = colorCooling
	case s.Tracking:
		color = colorReady
	}
	return lipgloss.NewStyle().Foreground(color).Render(text)
}

func spellTime(s SpellState) string {
	if !s.Tracking {
		return "-"
	}
	return spells.FormatRemaining(s.Remaining)
}

func renderLogs(lines []logging.Line, width int) string {
	if len(lines) == 0 {
		return emptyStyle.Render("  (no log output yet)") + "\n"
	}
	if len(lines) > maxLogLines {
		lines = lines[len(lines)-maxLogLines:]
	}
	if width <= 0 {
		width = 100
	}

	var b strings.Builder
	for _, l := range lines {
		text := fmt.Sprintf("%s %s", formatClock(l.Time), l.Text)
		if runewidth.StringWidth(text) > width-2 {
			text = runewidth.Truncate(text, width-2, "...")
		}
		b.WriteString(lipgloss.NewStyle().Foreground(levelColor(l.Level)).Render(text))
		b.WriteString("\n")
	}
	return b.String()
}

func formatClock(t time.Time) string {
	if t.IsZero() {
		return "--:--:--"
	}
	return t.Format("15:04:05")
}
