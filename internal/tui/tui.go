package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/marcin-skalski/lol-autopilot/internal/logging"
	"github.com/marcin-skalski/lol-autopilot/internal/spells"
)

// Controller is what the dashboard may read and command. It never touches
// controller or tracker state directly.
type Controller interface {
	Snapshot() Snapshot
	Start()
	Stop()
	Running() bool
	ResetStats()
	MarkSpell(lane spells.Lane, slot spells.Slot) error
	ResetSpells()
}

type LogSource interface {
	Lines() []logging.Line
}

type Model struct {
	ctrl            Controller
	logs            LogSource
	snapshot        Snapshot
	lines           []logging.Line
	refreshInterval time.Duration
	width           int
	status          string
}

type tickMsg time.Time

func NewModel(ctrl Controller, logs LogSource, refreshInterval time.Duration) Model {
	m := Model{
		ctrl:            ctrl,
		logs:            logs,
		refreshInterval: refreshInterval,
	}
	m.refresh()
	return m
}

func (m *Model) refresh() {
	m.snapshot = m.ctrl.Snapshot()
	if m.logs != nil {
		m.lines = m.logs.Lines()
	}
}

func (m Model) Init() tea.Cmd {
	return tickCmd(m.refreshInterval)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		key := msg.String()
		switch key {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "s":
			if m.ctrl.Running() {
				m.ctrl.Stop()
				m.status = "automation stopped"
			} else {
				m.ctrl.Start()
				m.status = "automation started"
			}
		case "x":
			m.ctrl.ResetStats()
			m.status = "statistics reset"
		case "c":
			m.ctrl.ResetSpells()
			m.status = "spell timers reset"
		default:
			if lane, slot, ok := spellKey(key); ok {
				if err := m.ctrl.MarkSpell(lane, slot); err != nil {
					m.status = err.Error()
				} else {
					m.status = ""
				}
			} else {
				return m, nil
			}
		}
		m.refresh()

	case tea.WindowSizeMsg:
		m.width = msg.Width

	case tickMsg:
		m.refresh()
		return m, tickCmd(m.refreshInterval)
	}

	return m, nil
}

// spellKey maps 1-5 to the first spell of each lane and 6-0 to the second.
func spellKey(key string) (spells.Lane, spells.Slot, bool) {
	if len(key) != 1 || key[0] < '0' || key[0] > '9' {
		return 0, 0, false
	}
	n := int(key[0] - '0')
	if n == 0 {
		n = 10
	}
	if n <= 5 {
		return spells.Lane(n), spells.Slot1, true
	}
	return spells.Lane(n - 5), spells.Slot2, true
}

func (m Model) View() string {
	return renderView(m.snapshot, m.lines, m.status, m.width)
}

func tickCmd(interval time.Duration) tea.Cmd {
	return tea.Tick(interval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}
