package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sadopc/studyr/internal/engine"
)

// dashboardModel is the landing view: both timers at a glance plus the
// derived aggregates.
type dashboardModel struct {
	coord  *engine.Coordinator
	width  int
	height int
}

func newDashboardModel(c *engine.Coordinator) dashboardModel {
	return dashboardModel{coord: c}
}

func (d *dashboardModel) setSize(w, h int) {
	d.width = w
	d.height = h
}

func (d dashboardModel) update(msg tea.Msg) (dashboardModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(msg, keys.Start):
			if !d.coord.Study.Running {
				d.coord.StartStudy()
			}
		case key.Matches(msg, keys.Pause):
			if d.coord.Study.Running {
				d.coord.PauseStudy()
			} else {
				d.coord.StartStudy()
			}
		}
	}
	return d, nil
}

func (d dashboardModel) view() string {
	if d.width < 20 {
		return "Terminal too small"
	}

	contentWidth := d.width - 4

	timerPanel := d.renderTimerPanel(contentWidth)
	goalPanel := d.renderGoalPanel(contentWidth)
	statsPanel := d.renderStatsPanel(contentWidth)

	return lipgloss.JoinVertical(lipgloss.Left, timerPanel, goalPanel, statsPanel)
}

func (d dashboardModel) renderTimerPanel(w int) string {
	eng := d.coord.Study
	ch := d.coord.Challenge

	var studyLines []string
	display := formatCountdown(eng.CurrentTime)
	phase := "STUDY"
	if !eng.IsStudyTime {
		phase = "BREAK"
	}
	switch {
	case eng.Running && eng.IsStudyTime:
		studyLines = append(studyLines,
			countdownStudyStyle.Width(w-6).Render(display),
			countdownStudyStyle.Render("●  "+phase),
		)
	case eng.Running:
		studyLines = append(studyLines,
			countdownBreakStyle.Width(w-6).Render(display),
			countdownBreakStyle.Render("☕  "+phase),
		)
	default:
		studyLines = append(studyLines,
			countdownPausedStyle.Width(w-6).Render(display),
			warningStyle.Render("⏸  "+phase+" PAUSED"),
			mutedStyle.Render("Press s to start studying"),
		)
	}
	studyLines = append(studyLines,
		subtitleStyle.Render(fmt.Sprintf("session %d/%d", eng.CurrentSession, eng.Sessions)),
	)
	content := lipgloss.JoinVertical(lipgloss.Center, studyLines...)

	if ch.Configured() {
		line := accentStyle.Render("⚑ " + ch.Topic + "  ")
		switch {
		case ch.Completed():
			line += successStyle.Render("complete")
		case ch.Running:
			line += highlightStyle.Render(formatDayCountdown(ch.RemainingSeconds))
		default:
			line += mutedStyle.Render(formatDayCountdown(ch.RemainingSeconds) + " (paused)")
		}
		content = lipgloss.JoinVertical(lipgloss.Center, content, "", line)
	}

	if eng.Running || ch.Running {
		return activePanelStyle.Width(w).Render(content)
	}
	return panelStyle.Width(w).Render(content)
}

func (d dashboardModel) renderGoalPanel(w int) string {
	eng := d.coord.Study
	today := d.coord.TodayTotal()

	title := titleStyle.Render("Daily Goal")
	total := highlightStyle.Render(formatHoursMinutes(today))
	target := mutedStyle.Render(" / " + formatHoursMinutes(eng.DailyGoal))
	header := fmt.Sprintf("%s  %s%s", title, total, target)

	ratio := 0.0
	if eng.DailyGoal > 0 {
		ratio = float64(today) / float64(eng.DailyGoal)
	}
	barStyle := mutedStyle
	tail := ""
	if eng.GoalReached {
		barStyle = successStyle
		tail = successStyle.Render("  ✓ reached")
	}
	bar := barStyle.Render(progressBar(min(w-10, 50), ratio)) + tail

	return panelStyle.Width(w).Render(
		lipgloss.JoinVertical(lipgloss.Left, header, bar),
	)
}

func (d dashboardModel) renderStatsPanel(w int) string {
	title := titleStyle.Render("Stats")

	stats := []struct {
		label string
		value string
	}{
		{"Today", formatHoursMinutes(d.coord.TodayTotal())},
		{"Last 7 days", formatHoursMinutes(d.coord.WeekTotal())},
		{"Streak", fmt.Sprintf("%d days", d.coord.Streak())},
		{"Lifetime sessions", fmt.Sprintf("%d", d.coord.Study.TotalSessionsCompleted)},
		{"Records", fmt.Sprintf("%d", d.coord.Ledger.Len())},
	}

	var rows []string
	rows = append(rows, title)
	for _, s := range stats {
		label := lipgloss.NewStyle().Width(20).Render(s.label)
		rows = append(rows, fmt.Sprintf("  %s %s", label, highlightStyle.Render(s.value)))
	}

	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}
