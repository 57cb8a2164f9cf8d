package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sadopc/studyr/internal/engine"
)

// pomodoroModel renders the study/break cycle. All state lives in the
// coordinator; this view only translates keys into operations.
type pomodoroModel struct {
	coord  *engine.Coordinator
	width  int
	height int
}

func newPomodoroModel(c *engine.Coordinator) pomodoroModel {
	return pomodoroModel{coord: c}
}

func (p *pomodoroModel) setSize(w, h int) {
	p.width = w
	p.height = h
}

func (p pomodoroModel) update(msg tea.Msg) (pomodoroModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Start):
			if !p.coord.Study.Running {
				p.coord.StartStudy()
			}
		case key.Matches(msg, keys.Pause):
			if p.coord.Study.Running {
				p.coord.PauseStudy()
			} else {
				p.coord.StartStudy()
			}
		case key.Matches(msg, keys.Reset):
			p.coord.ResetStudy()
			return p, func() tea.Msg {
				return statusMsg{text: "Study timer reset"}
			}
		case key.Matches(msg, keys.Skip):
			p.coord.SkipStudy()
		}
	}
	return p, nil
}

func (p pomodoroModel) view() string {
	w := p.width - 4
	eng := p.coord.Study

	title := titleStyle.Render("Study Timer")

	var timeDisplay string
	var phaseLabel string

	display := formatCountdown(eng.CurrentTime)
	switch {
	case !eng.Running:
		timeDisplay = countdownPausedStyle.Width(w - 6).Render(display)
		if eng.IsStudyTime {
			phaseLabel = warningStyle.Bold(true).Render("STUDY · PAUSED")
		} else {
			phaseLabel = warningStyle.Bold(true).Render("BREAK · PAUSED")
		}
	case eng.IsStudyTime:
		timeDisplay = countdownStudyStyle.Width(w - 6).Render(display)
		phaseLabel = countdownStudyStyle.Render("STUDY")
	default:
		timeDisplay = countdownBreakStyle.Width(w - 6).Render(display)
		phaseLabel = countdownBreakStyle.Render("BREAK")
	}

	phaseProgress := 1.0
	if d := eng.PhaseDuration(); d > 0 {
		phaseProgress = float64(d-eng.CurrentTime) / float64(d)
	}
	bar := mutedStyle.Render(progressBar(min(w-10, 40), phaseProgress))

	content := lipgloss.JoinVertical(lipgloss.Center,
		title,
		"",
		timeDisplay,
		phaseLabel,
		"",
		bar,
		"",
		p.renderSessionStrip(),
		"",
		subtitleStyle.Render(fmt.Sprintf("Lifetime sessions: %d", eng.TotalSessionsCompleted)),
	)

	var controls string
	if eng.Running {
		controls = mutedStyle.Render("space: pause  n: skip phase  r: reset")
	} else {
		controls = mutedStyle.Render("s: start  n: skip phase  r: reset")
	}

	return panelStyle.Width(w).Render(
		lipgloss.JoinVertical(lipgloss.Center, content, "", controls),
	)
}

// renderSessionStrip draws one dot per session in the cycle: filled for
// done, half for the session in progress, hollow for pending.
func (p pomodoroModel) renderSessionStrip() string {
	eng := p.coord.Study
	var parts []string
	for i := 1; i <= eng.Sessions; i++ {
		switch {
		case i < eng.CurrentSession:
			parts = append(parts, dotDoneStyle.Render("●"))
		case i == eng.CurrentSession:
			if eng.IsStudyTime {
				parts = append(parts, dotCurrentStyle.Render("◐"))
			} else {
				parts = append(parts, dotDoneStyle.Render("●"))
			}
		default:
			parts = append(parts, dotPendingStyle.Render("○"))
		}
	}
	strip := strings.Join(parts, " ")
	counter := mutedStyle.Render(fmt.Sprintf("  session %d/%d", eng.CurrentSession, eng.Sessions))
	return strip + counter
}
