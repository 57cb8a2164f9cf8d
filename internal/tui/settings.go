package tui

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/sadopc/studyr/internal/engine"
)

type settingsModel struct {
	coord  *engine.Coordinator
	width  int
	height int

	formActive bool
	form       *huh.Form

	// Form values as pointers (survive value copies)
	studyMin  *string
	breakMin  *string
	sessions  *string
	goalHours *string
	autoBreak *bool
}

func newSettingsModel(c *engine.Coordinator) settingsModel {
	sm, bm, se, gh := "", "", "", ""
	ab := false
	return settingsModel{
		coord:     c,
		studyMin:  &sm,
		breakMin:  &bm,
		sessions:  &se,
		goalHours: &gh,
		autoBreak: &ab,
	}
}

func (s *settingsModel) setSize(w, h int) {
	s.width = w
	s.height = h
}

func (s settingsModel) update(msg tea.Msg) (settingsModel, tea.Cmd) {
	if s.formActive && s.form != nil {
		return s.updateForm(msg)
	}

	if msg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(msg, keys.Enter), key.Matches(msg, keys.New):
			return s.showForm()
		}
	}
	return s, nil
}

func (s settingsModel) showForm() (settingsModel, tea.Cmd) {
	eng := s.coord.Study
	*s.studyMin = strconv.Itoa(eng.StudyTime / 60)
	*s.breakMin = strconv.Itoa(eng.BreakTime / 60)
	*s.sessions = strconv.Itoa(eng.Sessions)
	*s.goalHours = fmt.Sprintf("%.1f", float64(eng.DailyGoal)/3600)
	*s.autoBreak = eng.AutoStartBreak

	s.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Study length (min)").Value(s.studyMin),
			huh.NewInput().Title("Break length (min)").Value(s.breakMin),
			huh.NewInput().Title("Sessions per cycle").Value(s.sessions),
		).Title("Timer"),
		huh.NewGroup(
			huh.NewInput().Title("Daily goal (hours)").Value(s.goalHours),
			huh.NewConfirm().Title("Auto-start breaks").Value(s.autoBreak),
		).Title("Goals"),
	).WithShowHelp(true).WithShowErrors(true)

	s.formActive = true
	return s, s.form.Init()
}

func (s settingsModel) updateForm(msg tea.Msg) (settingsModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		if msg.String() == "esc" {
			s.formActive = false
			s.form = nil
			return s, nil
		}
	}

	form, cmd := s.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		s.form = f
	}

	if s.form.State == huh.StateCompleted {
		s.formActive = false
		return s, s.saveSettings()
	}

	return s, cmd
}

func (s settingsModel) saveSettings() tea.Cmd {
	studyMin, err := strconv.Atoi(*s.studyMin)
	if err != nil {
		return errStatus("study length must be a number")
	}
	breakMin, err := strconv.Atoi(*s.breakMin)
	if err != nil {
		return errStatus("break length must be a number")
	}
	sessions, err := strconv.Atoi(*s.sessions)
	if err != nil {
		return errStatus("sessions must be a number")
	}
	goalHours, err := strconv.ParseFloat(*s.goalHours, 64)
	if err != nil {
		return errStatus("daily goal must be a number")
	}

	if err := s.coord.ApplySettings(studyMin*60, breakMin*60, sessions, int(goalHours*3600)); err != nil {
		// The coordinator already raised the validation notice.
		return nil
	}
	s.coord.SetAutoStartBreak(*s.autoBreak)

	return func() tea.Msg {
		return statusMsg{text: "Settings saved"}
	}
}

func errStatus(text string) tea.Cmd {
	return func() tea.Msg {
		return statusMsg{text: text, isError: true}
	}
}

func (s settingsModel) view() string {
	w := s.width - 4

	if s.formActive && s.form != nil {
		title := titleStyle.Render("Settings")
		return panelStyle.Width(w).Render(
			lipgloss.JoinVertical(lipgloss.Left, title, "", s.form.View()),
		)
	}

	eng := s.coord.Study

	title := titleStyle.Render("Settings")
	hint := mutedStyle.Render("Press enter to edit settings")

	auto := "off"
	if eng.AutoStartBreak {
		auto = "on"
	}

	rows := []string{
		title,
		"",
		settingRow("Study length", fmt.Sprintf("%d min", eng.StudyTime/60)),
		settingRow("Break length", fmt.Sprintf("%d min", eng.BreakTime/60)),
		settingRow("Sessions per cycle", strconv.Itoa(eng.Sessions)),
		settingRow("Daily goal", fmt.Sprintf("%.1f hours", float64(eng.DailyGoal)/3600)),
		settingRow("Auto-start breaks", auto),
		"",
		hint,
	}

	return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func settingRow(label, value string) string {
	l := lipgloss.NewStyle().Width(22).Render(label)
	return fmt.Sprintf("  %s %s", l, highlightStyle.Render(value))
}
