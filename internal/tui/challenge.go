package tui

import (
	"fmt"
	"strconv"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/sadopc/studyr/internal/engine"
)

type challengeModel struct {
	coord  *engine.Coordinator
	width  int
	height int

	formActive bool
	form       *huh.Form

	topic     *string
	days      *string
	startDate *string
}

func newChallengeModel(c *engine.Coordinator) challengeModel {
	t, d, sd := "", "", ""
	return challengeModel{
		coord:     c,
		topic:     &t,
		days:      &d,
		startDate: &sd,
	}
}

func (c *challengeModel) setSize(w, h int) {
	c.width = w
	c.height = h
}

func (c challengeModel) update(msg tea.Msg) (challengeModel, tea.Cmd) {
	if c.formActive && c.form != nil {
		return c.updateForm(msg)
	}

	if msg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(msg, keys.New):
			return c.showForm()
		case key.Matches(msg, keys.Start):
			if err := c.coord.StartChallenge(); err == nil {
				return c, func() tea.Msg {
					return statusMsg{text: "Challenge started"}
				}
			}
		case key.Matches(msg, keys.Stop), key.Matches(msg, keys.Pause):
			if c.coord.Challenge.Running {
				c.coord.StopChallenge()
				return c, func() tea.Msg {
					return statusMsg{text: "Challenge paused"}
				}
			}
		}
	}
	return c, nil
}

func (c challengeModel) showForm() (challengeModel, tea.Cmd) {
	ch := c.coord.Challenge
	*c.topic = ch.Topic
	if ch.Days > 0 {
		*c.days = strconv.Itoa(ch.Days)
	} else {
		*c.days = "30"
	}
	*c.startDate = c.coord.Now().Format(time.DateOnly)

	c.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Topic").Value(c.topic),
			huh.NewInput().Title("Days (1-365)").Value(c.days),
			huh.NewInput().Title("Start date (YYYY-MM-DD)").Value(c.startDate),
		).Title("New Challenge"),
	).WithShowHelp(true).WithShowErrors(true)

	c.formActive = true
	return c, c.form.Init()
}

func (c challengeModel) updateForm(msg tea.Msg) (challengeModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		if msg.String() == "esc" {
			c.formActive = false
			c.form = nil
			return c, nil
		}
	}

	form, cmd := c.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		c.form = f
	}

	if c.form.State == huh.StateCompleted {
		c.formActive = false
		return c, c.submit()
	}

	return c, cmd
}

func (c challengeModel) submit() tea.Cmd {
	days, err := strconv.Atoi(*c.days)
	if err != nil {
		return errStatus("days must be a number")
	}
	start, err := time.ParseInLocation(time.DateOnly, *c.startDate, time.Local)
	if err != nil {
		return errStatus("start date must be YYYY-MM-DD")
	}

	if err := c.coord.SetupChallenge(*c.topic, days, start); err != nil {
		return nil
	}
	return func() tea.Msg {
		return statusMsg{text: "Challenge configured, press s to start"}
	}
}

func (c challengeModel) view() string {
	w := c.width - 4

	if c.formActive && c.form != nil {
		title := titleStyle.Render("Challenge")
		return panelStyle.Width(w).Render(
			lipgloss.JoinVertical(lipgloss.Left, title, "", c.form.View()),
		)
	}

	ch := c.coord.Challenge
	title := titleStyle.Render("Challenge")

	if !ch.Configured() {
		empty := lipgloss.JoinVertical(lipgloss.Center,
			title,
			"",
			mutedStyle.Render("No challenge configured"),
			"",
			mutedStyle.Render("Press c to set one up"),
		)
		return panelStyle.Width(w).Render(empty)
	}

	var countdown, state string
	switch {
	case ch.Completed():
		countdown = successStyle.Bold(true).Width(w - 6).Align(lipgloss.Center).Render("Done!")
		state = successStyle.Bold(true).Render("CHALLENGE COMPLETE")
	case ch.Running:
		countdown = countdownStyle.Width(w - 6).Render(formatDayCountdown(ch.RemainingSeconds))
		state = accentStyle.Bold(true).Render("RUNNING")
	default:
		countdown = countdownPausedStyle.Width(w - 6).Render(formatDayCountdown(ch.RemainingSeconds))
		state = warningStyle.Bold(true).Render("PAUSED")
	}

	elapsed := 1.0
	if ch.TotalSeconds > 0 {
		elapsed = float64(ch.TotalSeconds-ch.RemainingSeconds) / float64(ch.TotalSeconds)
	}
	bar := mutedStyle.Render(progressBar(min(w-10, 40), elapsed))
	pct := subtitleStyle.Render(fmt.Sprintf("%.1f%% elapsed", elapsed*100))

	info := lipgloss.JoinVertical(lipgloss.Center,
		highlightStyle.Render(ch.Topic),
		subtitleStyle.Render(fmt.Sprintf("%d days · ends %s", ch.Days, ch.EndTime.Format("Jan 2, 2006"))),
	)

	var controls string
	switch {
	case ch.Completed():
		controls = mutedStyle.Render("c: new challenge")
	case ch.Running:
		controls = mutedStyle.Render("x: pause")
	default:
		controls = mutedStyle.Render("s: start  c: edit")
	}

	content := lipgloss.JoinVertical(lipgloss.Center,
		title,
		"",
		info,
		"",
		countdown,
		state,
		"",
		bar,
		pct,
		"",
		controls,
	)

	return panelStyle.Width(w).Render(content)
}
