package tui

import (
	"fmt"
	"time"

	"github.com/sadopc/studyr/internal/engine"
)

// viewState represents the currently active view.
type viewState int

const (
	viewDashboard viewState = iota
	viewPomodoro
	viewChallenge
	viewHistory
	viewSettings
)

var viewNames = []string{"Dashboard", "Pomodoro", "Challenge", "History", "Settings"}

// --- Messages ---

type statusMsg struct {
	text    string
	isError bool
}

type tickMsg time.Time

type exportDoneMsg struct {
	path string
}

// --- Coordinator glue ---

// statusSink implements engine.Notifier and engine.SoundPlayer by
// buffering whatever the coordinator raises during an Update call, so
// the app can surface it on the status line afterwards.
type statusSink struct {
	notes []notice
	bell  bool
}

type notice struct {
	text     string
	severity engine.Severity
}

func (s *statusSink) Notify(msg string, sev engine.Severity) {
	s.notes = append(s.notes, notice{text: msg, severity: sev})
}

func (s *statusSink) PlaySound(string) { s.bell = true }

// drain returns the buffered notifications and clears the sink.
func (s *statusSink) drain() ([]notice, bool) {
	notes, bell := s.notes, s.bell
	s.notes, s.bell = nil, false
	return notes, bell
}

// --- Helpers ---

func formatDuration(d time.Duration) string {
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	s := int(d.Seconds()) % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}

func formatSeconds(secs int) string {
	return formatDuration(time.Duration(secs) * time.Second)
}

func formatHoursMinutes(secs int) string {
	h := secs / 3600
	m := (secs % 3600) / 60
	return fmt.Sprintf("%dh %dm", h, m)
}

// formatCountdown renders a short countdown as mm:ss.
func formatCountdown(secs int) string {
	if secs < 0 {
		secs = 0
	}
	return fmt.Sprintf("%02d:%02d", secs/60, secs%60)
}

// formatDayCountdown renders a long countdown as dd:hh:mm:ss.
func formatDayCountdown(secs int) string {
	if secs < 0 {
		secs = 0
	}
	d := secs / 86400
	h := (secs % 86400) / 3600
	m := (secs % 3600) / 60
	s := secs % 60
	return fmt.Sprintf("%02d:%02d:%02d:%02d", d, h, m, s)
}
