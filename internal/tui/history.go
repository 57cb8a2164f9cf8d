package tui

import (
	"fmt"
	"strings"

	"github.com/NimbleMarkets/ntcharts/barchart"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sadopc/studyr/internal/engine"
)

type historyFilter int

const (
	filterToday historyFilter = iota
	filterWeek
	filterMonth
	filterAll
)

var filterNames = []string{"Today", "Week", "Month", "All"}

// chartDays is how many trailing days the bar chart covers.
const chartDays = 7

type historyModel struct {
	coord  *engine.Coordinator
	width  int
	height int

	filter historyFilter
	chart  barchart.Model
}

func newHistoryModel(c *engine.Coordinator) historyModel {
	return historyModel{
		coord:  c,
		filter: filterWeek,
		chart:  barchart.New(60, 12),
	}
}

func (h *historyModel) setSize(w, height int) {
	h.width = w
	h.height = height
}

// predicate returns the ledger filter for the active range.
func (h historyModel) predicate() func(engine.HistoryRecord) bool {
	now := h.coord.Now()
	switch h.filter {
	case filterToday:
		return engine.OnDay(now)
	case filterWeek:
		return engine.Since(now.AddDate(0, 0, -7))
	case filterMonth:
		return engine.Since(now.AddDate(0, -1, 0))
	default:
		return engine.All()
	}
}

// filteredRecords materializes the active filter, newest first.
func (h historyModel) filteredRecords() []engine.HistoryRecord {
	var records []engine.HistoryRecord
	for r := range h.coord.Ledger.Filter(h.predicate()) {
		records = append(records, r)
	}
	for i, j := 0, len(records)-1; i < j; i, j = i+1, j-1 {
		records[i], records[j] = records[j], records[i]
	}
	return records
}

func (h historyModel) update(msg tea.Msg) (historyModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(msg, keys.Filter), key.Matches(msg, keys.Right):
			h.filter = (h.filter + 1) % 4
			return h, nil
		case key.Matches(msg, keys.Left):
			h.filter = (h.filter + 3) % 4
			return h, nil
		}
	}
	return h, nil
}

func (h *historyModel) buildChart() {
	chartWidth := h.width - 8
	if chartWidth < 20 {
		chartWidth = 20
	}
	chartHeight := 10
	if h.height > 30 {
		chartHeight = 14
	}

	h.chart = barchart.New(chartWidth, chartHeight)

	var bars []barchart.BarData
	for _, b := range h.coord.Ledger.DailyBuckets(h.coord.Now(), chartDays) {
		hours := float64(b.Seconds) / 3600.0
		style := lipgloss.NewStyle().Foreground(colorStudy)
		if b.Seconds == 0 {
			style = lipgloss.NewStyle().Foreground(colorSubtle)
		}
		bars = append(bars, barchart.BarData{
			Label: b.Date.Format("Mon 02"),
			Values: []barchart.BarValue{
				{Name: "study", Value: hours, Style: style},
			},
		})
	}

	h.chart.PushAll(bars)
	h.chart.Draw()
}

func (h historyModel) view() string {
	w := h.width - 4

	// Filter tabs
	var tabs []string
	for i, name := range filterNames {
		if historyFilter(i) == h.filter {
			tabs = append(tabs, activeTabStyle.Render(name))
		} else {
			tabs = append(tabs, inactiveTabStyle.Render(name))
		}
	}
	filterRow := lipgloss.JoinHorizontal(lipgloss.Bottom, tabs...)

	header := lipgloss.JoinHorizontal(lipgloss.Bottom,
		titleStyle.Render("History"), "  ", filterRow,
	)

	h.buildChart()
	chartView := h.chart.View()

	tableView := h.renderTable(w)

	nav := mutedStyle.Render("  ←/→: filter  e: export")

	return panelStyle.Width(w).Render(
		lipgloss.JoinVertical(lipgloss.Left,
			header, "", chartView, "", tableView, "", nav,
		),
	)
}

func (h historyModel) renderTable(w int) string {
	records := h.filteredRecords()
	if len(records) == 0 {
		return mutedStyle.Render("  No sessions in this period")
	}

	maxRows := h.height - 20
	if maxRows < 5 {
		maxRows = 5
	}

	var rows []string
	rows = append(rows, mutedStyle.Render(fmt.Sprintf("  %-17s %-12s %-20s %10s %8s", "Date", "Type", "Topic", "Duration", "Status")))
	rows = append(rows, mutedStyle.Render("  "+strings.Repeat("─", min(w-6, 70))))

	for i, r := range records {
		if i >= maxRows {
			rows = append(rows, mutedStyle.Render(fmt.Sprintf("  … %d more", len(records)-maxRows)))
			break
		}
		rows = append(rows, "  "+renderRecordRow(r))
	}

	return strings.Join(rows, "\n")
}

func renderRecordRow(r engine.HistoryRecord) string {
	kind := "session"
	dot := dotDoneStyle.Render("●")
	if r.Type == engine.RecordChallengeComplete {
		kind = "challenge"
		dot = accentStyle.Render("⚑")
	}

	topic := r.Topic
	if topic == "" {
		topic = fmt.Sprintf("session %d", r.Session)
	}
	if len(topic) > 20 {
		topic = topic[:17] + "…"
	}

	status := string(r.Status)
	if r.Status == engine.StatusCompleted {
		status = successStyle.Render(status)
	} else {
		status = warningStyle.Render(status)
	}

	return fmt.Sprintf("%-17s %s %-10s %-20s %10s %8s",
		r.Date.Local().Format("Jan 02 15:04"), dot, kind, topic,
		formatSeconds(r.Duration), status,
	)
}
