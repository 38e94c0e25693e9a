package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/NimbleMarkets/ntcharts/barchart"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/taskboard/internal/board"
	"github.com/sadopc/taskboard/internal/view"
)

type statsMode int

const (
	statsAll statsMode = iota
	statsFiltered
)

// stageStats counts one column's tasks.
type stageStats struct {
	stage      board.Status
	byPriority map[board.Priority]int
	total      int
	overdue    int
	recurring  int
}

type statsModel struct {
	store  *board.Store
	now    func() time.Time
	width  int
	height int

	mode  statsMode
	stats []stageStats

	chart barchart.Model
}

func newStatsModel(s *board.Store) statsModel {
	return statsModel{
		store: s,
		now:   time.Now,
		chart: barchart.New(60, 12),
	}
}

func (m *statsModel) setSize(w, h int) {
	m.width = w
	m.height = h
}

type statsDataMsg struct {
	stats []stageStats
}

func (m statsModel) refresh() tea.Cmd {
	return func() tea.Msg {
		return statsDataMsg{stats: collectStats(m.store.Snapshot(), m.mode == statsFiltered, m.now())}
	}
}

// collectStats tallies each stage. With filtered set, the board's filters
// apply the same way they do to the columns.
func collectStats(snap board.Snapshot, filtered bool, now time.Time) []stageStats {
	out := make([]stageStats, 0, len(board.Stages))
	for _, st := range board.Stages {
		var tasks []board.Task
		if filtered {
			tasks = view.Derive(snap.Tasks, snap.Filters, snap.Sort, st)
		} else {
			for _, t := range snap.Tasks {
				if t.Status == st {
					tasks = append(tasks, t)
				}
			}
		}

		s := stageStats{stage: st, byPriority: make(map[board.Priority]int), total: len(tasks)}
		for _, t := range tasks {
			s.byPriority[t.Priority]++
			if t.IsRecurring {
				s.recurring++
			}
			if t.DueDate != nil && !t.Completed() && view.EndOfDay(*t.DueDate).Before(now) {
				s.overdue++
			}
		}
		out = append(out, s)
	}
	return out
}

func (m statsModel) update(msg tea.Msg) (statsModel, tea.Cmd) {
	switch msg := msg.(type) {
	case statsDataMsg:
		m.stats = msg.stats
		m.buildChart()
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Left), key.Matches(msg, keys.Right):
			if m.mode == statsAll {
				m.mode = statsFiltered
			} else {
				m.mode = statsAll
			}
			return m, m.refresh()
		}
	}
	return m, nil
}

func (m *statsModel) buildChart() {
	chartWidth := max(20, m.width-8)
	chartHeight := 12
	if m.height > 30 {
		chartHeight = 16
	}

	m.chart = barchart.New(chartWidth, chartHeight)

	var bars []barchart.BarData
	for _, s := range m.stats {
		var values []barchart.BarValue
		for _, p := range board.Priorities {
			if n := s.byPriority[p]; n > 0 {
				values = append(values, barchart.BarValue{
					Name:  string(p),
					Value: float64(n),
					Style: priorityStyle(p),
				})
			}
		}
		if len(values) == 0 {
			values = []barchart.BarValue{{Name: "", Value: 0, Style: lipgloss.NewStyle().Foreground(colorSubtle)}}
		}
		bars = append(bars, barchart.BarData{
			Label:  stageTitles[s.stage],
			Values: values,
		})
	}

	m.chart.PushAll(bars)
	m.chart.Draw()
}

func (m statsModel) view() string {
	w := m.width - 4

	allTab := inactiveTabStyle.Render("All")
	filteredTab := inactiveTabStyle.Render("Filtered")
	if m.mode == statsAll {
		allTab = activeTabStyle.Render("All")
	} else {
		filteredTab = activeTabStyle.Render("Filtered")
	}
	header := lipgloss.JoinHorizontal(lipgloss.Bottom,
		titleStyle.Render("Stats"), "  ", allTab, filteredTab,
	)

	nav := mutedStyle.Render("  ←/→: all / filtered")

	return panelStyle.Width(w).Render(
		lipgloss.JoinVertical(lipgloss.Left,
			header, "", m.chart.View(), "", m.renderLegend(), "", m.renderTable(w), "", nav,
		),
	)
}

func (m statsModel) renderTable(w int) string {
	if len(m.stats) == 0 {
		return mutedStyle.Render("  No tasks")
	}

	var rows []string
	rows = append(rows, mutedStyle.Render(fmt.Sprintf("  %-12s %6s %6s %6s %6s %8s %9s", "Column", "Total", "High", "Med", "Low", "Overdue", "Recurring")))
	rows = append(rows, mutedStyle.Render("  "+strings.Repeat("─", max(0, min(w-6, 60)))))

	for _, s := range m.stats {
		rows = append(rows, fmt.Sprintf("  %-12s %6d %6d %6d %6d %8d %9d",
			stageTitles[s.stage], s.total,
			s.byPriority[board.PriorityHigh], s.byPriority[board.PriorityMedium], s.byPriority[board.PriorityLow],
			s.overdue, s.recurring,
		))
	}
	return strings.Join(rows, "\n")
}

func (m statsModel) renderLegend() string {
	items := make([]string, 0, len(board.Priorities))
	for _, p := range board.Priorities {
		items = append(items, fmt.Sprintf("%s %s", priorityStyle(p).Render("●"), p))
	}
	return "  " + strings.Join(items, "  ")
}
