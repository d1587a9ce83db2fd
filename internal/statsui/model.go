// Package statsui provides the Bubble Tea history browser.
package statsui

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/runlog/internal/model"
	"github.com/verte-zerg/runlog/internal/stats"
	"github.com/verte-zerg/runlog/internal/store"
)

const (
	tabBests = iota
	tabCurves
)

const recentTimes = 10

var (
	activeNavStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F0F0F0")).
			Bold(true).
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#C89A3A"))
	inactiveNavStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#B0B0B0")).
				Padding(0, 1).
				Border(lipgloss.RoundedBorder(), true).
				BorderForeground(lipgloss.Color("#4A4A4A"))
	headerStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	errorStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	tableMutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#B8B8B8"))
)

// Model implements the Bubble Tea stats UI.
type Model struct {
	store  *store.Store
	cfg    model.StatsConfig
	window int

	report stats.Report
	errMsg string

	tabs       []string
	activeTab  int
	bestsTable table.Model
	curves     viewport.Model

	width  int
	height int

	filterMode   bool
	filterInputs []textinput.Model
	filterIndex  int
	filterError  string
}

// NewModel constructs a stats UI model.
func NewModel(st *store.Store, cfg model.StatsConfig, window int) *Model {
	if window < 1 {
		window = 1
	}
	m := &Model{
		store:  st,
		cfg:    cfg,
		window: window,
		tabs:   []string{"Best Runs", "Completion Times"},
		curves: viewport.New(0, 0),
	}
	m.initInputs()
	m.bestsTable = buildBestsTable(nil, 0, 1)
	m.refreshReport()
	return m
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.updateLayout()
		m.renderCurves()
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		if m.filterMode {
			return m.updateFilter(msg)
		}
		switch msg.String() {
		case "q":
			return m, tea.Quit
		case "left", "h", "right", "l":
			m.activeTab = (m.activeTab + 1) % len(m.tabs)
			if m.activeTab == tabBests {
				m.bestsTable.Focus()
			} else {
				m.bestsTable.Blur()
			}
			return m, tea.ClearScreen
		case "=":
			m.window = nextCurveWindow(m.window)
			m.renderCurves()
			return m, nil
		case "-":
			m.window = prevCurveWindow(m.window)
			m.renderCurves()
			return m, nil
		case "/":
			return m.startFilter()
		case "r":
			m.refreshReport()
			return m, nil
		default:
			var cmd tea.Cmd
			if m.activeTab == tabBests {
				m.bestsTable, cmd = m.bestsTable.Update(msg)
				return m, cmd
			}
			m.curves, cmd = m.curves.Update(msg)
			return m, cmd
		}
	}
	return m, nil
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}
	headerHeight, bodyHeight, footerHeight := m.layoutHeights()
	header := fitLines(m.renderHeader(), m.width, headerHeight)
	body := fitLines(m.renderBody(bodyHeight), m.width, bodyHeight)
	footer := fitLines(m.renderFooter(), m.width, footerHeight)
	return strings.Join([]string{header, body, footer}, "\n")
}

func (m *Model) refreshReport() {
	report, err := stats.BuildReport(context.Background(), m.store, m.cfg)
	if err != nil {
		m.errMsg = err.Error()
		m.report = stats.Report{}
		m.curves.SetContent("Failed to load stats.")
		return
	}
	m.errMsg = ""
	m.report = report
	width := m.width
	if width <= 0 {
		width = 80
	}
	_, bodyHeight, _ := m.layoutHeights()
	m.bestsTable = buildBestsTable(report.Bests, width, bodyHeight)
	if m.activeTab == tabBests {
		m.bestsTable.Focus()
	}
	m.renderCurves()
}

func (m *Model) renderCurves() {
	if m.errMsg != "" {
		return
	}
	width := m.width
	if width <= 0 {
		width = 80
	}
	var buf bytes.Buffer
	if len(m.report.Levels) == 0 {
		m.curves.SetContent("No completions found.")
		return
	}
	if err := stats.RenderCurves(&buf, m.report.Levels, m.report.Times, m.window, width); err != nil {
		m.curves.SetContent("Failed to render curves.")
		return
	}
	buf.WriteString("\nRecent Times\n")
	for _, level := range m.report.Levels {
		times := m.report.Times[level]
		if len(times) > recentTimes {
			times = times[len(times)-recentTimes:]
		}
		parts := make([]string, len(times))
		for i, v := range times {
			parts[i] = fmt.Sprintf("%.2fs", v)
		}
		buf.WriteString(truncateLine(level+": "+strings.Join(parts, " "), width))
		buf.WriteByte('\n')
	}
	m.curves.SetContent(buf.String())
}

func buildBestsTable(bests []model.LevelBest, width, height int) table.Model {
	columns := []table.Column{
		{Title: "Level", Width: 16},
		{Title: "Runs", Width: 5},
		{Title: "Best Time", Width: 10},
		{Title: "Fewest Left", Width: 12},
		{Title: "Last Completed", Width: 19},
	}
	rows := make([]table.Row, 0, len(bests))
	for _, b := range bests {
		last := "-"
		if !b.LastCompletedAt.IsZero() {
			last = b.LastCompletedAt.Local().Format(time.DateTime)
		}
		rows = append(rows, table.Row{
			b.Level,
			strconv.Itoa(b.Runs),
			fmt.Sprintf("%.2fs", b.BestTimeSeconds),
			fmt.Sprintf("%g", b.BestEnemiesRemaining),
			last,
		})
	}
	t := table.New(
		table.WithColumns(columns),
		table.WithRows(rows),
		table.WithHeight(maxInt(1, height-1)),
	)
	t.SetWidth(width)
	t.SetStyles(bestsTableStyles())
	return t
}

func bestsTableStyles() table.Styles {
	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		Border(lipgloss.NormalBorder(), false, false, true, false).
		BorderForeground(lipgloss.Color("#4A4A4A")).
		Foreground(lipgloss.Color("#C0C0C0")).
		Bold(true).
		Padding(0, 1).
		PaddingLeft(0)
	styles.Cell = styles.Cell.
		Padding(0, 1).
		PaddingLeft(0)
	styles.Selected = styles.Cell.
		Foreground(lipgloss.Color("#F0F0F0")).
		Bold(true)
	return styles
}

func (m *Model) initInputs() {
	m.filterInputs = []textinput.Model{
		newFilterInput("Level: "),
		newFilterInput("Since (YYYY-MM-DD): "),
		newFilterInput("Last: "),
	}
	m.setInputsFromConfig()
}

func newFilterInput(prompt string) textinput.Model {
	input := textinput.New()
	input.Prompt = prompt
	input.CharLimit = 0
	input.Cursor.SetMode(cursor.CursorBlink)
	return input
}

func (m *Model) setInputsFromConfig() {
	m.filterInputs[0].SetValue(m.cfg.Level)
	if m.cfg.Since != nil {
		m.filterInputs[1].SetValue(m.cfg.Since.Format("2006-01-02"))
	} else {
		m.filterInputs[1].SetValue("")
	}
	if m.cfg.Last > 0 {
		m.filterInputs[2].SetValue(strconv.Itoa(m.cfg.Last))
	} else {
		m.filterInputs[2].SetValue("")
	}
}

func (m *Model) layoutHeights() (headerHeight, bodyHeight, footerHeight int) {
	tabsHeight := maxInt(1, lipgloss.Height(activeNavStyle.Render("X")))
	headerHeight = tabsHeight + 1
	footerHeight = 1
	if !m.filterMode && m.errMsg != "" {
		footerHeight++
	}
	bodyHeight = maxInt(1, m.height-headerHeight-footerHeight)
	return headerHeight, bodyHeight, footerHeight
}

func (m *Model) updateLayout() {
	if m.width <= 0 || m.height <= 0 {
		return
	}
	_, bodyHeight, _ := m.layoutHeights()
	m.curves.Width = m.width
	m.curves.Height = bodyHeight
	m.bestsTable.SetWidth(m.width)
	m.bestsTable.SetHeight(maxInt(1, bodyHeight-1))
	for i := range m.filterInputs {
		promptWidth := lipgloss.Width(m.filterInputs[i].Prompt)
		m.filterInputs[i].Width = maxInt(10, m.width-promptWidth-2)
	}
}

func (m *Model) renderTabs() string {
	parts := make([]string, 0, len(m.tabs))
	for i, tab := range m.tabs {
		if i == m.activeTab {
			parts = append(parts, activeNavStyle.Render(tab))
		} else {
			parts = append(parts, inactiveNavStyle.Render(tab))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

func (m *Model) renderHeader() string {
	return padLines(m.renderTabs(), m.width) + "\n" + padLines(m.renderFilterSummary(), m.width)
}

func (m *Model) renderFilterSummary() string {
	level := m.cfg.Level
	if level == "" {
		level = "any"
	}
	since := "any"
	if m.cfg.Since != nil {
		since = m.cfg.Since.Format("2006-01-02")
	}
	last := "all"
	if m.cfg.Last > 0 {
		last = strconv.Itoa(m.cfg.Last)
	}
	summary := fmt.Sprintf("Settings: level=%s  since=%s  last=%s  window=%d", level, since, last, m.window)
	return headerStyle.Render(truncateLine(summary, m.width))
}

func (m *Model) renderFooter() string {
	if m.filterMode {
		return headerStyle.Render("tab/shift+tab: next field  enter: apply  esc: cancel")
	}
	help := headerStyle.Render("Nav: left/right  Scroll: up/down  Window: -/=  Settings: /  Reload: r  Quit: q")
	if m.errMsg != "" {
		return help + "\n" + errorStyle.Render(m.errMsg)
	}
	return help
}

func (m *Model) renderBody(height int) string {
	if m.filterMode {
		lines := []string{"Settings (enter to apply, esc to cancel)"}
		for _, input := range m.filterInputs {
			lines = append(lines, input.View())
		}
		if m.filterError != "" {
			lines = append(lines, errorStyle.Render(m.filterError))
		}
		return fitLines(strings.Join(lines, "\n"), m.width, height)
	}
	if m.activeTab == tabBests {
		if len(m.report.Bests) == 0 {
			return fitLines("No completions found.", m.width, height)
		}
		return fitLines(tableMutedStyle.Render(m.bestsTable.View()), m.width, height)
	}
	return fitLines(m.curves.View(), m.width, height)
}

func (m *Model) startFilter() (tea.Model, tea.Cmd) {
	m.filterMode = true
	m.filterError = ""
	m.setInputsFromConfig()
	return m, m.setFilterIndex(0)
}

func (m *Model) updateFilter(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.filterMode = false
		m.filterError = ""
		return m, nil
	case tea.KeyEnter:
		if err := m.applyFilter(); err != nil {
			m.filterError = err.Error()
			return m, nil
		}
		m.filterMode = false
		m.filterError = ""
		m.refreshReport()
		m.updateLayout()
		return m, nil
	case tea.KeyTab:
		return m, m.setFilterIndex(m.filterIndex + 1)
	case tea.KeyShiftTab:
		return m, m.setFilterIndex(m.filterIndex - 1)
	}
	var cmd tea.Cmd
	m.filterInputs[m.filterIndex], cmd = m.filterInputs[m.filterIndex].Update(msg)
	return m, cmd
}

func (m *Model) setFilterIndex(idx int) tea.Cmd {
	count := len(m.filterInputs)
	if idx < 0 {
		idx = count - 1
	}
	if idx >= count {
		idx = 0
	}
	m.filterIndex = idx
	var cmd tea.Cmd
	for i := range m.filterInputs {
		if i == m.filterIndex {
			cmd = m.filterInputs[i].Focus()
		} else {
			m.filterInputs[i].Blur()
		}
	}
	return cmd
}

func (m *Model) applyFilter() error {
	level := strings.TrimSpace(m.filterInputs[0].Value())
	sinceInput := strings.TrimSpace(m.filterInputs[1].Value())
	var since *time.Time
	if sinceInput != "" {
		parsed, err := time.ParseInLocation("2006-01-02", sinceInput, time.Local)
		if err != nil {
			return fmt.Errorf("invalid since date (expected YYYY-MM-DD)")
		}
		since = &parsed
	}

	lastInput := strings.TrimSpace(m.filterInputs[2].Value())
	last := 0
	if lastInput != "" {
		parsed, err := strconv.Atoi(lastInput)
		if err != nil || parsed < 0 {
			return fmt.Errorf("invalid last value (use 0 or positive integer)")
		}
		last = parsed
	}

	m.cfg = model.StatsConfig{Level: level, Since: since, Last: last}
	return nil
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func nextCurveWindow(n int) int {
	if n < 5 {
		return 5
	}
	if n%5 == 0 {
		return n + 5
	}
	return ((n / 5) + 1) * 5
}

func prevCurveWindow(n int) int {
	if n <= 5 {
		return 1
	}
	if n%5 == 0 {
		return n - 5
	}
	return (n / 5) * 5
}

func padLines(s string, width int) string {
	if width <= 0 || s == "" {
		return s
	}
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = padLine(line, width)
	}
	return strings.Join(lines, "\n")
}

func padLine(line string, width int) string {
	lineWidth := lipgloss.Width(line)
	if lineWidth < width {
		return line + strings.Repeat(" ", width-lineWidth)
	}
	return line
}

func fitLines(s string, width, height int) string {
	if width <= 0 || height <= 0 {
		return s
	}
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = padLine(line, width)
	}
	if len(lines) > height {
		lines = lines[:height]
	}
	for len(lines) < height {
		lines = append(lines, strings.Repeat(" ", width))
	}
	return strings.Join(lines, "\n")
}

func truncateLine(s string, width int) string {
	if width <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= width {
		return s
	}
	if width <= 3 {
		return string(runes[:width])
	}
	return string(runes[:width-3]) + "..."
}
