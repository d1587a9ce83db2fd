// Package tui provides the Bubble Tea play screen.
package tui

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/runlog/internal/game"
	"github.com/verte-zerg/runlog/internal/model"
	"github.com/verte-zerg/runlog/internal/objective"
	"github.com/verte-zerg/runlog/internal/sim"
)

const (
	tickInterval     = 100 * time.Millisecond
	defaultStepEvery = 5
)

var (
	wallStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	floorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#3A3A3A"))
	playerStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A")).Bold(true)
	exitStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#52C41A"))
	entryStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#40A9FF"))
	itemStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#EB2F96"))
	patrolStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0"))
	alertStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FADB14"))
	aimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	messageStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	footerStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
)

// Options configures the play screen.
type Options struct {
	Manager *game.Manager
	World   *sim.World
	Logger  *slog.Logger
	// StepEvery is how many ticks pass between enemy moves.
	StepEvery int
}

type tickMsg time.Time

// Model implements the Bubble Tea play UI.
type Model struct {
	mgr       *game.Manager
	world     *sim.World
	logger    *slog.Logger
	keys      keyMap
	help      help.Model
	stepEvery int
	frames    int

	width  int
	height int

	message string
	isError bool
}

// NewModel constructs a play model.
func NewModel(opts Options) (*Model, error) {
	if opts.Manager == nil {
		return nil, errors.New("tui: manager is required")
	}
	if opts.World == nil {
		return nil, errors.New("tui: world is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	stepEvery := opts.StepEvery
	if stepEvery <= 0 {
		stepEvery = defaultStepEvery
	}
	return &Model{
		mgr:       opts.Manager,
		world:     opts.World,
		logger:    logger,
		keys:      defaultKeyMap(),
		help:      help.New(),
		stepEvery: stepEvery,
		message:   "Walk onto a numbered marker and press e to enter a level.",
	}, nil
}

func tick() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return tick()
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil
	case tickMsg:
		m.frames++
		if m.frames%m.stepEvery == 0 {
			m.world.Step()
		}
		m.mgr.Tick()
		return m, tick()
	case tea.KeyMsg:
		return m.handleKey(msg)
	default:
		return m, nil
	}
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	case key.Matches(msg, m.keys.Up):
		m.world.Move(0, -1)
	case key.Matches(msg, m.keys.Down):
		m.world.Move(0, 1)
	case key.Matches(msg, m.keys.Left):
		m.world.Move(-1, 0)
	case key.Matches(msg, m.keys.Right):
		m.world.Move(1, 0)
	case key.Matches(msg, m.keys.Cycle):
		m.setMessage(fmt.Sprintf("Selected %s.", m.world.CycleWeapon()), false)
	case key.Matches(msg, m.keys.Attack):
		if m.world.Attack() {
			m.setMessage(fmt.Sprintf("Enemy down with the %s.", m.world.Weapon()), false)
		}
		m.mgr.Tick()
	case key.Matches(msg, m.keys.Interact):
		m.interact()
	}
	return m, nil
}

func (m *Model) interact() {
	res, err := m.mgr.Interact()
	if err != nil {
		m.logger.Error("interaction failed", "err", err)
		m.setMessage(fmt.Sprintf("Error: %v", err), true)
		return
	}
	if text := outcomeMessage(res); text != "" {
		m.setMessage(text, false)
	}
}

func outcomeMessage(res game.Result) string {
	out := res.Outcome
	switch out.Kind {
	case objective.Enter:
		return fmt.Sprintf("Entered %s (%s).", out.Level, out.Archetype)
	case objective.Complete:
		return fmt.Sprintf("Completed %s in %.2fs with %d enemies left. Best %.2fs, fewest left %g.",
			out.Level, res.Row.CompletionTime, out.EnemiesRemaining,
			res.Best.BestTimeSeconds, res.Best.BestEnemiesRemaining)
	default:
		return ""
	}
}

func (m *Model) setMessage(text string, isError bool) {
	m.message = text
	m.isError = isError
}

// View implements tea.Model.
func (m *Model) View() string {
	grid := renderStyledGrid(buildStyledGrid(m.world.Render(), enemyModes(m.world.Enemies())))
	style := messageStyle
	if m.isError {
		style = errorStyle
	}
	message := wrapStyledRunes(buildMessageRunes(m.message, style), m.width)
	footer := renderFooter(m.footerState())
	helpView := m.help.View(m.keys)

	if m.width == 0 || m.height == 0 {
		return strings.Join([]string{grid, message, footer, helpView}, "\n")
	}
	bottom := lipgloss.JoinVertical(lipgloss.Center, message, footer, helpView)
	bodyHeight := m.height - lipgloss.Height(bottom)
	if bodyHeight < 1 {
		return lipgloss.JoinVertical(lipgloss.Left, grid, bottom)
	}
	body := lipgloss.Place(m.width, bodyHeight, lipgloss.Center, lipgloss.Center, grid)
	return body + "\n" + lipgloss.PlaceHorizontal(m.width, lipgloss.Center, bottom)
}

type footerState struct {
	level       string
	elapsed     float64
	remaining   int
	total       int
	best        model.CompletionRecord
	hasBest     bool
	weapon      sim.Weapon
	carrying    bool
	completions model.Counts
	playing     bool
}

func (m *Model) footerState() footerState {
	level := m.mgr.ActiveLevel()
	best, ok := m.mgr.Best(level)
	return footerState{
		level:       level,
		elapsed:     m.world.SinceLevelLoad(),
		remaining:   m.mgr.EnemiesRemaining(),
		total:       m.mgr.TotalEnemies(),
		best:        best,
		hasBest:     ok,
		weapon:      m.world.Weapon(),
		carrying:    m.world.HoldsItem(),
		completions: m.mgr.Completions(),
		playing:     m.mgr.Playing(),
	}
}

func renderFooter(s footerState) string {
	segments := []string{s.level, fmt.Sprintf("%.1fs", s.elapsed)}
	if s.total > 0 {
		segments = append(segments, fmt.Sprintf("Enemies %d/%d", s.remaining, s.total))
	}
	if s.hasBest {
		segments = append(segments, fmt.Sprintf("Best %.2fs · %g left", s.best.BestTimeSeconds, s.best.BestEnemiesRemaining))
	}
	if s.carrying {
		segments = append(segments, "Carrying loot")
	}
	segments = append(segments,
		fmt.Sprintf("Weapon %s", s.weapon),
		fmt.Sprintf("Cleared %d/%d/%d", s.completions.ReachExit, s.completions.KillAll, s.completions.Heist),
	)
	if !s.playing {
		segments = append(segments, "not recording")
	}
	return footerStyle.Render(strings.Join(segments, "  "))
}
