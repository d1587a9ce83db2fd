// Package game coordinates objective evaluation, best-run tracking and
// telemetry for a running game.
package game

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/verte-zerg/runlog/internal/model"
	"github.com/verte-zerg/runlog/internal/objective"
	"github.com/verte-zerg/runlog/internal/progress"
	"github.com/verte-zerg/runlog/internal/session"
	"github.com/verte-zerg/runlog/internal/telemetry"
	"github.com/verte-zerg/runlog/internal/world"
)

// SceneLoader switches the active level. Load is treated as synchronous.
type SceneLoader interface {
	Load(levelID string) error
}

// Clock reports seconds since the active level was loaded.
type Clock interface {
	SinceLevelLoad() float64
}

// WeaponSource exposes cumulative weapon usage. ok is false when the
// instrumented weapon is not present in the current level.
type WeaponSource interface {
	WeaponUsage() (usage model.WeaponUsage, ok bool)
}

// Sink receives one telemetry row per completion while a session is live.
type Sink = telemetry.Appender

// Options wires a Manager to its collaborators. Evaluator, World, Loader and
// Clock are required.
type Options struct {
	Evaluator *objective.Evaluator
	World     world.Query
	Loader    SceneLoader
	Clock     Clock
	Weapons   WeaponSource
	Sinks     []Sink
	Logger    *slog.Logger
}

// Result describes what an interaction did.
type Result struct {
	Outcome objective.Outcome
	// Row and Best are set for completions.
	Row  model.TelemetryRow
	Best model.CompletionRecord
	// Recorded reports whether the row was handed to the sinks.
	Recorded bool
}

// Manager owns the ledger, counters and session gate for one process.
type Manager struct {
	eval    *objective.Evaluator
	world   world.Query
	loader  SceneLoader
	clock   Clock
	weapons WeaponSource
	sinks   []Sink
	logger  *slog.Logger

	ledger      *progress.Ledger
	completions *progress.Counters
	entries     *progress.Counters
	session     session.State

	mu               sync.RWMutex
	activeLevel      string
	totalEnemies     int
	enemiesRemaining int
}

// NewManager validates opts and returns a Manager with an empty ledger.
func NewManager(opts Options) (*Manager, error) {
	if opts.Evaluator == nil {
		return nil, errors.New("game: evaluator is required")
	}
	if opts.World == nil {
		return nil, errors.New("game: world is required")
	}
	if opts.Loader == nil {
		return nil, errors.New("game: scene loader is required")
	}
	if opts.Clock == nil {
		return nil, errors.New("game: clock is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		eval:        opts.Evaluator,
		world:       opts.World,
		loader:      opts.Loader,
		clock:       opts.Clock,
		weapons:     opts.Weapons,
		sinks:       opts.Sinks,
		logger:      logger,
		ledger:      progress.NewLedger(),
		completions: progress.NewCounters(),
		entries:     progress.NewCounters(),
	}, nil
}

// OnLevelActivated records levelID as active and samples its enemy count.
func (m *Manager) OnLevelActivated(levelID string) {
	enemies := len(m.world.FindAll(world.TagEnemy))
	m.mu.Lock()
	m.activeLevel = levelID
	m.totalEnemies = enemies
	m.enemiesRemaining = enemies
	m.mu.Unlock()
	m.logger.Debug("level activated", "level", levelID, "enemies", enemies)
}

// OnSessionStart enables telemetry.
func (m *Manager) OnSessionStart() {
	m.session.Start()
	m.logger.Info("play session started")
}

// OnSessionEnd disables telemetry.
func (m *Manager) OnSessionEnd() {
	m.session.End()
	m.logger.Info("play session ended")
}

// Tick samples the live enemy count. Call once per frame.
func (m *Manager) Tick() {
	enemies := len(m.world.FindAll(world.TagEnemy))
	m.mu.Lock()
	m.enemiesRemaining = enemies
	m.mu.Unlock()
}

// Interact evaluates one interact press. A returned error never undoes the
// ledger or counter updates made for the same interaction.
func (m *Manager) Interact() (Result, error) {
	active := m.ActiveLevel()
	out := m.eval.Evaluate(m.world, active)
	m.mu.Lock()
	m.enemiesRemaining = out.EnemiesRemaining
	m.mu.Unlock()

	switch out.Kind {
	case objective.Enter:
		return Result{Outcome: out}, m.enter(out)
	case objective.Complete:
		return m.complete(out)
	default:
		return Result{Outcome: out}, nil
	}
}

func (m *Manager) enter(out objective.Outcome) error {
	m.entries.Increment(out.Archetype)
	if err := m.loader.Load(out.Level); err != nil {
		return fmt.Errorf("game: load %q: %w", out.Level, err)
	}
	m.OnLevelActivated(out.Level)
	m.logger.Info("entered level", "level", out.Level, "archetype", out.Archetype.String())
	return nil
}

func (m *Manager) complete(out objective.Outcome) (Result, error) {
	elapsed := m.clock.SinceLevelLoad()
	m.mu.RLock()
	total := m.totalEnemies
	m.mu.RUnlock()
	usage := m.weaponUsage()

	m.ledger.Record(out.Level, elapsed, float64(out.EnemiesRemaining))
	best, _ := m.ledger.Query(out.Level)

	var errs []error
	hub := m.eval.Levels().Hub
	if err := m.loader.Load(hub); err != nil {
		errs = append(errs, fmt.Errorf("game: load %q: %w", hub, err))
	} else {
		m.OnLevelActivated(hub)
	}
	m.completions.Increment(out.Archetype)

	row := model.TelemetryRow{
		Level:            out.Level,
		CompletionTime:   elapsed,
		TotalEnemies:     float64(total),
		EnemiesRemaining: float64(out.EnemiesRemaining),
		BottlesUsed:      float64(usage.Bottles),
		GunsUsed:         float64(usage.Guns),
		ShieldsUsed:      float64(usage.Shields),
		Completions:      m.completions.Snapshot(),
	}
	m.logCompletion(row, best)

	res := Result{Outcome: out, Row: row, Best: best}
	if m.session.Playing() {
		res.Recorded = true
		for _, sink := range m.sinks {
			if err := sink.Append(row); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return res, errors.Join(errs...)
}

func (m *Manager) weaponUsage() model.WeaponUsage {
	if m.weapons == nil {
		m.logger.Warn("weapon usage source not configured; reporting zero usage")
		return model.WeaponUsage{}
	}
	usage, ok := m.weapons.WeaponUsage()
	if !ok {
		m.logger.Warn("weapon usage source not found; reporting zero usage")
		return model.WeaponUsage{}
	}
	return usage
}

func (m *Manager) logCompletion(row model.TelemetryRow, best model.CompletionRecord) {
	m.logger.Info("level completed",
		"level", row.Level,
		"seconds", row.CompletionTime,
		"best_seconds", best.BestTimeSeconds,
		"enemies_remaining", row.EnemiesRemaining,
		"best_enemies_remaining", best.BestEnemiesRemaining,
		"total_enemies", row.TotalEnemies,
	)
	m.logger.Info("weapon usage",
		"bottles", row.BottlesUsed,
		"guns", row.GunsUsed,
		"shields", row.ShieldsUsed,
	)
	m.logger.Info("completions",
		"reach_exit", row.Completions.ReachExit,
		"kill_all", row.Completions.KillAll,
		"heist", row.Completions.Heist,
	)
}

// ActiveLevel returns the level id passed to the last OnLevelActivated.
func (m *Manager) ActiveLevel() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.activeLevel
}

// TotalEnemies returns the enemy count sampled when the level was activated.
func (m *Manager) TotalEnemies() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.totalEnemies
}

// EnemiesRemaining returns the most recent live enemy count.
func (m *Manager) EnemiesRemaining() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.enemiesRemaining
}

// Best returns the ledger record for a level.
func (m *Manager) Best(levelID string) (model.CompletionRecord, bool) {
	return m.ledger.Query(levelID)
}

// Completions returns completion counts per archetype.
func (m *Manager) Completions() model.Counts {
	return m.completions.Snapshot()
}

// Entries returns level entry counts per archetype.
func (m *Manager) Entries() model.Counts {
	return m.entries.Snapshot()
}

// Playing reports whether the session gate is open.
func (m *Manager) Playing() bool {
	return m.session.Playing()
}
