package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/verte-zerg/runlog/internal/config"
	"github.com/verte-zerg/runlog/internal/game"
	"github.com/verte-zerg/runlog/internal/objective"
	"github.com/verte-zerg/runlog/internal/sim"
	"github.com/verte-zerg/runlog/internal/store"
	"github.com/verte-zerg/runlog/internal/telemetry"
	"github.com/verte-zerg/runlog/internal/world"
)

const defaultVisualRange = sim.DefaultVisualRange

// gameFlags holds the flags shared by play and replay.
type gameFlags struct {
	hub              string
	interactDistance float64
	levels           string
	telemetryDir     string
	noTelemetry      bool
	noHistory        bool
	async            bool
	seed             int64
}

func addGameFlags(cmd *cobra.Command, f *gameFlags) {
	cmd.Flags().StringVar(&f.hub, "hub", objective.DefaultLevels().Hub, "hub level id")
	cmd.Flags().Float64Var(&f.interactDistance, "interact-distance", objective.DefaultInteractDistance, "interact reach in cells")
	cmd.Flags().StringVar(&f.levels, "levels", "", "level layout file (default: built-in layouts)")
	cmd.Flags().StringVar(&f.telemetryDir, "telemetry-dir", "", "directory for playthrough files")
	cmd.Flags().BoolVar(&f.noTelemetry, "no-telemetry", false, "do not write playthrough files")
	cmd.Flags().Int64Var(&f.seed, "seed", 0, "enemy movement seed (0 = random)")
}

type settings struct {
	levels           objective.LevelSet
	levelsPath       string
	interactDistance float64
	visualRange      float64
	seed             int64
	telemetry        bool
	telemetryDir     string
	async            bool
	history          bool
	dbPath           string
	logLevel         slog.Level
}

func configPath() string {
	if env, err := config.LoadEnv(); err == nil && env.ConfigPath != "" {
		return env.ConfigPath
	}
	return config.DefaultConfigPath()
}

// resolveSettings layers defaults, the config file, RUNLOG_* variables and
// explicitly set flags, in that order.
func resolveSettings(cmd *cobra.Command, f gameFlags) (settings, error) {
	env, err := config.LoadEnv()
	if err != nil {
		return settings{}, fmt.Errorf("failed to load environment: %w", err)
	}
	fileCfg, err := config.LoadConfig(configPath())
	if err != nil {
		return settings{}, fmt.Errorf("failed to load config: %w", err)
	}

	s := settings{
		levels:           objective.DefaultLevels(),
		levelsPath:       f.levels,
		interactDistance: f.interactDistance,
		visualRange:      defaultVisualRange,
		seed:             f.seed,
		telemetry:        !f.noTelemetry,
		telemetryDir:     config.DefaultTelemetryDir(),
		async:            f.async,
		history:          !f.noHistory,
		dbPath:           config.DefaultDBPath(),
	}
	s.levels.Hub = f.hub

	g := fileCfg.Game
	applyStringConfig(cmd, "hub", &s.levels.Hub, g.Hub)
	applyStringConfig(cmd, "", &s.levels.ReachExit, g.ReachExitLevel)
	applyStringConfig(cmd, "", &s.levels.KillAll, g.KillAllLevel)
	applyStringConfig(cmd, "", &s.levels.Heist, g.HeistLevel)
	applyFloatConfig(cmd, "interact-distance", &s.interactDistance, g.InteractDistance)
	applyStringConfig(cmd, "levels", &s.levelsPath, g.Levels)
	applyFloatConfig(cmd, "", &s.visualRange, g.VisualRange)
	applyInt64Config(cmd, "seed", &s.seed, g.Seed)

	t := fileCfg.Telemetry
	applyStringConfig(cmd, "", &s.telemetryDir, t.Dir)
	applyBoolConfig(cmd, "no-telemetry", &s.telemetry, t.Enabled)
	applyBoolConfig(cmd, "async-telemetry", &s.async, t.Async)
	applyBoolConfig(cmd, "no-history", &s.history, t.History)
	applyStringConfig(cmd, "", &s.dbPath, t.DB)

	if env.TelemetryDir != "" {
		s.telemetryDir = env.TelemetryDir
	}
	if env.DBPath != "" {
		s.dbPath = env.DBPath
	}
	if cmd.Flags().Changed("telemetry-dir") {
		s.telemetryDir = f.telemetryDir
	}
	s.logLevel, err = config.SlogLevel(env.LogLevel)
	if err != nil {
		return settings{}, fmt.Errorf("invalid RUNLOG_LOG_LEVEL: %w", err)
	}

	if s.interactDistance <= 0 {
		return settings{}, fmt.Errorf("--interact-distance must be > 0")
	}
	if s.levels.Hub == "" {
		return settings{}, fmt.Errorf("--hub must not be empty")
	}
	return s, nil
}

// historyPath resolves the history database from the config file and
// RUNLOG_DB.
func historyPath() (string, error) {
	env, err := config.LoadEnv()
	if err != nil {
		return "", fmt.Errorf("failed to load environment: %w", err)
	}
	if env.DBPath != "" {
		return env.DBPath, nil
	}
	fileCfg, err := config.LoadConfig(configPath())
	if err != nil {
		return "", fmt.Errorf("failed to load config: %w", err)
	}
	if fileCfg.Telemetry.DB != nil {
		return *fileCfg.Telemetry.DB, nil
	}
	return config.DefaultDBPath(), nil
}

// sinkSet owns the telemetry sinks opened for one run.
type sinkSet struct {
	list    []game.Sink
	csvPath string
	closers []func() error
}

func (s *sinkSet) Close() error {
	var errs []error
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func openSinks(s settings, startedAt time.Time, logger *slog.Logger) (*sinkSet, error) {
	set := &sinkSet{}
	if s.telemetry {
		if err := os.MkdirAll(s.telemetryDir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create telemetry directory: %w", err)
		}
		writer := telemetry.NewWriter(s.telemetryDir, startedAt)
		set.csvPath = writer.Path()
		if s.async {
			queue := telemetry.NewQueue(writer, func(err error) {
				logger.Error("telemetry write failed", "err", err)
			})
			set.list = append(set.list, queue)
			set.closers = append(set.closers, queue.Close)
		} else {
			set.list = append(set.list, writer)
		}
		logger.Info("telemetry enabled", "path", writer.Path(), "async", s.async)
	}
	if s.history {
		st, err := store.Open(s.dbPath)
		if err != nil {
			return nil, errors.Join(fmt.Errorf("failed to open db: %w", err), set.Close())
		}
		sink := store.NewSink(st)
		set.list = append(set.list, sink)
		set.closers = append(set.closers, st.Close)
		logger.Info("history enabled", "db", s.dbPath, "session", sink.SessionID())
	}
	return set, nil
}

type rigOptions struct {
	Sinks  []game.Sink
	Logger *slog.Logger
	// Now drives the level clock; defaults to time.Now.
	Now func() time.Time
}

// rig is a loaded world plus the manager coordinating it.
type rig struct {
	registry *world.Registry
	world    *sim.World
	manager  *game.Manager
}

func newRig(s settings, opts rigOptions) (*rig, error) {
	set, err := loadLevels(s.levelsPath)
	if err != nil {
		return nil, err
	}
	if err := set.Require(s.levels.Hub, s.levels.ReachExit, s.levels.KillAll, s.levels.Heist); err != nil {
		return nil, err
	}
	reg := world.NewRegistry()
	w, err := sim.New(sim.Options{
		Layouts:     set,
		Registry:    reg,
		Now:         opts.Now,
		Seed:        s.seed,
		VisualRange: s.visualRange,
	})
	if err != nil {
		return nil, err
	}
	eval := objective.New(objective.Config{InteractDistance: s.interactDistance, Levels: s.levels})
	mgr, err := game.NewManager(game.Options{
		Evaluator: eval,
		World:     reg,
		Loader:    w,
		Clock:     w,
		Weapons:   w,
		Sinks:     opts.Sinks,
		Logger:    opts.Logger,
	})
	if err != nil {
		return nil, err
	}
	if err := w.Load(s.levels.Hub); err != nil {
		return nil, err
	}
	mgr.OnLevelActivated(s.levels.Hub)
	return &rig{registry: reg, world: w, manager: mgr}, nil
}

func applyStringConfig(cmd *cobra.Command, name string, target, value *string) {
	if value == nil {
		return
	}
	if name != "" && cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyFloatConfig(cmd *cobra.Command, name string, target, value *float64) {
	if value == nil {
		return
	}
	if name != "" && cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyInt64Config(cmd *cobra.Command, name string, target, value *int64) {
	if value == nil {
		return
	}
	if name != "" && cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyBoolConfig(cmd *cobra.Command, name string, target, value *bool) {
	if value == nil {
		return
	}
	if name != "" && cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}
