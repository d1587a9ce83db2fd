// Package main provides the CLI entrypoint for runlog.
package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/verte-zerg/runlog/internal/config"
	"github.com/verte-zerg/runlog/internal/level"
	"github.com/verte-zerg/runlog/internal/objective"
	"github.com/verte-zerg/runlog/internal/tui"
)

const (
	defaultStepEvery   = 5
	defaultCurveWindow = 3
)

var (
	playFlags gameFlags

	statsLevel  string
	statsSince  string
	statsLast   int
	statsWindow int
	statsCSV    string
	statsTUI    bool

	levelsPath string
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "runlog",
		Short:         "Terminal level runner with playthrough telemetry",
		SilenceUsage:  true,
		SilenceErrors: false,
		Args:          cobra.NoArgs,
		RunE:          runPlayCmd,
	}

	addGameFlags(rootCmd, &playFlags)
	rootCmd.Flags().BoolVar(&playFlags.noHistory, "no-history", false, "do not record completions in the history database")
	rootCmd.Flags().BoolVar(&playFlags.async, "async-telemetry", false, "write telemetry rows from a background goroutine")

	rootCmd.AddCommand(newReplayCmd())
	rootCmd.AddCommand(newStatsCmd())
	rootCmd.AddCommand(newLevelsCmd())
	rootCmd.AddCommand(newConfigCmd())

	return rootCmd
}

func runPlayCmd(cmd *cobra.Command, _ []string) error {
	s, err := resolveSettings(cmd, playFlags)
	if err != nil {
		return err
	}

	logFile, err := openLogFile(config.DefaultLogPath())
	if err != nil {
		return err
	}
	defer func() {
		if cerr := logFile.Close(); cerr != nil {
			// Best-effort close of the log file.
			_ = cerr
		}
	}()
	logger := newLogger(logFile, s.logLevel)

	sinks, err := openSinks(s, time.Now(), logger)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := sinks.Close(); cerr != nil {
			logErrf("failed to close telemetry: %v\n", cerr)
		}
	}()

	r, err := newRig(s, rigOptions{Sinks: sinks.list, Logger: logger})
	if err != nil {
		return err
	}

	m, err := tui.NewModel(tui.Options{
		Manager:   r.manager,
		World:     r.world,
		Logger:    logger,
		StepEvery: defaultStepEvery,
	})
	if err != nil {
		return err
	}
	r.manager.OnSessionStart()
	defer r.manager.OnSessionEnd()
	program := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	if path := sinks.csvPath; path != "" {
		if _, err := os.Stat(path); err == nil {
			logErrf("Telemetry written to %s\n", path)
		}
	}
	return nil
}

func openLogFile(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	return f, nil
}

func newLogger(w io.Writer, lvl slog.Level) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl}))
}

func newLevelsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "levels",
		Short: "List level layouts",
		Args:  cobra.NoArgs,
		RunE:  runLevelsCmd,
	}
	cmd.Flags().StringVar(&levelsPath, "levels", "", "level layout file (default: built-in layouts)")
	return cmd
}

func runLevelsCmd(cmd *cobra.Command, _ []string) error {
	set, err := loadLevels(levelsPath)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	for _, id := range set.IDs() {
		l, _ := set.Get(id)
		width := 0
		for _, row := range l.Rows {
			width = max(width, len(row))
		}
		if _, err := fmt.Fprintf(out, "%-16s %-10s %dx%d\n", l.ID, l.Archetype, width, len(l.Rows)); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	}
	return nil
}

func loadLevels(path string) (*level.Set, error) {
	if path == "" {
		set, err := level.Default()
		if err != nil {
			return nil, fmt.Errorf("failed to load built-in levels: %w", err)
		}
		return set, nil
	}
	return level.LoadFile(path)
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Create/open config file",
		Args:  cobra.NoArgs,
		RunE:  runConfigCmd,
	}
}

func runConfigCmd(_ *cobra.Command, _ []string) error {
	path := configPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to stat config: %w", err)
		}
		if err := os.WriteFile(path, []byte(defaultConfigTemplate()), 0o644); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
	}

	editor := strings.TrimSpace(os.Getenv("EDITOR"))
	if editor == "" {
		editor = "vi"
	}
	parts := strings.Fields(editor)
	if len(parts) == 0 {
		return fmt.Errorf("editor command is empty")
	}
	cmd := exec.Command(parts[0], append(parts[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}

func defaultConfigTemplate() string {
	levels := objective.DefaultLevels()
	return fmt.Sprintf(`# runlog configuration
# Uncomment a value to enable it. CLI flags override environment and config values.

[game]
# hub = %q                  # Hub level id
# reach-exit-level = %q      # Level entered from marker 1
# kill-all-level = %q       # Level entered from marker 2
# heist-level = %q         # Level entered from marker 3
# interact-distance = %.1f          # Interact reach in cells
# levels = ""                       # Level layout file (default: built-in)
# visual-range = %.1f               # Enemy visual range in cells
# seed = 0                          # Enemy movement seed (0 = random)

[telemetry]
# enabled = true                    # Write Playthrough_*.csv files
# dir = ""                          # Directory for playthrough files
# async = false                     # Write rows from a background goroutine
# history = true                    # Record completions in the history database
# db = ""                           # History database path
`,
		levels.Hub,
		levels.ReachExit,
		levels.KillAll,
		levels.Heist,
		objective.DefaultInteractDistance,
		defaultVisualRange,
	)
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
