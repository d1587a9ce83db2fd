package main

import (
	"context"
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/verte-zerg/runlog/internal/model"
	"github.com/verte-zerg/runlog/internal/stats"
	"github.com/verte-zerg/runlog/internal/statsui"
	"github.com/verte-zerg/runlog/internal/store"
)

func newStatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show best runs and completion times",
		Args:  cobra.NoArgs,
		RunE:  runStatsCmd,
	}
	cmd.Flags().StringVar(&statsLevel, "level", "", "level filter")
	cmd.Flags().StringVar(&statsSince, "since", "", "start date (YYYY-MM-DD)")
	cmd.Flags().IntVar(&statsLast, "last", 0, "limit curves to the last N completions")
	cmd.Flags().IntVar(&statsWindow, "window", defaultCurveWindow, "moving average window")
	cmd.Flags().StringVar(&statsCSV, "csv", "", "read a playthrough file instead of the history database")
	cmd.Flags().BoolVar(&statsTUI, "tui", false, "browse the history database interactively")
	return cmd
}

func runStatsCmd(cmd *cobra.Command, _ []string) error {
	if statsLast < 0 {
		return fmt.Errorf("--last must be >= 0")
	}
	if statsWindow < 1 {
		return fmt.Errorf("--window must be >= 1")
	}
	if statsTUI {
		return runStatsTUI()
	}
	report, err := loadReport(cmd.Context())
	if err != nil {
		return err
	}
	width := stats.TerminalWidth(os.Stdout)
	if err := stats.WriteReport(cmd.OutOrStdout(), report, statsWindow, width); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func loadReport(ctx context.Context) (stats.Report, error) {
	if statsCSV != "" {
		rows, err := stats.ReadTelemetry(statsCSV)
		if err != nil {
			return stats.Report{}, fmt.Errorf("failed to read telemetry: %w", err)
		}
		if statsLevel != "" {
			filtered := rows[:0]
			for _, row := range rows {
				if row.Level == statsLevel {
					filtered = append(filtered, row)
				}
			}
			rows = filtered
		}
		if statsLast > 0 && len(rows) > statsLast {
			rows = rows[len(rows)-statsLast:]
		}
		return stats.ReportFromTelemetry(rows), nil
	}

	cfg, err := statsConfig()
	if err != nil {
		return stats.Report{}, err
	}
	st, err := openHistory()
	if err != nil {
		return stats.Report{}, err
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}()
	if ctx == nil {
		ctx = context.Background()
	}
	return stats.BuildReport(ctx, st, cfg)
}

func statsConfig() (model.StatsConfig, error) {
	var sinceTime *time.Time
	if statsSince != "" {
		parsed, err := time.ParseInLocation("2006-01-02", statsSince, time.Local)
		if err != nil {
			return model.StatsConfig{}, fmt.Errorf("invalid --since value: %w", err)
		}
		sinceTime = &parsed
	}
	return model.StatsConfig{Level: statsLevel, Since: sinceTime, Last: statsLast}, nil
}

func openHistory() (*store.Store, error) {
	dbPath, err := historyPath()
	if err != nil {
		return nil, err
	}
	st, err := store.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open db: %w", err)
	}
	return st, nil
}

func runStatsTUI() error {
	cfg, err := statsConfig()
	if err != nil {
		return err
	}
	st, err := openHistory()
	if err != nil {
		return err
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}()

	m := statsui.NewModel(st, cfg, statsWindow)
	program := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run stats TUI: %w", err)
	}
	return nil
}
