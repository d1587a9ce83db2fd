package stats

import (
	"context"
	"io"
	"sort"

	"github.com/verte-zerg/runlog/internal/model"
	"github.com/verte-zerg/runlog/internal/progress"
	"github.com/verte-zerg/runlog/internal/store"
)

// Report contains precomputed data for stats rendering.
type Report struct {
	Bests []model.LevelBest
	// Levels orders Times by level id.
	Levels []string
	Times  map[string][]float64
}

// BuildReport loads and prepares history data for stats rendering.
func BuildReport(ctx context.Context, st *store.Store, cfg model.StatsConfig) (Report, error) {
	bests, err := st.BestByLevel(ctx, cfg)
	if err != nil {
		return Report{}, err
	}
	completions, err := st.ListCompletions(ctx, cfg)
	if err != nil {
		return Report{}, err
	}
	rows := make([]model.TelemetryRow, len(completions))
	for i, c := range completions {
		rows[i] = c.Row
	}
	report := reportFromRows(rows)
	report.Bests = bests
	return report, nil
}

// ReportFromTelemetry builds a report from playthrough rows, folding them
// through a ledger to find each level's best values.
func ReportFromTelemetry(rows []model.TelemetryRow) Report {
	report := reportFromRows(rows)
	ledger := progress.NewLedger()
	runs := map[string]int{}
	for _, row := range rows {
		ledger.Record(row.Level, row.CompletionTime, row.EnemiesRemaining)
		runs[row.Level]++
	}
	for _, level := range ledger.Levels() {
		rec, _ := ledger.Query(level)
		report.Bests = append(report.Bests, model.LevelBest{
			Level:                level,
			Runs:                 runs[level],
			BestTimeSeconds:      rec.BestTimeSeconds,
			BestEnemiesRemaining: rec.BestEnemiesRemaining,
		})
	}
	return report
}

func reportFromRows(rows []model.TelemetryRow) Report {
	times := map[string][]float64{}
	for _, row := range rows {
		times[row.Level] = append(times[row.Level], row.CompletionTime)
	}
	levels := make([]string, 0, len(times))
	for level := range times {
		levels = append(levels, level)
	}
	sort.Strings(levels)
	return Report{Levels: levels, Times: times}
}

// WriteReport renders the best-run table followed by the time curves.
func WriteReport(w io.Writer, report Report, window, width int) error {
	if err := RenderBests(w, report.Bests); err != nil {
		return err
	}
	return RenderCurves(w, report.Levels, report.Times, window, width)
}
