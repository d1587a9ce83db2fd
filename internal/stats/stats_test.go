package stats

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/runlog/internal/model"
	"github.com/verte-zerg/runlog/internal/telemetry"
)

func TestMovingAverage(t *testing.T) {
	got := MovingAverage([]float64{2, 4, 6, 8}, 2)
	assert.Equal(t, []float64{2, 3, 5, 7}, got)
	assert.Equal(t, []float64{1, 2}, MovingAverage([]float64{1, 2}, 1))
}

func TestSparkline(t *testing.T) {
	assert.Equal(t, "", Sparkline(nil))
	assert.Equal(t, "+++", Sparkline([]float64{5, 5, 5}))
	line := Sparkline([]float64{0, 10})
	assert.Equal(t, " @", line)
}

func TestRenderBestsEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, RenderBests(&buf, nil))
	assert.Equal(t, "No completions found.\n", buf.String())
}

func TestRenderCurvesClipsToWidth(t *testing.T) {
	var buf bytes.Buffer
	times := map[string][]float64{"Lvl": {1, 2, 3, 4, 5, 6, 7, 8, 9, 10}}
	require.NoError(t, RenderCurves(&buf, []string{"Lvl"}, times, 1, 9))
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "Completion Times", lines[0])
	assert.Equal(t, "Lvl  ", lines[1][:5])
	assert.Len(t, lines[1], 9)
}

func TestReadTelemetryFoldsBests(t *testing.T) {
	dir := t.TempDir()
	w := telemetry.NewWriter(dir, time.Date(2024, 3, 5, 14, 7, 9, 0, time.Local))
	rows := []model.TelemetryRow{
		{Level: "LevelKillTest", CompletionTime: 42, TotalEnemies: 5, EnemiesRemaining: 2, Completions: model.Counts{KillAll: 1}},
		{Level: "LevelKillTest", CompletionTime: 30, TotalEnemies: 5, EnemiesRemaining: 5, Completions: model.Counts{KillAll: 2}},
		{Level: "GetToEndTest", CompletionTime: 12.5, TotalEnemies: 1, EnemiesRemaining: 1, Completions: model.Counts{ReachExit: 1, KillAll: 2}},
	}
	for _, row := range rows {
		require.NoError(t, w.Append(row))
	}

	got, err := ReadTelemetry(w.Path())
	require.NoError(t, err)
	assert.Equal(t, rows, got)

	report := ReportFromTelemetry(got)
	assert.Equal(t, []string{"GetToEndTest", "LevelKillTest"}, report.Levels)
	require.Len(t, report.Bests, 2)
	kill := report.Bests[1]
	assert.Equal(t, "LevelKillTest", kill.Level)
	assert.Equal(t, 2, kill.Runs)
	assert.Equal(t, 30.0, kill.BestTimeSeconds)
	assert.Equal(t, 2.0, kill.BestEnemiesRemaining)
	assert.Equal(t, []float64{42, 30}, report.Times["LevelKillTest"])
}

func TestReadTelemetryRejectsForeignHeader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "other.csv")
	require.NoError(t, os.WriteFile(path, []byte("a,b,c\n1,2,3\n"), 0o644))
	_, err := ReadTelemetry(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected telemetry header")
}

func TestReadTelemetryReportsBadLine(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.csv")
	data := telemetry.Header + "\nGetToEndTest,1,2\n"
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))
	_, err := ReadTelemetry(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 2")
}
