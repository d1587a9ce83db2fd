package telemetry

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/runlog/internal/model"
)

var sessionStart = time.Date(2024, 3, 9, 14, 5, 7, 0, time.Local)

func rowA() model.TelemetryRow {
	return model.TelemetryRow{
		Level: "A", CompletionTime: 1, TotalEnemies: 2, EnemiesRemaining: 3,
		Completions: model.Counts{ReachExit: 1},
	}
}

func rowB() model.TelemetryRow {
	return model.TelemetryRow{
		Level: "B", CompletionTime: 4, TotalEnemies: 5, EnemiesRemaining: 6, BottlesUsed: 1,
		Completions: model.Counts{ReachExit: 1},
	}
}

func TestFilename(t *testing.T) {
	assert.Equal(t, "Playthrough_20240309_140507.csv", Filename(sessionStart))
	assert.True(t, IsPlaythrough("Playthrough_20240309_140507.csv"))
	assert.False(t, IsPlaythrough("Playthrough_latest.csv"))
	assert.False(t, IsPlaythrough("notes.csv"))
}

func TestEncodeRow(t *testing.T) {
	row := model.TelemetryRow{
		Level: "LevelKillTest", CompletionTime: 12.25, TotalEnemies: 4, EnemiesRemaining: 0,
		BottlesUsed: 2, GunsUsed: 1, ShieldsUsed: 0,
		Completions: model.Counts{ReachExit: 1, KillAll: 2, Heist: 0},
	}
	assert.Equal(t, "LevelKillTest,12.25,4,0,2,1,0,1,2,0", EncodeRow(row))
}

func TestAppendWritesHeaderOnce(t *testing.T) {
	w := NewWriter(t.TempDir(), sessionStart)
	_, err := os.Stat(w.Path())
	require.True(t, errors.Is(err, os.ErrNotExist), "file must not exist before first append")

	require.NoError(t, w.Append(rowA()))
	require.NoError(t, w.Append(rowB()))

	data, err := os.ReadFile(w.Path())
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSuffix(string(data), "\n"), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, Header, lines[0])
	assert.Equal(t, "A,1,2,3,0,0,0,1,0,0", lines[1])
	assert.Equal(t, "B,4,5,6,1,0,0,1,0,0", lines[2])
}

func TestAppendNeverRewritesEarlierBytes(t *testing.T) {
	w := NewWriter(t.TempDir(), sessionStart)
	var prev []byte
	for i := 0; i < 10; i++ {
		require.NoError(t, w.Append(rowA()))
		data, err := os.ReadFile(w.Path())
		require.NoError(t, err)
		require.GreaterOrEqual(t, len(data), len(prev))
		require.Equal(t, prev, data[:len(prev)])
		prev = data
	}
	assert.Equal(t, 1, strings.Count(string(prev), Header))
}

func TestAppendKeepsExistingFile(t *testing.T) {
	dir := t.TempDir()
	w := NewWriter(dir, sessionStart)
	require.NoError(t, os.WriteFile(w.Path(), []byte("existing\n"), 0o644))

	require.NoError(t, w.Append(rowA()))
	data, err := os.ReadFile(w.Path())
	require.NoError(t, err)
	assert.Equal(t, "existing\nA,1,2,3,0,0,0,1,0,0\n", string(data))
}

func TestAppendFailsOnMissingDirectory(t *testing.T) {
	w := NewWriter(filepath.Join(t.TempDir(), "missing", "dir"), sessionStart)
	err := w.Append(rowA())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "telemetry:")
}

type recordingAppender struct {
	mu   sync.Mutex
	rows []string
	fail bool
}

func (r *recordingAppender) Append(row model.TelemetryRow) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail {
		return errors.New("disk full")
	}
	r.rows = append(r.rows, row.Level)
	return nil
}

func TestQueuePreservesOrder(t *testing.T) {
	rec := &recordingAppender{}
	q := NewQueue(rec, nil)
	want := make([]string, 0, 200)
	for i := 0; i < 200; i++ {
		level := string(rune('a' + i%26))
		want = append(want, level)
		require.NoError(t, q.Append(model.TelemetryRow{Level: level}))
	}
	require.NoError(t, q.Close())
	assert.Equal(t, want, rec.rows)
	assert.ErrorIs(t, q.Append(rowA()), ErrQueueClosed)
	require.NoError(t, q.Close())
}

func TestQueueReportsErrors(t *testing.T) {
	rec := &recordingAppender{fail: true}
	var errs []error
	q := NewQueue(rec, func(err error) { errs = append(errs, err) })
	require.NoError(t, q.Append(rowA()))
	require.NoError(t, q.Close())
	require.Len(t, errs, 1)
}

func TestQueueOverWriterWritesHeaderFirst(t *testing.T) {
	w := NewWriter(t.TempDir(), sessionStart)
	q := NewQueue(w, nil)
	require.NoError(t, q.Append(rowA()))
	require.NoError(t, q.Append(rowB()))
	require.NoError(t, q.Close())

	data, err := os.ReadFile(w.Path())
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), Header+"\nA,"))
}
