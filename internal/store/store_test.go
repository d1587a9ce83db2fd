package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/runlog/internal/model"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	st, err := Open(filepath.Join(t.TempDir(), "nested", "runlog.db"))
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = st.Close()
	})
	return st
}

func insert(t *testing.T, st *Store, at time.Time, level string, seconds, remaining float64) int64 {
	t.Helper()
	id, err := st.InsertCompletion(context.Background(), model.Completion{
		SessionID:   "s1",
		CompletedAt: at,
		Row: model.TelemetryRow{
			Level:            level,
			CompletionTime:   seconds,
			TotalEnemies:     4,
			EnemiesRemaining: remaining,
			Completions:      model.Counts{KillAll: 1},
		},
	})
	require.NoError(t, err)
	return id
}

func TestListCompletionsFilters(t *testing.T) {
	st := openTestStore(t)
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	insert(t, st, base, "LevelKillTest", 40, 2)
	insert(t, st, base.Add(time.Minute), "GetToEndTest", 12, 0)
	id3 := insert(t, st, base.Add(2*time.Minute+500*time.Millisecond), "LevelKillTest", 35, 3)

	ctx := context.Background()
	all, err := st.ListCompletions(ctx, model.StatsConfig{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "LevelKillTest", all[0].Row.Level)
	assert.True(t, all[0].CompletedAt.Equal(base))

	kill, err := st.ListCompletions(ctx, model.StatsConfig{Level: "LevelKillTest", Last: 1})
	require.NoError(t, err)
	require.Len(t, kill, 1)
	assert.Equal(t, id3, kill[0].ID)
	assert.Equal(t, model.Counts{KillAll: 1}, kill[0].Row.Completions)

	since := base.Add(30 * time.Second)
	recent, err := st.ListCompletions(ctx, model.StatsConfig{Since: &since})
	require.NoError(t, err)
	assert.Len(t, recent, 2)
}

func TestBestByLevel(t *testing.T) {
	st := openTestStore(t)
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	insert(t, st, base, "LevelKillTest", 40, 2)
	insert(t, st, base.Add(time.Second), "LevelKillTest", 35, 3)
	insert(t, st, base.Add(2*time.Second), "GetToEndTest", 12, 1)

	bests, err := st.BestByLevel(context.Background(), model.StatsConfig{})
	require.NoError(t, err)
	require.Len(t, bests, 2)
	assert.Equal(t, "GetToEndTest", bests[0].Level)
	kill := bests[1]
	assert.Equal(t, 2, kill.Runs)
	assert.Equal(t, 35.0, kill.BestTimeSeconds)
	assert.Equal(t, 2.0, kill.BestEnemiesRemaining)
	assert.True(t, kill.LastCompletedAt.Equal(base.Add(time.Second)))
}

func TestSinkAppend(t *testing.T) {
	st := openTestStore(t)
	sink := NewSink(st)
	_, err := uuid.Parse(sink.SessionID())
	require.NoError(t, err)

	require.NoError(t, sink.Append(model.TelemetryRow{Level: "GetToEndTest", CompletionTime: 3}))
	got, err := st.ListCompletions(context.Background(), model.StatsConfig{})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, sink.SessionID(), got[0].SessionID)
	assert.Equal(t, 3.0, got[0].Row.CompletionTime)
}
