package stats

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/runlog/internal/model"
)

func TestBestsTableAlignsColumns(t *testing.T) {
	lines := bestsTable([]model.LevelBest{
		{Level: "GetToEndTest", Runs: 3, BestTimeSeconds: 12.5, BestEnemiesRemaining: 1},
		{Level: "LevelKillTest", Runs: 12, BestTimeSeconds: 8},
	})
	require.Len(t, lines, 3)
	assert.Equal(t, "Level          Runs  Best Time  Fewest Left  Last Completed", lines[0])
	assert.Equal(t, "GetToEndTest      3     12.50s            1  -", lines[1])
	assert.Equal(t, "LevelKillTest    12      8.00s            0  -", lines[2])
}

func TestBestsTableWideRunes(t *testing.T) {
	lines := bestsTable([]model.LevelBest{{Level: "迷宫", Runs: 1, BestTimeSeconds: 2}})
	require.Len(t, lines, 2)
	assert.Equal(t, "Level  Runs  Best Time  Fewest Left  Last Completed", lines[0])
	assert.Equal(t, "迷宫      1      2.00s            0  -", lines[1])
}

func TestRenderBestsWritesTable(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, RenderBests(&buf, []model.LevelBest{{Level: "Run", Runs: 2, BestTimeSeconds: 4}}))
	lines := strings.Split(buf.String(), "\n")
	require.Len(t, lines, 5)
	assert.Equal(t, "Best Runs", lines[0])
	assert.Equal(t, "Run       2      4.00s            0  -", lines[2])
	assert.Equal(t, "", lines[3])
}
