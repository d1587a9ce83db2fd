// Package stats builds and renders completion history reports.
package stats

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/mattn/go-runewidth"

	"github.com/verte-zerg/runlog/internal/model"
)

// bestColumn is one column of the best-runs table.
type bestColumn struct {
	title string
	right bool
	value func(model.LevelBest) string
}

var bestColumns = []bestColumn{
	{title: "Level", value: func(b model.LevelBest) string { return b.Level }},
	{title: "Runs", right: true, value: func(b model.LevelBest) string { return strconv.Itoa(b.Runs) }},
	{title: "Best Time", right: true, value: func(b model.LevelBest) string {
		return fmt.Sprintf("%.2fs", b.BestTimeSeconds)
	}},
	{title: "Fewest Left", right: true, value: func(b model.LevelBest) string {
		return fmt.Sprintf("%g", b.BestEnemiesRemaining)
	}},
	{title: "Last Completed", value: func(b model.LevelBest) string {
		if b.LastCompletedAt.IsZero() {
			return "-"
		}
		return b.LastCompletedAt.Local().Format(time.DateTime)
	}},
}

// bestsTable returns a header line followed by one line per level. Columns
// are sized in terminal cells so wide level names stay aligned.
func bestsTable(bests []model.LevelBest) []string {
	widths := make([]int, len(bestColumns))
	header := make([]string, len(bestColumns))
	for i, col := range bestColumns {
		header[i] = col.title
		widths[i] = runewidth.StringWidth(col.title)
	}
	rows := make([][]string, len(bests))
	for r, b := range bests {
		rows[r] = make([]string, len(bestColumns))
		for i, col := range bestColumns {
			cell := col.value(b)
			rows[r][i] = cell
			widths[i] = max(widths[i], runewidth.StringWidth(cell))
		}
	}

	lines := make([]string, 0, len(rows)+1)
	lines = append(lines, joinBestCells(header, widths))
	for _, row := range rows {
		lines = append(lines, joinBestCells(row, widths))
	}
	return lines
}

func joinBestCells(cells []string, widths []int) string {
	parts := make([]string, len(cells))
	for i, cell := range cells {
		if bestColumns[i].right {
			parts[i] = runewidth.FillLeft(cell, widths[i])
		} else {
			parts[i] = runewidth.FillRight(cell, widths[i])
		}
	}
	return strings.TrimRight(strings.Join(parts, "  "), " ")
}
