package stats

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/verte-zerg/runlog/internal/model"
)

const sparkChars = " .:-=+*#%@"

// MovingAverage computes a rolling mean over the provided window size.
func MovingAverage(values []float64, window int) []float64 {
	if window <= 1 || len(values) == 0 {
		out := make([]float64, len(values))
		copy(out, values)
		return out
	}
	out := make([]float64, len(values))
	var sum float64
	for i := 0; i < len(values); i++ {
		sum += values[i]
		if i >= window {
			sum -= values[i-window]
		}
		den := float64(i + 1)
		if i >= window {
			den = float64(window)
		}
		out[i] = sum / den
	}
	return out
}

// Sparkline renders a single-line ASCII sparkline for the values.
func Sparkline(values []float64) string {
	if len(values) == 0 {
		return ""
	}
	minVal := values[0]
	maxVal := values[0]
	for _, v := range values[1:] {
		minVal = math.Min(minVal, v)
		maxVal = math.Max(maxVal, v)
	}
	if math.Abs(maxVal-minVal) < 1e-9 {
		return strings.Repeat(string(sparkChars[len(sparkChars)/2]), len(values))
	}
	var b strings.Builder
	for _, v := range values {
		pos := (v - minVal) / (maxVal - minVal)
		idx := int(math.Round(pos * float64(len(sparkChars)-1)))
		idx = max(0, min(idx, len(sparkChars)-1))
		b.WriteByte(sparkChars[idx])
	}
	return b.String()
}

// RenderBests prints one row per level with its best run.
func RenderBests(w io.Writer, bests []model.LevelBest) error {
	if len(bests) == 0 {
		_, err := fmt.Fprintln(w, "No completions found.")
		return err
	}
	if _, err := fmt.Fprintln(w, "Best Runs"); err != nil {
		return err
	}
	for _, line := range bestsTable(bests) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w, "")
	return err
}

// RenderCurves prints a completion-time sparkline per level, newest on the
// right, clipped to width columns when width > 0.
func RenderCurves(w io.Writer, levels []string, times map[string][]float64, window, width int) error {
	if len(levels) == 0 {
		return nil
	}
	if _, err := fmt.Fprintln(w, "Completion Times"); err != nil {
		return err
	}
	labelWidth := 0
	for _, level := range levels {
		labelWidth = max(labelWidth, runewidth.StringWidth(level))
	}
	for _, level := range levels {
		values := MovingAverage(times[level], window)
		if width > 0 {
			room := width - labelWidth - 2
			if room < 1 {
				room = 1
			}
			if len(values) > room {
				values = values[len(values)-room:]
			}
		}
		line := runewidth.FillRight(level, labelWidth) + "  " + Sparkline(values)
		if _, err := fmt.Fprintln(w, strings.TrimRight(line, " ")); err != nil {
			return err
		}
	}
	return nil
}
