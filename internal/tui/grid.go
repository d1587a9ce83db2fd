package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/verte-zerg/runlog/internal/level"
	"github.com/verte-zerg/runlog/internal/sim"
)

type styledRune struct {
	s       string
	width   int
	isSpace bool
}

type gridPos struct {
	x int
	y int
}

func enemyModes(enemies []sim.Enemy) map[gridPos]sim.Mode {
	out := make(map[gridPos]sim.Mode, len(enemies))
	for _, e := range enemies {
		out[gridPos{x: int(e.Pos.X), y: int(e.Pos.Y)}] = e.Mode
	}
	return out
}

func glyphStyle(glyph rune, mode sim.Mode) lipgloss.Style {
	switch glyph {
	case level.GlyphWall:
		return wallStyle
	case level.GlyphSpawn:
		return playerStyle
	case level.GlyphExit:
		return exitStyle
	case level.GlyphEntryOne, level.GlyphEntryTwo, level.GlyphEntryThree:
		return entryStyle
	case level.GlyphHeistItem:
		return itemStyle
	case level.GlyphEnemy:
		switch mode {
		case sim.ModeAim:
			return aimStyle
		case sim.ModeAlert:
			return alertStyle
		default:
			return patrolStyle
		}
	default:
		return floorStyle
	}
}

func buildStyledGrid(grid [][]rune, modes map[gridPos]sim.Mode) [][]styledRune {
	out := make([][]styledRune, len(grid))
	for y, row := range grid {
		line := make([]styledRune, 0, len(row))
		for x, glyph := range row {
			style := glyphStyle(glyph, modes[gridPos{x: x, y: y}])
			line = append(line, styledRune{
				s:     style.Render(string(glyph)),
				width: runewidth.RuneWidth(glyph),
			})
		}
		out[y] = line
	}
	return out
}

func renderStyledGrid(rows [][]styledRune) string {
	lines := make([]string, len(rows))
	for i, row := range rows {
		lines[i] = renderStyledRunes(row)
	}
	return strings.Join(lines, "\n")
}

func buildMessageRunes(text string, style lipgloss.Style) []styledRune {
	out := make([]styledRune, 0, len(text))
	for _, r := range text {
		out = append(out, styledRune{
			s:       style.Render(string(r)),
			width:   runewidth.RuneWidth(r),
			isSpace: r == ' ',
		})
	}
	return out
}

func renderStyledRunes(runes []styledRune) string {
	var b strings.Builder
	for _, item := range runes {
		b.WriteString(item.s)
	}
	return b.String()
}

func wrapStyledRunes(runes []styledRune, width int) string {
	if width <= 0 {
		return renderStyledRunes(runes)
	}
	var out strings.Builder
	line := make([]styledRune, 0, len(runes))
	lineWidth := 0
	lastSpaceIdx := -1

	for i := 0; i < len(runes); {
		item := runes[i]
		if lineWidth+item.width > width && len(line) > 0 {
			if lastSpaceIdx >= 0 {
				out.WriteString(renderStyledRunes(line[:lastSpaceIdx]))
				out.WriteRune('\n')
				line = append([]styledRune{}, line[lastSpaceIdx+1:]...)
				lineWidth = lineWidthOf(line)
				lastSpaceIdx = lastSpaceIndex(line)
			} else {
				out.WriteString(renderStyledRunes(line))
				out.WriteRune('\n')
				line = line[:0]
				lineWidth = 0
				lastSpaceIdx = -1
			}
			continue
		}
		line = append(line, item)
		lineWidth += item.width
		if item.isSpace {
			lastSpaceIdx = len(line) - 1
		}
		i++
	}
	out.WriteString(renderStyledRunes(line))
	return out.String()
}

func lineWidthOf(line []styledRune) int {
	total := 0
	for _, item := range line {
		total += item.width
	}
	return total
}

func lastSpaceIndex(line []styledRune) int {
	for i := len(line) - 1; i >= 0; i-- {
		if line[i].isSpace {
			return i
		}
	}
	return -1
}
