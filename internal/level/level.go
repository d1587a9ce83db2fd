// Package level loads level layouts from TOML.
package level

import (
	_ "embed"
	"errors"
	"fmt"
	"os"

	"github.com/BurntSushi/toml"

	"github.com/verte-zerg/runlog/internal/model"
)

//go:embed levels.toml
var defaultLayouts string

// Glyphs used in layout maps.
const (
	GlyphWall       = '#'
	GlyphFloor      = '.'
	GlyphSpawn      = '@'
	GlyphEntryOne   = '1'
	GlyphEntryTwo   = '2'
	GlyphEntryThree = '3'
	GlyphExit       = 'E'
	GlyphEnemy      = 'x'
	GlyphHeistItem  = '$'
)

// Layout is a single level map.
type Layout struct {
	ID        string
	Archetype model.Archetype
	Rows      []string
}

// Set is a validated collection of layouts keyed by id.
type Set struct {
	order   []string
	layouts map[string]Layout
}

type fileLayouts struct {
	Level []fileLayout `toml:"level"`
}

type fileLayout struct {
	ID        string   `toml:"id"`
	Archetype string   `toml:"archetype"`
	Map       []string `toml:"map"`
}

// Default returns the embedded stock layouts.
func Default() (*Set, error) {
	return Parse(defaultLayouts)
}

// LoadFile reads layouts from a TOML file.
func LoadFile(path string) (*Set, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read levels: %w", err)
	}
	return Parse(string(data))
}

// Parse decodes and validates TOML layouts.
func Parse(data string) (*Set, error) {
	var raw fileLayouts
	if _, err := toml.Decode(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to decode levels: %w", err)
	}
	if len(raw.Level) == 0 {
		return nil, errors.New("no levels defined")
	}
	set := &Set{layouts: map[string]Layout{}}
	for i, fl := range raw.Level {
		a, err := model.ParseArchetype(fl.Archetype)
		if err != nil {
			return nil, fmt.Errorf("level %d: %w", i, err)
		}
		l := Layout{ID: fl.ID, Archetype: a, Rows: fl.Map}
		if err := l.Validate(); err != nil {
			return nil, err
		}
		if _, dup := set.layouts[l.ID]; dup {
			return nil, fmt.Errorf("level %q defined twice", l.ID)
		}
		set.order = append(set.order, l.ID)
		set.layouts[l.ID] = l
	}
	return set, nil
}

// Validate checks the id, glyphs and the single spawn point.
func (l Layout) Validate() error {
	if l.ID == "" {
		return errors.New("level id must not be empty")
	}
	if len(l.Rows) == 0 {
		return fmt.Errorf("level %q: map is empty", l.ID)
	}
	spawns := 0
	for y, row := range l.Rows {
		for x, r := range row {
			switch r {
			case GlyphSpawn:
				spawns++
			case GlyphWall, GlyphFloor, GlyphEntryOne, GlyphEntryTwo, GlyphEntryThree,
				GlyphExit, GlyphEnemy, GlyphHeistItem:
			default:
				return fmt.Errorf("level %q: unknown glyph %q at %d,%d", l.ID, r, x, y)
			}
		}
	}
	if spawns != 1 {
		return fmt.Errorf("level %q: expected one spawn '@', found %d", l.ID, spawns)
	}
	if l.Archetype != model.ArchetypeNone && !l.has(GlyphExit) {
		return fmt.Errorf("level %q: %s level needs an exit 'E'", l.ID, l.Archetype)
	}
	if l.Archetype == model.ArchetypeHeist && !l.has(GlyphHeistItem) {
		return fmt.Errorf("level %q: heist level needs an item '$'", l.ID)
	}
	return nil
}

func (l Layout) has(glyph rune) bool {
	for _, row := range l.Rows {
		for _, r := range row {
			if r == glyph {
				return true
			}
		}
	}
	return false
}

// Get returns a layout by id.
func (s *Set) Get(id string) (Layout, bool) {
	l, ok := s.layouts[id]
	return l, ok
}

// IDs returns layout ids in file order.
func (s *Set) IDs() []string {
	return append([]string(nil), s.order...)
}

// Require reports the first id that has no layout. Empty ids are skipped.
func (s *Set) Require(ids ...string) error {
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, ok := s.layouts[id]; !ok {
			return fmt.Errorf("level %q not found", id)
		}
	}
	return nil
}
