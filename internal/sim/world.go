// Package sim runs the grid world the levels are played in. It implements
// the scene loader, level clock and weapon counters the game manager uses.
package sim

import (
	"errors"
	"fmt"
	"time"

	"github.com/verte-zerg/runlog/internal/level"
	"github.com/verte-zerg/runlog/internal/model"
	"github.com/verte-zerg/runlog/internal/world"
)

// Weapon is a throwable the player can use.
type Weapon int

// Weapons in cycle order.
const (
	WeaponBottle Weapon = iota
	WeaponGun
	WeaponShield
	weaponCount
)

func (w Weapon) String() string {
	switch w {
	case WeaponGun:
		return "gun"
	case WeaponShield:
		return "shield"
	default:
		return "bottle"
	}
}

// Range is how far the weapon reaches an enemy. Shields only block.
func (w Weapon) Range() float64 {
	switch w {
	case WeaponBottle:
		return 1.5
	case WeaponGun:
		return 4.0
	default:
		return 0
	}
}

// Enemy is a read-only view of one enemy.
type Enemy struct {
	ID          world.EntityID
	Pos         model.Vec2
	Mode        Mode
	VisualRange float64
}

// Options configures a World.
type Options struct {
	Layouts  *level.Set
	Registry *world.Registry
	// Now defaults to time.Now.
	Now func() time.Time
	// Seed fixes enemy movement; zero seeds from the clock.
	Seed        int64
	VisualRange float64
}

type cell struct {
	x int
	y int
}

func cellOf(p model.Vec2) cell {
	return cell{x: int(p.X), y: int(p.Y)}
}

// World is a grid level backed by a world.Registry.
type World struct {
	layouts     *level.Set
	reg         *world.Registry
	now         func() time.Time
	patrol      *patrol
	visualRange float64

	layout   level.Layout
	loaded   bool
	loadedAt time.Time
	walls    map[cell]struct{}

	player world.EntityID
	socket world.EntityID

	weapon Weapon
	usage  model.WeaponUsage
	modes  map[world.EntityID]Mode
}

// New returns a World with no level loaded.
func New(opts Options) (*World, error) {
	if opts.Layouts == nil {
		return nil, errors.New("sim: layouts are required")
	}
	if opts.Registry == nil {
		return nil, errors.New("sim: registry is required")
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	vr := opts.VisualRange
	if vr <= 0 {
		vr = DefaultVisualRange
	}
	return &World{
		layouts:     opts.Layouts,
		reg:         opts.Registry,
		now:         now,
		patrol:      newPatrol(opts.Seed),
		visualRange: vr,
		walls:       map[cell]struct{}{},
		modes:       map[world.EntityID]Mode{},
	}, nil
}

// Load replaces the registry contents with the named layout and restarts
// the level clock.
func (w *World) Load(levelID string) error {
	l, ok := w.layouts.Get(levelID)
	if !ok {
		return fmt.Errorf("sim: unknown level %q", levelID)
	}
	w.reg.Clear()
	w.layout = l
	w.walls = map[cell]struct{}{}
	w.modes = map[world.EntityID]Mode{}

	var spawn model.Vec2
	for y, row := range l.Rows {
		for x, r := range row {
			pos := model.Vec2{X: float64(x), Y: float64(y)}
			switch r {
			case level.GlyphWall:
				w.walls[cell{x: x, y: y}] = struct{}{}
			case level.GlyphSpawn:
				spawn = pos
			case level.GlyphEntryOne:
				w.reg.Spawn(world.TagLevelOneEntry, pos)
			case level.GlyphEntryTwo:
				w.reg.Spawn(world.TagLevelTwoEntry, pos)
			case level.GlyphEntryThree:
				w.reg.Spawn(world.TagLevelThreeEntry, pos)
			case level.GlyphExit:
				w.reg.Spawn(world.TagExit, pos)
			case level.GlyphEnemy:
				w.modes[w.reg.Spawn(world.TagEnemy, pos)] = ModePatrol
			case level.GlyphHeistItem:
				w.reg.Spawn(world.TagHeistItem, pos)
			}
		}
	}

	w.player = w.reg.Spawn(world.TagPlayer, spawn)
	w.socket = w.reg.Spawn(world.TagWeaponSocket, spawn)
	w.reg.Attach(w.socket, w.player)
	whip := w.reg.Spawn(world.TagWhip, spawn)
	w.reg.Attach(whip, w.player)

	w.loaded = true
	w.loadedAt = w.now()
	w.updateModes()
	return nil
}

// SinceLevelLoad returns seconds since the last Load.
func (w *World) SinceLevelLoad() float64 {
	if !w.loaded {
		return 0
	}
	return w.now().Sub(w.loadedAt).Seconds()
}

// WeaponUsage returns cumulative weapon use. It reports false while the
// whip carrying the counters is not in the world.
func (w *World) WeaponUsage() (model.WeaponUsage, bool) {
	if _, ok := w.reg.FindFirst(world.TagWhip); !ok {
		return model.WeaponUsage{}, false
	}
	return w.usage, true
}

// Weapon returns the selected weapon.
func (w *World) Weapon() Weapon {
	return w.weapon
}

// CycleWeapon selects the next weapon and returns it.
func (w *World) CycleWeapon() Weapon {
	w.weapon = (w.weapon + 1) % weaponCount
	return w.weapon
}

// PlayerPos returns the player's position.
func (w *World) PlayerPos() (model.Vec2, bool) {
	return w.reg.Position(w.player)
}

// Move steps the player by one cell. Walls and enemies block. Walking onto
// the heist item attaches it to the weapon socket.
func (w *World) Move(dx, dy int) bool {
	pos, ok := w.PlayerPos()
	if !ok {
		return false
	}
	target := model.Vec2{X: pos.X + float64(dx), Y: pos.Y + float64(dy)}
	if !w.walkable(target) {
		return false
	}
	w.reg.Move(w.player, target)
	w.pickUp(target)
	w.updateModes()
	return true
}

func (w *World) pickUp(at model.Vec2) {
	for _, id := range w.reg.FindAll(world.TagHeistItem) {
		if w.held(id) {
			continue
		}
		if pos, ok := w.reg.Position(id); ok && cellOf(pos) == cellOf(at) {
			w.reg.Attach(id, w.socket)
		}
	}
}

func (w *World) held(id world.EntityID) bool {
	for _, child := range w.reg.Children(w.socket) {
		if child == id {
			return true
		}
	}
	return false
}

// HoldsItem reports whether the heist item is attached to the socket.
func (w *World) HoldsItem() bool {
	for _, child := range w.reg.Children(w.socket) {
		if w.reg.HasTag(child, world.TagHeistItem) {
			return true
		}
	}
	return false
}

// Attack uses the selected weapon and removes the nearest enemy in range.
// Every call counts as one use.
func (w *World) Attack() bool {
	switch w.weapon {
	case WeaponBottle:
		w.usage.Bottles++
	case WeaponGun:
		w.usage.Guns++
	case WeaponShield:
		w.usage.Shields++
	}
	reach := w.weapon.Range()
	if reach <= 0 {
		return false
	}
	pos, ok := w.PlayerPos()
	if !ok {
		return false
	}
	id, ok := w.reg.FindNearest(world.TagEnemy, pos)
	if !ok {
		return false
	}
	target, ok := w.reg.Position(id)
	if !ok || pos.Dist(target) > reach {
		return false
	}
	w.reg.Despawn(id)
	delete(w.modes, id)
	return true
}

// Step advances enemies one move. Aiming enemies close in on the player,
// the rest wander.
func (w *World) Step() {
	player, ok := w.PlayerPos()
	if !ok {
		return
	}
	for _, id := range w.reg.FindAll(world.TagEnemy) {
		pos, ok := w.reg.Position(id)
		if !ok {
			continue
		}
		var d model.Vec2
		if w.modes[id] == ModeAim {
			d = toward(pos, player)
		} else {
			d = w.patrol.next(0.5)
		}
		target := model.Vec2{X: pos.X + d.X, Y: pos.Y + d.Y}
		if target == pos || cellOf(target) == cellOf(player) || !w.walkable(target) {
			continue
		}
		w.reg.Move(id, target)
	}
	w.updateModes()
}

func (w *World) updateModes() {
	player, ok := w.PlayerPos()
	if !ok {
		return
	}
	for _, id := range w.reg.FindAll(world.TagEnemy) {
		if pos, ok := w.reg.Position(id); ok {
			w.modes[id] = modeFor(pos.Dist(player), w.visualRange)
		}
	}
}

// Enemies returns the live enemies in spawn order.
func (w *World) Enemies() []Enemy {
	ids := w.reg.FindAll(world.TagEnemy)
	out := make([]Enemy, 0, len(ids))
	for _, id := range ids {
		pos, ok := w.reg.Position(id)
		if !ok {
			continue
		}
		out = append(out, Enemy{ID: id, Pos: pos, Mode: w.modes[id], VisualRange: w.visualRange})
	}
	return out
}

func (w *World) walkable(p model.Vec2) bool {
	c := cellOf(p)
	if c.x < 0 || c.y < 0 || c.y >= len(w.layout.Rows) || c.x >= len(w.layout.Rows[c.y]) {
		return false
	}
	if _, wall := w.walls[c]; wall {
		return false
	}
	for _, id := range w.reg.FindAll(world.TagEnemy) {
		if pos, ok := w.reg.Position(id); ok && cellOf(pos) == c {
			return false
		}
	}
	return true
}

// Render returns the grid as rows of glyphs with entities drawn over the
// static layout.
func (w *World) Render() [][]rune {
	grid := make([][]rune, len(w.layout.Rows))
	for y, row := range w.layout.Rows {
		grid[y] = []rune(row)
		for x, r := range grid[y] {
			switch r {
			case level.GlyphSpawn, level.GlyphEnemy, level.GlyphHeistItem:
				grid[y][x] = level.GlyphFloor
			}
		}
	}
	put := func(p model.Vec2, glyph rune) {
		c := cellOf(p)
		if c.y >= 0 && c.y < len(grid) && c.x >= 0 && c.x < len(grid[c.y]) {
			grid[c.y][c.x] = glyph
		}
	}
	for _, id := range w.reg.FindAll(world.TagHeistItem) {
		if pos, ok := w.reg.Position(id); ok && !w.held(id) {
			put(pos, level.GlyphHeistItem)
		}
	}
	for _, e := range w.Enemies() {
		put(e.Pos, level.GlyphEnemy)
	}
	if pos, ok := w.PlayerPos(); ok {
		put(pos, level.GlyphSpawn)
	}
	return grid
}
