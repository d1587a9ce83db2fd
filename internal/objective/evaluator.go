// Package objective decides when the player enters or completes a level.
package objective

import (
	"github.com/verte-zerg/runlog/internal/model"
	"github.com/verte-zerg/runlog/internal/world"
)

// DefaultInteractDistance is the reach of the interact action in world units.
const DefaultInteractDistance = 1.0

// LevelSet names the hub and the level played for each archetype.
type LevelSet struct {
	Hub       string
	ReachExit string
	KillAll   string
	Heist     string
}

// DefaultLevels returns the stock scene names.
func DefaultLevels() LevelSet {
	return LevelSet{
		Hub:       "MainWorldTest",
		ReachExit: "GetToEndTest",
		KillAll:   "LevelKillTest",
		Heist:     "LevelHeistTest",
	}
}

// For returns the level id played for an archetype.
func (s LevelSet) For(a model.Archetype) string {
	switch a {
	case model.ArchetypeReachExit:
		return s.ReachExit
	case model.ArchetypeKillAll:
		return s.KillAll
	case model.ArchetypeHeist:
		return s.Heist
	default:
		return s.Hub
	}
}

// ArchetypeOf returns the archetype whose level is levelID.
func (s LevelSet) ArchetypeOf(levelID string) model.Archetype {
	for _, a := range model.Archetypes {
		if id := s.For(a); id != "" && id == levelID {
			return a
		}
	}
	return model.ArchetypeNone
}

// Config configures an Evaluator.
type Config struct {
	InteractDistance float64
	Levels           LevelSet
}

// Kind classifies an evaluation outcome.
type Kind int

// Outcome kinds.
const (
	None Kind = iota
	Enter
	Complete
)

func (k Kind) String() string {
	switch k {
	case Enter:
		return "enter"
	case Complete:
		return "complete"
	default:
		return "none"
	}
}

// Outcome is the result of one interaction.
type Outcome struct {
	Kind      Kind
	Archetype model.Archetype
	// Level is the level to enter for Enter and the completed level for Complete.
	Level            string
	EnemiesRemaining int
}

// Evaluator checks entry markers and win conditions against a world view.
// It holds no state between calls.
type Evaluator struct {
	cfg Config
}

// New returns an Evaluator. A non-positive distance falls back to the default.
func New(cfg Config) *Evaluator {
	if cfg.InteractDistance <= 0 {
		cfg.InteractDistance = DefaultInteractDistance
	}
	return &Evaluator{cfg: cfg}
}

// Levels returns the configured level set.
func (e *Evaluator) Levels() LevelSet {
	return e.cfg.Levels
}

// InteractDistance returns the effective interact distance.
func (e *Evaluator) InteractDistance() float64 {
	return e.cfg.InteractDistance
}

// Evaluate runs one interaction against q while activeLevel is loaded.
// Entry markers are checked first in archetype order; otherwise the active
// level's win condition is checked.
func (e *Evaluator) Evaluate(q world.Query, activeLevel string) Outcome {
	enemies := len(q.FindAll(world.TagEnemy))
	player, ok := e.playerPos(q)
	if !ok {
		return Outcome{EnemiesRemaining: enemies}
	}

	for _, a := range model.Archetypes {
		tag, _ := world.EntryTag(a)
		if e.near(q, player, tag) {
			return Outcome{Kind: Enter, Archetype: a, Level: e.cfg.Levels.For(a), EnemiesRemaining: enemies}
		}
	}

	a := e.cfg.Levels.ArchetypeOf(activeLevel)
	if a == model.ArchetypeNone || !e.near(q, player, world.TagExit) {
		return Outcome{EnemiesRemaining: enemies}
	}
	if !winConditionMet(q, a, enemies) {
		return Outcome{EnemiesRemaining: enemies}
	}
	return Outcome{Kind: Complete, Archetype: a, Level: activeLevel, EnemiesRemaining: enemies}
}

func winConditionMet(q world.Query, a model.Archetype, enemies int) bool {
	switch a {
	case model.ArchetypeReachExit:
		return true
	case model.ArchetypeKillAll:
		return enemies == 0
	case model.ArchetypeHeist:
		return holdsHeistItem(q)
	default:
		return false
	}
}

// holdsHeistItem reports whether the weapon socket's first child is the heist item.
func holdsHeistItem(q world.Query) bool {
	socket, ok := q.FindFirst(world.TagWeaponSocket)
	if !ok {
		return false
	}
	children := q.Children(socket)
	if len(children) == 0 {
		return false
	}
	return q.HasTag(children[0], world.TagHeistItem)
}

func (e *Evaluator) playerPos(q world.Query) (model.Vec2, bool) {
	id, ok := q.FindFirst(world.TagPlayer)
	if !ok {
		return model.Vec2{}, false
	}
	return q.Position(id)
}

// near reports whether the nearest entity with tag is within interact distance.
func (e *Evaluator) near(q world.Query, player model.Vec2, tag world.Tag) bool {
	id, ok := q.FindNearest(tag, player)
	if !ok {
		return false
	}
	pos, ok := q.Position(id)
	if !ok {
		return false
	}
	return InRange(player, pos, e.cfg.InteractDistance)
}

// InRange reports whether b is within dist of a, inclusive.
func InRange(a, b model.Vec2, dist float64) bool {
	return a.Dist(b) <= dist
}
