// Package model defines shared data structures.
package model

import (
	"fmt"
	"math"
	"time"
)

// Archetype identifies a level win-condition type.
type Archetype int

// Level archetypes. ArchetypeNone marks the hub and any level without a goal.
const (
	ArchetypeNone Archetype = iota
	ArchetypeReachExit
	ArchetypeKillAll
	ArchetypeHeist
)

// Archetypes lists the playable archetypes in entry-marker order.
var Archetypes = []Archetype{ArchetypeReachExit, ArchetypeKillAll, ArchetypeHeist}

func (a Archetype) String() string {
	switch a {
	case ArchetypeReachExit:
		return "reach-exit"
	case ArchetypeKillAll:
		return "kill-all"
	case ArchetypeHeist:
		return "heist"
	default:
		return "hub"
	}
}

// ParseArchetype maps a layout/config name to an Archetype.
func ParseArchetype(name string) (Archetype, error) {
	switch name {
	case "hub", "":
		return ArchetypeNone, nil
	case "reach-exit":
		return ArchetypeReachExit, nil
	case "kill-all":
		return ArchetypeKillAll, nil
	case "heist":
		return ArchetypeHeist, nil
	default:
		return ArchetypeNone, fmt.Errorf("unknown archetype %q", name)
	}
}

// Vec2 is a 2D world position.
type Vec2 struct {
	X float64
	Y float64
}

// Dist returns the Euclidean distance between two positions.
func (v Vec2) Dist(o Vec2) float64 {
	return math.Hypot(v.X-o.X, v.Y-o.Y)
}

// CompletionRecord holds the best observed stats for one level.
type CompletionRecord struct {
	BestTimeSeconds      float64
	BestEnemiesRemaining float64
}

// Counts holds one counter per playable archetype.
type Counts struct {
	ReachExit int
	KillAll   int
	Heist     int
}

// Of returns the counter for the given archetype.
func (c Counts) Of(a Archetype) int {
	switch a {
	case ArchetypeReachExit:
		return c.ReachExit
	case ArchetypeKillAll:
		return c.KillAll
	case ArchetypeHeist:
		return c.Heist
	default:
		return 0
	}
}

// WeaponUsage holds cumulative use counts for the three weapon kinds.
type WeaponUsage struct {
	Bottles int
	Guns    int
	Shields int
}

// TelemetryRow is one completion event as written to the playthrough CSV.
type TelemetryRow struct {
	Level            string
	CompletionTime   float64
	TotalEnemies     float64
	EnemiesRemaining float64
	BottlesUsed      float64
	GunsUsed         float64
	ShieldsUsed      float64
	Completions      Counts
}

// Completion is a telemetry row as kept in the history database.
type Completion struct {
	ID          int64
	SessionID   string
	CompletedAt time.Time
	Row         TelemetryRow
}

// LevelBest aggregates history for a single level.
type LevelBest struct {
	Level                string
	Runs                 int
	BestTimeSeconds      float64
	BestEnemiesRemaining float64
	LastCompletedAt      time.Time
}

// StatsConfig defines filters and options for stats output.
type StatsConfig struct {
	Level string
	Since *time.Time
	Last  int
}
