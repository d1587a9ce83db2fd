package sim

import (
	"math/rand"
	"time"

	"github.com/verte-zerg/runlog/internal/model"
)

// Mode is an enemy's threat state.
type Mode int

// Threat modes.
const (
	ModePatrol Mode = iota
	ModeAlert
	ModeAim
)

func (m Mode) String() string {
	switch m {
	case ModeAim:
		return "aim"
	case ModeAlert:
		return "alert"
	default:
		return "patrol"
	}
}

// DefaultVisualRange is how far an enemy notices the player.
const DefaultVisualRange = 4.0

// modeFor derives the threat mode from the distance to the player.
func modeFor(dist, visualRange float64) Mode {
	switch {
	case dist <= visualRange/2:
		return ModeAim
	case dist <= visualRange:
		return ModeAlert
	default:
		return ModePatrol
	}
}

var steps = []model.Vec2{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: -1, Y: 0}, {X: 0, Y: 1}, {X: 0, Y: -1}}

// patrol picks random wander steps for enemies.
type patrol struct {
	rnd *rand.Rand
}

func newPatrol(seed int64) *patrol {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &patrol{rnd: rand.New(rand.NewSource(seed))}
}

// next returns a step, staying put with probability stayPct.
func (p *patrol) next(stayPct float64) model.Vec2 {
	if p.rnd.Float64() < stayPct {
		return steps[0]
	}
	return steps[1+p.rnd.Intn(len(steps)-1)]
}

// toward returns the unit grid step that closes the larger axis gap.
func toward(from, to model.Vec2) model.Vec2 {
	dx := to.X - from.X
	dy := to.Y - from.Y
	if dx == 0 && dy == 0 {
		return steps[0]
	}
	if abs(dx) >= abs(dy) {
		return model.Vec2{X: sign(dx)}
	}
	return model.Vec2{Y: sign(dy)}
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

func sign(v float64) float64 {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	default:
		return 0
	}
}
