package progress

import (
	"sync"

	"github.com/verte-zerg/runlog/internal/model"
)

// Counters counts events per playable archetype for the process lifetime.
type Counters struct {
	mu     sync.RWMutex
	counts model.Counts
}

// NewCounters returns zeroed counters.
func NewCounters() *Counters {
	return &Counters{}
}

// Increment adds one to the archetype's counter. ArchetypeNone is ignored.
func (c *Counters) Increment(a model.Archetype) {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch a {
	case model.ArchetypeReachExit:
		c.counts.ReachExit++
	case model.ArchetypeKillAll:
		c.counts.KillAll++
	case model.ArchetypeHeist:
		c.counts.Heist++
	}
}

// Snapshot returns the current counts.
func (c *Counters) Snapshot() model.Counts {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.counts
}
