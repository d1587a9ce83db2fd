// Package progress tracks best runs and completion counts per level.
package progress

import (
	"sort"
	"sync"

	"github.com/verte-zerg/runlog/internal/model"
)

// Ledger keeps the best completion time and best remaining-enemy count ever
// observed per level. Values only improve; records are never removed.
type Ledger struct {
	mu      sync.RWMutex
	records map[string]model.CompletionRecord
}

// NewLedger returns an empty ledger.
func NewLedger() *Ledger {
	return &Ledger{records: map[string]model.CompletionRecord{}}
}

// Record folds one completion into the level's record. The first observation
// is stored as is; later ones replace each field only when strictly smaller.
func (l *Ledger) Record(levelID string, timeSeconds, enemiesRemaining float64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	rec, ok := l.records[levelID]
	if !ok {
		l.records[levelID] = model.CompletionRecord{
			BestTimeSeconds:      timeSeconds,
			BestEnemiesRemaining: enemiesRemaining,
		}
		return
	}
	if timeSeconds < rec.BestTimeSeconds {
		rec.BestTimeSeconds = timeSeconds
	}
	if enemiesRemaining < rec.BestEnemiesRemaining {
		rec.BestEnemiesRemaining = enemiesRemaining
	}
	l.records[levelID] = rec
}

// Query returns the record for a level, if it was completed at least once.
func (l *Ledger) Query(levelID string) (model.CompletionRecord, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	rec, ok := l.records[levelID]
	return rec, ok
}

// Levels returns the ids of all recorded levels, sorted.
func (l *Ledger) Levels() []string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	ids := make([]string, 0, len(l.records))
	for id := range l.records {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
