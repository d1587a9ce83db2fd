// Package world provides tag-based entity lookup.
package world

import (
	"sort"
	"sync"

	"github.com/verte-zerg/runlog/internal/model"
)

// Tag labels an entity for lookup.
type Tag string

// Tags the objective evaluator and simulation agree on.
const (
	TagPlayer          Tag = "Player"
	TagEnemy           Tag = "Enemy"
	TagExit            Tag = "EndObject"
	TagLevelOneEntry   Tag = "LevelOneEntry"
	TagLevelTwoEntry   Tag = "LevelTwoEntry"
	TagLevelThreeEntry Tag = "LevelThreeEntry"
	TagWeaponSocket    Tag = "WeaponPos"
	TagHeistItem       Tag = "HeistItem"
	TagWhip            Tag = "Whip"
	TagWall            Tag = "Wall"
)

// EntryTag returns the entry marker tag for an archetype.
func EntryTag(a model.Archetype) (Tag, bool) {
	switch a {
	case model.ArchetypeReachExit:
		return TagLevelOneEntry, true
	case model.ArchetypeKillAll:
		return TagLevelTwoEntry, true
	case model.ArchetypeHeist:
		return TagLevelThreeEntry, true
	default:
		return "", false
	}
}

// EntityID identifies an entity within a registry. Zero is never issued.
type EntityID uint64

// Query is the read-only view of the world used by objective evaluation.
// Lookups that find nothing report ok == false; they never fail.
type Query interface {
	FindFirst(tag Tag) (EntityID, bool)
	FindAll(tag Tag) []EntityID
	FindNearest(tag Tag, anchor model.Vec2) (EntityID, bool)
	Position(id EntityID) (model.Vec2, bool)
	Children(id EntityID) []EntityID
	HasTag(id EntityID, tag Tag) bool
}

type entity struct {
	id       EntityID
	tag      Tag
	pos      model.Vec2
	parent   EntityID
	children []EntityID
}

// Registry is an in-memory Query implementation with spawn/attach mutation.
type Registry struct {
	mu       sync.RWMutex
	nextID   EntityID
	entities map[EntityID]*entity
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{entities: map[EntityID]*entity{}}
}

// Spawn adds an entity and returns its id.
func (r *Registry) Spawn(tag Tag, pos model.Vec2) EntityID {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	id := r.nextID
	r.entities[id] = &entity{id: id, tag: tag, pos: pos}
	return id
}

// Despawn removes an entity and detaches it from its parent. Children are
// removed with it.
func (r *Registry) Despawn(id EntityID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.despawnLocked(id)
}

func (r *Registry) despawnLocked(id EntityID) {
	e, ok := r.entities[id]
	if !ok {
		return
	}
	r.detachLocked(e)
	for _, child := range e.children {
		if c, ok := r.entities[child]; ok {
			c.parent = 0
		}
		r.despawnLocked(child)
	}
	delete(r.entities, id)
}

// Move sets an entity's position. Attached children follow the parent.
func (r *Registry) Move(id EntityID, pos model.Vec2) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entities[id]
	if !ok {
		return false
	}
	r.moveLocked(e, pos)
	return true
}

func (r *Registry) moveLocked(e *entity, pos model.Vec2) {
	e.pos = pos
	for _, child := range e.children {
		if c, ok := r.entities[child]; ok {
			r.moveLocked(c, pos)
		}
	}
}

// Attach appends child to parent's children and moves it to the parent.
func (r *Registry) Attach(child, parent EntityID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.entities[child]
	if !ok {
		return false
	}
	p, ok := r.entities[parent]
	if !ok || child == parent {
		return false
	}
	r.detachLocked(c)
	c.parent = parent
	p.children = append(p.children, child)
	r.moveLocked(c, p.pos)
	return true
}

func (r *Registry) detachLocked(c *entity) {
	if c.parent == 0 {
		return
	}
	if p, ok := r.entities[c.parent]; ok {
		for i, id := range p.children {
			if id == c.id {
				p.children = append(p.children[:i], p.children[i+1:]...)
				break
			}
		}
	}
	c.parent = 0
}

// Clear removes every entity. Ids keep increasing across clears.
func (r *Registry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entities = map[EntityID]*entity{}
}

// Tag returns the tag of an entity.
func (r *Registry) Tag(id EntityID) (Tag, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.entities[id]
	if !ok {
		return "", false
	}
	return e.tag, true
}

// FindFirst returns the lowest-id entity with the tag.
func (r *Registry) FindFirst(tag Tag) (EntityID, bool) {
	ids := r.FindAll(tag)
	if len(ids) == 0 {
		return 0, false
	}
	return ids[0], true
}

// FindAll returns all entities with the tag in spawn order.
func (r *Registry) FindAll(tag Tag) []EntityID {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var ids []EntityID
	for id, e := range r.entities {
		if e.tag == tag {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// FindNearest returns the entity with the tag closest to anchor. Ties go to
// the lowest id.
func (r *Registry) FindNearest(tag Tag, anchor model.Vec2) (EntityID, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var best EntityID
	bestDist := 0.0
	for id, e := range r.entities {
		if e.tag != tag {
			continue
		}
		d := e.pos.Dist(anchor)
		if best == 0 || d < bestDist || (d == bestDist && id < best) {
			best = id
			bestDist = d
		}
	}
	return best, best != 0
}

// Position returns an entity's position.
func (r *Registry) Position(id EntityID) (model.Vec2, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.entities[id]
	if !ok {
		return model.Vec2{}, false
	}
	return e.pos, true
}

// Children returns a copy of an entity's children in attach order.
func (r *Registry) Children(id EntityID) []EntityID {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.entities[id]
	if !ok || len(e.children) == 0 {
		return nil
	}
	out := make([]EntityID, len(e.children))
	copy(out, e.children)
	return out
}

// HasTag reports whether the entity exists and carries the tag.
func (r *Registry) HasTag(id EntityID, tag Tag) bool {
	got, ok := r.Tag(id)
	return ok && got == tag
}

