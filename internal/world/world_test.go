package world

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/runlog/internal/model"
)

func TestRegistryFindNearest(t *testing.T) {
	r := NewRegistry()
	far := r.Spawn(TagEnemy, model.Vec2{X: 10, Y: 0})
	near := r.Spawn(TagEnemy, model.Vec2{X: 2, Y: 0})
	r.Spawn(TagExit, model.Vec2{X: 1, Y: 0})

	id, ok := r.FindNearest(TagEnemy, model.Vec2{})
	require.True(t, ok)
	assert.Equal(t, near, id)

	first, ok := r.FindFirst(TagEnemy)
	require.True(t, ok)
	assert.Equal(t, far, first)

	_, ok = r.FindNearest(TagHeistItem, model.Vec2{})
	assert.False(t, ok)
	assert.Len(t, r.FindAll(TagEnemy), 2)
}

func TestRegistryAttachMovesWithParent(t *testing.T) {
	r := NewRegistry()
	socket := r.Spawn(TagWeaponSocket, model.Vec2{X: 1, Y: 1})
	item := r.Spawn(TagHeistItem, model.Vec2{X: 5, Y: 5})

	require.True(t, r.Attach(item, socket))
	assert.Equal(t, []EntityID{item}, r.Children(socket))
	pos, ok := r.Position(item)
	require.True(t, ok)
	assert.Equal(t, model.Vec2{X: 1, Y: 1}, pos)

	r.Move(socket, model.Vec2{X: 3, Y: 4})
	pos, _ = r.Position(item)
	assert.Equal(t, model.Vec2{X: 3, Y: 4}, pos)

	hand := r.Spawn(TagWeaponSocket, model.Vec2{X: 7, Y: 7})
	require.True(t, r.Attach(item, hand))
	assert.Empty(t, r.Children(socket))
	assert.Equal(t, []EntityID{item}, r.Children(hand))
}

func TestRegistryDespawnRemovesChildren(t *testing.T) {
	r := NewRegistry()
	socket := r.Spawn(TagWeaponSocket, model.Vec2{})
	item := r.Spawn(TagHeistItem, model.Vec2{})
	require.True(t, r.Attach(item, socket))

	r.Despawn(socket)
	_, ok := r.Position(item)
	assert.False(t, ok)
	assert.Nil(t, r.Children(socket))

	r.Spawn(TagPlayer, model.Vec2{})
	r.Clear()
	_, ok = r.FindFirst(TagPlayer)
	assert.False(t, ok)
}

func TestEntryTag(t *testing.T) {
	tag, ok := EntryTag(model.ArchetypeKillAll)
	require.True(t, ok)
	assert.Equal(t, TagLevelTwoEntry, tag)
	_, ok = EntryTag(model.ArchetypeNone)
	assert.False(t, ok)
}
