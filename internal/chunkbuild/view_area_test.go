package chunkbuild

import (
	"testing"

	"chunkmesh/internal/block"
	"chunkmesh/internal/world"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// columnsX returns the distinct section X coordinates covered by the area.
func columnsX(v *ViewArea) map[int]bool {
	got := make(map[int]bool)
	for _, c := range v.Chunks() {
		got[c.SectionPos().X] = true
	}
	return got
}

func TestViewAreaLayout(t *testing.T) {
	e := newTestEnv(t, nil)
	v := NewViewArea(e.sched, 1)

	x, y, z := v.Size()
	assert.Equal(t, [3]int{3, world.NumSections, 3}, [3]int{x, y, z})
	require.Len(t, v.Chunks(), 3*world.NumSections*3)
	for i, c := range v.Chunks() {
		assert.Equal(t, i, c.Index())
		assert.True(t, c.IsDirty())
		assert.Same(t, Empty, c.Data())
	}
}

func TestViewAreaRepositionWrapsSlots(t *testing.T) {
	e := newTestEnv(t, nil)
	v := NewViewArea(e.sched, 1)

	v.Reposition(8, 8)
	assert.Equal(t, map[int]bool{-1: true, 0: true, 1: true}, columnsX(v))
	require.NotNil(t, v.ChunkAt(world.SectionPos{X: -1, Y: 2, Z: 1}))
	assert.Nil(t, v.ChunkAt(world.SectionPos{X: 2, Y: 2, Z: 1}))

	keep := v.ChunkAt(world.SectionPos{X: 1, Y: 0, Z: 0})
	keep.SetNotDirty()

	v.Reposition(88, 8)
	assert.Equal(t, map[int]bool{4: true, 5: true, 6: true}, columnsX(v))
	assert.Nil(t, v.ChunkAt(world.SectionPos{X: 1, Y: 0, Z: 0}))

	moved := v.ChunkAt(world.SectionPos{X: 4, Y: 0, Z: 0})
	require.NotNil(t, moved)
	assert.Same(t, keep, moved, "slot 1 is reused for section 4")
	assert.True(t, moved.IsDirty())
	assert.Equal(t, world.BlockPos{X: 64, Y: 0, Z: 0}, moved.Origin())
}

func TestViewAreaSetDirty(t *testing.T) {
	e := newTestEnv(t, nil)
	v := NewViewArea(e.sched, 1)
	v.Reposition(8, 8)

	pos := world.SectionPos{X: 0, Y: 1, Z: 0}
	c := v.ChunkAt(pos)
	c.SetNotDirty()

	v.SetDirty(pos, true)
	assert.True(t, c.IsDirtyFromPlayer())

	// an important request survives a later background one
	v.SetDirty(pos, false)
	assert.True(t, c.IsDirtyFromPlayer())

	// sections outside the area are ignored
	v.SetDirty(world.SectionPos{X: 9, Y: 1, Z: 0}, true)
	v.SetDirty(world.SectionPos{X: 0, Y: -1, Z: 0}, true)
}

func TestViewAreaRepositionDropsSnapshots(t *testing.T) {
	e := newTestEnv(t, nil)
	e.store.Set(world.BlockPos{X: 1, Y: 1, Z: 1}, block.Stone, false)
	v := NewViewArea(e.sched, 1)
	v.Reposition(8, 8)

	c := v.ChunkAt(world.SectionPos{})
	e.build(c)
	require.True(t, c.Data().HasLayer(block.LayerSolid))

	v.Reposition(88, 8)
	assert.Same(t, Empty, c.Data())
	assert.True(t, c.IsDirty())
}

func TestViewAreaReleaseClosesBuffers(t *testing.T) {
	e := newTestEnv(t, nil)
	v := NewViewArea(e.sched, 1)
	v.Release()

	e.rec.mu.Lock()
	defer e.rec.mu.Unlock()
	assert.Equal(t, 3*world.NumSections*3*block.NumLayers, e.rec.closed)
}

func TestReleaseKeepsClosedBuffers(t *testing.T) {
	e := newTestEnv(t, nil)
	c := e.chunk(0, 0, 0)
	c.Release()

	for l := 0; l < block.NumLayers; l++ {
		assert.NotNil(t, c.Buffer(block.Layer(l)))
	}
	e.rec.mu.Lock()
	defer e.rec.mu.Unlock()
	assert.Equal(t, block.NumLayers, e.rec.closed)
}
