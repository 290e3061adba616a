package world

import (
	"testing"

	"chunkmesh/internal/block"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegionNilWhenAllAir(t *testing.T) {
	cs := newTestStore(t, ChunkPos{0, 0})
	assert.Nil(t, cs.Region(BlockPos{0, 0, 0}))
}

func TestRegionIncludesHalo(t *testing.T) {
	cs := newTestStore(t, ChunkPos{0, 0}, ChunkPos{1, 0})
	cs.Set(BlockPos{16, 5, 5}, block.Stone, false) // neighbour column, halo cell
	cs.Set(BlockPos{17, 5, 5}, block.Stone, false) // outside the halo

	r := cs.Region(BlockPos{0, 0, 0})
	require.NotNil(t, r)
	assert.Equal(t, block.Stone, r.Block(BlockPos{16, 5, 5}))
	assert.Equal(t, block.Air, r.Block(BlockPos{17, 5, 5}))
	assert.Equal(t, "stone", r.DefinitionAt(BlockPos{16, 5, 5}).Name)
}

func TestRegionIsASnapshot(t *testing.T) {
	cs := newTestStore(t, ChunkPos{0, 0})
	cs.Set(BlockPos{1, 1, 1}, block.Water, false)

	r := cs.Region(BlockPos{0, 0, 0})
	require.NotNil(t, r)
	cs.Set(BlockPos{1, 1, 1}, block.Stone, false)

	assert.Equal(t, block.Water, r.Block(BlockPos{1, 1, 1}))
	assert.Equal(t, block.FluidWater, r.FluidAt(BlockPos{1, 1, 1}).Kind)
	assert.True(t, r.FluidAt(BlockPos{2, 1, 1}).IsEmpty())
}

func TestRegionBlockEntities(t *testing.T) {
	cs := newTestStore(t, ChunkPos{0, 0})
	be := BlockEntity{Pos: BlockPos{4, 4, 4}, Kind: "chest"}
	cs.Set(be.Pos, block.Chest, false)
	require.True(t, cs.SetBlockEntity(be))

	r := cs.Region(BlockPos{0, 0, 0})
	require.NotNil(t, r)
	got, ok := r.BlockEntityAt(be.Pos)
	require.True(t, ok)
	assert.Equal(t, be, got)

	_, ok = r.BlockEntityAt(BlockPos{5, 4, 4})
	assert.False(t, ok)
}

func BenchmarkRegion(b *testing.B) {
	cs := NewChunkStore(block.NewDefaultRegistry())
	g := NewFlatGenerator(20)
	for x := -1; x <= 1; x++ {
		for z := -1; z <= 1; z++ {
			c := NewChunk(x, z)
			g.PopulateChunk(c)
			cs.AddChunk(c)
		}
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = cs.Region(BlockPos{0, 16, 0})
	}
}
