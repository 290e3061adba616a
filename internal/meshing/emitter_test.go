package meshing

import (
	"testing"

	"chunkmesh/internal/block"
	"chunkmesh/internal/world"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRegion(t *testing.T, blocks map[world.BlockPos]block.ID) (*world.RegionView, *block.Registry) {
	t.Helper()
	reg := block.NewDefaultRegistry()
	cs := world.NewChunkStore(reg)
	for x := -1; x <= 1; x++ {
		for z := -1; z <= 1; z++ {
			cs.AddChunk(world.NewChunk(x, z))
		}
	}
	for pos, id := range blocks {
		cs.Set(pos, id, false)
	}
	r := cs.Region(world.BlockPos{})
	require.NotNil(t, r)
	return r, reg
}

func TestCubeEmitterSingleBlock(t *testing.T) {
	pos := world.BlockPos{X: 3, Y: 4, Z: 5}
	r, reg := newRegion(t, map[world.BlockPos]block.ID{pos: block.Stone})
	e := NewCubeEmitter(reg)

	b := NewBuilder(block.LayerSolid)
	b.Begin()
	require.True(t, e.EmitBlock(r.DefinitionAt(pos), pos, r, b))
	assert.Equal(t, 6*QuadVertices, b.VertexCount())

	// vertices are section-local
	for i := 0; i < b.VertexCount(); i++ {
		v := b.Raw()[i*VertexStride : i*VertexStride+3]
		assert.True(t, v[0] >= 3 && v[0] <= 4 && v[1] >= 4 && v[1] <= 5 && v[2] >= 5 && v[2] <= 6, "%v", v)
	}
}

func TestCubeEmitterCullsAcrossSectionBorder(t *testing.T) {
	inside := world.BlockPos{X: 15, Y: 0, Z: 0}
	outside := world.BlockPos{X: 16, Y: 0, Z: 0}
	r, reg := newRegion(t, map[world.BlockPos]block.ID{inside: block.Stone, outside: block.Stone})
	e := NewCubeEmitter(reg)

	b := NewBuilder(block.LayerSolid)
	b.Begin()
	e.EmitBlock(r.DefinitionAt(inside), inside, r, b)
	assert.Equal(t, 5*QuadVertices, b.VertexCount())
}

func TestCubeEmitterGlassNextToGlass(t *testing.T) {
	a := world.BlockPos{X: 1, Y: 1, Z: 1}
	c := world.BlockPos{X: 2, Y: 1, Z: 1}
	r, reg := newRegion(t, map[world.BlockPos]block.ID{a: block.Glass, c: block.Glass})
	e := NewCubeEmitter(reg)

	b := NewBuilder(block.LayerCutout)
	b.Begin()
	e.EmitBlock(r.DefinitionAt(a), a, r, b)
	assert.Equal(t, 5*QuadVertices, b.VertexCount())
}

func TestCubeEmitterSkipsNonModelShapes(t *testing.T) {
	pos := world.BlockPos{X: 1, Y: 1, Z: 1}
	r, reg := newRegion(t, map[world.BlockPos]block.ID{pos: block.Chest})
	b := NewBuilder(block.LayerSolid)
	b.Begin()
	assert.False(t, NewCubeEmitter(reg).EmitBlock(r.DefinitionAt(pos), pos, r, b))
	assert.Zero(t, b.VertexCount())
}

func TestFluidRendererPool(t *testing.T) {
	blocks := map[world.BlockPos]block.ID{}
	for x := 0; x < 2; x++ {
		blocks[world.BlockPos{X: x, Y: 1, Z: 0}] = block.Water
	}
	r, reg := newRegion(t, blocks)
	f := NewFluidRenderer(reg)

	b := NewBuilder(block.LayerTranslucent)
	b.Begin()
	pos := world.BlockPos{X: 0, Y: 1, Z: 0}
	require.True(t, f.EmitFluid(r.FluidAt(pos), pos, r, b))
	// shared east face is hidden
	assert.Equal(t, 5*QuadVertices, b.VertexCount())

	// surface sits below the top of the cell
	for i := 0; i < b.VertexCount(); i++ {
		assert.LessOrEqual(t, b.Raw()[i*VertexStride+1], float32(2))
	}
}

func TestFluidRendererSubmerged(t *testing.T) {
	blocks := map[world.BlockPos]block.ID{}
	center := world.BlockPos{X: 5, Y: 5, Z: 5}
	blocks[center] = block.Water
	for _, d := range world.Directions {
		blocks[center.Offset(d, 1)] = block.Stone
	}
	r, reg := newRegion(t, blocks)

	b := NewBuilder(block.LayerTranslucent)
	b.Begin()
	assert.False(t, NewFluidRenderer(reg).EmitFluid(r.FluidAt(center), center, r, b))
	assert.Zero(t, b.VertexCount())
}
