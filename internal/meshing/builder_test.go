package meshing

import (
	"testing"

	"chunkmesh/internal/block"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func unitQuad(b *Builder, z float32) {
	b.Quad([4]mgl32.Vec3{{0, 1, z}, {0, 0, z}, {1, 0, z}, {1, 1, z}}, cubeUVs, 0, mgl32.Vec3{1, 1, 1})
}

func TestBuilderLifecycle(t *testing.T) {
	b := NewBuilder(block.LayerTranslucent)
	require.True(t, b.Idle())
	assert.Equal(t, block.LayerTranslucent.BufferSize(), b.CapacityBytes())

	b.Begin()
	assert.Panics(t, b.Begin)
	unitQuad(b, 0)
	assert.Equal(t, QuadVertices, b.VertexCount())

	buf := b.End()
	assert.Equal(t, block.LayerTranslucent, buf.Layer)
	assert.Equal(t, QuadVertices, buf.VertexCount)
	assert.Len(t, buf.Vertices, QuadFloats)
	assert.Same(t, buf, b.Rendered())
	assert.Panics(t, func() { b.End() })
	assert.Panics(t, b.Begin, "sealed builder must be cleared first")

	b.Clear()
	assert.True(t, b.Idle())
	assert.Nil(t, b.Rendered())
}

func TestBuilderClearWhileBuildingPanics(t *testing.T) {
	b := NewBuilder(block.LayerSolid)
	b.Begin()
	assert.Panics(t, b.Clear)
	b.Reset()
	assert.True(t, b.Idle())
}

func TestBufferPackClearAndReset(t *testing.T) {
	p := NewBufferPack()
	assert.Equal(t, PackBytes(), p.Bytes())
	assert.Equal(t, 2097152+131072+131072+262144+262144, PackBytes())

	p.Builder(block.LayerSolid).Begin()
	p.Builder(block.LayerCutout).Begin()
	p.Builder(block.LayerCutout).End()
	assert.False(t, p.Idle())
	assert.Panics(t, p.ClearAll)

	p.ResetAll()
	assert.True(t, p.Idle())

	p.Builder(block.LayerTranslucent).Begin()
	p.Builder(block.LayerTranslucent).End()
	p.ClearAll()
	assert.True(t, p.Idle())
}

func TestSortStateOrdersBackToFront(t *testing.T) {
	b := NewBuilder(block.LayerTranslucent)
	b.Begin()
	for _, z := range []float32{0, 5, 10} {
		unitQuad(b, z)
	}
	state := CaptureSortState(b.Raw())
	b.End()
	require.Equal(t, 3, state.QuadCount())

	assert.Equal(t, []int{2, 1, 0}, state.Order(mgl32.Vec3{0.5, 0.5, -3}))
	assert.Equal(t, []int{0, 1, 2}, state.Order(mgl32.Vec3{0.5, 0.5, 20}))

	b.Clear()
	b.Begin()
	b.ApplySort(state, mgl32.Vec3{0.5, 0.5, 20})
	buf := b.End()
	require.Equal(t, 3*QuadVertices, buf.VertexCount)
	// first vertex of the farthest quad sits at z=0
	assert.Equal(t, float32(0), buf.Vertices[2])
	assert.Equal(t, float32(10), buf.Vertices[2*QuadFloats+2])
}

func TestSortStateIsACopy(t *testing.T) {
	b := NewBuilder(block.LayerTranslucent)
	b.Begin()
	unitQuad(b, 1)
	state := CaptureSortState(b.Raw())
	b.Reset()
	b.Begin()
	unitQuad(b, 9)

	out := NewBuilder(block.LayerTranslucent)
	out.Begin()
	state.WriteSorted(mgl32.Vec3{}, out)
	assert.Equal(t, float32(1), out.Raw()[2])
}
