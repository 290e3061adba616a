package world

import (
	"testing"

	"chunkmesh/internal/block"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRaycast(t *testing.T) {
	cs := newTestStore(t, ChunkPos{0, 0})
	cs.Set(BlockPos{5, 0, 0}, block.Stone, false)
	start := mgl64.Vec3{0.5, 0.5, 0.5}

	res := Raycast(start, mgl64.Vec3{1, 0, 0}, 0.1, 10, cs)
	require.True(t, res.Hit)
	assert.Equal(t, BlockPos{5, 0, 0}, res.Pos)
	assert.Equal(t, BlockPos{4, 0, 0}, res.Adjacent)
	assert.InDelta(t, 4.5, res.Distance, 0.03)

	assert.False(t, Raycast(start, mgl64.Vec3{1, 0, 0}, 0.1, 4, cs).Hit, "out of reach")
	assert.False(t, Raycast(start, mgl64.Vec3{0, 1, 0}, 0.1, 10, cs).Hit, "wrong direction")
	assert.False(t, Raycast(start, mgl64.Vec3{}, 0.1, 10, cs).Hit, "no direction")
}

func TestRaycastDirectionIsNormalized(t *testing.T) {
	cs := newTestStore(t, ChunkPos{0, 0})
	cs.Set(BlockPos{0, 3, 0}, block.Glass, false)

	res := Raycast(mgl64.Vec3{0.5, 0.5, 0.5}, mgl64.Vec3{0, 10, 0}, 0, 5, cs)
	require.True(t, res.Hit)
	assert.Equal(t, BlockPos{0, 3, 0}, res.Pos)
	assert.InDelta(t, 2.5, res.Distance, 0.03)
}
