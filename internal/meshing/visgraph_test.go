package meshing

import (
	"testing"

	"chunkmesh/internal/world"

	"github.com/stretchr/testify/assert"
)

func TestVisGraphEmptySectionSeesEverything(t *testing.T) {
	g := NewVisGraph()
	v := g.Resolve()
	assert.Equal(t, AllVisible(), v)
	assert.Equal(t, 36, v.Count())
}

func TestVisGraphFullSectionSeesNothing(t *testing.T) {
	g := NewVisGraph()
	for x := 0; x < 16; x++ {
		for y := 0; y < 16; y++ {
			for z := 0; z < 16; z++ {
				g.SetOpaque(x, y, z)
			}
		}
	}
	v := g.Resolve()
	for _, a := range world.Directions {
		for _, b := range world.Directions {
			assert.False(t, v.VisibleBetween(a, b), "%s -> %s", a, b)
		}
	}
}

func TestVisGraphHorizontalWallSplitsUpAndDown(t *testing.T) {
	g := NewVisGraph()
	for x := 0; x < 16; x++ {
		for z := 0; z < 16; z++ {
			g.SetOpaque(x, 8, z)
		}
	}
	v := g.Resolve()
	assert.False(t, v.VisibleBetween(world.Up, world.Down))
	assert.False(t, v.VisibleBetween(world.Down, world.Up))
	assert.True(t, v.VisibleBetween(world.Up, world.North))
	assert.True(t, v.VisibleBetween(world.Down, world.East))
	assert.True(t, v.VisibleBetween(world.West, world.East))
	assert.True(t, v.VisibleBetween(world.Up, world.Up))
}

func TestVisGraphFewOpaqueCellsShortCircuit(t *testing.T) {
	g := NewVisGraph()
	// a wall with a hole is still below the threshold
	for x := 0; x < 15; x++ {
		for z := 0; z < 16; z++ {
			g.SetOpaque(x, 3, z)
		}
	}
	g.SetOpaque(0, 3, 0) // duplicate is ignored
	assert.Equal(t, AllVisible(), g.Resolve())
}

func TestVisibilitySetWithIsSymmetric(t *testing.T) {
	var v VisibilitySet
	v = v.With(world.North, world.Up)
	assert.True(t, v.VisibleBetween(world.North, world.Up))
	assert.True(t, v.VisibleBetween(world.Up, world.North))
	assert.False(t, v.VisibleBetween(world.North, world.Down))
	assert.Equal(t, 2, v.Count())
}
