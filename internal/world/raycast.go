package world

import (
	"math"

	"chunkmesh/internal/block"
	"chunkmesh/internal/profiling"

	"github.com/go-gl/mathgl/mgl64"
)

const raycastStep = 0.02

// BlockReader reads block ids by position.
type BlockReader interface {
	Get(pos BlockPos) block.ID
}

// RaycastResult is the first non-air block along a ray.
type RaycastResult struct {
	Hit      bool
	Pos      BlockPos
	Adjacent BlockPos // last block before Pos, Pos itself when the ray starts inside it
	Distance float64
}

// Raycast marches from start along dir, skipping the first minDist blocks,
// and reports the first non-air block within maxDist.
func Raycast(start, dir mgl64.Vec3, minDist, maxDist float64, r BlockReader) RaycastResult {
	defer profiling.Track("world.Raycast")()
	if dir.Len() == 0 {
		return RaycastResult{}
	}
	dir = dir.Normalize()

	steps := int(maxDist / raycastStep)
	last := blockAt(start)
	for i := 0; i <= steps; i++ {
		dist := float64(i) * raycastStep
		if dist < minDist {
			continue
		}
		p := start.Add(dir.Mul(dist))
		pos := blockAt(p)
		if r.Get(pos) != block.Air {
			return RaycastResult{Hit: true, Pos: pos, Adjacent: last, Distance: dist}
		}
		last = pos
	}
	return RaycastResult{}
}

func blockAt(p mgl64.Vec3) BlockPos {
	return BlockPos{int(math.Floor(p[0])), int(math.Floor(p[1])), int(math.Floor(p[2]))}
}
