package chunkbuild

import (
	"math"

	"chunkmesh/internal/world"
)

// ViewArea is a fixed grid of BuiltChunk slots centred on the camera. Slots
// wrap around as the camera moves, so each one is reused for a new section
// instead of being reallocated.
type ViewArea struct {
	sched *Scheduler
	sizeX int
	sizeY int
	sizeZ int

	chunks []*BuiltChunk
}

// NewViewArea creates (2*renderDistance+1)^2 columns of full-height slots.
func NewViewArea(s *Scheduler, renderDistance int) *ViewArea {
	size := renderDistance*2 + 1
	v := &ViewArea{
		sched: s,
		sizeX: size,
		sizeY: world.NumSections,
		sizeZ: size,
	}
	v.chunks = make([]*BuiltChunk, v.sizeX*v.sizeY*v.sizeZ)
	for x := 0; x < v.sizeX; x++ {
		for y := 0; y < v.sizeY; y++ {
			for z := 0; z < v.sizeZ; z++ {
				i := v.index(x, y, z)
				origin := world.BlockPos{X: x * world.SectionSize, Y: y * world.SectionSize, Z: z * world.SectionSize}
				v.chunks[i] = s.NewBuiltChunk(i, origin)
			}
		}
	}
	return v
}

func (v *ViewArea) index(x, y, z int) int {
	return (z*v.sizeY+y)*v.sizeX + x
}

// Size returns the grid dimensions in sections.
func (v *ViewArea) Size() (x, y, z int) {
	return v.sizeX, v.sizeY, v.sizeZ
}

// Chunks returns every slot. The slice must not be modified.
func (v *ViewArea) Chunks() []*BuiltChunk {
	return v.chunks
}

// Reposition moves slots so the grid is centred on the camera column.
func (v *ViewArea) Reposition(camX, camZ float64) {
	i := int(math.Floor(camX)) - 8
	j := int(math.Floor(camZ)) - 8
	span := v.sizeX * world.SectionSize

	for x := 0; x < v.sizeX; x++ {
		ox := relativeOrigin(i, span, x)
		for z := 0; z < v.sizeZ; z++ {
			oz := relativeOrigin(j, span, z)
			for y := 0; y < v.sizeY; y++ {
				v.chunks[v.index(x, y, z)].SetOrigin(world.BlockPos{X: ox, Y: y * world.SectionSize, Z: oz})
			}
		}
	}
}

// relativeOrigin returns the block coordinate of grid cell n along one axis
// so that the grid covers [base - span/2, base + span/2).
func relativeOrigin(base, span, n int) int {
	i := n * world.SectionSize
	j := i - base + span/2
	if j < 0 {
		j -= span - 1
	}
	return i - j/span*span
}

// slot returns the slot covering pos regardless of the origin it holds.
func (v *ViewArea) slot(pos world.SectionPos) *BuiltChunk {
	if pos.Y < 0 || pos.Y >= v.sizeY {
		return nil
	}
	x := world.FloorMod(pos.X, v.sizeX)
	z := world.FloorMod(pos.Z, v.sizeZ)
	return v.chunks[v.index(x, pos.Y, z)]
}

// ChunkAt returns the slot currently holding section pos, or nil.
func (v *ViewArea) ChunkAt(pos world.SectionPos) *BuiltChunk {
	c := v.slot(pos)
	if c == nil || c.Origin() != pos.Origin() {
		return nil
	}
	return c
}

// SetDirty marks the slot holding section pos dirty.
func (v *ViewArea) SetDirty(pos world.SectionPos, important bool) {
	if c := v.ChunkAt(pos); c != nil {
		c.SetDirty(important)
	}
}

// Release frees every slot.
func (v *ViewArea) Release() {
	for _, c := range v.chunks {
		c.Release()
	}
}
