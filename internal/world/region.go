package world

import (
	"chunkmesh/internal/block"
	"chunkmesh/internal/profiling"
)

// BlockGetter is a read-only view of block, fluid and block entity state.
type BlockGetter interface {
	DefinitionAt(pos BlockPos) *block.Definition
	FluidAt(pos BlockPos) block.Fluid
	BlockEntityAt(pos BlockPos) (BlockEntity, bool)
}

// regionSize is a section plus a one block halo on each side.
const regionSize = SectionSize + 2

// RegionView is an immutable copy of one section and its one block halo,
// stable for the lifetime of a single build.
type RegionView struct {
	min      BlockPos
	registry *block.Registry
	blocks   [regionSize * regionSize * regionSize]block.ID
	entities map[BlockPos]BlockEntity
}

// Region snapshots the section with the given origin plus its halo. It
// returns nil when every cell of the region is air and no block entity is
// present, in which case there is nothing to build.
func (cs *ChunkStore) Region(origin BlockPos) *RegionView {
	defer profiling.Track("world.Region")()

	r := &RegionView{
		min:      origin.Add(-1, -1, -1),
		registry: cs.registry,
	}

	cs.mu.RLock()
	defer cs.mu.RUnlock()

	found := false
	for dx := 0; dx < regionSize; dx++ {
		for dz := 0; dz < regionSize; dz++ {
			wx, wz := r.min.X+dx, r.min.Z+dz
			chunk := cs.chunks[ChunkOf(wx, wz)]
			if chunk == nil {
				continue
			}
			lx, lz := mod(wx, SectionSize), mod(wz, SectionSize)
			for dy := 0; dy < regionSize; dy++ {
				id := chunk.GetBlock(lx, r.min.Y+dy, lz)
				if id != block.Air {
					r.blocks[r.index(dx, dy, dz)] = id
					found = true
				}
			}
		}
	}

	for cx := floorDiv(r.min.X, SectionSize); cx <= floorDiv(r.min.X+regionSize-1, SectionSize); cx++ {
		for cz := floorDiv(r.min.Z, SectionSize); cz <= floorDiv(r.min.Z+regionSize-1, SectionSize); cz++ {
			chunk := cs.chunks[ChunkPos{cx, cz}]
			if chunk == nil {
				continue
			}
			for pos, be := range chunk.blockEntities {
				if !r.contains(pos) {
					continue
				}
				if r.entities == nil {
					r.entities = make(map[BlockPos]BlockEntity)
				}
				r.entities[pos] = be
				found = true
			}
		}
	}

	if !found {
		return nil
	}
	return r
}

func (r *RegionView) index(dx, dy, dz int) int {
	return (dy*regionSize+dz)*regionSize + dx
}

func (r *RegionView) contains(pos BlockPos) bool {
	dx, dy, dz := pos.X-r.min.X, pos.Y-r.min.Y, pos.Z-r.min.Z
	return dx >= 0 && dx < regionSize && dy >= 0 && dy < regionSize && dz >= 0 && dz < regionSize
}

// Block returns the block id at pos, air outside the region.
func (r *RegionView) Block(pos BlockPos) block.ID {
	if !r.contains(pos) {
		return block.Air
	}
	return r.blocks[r.index(pos.X-r.min.X, pos.Y-r.min.Y, pos.Z-r.min.Z)]
}

// DefinitionAt implements BlockGetter.
func (r *RegionView) DefinitionAt(pos BlockPos) *block.Definition {
	return r.registry.Lookup(r.Block(pos))
}

// FluidAt implements BlockGetter.
func (r *RegionView) FluidAt(pos BlockPos) block.Fluid {
	def := r.DefinitionAt(pos)
	if def.Fluid == block.FluidNone {
		return block.NoFluid
	}
	return block.Fluid{Kind: def.Fluid, Level: 8}
}

// BlockEntityAt implements BlockGetter.
func (r *RegionView) BlockEntityAt(pos BlockPos) (BlockEntity, bool) {
	be, ok := r.entities[pos]
	return be, ok
}

// Registry returns the block registry the view resolves ids with.
func (r *RegionView) Registry() *block.Registry {
	return r.registry
}
