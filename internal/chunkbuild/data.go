package chunkbuild

import (
	"chunkmesh/internal/block"
	"chunkmesh/internal/meshing"
	"chunkmesh/internal/world"
)

// ChunkData is the immutable result of one successful build.
type ChunkData struct {
	nonEmpty      block.LayerSet
	initialized   block.LayerSet
	blockEntities []world.BlockEntity
	visibility    meshing.VisibilitySet
	sortState     *meshing.SortState
}

// Empty is the snapshot of a section that was never built: no geometry and
// nothing visible through any face.
var Empty = &ChunkData{}

// IsEmpty reports whether no layer produced geometry.
func (d *ChunkData) IsEmpty() bool {
	return d.nonEmpty.Empty()
}

// NonEmpty returns the layers holding geometry.
func (d *ChunkData) NonEmpty() block.LayerSet {
	return d.nonEmpty
}

// Initialized returns the layers that were touched by the build.
func (d *ChunkData) Initialized() block.LayerSet {
	return d.initialized
}

// HasLayer reports whether l has geometry.
func (d *ChunkData) HasLayer(l block.Layer) bool {
	return d.nonEmpty.Has(l)
}

// BlockEntities lists the block entities with a renderer. The slice must
// not be modified.
func (d *ChunkData) BlockEntities() []world.BlockEntity {
	return d.blockEntities
}

// VisibleBetween reports whether face b can be seen through the section
// from face a.
func (d *ChunkData) VisibleBetween(a, b world.Direction) bool {
	return d.visibility.VisibleBetween(a, b)
}

func (d *ChunkData) Visibility() meshing.VisibilitySet {
	return d.visibility
}

// SortState returns the saved translucent geometry, nil without any.
func (d *ChunkData) SortState() *meshing.SortState {
	return d.sortState
}
