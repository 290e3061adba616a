package chunkbuild

import (
	"chunkmesh/internal/block"
	"chunkmesh/internal/meshing"
	"chunkmesh/internal/world"
)

// VertexBuffer is the GPU side of one render layer of one section. Upload is
// only ever called from UploadAll or RebuildSync, on the render thread.
type VertexBuffer interface {
	Upload(buf *meshing.RenderedBuffer) error
	Close()
}

// BufferFactory creates the per-layer vertex buffers of a BuiltChunk.
type BufferFactory interface {
	NewVertexBuffer(layer block.Layer) VertexBuffer
}

// BufferFactoryFunc adapts a function to BufferFactory.
type BufferFactoryFunc func(layer block.Layer) VertexBuffer

func (f BufferFactoryFunc) NewVertexBuffer(layer block.Layer) VertexBuffer {
	return f(layer)
}

// RegionSource snapshots a section plus its one block halo. A nil view
// means the region holds nothing but air.
type RegionSource interface {
	Region(origin world.BlockPos) *world.RegionView
}

// BlockEntityRenderer describes how a block entity is drawn.
type BlockEntityRenderer interface {
	// RendersOffScreen reports whether the renderer draws outside the
	// section bounds, so the entity must not be culled with its section.
	RendersOffScreen() bool
}

// BlockEntityRenderers resolves the renderer of a block entity, nil when
// the entity is not rendered.
type BlockEntityRenderers interface {
	RendererFor(be world.BlockEntity) BlockEntityRenderer
}

// BlockEntityTracker receives changes to the set of block entities that
// render off-screen.
type BlockEntityTracker interface {
	UpdateGlobalBlockEntities(removed, added []world.BlockEntity)
}
