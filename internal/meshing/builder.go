package meshing

import (
	"fmt"

	"chunkmesh/internal/block"

	"github.com/go-gl/mathgl/mgl32"
)

// RenderedBuffer is the sealed output of a Builder, ready for upload.
// Vertices aliases the builder's storage and stays valid until the builder
// is cleared or reset.
type RenderedBuffer struct {
	Layer       block.Layer
	Vertices    []float32
	VertexCount int
}

// Builder accumulates the vertices of one render layer during a build.
// Its lifecycle is idle -> building (Begin) -> sealed (End) -> idle (Clear/Reset).
type Builder struct {
	layer    block.Layer
	data     []float32
	building bool
	sealed   *RenderedBuffer
}

// NewBuilder reserves layer.BufferSize() bytes of vertex storage.
func NewBuilder(layer block.Layer) *Builder {
	return &Builder{
		layer: layer,
		data:  make([]float32, 0, layer.BufferSize()/4),
	}
}

func (b *Builder) Layer() block.Layer { return b.layer }

// Building reports whether Begin was called without a matching End.
func (b *Builder) Building() bool { return b.building }

// Begin starts a new batch of geometry.
func (b *Builder) Begin() {
	if b.building {
		panic(fmt.Sprintf("meshing: %s builder already building", b.layer))
	}
	if b.sealed != nil {
		panic(fmt.Sprintf("meshing: %s builder holds a sealed buffer", b.layer))
	}
	b.building = true
	b.data = b.data[:0]
}

// Vertex appends a single vertex.
func (b *Builder) Vertex(pos mgl32.Vec3, u, v, tex float32, tint mgl32.Vec3) {
	b.data = append(b.data, pos[0], pos[1], pos[2], u, v, tex, tint[0], tint[1], tint[2])
}

// Quad appends the quad c0..c3 (counter-clockwise seen from the front) as the
// triangles c0 c1 c2 and c0 c2 c3.
func (b *Builder) Quad(c [4]mgl32.Vec3, uv [4]mgl32.Vec2, tex float32, tint mgl32.Vec3) {
	for _, i := range [QuadVertices]int{0, 1, 2, 0, 2, 3} {
		b.Vertex(c[i], uv[i][0], uv[i][1], tex, tint)
	}
}

// VertexCount returns the number of vertices written since Begin.
func (b *Builder) VertexCount() int {
	return len(b.data) / VertexStride
}

// Raw exposes the vertices written since Begin.
func (b *Builder) Raw() []float32 {
	return b.data
}

// ApplySort replaces the current batch with the quads of state ordered back
// to front as seen from cam.
func (b *Builder) ApplySort(state *SortState, cam mgl32.Vec3) {
	if !b.building {
		panic(fmt.Sprintf("meshing: %s builder not building", b.layer))
	}
	b.data = b.data[:0]
	state.WriteSorted(cam, b)
}

// End seals the batch. Calling End twice panics.
func (b *Builder) End() *RenderedBuffer {
	if !b.building {
		panic(fmt.Sprintf("meshing: %s builder not building", b.layer))
	}
	b.building = false
	b.sealed = &RenderedBuffer{
		Layer:       b.layer,
		Vertices:    b.data,
		VertexCount: b.VertexCount(),
	}
	return b.sealed
}

// Rendered returns the sealed buffer, nil before End.
func (b *Builder) Rendered() *RenderedBuffer {
	return b.sealed
}

// Clear drops the sealed output after a successful build and keeps capacity.
func (b *Builder) Clear() {
	if b.building {
		panic(fmt.Sprintf("meshing: clear of %s builder while building", b.layer))
	}
	b.sealed = nil
	b.data = b.data[:0]
}

// Reset discards any state, including an unfinished batch.
func (b *Builder) Reset() {
	b.building = false
	b.sealed = nil
	b.data = b.data[:0]
}

// Idle reports whether the builder can be handed to a new task.
func (b *Builder) Idle() bool {
	return !b.building && b.sealed == nil && len(b.data) == 0
}

// CapacityBytes returns the reserved vertex storage in bytes.
func (b *Builder) CapacityBytes() int {
	return cap(b.data) * 4
}
