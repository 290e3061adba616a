package graphics

import (
	"chunkmesh/internal/block"
	"chunkmesh/internal/chunkbuild"
	"chunkmesh/internal/meshing"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/pkg/errors"
)

// vertexAttribs describes the meshing vertex format: Pos(3), UV(2), TexID(1), Tint(3).
var vertexAttribs = [...]struct {
	size   int32
	offset int
}{
	{3, 0},
	{2, 3},
	{1, 5},
	{3, 6},
}

// GLBuffer holds the geometry of one render layer of one section. All
// methods must run on the thread owning the GL context.
type GLBuffer struct {
	layer       block.Layer
	vao         uint32
	vbo         uint32
	vertexCount int32
	capacity    int
}

// NewGLBuffer creates the vertex array and buffer objects for layer.
func NewGLBuffer(layer block.Layer) *GLBuffer {
	b := &GLBuffer{layer: layer}
	gl.GenVertexArrays(1, &b.vao)
	gl.GenBuffers(1, &b.vbo)

	gl.BindVertexArray(b.vao)
	gl.BindBuffer(gl.ARRAY_BUFFER, b.vbo)
	stride := int32(meshing.VertexBytes)
	for i, a := range vertexAttribs {
		gl.VertexAttribPointerWithOffset(uint32(i), a.size, gl.FLOAT, false, stride, uintptr(a.offset*4))
		gl.EnableVertexAttribArray(uint32(i))
	}
	gl.BindVertexArray(0)
	return b
}

// NewBufferFactory returns a factory creating GLBuffers. The factory must be
// used on the GL thread.
func NewBufferFactory() chunkbuild.BufferFactory {
	return chunkbuild.BufferFactoryFunc(func(l block.Layer) chunkbuild.VertexBuffer {
		return NewGLBuffer(l)
	})
}

// Upload replaces the buffer contents with buf.
func (b *GLBuffer) Upload(buf *meshing.RenderedBuffer) error {
	if b.vbo == 0 {
		return errors.Errorf("upload into closed %s buffer", b.layer)
	}
	if buf.Layer != b.layer {
		return errors.Errorf("upload of %s geometry into %s buffer", buf.Layer, b.layer)
	}

	gl.BindBuffer(gl.ARRAY_BUFFER, b.vbo)
	size := len(buf.Vertices) * 4
	switch {
	case size == 0:
	case size > b.capacity:
		gl.BufferData(gl.ARRAY_BUFFER, size, gl.Ptr(buf.Vertices), gl.DYNAMIC_DRAW)
		b.capacity = size
	default:
		gl.BufferSubData(gl.ARRAY_BUFFER, 0, size, gl.Ptr(buf.Vertices))
	}
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
	b.vertexCount = int32(buf.VertexCount)

	if code := gl.GetError(); code != gl.NO_ERROR {
		return errors.Errorf("gl error 0x%x uploading %s buffer", code, b.layer)
	}
	return nil
}

// VertexCount returns the number of vertices of the last upload.
func (b *GLBuffer) VertexCount() int32 {
	return b.vertexCount
}

// Draw issues the draw call for the uploaded triangles.
func (b *GLBuffer) Draw() {
	if b.vertexCount == 0 {
		return
	}
	gl.BindVertexArray(b.vao)
	gl.DrawArrays(gl.TRIANGLES, 0, b.vertexCount)
}

// Close frees the GL objects.
func (b *GLBuffer) Close() {
	if b.vbo != 0 {
		gl.DeleteBuffers(1, &b.vbo)
		gl.DeleteVertexArrays(1, &b.vao)
	}
	b.vbo, b.vao, b.vertexCount, b.capacity = 0, 0, 0, 0
}
