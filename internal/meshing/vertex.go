package meshing

import "github.com/go-gl/mathgl/mgl32"

// Vertex format: Pos(3), UV(2), TexID(1), Tint(3) -> 9 floats.
const (
	VertexStride = 9
	VertexBytes  = VertexStride * 4

	// QuadVertices is the number of vertices per quad (two triangles).
	QuadVertices = 6
	QuadFloats   = QuadVertices * VertexStride
)

// tintFromRGB converts a 0xRRGGBB colour to a float tint. Zero means untinted.
func tintFromRGB(rgb uint32) mgl32.Vec3 {
	if rgb == 0 {
		return mgl32.Vec3{1, 1, 1}
	}
	return mgl32.Vec3{
		float32((rgb>>16)&0xFF) / 255,
		float32((rgb>>8)&0xFF) / 255,
		float32(rgb&0xFF) / 255,
	}
}
