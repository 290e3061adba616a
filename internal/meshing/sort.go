package meshing

import (
	"sort"

	"github.com/go-gl/mathgl/mgl32"
)

// SortState is a saved copy of translucent geometry that can be re-ordered
// for a new camera position without rebuilding. It is immutable.
type SortState struct {
	vertices  []float32
	centroids []mgl32.Vec3
}

// CaptureSortState copies quads (QuadFloats floats each) out of vertices.
func CaptureSortState(vertices []float32) *SortState {
	n := len(vertices) / QuadFloats
	s := &SortState{
		vertices:  make([]float32, n*QuadFloats),
		centroids: make([]mgl32.Vec3, n),
	}
	copy(s.vertices, vertices[:n*QuadFloats])
	for q := 0; q < n; q++ {
		var c mgl32.Vec3
		// corners of the quad are vertices 0, 1, 2 and 5
		for _, v := range [4]int{0, 1, 2, 5} {
			off := q*QuadFloats + v*VertexStride
			c = c.Add(mgl32.Vec3{s.vertices[off], s.vertices[off+1], s.vertices[off+2]})
		}
		s.centroids[q] = c.Mul(0.25)
	}
	return s
}

func (s *SortState) QuadCount() int {
	return len(s.centroids)
}

// Order returns quad indices from farthest to nearest relative to cam. Quads
// at equal distance keep their captured order.
func (s *SortState) Order(cam mgl32.Vec3) []int {
	dist := make([]float32, len(s.centroids))
	order := make([]int, len(s.centroids))
	for i, c := range s.centroids {
		d := c.Sub(cam)
		dist[i] = d.Dot(d)
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return dist[order[a]] > dist[order[b]]
	})
	return order
}

// WriteSorted appends the quads to b back to front.
func (s *SortState) WriteSorted(cam mgl32.Vec3, b *Builder) {
	for _, q := range s.Order(cam) {
		b.data = append(b.data, s.vertices[q*QuadFloats:(q+1)*QuadFloats]...)
	}
}
