package graphics

import (
	_ "embed"
	"sort"

	"chunkmesh/internal/block"
	"chunkmesh/internal/chunkbuild"
	"chunkmesh/internal/profiling"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/pkg/errors"
)

//go:embed shaders/section.vert
var sectionVertShader string

//go:embed shaders/section.frag
var sectionFragShader string

// frustumMargin inflates section boxes before culling, in blocks.
const frustumMargin = 1.0

// FrameStats counts what the last frame drew.
type FrameStats struct {
	Visible   int
	DrawCalls int
}

// SectionRenderer draws the built sections of a view area layer by layer.
type SectionRenderer struct {
	shader  *Shader
	visible []*chunkbuild.BuiltChunk
	stats   FrameStats
}

func NewSectionRenderer() (*SectionRenderer, error) {
	shader, err := NewShader(sectionVertShader, sectionFragShader)
	if err != nil {
		return nil, errors.Wrap(err, "section shader")
	}
	return &SectionRenderer{shader: shader}, nil
}

// Render draws chunks as seen from cam. Opaque layers are drawn front to
// back, the translucent layer back to front with blending.
func (r *SectionRenderer) Render(chunks []*chunkbuild.BuiltChunk, cam *Camera) FrameStats {
	defer profiling.Track("graphics.Render")()

	origin := mgl64.Vec3{
		float64(int(cam.Position[0])), 0, float64(int(cam.Position[2])),
	}
	proj := cam.GetProjectionMatrix()
	view := cam.GetViewMatrix(origin)
	frustum := NewFrustum(proj.Mul4(view), frustumMargin)

	r.visible = r.visible[:0]
	for _, c := range chunks {
		if c.Data().IsEmpty() {
			continue
		}
		lo, hi := c.Bounds()
		if frustum.ContainsAABB(vec32(lo.Sub(origin)), vec32(hi.Sub(origin))) {
			r.visible = append(r.visible, c)
		}
	}
	sort.Slice(r.visible, func(i, j int) bool {
		return r.visible[i].DistanceSq() < r.visible[j].DistanceSq()
	})

	r.stats = FrameStats{Visible: len(r.visible)}
	r.shader.Use()
	r.shader.SetMatrix4("proj", &proj[0])
	r.shader.SetMatrix4("view", &view[0])

	gl.Enable(gl.DEPTH_TEST)
	gl.Enable(gl.CULL_FACE)
	gl.Disable(gl.BLEND)
	gl.DepthMask(true)
	r.shader.SetFloat("alpha", 1)
	for _, l := range block.Layers() {
		if l == block.LayerTranslucent {
			continue
		}
		for _, c := range r.visible {
			r.draw(c, l, origin)
		}
	}

	gl.Enable(gl.BLEND)
	gl.BlendFunc(gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA)
	gl.DepthMask(false)
	r.shader.SetFloat("alpha", 0.6)
	for i := len(r.visible) - 1; i >= 0; i-- {
		r.draw(r.visible[i], block.LayerTranslucent, origin)
	}
	gl.DepthMask(true)
	gl.Disable(gl.BLEND)
	gl.BindVertexArray(0)
	return r.stats
}

func (r *SectionRenderer) draw(c *chunkbuild.BuiltChunk, l block.Layer, origin mgl64.Vec3) {
	if !c.Data().HasLayer(l) {
		return
	}
	buf, ok := c.Buffer(l).(*GLBuffer)
	if !ok || buf.VertexCount() == 0 {
		return
	}
	o := c.Origin()
	r.shader.SetVector3("sectionOrigin",
		float32(float64(o.X)-origin[0]), float32(o.Y), float32(float64(o.Z)-origin[2]))
	buf.Draw()
	r.stats.DrawCalls++
}

// Delete frees the shader.
func (r *SectionRenderer) Delete() {
	r.shader.Delete()
}

