package meshing

import (
	"chunkmesh/internal/block"
	"chunkmesh/internal/world"

	"github.com/go-gl/mathgl/mgl32"
)

// Fluid margin keeps the surface from z-fighting with blocks above it.
const fluidMargin = 0.001

var waterTint = tintFromRGB(0x3F76E4)

// FluidRenderer emits water and lava surfaces with sloped tops.
type FluidRenderer struct {
	registry *block.Registry
}

func NewFluidRenderer(registry *block.Registry) *FluidRenderer {
	return &FluidRenderer{registry: registry}
}

func (r *FluidRenderer) EmitFluid(fluid block.Fluid, pos world.BlockPos, getter world.BlockGetter, b *Builder) bool {
	if fluid.IsEmpty() {
		return false
	}
	def := getter.DefinitionAt(pos)

	shouldRenderFace := func(d world.Direction) bool {
		n := pos.Offset(d, 1)
		// same fluid hides the shared face
		if getter.FluidAt(n).Kind == fluid.Kind {
			return false
		}
		return !getter.DefinitionAt(n).Opaque
	}

	var render [world.NumDirections]bool
	anyFace := false
	for _, d := range world.Directions {
		render[d] = shouldRenderFace(d)
		anyFace = anyFace || render[d]
	}
	if !anyFace {
		return false
	}

	base := localOrigin(pos)
	tint := mgl32.Vec3{1, 1, 1}
	if fluid.Kind == block.FluidWater {
		tint = waterTint
	}
	still := float32(r.registry.TextureIndex(def, block.FaceTop))
	flow := float32(r.registry.TextureIndex(def, block.FaceSide))

	// Corner heights NW, SW, SE, NE
	hNW := r.cornerHeight(getter, pos, fluid.Kind)
	hSW := r.cornerHeight(getter, pos.Add(0, 0, 1), fluid.Kind)
	hSE := r.cornerHeight(getter, pos.Add(1, 0, 1), fluid.Kind)
	hNE := r.cornerHeight(getter, pos.Add(1, 0, 0), fluid.Kind)

	at := func(x, y, z float32) mgl32.Vec3 { return base.Add(mgl32.Vec3{x, y, z}) }

	if render[world.Up] {
		b.Quad([4]mgl32.Vec3{
			at(0, hNW-fluidMargin, 0),
			at(0, hSW-fluidMargin, 1),
			at(1, hSE-fluidMargin, 1),
			at(1, hNE-fluidMargin, 0),
		}, cubeUVs, still, tint)
	}
	if render[world.Down] {
		b.Quad([4]mgl32.Vec3{at(0, 0, 1), at(0, 0, 0), at(1, 0, 0), at(1, 0, 1)}, cubeUVs, still, tint.Mul(0.5))
	}

	side := func(x1, z1, x2, z2, h1, h2 float32, shade float32) {
		uv := [4]mgl32.Vec2{{0, 1 - h1}, {0, 1}, {1, 1}, {1, 1 - h2}}
		b.Quad([4]mgl32.Vec3{at(x1, h1, z1), at(x1, 0, z1), at(x2, 0, z2), at(x2, h2, z2)}, uv, flow, tint.Mul(shade))
	}
	if render[world.North] {
		side(1, 0, 0, 0, hNE, hNW, 0.8)
	}
	if render[world.South] {
		side(0, 1, 1, 1, hSW, hSE, 0.8)
	}
	if render[world.West] {
		side(0, 0, 0, 1, hNW, hSW, 0.6)
	}
	if render[world.East] {
		side(1, 1, 1, 0, hSE, hNE, 0.6)
	}
	return true
}

// cornerHeight averages the fluid height of the four cells sharing the
// corner at the minimum x/z of pos. A matching fluid above any of them
// raises the corner to the full block.
func (r *FluidRenderer) cornerHeight(getter world.BlockGetter, pos world.BlockPos, kind block.FluidKind) float32 {
	var sum float32
	count := 0
	for i := 0; i < 4; i++ {
		p := pos.Add(-(i & 1), 0, -((i >> 1) & 1))
		if getter.FluidAt(p.Add(0, 1, 0)).Kind == kind {
			return 1
		}
		f := getter.FluidAt(p)
		switch {
		case f.Kind == kind:
			h := f.Height()
			if f.Level >= 8 {
				// sources weigh more, like a full neighbour
				sum += h * 10
				count += 10
			}
			sum += h
			count++
		case !getter.DefinitionAt(p).Opaque:
			count++
		}
	}
	if count == 0 {
		return 1
	}
	return sum / float32(count)
}
