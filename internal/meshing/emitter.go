package meshing

import (
	"chunkmesh/internal/block"
	"chunkmesh/internal/world"

	"github.com/go-gl/mathgl/mgl32"
)

// BlockEmitter writes the geometry of one block into b and reports whether
// anything was written. pos is in world coordinates; emitted vertices are
// relative to the section origin.
type BlockEmitter interface {
	EmitBlock(def *block.Definition, pos world.BlockPos, getter world.BlockGetter, b *Builder) bool
}

// FluidEmitter is the fluid counterpart of BlockEmitter.
type FluidEmitter interface {
	EmitFluid(fluid block.Fluid, pos world.BlockPos, getter world.BlockGetter, b *Builder) bool
}

type faceDef struct {
	corners [4]mgl32.Vec3
	tex     block.Face
	shade   float32
}

var cubeUVs = [4]mgl32.Vec2{{0, 0}, {0, 1}, {1, 1}, {1, 0}}

// Counter-clockwise corners of each unit cube face, indexed by world.Direction.
var cubeFaces = [world.NumDirections]faceDef{
	world.Down:  {[4]mgl32.Vec3{{0, 0, 1}, {0, 0, 0}, {1, 0, 0}, {1, 0, 1}}, block.FaceBottom, 0.5},
	world.Up:    {[4]mgl32.Vec3{{0, 1, 0}, {0, 1, 1}, {1, 1, 1}, {1, 1, 0}}, block.FaceTop, 1.0},
	world.North: {[4]mgl32.Vec3{{1, 1, 0}, {1, 0, 0}, {0, 0, 0}, {0, 1, 0}}, block.FaceSide, 0.8},
	world.South: {[4]mgl32.Vec3{{0, 1, 1}, {0, 0, 1}, {1, 0, 1}, {1, 1, 1}}, block.FaceSide, 0.8},
	world.West:  {[4]mgl32.Vec3{{0, 1, 0}, {0, 0, 0}, {0, 0, 1}, {0, 1, 1}}, block.FaceSide, 0.6},
	world.East:  {[4]mgl32.Vec3{{1, 1, 1}, {1, 0, 1}, {1, 0, 0}, {1, 1, 0}}, block.FaceSide, 0.6},
}

// CubeEmitter renders every model block as a unit cube with per-face culling.
type CubeEmitter struct {
	registry *block.Registry
}

func NewCubeEmitter(registry *block.Registry) *CubeEmitter {
	return &CubeEmitter{registry: registry}
}

// localOrigin returns the section-local corner of pos as floats.
func localOrigin(pos world.BlockPos) mgl32.Vec3 {
	x, y, z := pos.Local()
	return mgl32.Vec3{float32(x), float32(y), float32(z)}
}

func (e *CubeEmitter) EmitBlock(def *block.Definition, pos world.BlockPos, getter world.BlockGetter, b *Builder) bool {
	if def.Shape != block.ShapeModel {
		return false
	}
	base := localOrigin(pos)
	tint := tintFromRGB(def.TintColor)
	wrote := false
	for _, d := range world.Directions {
		if !e.shouldRenderFace(def, getter.DefinitionAt(pos.Offset(d, 1))) {
			continue
		}
		face := cubeFaces[d]
		var corners [4]mgl32.Vec3
		for i, c := range face.corners {
			corners[i] = base.Add(c)
		}
		tex := float32(e.registry.TextureIndex(def, face.tex))
		b.Quad(corners, cubeUVs, tex, tint.Mul(face.shade))
		wrote = true
	}
	return wrote
}

// shouldRenderFace hides faces against opaque neighbours and between two
// blocks of the same see-through type (glass next to glass).
func (e *CubeEmitter) shouldRenderFace(def, neighbour *block.Definition) bool {
	if neighbour.Opaque {
		return false
	}
	if neighbour.ID == def.ID && !def.Opaque {
		return false
	}
	return true
}
