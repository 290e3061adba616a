package graphics

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
)

func testFrustum(cam *Camera, margin float32) *Frustum {
	return NewFrustum(cam.GetProjectionMatrix().Mul4(cam.GetViewMatrix(mgl64.Vec3{})), margin)
}

func TestFrustumContainsAABB(t *testing.T) {
	cam := NewCamera(900, 600)
	cam.Yaw = 0 // looking down +X
	f := testFrustum(cam, 0)

	unit := mgl32.Vec3{1, 1, 1}
	box := func(x, y, z float32) (mgl32.Vec3, mgl32.Vec3) {
		lo := mgl32.Vec3{x, y, z}
		return lo, lo.Add(unit)
	}

	assert.True(t, f.ContainsAABB(box(10, 0, 0)), "ahead")
	assert.False(t, f.ContainsAABB(box(-10, 0, 0)), "behind")
	assert.False(t, f.ContainsAABB(box(10, 0, 100)), "far to the side")
	assert.False(t, f.ContainsAABB(box(2000, 0, 0)), "past the far plane")

	// a box enclosing the camera always intersects
	assert.True(t, f.ContainsAABB(mgl32.Vec3{-8, -8, -8}, mgl32.Vec3{8, 8, 8}))
}

func TestFrustumMarginInflatesBoxes(t *testing.T) {
	cam := NewCamera(900, 600)
	cam.Yaw = 0
	lo, hi := mgl32.Vec3{-2, 0, 0}, mgl32.Vec3{-1, 1, 1}

	assert.False(t, testFrustum(cam, 0).ContainsAABB(lo, hi))
	assert.True(t, testFrustum(cam, 2).ContainsAABB(lo, hi))
}
