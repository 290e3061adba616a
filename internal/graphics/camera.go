package graphics

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/go-gl/mathgl/mgl64"
)

// Camera is a free-flying camera. Yaw and pitch are in degrees.
type Camera struct {
	Position mgl64.Vec3
	Yaw      float64
	Pitch    float64

	AspectRatio float32
	FOV         float32
	NearPlane   float32
	FarPlane    float32
}

func NewCamera(width, height int) *Camera {
	return &Camera{
		Yaw:         -90,
		AspectRatio: float32(width) / float32(height),
		FOV:         70.0,
		NearPlane:   0.1,
		FarPlane:    1000.0,
	}
}

// Front returns the unit view direction.
func (c *Camera) Front() mgl64.Vec3 {
	yaw, pitch := mgl64.DegToRad(c.Yaw), mgl64.DegToRad(c.Pitch)
	return mgl64.Vec3{
		math.Cos(yaw) * math.Cos(pitch),
		math.Sin(pitch),
		math.Sin(yaw) * math.Cos(pitch),
	}.Normalize()
}

// Look turns the camera, clamping pitch just short of straight up or down.
func (c *Camera) Look(dYaw, dPitch float64) {
	c.Yaw += dYaw
	c.Pitch = mgl64.Clamp(c.Pitch+dPitch, -89, 89)
}

// Move translates the camera relative to its heading.
func (c *Camera) Move(forward, right, up float64) {
	front := c.Front()
	side := front.Cross(mgl64.Vec3{0, 1, 0}).Normalize()
	c.Position = c.Position.
		Add(front.Mul(forward)).
		Add(side.Mul(right)).
		Add(mgl64.Vec3{0, up, 0})
}

func (c *Camera) GetProjectionMatrix() mgl32.Mat4 {
	return mgl32.Perspective(mgl32.DegToRad(c.FOV), c.AspectRatio, c.NearPlane, c.FarPlane)
}

// GetViewMatrix returns the view matrix for rendering relative to origin, so
// vertex positions stay small in float32.
func (c *Camera) GetViewMatrix(origin mgl64.Vec3) mgl32.Mat4 {
	eye := c.Position.Sub(origin)
	target := eye.Add(c.Front())
	return mgl32.LookAtV(vec32(eye), vec32(target), mgl32.Vec3{0, 1, 0})
}

func vec32(v mgl64.Vec3) mgl32.Vec3 {
	return mgl32.Vec3{float32(v[0]), float32(v[1]), float32(v[2])}
}
