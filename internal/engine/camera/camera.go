// Package camera provides camera implementations for 3D rendering.
package camera

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// Movement is a keyboard movement direction.
type Movement int

const (
	Forward Movement = iota
	Backward
	Left
	Right
	Up
	Down
)

// FlyCamera is a free-flying yaw/pitch camera.
type FlyCamera struct {
	Position mgl32.Vec3
	WorldUp  mgl32.Vec3

	// Euler angles in degrees
	Yaw   float32
	Pitch float32

	// Zoom is the vertical field of view in degrees.
	Zoom    float32
	MinZoom float32
	MaxZoom float32

	Near, Far float32

	// Sensitivity
	MovementSpeed    float32
	MouseSensitivity float32

	front, right, up mgl32.Vec3
}

// NewFlyCamera creates a camera at position looking down -Z.
func NewFlyCamera(position mgl32.Vec3) *FlyCamera {
	c := &FlyCamera{
		Position:         position,
		WorldUp:          mgl32.Vec3{0, 1, 0},
		Yaw:              -90,
		Pitch:            0,
		Zoom:             45,
		MinZoom:          1,
		MaxZoom:          45,
		Near:             0.1,
		Far:              100,
		MovementSpeed:    2.5,
		MouseSensitivity: 0.1,
	}
	c.updateVectors()
	return c
}

// Front returns the unit view direction.
func (c *FlyCamera) Front() mgl32.Vec3 { return c.front }

// Right returns the unit right vector.
func (c *FlyCamera) Right() mgl32.Vec3 { return c.right }

// ViewMatrix returns the view matrix for this camera.
func (c *FlyCamera) ViewMatrix() mgl32.Mat4 {
	return mgl32.LookAtV(c.Position, c.Position.Add(c.front), c.up)
}

// ProjectionMatrix returns the perspective projection for aspect.
func (c *FlyCamera) ProjectionMatrix(aspect float32) mgl32.Mat4 {
	if aspect <= 0 {
		aspect = 1
	}
	return mgl32.Perspective(mgl32.DegToRad(c.Zoom), aspect, c.Near, c.Far)
}

// ProcessKeyboard moves the camera for dt seconds in direction.
func (c *FlyCamera) ProcessKeyboard(direction Movement, dt float32) {
	velocity := c.MovementSpeed * dt
	switch direction {
	case Forward:
		c.Position = c.Position.Add(c.front.Mul(velocity))
	case Backward:
		c.Position = c.Position.Sub(c.front.Mul(velocity))
	case Left:
		c.Position = c.Position.Sub(c.right.Mul(velocity))
	case Right:
		c.Position = c.Position.Add(c.right.Mul(velocity))
	case Up:
		c.Position = c.Position.Add(c.WorldUp.Mul(velocity))
	case Down:
		c.Position = c.Position.Sub(c.WorldUp.Mul(velocity))
	}
}

// ProcessMouse turns the camera by a mouse delta in pixels. Pitch is
// clamped short of straight up and down.
func (c *FlyCamera) ProcessMouse(dx, dy float32) {
	c.Yaw += dx * c.MouseSensitivity
	c.Pitch -= dy * c.MouseSensitivity
	c.Pitch = mgl32.Clamp(c.Pitch, -89, 89)
	c.updateVectors()
}

// ProcessScroll zooms by narrowing the field of view.
func (c *FlyCamera) ProcessScroll(delta float32) {
	c.Zoom = mgl32.Clamp(c.Zoom-delta, c.MinZoom, c.MaxZoom)
}

func (c *FlyCamera) updateVectors() {
	yaw, pitch := mgl32.DegToRad(c.Yaw), mgl32.DegToRad(c.Pitch)
	c.front = mgl32.Vec3{
		math32.Cos(yaw) * math32.Cos(pitch),
		math32.Sin(pitch),
		math32.Sin(yaw) * math32.Cos(pitch),
	}.Normalize()
	c.right = c.front.Cross(c.WorldUp).Normalize()
	c.up = c.right.Cross(c.front).Normalize()
}
