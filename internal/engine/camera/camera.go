// Package camera provides the viewer's orbit camera.
package camera

import (
	"github.com/chewxy/math32"

	"github.com/Faultbox/railview/pkg/math"
)

var worldUp = math.Vec3{Y: 1}

// Orbit orbits around a center point and tracks how fast its eye moves.
type Orbit struct {
	Center math.Vec3

	// Spherical coordinates
	Distance float32
	Pitch    float32 // radians above the horizon
	Yaw      float32 // radians around Y

	MinDistance float32
	MaxDistance float32
	MinPitch    float32
	MaxPitch    float32

	DragSensitivity float32
	ZoomSensitivity float32
	// MoveSpeed is the pan speed in units per second at distance 100.
	MoveSpeed float32

	lastPos  math.Vec3
	havePos  bool
	speed    float32
	velocity math.Vec3
}

// NewOrbit creates an orbit camera at the given distance from the origin.
func NewOrbit(distance, moveSpeed float32) *Orbit {
	return &Orbit{
		Distance:        distance,
		Pitch:           0.3,
		MinDistance:     2,
		MaxDistance:     5000,
		MinPitch:        -1.5,
		MaxPitch:        1.5,
		DragSensitivity: 0.005,
		ZoomSensitivity: 0.1,
		MoveSpeed:       moveSpeed,
	}
}

// Position returns the eye position in world space.
func (c *Orbit) Position() math.Vec3 {
	cp := math32.Cos(c.Pitch)
	return c.Center.Add(math.Vec3{
		X: c.Distance * cp * math32.Sin(c.Yaw),
		Y: c.Distance * math32.Sin(c.Pitch),
		Z: c.Distance * cp * math32.Cos(c.Yaw),
	})
}

// Eye returns the eye position, the unit view direction and the up vector.
func (c *Orbit) Eye() (pos, dir, up math.Vec3) {
	pos = c.Position()
	dir = c.Center.Sub(pos).Normalize()
	right := dir.Cross(worldUp).Normalize()
	up = right.Cross(dir).Normalize()
	return pos, dir, up
}

// ViewMatrix returns the world-to-view matrix.
func (c *Orbit) ViewMatrix() math.Mat4 {
	return math.LookAt(c.Position(), c.Center, worldUp)
}

// Speed returns the eye speed in units per second measured by the last Update.
func (c *Orbit) Speed() float32 {
	return c.speed
}

// Update measures the eye movement since the previous Update.
func (c *Orbit) Update(dt float64) {
	pos := c.Position()
	if c.havePos && dt > 0 {
		c.velocity = pos.Sub(c.lastPos).Scale(float32(1 / dt))
		c.speed = c.velocity.Length()
	}
	c.lastPos, c.havePos = pos, true
}

// HandleDrag rotates the camera by a mouse drag delta in pixels.
func (c *Orbit) HandleDrag(deltaX, deltaY float32) {
	c.Yaw -= deltaX * c.DragSensitivity
	c.Pitch = clamp(c.Pitch+deltaY*c.DragSensitivity, c.MinPitch, c.MaxPitch)
}

// HandleZoom changes the distance by a scroll wheel delta.
func (c *Orbit) HandleZoom(delta float32) {
	c.Distance = clamp(c.Distance-delta*c.Distance*c.ZoomSensitivity, c.MinDistance, c.MaxDistance)
}

// HandleMovement pans the center. forward, right and up are in [-1, 1].
func (c *Orbit) HandleMovement(forward, right, up float32, dt float64) {
	step := c.MoveSpeed * float32(dt) * c.Distance / 100

	dirX, dirZ := math32.Sin(c.Yaw), math32.Cos(c.Yaw)
	rightX, rightZ := math32.Cos(c.Yaw), -math32.Sin(c.Yaw)

	// Forward moves away from the eye.
	c.Center.X += (-dirX*forward + rightX*right) * step
	c.Center.Z += (-dirZ*forward + rightZ*right) * step
	c.Center.Y += up * step
}

// FitToBounds frames a sphere.
func (c *Orbit) FitToBounds(center math.Vec3, radius float32) {
	c.Center = center
	c.Distance = clamp(radius*2.5, c.MinDistance, c.MaxDistance)
	c.havePos = false
}

func clamp(v, lo, hi float32) float32 {
	return math32.Max(lo, math32.Min(v, hi))
}
