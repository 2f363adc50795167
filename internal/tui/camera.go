package tui

import (
	"math"

	"github.com/san-kum/rigidsim/internal/vecmath"
)

// Camera orbits the fitted scene for the perspective view. Distance is the
// eye distance in multiples of the scene radius.
type Camera struct {
	RotX, RotY float64
	Distance   float64
}

// NewCamera looks slightly down on the scene from the front right.
func NewCamera() Camera {
	return Camera{RotX: 0.35, RotY: -0.6, Distance: 4}
}

// Orbit turns the camera. Pitch is clamped so the view never flips over.
func (c *Camera) Orbit(pitch, yaw float64) {
	c.RotX = math.Max(-math.Pi/2, math.Min(math.Pi/2, c.RotX+pitch))
	c.RotY = math.Mod(c.RotY+yaw, 2*math.Pi)
}

func (c *Camera) ZoomIn()  { c.Distance = math.Max(1.5, c.Distance/1.2) }
func (c *Camera) ZoomOut() { c.Distance = math.Min(40, c.Distance*1.2) }

// rotate applies yaw about y then pitch about x. The result is in view
// space with +z toward the eye.
func (c *Camera) rotate(p vecmath.Vec3) vecmath.Vec3 {
	cy, sy := math.Cos(c.RotY), math.Sin(c.RotY)
	p.X, p.Z = p.X*cy+p.Z*sy, -p.X*sy+p.Z*cy
	cx, sx := math.Cos(c.RotX), math.Sin(c.RotX)
	p.Y, p.Z = p.Y*cx-p.Z*sx, p.Y*sx+p.Z*cx
	return p
}

// view projects p, already relative to the pivot, with a pinhole at
// Distance*radius. Points at or behind the eye come back as NaN.
func (c *Camera) view(p vecmath.Vec3, radius float64) (float64, float64) {
	r := c.rotate(p)
	d := c.Distance * radius
	if d <= 0 {
		return r.X, r.Y
	}
	if r.Z >= d*0.95 {
		return math.NaN(), math.NaN()
	}
	s := d / (d - r.Z)
	return r.X * s, r.Y * s
}
