package tui

import (
	"math"

	"github.com/san-kum/rigidsim/internal/vecmath"
)

// Plane selects which two world axes are drawn.
type Plane int

const (
	// PlaneXY is a side view with +y up.
	PlaneXY Plane = iota
	// PlaneXZ is a top-down view with +z down the screen.
	PlaneXZ
	// PlaneOrbit is a perspective view through the projector's Camera.
	PlaneOrbit
)

func (p Plane) String() string {
	switch p {
	case PlaneXZ:
		return "x-z"
	case PlaneOrbit:
		return "orbit"
	}
	return "x-y"
}

// Next cycles side, top-down, orbit.
func (p Plane) Next() Plane {
	return (p + 1) % 3
}

// ParsePlane accepts the names String returns plus "side" and "top".
func ParsePlane(s string) (Plane, bool) {
	switch s {
	case "x-y", "xy", "side":
		return PlaneXY, true
	case "x-z", "xz", "top":
		return PlaneXZ, true
	case "orbit", "3d":
		return PlaneOrbit, true
	}
	return PlaneXY, false
}

func (p Plane) axes(v vecmath.Vec3) (float64, float64) {
	if p == PlaneXZ {
		return v.X, v.Z
	}
	return v.X, v.Y
}

type canvas struct {
	w, h  int
	cells [][]rune
}

func newCanvas(w, h int) *canvas {
	c := &canvas{w: w, h: h, cells: make([][]rune, h)}
	for i := range c.cells {
		c.cells[i] = make([]rune, w)
	}
	c.clear()
	return c
}

func (c *canvas) clear() {
	for y := range c.cells {
		for x := range c.cells[y] {
			c.cells[y][x] = ' '
		}
	}
}

func (c *canvas) set(x, y int, r rune) {
	if x >= 0 && x < c.w && y >= 0 && y < c.h {
		c.cells[y][x] = r
	}
}

func (c *canvas) get(x, y int) rune {
	if x >= 0 && x < c.w && y >= 0 && y < c.h {
		return c.cells[y][x]
	}
	return 0
}

func (c *canvas) line(x1, y1, x2, y2 int, r rune) {
	dx := abs(x2 - x1)
	dy := abs(y2 - y1)
	sx, sy := 1, 1
	if x1 > x2 {
		sx = -1
	}
	if y1 > y2 {
		sy = -1
	}
	err := dx - dy
	for {
		c.set(x1, y1, r)
		if x1 == x2 && y1 == y2 {
			break
		}
		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x1 += sx
		}
		if e2 < dx {
			err += dx
			y1 += sy
		}
	}
}

func (c *canvas) rows() []string {
	out := make([]string, len(c.cells))
	for i, row := range c.cells {
		out[i] = string(row)
	}
	return out
}

// Projector maps world positions onto a w×h character grid. Terminal cells
// are about twice as tall as wide, so the vertical scale is halved.
type Projector struct {
	Plane  Plane
	W, H   int
	Camera *Camera

	center [2]float64
	scale  float64
	pivot  vecmath.Vec3
	radius float64
}

func (p *Projector) camera() *Camera {
	if p.Camera == nil {
		c := NewCamera()
		p.Camera = &c
	}
	return p.Camera
}

func (p *Projector) axes(v vecmath.Vec3) (float64, float64) {
	if p.Plane != PlaneOrbit {
		return p.Plane.axes(v)
	}
	return p.camera().view(v.Sub(p.pivot), p.radius)
}

// direction maps a world direction to screen axes without perspective.
func (p *Projector) direction(d vecmath.Vec3) (float64, float64) {
	if p.Plane != PlaneOrbit {
		return p.Plane.axes(d)
	}
	r := p.camera().rotate(d)
	return r.X, r.Y
}

// fitOrbit places the pivot at the bounding-box center and sizes the radius
// to the farthest finite point.
func (p *Projector) fitOrbit(pts []vecmath.Vec3) {
	lo := vecmath.V3(math.Inf(1), math.Inf(1), math.Inf(1))
	hi := vecmath.V3(math.Inf(-1), math.Inf(-1), math.Inf(-1))
	for _, v := range pts {
		if !v.IsFinite() {
			continue
		}
		lo = vecmath.V3(math.Min(lo.X, v.X), math.Min(lo.Y, v.Y), math.Min(lo.Z, v.Z))
		hi = vecmath.V3(math.Max(hi.X, v.X), math.Max(hi.Y, v.Y), math.Max(hi.Z, v.Z))
	}
	if math.IsInf(lo.X, 1) {
		p.pivot, p.radius = vecmath.Vec3{}, 1
		return
	}
	p.pivot = lo.Add(hi).Scale(0.5)
	p.radius = 1
	for _, v := range pts {
		if v.IsFinite() {
			p.radius = math.Max(p.radius, v.Sub(p.pivot).Length())
		}
	}
}

// Fit centers the projector on pts with some margin. An empty or degenerate
// set keeps a unit scale around its center.
func (p *Projector) Fit(pts []vecmath.Vec3) {
	if len(pts) == 0 {
		p.center = [2]float64{}
		p.scale = 1
		return
	}
	if p.Plane == PlaneOrbit {
		p.fitOrbit(pts)
	}
	minA, minB := math.Inf(1), math.Inf(1)
	maxA, maxB := math.Inf(-1), math.Inf(-1)
	for _, v := range pts {
		a, b := p.axes(v)
		if !finite(a) || !finite(b) {
			continue
		}
		minA, maxA = math.Min(minA, a), math.Max(maxA, a)
		minB, maxB = math.Min(minB, b), math.Max(maxB, b)
	}
	if math.IsInf(minA, 1) {
		p.center = [2]float64{}
		p.scale = 1
		return
	}

	p.center = [2]float64{(minA + maxA) / 2, (minB + maxB) / 2}
	spanA := math.Max(maxA-minA, 2)
	spanB := math.Max(maxB-minB, 2)
	sa := float64(p.W-2) / (spanA * 1.2)
	sb := float64(p.H-2) * 2 / (spanB * 1.2)
	p.scale = math.Min(sa, sb)
}

// Project returns the cell for v and whether it lands on the grid.
func (p *Projector) Project(v vecmath.Vec3) (int, int, bool) {
	if p.scale == 0 {
		p.scale = 1
	}
	a, b := p.axes(v)
	if !finite(a) || !finite(b) {
		return 0, 0, false
	}
	x := int(math.Round(float64(p.W)/2 + (a-p.center[0])*p.scale))
	y := int(math.Round(float64(p.H)/2 - (b-p.center[1])*p.scale/2))
	if p.Plane == PlaneXZ {
		y = int(math.Round(float64(p.H)/2 + (b-p.center[1])*p.scale/2))
	}
	return x, y, x >= 0 && x < p.W && y >= 0 && y < p.H
}

// drawBodies marks each active body with a glyph and a short stroke along its
// body x axis, and inactive ones with 'x'.
func drawBodies(c *canvas, p *Projector, pos []vecmath.Vec3, rot []vecmath.Quat, active []bool) {
	for i, v := range pos {
		x, y, ok := p.Project(v)
		if !ok {
			continue
		}
		if i < len(active) && !active[i] {
			c.set(x, y, 'x')
			continue
		}
		if i < len(rot) {
			a, b := p.direction(rot[i].Rotate(vecmath.V3(1, 0, 0)))
			dx := int(math.Round(a * 2))
			dy := int(math.Round(-b))
			if p.Plane == PlaneXZ {
				dy = -dy
			}
			c.line(x, y, x+dx, y+dy, '·')
		}
		c.set(x, y, 'O')
	}
}

func finite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
