package tui

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/san-kum/rigidsim/internal/physics"
	"github.com/san-kum/rigidsim/internal/vecmath"
)

const (
	width       = 70
	height      = 20
	clearScreen = "\033[2J\033[H"
	hideCursor  = "\033[?25l"
	showCursor  = "\033[?25h"
)

// LiveRenderer is a sim.Observer that redraws the world to out at most
// frameRate times per second.
type LiveRenderer struct {
	out       io.Writer
	name      string
	frameRate int
	lastFrame time.Time
	canvas    *canvas
	proj      Projector
}

func NewLiveRenderer(out io.Writer, name string, frameRate int, plane Plane) *LiveRenderer {
	if frameRate <= 0 {
		frameRate = 30
	}
	return &LiveRenderer{
		out:       out,
		name:      name,
		frameRate: frameRate,
		canvas:    newCanvas(width, height),
		proj:      Projector{Plane: plane, W: width, H: height},
	}
}

func (r *LiveRenderer) OnStep(s *physics.Store, t float64) {
	elapsed := time.Since(r.lastFrame)
	if elapsed < time.Second/time.Duration(r.frameRate) {
		return
	}
	r.lastFrame = time.Now()

	fmt.Fprint(r.out, r.Frame(s, t))
}

// Frame renders one screen for the current store contents.
func (r *LiveRenderer) Frame(s *physics.Store, t float64) string {
	pos := s.Positions().Slice()
	r.canvas.clear()
	r.proj.Fit(pos)
	drawBodies(r.canvas, &r.proj, pos, s.Orientations().Slice(), s.ActiveFlags().Slice())

	var b strings.Builder
	b.WriteString(clearScreen)
	b.WriteString(fmt.Sprintf("  %s  t=%.2fs  bodies=%d  view=%s\n", r.name, t, len(pos), r.proj.Plane))
	b.WriteString("  " + strings.Repeat("-", width) + "\n")
	for _, row := range r.canvas.rows() {
		b.WriteString("  ")
		b.WriteString(row)
		b.WriteString("\n")
	}
	b.WriteString("  " + strings.Repeat("-", width) + "\n")

	if len(pos) > 0 {
		p := pos[0]
		v := s.Velocities().At(0)
		b.WriteString(fmt.Sprintf("  body0 p=(%.2f %.2f %.2f) v=(%.2f %.2f %.2f)\n", p.X, p.Y, p.Z, v.X, v.Y, v.Z))
	}
	return b.String()
}

func (r *LiveRenderer) Start() { fmt.Fprint(r.out, hideCursor) }
func (r *LiveRenderer) Stop()  { fmt.Fprint(r.out, showCursor) }

func centroid(pts []vecmath.Vec3) vecmath.Vec3 {
	if len(pts) == 0 {
		return vecmath.Vec3{}
	}
	var c vecmath.Vec3
	for _, p := range pts {
		c = c.Add(p)
	}
	return c.Scale(1 / float64(len(pts)))
}
