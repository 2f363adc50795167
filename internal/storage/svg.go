package storage

import (
	"errors"
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/san-kum/rigidsim/internal/sim"
	"github.com/san-kum/rigidsim/internal/vecmath"
)

var ErrNoFrames = errors.New("no frames to draw")

var strokeColors = []string{"#00ff88", "#00a8cc", "#ffd700", "#ff6b6b", "#ff9ff3", "#feca57"}

// ParseAxes turns a two-letter plane such as "xy" or "zx" into component
// indices.
func ParseAxes(s string) ([2]int, error) {
	var out [2]int
	if len(s) != 2 || s[0] == s[1] {
		return out, fmt.Errorf("axes %q: want two distinct letters from x, y, z", s)
	}
	for i := range 2 {
		switch s[i] {
		case 'x':
			out[i] = 0
		case 'y':
			out[i] = 1
		case 'z':
			out[i] = 2
		default:
			return out, fmt.Errorf("axes %q: want two distinct letters from x, y, z", s)
		}
	}
	return out, nil
}

func component(v vecmath.Vec3, i int) float64 {
	switch i {
	case 0:
		return v.X
	case 1:
		return v.Y
	}
	return v.Z
}

// WriteSVG traces every body's path through frames as one polyline each.
// Non-finite samples break the line.
func WriteSVG(w io.Writer, frames []sim.Frame, axes [2]int, width, height int) error {
	if len(frames) == 0 || len(frames[0].Bodies) == 0 {
		return ErrNoFrames
	}

	minX, maxX := math.Inf(1), math.Inf(-1)
	minY, maxY := math.Inf(1), math.Inf(-1)
	for _, f := range frames {
		for _, b := range f.Bodies {
			if !b.Position.IsFinite() {
				continue
			}
			x, y := component(b.Position, axes[0]), component(b.Position, axes[1])
			minX, maxX = math.Min(minX, x), math.Max(maxX, x)
			minY, maxY = math.Min(minY, y), math.Max(maxY, y)
		}
	}
	if math.IsInf(minX, 1) {
		return ErrNoFrames
	}

	rangeX := maxX - minX
	rangeY := maxY - minY
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 {
		rangeY = 1
	}
	minX -= rangeX * 0.1
	minY -= rangeY * 0.1
	rangeX *= 1.2
	rangeY *= 1.2

	var sb strings.Builder
	fmt.Fprintf(&sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
`, width, height, width, height)

	for body := range frames[0].Bodies {
		color := strokeColors[body%len(strokeColors)]
		fmt.Fprintf(&sb, `<path fill="none" stroke="%s" stroke-width="1.5" d="`, color)
		move := true
		for _, f := range frames {
			if body >= len(f.Bodies) || !f.Bodies[body].Position.IsFinite() {
				move = true
				continue
			}
			p := f.Bodies[body].Position
			x := (component(p, axes[0]) - minX) / rangeX * float64(width)
			y := float64(height) - (component(p, axes[1])-minY)/rangeY*float64(height)
			if move {
				fmt.Fprintf(&sb, "M%.1f,%.1f", x, y)
				move = false
			} else {
				fmt.Fprintf(&sb, " L%.1f,%.1f", x, y)
			}
		}
		sb.WriteString("\"/>\n")
	}

	sb.WriteString("</svg>\n")
	_, err := io.WriteString(w, sb.String())
	return err
}

// ExportSVG draws a stored run's trajectories.
func (s *Store) ExportSVG(w io.Writer, runID string, axes [2]int) error {
	frames, err := s.LoadFrames(runID)
	if err != nil {
		return err
	}
	return WriteSVG(w, frames, axes, 800, 600)
}
