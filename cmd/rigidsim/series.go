package main

import (
	"fmt"
	"strings"

	"github.com/san-kum/rigidsim/internal/sim"
	"github.com/san-kum/rigidsim/internal/vecmath"
)

var axes = []string{"px", "py", "pz", "vx", "vy", "vz", "speed"}

func component(b sim.BodyState, axis string) (float64, bool) {
	switch axis {
	case "px":
		return b.Position.X, true
	case "py":
		return b.Position.Y, true
	case "pz":
		return b.Position.Z, true
	case "vx":
		return b.Velocity.X, true
	case "vy":
		return b.Velocity.Y, true
	case "vz":
		return b.Velocity.Z, true
	case "speed":
		return b.Velocity.Length(), true
	}
	return 0, false
}

// bodySeries pulls one axis of one body out of every frame.
func bodySeries(frames []sim.Frame, body int, axis string) ([]float64, error) {
	axis = strings.ToLower(axis)
	if _, ok := component(sim.BodyState{}, axis); !ok {
		return nil, fmt.Errorf("unknown axis %q (have %s)", axis, strings.Join(axes, ", "))
	}

	data := make([]float64, 0, len(frames))
	for _, f := range frames {
		if body < 0 || body >= len(f.Bodies) {
			return nil, fmt.Errorf("body %d not in run (frame has %d bodies)", body, len(f.Bodies))
		}
		v, _ := component(f.Bodies[body], axis)
		data = append(data, v)
	}
	return data, nil
}

// specificEnergy returns kinetic and potential energy per unit mass summed
// over bodies, frame by frame. Stored runs carry no masses or spin, so this
// is the translational part only.
func specificEnergy(frames []sim.Frame, g vecmath.Vec3) (ke, pe []float64) {
	ke = make([]float64, len(frames))
	pe = make([]float64, len(frames))
	for i, f := range frames {
		for _, b := range f.Bodies {
			ke[i] += 0.5 * b.Velocity.LengthSq()
			pe[i] -= g.Dot(b.Position)
		}
	}
	return ke, pe
}
