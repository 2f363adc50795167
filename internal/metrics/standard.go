package metrics

import (
	"github.com/san-kum/rigidsim/internal/sim"
	"github.com/san-kum/rigidsim/internal/vecmath"
)

// Standard returns the metrics attached to every CLI run.
func Standard(gravity vecmath.Vec3) []sim.Metric {
	return []sim.Metric{
		NewKineticEnergy(),
		NewEnergyDrift(gravity),
		NewMomentum(),
		NewSpinRate(),
		NewOrientationDrift(),
	}
}
