package automation

import (
	"context"
	"fmt"
	"log"

	"github.com/san-kum/rigidsim/internal/config"
	"github.com/san-kum/rigidsim/internal/metrics"
	"github.com/san-kum/rigidsim/internal/sim"
)

// SweepParams lists the config fields a sweep can vary.
var SweepParams = []string{"dt", "gravity", "mass"}

// ParameterSweep runs Base once per evenly spaced value of Param in
// [Min, Max].
type ParameterSweep struct {
	Base     *config.Config
	Param    string
	Min, Max float64
	NumSteps int
}

type SweepResult struct {
	ParamValue  float64
	Final       sim.Frame
	EnergyDrift float64
	StepsTaken  int
}

func setParam(cfg *config.Config, name string, v float64) error {
	switch name {
	case "dt":
		cfg.Dt = v
	case "gravity":
		cfg.Gravity = config.V(0, v, 0)
	case "mass":
		for i := range cfg.Bodies {
			cfg.Bodies[i].Mass = v
		}
	default:
		return fmt.Errorf("%w: cannot sweep %q (have %v)", config.ErrInvalid, name, SweepParams)
	}
	return nil
}

// Values returns the sampled parameter values.
func (s *ParameterSweep) Values() []float64 {
	if s.NumSteps <= 1 {
		return []float64{s.Min}
	}
	step := (s.Max - s.Min) / float64(s.NumSteps-1)
	out := make([]float64, s.NumSteps)
	for i := range out {
		out[i] = s.Min + float64(i)*step
	}
	return out
}

// RunSweep executes the sweep sequentially and reports the energy drift of
// each run.
func RunSweep(ctx context.Context, sweep *ParameterSweep) ([]SweepResult, error) {
	if sweep.Base == nil {
		return nil, fmt.Errorf("%w: no base config", config.ErrInvalid)
	}
	values := sweep.Values()
	results := make([]SweepResult, 0, len(values))

	for i, v := range values {
		cfg := sweep.Base.Clone()
		if err := setParam(cfg, sweep.Param, v); err != nil {
			return nil, err
		}
		runner, err := cfg.NewRunner()
		if err != nil {
			return results, fmt.Errorf("%s=%g: %w", sweep.Param, v, err)
		}
		simCfg := cfg.SimConfig()
		drift := metrics.NewEnergyDrift(simCfg.Gravity)
		runner.AddMetric(drift)

		res, err := runner.Run(ctx, simCfg)
		if err != nil {
			return results, err
		}

		results = append(results, SweepResult{
			ParamValue:  v,
			Final:       res.Final(),
			EnergyDrift: drift.Value(),
			StepsTaken:  res.StepsTaken,
		})
		log.Printf("sweep %d/%d: %s=%.4g", i+1, len(values), sweep.Param, v)
	}

	return results, nil
}
