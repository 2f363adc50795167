package automation

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"time"

	"github.com/san-kum/rigidsim/internal/config"
	"github.com/san-kum/rigidsim/internal/metrics"
	"github.com/san-kum/rigidsim/internal/sim"
)

// MonteCarloConfig perturbs the initial velocities of every body group by up
// to Perturbation per component, and angular velocities by up to Spin.
type MonteCarloConfig struct {
	Base         *config.Config
	Perturbation float64
	Spin         float64
	Trials       int
	// Radius bounds the containment check. Zero only checks that the run
	// stayed finite.
	Radius float64
	Seed   int64
}

type MonteCarloResult struct {
	TrialID     int
	Config      *config.Config
	Final       sim.Frame
	Containment float64
	Stable      bool
}

func (c *MonteCarloConfig) validate() error {
	if c.Base == nil {
		return fmt.Errorf("%w: no base config", config.ErrInvalid)
	}
	if c.Trials <= 0 {
		return fmt.Errorf("%w: trials must be positive, got %d", config.ErrInvalid, c.Trials)
	}
	if c.Perturbation < 0 || c.Spin < 0 || c.Radius < 0 {
		return fmt.Errorf("%w: perturbation, spin and radius must not be negative", config.ErrInvalid)
	}
	return c.Base.Validate()
}

// TrialConfigs draws the perturbed configs. The same seed gives the same trials.
func (c *MonteCarloConfig) TrialConfigs() []*config.Config {
	rng := rand.New(rand.NewSource(c.Seed))
	if c.Seed == 0 {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	jitter := func(v config.Vector, amp float64) config.Vector {
		for i := range v {
			v[i] += (rng.Float64() - 0.5) * 2 * amp
		}
		return v
	}

	out := make([]*config.Config, c.Trials)
	for trial := range out {
		cfg := c.Base.Clone()
		cfg.Name = fmt.Sprintf("%s-mc%d", c.Base.Name, trial)
		for i := range cfg.Bodies {
			cfg.Bodies[i].Velocity = jitter(cfg.Bodies[i].Velocity, c.Perturbation)
			cfg.Bodies[i].AngularVelocity = jitter(cfg.Bodies[i].AngularVelocity, c.Spin)
		}
		out[trial] = cfg
	}
	return out
}

// RunMonteCarlo runs every trial concurrently. A trial is stable when it ran
// clean with finite final state and never left Radius.
func RunMonteCarlo(ctx context.Context, mc *MonteCarloConfig) ([]MonteCarloResult, error) {
	if err := mc.validate(); err != nil {
		return nil, err
	}
	configs := mc.TrialConfigs()

	ens := sim.NewEnsemble(len(configs), func(idx int) (*sim.Runner, error) {
		r, err := configs[idx].NewRunner()
		if err != nil {
			return nil, err
		}
		if mc.Radius > 0 {
			r.AddMetric(metrics.NewContainment(mc.Radius))
		}
		return r, nil
	})

	runs, err := ens.Run(ctx, mc.Base.SimConfig())
	if err != nil {
		return nil, err
	}

	results := make([]MonteCarloResult, len(runs))
	for i, res := range runs {
		final := res.Final()
		contained := 1.0
		if v, ok := res.Metrics["containment"]; ok {
			contained = v
		}
		stable := len(res.Errors) == 0 && contained == 1
		for _, b := range final.Bodies {
			if !b.Position.IsFinite() || !b.Velocity.IsFinite() {
				stable = false
				break
			}
		}
		results[i] = MonteCarloResult{
			TrialID:     i,
			Config:      configs[i],
			Final:       final,
			Containment: contained,
			Stable:      stable,
		}
	}

	stableCount, unstableCount := MonteCarloStats(results)
	log.Printf("monte carlo %s: %d trials, %d stable, %d unstable", mc.Base.Name, len(results), stableCount, unstableCount)
	return results, nil
}

func MonteCarloStats(results []MonteCarloResult) (stableCount int, unstableCount int) {
	for _, r := range results {
		if r.Stable {
			stableCount++
		} else {
			unstableCount++
		}
	}
	return
}
