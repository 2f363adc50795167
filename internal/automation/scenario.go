package automation

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/rigidsim/internal/config"
	"github.com/san-kum/rigidsim/internal/metrics"
	"github.com/san-kum/rigidsim/internal/sim"
)

var ErrEmptyStep = errors.New("step names neither a preset nor a config")

// Scenario is a scripted sequence of runs.
type Scenario struct {
	Name        string         `yaml:"name"`
	Description string         `yaml:"description"`
	Steps       []ScenarioStep `yaml:"steps"`
}

// ScenarioStep starts from a preset or an inline config and applies any
// non-zero overrides.
type ScenarioStep struct {
	Preset     string         `yaml:"preset,omitempty"`
	Config     *config.Config `yaml:"config,omitempty"`
	Integrator string         `yaml:"integrator,omitempty"`
	Dt         float64        `yaml:"dt,omitempty"`
	Duration   float64        `yaml:"duration,omitempty"`
	Bodies     int            `yaml:"bodies,omitempty"`
	SaveAs     string         `yaml:"save_as,omitempty"`
}

// StepResult pairs the resolved config of a step with its run.
type StepResult struct {
	Name   string
	Config *config.Config
	Result *sim.Result
}

func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var scenario Scenario
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, err
	}

	return &scenario, nil
}

// Resolve builds the config the step runs with.
func (s ScenarioStep) Resolve() (*config.Config, error) {
	var cfg *config.Config
	switch {
	case s.Config != nil:
		cfg = s.Config.Clone()
	case s.Preset != "":
		cfg = config.GetPreset(s.Preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s", s.Preset)
		}
	default:
		return nil, ErrEmptyStep
	}

	if s.Integrator != "" {
		cfg.Integrator = s.Integrator
	}
	if s.Dt != 0 {
		cfg.Dt = s.Dt
	}
	if s.Duration != 0 {
		cfg.Duration = s.Duration
	}
	if s.Bodies > 0 {
		cfg.SetBodyCount(s.Bodies)
		cfg.Impulses = nil
	}
	if s.SaveAs != "" {
		cfg.Name = s.SaveAs
	}
	return cfg, cfg.Validate()
}

// RunScenario executes the steps in order and stops at the first one that
// fails to resolve or run. Results of the completed steps are returned
// alongside the error.
func RunScenario(ctx context.Context, scenario *Scenario) ([]StepResult, error) {
	results := make([]StepResult, 0, len(scenario.Steps))

	for i, step := range scenario.Steps {
		cfg, err := step.Resolve()
		if err != nil {
			return results, fmt.Errorf("step %d: %w", i+1, err)
		}
		log.Printf("scenario %s: step %d/%d: %s (%d bodies, %s)",
			scenario.Name, i+1, len(scenario.Steps), cfg.Name, cfg.TotalBodies(), cfg.Integrator)

		runner, err := cfg.NewRunner()
		if err != nil {
			return results, fmt.Errorf("step %d setup: %w", i+1, err)
		}
		simCfg := cfg.SimConfig()
		for _, m := range metrics.Standard(simCfg.Gravity) {
			runner.AddMetric(m)
		}

		result, err := runner.Run(ctx, simCfg)
		if err != nil {
			return results, fmt.Errorf("step %d run: %w", i+1, err)
		}

		results = append(results, StepResult{Name: cfg.Name, Config: cfg, Result: result})
	}

	return results, nil
}
