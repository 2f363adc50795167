package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/san-kum/rigidsim/internal/automation"
	"github.com/san-kum/rigidsim/internal/config"
	"github.com/san-kum/rigidsim/internal/storage"
)

func newBatchCmd() *cobra.Command {
	var noSave bool
	cmd := &cobra.Command{
		Use:   "batch <scenario.yaml>",
		Short: "run a scripted sequence of scenarios",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sc, err := automation.LoadScenario(args[0])
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
			defer stop()

			results, runErr := automation.RunScenario(ctx, sc)

			st := storage.New(dataDir)
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "STEP\tNAME\tINTEGRATOR\tSTEPS\tDRIFT\tRUN ID")
			for i, r := range results {
				runID := "-"
				if !noSave {
					if runID, err = st.Save(runInfo(r.Config), r.Result); err != nil {
						return fmt.Errorf("save step %d: %w", i+1, err)
					}
				}
				fmt.Fprintf(w, "%d\t%s\t%s\t%d\t%.3g\t%s\n", i+1, r.Name, r.Config.Integrator,
					r.Result.StepsTaken, r.Result.Metrics["energy_drift"], runID)
			}
			if err := w.Flush(); err != nil {
				return err
			}
			return runErr
		},
	}
	cmd.Flags().BoolVar(&noSave, "no-save", false, "do not store the runs")
	return cmd
}

func newMonteCarloCmd() *cobra.Command {
	mc := automation.MonteCarloConfig{}
	cmd := &cobra.Command{
		Use:   "montecarlo [preset]",
		Short: "run a preset many times with perturbed initial velocities",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := "drop"
			if len(args) > 0 {
				name = args[0]
			}
			mc.Base = config.GetPreset(name)
			if mc.Base == nil {
				return fmt.Errorf("unknown preset: %s (available: %v)", name, config.ListPresets())
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
			defer stop()
			results, err := automation.RunMonteCarlo(ctx, &mc)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "TRIAL\tSTABLE\tCONTAINED\tFINAL POSITION (body 0)")
			for _, r := range results {
				pos := "-"
				if len(r.Final.Bodies) > 0 {
					p := r.Final.Bodies[0].Position
					pos = fmt.Sprintf("(%.3f, %.3f, %.3f)", p.X, p.Y, p.Z)
				}
				fmt.Fprintf(w, "%d\t%v\t%.2f\t%s\n", r.TrialID, r.Stable, r.Containment, pos)
			}
			if err := w.Flush(); err != nil {
				return err
			}
			stable, unstable := automation.MonteCarloStats(results)
			fmt.Fprintf(out, "\n%d stable, %d unstable\n", stable, unstable)
			return nil
		},
	}
	cmd.Flags().IntVar(&mc.Trials, "trials", 20, "number of trials")
	cmd.Flags().Float64Var(&mc.Perturbation, "perturb", 0.5, "max velocity change per component")
	cmd.Flags().Float64Var(&mc.Spin, "spin", 0, "max angular velocity change per component")
	cmd.Flags().Float64Var(&mc.Radius, "radius", 0, "containment radius (0 disables)")
	cmd.Flags().Int64Var(&mc.Seed, "seed", 0, "random seed (0 uses the clock)")
	return cmd
}

func newSweepCmd() *cobra.Command {
	sweep := automation.ParameterSweep{}
	cmd := &cobra.Command{
		Use:   "sweep [preset]",
		Short: "run a preset across a range of one parameter",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := "drop"
			if len(args) > 0 {
				name = args[0]
			}
			sweep.Base = config.GetPreset(name)
			if sweep.Base == nil {
				return fmt.Errorf("unknown preset: %s (available: %v)", name, config.ListPresets())
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
			defer stop()
			results, err := automation.RunSweep(ctx, &sweep)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintf(w, "%s\tSTEPS\tENERGY DRIFT\n", sweep.Param)
			for _, r := range results {
				fmt.Fprintf(w, "%.4g\t%d\t%.3e\n", r.ParamValue, r.StepsTaken, r.EnergyDrift)
			}
			return w.Flush()
		},
	}
	cmd.Flags().StringVar(&sweep.Param, "param", "dt", fmt.Sprintf("parameter to vary %v", automation.SweepParams))
	cmd.Flags().Float64Var(&sweep.Min, "min", 0.001, "first value")
	cmd.Flags().Float64Var(&sweep.Max, "max", 0.05, "last value")
	cmd.Flags().IntVar(&sweep.NumSteps, "steps", 5, "number of values")
	return cmd
}
