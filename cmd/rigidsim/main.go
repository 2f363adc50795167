package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"sort"
	"text/tabwriter"
	"time"

	"github.com/guptarohit/asciigraph"
	"github.com/pkg/profile"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/rigidsim/internal/config"
	"github.com/san-kum/rigidsim/internal/metrics"
	"github.com/san-kum/rigidsim/internal/physics"
	"github.com/san-kum/rigidsim/internal/sim"
	"github.com/san-kum/rigidsim/internal/storage"
	"github.com/san-kum/rigidsim/internal/tui"
	"github.com/san-kum/rigidsim/internal/vecmath"
)

var (
	dataDir    string
	debug      bool
	dt         float64
	duration   float64
	integrator string
	numBodies  int
	configFile string
	frameRate  int
	live       bool
	view       string
	// plot
	plotBody int
	plotAxis string
	// bench
	benchSteps    int
	benchParallel int
	profileMode   string
	// presets
	showYAML bool
	// export-svg
	svgAxes string
	svgOut  string
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var logFile *os.File

	rootCmd := &cobra.Command{
		Use:   "rigidsim",
		Short: "rigid-body dynamics sandbox",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logFile = setupLogging(debug)
			log.Printf("rigidsim %s: kernels=%s sqrt=%s", cmd.Name(), vecmath.Backend, vecmath.SqrtBackend)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if logFile != nil {
				logFile.Close()
			}
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return tui.RunInteractive("", frameRate)
		},
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".rigidsim", "data directory")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "write debug log to logs/rigidsim.log")
	rootCmd.Flags().IntVar(&frameRate, "fps", 60, "frame rate")

	runCmd := &cobra.Command{
		Use:   "run [preset]",
		Short: "run a scenario and store the result",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runScenario,
	}
	runCmd.Flags().Float64Var(&dt, "dt", config.DefaultDt, "timestep")
	runCmd.Flags().Float64Var(&duration, "time", config.DefaultDuration, "duration")
	runCmd.Flags().StringVar(&integrator, "integrator", "euler", "integrator (euler, verlet)")
	runCmd.Flags().IntVar(&numBodies, "bodies", 1, "replicate the first body group this many times")
	runCmd.Flags().StringVar(&configFile, "config", "", "scenario file path (yaml)")
	runCmd.Flags().BoolVar(&live, "live", false, "draw the world while running")
	runCmd.Flags().StringVar(&view, "view", "side", "projection for --live (side, top, orbit)")
	runCmd.Flags().IntVar(&frameRate, "fps", 30, "frame rate for --live")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot one body coordinate over time",
		Args:  cobra.MaximumNArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().IntVar(&plotBody, "body", 0, "body index")
	plotCmd.Flags().StringVar(&plotAxis, "axis", "py", "px, py, pz, vx, vy, vz or speed")

	energyCmd := &cobra.Command{
		Use:   "energy [run_id]",
		Short: "plot energy per unit mass",
		Args:  cobra.MaximumNArgs(1),
		RunE:  plotEnergy,
	}

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export run data to JSON",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st := storage.New(dataDir)
			runID, err := resolveRun(st, args)
			if err != nil {
				return err
			}
			return st.ExportJSON(cmd.OutOrStdout(), runID)
		},
	}

	exportSVGCmd := &cobra.Command{
		Use:   "export-svg [run_id]",
		Short: "draw run trajectories as svg",
		Args:  cobra.MaximumNArgs(1),
		RunE:  exportSVG,
	}
	exportSVGCmd.Flags().StringVar(&svgAxes, "axes", "xy", "plane to draw (xy, xz, zy, ...)")
	exportSVGCmd.Flags().StringVarP(&svgOut, "output", "o", "", "output file (default stdout)")

	presetsCmd := &cobra.Command{
		Use:   "presets [name]",
		Short: "list presets or show one as yaml",
		Args:  cobra.MaximumNArgs(1),
		RunE:  showPresets,
	}
	presetsCmd.Flags().BoolVar(&showYAML, "yaml", false, "print every preset as yaml")

	benchCmd := &cobra.Command{
		Use:   "bench",
		Short: "measure integration throughput",
		Args:  cobra.NoArgs,
		RunE:  benchWorld,
	}
	benchCmd.Flags().IntVar(&numBodies, "bodies", physics.InitialCapacity, "number of bodies")
	benchCmd.Flags().IntVar(&benchSteps, "steps", 600, "steps per run")
	benchCmd.Flags().StringVar(&integrator, "integrator", "euler", "integrator (euler, verlet)")
	benchCmd.Flags().IntVar(&benchParallel, "parallel", 1, "independent worlds run concurrently")
	benchCmd.Flags().StringVar(&profileMode, "profile", "", "write a cpu or mem profile")

	liveCmd := &cobra.Command{
		Use:   "live [preset]",
		Short: "interactive terminal view",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			preset := ""
			if len(args) > 0 {
				preset = args[0]
			}
			return tui.RunInteractive(preset, frameRate)
		},
	}
	liveCmd.Flags().IntVar(&frameRate, "fps", 60, "frame rate")

	rootCmd.AddCommand(runCmd, listCmd, plotCmd, energyCmd, exportJSONCmd, exportSVGCmd, presetsCmd, benchCmd, liveCmd)
	rootCmd.AddCommand(newBatchCmd(), newMonteCarloCmd(), newSweepCmd())
	return rootCmd
}

// loadScenario resolves the scenario for run: preset first, then the config
// file, then any flags that were set explicitly.
func loadScenario(cmd *cobra.Command, args []string) (*config.Config, error) {
	var cfg *config.Config
	switch {
	case len(args) > 0:
		cfg = config.GetPreset(args[0])
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", args[0], config.ListPresets())
		}
	case configFile == "":
		cfg = config.GetPreset("drop")
	}

	if configFile != "" {
		fileCfg, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = fileCfg
	}

	if cmd.Flags().Changed("dt") {
		cfg.Dt = dt
	}
	if cmd.Flags().Changed("time") {
		cfg.Duration = duration
	}
	if cmd.Flags().Changed("integrator") {
		cfg.Integrator = integrator
	}
	if cmd.Flags().Changed("bodies") {
		cfg.SetBodyCount(numBodies)
		cfg.Impulses = nil
	}
	return cfg, cfg.Validate()
}

func runScenario(cmd *cobra.Command, args []string) error {
	cfg, err := loadScenario(cmd, args)
	if err != nil {
		return err
	}

	runner, err := cfg.NewRunner()
	if err != nil {
		return err
	}
	simCfg := cfg.SimConfig()
	for _, m := range metrics.Standard(simCfg.Gravity) {
		runner.AddMetric(m)
	}

	if live {
		plane, ok := tui.ParsePlane(view)
		if !ok {
			return fmt.Errorf("unknown view %q", view)
		}
		r := tui.NewLiveRenderer(cmd.OutOrStdout(), cfg.Name, frameRate, plane)
		r.Start()
		defer r.Stop()
		runner.AddObserver(r)
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "running %s: %d bodies, %s, dt=%.4f\n", cfg.Name, runner.World().Len(), cfg.Integrator, cfg.Dt)
	log.Printf("run %s: bodies=%d steps=%d", cfg.Name, runner.World().Len(), simCfg.Steps())
	start := time.Now()

	result, err := runner.Run(ctx, simCfg)
	if err != nil && result == nil {
		return err
	}
	if err != nil {
		fmt.Fprintf(out, "interrupted: %v\n", err)
	}
	elapsed := time.Since(start)

	runID, err := st.Save(runInfo(cfg), result)
	if err != nil {
		return fmt.Errorf("save run: %w", err)
	}
	log.Printf("run %s saved as %s in %v", cfg.Name, runID, elapsed)

	fmt.Fprintf(out, "completed in %v\n", elapsed)
	fmt.Fprintf(out, "run id: %s\n", runID)
	fmt.Fprintf(out, "steps: %d, frames: %d\n", result.StepsTaken, len(result.Frames))
	for _, e := range result.Errors {
		fmt.Fprintf(out, "warning: %v\n", e)
	}
	fmt.Fprintln(out, "\nmetrics:")
	names := make([]string, 0, len(result.Metrics))
	for name := range result.Metrics {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(out, "  %s: %.6f\n", name, result.Metrics[name])
	}

	return nil
}

// runInfo describes a run of cfg for storage.
func runInfo(cfg *config.Config) storage.RunInfo {
	name := cfg.Integrator
	if in, err := cfg.NewIntegrator(); err == nil {
		name = in.Name()
	}
	g := cfg.Gravity
	return storage.RunInfo{
		Scenario:   cfg.Name,
		Integrator: name,
		Backend:    vecmath.Backend + "/" + vecmath.SqrtBackend,
		Dt:         cfg.Dt,
		Duration:   cfg.Duration,
		Gravity:    [3]float64{g[0], g[1], g[2]},
	}
}

func exportSVG(cmd *cobra.Command, args []string) error {
	axes, err := storage.ParseAxes(svgAxes)
	if err != nil {
		return err
	}
	st := storage.New(dataDir)
	runID, err := resolveRun(st, args)
	if err != nil {
		return err
	}

	if svgOut == "" {
		return st.ExportSVG(cmd.OutOrStdout(), runID, axes)
	}
	f, err := os.Create(svgOut)
	if err != nil {
		return err
	}
	if err := st.ExportSVG(f, runID, axes); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", svgOut)
	return nil
}

func resolveRun(st *storage.Store, args []string) (string, error) {
	if len(args) > 0 {
		return args[0], nil
	}
	return st.Latest()
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(runs) == 0 {
		fmt.Fprintln(out, "no runs found")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSCENARIO\tTIME\tDURATION\tDT\tINTEG\tBODIES\tFRAMES")

	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%.2fs\t%.4fs\t%s\t%d\t%d\n",
			run.ID,
			run.Scenario,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Duration,
			run.Dt,
			run.Integrator,
			run.Bodies,
			run.Frames,
		)
	}

	return w.Flush()
}

func loadRun(args []string) (*storage.RunInfo, []sim.Frame, error) {
	st := storage.New(dataDir)
	runID, err := resolveRun(st, args)
	if err != nil {
		return nil, nil, err
	}
	info, err := st.Load(runID)
	if err != nil {
		return nil, nil, err
	}
	frames, err := st.LoadFrames(runID)
	if err != nil {
		return nil, nil, err
	}
	if len(frames) == 0 {
		return nil, nil, fmt.Errorf("no data to plot")
	}
	return info, frames, nil
}

func plotRun(cmd *cobra.Command, args []string) error {
	info, frames, err := loadRun(args)
	if err != nil {
		return err
	}

	data, err := bodySeries(frames, plotBody, plotAxis)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "run: %s\n", info.ID)
	fmt.Fprintf(out, "scenario: %s\n", info.Scenario)
	fmt.Fprintf(out, "samples: %d\n\n", len(data))

	graph := asciigraph.Plot(data,
		asciigraph.Height(10),
		asciigraph.Width(80),
		asciigraph.Caption(fmt.Sprintf("body %d %s vs time", plotBody, plotAxis)),
	)
	fmt.Fprintln(out, graph)
	return nil
}

func plotEnergy(cmd *cobra.Command, args []string) error {
	info, frames, err := loadRun(args)
	if err != nil {
		return err
	}

	g := vecmath.V3(info.Gravity[0], info.Gravity[1], info.Gravity[2])
	ke, pe := specificEnergy(frames, g)
	total := make([]float64, len(ke))
	for i := range ke {
		total[i] = ke[i] + pe[i]
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "run: %s\n\n", info.ID)
	graph := asciigraph.PlotMany([][]float64{ke, pe, total},
		asciigraph.Height(12),
		asciigraph.Width(80),
		asciigraph.SeriesColors(asciigraph.Green, asciigraph.Goldenrod, asciigraph.Default),
		asciigraph.Caption("energy per unit mass: kinetic (green), potential (yellow), total"),
	)
	fmt.Fprintln(out, graph)

	if total[0] != 0 {
		drift := (total[len(total)-1] - total[0]) / total[0]
		fmt.Fprintf(out, "\nrelative drift: %.3e\n", drift)
	}
	return nil
}

func showPresets(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	if len(args) > 0 || showYAML {
		names := args
		if len(names) == 0 {
			names = config.ListPresets()
		}
		for _, name := range names {
			cfg := config.GetPreset(name)
			if cfg == nil {
				return fmt.Errorf("unknown preset: %s", name)
			}
			data, err := yaml.Marshal(cfg)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "---\n%s", data)
		}
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tINTEG\tBODIES\tDURATION\tIMPULSES")
	for _, name := range config.ListPresets() {
		cfg := config.GetPreset(name)
		fmt.Fprintf(w, "%s\t%s\t%d\t%.1fs\t%d\n", name, cfg.Integrator, cfg.TotalBodies(), cfg.Duration, len(cfg.Impulses))
	}
	return w.Flush()
}

func benchWorld(cmd *cobra.Command, args []string) error {
	if numBodies <= 0 || benchSteps <= 0 || benchParallel <= 0 {
		return fmt.Errorf("bodies, steps and parallel must be positive")
	}

	switch profileMode {
	case "":
	case "cpu":
		defer profile.Start(profile.CPUProfile, profile.ProfilePath(dataDir), profile.NoShutdownHook).Stop()
	case "mem":
		defer profile.Start(profile.MemProfile, profile.ProfilePath(dataDir), profile.NoShutdownHook).Stop()
	default:
		return fmt.Errorf("unknown profile mode %q (cpu or mem)", profileMode)
	}

	in, err := physics.IntegratorByName(integrator)
	if err != nil {
		return err
	}
	cfg := sim.Config{Dt: config.DefaultDt, Duration: config.DefaultDt * float64(benchSteps), Gravity: vecmath.V3(0, config.DefaultGravity, 0), SampleEvery: benchSteps}

	factory := func(idx int) (*sim.Runner, error) {
		fresh, _ := physics.IntegratorByName(in.Name())
		w := physics.NewWorld(physics.WithIntegrator(fresh))
		side := 1
		for side*side*side < numBodies {
			side++
		}
		for i := 0; i < numBodies; i++ {
			p := vecmath.V3(float64(i%side), float64((i/side)%side), float64(i/(side*side)))
			if _, err := w.AddRigidbody(p, vecmath.V3(0, 1, 0), 1, config.BoxInertia(1, 1, 1, 1)); err != nil {
				return nil, err
			}
		}
		return sim.New(w), nil
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "benchmarking %s: %d bodies x %d steps x %d worlds (%s/%s)\n\n",
		in.Name(), numBodies, benchSteps, benchParallel, vecmath.Backend, vecmath.SqrtBackend)

	start := time.Now()
	results, err := sim.NewEnsemble(benchParallel, factory).Run(context.Background(), cfg)
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	steps := 0
	for _, r := range results {
		steps += r.StepsTaken
	}
	bodySteps := float64(steps) * float64(numBodies)

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "WORLDS\tSTEPS\tTIME\tSTEPS/SEC\tBODY-STEPS/SEC\tNS/BODY-STEP")
	fmt.Fprintf(w, "%d\t%d\t%v\t%.0f\t%.3g\t%.2f\n",
		benchParallel, steps, elapsed.Round(time.Microsecond),
		float64(steps)/elapsed.Seconds(), bodySteps/elapsed.Seconds(),
		float64(elapsed.Nanoseconds())/bodySteps)
	log.Printf("bench %s: %d body-steps in %v", in.Name(), int64(bodySteps), elapsed)
	return w.Flush()
}
