package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/san-kum/diskbox/internal/config"
	"github.com/san-kum/diskbox/internal/experiment"
	"github.com/san-kum/diskbox/internal/metrics"
	"github.com/san-kum/diskbox/internal/sim"
	"github.com/san-kum/diskbox/internal/storage"
	"github.com/san-kum/diskbox/internal/viz"
	"github.com/spf13/cobra"
)

var (
	dataDir    string
	configFile string
	preset     string

	side      float64
	particles int
	radius    float64
	mass      float64
	vmax      float64
	dt        float64
	steps     int
	seed      int64
	validate  bool

	numRuns  int
	parallel int
	bins     int
	chartOut string
	svgOut   string
	svgWidth int
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "diskbox",
		Short:         "hard-disk gas in a rigid box",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", config.DefaultOutDir, "data directory")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run simulation and export frames",
		Args:  cobra.NoArgs,
		RunE:  runSimulation,
	}
	addSetupFlags(runCmd)

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "run simulation with live visualization",
		Args:  cobra.NoArgs,
		RunE:  runLive,
	}
	addSetupFlags(liveCmd)

	ensembleCmd := &cobra.Command{
		Use:   "ensemble",
		Short: "run the same setup over consecutive seeds",
		Args:  cobra.NoArgs,
		RunE:  runEnsemble,
	}
	addSetupFlags(ensembleCmd)
	ensembleCmd.Flags().IntVar(&numRuns, "runs", 4, "number of seeds")
	ensembleCmd.Flags().IntVar(&parallel, "parallel", 0, "concurrent runs (0 = GOMAXPROCS)")

	sweepCmd := &cobra.Command{
		Use:   "sweep [file]",
		Short: "sweep vmax, radius or particle count and tabulate mean pressure",
		Args:  cobra.ExactArgs(1),
		RunE:  runSweep,
	}

	benchCmd := &cobra.Command{
		Use:   "bench",
		Short: "benchmark steps per second against particle count",
		Args:  cobra.NoArgs,
		RunE:  benchParticles,
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot pressure and energy of a run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	histCmd := &cobra.Command{
		Use:   "hist [run_id]",
		Short: "speed histogram against the 2D Maxwell-Boltzmann curve",
		Args:  cobra.ExactArgs(1),
		RunE:  histRun,
	}
	histCmd.Flags().IntVar(&bins, "bins", 20, "number of histogram bins")

	chartCmd := &cobra.Command{
		Use:   "chart [run_id]",
		Short: "render pressure and energy to PNG",
		Args:  cobra.ExactArgs(1),
		RunE:  chartRun,
	}
	chartCmd.Flags().StringVarP(&chartOut, "out", "o", "", "output file (default <run_id>.png)")

	svgCmd := &cobra.Command{
		Use:   "svg [run_id]",
		Short: "render the last snapshot to SVG",
		Args:  cobra.ExactArgs(1),
		RunE:  svgRun,
	}
	svgCmd.Flags().StringVarP(&svgOut, "out", "o", "", "output file (default <run_id>.svg)")
	svgCmd.Flags().IntVar(&svgWidth, "width", 600, "image width in pixels")

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "export run metadata",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export run data to JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, name := range config.ListPresets() {
				p := config.Presets[name]
				fmt.Printf("  %-8s  n=%-4d side=%-5g vmax=%-4g %s\n",
					name, p.Box.Particles, p.Box.Side, p.Box.VMax, viz.Subtle.Render(config.PresetInfo[name]))
			}
			return nil
		},
	}

	rootCmd.AddCommand(runCmd, liveCmd, ensembleCmd, sweepCmd, benchCmd, listCmd, plotCmd, histCmd, chartCmd, svgCmd, exportCmd, exportJSONCmd, presetsCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, viz.ErrorStyle.Render("error: ")+err.Error())
		os.Exit(1)
	}
}

func addSetupFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml or ini)")
	cmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")
	cmd.Flags().Float64Var(&side, "side", config.DefaultSide, "box side")
	cmd.Flags().IntVarP(&particles, "particles", "n", config.DefaultParticles, "number of disks")
	cmd.Flags().Float64Var(&radius, "radius", 0, "disk radius (0 = suggested)")
	cmd.Flags().Float64Var(&mass, "mass", config.DefaultMass, "disk mass")
	cmd.Flags().Float64Var(&vmax, "vmax", config.DefaultVMax, "maximum initial speed")
	cmd.Flags().Float64Var(&dt, "dt", config.DefaultDt, "timestep")
	cmd.Flags().IntVar(&steps, "steps", config.DefaultSteps, "number of frames")
	cmd.Flags().Int64Var(&seed, "seed", config.DefaultSeed, "random seed")
	cmd.Flags().BoolVar(&validate, "validate", true, "stop on non-finite particle state")
}

// resolveConfig layers the setup: preset, then config file, then any flag
// set on the command line.
func resolveConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if preset != "" {
		cfg = config.GetPreset(preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
	}

	if configFile != "" {
		loaded, err := config.LoadOver(configFile, cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("side") {
		cfg.Box.Side = side
	}
	if flags.Changed("particles") {
		cfg.Box.Particles = particles
	}
	if flags.Changed("radius") {
		cfg.Box.Radius = radius
	}
	if flags.Changed("mass") {
		cfg.Box.Mass = mass
	}
	if flags.Changed("vmax") {
		cfg.Box.VMax = vmax
	}
	if flags.Changed("dt") {
		cfg.Run.Dt = dt
	}
	if flags.Changed("steps") {
		cfg.Run.Steps = steps
	}
	if flags.Changed("seed") {
		cfg.Run.Seed = seed
	}
	if flags.Changed("validate") {
		cfg.Run.ValidateState = validate
	}
	if cmd.Root().PersistentFlags().Changed("data") || cfg.Run.OutDir == "" {
		cfg.Run.OutDir = dataDir
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// progress prints a bar every tenth of the run.
type progress struct {
	total, every int
}

func newProgress(total int) *progress {
	return &progress{total: total, every: max(total/10, 1)}
}

func (p *progress) OnStep(s sim.Summary) {
	done := s.Step + 1
	if done%p.every != 0 && done != p.total {
		return
	}
	frac := float64(done) / float64(p.total)
	fmt.Printf("\r  %s %3.0f%%  P=%.4f", viz.ProgressBar(frac, 30), frac*100, s.Pressure)
	if done == p.total {
		fmt.Println()
	}
}

func newMetadata(id string, cfg *config.Config) storage.RunMetadata {
	return storage.RunMetadata{
		ID:        id,
		Timestamp: time.Now(),
		Seed:      cfg.Run.Seed,
		Side:      cfg.Box.Side,
		Particles: cfg.Box.Particles,
		Radius:    cfg.ResolvedRadius(),
		VMax:      cfg.Box.VMax,
		Mass:      cfg.Box.Mass,
		Dt:        cfg.Run.Dt,
		Steps:     cfg.Run.Steps,
	}
}

func fillMetadata(meta *storage.RunMetadata, result *sim.Result) {
	if result == nil {
		return
	}
	meta.StepsTaken = result.StepsTaken
	meta.FinalPressure = result.FinalPressure
	meta.EnergyDrift = result.EnergyDrift
	meta.Metrics = result.Metrics
}

func runSimulation(cmd *cobra.Command, args []string) (err error) {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st := storage.New(cfg.Run.OutDir)
	if err := st.Init(); err != nil {
		return err
	}

	runID := st.NewRunID(cfg.Run.Seed)
	exporter, err := st.Create(runID)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := exporter.Close(); err == nil {
			err = cerr
		}
	}()

	exp := experiment.New(cfg)
	if err := exp.Setup(exporter, metrics.Default()); err != nil {
		return err
	}
	exp.Simulator().AddObserver(newProgress(cfg.Run.Steps))

	fmt.Printf("running %d disks, R=%.4f, %d steps of dt=%g...\n",
		cfg.Box.Particles, cfg.ResolvedRadius(), cfg.Run.Steps, cfg.Run.Dt)
	start := time.Now()

	result, runErr := exp.Run(ctx)
	elapsed := time.Since(start)

	meta := newMetadata(runID, cfg)
	fillMetadata(&meta, result)
	if err := st.SaveMetadata(meta); err != nil {
		return err
	}

	if runErr != nil {
		if errors.Is(runErr, context.Canceled) {
			fmt.Println()
			fmt.Println(viz.StatusPaused.Render("interrupted") + fmt.Sprintf(" after %d steps", meta.StepsTaken))
			fmt.Printf("run id: %s\n", runID)
			return nil
		}
		return runErr
	}

	fmt.Printf("completed in %v\n", elapsed)
	fmt.Printf("run id: %s\n", runID)
	fmt.Printf("steps: %d  collisions: %d  rebounds: %d\n", result.StepsTaken, result.Collisions, result.Rebounds)
	fmt.Println("\nmetrics:")
	for _, name := range sortedKeys(result.Metrics) {
		fmt.Printf("  %s: %.6f\n", name, result.Metrics[name])
	}

	return nil
}

func runLive(cmd *cobra.Command, args []string) error {
	launch := func(name string) (viz.Model, error) {
		cfg := config.GetPreset(name)
		if cfg == nil {
			return viz.Model{}, fmt.Errorf("unknown preset: %s", name)
		}
		return newLiveModel(cfg, name)
	}

	// Without any setup flag, start from the preset menu.
	var m tea.Model
	if cmd.Flags().NFlag() == 0 {
		m = viz.NewPicker(config.ListPresets(), config.PresetInfo, launch)
	} else {
		cfg, err := resolveConfig(cmd)
		if err != nil {
			return err
		}
		live, err := newLiveModel(cfg, "diskbox")
		if err != nil {
			return err
		}
		m = live
	}

	final, err := tea.NewProgram(m).Run()
	if err != nil {
		return err
	}
	if e, ok := final.(interface{ Err() error }); ok {
		return e.Err()
	}
	return nil
}

func newLiveModel(cfg *config.Config, title string) (viz.Model, error) {
	build := func() (*sim.Simulator, error) {
		exp := experiment.New(cfg)
		if err := exp.Setup(nil, nil); err != nil {
			return nil, err
		}
		return exp.Simulator(), nil
	}
	return viz.NewModel(build, cfg.Run.Dt, title)
}
