package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/san-kum/diskbox/internal/automation"
	"github.com/san-kum/diskbox/internal/config"
	"github.com/san-kum/diskbox/internal/experiment"
	"github.com/san-kum/diskbox/internal/metrics"
	"github.com/san-kum/diskbox/internal/sim"
	"github.com/san-kum/diskbox/internal/storage"
	"github.com/san-kum/diskbox/internal/viz"
	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/stat"
)

func runEnsemble(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	if numRuns <= 0 {
		return fmt.Errorf("runs must be positive, got %d", numRuns)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st := storage.New(cfg.Run.OutDir)
	if err := st.Init(); err != nil {
		return err
	}

	seedStart := cfg.Run.Seed
	ids := make([]string, numRuns)
	cfgs := make([]*config.Config, numRuns)
	for i := range ids {
		cfgs[i] = cfg.Clone()
		cfgs[i].Run.Seed = seedStart + int64(i)
		ids[i] = st.NewRunID(cfgs[i].Run.Seed)
	}

	build := func(seed int64) (*sim.Simulator, error) {
		idx := int(seed - seedStart)
		exporter, err := st.Create(ids[idx])
		if err != nil {
			return nil, err
		}
		exp := experiment.New(cfgs[idx])
		if err := exp.Setup(exporter, metrics.Default()); err != nil {
			exporter.Close()
			return nil, err
		}
		return exp.Simulator(), nil
	}

	ens := sim.NewEnsemble(build, numRuns, seedStart)
	if parallel > 0 {
		ens.SetLimit(parallel)
	}

	fmt.Printf("running %d seeds from %d...\n", numRuns, seedStart)
	start := time.Now()

	results, err := ens.Run(ctx, cfg.SimConfig())
	if err != nil {
		return err
	}

	pressures := make([]float64, len(results))
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSEED\tMEAN P\tFINAL P\tDRIFT")
	for i, res := range results {
		meta := newMetadata(ids[i], cfgs[i])
		fillMetadata(&meta, res)
		if err := st.SaveMetadata(meta); err != nil {
			return err
		}
		pressures[i] = res.Metrics["mean_pressure"]
		fmt.Fprintf(w, "%s\t%d\t%.6f\t%.6f\t%.2e\n", ids[i], cfgs[i].Run.Seed, pressures[i], res.FinalPressure, res.EnergyDrift)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	mean, std := stat.Mean(pressures, nil), 0.0
	if len(pressures) > 1 {
		std = stat.StdDev(pressures, nil)
	}
	fmt.Printf("\ncompleted in %v\n", time.Since(start))
	fmt.Printf("mean pressure: %.6f ± %.6f\n", mean, std)
	return nil
}

func runSweep(cmd *cobra.Command, args []string) error {
	sweep, err := automation.LoadSweep(args[0])
	if err != nil {
		return fmt.Errorf("failed to load sweep: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Printf("sweeping %s over [%g, %g] in %d points...\n", sweep.Param, sweep.Min, sweep.Max, len(sweep.Values()))
	start := time.Now()

	results, err := automation.RunSweep(ctx, sweep)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "%s\tMEAN P\tENERGY\tkT\tDRIFT\n", sweep.Param)
	pressures := make([]float64, len(results))
	for i, r := range results {
		pressures[i] = r.MeanPressure
		fmt.Fprintf(w, "%g\t%s\t%.2e\n", r.Value, formatRow(r.MeanPressure, r.Energy, r.Temperature), r.EnergyDrift)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	fmt.Printf("\n%s  %s\n", viz.MetricLabel.Render("pressure"), viz.Sparkline(pressures, len(pressures)))
	fmt.Printf("completed in %v\n", time.Since(start))
	return nil
}

func benchParticles(cmd *cobra.Command, args []string) error {
	counts := []int{16, 64, 256, 1024}
	const benchSteps = 100

	fmt.Printf("benchmarking %d steps\n\n", benchSteps)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "PARTICLES\tSTEPS\tTIME\tSTEPS/SEC\tPAIRS/SEC")

	for _, n := range counts {
		cfg := config.DefaultConfig()
		cfg.Box.Particles = n
		cfg.Run.Steps = benchSteps
		cfg.Run.Seed = 42

		exp := experiment.New(cfg)
		if err := exp.Setup(sim.Discard, nil); err != nil {
			return err
		}

		start := time.Now()
		result, err := exp.Run(context.Background())
		if err != nil {
			return err
		}
		elapsed := time.Since(start)

		stepsPerSec := float64(result.StepsTaken) / elapsed.Seconds()
		pairs := float64(n*(n-1)/2) * stepsPerSec

		fmt.Fprintf(w, "%d\t%d\t%v\t%.0f\t%.3g\n", n, result.StepsTaken, elapsed, stepsPerSec, pairs)
	}

	return w.Flush()
}
