package main

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/diskbox/internal/analysis"
	"github.com/san-kum/diskbox/internal/export"
	"github.com/san-kum/diskbox/internal/physics"
	"github.com/san-kum/diskbox/internal/storage"
	"github.com/spf13/cobra"
)

func sortedKeys(m map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTIME\tN\tSIDE\tRADIUS\tVMAX\tSTEPS\tPRESSURE")

	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%d\t%g\t%.4f\t%g\t%d/%d\t%.4f\n",
			run.ID,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Particles,
			run.Side,
			run.Radius,
			run.VMax,
			run.StepsTaken,
			run.Steps,
			run.FinalPressure,
		)
	}

	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}

	_, pressure, err := st.LoadPressure(runID)
	if err != nil {
		return err
	}
	_, energy, err := st.LoadEnergy(runID)
	if err != nil {
		return err
	}

	if len(pressure) == 0 {
		return fmt.Errorf("no data to plot")
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("disks: %d  radius: %.4f  dt: %g\n", meta.Particles, meta.Radius, meta.Dt)
	fmt.Printf("samples: %d\n\n", len(pressure))

	fmt.Println(asciigraph.Plot(pressure,
		asciigraph.Height(10),
		asciigraph.Width(80),
		asciigraph.Caption("mean wall pressure"),
	))
	fmt.Println()

	if len(energy) > 0 {
		fmt.Println(asciigraph.Plot(energy,
			asciigraph.Height(6),
			asciigraph.Width(80),
			asciigraph.Caption("total kinetic energy"),
		))
		fmt.Println()
	}

	for _, name := range sortedKeys(meta.Metrics) {
		fmt.Printf("  %s: %.6f\n", name, meta.Metrics[name])
	}
	return nil
}

func histRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}

	speeds, err := st.LoadSpeeds(runID)
	if err != nil {
		return err
	}

	h, err := analysis.SpeedHistogram(speeds, bins)
	if err != nil {
		return err
	}

	meanSq := analysis.MeanSquare(speeds)
	centers := h.Centers()
	reference := make([]float64, len(centers))
	for i, v := range centers {
		reference[i] = analysis.MaxwellBoltzmann2D(v, meanSq)
	}

	fmt.Printf("speed distribution: %s (%d moving disks)\n\n", meta.ID, int(h.Total()))
	fmt.Println(asciigraph.PlotMany([][]float64{h.Density, reference},
		asciigraph.Height(12),
		asciigraph.Width(80),
		asciigraph.SeriesColors(asciigraph.Green, asciigraph.Red),
		asciigraph.Caption("density (green) vs 2D Maxwell-Boltzmann (red)"),
	))
	fmt.Println()

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SPEED\tCOUNT\tDENSITY\tMB")
	for i, c := range centers {
		fmt.Fprintf(w, "%.4f\t%.0f\t%.4f\t%.4f\n", c, h.Counts[i], h.Density[i], reference[i])
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if meta.Particles > 0 {
		_, energy, err := st.LoadEnergy(runID)
		if err == nil && len(energy) > 0 {
			fmt.Printf("\nkT = %.6f\n", analysis.Temperature2D(energy[len(energy)-1], meta.Particles))
		}
	}
	return nil
}

func chartRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	times, pressure, err := st.LoadPressure(runID)
	if err != nil {
		return err
	}
	_, energy, err := st.LoadEnergy(runID)
	if err != nil {
		return err
	}

	out := chartOut
	if out == "" {
		out = runID + ".png"
	}
	f, err := os.Create(out)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := export.PressureChart(f, times, pressure, energy); err != nil {
		return err
	}
	fmt.Printf("wrote %s\n", out)
	return f.Close()
}

func svgRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	snap, err := st.LoadSnapshot(runID)
	if err != nil {
		return err
	}

	box, err := physics.NewSquareBoundary(meta.Side)
	if err != nil {
		return err
	}

	out := svgOut
	if out == "" {
		out = runID + ".svg"
	}
	svg := export.SnapshotSVG(box, snap, meta.Radius, svgWidth)
	if err := os.WriteFile(out, []byte(svg), 0644); err != nil {
		return err
	}
	fmt.Printf("wrote %s (%d disks)\n", out, len(snap))
	return nil
}

func exportRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(meta)
}

func exportJSON(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	return st.ExportJSON(os.Stdout, args[0])
}

func formatRow(vals ...float64) string {
	parts := make([]string, len(vals))
	for i, v := range vals {
		parts[i] = fmt.Sprintf("%.6f", v)
	}
	return strings.Join(parts, "\t")
}
