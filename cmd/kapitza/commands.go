package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"
	"text/tabwriter"
	"time"

	"github.com/san-kum/kapitza/internal/analysis"
	"github.com/san-kum/kapitza/internal/config"
	"github.com/san-kum/kapitza/internal/dynamo"
	"github.com/san-kum/kapitza/internal/physics"
	"github.com/san-kum/kapitza/internal/sim"
	"github.com/san-kum/kapitza/internal/storage"
	"github.com/san-kum/kapitza/internal/viz"
	"github.com/spf13/cobra"
)

const chartSamples = 400

// integrate resolves the configuration and integrates it.
func integrate(cmd *cobra.Command) (*config.Config, sim.Run, *dynamo.Trajectory, error) {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return nil, sim.Run{}, nil, err
	}
	run, err := resolveRun(cfg)
	if err != nil {
		return nil, sim.Run{}, nil, err
	}

	start := time.Now()
	tr, err := sim.IntegrateWith(run)
	if err != nil {
		return cfg, run, nil, err
	}
	slog.Info("integration finished",
		"method", tr.Method,
		"steps", tr.Stats.Steps,
		"evaluations", tr.Stats.Evaluations,
		"elapsed", time.Since(start),
	)
	return cfg, run, tr, nil
}

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	run, err := resolveRun(cfg)
	if err != nil {
		return err
	}
	st, err := openStore(cfg)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "integrating %s over %s...\n", run.Method, run.Interval)
	start := time.Now()

	tr, runErr := sim.IntegrateWith(run)
	elapsed := time.Since(start)
	if runErr != nil {
		var div *dynamo.DivergenceError
		if !errors.As(runErr, &div) || div.Partial == nil {
			return runErr
		}
		slog.Error("integration failed", "method", div.Method, "t", div.Time, "step", div.Step, "err", div.Wrapped)
		tr = div.Partial
	}

	metrics, err := sim.Summarize(run.Params, tr)
	if err != nil {
		return err
	}

	runID, err := st.Save(run, tr, metrics, runErr)
	if err != nil {
		return err
	}
	slog.Debug("run saved", "id", runID, "dir", st.Dir())

	fmt.Fprintf(out, "completed in %v\n", elapsed)
	fmt.Fprintf(out, "run id: %s\n", runID)
	printStats(out, tr.Stats)
	printMetrics(out, metrics)

	series, err := chartSeries(run.Params, tr)
	if err != nil {
		return err
	}
	fmt.Fprintln(out)
	fmt.Fprintln(out, viz.AngleChart(series, tr.Method, 80, 10))
	fmt.Fprintln(out)
	fmt.Fprintln(out, viz.EnergyChart(series, tr.Method, 80, 10))

	return runErr
}

// chartSeries samples the covered part of tr uniformly for display.
func chartSeries(params physics.Params, tr *dynamo.Trajectory) (*analysis.Series, error) {
	iv := tr.Covered()
	if iv.Span() == 0 {
		return analysis.NativeSeries(params, tr)
	}
	return analysis.DeriveSeries(params, tr, analysis.UniformTimes(iv, chartSamples))
}

func printStats(w io.Writer, s dynamo.Stats) {
	fmt.Fprintf(w, "steps: %d (rejected %d)\n", s.Steps, s.Rejected)
	fmt.Fprintf(w, "evaluations: %d, jacobians: %d, decompositions: %d\n", s.Evaluations, s.JacobianEvals, s.Decompositions)
	if s.Switches > 0 {
		fmt.Fprintf(w, "method switches: %d\n", s.Switches)
	}
}

func printMetrics(w io.Writer, metrics map[string]float64) {
	names := make([]string, 0, len(metrics))
	for name := range metrics {
		names = append(names, name)
	}
	sort.Strings(names)

	fmt.Fprintln(w, "\nmetrics:")
	for _, name := range names {
		fmt.Fprintf(w, "  %s: %.6f\n", name, metrics[name])
	}
}

func listRuns(cmd *cobra.Command, args []string) error {
	st, err := openStore(config.DefaultConfig())
	if err != nil {
		return err
	}
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
	fmt.Fprintln(w, "ID\tMETHOD\tTIME\tINTERVAL\tSTEPS\tSTATUS")
	for _, run := range runs {
		status := "ok"
		if run.Error != "" {
			status = "failed"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%s\n",
			run.ID,
			run.Method,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Interval,
			run.Steps,
			status,
		)
	}
	return w.Flush()
}

// loadRun reads a saved run's metadata and series from the run directory.
func loadRun(runID string) (*storage.RunMetadata, *analysis.Series, error) {
	st, err := openStore(config.DefaultConfig())
	if err != nil {
		return nil, nil, err
	}
	meta, err := st.Load(runID)
	if err != nil {
		return nil, nil, err
	}
	series, err := st.LoadSeries(runID)
	if err != nil {
		return nil, nil, err
	}
	return meta, series, nil
}

// output returns stdout or the file named by --out. The caller closes it.
func output(cmd *cobra.Command) (io.WriteCloser, error) {
	if outPath == "" {
		return nopCloser{cmd.OutOrStdout()}, nil
	}
	return os.Create(outPath)
}

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }

func exportCSV(cmd *cobra.Command, args []string) error {
	_, series, err := loadRun(args[0])
	if err != nil {
		return err
	}
	w, err := output(cmd)
	if err != nil {
		return err
	}
	if err := storage.WriteCSV(w, series); err != nil {
		w.Close()
		return err
	}
	return w.Close()
}

func exportJSON(cmd *cobra.Command, args []string) error {
	meta, series, err := loadRun(args[0])
	if err != nil {
		return err
	}
	w, err := output(cmd)
	if err != nil {
		return err
	}
	if err := storage.ExportJSON(w, meta, series); err != nil {
		w.Close()
		return err
	}
	return w.Close()
}
