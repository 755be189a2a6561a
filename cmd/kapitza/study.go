package main

import (
	"fmt"
	"io"
	"log/slog"
	"math"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/kapitza/internal/analysis"
	"github.com/san-kum/kapitza/internal/automation"
	"github.com/san-kum/kapitza/internal/config"
	"github.com/san-kum/kapitza/internal/dynamo"
	"github.com/san-kum/kapitza/internal/integrators"
	"github.com/san-kum/kapitza/internal/optim"
	"github.com/san-kum/kapitza/internal/physics"
	"github.com/san-kum/kapitza/internal/sim"
	"github.com/san-kum/kapitza/internal/viz"
	"github.com/spf13/cobra"
)

const spectrumSamples = 4096

func compareMethods(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	base, err := resolveRun(cfg)
	if err != nil {
		return err
	}

	names := args
	if len(names) == 0 {
		for _, m := range integrators.Methods() {
			names = append(names, m.String())
		}
	}

	runs := make([]sim.Run, len(names))
	for i, name := range names {
		runs[i] = base
		runs[i].Method = name
	}
	outcomes := sim.Compare(runs)

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "comparing %d methods over %s\n\n", len(runs), base.Interval)

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "METHOD\tSTEPS\tREJECTED\tEVALS\tJACOBIANS\tLU\tSWITCHES\tFINAL PHI\tTIME\tERROR")
	for _, o := range outcomes {
		if o.Err != nil {
			fmt.Fprintf(w, "%s\t-\t-\t-\t-\t-\t-\t-\t%v\t%v\n", o.Run.Method, o.Elapsed, o.Err)
			continue
		}
		s := o.Trajectory.Stats
		fmt.Fprintf(w, "%s\t%d\t%d\t%d\t%d\t%d\t%d\t%.6f\t%v\t\n",
			o.Trajectory.Method, s.Steps, s.Rejected, s.Evaluations, s.JacobianEvals,
			s.Decompositions, s.Switches, o.Trajectory.Final()[0], o.Elapsed)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if plotDir != "" {
		for _, o := range outcomes {
			if o.Err != nil {
				continue
			}
			series, err := analysis.NativeSeries(o.Run.Params, o.Trajectory)
			if err != nil {
				return err
			}
			chart, err := viz.Chart(series, o.Trajectory.Method)
			if err != nil {
				return err
			}
			path := filepath.Join(plotDir, strings.ToLower(o.Trajectory.Method)+".png")
			if err := viz.SavePNG(chart, 8, 5, path); err != nil {
				return err
			}
			fmt.Fprintf(out, "wrote %s\n", path)
		}
	}

	if failed := sim.Failed(outcomes); len(failed) > 0 {
		return fmt.Errorf("%d of %d methods failed", len(failed), len(outcomes))
	}
	return nil
}

func analyzeRun(cmd *cobra.Command, args []string) error {
	var (
		run sim.Run
		tr  *dynamo.Trajectory
	)
	if len(args) == 1 {
		meta, _, err := loadRun(args[0])
		if err != nil {
			return err
		}
		run = meta.Run()
		if tr, err = sim.IntegrateWith(run); err != nil {
			return err
		}
	} else {
		var err error
		if _, run, tr, err = integrate(cmd); err != nil {
			return err
		}
	}

	pend, err := physics.NewPendulum(run.Params)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	iv := tr.Covered()
	fmt.Fprintf(out, "analysis: %s over %s\n", tr.Method, iv)
	fmt.Fprintf(out, "stability margin a²n²/(2gl): %.3f\n\n", pend.StabilityMargin())

	series, err := analysis.DeriveSeries(run.Params, tr, analysis.UniformTimes(iv, spectrumSamples))
	if err != nil {
		return err
	}
	if err := printSpectrum(out, series, iv.Span()/spectrumSamples, pend); err != nil {
		return err
	}

	tenth := iv.Span() / 10
	early, err := analysis.Envelope(series, iv.Start, iv.Start+tenth)
	if err != nil {
		return err
	}
	late, err := analysis.Envelope(series, iv.End-tenth, iv.End)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "envelope: %.4f rad (first 10%%) -> %.4f rad (last 10%%)\n", early, late)
	energy := analysis.TotalEnergy(series)
	fmt.Fprintf(out, "mean energy: %.4f -> %.4f\n\n",
		analysis.WindowMean(series.Times, energy, iv.Start, iv.Start+tenth),
		analysis.WindowMean(series.Times, energy, iv.End-tenth, iv.End))

	if run.Params.Frequency != 0 {
		section, err := analysis.Stroboscopic(run.Params, tr)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "stroboscopic section (%d samples, phi vs phidot):\n", len(section))
		fmt.Fprintln(out, analysis.PhasePortraitToASCII(section, 60, 16))
	}

	if withLyapunov {
		m, err := integrators.ParseMethod(run.Method)
		if err != nil {
			return err
		}
		window := math.Min(1, iv.Span()/10)
		lambda, err := analysis.LyapunovExponent(run.Params, run.Initial, iv, m, run.Options, 1e-8, window)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "largest lyapunov exponent: %.4f 1/s\n", lambda)
	}
	return nil
}

func printSpectrum(w io.Writer, s *analysis.Series, dt float64, pend *physics.Pendulum) error {
	sp := analysis.PowerSpectrum(s.Phi, dt)
	if len(sp.Power) < 2 {
		return fmt.Errorf("not enough samples for a spectrum")
	}

	shown := sp.Power[:max(2, len(sp.Power)/4)]
	fmt.Fprintln(w, asciigraph.Plot(viz.Downsample(shown, 200),
		asciigraph.Height(12),
		asciigraph.Width(80),
		asciigraph.Caption("power spectrum (phi)"),
	))
	fmt.Fprintln(w)

	freq := sp.DominantFrequency()
	fmt.Fprintf(w, "dominant frequency: %.4f hz\n", freq)
	if freq > 0 {
		fmt.Fprintf(w, "period: %.4f s\n", 1/freq)
	}
	if p := pend.DrivingPeriod(); !math.IsInf(p, 1) {
		fmt.Fprintf(w, "driving frequency: %.4f hz\n", 1/p)
	}
	fmt.Fprintln(w)
	return nil
}

func sweepParam(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	run, err := resolveRun(cfg)
	if err != nil {
		return err
	}
	m, err := integrators.ParseMethod(run.Method)
	if err != nil {
		return err
	}

	sw := analysis.Sweep{
		Param:     args[0],
		Min:       sweepMin,
		Max:       sweepMax,
		Steps:     sweepSteps,
		Transient: sweepTransient,
		Record:    sweepRecord,
	}
	data, err := analysis.BifurcationDiagram(run.Params, sw, run.Initial, m, run.Options)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "bifurcation diagram: %s in [%g, %g], %d values\n\n", sw.Param, sw.Min, sw.Max, len(data))
	fmt.Fprintln(out, analysis.BifurcationToASCII(data, 70, 20))
	return nil
}

func searchParams(cmd *cobra.Command, args []string) error {
	if len(searchAxes) == 0 {
		return fmt.Errorf("at least one --grid axis is required")
	}
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	run, err := resolveRun(cfg)
	if err != nil {
		return err
	}

	axes := make([]optim.Axis, len(searchAxes))
	for i, def := range searchAxes {
		if axes[i], err = optim.ParseAxis(def); err != nil {
			return err
		}
	}
	g := optim.NewGridSearch(axes...)
	slog.Info("searching", "points", g.Size(), "metric", searchMetric, "maximize", searchMaximize)

	res, err := g.Search(cmd.Context(), run.Params, optim.MetricObjective(run, searchMetric, searchMaximize))
	if err != nil {
		return err
	}

	score := res.Score
	if searchMaximize {
		score = -score
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "evaluated %d of %d points (%d failed)\n", res.Evaluated, g.Size(), res.Failed)
	for _, a := range axes {
		fmt.Fprintf(out, "  %s = %g\n", a.Name, res.Values[a.Name])
	}
	fmt.Fprintf(out, "%s: %.6f\n", searchMetric, score)
	return nil
}

func runScenario(cmd *cobra.Command, args []string) error {
	sc, err := automation.LoadScenario(args[0])
	if err != nil {
		return err
	}
	st, err := openStore(config.DefaultConfig())
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if sc.Name != "" {
		fmt.Fprintf(out, "scenario %s: %d steps\n", sc.Name, len(sc.Steps))
	}
	results, err := automation.RunScenario(cmd.Context(), sc, st, fallback)

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "STEP\tMETHOD\tRUN\tSTEPS\tMEAN ENERGY\tSTATUS")
	failed := 0
	for _, r := range results {
		status := "ok"
		if r.Err != nil {
			status = r.Err.Error()
			failed++
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%.4f\t%s\n", r.Name, r.Method, r.RunID, r.Stats.Steps, r.Metrics["mean_energy"], status)
	}
	if ferr := w.Flush(); ferr != nil && err == nil {
		err = ferr
	}
	if err != nil {
		return err
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d steps failed", failed, len(results))
	}
	return nil
}
