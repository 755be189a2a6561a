package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"text/tabwriter"

	"github.com/san-kum/kapitza/internal/config"
	"github.com/san-kum/kapitza/internal/integrators"
	"github.com/spf13/cobra"
)

var (
	dataDir  string
	verbose  bool
	fallback bool
)

// main registers the commands and executes the root command, exiting with
// status 1 on error.
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:          "kapitza",
		Short:        "trajectories of a pendulum on a vibrating pivot",
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			setupLogging(verbose)
		},
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", "", "run directory (default: output.dir from config)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging on stderr")
	rootCmd.PersistentFlags().BoolVar(&fallback, "fallback", false, "use the default method when the requested one is unknown")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "integrate, save the run and print a summary",
		Args:  cobra.NoArgs,
		RunE:  runSimulation,
	}
	addSimFlags(runCmd)

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "write angle/energy and phase-space charts as PNG",
		Args:  cobra.MaximumNArgs(1),
		RunE:  plotRun,
	}
	addSimFlags(plotCmd)
	plotCmd.Flags().StringVarP(&plotOut, "out", "o", "kapitza", "output file prefix")
	plotCmd.Flags().BoolVar(&withSVG, "svg", false, "also write the bob path as SVG")

	animateCmd := &cobra.Command{
		Use:   "animate",
		Short: "play the motion in the terminal",
		Args:  cobra.NoArgs,
		RunE:  animateRun,
	}
	addSimFlags(animateCmd)
	animateCmd.Flags().StringVar(&theme, "theme", "classic", "color theme ("+strings.Join(themeNames(), ", ")+")")
	animateCmd.Flags().StringVar(&snapshot, "snapshot", "", "write one frame as SVG instead of playing")
	animateCmd.Flags().IntVar(&snapshotFrame, "frame", 0, "frame index for --snapshot")

	gifCmd := &cobra.Command{
		Use:   "gif",
		Short: "render the animation to a GIF file",
		Args:  cobra.NoArgs,
		RunE:  gifRun,
	}
	addSimFlags(gifCmd)
	gifCmd.Flags().StringVarP(&gifOut, "out", "o", "kapitza.gif", "output file")
	gifCmd.Flags().IntVar(&gifEvery, "every", 5, "keep one frame out of N")

	compareCmd := &cobra.Command{
		Use:   "compare [method...]",
		Short: "integrate with several methods concurrently",
		RunE:  compareMethods,
	}
	addSimFlags(compareCmd)
	compareCmd.Flags().StringVar(&plotDir, "plot", "", "write one chart per method into this directory")

	analyzeCmd := &cobra.Command{
		Use:   "analyze [run_id]",
		Short: "spectrum, stroboscopic section and stability of a run",
		Args:  cobra.MaximumNArgs(1),
		RunE:  analyzeRun,
	}
	addSimFlags(analyzeCmd)
	analyzeCmd.Flags().BoolVar(&withLyapunov, "lyapunov", false, "estimate the largest Lyapunov exponent")

	sweepCmd := &cobra.Command{
		Use:   "sweep [param]",
		Short: "bifurcation diagram over one parameter",
		Args:  cobra.ExactArgs(1),
		RunE:  sweepParam,
	}
	addSimFlags(sweepCmd)
	sweepCmd.Flags().Float64Var(&sweepMin, "min", 0, "lowest parameter value")
	sweepCmd.Flags().Float64Var(&sweepMax, "max", 1, "highest parameter value")
	sweepCmd.Flags().IntVar(&sweepSteps, "steps", 40, "number of parameter values")
	sweepCmd.Flags().Float64Var(&sweepTransient, "transient", 20, "time discarded before recording")
	sweepCmd.Flags().Float64Var(&sweepRecord, "record", 10, "time recorded per value")

	searchCmd := &cobra.Command{
		Use:   "search",
		Short: "grid search over parameters for the best scoring run",
		Args:  cobra.NoArgs,
		RunE:  searchParams,
	}
	addSimFlags(searchCmd)
	searchCmd.Flags().StringArrayVar(&searchAxes, "grid", nil, "searched axis as name=lo:hi:n (repeatable)")
	searchCmd.Flags().StringVar(&searchMetric, "metric", "amplitude", "metric to minimize")
	searchCmd.Flags().BoolVar(&searchMaximize, "maximize", false, "maximize the metric instead")

	scenarioCmd := &cobra.Command{
		Use:   "scenario [file]",
		Short: "run every step of a YAML scenario and save the runs",
		Args:  cobra.ExactArgs(1),
		RunE:  runScenario,
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list saved runs",
		Args:  cobra.NoArgs,
		RunE:  listRuns,
	}

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export a saved trajectory as CSV",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSV,
	}
	exportCSVCmd.Flags().StringVarP(&outPath, "out", "o", "", "output file (default: stdout)")

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export a saved run as JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}
	exportJSONCmd.Flags().StringVarP(&outPath, "out", "o", "", "output file (default: stdout)")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list built-in configurations",
		Args:  cobra.NoArgs,
		RunE:  listPresets,
	}

	methodsCmd := &cobra.Command{
		Use:   "methods",
		Short: "list integration methods",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "METHOD\tIMPLICIT\tDESCRIPTION")
			for _, m := range integrators.Methods() {
				fmt.Fprintf(w, "%s\t%v\t%s\n", m, m.Implicit(), m.Description())
			}
			return w.Flush()
		},
	}

	rootCmd.AddCommand(runCmd, plotCmd, animateCmd, gifCmd, compareCmd, analyzeCmd, sweepCmd,
		searchCmd, scenarioCmd, listCmd, exportCSVCmd, exportJSONCmd, presetsCmd, methodsCmd)
	return rootCmd
}

func setupLogging(debug bool) {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}

func listPresets(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tMETHOD\tA\tN\tL\tGAMMA\tPHI0\tOMEGA0\tINTERVAL")
	for _, name := range config.ListPresets() {
		cfg := config.GetPreset(name)
		p := cfg.Params
		fmt.Fprintf(w, "%s\t%s\t%g\t%g\t%g\t%g\t%.4f\t%.4f\t%s\n",
			name, cfg.Method, p.Amplitude, p.Frequency, p.Length, p.Friction,
			cfg.Initial.Phi, cfg.Initial.Omega, cfg.Interval)
	}
	return w.Flush()
}
