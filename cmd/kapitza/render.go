package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/san-kum/kapitza/internal/analysis"
	"github.com/san-kum/kapitza/internal/config"
	"github.com/san-kum/kapitza/internal/export"
	"github.com/san-kum/kapitza/internal/viz"
	"github.com/spf13/cobra"
)

func plotRun(cmd *cobra.Command, args []string) error {
	var (
		series *analysis.Series
		method string
	)
	if len(args) == 1 {
		meta, s, err := loadRun(args[0])
		if err != nil {
			return err
		}
		series, method = s, meta.Method
	} else {
		_, run, tr, err := integrate(cmd)
		if err != nil {
			return err
		}
		s, err := analysis.NativeSeries(run.Params, tr)
		if err != nil {
			return err
		}
		series, method = s, tr.Method
	}

	chart, err := viz.Chart(series, method)
	if err != nil {
		return err
	}
	chartPath := plotOut + "_chart.png"
	if err := viz.SavePNG(chart, 8, 5, chartPath); err != nil {
		return err
	}

	path := analysis.BobPath(series)
	phase, err := viz.PhaseSpace(path, "Integrator: "+method, "x", "y")
	if err != nil {
		return err
	}
	phasePath := plotOut + "_phase.png"
	if err := viz.SavePNG(phase, 6, 6, phasePath); err != nil {
		return err
	}

	written := []string{chartPath, phasePath}
	if withSVG {
		svgPath := plotOut + "_phase.svg"
		if err := os.WriteFile(svgPath, []byte(export.PhaseSpaceSVG(path, 600, 600, "#00ff88")), 0644); err != nil {
			return err
		}
		written = append(written, svgPath)
	}

	for _, p := range written {
		fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", p)
	}
	return nil
}

type animationRun struct {
	cfg    *config.Config
	anim   *analysis.Animation
	method string
	length float64
}

func animation(cmd *cobra.Command) (*animationRun, error) {
	cfg, run, tr, err := integrate(cmd)
	if err != nil {
		return nil, err
	}
	anim, err := analysis.NewAnimation(run.Params, tr, cfg.FrameCount())
	if err != nil {
		return nil, err
	}
	slog.Debug("animation ready", "frames", anim.Len(), "frame_interval", anim.FrameInterval())
	return &animationRun{cfg: cfg, anim: anim, method: tr.Method, length: run.Params.Length}, nil
}

func animateRun(cmd *cobra.Command, args []string) error {
	ar, err := animation(cmd)
	if err != nil {
		return err
	}

	hist := ar.cfg.Animation.History
	if snapshot != "" {
		return writeSnapshot(cmd, ar.anim, ar.length, hist)
	}

	player := viz.NewPlayer(ar.anim, ar.method, ar.length, hist, ar.cfg.Animation.FPS).WithTheme(theme)
	return viz.Play(player)
}

// writeSnapshot draws frames up to --frame so the trail matches playback,
// then writes the scene as SVG.
func writeSnapshot(cmd *cobra.Command, anim *analysis.Animation, l float64, hist int) error {
	if snapshotFrame < 0 || snapshotFrame >= anim.Len() {
		return fmt.Errorf("frame %d out of range [0, %d)", snapshotFrame, anim.Len())
	}
	scene := viz.NewScene(60, 30, l, hist)
	for i := max(0, snapshotFrame-hist); i <= snapshotFrame; i++ {
		f, err := anim.Frame(i)
		if err != nil {
			return err
		}
		scene.Render(f)
	}
	if err := os.WriteFile(snapshot, []byte(export.CanvasToSVG(scene.Canvas, 4, "#00ff88")), 0644); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", snapshot)
	return nil
}

func gifRun(cmd *cobra.Command, args []string) error {
	ar, err := animation(cmd)
	if err != nil {
		return err
	}
	anim := ar.anim

	opts := export.DefaultGIFOptions(ar.length, ar.cfg.Animation.History)
	opts.Every = gifEvery

	f, err := os.Create(gifOut)
	if err != nil {
		return err
	}
	if err := export.WriteGIF(f, anim, opts); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (%d frames)\n", gifOut, (anim.Len()+max(opts.Every, 1)-1)/max(opts.Every, 1))
	return nil
}
