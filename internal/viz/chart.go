package viz

import (
	"bufio"
	"fmt"
	"image/color"
	"io"
	"os"
	"path/filepath"

	"github.com/san-kum/kapitza/internal/analysis"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
)

var (
	angleColor  = color.RGBA{R: 0x1f, G: 0x77, B: 0xb4, A: 0xff}
	energyColor = color.RGBA{R: 0xff, G: 0x7f, B: 0x0e, A: 0xb3}
)

// ChartDPI is the raster resolution of PNG output.
const ChartDPI = 150

// Chart plots the angle and the potential energy against time on shared
// axes. The legend names the integration method.
func Chart(s *analysis.Series, method string) (*plot.Plot, error) {
	if s.Len() == 0 {
		return nil, fmt.Errorf("viz: empty series")
	}

	p := plot.New()
	p.Title.Text = "Integrator: " + method
	p.X.Label.Text = "Time, s"
	p.Y.Label.Text = "Angle, rad"
	p.Legend.Top = true

	energy, err := plotter.NewLine(xys(s.Times, s.Potential))
	if err != nil {
		return nil, err
	}
	energy.Color = energyColor
	energy.Width = vg.Points(1)

	angle, err := plotter.NewLine(xys(s.Times, s.Phi))
	if err != nil {
		return nil, err
	}
	angle.Color = angleColor
	angle.Width = vg.Points(1.5)

	p.Add(plotter.NewGrid(), energy, angle)
	p.Legend.Add("Potential Energy", energy)
	p.Legend.Add("Angle", angle)
	return p, nil
}

// PhaseSpace scatters points, usually the bob path or a stroboscopic
// section.
func PhaseSpace(points []analysis.Point, title, xLabel, yLabel string) (*plot.Plot, error) {
	if len(points) == 0 {
		return nil, fmt.Errorf("viz: no points")
	}

	pts := make(plotter.XYs, len(points))
	for i, pt := range points {
		pts[i].X = pt.X
		pts[i].Y = pt.Y
	}

	sc, err := plotter.NewScatter(pts)
	if err != nil {
		return nil, err
	}
	sc.GlyphStyle.Color = angleColor
	sc.GlyphStyle.Radius = vg.Points(1)

	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = xLabel
	p.Y.Label.Text = yLabel
	p.Add(plotter.NewGrid(), sc)
	return p, nil
}

func xys(xs, ys []float64) plotter.XYs {
	pts := make(plotter.XYs, len(xs))
	for i := range xs {
		pts[i].X = xs[i]
		pts[i].Y = ys[i]
	}
	return pts
}

// WritePNG renders p at widthIn x heightIn inches.
func WritePNG(w io.Writer, p *plot.Plot, widthIn, heightIn float64) error {
	c := vgimg.NewWith(
		vgimg.UseWH(vg.Length(widthIn)*vg.Inch, vg.Length(heightIn)*vg.Inch),
		vgimg.UseDPI(ChartDPI),
	)
	p.Draw(draw.New(c))

	png := vgimg.PngCanvas{Canvas: c}
	_, err := png.WriteTo(w)
	return err
}

func SavePNG(p *plot.Plot, widthIn, heightIn float64, filename string) error {
	if err := os.MkdirAll(filepath.Dir(filename), 0o755); err != nil {
		return fmt.Errorf("cannot create directory: %w", err)
	}

	f, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("cannot create png: %w", err)
	}
	defer f.Close()

	bw := bufio.NewWriter(f)
	if err := WritePNG(bw, p, widthIn, heightIn); err != nil {
		return fmt.Errorf("cannot write png: %w", err)
	}
	if err := bw.Flush(); err != nil {
		return err
	}
	return f.Close()
}
