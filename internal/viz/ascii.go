package viz

import (
	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/kapitza/internal/analysis"
)

// maxPlotPoints bounds what asciigraph has to interpolate over.
const maxPlotPoints = 2000

func AngleChart(s *analysis.Series, method string, width, height int) string {
	return lineChart(s.Phi, "Angle, rad ("+method+")", width, height)
}

func EnergyChart(s *analysis.Series, method string, width, height int) string {
	return lineChart(s.Potential, "Potential Energy ("+method+")", width, height)
}

func lineChart(values []float64, caption string, width, height int) string {
	if len(values) == 0 {
		return ""
	}
	return asciigraph.Plot(Downsample(values, maxPlotPoints),
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.Caption(caption),
	)
}

// Downsample keeps every k-th value so that at most n remain, always
// including the last one.
func Downsample(values []float64, n int) []float64 {
	if n <= 0 || len(values) <= n {
		return values
	}
	step := (len(values) + n - 1) / n
	out := make([]float64, 0, n+1)
	for i := 0; i < len(values); i += step {
		out = append(out, values[i])
	}
	if last := values[len(values)-1]; (len(values)-1)%step != 0 {
		out = append(out, last)
	}
	return out
}
