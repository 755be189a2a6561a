package analysis

import (
	"math"
	"strings"

	"github.com/san-kum/kapitza/internal/dynamo"
	"github.com/san-kum/kapitza/internal/integrators"
	"github.com/san-kum/kapitza/internal/physics"
)

// BifurcationPoint represents the stroboscopic angles settled into for one
// parameter value
type BifurcationPoint struct {
	Param  float64
	Values []float64
}

// Sweep configures a bifurcation run.
type Sweep struct {
	Param     string
	Min, Max  float64
	Steps     int
	Transient float64 // time discarded before recording
	Record    float64 // time sampled once per driving period
}

// BifurcationDiagram sweeps one pendulum parameter and records the distinct
// stroboscopic angles after the transient. A single fixed point means the
// motion locks to the drive; a cloud means it does not.
func BifurcationDiagram(
	base physics.Params,
	sw Sweep,
	x0 dynamo.State,
	method integrators.Method,
	opts integrators.Options,
) ([]BifurcationPoint, error) {
	pend, err := physics.NewPendulum(base)
	if err != nil {
		return nil, err
	}
	steps := sw.Steps
	if steps <= 1 {
		steps = 2 // Prevent division by zero
	}
	delta := (sw.Max - sw.Min) / float64(steps-1)

	results := make([]BifurcationPoint, 0, steps)
	for i := 0; i < steps; i++ {
		value := sw.Min + float64(i)*delta
		if err := pend.SetParam(sw.Param, value); err != nil {
			return nil, err
		}

		iv := dynamo.Interval{Start: 0, End: sw.Transient + sw.Record}
		tr, err := integrators.Integrate(pend, x0, iv, method, opts)
		if err != nil {
			return nil, err
		}

		section, err := Stroboscopic(pend.Params(), tr)
		if err != nil {
			return nil, err
		}
		period := pend.DrivingPeriod()

		values := make([]float64, 0, len(section))
		seen := make(map[int]bool)
		for k, p := range section {
			if float64(k)*period < sw.Transient {
				continue
			}
			// Quantize to find distinct values
			key := int(math.Round(p.X * 1000))
			if !seen[key] {
				seen[key] = true
				values = append(values, p.X)
			}
		}

		results = append(results, BifurcationPoint{Param: value, Values: values})
	}

	return results, nil
}

// BifurcationToASCII converts bifurcation data to ASCII art
func BifurcationToASCII(data []BifurcationPoint, width, height int) string {
	if len(data) == 0 || width <= 0 || height <= 0 {
		return ""
	}

	var minVal, maxVal float64
	found := false
	for _, p := range data {
		for _, v := range p.Values {
			if !found {
				minVal, maxVal = v, v
				found = true
				continue
			}
			minVal = math.Min(minVal, v)
			maxVal = math.Max(maxVal, v)
		}
	}
	if !found {
		return ""
	}
	if maxVal == minVal {
		maxVal = minVal + 1
	}

	canvas := make([][]rune, height)
	for i := range canvas {
		canvas[i] = []rune(strings.Repeat(" ", width))
	}

	for i, p := range data {
		col := i * width / len(data)
		if col >= width {
			col = width - 1
		}
		for _, v := range p.Values {
			row := height - 1 - int((v-minVal)/(maxVal-minVal)*float64(height-1))
			if row >= 0 && row < height {
				canvas[row][col] = '•'
			}
		}
	}

	var sb strings.Builder
	for _, row := range canvas {
		sb.WriteString(string(row))
		sb.WriteRune('\n')
	}
	return sb.String()
}
