package analysis

import (
	"math"
	"strings"

	"github.com/san-kum/kapitza/internal/dynamo"
	"github.com/san-kum/kapitza/internal/physics"
)

// PhasePortrait pairs the angle with the angular velocity at each sample.
func PhasePortrait(s *Series) []Point {
	out := make([]Point, s.Len())
	for i := range out {
		out[i] = Point{X: s.Phi[i], Y: s.Omega[i]}
	}
	return out
}

// BobPath is the sequence of bob positions, the (x, y) scatter.
func BobPath(s *Series) []Point {
	out := make([]Point, s.Len())
	for i := range out {
		out[i] = Point{X: s.BobX[i], Y: s.BobY[i]}
	}
	return out
}

// Stroboscopic samples the trajectory once per driving period, giving the
// Poincaré section (phi wrapped to [-π, π], phidot). Samples start at the
// interval start.
func Stroboscopic(params physics.Params, tr *dynamo.Trajectory) ([]Point, error) {
	p, err := physics.NewPendulum(params)
	if err != nil {
		return nil, err
	}
	period := p.DrivingPeriod()
	if math.IsInf(period, 1) {
		return nil, &dynamo.ParameterError{Name: "n", Value: params.Frequency, Reason: "pivot is not driven"}
	}

	cov := tr.Covered()
	var out []Point
	for k := 0; ; k++ {
		t := cov.Start + float64(k)*period
		if t > cov.End {
			break
		}
		x, err := tr.At(t)
		if err != nil {
			return nil, err
		}
		out = append(out, Point{X: math.Remainder(x[0], 2*math.Pi), Y: x[1]})
	}
	return out, nil
}

// PhasePortraitToASCII converts phase portrait to ASCII art
func PhasePortraitToASCII(points []Point, width, height int) string {
	if len(points) == 0 || width <= 0 || height <= 0 {
		return ""
	}

	// Find bounds
	minX, maxX := points[0].X, points[0].X
	minY, maxY := points[0].Y, points[0].Y

	for _, p := range points {
		minX = math.Min(minX, p.X)
		maxX = math.Max(maxX, p.X)
		minY = math.Min(minY, p.Y)
		maxY = math.Max(maxY, p.Y)
	}

	// Add padding
	rangeX := maxX - minX
	rangeY := maxY - minY
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 {
		rangeY = 1
	}
	minX -= rangeX * 0.1
	maxX += rangeX * 0.1
	minY -= rangeY * 0.1
	maxY += rangeY * 0.1
	rangeX = maxX - minX
	rangeY = maxY - minY

	canvas := make([][]rune, height)
	for i := range canvas {
		canvas[i] = []rune(strings.Repeat(" ", width))
	}

	for _, p := range points {
		col := int((p.X - minX) / rangeX * float64(width-1))
		row := height - 1 - int((p.Y-minY)/rangeY*float64(height-1))

		if row >= 0 && row < height && col >= 0 && col < width {
			canvas[row][col] = '•'
		}
	}

	// Draw axes if they cross the visible area
	if minX <= 0 && maxX >= 0 {
		col := int((0 - minX) / rangeX * float64(width-1))
		for row := 0; row < height; row++ {
			if col >= 0 && col < width && canvas[row][col] == ' ' {
				canvas[row][col] = '│'
			}
		}
	}
	if minY <= 0 && maxY >= 0 {
		row := height - 1 - int((0-minY)/rangeY*float64(height-1))
		for col := 0; col < width; col++ {
			if row >= 0 && row < height && canvas[row][col] == ' ' {
				canvas[row][col] = '─'
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
