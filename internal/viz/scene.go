package viz

import (
	"github.com/san-kum/kapitza/internal/analysis"
)

// Scene draws animation frames of the pendulum onto a braille canvas and
// owns the bob trail.
type Scene struct {
	Canvas *Canvas
	Trail  *Trail
	view   Viewport
}

// NewScene sizes the view to ±2l around the pivot's rest position.
func NewScene(width, height int, length float64, history int) *Scene {
	c := NewCanvas(width, height)
	return &Scene{
		Canvas: c,
		Trail:  NewTrail(history),
		view:   Viewport{Extent: 2 * length, Width: c.PixelWidth(), Height: c.PixelHeight()},
	}
}

func (s *Scene) Viewport() Viewport { return s.view }

// Render redraws the canvas for f. Frame 0 starts a fresh trail so a
// restarted animation does not keep the previous pass.
func (s *Scene) Render(f analysis.Frame) {
	if f.Index == 0 {
		s.Trail.Reset()
	}
	s.Trail.Push(f.Bob)

	s.Canvas.Clear()
	for _, p := range s.Trail.Points() {
		x, y := s.view.Project(p.X, p.Y)
		s.Canvas.Set(x, y)
	}

	px, py := s.view.Project(f.Pivot.X, f.Pivot.Y)
	bx, by := s.view.Project(f.Bob.X, f.Bob.Y)
	s.Canvas.DrawLine(px-2, py, px+2, py)
	s.Canvas.DrawLine(px, py, bx, by)
	s.Canvas.FillDisc(bx, by, 2)
}
