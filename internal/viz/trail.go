package viz

import "github.com/san-kum/kapitza/internal/analysis"

// Trail keeps the most recent bob positions in a fixed-size ring.
type Trail struct {
	buf   []analysis.Point
	start int
	n     int
}

// NewTrail returns a trail holding at most capacity points. A zero
// capacity trail stays empty.
func NewTrail(capacity int) *Trail {
	if capacity < 0 {
		capacity = 0
	}
	return &Trail{buf: make([]analysis.Point, capacity)}
}

func (t *Trail) Push(p analysis.Point) {
	if len(t.buf) == 0 {
		return
	}
	if t.n < len(t.buf) {
		t.buf[(t.start+t.n)%len(t.buf)] = p
		t.n++
		return
	}
	t.buf[t.start] = p
	t.start = (t.start + 1) % len(t.buf)
}

func (t *Trail) Reset() {
	t.start = 0
	t.n = 0
}

func (t *Trail) Len() int { return t.n }

func (t *Trail) Cap() int { return len(t.buf) }

// Points returns the trail oldest first.
func (t *Trail) Points() []analysis.Point {
	out := make([]analysis.Point, t.n)
	for i := range out {
		out[i] = t.buf[(t.start+i)%len(t.buf)]
	}
	return out
}
