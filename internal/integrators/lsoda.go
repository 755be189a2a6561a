package integrators

import (
	"math"

	"github.com/san-kum/kapitza/internal/dynamo"
	"gonum.org/v1/gonum/mat"
)

// Stiffness detection thresholds. h·ρ above stiffBound means an explicit
// method is step-size limited by stability rather than accuracy.
const (
	stiffBound     = 6.1
	stiffPatience  = 15
	calmResetAfter = 6
)

// lsoda starts on DOP853 and hands over to BDF once the explicit stepper
// keeps reporting stability-limited steps, and back again when BDF runs
// with steps an explicit method could take.
type lsoda struct {
	prob *problem
	opts Options
	tEnd float64

	explicit *explicitRK
	implicit *bdf
	seg      dynamo.Segment

	stiffCount int
	calmCount  int
}

func newLSODA(p *problem, t0 float64, x0 dynamo.State, tEnd float64, opts Options) *lsoda {
	return &lsoda{
		prob:     p,
		opts:     opts,
		tEnd:     tEnd,
		explicit: newExplicitRK(dop853Tableau, p, t0, x0, tEnd, opts),
	}
}

func (l *lsoda) current() stepper {
	if l.implicit != nil {
		return l.implicit
	}
	return l.explicit
}

func (l *lsoda) time() float64           { return l.current().time() }
func (l *lsoda) state() dynamo.State     { return l.current().state() }
func (l *lsoda) segment() dynamo.Segment { return l.seg }
func (l *lsoda) stiff() bool             { return l.implicit != nil }

func (l *lsoda) step() error {
	cur := l.current()
	if err := cur.step(); err != nil {
		return err
	}
	l.seg = cur.segment()
	if cur.time() >= l.tEnd {
		return nil
	}

	if l.implicit == nil {
		if l.explicit.stiffness() > stiffBound {
			l.calmCount = 0
			l.stiffCount++
			if l.stiffCount >= stiffPatience {
				l.toImplicit()
			}
		} else {
			l.calmCount++
			if l.calmCount >= calmResetAfter {
				l.stiffCount = 0
			}
		}
		return nil
	}

	b := l.implicit
	J := l.prob.jacobian(b.t, b.y, nil)
	if b.stepSize()*mat.Norm(J, math.Inf(1)) < stiffBound {
		l.calmCount++
		if l.calmCount >= stiffPatience {
			l.toExplicit()
		}
	} else {
		l.calmCount = 0
	}
	return nil
}

func (l *lsoda) toImplicit() {
	rk := l.explicit
	l.implicit = newBDF(l.prob, rk.t, rk.y, l.tEnd, l.opts)
	l.explicit = nil
	l.stiffCount, l.calmCount = 0, 0
	l.prob.stats.Switches++
}

func (l *lsoda) toExplicit() {
	b := l.implicit
	l.explicit = newExplicitRKFrom(dop853Tableau, l.prob, b.t, b.y, l.tEnd, b.stepSize(), l.opts)
	l.implicit = nil
	l.stiffCount, l.calmCount = 0, 0
	l.prob.stats.Switches++
}
