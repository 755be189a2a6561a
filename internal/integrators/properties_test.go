package integrators

import (
	"errors"
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/kapitza/internal/dynamo"
)

var _ = Describe("Integrate", func() {
	var (
		osc *harmonicOscillator
		x0  dynamo.State
		iv  dynamo.Interval
	)

	BeforeEach(func() {
		osc = &harmonicOscillator{}
		x0 = dynamo.State{1, 0}
		iv = dynamo.Interval{Start: 0, End: 10}
	})

	for _, m := range Methods() {
		method := m

		Context("with "+method.String(), func() {
			It("starts at the initial condition and ends on the interval end", func() {
				tr, err := Integrate(osc, x0, iv, method, DefaultOptions())
				Expect(err).NotTo(HaveOccurred())

				Expect(tr.Times[0]).To(Equal(iv.Start))
				Expect(tr.States[0]).To(Equal(x0))
				Expect(tr.Times[tr.Len()-1]).To(Equal(iv.End))
				Expect(tr.Method).To(Equal(method.String()))
				Expect(tr.Stats.Steps).To(Equal(tr.Len() - 1))
				for i := 1; i < tr.Len(); i++ {
					Expect(tr.Times[i]).To(BeNumerically(">", tr.Times[i-1]))
				}
			})

			It("tracks the exact solution at tight tolerances", func() {
				tr, err := Integrate(osc, x0, iv, method, tightOptions())
				Expect(err).NotTo(HaveOccurred())

				final := tr.Final()
				Expect(final[0]).To(BeNumerically("~", math.Cos(10), 1e-5))
				Expect(final[1]).To(BeNumerically("~", -math.Sin(10), 1e-5))
			})

			It("gets more accurate as the tolerance tightens", func() {
				loose, err := Integrate(osc, x0, iv, method, Options{RelTol: 1e-4, AbsTol: 1e-7})
				Expect(err).NotTo(HaveOccurred())
				tight, err := Integrate(osc, x0, iv, method, tightOptions())
				Expect(err).NotTo(HaveOccurred())

				errOf := func(tr *dynamo.Trajectory) float64 {
					f := tr.Final()
					return math.Hypot(f[0]-math.Cos(10), f[1]+math.Sin(10))
				}
				Expect(errOf(tight)).To(BeNumerically("<", errOf(loose)))
				Expect(tight.Len()).To(BeNumerically(">", loose.Len()))
			})

			It("reproduces the step grid through the dense output", func() {
				tr, err := Integrate(osc, x0, iv, method, tightOptions())
				Expect(err).NotTo(HaveOccurred())

				for i, t := range tr.Times {
					x, err := tr.At(t)
					Expect(err).NotTo(HaveOccurred())
					Expect(x[0]).To(BeNumerically("~", tr.States[i][0], 1e-9))
					Expect(x[1]).To(BeNumerically("~", tr.States[i][1], 1e-9))
				}
			})

			It("interpolates between steps", func() {
				tr, err := Integrate(osc, x0, iv, method, tightOptions())
				Expect(err).NotTo(HaveOccurred())

				for i := 1; i < tr.Len(); i++ {
					mid := 0.5 * (tr.Times[i-1] + tr.Times[i])
					x, err := tr.At(mid)
					Expect(err).NotTo(HaveOccurred())
					Expect(x[0]).To(BeNumerically("~", math.Cos(mid), 1e-4))
				}
			})

			It("rejects empty and reversed intervals", func() {
				for _, bad := range []dynamo.Interval{{Start: 1, End: 1}, {Start: 2, End: 1}} {
					tr, err := Integrate(osc, x0, bad, method, DefaultOptions())
					Expect(tr).To(BeNil())
					Expect(errors.Is(err, dynamo.ErrInvalidInterval)).To(BeTrue())
				}
			})

			It("is deterministic", func() {
				a, err := Integrate(osc, x0, iv, method, DefaultOptions())
				Expect(err).NotTo(HaveOccurred())
				b, err := Integrate(osc, x0, iv, method, DefaultOptions())
				Expect(err).NotTo(HaveOccurred())
				Expect(a.Times).To(Equal(b.Times))
				Expect(a.States).To(Equal(b.States))
			})

			It("reports a divergence with the partial trajectory", func() {
				tr, err := Integrate(&blowUp{}, dynamo.State{1}, dynamo.Interval{Start: 0, End: 2}, method, DefaultOptions())
				Expect(tr).To(BeNil())
				Expect(errors.Is(err, dynamo.ErrIntegrationDivergence)).To(BeTrue())

				var div *dynamo.DivergenceError
				Expect(errors.As(err, &div)).To(BeTrue())
				Expect(div.Method).To(Equal(method.String()))
				Expect(div.Partial).NotTo(BeNil())
				Expect(div.Partial.Times[0]).To(Equal(0.0))
				Expect(div.Partial.Covered().End).To(BeNumerically("<", 1.01))
			})
		})
	}

	It("rejects unknown methods", func() {
		_, err := Integrate(osc, x0, iv, Method("Euler"), DefaultOptions())
		Expect(errors.Is(err, dynamo.ErrUnsupportedMethod)).To(BeTrue())

		var me *dynamo.MethodError
		Expect(errors.As(err, &me)).To(BeTrue())
		Expect(me.Method).To(Equal("Euler"))
	})

	It("rejects a state of the wrong size", func() {
		_, err := Integrate(osc, dynamo.State{1}, iv, RK45, DefaultOptions())
		Expect(errors.Is(err, dynamo.ErrDimensionMismatch)).To(BeTrue())
	})

	It("rejects a non-finite initial state", func() {
		_, err := Integrate(osc, dynamo.State{math.NaN(), 0}, iv, RK45, DefaultOptions())
		Expect(errors.Is(err, dynamo.ErrInvalidState)).To(BeTrue())
	})

	It("stops when the step budget runs out", func() {
		opts := DefaultOptions()
		opts.MaxSteps = 5
		_, err := Integrate(osc, x0, iv, DOP853, opts)
		Expect(errors.Is(err, dynamo.ErrTooManySteps)).To(BeTrue())

		var div *dynamo.DivergenceError
		Expect(errors.As(err, &div)).To(BeTrue())
		Expect(div.Partial.Len()).To(Equal(6))
	})

	It("honours the maximum step", func() {
		opts := DefaultOptions()
		opts.MaxStep = 0.05
		tr, err := Integrate(osc, x0, iv, RK45, opts)
		Expect(err).NotTo(HaveOccurred())
		for i := 1; i < tr.Len(); i++ {
			Expect(tr.Times[i] - tr.Times[i-1]).To(BeNumerically("<=", 0.05+1e-12))
		}
	})
})

var _ = Describe("LSODA", func() {
	It("switches to BDF on a stiff problem and takes far fewer steps", func() {
		sys := constantRate(500)
		iv := dynamo.Interval{Start: 0, End: 10}

		auto, err := Integrate(sys, dynamo.State{0}, iv, LSODA, DefaultOptions())
		Expect(err).NotTo(HaveOccurred())
		explicit, err := Integrate(sys, dynamo.State{0}, iv, DOP853, DefaultOptions())
		Expect(err).NotTo(HaveOccurred())

		Expect(auto.Stats.Switches).To(BeNumerically(">=", 1))
		Expect(auto.Len()).To(BeNumerically("<", explicit.Len()/2))

		exact := (500*500*math.Cos(10) + 500*math.Sin(10)) / (500*500 + 1)
		Expect(auto.Final()[0]).To(BeNumerically("~", exact, 1e-3))
	})

	It("switches back once the stiffness goes away", func() {
		sys := &relaxation{lambda: func(t float64) float64 {
			if t < 5 {
				return 500
			}
			return 1
		}}
		tr, err := Integrate(sys, dynamo.State{0}, dynamo.Interval{Start: 0, End: 20}, LSODA, DefaultOptions())
		Expect(err).NotTo(HaveOccurred())
		Expect(tr.Stats.Switches).To(Equal(2))
	})

	It("stays explicit on a non-stiff problem", func() {
		tr, err := Integrate(&harmonicOscillator{}, dynamo.State{1, 0}, dynamo.Interval{Start: 0, End: 10}, LSODA, DefaultOptions())
		Expect(err).NotTo(HaveOccurred())
		Expect(tr.Stats.Switches).To(BeZero())
		Expect(tr.Stats.JacobianEvals).To(BeZero())
	})
})
