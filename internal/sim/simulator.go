package sim

import (
	"github.com/san-kum/kapitza/internal/dynamo"
	"github.com/san-kum/kapitza/internal/integrators"
	"github.com/san-kum/kapitza/internal/metrics"
	"github.com/san-kum/kapitza/internal/physics"
)

// Integrate solves the vibrating-pivot pendulum from x0 = (phi, phidot) over
// iv with the named method and the solver's default tolerances.
func Integrate(params physics.Params, x0 dynamo.State, iv dynamo.Interval, method string) (*dynamo.Trajectory, error) {
	return IntegrateWith(Run{
		Params:   params,
		Initial:  x0,
		Interval: iv,
		Method:   method,
		Options:  integrators.DefaultOptions(),
	})
}

// IntegrateWith is Integrate with explicit solver options.
func IntegrateWith(r Run) (*dynamo.Trajectory, error) {
	if err := r.Interval.Validate(); err != nil {
		return nil, err
	}
	m, err := integrators.ParseMethod(r.Method)
	if err != nil {
		return nil, err
	}
	pend, err := physics.NewPendulum(r.Params)
	if err != nil {
		return nil, err
	}
	return integrators.Integrate(pend, r.Initial, r.Interval, m, r.Options)
}

// DefaultMetrics are the observers stored with every saved run.
func DefaultMetrics(model dynamo.Hamiltonian) []Metric {
	return []Metric{
		metrics.NewEnergyDrift(model),
		metrics.NewMeanEnergy(model),
		metrics.NewAmplitude(),
		metrics.NewRotations(),
	}
}

// Summarize feeds every accepted state of tr to the metrics, or to
// DefaultMetrics when none are given, and collects their values by name.
func Summarize(params physics.Params, tr *dynamo.Trajectory, ms ...Metric) (map[string]float64, error) {
	if len(ms) == 0 {
		pend, err := physics.NewPendulum(params)
		if err != nil {
			return nil, err
		}
		ms = DefaultMetrics(pend)
	}
	for _, m := range ms {
		m.Reset()
	}
	for i, t := range tr.Times {
		for _, m := range ms {
			m.Observe(t, tr.States[i])
		}
	}

	out := make(map[string]float64, len(ms))
	for _, m := range ms {
		out[m.Name()] = m.Value()
	}
	return out, nil
}
