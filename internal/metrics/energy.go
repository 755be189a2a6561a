package metrics

import (
	"math"

	"github.com/san-kum/kapitza/internal/dynamo"
)

// MeanEnergy averages the model's total energy over the observed samples.
type MeanEnergy struct {
	name    string
	model   dynamo.Hamiltonian
	samples int
	total   float64
}

func NewMeanEnergy(model dynamo.Hamiltonian) *MeanEnergy {
	return &MeanEnergy{
		name:  "mean_energy",
		model: model,
	}
}

func (e *MeanEnergy) Name() string { return e.name }

func (e *MeanEnergy) Observe(t float64, x dynamo.State) {
	e.total += e.model.Energy(t, x)
	e.samples++
}

func (e *MeanEnergy) Value() float64 {
	if e.samples == 0 {
		return 0
	}
	return e.total / float64(e.samples)
}

func (e *MeanEnergy) Reset() {
	e.total = 0
	e.samples = 0
}

// EnergyDrift is the largest relative departure of the total energy from
// its first observed value. Only meaningful for a fixed, frictionless pivot.
type EnergyDrift struct {
	name          string
	model         dynamo.Hamiltonian
	initialEnergy float64
	maxDrift      float64
	samples       int
}

func NewEnergyDrift(model dynamo.Hamiltonian) *EnergyDrift {
	return &EnergyDrift{
		name:  "energy_drift",
		model: model,
	}
}

func (e *EnergyDrift) Name() string { return e.name }

func (e *EnergyDrift) Observe(t float64, x dynamo.State) {
	energy := e.model.Energy(t, x)

	if e.samples == 0 {
		e.initialEnergy = energy
	}
	e.samples++

	if e.initialEnergy != 0 {
		drift := math.Abs(energy-e.initialEnergy) / math.Abs(e.initialEnergy)
		e.maxDrift = math.Max(e.maxDrift, drift)
	}
}

func (e *EnergyDrift) Value() float64 {
	return e.maxDrift
}

func (e *EnergyDrift) Reset() {
	e.initialEnergy = 0
	e.maxDrift = 0
	e.samples = 0
}
