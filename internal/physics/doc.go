// Package physics provides the equation-of-motion model of a pendulum whose
// pivot oscillates vertically (Kapitza's pendulum).
//
// [Pendulum] implements [dynamo.System], [dynamo.Jacobian],
// [dynamo.Hamiltonian] and [dynamo.Configurable]:
//
//	phi''(t) = -((a*n²/l)*cos(n*t) + g/l)*sin(phi) - gamma*phi'
//
// With a = 0 and gamma = 0 it reduces to the simple pendulum and
// [Pendulum.Energy] is conserved. With a != 0 the potential term carries the
// pivot coupling and is a diagnostic quantity, not an invariant.
//
// # Example
//
//	p, err := physics.NewPendulum(physics.DefaultParams())
//	if err != nil {
//	    return err
//	}
//	dx := p.Derive(0, dynamo.State{math.Pi / 2, 0})
package physics
