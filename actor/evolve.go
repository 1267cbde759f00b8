package actor

import (
	"github.com/psryland/rylogic-code-sub010/spatial"
)

// EnergyChange is the kinetic energy delta over one Evolve step.
type EnergyChange struct {
	// Predicted is the work done by the applied force, dt·F·v_mid
	Predicted float64
	// Observed is KE(t+dt) - KE(t)
	Observed float64
}

// Evolve advances the body's pose and momentum by dt under its accumulated
// force, then clears the force. The force is taken to act on the body for the
// whole step, so it is carried with the centre of mass. Static bodies only
// have their force cleared.
func Evolve(rb *RigidBody, dt float64) EnergyChange {
	if rb.IsStatic() || dt == 0 {
		rb.ZeroForces()
		return EnergyChange{}
	}

	ke0 := rb.KineticEnergy()
	rot0 := Rotation(rb.o2w)
	com0 := rot0.Mul3x1(rb.inertiaInv.CoM) // relative to the model origin
	comWS0 := rb.Position().Add(com0)

	// Momentum and force about the centre of mass
	h0 := rb.momentum.Shift(com0)
	force := rb.force.Shift(com0)

	// Momentum averaged over the step, assuming constant force
	hAvg := h0.Add(force.Mul(0.5 * dt))

	// Velocity at the current orientation, then one refinement at the mid-step orientation
	invCoM := rb.inertiaInv.Translate(rb.inertiaInv.CoM)
	vMid := invCoM.Rotate(rot0).MulForce(hAvg)
	rotMid := RotationFromAngularDisplacement(vMid.Ang.Mul(0.5 * dt)).Mul3(rot0)
	vMid = invCoM.Rotate(rotMid).MulForce(hAvg)

	// Rotate about the centre of mass and move the centre of mass
	rot1 := RotationFromAngularDisplacement(vMid.Ang.Mul(dt)).Mul3(rot0)
	comWS1 := comWS0.Add(vMid.Lin.Mul(dt))
	rb.o2w = Orthonormalise(Affine(rot1, comWS1.Sub(rot1.Mul3x1(rb.inertiaInv.CoM))))

	// Full-step impulse, re-expressed about the moved origin
	h1 := h0.Add(force.Mul(dt))
	rb.momentum = h1.Shift(rb.Position().Sub(rb.CentreOfMassWS()))
	rb.ZeroForces()

	return EnergyChange{
		Predicted: dt * spatial.Dot(vMid, force),
		Observed:  rb.KineticEnergy() - ke0,
	}
}
