// Package constraint turns contacts between rigid bodies into impulses.
package constraint

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/pkg/errors"

	"github.com/psryland/rylogic-code-sub010/actor"
	"github.com/psryland/rylogic-code-sub010/material"
	"github.com/psryland/rylogic-code-sub010/spatial"
)

// ErrNotConserved is returned by Check when an impulse created momentum or energy.
var ErrNotConserved = errors.New("impulse is not conservative")

// Input is a single world-space contact between two bodies.
type Input struct {
	BodyA, BodyB *actor.RigidBody
	// Axis is the unit contact normal, pointing from A to B
	Axis  mgl64.Vec3
	Point mgl64.Vec3
	Depth float64
}

// ImpulsePair holds the impulses to apply to each body of a contact, in each
// body's object space and measured about its model origin.
type ImpulsePair struct {
	A, B spatial.Force
}

// Apply adds the impulses to the momentum of the two bodies.
func (p ImpulsePair) Apply(a, b *actor.RigidBody) {
	a.ApplyImpulseOS(p.A)
	b.ApplyImpulseOS(p.B)
}

// Resolver computes the impulses that resolve a contact.
type Resolver interface {
	Impulse(c Input, mat material.Material) ImpulsePair
}

// State is the combined momentum and kinetic energy of a pair of bodies.
type State struct {
	Linear mgl64.Vec3
	// Angular is measured about the world origin
	Angular mgl64.Vec3
	Energy  float64
	// Dynamic is set when neither body is static; momentum is only
	// conserved between two dynamic bodies
	Dynamic bool
}

// Measure captures the state of a pair of bodies.
func Measure(a, b *actor.RigidBody) State {
	var s State
	for _, rb := range []*actor.RigidBody{a, b} {
		h := rb.MomentumWS().Shift(rb.Position().Mul(-1))
		s.Linear = s.Linear.Add(h.Lin)
		s.Angular = s.Angular.Add(h.Ang)
		s.Energy += rb.KineticEnergy()
	}
	s.Dynamic = !a.IsStatic() && !b.IsStatic()
	return s
}

// Check compares the state of a pair before and after an impulse. Energy may
// only be lost; between dynamic bodies, linear and angular momentum are
// unchanged. tolerance is relative to the size of the quantity compared.
func Check(before, after State, tolerance float64) error {
	scale := func(x float64) float64 { return tolerance * math.Max(1, x) }

	if after.Energy > before.Energy+scale(before.Energy) {
		return errors.Wrapf(ErrNotConserved, "kinetic energy rose from %v to %v", before.Energy, after.Energy)
	}
	if !before.Dynamic {
		return nil
	}
	if d := after.Linear.Sub(before.Linear).Len(); d > scale(before.Linear.Len()) {
		return errors.Wrapf(ErrNotConserved, "linear momentum changed by %v", d)
	}
	if d := after.Angular.Sub(before.Angular).Len(); d > scale(before.Angular.Len()) {
		return errors.Wrapf(ErrNotConserved, "angular momentum changed by %v", d)
	}
	return nil
}

// velocityAt returns the world velocity of the body's material point at p.
func velocityAt(rb *actor.RigidBody, p mgl64.Vec3) mgl64.Vec3 {
	return rb.VelocityWS().LinAt(p.Sub(rb.Position()))
}

// response returns the change in velocity at p when a unit world impulse
// along dir is applied to the body at p.
func response(rb *actor.RigidBody, p, dir mgl64.Vec3) mgl64.Vec3 {
	if rb.IsStatic() {
		return mgl64.Vec3{}
	}
	r := p.Sub(rb.Position())
	return rb.InertiaInvWS().MulForce(spatial.ForceAt(dir, mgl64.Vec3{}, r)).LinAt(r)
}

// impulseOS converts a world impulse applied at p into the body's object
// space, about its model origin.
func impulseOS(rb *actor.RigidBody, p, impulse mgl64.Vec3) spatial.Force {
	ws := spatial.ForceAt(impulse, mgl64.Vec3{}, p.Sub(rb.Position()))
	return ws.Rotate(actor.Rotation(rb.O2W()).Transpose())
}
