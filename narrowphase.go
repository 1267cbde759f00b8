package physics

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/pkg/errors"

	"github.com/psryland/rylogic-code-sub010/actor"
	"github.com/psryland/rylogic-code-sub010/collision"
	"github.com/psryland/rylogic-code-sub010/material"
)

// Contact is a collision between two bodies found during a Step.
type Contact struct {
	collision.Contact
	BodyA, BodyB *actor.RigidBody
	// Material is the blend of the two shapes' materials
	Material material.Material
	// RelVel is the velocity of B relative to A at the contact point
	RelVel mgl64.Vec3
	// Time is when the bodies first touched, relative to the end of the
	// step: in [-dt, 0]
	Time float64
}

// Pair is a pair of bodies reported by the broad phase.
type Pair struct {
	BodyA, BodyB *actor.RigidBody
}

// narrowPhase tests a pair in body A's frame and returns the contact in world space.
// Contacts whose bodies are already separating are dropped.
func narrowPhase(p Pair, dt float64, materials material.Map) (Contact, bool, error) {
	a, b := p.BodyA, p.BodyB
	a2w := a.O2W()
	b2a := actor.InvertFast(a2w).Mul4(b.O2W())

	c, ok, err := collision.CollideContact(a.Shape(), mgl64.Ident4(), b.Shape(), b2a)
	if err != nil || !ok {
		return Contact{}, false, err
	}

	c.Axis = actor.TransformDir(a2w, c.Axis)
	c.Point = actor.TransformPoint(a2w, c.Point)

	relVel := pointVelocity(b, c.Point).Sub(pointVelocity(a, c.Point))
	approach := relVel.Dot(c.Axis)
	if approach >= 0 {
		return Contact{}, false, nil
	}

	// Assuming linear relative motion, the bodies touched depth/speed ago
	travelled := -approach * dt
	t := 0.0
	if travelled > 0 {
		t = math.Max(-dt, math.Min(0, -dt*c.Depth/travelled))
	}
	c.Point = c.Point.Add(relVel.Mul(t))

	return Contact{
		Contact:  c,
		BodyA:    a,
		BodyB:    b,
		Material: materials.Blend(c.MatA, c.MatB),
		RelVel:   relVel,
		Time:     t,
	}, true, nil
}

func pointVelocity(rb *actor.RigidBody, p mgl64.Vec3) mgl64.Vec3 {
	return rb.VelocityWS().LinAt(p.Sub(rb.Position()))
}

// pairResult is the narrow phase outcome of one pair, kept in discovery order.
type pairResult struct {
	contact Contact
	ok      bool
	err     error
}

// detect runs the narrow phase over all pairs on the given number of
// workers and returns the contacts in discovery order. Unsupported pairs are
// passed to skip; if it returns false the error aborts detection.
func detect(pairs []Pair, dt float64, materials material.Map, workers int, skip func(Pair, error) bool) ([]Contact, error) {
	results := make([]pairResult, len(pairs))
	indices := make([]int, len(pairs))
	for i := range indices {
		indices[i] = i
	}

	task(workers, indices, func(i int) {
		c, ok, err := narrowPhase(pairs[i], dt, materials)
		results[i] = pairResult{contact: c, ok: ok, err: err}
	})

	contacts := make([]Contact, 0, len(pairs))
	for i, r := range results {
		if r.err != nil {
			if errors.Is(r.err, collision.ErrNotImplemented) && skip(pairs[i], r.err) {
				continue
			}
			return nil, errors.Wrapf(r.err, "narrow phase pair %d", i)
		}
		if r.ok {
			contacts = append(contacts, r.contact)
		}
	}
	return contacts, nil
}
