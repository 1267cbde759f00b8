package constraint

import (
	"math"

	"github.com/samber/lo"

	"github.com/psryland/rylogic-code-sub010/material"
)

// DefaultRestingSpeed is the approach speed below which contacts do not bounce.
const DefaultRestingSpeed = 1e-3

// Restitution resolves a contact with a single collision impulse: a normal
// impulse scaled by the normal elasticity, then a Coulomb friction impulse
// along the remaining slip.
type Restitution struct {
	// RestingSpeed is the approach speed below which the normal elasticity
	// is ignored. Zero means DefaultRestingSpeed.
	RestingSpeed float64
}

// Impulse returns the impulse pair that resolves c. Separating contacts get
// a zero pair.
func (r Restitution) Impulse(c Input, mat material.Material) ImpulsePair {
	a, b := c.BodyA, c.BodyB
	if a.IsStatic() && b.IsStatic() {
		return ImpulsePair{}
	}
	resting := r.RestingSpeed
	if resting == 0 {
		resting = DefaultRestingSpeed
	}

	n := c.Axis
	p := c.Point
	vRel := velocityAt(b, p).Sub(velocityAt(a, p))
	vn := vRel.Dot(n)
	if vn >= 0 {
		return ImpulsePair{}
	}

	// Normal impulse
	kn := n.Dot(response(a, p, n).Add(response(b, p, n)))
	if kn < 1e-12 {
		return ImpulsePair{}
	}
	elasticity := lo.Clamp(mat.NormalElasticity, 0, 1)
	if -vn < resting {
		elasticity = 0
	}
	jn := -(1 + elasticity) * vn / kn
	impulse := n.Mul(jn)

	// Friction impulse against the slip left after the normal impulse
	vRel = vRel.Add(response(a, p, impulse).Add(response(b, p, impulse)))
	slip := vRel.Sub(n.Mul(vRel.Dot(n)))
	if speed := slip.Len(); speed > 1e-9 {
		t := slip.Mul(-1 / speed)
		kt := t.Dot(response(a, p, t).Add(response(b, p, t)))
		if kt > 1e-12 {
			stop := (1 + lo.Clamp(mat.TangentialElasticity, 0, 1)) * speed / kt
			jt := stop
			if stop > mat.StaticFriction*jn {
				jt = math.Min(stop, mat.DynamicFriction*jn)
			}
			impulse = impulse.Add(t.Mul(jt))
		}
	}

	return ImpulsePair{
		A: impulseOS(a, p, impulse.Mul(-1)),
		B: impulseOS(b, p, impulse),
	}
}

