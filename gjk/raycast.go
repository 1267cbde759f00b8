package gjk

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/pkg/errors"
)

// RayHit is the entry point of a ray into a convex shape.
type RayHit struct {
	// T is the ray parameter of the entry point
	T float64
	// Normal is the unnormalised surface normal at the entry point; zero
	// when the ray starts inside the shape
	Normal mgl64.Vec3
}

// RayCast finds where the ray origin + t·direction, t in [0, maxT], first
// enters the convex shape c. maxIterations caps the walk; callers scale it
// with the shape's vertex count.
//
// The walk keeps a simplex of support points nearest the current ray point
// x. Whenever the support plane along v separates x from the shape, x is
// advanced to the plane; when no plane can separate them the ray has entered
// the shape. A simplex of four points encloses x.
func RayCast(c Supporter, origin, direction mgl64.Vec3, maxT float64, maxIterations int) (RayHit, bool, error) {
	if maxIterations < MaxIterations {
		maxIterations = MaxIterations
	}

	lambda := 0.0
	x := origin
	var normal mgl64.Vec3

	var s solver
	v := x.Sub(c.Support(direction.Mul(-1)))

	const epsSq = 1e-18
	for i := 0; i < maxIterations; i++ {
		vv := v.LenSqr()
		if vv <= epsSq*(1+x.LenSqr()) {
			return RayHit{T: lambda, Normal: normal}, true, nil
		}

		p := c.Support(v)
		w := x.Sub(p)
		vw := v.Dot(w)
		if vw > 0 {
			vr := v.Dot(direction)
			if vr >= 0 {
				return RayHit{}, false, nil
			}
			lambda -= vw / vr
			if lambda > maxT {
				return RayHit{}, false, nil
			}
			x = origin.Add(direction.Mul(lambda))
			normal = v
		}

		// Vertices are stored as shape points and measured from the moving x
		for k := 0; k < s.n; k++ {
			s.y[k] = x.Sub(s.a[k])
		}
		if !s.containsPoint(p) {
			s.add(x.Sub(p), p, mgl64.Vec3{})
		} else if vw <= 0 {
			// No new support point and x did not move: x is on the surface
			return RayHit{T: lambda, Normal: normal}, true, nil
		}

		v = s.closest()
		if s.n == 4 {
			return RayHit{T: lambda, Normal: normal}, true, nil
		}
	}
	return RayHit{}, false, errors.Wrapf(ErrNoConvergence, "ray cast after %d iterations", maxIterations)
}

func (s *solver) containsPoint(p mgl64.Vec3) bool {
	for i := 0; i < s.n; i++ {
		if s.a[i].Sub(p).LenSqr() < 1e-20 {
			return true
		}
	}
	return false
}
