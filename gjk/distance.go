package gjk

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/pkg/errors"
)

// DistanceTolerance is the relative convergence threshold of Distance.
const DistanceTolerance = 1e-10

// Result is the outcome of a distance query.
type Result struct {
	// PointA and PointB are the closest points on each shape
	PointA, PointB mgl64.Vec3
	// Distance is |PointB - PointA|; zero when the shapes overlap
	Distance float64
	// Overlap is set when the shapes intersect, in which case the closest
	// points are not meaningful
	Overlap bool
}

// Distance computes the closest points between two convex shapes.
//
// The iteration keeps the smallest simplex of Minkowski difference points
// whose convex hull holds the current closest point v, and stops once a new
// support point along -v no longer improves the lower bound |v|² - v·w.
// initial is the first search direction; the offset from A to B is a good
// choice. On ErrNoConvergence the best estimate found so far is still returned.
func Distance(a, b Supporter, initial mgl64.Vec3) (Result, error) {
	direction := initial
	if direction.LenSqr() < 1e-16 {
		direction = mgl64.Vec3{1, 0, 0}
	}

	var s solver
	pa := a.Support(direction)
	pb := b.Support(direction.Mul(-1))
	s.add(pa.Sub(pb), pa, pb)
	v := s.closest()

	for i := 0; i < MaxIterations; i++ {
		vv := v.LenSqr()
		if vv < 1e-20 {
			return Result{Overlap: true}, nil
		}

		pa = a.Support(v.Mul(-1))
		pb = b.Support(v)
		w := pa.Sub(pb)

		// No progress possible: v is the closest point
		if vv-v.Dot(w) <= DistanceTolerance*vv || s.contains(w) {
			return s.result(v), nil
		}

		s.add(w, pa, pb)
		next := s.closest()

		if s.n == 4 {
			return Result{Overlap: true}, nil
		}
		if next.LenSqr() >= vv {
			// Rounding stalled the descent
			return s.result(next), nil
		}
		v = next
	}
	return s.result(v), errors.Wrapf(ErrNoConvergence, "distance after %d iterations", MaxIterations)
}

func (s *solver) result(v mgl64.Vec3) Result {
	return Result{
		PointA:   s.point(&s.a),
		PointB:   s.point(&s.b),
		Distance: math.Sqrt(v.LenSqr()),
	}
}
