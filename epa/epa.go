// Package epa implements the Expanding Polytope Algorithm for computing penetration depth.
//
// EPA is run after GJK detects an overlap to determine the penetration depth
// and the contact normal, the Minimum Translation Vector that separates the
// shapes. The algorithm expands a polytope (starting from GJK's final
// simplex) toward the surface of the Minkowski difference, until the face
// closest to the origin is a face of the difference itself.
//
// References:
//   - Van den Bergen: "Proximity Queries and Penetration Depth Computation on 3D Game Objects" (2001)
package epa

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/pkg/errors"

	"github.com/psryland/rylogic-code-sub010/gjk"
)

const (
	// EPAMaxIterations limits polytope expansion to prevent infinite loops.
	// Typical convergence: 5-15 iterations for simple shapes.
	EPAMaxIterations = 64

	// EPAConvergenceTolerance defines when EPA has converged.
	// If the distance to a new support point improves by less than this threshold,
	// we've found the closest face to the origin.
	EPAConvergenceTolerance = 1e-7

	// NormalSnapThreshold is used to clamp nearly-zero normal components to exactly zero.
	// This helps with numerical stability and axis-aligned collisions.
	NormalSnapThreshold = 1e-12

	visibilityTolerance = 1e-10

	polytopeInitialCapacity = 16
)

var (
	// ErrDegenerate is returned when the overlap has no volume, i.e. the
	// shapes are only touching.
	ErrDegenerate = errors.New("degenerate polytope")
	// ErrNoConvergence is returned when EPA hits its iteration cap.
	ErrNoConvergence = errors.New("epa did not converge")
)

// Penetration is the minimum translation that separates two overlapping shapes.
type Penetration struct {
	// Normal points from A toward B; moving B by Normal·Depth separates the shapes
	Normal mgl64.Vec3
	Depth  float64
}

// EPA computes the penetration of two overlapping convex shapes.
//
// Algorithm overview:
//  1. Start with the simplex from GJK, grown to a tetrahedron if needed
//  2. Find the face closest to the origin
//  3. Get the support point along that face's normal
//  4. If the support point does not go beyond the face → done
//  5. Otherwise, expand the polytope by adding the support point
//
// On ErrNoConvergence the best estimate found is still returned.
func EPA(a, b gjk.Supporter, simplex *gjk.Simplex) (Penetration, error) {
	points, err := blowUp(a, b, simplex)
	if err != nil {
		return Penetration{}, err
	}

	builder := polytopeBuilderPool.Get().(*PolytopeBuilder)
	defer polytopeBuilderPool.Put(builder)
	builder.Reset()

	if err := builder.BuildInitialFaces(points); err != nil {
		return Penetration{}, err
	}

	var best Face
	for i := 0; i < EPAMaxIterations; i++ {
		idx := builder.ClosestFace()
		if idx < 0 {
			break
		}
		best = builder.faces[idx]

		support := gjk.MinkowskiSupport(a, b, best.Normal)
		distance := support.Dot(best.Normal)
		if distance-best.Distance < EPAConvergenceTolerance {
			return Penetration{Normal: best.Normal, Depth: best.Distance}, nil
		}

		if !builder.Expand(support) {
			return Penetration{Normal: best.Normal, Depth: best.Distance}, nil
		}
	}

	return Penetration{Normal: best.Normal, Depth: best.Distance},
		errors.Wrapf(ErrNoConvergence, "after %d iterations", EPAMaxIterations)
}

// blowUp grows a GJK simplex of 1-3 points into a tetrahedron enclosing the
// origin. GJK stops early when the origin lies on a vertex, edge or face of
// the simplex; adding support points in directions that leave the simplex's
// span keeps the origin enclosed.
func blowUp(a, b gjk.Supporter, simplex *gjk.Simplex) ([4]mgl64.Vec3, error) {
	var pts [4]mgl64.Vec3
	n := simplex.Count
	copy(pts[:], simplex.Points[:n])
	if n == 0 {
		pts[0] = gjk.MinkowskiSupport(a, b, mgl64.Vec3{1, 0, 0})
		n = 1
	}

	axes := [3]mgl64.Vec3{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}}
	const eps = 1e-10

	if n == 1 {
		for _, axis := range axes {
			for _, dir := range [2]mgl64.Vec3{axis, axis.Mul(-1)} {
				if n == 1 {
					if w := gjk.MinkowskiSupport(a, b, dir); w.Sub(pts[0]).LenSqr() > eps {
						pts[1] = w
						n = 2
					}
				}
			}
		}
	}

	if n == 2 {
		d := pts[1].Sub(pts[0])
		for _, axis := range axes {
			perp := d.Cross(axis)
			if perp.LenSqr() < eps || n != 2 {
				continue
			}
			for _, dir := range [2]mgl64.Vec3{perp, perp.Mul(-1)} {
				if n == 2 {
					w := gjk.MinkowskiSupport(a, b, dir)
					if d.Cross(w.Sub(pts[0])).LenSqr() > eps {
						pts[2] = w
						n = 3
					}
				}
			}
		}
	}

	if n == 3 {
		normal := pts[1].Sub(pts[0]).Cross(pts[2].Sub(pts[0]))
		if normal.LenSqr() > eps {
			for _, dir := range [2]mgl64.Vec3{normal, normal.Mul(-1)} {
				if n == 3 {
					w := gjk.MinkowskiSupport(a, b, dir)
					if math.Abs(w.Sub(pts[0]).Dot(normal)) > eps*math.Sqrt(normal.LenSqr()) {
						pts[3] = w
						n = 4
					}
				}
			}
		}
	}

	if n != 4 {
		return pts, errors.Wrapf(ErrDegenerate, "simplex of %d points cannot enclose a volume", n)
	}
	return pts, nil
}

// snapNormalToAxis clamps nearly-zero components of a normal vector to exactly zero.
//
// This improves numerical stability for axis-aligned collisions (box on ground)
// by preventing tiny floating-point errors from causing jitter in tangent directions.
func snapNormalToAxis(normal mgl64.Vec3) mgl64.Vec3 {
	clamped := normal
	for i := 0; i < 3; i++ {
		if math.Abs(clamped[i]) < NormalSnapThreshold {
			clamped[i] = 0
		}
	}

	length := clamped.Len()
	if length < 1e-8 {
		return normal
	}
	return clamped.Mul(1.0 / length)
}
