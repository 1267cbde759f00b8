package collision

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/samber/lo"

	"github.com/psryland/rylogic-code-sub010/actor"
	"github.com/psryland/rylogic-code-sub010/penetration"
)

// centreEpsilon is the offset below which two centres are treated as coincident.
const centreEpsilon = 1e-12

func sphereVsSphere(lhs actor.Shape, l2w mgl64.Mat4, rhs actor.Shape, r2w mgl64.Mat4, pen penetration.Accumulator) error {
	a := actor.MustAs[*actor.Sphere](lhs)
	b := actor.MustAs[*actor.Sphere](rhs)

	sa := actor.ShapeToWorld(a, l2w)
	r2l := actor.InvertFast(sa).Mul4(actor.ShapeToWorld(b, r2w))
	offset := actor.Position(r2l)
	dist := offset.Len()

	pen.Report(a.Radius+b.Radius-dist, func() mgl64.Vec3 {
		if dist < centreEpsilon {
			return actor.TransformDir(sa, mgl64.Vec3{0, 0, 1})
		}
		return actor.TransformDir(sa, offset.Mul(1/dist))
	}, a.Material, b.Material)
	return nil
}

// sphereVsBox works in box space. Axes found there point from the box to the
// sphere and are negated to point from lhs to rhs.
func sphereVsBox(lhs actor.Shape, l2w mgl64.Mat4, rhs actor.Shape, r2w mgl64.Mat4, pen penetration.Accumulator) error {
	s := actor.MustAs[*actor.Sphere](lhs)
	b := actor.MustAs[*actor.Box](rhs)

	sb := actor.ShapeToWorld(b, r2w)
	centre := actor.TransformPoint(actor.InvertFast(sb), actor.Position(actor.ShapeToWorld(s, l2w)))
	h := b.HalfExtents

	inside := math.Abs(centre[0]) <= h[0] && math.Abs(centre[1]) <= h[1] && math.Abs(centre[2]) <= h[2]
	if inside {
		// Nearest face
		axis := 0
		for i := 1; i < 3; i++ {
			if h[i]-math.Abs(centre[i]) < h[axis]-math.Abs(centre[axis]) {
				axis = i
			}
		}
		depth := s.Radius + h[axis] - math.Abs(centre[axis])
		pen.Report(depth, func() mgl64.Vec3 {
			var n mgl64.Vec3
			n[axis] = -1
			if centre[axis] < 0 {
				n[axis] = 1
			}
			return actor.TransformDir(sb, n)
		}, s.Material, b.Material)
		return nil
	}

	var nearest mgl64.Vec3
	for i := 0; i < 3; i++ {
		nearest[i] = lo.Clamp(centre[i], -h[i], h[i])
	}
	offset := centre.Sub(nearest)
	dist := offset.Len()

	pen.Report(s.Radius-dist, func() mgl64.Vec3 {
		return actor.TransformDir(sb, offset.Mul(-1/dist))
	}, s.Material, b.Material)
	return nil
}

// sphereVsLine works in line space, against the closest point of the segment.
func sphereVsLine(lhs actor.Shape, l2w mgl64.Mat4, rhs actor.Shape, r2w mgl64.Mat4, pen penetration.Accumulator) error {
	s := actor.MustAs[*actor.Sphere](lhs)
	l := actor.MustAs[*actor.Line](rhs)

	sl := actor.ShapeToWorld(l, r2w)
	centre := actor.TransformPoint(actor.InvertFast(sl), actor.Position(actor.ShapeToWorld(s, l2w)))
	nearest := mgl64.Vec3{0, 0, lo.Clamp(centre.Z(), -l.HalfLength, l.HalfLength)}
	offset := centre.Sub(nearest)
	dist := offset.Len()

	pen.Report(s.Radius-dist, func() mgl64.Vec3 {
		if dist < centreEpsilon {
			x, _ := actor.TangentBasis(mgl64.Vec3{0, 0, 1})
			return actor.TransformDir(sl, x)
		}
		return actor.TransformDir(sl, offset.Mul(-1/dist))
	}, s.Material, l.Material)
	return nil
}
