package collision

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/pkg/errors"

	"github.com/psryland/rylogic-code-sub010/actor"
	"github.com/psryland/rylogic-code-sub010/epa"
	"github.com/psryland/rylogic-code-sub010/gjk"
	"github.com/psryland/rylogic-code-sub010/penetration"
)

// worldSupport is a shape's support function in world space. Polytopes
// climb from the previous support vertex.
type worldSupport struct {
	local gjk.Supporter
	s2w   mgl64.Mat4
	w2s   mgl64.Mat4
}

func newWorldSupport(s actor.Shape, s2w mgl64.Mat4) worldSupport {
	var local gjk.Supporter = s
	if p, ok := s.(*actor.Polytope); ok {
		local = &actor.HintedSupport{Polytope: p}
	}
	return worldSupport{local: local, s2w: s2w, w2s: actor.InvertFast(s2w)}
}

func (w worldSupport) Support(direction mgl64.Vec3) mgl64.Vec3 {
	return actor.TransformPoint(w.s2w, w.local.Support(actor.TransformDir(w.w2s, direction)))
}

// core returns the supporter GJK and EPA run on, and the margin to add to
// it. A sphere is its centre point plus its radius, which keeps EPA on flat
// geometry where it converges exactly.
func core(s actor.Shape, s2w mgl64.Mat4) (gjk.Supporter, float64) {
	if sphere, ok := s.(*actor.Sphere); ok {
		centre := actor.Position(s2w)
		return gjk.SupportFunc(func(mgl64.Vec3) mgl64.Vec3 { return centre }), sphere.Radius
	}
	return newWorldSupport(s, s2w), 0
}

// convexVsConvex is the test for pairs with no closed form: GJK decides
// overlap, EPA measures the depth of an overlap and the GJK distance
// measures the gap of a separation. It reports a single axis.
func convexVsConvex(lhs actor.Shape, l2w mgl64.Mat4, rhs actor.Shape, r2w mgl64.Mat4, pen penetration.Accumulator) error {
	sa := actor.ShapeToWorld(lhs, l2w)
	sb := actor.ShapeToWorld(rhs, r2w)
	a, marginA := core(lhs, sa)
	b, marginB := core(rhs, sb)
	margin := marginA + marginB
	matA, matB := lhs.Base().Material, rhs.Base().Material

	offset := actor.Position(sb).Sub(actor.Position(sa))
	touching := func() mgl64.Vec3 {
		return fallbackAxis(lhs, sa, rhs, sb)
	}

	simplex := gjk.SimplexPool.Get().(*gjk.Simplex)
	defer gjk.SimplexPool.Put(simplex)
	simplex.Reset()

	if gjk.Intersect(a, b, offset, simplex) {
		p, err := epa.EPA(a, b, simplex)
		if errors.Is(err, epa.ErrDegenerate) {
			pen.Report(margin, touching, matA, matB)
			return nil
		}
		if err != nil {
			return errors.Wrapf(err, "%v vs %v", lhs.Type(), rhs.Type())
		}
		pen.Report(p.Depth+margin, func() mgl64.Vec3 { return p.Normal }, matA, matB)
		return nil
	}

	res, err := gjk.Distance(a, b, offset)
	if err != nil {
		return errors.Wrapf(err, "%v vs %v", lhs.Type(), rhs.Type())
	}
	if res.Overlap || res.Distance < centreEpsilon {
		pen.Report(margin, touching, matA, matB)
		return nil
	}
	pen.Report(margin-res.Distance, func() mgl64.Vec3 {
		return res.PointB.Sub(res.PointA).Mul(1 / res.Distance)
	}, matA, matB)
	return nil
}

// fallbackAxis is used when the shapes only touch and the Minkowski
// difference has no volume to measure: a triangle's normal, else the offset
// between the shapes.
func fallbackAxis(a actor.Shape, a2w mgl64.Mat4, b actor.Shape, b2w mgl64.Mat4) mgl64.Vec3 {
	if tri, ok := a.(*actor.Triangle); ok {
		return actor.TransformDir(a2w, tri.Normal())
	}
	if tri, ok := b.(*actor.Triangle); ok {
		return actor.TransformDir(b2w, tri.Normal())
	}
	offset := actor.Position(b2w).Sub(actor.Position(a2w))
	if offset.LenSqr() < centreEpsilon*centreEpsilon {
		return mgl64.Vec3{0, 0, 1}
	}
	return offset.Normalize()
}
