// Package query answers point and ray questions about a single shape: the
// closest point on a shape to a point, and where a ray enters and leaves it.
// Every query works in the shape's own space; RayCastWS is the world-space
// entry point.
package query

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/pkg/errors"
	"github.com/samber/lo"

	"github.com/psryland/rylogic-code-sub010/actor"
	"github.com/psryland/rylogic-code-sub010/gjk"
)

// ClosestPoint returns the point of shape nearest to point, and the distance
// between them. Shapes are solid: a point inside a shape is its own closest
// point, at distance 0. point is in shape space, and so is the result.
func ClosestPoint(shape actor.Shape, point mgl64.Vec3) (mgl64.Vec3, float64, error) {
	if shape == nil {
		return mgl64.Vec3{}, 0, errors.Wrap(actor.ErrInvalidShape, "closest point on nil shape")
	}
	if !shape.IsComplete() {
		return mgl64.Vec3{}, 0, errors.Wrapf(actor.ErrIncomplete, "closest point on %v", shape.Type())
	}

	switch s := shape.(type) {
	case *actor.Sphere:
		return closestOnSphere(s, point)
	case *actor.Box:
		return closestOnBox(s, point)
	case *actor.Line:
		return closestOnLine(s, point)
	case *actor.Triangle:
		q := closestOnTriangle(point, s.Verts[0], s.Verts[1], s.Verts[2])
		return q, q.Sub(point).Len(), nil
	case *actor.Polytope:
		return closestOnPolytope(s, point)
	case *actor.Array:
		return closestOnArray(s, point)
	}
	return mgl64.Vec3{}, 0, errors.Wrapf(actor.ErrWrongShapeType, "closest point on %v", shape.Type())
}

func closestOnSphere(s *actor.Sphere, point mgl64.Vec3) (mgl64.Vec3, float64, error) {
	d := point.Len()
	if d <= s.Radius {
		return point, 0, nil
	}
	return point.Mul(s.Radius / d), d - s.Radius, nil
}

func closestOnBox(b *actor.Box, point mgl64.Vec3) (mgl64.Vec3, float64, error) {
	var q mgl64.Vec3
	for i := 0; i < 3; i++ {
		q[i] = lo.Clamp(point[i], -b.HalfExtents[i], b.HalfExtents[i])
	}
	return q, q.Sub(point).Len(), nil
}

func closestOnLine(l *actor.Line, point mgl64.Vec3) (mgl64.Vec3, float64, error) {
	q := mgl64.Vec3{0, 0, lo.Clamp(point.Z(), -l.HalfLength, l.HalfLength)}
	return q, q.Sub(point).Len(), nil
}

// closestOnTriangle classifies p against the seven Voronoi regions of the
// triangle abc (three vertices, three edges, the face) and projects it onto
// the feature that owns it.
func closestOnTriangle(p, a, b, c mgl64.Vec3) mgl64.Vec3 {
	ab := b.Sub(a)
	ac := c.Sub(a)
	ap := p.Sub(a)
	d1, d2 := ab.Dot(ap), ac.Dot(ap)
	if d1 <= 0 && d2 <= 0 {
		return a
	}

	bp := p.Sub(b)
	d3, d4 := ab.Dot(bp), ac.Dot(bp)
	if d3 >= 0 && d4 <= d3 {
		return b
	}

	vc := d1*d4 - d3*d2
	if vc <= 0 && d1 >= 0 && d3 <= 0 {
		return a.Add(ab.Mul(d1 / (d1 - d3)))
	}

	cp := p.Sub(c)
	d5, d6 := ab.Dot(cp), ac.Dot(cp)
	if d6 >= 0 && d5 <= d6 {
		return c
	}

	vb := d5*d2 - d1*d6
	if vb <= 0 && d2 >= 0 && d6 <= 0 {
		return a.Add(ac.Mul(d2 / (d2 - d6)))
	}

	va := d3*d6 - d5*d4
	if va <= 0 && d4-d3 >= 0 && d5-d6 >= 0 {
		return b.Add(c.Sub(b).Mul((d4 - d3) / ((d4 - d3) + (d5 - d6))))
	}

	denom := 1 / (va + vb + vc)
	return a.Add(ab.Mul(vb * denom)).Add(ac.Mul(vc * denom))
}

func closestOnPolytope(p *actor.Polytope, point mgl64.Vec3) (mgl64.Vec3, float64, error) {
	at := gjk.SupportFunc(func(mgl64.Vec3) mgl64.Vec3 { return point })
	res, err := gjk.Distance(&actor.HintedSupport{Polytope: p}, at, point)
	if err != nil {
		return res.PointA, res.Distance, errors.Wrap(err, "closest point on polytope")
	}
	if res.Overlap {
		return point, 0, nil
	}
	return res.PointA, res.Distance, nil
}

func closestOnArray(a *actor.Array, point mgl64.Vec3) (mgl64.Vec3, float64, error) {
	children, err := a.Children()
	if err != nil {
		return mgl64.Vec3{}, 0, err
	}

	best := mgl64.Vec3{}
	bestDist := math.Inf(1)
	for i, child := range children {
		s2p := child.Base().S2P
		q, d, err := ClosestPoint(child, actor.TransformPoint(actor.InvertFast(s2p), point))
		if err != nil {
			return mgl64.Vec3{}, 0, errors.Wrapf(err, "array child %d", i)
		}
		if d < bestDist {
			best, bestDist = actor.TransformPoint(s2p, q), d
		}
	}
	if math.IsInf(bestDist, 1) {
		return mgl64.Vec3{}, 0, errors.Wrap(actor.ErrInvalidShape, "closest point on empty array")
	}
	return best, bestDist, nil
}
