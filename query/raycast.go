package query

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/pkg/errors"

	"github.com/psryland/rylogic-code-sub010/actor"
	"github.com/psryland/rylogic-code-sub010/gjk"
)

// ErrDegenerateRay is returned for rays with a zero-length direction.
var ErrDegenerateRay = errors.New("ray direction has zero length")

// Ray is the half line Origin + t·Direction, t >= 0. Thickness widens the
// ray: it may be moved up to Thickness toward the shape's origin before
// being tested.
type Ray struct {
	Origin    mgl64.Vec3
	Direction mgl64.Vec3
	Thickness float64
}

// At returns the point at parameter t.
func (r Ray) At(t float64) mgl64.Vec3 {
	return r.Origin.Add(r.Direction.Mul(t))
}

// Hit is the interval over which a ray is inside a shape.
type Hit struct {
	// T0 and T1 are the entry and exit parameters, 0 <= T0 <= T1
	T0, T1 float64
	// Normal is the unit surface normal at the entry point; zero when the
	// ray starts inside the shape
	Normal mgl64.Vec3
	// Shape is the leaf shape that was hit, or the array itself for arrays
	// flagged FlagWholeShape
	Shape actor.Shape
}

// RayCast intersects a shape-space ray with shape.
func RayCast(ray Ray, shape actor.Shape) (Hit, bool, error) {
	if ray.Direction.LenSqr() == 0 {
		return Hit{}, false, ErrDegenerateRay
	}
	if shape == nil {
		return Hit{}, false, errors.Wrap(actor.ErrInvalidShape, "ray cast against nil shape")
	}
	if !shape.IsComplete() {
		return Hit{}, false, errors.Wrapf(actor.ErrIncomplete, "ray cast against %v", shape.Type())
	}

	var (
		hit Hit
		ok  bool
		err error
	)
	switch s := shape.(type) {
	case *actor.Sphere:
		hit, ok = rayVsSphere(thicken(ray), s)
	case *actor.Box:
		hit, ok = rayVsBox(thicken(ray), s)
	case *actor.Line:
		hit, ok = rayVsLine(ray, s)
	case *actor.Triangle:
		hit, ok = rayVsTriangle(thicken(ray), s)
	case *actor.Polytope:
		hit, ok, err = rayVsPolytope(thicken(ray), s)
	case *actor.Array:
		return rayVsArray(ray, s)
	default:
		return Hit{}, false, errors.Wrapf(actor.ErrWrongShapeType, "ray cast against %v", shape.Type())
	}
	if !ok || err != nil {
		return Hit{}, false, err
	}
	hit.Shape = shape
	return hit, true, nil
}

// RayCastWS intersects a world-space ray with shape, where s2w is the
// shape-to-world transform (object-to-world combined with the shape's S2P).
// The hit normal is returned in world space.
func RayCastWS(ray Ray, shape actor.Shape, s2w mgl64.Mat4) (Hit, bool, error) {
	w2s := actor.InvertFast(s2w)
	local := Ray{
		Origin:    actor.TransformPoint(w2s, ray.Origin),
		Direction: actor.TransformDir(w2s, ray.Direction),
		Thickness: ray.Thickness,
	}
	hit, ok, err := RayCast(local, shape)
	if !ok || err != nil {
		return hit, ok, err
	}
	hit.Normal = actor.TransformDir(s2w, hit.Normal)
	return hit, true, nil
}

// thicken moves the ray toward the origin by at most its thickness.
func thicken(ray Ray) Ray {
	if ray.Thickness <= 0 {
		return ray
	}
	d := ray.Direction
	// Point on the ray's line nearest the origin
	near := ray.Origin.Sub(d.Mul(ray.Origin.Dot(d) / d.LenSqr()))
	dist := near.Len()
	if dist == 0 {
		return ray
	}
	ray.Origin = ray.Origin.Sub(near.Mul(math.Min(ray.Thickness, dist) / dist))
	return ray
}

// entry fills in the parts of a hit common to the closed-form cases. t0 and
// t1 are the raw interval on the whole line.
func entry(t0, t1 float64, normal mgl64.Vec3) (Hit, bool) {
	if t1 < 0 || t0 > t1 {
		return Hit{}, false
	}
	if t0 < 0 {
		return Hit{T0: 0, T1: t1}, true
	}
	return Hit{T0: t0, T1: t1, Normal: normal}, true
}

func rayVsSphere(ray Ray, s *actor.Sphere) (Hit, bool) {
	o, d := ray.Origin, ray.Direction
	a := d.LenSqr()
	b := o.Dot(d)
	c := o.LenSqr() - s.Radius*s.Radius
	disc := b*b - a*c
	if disc < 0 {
		return Hit{}, false
	}

	root := math.Sqrt(disc)
	t0 := (-b - root) / a
	t1 := (-b + root) / a
	return entry(t0, t1, ray.At(t0).Mul(1/s.Radius))
}

// rayVsBox clips the ray against the three slabs of the box.
func rayVsBox(ray Ray, b *actor.Box) (Hit, bool) {
	t0, t1 := math.Inf(-1), math.Inf(1)
	var normal mgl64.Vec3
	for i := 0; i < 3; i++ {
		o, d, h := ray.Origin[i], ray.Direction[i], b.HalfExtents[i]
		if d == 0 {
			if o < -h || o > h {
				return Hit{}, false
			}
			continue
		}

		near, far := (-h-o)/d, (h-o)/d
		sign := -1.0
		if near > far {
			near, far = far, near
			sign = 1
		}
		if near > t0 {
			t0 = near
			normal = mgl64.Vec3{}
			normal[i] = sign
		}
		t1 = math.Min(t1, far)
	}
	return entry(t0, t1, normal)
}

func rayVsTriangle(ray Ray, tri *actor.Triangle) (Hit, bool) {
	n := tri.Normal()
	dn := ray.Direction.Dot(n)
	if dn == 0 {
		return Hit{}, false
	}

	// The triangle's plane passes through the origin
	t := -ray.Origin.Dot(n) / dn
	if t < 0 {
		return Hit{}, false
	}

	p := ray.At(t)
	a, b, c := tri.Verts[0], tri.Verts[1], tri.Verts[2]
	if n.Dot(b.Sub(a).Cross(p.Sub(a))) < 0 ||
		n.Dot(c.Sub(b).Cross(p.Sub(b))) < 0 ||
		n.Dot(a.Sub(c).Cross(p.Sub(c))) < 0 {
		return Hit{}, false
	}

	if dn > 0 {
		n = n.Mul(-1)
	}
	return Hit{T0: t, T1: t, Normal: n}, true
}

// rayVsLine reports a hit where the ray passes within Thickness of the segment.
func rayVsLine(ray Ray, l *actor.Line) (Hit, bool) {
	o, d := ray.Origin, ray.Direction
	z := mgl64.Vec3{0, 0, 1}

	// Closest approach of the ray line and the segment line
	a := d.LenSqr()
	b := d.Dot(z)
	e := o.Dot(z)
	f := o.Dot(d)
	denom := a - b*b

	t := 0.0
	if denom > 1e-12*a {
		t = (b*e - f) / denom
	}
	t = math.Max(t, 0)
	s := clampAbs(o.Add(d.Mul(t)).Z(), l.HalfLength)

	// Re-project onto the ray for the clamped segment point
	q := mgl64.Vec3{0, 0, s}
	t = math.Max(q.Sub(o).Dot(d)/a, 0)

	p := ray.At(t)
	gap := p.Sub(q)
	if gap.Len() > ray.Thickness {
		return Hit{}, false
	}

	var normal mgl64.Vec3
	if gap.LenSqr() > 0 {
		normal = gap.Normalize()
	} else {
		normal = d.Mul(-1 / math.Sqrt(a))
	}
	return Hit{T0: t, T1: t, Normal: normal}, true
}

func clampAbs(v, limit float64) float64 {
	return math.Max(-limit, math.Min(limit, v))
}

// rayVsPolytope walks a support simplex toward the ray to find the entry,
// then casts back from beyond the hull to find the exit.
func rayVsPolytope(ray Ray, p *actor.Polytope) (Hit, bool, error) {
	iterations := 4 * len(p.Verts)
	in, ok, err := gjk.RayCast(&actor.HintedSupport{Polytope: p}, ray.Origin, ray.Direction, math.Inf(1), iterations)
	if err != nil {
		return Hit{}, false, errors.Wrap(err, "ray cast entry")
	}
	if !ok {
		return Hit{}, false, nil
	}

	radius := 0.0
	for _, v := range p.Verts {
		radius = math.Max(radius, v.Len())
	}
	d := ray.Direction
	dlen := d.Len()
	nearest := -ray.Origin.Dot(d) / d.LenSqr()
	far := math.Max(nearest, in.T) + 2*radius/dlen

	out, ok, err := gjk.RayCast(&actor.HintedSupport{Polytope: p}, ray.At(far), d.Mul(-1), far-in.T, iterations)
	if err != nil {
		return Hit{}, false, errors.Wrap(err, "ray cast exit")
	}
	t1 := in.T
	if ok {
		t1 = math.Max(in.T, far-out.T)
	}

	hit := Hit{T0: in.T, T1: t1}
	if in.Normal.LenSqr() > 0 {
		hit.Normal = in.Normal.Normalize()
	}
	return hit, true, nil
}

// rayVsArray keeps the nearest hit over the array's children.
func rayVsArray(ray Ray, a *actor.Array) (Hit, bool, error) {
	children, err := a.Children()
	if err != nil {
		return Hit{}, false, err
	}

	var best Hit
	found := false
	for i, child := range children {
		s2p := child.Base().S2P
		hit, ok, err := RayCastWS(ray, child, s2p)
		if err != nil {
			return Hit{}, false, errors.Wrapf(err, "array child %d", i)
		}
		if ok && (!found || hit.T0 < best.T0) {
			best, found = hit, true
		}
	}
	if !found {
		return Hit{}, false, nil
	}
	if a.Flags&actor.FlagWholeShape != 0 {
		best.Shape = a
	}
	return best, true, nil
}
