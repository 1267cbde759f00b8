package actor

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/pkg/errors"
)

// Triangle is a zero-thickness triangle that contains the shape-space origin.
type Triangle struct {
	Header
	Verts [3]mgl64.Vec3
}

// NewTriangle creates a triangle from three shape-space vertices.
func NewTriangle(a, b, c mgl64.Vec3, opts ...Option) (*Triangle, error) {
	t := &Triangle{Header: newHeader(opts), Verts: [3]mgl64.Vec3{a, b, c}}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	t.update()
	return t, nil
}

// NewTriangleAt creates a triangle from parent-space vertices, placing the
// shape-space origin at the triangle's centroid.
func NewTriangleAt(a, b, c mgl64.Vec3, opts ...Option) (*Triangle, error) {
	centre := a.Add(b).Add(c).Mul(1.0 / 3.0)
	return NewTriangle(a.Sub(centre), b.Sub(centre), c.Sub(centre), append(opts, WithS2P(Translation(centre)))...)
}

func (t *Triangle) update() {
	box := EmptyAABB()
	for _, v := range t.Verts {
		box = box.Encompass(v)
	}
	t.BBox = box
	t.Size = triangleSize
}

func (t *Triangle) Type() ShapeType { return ShapeTypeTriangle }

func (t *Triangle) IsComplete() bool { return true }

// Normal returns the unit normal given by the winding a→b→c.
func (t *Triangle) Normal() mgl64.Vec3 {
	n := t.Verts[1].Sub(t.Verts[0]).Cross(t.Verts[2].Sub(t.Verts[0]))
	if n.LenSqr() == 0 {
		return mgl64.Vec3{}
	}
	return n.Normalize()
}

func (t *Triangle) Validate() error {
	a, b, c := t.Verts[0], t.Verts[1], t.Verts[2]
	n := b.Sub(a).Cross(c.Sub(a))
	scale := math.Max(b.Sub(a).LenSqr(), math.Max(c.Sub(b).LenSqr(), a.Sub(c).LenSqr()))
	if n.Len() <= 1e-9*scale || math.IsNaN(n.Len()) {
		return errors.Wrap(ErrInvalidShape, "degenerate triangle")
	}
	// The plane must contain the origin
	if math.Abs(n.Normalize().Dot(a)) > 1e-6*math.Max(1, math.Sqrt(scale)) {
		return errors.Wrap(ErrInvalidShape, "triangle plane does not contain the shape origin")
	}
	// The origin must lie inside the triangle, edges included
	unit := n.Normalize()
	for i := 0; i < 3; i++ {
		v0, v1 := t.Verts[i], t.Verts[(i+1)%3]
		if v1.Sub(v0).Cross(v0.Mul(-1)).Dot(unit) < -1e-9*scale {
			return errors.Wrapf(ErrInvalidShape, "shape origin is outside triangle edge %d", i)
		}
	}
	return validateHeader(&t.Header)
}

func (t *Triangle) Support(direction mgl64.Vec3) mgl64.Vec3 {
	best := 0
	bestDot := t.Verts[0].Dot(direction)
	for i := 1; i < 3; i++ {
		if d := t.Verts[i].Dot(direction); d > bestDot {
			best, bestDot = i, d
		}
	}
	return t.Verts[best]
}

// ContactFeature returns the whole triangle when direction is along its
// normal, otherwise the vertices tied for the maximum projection.
func (t *Triangle) ContactFeature(direction mgl64.Vec3) []mgl64.Vec3 {
	const planar = 1e-3
	if direction.LenSqr() == 0 {
		return []mgl64.Vec3{t.Verts[0]}
	}
	dir := direction.Normalize()
	if math.Abs(dir.Dot(t.Normal())) > 1-planar {
		return []mgl64.Vec3{t.Verts[0], t.Verts[1], t.Verts[2]}
	}

	size := t.BBox.Radius().Len()
	max := t.Support(dir).Dot(dir)
	out := make([]mgl64.Vec3, 0, 2)
	for _, v := range t.Verts {
		if v.Dot(dir) >= max-planar*size {
			out = append(out, v)
		}
	}
	return out
}
