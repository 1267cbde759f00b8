package collision

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/psryland/rylogic-code-sub010/actor"
	"github.com/psryland/rylogic-code-sub010/material"
	"github.com/psryland/rylogic-code-sub010/penetration"
)

// parallelEpsilon is added to every |R| entry so that the cross axes of
// (nearly) parallel edges, whose length collapses to ~0, cannot report a
// false separation.
const parallelEpsilon = 1e-6

// obb is the frame shared by the box tests: rhs expressed in lhs box space.
type obb struct {
	ea, eb mgl64.Vec3 // half extents of lhs and rhs
	r      mgl64.Mat3 // r.At(i, j) = lhs axis i · rhs axis j
	absR   [3][3]float64
	t      mgl64.Vec3 // rhs centre in lhs space
	l2w    mgl64.Mat4 // lhs shape to world
	r2w    mgl64.Mat4 // rhs shape to world
	matA   material.ID
	matB   material.ID
}

func newOBB(ea mgl64.Vec3, l2w mgl64.Mat4, eb mgl64.Vec3, r2w mgl64.Mat4, matA, matB material.ID) *obb {
	r2l := actor.InvertFast(l2w).Mul4(r2w)
	o := &obb{
		ea:   ea,
		eb:   eb,
		r:    r2l.Mat3(),
		t:    actor.Position(r2l),
		l2w:  l2w,
		r2w:  r2w,
		matA: matA,
		matB: matB,
	}
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			o.absR[i][j] = math.Abs(o.r.At(i, j)) + parallelEpsilon
		}
	}
	return o
}

// lhsAxes tests the three face normals of lhs.
func (o *obb) lhsAxes(pen penetration.Accumulator) bool {
	for i := 0; i < 3; i++ {
		ra := o.ea[i]
		rb := o.eb[0]*o.absR[i][0] + o.eb[1]*o.absR[i][1] + o.eb[2]*o.absR[i][2]
		depth := ra + rb - math.Abs(o.t[i])
		if !pen.Report(depth, o.lhsAxis(i), o.matA, o.matB) {
			return false
		}
	}
	return true
}

// rhsAxes tests the three face normals of rhs.
func (o *obb) rhsAxes(pen penetration.Accumulator) bool {
	for j := 0; j < 3; j++ {
		ra := o.ea[0]*o.absR[0][j] + o.ea[1]*o.absR[1][j] + o.ea[2]*o.absR[2][j]
		rb := o.eb[j]
		sep := math.Abs(o.t[0]*o.r.At(0, j) + o.t[1]*o.r.At(1, j) + o.t[2]*o.r.At(2, j))
		if !pen.Report(ra+rb-sep, o.rhsAxis(j), o.matA, o.matB) {
			return false
		}
	}
	return true
}

// crossAxes tests lhs axis i × rhs axis j for each j in js. The depths are
// measured along the unnormalised cross product.
func (o *obb) crossAxes(pen penetration.Accumulator, js ...int) bool {
	for i := 0; i < 3; i++ {
		i1, i2 := (i+1)%3, (i+2)%3
		for _, j := range js {
			j1, j2 := (j+1)%3, (j+2)%3
			ra := o.ea[i1]*o.absR[i2][j] + o.ea[i2]*o.absR[i1][j]
			rb := o.eb[j1]*o.absR[i][j2] + o.eb[j2]*o.absR[i][j1]
			sep := math.Abs(o.t[i2]*o.r.At(i1, j) - o.t[i1]*o.r.At(i2, j))
			if !pen.Report(ra+rb-sep, o.crossAxis(i, j), o.matA, o.matB) {
				return false
			}
		}
	}
	return true
}

func (o *obb) lhsAxis(i int) func() mgl64.Vec3 {
	return func() mgl64.Vec3 {
		return o.l2w.Mat3().Col(i)
	}
}

func (o *obb) rhsAxis(j int) func() mgl64.Vec3 {
	return func() mgl64.Vec3 {
		return o.r2w.Mat3().Col(j)
	}
}

func (o *obb) crossAxis(i, j int) func() mgl64.Vec3 {
	return func() mgl64.Vec3 {
		var e mgl64.Vec3
		e[i] = 1
		return actor.TransformDir(o.l2w, e.Cross(o.r.Col(j)))
	}
}

// boxVsBox tests the 15 candidate axes of two oriented boxes: 3 face normals
// of each box and the 9 cross products of their edges.
func boxVsBox(lhs actor.Shape, l2w mgl64.Mat4, rhs actor.Shape, r2w mgl64.Mat4, pen penetration.Accumulator) error {
	a := actor.MustAs[*actor.Box](lhs)
	b := actor.MustAs[*actor.Box](rhs)

	o := newOBB(a.HalfExtents, actor.ShapeToWorld(a, l2w), b.HalfExtents, actor.ShapeToWorld(b, r2w), a.Material, b.Material)
	_ = o.lhsAxes(pen) && o.rhsAxes(pen) && o.crossAxes(pen, 0, 1, 2)
	return nil
}

// boxVsLine treats the line as a box with zero radius across its length.
// A segment has no faces, so only the box normals and the cross products
// with the segment direction are candidates.
func boxVsLine(lhs actor.Shape, l2w mgl64.Mat4, rhs actor.Shape, r2w mgl64.Mat4, pen penetration.Accumulator) error {
	a := actor.MustAs[*actor.Box](lhs)
	l := actor.MustAs[*actor.Line](rhs)

	o := newOBB(a.HalfExtents, actor.ShapeToWorld(a, l2w), mgl64.Vec3{0, 0, l.HalfLength}, actor.ShapeToWorld(l, r2w), a.Material, l.Material)
	_ = o.lhsAxes(pen) && o.crossAxes(pen, 2)
	return nil
}
