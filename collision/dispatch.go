// Package collision implements the narrow phase: separating axis tests
// between pairs of shapes, reported through a penetration.Accumulator, and
// the entry points that turn the retained axis into a Contact.
//
// Transforms passed to the entry points map a shape's parent space to world
// space; a shape's own S2P is applied on top.
package collision

import (
	"sync"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/pkg/errors"

	"github.com/psryland/rylogic-code-sub010/actor"
	"github.com/psryland/rylogic-code-sub010/material"
	"github.com/psryland/rylogic-code-sub010/penetration"
)

// ErrNotImplemented is returned for shape pairs that have no test.
var ErrNotImplemented = errors.New("collision pair not implemented")

// pairFunc tests lhs against rhs. Axes are reported in world space,
// materials as (lhs, rhs).
type pairFunc func(lhs actor.Shape, l2w mgl64.Mat4, rhs actor.Shape, r2w mgl64.Mat4, pen penetration.Accumulator) error

type pairTable [actor.NumShapeTypes][actor.NumShapeTypes]pairFunc

// registry holds one test per unordered pair, stored at [lo][hi].
var registry = sync.OnceValue(func() *pairTable {
	var t pairTable
	register := func(a, b actor.ShapeType, fn pairFunc) {
		if a > b {
			panic("collision: pair registered out of order")
		}
		t[a][b] = fn
	}

	register(actor.ShapeTypeSphere, actor.ShapeTypeSphere, sphereVsSphere)
	register(actor.ShapeTypeSphere, actor.ShapeTypeBox, sphereVsBox)
	register(actor.ShapeTypeSphere, actor.ShapeTypeLine, sphereVsLine)
	register(actor.ShapeTypeBox, actor.ShapeTypeBox, boxVsBox)
	register(actor.ShapeTypeBox, actor.ShapeTypeLine, boxVsLine)

	for _, other := range []actor.ShapeType{
		actor.ShapeTypeSphere,
		actor.ShapeTypeBox,
		actor.ShapeTypeLine,
		actor.ShapeTypeTriangle,
		actor.ShapeTypePolytope,
	} {
		register(other, actor.ShapeTypePolytope, convexVsConvex)
	}
	register(actor.ShapeTypeSphere, actor.ShapeTypeTriangle, convexVsConvex)
	register(actor.ShapeTypeBox, actor.ShapeTypeTriangle, convexVsConvex)
	return &t
})

// lookup finds the test for a pair. swap is set when the registered test
// expects the operands in the other order.
func lookup(a, b actor.ShapeType) (pairFunc, bool, error) {
	if a >= actor.NumShapeTypes || b >= actor.NumShapeTypes {
		return nil, false, errors.Wrapf(ErrNotImplemented, "%v vs %v", a, b)
	}
	swap := a > b
	if swap {
		a, b = b, a
	}
	fn := registry()[a][b]
	if fn == nil {
		return nil, false, errors.Wrapf(ErrNotImplemented, "%v vs %v", a, b)
	}
	return fn, swap, nil
}

// flipped presents the reports of a swapped test in the caller's order.
type flipped struct {
	penetration.Accumulator
}

func (f flipped) Report(depth float64, axis func() mgl64.Vec3, matA, matB material.ID) bool {
	return f.Accumulator.Report(depth, func() mgl64.Vec3 { return axis().Mul(-1) }, matB, matA)
}

// Penetration runs the test for a pair of leaf shapes against pen.
func Penetration(a actor.Shape, a2w mgl64.Mat4, b actor.Shape, b2w mgl64.Mat4, pen penetration.Accumulator) error {
	fn, swap, err := lookup(a.Type(), b.Type())
	if err != nil {
		return err
	}
	if swap {
		return fn(b, b2w, a, a2w, flipped{pen})
	}
	return fn(a, a2w, b, b2w, pen)
}

// Collide reports whether two shapes overlap.
func Collide(a actor.Shape, a2w mgl64.Mat4, b actor.Shape, b2w mgl64.Mat4) (bool, error) {
	hit := false
	err := eachLeafPair(a, a2w, b, b2w, func(la actor.Shape, la2w mgl64.Mat4, lb actor.Shape, lb2w mgl64.Mat4) (bool, error) {
		var pen penetration.Test
		if err := Penetration(la, la2w, lb, lb2w, &pen); err != nil {
			return false, err
		}
		hit = pen.Contact()
		return !hit, nil
	})
	return hit, err
}

// CollideContact returns the contact between two shapes. When either shape
// is an Array, the deepest contact over all child pairs is returned.
func CollideContact(a actor.Shape, a2w mgl64.Mat4, b actor.Shape, b2w mgl64.Mat4) (Contact, bool, error) {
	var best Contact
	found := false
	err := eachLeafPair(a, a2w, b, b2w, func(la actor.Shape, la2w mgl64.Mat4, lb actor.Shape, lb2w mgl64.Mat4) (bool, error) {
		c, ok, err := leafContact(la, la2w, lb, lb2w)
		if err != nil {
			return false, err
		}
		if ok && (!found || c.Depth > best.Depth) {
			best = c
			found = true
		}
		return true, nil
	})
	if err != nil {
		return Contact{}, false, err
	}
	return best, found, nil
}

func leafContact(a actor.Shape, a2w mgl64.Mat4, b actor.Shape, b2w mgl64.Mat4) (Contact, bool, error) {
	var pen penetration.ContactPenetration
	if err := Penetration(a, a2w, b, b2w, &pen); err != nil {
		return Contact{}, false, err
	}
	if !pen.Contact() {
		return Contact{}, false, nil
	}

	depth, err := pen.Depth()
	if err != nil {
		return Contact{}, false, errors.Wrapf(err, "%v vs %v", a.Type(), b.Type())
	}
	axis, _ := pen.Axis()
	matA, matB, _ := pen.Materials()

	sa := actor.ShapeToWorld(a, a2w)
	sb := actor.ShapeToWorld(b, b2w)
	if axis.Dot(actor.Position(sb).Sub(actor.Position(sa))) < 0 {
		axis = axis.Mul(-1)
	}

	return Contact{
		Axis:  axis,
		Point: contactPoint(a, sa, b, sb, axis),
		Depth: depth,
		MatA:  matA,
		MatB:  matB,
	}, true, nil
}

type leafFunc func(a actor.Shape, a2w mgl64.Mat4, b actor.Shape, b2w mgl64.Mat4) (bool, error)

// eachLeafPair calls fn for every pair of non-Array shapes, expanding Arrays
// on either side, until fn returns false.
func eachLeafPair(a actor.Shape, a2w mgl64.Mat4, b actor.Shape, b2w mgl64.Mat4, fn leafFunc) error {
	_, err := leafPairs(a, a2w, b, b2w, fn)
	return err
}

func leafPairs(a actor.Shape, a2w mgl64.Mat4, b actor.Shape, b2w mgl64.Mat4, fn leafFunc) (bool, error) {
	if !a.IsComplete() {
		return false, errors.Wrapf(actor.ErrIncomplete, "%v", a.Type())
	}
	if !b.IsComplete() {
		return false, errors.Wrapf(actor.ErrIncomplete, "%v", b.Type())
	}

	if arr, ok := a.(*actor.Array); ok {
		children, err := arr.Children()
		if err != nil {
			return false, err
		}
		c2w := a2w.Mul4(arr.S2P)
		for _, child := range children {
			if more, err := leafPairs(child, c2w, b, b2w, fn); err != nil || !more {
				return more, err
			}
		}
		return true, nil
	}

	if arr, ok := b.(*actor.Array); ok {
		children, err := arr.Children()
		if err != nil {
			return false, err
		}
		c2w := b2w.Mul4(arr.S2P)
		for _, child := range children {
			if more, err := leafPairs(a, a2w, child, c2w, fn); err != nil || !more {
				return more, err
			}
		}
		return true, nil
	}

	return fn(a, a2w, b, b2w)
}
