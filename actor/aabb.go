package actor

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// AABB represents an axis-aligned bounding box
type AABB struct {
	Min mgl64.Vec3
	Max mgl64.Vec3
}

// EmptyAABB returns an inverted box that any Encompass/Union replaces.
func EmptyAABB() AABB {
	inf := math.Inf(1)
	return AABB{
		Min: mgl64.Vec3{inf, inf, inf},
		Max: mgl64.Vec3{-inf, -inf, -inf},
	}
}

// NewAABB returns the box centred on centre with the given half extents.
func NewAABB(centre, radius mgl64.Vec3) AABB {
	return AABB{Min: centre.Sub(radius), Max: centre.Add(radius)}
}

// IsEmpty reports whether the box contains nothing.
func (a AABB) IsEmpty() bool {
	return a.Min.X() > a.Max.X() || a.Min.Y() > a.Max.Y() || a.Min.Z() > a.Max.Z()
}

// Centre returns the centre of the box.
func (a AABB) Centre() mgl64.Vec3 {
	return a.Min.Add(a.Max).Mul(0.5)
}

// Radius returns the half extents of the box.
func (a AABB) Radius() mgl64.Vec3 {
	return a.Max.Sub(a.Min).Mul(0.5)
}

// ContainsPoint checks if a point is inside the AABB
func (a AABB) ContainsPoint(point mgl64.Vec3) bool {
	return point.X() >= a.Min.X() && point.X() <= a.Max.X() &&
		point.Y() >= a.Min.Y() && point.Y() <= a.Max.Y() &&
		point.Z() >= a.Min.Z() && point.Z() <= a.Max.Z()
}

// Overlaps checks if two AABBs overlap
func (a AABB) Overlaps(other AABB) bool {
	// AABBs overlap if they overlap on all three axes
	return a.Max.X() >= other.Min.X() && a.Min.X() <= other.Max.X() &&
		a.Max.Y() >= other.Min.Y() && a.Min.Y() <= other.Max.Y() &&
		a.Max.Z() >= other.Min.Z() && a.Min.Z() <= other.Max.Z()
}

// Encompass grows the box to include point.
func (a AABB) Encompass(point mgl64.Vec3) AABB {
	for i := 0; i < 3; i++ {
		a.Min[i] = math.Min(a.Min[i], point[i])
		a.Max[i] = math.Max(a.Max[i], point[i])
	}
	return a
}

// Union returns the smallest box containing both boxes.
func (a AABB) Union(other AABB) AABB {
	if other.IsEmpty() {
		return a
	}
	return a.Encompass(other.Min).Encompass(other.Max)
}

// Grow expands the box by margin on every side.
func (a AABB) Grow(margin float64) AABB {
	m := mgl64.Vec3{margin, margin, margin}
	return AABB{Min: a.Min.Sub(m), Max: a.Max.Add(m)}
}

// Transform returns the axis-aligned box bounding a under the affine transform m.
func (a AABB) Transform(m mgl64.Mat4) AABB {
	if a.IsEmpty() {
		return a
	}

	centre := TransformPoint(m, a.Centre())
	radius := a.Radius()

	var r mgl64.Vec3
	for i := 0; i < 3; i++ {
		r[i] = math.Abs(m.At(i, 0))*radius[0] + math.Abs(m.At(i, 1))*radius[1] + math.Abs(m.At(i, 2))*radius[2]
	}
	return NewAABB(centre, r)
}
