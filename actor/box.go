package actor

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/pkg/errors"

	"github.com/psryland/rylogic-code-sub010/spatial"
)

// Box represents an oriented box collision shape
// The box is defined by its half-extents (half-width, half-height, half-depth)
type Box struct {
	Header
	HalfExtents mgl64.Vec3
}

// NewBox creates a box with the given half extents.
func NewBox(halfExtents mgl64.Vec3, opts ...Option) (*Box, error) {
	b := &Box{Header: newHeader(opts), HalfExtents: halfExtents}
	if err := b.Validate(); err != nil {
		return nil, err
	}
	b.update()
	return b, nil
}

func (b *Box) update() {
	b.BBox = AABB{Min: b.HalfExtents.Mul(-1), Max: b.HalfExtents}
	b.Size = boxSize
}

func (b *Box) Type() ShapeType { return ShapeTypeBox }

func (b *Box) IsComplete() bool { return true }

func (b *Box) Validate() error {
	for i := 0; i < 3; i++ {
		if !(b.HalfExtents[i] > 0) || math.IsInf(b.HalfExtents[i], 0) {
			return errors.Wrapf(ErrInvalidShape, "box half extents %v", b.HalfExtents)
		}
	}
	return validateHeader(&b.Header)
}

func (b *Box) Support(direction mgl64.Vec3) mgl64.Vec3 {
	hx, hy, hz := b.HalfExtents.X(), b.HalfExtents.Y(), b.HalfExtents.Z()

	if direction.X() < 0 {
		hx = -hx
	}
	if direction.Y() < 0 {
		hy = -hy
	}
	if direction.Z() < 0 {
		hz = -hz
	}

	return mgl64.Vec3{hx, hy, hz}
}

// ContactFeature returns the face whose normal is most aligned with direction.
// When direction is nearly perpendicular to that face, the edge or corner is returned instead.
func (b *Box) ContactFeature(direction mgl64.Vec3) []mgl64.Vec3 {
	const planar = 1e-3
	if direction.LenSqr() == 0 {
		return []mgl64.Vec3{b.Support(direction)}
	}
	dir := direction.Normalize()

	// Count the axes the direction has a meaningful component on
	corner := b.Support(dir)
	var free []int
	for i := 0; i < 3; i++ {
		if math.Abs(dir[i]) < planar {
			free = append(free, i)
		}
	}

	switch len(free) {
	case 0:
		// Pick the face most parallel to the direction
		axis := 0
		for i := 1; i < 3; i++ {
			if math.Abs(dir[i]) > math.Abs(dir[axis]) {
				axis = i
			}
		}
		if math.Abs(dir[axis]) < 1-planar {
			// Oblique: a corner leads
			return []mgl64.Vec3{corner}
		}
		return b.face(axis, corner[axis])
	case 1:
		// Perpendicular to one axis: an edge along that axis
		a := free[0]
		p0, p1 := corner, corner
		p0[a], p1[a] = -b.HalfExtents[a], b.HalfExtents[a]
		return []mgl64.Vec3{p0, p1}
	default:
		// Aligned with a single axis: the whole face
		axis := 3 - free[0] - free[1]
		return b.face(axis, corner[axis])
	}
}

// face returns the four corners of the face perpendicular to axis at value, CCW seen from outside.
func (b *Box) face(axis int, value float64) []mgl64.Vec3 {
	u, v := (axis+1)%3, (axis+2)%3
	hu, hv := b.HalfExtents[u], b.HalfExtents[v]
	corners := [4][2]float64{{-hu, -hv}, {hu, -hv}, {hu, hv}, {-hu, hv}}

	out := make([]mgl64.Vec3, 4)
	for i, c := range corners {
		var p mgl64.Vec3
		p[axis], p[u], p[v] = value, c[0], c[1]
		out[i] = p
	}
	if value < 0 {
		out[1], out[3] = out[3], out[1]
	}
	return out
}

// Volume = 8 * hx * hy * hz (full dimensions are 2*halfExtents)
func (b *Box) Volume() float64 {
	return 8.0 * b.HalfExtents.X() * b.HalfExtents.Y() * b.HalfExtents.Z()
}

// MassProperties returns the inertia of a solid box of the given density,
// expressed in the box's parent space.
func (b *Box) MassProperties(density float64) spatial.Inertia {
	in := spatial.InertiaBox(b.HalfExtents, density*b.Volume())
	return in.Rotate(Rotation(b.S2P)).Translate(Position(b.S2P).Mul(-1))
}
