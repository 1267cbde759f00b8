package actor

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/pkg/errors"
)

// Line is a segment along the shape-space z axis, from -HalfLength to +HalfLength.
type Line struct {
	Header
	HalfLength float64
}

// NewLine creates a line segment of length 2*halfLength.
func NewLine(halfLength float64, opts ...Option) (*Line, error) {
	l := &Line{Header: newHeader(opts), HalfLength: halfLength}
	if err := l.Validate(); err != nil {
		return nil, err
	}
	l.update()
	return l, nil
}

// NewLineBetween creates the line segment from a to b in parent space.
func NewLineBetween(a, b mgl64.Vec3, opts ...Option) (*Line, error) {
	axis := b.Sub(a)
	length := axis.Len()
	if length == 0 {
		return nil, errors.Wrap(ErrInvalidShape, "zero length line")
	}
	z := axis.Mul(1 / length)
	x, y := TangentBasis(z)
	s2p := Affine(mgl64.Mat3FromCols(x, y, z), a.Add(b).Mul(0.5))
	return NewLine(length/2, append(opts, WithS2P(s2p))...)
}

func (l *Line) update() {
	l.BBox = AABB{Min: mgl64.Vec3{0, 0, -l.HalfLength}, Max: mgl64.Vec3{0, 0, l.HalfLength}}
	l.Size = lineSize
}

func (l *Line) Type() ShapeType { return ShapeTypeLine }

func (l *Line) IsComplete() bool { return true }

func (l *Line) Validate() error {
	if !(l.HalfLength > 0) || math.IsInf(l.HalfLength, 0) {
		return errors.Wrapf(ErrInvalidShape, "line half length %v", l.HalfLength)
	}
	return validateHeader(&l.Header)
}

// Endpoints returns the two ends of the segment in shape space.
func (l *Line) Endpoints() (mgl64.Vec3, mgl64.Vec3) {
	return mgl64.Vec3{0, 0, -l.HalfLength}, mgl64.Vec3{0, 0, l.HalfLength}
}

func (l *Line) Support(direction mgl64.Vec3) mgl64.Vec3 {
	if direction.Z() < 0 {
		return mgl64.Vec3{0, 0, -l.HalfLength}
	}
	return mgl64.Vec3{0, 0, l.HalfLength}
}

func (l *Line) ContactFeature(direction mgl64.Vec3) []mgl64.Vec3 {
	if math.Abs(direction.Z()) < 1e-3*direction.Len() {
		a, b := l.Endpoints()
		return []mgl64.Vec3{a, b}
	}
	return []mgl64.Vec3{l.Support(direction)}
}

// TangentBasis returns two unit vectors completing normal into a right-handed orthonormal basis.
func TangentBasis(normal mgl64.Vec3) (mgl64.Vec3, mgl64.Vec3) {
	var tangent1 mgl64.Vec3
	if math.Abs(normal.X()) > 0.9 {
		tangent1 = mgl64.Vec3{0, 1, 0}
	} else {
		tangent1 = mgl64.Vec3{1, 0, 0}
	}

	tangent1 = tangent1.Sub(normal.Mul(tangent1.Dot(normal))).Normalize()
	tangent2 := normal.Cross(tangent1).Normalize()

	return tangent1, tangent2
}
