package actor

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/pkg/errors"

	"github.com/psryland/rylogic-code-sub010/spatial"
)

// Sphere represents a spherical collision shape centred on its shape-space origin
type Sphere struct {
	Header
	Radius float64
}

// NewSphere creates a sphere of the given radius.
func NewSphere(radius float64, opts ...Option) (*Sphere, error) {
	s := &Sphere{Header: newHeader(opts), Radius: radius}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	s.update()
	return s, nil
}

func (s *Sphere) update() {
	r := mgl64.Vec3{s.Radius, s.Radius, s.Radius}
	s.BBox = AABB{Min: r.Mul(-1), Max: r}
	s.Size = sphereSize
}

func (s *Sphere) Type() ShapeType { return ShapeTypeSphere }

func (s *Sphere) IsComplete() bool { return true }

func (s *Sphere) Validate() error {
	if !(s.Radius > 0) || math.IsInf(s.Radius, 0) {
		return errors.Wrapf(ErrInvalidShape, "sphere radius %v", s.Radius)
	}
	return validateHeader(&s.Header)
}

func (s *Sphere) Support(direction mgl64.Vec3) mgl64.Vec3 {
	if direction.LenSqr() == 0 {
		return mgl64.Vec3{0, 0, s.Radius}
	}
	return direction.Normalize().Mul(s.Radius)
}

func (s *Sphere) ContactFeature(direction mgl64.Vec3) []mgl64.Vec3 {
	return []mgl64.Vec3{s.Support(direction)}
}

// Volume of sphere = (4/3) * π * r³
func (s *Sphere) Volume() float64 {
	return (4.0 / 3.0) * math.Pi * s.Radius * s.Radius * s.Radius
}

// MassProperties returns the inertia of a solid sphere of the given density,
// expressed in the sphere's parent space.
func (s *Sphere) MassProperties(density float64) spatial.Inertia {
	in := spatial.InertiaSphere(s.Radius, density*s.Volume())
	return in.Rotate(Rotation(s.S2P)).Translate(Position(s.S2P).Mul(-1))
}
