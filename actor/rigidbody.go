package actor

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/pkg/errors"

	"github.com/psryland/rylogic-code-sub010/spatial"
)

// ErrNotOrthonormal is returned when a body pose is not a rigid transform.
var ErrNotOrthonormal = errors.New("transform is not orthonormal")

// BodyType represents the type of rigid body
type BodyType int

const (
	// BodyTypeDynamic bodies are affected by forces and collisions
	// They have finite mass and can move freely
	BodyTypeDynamic BodyType = iota

	// BodyTypeStatic bodies are immovable and have infinite mass
	// They are not affected by forces (e.g., ground, walls)
	BodyTypeStatic
)

// ShapeChangeHandler is called before (before == true) and after the shape
// or mass properties of a body are replaced.
type ShapeChangeHandler func(rb *RigidBody, before bool)

// RigidBody represents a rigid body in the physics simulation.
//
// Momentum and force are world-space spatial vectors measured about the
// model origin (the translation of O2W), not the centre of mass.
type RigidBody struct {
	BodyType BodyType

	o2w        mgl64.Mat4
	momentum   spatial.Force
	force      spatial.Force
	inertiaInv spatial.InertiaInv

	// Shape is shared and never modified by the body
	shape    Shape
	handlers []ShapeChangeHandler
}

// NewRigidBody creates a body with the given shape, pose and mass properties.
// Static bodies ignore inertia and take the infinite mass sentinel.
func NewRigidBody(shape Shape, o2w mgl64.Mat4, inertia spatial.Inertia, bodyType BodyType) (*RigidBody, error) {
	rb := &RigidBody{BodyType: bodyType, o2w: mgl64.Ident4()}
	if err := rb.SetO2W(o2w); err != nil {
		return nil, err
	}
	if bodyType == BodyTypeStatic {
		inertia = spatial.InertiaInfinite()
	}
	if err := rb.SetMassProperties(inertia); err != nil {
		return nil, err
	}
	rb.shape = shape
	return rb, nil
}

// IsStatic reports whether the body is immovable.
func (rb *RigidBody) IsStatic() bool {
	return rb.BodyType == BodyTypeStatic
}

// O2W returns the object-to-world transform.
func (rb *RigidBody) O2W() mgl64.Mat4 {
	return rb.o2w
}

// SetO2W sets the pose. Momentum stays measured about the model origin, so
// it is re-expressed about the new origin.
func (rb *RigidBody) SetO2W(o2w mgl64.Mat4) error {
	if !IsOrthonormal(o2w) {
		return errors.Wrapf(ErrNotOrthonormal, "%v", o2w)
	}
	ofs := Position(o2w).Sub(Position(rb.o2w))
	rb.momentum = rb.momentum.Shift(ofs)
	rb.force = rb.force.Shift(ofs)
	rb.o2w = o2w
	return nil
}

// Position returns the world position of the model origin.
func (rb *RigidBody) Position() mgl64.Vec3 {
	return Position(rb.o2w)
}

func (rb *RigidBody) Mass() float64 {
	return rb.inertiaInv.Mass()
}

func (rb *RigidBody) InvMass() float64 {
	if rb.IsStatic() {
		return 0
	}
	return rb.inertiaInv.InvMass
}

// CentreOfMassOS returns the centre of mass in object space.
func (rb *RigidBody) CentreOfMassOS() mgl64.Vec3 {
	return rb.inertiaInv.CoM
}

// CentreOfMassWS returns the centre of mass in world space.
func (rb *RigidBody) CentreOfMassWS() mgl64.Vec3 {
	return TransformPoint(rb.o2w, rb.inertiaInv.CoM)
}

// InertiaOS returns the object-space inertia about the model origin.
func (rb *RigidBody) InertiaOS() spatial.Inertia {
	return rb.inertiaInv.Invert()
}

// InertiaWS returns the inertia in world orientation, about the model origin.
func (rb *RigidBody) InertiaWS() spatial.Inertia {
	return rb.InertiaOS().Rotate(Rotation(rb.o2w))
}

func (rb *RigidBody) InertiaInvOS() spatial.InertiaInv {
	return rb.inertiaInv
}

func (rb *RigidBody) InertiaInvWS() spatial.InertiaInv {
	return rb.inertiaInv.Rotate(Rotation(rb.o2w))
}

// VelocityWS returns the world-space spatial velocity measured at the model origin.
func (rb *RigidBody) VelocityWS() spatial.Motion {
	if rb.IsStatic() {
		return spatial.Motion{}
	}
	return rb.InertiaInvWS().MulForce(rb.momentum)
}

// SetVelocityWS sets the momentum that produces velocity v (measured at the model origin).
func (rb *RigidBody) SetVelocityWS(v spatial.Motion) {
	if rb.IsStatic() {
		return
	}
	rb.momentum = rb.InertiaWS().MulMotion(v)
}

func (rb *RigidBody) MomentumWS() spatial.Force {
	return rb.momentum
}

func (rb *RigidBody) SetMomentumWS(h spatial.Force) {
	if rb.IsStatic() {
		return
	}
	rb.momentum = h
}

// ForceWS returns the accumulated world-space force about the model origin.
func (rb *RigidBody) ForceWS() spatial.Force {
	return rb.force
}

// ApplyForceWS accumulates a world-space force and torque acting at the world point at.
func (rb *RigidBody) ApplyForceWS(force, torque, at mgl64.Vec3) {
	if rb.IsStatic() {
		return
	}
	rb.force = rb.force.Add(spatial.ForceAt(force, torque, at.Sub(rb.Position())))
}

// ApplyForceOS accumulates an object-space force and torque acting at the object-space point at.
func (rb *RigidBody) ApplyForceOS(force, torque, at mgl64.Vec3) {
	if rb.IsStatic() {
		return
	}
	rot := Rotation(rb.o2w)
	rb.force = rb.force.Add(spatial.ForceAt(force, torque, at).Rotate(rot))
}

// ApplyImpulseOS adds an object-space impulse, measured about the model origin, to the momentum.
func (rb *RigidBody) ApplyImpulseOS(impulse spatial.Force) {
	if rb.IsStatic() {
		return
	}
	rb.momentum = rb.momentum.Add(impulse.Rotate(Rotation(rb.o2w)))
}

// ZeroForces clears the force accumulator.
func (rb *RigidBody) ZeroForces() {
	rb.force = spatial.Force{}
}

// KineticEnergy returns ½·v·h.
func (rb *RigidBody) KineticEnergy() float64 {
	return 0.5 * spatial.Dot(rb.VelocityWS(), rb.momentum)
}

// SetMassProperties replaces the object-space inertia, measured about the model origin.
// The momentum is preserved.
func (rb *RigidBody) SetMassProperties(inertia spatial.Inertia) error {
	if err := inertia.Validate(); err != nil {
		return err
	}
	rb.notify(true)
	rb.inertiaInv = inertia.Invert()
	rb.notify(false)
	return nil
}

// Shape returns the collision shape, which may be nil.
func (rb *RigidBody) Shape() Shape {
	return rb.shape
}

// SetShape replaces the shape and mass properties together.
func (rb *RigidBody) SetShape(shape Shape, inertia spatial.Inertia) error {
	if rb.IsStatic() {
		inertia = spatial.InertiaInfinite()
	}
	if err := inertia.Validate(); err != nil {
		return err
	}
	rb.notify(true)
	rb.shape = shape
	rb.inertiaInv = inertia.Invert()
	rb.notify(false)
	return nil
}

// OnShapeChange registers a handler for shape and mass changes. The returned
// function removes it.
func (rb *RigidBody) OnShapeChange(fn ShapeChangeHandler) func() {
	rb.handlers = append(rb.handlers, fn)
	idx := len(rb.handlers) - 1
	return func() {
		if idx < len(rb.handlers) {
			rb.handlers[idx] = nil
		}
	}
}

func (rb *RigidBody) notify(before bool) {
	for _, fn := range rb.handlers {
		if fn != nil {
			fn(rb, before)
		}
	}
}

// S2W returns the shape-to-world transform.
func (rb *RigidBody) S2W() mgl64.Mat4 {
	if rb.shape == nil {
		return rb.o2w
	}
	return ShapeToWorld(rb.shape, rb.o2w)
}

// BBoxWS returns the world-space bounding box of the body's shape.
func (rb *RigidBody) BBoxWS() AABB {
	if rb.shape == nil {
		return NewAABB(rb.Position(), mgl64.Vec3{})
	}
	return rb.shape.Base().BBox.Transform(rb.S2W())
}

// SupportWorld returns the world-space support point of the body's shape.
func (rb *RigidBody) SupportWorld(direction mgl64.Vec3) mgl64.Vec3 {
	s2w := rb.S2W()
	local := Rotation(s2w).Transpose().Mul3x1(direction)
	return TransformPoint(s2w, rb.shape.Support(local))
}
