package actor

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/pkg/errors"

	"github.com/psryland/rylogic-code-sub010/material"
)

var (
	// ErrWrongShapeType is returned when a shape is cast to a variant it is not.
	ErrWrongShapeType = errors.New("wrong shape type")
	// ErrIncomplete is returned when a composite shape is used before Complete.
	ErrIncomplete = errors.New("shape is not complete")
	// ErrSizeMismatch is returned when a composite's size does not describe its payload.
	ErrSizeMismatch = errors.New("shape size does not match its payload")
	// ErrInvalidShape is returned for shapes that break a geometric invariant.
	ErrInvalidShape = errors.New("invalid shape")
	// ErrNoConvergence is returned when an iterative search hits its iteration cap.
	ErrNoConvergence = errors.New("search did not converge")
)

// ShapeType represents the type of collision shape
type ShapeType uint8

const (
	ShapeTypeSphere ShapeType = iota
	ShapeTypeBox
	ShapeTypeLine
	ShapeTypeTriangle
	ShapeTypePolytope
	ShapeTypeArray

	NumShapeTypes
)

func (t ShapeType) String() string {
	switch t {
	case ShapeTypeSphere:
		return "Sphere"
	case ShapeTypeBox:
		return "Box"
	case ShapeTypeLine:
		return "Line"
	case ShapeTypeTriangle:
		return "Triangle"
	case ShapeTypePolytope:
		return "Polytope"
	case ShapeTypeArray:
		return "Array"
	}
	return fmt.Sprintf("ShapeType(%d)", uint8(t))
}

// Flags are per-shape option bits.
type Flags uint32

const (
	FlagNone Flags = 0
	// FlagWholeShape makes queries on an Array report the array itself rather than the child that was hit.
	FlagWholeShape Flags = 1 << 0
)

// Header is common to every shape.
type Header struct {
	// S2P is the shape-to-parent transform
	S2P mgl64.Mat4
	// BBox bounds the shape in its own space
	BBox     AABB
	Material material.ID
	Flags    Flags
	// Size is the byte size of the shape's flat record, header included
	Size int
}

// Base gives access to the common header.
func (h *Header) Base() *Header {
	return h
}

// Shape is the interface that all collision shapes implement.
// Positions and directions are in shape space unless stated otherwise.
type Shape interface {
	Type() ShapeType
	Base() *Header
	// Support returns the point of the shape most extreme along direction
	Support(direction mgl64.Vec3) mgl64.Vec3
	// ContactFeature returns the vertices of the feature (point, edge or face)
	// facing along direction, ordered around its boundary
	ContactFeature(direction mgl64.Vec3) []mgl64.Vec3
	// Validate checks the shape's invariants
	Validate() error
	// IsComplete reports whether the shape may be queried
	IsComplete() bool
}

// Option configures the header of a new shape.
type Option func(h *Header)

// WithS2P sets the shape-to-parent transform.
func WithS2P(s2p mgl64.Mat4) Option {
	return func(h *Header) { h.S2P = s2p }
}

// WithMaterial sets the material id.
func WithMaterial(id material.ID) Option {
	return func(h *Header) { h.Material = id }
}

// WithFlags sets the flags.
func WithFlags(flags Flags) Option {
	return func(h *Header) { h.Flags = flags }
}

func newHeader(opts []Option) Header {
	h := Header{S2P: mgl64.Ident4()}
	for _, opt := range opts {
		opt(&h)
	}
	return h
}

func validateHeader(h *Header) error {
	if !IsOrthonormal(h.S2P) {
		return errors.Wrap(ErrInvalidShape, "shape-to-parent transform is not orthonormal")
	}
	return nil
}

// As casts a shape to a concrete variant.
func As[T Shape](s Shape) (T, error) {
	var zero T
	if s == nil {
		return zero, errors.Wrapf(ErrWrongShapeType, "nil shape is not %T", zero)
	}
	t, ok := s.(T)
	if !ok {
		return zero, errors.Wrapf(ErrWrongShapeType, "%v is not %T", s.Type(), zero)
	}
	return t, nil
}

// MustAs is As for callers that have already checked Type; it panics on mismatch.
func MustAs[T Shape](s Shape) T {
	t, err := As[T](s)
	if err != nil {
		panic(err)
	}
	return t
}

// ShapeToWorld combines an object-to-world transform with the shape's own S2P.
func ShapeToWorld(s Shape, o2w mgl64.Mat4) mgl64.Mat4 {
	return o2w.Mul4(s.Base().S2P)
}

// BBoxInParent returns the shape's bounding box in its parent's space.
func BBoxInParent(s Shape) AABB {
	return s.Base().BBox.Transform(s.Base().S2P)
}

// Flat record layout, in bytes.
const (
	headerSize   = 16*8 + 6*8 + 4 + 4 + 4 + 4 // s2p, bbox, material, flags, type, size
	sphereSize   = headerSize + 8
	boxSize      = headerSize + 3*8
	lineSize     = headerSize + 8
	triangleSize = headerSize + 9*8
)

func polytopeSize(p *Polytope) int {
	size := headerSize + 4 + 4 + 4 // vert count, neighbour count, face count
	size += len(p.Verts) * 3 * 8
	for _, nbrs := range p.Nbrs {
		size += 4 + len(nbrs)*4
	}
	size += len(p.Faces) * 3 * 4
	return size
}

func arraySize(children []Shape) int {
	size := headerSize + 4
	for _, child := range children {
		size += child.Base().Size
	}
	return size
}
