package collision

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/psryland/rylogic-code-sub010/material"
)

// Contact describes the overlap of two shapes, in world space.
type Contact struct {
	// Axis is the unit separating axis, pointing from the first shape toward the second
	Axis mgl64.Vec3
	// Point lies between the two surfaces, on the mid-plane of the overlap
	Point mgl64.Vec3
	// Depth is the penetration along Axis; > 0 means overlap
	Depth float64
	MatA  material.ID
	MatB  material.ID
}

// Flip returns the same contact seen from the second shape.
func (c Contact) Flip() Contact {
	return Contact{
		Axis:  c.Axis.Mul(-1),
		Point: c.Point,
		Depth: c.Depth,
		MatA:  c.MatB,
		MatB:  c.MatA,
	}
}
