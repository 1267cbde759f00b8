package epa

import (
	"github.com/go-gl/mathgl/mgl64"
)

// Face is a triangle of the expanding polytope.
type Face struct {
	Points   [3]mgl64.Vec3
	Normal   mgl64.Vec3 // Unit normal pointing out of the polytope
	Distance float64    // Distance from the origin to the face plane
}

// Edge is an undirected polytope edge.
type Edge struct {
	A, B mgl64.Vec3
}

// newFace builds a face whose normal points away from interior, a point
// strictly inside the polytope. ok is false for zero-area triangles.
func newFace(p0, p1, p2, interior mgl64.Vec3) (Face, bool) {
	face := Face{Points: [3]mgl64.Vec3{p0, p1, p2}}

	normal := p1.Sub(p0).Cross(p2.Sub(p0))
	length := normal.Len()
	if length < 1e-12 {
		return face, false
	}
	normal = normal.Mul(1.0 / length)

	if normal.Dot(interior.Sub(p0)) > 0 {
		normal = normal.Mul(-1)
	}

	face.Normal = snapNormalToAxis(normal)
	face.Distance = p0.Dot(face.Normal)
	if face.Distance < 0 {
		// The origin is on or just outside this face
		face.Distance = 0
	}
	return face, true
}

func normalizeEdge(edge Edge) Edge {
	// Ensure consistent edge representation (A < B lexicographically)
	// This allows us to detect duplicate edges regardless of order
	if compareVec3(edge.A, edge.B) > 0 {
		return Edge{edge.B, edge.A}
	}
	return edge
}

func compareVec3(a, b mgl64.Vec3) int {
	// Compare vectors lexicographically (x, then y, then z)
	for i := 0; i < 3; i++ {
		if a[i] != b[i] {
			if a[i] < b[i] {
				return -1
			}
			return 1
		}
	}
	return 0
}
