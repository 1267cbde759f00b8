package epa

import (
	"sync"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/pkg/errors"
)

// PolytopeBuilder manages polytope expansion with reusable buffers.
type PolytopeBuilder struct {
	faces []Face

	// Edge tracking for boundary detection
	// Normalized edges (A < B) with occurrence count
	edges []EdgeEntry

	visibleIndices []int

	// A point strictly inside the polytope, used to orient new faces.
	// The polytope only grows, so the centroid of the initial
	// tetrahedron stays inside.
	interior mgl64.Vec3
}

// EdgeEntry represents an edge with occurrence counting for boundary detection.
// An edge is a boundary edge if it appears exactly once (count == 1).
type EdgeEntry struct {
	Edge
	Count int
}

var polytopeBuilderPool = sync.Pool{
	New: func() interface{} {
		return &PolytopeBuilder{
			faces:          make([]Face, 0, polytopeInitialCapacity),
			edges:          make([]EdgeEntry, 0, polytopeInitialCapacity),
			visibleIndices: make([]int, 0, polytopeInitialCapacity),
		}
	},
}

// Reset prepares the builder for reuse by clearing all slices.
func (b *PolytopeBuilder) Reset() {
	b.faces = b.faces[:0]
	b.edges = b.edges[:0]
	b.visibleIndices = b.visibleIndices[:0]
	b.interior = mgl64.Vec3{}
}

// BuildInitialFaces creates the initial polytope from a tetrahedron.
func (b *PolytopeBuilder) BuildInitialFaces(points [4]mgl64.Vec3) error {
	p0, p1, p2, p3 := points[0], points[1], points[2], points[3]
	b.interior = p0.Add(p1).Add(p2).Add(p3).Mul(0.25)

	for _, tri := range [4][3]mgl64.Vec3{
		{p0, p1, p2},
		{p0, p2, p3},
		{p0, p3, p1},
		{p1, p3, p2},
	} {
		face, ok := newFace(tri[0], tri[1], tri[2], b.interior)
		if !ok {
			return errors.Wrap(ErrDegenerate, "flat initial tetrahedron")
		}
		b.faces = append(b.faces, face)
	}
	return nil
}

// ClosestFace returns the index of the face closest to the origin, or -1.
func (b *PolytopeBuilder) ClosestFace() int {
	if len(b.faces) == 0 {
		return -1
	}

	closestIndex := 0
	minDistance := b.faces[0].Distance
	for i := 1; i < len(b.faces); i++ {
		if b.faces[i].Distance < minDistance {
			closestIndex = i
			minDistance = b.faces[i].Distance
		}
	}
	return closestIndex
}

// Expand adds a support point to the polytope:
//  1. Finds the faces visible from the support point
//  2. Identifies the boundary edges of the visible region
//  3. Removes the visible faces
//  4. Connects each boundary edge to the support point
//
// It returns false when no face can see the point, i.e. the polytope
// already reaches it.
func (b *PolytopeBuilder) Expand(support mgl64.Vec3) bool {
	b.findVisibleFaces(support)
	if len(b.visibleIndices) == 0 {
		return false
	}

	b.findBoundaryEdges()
	b.removeVisibleFaces()

	for _, edge := range b.edges {
		if edge.Count != 1 {
			continue
		}
		if face, ok := newFace(edge.A, edge.B, support, b.interior); ok {
			b.faces = append(b.faces, face)
		}
	}
	return len(b.faces) != 0
}

// findVisibleFaces collects the faces whose plane has the support point in front.
func (b *PolytopeBuilder) findVisibleFaces(support mgl64.Vec3) {
	b.visibleIndices = b.visibleIndices[:0]

	for i := range b.faces {
		face := &b.faces[i]
		if support.Sub(face.Points[0]).Dot(face.Normal) > visibilityTolerance {
			b.visibleIndices = append(b.visibleIndices, i)
		}
	}
}

func (b *PolytopeBuilder) findBoundaryEdges() {
	b.edges = b.edges[:0]

	for _, faceIdx := range b.visibleIndices {
		face := &b.faces[faceIdx]

		for _, edge := range [3]Edge{
			{face.Points[0], face.Points[1]},
			{face.Points[1], face.Points[2]},
			{face.Points[2], face.Points[0]},
		} {
			edge = normalizeEdge(edge)
			if idx := b.findEdgeIndex(edge); idx >= 0 {
				b.edges[idx].Count++
			} else {
				b.edges = append(b.edges, EdgeEntry{Edge: edge, Count: 1})
			}
		}
	}
}

// findEdgeIndex performs linear search for an edge in the edges buffer.
// Linear search is efficient for small edge counts (typically < 30).
func (b *PolytopeBuilder) findEdgeIndex(edge Edge) int {
	for i := range b.edges {
		if b.edges[i].Edge == edge {
			return i
		}
	}
	return -1
}

// removeVisibleFaces compacts the face list in place. visibleIndices is ascending.
func (b *PolytopeBuilder) removeVisibleFaces() {
	kept := b.faces[:0]
	next := 0
	for i, face := range b.faces {
		if next < len(b.visibleIndices) && b.visibleIndices[next] == i {
			next++
			continue
		}
		kept = append(kept, face)
	}
	b.faces = kept
}
