package physics

import (
	"cmp"
	"slices"

	"github.com/dhconnelly/rtreego"

	"github.com/psryland/rylogic-code-sub010/actor"
)

// BroadPhase finds the pairs of bodies whose world bounding boxes overlap.
// Pairs of two static bodies, and bodies without a shape, are never reported.
// Each unordered pair is reported once, with a before b in bodies.
type BroadPhase interface {
	EnumeratePairs(bodies []*actor.RigidBody, fn func(a, b *actor.RigidBody))
}

// candidate reports whether two bodies may collide at all.
func candidate(a, b *actor.RigidBody) bool {
	if a.IsStatic() && b.IsStatic() {
		return false
	}
	return a.Shape() != nil && b.Shape() != nil
}

// BruteForce tests every pair of bodies. It is the reference broad phase.
type BruteForce struct{}

func (BruteForce) EnumeratePairs(bodies []*actor.RigidBody, fn func(a, b *actor.RigidBody)) {
	boxes := make([]actor.AABB, len(bodies))
	for i, body := range bodies {
		boxes[i] = body.BBoxWS()
	}

	for i, a := range bodies {
		for j := i + 1; j < len(bodies); j++ {
			b := bodies[j]
			if candidate(a, b) && boxes[i].Overlaps(boxes[j]) {
				fn(a, b)
			}
		}
	}
}

// RTree indexes the bodies' bounding boxes in an R-tree rebuilt on every call.
type RTree struct {
	// MinChildren and MaxChildren bound the branching factor; zero selects 4 and 16
	MinChildren, MaxChildren int
}

// rtreeMargin keeps degenerate (flat) boxes valid as R-tree rectangles.
const rtreeMargin = 1e-9

type rtreeEntry struct {
	index int
	box   actor.AABB
	rect  rtreego.Rect
}

func (e *rtreeEntry) Bounds() rtreego.Rect {
	return e.rect
}

func rect(box actor.AABB) (rtreego.Rect, error) {
	box = box.Grow(rtreeMargin)
	return rtreego.NewRectFromPoints(
		rtreego.Point{box.Min.X(), box.Min.Y(), box.Min.Z()},
		rtreego.Point{box.Max.X(), box.Max.Y(), box.Max.Z()},
	)
}

func (r RTree) EnumeratePairs(bodies []*actor.RigidBody, fn func(a, b *actor.RigidBody)) {
	minChildren, maxChildren := r.MinChildren, r.MaxChildren
	if minChildren <= 0 {
		minChildren = 4
	}
	if maxChildren < 2*minChildren {
		maxChildren = max(16, 2*minChildren)
	}

	entries := make([]*rtreeEntry, 0, len(bodies))
	objs := make([]rtreego.Spatial, 0, len(bodies))
	for i, body := range bodies {
		if body.Shape() == nil {
			continue
		}
		box := body.BBoxWS()
		rc, err := rect(box)
		if err != nil {
			// Non-finite box: it cannot overlap anything
			continue
		}
		e := &rtreeEntry{index: i, box: box, rect: rc}
		entries = append(entries, e)
		objs = append(objs, e)
	}
	tree := rtreego.NewTree(3, minChildren, maxChildren, objs...)

	for _, e := range entries {
		a := bodies[e.index]
		hits := tree.SearchIntersect(e.rect)

		// The tree returns hits in no particular order; report them in body order
		others := make([]*rtreeEntry, 0, len(hits))
		for _, h := range hits {
			other := h.(*rtreeEntry)
			if other.index > e.index {
				others = append(others, other)
			}
		}
		slices.SortFunc(others, func(x, y *rtreeEntry) int { return cmp.Compare(x.index, y.index) })

		for _, other := range others {
			b := bodies[other.index]
			if candidate(a, b) && e.box.Overlaps(other.box) {
				fn(a, b)
			}
		}
	}
}
