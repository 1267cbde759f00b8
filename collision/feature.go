package collision

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/psryland/rylogic-code-sub010/actor"
)

// contactPoint returns the point between two overlapping shapes along axis
// (unit, a→b). a2w and b2w are shape-to-world transforms.
//
// Algorithm:
//  1. Get the contact feature (point, edge or face) of each shape facing the other
//  2. Transform the features to world space
//  3. Take the feature with fewer points as incident, the other as reference.
//     Equal features are clipped both ways and averaged; two edges meet at
//     their closest points
//  4. Clip the incident feature against the reference feature's side planes
//  5. Place the centre of the clipped region on the mid-plane between the surfaces
func contactPoint(a actor.Shape, a2w mgl64.Mat4, b actor.Shape, b2w mgl64.Mat4, axis mgl64.Vec3) mgl64.Vec3 {
	featureA := worldFeature(a, a2w, axis)
	featureB := worldFeature(b, b2w, axis.Mul(-1))

	// Surface of a along the axis, and of b against it
	surfaceA := math.Inf(-1)
	for _, p := range featureA {
		surfaceA = math.Max(surfaceA, p.Dot(axis))
	}
	surfaceB := math.Inf(1)
	for _, p := range featureB {
		surfaceB = math.Min(surfaceB, p.Dot(axis))
	}
	mid := 0.5 * (surfaceA + surfaceB)

	incident, reference := featureB, featureA
	if len(featureA) < len(featureB) {
		incident, reference = featureA, featureB
	}

	var centre mgl64.Vec3
	switch {
	case len(incident) == 1 && len(reference) == 1:
		centre = incident[0].Add(reference[0]).Mul(0.5)
	case len(incident) == 1:
		centre = incident[0]
	case len(featureA) == len(featureB):
		// Neither feature leads: use both as the reference in turn
		centre = featureCentre(featureA, featureB, axis).Add(featureCentre(featureB, featureA, axis)).Mul(0.5)
	default:
		centre = featureCentre(incident, reference, axis)
	}

	return centre.Add(axis.Mul(mid - centre.Dot(axis)))
}

// featureCentre returns the centre of the part of incident that lies over reference.
func featureCentre(incident, reference []mgl64.Vec3, axis mgl64.Vec3) mgl64.Vec3 {
	if len(incident) == 2 && len(reference) == 2 {
		return segmentsCentre(incident, reference)
	}
	clipped := clipIncidentAgainstReference(incident, reference, axis)
	if len(clipped) == 0 {
		clipped = incident
	}
	return computeCenter(dedupe(clipped))
}

// segmentsCentre returns the midpoint of the closest points of segments p and
// q. Parallel segments use the middle of their overlap.
func segmentsCentre(p, q []mgl64.Vec3) mgl64.Vec3 {
	const eps = 1e-12

	d1 := p[1].Sub(p[0])
	d2 := q[1].Sub(q[0])
	r := p[0].Sub(q[0])
	a := d1.Dot(d1)
	e := d2.Dot(d2)
	f := d2.Dot(r)

	var s, t float64
	switch {
	case a < eps && e < eps:
	case a < eps:
		t = clamp01(f / e)
	case e < eps:
		s = clamp01(-d1.Dot(r) / a)
	default:
		c := d1.Dot(r)
		b := d1.Dot(d2)
		denom := a*e - b*b
		if denom <= eps*a*e {
			// q projected onto p, as parameters of p
			s0 := -c / a
			s1 := s0 + b/a
			lo := math.Max(0, math.Min(s0, s1))
			hi := math.Min(1, math.Max(s0, s1))
			s = clamp01(0.5 * (lo + hi))
			t = clamp01(p[0].Add(d1.Mul(s)).Sub(q[0]).Dot(d2) / e)
			break
		}
		s = clamp01((b*f - c*e) / denom)
		t = (b*s + f) / e
		if t < 0 {
			t, s = 0, clamp01(-c/a)
		} else if t > 1 {
			t, s = 1, clamp01((b-c)/a)
		}
	}

	onP := p[0].Add(d1.Mul(s))
	onQ := q[0].Add(d2.Mul(t))
	return onP.Add(onQ).Mul(0.5)
}

func clamp01(x float64) float64 {
	return math.Max(0, math.Min(1, x))
}

func worldFeature(s actor.Shape, s2w mgl64.Mat4, direction mgl64.Vec3) []mgl64.Vec3 {
	feature := s.ContactFeature(actor.TransformDir(actor.InvertFast(s2w), direction))
	out := make([]mgl64.Vec3, len(feature))
	for i, p := range feature {
		out[i] = actor.TransformPoint(s2w, p)
	}
	return out
}

// clipIncidentAgainstReference performs Sutherland-Hodgman polygon clipping.
//
// The incident polygon is clipped against the plane through each reference
// edge, perpendicular to the contact normal, keeping the side toward the
// reference centre. A two-point reference clips from both sides of its line,
// which reduces a crossing edge to the crossing point; its two passes already
// face opposite ways, so they are not oriented by the centre.
func clipIncidentAgainstReference(incident, reference []mgl64.Vec3, normal mgl64.Vec3) []mgl64.Vec3 {
	if len(reference) < 2 {
		return incident
	}

	output := incident
	center := computeCenter(reference)
	for i := 0; i < len(reference); i++ {
		if len(output) == 0 {
			break
		}

		v1 := reference[i]
		v2 := reference[(i+1)%len(reference)]

		clipNormal := v2.Sub(v1).Cross(normal)
		if clipNormal.LenSqr() < 1e-20 {
			continue
		}
		clipNormal = clipNormal.Normalize()
		if len(reference) > 2 && center.Sub(v1).Dot(clipNormal) < 0 {
			clipNormal = clipNormal.Mul(-1)
		}

		output = clipPolygonAgainstPlane(output, v1, clipNormal)
	}
	return output
}

// clipPolygonAgainstPlane implements Sutherland-Hodgman for a single plane
func clipPolygonAgainstPlane(polygon []mgl64.Vec3, planePoint, planeNormal mgl64.Vec3) []mgl64.Vec3 {
	if len(polygon) == 0 {
		return polygon
	}

	const tolerance = 1e-6

	// A segment is not closed: clip it once, not as the polygon a→b→a
	edges := len(polygon)
	if edges == 2 {
		edges = 1
	}

	var output []mgl64.Vec3
	for i := 0; i < edges; i++ {
		current := polygon[i]
		next := polygon[(i+1)%len(polygon)]

		currentDist := current.Sub(planePoint).Dot(planeNormal)
		nextDist := next.Sub(planePoint).Dot(planeNormal)

		if currentDist >= -tolerance {
			output = append(output, current)
			if nextDist < -tolerance {
				output = append(output, lineIntersectPlane(current, next, planePoint, planeNormal))
			}
		} else if nextDist >= -tolerance {
			output = append(output, lineIntersectPlane(current, next, planePoint, planeNormal))
		}
		if edges == 1 && nextDist >= -tolerance {
			output = append(output, next)
		}
	}
	return output
}

// lineIntersectPlane calculates the intersection between a line segment and a plane
func lineIntersectPlane(p1, p2, planePoint, planeNormal mgl64.Vec3) mgl64.Vec3 {
	dir := p2.Sub(p1)
	dist := p1.Sub(planePoint).Dot(planeNormal)
	denom := dir.Dot(planeNormal)

	if math.Abs(denom) < 1e-10 {
		return p1 // Segment parallel to plane
	}

	t := -dist / denom
	t = math.Max(0, math.Min(1, t))

	return p1.Add(dir.Mul(t))
}

// computeCenter calculates the centroid of a set of points
func computeCenter(points []mgl64.Vec3) mgl64.Vec3 {
	if len(points) == 0 {
		return mgl64.Vec3{0, 0, 0}
	}

	sum := mgl64.Vec3{0, 0, 0}
	for _, p := range points {
		sum = sum.Add(p)
	}
	return sum.Mul(1.0 / float64(len(points)))
}

// dedupe drops points repeated by the clipper.
func dedupe(points []mgl64.Vec3) []mgl64.Vec3 {
	out := points[:0:0]
	for _, p := range points {
		seen := false
		for _, q := range out {
			if p.Sub(q).LenSqr() < 1e-18 {
				seen = true
				break
			}
		}
		if !seen {
			out = append(out, p)
		}
	}
	return out
}
