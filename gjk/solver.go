package gjk

import (
	"github.com/go-gl/mathgl/mgl64"
)

// solver is the sub-simplex solver shared by Distance and RayCast.
// Each vertex y[i] remembers the support points that produced it: a[i] on
// the first shape and b[i] on the second (zero for ray casts).
type solver struct {
	y      [4]mgl64.Vec3
	a      [4]mgl64.Vec3
	b      [4]mgl64.Vec3
	lambda [4]float64
	n      int
}

func (s *solver) add(y, a, b mgl64.Vec3) {
	s.y[s.n] = y
	s.a[s.n] = a
	s.b[s.n] = b
	s.n++
}

// contains reports whether y is already a vertex of the simplex.
func (s *solver) contains(y mgl64.Vec3) bool {
	for i := 0; i < s.n; i++ {
		if s.y[i].Sub(y).LenSqr() < 1e-20 {
			return true
		}
	}
	return false
}

// keep reduces the simplex to the listed vertices with the given weights.
func (s *solver) keep(idx []int, lambda []float64) {
	var y, a, b [4]mgl64.Vec3
	for k, i := range idx {
		y[k], a[k], b[k] = s.y[i], s.a[i], s.b[i]
		s.lambda[k] = lambda[k]
	}
	s.y, s.a, s.b = y, a, b
	s.n = len(idx)
}

// point returns Σ λᵢ·pᵢ over one of the vertex arrays.
func (s *solver) point(p *[4]mgl64.Vec3) mgl64.Vec3 {
	var sum mgl64.Vec3
	for i := 0; i < s.n; i++ {
		sum = sum.Add(p[i].Mul(s.lambda[i]))
	}
	return sum
}

// closest reduces the simplex to the smallest sub-simplex that contains the
// point of the simplex nearest the origin, and returns that point.
// A full tetrahedron is only kept when it encloses the origin.
func (s *solver) closest() mgl64.Vec3 {
	switch s.n {
	case 1:
		s.lambda[0] = 1
	case 2:
		s.segment(0, 1)
	case 3:
		s.triangle(0, 1, 2)
	case 4:
		s.tetrahedron()
	}
	return s.point(&s.y)
}

func (s *solver) segment(i, j int) {
	idx, lambda := closestOnSegment(s.y[i], s.y[j])
	s.keep(remap(idx, i, j), lambda)
}

func (s *solver) triangle(i, j, k int) {
	idx, lambda := closestOnTriangle(s.y[i], s.y[j], s.y[k])
	s.keep(remap(idx, i, j, k), lambda)
}

func (s *solver) tetrahedron() {
	p := s.y
	faces := [4][4]int{
		{0, 1, 2, 3},
		{0, 2, 3, 1},
		{0, 3, 1, 2},
		{1, 3, 2, 0},
	}

	bestDist := -1.0
	var bestIdx []int
	var bestLambda []float64
	inside := true
	for _, f := range faces {
		if !originOutsideOfPlane(p[f[0]], p[f[1]], p[f[2]], p[f[3]]) {
			continue
		}
		inside = false
		idx, lambda := closestOnTriangle(p[f[0]], p[f[1]], p[f[2]])
		var q mgl64.Vec3
		for k, i := range idx {
			q = q.Add(p[f[i]].Mul(lambda[k]))
		}
		if d := q.LenSqr(); bestDist < 0 || d < bestDist {
			bestDist = d
			bestIdx = remap(idx, f[0], f[1], f[2])
			bestLambda = lambda
		}
	}

	if inside {
		s.keep([]int{0, 1, 2, 3}, tetrahedronWeights(p[0], p[1], p[2], p[3]))
		return
	}
	s.keep(bestIdx, bestLambda)
}

// remap converts local vertex indices into simplex indices.
func remap(idx []int, ids ...int) []int {
	out := make([]int, len(idx))
	for k, i := range idx {
		out[k] = ids[i]
	}
	return out
}

func closestOnSegment(a, b mgl64.Vec3) ([]int, []float64) {
	ab := b.Sub(a)
	denom := ab.LenSqr()
	if denom < 1e-24 {
		return []int{0}, []float64{1}
	}
	t := -a.Dot(ab) / denom
	switch {
	case t <= 0:
		return []int{0}, []float64{1}
	case t >= 1:
		return []int{1}, []float64{1}
	}
	return []int{0, 1}, []float64{1 - t, t}
}

// closestOnTriangle classifies the origin against the 7 Voronoi regions of
// the triangle abc (Ericson, Real-Time Collision Detection 5.1.5).
func closestOnTriangle(a, b, c mgl64.Vec3) ([]int, []float64) {
	ab := b.Sub(a)
	ac := c.Sub(a)

	if ab.Cross(ac).LenSqr() < 1e-24 {
		return closestOnDegenerateTriangle(a, b, c)
	}

	ap := a.Mul(-1)
	d1 := ab.Dot(ap)
	d2 := ac.Dot(ap)
	if d1 <= 0 && d2 <= 0 {
		return []int{0}, []float64{1}
	}

	bp := b.Mul(-1)
	d3 := ab.Dot(bp)
	d4 := ac.Dot(bp)
	if d3 >= 0 && d4 <= d3 {
		return []int{1}, []float64{1}
	}

	vc := d1*d4 - d3*d2
	if vc <= 0 && d1 >= 0 && d3 <= 0 {
		v := d1 / (d1 - d3)
		return []int{0, 1}, []float64{1 - v, v}
	}

	cp := c.Mul(-1)
	d5 := ab.Dot(cp)
	d6 := ac.Dot(cp)
	if d6 >= 0 && d5 <= d6 {
		return []int{2}, []float64{1}
	}

	vb := d5*d2 - d1*d6
	if vb <= 0 && d2 >= 0 && d6 <= 0 {
		w := d2 / (d2 - d6)
		return []int{0, 2}, []float64{1 - w, w}
	}

	va := d3*d6 - d5*d4
	if va <= 0 && (d4-d3) >= 0 && (d5-d6) >= 0 {
		w := (d4 - d3) / ((d4 - d3) + (d5 - d6))
		return []int{1, 2}, []float64{1 - w, w}
	}

	denom := 1.0 / (va + vb + vc)
	v := vb * denom
	w := vc * denom
	return []int{0, 1, 2}, []float64{1 - v - w, v, w}
}

// closestOnDegenerateTriangle handles collinear or coincident vertices by
// taking the best of the three edges.
func closestOnDegenerateTriangle(a, b, c mgl64.Vec3) ([]int, []float64) {
	pts := [3]mgl64.Vec3{a, b, c}
	edges := [3][2]int{{0, 1}, {1, 2}, {0, 2}}

	bestDist := -1.0
	var bestIdx []int
	var bestLambda []float64
	for _, e := range edges {
		idx, lambda := closestOnSegment(pts[e[0]], pts[e[1]])
		var q mgl64.Vec3
		for k, i := range idx {
			q = q.Add(pts[e[i]].Mul(lambda[k]))
		}
		if d := q.LenSqr(); bestDist < 0 || d < bestDist {
			bestDist = d
			bestIdx = remap(idx, e[0], e[1])
			bestLambda = lambda
		}
	}
	return bestIdx, bestLambda
}

// originOutsideOfPlane reports whether the origin and d lie on opposite sides
// of the plane through a, b, c. Flat tetrahedra report every face as outside.
func originOutsideOfPlane(a, b, c, d mgl64.Vec3) bool {
	n := b.Sub(a).Cross(c.Sub(a))
	signO := a.Mul(-1).Dot(n)
	signD := d.Sub(a).Dot(n)
	if signD*signD < 1e-24 {
		return true
	}
	return signO*signD < 0
}

// tetrahedronWeights returns the barycentric coordinates of the origin.
func tetrahedronWeights(a, b, c, d mgl64.Vec3) []float64 {
	vol := func(p, q, r, s mgl64.Vec3) float64 {
		return q.Sub(p).Cross(r.Sub(p)).Dot(s.Sub(p))
	}
	total := vol(a, b, c, d)
	if total == 0 {
		return []float64{0.25, 0.25, 0.25, 0.25}
	}
	var o mgl64.Vec3
	return []float64{
		vol(o, b, c, d) / total,
		vol(a, o, c, d) / total,
		vol(a, b, o, d) / total,
		vol(a, b, c, o) / total,
	}
}
