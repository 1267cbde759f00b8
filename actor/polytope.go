package actor

import (
	"cmp"
	"math"
	"slices"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/pkg/errors"
	"github.com/samber/lo"
)

// Polytope is a convex hull given by its vertices and a vertex adjacency graph.
//
// Nbrs[i][0] is the vertex antipodal to vertex i (the vertex most extreme
// along -Verts[i]); the remaining entries of Nbrs[i] are the vertices sharing
// an edge with i. Faces is optional and only used for validation, volume and
// the centroid.
type Polytope struct {
	Header
	Verts []mgl64.Vec3
	Nbrs  [][]int
	Faces [][3]int

	completed bool
}

// NewPolytope creates an incomplete polytope from vertices, the neighbour
// graph and optional faces. Complete must be called before it is used.
func NewPolytope(verts []mgl64.Vec3, nbrs [][]int, faces [][3]int, opts ...Option) *Polytope {
	return &Polytope{Header: newHeader(opts), Verts: verts, Nbrs: nbrs, Faces: faces}
}

// NewPolytopeFromFaces derives the neighbour graph and antipodal vertices
// from a triangulated hull and completes the polytope.
func NewPolytopeFromFaces(verts []mgl64.Vec3, faces [][3]int, opts ...Option) (*Polytope, error) {
	for _, f := range faces {
		for _, i := range f {
			if i < 0 || i >= len(verts) {
				return nil, errors.Wrapf(ErrInvalidShape, "face index %d out of range", i)
			}
		}
	}

	edges := make([][]int, len(verts))
	link := func(a, b int) {
		if !lo.Contains(edges[a], b) {
			edges[a] = append(edges[a], b)
		}
	}
	for _, f := range faces {
		for k := 0; k < 3; k++ {
			a, b := f[k], f[(k+1)%3]
			link(a, b)
			link(b, a)
		}
	}

	nbrs := make([][]int, len(verts))
	for i, v := range verts {
		anti := i
		best := math.Inf(-1)
		for j, w := range verts {
			if j == i {
				continue
			}
			if d := -v.Dot(w); d > best {
				anti, best = j, d
			}
		}
		nbrs[i] = append([]int{anti}, edges[i]...)
	}

	p := NewPolytope(verts, nbrs, faces, opts...)
	if err := p.Complete(); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *Polytope) Type() ShapeType { return ShapeTypePolytope }

func (p *Polytope) IsComplete() bool { return p.completed }

// Complete validates the polytope and computes its bounding box and size. It is idempotent.
func (p *Polytope) Complete() error {
	if p.completed {
		return nil
	}
	if err := p.Validate(); err != nil {
		return err
	}

	box := EmptyAABB()
	for _, v := range p.Verts {
		box = box.Encompass(v)
	}
	p.BBox = box
	p.Size = polytopeSize(p)
	p.completed = true
	return nil
}

func (p *Polytope) Validate() error {
	if err := ValidatePolytope(p.Verts, p.Nbrs, p.Faces); err != nil {
		return err
	}
	if !p.containsOrigin() {
		return errors.Wrap(ErrInvalidShape, "polytope does not contain its shape origin")
	}
	return validateHeader(&p.Header)
}

// ValidatePolytope checks a vertex/neighbour/face description of a convex hull:
// indices are in range, no vertex neighbours itself, every edge is recorded in
// both directions, and when faces are given, Euler's formula V - E + F = 2 holds.
func ValidatePolytope(verts []mgl64.Vec3, nbrs [][]int, faces [][3]int) error {
	if len(verts) == 0 {
		return errors.Wrap(ErrInvalidShape, "polytope has no vertices")
	}
	if len(nbrs) != len(verts) {
		return errors.Wrapf(ErrInvalidShape, "%d neighbour lists for %d vertices", len(nbrs), len(verts))
	}
	for i, v := range verts {
		for k := 0; k < 3; k++ {
			if math.IsNaN(v[k]) || math.IsInf(v[k], 0) {
				return errors.Wrapf(ErrInvalidShape, "vertex %d is not finite", i)
			}
		}
	}

	for i, list := range nbrs {
		if len(list) == 0 {
			return errors.Wrapf(ErrInvalidShape, "vertex %d has no antipodal entry", i)
		}
		if list[0] < 0 || list[0] >= len(verts) {
			return errors.Wrapf(ErrInvalidShape, "vertex %d antipodal index %d out of range", i, list[0])
		}
	}

	edges := 0
	for i, list := range nbrs {
		for _, j := range list[1:] {
			if j < 0 || j >= len(verts) {
				return errors.Wrapf(ErrInvalidShape, "vertex %d neighbour index %d out of range", i, j)
			}
			if j == i {
				return errors.Wrapf(ErrInvalidShape, "vertex %d is its own neighbour", i)
			}
			if !lo.Contains(nbrs[j][1:], i) {
				return errors.Wrapf(ErrInvalidShape, "edge %d-%d is not recorded at %d", i, j, j)
			}
			edges++
		}
	}

	if len(faces) == 0 {
		return nil
	}
	for _, f := range faces {
		for _, i := range f {
			if i < 0 || i >= len(verts) {
				return errors.Wrapf(ErrInvalidShape, "face index %d out of range", i)
			}
		}
	}
	if euler := len(verts) - edges/2 + len(faces); euler != 2 {
		return errors.Wrapf(ErrInvalidShape, "V - E + F = %d, expected 2", euler)
	}
	return nil
}

// containsOrigin checks the shape-space origin is inside (or on) the hull.
func (p *Polytope) containsOrigin() bool {
	scale := 0.0
	for _, v := range p.Verts {
		scale = math.Max(scale, v.Len())
	}
	tol := 1e-6 * math.Max(1, scale)

	if len(p.Faces) != 0 {
		mean := p.vertexMean()
		for _, f := range p.Faces {
			a, b, c := p.Verts[f[0]], p.Verts[f[1]], p.Verts[f[2]]
			n := b.Sub(a).Cross(c.Sub(a))
			if n.LenSqr() == 0 {
				continue
			}
			n = n.Normalize()
			if n.Dot(mean.Sub(a)) > 0 {
				n = n.Mul(-1)
			}
			if n.Dot(a.Mul(-1)) > tol {
				return false
			}
		}
		return true
	}

	// Without faces, require the hull to reach past the origin in a spread of directions
	for _, dir := range sampleDirections {
		if p.bruteSupport(dir).Dot(dir) < -tol {
			return false
		}
	}
	return true
}

var sampleDirections = func() []mgl64.Vec3 {
	out := []mgl64.Vec3{{1, 0, 0}, {-1, 0, 0}, {0, 1, 0}, {0, -1, 0}, {0, 0, 1}, {0, 0, -1}}
	for _, x := range []float64{-1, 1} {
		for _, y := range []float64{-1, 1} {
			for _, z := range []float64{-1, 1} {
				out = append(out, mgl64.Vec3{x, y, z}.Normalize())
			}
		}
	}
	return out
}()

// SupportVertex returns the index of the vertex most extreme along direction,
// hill-climbing the neighbour graph from hint. Neighbours are scanned in groups
// of four. The climb is capped at one step per vertex.
func (p *Polytope) SupportVertex(direction mgl64.Vec3, hint int) (int, error) {
	if !p.completed {
		return -1, errors.Wrap(ErrIncomplete, "polytope support vertex")
	}
	if len(p.Verts) == 0 {
		return -1, errors.Wrap(ErrInvalidShape, "polytope has no vertices")
	}
	if hint < 0 || hint >= len(p.Verts) {
		hint = 0
	}

	idx := hint
	best := p.Verts[idx].Dot(direction)

	// Jumping to the antipodal vertex first skips most of the climb when the hint faces away
	if anti := p.Nbrs[idx][0]; anti != idx {
		if d := p.Verts[anti].Dot(direction); d > best {
			idx, best = anti, d
		}
	}

	for step := 0; step <= len(p.Verts); step++ {
		nbrs := p.Nbrs[idx][1:]
		next := idx

		i := 0
		for ; i+4 <= len(nbrs); i += 4 {
			d0 := p.Verts[nbrs[i+0]].Dot(direction)
			d1 := p.Verts[nbrs[i+1]].Dot(direction)
			d2 := p.Verts[nbrs[i+2]].Dot(direction)
			d3 := p.Verts[nbrs[i+3]].Dot(direction)
			if d0 > best {
				next, best = nbrs[i+0], d0
			}
			if d1 > best {
				next, best = nbrs[i+1], d1
			}
			if d2 > best {
				next, best = nbrs[i+2], d2
			}
			if d3 > best {
				next, best = nbrs[i+3], d3
			}
		}
		for ; i < len(nbrs); i++ {
			if d := p.Verts[nbrs[i]].Dot(direction); d > best {
				next, best = nbrs[i], d
			}
		}

		if next == idx {
			return idx, nil
		}
		idx = next
	}
	return idx, errors.Wrapf(ErrNoConvergence, "support vertex search from %d", hint)
}

func (p *Polytope) Support(direction mgl64.Vec3) mgl64.Vec3 {
	idx, err := p.SupportVertex(direction, 0)
	if err != nil {
		return p.bruteSupport(direction)
	}
	return p.Verts[idx]
}

// HintedSupport is a polytope support function that starts each climb from
// the vertex the previous call returned. It carries state, so use one per query.
type HintedSupport struct {
	Polytope *Polytope
	hint     int
}

func (h *HintedSupport) Support(direction mgl64.Vec3) mgl64.Vec3 {
	idx, err := h.Polytope.SupportVertex(direction, h.hint)
	if err != nil {
		return h.Polytope.bruteSupport(direction)
	}
	h.hint = idx
	return h.Polytope.Verts[idx]
}

func (p *Polytope) bruteSupport(direction mgl64.Vec3) mgl64.Vec3 {
	best := p.Verts[0]
	bestDot := best.Dot(direction)
	for _, v := range p.Verts[1:] {
		if d := v.Dot(direction); d > bestDot {
			best, bestDot = v, d
		}
	}
	return best
}

// ContactFeature returns the vertices within a small tolerance of the
// support plane, ordered counter-clockwise around direction.
func (p *Polytope) ContactFeature(direction mgl64.Vec3) []mgl64.Vec3 {
	const planar = 1e-3
	if direction.LenSqr() == 0 {
		return []mgl64.Vec3{p.Verts[0]}
	}
	dir := direction.Normalize()
	max := p.Support(dir).Dot(dir)
	tol := planar * math.Max(p.BBox.Radius().Len(), 1e-9)

	var feature []mgl64.Vec3
	for _, v := range p.Verts {
		if v.Dot(dir) >= max-tol {
			feature = append(feature, v)
		}
	}
	if len(feature) < 3 {
		return feature
	}

	centre := mgl64.Vec3{}
	for _, v := range feature {
		centre = centre.Add(v)
	}
	centre = centre.Mul(1 / float64(len(feature)))
	t1, t2 := TangentBasis(dir)
	angle := func(v mgl64.Vec3) float64 {
		d := v.Sub(centre)
		return math.Atan2(d.Dot(t2), d.Dot(t1))
	}
	slices.SortFunc(feature, func(a, b mgl64.Vec3) int {
		return cmp.Compare(angle(a), angle(b))
	})
	return feature
}

func (p *Polytope) vertexMean() mgl64.Vec3 {
	sum := mgl64.Vec3{}
	for _, v := range p.Verts {
		sum = sum.Add(v)
	}
	return sum.Mul(1 / float64(len(p.Verts)))
}

// Volume returns the enclosed volume, or 0 when no faces are known.
func (p *Polytope) Volume() float64 {
	vol, _ := p.volumeAndMoment()
	return vol
}

func (p *Polytope) volumeAndMoment() (float64, mgl64.Vec3) {
	vol := 0.0
	moment := mgl64.Vec3{}
	for _, f := range p.Faces {
		a, b, c := p.Verts[f[0]], p.Verts[f[1]], p.Verts[f[2]]
		// Tetrahedron (origin, a, b, c); the origin is inside, so |det| is the volume
		v := math.Abs(a.Dot(b.Cross(c))) / 6
		vol += v
		moment = moment.Add(a.Add(b).Add(c).Mul(v / 4))
	}
	return vol, moment
}

// Centroid returns the centre of volume. For flat or face-less polytopes it
// falls back to the area-weighted face centroid, then to the vertex mean.
func (p *Polytope) Centroid() mgl64.Vec3 {
	scale := p.BBox.Radius().Len()
	vol, moment := p.volumeAndMoment()
	if vol > 1e-12*scale*scale*scale && vol > 0 {
		return moment.Mul(1 / vol)
	}

	area := 0.0
	sum := mgl64.Vec3{}
	for _, f := range p.Faces {
		a, b, c := p.Verts[f[0]], p.Verts[f[1]], p.Verts[f[2]]
		w := b.Sub(a).Cross(c.Sub(a)).Len() / 2
		area += w
		sum = sum.Add(a.Add(b).Add(c).Mul(w / 3))
	}
	if area > 0 {
		return sum.Mul(1 / area)
	}
	return p.vertexMean()
}
