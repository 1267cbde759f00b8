package actor

import (
	"errors"
	"math"
	"math/rand"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

func TestValidatePolytope(t *testing.T) {
	verts, faces := cube(1)
	good, err := NewPolytopeFromFaces(verts, faces)
	if err != nil {
		t.Fatal(err)
	}

	copyNbrs := func() [][]int {
		out := make([][]int, len(good.Nbrs))
		for i, n := range good.Nbrs {
			out[i] = append([]int(nil), n...)
		}
		return out
	}

	tests := []struct {
		name   string
		mutate func(nbrs [][]int) ([][]int, [][3]int)
	}{
		{"one-way edge", func(nbrs [][]int) ([][]int, [][3]int) {
			nbrs[0] = nbrs[0][:len(nbrs[0])-1]
			return nbrs, faces
		}},
		{"self neighbour", func(nbrs [][]int) ([][]int, [][3]int) {
			nbrs[2] = append(nbrs[2], 2)
			return nbrs, faces
		}},
		{"index out of range", func(nbrs [][]int) ([][]int, [][3]int) {
			nbrs[1] = append(nbrs[1], 42)
			return nbrs, faces
		}},
		{"missing antipodal", func(nbrs [][]int) ([][]int, [][3]int) {
			nbrs[3] = nil
			return nbrs, faces
		}},
		{"wrong vertex count", func(nbrs [][]int) ([][]int, [][3]int) {
			return nbrs[:7], faces
		}},
		{"euler violated", func(nbrs [][]int) ([][]int, [][3]int) {
			return nbrs, faces[:11]
		}},
	}

	if err := ValidatePolytope(verts, good.Nbrs, faces); err != nil {
		t.Fatalf("valid cube rejected: %v", err)
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			nbrs, f := tt.mutate(copyNbrs())
			if err := ValidatePolytope(verts, nbrs, f); !errors.Is(err, ErrInvalidShape) {
				t.Errorf("ValidatePolytope() error = %v, want ErrInvalidShape", err)
			}
		})
	}
}

func TestPolytope_OriginOutside(t *testing.T) {
	verts, faces := cube(1)
	for i := range verts {
		verts[i] = verts[i].Add(mgl64.Vec3{5, 0, 0})
	}
	if _, err := NewPolytopeFromFaces(verts, faces); !errors.Is(err, ErrInvalidShape) {
		t.Errorf("error = %v, want ErrInvalidShape", err)
	}
}

func TestPolytope_IncompleteUntilComplete(t *testing.T) {
	verts, faces := cube(1)
	ref := mustCube(t, 1)

	p := NewPolytope(verts, ref.Nbrs, faces)
	if p.IsComplete() {
		t.Fatal("new polytope should be incomplete")
	}
	if err := p.Complete(); err != nil {
		t.Fatal(err)
	}
	if err := p.Complete(); err != nil {
		t.Fatalf("second Complete() error = %v", err)
	}
	if p.Size != ref.Size || p.BBox != ref.BBox {
		t.Errorf("completed polytope differs: %v/%v vs %v/%v", p.Size, p.BBox, ref.Size, ref.BBox)
	}
}

// randomHull builds a convex polytope from points on a sphere, which are all hull vertices.
func randomHull(t *testing.T, rng *rand.Rand, n int) *Polytope {
	t.Helper()
	verts := make([]mgl64.Vec3, 0, n)
	for len(verts) < n {
		v := mgl64.Vec3{rng.NormFloat64(), rng.NormFloat64(), rng.NormFloat64()}
		if v.Len() > 1e-3 {
			verts = append(verts, v.Normalize())
		}
	}

	// Brute-force hull faces: a triple is a face when every other point is on one side
	var faces [][3]int
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			for k := j + 1; k < n; k++ {
				nrm := verts[j].Sub(verts[i]).Cross(verts[k].Sub(verts[i]))
				above, below := 0, 0
				for m := 0; m < n; m++ {
					if m == i || m == j || m == k {
						continue
					}
					d := nrm.Dot(verts[m].Sub(verts[i]))
					if d > 1e-12 {
						above++
					} else if d < -1e-12 {
						below++
					}
				}
				if above == 0 || below == 0 {
					faces = append(faces, [3]int{i, j, k})
				}
			}
		}
	}

	p, err := NewPolytopeFromFaces(verts, faces)
	if err != nil {
		t.Fatalf("NewPolytopeFromFaces() error = %v", err)
	}
	return p
}

func TestPolytope_SupportVertexMatchesBruteForce(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	p := randomHull(t, rng, 24)

	for i := 0; i < 200; i++ {
		dir := mgl64.Vec3{rng.NormFloat64(), rng.NormFloat64(), rng.NormFloat64()}
		hint := rng.Intn(len(p.Verts))

		idx, err := p.SupportVertex(dir, hint)
		if err != nil {
			t.Fatalf("SupportVertex() error = %v", err)
		}
		want := p.bruteSupport(dir)
		if !floatEqual(p.Verts[idx].Dot(dir), want.Dot(dir), 1e-12) {
			t.Fatalf("SupportVertex(%v, %d) = %v, brute force %v", dir, hint, p.Verts[idx], want)
		}
	}
}

func TestPolytope_SupportVertexChain(t *testing.T) {
	// A path graph forces the climb to visit every vertex
	p := &Polytope{
		Verts:     []mgl64.Vec3{{1, 0, 0}, {2, 0, 0}, {3, 0, 0}, {4, 0, 0}},
		Nbrs:      [][]int{{0, 1}, {1, 0, 2}, {2, 1, 3}, {3, 2}},
		completed: true,
	}
	idx, err := p.SupportVertex(mgl64.Vec3{1, 0, 0}, 0)
	if err != nil || idx != 3 {
		t.Errorf("SupportVertex() = %d, %v, want 3", idx, err)
	}

	idx, err = p.SupportVertex(mgl64.Vec3{-1, 0, 0}, 99)
	if err != nil || idx != 0 {
		t.Errorf("SupportVertex() with bad hint = %d, %v, want 0", idx, err)
	}
}

func TestPolytope_SupportVertexIncomplete(t *testing.T) {
	verts, faces := cube(1)
	ref := mustCube(t, 1)
	p := NewPolytope(verts, ref.Nbrs, faces)

	if _, err := p.SupportVertex(mgl64.Vec3{1, 1, 1}, 0); !errors.Is(err, ErrIncomplete) {
		t.Errorf("SupportVertex() before Complete error = %v, want ErrIncomplete", err)
	}
	if got := p.Support(mgl64.Vec3{1, 1, 1}); got != (mgl64.Vec3{1, 1, 1}) {
		t.Errorf("Support() before Complete = %v, want %v", got, mgl64.Vec3{1, 1, 1})
	}

	if err := p.Complete(); err != nil {
		t.Fatal(err)
	}
	if _, err := p.SupportVertex(mgl64.Vec3{1, 1, 1}, 0); err != nil {
		t.Errorf("SupportVertex() after Complete error = %v", err)
	}
}

func TestHintedSupport(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	p := randomHull(t, rng, 32)
	h := &HintedSupport{Polytope: p}

	// A slowly turning direction keeps each answer next to the previous one
	for i := 0; i < 300; i++ {
		angle := float64(i) * 0.05
		dir := mgl64.Vec3{math.Cos(angle), math.Sin(angle), math.Sin(0.3 * angle)}
		got := h.Support(dir)
		want := p.bruteSupport(dir)
		if !floatEqual(got.Dot(dir), want.Dot(dir), 1e-12) {
			t.Fatalf("step %d: Support(%v) = %v, brute force %v", i, dir, got, want)
		}
		if p.Verts[h.hint] != got {
			t.Fatalf("step %d: hint %d does not track the returned vertex", i, h.hint)
		}
	}
}

func TestPolytope_ContactFeature(t *testing.T) {
	p := mustCube(t, 1)

	face := p.ContactFeature(mgl64.Vec3{0, 0, 1})
	if len(face) != 4 {
		t.Fatalf("face feature has %d points", len(face))
	}
	// Ordered around the face: consecutive cross products agree in sign
	for i := range face {
		a, b, c := face[i], face[(i+1)%4], face[(i+2)%4]
		if b.Sub(a).Cross(c.Sub(b)).Z() <= 0 {
			t.Fatalf("face points not ordered counter-clockwise: %v", face)
		}
	}

	if edge := p.ContactFeature(mgl64.Vec3{1, 1, 0}); len(edge) != 2 {
		t.Errorf("edge feature = %v", edge)
	}
	if corner := p.ContactFeature(mgl64.Vec3{1, 2, 3}); len(corner) != 1 {
		t.Errorf("corner feature = %v", corner)
	}
}

func TestPolytope_Centroid(t *testing.T) {
	t.Run("solid", func(t *testing.T) {
		// A cube shifted so its centre is not the shape origin
		verts, faces := cube(1)
		for i := range verts {
			verts[i] = verts[i].Add(mgl64.Vec3{0.5, 0, 0})
		}
		p, err := NewPolytopeFromFaces(verts, faces)
		if err != nil {
			t.Fatal(err)
		}
		if !vec3Equal(p.Centroid(), mgl64.Vec3{0.5, 0, 0}, 1e-12) {
			t.Errorf("Centroid() = %v, want {0.5 0 0}", p.Centroid())
		}
		if !floatEqual(p.Volume(), 8, 1e-12) {
			t.Errorf("Volume() = %v, want 8", p.Volume())
		}
	})

	t.Run("flat falls back to vertices", func(t *testing.T) {
		verts := []mgl64.Vec3{{-1, -1, 0}, {1, -1, 0}, {1, 1, 0}, {-1, 1, 0}}
		nbrs := [][]int{{2, 1, 3}, {3, 0, 2}, {0, 1, 3}, {1, 2, 0}}
		p := NewPolytope(verts, nbrs, nil)
		if err := p.Complete(); err != nil {
			t.Fatal(err)
		}
		if c := p.Centroid(); !vec3Equal(c, mgl64.Vec3{}, 1e-12) || math.IsNaN(c.X()) {
			t.Errorf("Centroid() = %v, want origin", c)
		}
	})
}
