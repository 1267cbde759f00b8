package gjk

import (
	"math"
	"testing"

	"github.com/davecgh/go-spew/spew"
	"github.com/go-gl/mathgl/mgl64"
)

func almostEqual(a, b, tolerance float64) bool {
	return math.Abs(a-b) < tolerance
}

func vec3AlmostEqual(a, b mgl64.Vec3, tolerance float64) bool {
	return almostEqual(a.X(), b.X(), tolerance) &&
		almostEqual(a.Y(), b.Y(), tolerance) &&
		almostEqual(a.Z(), b.Z(), tolerance)
}

func sphere(centre mgl64.Vec3, radius float64) Supporter {
	return SupportFunc(func(d mgl64.Vec3) mgl64.Vec3 {
		if d.LenSqr() == 0 {
			return centre.Add(mgl64.Vec3{0, 0, radius})
		}
		return centre.Add(d.Normalize().Mul(radius))
	})
}

func box(centre, half mgl64.Vec3) Supporter {
	return SupportFunc(func(d mgl64.Vec3) mgl64.Vec3 {
		p := centre
		for i := 0; i < 3; i++ {
			if d[i] >= 0 {
				p[i] += half[i]
			} else {
				p[i] -= half[i]
			}
		}
		return p
	})
}

func TestIntersect(t *testing.T) {
	tests := []struct {
		name string
		a, b Supporter
		want bool
	}{
		{
			name: "overlapping spheres",
			a:    sphere(mgl64.Vec3{0, 0, 0}, 1),
			b:    sphere(mgl64.Vec3{1.5, 0, 0}, 1),
			want: true,
		},
		{
			name: "separated spheres",
			a:    sphere(mgl64.Vec3{0, 0, 0}, 1),
			b:    sphere(mgl64.Vec3{2.5, 0, 0}, 1),
			want: false,
		},
		{
			name: "overlapping boxes",
			a:    box(mgl64.Vec3{0, 0, 0}, mgl64.Vec3{1, 1, 1}),
			b:    box(mgl64.Vec3{1.5, 0.5, -0.5}, mgl64.Vec3{1, 1, 1}),
			want: true,
		},
		{
			name: "separated boxes on a diagonal",
			a:    box(mgl64.Vec3{0, 0, 0}, mgl64.Vec3{1, 1, 1}),
			b:    box(mgl64.Vec3{2.1, 2.1, 2.1}, mgl64.Vec3{1, 1, 1}),
			want: false,
		},
		{
			name: "sphere inside box",
			a:    box(mgl64.Vec3{0, 0, 0}, mgl64.Vec3{2, 2, 2}),
			b:    sphere(mgl64.Vec3{0.5, 0, 0}, 0.25),
			want: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			simplex := SimplexPool.Get().(*Simplex)
			defer SimplexPool.Put(simplex)
			simplex.Reset()

			got := Intersect(tt.a, tt.b, mgl64.Vec3{1, 0, 0}, simplex)
			if got != tt.want {
				t.Errorf("Intersect() = %v, want %v", got, tt.want)
			}
			if got && simplex.Count == 0 {
				t.Errorf("Intersect() returned true with an empty simplex")
			}
		})
	}
}

func TestDistance(t *testing.T) {
	t.Run("spheres along an axis", func(t *testing.T) {
		res, err := Distance(sphere(mgl64.Vec3{}, 1), sphere(mgl64.Vec3{3, 0, 0}, 0.5), mgl64.Vec3{1, 0, 0})
		if err != nil {
			t.Fatalf("Distance() error = %v", err)
		}
		if res.Overlap || !almostEqual(res.Distance, 1.5, 1e-9) {
			t.Fatalf("Distance() = %s", spew.Sdump(res))
		}
		if !vec3AlmostEqual(res.PointA, mgl64.Vec3{1, 0, 0}, 1e-9) || !vec3AlmostEqual(res.PointB, mgl64.Vec3{2.5, 0, 0}, 1e-9) {
			t.Errorf("closest points = %v, %v", res.PointA, res.PointB)
		}
	})

	t.Run("box corner to sphere", func(t *testing.T) {
		res, err := Distance(box(mgl64.Vec3{}, mgl64.Vec3{1, 1, 1}), sphere(mgl64.Vec3{3, 3, 0}, 0.5), mgl64.Vec3{1, 1, 0})
		if err != nil {
			t.Fatalf("Distance() error = %v", err)
		}
		want := math.Sqrt(8) - 0.5
		if !almostEqual(res.Distance, want, 1e-6) {
			t.Errorf("Distance = %v, want %v", res.Distance, want)
		}
		if !almostEqual(res.PointA.X(), 1, 1e-6) || !almostEqual(res.PointA.Y(), 1, 1e-6) {
			t.Errorf("PointA = %v, want on the edge x=1,y=1", res.PointA)
		}
	})

	t.Run("distance matches the closest point gap", func(t *testing.T) {
		res, err := Distance(box(mgl64.Vec3{}, mgl64.Vec3{1, 2, 0.5}), box(mgl64.Vec3{4, -1, 3}, mgl64.Vec3{0.5, 0.5, 0.5}), mgl64.Vec3{1, 0, 0})
		if err != nil {
			t.Fatalf("Distance() error = %v", err)
		}
		// x gap 2.5, y overlap, z gap 2
		want := math.Hypot(2.5, 2)
		if !almostEqual(res.Distance, want, 1e-9) {
			t.Errorf("Distance = %v, want %v", res.Distance, want)
		}
		if !almostEqual(res.PointB.Sub(res.PointA).Len(), res.Distance, 1e-9) {
			t.Errorf("|PointB - PointA| = %v, Distance = %v", res.PointB.Sub(res.PointA).Len(), res.Distance)
		}
	})

	t.Run("overlap", func(t *testing.T) {
		res, err := Distance(box(mgl64.Vec3{}, mgl64.Vec3{1, 1, 1}), box(mgl64.Vec3{0.5, 0.5, 0.5}, mgl64.Vec3{1, 1, 1}), mgl64.Vec3{1, 0, 0})
		if err != nil {
			t.Fatalf("Distance() error = %v", err)
		}
		if !res.Overlap {
			t.Errorf("Distance() = %s, want overlap", spew.Sdump(res))
		}
	})
}

func TestRayCast(t *testing.T) {
	unit := box(mgl64.Vec3{}, mgl64.Vec3{1, 1, 1})

	tests := []struct {
		name       string
		origin     mgl64.Vec3
		direction  mgl64.Vec3
		maxT       float64
		wantHit    bool
		wantT      float64
		wantNormal mgl64.Vec3
	}{
		{"face hit", mgl64.Vec3{-5, 0.2, 0.1}, mgl64.Vec3{1, 0, 0}, 10, true, 4, mgl64.Vec3{-1, 0, 0}},
		{"scaled direction", mgl64.Vec3{0, 6, 0}, mgl64.Vec3{0, -2, 0}, 10, true, 2.5, mgl64.Vec3{0, 1, 0}},
		{"miss", mgl64.Vec3{-5, 2, 0}, mgl64.Vec3{1, 0, 0}, 10, false, 0, mgl64.Vec3{}},
		{"pointing away", mgl64.Vec3{-5, 0, 0}, mgl64.Vec3{-1, 0, 0}, 10, false, 0, mgl64.Vec3{}},
		{"too short", mgl64.Vec3{-5, 0, 0}, mgl64.Vec3{1, 0, 0}, 3, false, 0, mgl64.Vec3{}},
		{"starts inside", mgl64.Vec3{0.5, 0, 0}, mgl64.Vec3{1, 0, 0}, 10, true, 0, mgl64.Vec3{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hit, ok, err := RayCast(unit, tt.origin, tt.direction, tt.maxT, 32)
			if err != nil {
				t.Fatalf("RayCast() error = %v", err)
			}
			if ok != tt.wantHit {
				t.Fatalf("RayCast() hit = %v, want %v (%s)", ok, tt.wantHit, spew.Sdump(hit))
			}
			if !ok {
				return
			}
			if !almostEqual(hit.T, tt.wantT, 1e-9) {
				t.Errorf("T = %v, want %v", hit.T, tt.wantT)
			}
			n := hit.Normal
			if n.LenSqr() > 0 {
				n = n.Normalize()
			}
			if !vec3AlmostEqual(n, tt.wantNormal, 1e-9) {
				t.Errorf("Normal = %v, want %v", n, tt.wantNormal)
			}
		})
	}

	t.Run("oblique hit lies on the surface", func(t *testing.T) {
		origin := mgl64.Vec3{-4, -3, 2}
		dir := mgl64.Vec3{1, 0.7, -0.4}
		hit, ok, err := RayCast(unit, origin, dir, 100, 32)
		if err != nil || !ok {
			t.Fatalf("RayCast() = %v, %v, %v", hit, ok, err)
		}
		p := origin.Add(dir.Mul(hit.T))
		maxAbs := math.Max(math.Abs(p.X()), math.Max(math.Abs(p.Y()), math.Abs(p.Z())))
		if !almostEqual(maxAbs, 1, 1e-9) {
			t.Errorf("entry point %v is not on the unit box surface", p)
		}
	})
}
