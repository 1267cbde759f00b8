package penetration

import (
	"errors"
	"math"
	"math/rand"
	"testing"

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

func constAxis(v mgl64.Vec3) func() mgl64.Vec3 {
	return func() mgl64.Vec3 { return v }
}

func TestSignedSqr(t *testing.T) {
	tests := []struct {
		in, want float64
	}{
		{2, 4},
		{-2, -4},
		{0, 0},
		{-0.5, -0.25},
	}
	for _, tt := range tests {
		if got := SignedSqr(tt.in); got != tt.want {
			t.Errorf("SignedSqr(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
	if SignedSqr(-3) != -9 {
		t.Error("SignedSqr should work on integers")
	}
}

func TestMinPenetration_ErrNoAxis(t *testing.T) {
	var m MinPenetration
	if _, err := m.Depth(); !errors.Is(err, ErrNoAxis) {
		t.Errorf("Depth() error = %v, want ErrNoAxis", err)
	}
	if _, err := m.Axis(); !errors.Is(err, ErrNoAxis) {
		t.Errorf("Axis() error = %v, want ErrNoAxis", err)
	}
	if _, _, err := m.Materials(); !errors.Is(err, ErrNoAxis) {
		t.Errorf("Materials() error = %v, want ErrNoAxis", err)
	}
}

func TestMinPenetration_KeepsTrueMinimum(t *testing.T) {
	var m MinPenetration

	// Depth 0.6 along a length-2 axis is a true depth of 0.3
	m.Report(0.6, constAxis(mgl64.Vec3{2, 0, 0}), 1, 2)
	// True depth 0.4
	m.Report(0.4, constAxis(mgl64.Vec3{0, 1, 0}), 3, 4)
	// True depth 0.25 on an unnormalised diagonal
	m.Report(0.25*math.Sqrt(2), constAxis(mgl64.Vec3{1, 0, 1}), 5, 6)

	depth, err := m.Depth()
	if err != nil {
		t.Fatal(err)
	}
	if !almostEqual(depth, 0.25, 1e-12) {
		t.Errorf("Depth() = %v, want 0.25", depth)
	}
	axis, _ := m.Axis()
	if !vec3AlmostEqual(axis, mgl64.Vec3{1, 0, 1}.Normalize(), 1e-12) {
		t.Errorf("Axis() = %v", axis)
	}
	a, b, _ := m.Materials()
	if a != 5 || b != 6 {
		t.Errorf("Materials() = %v, %v, want 5, 6", a, b)
	}
	if !m.Contact() {
		t.Error("Contact() = false, want true")
	}
}

func TestMinPenetration_NegativeDepths(t *testing.T) {
	var m MinPenetration
	m.Report(0.1, constAxis(mgl64.Vec3{1, 0, 0}), 0, 0)
	m.Report(-0.2, constAxis(mgl64.Vec3{0, 2, 0}), 0, 0) // true -0.1
	m.Report(-0.3, constAxis(mgl64.Vec3{0, 0, 1}), 0, 0) // true -0.3
	m.Report(0.0, constAxis(mgl64.Vec3{1, 1, 0}), 0, 0)

	depth, _ := m.Depth()
	if !almostEqual(depth, -0.3, 1e-12) {
		t.Errorf("Depth() = %v, want -0.3", depth)
	}
	if m.Contact() {
		t.Error("Contact() = true, want false")
	}
}

func TestAccumulators_DegenerateSeparatingAxis(t *testing.T) {
	// A separating depth on a zero length axis still separates the shapes
	reports := []struct {
		depth float64
		axis  mgl64.Vec3
	}{
		{0.4, mgl64.Vec3{1, 0, 0}},
		{-0.2, mgl64.Vec3{}},
		{0.1, mgl64.Vec3{0, 1, 0}},
	}

	tests := []struct {
		name string
		acc  Accumulator
	}{
		{"Test", &Test{}},
		{"MinPenetration", &MinPenetration{}},
		{"ContactPenetration", &ContactPenetration{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, r := range reports {
				if !tt.acc.Report(r.depth, constAxis(r.axis), 0, 0) {
					break
				}
			}
			if tt.acc.Contact() {
				t.Errorf("Contact() = true after a separating report")
			}
		})
	}

	// The degenerate axis is never retained
	var m MinPenetration
	for _, r := range reports {
		m.Report(r.depth, constAxis(r.axis), 0, 0)
	}
	axis, err := m.Axis()
	if err != nil {
		t.Fatal(err)
	}
	if !vec3AlmostEqual(axis, mgl64.Vec3{0, 1, 0}, 1e-12) {
		t.Errorf("Axis() = %v, want %v", axis, mgl64.Vec3{0, 1, 0})
	}
}

func TestTest_NeverEvaluatesAxis(t *testing.T) {
	var acc Test
	evaluated := false
	axis := func() mgl64.Vec3 {
		evaluated = true
		return mgl64.Vec3{1, 0, 0}
	}

	if !acc.Report(0.5, axis, 0, 0) {
		t.Error("Report() should continue on overlap")
	}
	if acc.Report(-0.1, axis, 0, 0) {
		t.Error("Report() should stop on separation")
	}
	if evaluated {
		t.Error("Test evaluated an axis")
	}
	if acc.Contact() {
		t.Error("Contact() = true after a separating axis")
	}
}

func TestContactPenetration_StopsWithoutEvaluating(t *testing.T) {
	var acc ContactPenetration
	if !acc.Report(0.5, constAxis(mgl64.Vec3{1, 0, 0}), 0, 0) {
		t.Fatal("Report() should continue on overlap")
	}

	evaluated := false
	stop := acc.Report(-0.1, func() mgl64.Vec3 {
		evaluated = true
		return mgl64.Vec3{0, 1, 0}
	}, 0, 0)
	if stop {
		t.Error("Report() should stop on separation")
	}
	if evaluated {
		t.Error("separating axis was evaluated")
	}
	if acc.Contact() {
		t.Error("Contact() = true after a separating axis")
	}
}

func TestTouchingCountsAsContact(t *testing.T) {
	accs := []Accumulator{&Test{}, &MinPenetration{}, &ContactPenetration{}}
	for _, acc := range accs {
		acc.Report(0, constAxis(mgl64.Vec3{1, 0, 0}), 0, 0)
		if !acc.Contact() {
			t.Errorf("%T: depth 0 should be a contact", acc)
		}
	}
}

func TestAccumulators_Agree(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	for trial := 0; trial < 500; trial++ {
		var (
			test    Test
			minPen  MinPenetration
			contact ContactPenetration
		)
		minTrue := math.Inf(1)
		testGoing, contactGoing := true, true

		n := 1 + rng.Intn(15)
		for i := 0; i < n; i++ {
			depth := rng.Float64()*2 - 0.3
			axis := mgl64.Vec3{rng.NormFloat64(), rng.NormFloat64(), rng.NormFloat64()}
			if axis.Len() < 1e-3 {
				continue
			}
			minTrue = math.Min(minTrue, depth/axis.Len())

			if testGoing {
				testGoing = test.Report(depth, constAxis(axis), 0, 0)
			}
			if contactGoing {
				contactGoing = contact.Report(depth, constAxis(axis), 0, 0)
			}
			minPen.Report(depth, constAxis(axis), 0, 0)
		}

		if test.Contact() != minPen.Contact() || test.Contact() != contact.Contact() {
			t.Fatalf("trial %d: Test %v, MinPenetration %v, ContactPenetration %v",
				trial, test.Contact(), minPen.Contact(), contact.Contact())
		}
		if math.IsInf(minTrue, 1) {
			continue
		}
		depth, err := minPen.Depth()
		if err != nil {
			t.Fatal(err)
		}
		if !almostEqual(depth, minTrue, 1e-9) {
			t.Fatalf("trial %d: MinPenetration depth %v, want %v", trial, depth, minTrue)
		}
	}
}
