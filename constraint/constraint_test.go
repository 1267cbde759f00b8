package constraint

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/pkg/errors"

	"github.com/psryland/rylogic-code-sub010/actor"
	"github.com/psryland/rylogic-code-sub010/spatial"
)

func TestMeasure(t *testing.T) {
	a := sphereBody(t, mgl64.Vec3{1, 0, 0}, 2, actor.BodyTypeDynamic)
	b := sphereBody(t, mgl64.Vec3{0, 2, 0}, 1, actor.BodyTypeDynamic)
	a.SetVelocityWS(spatial.Motion{Lin: mgl64.Vec3{0, 1, 0}})
	b.SetVelocityWS(spatial.Motion{Lin: mgl64.Vec3{3, 0, 0}})

	s := Measure(a, b)
	if !vec3AlmostEqual(s.Linear, mgl64.Vec3{3, 2, 0}, 1e-12) {
		t.Errorf("Linear = %v, want (3,2,0)", s.Linear)
	}
	// r × p: (1,0,0)×(0,2,0) + (0,2,0)×(3,0,0)
	if !vec3AlmostEqual(s.Angular, mgl64.Vec3{0, 0, 2 - 6}, 1e-12) {
		t.Errorf("Angular = %v, want (0,0,-4)", s.Angular)
	}
	if !almostEqual(s.Energy, 0.5*2*1+0.5*1*9, 1e-12) {
		t.Errorf("Energy = %v, want 5.5", s.Energy)
	}
	if !s.Dynamic {
		t.Error("Dynamic = false, want true")
	}
}

func TestCheck(t *testing.T) {
	before := State{Linear: mgl64.Vec3{1, 0, 0}, Angular: mgl64.Vec3{0, 0, 1}, Energy: 2, Dynamic: true}

	tests := []struct {
		name    string
		after   State
		wantErr bool
	}{
		{"unchanged", before, false},
		{"energy lost", State{Linear: before.Linear, Angular: before.Angular, Energy: 1, Dynamic: true}, false},
		{"energy gained", State{Linear: before.Linear, Angular: before.Angular, Energy: 2.1, Dynamic: true}, true},
		{"linear momentum changed", State{Linear: mgl64.Vec3{1, 0.1, 0}, Angular: before.Angular, Energy: 2, Dynamic: true}, true},
		{"angular momentum changed", State{Linear: before.Linear, Angular: mgl64.Vec3{0, 0, 1.5}, Energy: 2, Dynamic: true}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Check(before, tt.after, 1e-9)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Check() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrNotConserved) {
				t.Errorf("Check() error = %v, want ErrNotConserved", err)
			}
		})
	}

	t.Run("momentum ignored against static bodies", func(t *testing.T) {
		b := before
		b.Dynamic = false
		after := State{Linear: mgl64.Vec3{-1, 0, 0}, Energy: 1}
		if err := Check(b, after, 1e-9); err != nil {
			t.Errorf("Check() error = %v", err)
		}
	})
}
