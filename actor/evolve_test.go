package actor

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/psryland/rylogic-code-sub010/spatial"
)

func TestEvolve_ForceWithCancellingTorque(t *testing.T) {
	const mass = 5.0
	rb := newSphereBody(t, 1, mass, mgl64.Ident4())

	// The torque cancels the moment of the force about the origin
	rb.ApplyForceWS(mgl64.Vec3{1, 0, 0}, mgl64.Vec3{0, 0, 1}, mgl64.Vec3{0, 1, 0})
	Evolve(rb, 1.0)

	if !vec3Equal(rb.Position(), mgl64.Vec3{0.5 / mass, 0, 0}, 1e-9) {
		t.Errorf("position = %v, want {%v 0 0}", rb.Position(), 0.5/mass)
	}
	v := rb.VelocityWS()
	if !vec3Equal(v.Lin, mgl64.Vec3{1 / mass, 0, 0}, 1e-9) {
		t.Errorf("velocity = %v, want {%v 0 0}", v.Lin, 1/mass)
	}
	if !vec3Equal(v.Ang, mgl64.Vec3{}, 1e-12) {
		t.Errorf("angular velocity = %v, want zero", v.Ang)
	}
	if rb.ForceWS() != (spatial.Force{}) {
		t.Error("Evolve did not clear the force")
	}
}

func TestEvolve_FreeMotion(t *testing.T) {
	rb := newSphereBody(t, 1, 2, Translation(mgl64.Vec3{1, 1, 1}))
	rb.SetVelocityWS(spatial.Motion{Ang: mgl64.Vec3{0, 0, 2}, Lin: mgl64.Vec3{0, 3, 0}})

	for i := 0; i < 10; i++ {
		Evolve(rb, 0.1)
	}

	if !vec3Equal(rb.CentreOfMassWS(), mgl64.Vec3{1, 4, 1}, 1e-9) {
		t.Errorf("CoM = %v, want {1 4 1}", rb.CentreOfMassWS())
	}
	// Rotated 2 radians about z
	want := mgl64.Rotate3DZ(2)
	if !mat3Equal(Rotation(rb.O2W()), want, 1e-9) {
		t.Errorf("rotation = %v, want %v", Rotation(rb.O2W()), want)
	}
	if !IsOrthonormal(rb.O2W()) {
		t.Error("pose drifted from orthonormal")
	}
	v := rb.VelocityWS()
	if !vec3Equal(v.Lin, mgl64.Vec3{0, 3, 0}, 1e-9) || !vec3Equal(v.Ang, mgl64.Vec3{0, 0, 2}, 1e-9) {
		t.Errorf("velocity changed without a force: %v", v)
	}
}

func TestEvolve_OffsetCentreOfMassSpinsInPlace(t *testing.T) {
	in := spatial.InertiaSphere(1, 1).Translate(mgl64.Vec3{-2, 0, 0}) // CoM at (2,0,0)
	rb, err := NewRigidBody(mustSphere(t, 1), mgl64.Ident4(), in, BodyTypeDynamic)
	if err != nil {
		t.Fatal(err)
	}
	com := rb.CentreOfMassWS()

	// Pure spin about the CoM: the origin moves with ω × (origin - com)
	w := mgl64.Vec3{0, 0, 1}
	rb.SetVelocityWS(spatial.Motion{Ang: w, Lin: w.Cross(com.Mul(-1))})

	ke := rb.KineticEnergy()
	for i := 0; i < 20; i++ {
		Evolve(rb, 0.05)
	}
	if !vec3Equal(rb.CentreOfMassWS(), com, 1e-9) {
		t.Errorf("CoM moved to %v, want %v", rb.CentreOfMassWS(), com)
	}
	if !floatEqual(rb.KineticEnergy(), ke, 1e-9) {
		t.Errorf("kinetic energy %v, want %v", rb.KineticEnergy(), ke)
	}
}

func TestEvolve_EnergyMatchesWork(t *testing.T) {
	tests := []struct {
		name   string
		v0     spatial.Motion
		force  mgl64.Vec3
		torque mgl64.Vec3
	}{
		{"from rest", spatial.Motion{}, mgl64.Vec3{1, 0, 0}, mgl64.Vec3{}},
		{"opposing motion", spatial.Motion{Lin: mgl64.Vec3{-2, 1, 0}}, mgl64.Vec3{3, 0, -1}, mgl64.Vec3{}},
		{"spin up", spatial.Motion{Ang: mgl64.Vec3{0, 1, 0}}, mgl64.Vec3{}, mgl64.Vec3{0, 2, 0}},
		{"combined", spatial.Motion{Ang: mgl64.Vec3{1, 0, 0}, Lin: mgl64.Vec3{0, 0, 1}}, mgl64.Vec3{0, 1, 1}, mgl64.Vec3{0.5, 0, 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rb := newSphereBody(t, 0.5, 3, Translation(mgl64.Vec3{0, 2, 0}))
			rb.SetVelocityWS(tt.v0)
			rb.ApplyForceWS(tt.force, tt.torque, rb.CentreOfMassWS())

			de := Evolve(rb, 0.1)
			if !floatEqual(de.Predicted, de.Observed, 1e-9) {
				t.Errorf("predicted ΔKE %v, observed %v", de.Predicted, de.Observed)
			}
		})
	}
}
