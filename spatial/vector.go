// Package spatial implements the 6D spatial vector algebra used by the rigid
// body model: motion vectors (angular + linear velocity), force vectors
// (torque + force), and compact spatial inertia.
//
// Both vector kinds are measured about a reference point. Moving the
// reference point changes the linear part of a motion vector and the angular
// part of a force vector; Shift performs that change.
//
// References:
//   - Featherstone: "Rigid Body Dynamics Algorithms" (2008), chapter 2
package spatial

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Motion is a spatial motion vector: angular and linear velocity.
type Motion struct {
	Ang mgl64.Vec3
	Lin mgl64.Vec3
}

// Force is a spatial force vector: torque and linear force (or angular and
// linear momentum, or impulse).
type Force struct {
	Ang mgl64.Vec3
	Lin mgl64.Vec3
}

func (m Motion) Add(o Motion) Motion { return Motion{m.Ang.Add(o.Ang), m.Lin.Add(o.Lin)} }
func (m Motion) Sub(o Motion) Motion { return Motion{m.Ang.Sub(o.Ang), m.Lin.Sub(o.Lin)} }
func (m Motion) Mul(s float64) Motion { return Motion{m.Ang.Mul(s), m.Lin.Mul(s)} }
func (m Motion) Neg() Motion          { return m.Mul(-1) }

func (f Force) Add(o Force) Force   { return Force{f.Ang.Add(o.Ang), f.Lin.Add(o.Lin)} }
func (f Force) Sub(o Force) Force   { return Force{f.Ang.Sub(o.Ang), f.Lin.Sub(o.Lin)} }
func (f Force) Mul(s float64) Force { return Force{f.Ang.Mul(s), f.Lin.Mul(s)} }
func (f Force) Neg() Force          { return f.Mul(-1) }

// Shift moves the reference point of the motion vector by ofs:
// the linear velocity at (p + ofs) is v + ω × ofs.
func (m Motion) Shift(ofs mgl64.Vec3) Motion {
	return Motion{Ang: m.Ang, Lin: m.Lin.Add(m.Ang.Cross(ofs))}
}

// Shift moves the reference point of the force vector by ofs:
// the torque about (p + ofs) is τ - ofs × f.
func (f Force) Shift(ofs mgl64.Vec3) Force {
	return Force{Ang: f.Ang.Sub(ofs.Cross(f.Lin)), Lin: f.Lin}
}

// LinAt returns the linear velocity of the point at offset r from the reference point.
func (m Motion) LinAt(r mgl64.Vec3) mgl64.Vec3 {
	return m.Lin.Add(m.Ang.Cross(r))
}

// Rotate changes the basis of the motion vector (both parts rotate, reference point unchanged).
func (m Motion) Rotate(r mgl64.Mat3) Motion {
	return Motion{Ang: r.Mul3x1(m.Ang), Lin: r.Mul3x1(m.Lin)}
}

// Rotate changes the basis of the force vector.
func (f Force) Rotate(r mgl64.Mat3) Force {
	return Force{Ang: r.Mul3x1(f.Ang), Lin: r.Mul3x1(f.Lin)}
}

// ForceAt builds the spatial force about the reference point for a linear
// force applied at offset r from it, plus an additional pure torque.
func ForceAt(force, torque, r mgl64.Vec3) Force {
	return Force{Ang: torque.Add(r.Cross(force)), Lin: force}
}

// Dot is the scalar product between a motion and a force vector (power, or
// twice the kinetic energy when f is the momentum produced by m).
func Dot(m Motion, f Force) float64 {
	return m.Ang.Dot(f.Ang) + m.Lin.Dot(f.Lin)
}

// ApproxEqual reports whether every component differs by less than tolerance.
func (m Motion) ApproxEqual(o Motion, tolerance float64) bool {
	return within(m.Ang[:], o.Ang[:], tolerance) && within(m.Lin[:], o.Lin[:], tolerance)
}

// ApproxEqual reports whether every component differs by less than tolerance.
func (f Force) ApproxEqual(o Force, tolerance float64) bool {
	return within(f.Ang[:], o.Ang[:], tolerance) && within(f.Lin[:], o.Lin[:], tolerance)
}

// within compares absolute differences entry by entry.
func within(a, b []float64, tolerance float64) bool {
	for i := range a {
		if math.Abs(a[i]-b[i]) >= tolerance {
			return false
		}
	}
	return true
}
