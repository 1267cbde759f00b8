package spatial

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/pkg/errors"
)

// InfiniteMass is the sentinel used for immovable bodies. It is finite so that
// products with zero velocity stay zero instead of producing NaN.
const InfiniteMass = 1e30

// ErrInvalidMass is returned for a non-positive, non-finite mass or a 3x3
// inertia that is not symmetric positive-definite.
var ErrInvalidMass = errors.New("invalid mass properties")

// Inertia is a compact spatial inertia: the 3x3 rotational inertia about the
// centre of mass (diagonal and off-diagonal terms), the centre of mass
// offset from the model origin, and the mass.
//
// The equivalent 6x6 spatial inertia about the model origin is
//
//	| Ic + m·cx·cxᵀ   m·cx |
//	| m·cxᵀ           m·1  |
//
// where cx is the cross-product matrix of CoM.
type Inertia struct {
	Diagonal mgl64.Vec3 // Ixx, Iyy, Izz
	Products mgl64.Vec3 // Ixy, Ixz, Iyz
	CoM      mgl64.Vec3
	Mass     float64
}

// InertiaInv is the inverse of an Inertia: the inverse 3x3 rotational
// inertia about the centre of mass, the centre of mass offset and 1/mass.
type InertiaInv struct {
	Diagonal mgl64.Vec3
	Products mgl64.Vec3
	CoM      mgl64.Vec3
	InvMass  float64
}

// NewInertia builds an Inertia from a 3x3 inertia about the centre of mass.
// Only the lower triangle of i3 is read.
func NewInertia(i3 mgl64.Mat3, com mgl64.Vec3, mass float64) Inertia {
	return Inertia{
		Diagonal: mgl64.Vec3{i3.At(0, 0), i3.At(1, 1), i3.At(2, 2)},
		Products: mgl64.Vec3{i3.At(1, 0), i3.At(2, 0), i3.At(2, 1)},
		CoM:      com,
		Mass:     mass,
	}
}

// InertiaSphere returns the inertia of a solid sphere centred on the model origin.
func InertiaSphere(radius, mass float64) Inertia {
	i := (2.0 / 5.0) * mass * radius * radius
	return Inertia{Diagonal: mgl64.Vec3{i, i, i}, Mass: mass}
}

// InertiaBox returns the inertia of a solid box centred on the model origin.
func InertiaBox(halfExtents mgl64.Vec3, mass float64) Inertia {
	x2 := halfExtents.X() * halfExtents.X()
	y2 := halfExtents.Y() * halfExtents.Y()
	z2 := halfExtents.Z() * halfExtents.Z()
	factor := mass / 3.0
	return Inertia{
		Diagonal: mgl64.Vec3{factor * (y2 + z2), factor * (x2 + z2), factor * (x2 + y2)},
		Mass:     mass,
	}
}

// InertiaInfinite returns an inertia representing an immovable body.
func InertiaInfinite() Inertia {
	return Inertia{
		Diagonal: mgl64.Vec3{InfiniteMass, InfiniteMass, InfiniteMass},
		Mass:     InfiniteMass,
	}
}

// Mat3 returns the 3x3 rotational inertia about the centre of mass.
func (in Inertia) Mat3() mgl64.Mat3 {
	return symmetric(in.Diagonal, in.Products)
}

// About returns the 3x3 rotational inertia about point (in the same frame as CoM).
func (in Inertia) About(point mgl64.Vec3) mgl64.Mat3 {
	return ParallelAxis(in.Mat3(), in.Mass, in.CoM.Sub(point), false)
}

// IsInfinite reports whether the inertia uses the infinite mass sentinel.
func (in Inertia) IsInfinite() bool {
	return in.Mass >= InfiniteMass
}

// Rotate changes the basis of the inertia: b2a · I · a2b, with the centre of mass rotated too.
func (in Inertia) Rotate(a2b mgl64.Mat3) Inertia {
	i3 := a2b.Mul3(in.Mat3()).Mul3(a2b.Transpose())
	return NewInertia(i3, a2b.Mul3x1(in.CoM), in.Mass)
}

// Translate moves the reference point by ofs; the centre of mass, relative to
// the new reference point, becomes CoM - ofs.
func (in Inertia) Translate(ofs mgl64.Vec3) Inertia {
	out := in
	out.CoM = in.CoM.Sub(ofs)
	return out
}

// Invert returns the inverse inertia.
func (in Inertia) Invert() InertiaInv {
	inv := in.Mat3().Inv()
	out := InertiaInv{CoM: in.CoM, InvMass: 1.0 / in.Mass}
	out.Diagonal = mgl64.Vec3{inv.At(0, 0), inv.At(1, 1), inv.At(2, 2)}
	out.Products = mgl64.Vec3{inv.At(1, 0), inv.At(2, 0), inv.At(2, 1)}
	return out
}

// MulMotion returns the momentum (about the model origin) for a velocity
// measured at the model origin.
func (in Inertia) MulMotion(v Motion) Force {
	lin := v.Lin.Add(v.Ang.Cross(in.CoM)).Mul(in.Mass)
	ang := in.Mat3().Mul3x1(v.Ang).Add(in.CoM.Cross(lin))
	return Force{Ang: ang, Lin: lin}
}

// Mat6 returns the full spatial inertia about the model origin.
func (in Inertia) Mat6() Mat6 {
	cx := skew(in.CoM)
	return Mat6{
		AA: in.Mat3().Add(cx.Mul3(cx.Transpose()).Mul(in.Mass)),
		AL: cx.Mul(in.Mass),
		LA: cx.Transpose().Mul(in.Mass),
		LL: mgl64.Ident3().Mul(in.Mass),
	}
}

// Validate checks the mass is positive and finite and that the 3x3 block is
// symmetric positive-definite (Sylvester's criterion).
func (in Inertia) Validate() error {
	if !(in.Mass > 0) || math.IsInf(in.Mass, 0) || math.IsNaN(in.Mass) {
		return errors.Wrapf(ErrInvalidMass, "mass %v", in.Mass)
	}
	for _, v := range [...]float64{
		in.Diagonal[0], in.Diagonal[1], in.Diagonal[2],
		in.Products[0], in.Products[1], in.Products[2],
		in.CoM[0], in.CoM[1], in.CoM[2],
	} {
		if math.IsInf(v, 0) || math.IsNaN(v) {
			return errors.Wrap(ErrInvalidMass, "non-finite inertia")
		}
	}
	if !positiveDefinite(in.Mat3()) {
		return errors.Wrap(ErrInvalidMass, "inertia is not positive-definite")
	}
	return nil
}

// Mat3 returns the inverse 3x3 rotational inertia about the centre of mass.
func (inv InertiaInv) Mat3() mgl64.Mat3 {
	return symmetric(inv.Diagonal, inv.Products)
}

// Mass returns 1/InvMass.
func (inv InertiaInv) Mass() float64 {
	return 1.0 / inv.InvMass
}

// Rotate changes the basis of the inverse inertia.
func (inv InertiaInv) Rotate(a2b mgl64.Mat3) InertiaInv {
	i3 := a2b.Mul3(inv.Mat3()).Mul3(a2b.Transpose())
	return InertiaInv{
		Diagonal: mgl64.Vec3{i3.At(0, 0), i3.At(1, 1), i3.At(2, 2)},
		Products: mgl64.Vec3{i3.At(1, 0), i3.At(2, 0), i3.At(2, 1)},
		CoM:      a2b.Mul3x1(inv.CoM),
		InvMass:  inv.InvMass,
	}
}

// Translate moves the reference point by ofs.
func (inv InertiaInv) Translate(ofs mgl64.Vec3) InertiaInv {
	out := inv
	out.CoM = inv.CoM.Sub(ofs)
	return out
}

// Invert returns the inertia.
func (inv InertiaInv) Invert() Inertia {
	return NewInertia(inv.Mat3().Inv(), inv.CoM, 1.0/inv.InvMass)
}

// MulForce returns the velocity (measured at the model origin) produced by a
// momentum about the model origin.
func (inv InertiaInv) MulForce(h Force) Motion {
	ang := inv.Mat3().Mul3x1(h.Ang.Sub(inv.CoM.Cross(h.Lin)))
	lin := h.Lin.Mul(inv.InvMass).Sub(ang.Cross(inv.CoM))
	return Motion{Ang: ang, Lin: lin}
}

// Mat6 returns the full inverse spatial inertia about the model origin.
func (inv InertiaInv) Mat6() Mat6 {
	cx := skew(inv.CoM)
	i3 := inv.Mat3()
	return Mat6{
		AA: i3,
		AL: i3.Mul3(cx).Mul(-1),
		LA: cx.Mul3(i3),
		LL: mgl64.Ident3().Mul(inv.InvMass).Sub(cx.Mul3(i3).Mul3(cx)),
	}
}

// ParallelAxis shifts a 3x3 inertia by the offset d using the parallel axis
// theorem. Away from the centre of mass the inertia grows by m(|d|²1 - ddᵀ);
// toward it, it shrinks by the same amount.
func ParallelAxis(i3 mgl64.Mat3, mass float64, d mgl64.Vec3, towardCoM bool) mgl64.Mat3 {
	shift := mgl64.Ident3().Mul(d.LenSqr()).Sub(d.OuterProd3(d)).Mul(mass)
	if towardCoM {
		return i3.Sub(shift)
	}
	return i3.Add(shift)
}

func symmetric(diag, products mgl64.Vec3) mgl64.Mat3 {
	return mgl64.Mat3{
		diag[0], products[0], products[1],
		products[0], diag[1], products[2],
		products[1], products[2], diag[2],
	}
}

func positiveDefinite(m mgl64.Mat3) bool {
	a, b, c := m.At(0, 0), m.At(0, 1), m.At(0, 2)
	d, e, f := m.At(1, 0), m.At(1, 1), m.At(1, 2)
	g, h, i := m.At(2, 0), m.At(2, 1), m.At(2, 2)

	if math.Abs(b-d) > 1e-9*math.Max(1, math.Abs(b)) ||
		math.Abs(c-g) > 1e-9*math.Max(1, math.Abs(c)) ||
		math.Abs(f-h) > 1e-9*math.Max(1, math.Abs(f)) {
		return false
	}
	return a > 0 && e > 0 && i > 0 && a*e-b*d > 0 && m.Det() > 0
}
