package spatial

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/pkg/errors"
)

// Mat6 is a 6x6 spatial matrix stored as 3x3 blocks:
//
//	| AA AL |   angular row
//	| LA LL |   linear row
type Mat6 struct {
	AA, AL mgl64.Mat3
	LA, LL mgl64.Mat3
}

// Ident6 returns the 6x6 identity.
func Ident6() Mat6 {
	return Mat6{AA: mgl64.Ident3(), LL: mgl64.Ident3()}
}

// MulMotion maps a motion vector to a force vector (e.g. inertia × velocity).
func (m Mat6) MulMotion(v Motion) Force {
	return Force{
		Ang: m.AA.Mul3x1(v.Ang).Add(m.AL.Mul3x1(v.Lin)),
		Lin: m.LA.Mul3x1(v.Ang).Add(m.LL.Mul3x1(v.Lin)),
	}
}

// MulForce maps a force vector to a motion vector (e.g. inverse inertia × momentum).
func (m Mat6) MulForce(f Force) Motion {
	return Motion{
		Ang: m.AA.Mul3x1(f.Ang).Add(m.AL.Mul3x1(f.Lin)),
		Lin: m.LA.Mul3x1(f.Ang).Add(m.LL.Mul3x1(f.Lin)),
	}
}

// Mul returns m × o.
func (m Mat6) Mul(o Mat6) Mat6 {
	return Mat6{
		AA: m.AA.Mul3(o.AA).Add(m.AL.Mul3(o.LA)),
		AL: m.AA.Mul3(o.AL).Add(m.AL.Mul3(o.LL)),
		LA: m.LA.Mul3(o.AA).Add(m.LL.Mul3(o.LA)),
		LL: m.LA.Mul3(o.AL).Add(m.LL.Mul3(o.LL)),
	}
}

// Inv inverts the matrix by block reduction on the Schur complement of LL.
func (m Mat6) Inv() (Mat6, error) {
	if math.Abs(m.LL.Det()) < 1e-300 {
		return Mat6{}, errors.New("spatial matrix is singular")
	}
	dinv := m.LL.Inv()

	// S = AA - AL·LL⁻¹·LA
	s := m.AA.Sub(m.AL.Mul3(dinv).Mul3(m.LA))
	if math.Abs(s.Det()) < 1e-300 {
		return Mat6{}, errors.New("spatial matrix is singular")
	}
	sinv := s.Inv()

	al := sinv.Mul3(m.AL).Mul3(dinv).Mul(-1)
	la := dinv.Mul3(m.LA).Mul3(sinv).Mul(-1)
	ll := dinv.Add(dinv.Mul3(m.LA).Mul3(sinv).Mul3(m.AL).Mul3(dinv))

	return Mat6{AA: sinv, AL: al, LA: la, LL: ll}, nil
}

// ApproxEqual reports whether every entry of the four blocks differs by less than tolerance.
func (m Mat6) ApproxEqual(o Mat6, tolerance float64) bool {
	return within(m.AA[:], o.AA[:], tolerance) &&
		within(m.AL[:], o.AL[:], tolerance) &&
		within(m.LA[:], o.LA[:], tolerance) &&
		within(m.LL[:], o.LL[:], tolerance)
}

// skew returns the cross-product matrix of v: skew(v)·x == v × x.
func skew(v mgl64.Vec3) mgl64.Mat3 {
	return mgl64.Mat3{
		0, v[2], -v[1],
		-v[2], 0, v[0],
		v[1], -v[0], 0,
	}
}
