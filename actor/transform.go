package actor

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// OrthonormalTolerance bounds the deviation accepted by IsOrthonormal.
const OrthonormalTolerance = 1e-6

// Transform represents a position and orientation in 3D space
type Transform struct {
	Position mgl64.Vec3
	Rotation mgl64.Quat
}

// NewTransform creates an identity transform
func NewTransform() Transform {
	return Transform{
		Position: mgl64.Vec3{0, 0, 0},
		Rotation: mgl64.QuatIdent(),
	}
}

// Mat4 returns the affine matrix of the transform.
func (t Transform) Mat4() mgl64.Mat4 {
	rot := t.Rotation
	if rot.Len() == 0 {
		rot = mgl64.QuatIdent()
	}
	return Affine(rot.Normalize().Mat4().Mat3(), t.Position)
}

// Affine builds a rigid transform from a rotation and a translation.
func Affine(rot mgl64.Mat3, pos mgl64.Vec3) mgl64.Mat4 {
	m := rot.Mat4()
	m[12], m[13], m[14] = pos[0], pos[1], pos[2]
	return m
}

// Translation builds a pure translation.
func Translation(pos mgl64.Vec3) mgl64.Mat4 {
	return mgl64.Translate3D(pos[0], pos[1], pos[2])
}

// Rotation returns the 3x3 rotation block of an affine transform.
func Rotation(m mgl64.Mat4) mgl64.Mat3 {
	return m.Mat3()
}

// Position returns the translation of an affine transform.
func Position(m mgl64.Mat4) mgl64.Vec3 {
	return mgl64.Vec3{m[12], m[13], m[14]}
}

// TransformPoint applies m to a point.
func TransformPoint(m mgl64.Mat4, p mgl64.Vec3) mgl64.Vec3 {
	return m.Mul4x1(p.Vec4(1)).Vec3()
}

// TransformDir applies the rotation of m to a direction.
func TransformDir(m mgl64.Mat4, d mgl64.Vec3) mgl64.Vec3 {
	return m.Mul4x1(d.Vec4(0)).Vec3()
}

// InvertFast inverts a rigid (orthonormal) transform.
func InvertFast(m mgl64.Mat4) mgl64.Mat4 {
	rt := m.Mat3().Transpose()
	return Affine(rt, rt.Mul3x1(Position(m)).Mul(-1))
}

// IsOrthonormal reports whether m is a rigid transform: orthonormal,
// right-handed rotation and an affine bottom row.
func IsOrthonormal(m mgl64.Mat4) bool {
	if math.Abs(m[3]) > OrthonormalTolerance || math.Abs(m[7]) > OrthonormalTolerance ||
		math.Abs(m[11]) > OrthonormalTolerance || math.Abs(m[15]-1) > OrthonormalTolerance {
		return false
	}
	for i := 0; i < 16; i++ {
		if math.IsNaN(m[i]) || math.IsInf(m[i], 0) {
			return false
		}
	}

	rot := m.Mat3()
	x, y, z := rot.Col(0), rot.Col(1), rot.Col(2)
	if math.Abs(x.LenSqr()-1) > OrthonormalTolerance ||
		math.Abs(y.LenSqr()-1) > OrthonormalTolerance ||
		math.Abs(z.LenSqr()-1) > OrthonormalTolerance {
		return false
	}
	if math.Abs(x.Dot(y)) > OrthonormalTolerance ||
		math.Abs(x.Dot(z)) > OrthonormalTolerance ||
		math.Abs(y.Dot(z)) > OrthonormalTolerance {
		return false
	}
	return x.Cross(y).Dot(z) > 0
}

// Orthonormalise removes numerical drift from the rotation of a rigid transform.
func Orthonormalise(m mgl64.Mat4) mgl64.Mat4 {
	q := mgl64.Mat4ToQuat(m).Normalize()
	return Affine(q.Mat4().Mat3(), Position(m))
}

// RotationFromAngularDisplacement returns the rotation by |w| radians about w.
func RotationFromAngularDisplacement(w mgl64.Vec3) mgl64.Mat3 {
	angle := w.Len()
	if angle < 1e-12 {
		return mgl64.Ident3()
	}
	return mgl64.QuatRotate(angle, w.Mul(1.0/angle)).Mat4().Mat3()
}
