package physmath

import "math"

type Quaternion struct {
	X, Y, Z, W float64
}

func QuaternionIdentity() Quaternion {
	return Quaternion{X: 0, Y: 0, Z: 0, W: 1}
}

func NewQuaternion(x, y, z, w float64) Quaternion {
	return Quaternion{X: x, Y: y, Z: z, W: w}
}

func QuaternionFromAxisAngle(axis Vec3, angle float64) Quaternion {
	half := angle / 2
	s := math.Sin(half)
	c := math.Cos(half)
	axis = axis.Normalize()
	return Quaternion{X: axis.X * s, Y: axis.Y * s, Z: axis.Z * s, W: c}
}

func (q Quaternion) Mul(o Quaternion) Quaternion {
	return Quaternion{
		X: q.W*o.X + q.X*o.W + q.Y*o.Z - q.Z*o.Y,
		Y: q.W*o.Y - q.X*o.Z + q.Y*o.W + q.Z*o.X,
		Z: q.W*o.Z + q.X*o.Y - q.Y*o.X + q.Z*o.W,
		W: q.W*o.W - q.X*o.X - q.Y*o.Y - q.Z*o.Z,
	}
}

func (q Quaternion) LengthSqr() float64 {
	return q.X*q.X + q.Y*q.Y + q.Z*q.Z + q.W*q.W
}

func (q Quaternion) Length() float64 {
	return math.Sqrt(q.LengthSqr())
}

// Normalize returns the unit quaternion, or identity when q is degenerate
// (spec 7 numeric-degeneracy fallback).
func (q Quaternion) Normalize() Quaternion {
	l := q.Length()
	if l < 1e-12 {
		return QuaternionIdentity()
	}
	inv := 1 / l
	return Quaternion{q.X * inv, q.Y * inv, q.Z * inv, q.W * inv}
}

func (q Quaternion) Conjugate() Quaternion {
	return Quaternion{-q.X, -q.Y, -q.Z, q.W}
}

func (q Quaternion) Inverse() Quaternion {
	lsq := q.LengthSqr()
	if lsq < 1e-18 {
		return QuaternionIdentity()
	}
	c := q.Conjugate()
	inv := 1 / lsq
	return Quaternion{c.X * inv, c.Y * inv, c.Z * inv, c.W * inv}
}

func (q Quaternion) RotateVector(v Vec3) Vec3 {
	qv := Vec3{q.X, q.Y, q.Z}
	t := qv.Cross(v).Mul(2)
	return v.Add(t.Mul(q.W)).Add(qv.Cross(t))
}

func (q Quaternion) ToMat3() Mat3 {
	xx, yy, zz := q.X*q.X, q.Y*q.Y, q.Z*q.Z
	xy, xz, yz := q.X*q.Y, q.X*q.Z, q.Y*q.Z
	wx, wy, wz := q.W*q.X, q.W*q.Y, q.W*q.Z

	return Mat3{
		{1 - 2*(yy+zz), 2 * (xy + wz), 2 * (xz - wy)},
		{2 * (xy - wz), 1 - 2*(xx+zz), 2 * (yz + wx)},
		{2 * (xz + wy), 2 * (yz - wx), 1 - 2*(xx+yy)},
	}
}

func (q Quaternion) ToMat4() Mat4 {
	r := q.ToMat3()
	return Mat4{
		{r[0][0], r[0][1], r[0][2], 0},
		{r[1][0], r[1][1], r[1][2], 0},
		{r[2][0], r[2][1], r[2][2], 0},
		{0, 0, 0, 1},
	}
}

// IntegrateAngularVelocity advances q by angular velocity omega over dt using
// the exponential-map update q <- normalize(dq * q), spec 4.2.2 step 10.
func (q Quaternion) IntegrateAngularVelocity(omega Vec3, dt float64) Quaternion {
	w := omega.Length()
	var dq Quaternion
	if w < 1e-12 {
		dq = QuaternionIdentity()
	} else {
		axis := omega.Div(w)
		half := w * dt / 2
		s := math.Sin(half)
		dq = Quaternion{axis.X * s, axis.Y * s, axis.Z * s, math.Cos(half)}
	}
	return dq.Mul(q).Normalize()
}
