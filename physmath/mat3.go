package physmath

// Mat3 is a row-major 3x3 matrix, used for inertia tensors.
type Mat3 [3][3]float64

func Mat3Identity() Mat3 {
	return Mat3{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}}
}

func Mat3Diag(x, y, z float64) Mat3 {
	return Mat3{{x, 0, 0}, {0, y, 0}, {0, 0, z}}
}

func (m Mat3) Mul(o Mat3) Mat3 {
	var r Mat3
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			var sum float64
			for k := 0; k < 3; k++ {
				sum += m[i][k] * o[k][j]
			}
			r[i][j] = sum
		}
	}
	return r
}

func (m Mat3) MulVec(v Vec3) Vec3 {
	return Vec3{
		X: m[0][0]*v.X + m[0][1]*v.Y + m[0][2]*v.Z,
		Y: m[1][0]*v.X + m[1][1]*v.Y + m[1][2]*v.Z,
		Z: m[2][0]*v.X + m[2][1]*v.Y + m[2][2]*v.Z,
	}
}

func (m Mat3) Transpose() Mat3 {
	return Mat3{
		{m[0][0], m[1][0], m[2][0]},
		{m[0][1], m[1][1], m[2][1]},
		{m[0][2], m[1][2], m[2][2]},
	}
}

// Sandwich computes R * m * Rt, the similarity transform used to recompute
// world-space inverse inertia each sub-step (spec 4.2.2 step 1).
func (r Mat3) Sandwich(m Mat3) Mat3 {
	return r.Mul(m).Mul(r.Transpose())
}

// Inverse computes the adjugate-over-determinant inverse, falling back to
// the identity for a singular matrix (degenerate scale).
func (m Mat3) Inverse() Mat3 {
	a := m
	cof00 := a[1][1]*a[2][2] - a[1][2]*a[2][1]
	cof01 := a[1][2]*a[2][0] - a[1][0]*a[2][2]
	cof02 := a[1][0]*a[2][1] - a[1][1]*a[2][0]

	det := a[0][0]*cof00 + a[0][1]*cof01 + a[0][2]*cof02
	if det == 0 {
		return Mat3Identity()
	}
	invDet := 1 / det

	cof10 := a[0][2]*a[2][1] - a[0][1]*a[2][2]
	cof11 := a[0][0]*a[2][2] - a[0][2]*a[2][0]
	cof12 := a[0][1]*a[2][0] - a[0][0]*a[2][1]

	cof20 := a[0][1]*a[1][2] - a[0][2]*a[1][1]
	cof21 := a[0][2]*a[1][0] - a[0][0]*a[1][2]
	cof22 := a[0][0]*a[1][1] - a[0][1]*a[1][0]

	return Mat3{
		{cof00 * invDet, cof10 * invDet, cof20 * invDet},
		{cof01 * invDet, cof11 * invDet, cof21 * invDet},
		{cof02 * invDet, cof12 * invDet, cof22 * invDet},
	}
}
