package physmath

// AABB is an axis-aligned bounding box in world space, f64 to match the
// physics pipeline. Grounded on the teacher's scene/frustum.go AABB type and
// transformAABB routine (there f32/render-side; this is the physics-side
// twin operated on by broadphase/narrowphase).
type AABB struct {
	Min, Max Vec3
}

func (b AABB) Center() Vec3 {
	return b.Min.Add(b.Max).Mul(0.5)
}

func (b AABB) HalfExtents() Vec3 {
	return b.Max.Sub(b.Min).Mul(0.5)
}

func (b AABB) Expand(margin float64) AABB {
	return AABB{Min: b.Min.Sub(Vec3{margin, margin, margin}), Max: b.Max.Add(Vec3{margin, margin, margin})}
}

func (b AABB) Union(o AABB) AABB {
	return AABB{Min: b.Min.Min(o.Min), Max: b.Max.Max(o.Max)}
}

func (a AABB) Overlaps(b AABB) bool {
	return a.Min.X <= b.Max.X && a.Max.X >= b.Min.X &&
		a.Min.Y <= b.Max.Y && a.Max.Y >= b.Min.Y &&
		a.Min.Z <= b.Max.Z && a.Max.Z >= b.Min.Z
}

// Transform returns the world AABB of a local AABB carried through m, by
// testing all 8 corners — the same approach as the teacher's render-side
// transformAABB, generalized to f64 (spec 8 property 8: identity transform
// must reproduce the local AABB exactly).
func (b AABB) Transform(m Mat4) AABB {
	corners := [8]Vec3{
		{b.Min.X, b.Min.Y, b.Min.Z},
		{b.Max.X, b.Min.Y, b.Min.Z},
		{b.Min.X, b.Max.Y, b.Min.Z},
		{b.Max.X, b.Max.Y, b.Min.Z},
		{b.Min.X, b.Min.Y, b.Max.Z},
		{b.Max.X, b.Min.Y, b.Max.Z},
		{b.Min.X, b.Max.Y, b.Max.Z},
		{b.Max.X, b.Max.Y, b.Max.Z},
	}
	first := m.MulPoint(corners[0])
	out := AABB{Min: first, Max: first}
	for i := 1; i < 8; i++ {
		p := m.MulPoint(corners[i])
		out.Min = out.Min.Min(p)
		out.Max = out.Max.Max(p)
	}
	return out
}
