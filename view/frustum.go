package view

import (
	gfxmath "forgecore/math"
	"forgecore/physmath"
)

// plane and frustum are ported nearly as-is from the teacher's
// scene/frustum.go Gribb/Hartmann extraction, generalized only in that
// intersectsAABB tests a physmath.AABB (f64 world bounds) instead of a
// scene.AABB.
type plane struct {
	Normal gfxmath.Vec3
	D      float32
}

func (p plane) distanceTo(pt gfxmath.Vec3) float32 {
	return p.Normal.Dot(pt) + p.D
}

type frustum struct {
	Planes [6]plane
}

// frustumFromVP extracts the six frustum planes from a view-projection
// matrix (spec 4.3 step 3). See the teacher's scene/frustum.go for the
// Go-column/GLSL-row convention this relies on.
func frustumFromVP(vp gfxmath.Mat4) frustum {
	r0 := gfxmath.Vec4{X: vp[0][0], Y: vp[0][1], Z: vp[0][2], W: vp[0][3]}
	r1 := gfxmath.Vec4{X: vp[1][0], Y: vp[1][1], Z: vp[1][2], W: vp[1][3]}
	r2 := gfxmath.Vec4{X: vp[2][0], Y: vp[2][1], Z: vp[2][2], W: vp[2][3]}
	r3 := gfxmath.Vec4{X: vp[3][0], Y: vp[3][1], Z: vp[3][2], W: vp[3][3]}

	var f frustum
	f.Planes[0] = normalizePlane(r3.X+r0.X, r3.Y+r0.Y, r3.Z+r0.Z, r3.W+r0.W)
	f.Planes[1] = normalizePlane(r3.X-r0.X, r3.Y-r0.Y, r3.Z-r0.Z, r3.W-r0.W)
	f.Planes[2] = normalizePlane(r3.X+r1.X, r3.Y+r1.Y, r3.Z+r1.Z, r3.W+r1.W)
	f.Planes[3] = normalizePlane(r3.X-r1.X, r3.Y-r1.Y, r3.Z-r1.Z, r3.W-r1.W)
	f.Planes[4] = normalizePlane(r3.X+r2.X, r3.Y+r2.Y, r3.Z+r2.Z, r3.W+r2.W)
	f.Planes[5] = normalizePlane(r3.X-r2.X, r3.Y-r2.Y, r3.Z-r2.Z, r3.W-r2.W)
	return f
}

func normalizePlane(a, b, c, d float32) plane {
	l := gfxmath.Vec3{X: a, Y: b, Z: c}.Length()
	if l == 0 {
		return plane{}
	}
	return plane{Normal: gfxmath.Vec3{X: a / l, Y: b / l, Z: c / l}, D: d / l}
}

// intersectsAABB is the teacher's "n-vertex" test (spec 4.3 step 4:
// "frustum-cull against cached local AABB").
func (f frustum) intersectsAABB(box physmath.AABB) bool {
	min := toGfxVec3(box.Min)
	max := toGfxVec3(box.Max)
	for _, p := range f.Planes {
		px := max.X
		if p.Normal.X < 0 {
			px = min.X
		}
		py := max.Y
		if p.Normal.Y < 0 {
			py = min.Y
		}
		pz := max.Z
		if p.Normal.Z < 0 {
			pz = min.Z
		}
		if p.distanceTo(gfxmath.Vec3{X: px, Y: py, Z: pz}) < 0 {
			return false
		}
	}
	return true
}
