// shadow.go implements the cascaded shadow map split math and
// light-space matrix derivation (spec 4.1.5), grounded on the
// teacher's internal/opengl/shadow.go single-shadow-map orthographic
// projection, generalized from one map to N logarithmic/linear-blended
// cascades.
package render

import (
	"math"

	gfxmath "forgecore/math"
)

// CascadeSplit is one cascade's near/far distance along the camera's
// view axis and its light-space view-projection matrix.
type CascadeSplit struct {
	Near, Far float32
	ViewProj  gfxmath.Mat4
}

// CascadeSplitDistances computes the N split distances between near
// and far using the practical logarithmic/uniform blend (spec 4.1.5:
// "split_i = near·(far/near)^(i/N)·λ + (near + (i/N)·(far-near))·(1−λ)",
// λ = 0.5).
func CascadeSplitDistances(near, far float32, numCascades int) []float32 {
	const lambda = 0.5
	splits := make([]float32, numCascades)
	for i := 1; i <= numCascades; i++ {
		t := float32(i) / float32(numCascades)
		logSplit := near * float32(math.Pow(float64(far/near), float64(t)))
		uniformSplit := near + t*(far-near)
		splits[i-1] = lambda*logSplit + (1-lambda)*uniformSplit
	}
	return splits
}

// FrustumCorners returns the 8 world-space corners of the view
// frustum slice [splitNear, splitFar] by unprojecting NDC cube corners
// through the inverse view-projection matrix (spec 4.1.5: "Compute
// frustum corners in world space for that slice (from inv(view·proj))").
func FrustumCorners(invViewProj gfxmath.Mat4) [8]gfxmath.Vec3 {
	var corners [8]gfxmath.Vec3
	i := 0
	for _, x := range []float32{-1, 1} {
		for _, y := range []float32{-1, 1} {
			for _, z := range []float32{0, 1} {
				clip := gfxmath.Vec4{X: x, Y: y, Z: z, W: 1}
				world := invViewProj.MulVec(clip)
				if world.W != 0 {
					world.X /= world.W
					world.Y /= world.W
					world.Z /= world.W
				}
				corners[i] = gfxmath.Vec3{X: world.X, Y: world.Y, Z: world.Z}
				i++
			}
		}
	}
	return corners
}

// FitCascadeSphere centers a bounding sphere over the given frustum
// corners so the cascade's light-space projection doesn't pop as the
// camera rotates (spec 4.1.5: "fit a sphere to remove rotation popping").
func FitCascadeSphere(corners [8]gfxmath.Vec3) (center gfxmath.Vec3, radius float32) {
	for _, c := range corners {
		center = center.Add(c)
	}
	center = center.Div(float32(len(corners)))
	for _, c := range corners {
		d := c.Distance(center)
		if d > radius {
			radius = d
		}
	}
	return center, radius
}

// BuildCascadeViewProj derives the light-space view+orthographic
// projection for one cascade, snapping the sphere's texel-space origin
// to the shadow map's texel grid to suppress shimmering (spec 4.1.5:
// "snap to texel grid, derive light-space view+ortho matrix").
func BuildCascadeViewProj(center gfxmath.Vec3, radius float32, lightDir gfxmath.Vec3, resolution int) gfxmath.Mat4 {
	// A light pointing straight down +Y would make Mat4LookAt's up
	// vector parallel to its view axis; use world X as up when the light
	// direction's largest component is Y, and world Y otherwise, instead
	// of a fixed Y-up that only fails for that one case.
	up := gfxmath.Vec3{X: 0, Y: 1, Z: 0}
	if lightDir.Normalize().MaxAxis() == 1 {
		up = gfxmath.Vec3{X: 1, Y: 0, Z: 0}
	}
	eye := center.Sub(lightDir.Normalize().Mul(radius * 2))
	view := gfxmath.Mat4LookAt(eye, center, up)

	texelsPerUnit := float32(resolution) / (radius * 2)
	scaled := view.MulVec3(center).Mul(texelsPerUnit)
	snapped := gfxmath.Vec3{X: float32(math.Round(float64(scaled.X))), Y: float32(math.Round(float64(scaled.Y))), Z: float32(math.Round(float64(scaled.Z)))}
	offset := snapped.Sub(scaled).Div(texelsPerUnit)

	proj := gfxmath.Mat4Orthographic(-radius, radius, -radius, radius, -radius*2, radius*2)
	snappedView := view
	snappedView[3][0] += offset.X
	snappedView[3][1] += offset.Y
	return proj.Mul(snappedView)
}
