package render

import (
	"testing"

	gfxmath "forgecore/math"
)

func TestCascadeSplitDistancesMonotonicallyIncreasing(t *testing.T) {
	splits := CascadeSplitDistances(0.1, 200, 4)
	if len(splits) != 4 {
		t.Fatalf("expected 4 splits, got %d", len(splits))
	}
	prev := float32(0.1)
	for i, s := range splits {
		if s <= prev {
			t.Fatalf("split %d (%f) not greater than previous (%f)", i, s, prev)
		}
		prev = s
	}
	if splits[len(splits)-1] != 200 {
		t.Fatalf("last split should equal far plane, got %f", splits[len(splits)-1])
	}
}

func TestFrustumCornersFitPositiveRadiusSphere(t *testing.T) {
	proj := gfxmath.Mat4Perspective(1.0, 1.0, 0.1, 100)
	view := gfxmath.Mat4LookAt(gfxmath.Vec3{X: 0, Y: 0, Z: 5}, gfxmath.Vec3{}, gfxmath.Vec3{Y: 1})
	vp := proj.Mul(view)
	corners := FrustumCorners(vp.Inverse())

	center, radius := FitCascadeSphere(corners)
	if radius <= 0 {
		t.Fatalf("expected positive bounding radius, got %f", radius)
	}
	_ = center
}

func TestBuildCascadeViewProjProducesFiniteMatrix(t *testing.T) {
	lightDir := gfxmath.Vec3{X: 0.3, Y: -1, Z: 0.2}.Normalize()
	vp := BuildCascadeViewProj(gfxmath.Vec3{}, 20, lightDir, 2048)
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			v := vp[i][j]
			if v-v != 0 { // NaN or Inf check
				t.Fatalf("matrix element [%d][%d] is not finite", i, j)
			}
		}
	}
}
