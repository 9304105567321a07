package render

import (
	"testing"

	gfxmath "forgecore/math"
	"forgecore/view"
)

func TestPackPerFrameFlipsProjectionYAxis(t *testing.T) {
	frame := view.FrameData{
		ViewMatrix:       gfxmath.Mat4Identity(),
		ProjectionMatrix: gfxmath.Mat4Perspective(1.0, 16.0/9.0, 0.1, 100),
		CameraPosition:   gfxmath.Vec3{X: 1, Y: 2, Z: 3},
	}
	ubo := PackPerFrame(frame, 1.5)

	// Negating the output Y means projecting a point with positive source
	// Y should produce a negative Y after applying the packed projection.
	up := gfxmath.Vec4{X: 0, Y: 1, Z: -5, W: 1}
	original := frame.ProjectionMatrix.MulVec(up)
	flipped := ubo.Projection.MulVec(up)
	if original.Y == 0 || flipped.Y != -original.Y {
		t.Fatalf("expected Y to be negated: original=%f flipped=%f", original.Y, flipped.Y)
	}

	if ubo.CameraPos != [4]float32{1, 2, 3, 1} {
		t.Fatalf("camera position not packed correctly: %v", ubo.CameraPos)
	}
	if ubo.Time != 1.5 {
		t.Fatalf("time not packed correctly: %f", ubo.Time)
	}
}

func TestPackPerObjectNormalMatrixIsTranspose(t *testing.T) {
	model := gfxmath.Mat4Translation(gfxmath.Vec3{X: 5, Y: 0, Z: 0})
	push := PackPerObject(model)

	nt := model.Transpose()
	if push.NormalMatrix0 != [4]float32{nt[0][0], nt[0][1], nt[0][2], 0} {
		t.Fatalf("normal matrix row 0 mismatch")
	}
}

func TestPackLightsClampsToMaxCounts(t *testing.T) {
	var points []view.LightItem
	for i := 0; i < maxPointLightsUBO+5; i++ {
		points = append(points, view.LightItem{Position: gfxmath.Vec3{X: float32(i)}})
	}
	frame := view.FrameData{PointLights: points}

	ubo := PackLights(frame, 1.0)
	if ubo.NumPoints != int32(maxPointLightsUBO) {
		t.Fatalf("expected NumPoints clamped to %d, got %d", maxPointLightsUBO, ubo.NumPoints)
	}
	if ubo.IBLIntensity != 1.0 {
		t.Fatalf("IBL intensity not packed correctly")
	}
}
