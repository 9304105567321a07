// uniforms.go packs the std140 uniform buffer layouts named in spec
// section 6, grounded on the teacher's vulkan/buffer.go CopyData
// pattern (a CPU struct copied byte-for-byte into a mapped host-visible
// buffer) and materials.Material's own Pack() for the material UBO.
package render

import (
	gfxmath "forgecore/math"
	"forgecore/view"
)

// PerFrameUBO is bound at descriptor set 0 (spec 4.1.4 step 2 "bind set
// 0 (per-frame UBO)"), std140: three mat4 plus a padded vec4+float.
type PerFrameUBO struct {
	View       gfxmath.Mat4
	Projection gfxmath.Mat4
	InvViewProj gfxmath.Mat4
	CameraPos  [4]float32
	Time       float32
	_pad       [3]float32
}

// PackPerFrame builds the per-frame UBO from a view.FrameData, mirroring
// Vulkan's Y-down NDC by negating the projection's column 1, the one
// that produces output Y for this row-vector Mat4 (spec
// 4.1.2 "Y-flip: the executor mirrors the projection's second row
// before packing per-frame UBOs").
func PackPerFrame(frame view.FrameData, timeSeconds float32) PerFrameUBO {
	// forgecore/math's Mat4 multiplies row-vectors on the left
	// (MulVec = v.MulMat(m)), so the output Y component is the
	// contraction of v with column 1 — negate that column to flip it.
	proj := frame.ProjectionMatrix
	for i := 0; i < 4; i++ {
		proj[i][1] = -proj[i][1]
	}
	vp := proj.Mul(frame.ViewMatrix)
	return PerFrameUBO{
		View:        frame.ViewMatrix,
		Projection:  proj,
		InvViewProj: vp.Inverse(),
		CameraPos:   [4]float32{frame.CameraPosition.X, frame.CameraPosition.Y, frame.CameraPosition.Z, 1},
		Time:        timeSeconds,
	}
}

// PerObjectPushConstants is pushed per draw (spec 6 "PerObject (push
// constants, 112 bytes): model(mat4) + 3 vec4 normal-matrix columns").
type PerObjectPushConstants struct {
	Model         gfxmath.Mat4
	NormalMatrix0 [4]float32
	NormalMatrix1 [4]float32
	NormalMatrix2 [4]float32
}

// PackPerObject derives the push-constant block for one draw, deriving
// the normal matrix as the transpose of the model's upper-left 3x3
// (spec's normal-matrix columns; the last lane of each column is
// unused padding to keep std140-compatible 16-byte stride).
func PackPerObject(model gfxmath.Mat4) PerObjectPushConstants {
	nt := model.Transpose()
	return PerObjectPushConstants{
		Model:         model,
		NormalMatrix0: [4]float32{nt[0][0], nt[0][1], nt[0][2], 0},
		NormalMatrix1: [4]float32{nt[1][0], nt[1][1], nt[1][2], 0},
		NormalMatrix2: [4]float32{nt[2][0], nt[2][1], nt[2][2], 0},
	}
}

const (
	maxPointLightsUBO = view.MaxPointLights
	maxDirLightsUBO   = view.MaxDirectionalLights
)

// gpuPointLight / gpuDirLight are the std140 GPU-side light records
// (spec 6 "Lights: 16 PointLight + 4 DirLight + counts + IBL intensity").
type gpuPointLight struct {
	PositionRange [4]float32 // xyz position, w range
	ColorIntensity [4]float32
}

type gpuDirLight struct {
	Direction      [4]float32
	ColorIntensity [4]float32
}

// LightsUBO is the full lights uniform buffer bound to the deferred
// lighting pass.
type LightsUBO struct {
	Points      [maxPointLightsUBO]gpuPointLight
	Directional [maxDirLightsUBO]gpuDirLight
	NumPoints   int32
	NumDir      int32
	IBLIntensity float32
	_pad        float32
}

// PackLights copies the view builder's resolved lights into their
// std140 GPU layout, zero-filling unused slots.
func PackLights(frame view.FrameData, iblIntensity float32) LightsUBO {
	var out LightsUBO
	for i, l := range frame.PointLights {
		if i >= maxPointLightsUBO {
			break
		}
		out.Points[i] = gpuPointLight{
			PositionRange:  [4]float32{l.Position.X, l.Position.Y, l.Position.Z, l.Range},
			ColorIntensity: [4]float32{l.Color[0], l.Color[1], l.Color[2], l.Intensity},
		}
	}
	for i, l := range frame.DirectionalLights {
		if i >= maxDirLightsUBO {
			break
		}
		out.Directional[i] = gpuDirLight{
			Direction:      [4]float32{l.Direction.X, l.Direction.Y, l.Direction.Z, 0},
			ColorIntensity: [4]float32{l.Color[0], l.Color[1], l.Color[2], l.Intensity},
		}
	}
	out.NumPoints = int32(len(frame.PointLights))
	if out.NumPoints > maxPointLightsUBO {
		out.NumPoints = maxPointLightsUBO
	}
	out.NumDir = int32(len(frame.DirectionalLights))
	if out.NumDir > maxDirLightsUBO {
		out.NumDir = maxDirLightsUBO
	}
	out.IBLIntensity = iblIntensity
	return out
}

const maxShadowCascades = 4

// ShadowUBO is bound alongside the lights UBO during deferred lighting
// (spec 6 "Shadow: 4 mat4 cascade matrices + 5 split floats + num_cascades
// + has_shadows + pad").
type ShadowUBO struct {
	CascadeViewProj [maxShadowCascades]gfxmath.Mat4
	SplitDistances  [5]float32
	NumCascades     int32
	HasShadows      int32
	_pad            [2]float32
}
