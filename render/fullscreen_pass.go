// fullscreen_pass.go models the post-process chain's fullscreen passes
// (depth of field, motion blur, bloom composite, present — spec 4.1.8),
// grounded on the teacher's internal/opengl/postprocess.go pass
// sequencing, generalized from fixed GL draw calls into data describing
// each pass's shader variant and packed parameter UBO. Each pass draws
// a single fullscreen triangle (vertexCount=3, no vertex buffer, the
// shader derives NDC position from gl_VertexIndex), the standard
// attachment-less fullscreen-pass idiom.
package render

import (
	"forgecore/engineconfig"
	"forgecore/materials"
	"forgecore/vulkan"
)

// FullscreenPassKind identifies one stage of the post-process chain
// (spec 4.1.8's pass list, minus bloom's separable blur sub-passes which
// the teacher already implements as a ping-pong loop over one shader).
type FullscreenPassKind uint32

const (
	PassDepthOfField FullscreenPassKind = iota
	PassMotionBlur
	PassBloomComposite
	PassPresent
)

const (
	postFlagBloom FullscreenPassKind = 1 << (16 + iota)
	postFlagSSAO
	postFlagFXAA
	postFlagTAA
	postFlagDOF
	postFlagMotionBlur
	postFlagVignette
	postFlagColorGrading
)

// VariantKeyForPass derives a ShaderVariantKey for a fullscreen pass from
// its kind and the enabled post_process flags, so PipelineCache caches
// one compiled pipeline per (kind, flag-set) combination (spec 4.1.3's
// variant-caching guarantee applied to post-process shaders too).
func VariantKeyForPass(kind FullscreenPassKind, flags engineconfig.PostProcessFlags) materials.VariantKey {
	key := uint32(kind)
	set := func(on bool, bit FullscreenPassKind) {
		if on {
			key |= uint32(bit)
		}
	}
	set(flags.BloomEnabled, postFlagBloom)
	set(flags.SSAOEnabled, postFlagSSAO)
	set(flags.FXAAEnabled, postFlagFXAA)
	set(flags.TAAEnabled, postFlagTAA)
	set(flags.DOFEnabled, postFlagDOF)
	set(flags.MotionBlurEnabled, postFlagMotionBlur)
	set(flags.VignetteEnabled, postFlagVignette)
	set(flags.ColorGradingEnabled, postFlagColorGrading)
	return materials.VariantKey(key)
}

// PostProcessUBO is the std140 layout of the fullscreen pass parameter
// buffer (spec 6 "post_process flags" + tone mapping/bloom/DOF params).
type PostProcessUBO struct {
	ToneMapping       int32
	BloomIntensity    float32
	BloomThreshold    float32
	FocusDistance     float32
	FocusRange        float32
	MotionBlurSamples int32
	Gamma             float32
	VignetteIntensity float32
}

// PackPostProcess flattens the engine config's post-process params into
// their UBO layout.
func PackPostProcess(params engineconfig.PostProcessParams) PostProcessUBO {
	return PostProcessUBO{
		ToneMapping:       int32(params.ToneMapping),
		BloomIntensity:    params.BloomIntensity,
		BloomThreshold:    params.BloomThreshold,
		FocusDistance:     params.FocusDistance,
		FocusRange:        params.FocusRange,
		MotionBlurSamples: int32(params.MotionBlurSamples),
		Gamma:             params.Gamma,
		VignetteIntensity: params.VignetteIntensity,
	}
}

// VignettePushConstants is the fragment push-constant block the
// vignette pass feeds gl_FragCoord-relative darkening (spec 4.1.8's
// vignette parameter). ScreenSize lets the shader normalize
// gl_FragCoord without a separate uniform buffer.
type VignettePushConstants struct {
	Intensity  float32
	_pad       float32
	ScreenSize [2]float32
}

// FullscreenPass pairs one compiled pipeline with its pass kind. The
// creator of the pass builds Pipeline and sets it; FullscreenPass does no
// pipeline caching or lookup of its own.
type FullscreenPass struct {
	Kind     FullscreenPassKind
	Pipeline *vulkan.Pipeline
}

// Record binds the pass's pipeline and issues the fullscreen triangle
// draw. Any descriptor sets/push constants carrying PostProcessUBO are
// the caller's to bind.
func (p *FullscreenPass) Record(cmd *vulkan.CommandBuffer) {
	cmd.BindPipeline(p.Pipeline.Handle)
	cmd.Draw(3, 1, 0, 0)
}
