// ssao.go generates the tangent-space hemisphere sample kernel for
// screen-space ambient occlusion (spec 4.1.6: "64 Hammersley samples in
// tangent-space hemisphere"), grounded on the teacher's
// internal/opengl/ssao.go kernel-generation loop, ported from its
// pseudo-random hemisphere sampling to a deterministic Hammersley
// sequence so the kernel is reproducible across runs without an RNG.
package render

import (
	"math"

	gfxmath "forgecore/math"
)

const SSAOKernelSize = 64

// hammersley returns the i-th point of the 2D Hammersley low-discrepancy
// sequence for a kernel of the given size (radical inverse of i in base 2
// as the second coordinate).
func hammersley(i, n int) (float32, float32) {
	bits := uint32(i)
	bits = (bits << 16) | (bits >> 16)
	bits = ((bits & 0x55555555) << 1) | ((bits & 0xAAAAAAAA) >> 1)
	bits = ((bits & 0x33333333) << 2) | ((bits & 0xCCCCCCCC) >> 2)
	bits = ((bits & 0x0F0F0F0F) << 4) | ((bits & 0xF0F0F0F0) >> 4)
	bits = ((bits & 0x00FF00FF) << 8) | ((bits & 0xFF00FF00) >> 8)
	radicalInverse := float32(bits) * 2.3283064365386963e-10
	return float32(i) / float32(n), radicalInverse
}

// BuildSSAOKernel produces SSAOKernelSize tangent-space sample offsets
// within the unit hemisphere (+Z up), scaled so samples cluster closer
// to the origin (spec's "hemisphere, ... noise-texture jitter" -
// accelerating interpolation matches the teacher's ssao.go kernel bias).
func BuildSSAOKernel() [SSAOKernelSize]gfxmath.Vec3 {
	var kernel [SSAOKernelSize]gfxmath.Vec3
	for i := 0; i < SSAOKernelSize; i++ {
		u, v := hammersley(i, SSAOKernelSize)
		theta := 2 * math.Pi * float64(u)
		// cosine-weighted hemisphere sample so more samples land near
		// the surface normal, matching typical SSAO kernel bias.
		cosPhi := math.Sqrt(1 - float64(v))
		sinPhi := math.Sqrt(float64(v))

		sample := gfxmath.Vec3{
			X: float32(math.Cos(theta) * sinPhi),
			Y: float32(math.Sin(theta) * sinPhi),
			Z: float32(cosPhi),
		}

		scale := float32(i) / float32(SSAOKernelSize)
		scale = lerp32(0.1, 1.0, scale*scale)
		kernel[i] = sample.Mul(scale)
	}
	return kernel
}

// BuildSSAONoise produces a 4x4 tiling rotation-noise texture used to
// jitter the kernel per pixel (spec 4.1.6 "noise-texture jitter"). Each
// entry rotates the kernel around the surface normal in tangent space,
// which only needs the two in-plane components, so this is a Vec2 (the
// teacher's ssao kernel keeps a redundant always-zero Z component for
// this same table; there's no third axis to jitter).
func BuildSSAONoise() [16]gfxmath.Vec2 {
	var noise [16]gfxmath.Vec2
	for i := range noise {
		u, v := hammersley(i, 16)
		noise[i] = gfxmath.Vec2{X: u*2 - 1, Y: v*2 - 1}
	}
	return noise
}

func lerp32(a, b, t float32) float32 {
	return a + (b-a)*t
}
