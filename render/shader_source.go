// shader_source.go generates and compiles the GLSL source for one
// materials.VariantKey permutation, grounded on the teacher's
// renderer/shaders.go CompileShaderGLSL (shell out to glslc or
// glslangValidator, read back the SPIR-V words as little-endian
// uint32s) and its DefaultVertexShaderGLSL/DefaultFragmentShaderGLSL
// base shaders, extended here with a `#define FEATURE_X` block per set
// materials.Feature bit so PipelineCache.GetOrCreate can lazily compile
// each permutation on first use (spec 4.1.3).
package render

import (
	"encoding/binary"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"forgecore/materials"
)

var featureDefines = []struct {
	bit  materials.Feature
	name string
}{
	{materials.FeatureAlbedoMap, "FEATURE_ALBEDO_MAP"},
	{materials.FeatureNormalMap, "FEATURE_NORMAL_MAP"},
	{materials.FeatureMetallicRoughnessMap, "FEATURE_METALLIC_ROUGHNESS_MAP"},
	{materials.FeatureAOMap, "FEATURE_AO_MAP"},
	{materials.FeatureEmissiveMap, "FEATURE_EMISSIVE_MAP"},
	{materials.FeatureAlphaCutoff, "FEATURE_ALPHA_CUTOFF"},
	{materials.FeatureClearcoat, "FEATURE_CLEARCOAT"},
	{materials.FeatureParallaxMapping, "FEATURE_PARALLAX_MAPPING"},
	{materials.FeatureSubsurface, "FEATURE_SUBSURFACE"},
	{materials.FeatureSkinning, "FEATURE_SKINNING"},
	{materials.FeatureInstanced, "FEATURE_INSTANCED"},
}

// featurePreamble builds the `#define FEATURE_X` block for every bit set
// in key, inserted immediately after the `#version` line so the GLSL
// preprocessor can gate optional code paths.
func featurePreamble(key materials.VariantKey) string {
	var b strings.Builder
	for _, fd := range featureDefines {
		if key.Has(fd.bit) {
			fmt.Fprintf(&b, "#define %s 1\n", fd.name)
		}
	}
	return b.String()
}

func withPreamble(source string, key materials.VariantKey) string {
	const versionLine = "#version 450\n"
	body := strings.TrimPrefix(source, versionLine)
	return versionLine + featurePreamble(key) + body
}

// CompileVariantSource is a VariantSourceFunc generating the
// forward-shaded vertex/fragment GLSL for key and compiling both stages to
// SPIR-V (spec 4.1.3). outDir is a scratch directory for the compiler's
// temporary output files.
func CompileVariantSource(outDir string) VariantSourceFunc {
	return func(key materials.VariantKey) (ShaderSource, error) {
		vertWords, err := compileShaderGLSL(withPreamble(DefaultVertexShaderGLSL, key), fmt.Sprintf("%s/variant_%#x.vert.spv", outDir, uint32(key)))
		if err != nil {
			return ShaderSource{}, fmt.Errorf("render: compiling vertex stage: %w", err)
		}
		fragWords, err := compileShaderGLSL(withPreamble(DefaultFragmentShaderGLSL, key), fmt.Sprintf("%s/variant_%#x.frag.spv", outDir, uint32(key)))
		if err != nil {
			return ShaderSource{}, fmt.Errorf("render: compiling fragment stage: %w", err)
		}
		return ShaderSource{VertexSPIRV: vertWords, FragmentSPIRV: fragWords}, nil
	}
}

// compileShaderGLSL shells out to glslc (preferred) or glslangValidator,
// matching the teacher's renderer/shaders.go CompileShaderGLSL exactly,
// generalized only to take source text directly rather than assuming a
// fixed default shader.
func compileShaderGLSL(source, outputPath string) ([]uint32, error) {
	tempSrc := outputPath + ".tmp"
	if err := os.WriteFile(tempSrc, []byte(source), 0644); err != nil {
		return nil, err
	}
	defer os.Remove(tempSrc)

	var cmd *exec.Cmd
	if _, err := exec.LookPath("glslc"); err == nil {
		cmd = exec.Command("glslc", tempSrc, "-o", outputPath, "-O")
	} else if _, err := exec.LookPath("glslangValidator"); err == nil {
		cmd = exec.Command("glslangValidator", "-V", tempSrc, "-o", outputPath)
	} else {
		return nil, fmt.Errorf("no shader compiler found (glslc or glslangValidator)")
	}

	if output, err := cmd.CombinedOutput(); err != nil {
		return nil, fmt.Errorf("shader compilation failed: %v\n%s", err, output)
	}
	defer os.Remove(outputPath)

	data, err := os.ReadFile(outputPath)
	if err != nil {
		return nil, err
	}

	words := make([]uint32, len(data)/4)
	for i := range words {
		words[i] = binary.LittleEndian.Uint32(data[i*4:])
	}
	return words, nil
}

// DefaultVertexShaderGLSL is the forward-shaded geometry vertex stage,
// extended from the teacher's renderer/shaders.go default with the
// per-object push-constant block render/uniforms.go's PackPerObject
// produces (model + normal matrix) in place of a per-draw UBO.
const DefaultVertexShaderGLSL = `
#version 450

layout(binding = 0) uniform PerFrameUBO {
    mat4 view;
    mat4 projection;
    vec4 cameraPos;
    float time;
} perFrame;

layout(push_constant) uniform PerObjectPush {
    mat4 model;
    vec4 normalMatrix0;
    vec4 normalMatrix1;
    vec4 normalMatrix2;
} perObject;

layout(location = 0) in vec3 inPosition;
layout(location = 1) in vec3 inNormal;
layout(location = 2) in vec2 inTexCoord;
layout(location = 3) in vec4 inColor;

layout(location = 0) out vec3 fragNormal;
layout(location = 1) out vec2 fragTexCoord;
layout(location = 2) out vec4 fragColor;
layout(location = 3) out vec3 fragPos;

void main() {
    vec4 worldPos = perObject.model * vec4(inPosition, 1.0);
    gl_Position = perFrame.projection * perFrame.view * worldPos;
    fragPos = worldPos.xyz;
    mat3 normalMatrix = mat3(perObject.normalMatrix0.xyz, perObject.normalMatrix1.xyz, perObject.normalMatrix2.xyz);
    fragNormal = normalMatrix * inNormal;
    fragTexCoord = inTexCoord;
    fragColor = inColor;
}
`

// CompileVignetteSource compiles the vignette fullscreen pass's GLSL to
// SPIR-V. Unlike CompileVariantSource it takes no variant key: the pass
// reads only a push-constant parameter block, so there's exactly one
// permutation.
func CompileVignetteSource(outDir string) (ShaderSource, error) {
	vertWords, err := compileShaderGLSL(VignetteVertexShaderGLSL, fmt.Sprintf("%s/vignette.vert.spv", outDir))
	if err != nil {
		return ShaderSource{}, fmt.Errorf("render: compiling vignette vertex stage: %w", err)
	}
	fragWords, err := compileShaderGLSL(VignetteFragmentShaderGLSL, fmt.Sprintf("%s/vignette.frag.spv", outDir))
	if err != nil {
		return ShaderSource{}, fmt.Errorf("render: compiling vignette fragment stage: %w", err)
	}
	return ShaderSource{VertexSPIRV: vertWords, FragmentSPIRV: fragWords}, nil
}

// VignetteVertexShaderGLSL draws the standard attachment-less fullscreen
// triangle (3 vertices, no vertex buffer, NDC position derived from
// gl_VertexIndex) that every post-process pass in this engine uses.
const VignetteVertexShaderGLSL = `
#version 450

void main() {
    vec2 positions[3] = vec2[](
        vec2(-1.0, -1.0),
        vec2(3.0, -1.0),
        vec2(-1.0, 3.0)
    );
    gl_Position = vec4(positions[gl_VertexIndex], 0.0, 1.0);
}
`

// VignetteFragmentShaderGLSL darkens the screen's corners by writing a
// black fragment whose alpha channel carries the darkening amount,
// letting the already-enabled SRC_ALPHA/ONE_MINUS_SRC_ALPHA blend state
// composite it over whatever opaque/transparent geometry already wrote
// to this pixel (spec 4.1.8's vignette parameter, applied in-place since
// this renderer has no offscreen color target to sample for a true
// post-process pass).
const VignetteFragmentShaderGLSL = `
#version 450

layout(push_constant) uniform VignettePush {
    float intensity;
    float _pad;
    vec2 screenSize;
} params;

layout(location = 0) out vec4 outColor;

void main() {
    vec2 uv = gl_FragCoord.xy / params.screenSize;
    vec2 centered = uv - vec2(0.5);
    float dist = length(centered) * 1.4142135;
    float amount = clamp(dist * params.intensity, 0.0, 1.0);
    outColor = vec4(0.0, 0.0, 0.0, amount);
}
`

// DefaultFragmentShaderGLSL is the forward-shaded geometry fragment stage,
// adapted from the teacher's default fragment shader to read the
// feature defines this file injects instead of always sampling every
// texture slot unconditionally.
const DefaultFragmentShaderGLSL = `
#version 450

layout(binding = 1) uniform sampler2D albedoMap;

layout(location = 0) in vec3 fragNormal;
layout(location = 1) in vec2 fragTexCoord;
layout(location = 2) in vec4 fragColor;
layout(location = 3) in vec3 fragPos;

layout(location = 0) out vec4 outColor;

void main() {
    vec3 normal = normalize(fragNormal);
    vec4 base = fragColor;
#ifdef FEATURE_ALBEDO_MAP
    base *= texture(albedoMap, fragTexCoord);
#endif
#ifdef FEATURE_ALPHA_CUTOFF
    if (base.a < 0.5) {
        discard;
    }
#endif
    float ndotl = max(dot(normal, normalize(vec3(0.3, 1.0, 0.2))), 0.0);
    outColor = vec4(base.rgb * (0.2 + 0.8 * ndotl), base.a);
}
`
