// Package materials describes surface appearance (spec section 3
// "Material") and the feature bitmask that selects a compiled shader
// permutation (spec section 4.1.3 "ShaderVariantKey"). Grounded on the
// teacher's materials/material.go (PBR-lite fields, ToUniform pattern)
// and scene/material.go (texture-slot naming), merged and extended with
// the full PBR feature set the spec names (clearcoat, subsurface,
// parallax, alpha cutoff).
package materials

import "forgecore/core"

// Feature is one bit of a ShaderVariantKey (spec 4.1.3).
type Feature uint32

const (
	FeatureAlbedoMap Feature = 1 << iota
	FeatureNormalMap
	FeatureMetallicRoughnessMap
	FeatureAOMap
	FeatureEmissiveMap
	FeatureAlphaCutoff
	FeatureClearcoat
	FeatureParallaxMapping
	FeatureSubsurface
	FeatureSkinning
	FeatureInstanced
)

// VariantKey is the set of features that identifies one compiled shader
// permutation. Equal keys must map to the same pipeline handle across the
// process (spec 4.1.3, testable property 7).
type VariantKey uint32

func (k VariantKey) Has(f Feature) bool        { return uint32(k)&uint32(f) != 0 }
func (k VariantKey) With(f Feature) VariantKey { return VariantKey(uint32(k) | uint32(f)) }

// TextureRef is an opaque handle into the texture cache (spec 3 "GPU
// resource handles ... cached by (path→texture)"). Zero means absent.
type TextureRef uint64

// Material is the CPU-side description of a surface. The presence bitmask
// of its optional texture slots plus AlphaCutoff/Clearcoat/Subsurface
// defines the ShaderVariantKey (spec 3, 4.1.3).
type Material struct {
	Name string

	Albedo  core.Color
	Opacity float32

	Metallic            float32
	Roughness           float32
	AlphaCutoff         float32 // 0 disables alpha testing
	EmissiveFactor      core.Color
	Clearcoat           float32
	ClearcoatRoughness  float32
	Subsurface          float32
	ParallaxHeightScale float32

	AlbedoTexture            TextureRef
	NormalTexture            TextureRef
	MetallicRoughnessTexture TextureRef
	AOTexture                TextureRef
	EmissiveTexture          TextureRef
	HeightTexture            TextureRef

	DoubleSided bool
}

func DefaultMaterial() *Material {
	return &Material{
		Name:      "Default",
		Albedo:    core.ColorWhite,
		Opacity:   1,
		Metallic:  0,
		Roughness: 0.5,
	}
}

// VariantKey derives the ShaderVariantKey from the material's presence
// bitmask (spec 4.1.3). Skinning/instancing are not material properties —
// callers OR them in based on the draw record (spec 4.1.4).
func (m *Material) VariantKey() VariantKey {
	var k VariantKey
	if m.AlbedoTexture != 0 {
		k = k.With(FeatureAlbedoMap)
	}
	if m.NormalTexture != 0 {
		k = k.With(FeatureNormalMap)
	}
	if m.MetallicRoughnessTexture != 0 {
		k = k.With(FeatureMetallicRoughnessMap)
	}
	if m.AOTexture != 0 {
		k = k.With(FeatureAOMap)
	}
	if m.EmissiveTexture != 0 {
		k = k.With(FeatureEmissiveMap)
	}
	if m.AlphaCutoff > 0 {
		k = k.With(FeatureAlphaCutoff)
	}
	if m.Clearcoat > 0 {
		k = k.With(FeatureClearcoat)
	}
	if m.HeightTexture != 0 && m.ParallaxHeightScale > 0 {
		k = k.With(FeatureParallaxMapping)
	}
	if m.Subsurface > 0 {
		k = k.With(FeatureSubsurface)
	}
	return k
}

// IsTransparent matches the view builder's opaque/transparent split
// (spec 4.3 step 4: "transparent iff material.opacity < 1 or alpha_cutoff > 0").
func (m *Material) IsTransparent() bool {
	return m.Opacity < 1 || m.AlphaCutoff > 0
}

// UBO is the std140 layout of a Material uniform buffer (spec 6):
// albedo(vec4) + metallic/roughness/ao/alpha_cutoff(4f) + emissive(vec4) +
// clearcoat/cc_rough/subsurface/parallax(4f) + 6 presence int32 + lod_alpha + pad.
type UBO struct {
	Albedo                            [4]float32
	Metallic, Roughness, AO, Cutoff   float32
	Emissive                          [4]float32
	Clearcoat, CCRough, SSS, Parallax float32
	HasAlbedo, HasNormal, HasMR       int32
	HasAO, HasEmissive, HasHeight     int32
	LODAlpha                          float32
	_pad                              [3]float32
}

// Pack builds the std140 material UBO. Bit-exact scalar round-trip is
// required by spec 8 property 11.
func (m *Material) Pack() UBO {
	b := func(ref TextureRef) int32 {
		if ref != 0 {
			return 1
		}
		return 0
	}
	return UBO{
		Albedo:      [4]float32{m.Albedo.R, m.Albedo.G, m.Albedo.B, m.Opacity},
		Metallic:    m.Metallic,
		Roughness:   m.Roughness,
		AO:          1,
		Cutoff:      m.AlphaCutoff,
		Emissive:    [4]float32{m.EmissiveFactor.R, m.EmissiveFactor.G, m.EmissiveFactor.B, 0},
		Clearcoat:   m.Clearcoat,
		CCRough:     m.ClearcoatRoughness,
		SSS:         m.Subsurface,
		Parallax:    m.ParallaxHeightScale,
		HasAlbedo:   b(m.AlbedoTexture),
		HasNormal:   b(m.NormalTexture),
		HasMR:       b(m.MetallicRoughnessTexture),
		HasAO:       b(m.AOTexture),
		HasEmissive: b(m.EmissiveTexture),
		HasHeight:   b(m.HeightTexture),
		LODAlpha:    1,
	}
}
