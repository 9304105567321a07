package render

import (
	"testing"

	"forgecore/engineconfig"
)

func TestVariantKeyForPassDistinguishesFlagSets(t *testing.T) {
	a := VariantKeyForPass(PassBloomComposite, engineconfig.PostProcessFlags{BloomEnabled: true})
	b := VariantKeyForPass(PassBloomComposite, engineconfig.PostProcessFlags{BloomEnabled: false})
	if a == b {
		t.Fatalf("expected different variant keys for different flag sets")
	}

	c := VariantKeyForPass(PassBloomComposite, engineconfig.PostProcessFlags{BloomEnabled: true})
	if a != c {
		t.Fatalf("expected identical flag sets to produce identical variant keys")
	}
}

func TestVariantKeyForPassDistinguishesKind(t *testing.T) {
	flags := engineconfig.PostProcessFlags{TAAEnabled: true}
	dof := VariantKeyForPass(PassDepthOfField, flags)
	blur := VariantKeyForPass(PassMotionBlur, flags)
	if dof == blur {
		t.Fatalf("expected different pass kinds to produce different variant keys")
	}
}

func TestPackPostProcessFlattensParams(t *testing.T) {
	params := engineconfig.PostProcessParams{
		ToneMapping:    engineconfig.ToneMappingACES,
		BloomIntensity: 0.5,
		Gamma:          2.2,
	}
	ubo := PackPostProcess(params)
	if ubo.ToneMapping != int32(engineconfig.ToneMappingACES) {
		t.Fatalf("tone mapping not packed correctly")
	}
	if ubo.Gamma != 2.2 {
		t.Fatalf("gamma not packed correctly")
	}
}
