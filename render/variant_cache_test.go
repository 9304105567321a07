package render

import (
	"fmt"
	"testing"

	"forgecore/materials"
	"forgecore/vulkan"
)

func stubPipelineCache() (*PipelineCache, *int) {
	compiles := 0
	c := &PipelineCache{
		pipelines: make(map[materials.VariantKey]*vulkan.Pipeline),
		config:    vulkan.DefaultPipelineConfig(),
		createPipeline: func(device *vulkan.Device, config vulkan.PipelineConfig) (*vulkan.Pipeline, error) {
			compiles++
			return &vulkan.Pipeline{}, nil
		},
	}
	return c, &compiles
}

func TestPipelineCacheEqualKeysReturnSamePointer(t *testing.T) {
	c, compiles := stubPipelineCache()
	source := func(key materials.VariantKey) (ShaderSource, error) {
		return ShaderSource{VertexSPIRV: []uint32{1}, FragmentSPIRV: []uint32{2}}, nil
	}

	key := materials.VariantKey(7)
	p1, err := c.GetOrCreate(key, source)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	p2, err := c.GetOrCreate(key, source)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p1 != p2 {
		t.Fatalf("equal keys returned different pipeline pointers")
	}
	if *compiles != 1 {
		t.Fatalf("expected exactly 1 compile, got %d", *compiles)
	}
}

func TestPipelineCacheDistinctKeysCompileSeparately(t *testing.T) {
	c, compiles := stubPipelineCache()
	source := func(key materials.VariantKey) (ShaderSource, error) {
		return ShaderSource{}, nil
	}

	if _, err := c.GetOrCreate(materials.VariantKey(1), source); err != nil {
		t.Fatal(err)
	}
	if _, err := c.GetOrCreate(materials.VariantKey(2), source); err != nil {
		t.Fatal(err)
	}
	if *compiles != 2 {
		t.Fatalf("expected 2 compiles for 2 distinct keys, got %d", *compiles)
	}
	if c.Len() != 2 {
		t.Fatalf("expected cache length 2, got %d", c.Len())
	}
}

func TestPipelineCacheSourceErrorWraps(t *testing.T) {
	c, _ := stubPipelineCache()
	wantErr := fmt.Errorf("compile failed")
	source := func(key materials.VariantKey) (ShaderSource, error) {
		return ShaderSource{}, wantErr
	}

	_, err := c.GetOrCreate(materials.VariantKey(1), source)
	if err == nil {
		t.Fatal("expected error")
	}
	var compileErr *ErrShaderCompile
	if !asShaderCompileErr(err, &compileErr) {
		t.Fatalf("expected *ErrShaderCompile, got %T: %v", err, err)
	}
}

func asShaderCompileErr(err error, target **ErrShaderCompile) bool {
	if e, ok := err.(*ErrShaderCompile); ok {
		*target = e
		return true
	}
	return false
}
