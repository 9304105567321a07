// variant_cache.go lazily compiles and caches one graphics pipeline per
// ShaderVariantKey (spec 4.1.3: "caches the resulting graphics pipeline
// keyed by the set. Equal sets must map to the exact same pipeline
// handle across the process"), grounded on the teacher's
// vulkan/renderer.go DefaultPipeline field, generalized here from a
// single pipeline to a map keyed by variant.
package render

import (
	"fmt"
	"sync"

	"forgecore/materials"
	"forgecore/vulkan"
)

// ShaderSource supplies the pre-compiled SPIR-V words for one variant;
// the engine façade owns invoking the external GLSL→SPIR-V compiler
// (spec 6) and constructs this from its output.
type ShaderSource struct {
	VertexSPIRV   []uint32
	FragmentSPIRV []uint32
}

// VariantSourceFunc resolves a ShaderVariantKey to its SPIR-V source,
// generating the `#define FEATURE_X` permutation on first use (spec
// 4.1.3: "lazily compiles ... permutations on first use").
type VariantSourceFunc func(key materials.VariantKey) (ShaderSource, error)

// PipelineCache maps a ShaderVariantKey to its compiled *vulkan.Pipeline.
// Insertions are append-only and serialized on the tick thread (spec 5
// "GPU caches ... are append-only during a frame").
type PipelineCache struct {
	mu        sync.Mutex
	device    *vulkan.Device
	pipelines map[materials.VariantKey]*vulkan.Pipeline
	config    vulkan.PipelineConfig // template: viewport, topology, etc.

	// createPipeline defaults to vulkan.CreateGraphicsPipeline; tests
	// substitute a stub so the caching/dedup logic is verifiable without
	// a live Vulkan device.
	createPipeline func(device *vulkan.Device, config vulkan.PipelineConfig) (*vulkan.Pipeline, error)
}

func NewPipelineCache(device *vulkan.Device, template vulkan.PipelineConfig) *PipelineCache {
	return &PipelineCache{
		device:         device,
		pipelines:      make(map[materials.VariantKey]*vulkan.Pipeline),
		config:         template,
		createPipeline: vulkan.CreateGraphicsPipeline,
	}
}

// GetOrCreate returns the pipeline for key, compiling it via source on
// first use. The same key always returns the same *vulkan.Pipeline
// pointer for the process lifetime (spec 8 property 7).
func (c *PipelineCache) GetOrCreate(key materials.VariantKey, source VariantSourceFunc) (*vulkan.Pipeline, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if p, ok := c.pipelines[key]; ok {
		return p, nil
	}

	src, err := source(key)
	if err != nil {
		return nil, &ErrShaderCompile{Variant: fmt.Sprintf("%#x", uint32(key)), Stderr: err.Error()}
	}

	config := c.config
	config.VertexShaderCode = src.VertexSPIRV
	config.FragmentShaderCode = src.FragmentSPIRV

	pipeline, err := c.createPipeline(c.device, config)
	if err != nil {
		return nil, fmt.Errorf("render: compiling pipeline for variant %#x: %w", uint32(key), err)
	}
	c.pipelines[key] = pipeline
	return pipeline, nil
}

// Preload registers an already-compiled pipeline under key without
// going through source compilation, used to seed the cache with the
// default variant the engine façade compiles during startup so the
// first GetOrCreate(0, ...) doesn't recompile what New already built.
func (c *PipelineCache) Preload(key materials.VariantKey, pipeline *vulkan.Pipeline) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pipelines[key] = pipeline
}

// Len reports how many variants have been compiled so far (used by
// tests to check the cache stays append-only across repeated lookups).
func (c *PipelineCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.pipelines)
}

// Destroy releases every compiled pipeline (called on shutdown).
func (c *PipelineCache) Destroy() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, p := range c.pipelines {
		p.Destroy(c.device)
	}
	c.pipelines = make(map[materials.VariantKey]*vulkan.Pipeline)
}
