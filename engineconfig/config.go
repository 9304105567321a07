// Package engineconfig defines the JSON-serializable configuration
// document for the engine façade: post-process flags, physics tuning,
// and render tuning constants (spec section 6 "Configuration enums"
// and section 4.2.1's fixed-timestep defaults). Grounded on
// io/scene_io.go's SceneFile/CameraData struct layout and its
// Save/Load JSON round-trip pattern.
package engineconfig

import (
	"encoding/json"
	"fmt"
	"os"
)

// ToneMapping selects the tonemap operator used by the post-process
// composite pass (spec 4.1.8, spec 6 "tone_mapping").
type ToneMapping int

const (
	ToneMappingReinhard ToneMapping = iota
	ToneMappingACES
	ToneMappingUncharted2
	ToneMappingPassthrough
)

// PostProcessFlags gates each optional pass in the render graph (spec
// 4.1.2's "config.ssao"/"config.taa"/"config.dof" column, spec 6
// "post_process flags").
type PostProcessFlags struct {
	BloomEnabled        bool `json:"bloom_enabled"`
	SSAOEnabled         bool `json:"ssao_enabled"`
	FXAAEnabled         bool `json:"fxaa_enabled"`
	TAAEnabled          bool `json:"taa_enabled"`
	DOFEnabled          bool `json:"dof_enabled"`
	MotionBlurEnabled   bool `json:"motion_blur_enabled"`
	VignetteEnabled     bool `json:"vignette_enabled"`
	ColorGradingEnabled bool `json:"color_grading_enabled"`
}

// PostProcessParams holds the per-pass transient UBO parameters shared
// by the fullscreen passes (spec 4.1.8: "focus distance/range, samples,
// thresholds, gamma, tonemap mode, vignette, color grading").
type PostProcessParams struct {
	ToneMapping      ToneMapping `json:"tone_mapping"`
	BloomIntensity   float32     `json:"bloom_intensity"`
	BloomThreshold   float32     `json:"bloom_threshold"`
	FocusDistance    float32     `json:"focus_distance"`
	FocusRange       float32     `json:"focus_range"`
	MotionBlurSamples int        `json:"motion_blur_samples"`
	Gamma            float32     `json:"gamma"`
	VignetteIntensity float32    `json:"vignette_intensity"`
}

// PhysicsTuning carries the fixed-timestep and solver constants named
// throughout spec 4.2 (sub-stepping accumulator, solver iteration
// count, Baumgarte factor, velocity clamp caps).
type PhysicsTuning struct {
	FixedDT            float64 `json:"fixed_dt"`
	MaxSubSteps        int     `json:"max_substeps"`
	SolverIterations   int     `json:"solver_iterations"`
	BaumgarteFactor    float64 `json:"baumgarte_factor"`
	AllowedPenetration float64 `json:"allowed_penetration"`
	MaxLinearVelocity  float64 `json:"max_linear_velocity"`
	MaxAngularVelocity float64 `json:"max_angular_velocity"`
}

// ShadowTuning mirrors the create_csm(num_cascades, resolution, near,
// far) resource hook (spec 6) so its defaults can be configured ahead
// of the call.
type ShadowTuning struct {
	NumCascades int     `json:"num_cascades"`
	Resolution  int     `json:"resolution"`
	Near        float32 `json:"near"`
	Far         float32 `json:"far"`
}

// EngineConfig is the top-level configuration document, serialized the
// same way io/scene_io.go's SceneFile is: a versioned JSON file loaded
// once at startup.
type EngineConfig struct {
	Version      string             `json:"version"`
	ThreadingEnabled bool           `json:"threading_enabled"`
	PostProcess  PostProcessFlags   `json:"post_process"`
	PostParams   PostProcessParams  `json:"post_process_params"`
	Physics      PhysicsTuning      `json:"physics"`
	Shadow       ShadowTuning       `json:"shadow"`
}

// DefaultEngineConfig returns the spec's named defaults: fixed_dt=1/60,
// max_substeps=4 (spec 4.2.1), solver_iterations=8, Baumgarte=0.2,
// allowed_penetration=0.01 (spec 4.2.2), velocity caps 10^3/10^2 (spec
// 4.2.2 step 2), and every post-process flag off.
func DefaultEngineConfig() *EngineConfig {
	return &EngineConfig{
		Version:          "1.0",
		ThreadingEnabled: false,
		PostProcess:      PostProcessFlags{},
		PostParams: PostProcessParams{
			ToneMapping:       ToneMappingACES,
			BloomIntensity:    1.0,
			BloomThreshold:    1.0,
			FocusDistance:     10,
			FocusRange:        5,
			MotionBlurSamples: 8,
			Gamma:             2.2,
			VignetteIntensity: 0.3,
		},
		Physics: PhysicsTuning{
			FixedDT:            1.0 / 60.0,
			MaxSubSteps:        4,
			SolverIterations:   8,
			BaumgarteFactor:    0.2,
			AllowedPenetration: 0.01,
			MaxLinearVelocity:  1e3,
			MaxAngularVelocity: 1e2,
		},
		Shadow: ShadowTuning{
			NumCascades: 4,
			Resolution:  2048,
			Near:        0.1,
			Far:         200,
		},
	}
}

// Save serializes the config to path as indented JSON.
func Save(path string, cfg *EngineConfig) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal engine config: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}

// Load reads and parses an EngineConfig JSON document from path.
func Load(path string) (*EngineConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read engine config: %w", err)
	}
	cfg := &EngineConfig{}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse engine config: %w", err)
	}
	return cfg, nil
}
