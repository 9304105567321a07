package engine

import (
	"testing"

	"forgecore/ecs"
	"forgecore/engineconfig"
	"forgecore/physmath"
)

func TestTuningFromConfigCopiesEveryField(t *testing.T) {
	cfg := engineconfig.PhysicsTuning{
		FixedDT:            1.0 / 30.0,
		MaxSubSteps:        6,
		SolverIterations:   12,
		BaumgarteFactor:    0.3,
		AllowedPenetration: 0.02,
		MaxLinearVelocity:  500,
		MaxAngularVelocity: 50,
	}
	got := tuningFromConfig(cfg)

	if got.FixedDT != cfg.FixedDT || got.MaxSubSteps != cfg.MaxSubSteps || got.SolverIterations != cfg.SolverIterations {
		t.Fatalf("tuning mismatch: %+v from %+v", got, cfg)
	}
	if got.BaumgarteFactor != cfg.BaumgarteFactor || got.AllowedPenetration != cfg.AllowedPenetration {
		t.Fatalf("tuning mismatch: %+v from %+v", got, cfg)
	}
	if got.MaxLinearVelocity != cfg.MaxLinearVelocity || got.MaxAngularVelocity != cfg.MaxAngularVelocity {
		t.Fatalf("tuning mismatch: %+v from %+v", got, cfg)
	}
}

func TestTuningFromConfigMatchesDefaultEngineConfig(t *testing.T) {
	def := engineconfig.DefaultEngineConfig()
	got := tuningFromConfig(def.Physics)
	if got.MaxSubSteps != 4 {
		t.Fatalf("expected default max_substeps of 4 per spec 4.2.1, got %d", got.MaxSubSteps)
	}
}

func TestEngineWorldMatrixIdentityForRootTransform(t *testing.T) {
	w := ecs.NewWorld()
	e := w.CreateEntity()
	w.AddTransform(e, ecs.NewTransform())

	eng := &Engine{ECS: w}
	m := eng.WorldMatrix(e)

	identity := physmath.Mat4Identity()
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			if float64(m[i][j]) != identity[i][j] {
				t.Fatalf("expected identity matrix for default transform, got %v", m)
			}
		}
	}
}
