package physics

// Tuning carries every fixed-timestep and solver constant named in spec
// 4.2: sub-step duration and cap, solver iteration count, Baumgarte
// stabilization factor, contact slop, and the velocity clamps applied
// after integration. The engine façade builds this from its
// engineconfig.PhysicsTuning document; physics itself stays free of any
// serialization format (spec section 2 layering).
type Tuning struct {
	FixedDT            float64
	MaxSubSteps        int
	SolverIterations   int
	BaumgarteFactor    float64
	AllowedPenetration float64
	MaxLinearVelocity  float64
	MaxAngularVelocity float64
}

// DefaultTuning returns the spec's named defaults: fixed_dt=1/60,
// max_substeps=4 (spec 4.2.1), solver_iterations=8, Baumgarte=0.2,
// allowed_penetration=0.01 (spec 4.2.2), velocity caps 10^3/10^2.
func DefaultTuning() Tuning {
	return Tuning{
		FixedDT:            1.0 / 60.0,
		MaxSubSteps:        4,
		SolverIterations:   8,
		BaumgarteFactor:    0.2,
		AllowedPenetration: 0.01,
		MaxLinearVelocity:  1e3,
		MaxAngularVelocity: 1e2,
	}
}
