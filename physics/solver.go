package physics

import (
	"math"

	"forgecore/ecs"
	"forgecore/physmath"
)

// gravity is the world's constant acceleration (spec 4.2.2 step 2).
var gravity = physmath.Vec3{X: 0, Y: -9.81, Z: 0}

// clampVelocity caps v's length at max, leaving it untouched when already
// within bound or when max is non-positive (spec 4.2.2 step 2 velocity
// caps, guarding against solver blow-up from degenerate stacks).
func clampVelocity(v *physmath.Vec3, max float64) {
	if max <= 0 {
		return
	}
	length := v.Length()
	if length > max {
		*v = v.Mul(max / length)
	}
}

// solverBody is the mutable per-body state the solver reads and writes
// during a sub-step; static/kinematic bodies get a fixed zero-inverse-mass
// entry so contact/joint math never special-cases them.
type solverBody struct {
	entity          ecs.Entity
	invMass         float64
	invInertiaWorld physmath.Mat3
	position        physmath.Vec3
	linearVelocity  physmath.Vec3
	angularVelocity physmath.Vec3
}

func (b *solverBody) applyImpulse(impulse, contactPoint physmath.Vec3) {
	if b.invMass == 0 {
		return
	}
	b.linearVelocity = b.linearVelocity.Add(impulse.Mul(b.invMass))
	torque := contactPoint.Sub(b.position).Cross(impulse)
	b.angularVelocity = b.angularVelocity.Add(b.invInertiaWorld.MulVec(torque))
}

// integrateForces applies gravity and linear/angular damping, the first
// half of spec 4.2.2's per-sub-step sequence (steps 2-3), run before
// collision detection so the solver sees this step's candidate velocity.
func integrateForces(body *ecs.RigidBody, dt float64) {
	if body.BodyType != ecs.BodyDynamic || body.Sleeping {
		return
	}
	accel := gravity.Mul(body.GravityScale)
	body.LinearVelocity = body.LinearVelocity.Add(accel.Mul(dt))
	body.LinearVelocity = body.LinearVelocity.Mul(1.0 / (1.0 + dt*body.LinearDamping))
	body.AngularVelocity = body.AngularVelocity.Mul(1.0 / (1.0 + dt*body.AngularDamping))
}

// recomputeWorldInertia refreshes InvInertiaWorld from the current
// orientation (spec 4.2.2 step 1: R * I_local^-1 * R^T).
func recomputeWorldInertia(body *ecs.RigidBody, rotation physmath.Quaternion) {
	if body.BodyType != ecs.BodyDynamic {
		return
	}
	rot := rotation.ToMat3()
	body.InvInertiaWorld = rot.Sandwich(body.InvInertiaLocal)
}

// integrateVelocities advances position/rotation by the solved velocities
// (spec 4.2.2 step 10).
func integrateVelocities(transform *ecs.Transform, body *ecs.RigidBody, dt float64) {
	if body.BodyType == ecs.BodyStatic || body.Sleeping {
		return
	}
	transform.Position = transform.Position.Add(body.LinearVelocity.Mul(dt))
	transform.Rotation = transform.Rotation.IntegrateAngularVelocity(body.AngularVelocity, dt)
}

// applyWarmStart re-applies each contact point's carried-over normal and
// tangent impulses to the solver bodies once, before the iteration loop
// begins, so a stack already at rest doesn't have to reaccelerate from
// zero every sub-step (spec 4.2.2 step 7).
func applyWarmStart(bodies map[ecs.Entity]*solverBody, manifolds []*ContactManifold) {
	for _, m := range manifolds {
		if m.IsTrigger {
			continue
		}
		a, okA := bodies[m.EntityA]
		b, okB := bodies[m.EntityB]
		if !okA || !okB {
			continue
		}
		for i := range m.Points {
			p := &m.Points[i]
			if p.AccumNormalImpulse == 0 && p.AccumTangentImpulse[0] == 0 && p.AccumTangentImpulse[1] == 0 {
				continue
			}
			normal := p.Normal.Mul(p.AccumNormalImpulse)
			t1 := p.Tangent1.Mul(p.AccumTangentImpulse[0])
			t2 := p.Tangent2.Mul(p.AccumTangentImpulse[1])
			impulse := normal.Add(t1).Add(t2)
			a.applyImpulse(impulse.Negate(), p.WorldPointA)
			b.applyImpulse(impulse, p.WorldPointB)
		}
	}
}

// solveContacts runs the sequential-impulse iteration loop over every
// manifold, interleaved with joint solving by the caller (spec 4.2.5:
// "contacts and joints solved together each iteration so friction and
// constraint forces converge jointly").
func solveContacts(bodies map[ecs.Entity]*solverBody, manifolds []*ContactManifold, restitution map[ecs.Entity]float64, friction map[ecs.Entity]float64, dt, allowedPenetration, baumgarteFactor float64) {
	for _, m := range manifolds {
		if m.IsTrigger {
			continue
		}
		a, okA := bodies[m.EntityA]
		b, okB := bodies[m.EntityB]
		if !okA || !okB {
			continue
		}
		if a.invMass == 0 && b.invMass == 0 {
			continue
		}
		cRest := math.Max(restitution[m.EntityA], restitution[m.EntityB])
		cFric := math.Sqrt(friction[m.EntityA] * friction[m.EntityB])

		for pi := range m.Points {
			p := &m.Points[pi]
			solveContactPoint(a, b, p, cRest, cFric, dt, allowedPenetration, baumgarteFactor)
		}
	}
}

func solveContactPoint(a, b *solverBody, p *ContactPoint, restitution, friction, dt, allowedPenetration, baumgarteFactor float64) {
	invMassSum := a.invMass + b.invMass
	if invMassSum == 0 {
		return
	}

	relVel := func() physmath.Vec3 {
		va := a.linearVelocity.Add(a.angularVelocity.Cross(p.WorldPointA.Sub(a.position)))
		vb := b.linearVelocity.Add(b.angularVelocity.Cross(p.WorldPointB.Sub(b.position)))
		return vb.Sub(va)
	}

	rv := relVel()
	vn := rv.Dot(p.Normal)

	bias := 0.0
	if p.Penetration > allowedPenetration {
		bias = baumgarteFactor / dt * (p.Penetration - allowedPenetration)
	}

	restitutionBias := 0.0
	if vn < -1.0 {
		restitutionBias = -restitution * vn
	}

	raCross := crossMassFactor(a, p.WorldPointA, p.Normal)
	rbCross := crossMassFactor(b, p.WorldPointB, p.Normal)
	kNormal := invMassSum + raCross + rbCross

	lambda := -(vn - bias - restitutionBias) / kNormal
	newAccum := math.Max(p.AccumNormalImpulse+lambda, 0)
	delta := newAccum - p.AccumNormalImpulse
	p.AccumNormalImpulse = newAccum

	impulse := p.Normal.Mul(delta)
	a.applyImpulse(impulse.Negate(), p.WorldPointA)
	b.applyImpulse(impulse, p.WorldPointB)

	solveFriction(a, b, p, friction)
}

// solveFriction resolves both axes of a fixed 2-tangent friction basis
// computed once per contact point (spec 4.2.2 step 6), rather than a
// single tangent re-derived from instantaneous relative velocity, so a
// box sliding along one axis and a box spinning in place are both damped
// correctly. Relative velocity is resampled between axes since solving
// axis 0 changes the velocity axis 1 reads.
func solveFriction(a, b *solverBody, p *ContactPoint, friction float64) {
	invMassSum := a.invMass + b.invMass
	if invMassSum == 0 {
		return
	}
	tangents := [2]physmath.Vec3{p.Tangent1, p.Tangent2}
	for axis, tangent := range tangents {
		va := a.linearVelocity.Add(a.angularVelocity.Cross(p.WorldPointA.Sub(a.position)))
		vb := b.linearVelocity.Add(b.angularVelocity.Cross(p.WorldPointB.Sub(b.position)))
		rv := vb.Sub(va)

		raCross := crossMassFactor(a, p.WorldPointA, tangent)
		rbCross := crossMassFactor(b, p.WorldPointB, tangent)
		kTangent := invMassSum + raCross + rbCross
		if kTangent <= 0 {
			continue
		}

		lambda := -rv.Dot(tangent) / kTangent
		maxFriction := friction * p.AccumNormalImpulse
		newAccum := clamp(p.AccumTangentImpulse[axis]+lambda, -maxFriction, maxFriction)
		delta := newAccum - p.AccumTangentImpulse[axis]
		p.AccumTangentImpulse[axis] = newAccum

		impulse := tangent.Mul(delta)
		a.applyImpulse(impulse.Negate(), p.WorldPointA)
		b.applyImpulse(impulse, p.WorldPointB)
	}
}

func crossMassFactor(b *solverBody, point, dir physmath.Vec3) float64 {
	if b.invMass == 0 {
		return 0
	}
	r := point.Sub(b.position)
	t := r.Cross(dir)
	return b.invInertiaWorld.MulVec(t).Cross(r).Dot(dir)
}
