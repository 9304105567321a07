package physics

import (
	"forgecore/ecs"
	"forgecore/physmath"
)

// jointBaumgarte is the positional-correction fraction for joint drift,
// matching the contact solver's stabilization factor (spec 4.2.5 step 4
// applies equally to joints and contacts).
const jointBaumgarte = 0.2

// solveJoints runs one sequential-impulse iteration over every joint,
// called from the same iteration loop as solveContacts so contacts and
// joints converge together (spec 4.2.5).
func solveJoints(bodies map[ecs.Entity]*solverBody, transforms map[ecs.Entity]ecs.Transform, joints []*ecs.Joint, dt float64) {
	for _, j := range joints {
		a, okA := bodies[j.BodyA]
		b, okB := bodies[j.BodyB]
		if !okA || !okB {
			continue
		}
		ta, tb := transforms[j.BodyA], transforms[j.BodyB]

		switch j.Kind {
		case ecs.JointBallSocket, ecs.JointFixed:
			solvePointConstraint(a, b, ta, tb, j, dt)
			if j.Kind == ecs.JointFixed {
				solveAngularLockConstraint(a, b, ta, tb, j)
			}
		case ecs.JointDistance:
			solveDistanceConstraint(a, b, ta, tb, j, dt)
		case ecs.JointHinge:
			solvePointConstraint(a, b, ta, tb, j, dt)
			solveHingeAngularConstraint(a, b, ta, tb, j)
		case ecs.JointSlider:
			solveSliderConstraint(a, b, ta, tb, j, dt)
		}
	}
}

func anchorWorld(t ecs.Transform, local physmath.Vec3) physmath.Vec3 {
	return t.LocalMatrix().MulPoint(local)
}

// solvePointConstraint drives the world-space anchors on both bodies
// together (spec 3: BallSocket/Fixed share this point constraint).
func solvePointConstraint(a, b *solverBody, ta, tb ecs.Transform, j *ecs.Joint, dt float64) {
	pa := anchorWorld(ta, j.AnchorA)
	pb := anchorWorld(tb, j.AnchorB)
	invMassSum := a.invMass + b.invMass
	if invMassSum == 0 {
		return
	}

	va := a.linearVelocity.Add(a.angularVelocity.Cross(pa.Sub(a.position)))
	vb := b.linearVelocity.Add(b.angularVelocity.Cross(pb.Sub(b.position)))
	relVel := vb.Sub(va)

	bias := pb.Sub(pa).Mul(jointBaumgarte / dt)
	target := relVel.Add(bias)

	kx := invMassSum
	impulse := target.Mul(-1.0 / kx)

	j.PointImpulse = j.PointImpulse.Add(impulse)
	a.applyImpulse(impulse.Negate(), pa)
	b.applyImpulse(impulse, pb)
}

// solveDistanceConstraint keeps |pb - pa| at TargetDist (spec 3 Distance
// joint).
func solveDistanceConstraint(a, b *solverBody, ta, tb ecs.Transform, j *ecs.Joint, dt float64) {
	pa := anchorWorld(ta, j.AnchorA)
	pb := anchorWorld(tb, j.AnchorB)
	delta := pb.Sub(pa)
	dist := delta.Length()
	if dist < 1e-9 {
		return
	}
	dir := delta.Div(dist)

	va := a.linearVelocity.Add(a.angularVelocity.Cross(pa.Sub(a.position)))
	vb := b.linearVelocity.Add(b.angularVelocity.Cross(pb.Sub(b.position)))
	relVel := vb.Sub(va).Dot(dir)

	c := dist - j.TargetDist
	bias := jointBaumgarte / dt * c

	raCross := crossMassFactor(a, pa, dir)
	rbCross := crossMassFactor(b, pb, dir)
	k := a.invMass + b.invMass + raCross + rbCross
	if k == 0 {
		return
	}

	lambda := -(relVel + bias) / k
	j.ScalarImpulse += lambda
	impulse := dir.Mul(lambda)
	a.applyImpulse(impulse.Negate(), pa)
	b.applyImpulse(impulse, pb)
}

// solveAngularLockConstraint removes all relative angular velocity
// between the two bodies (spec 3 Fixed joint's angular half).
func solveAngularLockConstraint(a, b *solverBody, ta, tb ecs.Transform, j *ecs.Joint) {
	relOmega := b.angularVelocity.Sub(a.angularVelocity)
	if relOmega.IsZero() {
		return
	}
	impulse := relOmega.Negate()
	j.AngularImpulse = j.AngularImpulse.Add(impulse)
	if a.invMass != 0 {
		a.angularVelocity = a.angularVelocity.Sub(a.invInertiaWorld.MulVec(impulse))
	}
	if b.invMass != 0 {
		b.angularVelocity = b.angularVelocity.Add(b.invInertiaWorld.MulVec(impulse))
	}
}

// solveHingeAngularConstraint removes angular velocity components
// perpendicular to the hinge axis, leaving free rotation about it (spec 3
// Hinge joint). Limits are not enforced.
func solveHingeAngularConstraint(a, b *solverBody, ta, tb ecs.Transform, j *ecs.Joint) {
	worldAxis := ta.Rotation.RotateVector(j.Axis).Normalize()
	relOmega := b.angularVelocity.Sub(a.angularVelocity)
	perp := relOmega.Sub(worldAxis.Mul(relOmega.Dot(worldAxis)))
	if perp.IsZero() {
		return
	}
	if a.invMass != 0 {
		a.angularVelocity = a.angularVelocity.Add(perp)
	}
	if b.invMass != 0 {
		b.angularVelocity = b.angularVelocity.Sub(perp)
	}
}

// solveSliderConstraint locks relative motion to the slider axis (spec 3
// Slider joint): removes relative velocity components off the axis.
func solveSliderConstraint(a, b *solverBody, ta, tb ecs.Transform, j *ecs.Joint, dt float64) {
	pa := anchorWorld(ta, j.AnchorA)
	pb := anchorWorld(tb, j.AnchorB)
	axis := ta.Rotation.RotateVector(j.Axis).Normalize()

	va := a.linearVelocity.Add(a.angularVelocity.Cross(pa.Sub(a.position)))
	vb := b.linearVelocity.Add(b.angularVelocity.Cross(pb.Sub(b.position)))
	relVel := vb.Sub(va)
	off := relVel.Sub(axis.Mul(relVel.Dot(axis)))

	delta := pb.Sub(pa)
	offPos := delta.Sub(axis.Mul(delta.Dot(axis)))
	bias := offPos.Mul(jointBaumgarte / dt)

	target := off.Add(bias)
	invMassSum := a.invMass + b.invMass
	if invMassSum == 0 {
		return
	}
	impulse := target.Mul(-1.0 / invMassSum)
	a.applyImpulse(impulse.Negate(), pa)
	b.applyImpulse(impulse, pb)
}
