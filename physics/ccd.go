package physics

import (
	"forgecore/ecs"
	"forgecore/physmath"
)

// ccdSubdivisions bounds the conservative-advancement bisection search
// (spec 4.2.8 "CCD via conservative advancement; fall back to discrete
// for shapes without an analytic sweep").
const ccdSubdivisions = 8

// sweepCandidate is a static/kinematic obstacle considered by sweepBody.
type sweepCandidate struct {
	Transform ecs.Transform
	Collider  ecs.ColliderComponent
}

// sweepBody checks whether a fast-moving body's motion this sub-step would
// tunnel through anything, and if so returns the fraction of dt at which
// it first touches (spec 4.2.8). Only sphere and capsule bodies get the
// analytic conservative-advancement sweep; other shapes fall back to
// ordinary discrete detection at the end of the step, matching the
// spec's documented fallback.
func sweepBody(entity ecs.Entity, start, end ecs.Transform, collider ecs.ColliderComponent, others map[ecs.Entity]sweepCandidate) (float64, bool) {
	if collider.Shape.Kind != ecs.ShapeSphere && collider.Shape.Kind != ecs.ShapeCapsule {
		return 1.0, false
	}

	radius := sweepRadius(collider.Shape)
	p0, p1 := start.Position, end.Position
	motion := p1.Sub(p0)
	if motion.LengthSqr() < 1e-12 {
		return 1.0, false
	}

	earliest := 1.0
	hit := false
	for otherEntity, other := range others {
		if otherEntity == entity {
			continue
		}
		t, touched := sweepAgainst(p0, motion, radius, other.Transform, other.Collider)
		if touched && t < earliest {
			earliest, hit = t, true
		}
	}
	return earliest, hit
}

func sweepRadius(shape ecs.ColliderShape) float64 {
	if shape.Kind == ecs.ShapeCapsule {
		return shape.Radius
	}
	return shape.Radius
}

// sweepAgainst performs conservative advancement: bisect along the motion
// segment until the sphere-equivalent swept volume first touches the
// other shape, using the other shape's WorldAABB expanded by radius as a
// conservative proxy for its surface. No GJK distance query refines the
// result.
func sweepAgainst(p0, motion physmath.Vec3, radius float64, otherTransform ecs.Transform, otherCollider ecs.ColliderComponent) (float64, bool) {
	box := WorldAABB(otherTransform, otherCollider)
	expanded := physmath.AABB{
		Min: box.Min.Sub(physmath.Vec3{X: radius, Y: radius, Z: radius}),
		Max: box.Max.Add(physmath.Vec3{X: radius, Y: radius, Z: radius}),
	}

	lo, hi := 0.0, 1.0
	loInside := expanded.Overlaps(physmath.AABB{Min: p0, Max: p0})
	if loInside {
		return 0, true
	}
	hiPoint := p0.Add(motion)
	hiInside := expanded.Overlaps(physmath.AABB{Min: hiPoint, Max: hiPoint})
	if !hiInside {
		return 1, false
	}

	for i := 0; i < ccdSubdivisions; i++ {
		mid := (lo + hi) / 2
		point := p0.Add(motion.Mul(mid))
		if expanded.Overlaps(physmath.AABB{Min: point, Max: point}) {
			hi = mid
		} else {
			lo = mid
		}
	}
	return hi, true
}
