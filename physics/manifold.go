package physics

import (
	"forgecore/ecs"
	"forgecore/physmath"
)

// ContactPoint is one point of contact within a manifold (spec 4.2.4).
// AccumulatedNormal/Tangent impulses persist across sub-steps, matched to
// the previous sub-step's manifold by world position, to warm-start the
// solver (spec 4.2.5 step 1). Tangent1/Tangent2 are a fixed friction basis
// derived once from Normal (spec 4.2.2 step 6) rather than recomputed from
// relative velocity on every solver iteration.
type ContactPoint struct {
	PointID int // identifies the point within its own manifold; not used for warm-start matching

	WorldPointA physmath.Vec3
	WorldPointB physmath.Vec3
	Normal      physmath.Vec3 // from A to B
	Penetration float64

	Tangent1, Tangent2 physmath.Vec3

	AccumNormalImpulse  float64
	AccumTangentImpulse [2]float64
}

// tangentBasis derives two vectors perpendicular to normal and to each
// other, using normal's dominant axis to pick a helper vector that avoids
// a degenerate cross product (spec 4.2.2 step 6, grounded on
// physmath.Vec3.MaxAxis).
func tangentBasis(normal physmath.Vec3) (physmath.Vec3, physmath.Vec3) {
	helper := physmath.Vec3{X: 1}
	switch normal.MaxAxis() {
	case 0:
		helper = physmath.Vec3{Y: 1}
	case 1:
		helper = physmath.Vec3{Z: 1}
	}
	t1 := normal.Cross(helper).Normalize()
	t2 := normal.Cross(t1)
	return t1, t2
}

// ContactBreakingDistance bounds how far a fresh contact point may drift
// from a previous sub-step's point and still be considered the same point
// for warm-starting (spec 4.2.2 step 5).
const ContactBreakingDistance = 0.02

// ContactManifold is the cached contact state between one ordered pair of
// colliding entities (spec 4.2.4 "manifold cache keyed by (entity_a,
// entity_b) sorted pair").
type ContactManifold struct {
	EntityA, EntityB ecs.Entity
	Points           []ContactPoint
	IsTrigger        bool
}

// manifoldKey canonicalizes the cache key so a pair is found regardless of
// discovery order (spec 4.2.4).
type manifoldKey struct{ a, b ecs.Entity }

func newManifoldKey(a, b ecs.Entity) manifoldKey {
	if a > b {
		a, b = b, a
	}
	return manifoldKey{a, b}
}

// mergeWarmStart copies accumulated impulses from the previous sub-step's
// manifold into the freshly generated one. Points are matched by nearest
// world position rather than array index, since narrowphase does not
// guarantee stable ordering across sub-steps: a fresh point adopts the
// closest unclaimed previous point within ContactBreakingDistance, or
// starts cold if none qualifies (spec 4.2.2 step 5).
func mergeWarmStart(prev, fresh *ContactManifold) {
	if prev == nil {
		return
	}
	claimed := make([]bool, len(prev.Points))
	for i := range fresh.Points {
		bestIdx := -1
		bestDist := ContactBreakingDistance
		for j, old := range prev.Points {
			if claimed[j] {
				continue
			}
			d := fresh.Points[i].WorldPointA.Sub(old.WorldPointA).Length()
			if d <= bestDist {
				bestDist = d
				bestIdx = j
			}
		}
		if bestIdx < 0 {
			continue
		}
		claimed[bestIdx] = true
		fresh.Points[i].AccumNormalImpulse = prev.Points[bestIdx].AccumNormalImpulse
		fresh.Points[i].AccumTangentImpulse = prev.Points[bestIdx].AccumTangentImpulse
	}
}

// maxManifoldPoints bounds manifold size per spec 4.2.4 ("reduce to at
// most 4 points by deepest-point + extremal-area heuristic").
const maxManifoldPoints = 4

// reduceManifold keeps the deepest point plus up to three points that
// maximize the enclosed area with it, matching spec 4.2.4's reduction
// heuristic so stacked boxes rest on a stable quad rather than jittering
// between pairs of corners.
func reduceManifold(points []ContactPoint) []ContactPoint {
	if len(points) <= maxManifoldPoints {
		return points
	}

	deepestIdx := 0
	for i, p := range points {
		if p.Penetration > points[deepestIdx].Penetration {
			deepestIdx = i
		}
	}

	kept := []ContactPoint{points[deepestIdx]}
	remaining := make([]ContactPoint, 0, len(points)-1)
	for i, p := range points {
		if i != deepestIdx {
			remaining = append(remaining, p)
		}
	}

	for len(kept) < maxManifoldPoints && len(remaining) > 0 {
		bestIdx, bestArea := 0, -1.0
		for i, cand := range remaining {
			area := triangleArea(kept, cand)
			if area > bestArea {
				bestArea, bestIdx = area, i
			}
		}
		kept = append(kept, remaining[bestIdx])
		remaining = append(remaining[:bestIdx], remaining[bestIdx+1:]...)
	}
	return kept
}

func triangleArea(kept []ContactPoint, cand ContactPoint) float64 {
	best := 0.0
	for i := 0; i < len(kept); i++ {
		for j := i + 1; j < len(kept); j++ {
			ab := kept[j].WorldPointA.Sub(kept[i].WorldPointA)
			ac := cand.WorldPointA.Sub(kept[i].WorldPointA)
			area := ab.Cross(ac).Length()
			if area > best {
				best = area
			}
		}
	}
	return best
}
