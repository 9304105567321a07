package physics

import (
	"math"
	"testing"

	"forgecore/physmath"
)

func TestTangentBasisIsOrthonormalToNormal(t *testing.T) {
	normals := []physmath.Vec3{
		{X: 0, Y: 1, Z: 0},
		{X: 1, Y: 0, Z: 0},
		{X: 0, Y: 0, Z: 1},
		{X: 1, Y: 1, Z: 1},
	}
	for _, n := range normals {
		n = n.Normalize()
		t1, t2 := tangentBasis(n)
		if math.Abs(t1.Dot(n)) > 1e-9 {
			t.Fatalf("tangent1 not perpendicular to normal %v: dot=%v", n, t1.Dot(n))
		}
		if math.Abs(t2.Dot(n)) > 1e-9 {
			t.Fatalf("tangent2 not perpendicular to normal %v: dot=%v", n, t2.Dot(n))
		}
		if math.Abs(t1.Dot(t2)) > 1e-9 {
			t.Fatalf("tangent1/tangent2 not perpendicular for normal %v: dot=%v", n, t1.Dot(t2))
		}
		if math.Abs(t1.Length()-1) > 1e-9 {
			t.Fatalf("tangent1 not unit length for normal %v: len=%v", n, t1.Length())
		}
	}
}

func TestMergeWarmStartMatchesByProximityNotIndex(t *testing.T) {
	prev := &ContactManifold{
		Points: []ContactPoint{
			{PointID: 0, WorldPointA: physmath.Vec3{X: 0, Y: 0, Z: 0}, AccumNormalImpulse: 1.0},
			{PointID: 1, WorldPointA: physmath.Vec3{X: 1, Y: 0, Z: 0}, AccumNormalImpulse: 2.0},
		},
	}
	// Narrowphase returned the same two points in reverse order this
	// sub-step; index-based matching would swap the warm-started impulses.
	fresh := &ContactManifold{
		Points: []ContactPoint{
			{PointID: 0, WorldPointA: physmath.Vec3{X: 1, Y: 0, Z: 0}},
			{PointID: 1, WorldPointA: physmath.Vec3{X: 0, Y: 0, Z: 0}},
		},
	}

	mergeWarmStart(prev, fresh)

	if fresh.Points[0].AccumNormalImpulse != 2.0 {
		t.Fatalf("expected point nearest (1,0,0) to inherit impulse 2.0, got %v", fresh.Points[0].AccumNormalImpulse)
	}
	if fresh.Points[1].AccumNormalImpulse != 1.0 {
		t.Fatalf("expected point nearest (0,0,0) to inherit impulse 1.0, got %v", fresh.Points[1].AccumNormalImpulse)
	}
}

func TestMergeWarmStartDropsPointsBeyondBreakingDistance(t *testing.T) {
	prev := &ContactManifold{
		Points: []ContactPoint{
			{PointID: 0, WorldPointA: physmath.Vec3{X: 0, Y: 0, Z: 0}, AccumNormalImpulse: 5.0},
		},
	}
	fresh := &ContactManifold{
		Points: []ContactPoint{
			{PointID: 0, WorldPointA: physmath.Vec3{X: 0, Y: 1, Z: 0}}, // 1m away, far beyond 0.02
		},
	}

	mergeWarmStart(prev, fresh)

	if fresh.Points[0].AccumNormalImpulse != 0 {
		t.Fatalf("expected no warm-start match beyond ContactBreakingDistance, got %v", fresh.Points[0].AccumNormalImpulse)
	}
}
