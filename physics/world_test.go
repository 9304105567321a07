package physics

import (
	"math"
	"testing"

	"forgecore/ecs"
	"forgecore/physmath"
)

func newFallingSphere(w *ecs.World, y float64) ecs.Entity {
	e := w.CreateEntity()
	w.AddTransform(e, ecs.Transform{Position: physmath.Vec3{X: 0, Y: y, Z: 0}, Rotation: physmath.QuaternionIdentity(), Scale: physmath.Vec3One})
	body := ecs.NewDynamicBody(1)
	body.InvInertiaLocal = physmath.Mat3Diag(2.5, 2.5, 2.5) // sphere-equivalent
	w.AddRigidBody(e, body)
	w.AddCollider(e, ecs.ColliderComponent{Shape: ecs.ColliderShape{Kind: ecs.ShapeSphere, Radius: 0.5}})
	return e
}

func newStaticGround(w *ecs.World) ecs.Entity {
	e := w.CreateEntity()
	w.AddTransform(e, ecs.NewTransform())
	w.AddRigidBody(e, ecs.NewStaticBody())
	w.AddCollider(e, ecs.ColliderComponent{Shape: ecs.ColliderShape{Kind: ecs.ShapeAABB, HalfExtents: physmath.Vec3{X: 50, Y: 1, Z: 50}}})
	return e
}

func TestGravityIntegration(t *testing.T) {
	ecsWorld := ecs.NewWorld()
	e := newFallingSphere(ecsWorld, 10)
	pw := NewWorld(ecsWorld)

	pw.Step(1.0 / 60.0)

	body := ecsWorld.GetRigidBody(e)
	if body.LinearVelocity.Y >= 0 {
		t.Fatalf("expected downward velocity after one sub-step, got %v", body.LinearVelocity.Y)
	}
}

func TestSphereRestsOnGround(t *testing.T) {
	ecsWorld := ecs.NewWorld()
	sphere := newFallingSphere(ecsWorld, 1.4)
	newStaticGround(ecsWorld)
	pw := NewWorld(ecsWorld)

	for i := 0; i < 300; i++ {
		pw.Step(1.0 / 60.0)
	}

	transform := ecsWorld.GetTransform(sphere)
	// Ground top is at y=1 (half-extent), sphere radius 0.5: rest height ~1.5.
	if math.Abs(transform.Position.Y-1.5) > 0.05 {
		t.Fatalf("expected sphere to rest near y=1.5, got %v", transform.Position.Y)
	}
}

func TestStaticStaticPairsSkipped(t *testing.T) {
	ecsWorld := ecs.NewWorld()
	a := ecsWorld.CreateEntity()
	ecsWorld.AddTransform(a, ecs.NewTransform())
	ecsWorld.AddRigidBody(a, ecs.NewStaticBody())
	ecsWorld.AddCollider(a, ecs.ColliderComponent{Shape: ecs.ColliderShape{Kind: ecs.ShapeSphere, Radius: 1}})

	b := ecsWorld.CreateEntity()
	ecsWorld.AddTransform(b, ecs.NewTransform())
	ecsWorld.AddRigidBody(b, ecs.NewStaticBody())
	ecsWorld.AddCollider(b, ecs.ColliderComponent{Shape: ecs.ColliderShape{Kind: ecs.ShapeSphere, Radius: 1}})

	pw := NewWorld(ecsWorld)
	pw.Step(1.0 / 60.0)

	if len(pw.manifolds) != 0 {
		t.Fatalf("expected no manifold between two static bodies, got %d", len(pw.manifolds))
	}
}

func TestRaycastClosestHitsNearestSphere(t *testing.T) {
	ecsWorld := ecs.NewWorld()
	near := ecsWorld.CreateEntity()
	ecsWorld.AddTransform(near, ecs.Transform{Position: physmath.Vec3{X: 0, Y: 0, Z: 5}, Rotation: physmath.QuaternionIdentity(), Scale: physmath.Vec3One})
	ecsWorld.AddCollider(near, ecs.ColliderComponent{Shape: ecs.ColliderShape{Kind: ecs.ShapeSphere, Radius: 1}})

	far := ecsWorld.CreateEntity()
	ecsWorld.AddTransform(far, ecs.Transform{Position: physmath.Vec3{X: 0, Y: 0, Z: 10}, Rotation: physmath.QuaternionIdentity(), Scale: physmath.Vec3One})
	ecsWorld.AddCollider(far, ecs.ColliderComponent{Shape: ecs.ColliderShape{Kind: ecs.ShapeSphere, Radius: 1}})

	ray := Ray{Origin: physmath.Vec3Zero, Direction: physmath.Vec3{X: 0, Y: 0, Z: 1}}
	hit, ok := RaycastClosest(ecsWorld, ray, 100)
	if !ok {
		t.Fatal("expected a hit")
	}
	if hit.Entity != near {
		t.Fatalf("expected nearest sphere entity %v, got %v", near, hit.Entity)
	}
	if math.Abs(hit.Distance-4) > 1e-6 {
		t.Fatalf("expected hit distance 4, got %v", hit.Distance)
	}
}

func TestRaycastAllSortedByDistance(t *testing.T) {
	ecsWorld := ecs.NewWorld()
	for _, z := range []float64{8, 3, 12} {
		e := ecsWorld.CreateEntity()
		ecsWorld.AddTransform(e, ecs.Transform{Position: physmath.Vec3{X: 0, Y: 0, Z: z}, Rotation: physmath.QuaternionIdentity(), Scale: physmath.Vec3One})
		ecsWorld.AddCollider(e, ecs.ColliderComponent{Shape: ecs.ColliderShape{Kind: ecs.ShapeSphere, Radius: 1}})
	}

	ray := Ray{Origin: physmath.Vec3Zero, Direction: physmath.Vec3{X: 0, Y: 0, Z: 1}}
	hits := RaycastAll(ecsWorld, ray, 100)
	if len(hits) != 3 {
		t.Fatalf("expected 3 hits, got %d", len(hits))
	}
	for i := 1; i < len(hits); i++ {
		if hits[i].Distance < hits[i-1].Distance {
			t.Fatalf("hits not sorted by distance: %v", hits)
		}
	}
}

func TestDistanceJointHoldsSeparation(t *testing.T) {
	ecsWorld := ecs.NewWorld()
	anchor := ecsWorld.CreateEntity()
	ecsWorld.AddTransform(anchor, ecs.Transform{Position: physmath.Vec3{X: 0, Y: 5, Z: 0}, Rotation: physmath.QuaternionIdentity(), Scale: physmath.Vec3One})
	ecsWorld.AddRigidBody(anchor, ecs.NewStaticBody())

	bob := newFallingSphere(ecsWorld, 5)

	joint := ecs.Joint{Kind: ecs.JointDistance, BodyA: anchor, BodyB: bob, TargetDist: 2}
	ecsWorld.AddJoint(ecsWorld.CreateEntity(), joint)

	pw := NewWorld(ecsWorld)
	for i := 0; i < 240; i++ {
		pw.Step(1.0 / 60.0)
	}

	anchorT := ecsWorld.GetTransform(anchor)
	bobT := ecsWorld.GetTransform(bob)
	dist := bobT.Position.Sub(anchorT.Position).Length()
	if math.Abs(dist-2) > 0.2 {
		t.Fatalf("expected distance joint to hold ~2 units, got %v", dist)
	}
}

func TestTriggerDoesNotGenerateSolverResponse(t *testing.T) {
	ecsWorld := ecs.NewWorld()
	sphere := newFallingSphere(ecsWorld, 1.0)
	ground := ecsWorld.CreateEntity()
	ecsWorld.AddTransform(ground, ecs.NewTransform())
	ecsWorld.AddRigidBody(ground, ecs.NewStaticBody())
	ecsWorld.AddCollider(ground, ecs.ColliderComponent{
		Shape:     ecs.ColliderShape{Kind: ecs.ShapeAABB, HalfExtents: physmath.Vec3{X: 50, Y: 1, Z: 50}},
		IsTrigger: true,
	})

	pw := NewWorld(ecsWorld)
	for i := 0; i < 120; i++ {
		pw.Step(1.0 / 60.0)
	}

	transform := ecsWorld.GetTransform(sphere)
	if transform.Position.Y > -5 {
		t.Fatalf("expected sphere to fall through a trigger volume, stopped at %v", transform.Position.Y)
	}
}

func TestCollisionCallbackFiresStayWhileResting(t *testing.T) {
	ecsWorld := ecs.NewWorld()
	newFallingSphere(ecsWorld, 1.4)
	newStaticGround(ecsWorld)
	pw := NewWorld(ecsWorld)

	var begins, stays, ends int
	pw.OnCollision(func(ev CollisionEvent) {
		switch ev.Phase {
		case CollisionBegin:
			begins++
		case CollisionStay:
			stays++
		case CollisionEnd:
			ends++
		}
	})

	for i := 0; i < 120; i++ {
		pw.Step(1.0 / 60.0)
	}

	if begins != 1 {
		t.Fatalf("expected exactly one begin, got %d", begins)
	}
	if stays == 0 {
		t.Fatal("expected on_stay to fire at least once while the sphere rests on the ground")
	}
	if ends != 0 {
		t.Fatalf("expected no end while still resting, got %d", ends)
	}
}

func TestSleepingPairDoesNotFireSpuriousExit(t *testing.T) {
	ecsWorld := ecs.NewWorld()
	sphere := newFallingSphere(ecsWorld, 1.4)
	newStaticGround(ecsWorld)
	pw := NewWorld(ecsWorld)

	var ends int
	pw.OnCollision(func(ev CollisionEvent) {
		if ev.Phase == CollisionEnd {
			ends++
		}
	})

	// Run long enough for the sphere to settle and its island to sleep
	// (sleepTime is 0.5s), then keep stepping; a sleeping resting contact
	// must never be reported as ended.
	for i := 0; i < 180; i++ {
		pw.Step(1.0 / 60.0)
	}
	if !ecsWorld.GetRigidBody(sphere).Sleeping {
		t.Fatal("expected sphere to be asleep after settling")
	}
	for i := 0; i < 60; i++ {
		pw.Step(1.0 / 60.0)
	}

	if ends != 0 {
		t.Fatalf("expected no spurious exit for a sleeping resting contact, got %d", ends)
	}
}

func TestWorldAABBGrowsWithSphereRadius(t *testing.T) {
	transform := ecs.Transform{Position: physmath.Vec3{X: 1, Y: 2, Z: 3}, Rotation: physmath.QuaternionIdentity(), Scale: physmath.Vec3One}
	collider := ecs.ColliderComponent{Shape: ecs.ColliderShape{Kind: ecs.ShapeSphere, Radius: 2}}
	box := WorldAABB(transform, collider)

	want := physmath.AABB{Min: physmath.Vec3{X: -1, Y: 0, Z: 1}, Max: physmath.Vec3{X: 3, Y: 4, Z: 5}}
	if box.Min != want.Min || box.Max != want.Max {
		t.Fatalf("expected AABB %+v, got %+v", want, box)
	}
}
