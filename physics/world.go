package physics

import (
	"forgecore/ecs"
	"forgecore/physmath"
)

// World owns the fixed-step accumulator and the manifold cache across
// sub-steps (spec 4.2). It wraps an *ecs.World rather than embedding
// physics state into components, so the ecs package itself never imports
// physics types (spec section 2 layering).
type World struct {
	ecsWorld *ecs.World
	tuning   Tuning

	accumulator float64
	manifolds   map[manifoldKey]*ContactManifold
	events      *eventRegistry
}

// NewWorld creates a physics world driving the given ECS world's
// RigidBody/Collider/Transform/Joint components, using DefaultTuning.
func NewWorld(ecsWorld *ecs.World) *World {
	return NewWorldWithTuning(ecsWorld, DefaultTuning())
}

// NewWorldWithTuning creates a physics world with an explicit Tuning,
// letting the engine façade drive fixed_dt/max_substeps/solver_iterations
// from its loaded engineconfig.EngineConfig.
func NewWorldWithTuning(ecsWorld *ecs.World, tuning Tuning) *World {
	return &World{
		ecsWorld:  ecsWorld,
		tuning:    tuning,
		manifolds: make(map[manifoldKey]*ContactManifold),
		events:    newEventRegistry(),
	}
}

// OnCollision registers a callback fired on collision begin, stay (every
// step) and end between non-trigger colliders (spec 4.2.7).
func (w *World) OnCollision(cb CollisionCallback) {
	w.events.onCollision = append(w.events.onCollision, cb)
}

// OnTrigger registers a callback fired on trigger overlap begin, stay
// (every step) and end (spec 4.2.7).
func (w *World) OnTrigger(cb TriggerCallback) {
	w.events.onTrigger = append(w.events.onTrigger, cb)
}

// Step advances the simulation by frameDt using the fixed-timestep
// accumulator pattern: it runs zero or more fixedTimestep sub-steps and
// leaves the remainder in the accumulator for next call (spec 4.2.1). When
// MaxSubSteps sub-steps have run, the accumulator is cleared instead.
func (w *World) Step(frameDt float64) {
	w.accumulator += frameDt
	steps := 0
	for w.accumulator >= w.tuning.FixedDT && steps < w.tuning.MaxSubSteps {
		w.subStep(w.tuning.FixedDT)
		w.accumulator -= w.tuning.FixedDT
		steps++
	}
	if steps == w.tuning.MaxSubSteps {
		w.accumulator = 0
	}
}

type bodyEntry struct {
	entity    ecs.Entity
	transform *ecs.Transform
	body      *ecs.RigidBody
}

// subStep runs one fixed-duration physics tick: the full pipeline of spec
// 4.2.2 through 4.2.8 in order.
func (w *World) subStep(dt float64) {
	entries := w.collectBodies()

	for _, e := range entries {
		recomputeWorldInertia(e.body, e.transform.Rotation)
		integrateForces(e.body, dt)
	}

	preSolve := make(map[ecs.Entity]ecs.Transform, len(entries))
	for _, e := range entries {
		preSolve[e.entity] = *e.transform
	}

	boxes := make(map[ecs.Entity]physmath.AABB)
	isStatic := make(map[ecs.Entity]bool)
	colliders := make(map[ecs.Entity]ecs.ColliderComponent)
	w.ecsWorld.ForEachCollider(func(entity ecs.Entity, c *ecs.ColliderComponent) {
		transform := w.ecsWorld.GetTransform(entity)
		if transform == nil {
			return
		}
		boxes[entity] = WorldAABB(*transform, *c)
		colliders[entity] = *c
		body := w.ecsWorld.GetRigidBody(entity)
		isStatic[entity] = body == nil || body.BodyType != ecs.BodyDynamic
	})

	candidatePairs := findPairs(boxes, isStatic)

	fresh := make(map[manifoldKey]*ContactManifold)
	for _, p := range candidatePairs {
		transformA := w.ecsWorld.GetTransform(p.a)
		transformB := w.ecsWorld.GetTransform(p.b)
		colliderA := colliders[p.a]
		colliderB := colliders[p.b]
		if transformA == nil || transformB == nil {
			continue
		}
		bodyA := w.ecsWorld.GetRigidBody(p.a)
		bodyB := w.ecsWorld.GetRigidBody(p.b)
		key := newManifoldKey(p.a, p.b)
		if (bodyA == nil || bodyA.Sleeping) && (bodyB == nil || bodyB.Sleeping) {
			// Both bodies are asleep: narrowphase isn't re-run, but a manifold
			// that was touching last step carries forward unchanged so dispatch
			// doesn't see it vanish and fire a spurious exit (spec 4.2.2 step 13
			// "exit suppressed if both bodies are sleeping").
			if prev, ok := w.manifolds[key]; ok {
				fresh[key] = prev
			}
			continue
		}

		points := collide(*transformA, colliderA, *transformB, colliderB)
		if len(points) == 0 {
			continue
		}
		for i := range points {
			points[i].PointID = i
			points[i].Tangent1, points[i].Tangent2 = tangentBasis(points[i].Normal)
		}
		manifold := &ContactManifold{
			EntityA:   key.a,
			EntityB:   key.b,
			Points:    reduceManifold(points),
			IsTrigger: colliderA.IsTrigger || colliderB.IsTrigger,
		}
		mergeWarmStart(w.manifolds[key], manifold)
		fresh[key] = manifold
	}
	w.manifolds = fresh

	w.events.dispatch(manifoldValues(fresh))

	solverBodies := make(map[ecs.Entity]*solverBody, len(entries))
	for _, e := range entries {
		solverBodies[e.entity] = &solverBody{
			entity:          e.entity,
			invMass:         e.body.InvMass,
			invInertiaWorld: e.body.InvInertiaWorld,
			position:        e.transform.Position,
			linearVelocity:  e.body.LinearVelocity,
			angularVelocity: e.body.AngularVelocity,
		}
	}
	// Static/kinematic bodies referenced by a manifold or joint still need
	// a zero-inverse-mass entry so the solver doesn't special-case them.
	for _, m := range fresh {
		ensureStaticSolverBody(solverBodies, w.ecsWorld, m.EntityA)
		ensureStaticSolverBody(solverBodies, w.ecsWorld, m.EntityB)
	}
	var joints []*ecs.Joint
	w.ecsWorld.ForEachJoint(func(_ ecs.Entity, j *ecs.Joint) {
		joints = append(joints, j)
		ensureStaticSolverBody(solverBodies, w.ecsWorld, j.BodyA)
		ensureStaticSolverBody(solverBodies, w.ecsWorld, j.BodyB)
	})

	restitution := make(map[ecs.Entity]float64)
	friction := make(map[ecs.Entity]float64)
	w.ecsWorld.ForEachRigidBody(func(e ecs.Entity, b *ecs.RigidBody) {
		restitution[e] = b.Restitution
		friction[e] = b.Friction
	})

	manifoldList := manifoldValues(fresh)
	transformSnapshot := make(map[ecs.Entity]ecs.Transform)
	for e, t := range preSolve {
		transformSnapshot[e] = t
	}

	applyWarmStart(solverBodies, manifoldList)

	for i := 0; i < w.tuning.SolverIterations; i++ {
		solveJoints(solverBodies, transformSnapshot, joints, dt)
		solveContacts(solverBodies, manifoldList, restitution, friction, dt, w.tuning.AllowedPenetration, w.tuning.BaumgarteFactor)
	}

	for _, e := range entries {
		sb := solverBodies[e.entity]
		clampVelocity(&sb.linearVelocity, w.tuning.MaxLinearVelocity)
		clampVelocity(&sb.angularVelocity, w.tuning.MaxAngularVelocity)
		e.body.LinearVelocity = sb.linearVelocity
		e.body.AngularVelocity = sb.angularVelocity
	}

	w.applyCCDAndIntegrate(entries, dt)

	bodyMap := make(map[ecs.Entity]*ecs.RigidBody, len(entries))
	for _, e := range entries {
		bodyMap[e.entity] = e.body
	}
	updateIslandsAndSleep(bodyMap, manifoldList, joints, dt)
}

func ensureStaticSolverBody(bodies map[ecs.Entity]*solverBody, w *ecs.World, e ecs.Entity) {
	if _, ok := bodies[e]; ok {
		return
	}
	transform := w.GetTransform(e)
	if transform == nil {
		return
	}
	bodies[e] = &solverBody{entity: e, invMass: 0, invInertiaWorld: physmath.Mat3Identity(), position: transform.Position}
}

func manifoldValues(m map[manifoldKey]*ContactManifold) []*ContactManifold {
	out := make([]*ContactManifold, 0, len(m))
	for _, v := range m {
		out = append(out, v)
	}
	return out
}

// applyCCDAndIntegrate integrates every dynamic body's transform, sweeping
// fast bodies against static/kinematic obstacles first and clamping their
// motion to the first time of impact (spec 4.2.8).
func (w *World) applyCCDAndIntegrate(entries []bodyEntry, dt float64) {
	obstacles := make(map[ecs.Entity]sweepCandidate)
	w.ecsWorld.ForEachCollider(func(e ecs.Entity, c *ecs.ColliderComponent) {
		body := w.ecsWorld.GetRigidBody(e)
		if body != nil && body.BodyType == ecs.BodyDynamic {
			return
		}
		transform := w.ecsWorld.GetTransform(e)
		if transform == nil {
			return
		}
		obstacles[e] = sweepCandidate{Transform: *transform, Collider: *c}
	})

	for _, e := range entries {
		if !e.body.CCD {
			integrateVelocities(e.transform, e.body, dt)
			continue
		}
		collider := w.ecsWorld.GetCollider(e.entity)
		if collider == nil {
			integrateVelocities(e.transform, e.body, dt)
			continue
		}
		start := *e.transform
		end := start
		integrateVelocities(&end, e.body, dt)

		toi, hit := sweepBody(e.entity, start, end, *collider, obstacles)
		if hit {
			e.transform.Position = start.Position.Add(end.Position.Sub(start.Position).Mul(toi))
			e.transform.Rotation = end.Rotation
		} else {
			*e.transform = end
		}
	}
}

func (w *World) collectBodies() []bodyEntry {
	var entries []bodyEntry
	w.ecsWorld.ForEachRigidBody(func(e ecs.Entity, b *ecs.RigidBody) {
		if b.BodyType != ecs.BodyDynamic {
			return
		}
		transform := w.ecsWorld.GetTransform(e)
		if transform == nil {
			return
		}
		entries = append(entries, bodyEntry{entity: e, transform: transform, body: b})
	})
	return entries
}
