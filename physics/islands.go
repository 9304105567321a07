package physics

import "forgecore/ecs"

// unionFind groups bodies connected by a manifold or joint into islands so
// sleep state propagates together (spec 4.2.6 "islands via union-find;
// whole island sleeps or wakes together").
type unionFind struct {
	parent map[ecs.Entity]ecs.Entity
}

func newUnionFind() *unionFind {
	return &unionFind{parent: make(map[ecs.Entity]ecs.Entity)}
}

func (u *unionFind) find(e ecs.Entity) ecs.Entity {
	if _, ok := u.parent[e]; !ok {
		u.parent[e] = e
		return e
	}
	root := e
	for u.parent[root] != root {
		root = u.parent[root]
	}
	for u.parent[e] != root {
		u.parent[e], e = root, u.parent[e]
	}
	return root
}

func (u *unionFind) union(a, b ecs.Entity) {
	ra, rb := u.find(a), u.find(b)
	if ra != rb {
		u.parent[ra] = rb
	}
}

// sleepLinearThreshold/sleepAngularThreshold/sleepTime match spec 4.2.6's
// sleep criteria: a body below both velocity thresholds continuously for
// sleepTime seconds becomes a sleep candidate; its whole island sleeps
// only if every member qualifies.
const (
	sleepLinearThreshold  = 0.05
	sleepAngularThreshold = 0.05
	sleepTime             = 0.5
)

// updateIslandsAndSleep builds islands from this sub-step's contacts and
// joints and puts fully-qualified islands to sleep, waking any island
// touched by a non-sleeping body (spec 4.2.6).
func updateIslandsAndSleep(bodies map[ecs.Entity]*ecs.RigidBody, manifolds []*ContactManifold, joints []*ecs.Joint, dt float64) {
	uf := newUnionFind()
	for e := range bodies {
		uf.find(e)
	}
	for _, m := range manifolds {
		if m.IsTrigger {
			continue
		}
		if _, ok := bodies[m.EntityA]; !ok {
			continue
		}
		if _, ok := bodies[m.EntityB]; !ok {
			continue
		}
		uf.union(m.EntityA, m.EntityB)
	}
	for _, j := range joints {
		if _, ok := bodies[j.BodyA]; !ok {
			continue
		}
		if _, ok := bodies[j.BodyB]; !ok {
			continue
		}
		uf.union(j.BodyA, j.BodyB)
	}

	for _, body := range bodies {
		if body.BodyType != ecs.BodyDynamic {
			continue
		}
		slow := body.LinearVelocity.LengthSqr() < sleepLinearThreshold*sleepLinearThreshold &&
			body.AngularVelocity.LengthSqr() < sleepAngularThreshold*sleepAngularThreshold
		if slow {
			body.SleepTimer += dt
		} else {
			body.SleepTimer = 0
		}
	}

	islands := make(map[ecs.Entity][]ecs.Entity)
	for e := range bodies {
		root := uf.find(e)
		islands[root] = append(islands[root], e)
	}

	for _, members := range islands {
		allReady := true
		for _, e := range members {
			b := bodies[e]
			if b.BodyType != ecs.BodyDynamic {
				continue
			}
			if b.SleepTimer < sleepTime {
				allReady = false
				break
			}
		}
		for _, e := range members {
			b := bodies[e]
			if b.BodyType != ecs.BodyDynamic {
				continue
			}
			if allReady {
				b.Sleeping = true
				b.LinearVelocity = b.LinearVelocity.Mul(0)
				b.AngularVelocity = b.AngularVelocity.Mul(0)
			} else if b.Sleeping {
				b.Sleeping = false
				b.SleepTimer = 0
			}
		}
	}
}
