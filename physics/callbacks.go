package physics

import "forgecore/ecs"

// CollisionPhase identifies where a contact/overlap sits in its
// begin/stay/end lifecycle (spec 4.2.2 steps 12-13). Stay fires once per
// step for as long as the manifold persists, not just on the first and
// last step of contact.
type CollisionPhase int

const (
	CollisionBegin CollisionPhase = iota
	CollisionStay
	CollisionEnd
)

func (p CollisionPhase) String() string {
	switch p {
	case CollisionBegin:
		return "begin"
	case CollisionStay:
		return "stay"
	case CollisionEnd:
		return "end"
	default:
		return "unknown"
	}
}

// CollisionEvent describes a begin/stay/end collision transition between
// two non-trigger colliders (spec 4.2.7). EntityA/EntityB follow the
// canonical (lower, higher) entity ordering used by the manifold cache.
type CollisionEvent struct {
	EntityA, EntityB ecs.Entity
	Phase            CollisionPhase
}

// TriggerEvent describes a begin/stay/end overlap with a trigger collider
// (spec 4.2.7). Other is the non-trigger entity; Trigger is the trigger
// entity.
type TriggerEvent struct {
	Trigger, Other ecs.Entity
	Phase          CollisionPhase
}

// CollisionCallback and TriggerCallback are the event-sink signatures a
// caller registers with World (spec 4.2.7). They are plain function
// values rather than an ecs component store: collision routing belongs to
// the physics world, which is the only thing that knows about
// ContactManifold, keeping ecs free of physics-only types (spec section
// 2's layering: math -> ecs component store -> ... -> world step).
type CollisionCallback func(CollisionEvent)
type TriggerCallback func(TriggerEvent)

// eventRegistry tracks prior-step contact/overlap state so each event
// carries its phase: Begin on the first step a pair touches, Stay on every
// later step it remains touching, End on the first step it no longer does.
type eventRegistry struct {
	activeContacts map[manifoldKey]struct{}
	activeTriggers map[manifoldKey]struct{}

	onCollision []CollisionCallback
	onTrigger   []TriggerCallback
}

func newEventRegistry() *eventRegistry {
	return &eventRegistry{
		activeContacts: make(map[manifoldKey]struct{}),
		activeTriggers: make(map[manifoldKey]struct{}),
	}
}

func (r *eventRegistry) dispatch(manifolds []*ContactManifold) {
	seenContacts := make(map[manifoldKey]struct{})
	seenTriggers := make(map[manifoldKey]struct{})

	for _, m := range manifolds {
		key := newManifoldKey(m.EntityA, m.EntityB)
		if m.IsTrigger {
			seenTriggers[key] = struct{}{}
			phase := CollisionStay
			if _, was := r.activeTriggers[key]; !was {
				phase = CollisionBegin
			}
			r.fireTrigger(TriggerEvent{Trigger: m.EntityA, Other: m.EntityB, Phase: phase})
		} else {
			seenContacts[key] = struct{}{}
			phase := CollisionStay
			if _, was := r.activeContacts[key]; !was {
				phase = CollisionBegin
			}
			r.fireCollision(CollisionEvent{EntityA: m.EntityA, EntityB: m.EntityB, Phase: phase})
		}
	}

	for key := range r.activeContacts {
		if _, still := seenContacts[key]; !still {
			r.fireCollision(CollisionEvent{EntityA: key.a, EntityB: key.b, Phase: CollisionEnd})
		}
	}
	for key := range r.activeTriggers {
		if _, still := seenTriggers[key]; !still {
			r.fireTrigger(TriggerEvent{Trigger: key.a, Other: key.b, Phase: CollisionEnd})
		}
	}

	r.activeContacts = seenContacts
	r.activeTriggers = seenTriggers
}

func (r *eventRegistry) fireCollision(ev CollisionEvent) {
	for _, cb := range r.onCollision {
		cb(ev)
	}
}

func (r *eventRegistry) fireTrigger(ev TriggerEvent) {
	for _, cb := range r.onTrigger {
		cb(ev)
	}
}
