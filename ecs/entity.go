// Package ecs is the process-wide component store (spec section 3
// "Component store" / section 9 "tagged-array registry keyed by entity
// id"). It is new code enriched from NOT-REAL-GAMES-vulkango/vala/ecs
// (pack, not the teacher) — rewritten from scratch for forgecore's
// component kinds, following that package's explicit Add/Get/Remove/Has
// naming but backed by a generic insertion-ordered store so that adding
// a new component kind never means hand-writing another parallel map.
package ecs

// Entity is an opaque identifier, unique across a World's lifetime and
// never reused within a run (spec section 3).
type Entity uint64

const InvalidEntity Entity = 0

// World owns every entity and component in the simulation. It is the only
// mutable shared state the tick touches (spec section 5); reads during the
// opt-in parallel sections operate on snapshots taken before the phase
// begins, never on the World directly.
type World struct {
	nextEntity Entity
	alive      map[Entity]struct{}
	order      []Entity // insertion order, for deterministic full-world iteration

	transforms  *store[Transform]
	meshes      *store[MeshComponent]
	materials   *store[MaterialComponent]
	cameras     *store[CameraComponent]
	lights      *store[LightComponent]
	rigidBodies *store[RigidBody]
	colliders   *store[ColliderComponent]
	joints      *store[Joint]

	deferred []func(*World)
	inPhase  bool
}

func NewWorld() *World {
	return &World{
		alive:       make(map[Entity]struct{}),
		transforms:  newStore[Transform](),
		meshes:      newStore[MeshComponent](),
		materials:   newStore[MaterialComponent](),
		cameras:     newStore[CameraComponent](),
		lights:      newStore[LightComponent](),
		rigidBodies: newStore[RigidBody](),
		colliders:   newStore[ColliderComponent](),
		joints:      newStore[Joint](),
	}
}

// CreateEntity allocates a fresh, never-reused entity id.
func (w *World) CreateEntity() Entity {
	w.nextEntity++
	e := w.nextEntity
	w.alive[e] = struct{}{}
	w.order = append(w.order, e)
	return e
}

func (w *World) EntityExists(e Entity) bool {
	_, ok := w.alive[e]
	return ok
}

func (w *World) EntityCount() int { return len(w.alive) }

// Entities returns all living entities in creation order.
func (w *World) Entities() []Entity {
	out := make([]Entity, 0, len(w.order))
	for _, e := range w.order {
		if w.EntityExists(e) {
			out = append(out, e)
		}
	}
	return out
}

// DestroyEntity removes an entity and every component attached to it. If
// called from inside a ForEach visitor, the destruction is deferred until
// the visitor finishes (spec section 9: "Deletions during iteration are
// deferred into a queue applied at the end of the phase").
func (w *World) DestroyEntity(e Entity) {
	if w.inPhase {
		w.deferred = append(w.deferred, func(w *World) { w.destroyNow(e) })
		return
	}
	w.destroyNow(e)
}

func (w *World) destroyNow(e Entity) {
	delete(w.alive, e)
	w.transforms.remove(e)
	w.meshes.remove(e)
	w.materials.remove(e)
	w.cameras.remove(e)
	w.lights.remove(e)
	w.rigidBodies.remove(e)
	w.colliders.remove(e)
	w.joints.remove(e)
}

// beginPhase/endPhase bracket a visitor pass so deletions queue instead of
// mutating the store mid-iteration.
func (w *World) beginPhase() { w.inPhase = true }

func (w *World) endPhase() {
	w.inPhase = false
	pending := w.deferred
	w.deferred = nil
	for _, fn := range pending {
		fn(w)
	}
}
