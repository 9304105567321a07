package ecs

import (
	"forgecore/materials"
	"forgecore/physmath"
)

// Each component kind gets explicit Add/Get/Has/Remove methods, matching
// the teacher-adjacent vala/ecs idiom (github.com/NOT-REAL-GAMES/vulkango,
// pack reference) rather than a reflective generic API — the set of kinds
// is fixed and small, and explicit methods read better at call sites than
// ecs.Get[Transform](w, e).

// --- Transform ---

func (w *World) AddTransform(e Entity, t Transform) *Transform {
	if t.Rotation.LengthSqr() == 0 {
		t.Rotation = physmath.QuaternionIdentity()
	}
	return w.transforms.set(e, t)
}
func (w *World) GetTransform(e Entity) *Transform { return w.transforms.get(e) }
func (w *World) HasTransform(e Entity) bool        { return w.transforms.has(e) }
func (w *World) RemoveTransform(e Entity)          { w.transforms.remove(e) }
func (w *World) ForEachTransform(fn func(Entity, *Transform)) {
	w.beginPhase()
	w.transforms.forEach(fn)
	w.endPhase()
}
func (w *World) SnapshotTransforms() []snapshotEntry[Transform] { return w.transforms.snapshot() }

// --- Mesh ---

func (w *World) AddMesh(e Entity, m MeshComponent) *MeshComponent { return w.meshes.set(e, m) }
func (w *World) GetMesh(e Entity) *MeshComponent                  { return w.meshes.get(e) }
func (w *World) HasMesh(e Entity) bool                            { return w.meshes.has(e) }
func (w *World) RemoveMesh(e Entity)                              { w.meshes.remove(e) }
func (w *World) ForEachMesh(fn func(Entity, *MeshComponent)) {
	w.beginPhase()
	w.meshes.forEach(fn)
	w.endPhase()
}
func (w *World) SnapshotMeshes() []snapshotEntry[MeshComponent] { return w.meshes.snapshot() }

// --- Material ---

func (w *World) AddMaterial(e Entity, m *materials.Material) *MaterialComponent {
	return w.materials.set(e, MaterialComponent{Material: m})
}
func (w *World) GetMaterial(e Entity) *MaterialComponent { return w.materials.get(e) }
func (w *World) HasMaterial(e Entity) bool                { return w.materials.has(e) }
func (w *World) RemoveMaterial(e Entity)                  { w.materials.remove(e) }

// --- Camera ---

func (w *World) AddCamera(e Entity, c CameraComponent) *CameraComponent { return w.cameras.set(e, c) }
func (w *World) GetCamera(e Entity) *CameraComponent                    { return w.cameras.get(e) }
func (w *World) RemoveCamera(e Entity)                                  { w.cameras.remove(e) }
func (w *World) ForEachCamera(fn func(Entity, *CameraComponent)) {
	w.beginPhase()
	w.cameras.forEach(fn)
	w.endPhase()
}

// --- Light ---

func (w *World) AddLight(e Entity, l LightComponent) *LightComponent { return w.lights.set(e, l) }
func (w *World) GetLight(e Entity) *LightComponent                   { return w.lights.get(e) }
func (w *World) RemoveLight(e Entity)                                 { w.lights.remove(e) }
func (w *World) ForEachLight(fn func(Entity, *LightComponent)) {
	w.beginPhase()
	w.lights.forEach(fn)
	w.endPhase()
}

// --- RigidBody ---

func (w *World) AddRigidBody(e Entity, b RigidBody) *RigidBody { return w.rigidBodies.set(e, b) }
func (w *World) GetRigidBody(e Entity) *RigidBody              { return w.rigidBodies.get(e) }
func (w *World) HasRigidBody(e Entity) bool                    { return w.rigidBodies.has(e) }
func (w *World) RemoveRigidBody(e Entity)                       { w.rigidBodies.remove(e) }
func (w *World) ForEachRigidBody(fn func(Entity, *RigidBody)) {
	w.beginPhase()
	w.rigidBodies.forEach(fn)
	w.endPhase()
}
func (w *World) SnapshotRigidBodies() []snapshotEntry[RigidBody] { return w.rigidBodies.snapshot() }

// --- Collider ---

func (w *World) AddCollider(e Entity, c ColliderComponent) *ColliderComponent {
	return w.colliders.set(e, c)
}
func (w *World) GetCollider(e Entity) *ColliderComponent { return w.colliders.get(e) }
func (w *World) HasCollider(e Entity) bool                { return w.colliders.has(e) }
func (w *World) RemoveCollider(e Entity)                  { w.colliders.remove(e) }
func (w *World) ForEachCollider(fn func(Entity, *ColliderComponent)) {
	w.beginPhase()
	w.colliders.forEach(fn)
	w.endPhase()
}
func (w *World) SnapshotColliders() []snapshotEntry[ColliderComponent] { return w.colliders.snapshot() }

// --- Joint ---

func (w *World) AddJoint(e Entity, j Joint) *Joint { return w.joints.set(e, j) }
func (w *World) GetJoint(e Entity) *Joint          { return w.joints.get(e) }
func (w *World) RemoveJoint(e Entity)              { w.joints.remove(e) }
func (w *World) ForEachJoint(fn func(Entity, *Joint)) {
	w.beginPhase()
	w.joints.forEach(fn)
	w.endPhase()
}
