package ecs

import (
	"forgecore/materials"
	"forgecore/physmath"
)

// Transform is position/rotation/scale in the parent's frame, f64 per
// spec section 3. Invariants, kept by the physics integrator (this
// package has no setters that check them): rotation norm in
// [1-1e-6, 1+1e-6], scale components non-zero.
type Transform struct {
	Position physmath.Vec3
	Rotation physmath.Quaternion
	Scale    physmath.Vec3

	Parent Entity // InvalidEntity for a root transform
}

func NewTransform() Transform {
	return Transform{
		Position: physmath.Vec3Zero,
		Rotation: physmath.QuaternionIdentity(),
		Scale:    physmath.Vec3One,
	}
}

// LocalMatrix returns this transform's local 4x4 matrix (spec 3 "Derived
// world_transform is a 4x4 f64 matrix").
func (t Transform) LocalMatrix() physmath.Mat4 {
	rotation := t.Rotation
	if rotation.LengthSqr() == 0 {
		rotation = physmath.QuaternionIdentity()
	}
	scale := t.Scale
	if scale.IsZero() {
		scale = physmath.Vec3One
	}
	return physmath.Mat4TRS(t.Position, rotation, scale)
}

// WorldMatrix resolves parenting by walking Parent links through the
// world. Parenting is optional (spec 3); an entity with no parent or a
// dangling parent reference returns its local matrix.
func (w *World) WorldMatrix(e Entity) physmath.Mat4 {
	t := w.transforms.get(e)
	if t == nil {
		return physmath.Mat4Identity()
	}
	local := t.LocalMatrix()
	if t.Parent == InvalidEntity || !w.EntityExists(t.Parent) {
		return local
	}
	return w.WorldMatrix(t.Parent).Mul(local)
}

// MeshHandle identifies uploaded mesh GPU data (spec 3 "GPU resource
// handles ... cached by (entity→mesh)").
type MeshHandle uint64

// MeshComponent references uploaded mesh data and caches its local-space
// bounding volume for frustum culling (spec 4.3 step 4).
type MeshComponent struct {
	Mesh         MeshHandle
	LocalAABB    physmath.AABB
	BoundsRadius float64 // cached bounding-sphere radius, grown for scale (spec 4.3 step 4)
	Skinned      bool
}

// MaterialComponent attaches a material to a mesh entity.
type MaterialComponent struct {
	Material *materials.Material
}

// CameraComponent is a projection source (spec 4.3 step 1-2).
type CameraComponent struct {
	Active      bool
	FOVYRadians float64
	AspectRatio float64
	Near, Far   float64
}

type LightKind int

const (
	LightDirectional LightKind = iota
	LightPoint
)

// LightComponent is a light source (spec 4.3 step 5: up to 16 point, 4
// directional; first directional is primary for CSM).
type LightComponent struct {
	Kind      LightKind
	Color     [3]float32
	Intensity float32
	Range     float32 // point lights only
}
