// Package physics implements the rigid-body pipeline of spec section
// 4.2: fixed-timestep sub-stepping, spatial-hash broadphase, GJK/EPA and
// primitive narrowphase, a sequential-impulse solver with warm-started
// manifolds, joints, CCD, islands/sleep, triggers and collision
// callbacks. Grounded on the teacher's editor/raycast.go (ray-AABB slab
// test, Möller-Trumbore triangle test) generalized to f64 and to every
// collider shape, and on scene/frustum.go's AABB-transform pattern.
package physics

import (
	"forgecore/ecs"
	"forgecore/physmath"
)

// WorldAABB computes a collider's current world-space AABB from its
// owning entity's transform and local offset (spec 4.2.3).
func WorldAABB(transform ecs.Transform, collider ecs.ColliderComponent) physmath.AABB {
	world := transform.LocalMatrix().Mul(collider.LocalOffset.LocalMatrix())
	shape := collider.Shape

	switch shape.Kind {
	case ecs.ShapeSphere:
		center := world.Translation()
		r := shape.Radius * maxScale(transform.Scale)
		return physmath.AABB{Min: center.Sub(physmath.Vec3{X: r, Y: r, Z: r}), Max: center.Add(physmath.Vec3{X: r, Y: r, Z: r})}
	case ecs.ShapeAABB, ecs.ShapeOBB:
		local := physmath.AABB{Min: shape.HalfExtents.Negate(), Max: shape.HalfExtents}
		return local.Transform(world)
	case ecs.ShapeCapsule:
		half := capsuleHalfExtents(shape)
		local := physmath.AABB{Min: half.Negate(), Max: half}
		return local.Transform(world)
	case ecs.ShapeConvexHull:
		if len(shape.ConvexVerts) == 0 {
			c := world.Translation()
			return physmath.AABB{Min: c, Max: c}
		}
		first := world.MulPoint(shape.ConvexVerts[0])
		out := physmath.AABB{Min: first, Max: first}
		for _, v := range shape.ConvexVerts[1:] {
			p := world.MulPoint(v)
			out.Min = out.Min.Min(p)
			out.Max = out.Max.Max(p)
		}
		return out
	case ecs.ShapeTriangle:
		a, b, c := world.MulPoint(shape.A), world.MulPoint(shape.B), world.MulPoint(shape.C)
		out := physmath.AABB{Min: a, Max: a}
		out.Min, out.Max = out.Min.Min(b).Min(c), out.Max.Max(b).Max(c)
		return out
	case ecs.ShapeHeightfield:
		if shape.Heightfield == nil {
			return physmath.AABB{}
		}
		hf := shape.Heightfield
		maxH := 0.0
		for _, h := range hf.Heights {
			if h > maxH {
				maxH = h
			}
		}
		size := physmath.Vec3{X: float64(hf.Width) * hf.CellSize, Y: maxH, Z: float64(hf.Depth) * hf.CellSize}
		local := physmath.AABB{Min: physmath.Vec3Zero, Max: size}
		return local.Transform(world)
	}
	c := world.Translation()
	return physmath.AABB{Min: c, Max: c}
}

func maxScale(s physmath.Vec3) float64 {
	m := s.X
	if s.Y > m {
		m = s.Y
	}
	if s.Z > m {
		m = s.Z
	}
	return m
}

func capsuleHalfExtents(shape ecs.ColliderShape) physmath.Vec3 {
	h := shape.HalfHeight + shape.Radius
	switch shape.Axis {
	case ecs.CapsuleAxisX:
		return physmath.Vec3{X: h, Y: shape.Radius, Z: shape.Radius}
	case ecs.CapsuleAxisZ:
		return physmath.Vec3{X: shape.Radius, Y: shape.Radius, Z: h}
	default:
		return physmath.Vec3{X: shape.Radius, Y: h, Z: shape.Radius}
	}
}

func capsuleAxisVec(axis ecs.CapsuleAxis) physmath.Vec3 {
	switch axis {
	case ecs.CapsuleAxisX:
		return physmath.Vec3Right
	case ecs.CapsuleAxisZ:
		return physmath.Vec3{X: 0, Y: 0, Z: 1}
	default:
		return physmath.Vec3Up
	}
}

// capsuleSegment returns the world-space endpoints of a capsule's spine.
func capsuleSegment(world physmath.Mat4, shape ecs.ColliderShape) (physmath.Vec3, physmath.Vec3) {
	axis := capsuleAxisVec(shape.Axis).Mul(shape.HalfHeight)
	center := world.Translation()
	rot := world.UpperLeft3x3()
	worldAxis := rot.MulVec(axis)
	return center.Sub(worldAxis), center.Add(worldAxis)
}

// support returns the point on a shape (in world space) that maximizes
// the dot product with dir — the GJK/EPA support function (spec 4.2.4.1).
// It accounts for position, rotation, scale and local offset.
func support(transform ecs.Transform, collider ecs.ColliderComponent, dir physmath.Vec3) physmath.Vec3 {
	world := transform.LocalMatrix().Mul(collider.LocalOffset.LocalMatrix())
	// support_{M*S}(d) = M * support_S(M^T d): the local query direction is
	// the world linear part's transpose applied to d, not its inverse.
	localDir := world.UpperLeft3x3().Transpose().MulVec(dir).Normalize()

	shape := collider.Shape
	switch shape.Kind {
	case ecs.ShapeSphere:
		return world.MulPoint(localDir.Mul(shape.Radius))
	case ecs.ShapeAABB, ecs.ShapeOBB:
		p := physmath.Vec3{
			X: signedExtent(localDir.X, shape.HalfExtents.X),
			Y: signedExtent(localDir.Y, shape.HalfExtents.Y),
			Z: signedExtent(localDir.Z, shape.HalfExtents.Z),
		}
		return world.MulPoint(p)
	case ecs.ShapeCapsule:
		axis := capsuleAxisVec(shape.Axis)
		sign := 1.0
		if axis.Dot(localDir) < 0 {
			sign = -1
		}
		spine := axis.Mul(sign * shape.HalfHeight)
		p := spine.Add(localDir.Mul(shape.Radius))
		return world.MulPoint(p)
	case ecs.ShapeConvexHull:
		best := physmath.Vec3Zero
		bestDot := -1e300
		for _, v := range shape.ConvexVerts {
			d := v.Dot(localDir)
			if d > bestDot {
				bestDot = d
				best = v
			}
		}
		return world.MulPoint(best)
	case ecs.ShapeTriangle:
		verts := [3]physmath.Vec3{shape.A, shape.B, shape.C}
		best := verts[0]
		bestDot := best.Dot(localDir)
		for _, v := range verts[1:] {
			d := v.Dot(localDir)
			if d > bestDot {
				bestDot = d
				best = v
			}
		}
		return world.MulPoint(best)
	}
	return world.Translation()
}

func signedExtent(dirComponent, extent float64) float64 {
	if dirComponent < 0 {
		return -extent
	}
	return extent
}
