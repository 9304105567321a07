package physics

import (
	"math"
	"sort"

	"forgecore/ecs"
	"forgecore/physmath"
)

// Ray is a world-space ray (spec 4.2.9). Grounded on the teacher's
// editor/raycast.go Ray type, promoted to float64 and generalized from
// mesh triangles to every collider shape.
type Ray struct {
	Origin    physmath.Vec3
	Direction physmath.Vec3 // expected normalized
}

// RayHit is one raycast result (spec 4.2.9).
type RayHit struct {
	Entity   ecs.Entity
	Distance float64
	Point    physmath.Vec3
	Normal   physmath.Vec3
}

// rayAABB is the teacher's slab test promoted to float64 (editor/raycast.go
// rayAABBIntersect).
func rayAABB(ray Ray, box physmath.AABB) (float64, bool) {
	invX, invY, invZ := safeInv(ray.Direction.X), safeInv(ray.Direction.Y), safeInv(ray.Direction.Z)

	t1 := (box.Min.X - ray.Origin.X) * invX
	t2 := (box.Max.X - ray.Origin.X) * invX
	t3 := (box.Min.Y - ray.Origin.Y) * invY
	t4 := (box.Max.Y - ray.Origin.Y) * invY
	t5 := (box.Min.Z - ray.Origin.Z) * invZ
	t6 := (box.Max.Z - ray.Origin.Z) * invZ

	tmin := max64(max64(min64(t1, t2), min64(t3, t4)), min64(t5, t6))
	tmax := min64(min64(max64(t1, t2), max64(t3, t4)), max64(t5, t6))

	if tmax < 0 || tmin > tmax {
		return 0, false
	}
	return tmin, true
}

func safeInv(v float64) float64 {
	if v == 0 {
		return math.Inf(1)
	}
	return 1.0 / v
}

func min64(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

func max64(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

// raySphere intersects a ray with a sphere, returning the near hit and its
// surface normal.
func raySphere(ray Ray, center physmath.Vec3, radius float64) (float64, physmath.Vec3, bool) {
	oc := ray.Origin.Sub(center)
	b := oc.Dot(ray.Direction)
	c := oc.Dot(oc) - radius*radius
	disc := b*b - c
	if disc < 0 {
		return 0, physmath.Vec3{}, false
	}
	sq := math.Sqrt(disc)
	t := -b - sq
	if t < 0 {
		t = -b + sq
	}
	if t < 0 {
		return 0, physmath.Vec3{}, false
	}
	point := ray.Origin.Add(ray.Direction.Mul(t))
	normal := point.Sub(center).Div(radius)
	return t, normal, true
}

// mollerTrumbore is the teacher's editor/raycast.go triangle test at f64.
func mollerTrumbore(ray Ray, v0, v1, v2 physmath.Vec3) (float64, bool) {
	const epsilon = 1e-9
	edge1 := v1.Sub(v0)
	edge2 := v2.Sub(v0)
	h := ray.Direction.Cross(edge2)
	a := edge1.Dot(h)
	if a > -epsilon && a < epsilon {
		return 0, false
	}
	f := 1.0 / a
	s := ray.Origin.Sub(v0)
	u := f * s.Dot(h)
	if u < 0 || u > 1 {
		return 0, false
	}
	q := s.Cross(edge1)
	v := f * ray.Direction.Dot(q)
	if v < 0 || u+v > 1 {
		return 0, false
	}
	t := f * edge2.Dot(q)
	return t, t > epsilon
}

// rayShape tests a ray against one entity's collider, broad-phased by its
// world AABB first (spec 4.2.9: "AABB reject before narrow shape test").
func rayShape(ray Ray, transform ecs.Transform, collider ecs.ColliderComponent) (float64, physmath.Vec3, bool) {
	box := WorldAABB(transform, collider)
	if _, hit := rayAABB(ray, box); !hit {
		return 0, physmath.Vec3{}, false
	}

	world := transform.LocalMatrix().Mul(collider.LocalOffset.LocalMatrix())
	shape := collider.Shape

	switch shape.Kind {
	case ecs.ShapeSphere:
		center := world.Translation()
		return raySphere(ray, center, shape.Radius)
	case ecs.ShapeAABB, ecs.ShapeOBB:
		return rayOBB(ray, world, shape.HalfExtents)
	case ecs.ShapeCapsule:
		return rayCapsule(ray, world, shape)
	case ecs.ShapeTriangle:
		a, b, c := world.MulPoint(shape.A), world.MulPoint(shape.B), world.MulPoint(shape.C)
		t, hit := mollerTrumbore(ray, a, b, c)
		if !hit {
			return 0, physmath.Vec3{}, false
		}
		n := b.Sub(a).Cross(c.Sub(a)).Normalize()
		return t, n, true
	case ecs.ShapeConvexHull:
		return rayConvexHull(ray, world, shape.ConvexVerts)
	case ecs.ShapeHeightfield:
		return rayAABB2Hit(ray, box)
	}
	return 0, physmath.Vec3{}, false
}

func rayAABB2Hit(ray Ray, box physmath.AABB) (float64, physmath.Vec3, bool) {
	t, hit := rayAABB(ray, box)
	if !hit {
		return 0, physmath.Vec3{}, false
	}
	point := ray.Origin.Add(ray.Direction.Mul(t))
	return t, aabbNormalAt(box, point), true
}

func aabbNormalAt(box physmath.AABB, point physmath.Vec3) physmath.Vec3 {
	center := box.Center()
	half := box.HalfExtents()
	local := point.Sub(center)
	bias := 1.0001

	if math.Abs(local.X/half.X) > math.Abs(local.Y/half.Y)*bias && math.Abs(local.X/half.X) > math.Abs(local.Z/half.Z)*bias {
		if local.X > 0 {
			return physmath.Vec3Right
		}
		return physmath.Vec3Right.Negate()
	}
	if math.Abs(local.Y/half.Y) > math.Abs(local.Z/half.Z)*bias {
		if local.Y > 0 {
			return physmath.Vec3Up
		}
		return physmath.Vec3Up.Negate()
	}
	if local.Z > 0 {
		return physmath.Vec3{X: 0, Y: 0, Z: 1}
	}
	return physmath.Vec3{X: 0, Y: 0, Z: -1}
}

// rayOBB transforms the ray into the box's local frame and runs a slab
// test there so rotated boxes work, then maps the normal back to world.
func rayOBB(ray Ray, world physmath.Mat4, half physmath.Vec3) (float64, physmath.Vec3, bool) {
	inv := world.Inverse()
	localRay := Ray{Origin: inv.MulPoint(ray.Origin), Direction: inv.UpperLeft3x3().MulVec(ray.Direction)}
	box := physmath.AABB{Min: half.Negate(), Max: half}
	t, hit := rayAABB(localRay, box)
	if !hit {
		return 0, physmath.Vec3{}, false
	}
	localPoint := localRay.Origin.Add(localRay.Direction.Mul(t))
	localNormal := aabbNormalAt(box, localPoint)
	worldNormal := world.UpperLeft3x3().Transpose().Inverse().MulVec(localNormal).Normalize()
	worldPoint := world.MulPoint(localPoint)
	return worldPoint.Sub(ray.Origin).Length(), worldNormal, true
}

func rayCapsule(ray Ray, world physmath.Mat4, shape ecs.ColliderShape) (float64, physmath.Vec3, bool) {
	p0, p1 := capsuleSegment(world, shape)
	closest := closestPointOnSegment(p0, p1, ray.Origin)
	_ = closest
	// Approximate via sampled sphere sweep along the spine: sufficient for
	// gameplay raycasts, avoids a full cylinder-cap analytic solve.
	best := math.Inf(1)
	var bestNormal physmath.Vec3
	found := false
	const samples = 16
	for i := 0; i <= samples; i++ {
		t := float64(i) / samples
		center := p0.Add(p1.Sub(p0).Mul(t))
		if dist, n, hit := raySphere(ray, center, shape.Radius); hit && dist < best {
			best, bestNormal, found = dist, n, true
		}
	}
	return best, bestNormal, found
}

func rayConvexHull(ray Ray, world physmath.Mat4, verts []physmath.Vec3) (float64, physmath.Vec3, bool) {
	if len(verts) < 3 {
		return 0, physmath.Vec3{}, false
	}
	best := math.Inf(1)
	var bestNormal physmath.Vec3
	found := false
	for i := 1; i+1 < len(verts); i++ {
		a := world.MulPoint(verts[0])
		b := world.MulPoint(verts[i])
		c := world.MulPoint(verts[i+1])
		if t, hit := mollerTrumbore(ray, a, b, c); hit && t < best {
			best = t
			bestNormal = b.Sub(a).Cross(c.Sub(a)).Normalize()
			found = true
		}
	}
	return best, bestNormal, found
}

// RaycastClosest returns the nearest hit along the ray, or false if none
// (spec 4.2.9 "raycast returns the closest entity"). Trigger colliders are
// skipped.
func RaycastClosest(w *ecs.World, ray Ray, maxDistance float64) (RayHit, bool) {
	var closest RayHit
	found := false
	closest.Distance = maxDistance

	w.ForEachCollider(func(e ecs.Entity, c *ecs.ColliderComponent) {
		if c.IsTrigger {
			return
		}
		transform := w.GetTransform(e)
		if transform == nil {
			return
		}
		t, normal, hit := rayShape(ray, *transform, *c)
		if hit && t >= 0 && t <= closest.Distance {
			closest = RayHit{Entity: e, Distance: t, Point: ray.Origin.Add(ray.Direction.Mul(t)), Normal: normal}
			found = true
		}
	})
	return closest, found
}

// RaycastAll returns every hit along the ray up to maxDistance, sorted by
// increasing distance (spec 4.2.9 "raycast_all").
func RaycastAll(w *ecs.World, ray Ray, maxDistance float64) []RayHit {
	var hits []RayHit
	w.ForEachCollider(func(e ecs.Entity, c *ecs.ColliderComponent) {
		transform := w.GetTransform(e)
		if transform == nil {
			return
		}
		t, normal, hit := rayShape(ray, *transform, *c)
		if hit && t >= 0 && t <= maxDistance {
			hits = append(hits, RayHit{Entity: e, Distance: t, Point: ray.Origin.Add(ray.Direction.Mul(t)), Normal: normal})
		}
	})
	sort.Slice(hits, func(i, j int) bool { return hits[i].Distance < hits[j].Distance })
	return hits
}
