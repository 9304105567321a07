package physics

import (
	"math"

	"forgecore/ecs"
	"forgecore/physmath"
)

// collide dispatches a candidate pair to the cheapest test available for
// its shape kinds, falling back to generic GJK/EPA for convex hulls,
// triangles and any combination with no closed-form test (spec 4.2.4
// "dispatch by shape kind; hull-hull and mixed pairs use GJK/EPA").
func collide(ta ecs.Transform, ca ecs.ColliderComponent, tb ecs.Transform, cb ecs.ColliderComponent) []ContactPoint {
	sa, sb := ca.Shape, cb.Shape

	switch {
	case sa.Kind == ecs.ShapeSphere && sb.Kind == ecs.ShapeSphere:
		return collideSphereSphere(ta, sa, tb, sb)
	case sa.Kind == ecs.ShapeSphere && isBox(sb.Kind):
		return flip(collideSphereBox(tb, sb, ta, sa))
	case isBox(sa.Kind) && sb.Kind == ecs.ShapeSphere:
		return collideSphereBox(ta, sa, tb, sb)
	case sa.Kind == ecs.ShapeSphere && sb.Kind == ecs.ShapeCapsule:
		return flip(collideSphereCapsule(tb, cb, ta, sa))
	case sa.Kind == ecs.ShapeCapsule && sb.Kind == ecs.ShapeSphere:
		return collideSphereCapsule(ta, ca, tb, sb)
	case sa.Kind == ecs.ShapeCapsule && sb.Kind == ecs.ShapeCapsule:
		return collideCapsuleCapsule(ta, ca, tb, cb)
	case isBox(sa.Kind) && isBox(sb.Kind):
		return collideBoxBox(ta, ca, tb, cb)
	default:
		return collideGJKEPA(ta, ca, tb, cb)
	}
}

func isBox(k ecs.ShapeKind) bool { return k == ecs.ShapeAABB || k == ecs.ShapeOBB }

func flip(points []ContactPoint) []ContactPoint {
	out := make([]ContactPoint, len(points))
	for i, p := range points {
		out[i] = ContactPoint{
			PointID:     p.PointID,
			WorldPointA: p.WorldPointB,
			WorldPointB: p.WorldPointA,
			Normal:      p.Normal.Negate(),
			Penetration: p.Penetration,
		}
	}
	return out
}

func collideSphereSphere(ta ecs.Transform, sa ecs.ColliderShape, tb ecs.Transform, sb ecs.ColliderShape) []ContactPoint {
	ca, cb := ta.Position, tb.Position
	delta := cb.Sub(ca)
	dist := delta.Length()
	radiusSum := sa.Radius + sb.Radius
	if dist >= radiusSum {
		return nil
	}
	normal := physmath.Vec3Up
	if dist > 1e-9 {
		normal = delta.Div(dist)
	}
	pointA := ca.Add(normal.Mul(sa.Radius))
	pointB := cb.Sub(normal.Mul(sb.Radius))
	return []ContactPoint{{
		PointID:     0,
		WorldPointA: pointA,
		WorldPointB: pointB,
		Normal:      normal,
		Penetration: radiusSum - dist,
	}}
}

// collideSphereBox handles sphere-vs-(AABB|OBB) by clamping the sphere
// center into the box's local frame (spec 4.2.4).
func collideSphereBox(tBox ecs.Transform, box ecs.ColliderShape, tSphere ecs.Transform, sphere ecs.ColliderShape) []ContactPoint {
	world := tBox.LocalMatrix()
	inv := world.Inverse()
	localCenter := inv.MulPoint(tSphere.Position)

	clamped := physmath.Vec3{
		X: clamp(localCenter.X, -box.HalfExtents.X, box.HalfExtents.X),
		Y: clamp(localCenter.Y, -box.HalfExtents.Y, box.HalfExtents.Y),
		Z: clamp(localCenter.Z, -box.HalfExtents.Z, box.HalfExtents.Z),
	}
	worldClosest := world.MulPoint(clamped)
	delta := tSphere.Position.Sub(worldClosest)
	dist := delta.Length()
	if dist >= sphere.Radius {
		return nil
	}
	normal := physmath.Vec3Up
	if dist > 1e-9 {
		normal = delta.Div(dist)
	}
	return []ContactPoint{{
		PointID:     0,
		WorldPointA: worldClosest,
		WorldPointB: tSphere.Position.Sub(normal.Mul(sphere.Radius)),
		Normal:      normal,
		Penetration: sphere.Radius - dist,
	}}
}

func collideSphereCapsule(tCap ecs.Transform, cap ecs.ColliderComponent, tSphere ecs.Transform, sphere ecs.ColliderShape) []ContactPoint {
	world := tCap.LocalMatrix().Mul(cap.LocalOffset.LocalMatrix())
	p0, p1 := capsuleSegment(world, cap.Shape)
	closest := closestPointOnSegment(p0, p1, tSphere.Position)
	delta := tSphere.Position.Sub(closest)
	dist := delta.Length()
	radiusSum := cap.Shape.Radius + sphere.Radius
	if dist >= radiusSum {
		return nil
	}
	normal := physmath.Vec3Up
	if dist > 1e-9 {
		normal = delta.Div(dist)
	}
	return []ContactPoint{{
		PointID:     0,
		WorldPointA: closest.Add(normal.Mul(cap.Shape.Radius)),
		WorldPointB: tSphere.Position.Sub(normal.Mul(sphere.Radius)),
		Normal:      normal,
		Penetration: radiusSum - dist,
	}}
}

func collideCapsuleCapsule(ta ecs.Transform, ca ecs.ColliderComponent, tb ecs.Transform, cb ecs.ColliderComponent) []ContactPoint {
	worldA := ta.LocalMatrix().Mul(ca.LocalOffset.LocalMatrix())
	worldB := tb.LocalMatrix().Mul(cb.LocalOffset.LocalMatrix())
	a0, a1 := capsuleSegment(worldA, ca.Shape)
	b0, b1 := capsuleSegment(worldB, cb.Shape)
	pa, pb := closestPointsBetweenSegments(a0, a1, b0, b1)

	delta := pb.Sub(pa)
	dist := delta.Length()
	radiusSum := ca.Shape.Radius + cb.Shape.Radius
	if dist >= radiusSum {
		return nil
	}
	normal := physmath.Vec3Up
	if dist > 1e-9 {
		normal = delta.Div(dist)
	}
	return []ContactPoint{{
		PointID:     0,
		WorldPointA: pa.Add(normal.Mul(ca.Shape.Radius)),
		WorldPointB: pb.Sub(normal.Mul(cb.Shape.Radius)),
		Normal:      normal,
		Penetration: radiusSum - dist,
	}}
}

// collideBoxBox performs a SAT test over the 15 candidate axes (3+3 face
// normals, 9 edge-cross products) and reports a single deepest point at
// the midpoint between supports along the minimum-penetration axis (spec
// 4.2.4). Clipped-polygon manifolds are not built: like every other
// narrowphase routine, including the GJK/EPA fallback, it reports one
// contact point per pair.
func collideBoxBox(ta ecs.Transform, ca ecs.ColliderComponent, tb ecs.Transform, cb ecs.ColliderComponent) []ContactPoint {
	sa, sb := ca.Shape, cb.Shape
	worldA := ta.LocalMatrix().Mul(ca.LocalOffset.LocalMatrix())
	worldB := tb.LocalMatrix().Mul(cb.LocalOffset.LocalMatrix())
	rotA := worldA.UpperLeft3x3()
	rotB := worldB.UpperLeft3x3()
	axesA := [3]physmath.Vec3{
		{X: rotA[0][0], Y: rotA[1][0], Z: rotA[2][0]},
		{X: rotA[0][1], Y: rotA[1][1], Z: rotA[2][1]},
		{X: rotA[0][2], Y: rotA[1][2], Z: rotA[2][2]},
	}
	axesB := [3]physmath.Vec3{
		{X: rotB[0][0], Y: rotB[1][0], Z: rotB[2][0]},
		{X: rotB[0][1], Y: rotB[1][1], Z: rotB[2][1]},
		{X: rotB[0][2], Y: rotB[1][2], Z: rotB[2][2]},
	}

	var candidateAxes []physmath.Vec3
	candidateAxes = append(candidateAxes, axesA[:]...)
	candidateAxes = append(candidateAxes, axesB[:]...)
	for _, a := range axesA {
		for _, b := range axesB {
			c := a.Cross(b)
			if !c.IsZero() {
				candidateAxes = append(candidateAxes, c.Normalize())
			}
		}
	}

	centerDelta := worldB.Translation().Sub(worldA.Translation())
	best := math.MaxFloat64
	var bestAxis physmath.Vec3
	for _, axis := range candidateAxes {
		extentA := boxProjectedExtent(axesA, sa.HalfExtents, axis)
		extentB := boxProjectedExtent(axesB, sb.HalfExtents, axis)
		dist := math.Abs(centerDelta.Dot(axis))
		overlap := extentA + extentB - dist
		if overlap < 0 {
			return nil
		}
		if overlap < best {
			best = overlap
			bestAxis = axis
			if centerDelta.Dot(axis) < 0 {
				bestAxis = axis.Negate()
			}
		}
	}

	pointOnA := support(ta, ecs.ColliderComponent{Shape: sa}, bestAxis)
	pointOnB := support(tb, ecs.ColliderComponent{Shape: sb}, bestAxis.Negate())
	mid := pointOnA.Add(pointOnB).Mul(0.5)
	return []ContactPoint{{
		PointID:     0,
		WorldPointA: mid,
		WorldPointB: mid,
		Normal:      bestAxis,
		Penetration: best,
	}}
}

func boxProjectedExtent(axes [3]physmath.Vec3, half physmath.Vec3, dir physmath.Vec3) float64 {
	return math.Abs(axes[0].Dot(dir))*half.X + math.Abs(axes[1].Dot(dir))*half.Y + math.Abs(axes[2].Dot(dir))*half.Z
}

// collideGJKEPA is the generic fallback for convex hulls, triangles and
// any pair without a closed-form test (spec 4.2.4.1).
func collideGJKEPA(ta ecs.Transform, ca ecs.ColliderComponent, tb ecs.Transform, cb ecs.ColliderComponent) []ContactPoint {
	simplex, hit := gjkIntersect(ta, ca, tb, cb)
	if !hit {
		return nil
	}
	normal, depth, onA, onB, ok := epaExpand(ta, ca, tb, cb, simplex)
	if !ok || depth <= 0 {
		return nil
	}
	return []ContactPoint{{
		PointID:     0,
		WorldPointA: onA,
		WorldPointB: onB,
		Normal:      normal,
		Penetration: depth,
	}}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func closestPointOnSegment(a, b, p physmath.Vec3) physmath.Vec3 {
	ab := b.Sub(a)
	lenSqr := ab.Dot(ab)
	if lenSqr < 1e-12 {
		return a
	}
	t := clamp(p.Sub(a).Dot(ab)/lenSqr, 0, 1)
	return a.Add(ab.Mul(t))
}

// closestPointsBetweenSegments finds the closest points between two
// finite segments, handling the parallel-segment degenerate case.
func closestPointsBetweenSegments(p1, q1, p2, q2 physmath.Vec3) (physmath.Vec3, physmath.Vec3) {
	d1, d2, r := q1.Sub(p1), q2.Sub(p2), p1.Sub(p2)
	a, e, f := d1.Dot(d1), d2.Dot(d2), d2.Dot(r)

	var s, t float64
	if a < 1e-12 && e < 1e-12 {
		return p1, p2
	}
	if a < 1e-12 {
		s = 0
		t = clamp(f/e, 0, 1)
	} else {
		c := d1.Dot(r)
		if e < 1e-12 {
			t = 0
			s = clamp(-c/a, 0, 1)
		} else {
			b := d1.Dot(d2)
			denom := a*e - b*b
			if denom != 0 {
				s = clamp((b*f-c*e)/denom, 0, 1)
			}
			t = (b*s + f) / e
			if t < 0 {
				t = 0
				s = clamp(-c/a, 0, 1)
			} else if t > 1 {
				t = 1
				s = clamp((b-c)/a, 0, 1)
			}
		}
	}
	return p1.Add(d1.Mul(s)), p2.Add(d2.Mul(t))
}
