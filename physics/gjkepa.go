package physics

import (
	"forgecore/ecs"
	"forgecore/physmath"
)

// csoSupport is a Minkowski-difference support point: the support of A in
// dir minus the support of B in -dir, plus the witness points on each
// shape (spec 4.2.4.1 "generic GJK/EPA path for hull-hull and other
// non-analytic pairs").
type csoSupport struct {
	point  physmath.Vec3
	onA    physmath.Vec3
	onB    physmath.Vec3
}

func minkowskiSupport(ta ecs.Transform, ca ecs.ColliderComponent, tb ecs.Transform, cb ecs.ColliderComponent, dir physmath.Vec3) csoSupport {
	pa := support(ta, ca, dir)
	pb := support(tb, cb, dir.Negate())
	return csoSupport{point: pa.Sub(pb), onA: pa, onB: pb}
}

const gjkMaxIterations = 32
const gjkEpsilon = 1e-9

// gjkSimplex holds up to 4 support points during GJK iteration.
type gjkSimplex struct {
	pts []csoSupport
}

func (s *gjkSimplex) push(p csoSupport) { s.pts = append([]csoSupport{p}, s.pts...) }

// gjkIntersect runs GJK to determine whether two convex shapes overlap; on
// overlap it returns the final simplex (2-4 points) for EPA to expand.
func gjkIntersect(ta ecs.Transform, ca ecs.ColliderComponent, tb ecs.Transform, cb ecs.ColliderComponent) (*gjkSimplex, bool) {
	dir := tb.Position.Sub(ta.Position)
	if dir.IsZero() {
		dir = physmath.Vec3Right
	}
	simplex := &gjkSimplex{}
	simplex.push(minkowskiSupport(ta, ca, tb, cb, dir))
	dir = simplex.pts[0].point.Negate()

	for i := 0; i < gjkMaxIterations; i++ {
		if dir.IsZero() {
			return simplex, true
		}
		next := minkowskiSupport(ta, ca, tb, cb, dir)
		if next.point.Dot(dir) < gjkEpsilon {
			return nil, false
		}
		simplex.push(next)

		var contains bool
		contains, dir = handleSimplex(simplex, dir)
		if contains {
			return simplex, true
		}
	}
	return simplex, true
}

// handleSimplex reduces the simplex toward the origin, matching the
// standard line/triangle/tetrahedron GJK case split.
func handleSimplex(s *gjkSimplex, dir physmath.Vec3) (bool, physmath.Vec3) {
	switch len(s.pts) {
	case 2:
		return lineCase(s, dir)
	case 3:
		return triangleCase(s, dir)
	case 4:
		return tetrahedronCase(s, dir)
	}
	return false, dir
}

func lineCase(s *gjkSimplex, _ physmath.Vec3) (bool, physmath.Vec3) {
	a, b := s.pts[0].point, s.pts[1].point
	ab, ao := b.Sub(a), a.Negate()
	if ab.Dot(ao) > 0 {
		return false, tripleCross(ab, ao, ab)
	}
	s.pts = s.pts[:1]
	return false, ao
}

func triangleCase(s *gjkSimplex, _ physmath.Vec3) (bool, physmath.Vec3) {
	a, b, c := s.pts[0].point, s.pts[1].point, s.pts[2].point
	ab, ac, ao := b.Sub(a), c.Sub(a), a.Negate()
	abc := ab.Cross(ac)

	if tripleCross(abc, ac, ab.Negate()).Dot(ao) > 0 {
		if ac.Dot(ao) > 0 {
			s.pts = []csoSupport{s.pts[0], s.pts[2]}
			return false, tripleCross(ac, ao, ac)
		}
		s.pts = []csoSupport{s.pts[0], s.pts[1]}
		return lineCase(s, ao)
	}
	if tripleCross(abc.Negate(), ab, ac.Negate()).Dot(ao) > 0 {
		s.pts = []csoSupport{s.pts[0], s.pts[1]}
		return lineCase(s, ao)
	}
	if abc.Dot(ao) > 0 {
		return false, abc
	}
	s.pts = []csoSupport{s.pts[0], s.pts[2], s.pts[1]}
	return false, abc.Negate()
}

func tetrahedronCase(s *gjkSimplex, dir physmath.Vec3) (bool, physmath.Vec3) {
	a, b, c, d := s.pts[0].point, s.pts[1].point, s.pts[2].point, s.pts[3].point
	ao := a.Negate()

	abc := b.Sub(a).Cross(c.Sub(a))
	acd := c.Sub(a).Cross(d.Sub(a))
	adb := d.Sub(a).Cross(b.Sub(a))

	if abc.Dot(ao) > 0 {
		s.pts = []csoSupport{s.pts[0], s.pts[1], s.pts[2]}
		return triangleCase(s, dir)
	}
	if acd.Dot(ao) > 0 {
		s.pts = []csoSupport{s.pts[0], s.pts[2], s.pts[3]}
		return triangleCase(s, dir)
	}
	if adb.Dot(ao) > 0 {
		s.pts = []csoSupport{s.pts[0], s.pts[3], s.pts[1]}
		return triangleCase(s, dir)
	}
	return true, dir
}

func tripleCross(a, b, c physmath.Vec3) physmath.Vec3 {
	return a.Cross(b).Cross(c)
}

const epaMaxIterations = 32
const epaEpsilon = 1e-6

type epaFace struct {
	a, b, c int
	normal  physmath.Vec3
	dist    float64
}

// epaExpand grows the GJK termination simplex into the penetration depth
// and contact normal via the standard polytope-expansion algorithm (spec
// 4.2.4.1). Returns normal (A->B), depth, and witness points on A and B.
func epaExpand(ta ecs.Transform, ca ecs.ColliderComponent, tb ecs.Transform, cb ecs.ColliderComponent, simplex *gjkSimplex) (physmath.Vec3, float64, physmath.Vec3, physmath.Vec3, bool) {
	polytope := append([]csoSupport{}, simplex.pts...)
	if len(polytope) < 4 {
		return physmath.Vec3{}, 0, physmath.Vec3{}, physmath.Vec3{}, false
	}

	faces := []epaFace{
		newFace(polytope, 0, 1, 2),
		newFace(polytope, 0, 3, 1),
		newFace(polytope, 0, 2, 3),
		newFace(polytope, 1, 3, 2),
	}

	for i := 0; i < epaMaxIterations; i++ {
		closest, closestDist := 0, faces[0].dist
		for fi := 1; fi < len(faces); fi++ {
			if faces[fi].dist < closestDist {
				closest, closestDist = fi, faces[fi].dist
			}
		}
		face := faces[closest]
		support := minkowskiSupport(ta, ca, tb, cb, face.normal)
		dist := support.point.Dot(face.normal)

		if dist-closestDist < epaEpsilon {
			bary := barycentric(polytope[face.a].point, polytope[face.b].point, polytope[face.c].point, face.normal.Mul(closestDist))
			onA := blend(polytope, face, bary, func(s csoSupport) physmath.Vec3 { return s.onA })
			onB := blend(polytope, face, bary, func(s csoSupport) physmath.Vec3 { return s.onB })
			return face.normal, closestDist, onA, onB, true
		}

		polytope = append(polytope, support)
		newIdx := len(polytope) - 1

		var edges [][2]int
		keep := faces[:0]
		for _, f := range faces {
			if f.normal.Dot(support.point.Sub(polytope[f.a].point)) > 0 {
				edges = addEdge(edges, f.a, f.b)
				edges = addEdge(edges, f.b, f.c)
				edges = addEdge(edges, f.c, f.a)
			} else {
				keep = append(keep, f)
			}
		}
		faces = keep
		for _, e := range edges {
			faces = append(faces, newFace(polytope, e[0], e[1], newIdx))
		}
		if len(faces) == 0 {
			return physmath.Vec3{}, 0, physmath.Vec3{}, physmath.Vec3{}, false
		}
	}
	return physmath.Vec3{}, 0, physmath.Vec3{}, physmath.Vec3{}, false
}

func newFace(p []csoSupport, a, b, c int) epaFace {
	n := p[b].point.Sub(p[a].point).Cross(p[c].point.Sub(p[a].point)).Normalize()
	d := n.Dot(p[a].point)
	if d < 0 {
		n = n.Negate()
		d = -d
	}
	return epaFace{a: a, b: b, c: c, normal: n, dist: d}
}

func addEdge(edges [][2]int, a, b int) [][2]int {
	for i, e := range edges {
		if e[0] == b && e[1] == a {
			return append(edges[:i], edges[i+1:]...)
		}
	}
	return append(edges, [2]int{a, b})
}

// barycentric returns the barycentric weights of point p projected onto
// triangle abc, used to interpolate the witness points on the original
// shapes from the closest EPA face (spec 4.2.4.1).
func barycentric(a, b, c, p physmath.Vec3) [3]float64 {
	v0, v1, v2 := b.Sub(a), c.Sub(a), p.Sub(a)
	d00, d01, d11 := v0.Dot(v0), v0.Dot(v1), v1.Dot(v1)
	d20, d21 := v2.Dot(v0), v2.Dot(v1)
	denom := d00*d11 - d01*d01
	if denom == 0 {
		return [3]float64{1, 0, 0}
	}
	v := (d11*d20 - d01*d21) / denom
	w := (d00*d21 - d01*d20) / denom
	u := 1 - v - w
	return [3]float64{u, v, w}
}

func blend(p []csoSupport, f epaFace, bary [3]float64, pick func(csoSupport) physmath.Vec3) physmath.Vec3 {
	pa, pb, pc := pick(p[f.a]), pick(p[f.b]), pick(p[f.c])
	return pa.Mul(bary[0]).Add(pb.Mul(bary[1])).Add(pc.Mul(bary[2]))
}
