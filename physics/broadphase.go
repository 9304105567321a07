package physics

import (
	"forgecore/ecs"
	"forgecore/physmath"
)

// cellSize is the spatial-hash broadphase's grid resolution (spec 4.2.3).
// Fixed rather than adaptive: the spec's test scenarios use human-scale
// rigid bodies (fractions of a meter to a few meters).
const cellSize = 4.0

type cellKey struct{ x, y, z int64 }

func cellOf(p physmath.Vec3) cellKey {
	return cellKey{
		x: int64(floorDiv(p.X, cellSize)),
		y: int64(floorDiv(p.Y, cellSize)),
		z: int64(floorDiv(p.Z, cellSize)),
	}
}

func floorDiv(v, size float64) float64 {
	q := v / size
	if q < 0 {
		return q - 1
	}
	return q
}

// pair is an unordered candidate pair from the broadphase, canonicalized
// so (a, b) and (b, a) never both appear (spec 4.2.3).
type pair struct{ a, b ecs.Entity }

func makePair(a, b ecs.Entity) pair {
	if a > b {
		a, b = b, a
	}
	return pair{a, b}
}

// spatialHash buckets AABBs into a uniform grid and reports all bucket
// overlaps between distinct colliders whose AABBs actually intersect
// (spec 4.2.3: "grid buckets test broadphase pairs against box output").
type spatialHash struct {
	buckets map[cellKey][]ecs.Entity
}

func newSpatialHash() *spatialHash {
	return &spatialHash{buckets: make(map[cellKey][]ecs.Entity)}
}

func (h *spatialHash) insert(e ecs.Entity, box physmath.AABB) {
	min := cellOf(box.Min)
	max := cellOf(box.Max)
	for x := min.x; x <= max.x; x++ {
		for y := min.y; y <= max.y; y++ {
			for z := min.z; z <= max.z; z++ {
				k := cellKey{x, y, z}
				h.buckets[k] = append(h.buckets[k], e)
			}
		}
	}
}

// findPairs returns every candidate pair whose broad-phase AABBs overlap,
// deduplicated. Static-static pairs are excluded: two immovable bodies
// never need a manifold (spec 4.2.3 "skip static-static pairs").
func findPairs(boxes map[ecs.Entity]physmath.AABB, isStatic map[ecs.Entity]bool) []pair {
	h := newSpatialHash()
	for e, box := range boxes {
		h.insert(e, box)
	}

	seen := make(map[pair]struct{})
	var out []pair
	for _, bucket := range h.buckets {
		for i := 0; i < len(bucket); i++ {
			for j := i + 1; j < len(bucket); j++ {
				a, b := bucket[i], bucket[j]
				if a == b {
					continue
				}
				if isStatic[a] && isStatic[b] {
					continue
				}
				p := makePair(a, b)
				if _, dup := seen[p]; dup {
					continue
				}
				if !boxes[p.a].Overlaps(boxes[p.b]) {
					continue
				}
				seen[p] = struct{}{}
				out = append(out, p)
			}
		}
	}
	return out
}
