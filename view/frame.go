// Package view builds one FrameData per rendered frame from the ECS
// world: active camera resolution, view/projection/frustum derivation,
// mesh culling, opaque/transparent classification and light collection
// (spec section 4.3). Grounded on the teacher's scene/frustum.go (plane
// extraction, AABB-frustum test, kept nearly as-is) and scene/camera.go
// (view/projection derivation), reworked to read from ecs.World instead
// of owning position/rotation fields directly.
package view

import (
	"sort"

	"golang.org/x/sync/errgroup"

	"forgecore/ecs"
	gfxmath "forgecore/math"
	"forgecore/physmath"
)

// MaxPointLights and MaxDirectionalLights bound FrameData's light arrays
// (spec 4.3 step 5).
const (
	MaxPointLights       = 16
	MaxDirectionalLights = 4
)

// DrawItem is one mesh entity resolved for this frame: its draw-ready
// world matrix, bounding data, and material reference (spec 4.3 step 4).
type DrawItem struct {
	Entity        ecs.Entity
	WorldMatrix   gfxmath.Mat4
	Mesh          ecs.MeshHandle
	Material      *ecs.MaterialComponent
	DistanceToCam float32 // camera to world-AABB-center distance, used for back-to-front sort
}

// LightItem is a light resolved into GPU-facing form (spec 4.3 step 5).
type LightItem struct {
	Kind      ecs.LightKind
	Position  gfxmath.Vec3 // point lights only
	Direction gfxmath.Vec3 // directional lights only
	Color     [3]float32
	Intensity float32
	Range     float32
}

// FrameData is the per-frame snapshot the render graph consumes (spec 3
// "FrameData", spec 4.3 "builds one FrameData per frame").
type FrameData struct {
	ViewMatrix       gfxmath.Mat4
	ProjectionMatrix gfxmath.Mat4
	ViewProjMatrix   gfxmath.Mat4
	CameraPosition   gfxmath.Vec3

	Opaque      []DrawItem
	Transparent []DrawItem // sorted back-to-front

	DirectionalLights []LightItem // first entry is primary, used for CSM
	PointLights       []LightItem
}

// meshEntry is the flattened form of an ecs mesh snapshot entry, used so
// the culling helpers don't need to name ecs's unexported snapshot type.
type meshEntry struct {
	Entity ecs.Entity
	Mesh   ecs.MeshComponent
}

// BuildFrame resolves the active camera, culls every mesh against its
// frustum, classifies opaque vs transparent, collects lights up to the
// spec's caps, and sorts transparents back-to-front (spec 4.3 steps 1-6).
// When parallel is true, culling is sharded across goroutines via
// errgroup (spec 5's opt-in parallel view-builder section); results are
// identical either way because each shard writes to a disjoint slice
// slot before the serial merge.
func BuildFrame(w *ecs.World, aspectRatio float32, parallel bool) (FrameData, bool) {
	cam, camTransform, ok := findActiveCamera(w)
	if !ok {
		return FrameData{}, false
	}

	viewMat := cameraViewMatrix(camTransform)
	proj := gfxmath.Mat4Perspective(float32(cam.FOVYRadians), aspectRatio, float32(cam.Near), float32(cam.Far))
	vp := proj.Mul(viewMat)
	frust := frustumFromVP(vp)
	camPos := toGfxVec3(camTransform.Position)

	snapshot := w.SnapshotMeshes()
	entries := make([]meshEntry, len(snapshot))
	for i, s := range snapshot {
		entries[i] = meshEntry{Entity: s.Entity, Mesh: s.Value}
	}

	results := make([]cullResult, len(entries))
	cullOne := func(i int) {
		results[i] = cullMesh(w, entries[i], frust, camPos)
	}

	if parallel && len(entries) > 0 {
		var g errgroup.Group
		shards := shardCount(len(entries))
		chunk := (len(entries) + shards - 1) / shards
		for s := 0; s < shards; s++ {
			start := s * chunk
			end := start + chunk
			if start >= len(entries) {
				break
			}
			if end > len(entries) {
				end = len(entries)
			}
			g.Go(func() error {
				for i := start; i < end; i++ {
					cullOne(i)
				}
				return nil
			})
		}
		_ = g.Wait()
	} else {
		for i := range entries {
			cullOne(i)
		}
	}

	var opaque, transparent []DrawItem
	for _, r := range results {
		if !r.visible {
			continue
		}
		if r.item.Material != nil && r.item.Material.Material != nil && r.item.Material.Material.IsTransparent() {
			transparent = append(transparent, r.item)
		} else {
			opaque = append(opaque, r.item)
		}
	}

	sort.SliceStable(transparent, func(i, j int) bool {
		return transparent[i].DistanceToCam > transparent[j].DistanceToCam
	})

	dirLights, pointLights := collectLights(w)

	return FrameData{
		ViewMatrix:        viewMat,
		ProjectionMatrix:  proj,
		ViewProjMatrix:    vp,
		CameraPosition:    camPos,
		Opaque:            opaque,
		Transparent:       transparent,
		DirectionalLights: dirLights,
		PointLights:       pointLights,
	}, true
}

// shardCount picks a small, fixed fan-out for the parallel culling path;
// the spec only requires identical results between serial and parallel,
// not a specific core count.
func shardCount(n int) int {
	const maxShards = 4
	if n < maxShards {
		return 1
	}
	return maxShards
}

type cullResult struct {
	visible bool
	item    DrawItem
}

// cullMesh applies the frustum-AABB test and, on visibility, builds the
// mesh's DrawItem (spec 4.3 step 4).
func cullMesh(w *ecs.World, entry meshEntry, frust frustum, camPos gfxmath.Vec3) cullResult {
	transform := w.GetTransform(entry.Entity)
	if transform == nil {
		return cullResult{}
	}
	worldF64 := w.WorldMatrix(entry.Entity)
	worldBox := entry.Mesh.LocalAABB.Transform(worldF64)

	if !frust.intersectsAABB(worldBox) {
		return cullResult{}
	}

	worldMat := toGfxMat4(worldF64)
	center := worldBox.Center()
	dist := center.Sub(physmath.Vec3{X: float64(camPos.X), Y: float64(camPos.Y), Z: float64(camPos.Z)}).Length()

	return cullResult{
		visible: true,
		item: DrawItem{
			Entity:        entry.Entity,
			WorldMatrix:   worldMat,
			Mesh:          entry.Mesh.Mesh,
			Material:      w.GetMaterial(entry.Entity),
			DistanceToCam: float32(dist),
		},
	}
}

// findActiveCamera returns the first camera entity with Active set, in
// insertion order (spec 4.3 step 1).
func findActiveCamera(w *ecs.World) (ecs.CameraComponent, ecs.Transform, bool) {
	var found ecs.CameraComponent
	var foundTransform ecs.Transform
	ok := false
	w.ForEachCamera(func(e ecs.Entity, c *ecs.CameraComponent) {
		if ok || !c.Active {
			return
		}
		transform := w.GetTransform(e)
		if transform == nil {
			return
		}
		found = *c
		foundTransform = *transform
		ok = true
	})
	return found, foundTransform, ok
}

// cameraViewMatrix inverts the camera's world matrix (spec 4.3 step 2:
// "camera world position from column 4 of world transform; view matrix is
// its inverse").
func cameraViewMatrix(t ecs.Transform) gfxmath.Mat4 {
	world := t.LocalMatrix()
	return toGfxMat4(world.Inverse())
}

func collectLights(w *ecs.World) ([]LightItem, []LightItem) {
	var directional, point []LightItem
	w.ForEachLight(func(e ecs.Entity, l *ecs.LightComponent) {
		transform := w.GetTransform(e)
		if transform == nil {
			return
		}
		switch l.Kind {
		case ecs.LightDirectional:
			if len(directional) >= MaxDirectionalLights {
				return
			}
			dir := transform.Rotation.RotateVector(physmath.Vec3{X: 0, Y: 0, Z: -1})
			directional = append(directional, LightItem{
				Kind:      l.Kind,
				Direction: toGfxVec3(dir),
				Color:     l.Color,
				Intensity: l.Intensity,
			})
		case ecs.LightPoint:
			if len(point) >= MaxPointLights {
				return
			}
			point = append(point, LightItem{
				Kind:      l.Kind,
				Position:  toGfxVec3(transform.Position),
				Color:     l.Color,
				Intensity: l.Intensity,
				Range:     l.Range,
			})
		}
	})
	return directional, point
}

func toGfxVec3(v physmath.Vec3) gfxmath.Vec3 {
	return gfxmath.Vec3{X: float32(v.X), Y: float32(v.Y), Z: float32(v.Z)}
}

func toGfxMat4(m physmath.Mat4) gfxmath.Mat4 {
	var out gfxmath.Mat4
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			out[i][j] = float32(m[i][j])
		}
	}
	return out
}
