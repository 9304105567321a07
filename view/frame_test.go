package view

import (
	"testing"

	"forgecore/ecs"
	"forgecore/materials"
	"forgecore/physmath"
)

func buildTestWorld() *ecs.World {
	w := ecs.NewWorld()

	camEntity := w.CreateEntity()
	w.AddTransform(camEntity, ecs.Transform{Position: physmath.Vec3{X: 0, Y: 0, Z: 5}, Rotation: physmath.QuaternionIdentity(), Scale: physmath.Vec3One})
	w.AddCamera(camEntity, ecs.CameraComponent{Active: true, FOVYRadians: 1.0, Near: 0.1, Far: 100})

	visible := w.CreateEntity()
	w.AddTransform(visible, ecs.Transform{Position: physmath.Vec3{X: 0, Y: 0, Z: 0}, Rotation: physmath.QuaternionIdentity(), Scale: physmath.Vec3One})
	w.AddMesh(visible, ecs.MeshComponent{LocalAABB: physmath.AABB{Min: physmath.Vec3{X: -1, Y: -1, Z: -1}, Max: physmath.Vec3{X: 1, Y: 1, Z: 1}}})
	w.AddMaterial(visible, materials.DefaultMaterial())

	behind := w.CreateEntity()
	w.AddTransform(behind, ecs.Transform{Position: physmath.Vec3{X: 0, Y: 0, Z: 50}, Rotation: physmath.QuaternionIdentity(), Scale: physmath.Vec3One})
	w.AddMesh(behind, ecs.MeshComponent{LocalAABB: physmath.AABB{Min: physmath.Vec3{X: -1, Y: -1, Z: -1}, Max: physmath.Vec3{X: 1, Y: 1, Z: 1}}})
	w.AddMaterial(behind, materials.DefaultMaterial())

	dirLight := w.CreateEntity()
	w.AddTransform(dirLight, ecs.NewTransform())
	w.AddLight(dirLight, ecs.LightComponent{Kind: ecs.LightDirectional, Color: [3]float32{1, 1, 1}, Intensity: 1})

	return w
}

func TestBuildFrameClassifiesAndCulls(t *testing.T) {
	w := buildTestWorld()
	frame, ok := BuildFrame(w, 16.0/9.0, false)
	if !ok {
		t.Fatal("expected an active camera to be found")
	}
	if len(frame.Opaque) != 1 {
		t.Fatalf("expected exactly 1 culled opaque item, got %d", len(frame.Opaque))
	}
	if len(frame.DirectionalLights) != 1 {
		t.Fatalf("expected 1 directional light, got %d", len(frame.DirectionalLights))
	}
}

func TestBuildFrameNoCameraReturnsFalse(t *testing.T) {
	w := ecs.NewWorld()
	_, ok := BuildFrame(w, 1.0, false)
	if ok {
		t.Fatal("expected no active camera to report false")
	}
}

func TestBuildFrameParallelMatchesSerial(t *testing.T) {
	w := buildTestWorld()
	serial, _ := BuildFrame(w, 16.0/9.0, false)
	parallel, _ := BuildFrame(w, 16.0/9.0, true)

	if len(serial.Opaque) != len(parallel.Opaque) {
		t.Fatalf("serial and parallel culling disagree: %d vs %d", len(serial.Opaque), len(parallel.Opaque))
	}
}

func TestTransparentSortedBackToFront(t *testing.T) {
	w := ecs.NewWorld()
	camEntity := w.CreateEntity()
	w.AddTransform(camEntity, ecs.Transform{Position: physmath.Vec3Zero, Rotation: physmath.QuaternionIdentity(), Scale: physmath.Vec3One})
	w.AddCamera(camEntity, ecs.CameraComponent{Active: true, FOVYRadians: 1.5, Near: 0.1, Far: 1000})

	glassMat := materials.DefaultMaterial()
	glassMat.Opacity = 0.5

	for _, z := range []float64{-5, -20, -10} {
		e := w.CreateEntity()
		w.AddTransform(e, ecs.Transform{Position: physmath.Vec3{X: 0, Y: 0, Z: z}, Rotation: physmath.QuaternionIdentity(), Scale: physmath.Vec3One})
		w.AddMesh(e, ecs.MeshComponent{LocalAABB: physmath.AABB{Min: physmath.Vec3{X: -1, Y: -1, Z: -1}, Max: physmath.Vec3{X: 1, Y: 1, Z: 1}}})
		w.AddMaterial(e, glassMat)
	}

	frame, ok := BuildFrame(w, 1.0, false)
	if !ok {
		t.Fatal("expected camera")
	}
	if len(frame.Transparent) != 3 {
		t.Fatalf("expected 3 transparent items, got %d", len(frame.Transparent))
	}
	for i := 1; i < len(frame.Transparent); i++ {
		if frame.Transparent[i].DistanceToCam > frame.Transparent[i-1].DistanceToCam {
			t.Fatalf("transparents not sorted back-to-front: %+v", frame.Transparent)
		}
	}
}
