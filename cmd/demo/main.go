// Command demo drives one forgecore/engine.Engine through a small
// falling-boxes scene: a static ground plane, a handful of dynamic
// cubes dropped onto it, one directional light and a fly camera.
// Grounded on the teacher's cmd/demo/main.go driver loop (window
// creation, WASD camera movement, FPS-in-title, F5/F9 scene
// save/load), rewritten to go through the engine façade instead of
// wiring the renderer/scene packages directly.
package main

import (
	"fmt"
	stdmath "math"
	"time"

	"forgecore/core"
	"forgecore/corelog"
	"forgecore/ecs"
	"forgecore/engine"
	"forgecore/engineconfig"
	"forgecore/materials"
	"forgecore/physics"
	"forgecore/physmath"
)

const configPath = "demo_config.json"

// flyCamera is a yaw-only WASD fly controller, grounded on the
// teacher's CameraController but simplified to drive an ecs.Transform
// directly instead of a scene.Camera, and dropping mouse-look since the
// engine façade owns no cursor-capture state of its own.
type flyCamera struct {
	entity    ecs.Entity
	moveSpeed float64
	yaw       float64
}

func newFlyCamera(w *ecs.World) *flyCamera {
	e := w.CreateEntity()
	t := ecs.NewTransform()
	t.Position = physmath.Vec3{X: 0, Y: 2, Z: 10}
	w.AddTransform(e, t)
	w.AddCamera(e, ecs.CameraComponent{
		Active:      true,
		FOVYRadians: stdmath.Pi / 3,
		Near:        0.1,
		Far:         500,
	})
	return &flyCamera{entity: e, moveSpeed: 6.0}
}

func (fc *flyCamera) update(window *core.Window, w *ecs.World, dt float64) {
	if dt > 0.05 {
		dt = 0.05
	}
	if window.IsKeyPressed(core.KeyQ) {
		fc.yaw -= 1.5 * dt
	}
	if window.IsKeyPressed(core.KeyE) {
		fc.yaw += 1.5 * dt
	}

	forward := physmath.Vec3{X: stdmath.Sin(fc.yaw), Y: 0, Z: -stdmath.Cos(fc.yaw)}
	right := physmath.Vec3{X: stdmath.Cos(fc.yaw), Y: 0, Z: stdmath.Sin(fc.yaw)}

	transform := w.GetTransform(fc.entity)
	if transform == nil {
		return
	}
	move := physmath.Vec3{}
	if window.IsKeyPressed(core.KeyW) {
		move = move.Add(forward.Mul(fc.moveSpeed * dt))
	}
	if window.IsKeyPressed(core.KeyS) {
		move = move.Add(forward.Mul(-fc.moveSpeed * dt))
	}
	if window.IsKeyPressed(core.KeyD) {
		move = move.Add(right.Mul(fc.moveSpeed * dt))
	}
	if window.IsKeyPressed(core.KeyA) {
		move = move.Add(right.Mul(-fc.moveSpeed * dt))
	}
	if window.IsKeyPressed(core.KeySpace) {
		move.Y += fc.moveSpeed * dt
	}
	if window.IsKeyPressed(core.KeyLeftShift) {
		move.Y -= fc.moveSpeed * dt
	}
	transform.Position = transform.Position.Add(move)
	transform.Rotation = physmath.QuaternionFromAxisAngle(physmath.Vec3{X: 0, Y: 1, Z: 0}, fc.yaw)
}

// spawnGround adds a large static box collider/mesh pair at the origin
// so the dynamic cubes have something to land on (spec 4.2 static body,
// inv_mass 0).
func spawnGround(eng *engine.Engine, cubeMesh ecs.MeshHandle) ecs.Entity {
	e := eng.ECS.CreateEntity()
	t := ecs.NewTransform()
	t.Scale = physmath.Vec3{X: 20, Y: 0.5, Z: 20}
	eng.ECS.AddTransform(e, t)
	eng.ECS.AddMesh(e, ecs.MeshComponent{Mesh: cubeMesh, LocalAABB: unitCubeAABB(), BoundsRadius: 1.0})
	eng.ECS.AddMaterial(e, materials.DefaultMaterial())
	eng.ECS.AddRigidBody(e, ecs.NewStaticBody())
	eng.ECS.AddCollider(e, ecs.ColliderComponent{Shape: ecs.ColliderShape{Kind: ecs.ShapeOBB, HalfExtents: physmath.Vec3{X: 10, Y: 0.25, Z: 10}}})
	return e
}

// spawnFallingCube adds a dynamic unit cube above the ground (spec 4.2
// dynamic body, integrated every sub-step).
func spawnFallingCube(eng *engine.Engine, cubeMesh ecs.MeshHandle, pos physmath.Vec3) ecs.Entity {
	e := eng.ECS.CreateEntity()
	t := ecs.NewTransform()
	t.Position = pos
	eng.ECS.AddTransform(e, t)
	eng.ECS.AddMesh(e, ecs.MeshComponent{Mesh: cubeMesh, LocalAABB: unitCubeAABB(), BoundsRadius: 1.0})
	eng.ECS.AddMaterial(e, materials.DefaultMaterial())

	body := ecs.NewDynamicBody(1.0)
	body.InvInertiaLocal = physmath.Mat3Diag(6, 6, 6) // unit cube, mass 1: I = m*s^2/6 per axis, inverted
	eng.ECS.AddRigidBody(e, body)
	eng.ECS.AddCollider(e, ecs.ColliderComponent{Shape: ecs.ColliderShape{Kind: ecs.ShapeOBB, HalfExtents: physmath.Vec3{X: 0.5, Y: 0.5, Z: 0.5}}})
	return e
}

func unitCubeAABB() physmath.AABB {
	return physmath.AABB{Min: physmath.Vec3{X: -1, Y: -1, Z: -1}, Max: physmath.Vec3{X: 1, Y: 1, Z: 1}}
}

func main() {
	corelog.Infof("starting forgecore demo")

	cfg := engineconfig.DefaultEngineConfig()
	if loaded, err := engineconfig.Load(configPath); err == nil {
		cfg = loaded
		corelog.Infof("loaded engine config from %s", configPath)
	}

	windowConfig := core.DefaultWindowConfig()
	windowConfig.Title = "forgecore demo"

	eng, err := engine.New(engine.Config{Window: windowConfig, Engine: cfg})
	if err != nil {
		corelog.Errorf("failed to start engine: %v", err)
		return
	}
	defer eng.Shutdown()

	cubeData := core.NewCubeMeshData(1.0)
	cubeMesh, err := eng.UploadMesh(cubeData)
	if err != nil {
		corelog.Errorf("failed to upload cube mesh: %v", err)
		return
	}

	spawnGround(eng, cubeMesh)
	for i := 0; i < 5; i++ {
		spawnFallingCube(eng, cubeMesh, physmath.Vec3{X: float64(i)*1.5 - 3, Y: 5 + float64(i)*2, Z: 0})
	}

	sun := eng.ECS.CreateEntity()
	eng.ECS.AddTransform(sun, ecs.NewTransform())
	eng.ECS.AddLight(sun, ecs.LightComponent{Kind: ecs.LightDirectional, Color: [3]float32{1, 0.95, 0.9}, Intensity: 1.2})
	dayNight := NewDayNight(sun)

	camera := newFlyCamera(eng.ECS)
	overlay := &DebugOverlay{}

	eng.Physics.OnCollision(func(ev physics.CollisionEvent) {
		corelog.Debugf("collision: %v / %v", ev.EntityA, ev.EntityB)
	})

	var totalTime float64
	fpsFrames := 0
	fpsWindowStart := time.Now()
	lastTick := time.Now()

	for !eng.ShouldClose() {
		now := time.Now()
		dt := now.Sub(lastTick).Seconds()
		lastTick = now
		totalTime += dt

		eng.PollEvents()

		if eng.Window.IsKeyPressed(core.KeyEscape) {
			break
		}
		if eng.Window.IsKeyPressed(core.KeyF5) {
			if err := engineconfig.Save(configPath, eng.Config); err != nil {
				corelog.Warnf("failed to save config: %v", err)
			} else {
				corelog.Infof("saved engine config to %s", configPath)
			}
		}

		camera.update(eng.Window, eng.ECS, dt)
		dayNight.Update(float32(dt))
		dayNight.Apply(eng.ECS)
		eng.WorldStep(dt)

		if err := eng.RenderFrame(float32(totalTime)); err != nil {
			corelog.Warnf("render_frame: %v", err)
		}

		fpsFrames++
		if elapsed := now.Sub(fpsWindowStart); elapsed >= time.Second {
			fps := float64(fpsFrames) / elapsed.Seconds()
			overlay.Clear()
			overlay.AddLine("FPS: %.0f", fps)
			overlay.AddLine("time of day: %s", dayNight.TimeOfDayStr())
			w, h := eng.Window.Size()
			eng.Window.SetTitle(fmt.Sprintf("forgecore demo | %dx%d | %s", w, h, dayNight.TimeOfDayStr()))
			corelog.Debugf("%s", overlay.GetText())
			fpsFrames = 0
			fpsWindowStart = now
		}
	}
}
