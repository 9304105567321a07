package assetbridge

import (
	"fmt"
	"path/filepath"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"

	"forgecore/core"
	gfxmath "forgecore/math"
)

// ImportedMaterial is the scalar half of a glTF material; texture slots
// are left as source descriptors because resolving them to a
// materials.TextureRef requires the caller's upload hook (spec 6
// "upload_texture").
type ImportedMaterial struct {
	Name      string
	Albedo    core.Color
	Metallic  float32
	Roughness float32

	AlbedoTextureURI  string // resolved, absolute-or-relative path; empty if none
	AlbedoTextureData []byte // set instead of URI for embedded GLB images
	NormalTextureURI  string
	NormalTextureData []byte
}

// ImportedMesh is one glTF primitive flattened to its world transform
// (spec 6's mesh-import seam feeding UploadMesh).
type ImportedMesh struct {
	Name          string
	Data          core.MeshData
	WorldPosition gfxmath.Vec3
	WorldRotation gfxmath.Quaternion
	WorldScale    gfxmath.Vec3
	MaterialIndex int // index into ImportedScene.Materials, -1 if none
}

// ImportedScene is the flattened result of an ImportGLTF call: no node
// hierarchy is retained, since the engine places every mesh as its own
// ECS entity rather than walking a scene graph (spec 3 data model has
// no Node/parent-child component).
type ImportedScene struct {
	Meshes    []ImportedMesh
	Materials []ImportedMaterial
}

// ImportGLTF opens a .glb or .gltf file, grounded on the teacher's
// scene/gltf_loader.go (texture/material/primitive extraction via
// qmuntal/gltf + its modeler helpers), but flattened to world-space
// meshes instead of scene.Node trees: the core has no scene graph,
// only ecs.World entities carrying independent Transform components.
func ImportGLTF(path string) (*ImportedScene, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("assetbridge: gltf open %q: %w", path, err)
	}
	dir := filepath.Dir(path)

	materials, err := importMaterials(doc, dir)
	if err != nil {
		return nil, err
	}

	meshPrims, err := importMeshPrimitives(doc)
	if err != nil {
		return nil, err
	}

	out := &ImportedScene{Materials: materials}

	roots := rootNodeIndices(doc)
	for _, idx := range roots {
		walkNode(doc, idx, identityTRS(), meshPrims, &out.Meshes)
	}
	return out, nil
}

type trs struct {
	pos   gfxmath.Vec3
	rot   gfxmath.Quaternion
	scale gfxmath.Vec3
}

func identityTRS() trs {
	return trs{pos: gfxmath.Vec3Zero, rot: gfxmath.QuaternionIdentity(), scale: gfxmath.Vec3One}
}

// combine composes a child's local TRS onto its parent's world TRS,
// assuming no shear (the standard non-skewing TRS composition: scale
// then rotate then translate the child's local position).
func combine(parent, local trs) trs {
	scaled := gfxmath.Vec3{X: local.pos.X * parent.scale.X, Y: local.pos.Y * parent.scale.Y, Z: local.pos.Z * parent.scale.Z}
	rotated := parent.rot.RotateVector(scaled)
	return trs{
		pos:   parent.pos.Add(rotated),
		rot:   parent.rot.Mul(local.rot),
		scale: gfxmath.Vec3{X: parent.scale.X * local.scale.X, Y: parent.scale.Y * local.scale.Y, Z: parent.scale.Z * local.scale.Z},
	}
}

func walkNode(doc *gltf.Document, nodeIdx int, parentWorld trs, meshPrims [][]namedMesh, out *[]ImportedMesh) {
	gn := doc.Nodes[nodeIdx]
	world := combine(parentWorld, nodeLocalTRS(gn))

	if gn.Mesh != nil && int(*gn.Mesh) < len(meshPrims) {
		for _, nm := range meshPrims[*gn.Mesh] {
			*out = append(*out, ImportedMesh{
				Name:          nm.name,
				Data:          nm.data,
				WorldPosition: world.pos,
				WorldRotation: world.rot,
				WorldScale:    world.scale,
				MaterialIndex: nm.materialIndex,
			})
		}
	}

	for _, childIdx := range gn.Children {
		walkNode(doc, int(childIdx), world, meshPrims, out)
	}
}

func nodeLocalTRS(gn *gltf.Node) trs {
	t := gn.TranslationOrDefault()
	r := gn.RotationOrDefault()
	s := gn.ScaleOrDefault()
	return trs{
		pos:   gfxmath.Vec3{X: float32(t[0]), Y: float32(t[1]), Z: float32(t[2])},
		rot:   gfxmath.Quaternion{X: float32(r[0]), Y: float32(r[1]), Z: float32(r[2]), W: float32(r[3])},
		scale: gfxmath.Vec3{X: float32(s[0]), Y: float32(s[1]), Z: float32(s[2])},
	}
}

func rootNodeIndices(doc *gltf.Document) []int {
	if doc.Scene != nil && int(*doc.Scene) < len(doc.Scenes) {
		roots := make([]int, len(doc.Scenes[*doc.Scene].Nodes))
		for i, n := range doc.Scenes[*doc.Scene].Nodes {
			roots[i] = int(n)
		}
		return roots
	}
	hasParent := make([]bool, len(doc.Nodes))
	for _, gn := range doc.Nodes {
		for _, c := range gn.Children {
			if int(c) < len(hasParent) {
				hasParent[c] = true
			}
		}
	}
	var roots []int
	for i, has := range hasParent {
		if !has {
			roots = append(roots, i)
		}
	}
	return roots
}

type namedMesh struct {
	name          string
	data          core.MeshData
	materialIndex int
}

func importMeshPrimitives(doc *gltf.Document) ([][]namedMesh, error) {
	meshPrims := make([][]namedMesh, len(doc.Meshes))
	for mi, gm := range doc.Meshes {
		for pi, prim := range gm.Primitives {
			data, err := readPrimitive(doc, *prim)
			if err != nil {
				return nil, fmt.Errorf("assetbridge: mesh %d prim %d: %w", mi, pi, err)
			}
			name := fmt.Sprintf("%s_p%d", gm.Name, pi)
			matIdx := -1
			if prim.Material != nil {
				matIdx = int(*prim.Material)
			}
			meshPrims[mi] = append(meshPrims[mi], namedMesh{name: name, data: data, materialIndex: matIdx})
		}
	}
	return meshPrims, nil
}

func readPrimitive(doc *gltf.Document, prim gltf.Primitive) (core.MeshData, error) {
	posIdx, ok := prim.Attributes["POSITION"]
	if !ok {
		return core.MeshData{}, fmt.Errorf("no POSITION attribute")
	}
	positions, err := modeler.ReadPosition(doc, doc.Accessors[posIdx], nil)
	if err != nil {
		return core.MeshData{}, fmt.Errorf("positions: %w", err)
	}

	var normals [][3]float32
	var uvs [][2]float32
	if idx, ok := prim.Attributes["NORMAL"]; ok {
		normals, _ = modeler.ReadNormal(doc, doc.Accessors[idx], nil)
	}
	if idx, ok := prim.Attributes["TEXCOORD_0"]; ok {
		uvs, _ = modeler.ReadTextureCoord(doc, doc.Accessors[idx], nil)
	}

	verts := make([]core.Vertex, len(positions))
	for i, p := range positions {
		v := core.Vertex{
			Position: gfxmath.Vec3{X: p[0], Y: p[1], Z: p[2]},
			Normal:   gfxmath.Vec3{X: 0, Y: 1, Z: 0},
			Color:    core.ColorWhite,
		}
		if i < len(normals) {
			n := normals[i]
			v.Normal = gfxmath.Vec3{X: n[0], Y: n[1], Z: n[2]}
		}
		if i < len(uvs) {
			v.UV = gfxmath.Vec2{X: uvs[i][0], Y: uvs[i][1]}
		}
		verts[i] = v
	}

	var indices []uint32
	if prim.Indices != nil {
		indices, err = modeler.ReadIndices(doc, doc.Accessors[*prim.Indices], nil)
		if err != nil {
			return core.MeshData{}, fmt.Errorf("indices: %w", err)
		}
	}

	return core.MeshData{Vertices: verts, Indices: indices}, nil
}

func importMaterials(doc *gltf.Document, dir string) ([]ImportedMaterial, error) {
	out := make([]ImportedMaterial, len(doc.Materials))
	for i, gm := range doc.Materials {
		im := ImportedMaterial{Name: gm.Name, Albedo: core.ColorWhite, Roughness: 0.5}
		if pbr := gm.PBRMetallicRoughness; pbr != nil {
			cf := pbr.BaseColorFactorOrDefault()
			im.Albedo = core.Color{R: float32(cf[0]), G: float32(cf[1]), B: float32(cf[2]), A: float32(cf[3])}
			im.Metallic = float32(pbr.MetallicFactorOrDefault())
			im.Roughness = float32(pbr.RoughnessFactorOrDefault())
			if pbr.BaseColorTexture != nil {
				uri, data, err := resolveTexture(doc, dir, pbr.BaseColorTexture.Index)
				if err != nil {
					return nil, err
				}
				im.AlbedoTextureURI, im.AlbedoTextureData = uri, data
			}
		}
		if gm.NormalTexture != nil && gm.NormalTexture.Index != nil {
			uri, data, err := resolveTexture(doc, dir, *gm.NormalTexture.Index)
			if err != nil {
				return nil, err
			}
			im.NormalTextureURI, im.NormalTextureData = uri, data
		}
		out[i] = im
	}
	return out, nil
}

// resolveTexture returns either a file path (external URI) or raw
// bytes (embedded GLB buffer view), matching the teacher's two-path
// branch in scene/gltf_loader.go's texture loop.
func resolveTexture(doc *gltf.Document, dir string, texIdx uint32) (uri string, data []byte, err error) {
	if int(texIdx) >= len(doc.Textures) {
		return "", nil, nil
	}
	gt := doc.Textures[texIdx]
	if gt.Source == nil {
		return "", nil, nil
	}
	img := doc.Images[*gt.Source]
	if img.BufferView != nil {
		raw, rerr := modeler.ReadBufferView(doc, doc.BufferViews[*img.BufferView])
		if rerr != nil {
			return "", nil, fmt.Errorf("assetbridge: image %d bufferview: %w", *gt.Source, rerr)
		}
		return "", raw, nil
	}
	if img.URI != "" && !img.IsEmbeddedResource() {
		return filepath.Join(dir, img.URI), nil, nil
	}
	return "", nil, nil
}
