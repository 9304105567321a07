// mesh_cache.go uploads CPU mesh data to GPU-resident vertex/index
// buffers, grounded on the teacher's vulkan/buffer.go CreateBuffer +
// CopyBuffer staging pattern (used there for texture uploads,
// generalized here to vertex/index data).
package render

import (
	"fmt"
	"sync"
	"unsafe"

	"forgecore/core"
	"forgecore/ecs"
	"forgecore/vulkan"
)

// GPUMesh is one mesh's uploaded vertex/index buffers (spec 3 "GPU
// resource handles").
type GPUMesh struct {
	VertexBuffer *vulkan.Buffer
	IndexBuffer  *vulkan.Buffer
	VertexCount  uint32
	IndexCount   uint32
}

// MeshCache is an append-only map from ecs.MeshHandle to its uploaded
// GPU buffers (spec 3 "cached by (entity→mesh handle)"; spec 5 "GPU
// caches ... are append-only during a frame").
type MeshCache struct {
	mu     sync.Mutex
	device *vulkan.Device
	meshes map[ecs.MeshHandle]*GPUMesh
	nextID uint64
}

func NewMeshCache(device *vulkan.Device) *MeshCache {
	return &MeshCache{
		device: device,
		meshes: make(map[ecs.MeshHandle]*GPUMesh),
		nextID: 1,
	}
}

// Upload copies mesh.Vertices/Indices into a host-visible vertex buffer
// and an index buffer, returning a fresh handle. Mirrors the teacher's
// staging-buffer-free CreateBuffer+CopyData path (host-visible/coherent
// memory) used for uniform buffers; geometry here skips a device-local
// staging copy for simplicity, matching the teacher's uniform buffer
// treatment rather than its (staging-buffer) texture upload path.
func (c *MeshCache) Upload(mesh core.MeshData) (ecs.MeshHandle, error) {
	if len(mesh.Vertices) == 0 {
		return 0, fmt.Errorf("render: cannot upload an empty mesh")
	}

	vertexSize := uint64(len(mesh.Vertices)) * uint64(unsafe.Sizeof(mesh.Vertices[0]))
	vbuf, err := vulkan.CreateVertexBuffer(c.device, vertexSize)
	if err != nil {
		return 0, fmt.Errorf("render: vertex buffer: %w", err)
	}
	if err := vbuf.Map(c.device); err != nil {
		return 0, err
	}
	vbuf.CopyData(unsafe.Pointer(&mesh.Vertices[0]), vertexSize)
	vbuf.Unmap(c.device)

	var ibuf *vulkan.Buffer
	if len(mesh.Indices) > 0 {
		indexSize := uint64(len(mesh.Indices)) * uint64(unsafe.Sizeof(mesh.Indices[0]))
		ibuf, err = vulkan.CreateIndexBuffer(c.device, indexSize)
		if err != nil {
			return 0, fmt.Errorf("render: index buffer: %w", err)
		}
		if err := ibuf.Map(c.device); err != nil {
			return 0, err
		}
		ibuf.CopyData(unsafe.Pointer(&mesh.Indices[0]), indexSize)
		ibuf.Unmap(c.device)
	}

	c.mu.Lock()
	handle := ecs.MeshHandle(c.nextID)
	c.nextID++
	c.meshes[handle] = &GPUMesh{
		VertexBuffer: vbuf,
		IndexBuffer:  ibuf,
		VertexCount:  uint32(len(mesh.Vertices)),
		IndexCount:   uint32(len(mesh.Indices)),
	}
	c.mu.Unlock()

	return handle, nil
}

func (c *MeshCache) Get(handle ecs.MeshHandle) (*GPUMesh, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	m, ok := c.meshes[handle]
	return m, ok
}

func (c *MeshCache) Destroy() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, m := range c.meshes {
		m.VertexBuffer.Destroy(c.device)
		if m.IndexBuffer != nil {
			m.IndexBuffer.Destroy(c.device)
		}
	}
	c.meshes = make(map[ecs.MeshHandle]*GPUMesh)
}
