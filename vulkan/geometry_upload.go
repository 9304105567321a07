package vulkan

/*
#include <vulkan/vulkan.h>
*/
import "C"
import "unsafe"

// CreateVertexBuffer allocates a host-visible, host-coherent buffer
// suitable for vertex data, mirroring the host-visible uniform buffer
// allocation in renderer.go (no staging-buffer/device-local upgrade,
// since geometry here is uploaded once at load time rather than per
// frame).
func CreateVertexBuffer(device *Device, size uint64) (*Buffer, error) {
	return CreateBuffer(device, size,
		C.VK_BUFFER_USAGE_VERTEX_BUFFER_BIT,
		C.VK_MEMORY_PROPERTY_HOST_VISIBLE_BIT|C.VK_MEMORY_PROPERTY_HOST_COHERENT_BIT)
}

// CreateIndexBuffer allocates a host-visible, host-coherent buffer
// suitable for 32-bit index data.
func CreateIndexBuffer(device *Device, size uint64) (*Buffer, error) {
	return CreateBuffer(device, size,
		C.VK_BUFFER_USAGE_INDEX_BUFFER_BIT,
		C.VK_MEMORY_PROPERTY_HOST_VISIBLE_BIT|C.VK_MEMORY_PROPERTY_HOST_COHERENT_BIT)
}

// BindIndexBufferUint32 binds buffer as the command buffer's index
// source, assuming 32-bit indices (core.MeshData.Indices is []uint32).
func (cb *CommandBuffer) BindIndexBufferUint32(buffer C.VkBuffer, offset uint64) {
	cb.BindIndexBuffer(buffer, offset, C.VK_INDEX_TYPE_UINT32)
}

// PushVertexConstants writes push-constant bytes visible to the vertex
// stage, wrapping PushConstants so callers outside this package (which
// cannot spell C.VkShaderStageFlags) can push per-object data.
func (cb *CommandBuffer) PushVertexConstants(layout C.VkPipelineLayout, values unsafe.Pointer, size uint32) {
	cb.PushConstants(layout, C.VK_SHADER_STAGE_VERTEX_BIT, 0, size, values)
}

// PushFragmentConstants writes push-constant bytes visible to the
// fragment stage, used by fullscreen passes whose only input is a small
// parameter block rather than a full per-frame/per-object UBO.
func (cb *CommandBuffer) PushFragmentConstants(layout C.VkPipelineLayout, values unsafe.Pointer, size uint32) {
	cb.PushConstants(layout, C.VK_SHADER_STAGE_FRAGMENT_BIT, 0, size, values)
}
