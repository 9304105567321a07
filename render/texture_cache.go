// texture_cache.go uploads decoded image pixels to GPU-resident
// textures, grounded on the teacher's vulkan/texture_upload.go
// UploadTextureData (already implements the full staging-buffer →
// device-local image → sampler pipeline), generalized here only by
// assigning and tracking materials.TextureRef handles.
package render

import (
	"fmt"
	"sync"

	"forgecore/materials"
	"forgecore/vulkan"
)

// TextureCache is an append-only map from materials.TextureRef to its
// uploaded GPU image and sampler (spec 3 "GPU resource handles").
type TextureCache struct {
	mu       sync.Mutex
	device   *vulkan.Device
	textures map[materials.TextureRef]*vulkan.TextureUploadResult
	nextID   uint64
}

func NewTextureCache(device *vulkan.Device) *TextureCache {
	return &TextureCache{
		device:   device,
		textures: make(map[materials.TextureRef]*vulkan.TextureUploadResult),
		nextID:   1,
	}
}

// Upload decodes nothing itself (the caller supplies raw RGBA8 pixels,
// e.g. from assetbridge's glTF image bytes run through an image
// decoder) and hands them to vulkan.UploadTextureData, returning a
// fresh handle on success.
func (c *TextureCache) Upload(width, height uint32, rgba8Pixels []byte) (materials.TextureRef, error) {
	if len(rgba8Pixels) == 0 {
		return 0, fmt.Errorf("render: cannot upload an empty texture")
	}
	result, err := vulkan.UploadTextureData(c.device, width, height, rgba8Pixels)
	if err != nil {
		return 0, fmt.Errorf("render: texture upload: %w", err)
	}

	c.mu.Lock()
	ref := materials.TextureRef(c.nextID)
	c.nextID++
	c.textures[ref] = result
	c.mu.Unlock()

	return ref, nil
}

func (c *TextureCache) Get(ref materials.TextureRef) (*vulkan.TextureUploadResult, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	t, ok := c.textures[ref]
	return t, ok
}

func (c *TextureCache) Destroy() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, t := range c.textures {
		t.Destroy(c.device)
	}
	c.textures = make(map[materials.TextureRef]*vulkan.TextureUploadResult)
}
