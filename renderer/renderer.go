package renderer

import (
	"context"
	"image"

	"github.com/rtlab/pathtracer/brdf"
	"github.com/rtlab/pathtracer/bvh"
	"github.com/rtlab/pathtracer/camera"
	"github.com/rtlab/pathtracer/sampler"
)

type Renderer interface {
	// Render frame. The returned image is owned by the renderer and stays
	// valid until the next call to Render or Close.
	Render(ctx context.Context) (*image.RGBA, error)

	// Release the frame buffer and the scene acceleration structures.
	Close()

	// Get render statistics.
	Stats() FrameStats
}

// The strategy registries consulted while setting up a render.
type Registries struct {
	BVH     *bvh.Registry
	BRDF    *brdf.Registry
	Camera  *camera.Registry
	Sampler *sampler.Registry
}

// Create registries populated with all built-in strategies.
func DefaultRegistries() Registries {
	return Registries{
		BVH:     bvh.DefaultRegistry(),
		BRDF:    brdf.DefaultRegistry(),
		Camera:  camera.DefaultRegistry(),
		Sampler: sampler.DefaultRegistry(),
	}
}
