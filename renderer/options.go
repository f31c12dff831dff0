package renderer

import (
	"math"
	"runtime"

	"github.com/pkg/errors"
	"github.com/rtlab/pathtracer/bvh"
	"github.com/rtlab/pathtracer/camera"
	"github.com/rtlab/pathtracer/sampler"
	"github.com/rtlab/pathtracer/tracer"
	"github.com/rtlab/pathtracer/types"
)

// Camera placement and projection settings.
type CameraOptions struct {
	// Projection name.
	Projection string

	// Camera position, look-at point and up vector.
	Eye  types.Vec3
	Look types.Vec3
	Up   types.Vec3

	// Look direction tweaks in radians.
	Yaw   float32
	Pitch float32

	// Vertical field of view in radians.
	FovY float32

	// Depth of field settings.
	Aperture  float32
	FocusDist float32

	// Image plane size for orthographic projections. A zero width is
	// derived from the height and the frame aspect ratio.
	OrthoWidth  float32
	OrthoHeight float32

	// Fisheye field of view in radians.
	FisheyeFov float32

	// Lens sampler seed; 0 selects the projection default.
	LensSeed uint32
}

type Options struct {
	// Frame dims.
	FrameW uint32
	FrameH uint32

	// Number of samples.
	SamplesPerPixel uint32

	// Sampler, accumulator and BVH strategy names. An empty BVH strategy
	// selects the registry default.
	Sampler     string
	Accumulator string
	BVHStrategy string

	Camera CameraOptions

	// Rays at this depth evaluate to black.
	MaxDepth uint32

	// Mirror reflection weight.
	Reflectivity float32

	// Number of render goroutines and the height of the row blocks they
	// work on.
	Workers int
	BlockH  uint32

	// Seed for the per-worker sampler generators.
	Seed int64
}

// Get the default render options.
func DefaultOptions() Options {
	return Options{
		FrameW:          800,
		FrameH:          600,
		SamplesPerPixel: 1,
		Sampler:         sampler.Regular,
		Accumulator:     sampler.Average,
		BVHStrategy:     bvh.Median,
		Camera: CameraOptions{
			Projection:  camera.Perspective,
			Eye:         types.XYZ(0, 1, 2.8),
			Look:        types.XYZ(0, 1, -1),
			Up:          types.XYZ(0, 1, 0),
			FovY:        camera.DefaultFovY,
			FocusDist:   1,
			OrthoHeight: camera.DefaultOrthoHeight,
			FisheyeFov:  camera.DefaultFisheyeFov,
		},
		MaxDepth:     tracer.DefaultMaxDepth,
		Reflectivity: tracer.DefaultReflectivity,
		Workers:      runtime.NumCPU(),
		BlockH:       8,
		Seed:         1,
	}
}

// Check the options for values that would prevent a render.
func (o *Options) Validate() error {
	if o.FrameW == 0 || o.FrameH == 0 {
		return errors.Wrapf(ErrInvalidDimensions, "got %dx%d", o.FrameW, o.FrameH)
	}
	if o.FrameW > math.MaxInt32/o.FrameH/4 {
		return errors.Wrapf(ErrInvalidDimensions, "frame %dx%d is too large", o.FrameW, o.FrameH)
	}
	if o.SamplesPerPixel == 0 {
		return errors.Wrap(ErrInvalidOptions, "samples per pixel must be positive")
	}
	if o.Workers < 1 {
		return errors.Wrapf(ErrInvalidOptions, "worker count must be positive; got %d", o.Workers)
	}
	if o.BlockH == 0 {
		return errors.Wrap(ErrInvalidOptions, "block height must be positive")
	}
	if o.Reflectivity < 0 || math.IsNaN(float64(o.Reflectivity)) {
		return errors.Wrapf(ErrInvalidOptions, "reflectivity must be non-negative; got %f", o.Reflectivity)
	}
	return nil
}

// Get the projection parameters for a frame with the given aspect ratio.
func (o *CameraOptions) params(aspect float32) camera.Params {
	p := camera.Params{
		Aspect:      aspect,
		FovY:        o.FovY,
		Aperture:    o.Aperture,
		FocusDist:   o.FocusDist,
		OrthoWidth:  o.OrthoWidth,
		OrthoHeight: o.OrthoHeight,
		FisheyeFov:  o.FisheyeFov,
		Seed:        o.LensSeed,
	}
	if p.OrthoWidth == 0 {
		p.OrthoWidth = p.OrthoHeight * aspect
	}
	return p
}
