package renderer

import (
	"context"
	"image"
	"math"
	"math/rand"
	"time"

	"github.com/pkg/errors"
	"github.com/rtlab/pathtracer/asset/scene"
	"github.com/rtlab/pathtracer/bvh"
	"github.com/rtlab/pathtracer/camera"
	"github.com/rtlab/pathtracer/log"
	"github.com/rtlab/pathtracer/material"
	"github.com/rtlab/pathtracer/tracer"
	"github.com/rtlab/pathtracer/types"
	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"
)

var logger = log.New("renderer")

// A renderer that traces the frame on the CPU using a pool of goroutines.
// The scene, tree, materials and tracer are shared read-only; each worker
// owns its sampler, accumulator, camera fork and ray counters and writes a
// disjoint set of frame rows.
type cpuRenderer struct {
	opts      Options
	registry  Registries
	scheduler BlockScheduler

	tree   *bvh.Tree
	tracer *tracer.Tracer
	camera *camera.Camera

	frame *image.RGBA
	stats FrameStats
}

// Create a CPU renderer for a scene. The scene is triangulated, a BVH is
// built with the requested strategy and the scene materials are mapped to
// BRDF models.
func NewDefault(sc *scene.Scene, registry Registries, opts Options) (Renderer, error) {
	if sc == nil {
		return nil, ErrSceneNotDefined
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	// Fail early on unknown sampling strategies instead of inside the workers.
	spp := int(opts.SamplesPerPixel)
	if _, err := registry.Sampler.NewSampler(opts.Sampler, spp, rand.New(rand.NewSource(opts.Seed))); err != nil {
		return nil, err
	}
	if _, err := registry.Sampler.NewAccumulator(opts.Accumulator); err != nil {
		return nil, err
	}

	cam, err := newCamera(registry.Camera, &opts)
	if err != nil {
		return nil, err
	}

	faces, err := scene.Triangulate(sc)
	if err != nil {
		return nil, errors.Wrap(err, "renderer")
	}

	tree, err := registry.BVH.Build(opts.BVHStrategy, faces, sc)
	if err != nil {
		return nil, errors.Wrap(err, "renderer: bvh")
	}
	logger.Infof("built BVH for %d faces (%d nodes, %d leafs, depth %d) in %d ms",
		tree.Stats.Faces, tree.Stats.Nodes, tree.Stats.Leafs, tree.Stats.MaxDepth, tree.Stats.BuildTime.Nanoseconds()/1e6)

	materials := material.FromSceneList(registry.BRDF, sc.Materials)
	tr := tracer.New(tree, materials, tracer.SceneLights(sc), tracer.Options{
		MaxDepth:     int(opts.MaxDepth),
		Reflectivity: opts.Reflectivity,
	})
	for _, light := range tr.Lights() {
		logger.Debugf("point light at %v with color %v", light.Position, light.Color)
	}
	logger.Debugf("%s camera at %v looking along %v", cam.Name(), cam.Position(), cam.Basis().Forward)

	return &cpuRenderer{
		opts:      opts,
		registry:  registry,
		scheduler: NewInterleavedScheduler(opts.BlockH),
		tree:      tree,
		tracer:    tr,
		camera:    cam,
		stats: FrameStats{
			Faces: len(faces),
			BVH:   tree.Stats,
		},
	}, nil
}

// Set up the camera described by the render options.
func newCamera(registry *camera.Registry, opts *Options) (*camera.Camera, error) {
	co := &opts.Camera
	look := camera.Orient(co.Eye, co.Look, co.Up, co.Yaw, co.Pitch)
	aspect := float32(opts.FrameW) / float32(opts.FrameH)

	cam, err := registry.New(co.Projection, co.Eye, look, co.Up, co.params(aspect))
	if err != nil {
		return nil, errors.Wrap(err, "renderer: camera")
	}
	return cam, nil
}

// Render frame.
func (r *cpuRenderer) Render(ctx context.Context) (*image.RGBA, error) {
	if r.tracer == nil {
		return nil, ErrSceneNotDefined
	}

	start := time.Now()
	if r.frame == nil {
		r.frame = image.NewRGBA(image.Rect(0, 0, int(r.opts.FrameW), int(r.opts.FrameH)))
	}

	assignment := r.scheduler.Schedule(r.opts.Workers, r.opts.FrameH)
	workerStats := make([]WorkerStat, len(assignment))

	group, groupCtx := errgroup.WithContext(ctx)
	for worker, blocks := range assignment {
		group.Go(func() error {
			stat, err := r.renderBlocks(groupCtx, worker, blocks)
			workerStats[worker] = stat
			return err
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}

	r.stats.Workers = workerStats
	r.stats.Counters = tracer.Counters{}
	for _, stat := range workerStats {
		r.stats.Counters.Merge(stat.Counters)
	}
	r.stats.Samples = uint64(r.opts.FrameW) * uint64(r.opts.FrameH) * uint64(r.opts.SamplesPerPixel)
	r.stats.RenderTime = time.Since(start)

	logger.Infof("rendered %dx%d frame at %d spp using %d workers in %d ms",
		r.opts.FrameW, r.opts.FrameH, r.opts.SamplesPerPixel, len(assignment), r.stats.RenderTime.Nanoseconds()/1e6)
	return r.frame, nil
}

// Render the rows of a set of blocks. The worker id seeds the sampler and
// the camera lens so the output only depends on the options.
func (r *cpuRenderer) renderBlocks(ctx context.Context, worker int, blocks []Block) (WorkerStat, error) {
	start := time.Now()
	stat := WorkerStat{Id: worker, Blocks: len(blocks)}

	spp := int(r.opts.SamplesPerPixel)
	rng := rand.New(rand.NewSource(r.opts.Seed + int64(worker)))
	smp, err := r.registry.Sampler.NewSampler(r.opts.Sampler, spp, rng)
	if err != nil {
		return stat, err
	}
	acc, err := r.registry.Sampler.NewAccumulator(r.opts.Accumulator)
	if err != nil {
		return stat, err
	}
	cam := r.camera.Fork(worker)

	frameW, frameH := float32(r.opts.FrameW), float32(r.opts.FrameH)
	for _, block := range blocks {
		for y := block.Y; y < block.Y+block.H; y++ {
			if ctx.Err() != nil {
				return stat, errors.Wrapf(ErrInterrupted, "worker %d at row %d", worker, y)
			}

			for x := uint32(0); x < r.opts.FrameW; x++ {
				acc.Reset(spp)
				for s := 0; s < spp; s++ {
					su, sv := smp.Generate(s)
					ray := cam.Ray((float32(x)+su)/frameW, (float32(y)+sv)/frameH)
					acc.Add(r.tracer.Trace(ray, 0, &stat.Counters), s)
				}
				r.setPixel(int(x), int(y), acc.Get())
			}
		}
		stat.Rows += block.H
	}

	stat.RenderTime = time.Since(start)
	stat.FramePercent = 100.0 * float32(stat.Rows) / frameH
	return stat, nil
}

// Store a color in the frame buffer at full opacity.
func (r *cpuRenderer) setPixel(x, y int, color types.Vec3) {
	offset := r.frame.PixOffset(x, y)
	pix := r.frame.Pix[offset : offset+4 : offset+4]
	pix[0] = toByte(color[0])
	pix[1] = toByte(color[1])
	pix[2] = toByte(color[2])
	pix[3] = 255
}

// Convert a color channel to a byte. NaN maps to 0.
func toByte(c float32) uint8 {
	if math.IsNaN(float64(c)) {
		return 0
	}
	return uint8(lo.Clamp(c, 0, 1) * 255)
}

// Release the frame buffer and the scene acceleration structures.
func (r *cpuRenderer) Close() {
	r.frame = nil
	r.tracer = nil
	r.tree = nil
	r.camera = nil
}

// Get render statistics.
func (r *cpuRenderer) Stats() FrameStats {
	return r.stats
}
