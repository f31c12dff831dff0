package cmd

import (
	"math"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/rtlab/pathtracer/renderer"
	"github.com/rtlab/pathtracer/types"
	"github.com/urfave/cli"
)

const degToRad = math.Pi / 180.0

// Get the flags accepted by the render command. Flag defaults mirror
// renderer.DefaultOptions.
func RenderFlags() []cli.Flag {
	def := renderer.DefaultOptions()
	return []cli.Flag{
		cli.StringFlag{
			Name:  "obj",
			Usage: "wavefront obj scene file (required)",
		},
		cli.StringFlag{
			Name:  "mtl",
			Usage: "material library to load before the scene file",
		},
		cli.IntFlag{
			Name:  "width, w",
			Value: int(def.FrameW),
			Usage: "frame width",
		},
		cli.IntFlag{
			Name:  "height, H",
			Value: int(def.FrameH),
			Usage: "frame height",
		},
		cli.StringFlag{
			Name:  "out, o",
			Value: "output.png",
			Usage: "image filename for the rendered frame",
		},
		cli.IntFlag{
			Name:  "spp",
			Value: int(def.SamplesPerPixel),
			Usage: "samples per pixel",
		},
		cli.StringFlag{
			Name:  "sampler",
			Value: def.Sampler,
			Usage: "sub-pixel sampler (regular, random, jittered)",
		},
		cli.StringFlag{
			Name:  "accumulator",
			Value: def.Accumulator,
			Usage: "sample accumulator",
		},
		cli.StringFlag{
			Name:  "bvh",
			Value: def.BVHStrategy,
			Usage: "BVH build strategy (median, sah)",
		},
		cli.StringFlag{
			Name:  "projection",
			Value: def.Camera.Projection,
			Usage: "camera projection (perspective, orthographic, fisheye, spherical, perspective_dof, orthographic_dof)",
		},
		cli.StringFlag{
			Name:  "eye",
			Value: formatVec3(def.Camera.Eye),
			Usage: "camera position as x,y,z",
		},
		cli.StringFlag{
			Name:  "look",
			Value: formatVec3(def.Camera.Look),
			Usage: "camera look-at point as x,y,z",
		},
		cli.StringFlag{
			Name:  "up",
			Value: formatVec3(def.Camera.Up),
			Usage: "camera up vector as x,y,z",
		},
		cli.Float64Flag{
			Name:  "yaw",
			Usage: "rotate the look direction around the up vector (degrees)",
		},
		cli.Float64Flag{
			Name:  "pitch",
			Usage: "rotate the look direction around the camera right axis (degrees)",
		},
		cli.Float64Flag{
			Name:  "fov",
			Value: float64(def.Camera.FovY) / degToRad,
			Usage: "vertical field of view (degrees)",
		},
		cli.Float64Flag{
			Name:  "aperture",
			Value: float64(def.Camera.Aperture),
			Usage: "lens diameter for depth of field projections",
		},
		cli.Float64Flag{
			Name:  "focus-dist",
			Value: float64(def.Camera.FocusDist),
			Usage: "focal plane distance for depth of field projections",
		},
		cli.Float64Flag{
			Name:  "ortho-width",
			Usage: "orthographic image plane width; derived from the height if 0",
		},
		cli.Float64Flag{
			Name:  "ortho-height",
			Value: float64(def.Camera.OrthoHeight),
			Usage: "orthographic image plane height",
		},
		cli.Float64Flag{
			Name:  "fisheye-fov",
			Value: float64(def.Camera.FisheyeFov) / degToRad,
			Usage: "fisheye angle at the image circle edge (degrees)",
		},
		cli.IntFlag{
			Name:  "lens-seed",
			Usage: "depth of field lens sampler seed; 0 uses the projection default",
		},
		cli.IntFlag{
			Name:  "max-depth",
			Value: int(def.MaxDepth),
			Usage: "maximum ray depth",
		},
		cli.Float64Flag{
			Name:  "reflectivity",
			Value: float64(def.Reflectivity),
			Usage: "mirror reflection weight",
		},
		cli.IntFlag{
			Name:  "workers",
			Value: def.Workers,
			Usage: "number of render goroutines",
		},
		cli.IntFlag{
			Name:  "block-height",
			Value: int(def.BlockH),
			Usage: "rows per scheduled render block",
		},
		cli.Int64Flag{
			Name:  "seed",
			Value: def.Seed,
			Usage: "sampler seed",
		},
	}
}

// Build render options from the render command flags.
func renderOptions(ctx *cli.Context) (renderer.Options, error) {
	opts := renderer.DefaultOptions()

	for _, name := range []string{"width", "height", "spp", "max-depth", "workers", "block-height"} {
		if value := int64(ctx.Int(name)); value < 1 || value > math.MaxUint32 {
			return opts, errors.Errorf("flag --%s must be in [1, %d]; got %d", name, uint32(math.MaxUint32), value)
		}
	}
	if value := int64(ctx.Int("lens-seed")); value < 0 || value > math.MaxUint32 {
		return opts, errors.Errorf("flag --lens-seed must be in [0, %d]; got %d", uint32(math.MaxUint32), value)
	}

	opts.FrameW = uint32(ctx.Int("width"))
	opts.FrameH = uint32(ctx.Int("height"))
	opts.SamplesPerPixel = uint32(ctx.Int("spp"))
	opts.Sampler = ctx.String("sampler")
	opts.Accumulator = ctx.String("accumulator")
	opts.BVHStrategy = ctx.String("bvh")
	opts.MaxDepth = uint32(ctx.Int("max-depth"))
	opts.Reflectivity = float32(ctx.Float64("reflectivity"))
	opts.Workers = ctx.Int("workers")
	opts.BlockH = uint32(ctx.Int("block-height"))
	opts.Seed = ctx.Int64("seed")

	co := &opts.Camera
	co.Projection = ctx.String("projection")
	co.Yaw = float32(ctx.Float64("yaw") * degToRad)
	co.Pitch = float32(ctx.Float64("pitch") * degToRad)
	co.FovY = float32(ctx.Float64("fov") * degToRad)
	co.Aperture = float32(ctx.Float64("aperture"))
	co.FocusDist = float32(ctx.Float64("focus-dist"))
	co.OrthoWidth = float32(ctx.Float64("ortho-width"))
	co.OrthoHeight = float32(ctx.Float64("ortho-height"))
	co.FisheyeFov = float32(ctx.Float64("fisheye-fov") * degToRad)
	co.LensSeed = uint32(ctx.Int("lens-seed"))

	var err error
	for _, vf := range []struct {
		name string
		dst  *types.Vec3
	}{
		{"eye", &co.Eye},
		{"look", &co.Look},
		{"up", &co.Up},
	} {
		if *vf.dst, err = parseVec3(ctx.String(vf.name)); err != nil {
			return opts, errors.Wrapf(err, "flag --%s", vf.name)
		}
	}

	return opts, opts.Validate()
}

// Parse a comma separated x,y,z vector.
func parseVec3(value string) (types.Vec3, error) {
	var v types.Vec3
	parts := strings.Split(value, ",")
	if len(parts) != 3 {
		return v, errors.Errorf("expected 3 comma separated values; got %q", value)
	}

	for index, part := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(part), 32)
		if err != nil {
			return v, errors.Wrapf(err, "component %d of %q", index, value)
		}
		v[index] = float32(f)
	}
	return v, nil
}

func formatVec3(v types.Vec3) string {
	return strings.Join([]string{
		strconv.FormatFloat(float64(v[0]), 'g', -1, 32),
		strconv.FormatFloat(float64(v[1]), 'g', -1, 32),
		strconv.FormatFloat(float64(v[2]), 'g', -1, 32),
	}, ",")
}
