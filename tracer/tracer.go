package tracer

import (
	"github.com/rtlab/pathtracer/asset/scene"
	"github.com/rtlab/pathtracer/bvh"
	"github.com/rtlab/pathtracer/material"
	"github.com/rtlab/pathtracer/types"
)

const (
	// Intersections closer than this distance are ignored to avoid
	// self-intersections at ray origins that lie on a surface.
	HitEpsilon float32 = 1e-4

	// A shadow ray is blocked by faces closer than the light distance
	// minus this slack.
	ShadowEpsilon float32 = 1e-4

	// Reflected rays start this far from the surface along its normal.
	RayOffset float32 = 1e-4

	// Lights closer than this distance to a hit point never cast shadows.
	minLightDistance float32 = 1e-6

	DefaultMaxDepth     = 3
	DefaultReflectivity = 0.8
)

// Tracer options.
type Options struct {
	// Rays at this depth or deeper evaluate to black.
	MaxDepth int

	// The weight applied to the mirror reflection of every surface.
	Reflectivity float32
}

// Get the default tracer options.
func DefaultOptions() Options {
	return Options{
		MaxDepth:     DefaultMaxDepth,
		Reflectivity: DefaultReflectivity,
	}
}

// Ray counters. Each render worker keeps its own set so counters are never
// shared between goroutines.
type Counters struct {
	PrimaryRays    uint64
	ShadowRays     uint64
	ReflectionRays uint64
}

// Merge another set of counters into this one.
func (c *Counters) Merge(o Counters) {
	c.PrimaryRays += o.PrimaryRays
	c.ShadowRays += o.ShadowRays
	c.ReflectionRays += o.ReflectionRays
}

// Details about the closest intersection of a ray with the scene.
type HitRecord struct {
	T        float32
	Point    types.Vec3
	Normal   types.Vec3
	Face     int32
	Material int32
}

// The Tracer computes the radiance along rays using direct lighting from
// point lights and recursive mirror reflections. It only reads shared
// state and can be used by any number of goroutines.
type Tracer struct {
	tree      *bvh.Tree
	materials []*material.Material
	lights    []Light
	opts      Options

	// Faces using this material are invisible to all rays; -1 if the
	// scene has no light material.
	lightMaterial int32
	skip          bvh.FaceFilter
}

// Create a tracer for a scene tree. The materials list must be indexed the
// same way as the scene materials.
func New(tree *bvh.Tree, materials []*material.Material, lights []Light, opts Options) *Tracer {
	tr := &Tracer{
		tree:          tree,
		materials:     materials,
		lights:        lights,
		opts:          opts,
		lightMaterial: tree.Scene().MaterialIndex(scene.LightMaterialName),
	}

	if tr.lightMaterial >= 0 {
		tr.skip = func(face *scene.Face) bool {
			return face.Material == tr.lightMaterial
		}
	}
	return tr
}

// Get the lights used by the tracer.
func (tr *Tracer) Lights() []Light {
	return tr.lights
}

// Find the closest scene intersection ignoring light marker faces.
func (tr *Tracer) ClosestHit(r types.Ray) (HitRecord, bool) {
	hit, found := tr.tree.Intersect(r, HitEpsilon, tr.skip)
	if !found {
		return HitRecord{}, false
	}

	face := &tr.tree.Faces()[hit.Face]
	return HitRecord{
		T:        hit.T,
		Point:    r.At(hit.T),
		Normal:   tr.tree.Scene().FaceNormal(face, hit.U, hit.V),
		Face:     hit.Face,
		Material: face.Material,
	}, true
}

// Check whether the path from point p to a light is blocked.
func (tr *Tracer) InShadow(p, lightPos types.Vec3) bool {
	toLight := lightPos.Sub(p)
	dist := toLight.Len()
	if dist < minLightDistance {
		return false
	}

	r := types.NewRay(p, toLight.Mul(1.0/dist))
	return tr.tree.Occluded(r, HitEpsilon, dist-ShadowEpsilon, tr.skip)
}

// Trace a ray and return its color. Counters may be nil.
func (tr *Tracer) Trace(r types.Ray, depth int, counters *Counters) types.Vec3 {
	if depth >= tr.opts.MaxDepth {
		return types.Vec3{}
	}
	if counters != nil {
		if depth == 0 {
			counters.PrimaryRays++
		} else {
			counters.ReflectionRays++
		}
	}

	rec, found := tr.ClosestHit(r)
	if !found {
		return types.Vec3{}
	}

	color := tr.directLighting(r, &rec, counters)

	return color.Add(tr.Trace(mirrorRay(r, &rec), depth+1, counters).Mul(tr.opts.Reflectivity))
}

// Get the mirror reflection of a ray at a hit point. The origin is offset
// to the side of the surface the reflected ray leaves from, which is the
// back side when the face is wound away from the incoming ray.
func mirrorRay(r types.Ray, rec *HitRecord) types.Ray {
	dir := r.Dir.Reflect(rec.Normal)
	offset := rec.Normal.Mul(RayOffset)
	if dir.Dot(rec.Normal) < 0 {
		offset = offset.Neg()
	}
	return types.NewRay(rec.Point.Add(offset), dir)
}

// Sum the contribution of all unoccluded lights at a hit point.
func (tr *Tracer) directLighting(r types.Ray, rec *HitRecord, counters *Counters) types.Vec3 {
	var color types.Vec3
	if rec.Material < 0 || int(rec.Material) >= len(tr.materials) {
		return color
	}

	model := tr.materials[rec.Material].BRDF
	wo := r.Dir.Neg().Normalize()
	for _, light := range tr.lights {
		if counters != nil {
			counters.ShadowRays++
		}
		if tr.InShadow(rec.Point, light.Position) {
			continue
		}

		wi := light.Position.Sub(rec.Point).Normalize()
		cos := rec.Normal.Dot(wi)
		if cos <= 0 {
			continue
		}

		color = color.Add(model.Eval(wi, wo, rec.Normal).MulVec(light.Color).Mul(cos))
	}

	return color
}
