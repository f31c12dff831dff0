package brdf

import (
	"math"

	"github.com/pkg/errors"
	"github.com/rtlab/pathtracer/types"
)

// A Lambertian (ideal diffuse) reflectance model.
type Lambert struct {
	albedo types.Vec3
}

// Create a Lambertian model. Only the albedo parameter is used.
func NewLambert(p Params) (Model, error) {
	if !validColor(p.Albedo) {
		return nil, errors.Wrapf(ErrInvalidParams, "lambert: albedo %v", p.Albedo)
	}
	return &Lambert{albedo: p.Albedo}, nil
}

// Get the model albedo.
func (l *Lambert) Albedo() types.Vec3 {
	return l.albedo
}

// Evaluate the model.
func (l *Lambert) Eval(wi, _, n types.Vec3) types.Vec3 {
	if n.Dot(wi) <= 0 {
		return types.Vec3{}
	}
	return l.albedo.Mul(1.0 / math.Pi)
}

// Sample a cosine weighted direction on the hemisphere around n.
func (l *Lambert) Sample(_, n types.Vec3, u1, u2 float32) (types.Vec3, types.Vec3, float32) {
	tangent, bitangent := tangentFrame(n)

	r := float32(math.Sqrt(float64(u1)))
	theta := 2.0 * math.Pi * float64(u2)
	local := types.XYZ(
		r*float32(math.Cos(theta)),
		r*float32(math.Sin(theta)),
		float32(math.Sqrt(math.Max(0, 1.0-float64(u1)))),
	)

	wi := toWorld(local, tangent, bitangent, n)
	return wi, l.albedo.Mul(1.0 / math.Pi), local[2] / math.Pi
}
