package brdf

import (
	"errors"
	"math"

	"github.com/rtlab/pathtracer/types"
)

var (
	ErrUnknownModel   = errors.New("brdf: unknown model")
	ErrDuplicateModel = errors.New("brdf: model already registered")
	ErrInvalidParams  = errors.New("brdf: invalid model parameters")
)

// The Model interface is implemented by all reflectance models. All
// direction vectors point away from the surface and are expected to be
// normalized.
type Model interface {
	// Evaluate the reflectance for light arriving from wi and leaving
	// towards wo at a surface with normal n.
	Eval(wi, wo, n types.Vec3) types.Vec3

	// Sample an incoming direction for the outgoing direction wo using the
	// uniform random numbers u1, u2. It returns the sampled direction, the
	// reflectance for that direction and the solid angle pdf. A zero pdf
	// indicates that no valid direction could be sampled.
	Sample(wo, n types.Vec3, u1, u2 float32) (wi, f types.Vec3, pdf float32)
}

// Model construction parameters. Each model uses the subset it needs.
type Params struct {
	Albedo    types.Vec3
	Roughness float32
	Metallic  float32
}

// Build an orthonormal tangent frame around n. The reference axis is
// switched when n is almost parallel to z.
func tangentFrame(n types.Vec3) (tangent, bitangent types.Vec3) {
	up := types.XYZ(0, 0, 1)
	if float32(math.Abs(float64(n[2]))) >= 0.999 {
		up = types.XYZ(1, 0, 0)
	}

	tangent = n.Cross(up).Normalize()
	bitangent = n.Cross(tangent).Normalize()
	return tangent, bitangent
}

// Transform a direction from the local frame (tangent, bitangent, n) to
// world space.
func toWorld(local, tangent, bitangent, n types.Vec3) types.Vec3 {
	return tangent.Mul(local[0]).Add(bitangent.Mul(local[1])).Add(n.Mul(local[2]))
}

// Returns true if all components are finite and non-negative.
func validColor(c types.Vec3) bool {
	for _, v := range c {
		if v < 0 || math.IsNaN(float64(v)) || math.IsInf(float64(v), 0) {
			return false
		}
	}
	return true
}
