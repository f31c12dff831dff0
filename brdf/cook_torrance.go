package brdf

import (
	"math"

	"github.com/pkg/errors"
	"github.com/rtlab/pathtracer/types"
)

const (
	// Reflectance at normal incidence for dielectrics.
	dielectricF0 float32 = 0.04

	// Denominators below this value make the model evaluate to zero.
	minDenominator float32 = 1e-6

	// GGX alpha floor. A perfectly smooth surface would turn the
	// distribution into a delta and evaluate to 0/0.
	minAlpha float32 = 1e-3
)

// A Cook-Torrance microfacet model using the GGX distribution, Smith
// masking-shadowing and Schlick's Fresnel approximation with the
// metallic-roughness parametrization.
type CookTorrance struct {
	albedo    types.Vec3
	roughness float32
	metallic  float32

	// GGX alpha (roughness squared).
	alpha float32

	// Reflectance at normal incidence.
	f0 types.Vec3
}

// Create a Cook-Torrance model. Roughness and metallic must be in [0, 1].
func NewCookTorrance(p Params) (Model, error) {
	switch {
	case !validColor(p.Albedo):
		return nil, errors.Wrapf(ErrInvalidParams, "cook_torrance: albedo %v", p.Albedo)
	case !(p.Roughness >= 0 && p.Roughness <= 1):
		return nil, errors.Wrapf(ErrInvalidParams, "cook_torrance: roughness %f not in [0, 1]", p.Roughness)
	case !(p.Metallic >= 0 && p.Metallic <= 1):
		return nil, errors.Wrapf(ErrInvalidParams, "cook_torrance: metallic %f not in [0, 1]", p.Metallic)
	}

	dielectric := dielectricF0 * (1.0 - p.Metallic)
	return &CookTorrance{
		albedo:    p.Albedo,
		roughness: p.Roughness,
		metallic:  p.Metallic,
		alpha:     max(p.Roughness*p.Roughness, minAlpha),
		f0:        p.Albedo.Mul(p.Metallic).Add(types.XYZ(dielectric, dielectric, dielectric)),
	}, nil
}

// Get the model roughness.
func (ct *CookTorrance) Roughness() float32 {
	return ct.roughness
}

// Evaluate the model.
func (ct *CookTorrance) Eval(wi, wo, n types.Vec3) types.Vec3 {
	nDotWi := n.Dot(wi)
	nDotWo := n.Dot(wo)
	if nDotWi <= 0 || nDotWo <= 0 {
		return types.Vec3{}
	}

	denominator := 4.0 * nDotWi * nDotWo
	if denominator < minDenominator {
		return types.Vec3{}
	}

	h := wi.Add(wo).Normalize()
	fresnel := fresnelSchlick(h.Dot(wi), ct.f0)
	d := ggxDistribution(n.Dot(h), ct.alpha)
	g := smithG1(nDotWi, ct.alpha) * smithG1(nDotWo, ct.alpha)

	specular := fresnel.Mul(d * g / denominator)

	// Energy not reflected by the specular lobe feeds the diffuse lobe
	// of the dielectric part.
	kd := types.XYZ(1, 1, 1).Sub(fresnel).Mul(1.0 - ct.metallic)
	diffuse := kd.MulVec(ct.albedo).Mul(1.0 / math.Pi)

	return diffuse.Add(specular)
}

// Sample a direction by importance sampling the GGX microfacet normal
// distribution and reflecting wo about the sampled normal.
func (ct *CookTorrance) Sample(wo, n types.Vec3, u1, u2 float32) (types.Vec3, types.Vec3, float32) {
	a2 := ct.alpha * ct.alpha
	phi := 2.0 * math.Pi * float64(u2)
	cosThetaSq := (1.0 - u1) / (u1*(a2-1.0) + 1.0)
	cosTheta := float32(math.Sqrt(float64(cosThetaSq)))
	sinTheta := float32(math.Sqrt(math.Max(0, 1.0-float64(cosThetaSq))))

	tangent, bitangent := tangentFrame(n)
	m := toWorld(
		types.XYZ(sinTheta*float32(math.Cos(phi)), sinTheta*float32(math.Sin(phi)), cosTheta),
		tangent, bitangent, n,
	)

	woDotM := wo.Dot(m)
	wi := m.Mul(2.0 * woDotM).Sub(wo)
	if n.Dot(wi) <= 0 {
		return wi, types.Vec3{}, 0
	}

	denominator := 4.0 * woDotM
	if denominator < minDenominator {
		return wi, types.Vec3{}, 0
	}

	pdf := ggxDistribution(cosTheta, ct.alpha) * smithG1(n.Dot(wo), ct.alpha) * cosTheta / denominator
	return wi, ct.Eval(wi, wo, n), pdf
}

// Schlick's approximation of the Fresnel term.
func fresnelSchlick(cosTheta float32, f0 types.Vec3) types.Vec3 {
	t := float32(math.Pow(float64(1.0-cosTheta), 5))
	return f0.Add(types.XYZ(1, 1, 1).Sub(f0).Mul(t))
}

// The GGX (Trowbridge-Reitz) normal distribution function.
func ggxDistribution(cosH, alpha float32) float32 {
	if cosH <= 0 {
		return 0
	}

	a2 := alpha * alpha
	denom := cosH*cosH*(a2-1.0) + 1.0
	if denom <= 0 {
		return 0
	}
	return a2 / (math.Pi * denom * denom)
}

// Smith's single direction masking function for GGX.
func smithG1(cosTheta, alpha float32) float32 {
	if cosTheta <= 0 {
		return 0
	}

	a2 := alpha * alpha
	tan2 := (1.0 - cosTheta*cosTheta) / (cosTheta * cosTheta)
	return 2.0 / (1.0 + float32(math.Sqrt(float64(1.0+a2*tan2))))
}
