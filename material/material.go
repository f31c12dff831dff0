package material

import (
	"math"

	"github.com/rtlab/pathtracer/asset/scene"
	"github.com/rtlab/pathtracer/brdf"
	"github.com/rtlab/pathtracer/log"
	"github.com/rtlab/pathtracer/types"
)

var logger = log.New("material")

// A render material. Materials are immutable and may be shared by any
// number of faces and tracing goroutines.
type Material struct {
	Name string

	// The registered name of the model used by BRDF.
	Model string
	BRDF  brdf.Model

	Opacity float32
	IOR     float32

	// Emitted color (Ke).
	Emission types.Vec3
}

// Select a reflectance model and its parameters for a scene material.
// Phong and Blinn-Phong materials (illum 2 and 3) map to Cook-Torrance with
// a roughness derived from the specular exponent; everything else maps to
// a Lambertian model using the diffuse color.
func Policy(m *scene.Material) (string, brdf.Params) {
	if m.Illum == 2 || m.Illum == 3 {
		return brdf.CookTorranceModel, brdf.Params{
			Albedo:    m.Kd,
			Roughness: float32(math.Sqrt(2.0 / float64(m.Ns+2.0))),
			Metallic:  0,
		}
	}

	return brdf.LambertModel, brdf.Params{Albedo: m.Kd}
}

// Create a render material from a scene material using the model selection
// policy. See NewWithModel for the fallback rules.
func FromScene(reg *brdf.Registry, m *scene.Material) *Material {
	model, params := Policy(m)
	return NewWithModel(reg, m, model, params)
}

// Create render materials for a list of scene materials. The returned list
// is indexed the same way as the input.
func FromSceneList(reg *brdf.Registry, list []*scene.Material) []*Material {
	out := make([]*Material, len(list))
	for index, m := range list {
		out[index] = FromScene(reg, m)
	}
	return out
}

// Create a render material that uses the named model. If the model is not
// registered or rejects its parameters, a Lambertian model using the
// material diffuse color is used instead. A material whose diffuse color is
// itself unusable gets the default diffuse color.
func NewWithModel(reg *brdf.Registry, m *scene.Material, model string, params brdf.Params) *Material {
	mat := &Material{
		Name:     m.Name,
		Model:    model,
		Opacity:  m.D,
		IOR:      m.Ni,
		Emission: m.Ke,
	}

	var err error
	if mat.BRDF, err = reg.Create(model, params); err == nil {
		return mat
	}
	logger.Warningf(`material "%s": falling back to %s: %v`, m.Name, brdf.LambertModel, err)

	mat.Model = brdf.LambertModel
	if mat.BRDF, err = brdf.NewLambert(brdf.Params{Albedo: m.Kd}); err == nil {
		return mat
	}
	logger.Warningf(`material "%s": using default diffuse color: %v`, m.Name, err)

	mat.BRDF, _ = brdf.NewLambert(brdf.Params{Albedo: scene.NewMaterial(m.Name).Kd})
	return mat
}
