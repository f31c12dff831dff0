package tracer

import (
	"github.com/rtlab/pathtracer/asset/scene"
	"github.com/rtlab/pathtracer/types"
)

// A point light.
type Light struct {
	Position types.Vec3
	Color    types.Vec3
}

// Get the default scene lights: a white key light and a dimmer blueish fill
// light.
func DefaultLights() []Light {
	return []Light{
		{Position: types.XYZ(5, 5, 5), Color: types.XYZ(1, 1, 1)},
		{Position: types.XYZ(-3, 4, -2), Color: types.XYZ(0.8, 0.8, 1)},
	}
}

// Get the lights for a scene. Besides the default lights, a scene that uses
// the reserved light material gets a point light at the center of the
// first face using it. The light color is the material emission or white
// if the material does not emit.
func SceneLights(sc *scene.Scene) []Light {
	lights := DefaultLights()

	pos, mat, found := sc.LightMarker()
	if !found {
		return lights
	}

	color := types.XYZ(1, 1, 1)
	if !mat.Ke.IsZero() {
		color = mat.Ke
	}
	return append(lights, Light{Position: pos, Color: color})
}
