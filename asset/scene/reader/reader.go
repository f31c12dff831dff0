package reader

import (
	"strings"

	"github.com/pkg/errors"
	"github.com/rtlab/pathtracer/asset"
	"github.com/rtlab/pathtracer/asset/scene"
)

// The Reader interface is implemented by all scene readers.
type Reader interface {
	// Read scene definition from a resource.
	Read(*asset.Resource) (*scene.Scene, error)
}

// Read a scene from a wavefront obj file. If mtlFile is not empty, the
// material library is loaded before parsing the obj file so that usemtl
// statements can reference its materials even if the obj file does not
// include it via mtllib.
func ReadScene(objFile, mtlFile string) (*scene.Scene, error) {
	if !strings.HasSuffix(strings.ToLower(objFile), ".obj") {
		return nil, errors.Errorf("readScene: unsupported file format for %q", objFile)
	}

	res, err := asset.NewResource(objFile, nil)
	if err != nil {
		return nil, err
	}
	defer res.Close()

	r := newWavefrontReader()
	if mtlFile != "" {
		mtlRes, err := asset.NewResource(mtlFile, nil)
		if err != nil {
			return nil, err
		}
		defer mtlRes.Close()

		if err = r.parseMaterials(mtlRes); err != nil {
			return nil, err
		}
	}

	return r.Read(res)
}
