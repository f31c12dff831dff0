package reader

import (
	"bufio"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/rtlab/pathtracer/asset"
	"github.com/rtlab/pathtracer/asset/scene"
	"github.com/rtlab/pathtracer/log"
	"github.com/rtlab/pathtracer/types"
)

type wavefrontSceneReader struct {
	logger log.Logger

	// The parsed scene.
	sc *scene.Scene

	// A map of material names to indices in the scene material list.
	matNameToIndex map[string]int

	// Currently selected material index or -1 if none is selected.
	curMaterial int

	// Names of material libraries that have already been parsed.
	loadedLibs map[string]bool

	// Texture coordinates are only tracked so face indices can be validated.
	uvList []types.Vec2

	// An error stack that provides additional error information when
	// scene files include other files (models, mat libs e.t.c)
	errStack []string
}

// Create a new wavefront scene reader.
func newWavefrontReader() *wavefrontSceneReader {
	return &wavefrontSceneReader{
		logger:         log.New("wavefront scene reader"),
		sc:             scene.NewScene(),
		matNameToIndex: make(map[string]int, 0),
		curMaterial:    -1,
		loadedLibs:     make(map[string]bool, 0),
		uvList:         make([]types.Vec2, 0),
		errStack:       make([]string, 0),
	}
}

// Read scene definition.
func (r *wavefrontSceneReader) Read(sceneRes *asset.Resource) (*scene.Scene, error) {
	r.logger.Noticef(`parsing scene from "%s"`, sceneRes.Path())
	start := time.Now()

	err := r.parse(sceneRes)
	if err != nil {
		return nil, err
	}

	if len(r.sc.Objects) == 0 {
		r.logger.Warning("scene does not contain any polygons")
	}

	r.logger.Noticef("parsed scene in %d ms", time.Since(start).Nanoseconds()/1e6)
	return r.sc, nil
}

// Generate an error message that also includes any data in the error stack.
func (r *wavefrontSceneReader) emitError(file string, line int, msgFormat string, args ...interface{}) error {
	msg := fmt.Sprintf(msgFormat, args...)

	var errMsg string
	if file != "" {
		errMsg = strings.Trim(
			fmt.Sprintf("[%s: %d] error: %s\n%s", file, line, msg, strings.Join(r.errStack, "\n")),
			"\n",
		)
	} else {
		errMsg = strings.Trim(
			fmt.Sprintf("error: %s\n%s", msg, strings.Join(r.errStack, "\n")),
			"\n",
		)
	}

	return errors.New(errMsg)
}

// Push a frame to the error stack.
func (r *wavefrontSceneReader) pushFrame(msg string) {
	r.errStack = append([]string{msg}, r.errStack...)
}

// Pop a frame from the error stack.
func (r *wavefrontSceneReader) popFrame() {
	r.errStack = r.errStack[1:]
}

// Add a material to the scene and index it by name.
func (r *wavefrontSceneReader) addMaterial(mat *scene.Material) int {
	r.sc.Materials = append(r.sc.Materials, mat)
	index := len(r.sc.Materials) - 1
	r.matNameToIndex[mat.Name] = index
	return index
}

// Select the default material for surfaces not using one, creating it on
// first use.
func (r *wavefrontSceneReader) defaultMaterial() int {
	matIndex, exists := r.matNameToIndex[scene.DefaultMaterialName]
	if !exists {
		matIndex = r.addMaterial(scene.NewMaterial(scene.DefaultMaterialName))
	}
	r.curMaterial = matIndex
	return matIndex
}

// Get the object that receives parsed faces, creating a default one if no
// object has been declared.
func (r *wavefrontSceneReader) currentObject() *scene.Object {
	if len(r.sc.Objects) == 0 {
		r.sc.Objects = append(r.sc.Objects, &scene.Object{Name: "default"})
	}
	return r.sc.Objects[len(r.sc.Objects)-1]
}

// Parse wavefront object scene format.
func (r *wavefrontSceneReader) parse(res *asset.Resource) error {
	var lineNum int = 0
	var err error

	// The main obj file may include (call) several other object files. Each
	// object file contains 1-based indices (when they are positive). By
	// tracking the current vertex/uv/normal offsets we can apply them
	// while parsing faces to select the correct coordinates.
	relVertexOffset := len(r.sc.Vertices)
	relUvOffset := len(r.uvList)
	relNormalOffset := len(r.sc.Normals)

	scanner := bufio.NewScanner(res)
	for scanner.Scan() {
		lineNum++
		lineTokens := strings.Fields(scanner.Text())
		if len(lineTokens) == 0 || strings.HasPrefix(lineTokens[0], "#") {
			continue
		}

		switch lineTokens[0] {
		case "call", "mtllib":
			if len(lineTokens) != 2 {
				return r.emitError(res.Path(), lineNum, `unsupported syntax for "%s"; expected 1 argument; got %d`, lineTokens[0], len(lineTokens)-1)
			}

			r.pushFrame(fmt.Sprintf("referenced from %s:%d [%s]", res.Path(), lineNum, lineTokens[0]))

			incRes, err := asset.NewResource(lineTokens[1], res)
			if err != nil {
				return r.emitError(res.Path(), lineNum, err.Error())
			}

			switch lineTokens[0] {
			case "call":
				err = r.parse(incRes)
			case "mtllib":
				err = r.parseMaterials(incRes)
			}
			incRes.Close()

			if err != nil {
				return err
			}
			r.popFrame()
		case "usemtl":
			if len(lineTokens) != 2 {
				return r.emitError(res.Path(), lineNum, `unsupported syntax for "usemtl"; expected 1 argument; got %d`, len(lineTokens)-1)
			}

			matName := lineTokens[1]
			matIndex, exists := r.matNameToIndex[matName]
			if !exists {
				return r.emitError(res.Path(), lineNum, `undefined material with name "%s"`, matName)
			}
			r.curMaterial = matIndex
		case "v":
			v, err := parseVec3(lineTokens)
			if err != nil {
				return r.emitError(res.Path(), lineNum, err.Error())
			}
			r.sc.Vertices = append(r.sc.Vertices, v)
		case "vn":
			v, err := parseVec3(lineTokens)
			if err != nil {
				return r.emitError(res.Path(), lineNum, err.Error())
			}
			r.sc.Normals = append(r.sc.Normals, v)
		case "vt":
			v, err := parseVec2(lineTokens)
			if err != nil {
				return r.emitError(res.Path(), lineNum, err.Error())
			}
			r.uvList = append(r.uvList, v)
		case "g", "o":
			if len(lineTokens) < 2 {
				return r.emitError(res.Path(), lineNum, `unsupported syntax for "%s"; expected 1 argument for object name; got %d`, lineTokens[0], len(lineTokens)-1)
			}

			r.verifyLastParsedObject()
			r.sc.Objects = append(r.sc.Objects, &scene.Object{Name: lineTokens[1]})
		case "f":
			poly, err := r.parseFace(lineTokens, relVertexOffset, relUvOffset, relNormalOffset)
			if err != nil {
				return r.emitError(res.Path(), lineNum, err.Error())
			}

			obj := r.currentObject()
			obj.Polygons = append(obj.Polygons, poly)
		case "s", "l", "p":
			// Smoothing groups, lines and points do not affect rendering.
		default:
			r.logger.Debugf("%s:%d: ignoring unsupported statement %q", res.Path(), lineNum, lineTokens[0])
		}
	}

	if err = scanner.Err(); err != nil {
		return r.emitError(res.Path(), lineNum, err.Error())
	}

	r.verifyLastParsedObject()
	return nil
}

// Drop the last parsed object if it contains no polygons.
func (r *wavefrontSceneReader) verifyLastParsedObject() {
	lastIndex := len(r.sc.Objects) - 1
	if lastIndex >= 0 && len(r.sc.Objects[lastIndex].Polygons) == 0 {
		r.logger.Warningf(`dropping object "%s" as it contains no polygons`, r.sc.Objects[lastIndex].Name)
		r.sc.Objects = r.sc.Objects[:lastIndex]
	}
}

// Parse face definition. Each face definition consists of 3 or more
// arguments, one for each vertex. Each one of the vertex arguments is
// comprised of 1, 2 or 3 args separated by a slash character. The following
// formats are supported:
// - vertexIndex
// - vertexIndex/uvIndex
// - vertexIndex//normalIndex
// - vertexIndex/uvIndex/normalIndex
//
// Indices start from 1 and may be negative to indicate
// an offset off the end of the vertex/uv list.
func (r *wavefrontSceneReader) parseFace(lineTokens []string, relVertexOffset, relUvOffset, relNormalOffset int) (scene.Polygon, error) {
	if len(lineTokens) < 4 {
		return scene.Polygon{}, fmt.Errorf(`unsupported syntax for "f"; expected at least 3 arguments; got %d`, len(lineTokens)-1)
	}

	poly := scene.Polygon{
		Vertices: make([]scene.VertexRef, len(lineTokens)-1),
	}

	var offset int
	var err error
	expIndices := 0
	for arg := 0; arg < len(lineTokens)-1; arg++ {
		vTokens := strings.Split(lineTokens[arg+1], "/")

		// The first arg defines the format for the following args
		if arg == 0 {
			expIndices = len(vTokens)
		} else if len(vTokens) != expIndices {
			return poly, fmt.Errorf("expected each face argument to contain %d indices; arg %d contains %d indices", expIndices, arg, len(vTokens))
		}

		// Faces must at least define a vertex coord
		if vTokens[0] == "" {
			return poly, fmt.Errorf("face argument %d does not include a vertex index", arg)
		}

		offset, err = selectFaceCoordIndex(vTokens[0], len(r.sc.Vertices), relVertexOffset)
		if err != nil {
			return poly, fmt.Errorf("could not parse vertex coord for face argument %d: %s", arg, err.Error())
		}
		ref := scene.VertexRef{Vertex: int32(offset), Normal: scene.NoNormal}

		// Validate UV coords if specified
		if expIndices > 1 && vTokens[1] != "" {
			_, err = selectFaceCoordIndex(vTokens[1], len(r.uvList), relUvOffset)
			if err != nil {
				return poly, fmt.Errorf("could not parse tex coord for face argument %d: %s", arg, err.Error())
			}
		}

		// Parse normal coords if specified
		if expIndices > 2 && vTokens[2] != "" {
			offset, err = selectFaceCoordIndex(vTokens[2], len(r.sc.Normals), relNormalOffset)
			if err != nil {
				return poly, fmt.Errorf("could not parse normal coord for face argument %d: %s", arg, err.Error())
			}
			ref.Normal = int32(offset)
		}

		poly.Vertices[arg] = ref
	}

	// If no material defined select the default.
	if r.curMaterial == -1 {
		r.defaultMaterial()
	}
	poly.Material = int32(r.curMaterial)

	return poly, nil
}

// Parse a wavefront material library.
func (r *wavefrontSceneReader) parseMaterials(res *asset.Resource) error {
	var lineNum int = 0
	var err error

	if r.loadedLibs[res.Name()] {
		r.logger.Infof(`skipping already loaded material library "%s"`, res.Path())
		return nil
	}
	r.loadedLibs[res.Name()] = true

	r.logger.Infof(`parsing material library "%s"`, res.Path())

	scanner := bufio.NewScanner(res)

	var curMaterial *scene.Material = nil
	var matName string = ""

	for scanner.Scan() {
		lineNum++
		lineTokens := strings.Fields(scanner.Text())
		if len(lineTokens) == 0 || strings.HasPrefix(lineTokens[0], "#") {
			continue
		}

		switch lineTokens[0] {
		case "newmtl":
			if len(lineTokens) != 2 {
				return r.emitError(res.Path(), lineNum, `unsupported syntax for "newmtl"; expected 1 argument; got %d`, len(lineTokens)-1)
			}

			matName = lineTokens[1]
			if _, exists := r.matNameToIndex[matName]; exists {
				return r.emitError(res.Path(), lineNum, `material "%s" already defined`, matName)
			}

			curMaterial = scene.NewMaterial(matName)
			r.addMaterial(curMaterial)
		default:
			if curMaterial == nil {
				return r.emitError(res.Path(), lineNum, `got "%s" without a "newmtl"`, lineTokens[0])
			}

			switch lineTokens[0] {
			case "include":
				if len(lineTokens) < 2 {
					return r.emitError(res.Path(), lineNum, `unsupported syntax for "%s"; expected 1 argument; got %d`, lineTokens[0], len(lineTokens)-1)
				}

				baseMaterialIndex, exists := r.matNameToIndex[lineTokens[1]]
				if !exists {
					return r.emitError(res.Path(), lineNum, `could not include unknown material "%s"`, lineTokens[1])
				}

				// Overwrite material but keep the original name
				*curMaterial = *r.sc.Materials[baseMaterialIndex]
				curMaterial.Name = matName
			case "Ka", "Kd", "Ks", "Ke":
				var target *types.Vec3
				switch lineTokens[0] {
				case "Ka":
					target = &curMaterial.Ka
				case "Kd":
					target = &curMaterial.Kd
				case "Ks":
					target = &curMaterial.Ks
				case "Ke":
					target = &curMaterial.Ke
				}

				*target, err = parseVec3(lineTokens)
			case "Ns":
				curMaterial.Ns, err = parseFloat32(lineTokens)
			case "Ni":
				curMaterial.Ni, err = parseFloat32(lineTokens)
			case "d":
				curMaterial.D, err = parseFloat32(lineTokens)
			case "Tr":
				var tr float32
				tr, err = parseFloat32(lineTokens)
				curMaterial.D = 1.0 - tr
			case "illum":
				var illum float32
				illum, err = parseFloat32(lineTokens)
				curMaterial.Illum = int(illum)
			default:
				r.logger.Debugf("%s:%d: ignoring unsupported material property %q", res.Path(), lineNum, lineTokens[0])
			}

			// Report any errors
			if err != nil {
				return r.emitError(res.Path(), lineNum, err.Error())
			}
		}
	}

	if err = scanner.Err(); err != nil {
		return r.emitError(res.Path(), lineNum, err.Error())
	}

	return nil
}

// Given an index for a face coord type (vertex, normal, tex) calculate the
// proper offset into the coord list. Wavefront format can also use negative
// indices to reference elements from the end of the coord list.
func selectFaceCoordIndex(indexToken string, coordListLen int, relOffset int) (int, error) {
	index, err := strconv.ParseInt(indexToken, 10, 32)
	if err != nil {
		return -1, err
	}

	var offset int = 0
	if index < 0 {
		offset = coordListLen + int(index)
	} else {
		offset = relOffset + int(index-1)
	}
	if offset < 0 || offset >= coordListLen {
		return -1, fmt.Errorf("index out of bounds")
	}
	return offset, nil
}

// Parse a float scalar value.
func parseFloat32(lineTokens []string) (float32, error) {
	if len(lineTokens) < 2 {
		return 0, fmt.Errorf(`unsupported syntax for "%s"; expected 1 argument; got %d`, lineTokens[0], len(lineTokens)-1)
	}

	val, err := strconv.ParseFloat(lineTokens[1], 32)
	if err != nil {
		return 0, err
	}

	return float32(val), nil
}

// Parse a Vec3 row.
func parseVec3(lineTokens []string) (types.Vec3, error) {
	if len(lineTokens) < 4 {
		return types.Vec3{}, fmt.Errorf(`unsupported syntax for "%s"; expected 3 arguments; got %d`, lineTokens[0], len(lineTokens)-1)
	}

	v := types.Vec3{}
	for tokIdx := 1; tokIdx <= 3; tokIdx++ {
		coord, err := strconv.ParseFloat(lineTokens[tokIdx], 32)
		if err != nil {
			return v, err
		}
		v[tokIdx-1] = float32(coord)
	}
	return v, nil
}

// Parse a Vec2 row. Optional extra components (e.g. a w texture coordinate)
// are ignored.
func parseVec2(lineTokens []string) (types.Vec2, error) {
	if len(lineTokens) < 3 {
		return types.Vec2{}, fmt.Errorf(`unsupported syntax for "%s"; expected 2 arguments; got %d`, lineTokens[0], len(lineTokens)-1)
	}

	v := types.Vec2{}
	for tokIdx := 1; tokIdx <= 2; tokIdx++ {
		coord, err := strconv.ParseFloat(lineTokens[tokIdx], 32)
		if err != nil {
			return v, err
		}
		v[tokIdx-1] = float32(coord)
	}
	return v, nil
}
