package scene

import (
	"fmt"

	"github.com/rtlab/pathtracer/types"
)

const (
	// Faces using a material with this name mark the position of a point
	// light. They are excluded from intersection tests while rendering.
	LightMaterialName = "light"

	// The material assigned to faces that do not select one.
	DefaultMaterialName = "default"

	// Value stored in a vertex ref when no normal was specified.
	NoNormal int32 = -1
)

// A reference to a vertex in the scene vertex list and, optionally, to a
// normal in the scene normal list.
type VertexRef struct {
	Vertex int32
	Normal int32
}

// A polygonal face as it appears in the scene file. Polygons are converted
// to triangles by Triangulate.
type Polygon struct {
	Vertices []VertexRef
	Material int32
}

// A triangular face. Faces reference the shared scene buffers and never own
// vertex data.
type Face struct {
	Vertices [3]VertexRef
	Material int32
}

// A named group of polygons.
type Object struct {
	Name     string
	Polygons []Polygon
}

// Material properties read from a material library.
type Material struct {
	Name string

	// Ambient, diffuse, specular and emissive colors.
	Ka types.Vec3
	Kd types.Vec3
	Ks types.Vec3
	Ke types.Vec3

	// Specular exponent.
	Ns float32

	// Index of refraction.
	Ni float32

	// Opacity (dissolve).
	D float32

	// Illumination model.
	Illum int
}

// Create a material with the default property values.
func NewMaterial(name string) *Material {
	return &Material{
		Name:  name,
		Kd:    types.Vec3{0.7, 0.7, 0.7},
		Ni:    1.0,
		D:     1.0,
		Illum: 1,
	}
}

// The scene holds the geometry and materials loaded from a scene file. It is
// immutable once loaded.
type Scene struct {
	Vertices  []types.Vec3
	Normals   []types.Vec3
	Materials []*Material
	Objects   []*Object
}

// Create a new empty scene.
func NewScene() *Scene {
	return &Scene{
		Vertices:  make([]types.Vec3, 0),
		Normals:   make([]types.Vec3, 0),
		Materials: make([]*Material, 0),
		Objects:   make([]*Object, 0),
	}
}

// Find the index of a material by name. Returns -1 if no such material exists.
func (s *Scene) MaterialIndex(name string) int32 {
	for index, mat := range s.Materials {
		if mat.Name == name {
			return int32(index)
		}
	}
	return -1
}

// Convert all scene polygons into a flat triangle list using fan
// triangulation.
func Triangulate(s *Scene) ([]Face, error) {
	faces := make([]Face, 0)
	for _, obj := range s.Objects {
		for polyIndex, poly := range obj.Polygons {
			if len(poly.Vertices) < 3 {
				return nil, fmt.Errorf("triangulate: polygon %d of object %q has %d vertices; expected at least 3", polyIndex, obj.Name, len(poly.Vertices))
			}
			if poly.Material < 0 || int(poly.Material) >= len(s.Materials) {
				return nil, fmt.Errorf("triangulate: polygon %d of object %q references unknown material %d", polyIndex, obj.Name, poly.Material)
			}
			for _, ref := range poly.Vertices {
				if ref.Vertex < 0 || int(ref.Vertex) >= len(s.Vertices) {
					return nil, fmt.Errorf("triangulate: polygon %d of object %q references unknown vertex %d", polyIndex, obj.Name, ref.Vertex)
				}
				if ref.Normal != NoNormal && (ref.Normal < 0 || int(ref.Normal) >= len(s.Normals)) {
					return nil, fmt.Errorf("triangulate: polygon %d of object %q references unknown normal %d", polyIndex, obj.Name, ref.Normal)
				}
			}

			for i := 1; i < len(poly.Vertices)-1; i++ {
				faces = append(faces, Face{
					Vertices: [3]VertexRef{poly.Vertices[0], poly.Vertices[i], poly.Vertices[i+1]},
					Material: poly.Material,
				})
			}
		}
	}

	return faces, nil
}

// Get the three vertex positions of a face.
func (s *Scene) FaceVertices(f *Face) (v0, v1, v2 types.Vec3) {
	return s.Vertices[f.Vertices[0].Vertex], s.Vertices[f.Vertices[1].Vertex], s.Vertices[f.Vertices[2].Vertex]
}

// Get the shading normal of a face at barycentric coordinates (u, v). If
// the face defines vertex normals they are interpolated; otherwise the
// geometric face normal is returned.
func (s *Scene) FaceNormal(f *Face, u, v float32) types.Vec3 {
	if f.Vertices[0].Normal != NoNormal && f.Vertices[1].Normal != NoNormal && f.Vertices[2].Normal != NoNormal {
		n0 := s.Normals[f.Vertices[0].Normal]
		n1 := s.Normals[f.Vertices[1].Normal]
		n2 := s.Normals[f.Vertices[2].Normal]
		return n0.Mul(1 - u - v).Add(n1.Mul(u)).Add(n2.Mul(v)).Normalize()
	}

	v0, v1, v2 := s.FaceVertices(f)
	return v1.Sub(v0).Cross(v2.Sub(v0)).Normalize()
}

// Locate the light marker in the scene. The marker is the first polygon
// that uses the reserved light material; the light is placed at the average
// of its vertices. The marker material is also returned so callers can pick
// up its emissive color.
func (s *Scene) LightMarker() (types.Vec3, *Material, bool) {
	matIndex := s.MaterialIndex(LightMaterialName)
	if matIndex < 0 {
		return types.Vec3{}, nil, false
	}

	for _, obj := range s.Objects {
		for _, poly := range obj.Polygons {
			if poly.Material != matIndex || len(poly.Vertices) == 0 {
				continue
			}

			var center types.Vec3
			for _, ref := range poly.Vertices {
				center = center.Add(s.Vertices[ref.Vertex])
			}
			return center.Mul(1.0 / float32(len(poly.Vertices))), s.Materials[matIndex], true
		}
	}

	return types.Vec3{}, nil, false
}

// Scene statistics.
type Stats struct {
	Objects   int
	Polygons  int
	Triangles int
	Vertices  int
	Normals   int
	Materials int
	BBox      types.AABB
}

// Collect scene statistics.
func (s *Scene) Stats() Stats {
	st := Stats{
		Objects:   len(s.Objects),
		Vertices:  len(s.Vertices),
		Normals:   len(s.Normals),
		Materials: len(s.Materials),
		BBox:      types.EmptyAABB(),
	}
	for _, obj := range s.Objects {
		st.Polygons += len(obj.Polygons)
		for _, poly := range obj.Polygons {
			if len(poly.Vertices) >= 3 {
				st.Triangles += len(poly.Vertices) - 2
			}
		}
	}
	for _, v := range s.Vertices {
		st.BBox = st.BBox.Extend(v)
	}
	return st
}
