package scene

import (
	"testing"

	"github.com/rtlab/pathtracer/types"
)

func refs(indices ...int32) []VertexRef {
	out := make([]VertexRef, len(indices))
	for i, index := range indices {
		out[i] = VertexRef{Vertex: index, Normal: NoNormal}
	}
	return out
}

func quadScene() *Scene {
	sc := NewScene()
	sc.Vertices = append(sc.Vertices,
		types.XYZ(0, 0, 0),
		types.XYZ(1, 0, 0),
		types.XYZ(1, 1, 0),
		types.XYZ(0, 1, 0),
		types.XYZ(0.5, 1.5, 0),
	)
	sc.Materials = append(sc.Materials, NewMaterial(DefaultMaterialName), NewMaterial(LightMaterialName))
	sc.Objects = append(sc.Objects, &Object{
		Name: "quad",
		Polygons: []Polygon{
			{Vertices: refs(0, 1, 2, 3), Material: 0},
			{Vertices: refs(3, 2, 4), Material: 1},
		},
	})
	return sc
}

func TestTriangulate(t *testing.T) {
	sc := quadScene()
	faces, err := Triangulate(sc)
	if err != nil {
		t.Fatal(err)
	}

	expFaces := [][3]int32{{0, 1, 2}, {0, 2, 3}, {3, 2, 4}}
	expMaterials := []int32{0, 0, 1}
	if len(faces) != len(expFaces) {
		t.Fatalf("expected %d faces; got %d", len(expFaces), len(faces))
	}
	for index, face := range faces {
		for i := 0; i < 3; i++ {
			if face.Vertices[i].Vertex != expFaces[index][i] {
				t.Fatalf("[face %d] expected vertices %v; got %v", index, expFaces[index], face.Vertices)
			}
		}
		if face.Material != expMaterials[index] {
			t.Fatalf("[face %d] expected material %d; got %d", index, expMaterials[index], face.Material)
		}
	}
}

func TestTriangulateErrors(t *testing.T) {
	type spec struct {
		poly Polygon
	}
	specs := []spec{
		spec{Polygon{Vertices: refs(0, 1), Material: 0}},
		spec{Polygon{Vertices: refs(0, 1, 2), Material: 5}},
		spec{Polygon{Vertices: refs(0, 1, 9), Material: 0}},
		spec{Polygon{Vertices: []VertexRef{{0, 0}, {1, 0}, {2, 0}}, Material: 0}},
	}

	for index, s := range specs {
		sc := quadScene()
		sc.Objects[0].Polygons = append(sc.Objects[0].Polygons, s.poly)
		if _, err := Triangulate(sc); err == nil {
			t.Fatalf("[spec %d] expected an error", index)
		}
	}
}

func TestFaceNormal(t *testing.T) {
	sc := quadScene()
	face := Face{Vertices: [3]VertexRef{{0, NoNormal}, {1, NoNormal}, {2, NoNormal}}}
	if n := sc.FaceNormal(&face, 0.2, 0.2); !types.ApproxEqual(n, types.XYZ(0, 0, 1), 1e-5) {
		t.Fatalf("expected geometric normal (0, 0, 1); got %v", n)
	}

	sc.Normals = append(sc.Normals, types.XYZ(0, 0, 1), types.XYZ(1, 0, 0))
	face = Face{Vertices: [3]VertexRef{{0, 0}, {1, 1}, {2, 0}}}
	n := sc.FaceNormal(&face, 0.5, 0)
	exp := types.XYZ(1, 0, 1).Normalize()
	if !types.ApproxEqual(n, exp, 1e-5) {
		t.Fatalf("expected interpolated normal %v; got %v", exp, n)
	}
}

func TestLightMarker(t *testing.T) {
	sc := quadScene()
	pos, mat, found := sc.LightMarker()
	if !found {
		t.Fatal("expected to find the light marker")
	}
	if exp := types.XYZ(0.5, 7.0/6.0, 0); !types.ApproxEqual(pos, exp, 1e-5) {
		t.Fatalf("expected light at %v; got %v", exp, pos)
	}
	if mat.Name != LightMaterialName {
		t.Fatalf("expected light material; got %q", mat.Name)
	}

	sc.Materials = sc.Materials[:1]
	if _, _, found = sc.LightMarker(); found {
		t.Fatal("expected no light marker without a light material")
	}
}

func TestStats(t *testing.T) {
	stats := quadScene().Stats()
	if stats.Objects != 1 || stats.Polygons != 2 || stats.Triangles != 3 || stats.Vertices != 5 || stats.Materials != 2 {
		t.Fatalf("unexpected stats %+v", stats)
	}
	if stats.BBox[0] != types.XYZ(0, 0, 0) || stats.BBox[1] != types.XYZ(1, 1.5, 0) {
		t.Fatalf("unexpected bounds %v", stats.BBox)
	}
}

func TestMaterialIndex(t *testing.T) {
	sc := quadScene()
	if index := sc.MaterialIndex(LightMaterialName); index != 1 {
		t.Fatalf("expected light material at index 1; got %d", index)
	}
	if index := sc.MaterialIndex("missing"); index != -1 {
		t.Fatalf("expected -1 for a missing material; got %d", index)
	}
}
