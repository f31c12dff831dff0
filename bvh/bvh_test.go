package bvh

import (
	"math"
	"math/rand"
	"testing"

	"github.com/pkg/errors"
	"github.com/rtlab/pathtracer/asset/scene"
	"github.com/rtlab/pathtracer/types"
)

// Generate a scene with count random triangles inside a 10x10x10 cube.
func randomScene(rng *rand.Rand, count int) (*scene.Scene, []scene.Face) {
	sc := scene.NewScene()
	sc.Materials = append(sc.Materials, scene.NewMaterial(scene.DefaultMaterialName))

	randVec := func(scale float32) types.Vec3 {
		return types.XYZ(
			(rng.Float32()*2-1)*scale,
			(rng.Float32()*2-1)*scale,
			(rng.Float32()*2-1)*scale,
		)
	}

	faces := make([]scene.Face, count)
	for index := range faces {
		center := randVec(5)
		for vIndex := 0; vIndex < 3; vIndex++ {
			sc.Vertices = append(sc.Vertices, center.Add(randVec(0.5)))
			faces[index].Vertices[vIndex] = scene.VertexRef{
				Vertex: int32(len(sc.Vertices) - 1),
				Normal: scene.NoNormal,
			}
		}
	}
	return sc, faces
}

func bruteForce(sc *scene.Scene, faces []scene.Face, r types.Ray, minT float32) (float32, bool) {
	closest := float32(math.MaxFloat32)
	found := false
	for index := range faces {
		v0, v1, v2 := sc.FaceVertices(&faces[index])
		t, _, _, ok := types.IntersectTriangle(r, v0, v1, v2)
		if ok && t > minT && t < closest {
			closest = t
			found = true
		}
	}
	return closest, found
}

func TestBruteForceEquivalence(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	sc, faces := randomScene(rng, 500)
	reg := DefaultRegistry()

	for _, name := range reg.Names() {
		tree, err := reg.Build(name, faces, sc)
		if err != nil {
			t.Fatal(err)
		}

		hits := 0
		for rayIndex := 0; rayIndex < 1000; rayIndex++ {
			origin := types.XYZ(rng.Float32()*20-10, rng.Float32()*20-10, rng.Float32()*20-10)
			target := types.XYZ(rng.Float32()*10-5, rng.Float32()*10-5, rng.Float32()*10-5)
			r := types.NewRay(origin, target.Sub(origin).Normalize())

			expT, expHit := bruteForce(sc, faces, r, 1e-4)
			hit, found := tree.Intersect(r, 1e-4, nil)
			if found != expHit {
				t.Fatalf("[%s ray %d] expected hit to be %t; got %t", name, rayIndex, expHit, found)
			}
			if !found {
				continue
			}
			hits++

			if diff := hit.T - expT; diff > 1e-4 || diff < -1e-4 {
				t.Fatalf("[%s ray %d] expected closest hit at t=%f; got %f", name, rayIndex, expT, hit.T)
			}
			v0, v1, v2 := sc.FaceVertices(&faces[hit.Face])
			if faceT, _, _, ok := types.IntersectTriangle(r, v0, v1, v2); !ok || faceT != hit.T {
				t.Fatalf("[%s ray %d] reported face %d does not produce the reported hit", name, rayIndex, hit.Face)
			}
		}

		if hits == 0 {
			t.Fatalf("[%s] expected some rays to hit the scene", name)
		}
	}
}

func TestBoundingBoxContainment(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	sc, faces := randomScene(rng, 300)
	reg := DefaultRegistry()

	for _, name := range reg.Names() {
		tree, err := reg.Build(name, faces, sc)
		if err != nil {
			t.Fatal(err)
		}

		covered := make([]int, len(faces))
		for nodeIndex, node := range tree.Nodes {
			if !node.IsLeaf() {
				left, right := tree.Nodes[node.Left], tree.Nodes[node.Right]
				if !node.BBox.ContainsBox(left.BBox, 1e-5) || !node.BBox.ContainsBox(right.BBox, 1e-5) {
					t.Fatalf("[%s node %d] expected node bbox to contain its children", name, nodeIndex)
				}
				continue
			}

			if name == "median" && node.Count > MaxLeafFaces {
				t.Fatalf("[%s node %d] expected leaf to contain at most %d faces; got %d", name, nodeIndex, MaxLeafFaces, node.Count)
			}
			for _, faceIndex := range tree.Indices[node.Start : node.Start+node.Count] {
				covered[faceIndex]++
				v0, v1, v2 := sc.FaceVertices(&faces[faceIndex])
				for _, v := range []types.Vec3{v0, v1, v2} {
					if !node.BBox.Contains(v, 1e-5) {
						t.Fatalf("[%s node %d] expected leaf bbox %v to contain vertex %v", name, nodeIndex, node.BBox, v)
					}
				}
			}
		}

		for faceIndex, count := range covered {
			if count != 1 {
				t.Fatalf("[%s] expected face %d to be referenced by exactly one leaf; got %d", name, faceIndex, count)
			}
		}
		if tree.Stats.MaxDepth > StackSize-2 {
			t.Fatalf("[%s] tree depth %d exceeds the traversal stack", name, tree.Stats.MaxDepth)
		}
	}
}

func TestMedianSplitNodeCounts(t *testing.T) {
	type spec struct {
		faces    int
		expNodes int
		expLeafs int
	}
	specs := []spec{
		{1, 1, 1},
		{4, 1, 1},
		{5, 3, 2},
		{16, 7, 4},
	}

	for index, s := range specs {
		rng := rand.New(rand.NewSource(int64(index)))
		sc, faces := randomScene(rng, s.faces)
		tree, err := NewMedianSplit().Build(faces, sc)
		if err != nil {
			t.Fatal(err)
		}

		if len(tree.Nodes) != s.expNodes || tree.Stats.Leafs != s.expLeafs {
			t.Fatalf("[spec %d] expected %d nodes and %d leafs; got %d and %d", index, s.expNodes, s.expLeafs, len(tree.Nodes), tree.Stats.Leafs)
		}
		if tree.Root != 0 {
			t.Fatalf("[spec %d] expected root to be node 0; got %d", index, tree.Root)
		}
	}
}

func TestEmptyTree(t *testing.T) {
	tree, err := DefaultRegistry().Build("", nil, scene.NewScene())
	if err != nil {
		t.Fatal(err)
	}
	if tree.Root != -1 {
		t.Fatalf("expected empty tree root to be -1; got %d", tree.Root)
	}
	if _, found := tree.Intersect(types.NewRay(types.Vec3{}, types.XYZ(0, 0, -1)), 0, nil); found {
		t.Fatal("expected no hit for an empty tree")
	}
}

func TestFaceFilter(t *testing.T) {
	sc := scene.NewScene()
	sc.Vertices = []types.Vec3{
		{-1, -1, -1}, {1, -1, -1}, {0, 1, -1},
		{-1, -1, -2}, {1, -1, -2}, {0, 1, -2},
	}
	sc.Materials = []*scene.Material{scene.NewMaterial("wall"), scene.NewMaterial(scene.LightMaterialName)}
	ref := func(v int32) scene.VertexRef { return scene.VertexRef{Vertex: v, Normal: scene.NoNormal} }
	faces := []scene.Face{
		{Vertices: [3]scene.VertexRef{ref(0), ref(1), ref(2)}, Material: 1},
		{Vertices: [3]scene.VertexRef{ref(3), ref(4), ref(5)}, Material: 0},
	}

	tree, err := NewMedianSplit().Build(faces, sc)
	if err != nil {
		t.Fatal(err)
	}

	r := types.NewRay(types.Vec3{}, types.XYZ(0, 0, -1))
	hit, found := tree.Intersect(r, 1e-4, nil)
	if !found || hit.Face != 0 {
		t.Fatalf("expected to hit face 0; got %v (found: %t)", hit, found)
	}

	skipLights := func(f *scene.Face) bool { return f.Material == 1 }
	hit, found = tree.Intersect(r, 1e-4, skipLights)
	if !found || hit.Face != 1 || hit.T < 1.99 || hit.T > 2.01 {
		t.Fatalf("expected to hit face 1 at t=2; got %v (found: %t)", hit, found)
	}

	if !tree.Occluded(r, 1e-4, 1.5, nil) {
		t.Fatal("expected ray to be occluded before t=1.5")
	}
	if tree.Occluded(r, 1e-4, 1.5, skipLights) {
		t.Fatal("expected filtered ray not to be occluded before t=1.5")
	}
}

func TestRegistry(t *testing.T) {
	reg := NewRegistry()
	if _, err := reg.Get(""); err != ErrNoStrategies {
		t.Fatalf("expected ErrNoStrategies; got %v", err)
	}

	RegisterBuiltins(reg)
	if names := reg.Names(); len(names) != 2 || names[0] != "median" || names[1] != "sah" {
		t.Fatalf("unexpected strategy names %v", names)
	}

	def, err := reg.Get("")
	if err != nil {
		t.Fatal(err)
	}
	if _, isMedian := def.(medianSplit); !isMedian {
		t.Fatalf("expected default strategy to be the first registered one; got %T", def)
	}

	if _, err = reg.Get("kd-tree"); errors.Cause(err) != ErrUnknownStrategy {
		t.Fatalf("expected ErrUnknownStrategy; got %v", err)
	}
	if err = reg.Register("sah", NewSAHSplit); errors.Cause(err) != ErrDuplicateStrategy {
		t.Fatalf("expected ErrDuplicateStrategy; got %v", err)
	}
}

func TestSelectNth(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	for specIndex := 0; specIndex < 50; specIndex++ {
		items := make([]int32, 1+rng.Intn(40))
		keys := make([]float32, len(items))
		for index := range items {
			items[index] = int32(index)
			keys[index] = float32(rng.Intn(10))
		}
		n := rng.Intn(len(items))
		selectNth(items, n, func(item int32) float32 { return keys[item] })

		pivot := keys[items[n]]
		for index, item := range items {
			if (index < n && keys[item] > pivot) || (index > n && keys[item] < pivot) {
				t.Fatalf("[spec %d] item %d with key %f is on the wrong side of pivot %f at %d", specIndex, index, keys[item], pivot, n)
			}
		}
	}
}
