package bvh

import (
	"time"

	"github.com/rtlab/pathtracer/asset/scene"
	"github.com/rtlab/pathtracer/types"
)

// The maximum number of node indices that can be pending during traversal.
// Builders never produce trees deeper than StackSize - 2 so a single stack
// of this size is always sufficient.
const StackSize = 64

// A BVH node. Internal nodes reference their children by index into the
// tree node list. Leaf nodes reference a contiguous run of the tree's
// reordered face index list.
type Node struct {
	BBox types.AABB

	// Child node indices; -1 for leaves.
	Left, Right int32

	// Offset and count into the tree face index list; count is 0 for
	// internal nodes.
	Start, Count int32
}

// Returns true if this is a leaf node.
func (n *Node) IsLeaf() bool {
	return n.Left < 0
}

// Build statistics.
type Stats struct {
	Nodes     int
	Leafs     int
	MaxDepth  int
	Faces     int
	BuildTime time.Duration
}

// A bounding volume hierarchy over a list of scene faces. Once built, a
// tree is read-only and can be shared by any number of tracing goroutines.
type Tree struct {
	Nodes []Node

	// Face indices reordered so that each leaf covers a contiguous range.
	Indices []int32

	// The index of the root node or -1 for an empty tree.
	Root int32

	Stats Stats

	faces []scene.Face
	sc    *scene.Scene
}

// A ray-face intersection.
type Hit struct {
	// Distance along the ray.
	T float32

	// Barycentric coordinates of the hit point.
	U, V float32

	// Index of the face that was hit.
	Face int32
}

// A callback for excluding faces from intersection tests. It should return
// true if the face must be ignored.
type FaceFilter func(face *scene.Face) bool

// Get the faces indexed by this tree.
func (t *Tree) Faces() []scene.Face {
	return t.faces
}

// Get the scene that owns the face vertices.
func (t *Tree) Scene() *scene.Scene {
	return t.sc
}

// Find the closest face intersected by the ray at a distance greater than
// minT. Faces for which skip returns true are ignored.
func (t *Tree) Intersect(r types.Ray, minT float32, skip FaceFilter) (Hit, bool) {
	hit := Hit{Face: -1}
	found := false

	t.traverse(r, func(faceIndex int32) bool {
		face := &t.faces[faceIndex]
		if skip != nil && skip(face) {
			return false
		}

		v0, v1, v2 := t.sc.FaceVertices(face)
		dist, u, v, ok := types.IntersectTriangle(r, v0, v1, v2)
		if !ok || dist <= minT || (found && dist >= hit.T) {
			return false
		}

		hit = Hit{T: dist, U: u, V: v, Face: faceIndex}
		found = true
		return false
	})

	return hit, found
}

// Check whether any face intersects the ray at a distance in (minT, maxT).
// Traversal stops at the first such face.
func (t *Tree) Occluded(r types.Ray, minT, maxT float32, skip FaceFilter) bool {
	occluded := false

	t.traverse(r, func(faceIndex int32) bool {
		face := &t.faces[faceIndex]
		if skip != nil && skip(face) {
			return false
		}

		v0, v1, v2 := t.sc.FaceVertices(face)
		dist, _, _, ok := types.IntersectTriangle(r, v0, v1, v2)
		if ok && dist > minT && dist < maxT {
			occluded = true
		}
		return occluded
	})

	return occluded
}

// Walk the tree using an explicit stack and invoke visit for every face in
// each leaf whose bounding box is intersected by the ray. Traversal stops
// early if visit returns true.
func (t *Tree) traverse(r types.Ray, visit func(faceIndex int32) bool) {
	if t.Root < 0 {
		return
	}

	var stack [StackSize]int32
	stackSize := 0
	stack[stackSize] = t.Root
	stackSize++

	for stackSize > 0 {
		stackSize--
		node := &t.Nodes[stack[stackSize]]
		if !node.BBox.IntersectRay(r) {
			continue
		}

		if node.IsLeaf() {
			for _, faceIndex := range t.Indices[node.Start : node.Start+node.Count] {
				if visit(faceIndex) {
					return
				}
			}
			continue
		}

		stack[stackSize] = node.Left
		stack[stackSize+1] = node.Right
		stackSize += 2
	}
}
