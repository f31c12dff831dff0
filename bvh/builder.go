package bvh

import (
	"time"

	"github.com/rtlab/pathtracer/asset/scene"
	"github.com/rtlab/pathtracer/log"
	"github.com/rtlab/pathtracer/types"
)

const (
	// Work lists with this many faces or fewer always become leafs.
	MaxLeafFaces = 4

	// Nodes at this depth always become leafs so traversal never overflows
	// its stack.
	maxTreeDepth = StackSize - 2
)

// A split function selects a split position for faces [start, end) of
// the builder's index list, reordering the list as needed. It returns the
// index of the first face that belongs to the right child or -1 if the
// range should become a leaf.
type splitFunc func(b *builder, start, end int, bbox types.AABB, depth int) int

type builder struct {
	logger log.Logger

	tree *Tree

	// Per-face bounding boxes and centroids calculated once before
	// partitioning.
	boxes     []types.AABB
	centroids []types.Vec3

	split splitFunc
}

// Construct a tree over the given faces by recursively partitioning them
// with the supplied split function.
func build(name string, faces []scene.Face, sc *scene.Scene, split splitFunc) *Tree {
	b := &builder{
		logger: log.New(name + " bvh builder"),
		tree: &Tree{
			Nodes:   make([]Node, 0, 2*len(faces)/MaxLeafFaces+1),
			Indices: make([]int32, len(faces)),
			Root:    -1,
			faces:   faces,
			sc:      sc,
		},
		boxes:     make([]types.AABB, len(faces)),
		centroids: make([]types.Vec3, len(faces)),
		split:     split,
	}

	for index := range faces {
		v0, v1, v2 := sc.FaceVertices(&faces[index])
		b.boxes[index] = types.TriangleAABB(v0, v1, v2)
		b.centroids[index] = v0.Add(v1).Add(v2).Mul(1.0 / 3.0)
		b.tree.Indices[index] = int32(index)
	}

	start := time.Now()
	if len(faces) > 0 {
		b.tree.Root = b.partition(0, len(faces), 0)
	}
	b.tree.Stats.Faces = len(faces)
	b.tree.Stats.BuildTime = time.Since(start)

	b.logger.Debugf(
		"BVH tree build time: %d ms, maxDepth: %d, nodes: %d, leafs: %d",
		b.tree.Stats.BuildTime.Nanoseconds()/1e6,
		b.tree.Stats.MaxDepth, b.tree.Stats.Nodes, b.tree.Stats.Leafs,
	)
	return b.tree
}

// Partition faces [start, end) and return the index of the created node.
func (b *builder) partition(start, end, depth int) int32 {
	if depth > b.tree.Stats.MaxDepth {
		b.tree.Stats.MaxDepth = depth
	}

	// Do we have enough items for partitioning? If not create a leaf
	bbox := b.rangeBBox(start, end)
	if end-start <= MaxLeafFaces || depth >= maxTreeDepth {
		return b.createLeaf(bbox, start, end)
	}

	mid := b.split(b, start, end, bbox, depth)
	if mid <= start || mid >= end {
		return b.createLeaf(bbox, start, end)
	}

	// Reserve the node slot before recursing so the parent precedes its
	// children in the node list.
	nodeIndex := int32(len(b.tree.Nodes))
	b.tree.Nodes = append(b.tree.Nodes, Node{})
	b.tree.Stats.Nodes++

	left := b.partition(start, mid, depth+1)
	right := b.partition(mid, end, depth+1)
	b.tree.Nodes[nodeIndex] = Node{
		BBox:  b.tree.Nodes[left].BBox.Union(b.tree.Nodes[right].BBox),
		Left:  left,
		Right: right,
	}

	return nodeIndex
}

// Setup a leaf node containing faces [start, end).
func (b *builder) createLeaf(bbox types.AABB, start, end int) int32 {
	nodeIndex := int32(len(b.tree.Nodes))
	b.tree.Nodes = append(b.tree.Nodes, Node{
		BBox:  bbox,
		Left:  -1,
		Right: -1,
		Start: int32(start),
		Count: int32(end - start),
	})

	b.tree.Stats.Nodes++
	b.tree.Stats.Leafs++
	return nodeIndex
}

// Calculate the union of the bounding boxes of faces [start, end).
func (b *builder) rangeBBox(start, end int) types.AABB {
	bbox := types.EmptyAABB()
	for _, faceIndex := range b.tree.Indices[start:end] {
		bbox = bbox.Union(b.boxes[faceIndex])
	}
	return bbox
}

// Calculate the bounding box of the centroids of faces [start, end).
func (b *builder) centroidBBox(start, end int) types.AABB {
	bbox := types.EmptyAABB()
	for _, faceIndex := range b.tree.Indices[start:end] {
		bbox = bbox.Extend(b.centroids[faceIndex])
	}
	return bbox
}
