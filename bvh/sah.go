package bvh

import (
	"math"

	"github.com/rtlab/pathtracer/asset/scene"
	"github.com/rtlab/pathtracer/types"
)

type Axis uint8

const (
	XAxis Axis = iota
	YAxis
	ZAxis

	// The SAH builder will not attempt to calculate split candidates
	// if the centroid bbox along an axis is less than this threshold.
	minSideLength float32 = 1e-3

	// Number of evenly spaced split candidates evaluated per axis.
	defaultSplitCandidates = 32
)

type splitScore struct {
	axis       Axis
	splitPoint float32

	leftCount, rightCount int
	score                 float32
}

// Returns true if this score should be preferred over other. Ties are
// broken by axis and split point so builds are deterministic.
func (s *splitScore) betterThan(other *splitScore) bool {
	if s.score != other.score {
		return s.score < other.score
	}
	if s.axis != other.axis {
		return s.axis < other.axis
	}
	return s.splitPoint < other.splitPoint
}

// A build strategy that scores candidate splits using the surface area
// heuristic (SAH) and picks the cheapest one. Ranges that cannot be
// improved by splitting become leafs.
type sahSplit struct {
	candidates int
}

// Create a SAH build strategy.
func NewSAHSplit() Strategy {
	return sahSplit{candidates: defaultSplitCandidates}
}

// Build a tree over the given faces.
func (s sahSplit) Build(faces []scene.Face, sc *scene.Scene) (*Tree, error) {
	return build("sah", faces, sc, s.split), nil
}

func (s sahSplit) split(b *builder, start, end int, _ types.AABB, _ int) int {
	items := b.tree.Indices[start:end]

	// Calc current node score
	nodeScore := scorePartition(b, items)
	centroidBBox := b.centroidBBox(start, end)
	side := centroidBBox.Extent()

	// Run split tests in parallel
	scoreChan := make(chan splitScore)
	pendingScores := 0
	for axis := XAxis; axis <= ZAxis; axis++ {
		// Skip axis if bbox dimension is too small
		if side[axis] < minSideLength {
			continue
		}

		splitStep := side[axis] / float32(s.candidates+1)
		for candidate := 1; candidate <= s.candidates; candidate++ {
			pendingScores++
			go func(axis Axis, splitPoint float32) {
				lCount, rCount, score := scoreSplit(b, items, axis, splitPoint)
				scoreChan <- splitScore{
					axis:       axis,
					splitPoint: splitPoint,

					leftCount:  lCount,
					rightCount: rCount,
					score:      score,
				}
			}(axis, centroidBBox[0][axis]+splitStep*float32(candidate))
		}
	}

	// Process all scores and pick the best split
	var bestSplit *splitScore
	for ; pendingScores > 0; pendingScores-- {
		candidate := <-scoreChan
		if bestSplit == nil || candidate.betterThan(bestSplit) {
			bestSplit = &candidate
		}
	}

	// If we can't find a split that improves the current node score create a leaf
	if bestSplit == nil || bestSplit.score >= nodeScore {
		return -1
	}

	// Move faces left of the split point to the front of the range
	leftCount := 0
	for index, faceIndex := range items {
		if b.centroids[faceIndex][bestSplit.axis] < bestSplit.splitPoint {
			items[leftCount], items[index] = items[index], items[leftCount]
			leftCount++
		}
	}

	return start + leftCount
}

// Score a split based on the surface area heuristic. The SAH calculates
// the split score using the formula (lower score is better):
//
// left count * left BBOX area + rightCount * right BBOX area.
//
// SAH avoids splits that generate empty partitions by assigning the worst
// possible score (MaxFloat32) when it enounters such cases.
func scoreSplit(b *builder, items []int32, axis Axis, splitPoint float32) (leftCount, rightCount int, score float32) {
	lbox := types.EmptyAABB()
	rbox := types.EmptyAABB()

	for _, faceIndex := range items {
		if b.centroids[faceIndex][axis] < splitPoint {
			leftCount++
			lbox = lbox.Union(b.boxes[faceIndex])
		} else {
			rightCount++
			rbox = rbox.Union(b.boxes[faceIndex])
		}
	}

	// Make sure that we don't generate empty partitions
	if leftCount == 0 || rightCount == 0 {
		return leftCount, rightCount, math.MaxFloat32
	}

	score = float32(leftCount)*lbox.HalfArea() + float32(rightCount)*rbox.HalfArea()
	return leftCount, rightCount, score
}

// Calculate score for a partitioned work list using formula:
// count * BBOX area
//
// If the list is empty, then this method returns the worst possible
// score (MaxFloat32).
func scorePartition(b *builder, items []int32) float32 {
	if len(items) == 0 {
		return math.MaxFloat32
	}

	bbox := types.EmptyAABB()
	for _, faceIndex := range items {
		bbox = bbox.Union(b.boxes[faceIndex])
	}
	return float32(len(items)) * bbox.HalfArea()
}
