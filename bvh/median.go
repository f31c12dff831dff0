package bvh

import (
	"github.com/rtlab/pathtracer/asset/scene"
	"github.com/rtlab/pathtracer/types"
)

// A build strategy that splits each node at the median face centroid along
// the axis with the largest centroid extent.
type medianSplit struct{}

// Create a median split build strategy.
func NewMedianSplit() Strategy {
	return medianSplit{}
}

// Build a tree over the given faces.
func (medianSplit) Build(faces []scene.Face, sc *scene.Scene) (*Tree, error) {
	return build("median", faces, sc, splitMedian), nil
}

func splitMedian(b *builder, start, end int, _ types.AABB, _ int) int {
	extent := b.centroidBBox(start, end).Extent()
	axis := 0
	if extent[1] > extent[axis] {
		axis = 1
	}
	if extent[2] > extent[axis] {
		axis = 2
	}

	mid := start + (end-start)/2
	selectNth(b.tree.Indices[start:end], mid-start, func(faceIndex int32) float32 {
		return b.centroids[faceIndex][axis]
	})
	return mid
}

// Reorder items so that the item at position n is the one that would be
// there if items were sorted by key. Items before n have keys <= key(n)
// and items after it have keys >= key(n).
func selectNth(items []int32, n int, key func(int32) float32) {
	lo, hi := 0, len(items)-1
	for lo < hi {
		// Median of three pivot
		mid := lo + (hi-lo)/2
		if key(items[mid]) < key(items[lo]) {
			items[mid], items[lo] = items[lo], items[mid]
		}
		if key(items[hi]) < key(items[lo]) {
			items[hi], items[lo] = items[lo], items[hi]
		}
		if key(items[hi]) < key(items[mid]) {
			items[hi], items[mid] = items[mid], items[hi]
		}
		pivot := key(items[mid])

		i, j := lo, hi
		for i <= j {
			for key(items[i]) < pivot {
				i++
			}
			for key(items[j]) > pivot {
				j--
			}
			if i <= j {
				items[i], items[j] = items[j], items[i]
				i++
				j--
			}
		}

		switch {
		case n <= j:
			hi = j
		case n >= i:
			lo = i
		default:
			return
		}
	}
}
