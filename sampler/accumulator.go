package sampler

import "github.com/rtlab/pathtracer/types"

// Accumulator names.
const (
	Average = "average"
)

// The Accumulator interface is implemented by strategies that combine the
// samples of a pixel into a single color.
type Accumulator interface {
	// Reset the accumulator before processing a pixel with spp samples.
	Reset(spp int)

	// Fold in the color of sample index.
	Add(color types.Vec3, index int)

	// Get the combined color.
	Get() types.Vec3
}

// An accumulator that calculates the arithmetic mean of its samples.
type AverageAccumulator struct {
	sum   types.Vec3
	count int
}

// Create an averaging accumulator.
func NewAverage() Accumulator {
	return &AverageAccumulator{}
}

func (a *AverageAccumulator) Reset(_ int) {
	a.sum = types.Vec3{}
	a.count = 0
}

func (a *AverageAccumulator) Add(color types.Vec3, _ int) {
	a.sum = a.sum.Add(color)
	a.count++
}

// Get the mean color or black if no samples were added.
func (a *AverageAccumulator) Get() types.Vec3 {
	if a.count == 0 {
		return types.Vec3{}
	}
	return a.sum.Mul(1.0 / float32(a.count))
}
