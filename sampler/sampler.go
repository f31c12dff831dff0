package sampler

import (
	"math"
	"math/rand"
)

// Sampler names.
const (
	Regular  = "regular"
	Random   = "random"
	Jittered = "jittered"
)

// The Sampler interface is implemented by sub-pixel sample generators.
// Samplers are not safe for concurrent use; each render worker needs its
// own instance.
type Sampler interface {
	// Get the sub-pixel offset in [0, 1)x[0, 1) for a sample index.
	Generate(index int) (u, v float32)

	// Get the number of sample slots the sampler covers.
	Slots() int
}

// Calculate the side of the smallest square grid with at least spp cells.
func gridSize(spp int) int {
	if spp < 1 {
		return 1
	}

	size := int(math.Sqrt(float64(spp)))
	for size*size < spp {
		size++
	}
	return size
}

// Keep values that rounded up to 1 inside [0, 1).
func clampUnit(f float32) float32 {
	if f >= 1 {
		return math.Nextafter32(1, 0)
	}
	return f
}

// A sampler placing samples at the cell centers of a regular grid.
type RegularSampler struct {
	grid int
}

// Create a regular grid sampler for spp samples per pixel.
func NewRegular(spp int, _ *rand.Rand) Sampler {
	return &RegularSampler{grid: gridSize(spp)}
}

func (s *RegularSampler) Generate(index int) (float32, float32) {
	gx := index % s.grid
	gy := (index / s.grid) % s.grid
	return (float32(gx) + 0.5) / float32(s.grid), (float32(gy) + 0.5) / float32(s.grid)
}

func (s *RegularSampler) Slots() int {
	return s.grid * s.grid
}

// A sampler drawing uniform random offsets.
type RandomSampler struct {
	spp int
	rng *rand.Rand
}

// Create a random sampler.
func NewRandom(spp int, rng *rand.Rand) Sampler {
	if spp < 1 {
		spp = 1
	}
	return &RandomSampler{spp: spp, rng: rng}
}

func (s *RandomSampler) Generate(_ int) (float32, float32) {
	return s.rng.Float32(), s.rng.Float32()
}

func (s *RandomSampler) Slots() int {
	return s.spp
}

// A stratified sampler placing one random sample inside each grid cell.
type JitteredSampler struct {
	grid int
	rng  *rand.Rand
}

// Create a jittered sampler for spp samples per pixel.
func NewJittered(spp int, rng *rand.Rand) Sampler {
	return &JitteredSampler{grid: gridSize(spp), rng: rng}
}

func (s *JitteredSampler) Generate(index int) (float32, float32) {
	gx := index % s.grid
	gy := (index / s.grid) % s.grid
	u := (float32(gx) + s.rng.Float32()) / float32(s.grid)
	v := (float32(gy) + s.rng.Float32()) / float32(s.grid)
	return clampUnit(u), clampUnit(v)
}

func (s *JitteredSampler) Slots() int {
	return s.grid * s.grid
}
