package sampler

import (
	"math/rand"
	"sort"

	"github.com/pkg/errors"
	"github.com/samber/lo"
)

// A factory for samplers. Random samplers draw from rng, which must not be
// shared with other goroutines.
type Factory func(spp int, rng *rand.Rand) Sampler

// A factory for accumulators.
type AccumulatorFactory func() Accumulator

// A registry of named samplers and accumulators.
type Registry struct {
	samplers     map[string]Factory
	accumulators map[string]AccumulatorFactory
}

// Create an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		samplers:     make(map[string]Factory),
		accumulators: make(map[string]AccumulatorFactory),
	}
}

// Create a registry populated with the built-in samplers and accumulators.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	RegisterBuiltins(r)
	return r
}

// Register the built-in samplers and accumulators with a registry.
func RegisterBuiltins(r *Registry) {
	r.RegisterSampler(Regular, NewRegular)
	r.RegisterSampler(Random, NewRandom)
	r.RegisterSampler(Jittered, NewJittered)
	r.RegisterAccumulator(Average, NewAverage)
}

// Register a sampler factory, replacing any existing one with the same name.
func (r *Registry) RegisterSampler(name string, factory Factory) {
	r.samplers[name] = factory
}

// Register an accumulator factory, replacing any existing one with the
// same name.
func (r *Registry) RegisterAccumulator(name string, factory AccumulatorFactory) {
	r.accumulators[name] = factory
}

// Create the named sampler.
func (r *Registry) NewSampler(name string, spp int, rng *rand.Rand) (Sampler, error) {
	factory, exists := r.samplers[name]
	if !exists {
		return nil, errors.Wrapf(ErrUnknownSampler, "%q (available: %v)", name, r.SamplerNames())
	}
	return factory(spp, rng), nil
}

// Create the named accumulator.
func (r *Registry) NewAccumulator(name string) (Accumulator, error) {
	factory, exists := r.accumulators[name]
	if !exists {
		return nil, errors.Wrapf(ErrUnknownAccumulator, "%q", name)
	}
	return factory(), nil
}

// Get the sorted list of registered sampler names.
func (r *Registry) SamplerNames() []string {
	names := lo.Keys(r.samplers)
	sort.Strings(names)
	return names
}
