package bvh

import (
	"sort"

	"github.com/pkg/errors"
	"github.com/rtlab/pathtracer/asset/scene"
	"github.com/samber/lo"
)

// Built-in strategy names.
const (
	Median = "median"
	SAH    = "sah"
)

// The Strategy interface is implemented by all BVH build strategies.
type Strategy interface {
	// Build a tree over the given faces. The faces slice and the scene it
	// references must not be modified while the tree is in use.
	Build(faces []scene.Face, sc *scene.Scene) (*Tree, error)
}

// A factory for build strategy instances.
type Factory func() Strategy

// A registry of named build strategies. The first registered strategy is
// used when no name is requested.
type Registry struct {
	factories map[string]Factory
	defName   string
}

// Create an empty strategy registry.
func NewRegistry() *Registry {
	return &Registry{
		factories: make(map[string]Factory),
	}
}

// Create a registry populated with the built-in strategies. The median
// split strategy is the default.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	RegisterBuiltins(r)
	return r
}

// Register the built-in strategies with a registry.
func RegisterBuiltins(r *Registry) {
	_ = r.Register(Median, NewMedianSplit)
	_ = r.Register(SAH, NewSAHSplit)
}

// Register a strategy factory under the given name.
func (r *Registry) Register(name string, factory Factory) error {
	if _, exists := r.factories[name]; exists {
		return errors.Wrapf(ErrDuplicateStrategy, "register %q", name)
	}

	r.factories[name] = factory
	if r.defName == "" {
		r.defName = name
	}
	return nil
}

// Get a new instance of the named strategy. If name is empty the default
// strategy is returned.
func (r *Registry) Get(name string) (Strategy, error) {
	if name == "" {
		name = r.defName
	}
	if name == "" {
		return nil, ErrNoStrategies
	}

	factory, exists := r.factories[name]
	if !exists {
		return nil, errors.Wrapf(ErrUnknownStrategy, "%q (available: %v)", name, r.Names())
	}
	return factory(), nil
}

// Get the sorted list of registered strategy names.
func (r *Registry) Names() []string {
	names := lo.Keys(r.factories)
	sort.Strings(names)
	return names
}

// Build a tree over faces using the named strategy.
func (r *Registry) Build(name string, faces []scene.Face, sc *scene.Scene) (*Tree, error) {
	strategy, err := r.Get(name)
	if err != nil {
		return nil, err
	}
	return strategy.Build(faces, sc)
}
