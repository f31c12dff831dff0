package brdf

import (
	"sort"

	"github.com/pkg/errors"
	"github.com/samber/lo"
)

const (
	LambertModel      = "lambert"
	CookTorranceModel = "cook_torrance"
)

// A factory for model instances.
type Factory func(Params) (Model, error)

// A registry of named reflectance models.
type Registry struct {
	factories map[string]Factory
}

// Create an empty model registry.
func NewRegistry() *Registry {
	return &Registry{
		factories: make(map[string]Factory),
	}
}

// Create a registry populated with the built-in models.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	RegisterBuiltins(r)
	return r
}

// Register the built-in models with a registry.
func RegisterBuiltins(r *Registry) {
	_ = r.Register(LambertModel, NewLambert)
	_ = r.Register(CookTorranceModel, NewCookTorrance)
}

// Register a model factory under the given name.
func (r *Registry) Register(name string, factory Factory) error {
	if _, exists := r.factories[name]; exists {
		return errors.Wrapf(ErrDuplicateModel, "register %q", name)
	}
	r.factories[name] = factory
	return nil
}

// Create a new instance of the named model.
func (r *Registry) Create(name string, p Params) (Model, error) {
	factory, exists := r.factories[name]
	if !exists {
		return nil, errors.Wrapf(ErrUnknownModel, "%q", name)
	}
	return factory(p)
}

// Get the sorted list of registered model names.
func (r *Registry) Names() []string {
	names := lo.Keys(r.factories)
	sort.Strings(names)
	return names
}
