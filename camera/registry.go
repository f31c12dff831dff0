package camera

import (
	"math"
	"sort"

	"github.com/pkg/errors"
	"github.com/rtlab/pathtracer/types"
	"github.com/samber/lo"
)

// Projection names.
const (
	Perspective     = "perspective"
	Orthographic    = "orthographic"
	Fisheye         = "fisheye"
	Spherical       = "spherical"
	PerspectiveDOF  = "perspective_dof"
	OrthographicDOF = "orthographic_dof"
)

// Default projection parameters.
const (
	DefaultFovY        = 60.0 * math.Pi / 180.0
	DefaultFisheyeFov  = math.Pi / 2.0
	DefaultOrthoHeight = 2.0
)

// Projection parameters. Each projection uses the subset it needs.
type Params struct {
	// Image width / height.
	Aspect float32

	// Vertical field of view in radians (perspective variants).
	FovY float32

	// Lens diameter and focal plane distance (depth of field variants).
	Aperture  float32
	FocusDist float32

	// Image plane size in world units (orthographic variants).
	OrthoWidth  float32
	OrthoHeight float32

	// Maximum polar angle in radians, reached at the image circle edge
	// (fisheye).
	FisheyeFov float32

	// Lens sampler seed (depth of field variants); 0 selects the
	// projection default.
	Seed uint32
}

// Create projection parameters with sensible defaults for the given
// aspect ratio.
func DefaultParams(aspect float32) Params {
	return Params{
		Aspect:      aspect,
		FovY:        DefaultFovY,
		FocusDist:   1,
		OrthoWidth:  DefaultOrthoHeight * aspect,
		OrthoHeight: DefaultOrthoHeight,
		FisheyeFov:  DefaultFisheyeFov,
	}
}

// A factory for projection instances.
type Factory func(b Basis, p Params) (Projection, error)

// A registry of named camera projections.
type Registry struct {
	factories map[string]Factory
}

// Create an empty projection registry.
func NewRegistry() *Registry {
	return &Registry{
		factories: make(map[string]Factory),
	}
}

// Create a registry populated with the built-in projections.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	RegisterBuiltins(r)
	return r
}

// Register the built-in projections with a registry.
func RegisterBuiltins(r *Registry) {
	_ = r.Register(Perspective, newPerspective)
	_ = r.Register(Orthographic, newOrthographic)
	_ = r.Register(Fisheye, newFisheye)
	_ = r.Register(Spherical, newSpherical)
	_ = r.Register(PerspectiveDOF, newPerspectiveDOF)
	_ = r.Register(OrthographicDOF, newOrthographicDOF)
}

// Register a projection factory under the given name.
func (r *Registry) Register(name string, factory Factory) error {
	if _, exists := r.factories[name]; exists {
		return errors.Wrapf(ErrDuplicateProjection, "register %q", name)
	}
	r.factories[name] = factory
	return nil
}

// Get the sorted list of registered projection names.
func (r *Registry) Names() []string {
	names := lo.Keys(r.factories)
	sort.Strings(names)
	return names
}

// Create a camera at position looking towards target using the named
// projection.
func (r *Registry) New(name string, position, target, up types.Vec3, p Params) (*Camera, error) {
	factory, exists := r.factories[name]
	if !exists {
		return nil, errors.Wrapf(ErrUnknownProjection, "%q (available: %v)", name, r.Names())
	}

	if target.Sub(position).IsZero() {
		return nil, errors.Wrap(ErrInvalidParams, "camera position and target coincide")
	}

	basis := NewBasis(position, target, up)
	if basis.Right.IsZero() {
		return nil, errors.Wrap(ErrInvalidParams, "camera up vector is parallel to the view direction")
	}

	proj, err := factory(basis, p)
	if err != nil {
		return nil, errors.Wrapf(err, "projection %q", name)
	}

	return &Camera{
		name:     name,
		position: position,
		basis:    basis,
		proj:     proj,
	}, nil
}
