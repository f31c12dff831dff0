package camera

import (
	"math"

	"github.com/pkg/errors"
	"github.com/rtlab/pathtracer/types"
)

// Default lens sampler seeds.
const (
	perspectiveDOFSeed  uint32 = 12345
	orthographicDOFSeed uint32 = 54321
)

type perspective struct {
	basis Basis

	tanHalfFovY float32
	aspect      float32
}

func newPerspective(b Basis, p Params) (Projection, error) {
	if !(p.FovY > 0 && p.FovY < math.Pi) {
		return nil, errors.Wrapf(ErrInvalidParams, "fov %f not in (0, pi)", p.FovY)
	}
	if !(p.Aspect > 0) {
		return nil, errors.Wrapf(ErrInvalidParams, "aspect ratio %f", p.Aspect)
	}

	return &perspective{
		basis:       b,
		tanHalfFovY: float32(math.Tan(float64(p.FovY) * 0.5)),
		aspect:      p.Aspect,
	}, nil
}

// Get the unnormalized direction through the image plane at unit distance.
func (pr *perspective) planeDirection(u, v float32) types.Vec3 {
	x := (2.0*u - 1.0) * pr.aspect * pr.tanHalfFovY
	y := (1.0 - 2.0*v) * pr.tanHalfFovY
	return pr.basis.ToWorld(types.XYZ(x, y, 1))
}

func (pr *perspective) Direction(u, v float32) types.Vec3 {
	return pr.planeDirection(u, v).Normalize()
}

type orthographic struct {
	basis Basis

	halfWidth  float32
	halfHeight float32
}

func newOrthographic(b Basis, p Params) (Projection, error) {
	if !(p.OrthoWidth > 0 && p.OrthoHeight > 0) {
		return nil, errors.Wrapf(ErrInvalidParams, "image plane size %fx%f", p.OrthoWidth, p.OrthoHeight)
	}

	return &orthographic{
		basis:      b,
		halfWidth:  p.OrthoWidth * 0.5,
		halfHeight: p.OrthoHeight * 0.5,
	}, nil
}

// Get the offset of the image plane point for (u, v) from the camera
// position.
func (o *orthographic) planeOffset(u, v float32) types.Vec3 {
	x := (2.0*u - 1.0) * o.halfWidth
	y := (1.0 - 2.0*v) * o.halfHeight
	return o.basis.ToWorld(types.XYZ(x, y, 0))
}

// All orthographic rays share the forward direction.
func (o *orthographic) Direction(_, _ float32) types.Vec3 {
	return o.basis.Forward
}

func (o *orthographic) Project(u, v float32) (types.Vec3, types.Vec3) {
	return o.planeOffset(u, v), o.basis.Forward
}

type fisheye struct {
	basis Basis

	fovRadius float32
}

func newFisheye(b Basis, p Params) (Projection, error) {
	if !(p.FisheyeFov > 0 && p.FisheyeFov <= math.Pi) {
		return nil, errors.Wrapf(ErrInvalidParams, "fisheye fov %f not in (0, pi]", p.FisheyeFov)
	}
	return &fisheye{basis: b, fovRadius: p.FisheyeFov}, nil
}

// Equidistant fisheye mapping; the polar angle grows linearly with the
// distance from the image center. Points outside the image circle are
// clipped to its edge.
func (f *fisheye) Direction(u, v float32) types.Vec3 {
	x := float64(2.0*u - 1.0)
	y := float64(1.0 - 2.0*v)

	r := math.Min(math.Sqrt(x*x+y*y), 1.0)
	theta := r * float64(f.fovRadius)
	phi := math.Atan2(y, x)

	sinTheta := math.Sin(theta)
	local := types.XYZ(
		float32(sinTheta*math.Cos(phi)),
		float32(sinTheta*math.Sin(phi)),
		float32(math.Cos(theta)),
	)
	return f.basis.ToWorld(local).Normalize()
}

type spherical struct {
	basis Basis
}

func newSpherical(b Basis, _ Params) (Projection, error) {
	return &spherical{basis: b}, nil
}

// Panoramic mapping with azimuth 2*pi*u and polar angle pi*v measured from
// the forward axis.
func (s *spherical) Direction(u, v float32) types.Vec3 {
	phi := 2.0 * math.Pi * float64(u)
	theta := math.Pi * float64(v)

	sinTheta := math.Sin(theta)
	local := types.XYZ(
		float32(sinTheta*math.Cos(phi)),
		float32(sinTheta*math.Sin(phi)),
		float32(math.Cos(theta)),
	)
	return s.basis.ToWorld(local).Normalize()
}

// Validate depth of field parameters.
func checkLens(p Params) error {
	if !(p.Aperture >= 0) {
		return errors.Wrapf(ErrInvalidParams, "aperture %f", p.Aperture)
	}
	if !(p.FocusDist > 0) {
		return errors.Wrapf(ErrInvalidParams, "focus distance %f", p.FocusDist)
	}
	return nil
}

type perspectiveDOF struct {
	perspective

	aperture  float32
	focusDist float32
	seed      uint32
	rng       xorshift
}

func newPerspectiveDOF(b Basis, p Params) (Projection, error) {
	base, err := newPerspective(b, p)
	if err != nil {
		return nil, err
	}
	if err = checkLens(p); err != nil {
		return nil, err
	}

	seed := p.Seed
	if seed == 0 {
		seed = perspectiveDOFSeed
	}

	return &perspectiveDOF{
		perspective: *base.(*perspective),
		aperture:    p.Aperture,
		focusDist:   p.FocusDist,
		seed:        seed,
		rng:         xorshift(seed),
	}, nil
}

// Sample a lens point and return the direction from it towards the point
// on the focal plane that the pinhole ray through (u, v) reaches. The lens
// offset is folded into the direction so rays keep starting at the camera
// position.
func (pd *perspectiveDOF) Direction(u, v float32) types.Vec3 {
	pd.rng.perturb(u, v)

	focusPoint := pd.planeDirection(u, v).Mul(pd.focusDist)
	if pd.aperture <= 0 {
		return focusPoint.Normalize()
	}

	lensOffset := lensSample(&pd.rng, pd.basis, pd.aperture)
	return focusPoint.Sub(lensOffset).Normalize()
}

func (pd *perspectiveDOF) Fork(worker int) Projection {
	clone := *pd
	clone.rng = xorshift(workerSeed(pd.seed, worker))
	return &clone
}

type orthographicDOF struct {
	orthographic

	aperture  float32
	focusDist float32
	seed      uint32
	rng       xorshift
}

func newOrthographicDOF(b Basis, p Params) (Projection, error) {
	base, err := newOrthographic(b, p)
	if err != nil {
		return nil, err
	}
	if err = checkLens(p); err != nil {
		return nil, err
	}

	seed := p.Seed
	if seed == 0 {
		seed = orthographicDOFSeed
	}

	return &orthographicDOF{
		orthographic: *base.(*orthographic),
		aperture:     p.Aperture,
		focusDist:    p.FocusDist,
		seed:         seed,
		rng:          xorshift(seed),
	}, nil
}

func (od *orthographicDOF) Direction(u, v float32) types.Vec3 {
	_, dir := od.Project(u, v)
	return dir
}

// Sample a lens point around the image plane point for (u, v) and aim the
// ray at the point on the focal plane straight ahead of the image plane
// point.
func (od *orthographicDOF) Project(u, v float32) (types.Vec3, types.Vec3) {
	od.rng.perturb(u, v)

	offset := od.planeOffset(u, v)
	if od.aperture <= 0 {
		return offset, od.basis.Forward
	}

	lensOffset := lensSample(&od.rng, od.basis, od.aperture)
	dir := od.basis.Forward.Mul(od.focusDist).Sub(lensOffset).Normalize()
	return offset.Add(lensOffset), dir
}

func (od *orthographicDOF) Fork(worker int) Projection {
	clone := *od
	clone.rng = xorshift(workerSeed(od.seed, worker))
	return &clone
}

// Sample a point on a lens with the given aperture (diameter) in the
// camera right/up plane.
func lensSample(rng *xorshift, b Basis, aperture float32) types.Vec3 {
	dx, dy := rng.unitDisk()
	return b.Right.Mul(dx).Add(b.Up.Mul(dy)).Mul(0.5 * aperture)
}

// Derive a non-zero seed for a render worker.
func workerSeed(seed uint32, worker int) uint32 {
	s := seed ^ (uint32(worker+1) * 0x9E3779B9)
	if s == 0 {
		s = seed
	}
	return s
}
