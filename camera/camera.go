package camera

import (
	"github.com/rtlab/pathtracer/types"
)

// An orthonormal camera basis.
type Basis struct {
	Forward types.Vec3
	Right   types.Vec3
	Up      types.Vec3
}

// Build a camera basis looking from position towards target. The supplied
// up vector does not need to be orthogonal to the view direction; it is
// re-orthogonalized against forward and right.
func NewBasis(position, target, up types.Vec3) Basis {
	forward := target.Sub(position).Normalize()
	right := forward.Cross(up.Normalize()).Normalize()
	return Basis{
		Forward: forward,
		Right:   right,
		Up:      right.Cross(forward),
	}
}

// Map a direction from the local camera frame (x = right, y = up,
// z = forward) to world space.
func (b Basis) ToWorld(local types.Vec3) types.Vec3 {
	return b.Right.Mul(local[0]).Add(b.Up.Mul(local[1])).Add(b.Forward.Mul(local[2]))
}

// The Projection interface is implemented by all camera projections. It
// maps normalized image coordinates (u, v) in [0, 1]x[0, 1], with v = 0 at
// the top of the image, to a world space ray direction.
type Projection interface {
	Direction(u, v float32) types.Vec3
}

// Projections whose rays do not all start at the camera position also
// implement OriginProjection. Project returns the ray origin offset
// relative to the camera position together with the ray direction.
type OriginProjection interface {
	Projection
	Project(u, v float32) (offset, dir types.Vec3)
}

// Projections with mutable per-instance state implement Forker so that
// each render worker can get a private copy.
type Forker interface {
	Fork(worker int) Projection
}

// The Camera generates primary rays for a projection. Cameras using depth
// of field projections carry lens sampler state; use Fork to obtain a
// separate camera for each goroutine.
type Camera struct {
	name     string
	position types.Vec3
	basis    Basis
	proj     Projection
}

// Orient a camera by applying yaw (around up) and pitch (around the camera
// right axis) rotations to the look direction. Angles are in radians. The
// returned target keeps the original look distance.
func Orient(position, target, up types.Vec3, yaw, pitch float32) types.Vec3 {
	if yaw == 0 && pitch == 0 {
		return target
	}

	look := target.Sub(position)
	dir := look.Normalize()
	pitchAxis := dir.Cross(up)
	pitchQuat := types.QuatFromAxisAngle(pitchAxis, pitch)
	yawQuat := types.QuatFromAxisAngle(up, yaw)

	orientQuat := pitchQuat.Mul(yawQuat).Normalize()

	// Update direction
	dir = orientQuat.Rotate(dir)
	return position.Add(dir.Mul(look.Len()))
}

// Get the name of the camera projection.
func (c *Camera) Name() string {
	return c.name
}

// Get the camera position.
func (c *Camera) Position() types.Vec3 {
	return c.position
}

// Get the camera basis.
func (c *Camera) Basis() Basis {
	return c.basis
}

// Get the ray direction for normalized image coordinates (u, v).
func (c *Camera) Direction(u, v float32) types.Vec3 {
	return c.proj.Direction(u, v)
}

// Generate the primary ray for normalized image coordinates (u, v).
func (c *Camera) Ray(u, v float32) types.Ray {
	if op, ok := c.proj.(OriginProjection); ok {
		offset, dir := op.Project(u, v)
		return types.NewRay(c.position.Add(offset), dir)
	}
	return types.NewRay(c.position, c.proj.Direction(u, v))
}

// Get a camera that can be used by the given render worker. Cameras whose
// projection has no mutable state are returned as-is.
func (c *Camera) Fork(worker int) *Camera {
	forker, ok := c.proj.(Forker)
	if !ok {
		return c
	}

	clone := *c
	clone.proj = forker.Fork(worker)
	return &clone
}
