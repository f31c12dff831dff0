package types

import "math"

const (
	// Determinants with a magnitude below this value indicate a ray that
	// is parallel to the triangle plane.
	parallelEpsilon float32 = 1e-8

	// Intersections at or below this distance are discarded.
	TriangleEpsilon float32 = 1e-8
)

// A ray with origin O and direction D. Points along the ray are given by
// O + t * D.
type Ray struct {
	Origin Vec3
	Dir    Vec3
}

// Create a new ray.
func NewRay(origin, dir Vec3) Ray {
	return Ray{Origin: origin, Dir: dir}
}

// Get the point at distance t along the ray.
func (r Ray) At(t float32) Vec3 {
	return r.Origin.Add(r.Dir.Mul(t))
}

// Intersect a ray with a triangle using the Möller–Trumbore algorithm.
//
// On a hit, the distance t along the ray and the barycentric coordinates
// (u, v) of the hit point relative to (v1, v2) are returned.
func IntersectTriangle(r Ray, v0, v1, v2 Vec3) (t, u, v float32, hit bool) {
	edge1 := v1.Sub(v0)
	edge2 := v2.Sub(v0)
	h := r.Dir.Cross(edge2)
	det := edge1.Dot(h)
	if det > -parallelEpsilon && det < parallelEpsilon {
		return 0, 0, 0, false
	}

	f := 1.0 / det
	s := r.Origin.Sub(v0)
	u = f * s.Dot(h)
	if u < 0 || u > 1 {
		return 0, 0, 0, false
	}

	q := s.Cross(edge1)
	v = f * r.Dir.Dot(q)
	if v < 0 || u+v > 1 {
		return 0, 0, 0, false
	}

	t = f * edge2.Dot(q)
	if t <= TriangleEpsilon {
		return 0, 0, 0, false
	}
	return t, u, v, true
}

// An axis aligned bounding box stored as a {min, max} pair.
type AABB [2]Vec3

// Create an empty bounding box that any Extend call will replace.
func EmptyAABB() AABB {
	return AABB{
		{math.MaxFloat32, math.MaxFloat32, math.MaxFloat32},
		{-math.MaxFloat32, -math.MaxFloat32, -math.MaxFloat32},
	}
}

// Get the bounding box of a triangle.
func TriangleAABB(v0, v1, v2 Vec3) AABB {
	return AABB{
		MinVec3(v0, MinVec3(v1, v2)),
		MaxVec3(v0, MaxVec3(v1, v2)),
	}
}

// Grow the box so it includes point p.
func (b AABB) Extend(p Vec3) AABB {
	return AABB{MinVec3(b[0], p), MaxVec3(b[1], p)}
}

// Get the union of two boxes.
func (b AABB) Union(o AABB) AABB {
	return AABB{MinVec3(b[0], o[0]), MaxVec3(b[1], o[1])}
}

// Get the box center.
func (b AABB) Center() Vec3 {
	return b[0].Add(b[1]).Mul(0.5)
}

// Get the box side lengths.
func (b AABB) Extent() Vec3 {
	return b[1].Sub(b[0])
}

// Get half of the box surface area.
func (b AABB) HalfArea() float32 {
	side := b.Extent()
	return side[0]*side[1] + side[1]*side[2] + side[0]*side[2]
}

// Check whether point p lies inside the box (inclusive) allowing for an
// epsilon of slack on every side.
func (b AABB) Contains(p Vec3, epsilon float32) bool {
	for i := 0; i < 3; i++ {
		if p[i] < b[0][i]-epsilon || p[i] > b[1][i]+epsilon {
			return false
		}
	}
	return true
}

// Check whether other lies entirely inside this box.
func (b AABB) ContainsBox(o AABB, epsilon float32) bool {
	return b.Contains(o[0], epsilon) && b.Contains(o[1], epsilon)
}

// Test a ray against the box using the slab method. Ray direction components
// close to zero are treated as a bounds check against the origin.
func (b AABB) IntersectRay(r Ray) bool {
	var tMin, tMax float32 = 0, math.MaxFloat32
	for i := 0; i < 3; i++ {
		origin, dir := r.Origin[i], r.Dir[i]
		if dir > -parallelEpsilon && dir < parallelEpsilon {
			if origin < b[0][i] || origin > b[1][i] {
				return false
			}
			continue
		}

		t1 := (b[0][i] - origin) / dir
		t2 := (b[1][i] - origin) / dir
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		if t1 > tMin {
			tMin = t1
		}
		if t2 < tMax {
			tMax = t2
		}
		if tMin > tMax {
			return false
		}
	}
	return true
}
