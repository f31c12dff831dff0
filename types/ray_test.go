package types

import (
	"math"
	"testing"
)

func TestRayTriangleIntersection(t *testing.T) {
	v0, v1, v2 := Vec3{0, 0, 0}, Vec3{1, 0, 0}, Vec3{0, 1, 0}

	dist, u, v, hit := IntersectTriangle(NewRay(Vec3{0.2, 0.2, 1}, Vec3{0, 0, -1}), v0, v1, v2)
	if !hit {
		t.Fatal("expected ray to hit the triangle")
	}
	if math.Abs(float64(dist-1)) > 1e-5 {
		t.Fatalf("expected hit distance to be 1; got %f", dist)
	}
	if u < 0 || v < 0 || u+v > 1 {
		t.Fatalf("expected valid barycentric coordinates; got u=%f v=%f", u, v)
	}

	_, _, _, hit = IntersectTriangle(NewRay(Vec3{2, 2, 1}, Vec3{0, 0, -1}), v0, v1, v2)
	if hit {
		t.Fatal("expected ray to miss the triangle")
	}
}

func TestRayTriangleDegenerateCases(t *testing.T) {
	v0, v1, v2 := Vec3{0, 0, 0}, Vec3{1, 0, 0}, Vec3{0, 1, 0}

	type spec struct {
		ray Ray
		msg string
	}
	specs := []spec{
		{NewRay(Vec3{0.2, 0.2, 1}, Vec3{1, 0, 0}), "parallel ray"},
		{NewRay(Vec3{0.2, 0.2, 1}, Vec3{0, 0, 1}), "triangle behind ray"},
		{NewRay(Vec3{0.2, 0.2, 0}, Vec3{0, 0, -1}), "ray origin on triangle"},
	}
	for idx, s := range specs {
		if _, _, _, hit := IntersectTriangle(s.ray, v0, v1, v2); hit {
			t.Fatalf("[spec %d] expected no hit for %s", idx, s.msg)
		}
	}

	// Zero-area triangle
	if _, _, _, hit := IntersectTriangle(NewRay(Vec3{0, 0, 1}, Vec3{0, 0, -1}), v0, v0, v1); hit {
		t.Fatal("expected no hit for a degenerate triangle")
	}
}

func TestAABBIntersectRay(t *testing.T) {
	box := AABB{{-1, -1, -1}, {1, 1, 1}}

	type spec struct {
		ray    Ray
		expHit bool
	}
	specs := []spec{
		{NewRay(Vec3{0, 0, 5}, Vec3{0, 0, -1}), true},
		{NewRay(Vec3{0, 0, 5}, Vec3{0, 0, 1}), false},
		{NewRay(Vec3{3, 0, 5}, Vec3{0, 0, -1}), false},
		{NewRay(Vec3{0, 0, 0}, Vec3{1, 0, 0}), true},
		{NewRay(Vec3{-5, -5, -5}, Vec3{1, 1, 1}), true},
		{NewRay(Vec3{-5, 0.5, 0.5}, Vec3{1, 0, 0}), true},
		{NewRay(Vec3{-5, 1.5, 0.5}, Vec3{1, 0, 0}), false},
	}
	for idx, s := range specs {
		if hit := box.IntersectRay(s.ray); hit != s.expHit {
			t.Fatalf("[spec %d] expected hit to be %t; got %t", idx, s.expHit, hit)
		}
	}
}

func TestAABBUnionAndContainment(t *testing.T) {
	b := EmptyAABB().Extend(Vec3{0, 0, 0}).Extend(Vec3{1, 2, 3})
	if b != (AABB{{0, 0, 0}, {1, 2, 3}}) {
		t.Fatalf("expected extended box to be [(0,0,0) (1,2,3)]; got %v", b)
	}

	u := b.Union(TriangleAABB(Vec3{-1, 0, 0}, Vec3{0, 5, 0}, Vec3{0, 0, 0}))
	if !u.ContainsBox(b, 0) {
		t.Fatal("expected union to contain the original box")
	}
	if !u.Contains(Vec3{-1, 5, 3}, 0) {
		t.Fatalf("expected union %v to contain (-1, 5, 3)", u)
	}
	if exp := (Vec3{0, 2.5, 1.5}); !ApproxEqual(u.Center(), exp, 1e-6) {
		t.Fatalf("expected center to be %v; got %v", exp, u.Center())
	}
}
