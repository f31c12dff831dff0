package types

import (
	"math"
	"testing"
)

func TestNormalize(t *testing.T) {
	specs := []Vec3{
		{1, 0, 0},
		{3, 4, 0},
		{-2, 5, 0.25},
		{1e-3, 1e-3, 1e-3},
		{100, -200, 300},
	}

	for idx, v := range specs {
		n := v.Normalize()
		if l := n.Len(); math.Abs(float64(l-1)) > 1e-5 {
			t.Fatalf("[spec %d] expected normalized vector length to be 1; got %f", idx, l)
		}

		nn := n.Normalize()
		if !ApproxEqual(n, nn, 1e-6) {
			t.Fatalf("[spec %d] expected normalize to be idempotent; got %v and %v", idx, n, nn)
		}
	}
}

func TestNormalizeZeroVector(t *testing.T) {
	n := Vec3{}.Normalize()
	if !n.IsZero() {
		t.Fatalf("expected zero vector to normalize to zero; got %v", n)
	}
}

func TestCrossAndDot(t *testing.T) {
	x := Vec3{1, 0, 0}
	y := Vec3{0, 1, 0}

	z := x.Cross(y)
	if z != (Vec3{0, 0, 1}) {
		t.Fatalf("expected x cross y to be (0, 0, 1); got %v", z)
	}

	if d := z.Dot(x); d != 0 {
		t.Fatalf("expected cross product to be orthogonal to its inputs; got dot %f", d)
	}
}

func TestReflect(t *testing.T) {
	in := Vec3{1, -1, 0}
	n := Vec3{0, 1, 0}
	exp := Vec3{1, 1, 0}
	if out := in.Reflect(n); !ApproxEqual(out, exp, 1e-6) {
		t.Fatalf("expected reflected vector to be %v; got %v", exp, out)
	}
}

func TestClampAndDiv(t *testing.T) {
	v := Vec3{-1, 0.5, 2}.Clamp(0, 1)
	if v != (Vec3{0, 0.5, 1}) {
		t.Fatalf("expected clamped vector to be (0, 0.5, 1); got %v", v)
	}

	if d := (Vec3{1, 2, 3}).Div(0); !d.IsZero() {
		t.Fatalf("expected division by zero to return the zero vector; got %v", d)
	}
}

func TestQuatRotate(t *testing.T) {
	q := QuatFromAxisAngle(Vec3{0, 1, 0}, math.Pi/2)
	out := q.Rotate(Vec3{0, 0, -1})
	exp := Vec3{-1, 0, 0}
	if !ApproxEqual(out, exp, 1e-5) {
		t.Fatalf("expected rotated vector to be %v; got %v", exp, out)
	}

	ident := QuatIdent().Mul(q).Normalize()
	if !ApproxEqual(ident.Rotate(Vec3{0, 0, -1}), exp, 1e-5) {
		t.Fatal("expected multiplication with the identity quaternion to preserve the rotation")
	}
}
