package types

import "math"

// A rotation quaternion. Used for orienting the camera look direction.
type Quat struct {
	V Vec3
	W float32
}

// Create identity quaternion.
func QuatIdent() Quat {
	return Quat{
		V: Vec3{},
		W: 1.0,
	}
}

// Create a quaternion from an axis vector and an angle in radians.
func QuatFromAxisAngle(axis Vec3, angle float32) Quat {
	sin := float32(math.Sin(float64(angle * 0.5)))
	cos := float32(math.Cos(float64(angle * 0.5)))
	return Quat{
		V: axis.Normalize().Mul(sin),
		W: cos,
	}
}

// Rotate a vector by the rotation this quaternion represents.
func (q Quat) Rotate(v Vec3) Vec3 {
	cross := q.V.Cross(v)
	// v + 2q_w * (q_v x v) + 2q_v x (q_v x v)
	return v.Add(cross.Mul(2 * q.W)).Add(q.V.Mul(2).Cross(cross))
}

// Multiply two quaternions. The result applies q2 first and then q. Note
// that multiplication is not commutative.
func (q Quat) Mul(q2 Quat) Quat {
	return Quat{
		q.V.Cross(q2.V).Add(q2.V.Mul(q.W)).Add(q.V.Mul(q2.W)),
		q.W*q2.W - q.V.Dot(q2.V),
	}
}

// Get the quaternion length.
func (q Quat) Len() float32 {
	return float32(math.Sqrt(float64(q.W*q.W + q.V.LenSq())))
}

// Normalize the quaternion, returning its versor (unit quaternion).
func (q Quat) Normalize() Quat {
	length := q.Len()

	absDelta := 1 - length
	if absDelta < 0 {
		absDelta = -absDelta
	}

	if absDelta < floatCmpEpsilon {
		return q
	}
	if length == 0 {
		return QuatIdent()
	}
	if length == float32(math.Inf(1)) {
		length = math.MaxFloat32
	}

	return Quat{q.V.Mul(1 / length), q.W * 1 / length}
}
