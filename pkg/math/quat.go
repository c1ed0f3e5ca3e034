package math

import "math"

// Quat represents a quaternion for 3D rotations.
// Components are stored as X, Y, Z, W where W is the scalar part.
type Quat struct {
	X, Y, Z, W float32
}

// QuatIdentity returns an identity quaternion (no rotation).
func QuatIdentity() Quat {
	return Quat{X: 0, Y: 0, Z: 0, W: 1}
}

// QuatFromAxisAngle creates a quaternion from axis-angle rotation.
// axis should be normalized, angle is in radians.
func QuatFromAxisAngle(axis Vec3, angle float32) Quat {
	halfAngle := angle / 2
	s := float32(math.Sin(float64(halfAngle)))
	return Quat{
		X: axis.X * s,
		Y: axis.Y * s,
		Z: axis.Z * s,
		W: float32(math.Cos(float64(halfAngle))),
	}
}

// QuatFromAxes creates a quaternion from three orthonormal basis vectors
// forming the columns of a rotation matrix.
func QuatFromAxes(x, y, z Vec3) Quat {
	// Branch on the diagonal elements for numerical stability.
	if z.Z <= 0 {
		dif10 := y.Y - x.X
		omm22 := 1 - z.Z
		if dif10 <= 0 {
			fourXSq := omm22 - dif10
			inv4x := 0.5 / float32(math.Sqrt(float64(fourXSq)))
			return Quat{
				X: fourXSq * inv4x,
				Y: (x.Y + y.X) * inv4x,
				Z: (x.Z + z.X) * inv4x,
				W: (y.Z - z.Y) * inv4x,
			}
		}
		fourYSq := omm22 + dif10
		inv4y := 0.5 / float32(math.Sqrt(float64(fourYSq)))
		return Quat{
			X: (x.Y + y.X) * inv4y,
			Y: fourYSq * inv4y,
			Z: (y.Z + z.Y) * inv4y,
			W: (z.X - x.Z) * inv4y,
		}
	}
	sum10 := y.Y + x.X
	opm22 := 1 + z.Z
	if sum10 <= 0 {
		fourZSq := opm22 - sum10
		inv4z := 0.5 / float32(math.Sqrt(float64(fourZSq)))
		return Quat{
			X: (x.Z + z.X) * inv4z,
			Y: (y.Z + z.Y) * inv4z,
			Z: fourZSq * inv4z,
			W: (x.Y - y.X) * inv4z,
		}
	}
	fourWSq := opm22 + sum10
	inv4w := 0.5 / float32(math.Sqrt(float64(fourWSq)))
	return Quat{
		X: (y.Z - z.Y) * inv4w,
		Y: (z.X - x.Z) * inv4w,
		Z: (x.Y - y.X) * inv4w,
		W: fourWSq * inv4w,
	}
}

// Normalize returns a normalized quaternion.
func (q Quat) Normalize() Quat {
	length := float32(math.Sqrt(float64(q.X*q.X + q.Y*q.Y + q.Z*q.Z + q.W*q.W)))
	if length < 0.0001 {
		return QuatIdentity()
	}
	invLen := 1.0 / length
	return Quat{
		X: q.X * invLen,
		Y: q.Y * invLen,
		Z: q.Z * invLen,
		W: q.W * invLen,
	}
}

// Dot returns the dot product of two quaternions.
func (q Quat) Dot(other Quat) float32 {
	return q.X*other.X + q.Y*other.Y + q.Z*other.Z + q.W*other.W
}

// Mul multiplies two quaternions (combines rotations).
func (q Quat) Mul(other Quat) Quat {
	return Quat{
		X: q.W*other.X + q.X*other.W + q.Y*other.Z - q.Z*other.Y,
		Y: q.W*other.Y - q.X*other.Z + q.Y*other.W + q.Z*other.X,
		Z: q.W*other.Z + q.X*other.Y - q.Y*other.X + q.Z*other.W,
		W: q.W*other.W - q.X*other.X - q.Y*other.Y - q.Z*other.Z,
	}
}

// ToAxisAngle converts the quaternion to a rotation axis and an angle
// in radians in the range [0, 2*pi).
func (q Quat) ToAxisAngle() (Vec3, float32) {
	const epsilon = 1e-8
	v := Vec3{q.X, q.Y, q.Z}
	length := v.Length()
	if length < epsilon {
		return Vec3{1, 0, 0}, 0
	}
	angle := 2 * float32(math.Atan2(float64(length), float64(q.W)))
	return v.Scale(1 / length), angle
}

// ToMat4 converts the quaternion to a 4x4 rotation matrix.
func (q Quat) ToMat4() Mat4 {
	// Normalize first
	q = q.Normalize()

	xx := q.X * q.X
	xy := q.X * q.Y
	xz := q.X * q.Z
	xw := q.X * q.W
	yy := q.Y * q.Y
	yz := q.Y * q.Z
	yw := q.Y * q.W
	zz := q.Z * q.Z
	zw := q.Z * q.W

	return Mat4{
		1 - 2*(yy+zz), 2 * (xy + zw), 2 * (xz - yw), 0,
		2 * (xy - zw), 1 - 2*(xx+zz), 2 * (yz + xw), 0,
		2 * (xz + yw), 2 * (yz - xw), 1 - 2*(xx+yy), 0,
		0, 0, 0, 1,
	}
}
