package physics

import (
	"github.com/chewxy/math32"
	rl "github.com/gen2brain/raylib-go/raylib"
)

const epsilon = 1e-4

var (
	unitX = rl.Vector3{X: 1}
	unitY = rl.Vector3{Y: 1}
	unitZ = rl.Vector3{Z: 1}
)

func cross(a, b rl.Vector3) rl.Vector3 {
	return rl.Vector3{
		X: a.Y*b.Z - a.Z*b.Y,
		Y: a.Z*b.X - a.X*b.Z,
		Z: a.X*b.Y - a.Y*b.X,
	}
}

func clampf(v, min, max float32) float32 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

func isZero(v rl.Vector3) bool {
	return v.X == 0 && v.Y == 0 && v.Z == 0
}

// mulComponents multiplies two vectors component-wise.
func mulComponents(a, b rl.Vector3) rl.Vector3 {
	return rl.Vector3{X: a.X * b.X, Y: a.Y * b.Y, Z: a.Z * b.Z}
}

func axisValue(v rl.Vector3, axis int) float32 {
	switch axis {
	case 0:
		return v.X
	case 1:
		return v.Y
	default:
		return v.Z
	}
}

func vector3Min(a, b rl.Vector3) rl.Vector3 {
	return rl.Vector3{X: math32.Min(a.X, b.X), Y: math32.Min(a.Y, b.Y), Z: math32.Min(a.Z, b.Z)}
}

func vector3Max(a, b rl.Vector3) rl.Vector3 {
	return rl.Vector3{X: math32.Max(a.X, b.X), Y: math32.Max(a.Y, b.Y), Z: math32.Max(a.Z, b.Z)}
}

// toLocal expresses a world-space point in the frame of a body at pos with rotation q.
func toLocal(point, pos rl.Vector3, q rl.Quaternion) rl.Vector3 {
	return rl.Vector3RotateByQuaternion(rl.Vector3Subtract(point, pos), rl.QuaternionInvert(q))
}

func toWorld(local, pos rl.Vector3, q rl.Quaternion) rl.Vector3 {
	return rl.Vector3Add(pos, rl.Vector3RotateByQuaternion(local, q))
}

// integrateQuaternion advances q by angular velocity w (rad/s) over dt.
func integrateQuaternion(q rl.Quaternion, w rl.Vector3, dt float32) rl.Quaternion {
	spin := rl.QuaternionMultiply(rl.Quaternion{X: w.X, Y: w.Y, Z: w.Z, W: 0}, q)
	half := 0.5 * dt
	q.X += spin.X * half
	q.Y += spin.Y * half
	q.Z += spin.Z * half
	q.W += spin.W * half
	return rl.QuaternionNormalize(q)
}
