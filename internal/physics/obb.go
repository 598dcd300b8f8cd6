package physics

import (
	"github.com/chewxy/math32"
	rl "github.com/gen2brain/raylib-go/raylib"
)

// OBB represents an Oriented Bounding Box
type OBB struct {
	Center   rl.Vector3    // World-space center
	HalfSize rl.Vector3    // Half-extents along local axes
	Axes     [3]rl.Vector3 // Local X, Y, Z axes (rotated)
}

// NewOBB creates an OBB from center, half extents and orientation.
func NewOBB(center, halfSize rl.Vector3, q rl.Quaternion) OBB {
	return OBB{
		Center:   center,
		HalfSize: halfSize,
		Axes: [3]rl.Vector3{
			rl.Vector3RotateByQuaternion(unitX, q),
			rl.Vector3RotateByQuaternion(unitY, q),
			rl.Vector3RotateByQuaternion(unitZ, q),
		},
	}
}

// projectedRadius is the half length of the box's shadow on axis.
func (o OBB) projectedRadius(axis rl.Vector3) float32 {
	return o.HalfSize.X*math32.Abs(rl.Vector3DotProduct(o.Axes[0], axis)) +
		o.HalfSize.Y*math32.Abs(rl.Vector3DotProduct(o.Axes[1], axis)) +
		o.HalfSize.Z*math32.Abs(rl.Vector3DotProduct(o.Axes[2], axis))
}

// Bounds returns the world-space AABB enclosing the OBB.
func (o OBB) Bounds() AABB {
	half := rl.Vector3{
		X: o.projectedRadius(unitX),
		Y: o.projectedRadius(unitY),
		Z: o.projectedRadius(unitZ),
	}
	return NewAABBFromCenter(o.Center, half)
}

// IntersectsOBB tests if two OBBs intersect using the Separating Axis Theorem
func (a OBB) IntersectsOBB(b OBB) bool {
	t := rl.Vector3Subtract(b.Center, a.Center)
	for _, axis := range a.satAxes(b) {
		if !overlapOnAxis(a, b, axis, t) {
			return false
		}
	}
	return true
}

// satAxes lists the 15 candidate separating axes, skipping degenerate edge crosses.
func (a OBB) satAxes(b OBB) []rl.Vector3 {
	axes := make([]rl.Vector3, 0, 15)
	axes = append(axes, a.Axes[:]...)
	axes = append(axes, b.Axes[:]...)
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			axis := cross(a.Axes[i], b.Axes[j])
			if rl.Vector3Length(axis) > epsilon {
				axes = append(axes, rl.Vector3Normalize(axis))
			}
		}
	}
	return axes
}

func overlapOnAxis(a, b OBB, axis, t rl.Vector3) bool {
	distance := math32.Abs(rl.Vector3DotProduct(t, axis))
	return distance <= a.projectedRadius(axis)+b.projectedRadius(axis)
}

// ResolveOBB returns the minimum translation vector to push 'a' out of 'b'
// Returns zero vector if no overlap
func (a OBB) ResolveOBB(b OBB) rl.Vector3 {
	t := rl.Vector3Subtract(b.Center, a.Center)
	minPenetration := float32(math32.MaxFloat32)
	var mtv rl.Vector3

	for _, axis := range a.satAxes(b) {
		dist := rl.Vector3DotProduct(t, axis)
		penetration := a.projectedRadius(axis) + b.projectedRadius(axis) - math32.Abs(dist)
		if penetration < 0 {
			return rl.Vector3Zero()
		}
		if penetration < minPenetration {
			minPenetration = penetration
			// Push in the direction away from B
			if dist < 0 {
				mtv = rl.Vector3Scale(axis, penetration)
			} else {
				mtv = rl.Vector3Scale(axis, -penetration)
			}
		}
	}

	return mtv
}

// ClosestPoint returns the point of the box (surface or interior) nearest to point.
func (o OBB) ClosestPoint(point rl.Vector3) rl.Vector3 {
	local := rl.Vector3Subtract(point, o.Center)
	result := o.Center
	half := [3]float32{o.HalfSize.X, o.HalfSize.Y, o.HalfSize.Z}
	for i, axis := range o.Axes {
		d := clampf(rl.Vector3DotProduct(local, axis), -half[i], half[i])
		result = rl.Vector3Add(result, rl.Vector3Scale(axis, d))
	}
	return result
}

// Corners returns the eight world-space vertices.
func (o OBB) Corners() [8]rl.Vector3 {
	var out [8]rl.Vector3
	for i := 0; i < 8; i++ {
		sx, sy, sz := float32(-1), float32(-1), float32(-1)
		if i&1 != 0 {
			sx = 1
		}
		if i&2 != 0 {
			sy = 1
		}
		if i&4 != 0 {
			sz = 1
		}
		p := o.Center
		p = rl.Vector3Add(p, rl.Vector3Scale(o.Axes[0], sx*o.HalfSize.X))
		p = rl.Vector3Add(p, rl.Vector3Scale(o.Axes[1], sy*o.HalfSize.Y))
		p = rl.Vector3Add(p, rl.Vector3Scale(o.Axes[2], sz*o.HalfSize.Z))
		out[i] = p
	}
	return out
}
