package physics

import (
	"github.com/chewxy/math32"
	rl "github.com/gen2brain/raylib-go/raylib"
)

type AABB struct {
	Min rl.Vector3
	Max rl.Vector3
}

// emptyAABB is inverted so the first Expand sets both corners.
func emptyAABB() AABB {
	return AABB{
		Min: rl.Vector3{X: math32.MaxFloat32, Y: math32.MaxFloat32, Z: math32.MaxFloat32},
		Max: rl.Vector3{X: -math32.MaxFloat32, Y: -math32.MaxFloat32, Z: -math32.MaxFloat32},
	}
}

// infiniteAABB overlaps everything. Planes use it.
func infiniteAABB() AABB {
	return AABB{
		Min: rl.Vector3{X: -math32.MaxFloat32, Y: -math32.MaxFloat32, Z: -math32.MaxFloat32},
		Max: rl.Vector3{X: math32.MaxFloat32, Y: math32.MaxFloat32, Z: math32.MaxFloat32},
	}
}

// NewAABBFromCenter creates an AABB from a center point and half extents.
func NewAABBFromCenter(center, half rl.Vector3) AABB {
	return AABB{
		Min: rl.Vector3Subtract(center, half),
		Max: rl.Vector3Add(center, half),
	}
}

func (a AABB) Intersects(b AABB) bool {
	return a.Min.X <= b.Max.X && a.Max.X >= b.Min.X &&
		a.Min.Y <= b.Max.Y && a.Max.Y >= b.Min.Y &&
		a.Min.Z <= b.Max.Z && a.Max.Z >= b.Min.Z
}

func (a AABB) Expand(p rl.Vector3) AABB {
	return AABB{Min: vector3Min(a.Min, p), Max: vector3Max(a.Max, p)}
}

func (a AABB) Union(b AABB) AABB {
	return AABB{Min: vector3Min(a.Min, b.Min), Max: vector3Max(a.Max, b.Max)}
}

func (a AABB) Corners() [8]rl.Vector3 {
	return [8]rl.Vector3{
		{X: a.Min.X, Y: a.Min.Y, Z: a.Min.Z},
		{X: a.Max.X, Y: a.Min.Y, Z: a.Min.Z},
		{X: a.Min.X, Y: a.Max.Y, Z: a.Min.Z},
		{X: a.Max.X, Y: a.Max.Y, Z: a.Min.Z},
		{X: a.Min.X, Y: a.Min.Y, Z: a.Max.Z},
		{X: a.Max.X, Y: a.Min.Y, Z: a.Max.Z},
		{X: a.Min.X, Y: a.Max.Y, Z: a.Max.Z},
		{X: a.Max.X, Y: a.Max.Y, Z: a.Max.Z},
	}
}

// intersectsRay is the slab test. It reports whether the ray enters the box within maxDistance.
func (a AABB) intersectsRay(origin, dir rl.Vector3, maxDistance float32) bool {
	tmin, tmax := float32(0), maxDistance
	for axis := 0; axis < 3; axis++ {
		o, d := axisValue(origin, axis), axisValue(dir, axis)
		lo, hi := axisValue(a.Min, axis), axisValue(a.Max, axis)
		if math32.Abs(d) < 1e-8 {
			if o < lo || o > hi {
				return false
			}
			continue
		}
		t1, t2 := (lo-o)/d, (hi-o)/d
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		tmin = math32.Max(tmin, t1)
		tmax = math32.Min(tmax, t2)
		if tmin > tmax {
			return false
		}
	}
	return true
}
