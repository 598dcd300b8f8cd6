package physics

import (
	"github.com/chewxy/math32"
	rl "github.com/gen2brain/raylib-go/raylib"
)

type RaycastHit struct {
	Body     *Body
	Point    rl.Vector3
	Normal   rl.Vector3
	Distance float32
}

// Raycast returns the closest body hit by the ray within maxDistance.
func (w *World) Raycast(origin, direction rl.Vector3, maxDistance float32) (RaycastHit, bool) {
	if isZero(direction) {
		return RaycastHit{}, false
	}
	direction = rl.Vector3Normalize(direction)
	closest := RaycastHit{Distance: maxDistance}
	hit := false

	for _, b := range w.bodies {
		if b.Shape == nil {
			continue
		}
		if b.Shape.Type() != ShapePlane && !b.Bounds().intersectsRay(origin, direction, closest.Distance) {
			continue
		}
		if h, ok := raycastBody(origin, direction, b, closest.Distance); ok && h.Distance <= closest.Distance {
			h.Body = b
			closest = h
			hit = true
		}
	}
	return closest, hit
}

func raycastBody(origin, dir rl.Vector3, b *Body, maxDistance float32) (RaycastHit, bool) {
	switch s := b.Shape.(type) {
	case *Sphere:
		return raycastSphere(origin, dir, b.Position, s.Radius, maxDistance)
	case *Box:
		return raycastBox(origin, dir, s.OBB(b.Position, b.Quaternion), maxDistance)
	case *Plane:
		return raycastPlane(origin, dir, b.Position, s.Normal(b.Quaternion), maxDistance)
	case *Trimesh:
		localOrigin := toLocal(origin, b.Position, b.Quaternion)
		localDir := rl.Vector3RotateByQuaternion(dir, rl.QuaternionInvert(b.Quaternion))
		t, n, ok := s.Raycast(localOrigin, localDir, maxDistance)
		if !ok {
			return RaycastHit{}, false
		}
		return RaycastHit{
			Point:    rl.Vector3Add(origin, rl.Vector3Scale(dir, t)),
			Normal:   rl.Vector3RotateByQuaternion(n, b.Quaternion),
			Distance: t,
		}, true
	}
	return RaycastHit{}, false
}

func raycastSphere(origin, direction, center rl.Vector3, radius, maxDistance float32) (RaycastHit, bool) {
	oc := rl.Vector3Subtract(origin, center)
	b := rl.Vector3DotProduct(oc, direction)
	c := rl.Vector3DotProduct(oc, oc) - radius*radius

	discriminant := b*b - c
	if discriminant < 0 {
		return RaycastHit{}, false
	}
	sq := math32.Sqrt(discriminant)
	t := -b - sq
	if t < 0 {
		t = -b + sq
	}
	if t < 0 || t > maxDistance {
		return RaycastHit{}, false
	}

	point := rl.Vector3Add(origin, rl.Vector3Scale(direction, t))
	normal := rl.Vector3Normalize(rl.Vector3Subtract(point, center))
	return RaycastHit{Point: point, Normal: normal, Distance: t}, true
}

// raycastBox runs the slab test in the box's local frame.
func raycastBox(origin, direction rl.Vector3, box OBB, maxDistance float32) (RaycastHit, bool) {
	rel := rl.Vector3Subtract(origin, box.Center)
	half := [3]float32{box.HalfSize.X, box.HalfSize.Y, box.HalfSize.Z}

	tmin := float32(-math32.MaxFloat32)
	tmax := float32(math32.MaxFloat32)
	enterAxis, enterSign := -1, float32(0)

	for i, axis := range box.Axes {
		o := rl.Vector3DotProduct(rel, axis)
		d := rl.Vector3DotProduct(direction, axis)
		if math32.Abs(d) < 1e-8 {
			if o < -half[i] || o > half[i] {
				return RaycastHit{}, false
			}
			continue
		}
		t1 := (-half[i] - o) / d
		t2 := (half[i] - o) / d
		sign := float32(-1)
		if t1 > t2 {
			t1, t2 = t2, t1
			sign = 1
		}
		if t1 > tmin {
			tmin, enterAxis, enterSign = t1, i, sign
		}
		if t2 < tmax {
			tmax = t2
		}
		if tmin > tmax {
			return RaycastHit{}, false
		}
	}

	if tmax < 0 || tmin > maxDistance {
		return RaycastHit{}, false
	}
	t := tmin
	if t < 0 {
		// Origin inside the box
		t = 0
		enterAxis = -1
	}

	point := rl.Vector3Add(origin, rl.Vector3Scale(direction, t))
	normal := rl.Vector3Negate(direction)
	if enterAxis >= 0 {
		normal = rl.Vector3Scale(box.Axes[enterAxis], enterSign)
	}
	return RaycastHit{Point: point, Normal: normal, Distance: t}, true
}

func raycastPlane(origin, direction, planePos, normal rl.Vector3, maxDistance float32) (RaycastHit, bool) {
	denom := rl.Vector3DotProduct(direction, normal)
	if denom >= 0 {
		// Parallel or hitting from behind
		return RaycastHit{}, false
	}
	t := rl.Vector3DotProduct(rl.Vector3Subtract(planePos, origin), normal) / denom
	if t < 0 || t > maxDistance {
		return RaycastHit{}, false
	}
	return RaycastHit{
		Point:    rl.Vector3Add(origin, rl.Vector3Scale(direction, t)),
		Normal:   normal,
		Distance: t,
	}, true
}
