package physics

import (
	"github.com/chewxy/math32"
	rl "github.com/gen2brain/raylib-go/raylib"
)

// contact is one touching point between bodies a and b. Normal points from b
// towards a, so moving a along it separates the pair.
type contact struct {
	Normal rl.Vector3
	Depth  float32
	Point  rl.Vector3
}

// collide runs the narrowphase for a pair, returning contacts in a/b order.
func collide(a, b *Body) []contact {
	if a.Shape == nil || b.Shape == nil {
		return nil
	}
	if a.Shape.Type() > b.Shape.Type() {
		contacts := collideOrdered(b, a)
		for i := range contacts {
			contacts[i].Normal = rl.Vector3Negate(contacts[i].Normal)
		}
		return contacts
	}
	return collideOrdered(a, b)
}

// collideOrdered expects a.Shape.Type() <= b.Shape.Type().
func collideOrdered(a, b *Body) []contact {
	switch sa := a.Shape.(type) {
	case *Sphere:
		switch sb := b.Shape.(type) {
		case *Sphere:
			return sphereSphere(a.Position, sa.Radius, b.Position, sb.Radius)
		case *Box:
			return sphereBox(a.Position, sa.Radius, sb.OBB(b.Position, b.Quaternion))
		case *Plane:
			return spherePlane(a.Position, sa.Radius, b.Position, sb.Normal(b.Quaternion))
		case *Trimesh:
			return sphereTrimesh(a.Position, sa.Radius, b, sb)
		}
	case *Box:
		obb := sa.OBB(a.Position, a.Quaternion)
		switch sb := b.Shape.(type) {
		case *Box:
			return boxBox(obb, sb.OBB(b.Position, b.Quaternion))
		case *Plane:
			corners := obb.Corners()
			return pointsPlane(corners[:], b.Position, sb.Normal(b.Quaternion))
		case *Trimesh:
			// Approximated by the box's inscribed sphere.
			r := math32.Min(sa.HalfExtents.X, math32.Min(sa.HalfExtents.Y, sa.HalfExtents.Z))
			return sphereTrimesh(a.Position, r, b, sb)
		}
	case *Plane:
		if sb, ok := b.Shape.(*Trimesh); ok {
			contacts := pointsPlane(trimeshWorldVertices(b, sb), a.Position, sa.Normal(a.Quaternion))
			for i := range contacts {
				contacts[i].Normal = rl.Vector3Negate(contacts[i].Normal)
			}
			return contacts
		}
	}
	return nil
}

func sphereSphere(pa rl.Vector3, ra float32, pb rl.Vector3, rb float32) []contact {
	diff := rl.Vector3Subtract(pa, pb)
	dist := rl.Vector3Length(diff)
	if dist >= ra+rb {
		return nil
	}
	normal := unitY
	if dist > epsilon {
		normal = rl.Vector3Scale(diff, 1/dist)
	}
	return []contact{{
		Normal: normal,
		Depth:  ra + rb - dist,
		Point:  rl.Vector3Add(pb, rl.Vector3Scale(normal, rb)),
	}}
}

func sphereBox(center rl.Vector3, radius float32, box OBB) []contact {
	closest := box.ClosestPoint(center)
	diff := rl.Vector3Subtract(center, closest)
	dist := rl.Vector3Length(diff)
	if dist >= radius {
		return nil
	}
	if dist > epsilon {
		return []contact{{Normal: rl.Vector3Scale(diff, 1/dist), Depth: radius - dist, Point: closest}}
	}

	// Center inside the box: leave through the nearest face.
	local := rl.Vector3Subtract(center, box.Center)
	half := [3]float32{box.HalfSize.X, box.HalfSize.Y, box.HalfSize.Z}
	best := -1
	bestGap := float32(math32.MaxFloat32)
	var sign float32
	for i, axis := range box.Axes {
		d := rl.Vector3DotProduct(local, axis)
		if gap := half[i] - math32.Abs(d); gap < bestGap {
			best, bestGap = i, gap
			sign = 1
			if d < 0 {
				sign = -1
			}
		}
	}
	normal := rl.Vector3Scale(box.Axes[best], sign)
	return []contact{{
		Normal: normal,
		Depth:  radius + bestGap,
		Point:  rl.Vector3Add(center, rl.Vector3Scale(normal, bestGap)),
	}}
}

func spherePlane(center rl.Vector3, radius float32, planePos, normal rl.Vector3) []contact {
	dist := rl.Vector3DotProduct(rl.Vector3Subtract(center, planePos), normal)
	if dist >= radius {
		return nil
	}
	return []contact{{
		Normal: normal,
		Depth:  radius - dist,
		Point:  rl.Vector3Subtract(center, rl.Vector3Scale(normal, dist)),
	}}
}

// pointsPlane yields one contact per point below the plane.
func pointsPlane(points []rl.Vector3, planePos, normal rl.Vector3) []contact {
	var out []contact
	for _, p := range points {
		d := rl.Vector3DotProduct(rl.Vector3Subtract(p, planePos), normal)
		if d < 0 {
			out = append(out, contact{Normal: normal, Depth: -d, Point: p})
		}
	}
	return out
}

func trimeshWorldVertices(body *Body, mesh *Trimesh) []rl.Vector3 {
	out := make([]rl.Vector3, 0, mesh.VertexCount())
	for i := 0; i+2 < len(mesh.Vertices); i += 3 {
		local := rl.Vector3{X: mesh.Vertices[i], Y: mesh.Vertices[i+1], Z: mesh.Vertices[i+2]}
		out = append(out, toWorld(local, body.Position, body.Quaternion))
	}
	return out
}

func sphereTrimesh(center rl.Vector3, radius float32, body *Body, mesh *Trimesh) []contact {
	local := toLocal(center, body.Position, body.Quaternion)
	hit, push, point := mesh.SphereIntersect(local, radius)
	if !hit {
		return nil
	}
	depth := rl.Vector3Length(push)
	if depth < epsilon {
		return nil
	}
	normal := rl.Vector3RotateByQuaternion(rl.Vector3Scale(push, 1/depth), body.Quaternion)
	return []contact{{Normal: normal, Depth: depth, Point: toWorld(point, body.Position, body.Quaternion)}}
}

func boxBox(a, b OBB) []contact {
	mtv := a.ResolveOBB(b)
	depth := rl.Vector3Length(mtv)
	if depth < epsilon {
		return nil
	}
	normal := rl.Vector3Scale(mtv, 1/depth)

	var out []contact
	for _, c := range a.Corners() {
		if b.contains(c, epsilon) {
			out = append(out, contact{Normal: normal, Depth: depth, Point: c})
		}
	}
	for _, c := range b.Corners() {
		if a.contains(c, epsilon) {
			out = append(out, contact{Normal: normal, Depth: depth, Point: c})
		}
	}
	if len(out) == 0 {
		// Edge-edge: use the point midway between the facing surfaces.
		pa := a.ClosestPoint(b.Center)
		pb := b.ClosestPoint(a.Center)
		out = append(out, contact{Normal: normal, Depth: depth, Point: rl.Vector3Lerp(pa, pb, 0.5)})
	}
	return out
}

func (o OBB) contains(p rl.Vector3, tolerance float32) bool {
	local := rl.Vector3Subtract(p, o.Center)
	half := [3]float32{o.HalfSize.X, o.HalfSize.Y, o.HalfSize.Z}
	for i, axis := range o.Axes {
		if math32.Abs(rl.Vector3DotProduct(local, axis)) > half[i]+tolerance {
			return false
		}
	}
	return true
}
