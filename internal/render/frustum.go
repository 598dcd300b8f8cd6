package render

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"ballpit/internal/physics"
)

const (
	NearPlane float32 = 0.1
	FarPlane  float32 = 1000.0
)

// Frustum represents the 6 planes of a view frustum for culling
type Frustum struct {
	planes [6]Plane // left, right, bottom, top, near, far
}

// Plane represents a plane in 3D space (ax + by + cz + d = 0)
type Plane struct {
	normal   rl.Vector3
	distance float32
}

// ExtractFrustum extracts frustum planes from the camera's view-projection
// matrix (Gribb/Hartmann). aspect is width over height.
func ExtractFrustum(camera rl.Camera3D, aspect float32) Frustum {
	view := rl.MatrixLookAt(camera.Position, camera.Target, camera.Up)

	var proj rl.Matrix
	if camera.Projection == rl.CameraPerspective {
		proj = rl.MatrixPerspective(camera.Fovy*rl.Deg2rad, aspect, NearPlane, FarPlane)
	} else {
		halfH := camera.Fovy / 2.0
		halfW := halfH * aspect
		proj = rl.MatrixOrtho(-halfW, halfW, -halfH, halfH, NearPlane, FarPlane)
	}

	// VP = P * V
	vp := rl.MatrixMultiply(view, proj)

	rows := [4]rl.Vector3{
		{X: vp.M0, Y: vp.M4, Z: vp.M8},
		{X: vp.M1, Y: vp.M5, Z: vp.M9},
		{X: vp.M2, Y: vp.M6, Z: vp.M10},
		{X: vp.M3, Y: vp.M7, Z: vp.M11},
	}
	d := [4]float32{vp.M12, vp.M13, vp.M14, vp.M15}

	var f Frustum
	for i := 0; i < 3; i++ {
		f.planes[2*i] = normalizePlane(Plane{
			normal:   rl.Vector3Add(rows[3], rows[i]),
			distance: d[3] + d[i],
		})
		f.planes[2*i+1] = normalizePlane(Plane{
			normal:   rl.Vector3Subtract(rows[3], rows[i]),
			distance: d[3] - d[i],
		})
	}
	return f
}

func normalizePlane(p Plane) Plane {
	length := rl.Vector3Length(p.normal)
	if length == 0 {
		return p
	}
	return Plane{
		normal:   rl.Vector3Scale(p.normal, 1.0/length),
		distance: p.distance / length,
	}
}

// ContainsSphere tests if a sphere is inside or intersects the frustum
func (f *Frustum) ContainsSphere(center rl.Vector3, radius float32) bool {
	for i := 0; i < 6; i++ {
		dist := rl.Vector3DotProduct(f.planes[i].normal, center) + f.planes[i].distance
		if dist < -radius {
			return false
		}
	}
	return true
}

func (f *Frustum) ContainsPoint(point rl.Vector3) bool {
	return f.ContainsSphere(point, 0)
}

// ContainsAABB is conservative: it may accept a box that is just outside a
// corner of the frustum.
func (f *Frustum) ContainsAABB(box physics.AABB) bool {
	for i := 0; i < 6; i++ {
		n := f.planes[i].normal
		// Corner furthest along the plane normal.
		p := box.Min
		if n.X >= 0 {
			p.X = box.Max.X
		}
		if n.Y >= 0 {
			p.Y = box.Max.Y
		}
		if n.Z >= 0 {
			p.Z = box.Max.Z
		}
		if rl.Vector3DotProduct(n, p)+f.planes[i].distance < 0 {
			return false
		}
	}
	return true
}

// Visible returns the bodies whose bounds touch the frustum. Planes are
// infinite and always visible.
func (f *Frustum) Visible(bodies []*physics.Body) []*physics.Body {
	visible := make([]*physics.Body, 0, len(bodies))
	for _, b := range bodies {
		if b.Shape != nil && b.Shape.Type() == physics.ShapePlane {
			visible = append(visible, b)
			continue
		}
		if f.ContainsAABB(b.Bounds()) {
			visible = append(visible, b)
		}
	}
	return visible
}
