// Package render draws the ball pit with raylib: entity models where they
// are available and debug shapes for physics bodies.
package render

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"ballpit/internal/assets"
	"ballpit/internal/engine"
	"ballpit/internal/physics"
)

var (
	ColliderColor = rl.NewColor(90, 160, 220, 255)
	ColliderFill  = rl.NewColor(90, 160, 220, 60)
	SleepingColor = rl.NewColor(120, 120, 140, 255)
)

type Renderer struct {
	Models *assets.Models
	// Debug draws every physics body, not just the ones without a model.
	Debug bool

	frustum Frustum
	drawn   int
	culled  int
}

func NewRenderer(models *assets.Models) *Renderer {
	return &Renderer{Models: models}
}

// Begin starts a frame for camera. Call between rl.BeginMode3D and rl.EndMode3D.
func (r *Renderer) Begin(camera rl.Camera3D) {
	aspect := float32(rl.GetScreenWidth()) / float32(rl.GetScreenHeight())
	r.frustum = ExtractFrustum(camera, aspect)
	r.drawn, r.culled = 0, 0
}

// Stats reports how many bodies were drawn and culled since Begin.
func (r *Renderer) Stats() (drawn, culled int) {
	return r.drawn, r.culled
}

// DrawEntity draws g's model and reports whether it had one to draw.
func (r *Renderer) DrawEntity(g *engine.GameObject, tint rl.Color) bool {
	if g == nil || !g.Active || r.Models == nil {
		return false
	}
	model, ok := r.Models.Load(g.Model)
	if !ok {
		return false
	}
	model.Transform = ModelMatrix(g.Transform)
	rl.DrawModel(model, rl.Vector3Zero(), 1.0, tint)
	return true
}

// ModelMatrix combines scale, then rotation, then translation.
func ModelMatrix(t engine.Transform) rl.Matrix {
	scale := rl.MatrixScale(t.Scale.X, t.Scale.Y, t.Scale.Z)
	rot := rl.QuaternionToMatrix(t.Rotation)
	trans := rl.MatrixTranslate(t.Position.X, t.Position.Y, t.Position.Z)
	return rl.MatrixMultiply(rl.MatrixMultiply(scale, rot), trans)
}

// DrawBodies draws the visible bodies as debug shapes.
func (r *Renderer) DrawBodies(bodies []*physics.Body, color rl.Color) {
	visible := r.frustum.Visible(bodies)
	r.culled += len(bodies) - len(visible)
	for _, b := range visible {
		r.DrawBody(b, color)
	}
}

func (r *Renderer) DrawBody(b *physics.Body, color rl.Color) {
	if b.IsSleeping() {
		color = SleepingColor
	}
	r.drawn++
	switch s := b.Shape.(type) {
	case *physics.Sphere:
		rl.DrawSphere(b.Position, s.Radius, color)
		rl.DrawSphereWires(b.Position, s.Radius, 8, 8, rl.Fade(rl.Black, 0.3))
	case *physics.Box:
		for _, e := range BoxEdges(s.OBB(b.Position, b.Quaternion).Corners()) {
			rl.DrawLine3D(e[0], e[1], color)
		}
	case *physics.Plane:
		rl.DrawGrid(60, 1)
	case *physics.Trimesh:
		for _, tri := range WorldTriangles(s, b.Position, b.Quaternion) {
			rl.DrawTriangle3D(tri[0], tri[1], tri[2], ColliderFill)
			rl.DrawTriangle3D(tri[0], tri[2], tri[1], ColliderFill)
			rl.DrawLine3D(tri[0], tri[1], color)
			rl.DrawLine3D(tri[1], tri[2], color)
			rl.DrawLine3D(tri[2], tri[0], color)
		}
	}
}

// BoxEdges pairs up the 12 edges of a box from corners indexed by sign bits
// (bit 0 x, bit 1 y, bit 2 z).
func BoxEdges(c [8]rl.Vector3) [12][2]rl.Vector3 {
	var edges [12][2]rl.Vector3
	n := 0
	for i := 0; i < 8; i++ {
		for _, bit := range []int{1, 2, 4} {
			if i&bit == 0 {
				edges[n] = [2]rl.Vector3{c[i], c[i|bit]}
				n++
			}
		}
	}
	return edges
}

// WorldTriangles returns the mesh triangles placed at pos and q.
func WorldTriangles(m *physics.Trimesh, pos rl.Vector3, q rl.Quaternion) [][3]rl.Vector3 {
	out := make([][3]rl.Vector3, len(m.Triangles))
	for i, tri := range m.Triangles {
		out[i] = [3]rl.Vector3{
			rl.Vector3Add(pos, rl.Vector3RotateByQuaternion(tri.V0, q)),
			rl.Vector3Add(pos, rl.Vector3RotateByQuaternion(tri.V1, q)),
			rl.Vector3Add(pos, rl.Vector3RotateByQuaternion(tri.V2, q)),
		}
	}
	return out
}
