package physics

import (
	"fmt"

	"github.com/chewxy/math32"
	rl "github.com/gen2brain/raylib-go/raylib"
)

type ShapeType int

const (
	ShapeSphere ShapeType = iota
	ShapeBox
	ShapePlane
	ShapeTrimesh
)

func (t ShapeType) String() string {
	switch t {
	case ShapeSphere:
		return "sphere"
	case ShapeBox:
		return "box"
	case ShapePlane:
		return "plane"
	case ShapeTrimesh:
		return "trimesh"
	default:
		return fmt.Sprintf("ShapeType(%d)", int(t))
	}
}

// Shape is the collision geometry attached to a Body. Shapes are expressed in
// the body's local frame.
type Shape interface {
	Type() ShapeType
	// Bounds returns the world AABB for the shape posed at pos with rotation q.
	Bounds(pos rl.Vector3, q rl.Quaternion) AABB
	// Inertia returns the diagonal of the local inertia tensor for the given mass.
	Inertia(mass float32) rl.Vector3
}

type Sphere struct {
	Radius float32
}

func NewSphere(radius float32) *Sphere {
	return &Sphere{Radius: radius}
}

func (s *Sphere) Type() ShapeType { return ShapeSphere }

func (s *Sphere) Bounds(pos rl.Vector3, _ rl.Quaternion) AABB {
	return NewAABBFromCenter(pos, rl.Vector3{X: s.Radius, Y: s.Radius, Z: s.Radius})
}

func (s *Sphere) Inertia(mass float32) rl.Vector3 {
	i := 2.0 / 5.0 * mass * s.Radius * s.Radius
	return rl.Vector3{X: i, Y: i, Z: i}
}

// Box is a cuboid described by its half extents.
type Box struct {
	HalfExtents rl.Vector3
}

func NewBox(halfExtents rl.Vector3) *Box {
	return &Box{HalfExtents: halfExtents}
}

func (b *Box) Type() ShapeType { return ShapeBox }

func (b *Box) Bounds(pos rl.Vector3, q rl.Quaternion) AABB {
	return b.OBB(pos, q).Bounds()
}

func (b *Box) OBB(pos rl.Vector3, q rl.Quaternion) OBB {
	return NewOBB(pos, b.HalfExtents, q)
}

func (b *Box) Inertia(mass float32) rl.Vector3 {
	x, y, z := 2*b.HalfExtents.X, 2*b.HalfExtents.Y, 2*b.HalfExtents.Z
	return rl.Vector3{
		X: mass / 12 * (y*y + z*z),
		Y: mass / 12 * (x*x + z*z),
		Z: mass / 12 * (x*x + y*y),
	}
}

// Plane is an infinite half-space whose surface normal is the local +Z axis.
type Plane struct{}

func NewPlane() *Plane {
	return &Plane{}
}

func (p *Plane) Type() ShapeType { return ShapePlane }

func (p *Plane) Bounds(rl.Vector3, rl.Quaternion) AABB {
	return infiniteAABB()
}

func (p *Plane) Inertia(float32) rl.Vector3 {
	return rl.Vector3{}
}

// Normal returns the world-space surface normal for a plane rotated by q.
func (p *Plane) Normal(q rl.Quaternion) rl.Vector3 {
	return rl.Vector3RotateByQuaternion(unitZ, q)
}

// boundingRadius is the radius of a sphere around the body origin enclosing the shape.
func boundingRadius(s Shape) float32 {
	switch sh := s.(type) {
	case *Sphere:
		return sh.Radius
	case *Box:
		return rl.Vector3Length(sh.HalfExtents)
	case *Trimesh:
		b := sh.LocalBounds()
		return math32.Max(rl.Vector3Length(b.Min), rl.Vector3Length(b.Max))
	default:
		return math32.Inf(1)
	}
}
