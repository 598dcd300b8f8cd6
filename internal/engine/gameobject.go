package engine

import (
	"sync/atomic"

	rl "github.com/gen2brain/raylib-go/raylib"
)

var nextUID atomic.Uint64

// Transform is the visual pose of an entity. Rotation is a unit quaternion,
// the same convention physics bodies use, so sync is a plain copy.
type Transform struct {
	Position rl.Vector3
	Rotation rl.Quaternion
	Scale    rl.Vector3
}

// IdentityTransform returns a transform at the origin with no rotation and unit scale.
func IdentityTransform() Transform {
	return Transform{
		Position: rl.Vector3{},
		Rotation: rl.QuaternionIdentity(),
		Scale:    rl.Vector3{X: 1, Y: 1, Z: 1},
	}
}

type GameObject struct {
	UID       uint64
	Name      string
	Tags      []string
	Transform Transform
	Active    bool
	Scene     *Scene

	// Model is the asset path of the visual, empty for invisible entities.
	Model string
}

func NewGameObject(name string) *GameObject {
	return &GameObject{
		UID:       nextUID.Add(1),
		Name:      name,
		Active:    true,
		Transform: IdentityTransform(),
	}
}

func (g *GameObject) HasTag(tag string) bool {
	for _, t := range g.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// Forward returns the entity's local +Z axis rotated into world space.
func (g *GameObject) Forward() rl.Vector3 {
	return rl.Vector3RotateByQuaternion(rl.Vector3{X: 0, Y: 0, Z: 1}, g.Transform.Rotation)
}
