package render

import (
	"testing"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/stretchr/testify/assert"

	"ballpit/internal/physics"
)

func lookingDownZ() Frustum {
	cam := rl.Camera3D{
		Position:   rl.Vector3{},
		Target:     rl.Vector3{Z: 1},
		Up:         rl.Vector3{Y: 1},
		Fovy:       45,
		Projection: rl.CameraPerspective,
	}
	return ExtractFrustum(cam, 16.0/9.0)
}

func TestFrustumContainsPoint(t *testing.T) {
	f := lookingDownZ()

	assert.True(t, f.ContainsPoint(rl.Vector3{Z: 10}))
	assert.True(t, f.ContainsPoint(rl.Vector3{X: 2, Y: 1, Z: 10}))
	assert.False(t, f.ContainsPoint(rl.Vector3{Z: -10}), "behind")
	assert.False(t, f.ContainsPoint(rl.Vector3{X: 100, Z: 10}), "off to the side")
	assert.False(t, f.ContainsPoint(rl.Vector3{Z: 5000}), "past far plane")
}

func TestFrustumContainsSphere(t *testing.T) {
	f := lookingDownZ()

	assert.False(t, f.ContainsSphere(rl.Vector3{Z: -3}, 1))
	assert.True(t, f.ContainsSphere(rl.Vector3{Z: -3}, 5), "reaches into view")
}

func TestFrustumVisibleBodies(t *testing.T) {
	f := lookingDownZ()

	ahead := physics.NewBody(1, rl.Vector3{Z: 10})
	ahead.SetShape(physics.NewSphere(0.5))
	behind := physics.NewBody(1, rl.Vector3{Z: -10})
	behind.SetShape(physics.NewBox(rl.Vector3{X: 1, Y: 1, Z: 1}))
	ground := physics.NewBody(0, rl.Vector3{Y: -100})
	ground.SetShape(physics.NewPlane())

	visible := f.Visible([]*physics.Body{ahead, behind, ground})
	assert.Equal(t, []*physics.Body{ahead, ground}, visible)
}
