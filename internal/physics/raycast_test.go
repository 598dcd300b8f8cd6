package physics

import (
	"math"
	"testing"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRaycastPicksClosestBody(t *testing.T) {
	w := NewWorld()
	near := newBall(rl.Vector3{Z: 5})
	far := newBall(rl.Vector3{Z: 10})
	w.AddBody(far)
	w.AddBody(near)

	hit, ok := w.Raycast(rl.Vector3{}, rl.Vector3{Z: 2}, 100)
	require.True(t, ok)
	assert.Same(t, near, hit.Body)
	assert.InDelta(t, 4.5, hit.Distance, 1e-4)
	assert.InDelta(t, -1, hit.Normal.Z, 1e-4)
}

func TestRaycastMaxDistance(t *testing.T) {
	w := NewWorld()
	w.AddBody(newBall(rl.Vector3{Z: 5}))

	_, ok := w.Raycast(rl.Vector3{}, rl.Vector3{Z: 1}, 3)
	assert.False(t, ok)

	_, ok = w.Raycast(rl.Vector3{}, rl.Vector3{}, 100)
	assert.False(t, ok, "zero direction never hits")
}

func TestRaycastRotatedBox(t *testing.T) {
	w := NewWorld()
	box := NewBody(0, rl.Vector3{X: 5})
	box.SetShape(NewBox(rl.Vector3{X: 1, Y: 1, Z: 1}))
	box.Quaternion = rl.QuaternionFromAxisAngle(rl.Vector3{Y: 1}, math.Pi/4)
	w.AddBody(box)

	hit, ok := w.Raycast(rl.Vector3{}, rl.Vector3{X: 1}, 100)
	require.True(t, ok)
	// The leading edge of a diamond sits sqrt(2) in front of the center.
	assert.InDelta(t, 5-math.Sqrt2, hit.Distance, 1e-3)
	assert.Less(t, hit.Normal.X, float32(0))
}

func TestRaycastGroundPlane(t *testing.T) {
	w := NewWorld()
	ground := newGround()
	w.AddBody(ground)

	hit, ok := w.Raycast(rl.Vector3{X: 3, Y: 10, Z: -2}, rl.Vector3{Y: -1}, 100)
	require.True(t, ok)
	assert.Same(t, ground, hit.Body)
	assert.InDelta(t, 10, hit.Distance, 1e-4)
	assert.InDelta(t, 0, hit.Point.Y, 1e-4)

	_, ok = w.Raycast(rl.Vector3{Y: 10}, rl.Vector3{Y: 1}, 100)
	assert.False(t, ok, "ray pointing away from the plane")
}

func TestRaycastTranslatedTrimesh(t *testing.T) {
	w := NewWorld()
	mesh := NewBody(0, rl.Vector3{Y: 2})
	mesh.SetShape(NewTrimesh(gridMesh(4)))
	w.AddBody(mesh)

	hit, ok := w.Raycast(rl.Vector3{X: 1.3, Y: 10, Z: 1.6}, rl.Vector3{Y: -1}, 100)
	require.True(t, ok)
	assert.Same(t, mesh, hit.Body)
	assert.InDelta(t, 8, hit.Distance, 1e-4)
	assert.InDelta(t, 2, hit.Point.Y, 1e-4)
}
