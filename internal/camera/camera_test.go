package camera

import (
	"testing"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/stretchr/testify/assert"
)

func assertVec(t *testing.T, want, got rl.Vector3) {
	t.Helper()
	assert.InDelta(t, want.X, got.X, 1e-5, "x")
	assert.InDelta(t, want.Y, got.Y, 1e-5, "y")
	assert.InDelta(t, want.Z, got.Z, 1e-5, "z")
}

func TestQuaternionMatchesForward(t *testing.T) {
	c := New(rl.Vector3{})
	for _, angles := range [][2]float32{{0, 0}, {90, 0}, {45, -25}, {-135, 60}, {200, 10}} {
		c.Yaw, c.Pitch = angles[0], angles[1]
		got := rl.Vector3RotateByQuaternion(rl.Vector3{Z: 1}, c.Quaternion())
		assertVec(t, c.Forward(), got)
	}
}

func TestYawNinetyLooksDownZ(t *testing.T) {
	c := New(rl.Vector3{})
	c.Yaw, c.Pitch = 90, 0
	assertVec(t, rl.Vector3{Z: 1}, c.Forward())
	assert.InDelta(t, 1, c.Quaternion().W, 1e-5, "identity")
}

func TestApplyMoves(t *testing.T) {
	c := New(rl.Vector3{})
	c.Yaw, c.Pitch = 0, 0

	c.Apply(Input{Forward: true}, 0.5)
	assertVec(t, rl.Vector3{X: 4}, c.Position)

	c.Apply(Input{Right: true}, 0.25)
	assertVec(t, rl.Vector3{X: 4, Z: 2}, c.Position)

	c.Apply(Input{Up: true}, 1)
	assertVec(t, rl.Vector3{X: 4, Y: 8, Z: 2}, c.Position)
}

func TestApplyDiagonalNotFaster(t *testing.T) {
	c := New(rl.Vector3{})
	c.Apply(Input{Forward: true, Right: true}, 1)
	assert.InDelta(t, c.MoveSpeed, rl.Vector3Length(c.Position), 1e-4)
}

func TestLookClampsPitch(t *testing.T) {
	c := New(rl.Vector3{})
	c.Apply(Input{Look: rl.Vector2{X: 100, Y: -5000}}, 0.016)

	assert.Equal(t, float32(89), c.Pitch)
	assert.InDelta(t, 55, c.Yaw, 1e-4)
	assert.Equal(t, rl.Vector3{}, c.Position)
}

func TestRaylibCamera(t *testing.T) {
	c := New(rl.Vector3{X: 1, Y: 2, Z: 3})
	rc := c.GetRaylibCamera()
	assert.Equal(t, c.Position, rc.Position)
	assertVec(t, rl.Vector3Add(c.Position, c.Forward()), rc.Target)
	assert.Equal(t, float32(45), rc.Fovy)
}
