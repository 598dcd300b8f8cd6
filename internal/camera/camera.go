package camera

import (
	"github.com/chewxy/math32"
	rl "github.com/gen2brain/raylib-go/raylib"
)

// Input is one frame of camera controls.
type Input struct {
	Forward, Back, Left, Right, Up, Down bool
	Look                                 rl.Vector2 // mouse delta in pixels
}

// FlyCamera is a free camera. Yaw and Pitch are degrees; yaw 0 looks down +X
// and yaw 90 looks down +Z.
type FlyCamera struct {
	Position  rl.Vector3
	Yaw       float32
	Pitch     float32
	MoveSpeed float32
	LookSpeed float32
	Fovy      float32
}

func New(pos rl.Vector3) *FlyCamera {
	return &FlyCamera{
		Position:  pos,
		Yaw:       45.0,
		Pitch:     -25.0,
		MoveSpeed: 8.0, // Units per second
		LookSpeed: 0.1,
		Fovy:      45,
	}
}

// ReadInput samples raylib's keyboard and mouse. Looking needs the right
// button held so the left button stays free for kicking.
func ReadInput() Input {
	in := Input{
		Forward: rl.IsKeyDown(rl.KeyW),
		Back:    rl.IsKeyDown(rl.KeyS),
		Left:    rl.IsKeyDown(rl.KeyA),
		Right:   rl.IsKeyDown(rl.KeyD),
		Up:      rl.IsKeyDown(rl.KeySpace),
		Down:    rl.IsKeyDown(rl.KeyLeftControl),
	}
	if rl.IsMouseButtonDown(rl.MouseRightButton) {
		in.Look = rl.GetMouseDelta()
	}
	return in
}

func (c *FlyCamera) Update(deltaTime float32) {
	c.Apply(ReadInput(), deltaTime)
}

// Apply moves and turns the camera for one frame of input.
func (c *FlyCamera) Apply(in Input, deltaTime float32) {
	c.Yaw += in.Look.X * c.LookSpeed
	c.Pitch -= in.Look.Y * c.LookSpeed

	// Clamp pitch
	if c.Pitch > 89 {
		c.Pitch = 89
	}
	if c.Pitch < -89 {
		c.Pitch = -89
	}

	forward, right := c.directions()

	var moveDir rl.Vector3
	if in.Forward {
		moveDir = rl.Vector3Add(moveDir, forward)
	}
	if in.Back {
		moveDir = rl.Vector3Subtract(moveDir, forward)
	}
	if in.Right {
		moveDir = rl.Vector3Add(moveDir, right)
	}
	if in.Left {
		moveDir = rl.Vector3Subtract(moveDir, right)
	}
	if in.Up {
		moveDir.Y++
	}
	if in.Down {
		moveDir.Y--
	}

	// Normalize diagonal movement so you don't go faster diagonally
	if l := rl.Vector3Length(moveDir); l > 0 {
		moveDir = rl.Vector3Scale(moveDir, c.MoveSpeed*deltaTime/l)
		c.Position = rl.Vector3Add(c.Position, moveDir)
	}
}

// directions returns the horizontal forward and right vectors.
func (c *FlyCamera) directions() (forward, right rl.Vector3) {
	yaw := c.Yaw * rl.Deg2rad
	forward = rl.Vector3{X: math32.Cos(yaw), Z: math32.Sin(yaw)}
	right = rl.Vector3{X: -math32.Sin(yaw), Z: math32.Cos(yaw)}
	return
}

// Forward is the unit look direction.
func (c *FlyCamera) Forward() rl.Vector3 {
	yaw := c.Yaw * rl.Deg2rad
	pitch := c.Pitch * rl.Deg2rad
	return rl.Vector3{
		X: math32.Cos(yaw) * math32.Cos(pitch),
		Y: math32.Sin(pitch),
		Z: math32.Sin(yaw) * math32.Cos(pitch),
	}
}

// Quaternion is the camera orientation: it maps local +Z onto Forward.
func (c *FlyCamera) Quaternion() rl.Quaternion {
	yaw := rl.QuaternionFromAxisAngle(rl.Vector3{Y: 1}, (90-c.Yaw)*rl.Deg2rad)
	pitch := rl.QuaternionFromAxisAngle(rl.Vector3{X: 1}, -c.Pitch*rl.Deg2rad)
	return rl.QuaternionMultiply(yaw, pitch)
}

func (c *FlyCamera) GetRaylibCamera() rl.Camera3D {
	return rl.Camera3D{
		Position:   c.Position,
		Target:     rl.Vector3Add(c.Position, c.Forward()),
		Up:         rl.Vector3{X: 0, Y: 1, Z: 0},
		Fovy:       c.Fovy,
		Projection: rl.CameraPerspective,
	}
}
