package scene

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ballpit/internal/collider"
	"ballpit/internal/config"
	"ballpit/internal/engine"
	"ballpit/internal/physics"
)

type fixture struct {
	pit     *BallPit
	scene   *engine.Scene
	pointer *engine.PointerEvents
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
}

func setup(t *testing.T, cfg config.Config, descs []collider.Descriptor) fixture {
	t.Helper()
	sc := engine.NewScene("ballpit")
	pe := engine.NewPointerEvents()
	b := collider.NewBuilder(collider.Options{Logger: quietLogger()})
	pit := New(cfg, sc, pe, b, quietLogger())
	_, err := pit.Setup(context.Background(), descs)
	require.NoError(t, err)
	return fixture{pit: pit, scene: sc, pointer: pe}
}

func platform(name string, x float32) collider.Descriptor {
	return &collider.Box{
		Common: collider.Common{
			Name: name, Kind: collider.Passive, Position: rl.Vector3{X: x, Y: 1},
			Friction: 0.5, Restitution: 0.2,
		},
		Dimensions: []float32{2, 2, 2},
		Rotation:   []float32{0, 0, 0, 1},
	}
}

func TestSetupBuildsScene(t *testing.T) {
	f := setup(t, config.Default(), []collider.Descriptor{platform("A", 0), platform("B", 5)})

	require.Len(t, f.pit.Balls, 8)
	assert.Len(t, f.pit.Colliders(), 2)
	assert.Equal(t, 1+8+2, f.pit.World.NumBodies())
	assert.Equal(t, 1, f.scene.SystemCount())
	assert.Len(t, f.scene.FindByTag(BallTag), 8)

	visual := f.scene.FindByName("BasicColliders")
	require.NotNil(t, visual)
	assert.Equal(t, "assets/glb/basic-colliders.glb", visual.Model)

	for i, ball := range f.pit.Balls {
		assert.Equal(t, config.Default().Balls.Spawns[i].Vector3(), ball.Body.Position)
		assert.Equal(t, float32(5), ball.Body.Mass)
		assert.Equal(t, float32(0.4), ball.Body.AngularDamping)
		assert.Zero(t, ball.Body.LinearDamping)
		text, ok := f.pointer.HoverText(ball.Entity.UID)
		assert.True(t, ok)
		assert.Equal(t, "Kick", text)
	}
}

func TestGroundFacesUp(t *testing.T) {
	f := setup(t, config.Default(), nil)

	plane, ok := f.pit.Ground.Shape.(*physics.Plane)
	require.True(t, ok)
	n := plane.Normal(f.pit.Ground.Quaternion)
	assert.InDelta(t, 1, n.Y, 1e-5)
	assert.Equal(t, physics.Static, f.pit.Ground.Type)
}

func TestContactMaterials(t *testing.T) {
	f := setup(t, config.Default(), nil)

	ballMat := f.pit.Balls[0].Body.Material
	cm, ok := f.pit.World.ContactMaterialFor(f.pit.Ground.Material, ballMat)
	require.True(t, ok)
	assert.Equal(t, float32(1), cm.Friction)
	assert.Equal(t, float32(0.5), cm.Restitution)

	cm, ok = f.pit.World.ContactMaterialFor(f.pit.Ground.Material, f.pit.Ground.Material)
	require.True(t, ok)
	assert.Equal(t, float32(0.33), cm.Restitution)
}

func TestKickFollowsCameraForward(t *testing.T) {
	f := setup(t, config.Default(), nil)
	ball := f.pit.Balls[0]

	handled := f.pointer.PointerDown(engine.PointerHit{
		EntityUID: ball.Entity.UID,
		Button:    engine.InputPointer,
		Position:  ball.Body.Position,
	})
	require.True(t, handled)

	// 25 along +Z on a 5 kg ball through its center.
	assert.InDelta(t, 5, ball.Body.Velocity.Z, 1e-5)
	assert.InDelta(t, 0, ball.Body.Velocity.X, 1e-5)
	assert.Equal(t, rl.Vector3{}, ball.Body.AngularVelocity)
}

func TestKickAfterCameraTurn(t *testing.T) {
	f := setup(t, config.Default(), nil)
	f.scene.Camera().Transform.Rotation = rl.QuaternionFromAxisAngle(rl.Vector3{Y: 1}, rl.Pi/2)
	f.scene.Update(0)

	ball := f.pit.Balls[3]
	f.pit.Kick(3, engine.PointerHit{Position: ball.Body.Position})

	assert.InDelta(t, 5, ball.Body.Velocity.X, 1e-4)
	assert.InDelta(t, 0, ball.Body.Velocity.Z, 1e-4)
}

func TestKickOffCenterSpins(t *testing.T) {
	f := setup(t, config.Default(), nil)
	ball := f.pit.Balls[1]
	top := rl.Vector3Add(ball.Body.Position, rl.Vector3{Y: 0.5})

	f.pit.Kick(1, engine.PointerHit{Position: top})

	assert.NotZero(t, ball.Body.AngularVelocity.X)
}

func TestKickOutOfRangeIgnored(t *testing.T) {
	f := setup(t, config.Default(), nil)
	f.pit.Kick(-1, engine.PointerHit{})
	f.pit.Kick(len(f.pit.Balls), engine.PointerHit{})
	for _, ball := range f.pit.Balls {
		assert.Equal(t, rl.Vector3{}, ball.Body.Velocity)
	}
}

func TestUpdateSyncsBalls(t *testing.T) {
	f := setup(t, config.Default(), nil)

	for i := 0; i < 30; i++ {
		f.scene.Update(1.0 / 60.0)
	}

	for _, ball := range f.pit.Balls {
		assert.Less(t, ball.Body.Position.Y, ball.Spawn.Y, "balls fall")
		assert.Equal(t, ball.Body.Position, ball.Entity.Transform.Position)
		assert.Equal(t, ball.Body.Quaternion, ball.Entity.Transform.Rotation)
	}
	assert.Equal(t, 30, f.pit.World.StepCount())
}

func TestUpdateCapsSubSteps(t *testing.T) {
	f := setup(t, config.Default(), nil)
	f.pit.Update(1)
	assert.Equal(t, 3, f.pit.World.StepCount())
}

func TestBallsSettleOnGround(t *testing.T) {
	f := setup(t, config.Default(), nil)
	for i := 0; i < 60*8; i++ {
		f.pit.Update(1.0 / 60.0)
	}
	for _, ball := range f.pit.Balls {
		assert.InDelta(t, 0.5, ball.Body.Position.Y, 0.05)
	}
}

func TestResetBalls(t *testing.T) {
	f := setup(t, config.Default(), nil)
	f.pit.Kick(0, engine.PointerHit{Position: f.pit.Balls[0].Body.Position})
	for i := 0; i < 20; i++ {
		f.pit.Update(1.0 / 60.0)
	}

	f.pit.ResetBalls()

	for _, ball := range f.pit.Balls {
		assert.Equal(t, ball.Spawn, ball.Body.Position)
		assert.Equal(t, ball.Spawn, ball.Entity.Transform.Position)
		assert.Equal(t, rl.Vector3{}, ball.Body.Velocity)
		assert.False(t, ball.Body.IsSleeping())
	}
}

func TestReplaceCollidersKeepsBallsAndGround(t *testing.T) {
	f := setup(t, config.Default(), []collider.Descriptor{platform("A", 0)})
	first := f.pit.Colliders()[0]
	balls := make([]*physics.Body, len(f.pit.Balls))
	for i, b := range f.pit.Balls {
		balls[i] = b.Body
	}

	report, err := f.pit.ReplaceColliders(context.Background(), []collider.Descriptor{platform("B", 3), platform("C", 6), platform("D", 9)})
	require.NoError(t, err)

	assert.Equal(t, 3, report.Built)
	assert.Len(t, f.pit.Colliders(), 3)
	assert.Nil(t, first.World())
	assert.Equal(t, 1+8+3, f.pit.World.NumBodies())
	assert.Same(t, f.pit.World, f.pit.Ground.World())
	for i, b := range f.pit.Balls {
		assert.Same(t, balls[i], b.Body)
		assert.Same(t, f.pit.World, b.Body.World())
	}
}

func TestReloadColliders(t *testing.T) {
	f := setup(t, config.Default(), []collider.Descriptor{platform("A", 0)})
	dir := t.TempDir()

	good := filepath.Join(dir, "colliders.json")
	require.NoError(t, os.WriteFile(good, []byte(`[
	  {"obj_name": "Step", "position": [0,0.5,0], "type": "PASSIVE", "shape": "BOX", "friction": 0.5, "restitution": 0.2, "mass": 0, "dimensions": [4,1,4], "rotation": [0,0,0,1]},
	  {"obj_name": "Bad", "position": [0,0,0], "type": "PASSIVE", "shape": "SPHERE", "friction": 0.5, "restitution": 0.2, "mass": 0}
	]`), 0o644))

	report, err := f.pit.ReloadColliders(context.Background(), good)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Built)
	assert.Len(t, report.Warnings, 1)
	assert.Equal(t, "Step", f.pit.Colliders()[0].Name)
	assert.Equal(t, report.Built, f.pit.LastReport.Built)

	broken := filepath.Join(dir, "broken.json")
	require.NoError(t, os.WriteFile(broken, []byte(`{"not": "an array"}`), 0o644))
	_, err = f.pit.ReloadColliders(context.Background(), broken)
	assert.ErrorIs(t, err, collider.ErrMalformedInput)
	require.Len(t, f.pit.Colliders(), 1, "a broken file keeps the previous colliders")
	assert.Equal(t, "Step", f.pit.Colliders()[0].Name)
}

func TestSetupFromFileKeepsDecodeWarnings(t *testing.T) {
	path := filepath.Join(t.TempDir(), "colliders.json")
	require.NoError(t, os.WriteFile(path, []byte(`[
	  7,
	  {"obj_name": "Step", "position": [0,0.5,0], "type": "PASSIVE", "shape": "BOX", "friction": 0.5, "restitution": 0.2, "mass": 0, "dimensions": [4,1,4], "rotation": [0,0,0,1]},
	  {"obj_name": "Bad", "position": [0,0,0], "type": "PASSIVE", "shape": "SPHERE", "friction": 0.5, "restitution": 0.2, "mass": 0}
	]`), 0o644))

	pit := New(config.Default(), engine.NewScene("ballpit"), engine.NewPointerEvents(),
		collider.NewBuilder(collider.Options{Logger: quietLogger()}), quietLogger())
	report, err := pit.SetupFromFile(context.Background(), path)
	require.NoError(t, err)

	assert.Equal(t, 1, report.Built)
	require.Len(t, report.Warnings, 2)
	assert.ErrorIs(t, report.Warnings[0], collider.ErrMalformedRecord)
	assert.Equal(t, 0, report.Warnings[0].Index)
	assert.Equal(t, 2, report.Warnings[1].Index)
	assert.Equal(t, report.Warnings, pit.LastReport.Warnings)
}

func TestSetupFromMissingFile(t *testing.T) {
	pit := New(config.Default(), engine.NewScene("ballpit"), engine.NewPointerEvents(),
		collider.NewBuilder(collider.Options{Logger: quietLogger()}), quietLogger())
	report, err := pit.SetupFromFile(context.Background(), filepath.Join(t.TempDir(), "none.json"))
	require.NoError(t, err)
	assert.Zero(t, report.Built)
	assert.Len(t, pit.Balls, 8)
}

func TestParallelBuildWorkers(t *testing.T) {
	cfg := config.Default()
	cfg.Colliders.BuildWorkers = 4
	var descs []collider.Descriptor
	for i := 0; i < 10; i++ {
		descs = append(descs, platform("P", float32(i*3)))
	}
	f := setup(t, cfg, descs)
	assert.Len(t, f.pit.Colliders(), 10)
	assert.Equal(t, float32(27), f.pit.Colliders()[9].Position.X)
}

func TestBounceRaisedForBalls(t *testing.T) {
	cfg := config.Default()
	cfg.Balls.Spawns = []config.Vec3{{0, 2, 0}}
	f := setup(t, cfg, nil)

	var bounces []Bounce
	f.pit.OnBounce.AddListener(func(b Bounce) { bounces = append(bounces, b) })
	for i := 0; i < 60; i++ {
		f.pit.Update(1.0 / 60.0)
	}

	require.NotEmpty(t, bounces)
	assert.Same(t, f.pit.Balls[0], bounces[0].Ball)
	assert.Same(t, f.pit.Ground, bounces[0].Other)
	assert.Greater(t, bounces[0].Speed, float32(0))
}

func TestBallLookup(t *testing.T) {
	f := setup(t, config.Default(), nil)
	ball := f.pit.Balls[5]

	i, ok := f.pit.BallByEntity(ball.Entity.UID)
	assert.True(t, ok)
	assert.Equal(t, 5, i)

	got, ok := f.pit.BallByBody(ball.Body)
	assert.True(t, ok)
	assert.Same(t, ball, got)

	_, ok = f.pit.BallByBody(f.pit.Ground)
	assert.False(t, ok)
}
