package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"

	"ballpit/internal/assets"
	"ballpit/internal/audio"
	"ballpit/internal/camera"
	"ballpit/internal/collider"
	"ballpit/internal/config"
	"ballpit/internal/engine"
	"ballpit/internal/physics"
	"ballpit/internal/render"
	"ballpit/internal/scene"
	"ballpit/internal/watch"
)

const pickDistance = 1000

var up = rl.Vector3{Y: 1}

type app struct {
	cfg config.Config
	log *slog.Logger

	scene    *engine.Scene
	pointer  *engine.PointerEvents
	pit      *scene.BallPit
	cam      *camera.FlyCamera
	models   *assets.Models
	renderer *render.Renderer
	mixer    *audio.Mixer
	player   *audio.Player
	watcher  *watch.Watcher

	showColliders bool
	hovered       uint64
	status        string

	updateMs float64
	drawMs   float64
}

func run(ctx context.Context, cfg config.Config, logger *slog.Logger) error {
	opts, err := cfg.ColliderOptions()
	if err != nil {
		return err
	}
	opts.Logger = logger

	a := &app{
		cfg:     cfg,
		log:     logger,
		scene:   engine.NewScene("ballpit"),
		pointer: engine.NewPointerEvents(),
		cam:     camera.New(rl.Vector3{X: -6, Y: 9, Z: -6}),
	}
	a.pit = scene.New(cfg, a.scene, a.pointer, collider.NewBuilder(opts), logger)

	report, err := a.pit.SetupFromFile(ctx, cfg.Colliders.Path)
	if err != nil {
		return fmt.Errorf("setup scene: %w", err)
	}
	a.setStatus(len(report.Warnings), report.Built)

	rl.SetConfigFlags(rl.FlagWindowHighdpi | rl.FlagMsaa4xHint)
	rl.InitWindow(int32(cfg.Window.Width), int32(cfg.Window.Height), cfg.Window.Title)
	defer rl.CloseWindow()
	rl.SetTargetFPS(int32(cfg.Window.TargetFPS))

	a.models = assets.NewModels(logger)
	defer a.models.Unload()
	a.renderer = render.NewRenderer(a.models)

	if cfg.Audio.Enabled {
		a.startAudio()
		if a.player != nil {
			defer a.player.Close()
		}
	}
	if cfg.Watch.Enabled && cfg.Colliders.Path != "" {
		w, err := watch.New(cfg.Colliders.Path, cfg.Watch.Debounce)
		if err != nil {
			logger.Warn("hot reload disabled", "path", cfg.Colliders.Path, "err", err)
		} else {
			a.watcher = w
			defer w.Close()
		}
	}

	for !rl.WindowShouldClose() {
		a.update(ctx)
		a.draw()
	}
	return nil
}

func (a *app) startAudio() {
	mixer := audio.NewMixer(a.cfg.Audio.Volume, a.cfg.Audio.MaxDistance, a.cfg.Audio.MinSpeed)
	player, err := audio.Play(mixer)
	if err != nil {
		a.log.Warn("audio disabled", "err", err)
		return
	}
	a.mixer, a.player = mixer, player
	a.pit.OnBounce.AddListener(func(b scene.Bounce) {
		mixer.Bounce(b.Position, b.Speed)
	})
}

func (a *app) setStatus(skipped, built int) {
	a.status = fmt.Sprintf("%d colliders, %d skipped", built, skipped)
}

func (a *app) update(ctx context.Context) {
	start := time.Now()
	dt := rl.GetFrameTime()

	a.cam.Update(dt)
	camEntity := a.scene.Camera()
	camEntity.Transform.Position = a.cam.Position
	camEntity.Transform.Rotation = a.cam.Quaternion()
	if a.mixer != nil {
		a.mixer.SetListener(a.cam.Position, a.cam.Forward(), up)
	}

	a.pollReload(ctx)

	ray := rl.GetScreenToWorldRay(rl.GetMousePosition(), a.cam.GetRaylibCamera())
	hit, ok := pick(a.pit, ray)
	a.hovered = 0
	if ok {
		a.hovered = hit.EntityUID
	}
	if ok && rl.IsMouseButtonPressed(rl.MouseLeftButton) && !overUI(rl.GetMousePosition()) {
		a.pointer.PointerDown(hit)
	}

	if rl.IsKeyPressed(rl.KeyR) {
		a.pit.ResetBalls()
	}
	if rl.IsKeyPressed(rl.KeyF1) {
		a.showColliders = !a.showColliders
	}

	// Runs the ball pit system: physics step and transform sync.
	a.scene.Update(dt)

	a.updateMs = float64(time.Since(start).Microseconds()) / 1000.0
}

func (a *app) pollReload(ctx context.Context) {
	if a.watcher == nil {
		return
	}
	select {
	case path, ok := <-a.watcher.Events:
		if !ok {
			a.watcher = nil
			return
		}
		report, err := a.pit.ReloadColliders(ctx, path)
		if err != nil {
			a.status = "reload failed: " + err.Error()
			return
		}
		a.setStatus(len(report.Warnings), report.Built)
	case err, ok := <-a.watcher.Errors:
		if ok {
			a.log.Warn("watch error", "err", err)
		}
	default:
	}
}

// pick casts ray into the world and turns a ball hit into a pointer hit on
// the ball's entity.
func pick(pit *scene.BallPit, ray rl.Ray) (engine.PointerHit, bool) {
	hit, ok := pit.World.Raycast(ray.Position, ray.Direction, pickDistance)
	if !ok {
		return engine.PointerHit{}, false
	}
	ball, ok := pit.BallByBody(hit.Body)
	if !ok {
		return engine.PointerHit{}, false
	}
	return engine.PointerHit{
		EntityUID: ball.Entity.UID,
		Button:    engine.InputPointer,
		Position:  hit.Point,
		Normal:    hit.Normal,
		Distance:  hit.Distance,
	}, true
}

func (a *app) draw() {
	start := time.Now()
	cam := a.cam.GetRaylibCamera()

	rl.BeginDrawing()
	rl.ClearBackground(rl.NewColor(20, 20, 30, 255))

	rl.BeginMode3D(cam)
	a.renderer.Begin(cam)
	a.renderer.DrawBodies([]*physics.Body{a.pit.Ground}, render.ColliderColor)
	if !a.renderer.DrawEntity(a.pit.Visual, rl.White) || a.showColliders {
		a.renderer.DrawBodies(a.pit.Colliders(), render.ColliderColor)
	}
	for i, ball := range a.pit.Balls {
		color := assets.PaletteColor(a.cfg.Balls.Palette, i)
		if ball.Entity.UID == a.hovered {
			color = rl.ColorBrightness(color, 0.4)
		}
		if !a.renderer.DrawEntity(ball.Entity, color) {
			a.renderer.DrawBodies([]*physics.Body{ball.Body}, color)
		}
	}
	rl.EndMode3D()
	a.drawMs = float64(time.Since(start).Microseconds()) / 1000.0

	a.drawUI()
	rl.EndDrawing()
}

var (
	resetBounds     = rl.Rectangle{X: 10, Y: 110, Width: 120, Height: 30}
	collidersBounds = rl.Rectangle{X: 10, Y: 150, Width: 20, Height: 20}
)

func overUI(p rl.Vector2) bool {
	return rl.CheckCollisionPointRec(p, resetBounds) ||
		rl.CheckCollisionPointRec(p, rl.Rectangle{X: collidersBounds.X, Y: collidersBounds.Y, Width: 160, Height: collidersBounds.Height})
}

func (a *app) drawUI() {
	rl.DrawText("WASD to move, Space/Ctrl up and down, hold right mouse to look", 10, 10, 20, rl.LightGray)
	rl.DrawText("Click a ball to kick it, R to reset, F1 to show colliders", 10, 35, 20, rl.LightGray)
	rl.DrawFPS(10, 60)
	rl.DrawText(a.status, 10, 85, 16, rl.Gold)

	if gui.Button(resetBounds, "Reset balls") {
		a.pit.ResetBalls()
	}
	a.showColliders = gui.CheckBox(collidersBounds, "Show colliders", a.showColliders)

	if a.hovered != 0 {
		if text, ok := a.pointer.HoverText(a.hovered); ok {
			m := rl.GetMousePosition()
			rl.DrawText(text, int32(m.X)+14, int32(m.Y)-6, 18, rl.White)
		}
	}

	drawn, culled := a.renderer.Stats()
	screenW := int32(rl.GetScreenWidth())
	rl.DrawText(fmt.Sprintf("Update: %.2f ms", a.updateMs), screenW-200, 10, 16, rl.Green)
	rl.DrawText(fmt.Sprintf("Draw:   %.2f ms", a.drawMs), screenW-200, 30, 16, rl.Green)
	rl.DrawText(fmt.Sprintf("Bodies: %d drawn, %d culled", drawn, culled), screenW-200, 50, 16, rl.Green)
	rl.DrawText(fmt.Sprintf("Steps:  %d", a.pit.World.StepCount()), screenW-200, 70, 16, rl.Green)
}
