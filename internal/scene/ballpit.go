// Package scene wires the ball pit: a visual collider mesh, a ground plane,
// kickable balls and the physics colliders exported next to the mesh.
package scene

import (
	"context"
	"fmt"
	"log/slog"

	rl "github.com/gen2brain/raylib-go/raylib"

	"ballpit/internal/collider"
	"ballpit/internal/config"
	"ballpit/internal/engine"
	"ballpit/internal/physics"
)

const (
	BallTag     = "ball"
	ColliderTag = "colliders"
)

// Entities is the part of the host runtime that owns visual entities and
// per-frame systems.
type Entities interface {
	AddGameObject(*engine.GameObject)
	Camera() *engine.GameObject
	AddSystem(engine.System)
}

// Pointer registers pointer-down handlers on entities.
type Pointer interface {
	OnPointerDown(uid uint64, opts engine.PointerOptions, cb func(engine.PointerHit)) engine.ListenerID
}

type Ball struct {
	Entity *engine.GameObject
	Body   *physics.Body
	Spawn  rl.Vector3
}

// Bounce is raised when a ball starts touching something.
type Bounce struct {
	Ball     *Ball
	Other    *physics.Body
	Position rl.Vector3
	// Speed is the relative speed of the pair after the contact was solved.
	Speed float32
}

type BallPit struct {
	World  *physics.World
	Ground *physics.Body
	Visual *engine.GameObject
	Balls  []*Ball

	// LastReport is the result of the most recent collider population.
	LastReport collider.Report

	OnBounce engine.EventWithArg[Bounce]

	cfg       config.Config
	entities  Entities
	pointer   Pointer
	builder   *collider.Builder
	log       *slog.Logger
	colliders []*physics.Body
	forward   rl.Vector3
	byBody    map[*physics.Body]*Ball
}

// New prepares an empty ball pit. Nothing is created until Setup.
func New(cfg config.Config, entities Entities, pointer Pointer, builder *collider.Builder, logger *slog.Logger) *BallPit {
	if logger == nil {
		logger = slog.Default()
	}
	return &BallPit{
		World:    physics.NewWorld(),
		cfg:      cfg,
		entities: entities,
		pointer:  pointer,
		builder:  builder,
		log:      logger.With("component", "scene"),
		forward:  rl.Vector3{Z: 1},
		byBody:   make(map[*physics.Body]*Ball),
	}
}

// Setup builds the scene and populates colliders from descs. The returned
// report lists the descriptors that were skipped.
func (p *BallPit) Setup(ctx context.Context, descs []collider.Descriptor) (collider.Report, error) {
	p.addVisual()
	p.World.Gravity = p.cfg.Physics.Gravity.Vector3()
	p.World.AllowSleep = p.cfg.Physics.AllowSleep

	groundMat := p.addGround()
	p.addBalls(groundMat)
	p.World.CollisionEnter.AddListener(p.collisionEnter)

	report, err := p.populate(ctx, descs)
	if err != nil {
		return collider.Report{}, err
	}
	p.LastReport = report
	p.refreshForward()
	p.entities.AddSystem(p.Update)

	p.log.Info("ball pit ready", "balls", len(p.Balls), "colliders", len(p.colliders), "bodies", p.World.NumBodies())
	return report, nil
}

func (p *BallPit) addVisual() {
	v := p.cfg.VisualRotation
	p.Visual = engine.NewGameObject("BasicColliders")
	p.Visual.Model = p.cfg.VisualModel
	p.Visual.Tags = []string{ColliderTag}
	p.Visual.Transform.Rotation = rl.QuaternionFromEuler(v[0]*rl.Deg2rad, v[1]*rl.Deg2rad, v[2]*rl.Deg2rad)
	p.entities.AddGameObject(p.Visual)
}

// addGround creates the infinite floor. The plane normal is local +Z, so it
// is tipped back a quarter turn about X to face up.
func (p *BallPit) addGround() *physics.Material {
	m := p.cfg.Materials
	groundMat := physics.NewMaterial("groundMaterial", m.Ground.Friction, m.Ground.Restitution)
	p.World.AddContactMaterial(physics.NewContactMaterial(groundMat, groundMat, m.Ground.Friction, m.Ground.Restitution))

	p.Ground = physics.NewBody(0, rl.Vector3{})
	p.Ground.Name = "ground"
	p.Ground.Material = groundMat
	p.Ground.SetShape(physics.NewPlane())
	p.Ground.Teleport(rl.Vector3{}, rl.QuaternionFromAxisAngle(rl.Vector3{X: 1}, -rl.Pi/2))
	p.World.AddBody(p.Ground)
	return groundMat
}

func (p *BallPit) addBalls(groundMat *physics.Material) {
	bc := p.cfg.Balls
	m := p.cfg.Materials
	ballMat := physics.NewMaterial("ballMaterial", m.Ball.Friction, m.Ball.Restitution)
	p.World.AddContactMaterial(physics.NewContactMaterial(groundMat, ballMat, m.BallGround.Friction, m.BallGround.Restitution))

	for i, spawn := range bc.Spawns {
		ball := &Ball{Spawn: spawn.Vector3()}

		ball.Entity = engine.NewGameObject(fmt.Sprintf("Ball%d", i))
		ball.Entity.Model = bc.Model
		ball.Entity.Tags = []string{BallTag}
		ball.Entity.Transform.Position = ball.Spawn
		p.entities.AddGameObject(ball.Entity)

		ball.Body = physics.NewBody(bc.Mass, ball.Spawn)
		ball.Body.Name = ball.Entity.Name
		ball.Body.Material = ballMat
		ball.Body.LinearDamping = bc.LinearDamping
		ball.Body.AngularDamping = bc.AngularDamping
		ball.Body.SetShape(physics.NewSphere(bc.Radius))
		p.World.AddBody(ball.Body)

		idx := i
		p.pointer.OnPointerDown(ball.Entity.UID, engine.PointerOptions{
			Button:    engine.InputPointer,
			HoverText: bc.HoverText,
		}, func(hit engine.PointerHit) {
			p.Kick(idx, hit)
		})

		p.Balls = append(p.Balls, ball)
		p.byBody[ball.Body] = ball
	}
}

func (p *BallPit) populate(ctx context.Context, descs []collider.Descriptor) (collider.Report, error) {
	var report collider.Report
	if workers := p.cfg.Colliders.BuildWorkers; workers > 1 {
		var err error
		report, err = collider.PopulateParallel(ctx, p.World, descs, p.builder, workers)
		if err != nil {
			return collider.Report{}, err
		}
	} else {
		report = collider.Populate(p.World, descs, p.builder)
	}
	p.colliders = report.Bodies
	return report, nil
}

// Colliders returns the bodies built from collider descriptors.
func (p *BallPit) Colliders() []*physics.Body {
	return p.colliders
}

// ReplaceColliders swaps the collider bodies for ones built from descs.
// Balls and the ground are untouched.
func (p *BallPit) ReplaceColliders(ctx context.Context, descs []collider.Descriptor) (collider.Report, error) {
	old := p.colliders
	for _, b := range old {
		p.World.RemoveBody(b)
	}
	report, err := p.populate(ctx, descs)
	if err != nil {
		for _, b := range old {
			p.World.AddBody(b)
		}
		p.colliders = old
		return collider.Report{}, err
	}
	for _, ball := range p.Balls {
		ball.Body.Wake()
	}
	p.LastReport = report
	p.log.Info("colliders replaced", "removed", len(old), "built", report.Built, "skipped", len(report.Warnings))
	return report, nil
}

// ReloadColliders reads path and replaces the colliders with its contents. A
// file that cannot be read or is not a JSON array leaves the current
// colliders in place.
func (p *BallPit) ReloadColliders(ctx context.Context, path string) (collider.Report, error) {
	descs, decodeWarnings, err := collider.ReadFile(path)
	if err != nil {
		p.log.Warn("collider reload failed", "path", path, "err", err)
		return collider.Report{}, err
	}
	report, err := p.ReplaceColliders(ctx, descs)
	if err != nil {
		return collider.Report{}, fmt.Errorf("reload %s: %w", path, err)
	}
	return p.mergeDecodeWarnings(report, decodeWarnings), nil
}

// SetupFromFile is Setup over the collider file at path. An unreadable file
// leaves the pit with just the floor and the balls.
func (p *BallPit) SetupFromFile(ctx context.Context, path string) (collider.Report, error) {
	descs, decodeWarnings, err := collider.ReadFile(path)
	if err != nil {
		p.log.Warn("no colliders loaded", "path", path, "err", err)
	}
	report, err := p.Setup(ctx, descs)
	if err != nil {
		return collider.Report{}, err
	}
	return p.mergeDecodeWarnings(report, decodeWarnings), nil
}

// mergeDecodeWarnings puts decode warnings ahead of build warnings and
// records the result as LastReport.
func (p *BallPit) mergeDecodeWarnings(report collider.Report, decodeWarnings []collider.Warning) collider.Report {
	for _, w := range decodeWarnings {
		p.log.Warn("skipping collider record", "index", w.Index, "name", w.Name, "err", w.Err)
	}
	report.Warnings = append(decodeWarnings, report.Warnings...)
	p.LastReport = report
	return report
}

// Update advances the world by dt seconds of real time and copies body poses
// onto the ball entities.
func (p *BallPit) Update(dt float32) {
	p.World.Step(p.cfg.Physics.FixedTimeStep, dt, p.cfg.Physics.MaxSubSteps)

	for _, ball := range p.Balls {
		if p.cfg.Physics.Interpolate {
			ball.Entity.Transform.Position = ball.Body.InterpolatedPosition()
			ball.Entity.Transform.Rotation = ball.Body.InterpolatedQuaternion()
			continue
		}
		ball.Entity.Transform.Position = ball.Body.Position
		ball.Entity.Transform.Rotation = ball.Body.Quaternion
	}
	p.refreshForward()
}

func (p *BallPit) refreshForward() {
	if cam := p.entities.Camera(); cam != nil {
		p.forward = cam.Forward()
	}
}

// Forward is the camera forward vector sampled on the last update.
func (p *BallPit) Forward() rl.Vector3 {
	return p.forward
}

// Kick pushes ball i along the camera forward, applied at the hit point.
func (p *BallPit) Kick(i int, hit engine.PointerHit) {
	if i < 0 || i >= len(p.Balls) {
		return
	}
	impulse := rl.Vector3Scale(p.forward, p.cfg.Balls.KickScale)
	p.Balls[i].Body.ApplyImpulse(impulse, hit.Position)
	p.log.Debug("kick", "ball", i, "impulse", impulse)
}

// ResetBalls puts every ball back on its spawn point at rest.
func (p *BallPit) ResetBalls() {
	for _, ball := range p.Balls {
		ball.Body.Teleport(ball.Spawn, rl.QuaternionIdentity())
		ball.Entity.Transform.Position = ball.Spawn
		ball.Entity.Transform.Rotation = rl.QuaternionIdentity()
	}
}

// BallByEntity returns the ball rendered by the entity with uid.
func (p *BallPit) BallByEntity(uid uint64) (int, bool) {
	for i, ball := range p.Balls {
		if ball.Entity.UID == uid {
			return i, true
		}
	}
	return -1, false
}

// BallByBody returns the ball simulated by b.
func (p *BallPit) BallByBody(b *physics.Body) (*Ball, bool) {
	ball, ok := p.byBody[b]
	return ball, ok
}

func (p *BallPit) collisionEnter(ev physics.CollisionEvent) {
	ball, ok := p.byBody[ev.A]
	other := ev.B
	if !ok {
		if ball, ok = p.byBody[ev.B]; !ok {
			return
		}
		other = ev.A
	}
	rel := rl.Vector3Subtract(ev.A.Velocity, ev.B.Velocity)
	p.OnBounce.Invoke(Bounce{
		Ball:     ball,
		Other:    other,
		Position: ball.Body.Position,
		Speed:    rl.Vector3Length(rel),
	})
}
