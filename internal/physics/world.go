package physics

import (
	"github.com/chewxy/math32"
	rl "github.com/gen2brain/raylib-go/raylib"

	"ballpit/internal/engine"
)

// Spatial grid cell size - dynamic bodies within same or neighboring cells are checked
const CellSize = 5.0

const (
	DefaultMaxSubSteps = 10

	penetrationSlop     = 0.01
	correctionFactor    = 0.8
	restingSpeed        = 0.5 // below this approach speed contacts do not bounce
	wakeSpeedMultiplier = 2.0
)

type CellKey struct {
	X, Y, Z int
}

func posToCell(pos rl.Vector3) CellKey {
	return CellKey{
		X: int(math32.Floor(pos.X / CellSize)),
		Y: int(math32.Floor(pos.Y / CellSize)),
		Z: int(math32.Floor(pos.Z / CellSize)),
	}
}

// CollisionPair holds two touching bodies, lower ID first.
type CollisionPair struct {
	A, B *Body
}

func makePair(a, b *Body) CollisionPair {
	if a.id > b.id {
		return CollisionPair{A: b, B: a}
	}
	return CollisionPair{A: a, B: b}
}

// CollisionEvent is raised when two bodies start or stop touching.
type CollisionEvent struct {
	A, B *Body
}

type World struct {
	Gravity rl.Vector3
	// DefaultContactMaterial applies when either body lacks a material.
	DefaultContactMaterial *ContactMaterial
	AllowSleep             bool

	CollisionEnter engine.EventWithArg[CollisionEvent]
	CollisionExit  engine.EventWithArg[CollisionEvent]

	bodies           []*Body
	nextID           int
	contactMaterials map[materialPair]*ContactMaterial
	grid             map[CellKey][]*Body

	activeCollisions  map[CollisionPair]bool
	currentCollisions map[CollisionPair]bool

	accumulator float32
	alpha       float32
	time        float32
	steps       int
}

func NewWorld() *World {
	return &World{
		Gravity:                rl.Vector3{Y: -9.82},
		DefaultContactMaterial: NewContactMaterial(nil, nil, 0.3, 0),
		contactMaterials:       make(map[materialPair]*ContactMaterial),
		grid:                   make(map[CellKey][]*Body),
		activeCollisions:       make(map[CollisionPair]bool),
		currentCollisions:      make(map[CollisionPair]bool),
		alpha:                  1,
	}
}

// AddBody registers b with the world. Adding a body twice is a no-op.
func (w *World) AddBody(b *Body) {
	if b == nil || b.world == w {
		return
	}
	w.nextID++
	b.id = w.nextID
	b.world = w
	w.bodies = append(w.bodies, b)
}

// RemoveBody reports whether b was part of the world.
func (w *World) RemoveBody(b *Body) bool {
	for i, body := range w.bodies {
		if body == b {
			w.bodies = append(w.bodies[:i], w.bodies[i+1:]...)
			for pair := range w.activeCollisions {
				if pair.A == b || pair.B == b {
					delete(w.activeCollisions, pair)
				}
			}
			b.world = nil
			return true
		}
	}
	return false
}

// Bodies returns the world's bodies in insertion order. The slice is shared.
func (w *World) Bodies() []*Body {
	return w.bodies
}

func (w *World) NumBodies() int {
	return len(w.bodies)
}

// Time is the simulated time in seconds.
func (w *World) Time() float32 { return w.time }

// StepCount is the number of fixed steps taken so far.
func (w *World) StepCount() int { return w.steps }

// Alpha is the interpolation factor between the last two fixed steps.
func (w *World) Alpha() float32 { return w.alpha }

func (w *World) AddContactMaterial(cm *ContactMaterial) {
	w.contactMaterials[materialPair{cm.A, cm.B}] = cm
	w.contactMaterials[materialPair{cm.B, cm.A}] = cm
}

// ContactMaterialFor returns the registered contact material for the pair, if any.
func (w *World) ContactMaterialFor(a, b *Material) (*ContactMaterial, bool) {
	cm, ok := w.contactMaterials[materialPair{a, b}]
	return cm, ok
}

func (w *World) pairResponse(a, b *Body) (friction, restitution float32) {
	if cm, ok := w.ContactMaterialFor(a.Material, b.Material); ok {
		return cm.Friction, cm.Restitution
	}
	return combine(a.Material, b.Material, w.DefaultContactMaterial)
}

// Step advances the simulation with a fixed time step. realDt is the wall
// time since the last call; it is accumulated and consumed in fixedDt
// slices, at most maxSubSteps per call, with any remaining backlog dropped.
// A non-positive realDt performs exactly one step. Returns the steps taken.
func (w *World) Step(fixedDt, realDt float32, maxSubSteps int) int {
	if fixedDt <= 0 {
		return 0
	}
	if realDt <= 0 {
		w.internalStep(fixedDt)
		w.alpha = 1
		return 1
	}
	if maxSubSteps <= 0 {
		maxSubSteps = DefaultMaxSubSteps
	}

	w.accumulator += realDt
	substeps := 0
	for w.accumulator >= fixedDt && substeps < maxSubSteps {
		w.internalStep(fixedDt)
		w.accumulator -= fixedDt
		substeps++
	}
	w.accumulator = math32.Mod(w.accumulator, fixedDt)
	w.alpha = w.accumulator / fixedDt
	return substeps
}

func (w *World) internalStep(dt float32) {
	w.currentCollisions = make(map[CollisionPair]bool)

	// 1. Integrate forces and velocities
	for _, b := range w.bodies {
		b.integrate(w.Gravity, dt)
	}

	// 2. Dynamic vs dynamic through the spatial hash
	w.rebuildGrid()
	checked := make(map[CollisionPair]bool)
	for _, b := range w.bodies {
		if b.Type != Dynamic {
			continue
		}
		for _, other := range w.neighbors(b) {
			if other == b {
				continue
			}
			pair := makePair(b, other)
			if checked[pair] {
				continue
			}
			checked[pair] = true
			if b.sleeping && other.sleeping {
				if w.activeCollisions[pair] {
					w.currentCollisions[pair] = true
				}
				continue
			}
			w.resolvePair(b, other)
		}
	}

	// 3. Dynamic vs static and kinematic
	for _, b := range w.bodies {
		if b.Type != Dynamic || b.Shape == nil {
			continue
		}
		bounds := b.Bounds()
		for _, other := range w.bodies {
			if other.Type == Dynamic || other.Shape == nil {
				continue
			}
			if b.sleeping && other.Type == Static {
				// Resting contacts stay alive without re-solving.
				pair := makePair(b, other)
				if w.activeCollisions[pair] {
					w.currentCollisions[pair] = true
				}
				continue
			}
			if other.Shape.Type() != ShapePlane && !bounds.Intersects(other.Bounds()) {
				continue
			}
			w.resolvePair(b, other)
		}
	}

	// 4. Sleep
	if w.AllowSleep {
		for _, b := range w.bodies {
			b.trySleep(dt)
		}
	}

	w.time += dt
	w.steps++
	w.dispatchCollisionEvents()
}

// rebuildGrid hashes every dynamic body by position. Bodies too large for
// the 3x3x3 neighborhood are stored under every cell they overlap.
func (w *World) rebuildGrid() {
	for k := range w.grid {
		delete(w.grid, k)
	}
	for _, b := range w.bodies {
		if b.Type != Dynamic || b.Shape == nil {
			continue
		}
		if boundingRadius(b.Shape) <= CellSize/2 {
			cell := posToCell(b.Position)
			w.grid[cell] = append(w.grid[cell], b)
			continue
		}
		bounds := b.Bounds()
		lo, hi := posToCell(bounds.Min), posToCell(bounds.Max)
		for x := lo.X; x <= hi.X; x++ {
			for y := lo.Y; y <= hi.Y; y++ {
				for z := lo.Z; z <= hi.Z; z++ {
					key := CellKey{x, y, z}
					w.grid[key] = append(w.grid[key], b)
				}
			}
		}
	}
}

// neighbors returns bodies in the same cell and the 26 around it.
func (w *World) neighbors(b *Body) []*Body {
	cell := posToCell(b.Position)
	var out []*Body
	for dx := -1; dx <= 1; dx++ {
		for dy := -1; dy <= 1; dy++ {
			for dz := -1; dz <= 1; dz++ {
				out = append(out, w.grid[CellKey{cell.X + dx, cell.Y + dy, cell.Z + dz}]...)
			}
		}
	}
	return out
}

func (w *World) resolvePair(a, b *Body) {
	contacts := collide(a, b)
	if len(contacts) == 0 {
		return
	}
	w.recordCollision(a, b)

	friction, restitution := w.pairResponse(a, b)
	share := 1 / float32(len(contacts))
	for _, c := range contacts {
		w.resolveContact(a, b, c, friction, restitution, share)
	}
}

// recordCollision marks a pair as touching this step and wakes sleepers on a hard hit.
func (w *World) recordCollision(a, b *Body) {
	w.currentCollisions[makePair(a, b)] = true

	if !a.sleeping && !b.sleeping {
		return
	}
	relSpeed := rl.Vector3Length(rl.Vector3Subtract(a.Velocity, b.Velocity))
	if relSpeed > SleepVelocityThreshold*wakeSpeedMultiplier {
		a.Wake()
		b.Wake()
	}
}

// invMassOf treats sleeping bodies as immovable.
func invMassOf(b *Body) float32 {
	if b.sleeping {
		return 0
	}
	return b.invMass
}

func (w *World) resolveContact(a, b *Body, c contact, friction, restitution, share float32) {
	invA, invB := invMassOf(a), invMassOf(b)
	totalInv := invA + invB
	if totalInv == 0 {
		return
	}
	n := c.Normal

	// Positional correction split by inverse mass
	if depth := c.Depth - penetrationSlop; depth > 0 {
		corr := depth * correctionFactor * share / totalInv
		a.Position = rl.Vector3Add(a.Position, rl.Vector3Scale(n, corr*invA))
		b.Position = rl.Vector3Subtract(b.Position, rl.Vector3Scale(n, corr*invB))
	}

	ra := rl.Vector3Subtract(c.Point, a.Position)
	rb := rl.Vector3Subtract(c.Point, b.Position)
	relVel := rl.Vector3Subtract(a.velocityAt(ra), b.velocityAt(rb))
	vn := rl.Vector3DotProduct(relVel, n)
	if vn > 0 {
		return
	}

	e := restitution
	if -vn < restingSpeed {
		e = 0
	}
	k := effectiveMass(a, b, invA, invB, ra, rb, n)
	if k <= 0 {
		return
	}
	j := -(1 + e) * vn / k
	applyContactImpulse(a, b, rl.Vector3Scale(n, j), ra, rb)

	// Coulomb friction along the tangential slip
	relVel = rl.Vector3Subtract(a.velocityAt(ra), b.velocityAt(rb))
	tangentVel := rl.Vector3Subtract(relVel, rl.Vector3Scale(n, rl.Vector3DotProduct(relVel, n)))
	slip := rl.Vector3Length(tangentVel)
	if slip < epsilon || friction <= 0 {
		return
	}
	t := rl.Vector3Scale(tangentVel, 1/slip)
	kt := effectiveMass(a, b, invA, invB, ra, rb, t)
	if kt <= 0 {
		return
	}
	jt := clampf(-slip/kt, -friction*j, friction*j)
	applyContactImpulse(a, b, rl.Vector3Scale(t, jt), ra, rb)
}

// effectiveMass is the inverse of the impulse needed for a unit velocity change along dir.
func effectiveMass(a, b *Body, invA, invB float32, ra, rb, dir rl.Vector3) float32 {
	k := invA + invB
	if invA > 0 {
		k += rl.Vector3DotProduct(cross(a.applyInvInertia(cross(ra, dir)), ra), dir)
	}
	if invB > 0 {
		k += rl.Vector3DotProduct(cross(b.applyInvInertia(cross(rb, dir)), rb), dir)
	}
	return k
}

func applyContactImpulse(a, b *Body, impulse, ra, rb rl.Vector3) {
	if a.Type == Dynamic && !a.sleeping {
		a.Velocity = rl.Vector3Add(a.Velocity, rl.Vector3Scale(impulse, a.invMass))
		a.AngularVelocity = rl.Vector3Add(a.AngularVelocity, a.applyInvInertia(cross(ra, impulse)))
	}
	if b.Type == Dynamic && !b.sleeping {
		b.Velocity = rl.Vector3Subtract(b.Velocity, rl.Vector3Scale(impulse, b.invMass))
		b.AngularVelocity = rl.Vector3Subtract(b.AngularVelocity, b.applyInvInertia(cross(rb, impulse)))
	}
}

// dispatchCollisionEvents raises enter for new pairs and exit for ended ones.
func (w *World) dispatchCollisionEvents() {
	for pair := range w.currentCollisions {
		if !w.activeCollisions[pair] {
			w.CollisionEnter.Invoke(CollisionEvent(pair))
		}
	}
	for pair := range w.activeCollisions {
		if !w.currentCollisions[pair] {
			w.CollisionExit.Invoke(CollisionEvent(pair))
		}
	}
	w.activeCollisions = w.currentCollisions
}
