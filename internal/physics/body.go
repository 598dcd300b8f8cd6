package physics

import (
	"github.com/chewxy/math32"
	rl "github.com/gen2brain/raylib-go/raylib"
)

type BodyType int

const (
	Dynamic BodyType = iota
	Static
	Kinematic
)

func (t BodyType) String() string {
	switch t {
	case Static:
		return "static"
	case Kinematic:
		return "kinematic"
	default:
		return "dynamic"
	}
}

// Sleep thresholds
const (
	SleepVelocityThreshold = 0.3 // units/sec
	SleepAngularThreshold  = 0.1 // rad/sec
	SleepTimeThreshold     = 0.5 // seconds below both thresholds before sleeping
)

// Body is a rigid body. A body with zero mass is static.
type Body struct {
	id    int
	world *World

	Name            string
	Type            BodyType
	Mass            float32
	Position        rl.Vector3
	Quaternion      rl.Quaternion
	Velocity        rl.Vector3
	AngularVelocity rl.Vector3 // radians per second, world frame
	LinearDamping   float32
	AngularDamping  float32
	Shape           Shape
	Material        *Material
	CanSleep        bool

	invMass    float32
	invInertia rl.Vector3 // local-frame diagonal

	prevPosition   rl.Vector3
	prevQuaternion rl.Quaternion

	sleeping   bool
	sleepTimer float32
}

// NewBody creates a body at position. Mass zero yields a static body.
func NewBody(mass float32, position rl.Vector3) *Body {
	b := &Body{
		Position:       position,
		Quaternion:     rl.QuaternionIdentity(),
		LinearDamping:  0.01,
		AngularDamping: 0.01,
		CanSleep:       true,
	}
	b.prevPosition = position
	b.prevQuaternion = b.Quaternion
	b.SetMass(mass)
	return b
}

// ID is assigned when the body is added to a world; zero before that.
func (b *Body) ID() int { return b.id }

// World returns the world the body belongs to, or nil.
func (b *Body) World() *World { return b.world }

func (b *Body) SetMass(mass float32) {
	if mass < 0 {
		mass = 0
	}
	b.Mass = mass
	if mass == 0 {
		if b.Type == Dynamic {
			b.Type = Static
		}
	} else if b.Type == Static {
		b.Type = Dynamic
	}
	b.updateMassProperties()
}

func (b *Body) SetShape(s Shape) {
	b.Shape = s
	b.updateMassProperties()
}

func (b *Body) updateMassProperties() {
	b.invMass = 0
	b.invInertia = rl.Vector3{}
	if b.Type != Dynamic || b.Mass <= 0 {
		return
	}
	b.invMass = 1 / b.Mass
	if b.Shape == nil {
		return
	}
	inertia := b.Shape.Inertia(b.Mass)
	if inertia.X > 0 {
		b.invInertia.X = 1 / inertia.X
	}
	if inertia.Y > 0 {
		b.invInertia.Y = 1 / inertia.Y
	}
	if inertia.Z > 0 {
		b.invInertia.Z = 1 / inertia.Z
	}
}

// InvMass is zero for static and kinematic bodies.
func (b *Body) InvMass() float32 { return b.invMass }

// applyInvInertia maps a world-space angular impulse to an angular velocity change.
func (b *Body) applyInvInertia(v rl.Vector3) rl.Vector3 {
	if isZero(b.invInertia) {
		return rl.Vector3{}
	}
	local := rl.Vector3RotateByQuaternion(v, rl.QuaternionInvert(b.Quaternion))
	local = mulComponents(local, b.invInertia)
	return rl.Vector3RotateByQuaternion(local, b.Quaternion)
}

// ApplyImpulse applies impulse at a world-space point, changing linear and
// angular velocity at once. It wakes a sleeping body.
func (b *Body) ApplyImpulse(impulse, worldPoint rl.Vector3) {
	if b.Type != Dynamic {
		return
	}
	b.Wake()
	b.Velocity = rl.Vector3Add(b.Velocity, rl.Vector3Scale(impulse, b.invMass))
	r := rl.Vector3Subtract(worldPoint, b.Position)
	b.AngularVelocity = rl.Vector3Add(b.AngularVelocity, b.applyInvInertia(cross(r, impulse)))
}

// velocityAt returns the velocity of the body material at world offset r from its center.
func (b *Body) velocityAt(r rl.Vector3) rl.Vector3 {
	return rl.Vector3Add(b.Velocity, cross(b.AngularVelocity, r))
}

// Teleport moves the body, zeroing velocity and interpolation history.
func (b *Body) Teleport(position rl.Vector3, q rl.Quaternion) {
	b.Position, b.prevPosition = position, position
	b.Quaternion, b.prevQuaternion = q, q
	b.Velocity = rl.Vector3{}
	b.AngularVelocity = rl.Vector3{}
	b.Wake()
}

func (b *Body) Wake() {
	b.sleeping = false
	b.sleepTimer = 0
}

func (b *Body) IsSleeping() bool { return b.sleeping }

// trySleep puts a resting dynamic body to sleep once it stays below the
// thresholds for SleepTimeThreshold seconds.
func (b *Body) trySleep(dt float32) {
	if !b.CanSleep || b.sleeping || b.Type != Dynamic {
		return
	}
	speed := rl.Vector3Length(b.Velocity)
	angSpeed := rl.Vector3Length(b.AngularVelocity)
	if speed >= SleepVelocityThreshold || angSpeed >= SleepAngularThreshold {
		b.sleepTimer = 0
		return
	}
	b.sleepTimer += dt
	if b.sleepTimer >= SleepTimeThreshold {
		b.sleeping = true
		b.Velocity = rl.Vector3{}
		b.AngularVelocity = rl.Vector3{}
	}
}

// integrate advances a dynamic body by dt under gravity and damping.
func (b *Body) integrate(gravity rl.Vector3, dt float32) {
	b.prevPosition = b.Position
	b.prevQuaternion = b.Quaternion
	if b.Type == Static || b.sleeping {
		return
	}

	if b.Type == Dynamic {
		b.Velocity = rl.Vector3Add(b.Velocity, rl.Vector3Scale(gravity, dt))
		b.Velocity = rl.Vector3Scale(b.Velocity, math32.Pow(1-b.LinearDamping, dt))
		b.AngularVelocity = rl.Vector3Scale(b.AngularVelocity, math32.Pow(1-b.AngularDamping, dt))
	}

	b.Position = rl.Vector3Add(b.Position, rl.Vector3Scale(b.Velocity, dt))
	if !isZero(b.AngularVelocity) {
		b.Quaternion = integrateQuaternion(b.Quaternion, b.AngularVelocity, dt)
	}
}

// InterpolatedPosition blends the last two fixed-step poses by the world's
// interpolation factor, for rendering between steps.
func (b *Body) InterpolatedPosition() rl.Vector3 {
	if b.world == nil {
		return b.Position
	}
	return rl.Vector3Lerp(b.prevPosition, b.Position, b.world.alpha)
}

func (b *Body) InterpolatedQuaternion() rl.Quaternion {
	if b.world == nil {
		return b.Quaternion
	}
	return rl.QuaternionSlerp(b.prevQuaternion, b.Quaternion, b.world.alpha)
}

func (b *Body) Bounds() AABB {
	if b.Shape == nil {
		return NewAABBFromCenter(b.Position, rl.Vector3{})
	}
	return b.Shape.Bounds(b.Position, b.Quaternion)
}
