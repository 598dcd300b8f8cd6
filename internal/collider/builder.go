package collider

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/go-gl/mathgl/mgl32"
	"golang.org/x/sync/errgroup"

	"ballpit/internal/physics"
)

// RotationMode selects how a BOX rotation array is read.
type RotationMode int

const (
	// RotationQuaternion reads [x, y, z, w] and copies it unchanged.
	RotationQuaternion RotationMode = iota
	// RotationEulerXYZ reads [x, y, z] radians applied in X, Y, Z order.
	RotationEulerXYZ
)

func (m RotationMode) String() string {
	switch m {
	case RotationQuaternion:
		return "quaternion"
	case RotationEulerXYZ:
		return "euler_xyz"
	default:
		return fmt.Sprintf("RotationMode(%d)", int(m))
	}
}

func ParseRotationMode(s string) (RotationMode, error) {
	switch s {
	case "", "quaternion":
		return RotationQuaternion, nil
	case "euler_xyz", "euler":
		return RotationEulerXYZ, nil
	default:
		return 0, fmt.Errorf("unknown rotation mode %q", s)
	}
}

// MaterialSuffix is appended to a collider name to name its material.
const MaterialSuffix = "_physicsMaterial"

type Options struct {
	Rotation RotationMode
	// ValidateMeshes rejects index buffers that are not whole triangles or
	// that reference missing vertices. Off, such buffers pass through.
	ValidateMeshes bool
	// ShareMaterials reuses one material per (friction, restitution) pair
	// instead of creating one per body.
	ShareMaterials bool
	// Logger defaults to slog.Default().
	Logger *slog.Logger
}

type materialKey struct {
	friction, restitution float32
}

// Builder converts descriptors into physics bodies. It is safe for
// concurrent use.
type Builder struct {
	opts Options

	mu        sync.Mutex
	materials map[materialKey]*physics.Material
}

func NewBuilder(opts Options) *Builder {
	return &Builder{opts: opts, materials: make(map[materialKey]*physics.Material)}
}

func (b *Builder) Options() Options { return b.opts }

func (b *Builder) logger() *slog.Logger {
	if b.opts.Logger != nil {
		return b.opts.Logger
	}
	return slog.Default()
}

// Build creates the body for d. Nothing is added to any world.
func (b *Builder) Build(d Descriptor) (*physics.Body, error) {
	var (
		shape physics.Shape
		rot   = rl.QuaternionIdentity()
		err   error
	)
	if d != nil && isNil(d) {
		return nil, fmt.Errorf("%w: %s", ErrNilDescriptor, d.Shape())
	}
	switch d := d.(type) {
	case *Box:
		shape, rot, err = b.boxShape(d)
	case *Sphere:
		shape, err = sphereShape(d)
	case *Mesh:
		shape, err = b.meshShape(d)
	case nil:
		return nil, &UnknownShapeError{}
	default:
		return nil, &UnknownShapeError{Shape: d.Shape()}
	}
	if err != nil {
		return nil, err
	}

	h := d.Header()
	mass := h.Mass
	if h.Kind == Passive {
		mass = 0
	}
	body := physics.NewBody(mass, h.Position)
	body.Name = h.Name
	body.Teleport(h.Position, rot)
	body.SetShape(shape)
	body.Material = b.material(h)
	return body, nil
}

func (b *Builder) boxShape(d *Box) (physics.Shape, rl.Quaternion, error) {
	if d.Dimensions == nil {
		return nil, rl.Quaternion{}, &MissingFieldError{Shape: ShapeBox, Field: "dimensions"}
	}
	if d.Rotation == nil {
		return nil, rl.Quaternion{}, &MissingFieldError{Shape: ShapeBox, Field: "rotation"}
	}
	dims, err := vec3("dimensions", d.Dimensions)
	if err != nil {
		return nil, rl.Quaternion{}, err
	}
	if dims.X < 0 || dims.Y < 0 || dims.Z < 0 {
		return nil, rl.Quaternion{}, &InvalidGeometryError{Field: "dimensions", Reason: "negative extent"}
	}
	rot, err := b.rotation(d.Rotation)
	if err != nil {
		return nil, rl.Quaternion{}, err
	}
	half := rl.Vector3{X: dims.X / 2, Y: dims.Y / 2, Z: dims.Z / 2}
	return physics.NewBox(half), rot, nil
}

func (b *Builder) rotation(r []float32) (rl.Quaternion, error) {
	switch b.opts.Rotation {
	case RotationEulerXYZ:
		if len(r) != 3 {
			return rl.Quaternion{}, &InvalidGeometryError{
				Field:  "rotation",
				Reason: fmt.Sprintf("want 3 Euler angles, got %d", len(r)),
			}
		}
		q := mgl32.AnglesToQuat(r[0], r[1], r[2], mgl32.XYZ)
		return rl.Quaternion{X: q.V[0], Y: q.V[1], Z: q.V[2], W: q.W}, nil
	default:
		if len(r) != 4 {
			return rl.Quaternion{}, &InvalidGeometryError{
				Field:  "rotation",
				Reason: fmt.Sprintf("want quaternion (x, y, z, w), got %d components", len(r)),
			}
		}
		return rl.Quaternion{X: r[0], Y: r[1], Z: r[2], W: r[3]}, nil
	}
}

func sphereShape(d *Sphere) (physics.Shape, error) {
	switch {
	case d.Radius == 0:
		return nil, &MissingFieldError{Shape: ShapeSphere, Field: "radius"}
	case d.Radius < 0:
		return nil, &InvalidGeometryError{Field: "radius", Reason: "must be positive"}
	}
	return physics.NewSphere(d.Radius), nil
}

func (b *Builder) meshShape(d *Mesh) (physics.Shape, error) {
	if d.Vertices == nil {
		return nil, &MissingFieldError{Shape: ShapeMesh, Field: "vertices"}
	}
	if d.Indices == nil {
		return nil, &MissingFieldError{Shape: ShapeMesh, Field: "indices"}
	}
	if b.opts.ValidateMeshes {
		if err := validateMesh(d.Vertices, d.Indices); err != nil {
			return nil, err
		}
	}
	return physics.NewTrimesh(slices.Clone(d.Vertices), slices.Clone(d.Indices)), nil
}

func validateMesh(vertices []float32, indices []int) error {
	if len(vertices)%3 != 0 {
		return &InvalidGeometryError{
			Field:  "vertices",
			Reason: fmt.Sprintf("length %d is not a multiple of 3", len(vertices)),
		}
	}
	if len(indices)%3 != 0 {
		return &InvalidGeometryError{
			Field:  "indices",
			Reason: fmt.Sprintf("length %d is not a multiple of 3", len(indices)),
		}
	}
	count := len(vertices) / 3
	for i, idx := range indices {
		if idx < 0 || idx >= count {
			return &InvalidGeometryError{
				Field:  "indices",
				Reason: fmt.Sprintf("index %d at %d out of range [0, %d)", idx, i, count),
			}
		}
	}
	return nil
}

func (b *Builder) material(h Common) *physics.Material {
	if !b.opts.ShareMaterials {
		return physics.NewMaterial(h.Name+MaterialSuffix, h.Friction, h.Restitution)
	}
	key := materialKey{friction: h.Friction, restitution: h.Restitution}
	b.mu.Lock()
	defer b.mu.Unlock()
	if m, ok := b.materials[key]; ok {
		return m
	}
	m := physics.NewMaterial(h.Name+MaterialSuffix, h.Friction, h.Restitution)
	b.materials[key] = m
	return m
}

// Result is the outcome of building one descriptor.
type Result struct {
	Body *physics.Body
	Err  error
}

// BuildAll builds descs on up to workers goroutines and returns results in
// input order. Per-descriptor failures land in Result.Err; the returned error
// is only set when ctx is cancelled.
func (b *Builder) BuildAll(ctx context.Context, descs []Descriptor, workers int) ([]Result, error) {
	if workers <= 0 {
		workers = 1
	}
	results := make([]Result, len(descs))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, d := range descs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			body, err := b.Build(d)
			results[i] = Result{Body: body, Err: err}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("build colliders: %w", err)
	}
	return results, nil
}
