package collider

import (
	"context"
	"errors"
	"math"
	"testing"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ballpit/internal/physics"
)

func common(name string, kind BodyKind, mass float32) Common {
	return Common{Name: name, Kind: kind, Mass: mass, Friction: 0.5, Restitution: 0.3}
}

func TestBuildBoxHalfExtents(t *testing.T) {
	b := NewBuilder(Options{})
	cases := [][]float32{
		{2, 2, 2},
		{1, 3, 0.5},
		{10.4, 0.2, 7.7},
		{0, 1, 1},
	}
	for _, dims := range cases {
		body, err := b.Build(&Box{
			Common:     common("Cube", Dynamic, 1),
			Dimensions: dims,
			Rotation:   []float32{0, 0, 0, 1},
		})
		require.NoError(t, err)
		box, ok := body.Shape.(*physics.Box)
		require.True(t, ok)
		assert.Equal(t, rl.Vector3{X: dims[0] / 2, Y: dims[1] / 2, Z: dims[2] / 2}, box.HalfExtents)
	}
}

func TestBuildBoxQuaternionCopiedVerbatim(t *testing.T) {
	b := NewBuilder(Options{})
	rot := []float32{0.1, 0.2, 0.3, 0.9}
	body, err := b.Build(&Box{Common: common("Cube", Dynamic, 1), Dimensions: []float32{1, 1, 1}, Rotation: rot})
	require.NoError(t, err)
	assert.Equal(t, rl.Quaternion{X: 0.1, Y: 0.2, Z: 0.3, W: 0.9}, body.Quaternion)
}

func TestBuildBoxEulerXYZ(t *testing.T) {
	b := NewBuilder(Options{Rotation: RotationEulerXYZ})
	body, err := b.Build(&Box{
		Common:     common("Cube", Dynamic, 1),
		Dimensions: []float32{1, 1, 1},
		Rotation:   []float32{0, math.Pi / 2, 0},
	})
	require.NoError(t, err)

	s := float32(math.Sin(math.Pi / 4))
	assert.InDelta(t, 0, body.Quaternion.X, 1e-6)
	assert.InDelta(t, s, body.Quaternion.Y, 1e-6)
	assert.InDelta(t, 0, body.Quaternion.Z, 1e-6)
	assert.InDelta(t, s, body.Quaternion.W, 1e-6)
}

func TestBuildBoxEulerOrder(t *testing.T) {
	// X then Y then Z, composed as qx * qy * qz.
	b := NewBuilder(Options{Rotation: RotationEulerXYZ})
	x, y, z := float32(0.3), float32(-0.7), float32(1.1)
	body, err := b.Build(&Box{Common: common("Cube", Dynamic, 1), Dimensions: []float32{1, 1, 1}, Rotation: []float32{x, y, z}})
	require.NoError(t, err)

	want := rl.QuaternionMultiply(
		rl.QuaternionMultiply(
			rl.QuaternionFromAxisAngle(rl.Vector3{X: 1}, x),
			rl.QuaternionFromAxisAngle(rl.Vector3{Y: 1}, y),
		),
		rl.QuaternionFromAxisAngle(rl.Vector3{Z: 1}, z),
	)
	assert.InDelta(t, want.X, body.Quaternion.X, 1e-5)
	assert.InDelta(t, want.Y, body.Quaternion.Y, 1e-5)
	assert.InDelta(t, want.Z, body.Quaternion.Z, 1e-5)
	assert.InDelta(t, want.W, body.Quaternion.W, 1e-5)
}

func TestBuildBoxMissingFields(t *testing.T) {
	b := NewBuilder(Options{})
	var missing *MissingFieldError

	_, err := b.Build(&Box{Common: common("Cube", Dynamic, 1), Dimensions: []float32{1, 1, 1}})
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, "rotation", missing.Field)
	assert.Equal(t, ShapeBox, missing.Shape)

	_, err = b.Build(&Box{Common: common("Cube", Dynamic, 1), Rotation: []float32{0, 0, 0, 1}})
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, "dimensions", missing.Field)
}

func TestBuildBoxInvalidGeometry(t *testing.T) {
	var invalid *InvalidGeometryError
	cases := []struct {
		name string
		opts Options
		box  *Box
	}{
		{"short dimensions", Options{}, &Box{Dimensions: []float32{1, 1}, Rotation: []float32{0, 0, 0, 1}}},
		{"negative dimensions", Options{}, &Box{Dimensions: []float32{1, -1, 1}, Rotation: []float32{0, 0, 0, 1}}},
		{"euler in quaternion mode", Options{}, &Box{Dimensions: []float32{1, 1, 1}, Rotation: []float32{0, 0, 0}}},
		{"short euler", Options{Rotation: RotationEulerXYZ}, &Box{Dimensions: []float32{1, 1, 1}, Rotation: []float32{0, 0}}},
		{"quaternion in euler mode", Options{Rotation: RotationEulerXYZ}, &Box{Dimensions: []float32{1, 1, 1}, Rotation: []float32{0, 0, 0, 1}}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewBuilder(tc.opts).Build(tc.box)
			assert.ErrorAs(t, err, &invalid)
		})
	}
}

func TestBuildPassiveForcesZeroMass(t *testing.T) {
	b := NewBuilder(Options{})
	descs := []Descriptor{
		&Box{Common: common("Wall", Passive, 50), Dimensions: []float32{1, 1, 1}, Rotation: []float32{0, 0, 0, 1}},
		&Sphere{Common: common("Rock", Passive, 3), Radius: 1},
		&Mesh{Common: common("Floor", Passive, 12), Vertices: []float32{0, 0, 0, 1, 0, 0, 0, 0, 1}, Indices: []int{0, 1, 2}},
	}
	for _, d := range descs {
		body, err := b.Build(d)
		require.NoError(t, err)
		assert.Zero(t, body.Mass, d.Header().Name)
		assert.Equal(t, physics.Static, body.Type, d.Header().Name)
	}
}

func TestBuildSphere(t *testing.T) {
	b := NewBuilder(Options{})
	body, err := b.Build(&Sphere{Common: common("Ball", Dynamic, 2), Radius: 0.37})
	require.NoError(t, err)

	sphere, ok := body.Shape.(*physics.Sphere)
	require.True(t, ok)
	assert.Equal(t, float32(0.37), sphere.Radius)
	assert.Equal(t, rl.QuaternionIdentity(), body.Quaternion)
	assert.Equal(t, float32(2), body.Mass)
}

func TestBuildSphereRadius(t *testing.T) {
	b := NewBuilder(Options{})
	var missing *MissingFieldError
	var invalid *InvalidGeometryError

	_, err := b.Build(&Sphere{Common: common("Ball", Dynamic, 1)})
	assert.ErrorAs(t, err, &missing)

	_, err = b.Build(&Sphere{Common: common("Ball", Dynamic, 1), Radius: -1})
	assert.ErrorAs(t, err, &invalid)
}

func TestBuildMeshKeepsBuffers(t *testing.T) {
	b := NewBuilder(Options{})
	vertices := []float32{0, 0, 0, 1, 0, 0, 0, 1, 0, 1, 1, 0, 0, 0, 0}
	indices := []int{2, 0, 1, 1, 3, 2, 0, 1, 2}

	body, err := b.Build(&Mesh{Common: common("Ramp", Passive, 0), Vertices: vertices, Indices: indices})
	require.NoError(t, err)
	mesh, ok := body.Shape.(*physics.Trimesh)
	require.True(t, ok)
	assert.Equal(t, vertices, mesh.Vertices)
	assert.Equal(t, indices, mesh.Indices)
	assert.Equal(t, 3, mesh.TriangleCount())

	// The body owns its buffers.
	vertices[0] = 99
	assert.Equal(t, float32(0), mesh.Vertices[0])
}

func TestBuildMeshValidation(t *testing.T) {
	bad := &Mesh{Common: common("Ramp", Passive, 0), Vertices: []float32{0, 0, 0, 1, 0, 0, 0, 1, 0}, Indices: []int{0, 1, 5}}

	body, err := NewBuilder(Options{}).Build(bad)
	require.NoError(t, err, "unvalidated meshes pass through")
	assert.Equal(t, bad.Indices, body.Shape.(*physics.Trimesh).Indices)

	var invalid *InvalidGeometryError
	_, err = NewBuilder(Options{ValidateMeshes: true}).Build(bad)
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, "indices", invalid.Field)

	partial := &Mesh{Common: common("Ramp", Passive, 0), Vertices: []float32{0, 0, 0, 1}, Indices: []int{}}
	_, err = NewBuilder(Options{ValidateMeshes: true}).Build(partial)
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, "vertices", invalid.Field)
}

func TestBuildMaterials(t *testing.T) {
	perBody := NewBuilder(Options{})
	a, err := perBody.Build(&Sphere{Common: common("A", Dynamic, 1), Radius: 1})
	require.NoError(t, err)
	c, err := perBody.Build(&Sphere{Common: common("C", Dynamic, 1), Radius: 1})
	require.NoError(t, err)

	assert.Equal(t, "A_physicsMaterial", a.Material.Name)
	assert.Equal(t, float32(0.5), a.Material.Friction)
	assert.Equal(t, float32(0.3), a.Material.Restitution)
	assert.NotSame(t, a.Material, c.Material)

	shared := NewBuilder(Options{ShareMaterials: true})
	a, _ = shared.Build(&Sphere{Common: common("A", Dynamic, 1), Radius: 1})
	c, _ = shared.Build(&Sphere{Common: common("C", Dynamic, 1), Radius: 1})
	assert.Same(t, a.Material, c.Material)
}

func TestBuildUnknownDescriptor(t *testing.T) {
	var unknown *UnknownShapeError
	_, err := NewBuilder(Options{}).Build(nil)
	assert.ErrorAs(t, err, &unknown)
}

func TestBuildTypedNil(t *testing.T) {
	_, err := NewBuilder(Options{}).Build((*Sphere)(nil))
	assert.ErrorIs(t, err, ErrNilDescriptor)
}

func TestBuildAllKeepsOrder(t *testing.T) {
	b := NewBuilder(Options{})
	var descs []Descriptor
	for i := 0; i < 40; i++ {
		descs = append(descs, &Sphere{Common: common("S", Dynamic, float32(i+1)), Radius: 0.5})
	}
	descs[7] = &Sphere{Common: common("bad", Dynamic, 1)}

	results, err := b.BuildAll(context.Background(), descs, 4)
	require.NoError(t, err)
	require.Len(t, results, 40)
	for i, r := range results {
		if i == 7 {
			assert.Error(t, r.Err)
			continue
		}
		require.NoError(t, r.Err)
		assert.Equal(t, float32(i+1), r.Body.Mass)
	}
}

func TestBuildAllCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	descs := []Descriptor{&Sphere{Common: common("S", Dynamic, 1), Radius: 1}}

	_, err := NewBuilder(Options{}).BuildAll(ctx, descs, 2)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestParseRotationMode(t *testing.T) {
	m, err := ParseRotationMode("")
	require.NoError(t, err)
	assert.Equal(t, RotationQuaternion, m)

	m, err = ParseRotationMode("euler_xyz")
	require.NoError(t, err)
	assert.Equal(t, RotationEulerXYZ, m)
	assert.Equal(t, "euler_xyz", m.String())

	_, err = ParseRotationMode("zyx")
	assert.Error(t, err)
}
