package render

import (
	"testing"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ballpit/internal/engine"
	"ballpit/internal/physics"
)

func TestBoxEdges(t *testing.T) {
	box := physics.NewOBB(rl.Vector3{}, rl.Vector3{X: 1, Y: 2, Z: 3}, rl.QuaternionIdentity())
	edges := BoxEdges(box.Corners())

	lengths := map[float32]int{}
	for _, e := range edges {
		lengths[rl.Vector3Distance(e[0], e[1])]++
	}
	assert.Equal(t, map[float32]int{2: 4, 4: 4, 6: 4}, lengths)
}

func TestWorldTriangles(t *testing.T) {
	mesh := physics.NewTrimesh([]float32{0, 0, 0, 1, 0, 0, 0, 0, 1}, []int{0, 1, 2})
	q := rl.QuaternionFromAxisAngle(rl.Vector3{Y: 1}, rl.Pi/2)

	tris := WorldTriangles(mesh, rl.Vector3{Y: 2}, q)
	require.Len(t, tris, 1)
	assert.Equal(t, rl.Vector3{Y: 2}, tris[0][0])
	// +X turns to -Z under a quarter turn about Y.
	assert.InDelta(t, 0, tris[0][1].X, 1e-6)
	assert.InDelta(t, -1, tris[0][1].Z, 1e-6)
	assert.InDelta(t, 2, tris[0][1].Y, 1e-6)
}

func TestModelMatrix(t *testing.T) {
	tr := engine.IdentityTransform()
	tr.Position = rl.Vector3{X: 1, Y: 2, Z: 3}
	tr.Scale = rl.Vector3{X: 2, Y: 2, Z: 2}
	tr.Rotation = rl.QuaternionFromAxisAngle(rl.Vector3{Y: 1}, rl.Pi/2)

	got := rl.Vector3Transform(rl.Vector3{X: 1}, ModelMatrix(tr))
	// Scaled to 2, turned onto -Z, then moved.
	assert.InDelta(t, 1, got.X, 1e-5)
	assert.InDelta(t, 2, got.Y, 1e-5)
	assert.InDelta(t, 1, got.Z, 1e-5)
}
