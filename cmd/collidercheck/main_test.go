package main

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ballpit/internal/collider"
)

func TestCheckPrintsReport(t *testing.T) {
	path := filepath.Join(t.TempDir(), "colliders.json")
	require.NoError(t, os.WriteFile(path, []byte(`[
	  {"obj_name": "Floor", "position": [0,0,0], "type": "PASSIVE", "shape": "BOX", "friction": 0.5, "restitution": 0.2, "mass": 0, "dimensions": [20, 1, 20], "rotation": [0,0,0,1]},
	  {"obj_name": "Ball", "position": [0,3,0], "type": "ACTIVE", "shape": "SPHERE", "friction": 1, "restitution": 1, "mass": 5, "radius": 0.5},
	  {"obj_name": "Ramp", "position": [0,0,0], "type": "PASSIVE", "shape": "MESH", "friction": 1, "restitution": 0, "mass": 0, "vertices": [0,0,0, 1,0,0, 0,1,0], "indices": [0,1,2]},
	  {"obj_name": "Broken", "position": [0,0,0], "type": "PASSIVE", "shape": "BOX", "friction": 1, "restitution": 0, "mass": 0, "dimensions": [1,1,1]}
	]`), 0o644))

	b := collider.NewBuilder(collider.Options{Logger: slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))})
	var out bytes.Buffer
	report, err := check(context.Background(), &out, path, b, 2)
	require.NoError(t, err)

	assert.Equal(t, 3, report.Built)
	text := out.String()
	assert.Contains(t, text, "Floor")
	assert.Contains(t, text, "half=(10, 0.5, 10)")
	assert.Contains(t, text, "radius=0.5")
	assert.Contains(t, text, "vertices=3 triangles=1")
	assert.Contains(t, text, "missing field rotation for BOX")
	assert.Contains(t, text, "3 built, 1 skipped")
}

func TestCheckMissingFile(t *testing.T) {
	b := collider.NewBuilder(collider.Options{})
	_, err := check(context.Background(), &bytes.Buffer{}, filepath.Join(t.TempDir(), "none.json"), b, 1)
	assert.ErrorIs(t, err, os.ErrNotExist)
}
