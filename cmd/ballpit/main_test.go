package main

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ballpit/internal/collider"
	"ballpit/internal/config"
	"ballpit/internal/engine"
	"ballpit/internal/scene"
)

func newPit(t *testing.T) (*scene.BallPit, *engine.PointerEvents) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	pe := engine.NewPointerEvents()
	pit := scene.New(config.Default(), engine.NewScene("test"), pe, collider.NewBuilder(collider.Options{Logger: logger}), logger)
	_, err := pit.Setup(context.Background(), nil)
	require.NoError(t, err)
	return pit, pe
}

func TestPickBall(t *testing.T) {
	pit, pe := newPit(t)
	ball := pit.Balls[0]

	// Straight down onto the first ball.
	ray := rl.Ray{Position: rl.Vector3Add(ball.Spawn, rl.Vector3{Y: 10}), Direction: rl.Vector3{Y: -1}}
	hit, ok := pick(pit, ray)
	require.True(t, ok)
	assert.Equal(t, ball.Entity.UID, hit.EntityUID)
	assert.InDelta(t, ball.Spawn.Y+0.5, hit.Position.Y, 1e-4)
	assert.InDelta(t, 9.5, hit.Distance, 1e-4)

	require.True(t, pe.PointerDown(hit))
	assert.NotEqual(t, rl.Vector3{}, ball.Body.Velocity)
}

func TestPickGroundIsNotABall(t *testing.T) {
	pit, _ := newPit(t)
	ray := rl.Ray{Position: rl.Vector3{X: -50, Y: 5, Z: -50}, Direction: rl.Vector3{Y: -1}}
	_, ok := pick(pit, ray)
	assert.False(t, ok)
}

func TestNewLogger(t *testing.T) {
	_, err := newLogger("debug")
	assert.NoError(t, err)
	_, err = newLogger("chatty")
	assert.Error(t, err)
}
