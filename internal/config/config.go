// Package config loads the ball pit settings from YAML.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"
	"gopkg.in/yaml.v3"

	"ballpit/internal/collider"
)

// Vec3 is written as a three element sequence: [x, y, z].
type Vec3 [3]float32

func (v Vec3) Vector3() rl.Vector3 {
	return rl.Vector3{X: v[0], Y: v[1], Z: v[2]}
}

type MaterialSpec struct {
	Friction    float32 `yaml:"friction"`
	Restitution float32 `yaml:"restitution"`
}

type PhysicsSpec struct {
	Gravity       Vec3    `yaml:"gravity"`
	FixedTimeStep float32 `yaml:"fixed_time_step"`
	MaxSubSteps   int     `yaml:"max_sub_steps"`
	AllowSleep    bool    `yaml:"allow_sleep"`
	// Interpolate renders bodies between the last two fixed steps.
	Interpolate bool `yaml:"interpolate"`
}

type CollidersSpec struct {
	Path           string `yaml:"path"`
	RotationMode   string `yaml:"rotation_mode"`
	ValidateMeshes bool   `yaml:"validate_meshes"`
	ShareMaterials bool   `yaml:"share_materials"`
	BuildWorkers   int    `yaml:"build_workers"`
}

type BallsSpec struct {
	Model          string  `yaml:"model"`
	Radius         float32 `yaml:"radius"`
	Mass           float32 `yaml:"mass"`
	LinearDamping  float32 `yaml:"linear_damping"`
	AngularDamping float32 `yaml:"angular_damping"`
	KickScale      float32 `yaml:"kick_scale"`
	HoverText      string  `yaml:"hover_text"`
	Spawns         []Vec3  `yaml:"spawns"`
	// Palette names raylib colors, used in turn when a ball has no model.
	Palette []string `yaml:"palette"`
}

type MaterialsSpec struct {
	Ground     MaterialSpec `yaml:"ground"`
	Ball       MaterialSpec `yaml:"ball"`
	BallGround MaterialSpec `yaml:"ball_ground"`
}

type WindowSpec struct {
	Width     int    `yaml:"width"`
	Height    int    `yaml:"height"`
	Title     string `yaml:"title"`
	TargetFPS int    `yaml:"target_fps"`
}

type WatchSpec struct {
	Enabled  bool          `yaml:"enabled"`
	Debounce time.Duration `yaml:"debounce"`
}

type AudioSpec struct {
	Enabled     bool    `yaml:"enabled"`
	Volume      float32 `yaml:"volume"`
	MaxDistance float32 `yaml:"max_distance"`
	// MinSpeed is the slowest impact that makes a sound.
	MinSpeed float32 `yaml:"min_speed"`
}

type Config struct {
	VisualModel    string        `yaml:"visual_model"`
	VisualRotation Vec3          `yaml:"visual_rotation"` // Euler degrees
	Colliders      CollidersSpec `yaml:"colliders"`
	Physics        PhysicsSpec   `yaml:"physics"`
	Balls          BallsSpec     `yaml:"balls"`
	Materials      MaterialsSpec `yaml:"materials"`
	Window         WindowSpec    `yaml:"window"`
	Watch          WatchSpec     `yaml:"watch"`
	Audio          AudioSpec     `yaml:"audio"`
	LogLevel       string        `yaml:"log_level"`
}

// Default returns the stock ball pit scene.
func Default() Config {
	return Config{
		VisualModel:    "assets/glb/basic-colliders.glb",
		VisualRotation: Vec3{0, 180, 0},
		Colliders: CollidersSpec{
			Path:         "assets/colliders/basic-colliders.json",
			RotationMode: collider.RotationQuaternion.String(),
			BuildWorkers: 1,
		},
		Physics: PhysicsSpec{
			Gravity:       Vec3{0, -9.82, 0},
			FixedTimeStep: 1.0 / 60.0,
			MaxSubSteps:   3,
		},
		Balls: BallsSpec{
			Model:          "assets/glb/ball.glb",
			Radius:         0.5,
			Mass:           5,
			LinearDamping:  0,
			AngularDamping: 0.4,
			KickScale:      25,
			HoverText:      "Kick",
			Spawns: []Vec3{
				{2, 8, 3}, {6, 8, 3}, {10, 8, 3}, {14, 8, 3},
				{2, 8, 14}, {6, 8, 14}, {10, 8, 14}, {14, 8, 14},
			},
			Palette: []string{"Red", "Orange", "Gold", "Lime", "SkyBlue", "Blue", "Purple", "Pink"},
		},
		Materials: MaterialsSpec{
			Ground:     MaterialSpec{Friction: 0.5, Restitution: 0.33},
			Ball:       MaterialSpec{Friction: 1, Restitution: 1},
			BallGround: MaterialSpec{Friction: 1.0, Restitution: 0.5},
		},
		Window: WindowSpec{
			Width:     1280,
			Height:    720,
			Title:     "Ball Pit",
			TargetFPS: 60,
		},
		Watch: WatchSpec{
			Enabled:  true,
			Debounce: 100 * time.Millisecond,
		},
		Audio: AudioSpec{
			Enabled:     true,
			Volume:      0.6,
			MaxDistance: 50,
			MinSpeed:    1,
		},
		LogLevel: "info",
	}
}

// Load reads path over the defaults. Keys absent from the file keep their
// default values.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: load %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: unmarshal %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("config: %s: %w", path, err)
	}
	return cfg, nil
}

// LoadOrDefault is Load, except a missing file yields the defaults.
func LoadOrDefault(path string) (Config, error) {
	cfg, err := Load(path)
	if errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}
	return cfg, err
}

func (c Config) Validate() error {
	var errs []error
	if c.Physics.FixedTimeStep <= 0 {
		errs = append(errs, fmt.Errorf("physics.fixed_time_step must be positive, got %v", c.Physics.FixedTimeStep))
	}
	if c.Physics.MaxSubSteps < 0 {
		errs = append(errs, fmt.Errorf("physics.max_sub_steps must not be negative, got %d", c.Physics.MaxSubSteps))
	}
	if _, err := collider.ParseRotationMode(c.Colliders.RotationMode); err != nil {
		errs = append(errs, fmt.Errorf("colliders.rotation_mode: %w", err))
	}
	if c.Colliders.BuildWorkers < 0 {
		errs = append(errs, fmt.Errorf("colliders.build_workers must not be negative, got %d", c.Colliders.BuildWorkers))
	}
	if c.Balls.Radius <= 0 {
		errs = append(errs, fmt.Errorf("balls.radius must be positive, got %v", c.Balls.Radius))
	}
	if c.Balls.Mass < 0 {
		errs = append(errs, fmt.Errorf("balls.mass must not be negative, got %v", c.Balls.Mass))
	}
	if c.Audio.Volume < 0 || c.Audio.Volume > 1 {
		errs = append(errs, fmt.Errorf("audio.volume must be within [0, 1], got %v", c.Audio.Volume))
	}
	if _, err := ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// ColliderOptions converts the colliders section into builder options.
func (c Config) ColliderOptions() (collider.Options, error) {
	mode, err := collider.ParseRotationMode(c.Colliders.RotationMode)
	if err != nil {
		return collider.Options{}, err
	}
	return collider.Options{
		Rotation:       mode,
		ValidateMeshes: c.Colliders.ValidateMeshes,
		ShareMaterials: c.Colliders.ShareMaterials,
	}, nil
}

// ParseLevel maps debug, info, warn and error to slog levels. Empty is info.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log_level %q", s)
	}
}
