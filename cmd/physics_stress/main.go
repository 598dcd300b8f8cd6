// Stress test timing World.Step with growing numbers of balls dropped onto
// the floor and, optionally, a collider file. With -gpu the final bounding
// sphere overlaps are also counted on a WebGPU device.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"os"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"

	"ballpit/internal/collider"
	"ballpit/internal/gpu"
	"ballpit/internal/physics"
)

const (
	fixedStep = 1.0 / 60.0
	maxBalls  = 2000
)

type result struct {
	count      int
	stepTime   time.Duration
	contacts   int
	naivePairs int
	naiveTime  time.Duration
	gpuPairs   int
	gpuTime    time.Duration
	sleeping   int
}

func main() {
	colliders := flag.String("colliders", "", "collider JSON file to drop the balls onto")
	steps := flag.Int("steps", 120, "fixed steps to time per run")
	sleep := flag.Bool("sleep", true, "allow bodies to sleep")
	useGPU := flag.Bool("gpu", false, "also count overlaps with a WebGPU compute pass")
	flag.Parse()

	var overlaps *gpu.Overlaps
	if *useGPU {
		var err error
		overlaps, err = gpu.New(maxBalls, maxBalls*16)
		if err != nil {
			slog.Warn("gpu unavailable, skipping compute pass", "error", err)
		} else {
			defer overlaps.Release()
			fmt.Printf("GPU: %s\n", overlaps.Adapter())
		}
	}

	var descs []collider.Descriptor
	if *colliders != "" {
		var err error
		descs, _, err = collider.ReadFile(*colliders)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	}

	// Test various object counts
	for _, count := range []int{50, 100, 250, 500, 1000, 2000} {
		r, err := stress(context.Background(), count, *steps, *sleep, descs, overlaps)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		fmt.Printf("%5d balls: step %8v (%5d contacts, %4d asleep) | naive pairs %10v (%4d overlaps)",
			r.count, r.stepTime.Round(time.Microsecond), r.contacts, r.sleeping,
			r.naiveTime.Round(time.Microsecond), r.naivePairs)
		if overlaps != nil {
			fmt.Printf(" | gpu %10v (%4d overlaps)", r.gpuTime.Round(time.Microsecond), r.gpuPairs)
		}
		fmt.Println()
	}
}

// stress runs one batch. overlaps may be nil.
func stress(ctx context.Context, count, steps int, sleep bool, descs []collider.Descriptor, overlaps *gpu.Overlaps) (result, error) {
	world := physics.NewWorld()
	world.AllowSleep = sleep

	ground := physics.NewBody(0, rl.Vector3{})
	ground.SetShape(physics.NewPlane())
	ground.Teleport(rl.Vector3{}, rl.QuaternionFromAxisAngle(rl.Vector3{X: 1}, -rl.Pi/2))
	world.AddBody(ground)

	quiet := slog.New(slog.NewTextHandler(io.Discard, nil))
	if _, err := collider.PopulateParallel(ctx, world, descs, collider.NewBuilder(collider.Options{Logger: quiet}), 4); err != nil {
		return result{}, err
	}

	// Consistent results
	rng := rand.New(rand.NewPCG(42, uint64(count)))

	// Spawn in a box whose footprint grows with count to keep density reasonable
	spawnSize := float32(16.0) + float32(count)/25.0
	balls := make([]*physics.Body, count)
	for i := range balls {
		pos := rl.Vector3{
			X: rng.Float32()*spawnSize - spawnSize/2,
			Y: 1 + rng.Float32()*10,
			Z: rng.Float32()*spawnSize - spawnSize/2,
		}
		b := physics.NewBody(5, pos)
		b.SetShape(physics.NewSphere(0.5))
		world.AddBody(b)
		balls[i] = b
	}

	var r result
	r.count = count
	world.CollisionEnter.AddListener(func(physics.CollisionEvent) { r.contacts++ })

	// Warm up
	world.Step(fixedStep, 0, 1)

	start := time.Now()
	for i := 0; i < steps; i++ {
		world.Step(fixedStep, 0, 1)
	}
	r.stepTime = time.Since(start) / time.Duration(steps)

	// Naive O(n²) bounding sphere overlap count over the final positions
	spheres, _ := gpu.BoundingSpheres(balls)
	start = time.Now()
	r.naivePairs = len(gpu.OverlapsCPU(spheres))
	r.naiveTime = time.Since(start)

	if overlaps != nil {
		start = time.Now()
		pairs, err := overlaps.Find(spheres)
		if err != nil {
			return r, err
		}
		r.gpuTime = time.Since(start)
		r.gpuPairs = len(pairs)
	}

	for _, b := range balls {
		if b.IsSleeping() {
			r.sleeping++
		}
	}
	return r, nil
}
