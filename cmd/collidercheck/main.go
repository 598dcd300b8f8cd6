// collidercheck decodes a collider JSON file, builds every body headlessly
// and prints what was built and what was skipped.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"ballpit/internal/collider"
	"ballpit/internal/physics"
)

func main() {
	rotation := flag.String("rotation", "quaternion", "BOX rotation format: quaternion or euler_xyz")
	validate := flag.Bool("validate", true, "check mesh buffers")
	workers := flag.Int("workers", 1, "parallel builders")
	strict := flag.Bool("strict", false, "exit 1 when any collider is skipped")
	verbose := flag.Bool("v", false, "log every collider")
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: collidercheck [flags] colliders.json")
		os.Exit(2)
	}

	mode, err := collider.ParseRotationMode(*rotation)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	level := slog.LevelWarn
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	b := collider.NewBuilder(collider.Options{Rotation: mode, ValidateMeshes: *validate, Logger: logger})
	report, err := check(context.Background(), os.Stdout, flag.Arg(0), b, *workers)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if *strict && len(report.Warnings) > 0 {
		os.Exit(1)
	}
}

func check(ctx context.Context, out io.Writer, path string, b *collider.Builder, workers int) (collider.Report, error) {
	world := physics.NewWorld()
	report, err := collider.LoadFile(ctx, path, world, b, workers)
	if err != nil {
		return collider.Report{}, err
	}

	for _, body := range report.Bodies {
		fmt.Fprintf(out, "%-24s %-8s %-7s mass=%-6g pos=(%.3g, %.3g, %.3g) %s\n",
			body.Name, body.Shape.Type(), body.Type, body.Mass,
			body.Position.X, body.Position.Y, body.Position.Z, describe(body.Shape))
	}
	for _, w := range report.Warnings {
		fmt.Fprintf(out, "skipped: %v\n", w)
	}
	fmt.Fprintf(out, "%d built, %d skipped\n", report.Built, len(report.Warnings))
	return report, nil
}

func describe(s physics.Shape) string {
	switch s := s.(type) {
	case *physics.Box:
		h := s.HalfExtents
		return fmt.Sprintf("half=(%.3g, %.3g, %.3g)", h.X, h.Y, h.Z)
	case *physics.Sphere:
		return fmt.Sprintf("radius=%.3g", s.Radius)
	case *physics.Trimesh:
		return fmt.Sprintf("vertices=%d triangles=%d", s.VertexCount(), s.TriangleCount())
	}
	return ""
}
