package collider

import (
	"context"
	"errors"
	"fmt"

	"ballpit/internal/physics"
)

// BodyAdder is the part of a physics world the populator needs.
type BodyAdder interface {
	AddBody(*physics.Body)
}

// Report summarizes one population pass.
type Report struct {
	Built    int
	Bodies   []*physics.Body
	Warnings []Warning
}

// Err joins every warning, or returns nil when all descriptors were built.
func (r Report) Err() error {
	if len(r.Warnings) == 0 {
		return nil
	}
	errs := make([]error, len(r.Warnings))
	for i, w := range r.Warnings {
		errs[i] = w
	}
	return errors.Join(errs...)
}

func (r *Report) warn(b *Builder, w Warning) {
	r.Warnings = append(r.Warnings, w)
	b.logger().Warn("skipping collider", "component", "collider", "index", w.Index, "name", w.Name, "err", w.Err)
}

func (r *Report) add(world BodyAdder, body *physics.Body) {
	world.AddBody(body)
	r.Bodies = append(r.Bodies, body)
	r.Built++
}

// Populate builds every descriptor in order and adds the resulting bodies to
// world. A descriptor that fails is skipped and recorded as a warning; the
// rest of the batch continues. Warnings for decoded descriptors carry their
// position in the file, others their position in descs.
func Populate(world BodyAdder, descs []Descriptor, b *Builder) Report {
	var report Report
	log := b.logger()
	for i, d := range descs {
		idx := warningIndex(d, i)
		if isNil(d) {
			_, err := b.Build(d)
			report.warn(b, Warning{Index: idx, Err: err})
			continue
		}
		h := d.Header()
		log.Debug("creating collider", "component", "collider", "index", idx, "name", h.Name, "shape", d.Shape())

		body, err := b.Build(d)
		if err != nil {
			report.warn(b, Warning{Index: idx, Name: h.Name, Err: err})
			continue
		}
		report.add(world, body)
	}
	log.Info("colliders populated", "component", "collider", "built", report.Built, "skipped", len(report.Warnings))
	return report
}

// PopulateParallel builds descriptors concurrently, then adds bodies to world
// on the calling goroutine in input order.
func PopulateParallel(ctx context.Context, world BodyAdder, descs []Descriptor, b *Builder, workers int) (Report, error) {
	results, err := b.BuildAll(ctx, descs, workers)
	if err != nil {
		return Report{}, err
	}

	var report Report
	for i, res := range results {
		if res.Err != nil {
			var name string
			if !isNil(descs[i]) {
				name = descs[i].Header().Name
			}
			report.warn(b, Warning{Index: warningIndex(descs[i], i), Name: name, Err: res.Err})
			continue
		}
		report.add(world, res.Body)
	}
	b.logger().Info("colliders populated", "component", "collider", "built", report.Built, "skipped", len(report.Warnings), "workers", workers)
	return report, nil
}

// LoadFile reads the collider file at path and populates world from it.
// Decode warnings come first in the report. Every warning is indexed by the
// record's position in the file.
// workers above 1 builds in parallel.
func LoadFile(ctx context.Context, path string, world BodyAdder, b *Builder, workers int) (Report, error) {
	descs, decodeWarnings, err := ReadFile(path)
	if err != nil {
		return Report{}, err
	}
	for _, w := range decodeWarnings {
		b.logger().Warn("skipping collider record", "component", "collider", "index", w.Index, "name", w.Name, "err", w.Err)
	}

	var report Report
	if workers > 1 {
		report, err = PopulateParallel(ctx, world, descs, b, workers)
		if err != nil {
			return Report{}, fmt.Errorf("%s: %w", path, err)
		}
	} else {
		report = Populate(world, descs, b)
	}
	report.Warnings = append(decodeWarnings, report.Warnings...)
	return report, nil
}
