// Package gpu runs a bounding-sphere overlap pass on a WebGPU compute device.
// It is independent of raylib's OpenGL context and is used by the stress tool
// to cross-check the CPU broadphase.
package gpu

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
	rl "github.com/gen2brain/raylib-go/raylib"

	"ballpit/internal/physics"
)

const workgroupSize = 256

// Sphere is packed as a vec4: xyz centre, w radius.
type Sphere struct {
	X, Y, Z float32
	Radius  float32
}

// Pair indexes two overlapping spheres, A < B.
type Pair struct {
	A, B uint32
}

const overlapShader = `
struct Sphere {
    pos: vec3<f32>,
    radius: f32,
}

struct Pair {
    a: u32,
    b: u32,
}

@group(0) @binding(0) var<storage, read> spheres: array<Sphere>;
@group(0) @binding(1) var<storage, read_write> pairs: array<Pair>;
@group(0) @binding(2) var<storage, read_write> pairCount: atomic<u32>;
@group(0) @binding(3) var<uniform> sphereCount: u32;

@compute @workgroup_size(256)
fn main(@builtin(global_invocation_id) id: vec3<u32>) {
    let i = id.x;
    if (i >= sphereCount) {
        return;
    }
    let a = spheres[i];
    for (var j = i + 1u; j < sphereCount; j = j + 1u) {
        let b = spheres[j];
        let d = a.pos - b.pos;
        let r = a.radius + b.radius;
        if (dot(d, d) < r * r) {
            let slot = atomicAdd(&pairCount, 1u);
            if (slot < arrayLength(&pairs)) {
                pairs[slot] = Pair(i, j);
            }
        }
    }
}
`

// Overlaps owns a device and the buffers for one fixed-capacity pass.
type Overlaps struct {
	instance *wgpu.Instance
	adapter  *wgpu.Adapter
	device   *wgpu.Device
	queue    *wgpu.Queue

	layout   *wgpu.BindGroupLayout
	pipeline *wgpu.ComputePipeline

	spheres *wgpu.Buffer
	pairs   *wgpu.Buffer
	count   *wgpu.Buffer
	params  *wgpu.Buffer

	capacity uint32
	maxPairs uint32
}

// New requests a high-performance adapter and compiles the overlap shader.
// It fails on machines without a usable GPU.
func New(capacity, maxPairs uint32) (o *Overlaps, err error) {
	if capacity == 0 || maxPairs == 0 {
		return nil, fmt.Errorf("gpu: capacity %d and max pairs %d must be positive", capacity, maxPairs)
	}
	o = &Overlaps{capacity: capacity, maxPairs: maxPairs}
	defer func() {
		if err != nil {
			o.Release()
			o = nil
		}
	}()

	o.instance = wgpu.CreateInstance(nil)
	o.adapter, err = o.instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		PowerPreference: wgpu.PowerPreferenceHighPerformance,
	})
	if err != nil {
		return nil, fmt.Errorf("gpu: request adapter: %w", err)
	}
	o.device, err = o.adapter.RequestDevice(nil)
	if err != nil {
		return nil, fmt.Errorf("gpu: request device: %w", err)
	}
	o.queue = o.device.GetQueue()

	if err = o.buildPipeline(); err != nil {
		return nil, err
	}

	o.spheres, err = o.buffer("spheres", uint64(capacity)*16, wgpu.BufferUsageStorage|wgpu.BufferUsageCopyDst)
	if err != nil {
		return nil, err
	}
	o.pairs, err = o.buffer("pairs", uint64(maxPairs)*8, wgpu.BufferUsageStorage|wgpu.BufferUsageCopySrc)
	if err != nil {
		return nil, err
	}
	o.count, err = o.buffer("pair_count", 4, wgpu.BufferUsageStorage|wgpu.BufferUsageCopySrc|wgpu.BufferUsageCopyDst)
	if err != nil {
		return nil, err
	}
	// Uniform bindings need 16-byte sizing.
	o.params, err = o.buffer("sphere_count", 16, wgpu.BufferUsageUniform|wgpu.BufferUsageCopyDst)
	if err != nil {
		return nil, err
	}
	return o, nil
}

func (o *Overlaps) buildPipeline() error {
	var err error
	o.layout, err = o.device.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
		Label: "overlap_layout",
		Entries: []wgpu.BindGroupLayoutEntry{
			{Binding: 0, Visibility: wgpu.ShaderStageCompute,
				Buffer: wgpu.BufferBindingLayout{Type: wgpu.BufferBindingTypeReadOnlyStorage}},
			{Binding: 1, Visibility: wgpu.ShaderStageCompute,
				Buffer: wgpu.BufferBindingLayout{Type: wgpu.BufferBindingTypeStorage}},
			{Binding: 2, Visibility: wgpu.ShaderStageCompute,
				Buffer: wgpu.BufferBindingLayout{Type: wgpu.BufferBindingTypeStorage}},
			{Binding: 3, Visibility: wgpu.ShaderStageCompute,
				Buffer: wgpu.BufferBindingLayout{Type: wgpu.BufferBindingTypeUniform}},
		},
	})
	if err != nil {
		return fmt.Errorf("gpu: bind group layout: %w", err)
	}

	pipelineLayout, err := o.device.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		Label:            "overlap_pipeline_layout",
		BindGroupLayouts: []*wgpu.BindGroupLayout{o.layout},
	})
	if err != nil {
		return fmt.Errorf("gpu: pipeline layout: %w", err)
	}
	defer pipelineLayout.Release()

	shader, err := o.device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label:          "overlap_shader",
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{Code: overlapShader},
	})
	if err != nil {
		return fmt.Errorf("gpu: shader module: %w", err)
	}
	defer shader.Release()

	o.pipeline, err = o.device.CreateComputePipeline(&wgpu.ComputePipelineDescriptor{
		Label:  "overlap_pipeline",
		Layout: pipelineLayout,
		Compute: wgpu.ProgrammableStageDescriptor{
			Module:     shader,
			EntryPoint: "main",
		},
	})
	if err != nil {
		return fmt.Errorf("gpu: compute pipeline: %w", err)
	}
	return nil
}

func (o *Overlaps) buffer(label string, size uint64, usage wgpu.BufferUsage) (*wgpu.Buffer, error) {
	buf, err := o.device.CreateBuffer(&wgpu.BufferDescriptor{Label: label, Size: size, Usage: usage})
	if err != nil {
		return nil, fmt.Errorf("gpu: buffer %s: %w", label, err)
	}
	return buf, nil
}

// Adapter names the device in use.
func (o *Overlaps) Adapter() string {
	info := o.adapter.GetInfo()
	return fmt.Sprintf("%s (%s)", info.Name, info.BackendType)
}

// Find returns every overlapping pair. Spheres past the capacity are ignored
// and pairs past maxPairs are dropped.
func (o *Overlaps) Find(spheres []Sphere) ([]Pair, error) {
	if len(spheres) > int(o.capacity) {
		spheres = spheres[:o.capacity]
	}
	if len(spheres) < 2 {
		return nil, nil
	}
	n := uint32(len(spheres))

	o.queue.WriteBuffer(o.spheres, 0, wgpu.ToBytes(spheres))
	o.queue.WriteBuffer(o.count, 0, wgpu.ToBytes([]uint32{0}))
	o.queue.WriteBuffer(o.params, 0, wgpu.ToBytes([]uint32{n, 0, 0, 0}))

	if err := o.dispatch((n + workgroupSize - 1) / workgroupSize); err != nil {
		return nil, err
	}

	raw, err := o.read(o.count, 4)
	if err != nil {
		return nil, err
	}
	found := min(wgpu.FromBytes[uint32](raw)[0], o.maxPairs)
	if found == 0 {
		return nil, nil
	}

	raw, err = o.read(o.pairs, uint64(found)*8)
	if err != nil {
		return nil, err
	}
	pairs := make([]Pair, found)
	copy(pairs, wgpu.FromBytes[Pair](raw))
	return pairs, nil
}

func (o *Overlaps) dispatch(workgroups uint32) error {
	group, err := o.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:  "overlap_bind_group",
		Layout: o.layout,
		Entries: []wgpu.BindGroupEntry{
			{Binding: 0, Buffer: o.spheres, Size: wgpu.WholeSize},
			{Binding: 1, Buffer: o.pairs, Size: wgpu.WholeSize},
			{Binding: 2, Buffer: o.count, Size: wgpu.WholeSize},
			{Binding: 3, Buffer: o.params, Size: wgpu.WholeSize},
		},
	})
	if err != nil {
		return fmt.Errorf("gpu: bind group: %w", err)
	}
	defer group.Release()

	encoder, err := o.device.CreateCommandEncoder(nil)
	if err != nil {
		return fmt.Errorf("gpu: command encoder: %w", err)
	}
	pass := encoder.BeginComputePass(nil)
	pass.SetPipeline(o.pipeline)
	pass.SetBindGroup(0, group, nil)
	pass.DispatchWorkgroups(workgroups, 1, 1)
	pass.End()
	pass.Release()

	commands, err := encoder.Finish(nil)
	if err != nil {
		return fmt.Errorf("gpu: finish: %w", err)
	}
	defer commands.Release()
	o.queue.Submit(commands)
	return nil
}

// read copies the first size bytes of src through a mappable staging buffer
// and blocks until the device is done.
func (o *Overlaps) read(src *wgpu.Buffer, size uint64) ([]byte, error) {
	staging, err := o.buffer("staging", size, wgpu.BufferUsageMapRead|wgpu.BufferUsageCopyDst)
	if err != nil {
		return nil, err
	}
	defer staging.Release()

	encoder, err := o.device.CreateCommandEncoder(nil)
	if err != nil {
		return nil, fmt.Errorf("gpu: command encoder: %w", err)
	}
	encoder.CopyBufferToBuffer(src, 0, staging, 0, size)
	commands, err := encoder.Finish(nil)
	if err != nil {
		return nil, fmt.Errorf("gpu: finish: %w", err)
	}
	o.queue.Submit(commands)
	commands.Release()

	done := make(chan error, 1)
	err = staging.MapAsync(wgpu.MapModeRead, 0, size, func(status wgpu.BufferMapAsyncStatus) {
		if status != wgpu.BufferMapAsyncStatusSuccess {
			done <- fmt.Errorf("gpu: map buffer: %v", status)
			return
		}
		done <- nil
	})
	if err != nil {
		return nil, err
	}
	o.device.Poll(true, nil)
	if err := <-done; err != nil {
		return nil, err
	}

	mapped := staging.GetMappedRange(0, uint(size))
	out := make([]byte, len(mapped))
	copy(out, mapped)
	staging.Unmap()
	return out, nil
}

// Release frees every GPU object. Safe on a partially built Overlaps.
func (o *Overlaps) Release() {
	for _, b := range []*wgpu.Buffer{o.spheres, o.pairs, o.count, o.params} {
		if b != nil {
			b.Release()
		}
	}
	if o.pipeline != nil {
		o.pipeline.Release()
	}
	if o.layout != nil {
		o.layout.Release()
	}
	if o.queue != nil {
		o.queue.Release()
	}
	if o.device != nil {
		o.device.Release()
	}
	if o.adapter != nil {
		o.adapter.Release()
	}
	if o.instance != nil {
		o.instance.Release()
	}
}

// BoundingSpheres packs the world bounds of every finite body. index maps a
// sphere back to its position in bodies; planes are skipped.
func BoundingSpheres(bodies []*physics.Body) (spheres []Sphere, index []int) {
	for i, b := range bodies {
		if b.Shape == nil || b.Shape.Type() == physics.ShapePlane {
			continue
		}
		box := b.Bounds()
		c := rl.Vector3Scale(rl.Vector3Add(box.Min, box.Max), 0.5)
		r := rl.Vector3Length(rl.Vector3Subtract(box.Max, box.Min)) / 2
		spheres = append(spheres, Sphere{X: c.X, Y: c.Y, Z: c.Z, Radius: r})
		index = append(index, i)
	}
	return spheres, index
}

// OverlapsCPU is the reference O(n²) pass that Find must agree with.
func OverlapsCPU(spheres []Sphere) []Pair {
	var pairs []Pair
	for i := range spheres {
		for j := i + 1; j < len(spheres); j++ {
			a, b := spheres[i], spheres[j]
			dx, dy, dz := a.X-b.X, a.Y-b.Y, a.Z-b.Z
			r := a.Radius + b.Radius
			if dx*dx+dy*dy+dz*dz < r*r {
				pairs = append(pairs, Pair{A: uint32(i), B: uint32(j)})
			}
		}
	}
	return pairs
}
