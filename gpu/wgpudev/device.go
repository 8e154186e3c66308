// Package wgpudev provides a gpu.Device backed by gogpu/wgpu.
//
// Resources live on a HAL device opened from the first usable adapter.
// Shader programs are WGSL compiled to SPIR-V through gogpu/naga. Import
// the package for its side effect to make the device available through
// the registry:
//
//	import _ "github.com/idakandrew/boxy/gpu/wgpudev"
package wgpudev

import (
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/idakandrew/boxy/gpu"
)

func init() {
	gpu.Register(gpu.DeviceWGPU, func() (gpu.Device, error) {
		return New()
	})
}

// Device is a gpu.Device over a HAL device and queue.
type Device struct {
	instance hal.Instance
	device   hal.Device
	queue    hal.Queue

	adapterName string

	target    *Texture
	viewportW int
	viewportH int

	pipelines *pipelineCache

	closed bool
}

// New opens the first usable GPU adapter and creates a device on it.
func New() (*Device, error) {
	backend, ok := hal.GetBackend(gputypes.BackendVulkan)
	if !ok {
		return nil, fmt.Errorf("wgpudev: vulkan backend not available")
	}
	instance, err := backend.CreateInstance(&hal.InstanceDescriptor{Flags: 0})
	if err != nil {
		return nil, fmt.Errorf("wgpudev: create instance: %w", err)
	}

	adapters := instance.EnumerateAdapters(nil)
	if len(adapters) == 0 {
		instance.Destroy()
		return nil, fmt.Errorf("wgpudev: no GPU adapters found")
	}

	var selected *hal.ExposedAdapter
	for i := range adapters {
		if adapters[i].Info.DeviceType == gputypes.DeviceTypeDiscreteGPU ||
			adapters[i].Info.DeviceType == gputypes.DeviceTypeIntegratedGPU {
			selected = &adapters[i]
			break
		}
	}
	if selected == nil {
		selected = &adapters[0]
	}

	openDev, err := selected.Adapter.Open(gputypes.Features(0), gputypes.DefaultLimits())
	if err != nil {
		instance.Destroy()
		return nil, fmt.Errorf("wgpudev: open device: %w", err)
	}

	d := &Device{
		instance:    instance,
		device:      openDev.Device,
		queue:       openDev.Queue,
		adapterName: selected.Info.Name,
	}
	d.pipelines = newPipelineCache(d)
	return d, nil
}

// AdapterName returns the name of the GPU adapter in use.
func (d *Device) AdapterName() string { return d.adapterName }

// SetRenderTarget directs subsequent draws at t, or at the default
// framebuffer when t is nil.
func (d *Device) SetRenderTarget(t gpu.Texture) error {
	if d.closed {
		return gpu.ErrDeviceClosed
	}
	if t == nil {
		d.target = nil
		return nil
	}
	wt, ok := t.(*Texture)
	if !ok {
		return fmt.Errorf("wgpudev: foreign texture %T", t)
	}
	d.target = wt
	return nil
}

// SetViewport sets the pixel viewport for subsequent draws.
func (d *Device) SetViewport(width, height int) {
	d.viewportW = width
	d.viewportH = height
}

// Clear fills the current render target with the given color. The clear is
// recorded as the load operation of the next render pass on that target.
func (d *Device) Clear(r, g, b, a float32) {
	if d.closed {
		return
	}
	if d.target != nil {
		d.target.pendingClear = &[4]float32{r, g, b, a}
		return
	}
	d.pipelines.pendingFrameClear = &[4]float32{r, g, b, a}
}

// Close releases the device, queue, and instance. Idempotent.
func (d *Device) Close() {
	if d.closed {
		return
	}
	d.closed = true

	if d.pipelines != nil {
		d.pipelines.destroy()
		d.pipelines = nil
	}
	if d.device != nil {
		d.device.Destroy()
		d.device = nil
	}
	if d.instance != nil {
		d.instance.Destroy()
		d.instance = nil
	}
	d.queue = nil
	d.target = nil
}

// submit encodes cmds into one command buffer, submits it, and waits for
// completion.
func (d *Device) submit(label string, record func(enc hal.CommandEncoder) error) error {
	encoder, err := d.device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{Label: label})
	if err != nil {
		return fmt.Errorf("wgpudev: create command encoder: %w", err)
	}
	if err := encoder.BeginEncoding(label); err != nil {
		return fmt.Errorf("wgpudev: begin encoding: %w", err)
	}
	if record != nil {
		if err := record(encoder); err != nil {
			return err
		}
	}
	cmdBuffer, err := encoder.EndEncoding()
	if err != nil {
		return fmt.Errorf("wgpudev: end encoding: %w", err)
	}
	defer cmdBuffer.Destroy()

	fence, err := d.device.CreateFence()
	if err != nil {
		return fmt.Errorf("wgpudev: create fence: %w", err)
	}
	defer d.device.DestroyFence(fence)

	if err := d.queue.Submit([]hal.CommandBuffer{cmdBuffer}, fence, 1); err != nil {
		return fmt.Errorf("wgpudev: submit: %w", err)
	}
	if _, err := d.device.Wait(fence, 1, 5_000_000_000); err != nil {
		return fmt.Errorf("wgpudev: wait for fence: %w", err)
	}
	return nil
}
