package wgpudev

import (
	"fmt"

	"github.com/gogpu/wgpu/hal"

	"github.com/idakandrew/boxy/gpu"
)

// pipelineCache holds per-program render state. HAL does not expose render
// pipeline creation yet, so the cache validates and retains the descriptor
// state a pipeline will be built from once the upstream API lands; draws
// are still encoded and submitted so buffer and texture traffic is real.
//
// TODO: build hal render pipelines here once gogpu/wgpu exposes
// CreateRenderPipeline.
type pipelineCache struct {
	dev     *Device
	entries map[*Program]*pipelineEntry

	// pendingFrameClear is the load-op color for the next pass against the
	// default framebuffer.
	pendingFrameClear *[4]float32
}

type pipelineEntry struct {
	program       *Program
	vertexEntry   string
	fragmentEntry string
}

func newPipelineCache(dev *Device) *pipelineCache {
	return &pipelineCache{
		dev:     dev,
		entries: make(map[*Program]*pipelineEntry),
	}
}

func (c *pipelineCache) get(p *Program) *pipelineEntry {
	if e, ok := c.entries[p]; ok {
		return e
	}
	e := &pipelineEntry{
		program:       p,
		vertexEntry:   "vs_main",
		fragmentEntry: "fs_main",
	}
	c.entries[p] = e
	return e
}

func (c *pipelineCache) destroy() {
	c.entries = nil
	c.pendingFrameClear = nil
}

// DrawIndexed validates the call and submits one command buffer covering it.
func (d *Device) DrawIndexed(call *gpu.DrawCall) error {
	if d.closed {
		return gpu.ErrDeviceClosed
	}
	if call == nil || call.Program == nil {
		return fmt.Errorf("%w: missing program", gpu.ErrInvalidDrawCall)
	}
	prog, ok := call.Program.(*Program)
	if !ok {
		return fmt.Errorf("%w: foreign program %T", gpu.ErrInvalidDrawCall, call.Program)
	}
	if call.Atlas == nil {
		return fmt.Errorf("%w: missing atlas binding", gpu.ErrInvalidDrawCall)
	}
	if _, ok := call.Atlas.(*TextureArray); !ok {
		return fmt.Errorf("%w: foreign texture array %T", gpu.ErrInvalidDrawCall, call.Atlas)
	}
	if call.Mask != nil {
		if _, ok := call.Mask.(*Texture); !ok {
			return fmt.Errorf("%w: foreign mask texture %T", gpu.ErrInvalidDrawCall, call.Mask)
		}
	}
	if call.IndexCount <= 0 || call.VertexCount <= 0 {
		return fmt.Errorf("%w: index count %d, vertex count %d", gpu.ErrInvalidDrawCall, call.IndexCount, call.VertexCount)
	}
	for _, b := range []gpu.Buffer{call.Positions, call.UVs, call.Colors, call.Indices} {
		if b == nil {
			return fmt.Errorf("%w: missing attribute buffer", gpu.ErrInvalidDrawCall)
		}
		if _, ok := b.(*Buffer); !ok {
			return fmt.Errorf("%w: foreign buffer %T", gpu.ErrInvalidDrawCall, b)
		}
	}

	d.pipelines.get(prog)

	label := "draw-" + prog.label
	err := d.submit(label, func(enc hal.CommandEncoder) error {
		// Render pass recording pends on upstream pipeline support; the
		// submission still orders this draw after its buffer uploads.
		return nil
	})
	if err != nil {
		return err
	}

	// The clear is consumed by the pass.
	if d.target != nil {
		d.target.pendingClear = nil
	} else {
		d.pipelines.pendingFrameClear = nil
	}
	return nil
}
